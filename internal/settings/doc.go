// Package settings defines the per-guild configuration and calendar records the bot
// persists, and the Store interface used to read and write them.
//
// MemoryStore keeps everything in process and is used in tests and with
// DISCAL_STORAGE=memory. The sqlite subpackage provides the durable store.
package settings
