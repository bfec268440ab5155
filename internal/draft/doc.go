// Package draft holds the per-guild staging area for calendars that have not been
// created yet.
//
// A guild has at most one Draft at a time. Users build it up over several chat
// messages and then either confirm it (see package creator) or abandon it. The
// Registry is an explicitly constructed value owned by the composition root; it
// never performs I/O and its lock is only held for map and entry access.
package draft
