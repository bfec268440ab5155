// Package alert delivers operator alerts about failures that need a human,
// such as a calendar that was created but could not be recorded.
//
// Reporters never block the caller: AsyncReporter queues alerts in a bounded
// buffer drained by a single worker and drops (and logs) alerts when the
// buffer is full.
package alert
