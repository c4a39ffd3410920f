// Package observability provides the console logger, the JSONL event log of
// task store mutations, metrics derived from that log, and deadline alerts
// computed from the current task list.
package observability
