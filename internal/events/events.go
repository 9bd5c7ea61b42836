// Package events defines the one-way event contract between a running copy
// task and its consumer (CLI, tests, or any other front end).
//
// A task emits a stream of discrete events through a Sink: status text,
// progress percentage, log lines with a severity accent, at most one
// confirmation request, and exactly one completion per task invocation.
// Implementations must be safe for calls from the task's worker goroutine.
package events

import "time"

// Severity classifies a log line for presentation purposes.
type Severity int

const (
	// SeverityInfo is a normal informational line.
	SeverityInfo Severity = iota
	// SeverityWarn is a recoverable problem (item skipped, rename fallback).
	SeverityWarn
	// SeverityError is a failure line (item lost, task stopped or failed).
	SeverityError
	// SeverityDetail is muted supporting detail (group labels, timings).
	SeverityDetail
	// SeverityFound accents a matched-file line in the search summary.
	SeverityFound
	// SeverityHeader accents a section header line (task start, summary).
	SeverityHeader
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	case SeverityDetail:
		return "detail"
	case SeverityFound:
		return "found"
	case SeverityHeader:
		return "header"
	default:
		return "unknown"
	}
}

// Resumer is the handle carried by a confirmation request. The consumer
// calls Resume exactly once with the operator's decision; true continues
// into the copy phase, false abandons the task.
type Resumer interface {
	Resume(proceed bool)
}

// Completion summarizes one finished task. DirsCopied is always zero in the
// current contract and is kept for wire compatibility with older consumers.
type Completion struct {
	FilesCopied int
	DirsCopied  int
	Duration    time.Duration
}

// Sink receives all events emitted by a task. The worker never blocks on a
// Sink call beyond the call itself, so implementations should return quickly.
type Sink interface {
	// Status replaces the single-line human-readable status.
	Status(text string)

	// Progress reports copy-phase progress as an integer 0-100.
	Progress(percent int)

	// Log appends one line to the task log.
	Log(message string, sev Severity)

	// Confirm asks the consumer whether to proceed with a large result set.
	// Emitted at most once per task; the decision arrives later via r.Resume.
	Confirm(matchCount int, r Resumer)

	// Complete reports the terminal outcome. Emitted exactly once per task,
	// on every path including failure.
	Complete(c Completion)

	// Error reports a task-fatal failure. Emitted only on the failed path,
	// in addition to Complete.
	Error(message string)
}

// LogFunc is the minimal logging dependency handed to the search and copy
// phases so they do not need the full Sink.
type LogFunc func(message string, sev Severity)
