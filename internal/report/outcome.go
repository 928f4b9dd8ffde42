// Package report defines per-file outcomes and renders batch summaries.
package report

import (
	"fmt"
	"time"
)

// Kind is the terminal state of one file's processing.
type Kind int

const (
	Skipped Kind = iota
	Moved
	Compressed
	Failed
)

func (k Kind) String() string {
	switch k {
	case Moved:
		return "moved"
	case Compressed:
		return "compressed"
	case Failed:
		return "failed"
	default:
		return "skipped"
	}
}

// Outcome is the result for one input file. Every input file maps to
// exactly one Outcome per run.
type Outcome struct {
	Kind     Kind
	File     string // base name of the input
	Reason   string // why it was skipped or failed; may carry a note otherwise
	Category string // failure classification, empty unless Failed

	InputBytes  int64
	OutputBytes int64
	Elapsed     time.Duration
	DryRun      bool
}

// NewSkipped returns a Skipped outcome with a formatted reason.
func NewSkipped(file, format string, args ...any) Outcome {
	return Outcome{Kind: Skipped, File: file, Reason: fmt.Sprintf(format, args...)}
}

// NewFailed returns a Failed outcome.
func NewFailed(file, category, reason string) Outcome {
	return Outcome{Kind: Failed, File: file, Category: category, Reason: reason}
}

// Saved returns input minus output bytes for files that produced output.
func (o Outcome) Saved() int64 {
	if o.Kind != Compressed || o.DryRun {
		return 0
	}
	return o.InputBytes - o.OutputBytes
}
