package pipeline

import "github.com/backmassage/bitcap/internal/report"

// RunStats tracks aggregate counters, byte totals, and per-file outcomes
// across a batch run.
type RunStats struct {
	RunID       string
	Total       int
	Current     int
	Moved       int
	Compressed  int
	Skipped     int
	Failed      int
	Interrupted bool

	TotalInputBytes  int64
	TotalOutputBytes int64

	Outcomes []report.Outcome
}

// Record counts o and appends it to Outcomes.
func (s *RunStats) Record(o report.Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	switch o.Kind {
	case report.Moved:
		s.Moved++
	case report.Compressed:
		s.Compressed++
		if !o.DryRun {
			s.TotalInputBytes += o.InputBytes
			s.TotalOutputBytes += o.OutputBytes
		}
	case report.Failed:
		s.Failed++
	default:
		s.Skipped++
	}
}

// SpaceSaved returns the byte difference between compressed inputs and
// their outputs. Positive means outputs are smaller; negative means they grew.
func (s *RunStats) SpaceSaved() int64 {
	return s.TotalInputBytes - s.TotalOutputBytes
}

// HasFailures reports whether any file ended in Failed.
func (s *RunStats) HasFailures() bool { return s.Failed > 0 }
