package orchestrator

import (
	"fmt"
	"time"

	"monthsort/internal/audit"
	"monthsort/internal/organizer"
)

// Summary represents the overall results of a sorting run.
type Summary struct {
	RunID       audit.RunID
	Year        int
	Mode        organizer.Mode
	TotalFiles  int // dated files handed to processing
	Suffixed    int // files renamed in place
	Placed      int // files that reached their month folder
	InPlace     int // files found already sorted
	Collisions  int
	ErrorCount  int
	Bytes       int64 // bytes moved or copied
	Results     []Operation
	ScanErrors  []error
	Interrupted bool
	Duration    time.Duration
}

func newSummary(year int, mode organizer.Mode) *Summary {
	return &Summary{
		Year:       year,
		Mode:       mode,
		Results:    make([]Operation, 0),
		ScanErrors: make([]error, 0),
	}
}

// add folds one processed file into the counters.
func (s *Summary) add(op Operation) {
	s.Results = append(s.Results, op)
	if op.Renamed {
		s.Suffixed++
	}
	if op.Collision {
		s.Collisions++
	}
	if op.Err != nil {
		s.ErrorCount++
		return
	}
	if op.InPlace {
		s.InPlace++
		return
	}
	s.Placed++
	s.Bytes += op.Bytes
}

// HasErrors returns true if there were any errors during the run.
func (s *Summary) HasErrors() bool {
	return s.ErrorCount > 0 || len(s.ScanErrors) > 0
}

// Failed returns the operations that did not complete.
func (s *Summary) Failed() []Operation {
	var failed []Operation
	for _, op := range s.Results {
		if op.Err != nil {
			failed = append(failed, op)
		}
	}
	return failed
}

// Status maps the outcome onto the journal's run status.
func (s *Summary) Status() audit.RunStatus {
	switch {
	case s.Interrupted:
		return audit.RunStatusInterrupted
	case s.ErrorCount > 0 && s.Placed == 0:
		return audit.RunStatusFailed
	default:
		return audit.RunStatusCompleted
	}
}

// AuditSummary converts the counters for the RUN_END event.
func (s *Summary) AuditSummary() audit.RunSummary {
	return audit.RunSummary{
		TotalFiles: s.TotalFiles,
		Suffixed:   s.Suffixed,
		Placed:     s.Placed,
		Collisions: s.Collisions,
		Errors:     s.ErrorCount,
	}
}

// String returns a one-line summary.
func (s *Summary) String() string {
	verb := "copied"
	if s.Mode == organizer.ModeMove {
		verb = "moved"
	}
	line := fmt.Sprintf("Processed %d files: %d %s, %d errors", s.TotalFiles, s.Placed, verb, s.ErrorCount)
	if s.Interrupted {
		line += " (interrupted)"
	}
	return line
}
