package orchestrator

import (
	"errors"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"monthsort/internal/audit"
	"monthsort/internal/organizer"
)

// TestSummaryCountsAddUp checks that every processed file is counted
// exactly once: placed, already in place, or failed.
func TestSummaryCountsAddUp(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("placed + in place + errors == results", prop.ForAll(
		func(outcomes []bool) bool {
			s := newSummary(2024, organizer.ModeMove)
			for i, failed := range outcomes {
				op := Operation{OriginalName: "f", Renamed: i%2 == 0, Bytes: 10}
				if i%3 == 1 {
					op.InPlace, op.Bytes = true, 0
				}
				if failed {
					op.Err = errors.New("boom")
				}
				s.add(op)
			}
			return s.Placed+s.InPlace+s.ErrorCount == len(s.Results) &&
				s.Bytes == int64(s.Placed)*10 &&
				len(s.Failed()) == s.ErrorCount
		},
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}

func TestSummaryStatus(t *testing.T) {
	tests := []struct {
		name    string
		summary Summary
		want    audit.RunStatus
	}{
		{"clean run", Summary{Placed: 3}, audit.RunStatusCompleted},
		{"empty run", Summary{}, audit.RunStatusCompleted},
		{"partial failure", Summary{Placed: 2, ErrorCount: 1}, audit.RunStatusCompleted},
		{"everything failed", Summary{ErrorCount: 2}, audit.RunStatusFailed},
		{"interrupted", Summary{Placed: 1, Interrupted: true}, audit.RunStatusInterrupted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.summary.Status(); got != tt.want {
				t.Errorf("Status() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSummaryString(t *testing.T) {
	s := &Summary{TotalFiles: 4, Placed: 3, ErrorCount: 1, Mode: organizer.ModeMove}
	if got := s.String(); got != "Processed 4 files: 3 moved, 1 errors" {
		t.Errorf("String() = %q", got)
	}

	s.Mode = organizer.ModeCopy
	s.Interrupted = true
	got := s.String()
	if !strings.Contains(got, "3 copied") || !strings.HasSuffix(got, "(interrupted)") {
		t.Errorf("String() = %q", got)
	}
}

func TestSummaryAuditSummary(t *testing.T) {
	s := &Summary{TotalFiles: 5, Suffixed: 4, Placed: 4, Collisions: 2, ErrorCount: 1}
	got := s.AuditSummary()
	want := audit.RunSummary{TotalFiles: 5, Suffixed: 4, Placed: 4, Collisions: 2, Errors: 1}
	if got != want {
		t.Errorf("AuditSummary() = %+v, want %+v", got, want)
	}
}

func TestPreconditionError(t *testing.T) {
	inner := errors.New("disk full")
	err := &PreconditionError{Reason: "cannot create month folders", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("PreconditionError should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Error() = %q", err.Error())
	}
}
