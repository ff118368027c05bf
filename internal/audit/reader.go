package audit

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/spf13/afero"
)

// EventFilter selects events; zero fields match everything.
type EventFilter struct {
	EventTypes []EventType
	Status     OperationStatus
	StartTime  *time.Time // events at or after
	EndTime    *time.Time // events at or before
}

func (f EventFilter) match(e AuditEvent) bool {
	switch {
	case len(f.EventTypes) > 0 && !slices.Contains(f.EventTypes, e.EventType):
		return false
	case f.Status != "" && e.Status != f.Status:
		return false
	case f.StartTime != nil && e.Timestamp.Before(*f.StartTime):
		return false
	case f.EndTime != nil && e.Timestamp.After(*f.EndTime):
		return false
	}
	return true
}

// AuditReader reads the journal across the active log and its rotated segments.
type AuditReader struct {
	fs     afero.Fs
	logDir string
}

// NewAuditReader reads the journal in logDir on the OS filesystem.
func NewAuditReader(logDir string) *AuditReader {
	return NewReader(afero.NewOsFs(), logDir)
}

// NewReader reads the journal in logDir on fsys.
func NewReader(fsys afero.Fs, logDir string) *AuditReader {
	return &AuditReader{fs: fsys, logDir: logDir}
}

// Dir returns the journal directory.
func (r *AuditReader) Dir() string {
	return r.logDir
}

// ListRuns returns every run with its summary, oldest first.
func (r *AuditReader) ListRuns() ([]RunInfo, error) {
	events, err := r.events()
	if err != nil {
		return nil, err
	}

	byRun := make(map[RunID][]AuditEvent)
	for _, e := range events {
		if e.RunID != "" {
			byRun[e.RunID] = append(byRun[e.RunID], e)
		}
	}
	runs := make([]RunInfo, 0, len(byRun))
	for id, evs := range byRun {
		runs = append(runs, summarize(id, evs))
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartTime.Before(runs[j].StartTime)
	})
	return runs, nil
}

// GetRun returns the events of one run in journal order.
func (r *AuditReader) GetRun(runID RunID) ([]AuditEvent, error) {
	return r.FilterEvents(runID, EventFilter{})
}

// GetRunByID returns the summary of one run.
func (r *AuditReader) GetRunByID(runID RunID) (*RunInfo, error) {
	runs, err := r.ListRuns()
	if err != nil {
		return nil, err
	}
	for i := range runs {
		if runs[i].RunID == runID {
			return &runs[i], nil
		}
	}
	return nil, fmt.Errorf("run not found: %s", runID)
}

// GetLatestRun returns the run that started last.
func (r *AuditReader) GetLatestRun() (*RunInfo, error) {
	runs, err := r.ListRuns()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no runs found in %s", r.logDir)
	}
	return &runs[len(runs)-1], nil
}

// FilterEvents returns the events of runID that match filter. An unknown
// run is an error.
func (r *AuditReader) FilterEvents(runID RunID, filter EventFilter) ([]AuditEvent, error) {
	events, err := r.events()
	if err != nil {
		return nil, err
	}
	var found bool
	var out []AuditEvent
	for _, e := range events {
		if e.RunID != runID {
			continue
		}
		found = true
		if filter.match(e) {
			out = append(out, e)
		}
	}
	if !found {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	return out, nil
}

// events reads every journal file in write order.
func (r *AuditReader) events() ([]AuditEvent, error) {
	files, err := journalFiles(r.fs, r.logDir)
	if err != nil {
		return nil, err
	}
	var all []AuditEvent
	for _, path := range files {
		f, err := r.fs.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		events, err := decodeAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		all = append(all, events...)
	}
	return all, nil
}

// summarize builds the RunInfo of one run. The RUN_END summary wins; a run
// that never ended is tallied from its file events.
func summarize(runID RunID, events []AuditEvent) RunInfo {
	info := RunInfo{
		RunID:   runID,
		Status:  RunStatusInProgress,
		RunType: RunTypeSort,
	}
	var tally RunSummary
	var final *RunSummary
	for _, e := range events {
		switch e.EventType {
		case EventRunStart:
			info.StartTime = e.Timestamp
			info.AppVersion = e.Metadata["appVersion"]
			info.Year = e.Metadata["year"]
			if rt := e.Metadata["runType"]; rt != "" {
				info.RunType = RunType(rt)
			}
		case EventRunEnd:
			end := e.Timestamp
			info.EndTime = &end
			if e.RunStatus != "" {
				info.Status = e.RunStatus
			}
			final = e.Summary
		case EventSuffix:
			tally.Suffixed++
			if e.Collision {
				tally.Collisions++
			}
		case EventPlace:
			tally.TotalFiles++
			tally.Placed++
			if e.Collision {
				tally.Collisions++
			}
		case EventError:
			tally.TotalFiles++
			tally.Errors++
		}
	}
	if final != nil {
		info.Summary = *final
	} else {
		info.Summary = tally
	}
	return info
}
