// Package orchestrator coordinates a monthsort run: scan the sources, add
// the date suffix to each dated file and place it into its month folder.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"monthsort/internal/audit"
	"monthsort/internal/config"
	"monthsort/internal/dateparser"
	"monthsort/internal/monthfolder"
	"monthsort/internal/organizer"
	"monthsort/internal/scanner"
)

// Progress receives per-file progress while a batch is applied.
type Progress interface {
	StartProgress(total int)
	UpdateProgress(current int, message string)
	EndProgress()
}

// Options configures an Orchestrator. Zero values fall back to defaults in New.
type Options struct {
	Fs          afero.Fs
	Sources     []string
	Destination string // root holding the month folders
	Year        int
	Mode        organizer.Mode
	ProbeLimit  int
	Resolver    *dateparser.Resolver
	Scan        scanner.Options
	Workers     int // concurrent source scans
	Logger      *log.Logger
	Audit       *audit.AuditWriter // nil disables the journal
	Progress    Progress
	AppVersion  string
}

// Operation is the record kept for each processed file.
type Operation struct {
	OriginalName   string
	Suffix         string
	Date           string // YYYY-MM-DD
	SourceDir      string
	DestinationDir string
	FinalPath      string
	RenamedPath    string // source path after the suffix rename
	Renamed        bool
	Collision      bool
	InPlace        bool // already in its month folder; nothing was transferred
	Bytes          int64
	Err            error
}

// PreconditionError aborts a batch before any file is touched.
type PreconditionError struct {
	Reason string
	Err    error
}

func (e *PreconditionError) Error() string {
	if e.Err != nil {
		return "precondition failed: " + e.Reason + ": " + e.Err.Error()
	}
	return "precondition failed: " + e.Reason
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// Orchestrator runs batches and single-file sorts with a fixed set of options.
type Orchestrator struct {
	opts Options
	log  *log.Logger
}

// New creates an Orchestrator, filling unset options with defaults.
func New(opts Options) *Orchestrator {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Resolver == nil {
		opts.Resolver = dateparser.NewResolver(nil)
	}
	if opts.Mode == "" {
		opts.Mode = organizer.ModeCopy
	}
	if opts.ProbeLimit <= 0 {
		opts.ProbeLimit = organizer.DefaultProbeLimit
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Scan.SymlinkPolicy == "" {
		opts.Scan = scanner.DefaultOptions()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Orchestrator{opts: opts, log: logger}
}

// NewFromConfig builds an Orchestrator for year from a loaded configuration.
func NewFromConfig(cfg *config.Config, year int, logger *log.Logger, w *audit.AuditWriter) (*Orchestrator, error) {
	set, err := dateparser.NewPatternSet(cfg.Patterns.Order)
	if err != nil {
		return nil, fmt.Errorf("failed to build pattern set: %w", err)
	}
	mode, err := organizer.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	return New(Options{
		Sources:     cfg.Sources,
		Destination: cfg.DestinationRoot(),
		Year:        year,
		Mode:        mode,
		ProbeLimit:  cfg.ProbeLimit,
		Resolver:    dateparser.NewResolver(set),
		Scan:        cfg.Scan.Options(),
		Workers:     cfg.Scan.Workers,
		Logger:      logger,
		Audit:       w,
	}), nil
}

// Options returns the effective options.
func (o *Orchestrator) Options() Options {
	return o.opts
}

// Run scans the sources and applies the resulting plan.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	plan, err := o.Plan(ctx)
	if err != nil {
		return nil, err
	}
	return o.Apply(ctx, plan)
}

// Apply creates the month folders and processes the planned files one by
// one in scan order. Per-file failures are collected in the summary; only a
// failed precondition returns an error. Cancelling ctx stops the batch at
// the next file boundary and marks the summary interrupted.
func (o *Orchestrator) Apply(ctx context.Context, plan *Plan) (*Summary, error) {
	start := time.Now()
	if err := o.prepareFolders(); err != nil {
		return nil, err
	}

	summary := newSummary(o.opts.Year, o.opts.Mode)
	summary.ScanErrors = append(summary.ScanErrors, plan.ScanErrors...)
	summary.TotalFiles = len(plan.Records)

	if o.opts.Audit != nil {
		runID, err := o.opts.Audit.StartRun(audit.RunTypeSort, o.opts.AppVersion, map[string]string{
			"year":        fmt.Sprint(o.opts.Year),
			"mode":        string(o.opts.Mode),
			"destination": o.opts.Destination,
		})
		if err != nil {
			o.log.Warn("audit journal unavailable", "err", err)
		} else {
			summary.RunID = runID
		}
	}

	if o.opts.Progress != nil {
		o.opts.Progress.StartProgress(len(plan.Records))
	}
	for i, rec := range plan.Records {
		if ctx.Err() != nil {
			summary.Interrupted = true
			o.log.Warn("run interrupted", "processed", i, "remaining", len(plan.Records)-i)
			break
		}
		if o.opts.Progress != nil {
			o.opts.Progress.UpdateProgress(i+1, rec.Name)
		}
		summary.add(o.process(rec))
	}
	if o.opts.Progress != nil {
		o.opts.Progress.EndProgress()
	}

	summary.Duration = time.Since(start)
	if summary.RunID != "" {
		if err := o.opts.Audit.EndRun(summary.RunID, summary.Status(), summary.AuditSummary()); err != nil {
			o.log.Warn("failed to close audit run", "err", err)
		}
	}
	return summary, nil
}

// prepareFolders makes sure all twelve month folders exist for the year.
func (o *Orchestrator) prepareFolders() error {
	if err := monthfolder.CheckYear(o.opts.Year); err != nil {
		return &PreconditionError{Reason: "year out of range", Err: err}
	}
	created, err := monthfolder.Ensure(o.opts.Fs, o.opts.Destination, o.opts.Year)
	if err != nil {
		return &PreconditionError{Reason: "cannot create month folders", Err: err}
	}
	if err := monthfolder.Verify(o.opts.Fs, o.opts.Destination, o.opts.Year); err != nil {
		return &PreconditionError{Reason: "month folders missing", Err: err}
	}
	o.log.Debug("month folders ready", "dest", o.opts.Destination, "year", o.opts.Year, "count", len(created))
	return nil
}

// process suffixes and places one file. The returned Operation carries the
// error when either step fails.
func (o *Orchestrator) process(rec scanner.Record) Operation {
	op := o.operationFor(rec)

	sr, err := organizer.ApplySuffix(o.opts.Fs, rec.Path, rec.Date, o.opts.ProbeLimit)
	if err != nil {
		op.Err = err
		o.fail(rec.Path, err, "suffix")
		return op
	}
	op.Renamed = sr.Renamed
	op.Collision = sr.Collision
	op.FinalPath = sr.Path
	if sr.Renamed {
		op.RenamedPath = sr.Path
		o.journal(func(w *audit.AuditWriter) error {
			return w.RecordSuffix(rec.Path, sr.Path, op.Date, sr.Collision)
		})
	}

	pr, err := organizer.Place(o.opts.Fs, sr.Path, o.opts.Destination, rec.Date, o.opts.Year, o.opts.Mode, o.opts.ProbeLimit)
	if err != nil {
		op.Err = err
		o.fail(sr.Path, err, "place")
		return op
	}
	op.FinalPath = pr.DestinationPath
	if pr.InPlace {
		op.InPlace = true
		o.log.Debug("already in its month folder", "file", pr.DestinationPath)
		return op
	}
	op.Collision = op.Collision || pr.Collision
	op.Bytes = pr.Bytes
	o.journal(func(w *audit.AuditWriter) error {
		return w.RecordPlace(sr.Path, pr.DestinationPath, string(pr.Mode), op.Date, pr.Collision)
	})
	o.log.Info("sorted", "file", rec.Name, "dest", pr.DestinationPath)
	return op
}

// operationFor fills the fields known before anything is touched.
func (o *Orchestrator) operationFor(rec scanner.Record) Operation {
	op := Operation{
		OriginalName: rec.Name,
		Suffix:       organizer.DateSuffix(rec.Date),
		Date:         rec.Date.ISO(),
		SourceDir:    rec.Dir,
	}
	if folder, err := monthfolder.Name(rec.Date.Month, o.opts.Year); err == nil {
		op.DestinationDir = filepath.Join(o.opts.Destination, folder)
	}
	return op
}

func (o *Orchestrator) fail(path string, err error, operation string) {
	o.log.Error("failed to sort file", "file", path, "op", operation, "err", err)
	errType := "UNKNOWN"
	var moveErr *organizer.MoveError
	if errors.As(err, &moveErr) {
		errType = string(moveErr.Type)
	}
	o.journal(func(w *audit.AuditWriter) error {
		return w.RecordError(path, errType, err.Error(), operation)
	})
}

// journal writes to the audit log when one is attached and a run is open.
func (o *Orchestrator) journal(write func(w *audit.AuditWriter) error) {
	if o.opts.Audit == nil {
		return
	}
	if err := write(o.opts.Audit); err != nil && !errors.Is(err, audit.ErrNoActiveRun) {
		o.log.Warn("audit write failed", "err", err)
	}
}

// ProcessPath sorts a single file, as watch mode does for each settled
// path. ok is false when the name does not resolve to a date in the year.
// Month folders are created on demand.
func (o *Orchestrator) ProcessPath(ctx context.Context, path string) (op Operation, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return Operation{}, false, err
	}
	name := filepath.Base(path)
	date, ok := o.opts.Resolver.Resolve(name, o.opts.Year)
	if !ok {
		return Operation{}, false, nil
	}
	if err := monthfolder.Verify(o.opts.Fs, o.opts.Destination, o.opts.Year); err != nil {
		if err := o.prepareFolders(); err != nil {
			return Operation{}, true, err
		}
	}
	op = o.process(scanner.Record{
		Path: path,
		Name: name,
		Dir:  filepath.Dir(path),
		Date: date,
	})
	return op, true, op.Err
}

// RenameFolders relabels the month folders under the destination from one
// year to another and journals each rename.
func (o *Orchestrator) RenameFolders(from, to int) (*monthfolder.RenameResult, error) {
	result, err := monthfolder.Rename(o.opts.Fs, o.opts.Destination, from, to)
	if err != nil {
		return result, err
	}
	if o.opts.Audit != nil && len(result.Renamed) > 0 {
		runID, err := o.opts.Audit.StartRun(audit.RunTypeFolders, o.opts.AppVersion, map[string]string{
			"from": fmt.Sprint(from),
			"to":   fmt.Sprint(to),
		})
		if err != nil {
			o.log.Warn("audit journal unavailable", "err", err)
			return result, nil
		}
		for _, newPath := range result.Renamed {
			month, _, _ := monthfolder.Parse(filepath.Base(newPath))
			oldName, _ := monthfolder.Name(month, from)
			o.journal(func(w *audit.AuditWriter) error {
				return w.RecordFolderRename(filepath.Join(o.opts.Destination, oldName), newPath)
			})
		}
		if err := o.opts.Audit.EndRun(runID, audit.RunStatusCompleted, audit.RunSummary{}); err != nil {
			o.log.Warn("failed to close audit run", "err", err)
		}
	}
	for _, p := range result.Renamed {
		o.log.Info("renamed folder", "dest", p)
	}
	return result, nil
}
