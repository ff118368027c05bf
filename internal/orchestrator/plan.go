package orchestrator

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"monthsort/internal/monthfolder"
	"monthsort/internal/scanner"
)

// Plan is the dry-run view of a batch: the dated files in processing order
// and what would happen to each of them.
type Plan struct {
	Year        int
	Destination string
	Records     []scanner.Record
	Operations  []Operation
	ScanErrors  []error
}

// sourceScan holds the outcome of scanning one source root.
type sourceScan struct {
	records []scanner.Record
	errs    []error
}

// Plan scans every source and computes the planned operations without
// modifying anything. Sources are scanned concurrently, bounded by
// Options.Workers, and their results are concatenated in configured order.
func (o *Orchestrator) Plan(ctx context.Context) (*Plan, error) {
	if err := monthfolder.CheckYear(o.opts.Year); err != nil {
		return nil, &PreconditionError{Reason: "year out of range", Err: err}
	}

	results := make([]sourceScan, len(o.opts.Sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Workers)
	for i, source := range o.opts.Sources {
		g.Go(func() error {
			for rec, err := range scanner.Dated(o.opts.Fs, source, o.opts.Resolver, o.opts.Year, o.opts.Scan) {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err != nil {
					results[i].errs = append(results[i].errs, fmt.Errorf("failed to scan %s: %w", source, err))
					continue
				}
				results[i].records = append(results[i].records, rec)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	plan := &Plan{
		Year:        o.opts.Year,
		Destination: o.opts.Destination,
		Records:     make([]scanner.Record, 0),
		Operations:  make([]Operation, 0),
		ScanErrors:  make([]error, 0),
	}
	for _, r := range results {
		plan.Records = append(plan.Records, r.records...)
		plan.ScanErrors = append(plan.ScanErrors, r.errs...)
	}
	for _, rec := range plan.Records {
		plan.Operations = append(plan.Operations, o.operationFor(rec))
	}
	for _, err := range plan.ScanErrors {
		o.log.Warn("scan error", "err", err)
	}
	o.log.Debug("plan ready", "files", len(plan.Records), "year", o.opts.Year)
	return plan, nil
}

// FolderCount is the number of planned files headed for one month folder.
type FolderCount struct {
	Folder string
	Count  int
}

// ByDestination groups the planned files by month folder, in month order.
func (p *Plan) ByDestination() []FolderCount {
	counts := make(map[string]int)
	for _, op := range p.Operations {
		counts[op.DestinationDir]++
	}
	grouped := make([]FolderCount, 0, len(counts))
	for folder, n := range counts {
		grouped = append(grouped, FolderCount{Folder: folder, Count: n})
	}
	// "(MM)" prefixes sort by month.
	sort.Slice(grouped, func(i, j int) bool { return grouped[i].Folder < grouped[j].Folder })
	return grouped
}
