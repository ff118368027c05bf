package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"monthsort/internal/audit"
	"monthsort/internal/orchestrator"
	"monthsort/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the sources and sort new files once they settle",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.requireSources(); err != nil {
		return err
	}

	orch, err := a.orchestrator()
	if err != nil {
		return err
	}
	// Watch mode sorts one file at a time; the progress line is for batches.
	opts := orch.Options()
	opts.Progress = nil
	orch = orchestrator.New(opts)

	var runID audit.RunID
	if a.audit != nil {
		runID, err = a.audit.StartRun(audit.RunTypeWatch, appVersion, map[string]string{
			"year":        fmt.Sprint(a.year),
			"mode":        string(opts.Mode),
			"destination": opts.Destination,
		})
		if err != nil {
			a.log.Warn("audit journal unavailable", "err", err)
		}
	}

	w := watcher.New(watcher.Config{
		Debounce: a.cfg.Watch.Debounce(),
		Stable:   a.cfg.Watch.Stable(),
		Ignore:   a.cfg.Watch.Ignore,
	}, sortHandler(orch), a.log)

	a.out.Info("Watching %d source(s) for %d files. Press Ctrl+C to stop.", len(a.cfg.Sources), a.year)
	summary, err := w.Run(cmd.Context(), a.cfg.Sources)
	if err != nil {
		return err
	}

	if runID != "" {
		err := a.audit.EndRun(runID, audit.RunStatusCompleted, audit.RunSummary{
			TotalFiles: summary.Sorted + summary.Unmatched + summary.Failed,
			Placed:     summary.Sorted,
			Errors:     summary.Failed,
		})
		if err != nil {
			a.log.Warn("failed to close audit run", "err", err)
		}
	}
	a.out.Info("Watched for %s: %d sorted, %d unmatched, %d skipped, %d failed.",
		summary.Duration.Round(time.Second), summary.Sorted, summary.Unmatched, summary.Skipped, summary.Failed)
	return nil
}

// sortHandler adapts ProcessPath to the watcher. The renamed source and the
// placed file are reported as produced so their own events are not sorted
// again.
func sortHandler(orch *orchestrator.Orchestrator) watcher.Handler {
	return func(ctx context.Context, path string) (watcher.Result, error) {
		op, ok, err := orch.ProcessPath(ctx, path)
		if !ok && err == nil {
			return watcher.Result{Outcome: watcher.Unmatched}, nil
		}
		result := watcher.Result{Outcome: watcher.Sorted}
		if op.RenamedPath != "" {
			result.Produced = append(result.Produced, op.RenamedPath)
		}
		if op.FinalPath != "" && op.FinalPath != op.RenamedPath && !op.InPlace {
			result.Produced = append(result.Produced, op.FinalPath)
		}
		return result, err
	}
}
