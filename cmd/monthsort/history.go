package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"monthsort/internal/audit"
	"monthsort/internal/dateparser"
	"monthsort/internal/output"
)

var (
	flagErrorsOnly bool
	flagRunDate    string
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id|latest]",
	Short: "List journaled runs, or the events of one run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		reader := audit.NewAuditReader(a.auditDir())

		if len(args) == 0 {
			runs, err := reader.ListRuns()
			if err != nil {
				return err
			}
			if flagRunDate != "" {
				day, err := dateparser.ParseISO(flagRunDate)
				if err != nil {
					return fmt.Errorf("--date: %w", err)
				}
				runs = runsOn(runs, day)
				if len(runs) == 0 {
					a.out.Info("No runs started on %s.", day)
					return nil
				}
			}
			if len(runs) == 0 {
				a.out.Info("No runs recorded in %s.", reader.Dir())
				return nil
			}
			a.out.Block(output.RunTable(runs))
			return nil
		}

		var run *audit.RunInfo
		if args[0] == "latest" {
			run, err = reader.GetLatestRun()
		} else {
			run, err = reader.GetRunByID(audit.RunID(args[0]))
		}
		if err != nil {
			return err
		}

		filter := audit.EventFilter{}
		if flagErrorsOnly {
			filter.EventTypes = []audit.EventType{audit.EventError}
		}
		events, err := reader.FilterEvents(run.RunID, filter)
		if err != nil {
			return err
		}
		a.out.Block(output.RunTable([]audit.RunInfo{*run}))
		a.out.Block(output.EventTable(events))
		return nil
	},
}

// runsOn keeps the runs that started on day, in local time.
func runsOn(runs []audit.RunInfo, day dateparser.Date) []audit.RunInfo {
	var kept []audit.RunInfo
	for _, r := range runs {
		y, m, d := r.StartTime.Local().Date()
		if y == day.Year && int(m) == day.Month && d == day.Day {
			kept = append(kept, r)
		}
	}
	return kept
}

func init() {
	historyCmd.Flags().BoolVar(&flagErrorsOnly, "errors", false, "show only ERROR events")
	historyCmd.Flags().StringVar(&flagRunDate, "date", "", "list only runs started on this day (YYYY-MM-DD)")
	rootCmd.AddCommand(historyCmd)
}
