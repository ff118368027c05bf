package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"monthsort/internal/orchestrator"
	"monthsort/internal/organizer"
	"monthsort/internal/output"
	"monthsort/internal/prompt"
)

var flagYes bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Suffix and sort dated files from the sources into month folders",
	Args:  cobra.NoArgs,
	RunE:  runSort,
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what run would do without touching any file",
	Args:  cobra.NoArgs,
	RunE:  runPlan,
}

func init() {
	runCmd.Flags().BoolVar(&flagYes, "yes", false, "skip the confirmation step")
	rootCmd.AddCommand(runCmd, planCmd)
}

func runSort(cmd *cobra.Command, args []string) error {
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
	plan, err := orch.Plan(cmd.Context())
	if err != nil {
		return err
	}
	if len(plan.Records) == 0 {
		a.out.Info("No files found matching year %d.", a.year)
		return nil
	}

	if !flagYes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return errors.New("refusing to sort without confirmation on a non-interactive terminal; pass --yes")
		}
		a.out.Block(output.FileTable("Matched files", plan.Records, 0, output.PageSize))
		a.out.Block(output.OperationTable(plan.Operations, 0, output.PageSize))
		verb := "Copy"
		if orch.Options().Mode == organizer.ModeMove {
			verb = "Move"
		}
		proceed, err := prompt.NewForms().Confirm(
			fmt.Sprintf("%s %d files into %s?", verb, len(plan.Records), orch.Options().Destination), false)
		if err != nil {
			if errors.Is(err, prompt.ErrAborted) {
				a.out.Info("Operation canceled.")
				return nil
			}
			return err
		}
		if !proceed {
			a.out.Info("Operation canceled.")
			return nil
		}
	}

	summary, err := orch.Apply(cmd.Context(), plan)
	if err != nil {
		return err
	}
	return report(a, summary)
}

// report prints the end-of-run summary and failures.
func report(a *app, summary *orchestrator.Summary) error {
	a.out.Block(output.SummaryText(summary))
	if summary.ErrorCount > 0 {
		a.out.Block(output.FailureTable(summary.Failed()))
	}
	if summary.RunID != "" {
		a.out.Verbose("Audit run: %s", summary.RunID)
	}
	if summary.HasErrors() {
		return errFilesFailed
	}
	return nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	if err := a.requireSources(); err != nil {
		return err
	}

	orch, err := a.orchestrator()
	if err != nil {
		return err
	}
	plan, err := orch.Plan(cmd.Context())
	if err != nil {
		return err
	}
	if len(plan.Records) == 0 {
		a.out.Info("No files found matching year %d.", a.year)
		return nil
	}
	a.out.Block(output.OperationTable(plan.Operations, 0, 0))
	a.out.Block(output.FolderTable("Files per month folder", plan.ByDestination()))
	return nil
}
