package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"monthsort/internal/dateparser"
	"monthsort/internal/output"
)

var explainCmd = &cobra.Command{
	Use:   "explain <name>...",
	Short: "Show how each date pattern handles a file name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		set, err := dateparser.NewPatternSet(a.cfg.Patterns.Order)
		if err != nil {
			return fmt.Errorf("failed to build pattern set: %w", err)
		}
		resolver := dateparser.NewResolver(set)
		for _, name := range args {
			a.out.Block(output.AttemptTable(name, a.year, resolver.Explain(name, a.year)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)
}
