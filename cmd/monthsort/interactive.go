package main

import (
	"errors"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"monthsort/internal/orchestrator"
	"monthsort/internal/organizer"
	"monthsort/internal/prompt"
)

var flagAccessible bool

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Walk through a sort step by step with prompts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.close()

		orch, err := a.orchestrator()
		if err != nil {
			return err
		}
		defaults := orch.Options()

		session := &prompt.Session{
			Ask: prompt.NewForms().WithAccessible(flagAccessible),
			Out: a.out,
			Fs:  afero.NewOsFs(),
			Build: func(sources []string, destination string, year int, mode organizer.Mode) *orchestrator.Orchestrator {
				opts := defaults
				opts.Sources = sources
				opts.Destination = destination
				opts.Year = year
				opts.Mode = mode
				return orchestrator.New(opts)
			},
		}
		err = session.Run(cmd.Context())
		if errors.Is(err, prompt.ErrAborted) {
			a.out.Info("Interrupted")
			return nil
		}
		return err
	},
}

func init() {
	interactiveCmd.Flags().BoolVar(&flagAccessible, "accessible", false, "use plain line prompts")
	rootCmd.AddCommand(interactiveCmd)
}
