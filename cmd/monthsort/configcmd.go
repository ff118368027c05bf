package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"monthsort/internal/config"
)

var flagForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or check the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration to --config",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(flagConfig); err == nil && !flagForce {
			return fmt.Errorf("%s already exists; pass --force to overwrite", flagConfig)
		}
		cfg := config.NewDefaultConfig()
		applyFlags(cfg)
		if err := config.Save(cfg, flagConfig); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", flagConfig)
		return nil
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and its source and destination paths",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		result := config.CheckPaths(a.cfg)
		for _, w := range result.Warnings {
			a.out.Info("warning: %s: %s", w.Field, w.Message)
		}
		for _, e := range result.Errors {
			a.out.Error("error: %s: %s", e.Field, e.Message)
		}
		if !result.Valid {
			return errors.New("configuration has path errors")
		}
		a.out.Info("Configuration OK (year %d, %s into %s).", a.year, a.cfg.Mode, a.cfg.DestinationRoot())
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&flagForce, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configCheckCmd)
	rootCmd.AddCommand(configCmd)
}
