package main

import (
	"errors"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"monthsort/internal/monthfolder"
)

var (
	flagFrom int
	flagTo   int
)

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "Manage the month folders",
}

var foldersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the twelve month folders for the year",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		dest := a.cfg.DestinationRoot()
		created, err := monthfolder.Ensure(afero.NewOsFs(), dest, a.year)
		if err != nil {
			return err
		}
		paths, err := monthfolder.Paths(dest, a.year)
		if err != nil {
			return err
		}
		a.out.Info("Created/verified these month folders:")
		for _, p := range paths {
			a.out.Info("    - %s", p)
		}
		a.out.Info("Folders ready (%d new).", len(created))
		return nil
	},
}

var foldersRenameCmd = &cobra.Command{
	Use:   "rename",
	Short: "Relabel the month folders of one year as another year",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagFrom == 0 || flagTo == 0 {
			return errors.New("both --from and --to are required")
		}
		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.close()

		orch, err := a.orchestrator()
		if err != nil {
			return err
		}
		result, err := orch.RenameFolders(flagFrom, flagTo)
		if err != nil {
			return err
		}
		for _, p := range result.Renamed {
			a.out.Info("Renamed: %s", p)
		}
		for _, p := range result.Skipped {
			a.out.Info("Skipped (already exists): %s", p)
		}
		a.out.Verbose("%d folders of %d were not present", len(result.Missing), flagFrom)
		a.out.Info("%d folders renamed, %d skipped.", len(result.Renamed), len(result.Skipped))
		return nil
	},
}

func init() {
	foldersRenameCmd.Flags().IntVar(&flagFrom, "from", 0, "year the folders are labelled with now")
	foldersRenameCmd.Flags().IntVar(&flagTo, "to", 0, "year to relabel them as")
	foldersCmd.AddCommand(foldersCreateCmd, foldersRenameCmd)
	rootCmd.AddCommand(foldersCmd)
}
