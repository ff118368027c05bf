package prompt

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"monthsort/internal/config"
	"monthsort/internal/monthfolder"
	"monthsort/internal/orchestrator"
	"monthsort/internal/organizer"
	"monthsort/internal/output"
)

// Builder returns an orchestrator for one pass of the session.
type Builder func(sources []string, destination string, year int, mode organizer.Mode) *orchestrator.Orchestrator

// Session is the interactive loop: pick a year, scan a source, review the
// planned operations and apply them, then optionally go again.
type Session struct {
	Ask   Asker
	Out   *output.Output
	Fs    afero.Fs
	Build Builder
	Now   func() time.Time
}

// Run drives the session until the user is done. It returns ErrAborted when
// a prompt is abandoned and ctx.Err() when ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	if s.Fs == nil {
		s.Fs = afero.NewOsFs()
	}
	if s.Now == nil {
		s.Now = time.Now
	}

	s.Out.Info("=== monthsort: month folders and file sorter ===")
	base, err := s.directory("Base directory for the month folders")
	if err != nil {
		return err
	}

	prevYear := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		year, err := s.Ask.Year(s.defaultYear(prevYear))
		if err != nil {
			return err
		}
		if err := s.prepareFolders(base, year); err != nil {
			return err
		}

		src, err := s.directory("Directory to scan recursively")
		if err != nil {
			return err
		}
		scan := s.Build([]string{src}, base, year, organizer.ModeCopy)
		plan, err := scan.Plan(ctx)
		if err != nil {
			return err
		}
		if len(plan.Records) == 0 {
			s.Out.Info("No files found in %s matching year %d.", src, year)
			retry, err := s.Ask.Confirm("Try with a different year?", true)
			if err != nil {
				return err
			}
			if !retry {
				s.Out.Info("No matching files found. Exiting.")
				return nil
			}
			newYear, err := s.Ask.Year(s.Now().Year())
			if err != nil {
				return err
			}
			if newYear != year {
				s.renameFolders(scan, year, newYear)
			}
			prevYear = newYear
			continue
		}

		if err := s.showFiles(plan); err != nil {
			return err
		}

		done, err := s.sort(ctx, base, src, year)
		if err != nil {
			return err
		}
		if done {
			s.Out.Info("All done. Your files are sorted into their month folders.")
			return nil
		}
		prevYear = year
	}
}

// sort asks for the mode and destination, shows the planned operations and
// applies them on confirmation. done reports that the user wants to stop.
func (s *Session) sort(ctx context.Context, base, src string, year int) (done bool, err error) {
	mode, err := s.Ask.Mode(organizer.ModeCopy)
	if err != nil {
		return false, err
	}
	useBase, err := s.Ask.Target(base)
	if err != nil {
		return false, err
	}
	target := base
	if !useBase {
		if target, err = s.directory("Destination directory"); err != nil {
			return false, err
		}
	}

	orch := s.Build([]string{src}, target, year, mode)
	plan, err := orch.Plan(ctx)
	if err != nil {
		return false, err
	}
	if err := s.showOperations(plan); err != nil {
		return false, err
	}

	proceed, err := s.Ask.Confirm("Proceed with the file operation?", false)
	if err != nil {
		return false, err
	}
	if proceed {
		summary, err := orch.Apply(ctx, plan)
		if err != nil {
			s.Out.Error("Error: %v", err)
		} else {
			s.Out.Info("%s", summary)
			s.Out.Block(output.SummaryText(summary))
			if summary.ErrorCount > 0 {
				s.Out.Block(output.FailureTable(summary.Failed()))
			}
		}
	} else {
		s.Out.Info("Operation canceled.")
	}

	more, err := s.Ask.Confirm("Do you want to sort more files?", false)
	if err != nil {
		return false, err
	}
	return !more, nil
}

// directory asks until the answer names a directory that exists or can be
// created.
func (s *Session) directory(title string) (string, error) {
	for {
		answer, err := s.Ask.Directory(title, "")
		if err != nil {
			return "", err
		}
		dir := config.ExpandHome(cleanPath(answer))
		if dir == "" {
			s.Out.Error("Please enter a directory.")
			continue
		}
		if err := s.Fs.MkdirAll(dir, 0755); err != nil {
			s.Out.Error("Error: %v", err)
			continue
		}
		return dir, nil
	}
}

func (s *Session) defaultYear(prev int) int {
	if prev != 0 {
		return prev
	}
	return s.Now().Year()
}

func (s *Session) prepareFolders(base string, year int) error {
	if _, err := monthfolder.Ensure(s.Fs, base, year); err != nil {
		return fmt.Errorf("failed to create month folders: %w", err)
	}
	paths, err := monthfolder.Paths(base, year)
	if err != nil {
		return err
	}
	s.Out.Info("Created/verified these month folders:")
	for _, p := range paths {
		s.Out.Info("    - %s", p)
	}
	s.Out.Info("Folders ready.")
	return nil
}

func (s *Session) renameFolders(orch *orchestrator.Orchestrator, from, to int) {
	result, err := orch.RenameFolders(from, to)
	if err != nil {
		s.Out.Error("Error: failed to rename month folders: %v", err)
		return
	}
	for _, p := range result.Renamed {
		s.Out.Info("Renamed folder to %s", p)
	}
	for _, p := range result.Skipped {
		s.Out.Info("Skipped %s: target already exists", p)
	}
}

func (s *Session) showFiles(plan *orchestrator.Plan) error {
	n := len(plan.Records)
	s.Out.Block(output.FileTable("Matched files", plan.Records, 0, output.PageSize))
	if n <= output.PageSize {
		return nil
	}
	all, err := s.Ask.Confirm(fmt.Sprintf("There are %d files. See all?", n), false)
	if err != nil {
		return err
	}
	if all {
		s.Out.Block(output.FileTable("All matched files", plan.Records, 0, 0))
	}
	return nil
}

func (s *Session) showOperations(plan *orchestrator.Plan) error {
	n := len(plan.Operations)
	s.Out.Block(output.OperationTable(plan.Operations, 0, output.PageSize))
	if n <= output.PageSize {
		return nil
	}
	all, err := s.Ask.Confirm(fmt.Sprintf("Show all %d planned file operations?", n), false)
	if err != nil {
		return err
	}
	if all {
		s.Out.Block(output.OperationTable(plan.Operations, 0, 0))
	}
	return nil
}
