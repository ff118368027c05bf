// Package prompt drives the interactive sorting session: it asks for the
// base directory, year, source and transfer mode, shows what would happen
// and applies it after confirmation.
package prompt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"monthsort/internal/monthfolder"
	"monthsort/internal/organizer"
)

// ErrAborted is returned when the user leaves a prompt with ctrl+c or esc.
var ErrAborted = errors.New("prompt aborted")

// Asker collects the answers the session needs.
type Asker interface {
	// Directory asks for a directory path. The answer is returned as typed.
	Directory(title, initial string) (string, error)
	// Year asks for a year between 1900 and 2100, returning def when the
	// answer is empty.
	Year(def int) (int, error)
	Mode(initial organizer.Mode) (organizer.Mode, error)
	Confirm(title string, initial bool) (bool, error)
	// Target asks whether files go into base or another directory and
	// reports true for base.
	Target(base string) (bool, error)
}

// Forms is the terminal Asker built on huh forms.
type Forms struct {
	theme      *huh.Theme
	accessible bool
}

// NewForms returns a Forms using the charm theme.
func NewForms() *Forms {
	return &Forms{theme: huh.ThemeCharm()}
}

// WithAccessible switches to plain line prompts, for screen readers and
// terminals that cannot draw the forms.
func (f *Forms) WithAccessible(accessible bool) *Forms {
	f.accessible = accessible
	return f
}

func (f *Forms) run(fields ...huh.Field) error {
	err := huh.NewForm(huh.NewGroup(fields...)).
		WithTheme(f.theme).
		WithAccessible(f.accessible).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}

func (f *Forms) Directory(title, initial string) (string, error) {
	value := initial
	err := f.run(huh.NewInput().
		Title(title).
		Value(&value).
		Validate(func(s string) error {
			if cleanPath(s) == "" {
				return errors.New("a directory is required")
			}
			return nil
		}))
	if err != nil {
		return "", err
	}
	return value, nil
}

func (f *Forms) Year(def int) (int, error) {
	value := ""
	err := f.run(huh.NewInput().
		Title("Year for the month folders").
		Description(fmt.Sprintf("Leave empty for %d", def)).
		Placeholder(strconv.Itoa(def)).
		Value(&value).
		Validate(func(s string) error {
			_, err := parseYear(s, def)
			return err
		}))
	if err != nil {
		return 0, err
	}
	return parseYear(value, def)
}

func (f *Forms) Mode(initial organizer.Mode) (organizer.Mode, error) {
	mode := initial
	err := f.run(huh.NewSelect[organizer.Mode]().
		Title("Move or copy files?").
		Options(
			huh.NewOption("COPY: copy to the destination, keep the originals", organizer.ModeCopy),
			huh.NewOption("MOVE: cut from the source, saves space", organizer.ModeMove),
		).
		Value(&mode))
	if err != nil {
		return "", err
	}
	return mode, nil
}

func (f *Forms) Confirm(title string, initial bool) (bool, error) {
	value := initial
	err := f.run(huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&value))
	if err != nil {
		return false, err
	}
	return value, nil
}

func (f *Forms) Target(base string) (bool, error) {
	useBase := true
	err := f.run(huh.NewSelect[bool]().
		Title("Where should the files be sorted?").
		Options(
			huh.NewOption("A) the base directory ("+base+")", true),
			huh.NewOption("B) another directory", false),
		).
		Value(&useBase))
	if err != nil {
		return false, err
	}
	return useBase, nil
}

// parseYear validates a typed year. Empty input selects def.
func parseYear(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	year, err := strconv.Atoi(s)
	if err != nil || len(s) != 4 {
		return 0, fmt.Errorf("enter a 4-digit year (e.g. %d)", def)
	}
	if err := monthfolder.CheckYear(year); err != nil {
		return 0, err
	}
	return year, nil
}

// cleanPath trims whitespace and surrounding quotes, as left behind by
// drag-and-drop into a terminal.
func cleanPath(s string) string {
	return strings.Trim(s, " \t\"'")
}
