// Package monthfolder names, creates and renames the per-month destination folders.
package monthfolder

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/spf13/afero"

	"monthsort/internal/dateparser"
)

// Supported year range for folder names.
const (
	MinYear = 1900
	MaxYear = 2100
)

// RangeError reports a month or year outside the supported range.
type RangeError struct {
	Field string
	Value int
}

func (e *RangeError) Error() string {
	switch e.Field {
	case "month":
		return fmt.Sprintf("month %d is out of range (1-12)", e.Value)
	default:
		return fmt.Sprintf("year %d is out of range (%d-%d)", e.Value, MinYear, MaxYear)
	}
}

// CheckYear returns a *RangeError when year is outside MinYear..MaxYear.
func CheckYear(year int) error {
	if year < MinYear || year > MaxYear {
		return &RangeError{Field: "year", Value: year}
	}
	return nil
}

// Name returns the canonical folder name "(MM)Mon-YYYY", e.g. "(03)Mar-2024".
func Name(month, year int) (string, error) {
	abbr, ok := dateparser.MonthAbbr(month)
	if !ok {
		return "", &RangeError{Field: "month", Value: month}
	}
	if err := CheckYear(year); err != nil {
		return "", err
	}
	return fmt.Sprintf("(%02d)%s-%d", month, abbr, year), nil
}

var namePattern = regexp.MustCompile(`^\((\d{2})\)([A-Z][a-z]{2})-(\d{4})$`)

// Parse is the inverse of Name. It reports ok only for names Name could have produced.
func Parse(name string) (month, year int, ok bool) {
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, false
	}
	month, _ = strconv.Atoi(m[1])
	year, _ = strconv.Atoi(m[3])
	canonical, err := Name(month, year)
	if err != nil || canonical != name {
		return 0, 0, false
	}
	return month, year, true
}

// Paths returns the twelve folder paths for year under base, January first.
func Paths(base string, year int) ([]string, error) {
	paths := make([]string, 0, 12)
	for month := 1; month <= 12; month++ {
		name, err := Name(month, year)
		if err != nil {
			return nil, err
		}
		paths = append(paths, filepath.Join(base, name))
	}
	return paths, nil
}

// Ensure creates the twelve month folders for year under base. Existing
// folders are left alone.
func Ensure(fsys afero.Fs, base string, year int) ([]string, error) {
	paths, err := Paths(base, year)
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		if err := fsys.MkdirAll(p, 0755); err != nil {
			return nil, fmt.Errorf("create month folder %s: %w", p, err)
		}
	}
	return paths, nil
}

// MissingError lists month folders that should exist but do not.
type MissingError struct {
	Paths []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%d month folder(s) missing, first: %s", len(e.Paths), e.Paths[0])
}

// Verify checks that all twelve month folders for year exist under base.
func Verify(fsys afero.Fs, base string, year int) error {
	paths, err := Paths(base, year)
	if err != nil {
		return err
	}
	var missing []string
	for _, p := range paths {
		ok, err := afero.DirExists(fsys, p)
		if err != nil {
			return fmt.Errorf("stat month folder %s: %w", p, err)
		}
		if !ok {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return &MissingError{Paths: missing}
	}
	return nil
}

// RenameResult reports what Rename did for each month.
type RenameResult struct {
	Renamed []string // new paths created by a rename
	Skipped []string // new paths that already existed
	Missing []string // old paths that did not exist
}

// Rename relabels the month folders of year from as year to. A month whose
// target already exists, or whose source is absent, is skipped, so running
// Rename again after a partial pass is safe.
func Rename(fsys afero.Fs, base string, from, to int) (*RenameResult, error) {
	if err := CheckYear(from); err != nil {
		return nil, err
	}
	if err := CheckYear(to); err != nil {
		return nil, err
	}

	result := &RenameResult{}
	for month := 1; month <= 12; month++ {
		oldName, _ := Name(month, from)
		newName, _ := Name(month, to)
		oldPath := filepath.Join(base, oldName)
		newPath := filepath.Join(base, newName)

		info, err := fsys.Stat(oldPath)
		if err != nil || !info.IsDir() {
			if err != nil && !os.IsNotExist(err) {
				return result, fmt.Errorf("stat %s: %w", oldPath, err)
			}
			result.Missing = append(result.Missing, oldPath)
			continue
		}

		exists, err := afero.Exists(fsys, newPath)
		if err != nil {
			return result, fmt.Errorf("stat %s: %w", newPath, err)
		}
		if exists {
			result.Skipped = append(result.Skipped, newPath)
			continue
		}

		if err := fsys.Rename(oldPath, newPath); err != nil {
			return result, fmt.Errorf("rename %s to %s: %w", oldPath, newPath, err)
		}
		result.Renamed = append(result.Renamed, newPath)
	}
	return result, nil
}
