package watcher

import (
	"path/filepath"
	"regexp"
	"strings"

	"monthsort/internal/monthfolder"
)

// DefaultIgnorePatterns returns the patterns for partial downloads and
// editor temp files.
func DefaultIgnorePatterns() []string {
	return []string{
		"*.tmp",
		"*.part",
		"*.download",
		"*.crdownload", // Chrome partial downloads
		"*.partial",
		".*", // dotfiles, including .~lock files
	}
}

// sortedStem matches a stem ending in the date suffix, optionally followed
// by a collision counter.
var sortedStem = regexp.MustCompile(`-\d{8}(_\d+)?$`)

// FileFilter decides which paths the watcher hands to the sorter.
type FileFilter struct {
	patterns []string
}

// NewFileFilter creates a FileFilter. An empty pattern list means the defaults.
func NewFileFilter(patterns []string) *FileFilter {
	if len(patterns) == 0 {
		patterns = DefaultIgnorePatterns()
	}
	lower := make([]string, len(patterns))
	for i, p := range patterns {
		lower[i] = strings.ToLower(p)
	}
	return &FileFilter{patterns: lower}
}

// ShouldIgnore reports whether the base name of path matches an ignore
// glob. Matching is case-insensitive, so "*.tmp" also drops "SETUP.TMP".
func (f *FileFilter) ShouldIgnore(path string) bool {
	filename := strings.ToLower(filepath.Base(path))
	for _, pattern := range f.patterns {
		if matched, err := filepath.Match(pattern, filename); err == nil && matched {
			return true
		}
	}
	return false
}

// AlreadySorted reports whether path looks like a file the sorter itself
// produced: it sits in a month folder and its stem ends in the date suffix.
func AlreadySorted(path string) bool {
	if _, _, ok := monthfolder.Parse(filepath.Base(filepath.Dir(path))); !ok {
		return false
	}
	name := filepath.Base(path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return sortedStem.MatchString(stem)
}

// Patterns returns a copy of the ignore patterns.
func (f *FileFilter) Patterns() []string {
	result := make([]string, len(f.patterns))
	copy(result, f.patterns)
	return result
}
