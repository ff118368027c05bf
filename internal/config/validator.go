package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ValidationSeverity represents the severity of a validation issue.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
)

// ConfigValidationError represents a single validation issue.
type ConfigValidationError struct {
	Field    string             // Config field with issue (e.g., "sources[0]")
	Message  string             // Human-readable description
	Severity ValidationSeverity // "error" or "warning"
}

// ValidationResult contains all path findings.
type ValidationResult struct {
	Errors   []ConfigValidationError
	Warnings []ConfigValidationError
	Valid    bool // True if no errors (warnings OK)
}

// CheckPaths inspects the filesystem for the configured sources and
// destination. Unlike Validate it reports every finding instead of the first.
func CheckPaths(cfg *Config) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ConfigValidationError{},
		Warnings: []ConfigValidationError{},
	}
	add := func(issues []ConfigValidationError) {
		for _, issue := range issues {
			if issue.Severity == SeverityError {
				result.Errors = append(result.Errors, issue)
			} else {
				result.Warnings = append(result.Warnings, issue)
			}
		}
	}

	add(checkSources(cfg))
	add(checkDestination(cfg))
	add(checkOverlap(cfg))

	result.Valid = len(result.Errors) == 0
	return result
}

func checkSources(cfg *Config) []ConfigValidationError {
	var issues []ConfigValidationError
	if len(cfg.Sources) == 0 {
		return []ConfigValidationError{{
			Field:    "sources",
			Message:  "no source directories configured",
			Severity: SeverityError,
		}}
	}

	seen := make(map[string]int)
	for i, dir := range cfg.Sources {
		field := formatField("sources", i)
		clean := filepath.Clean(dir)
		if first, dup := seen[clean]; dup {
			issues = append(issues, ConfigValidationError{
				Field:    field,
				Message:  "duplicate source, same as sources[" + strconv.Itoa(first) + "]",
				Severity: SeverityWarning,
			})
			continue
		}
		seen[clean] = i

		info, err := os.Stat(dir)
		switch {
		case os.IsNotExist(err):
			issues = append(issues, ConfigValidationError{Field: field, Message: "directory does not exist: " + dir, Severity: SeverityError})
		case os.IsPermission(err):
			issues = append(issues, ConfigValidationError{Field: field, Message: "directory is not accessible: " + dir, Severity: SeverityError})
		case err != nil:
			issues = append(issues, ConfigValidationError{Field: field, Message: "error accessing directory: " + err.Error(), Severity: SeverityError})
		case !info.IsDir():
			issues = append(issues, ConfigValidationError{Field: field, Message: "path is not a directory: " + dir, Severity: SeverityError})
		}
	}
	return issues
}

// checkDestination accepts an existing directory, or a missing one whose
// parent is a writable directory, since month folders are created on demand.
func checkDestination(cfg *Config) []ConfigValidationError {
	dest := cfg.DestinationRoot()
	field := "destination"
	if cfg.Destination == "" {
		field = "base"
	}

	info, err := os.Stat(dest)
	if err == nil {
		if !info.IsDir() {
			return []ConfigValidationError{{Field: field, Message: "path exists but is not a directory: " + dest, Severity: SeverityError}}
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return []ConfigValidationError{{Field: field, Message: "error accessing directory: " + err.Error(), Severity: SeverityError}}
	}

	parent := filepath.Dir(dest)
	parentInfo, err := os.Stat(parent)
	if err != nil || !parentInfo.IsDir() {
		return []ConfigValidationError{{Field: field, Message: "parent directory does not exist: " + parent, Severity: SeverityError}}
	}
	if !isDirectoryWritable(parent) {
		return []ConfigValidationError{{Field: field, Message: "parent directory is not writable: " + parent, Severity: SeverityError}}
	}
	return []ConfigValidationError{{Field: field, Message: "directory will be created: " + dest, Severity: SeverityWarning}}
}

// checkOverlap warns when the destination sits inside a source, because a
// later scan of that source will walk the month folders too.
func checkOverlap(cfg *Config) []ConfigValidationError {
	var issues []ConfigValidationError
	dest := cfg.DestinationRoot()
	for i, src := range cfg.Sources {
		if isWithin(dest, src) {
			issues = append(issues, ConfigValidationError{
				Field:    formatField("sources", i),
				Message:  "destination " + dest + " is inside source " + src + "; already sorted files will be rescanned",
				Severity: SeverityWarning,
			})
		}
	}
	return issues
}

// isWithin reports whether path equals dir or lies below it.
func isWithin(path, dir string) bool {
	p := filepath.Clean(path)
	d := filepath.Clean(dir)
	return p == d || strings.HasPrefix(p, d+string(filepath.Separator))
}

func formatField(name string, index int) string {
	return name + "[" + strconv.Itoa(index) + "]"
}

func isDirectoryWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".monthsort_write_test*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}
