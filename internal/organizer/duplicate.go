// Package organizer renames files with their date suffix and places them into month folders.
package organizer

import (
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"
)

// DefaultProbeLimit bounds how many "_N" variants are tried before a name is
// considered exhausted.
const DefaultProbeLimit = 10000

// ProbeName returns the first free path in dir for stem+ext, trying the bare
// name first and then stem_1.ext, stem_2.ext, ... up to limit. The counter is
// always appended to the original stem, never to a previous attempt, so a
// name like "a_1_2" cannot come out of it.
//
// Examples:
//   - "report.pdf" -> "report.pdf" (free)
//   - "report.pdf" -> "report_1.pdf" (if report.pdf exists)
//   - "report.pdf" -> "report_2.pdf" (if report.pdf and report_1.pdf exist)
//
// A candidate that cannot be checked stops the probe with a *MoveError, and
// so does running out of candidates (NameExhausted).
func ProbeName(fsys afero.Fs, dir, stem, ext string, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultProbeLimit
	}
	candidate := filepath.Join(dir, stem+ext)
	for n := 0; n <= limit; n++ {
		if n > 0 {
			candidate = filepath.Join(dir, stem+"_"+strconv.Itoa(n)+ext)
		}
		taken, err := afero.Exists(fsys, candidate)
		if err != nil {
			return "", statError(candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", &MoveError{Type: NameExhausted, Path: filepath.Join(dir, stem+ext)}
}

// splitName splits a filename into stem and extension. Only the last dot
// counts, and a leading dot (".bashrc") is part of the stem.
func splitName(name string) (stem, ext string) {
	ext = filepath.Ext(name)
	if ext == name {
		return name, ""
	}
	return name[:len(name)-len(ext)], ext
}
