package organizer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"monthsort/internal/dateparser"
)

// DateSuffix returns the "-YYYYMMDD" marker appended to file stems.
func DateSuffix(d dateparser.Date) string {
	return "-" + d.Compact()
}

// SuffixResult describes the outcome of ApplySuffix.
type SuffixResult struct {
	Path      string // path of the file after the call
	Suffix    string
	Renamed   bool // false when the stem already carried the suffix
	Collision bool // true when a "_N" variant had to be used
}

// ApplySuffix renames path in place so its stem carries the date suffix.
// A file whose stem already contains the suffix is left untouched, which
// makes repeated runs safe. When the suffixed name is taken the "_N" probe
// picks the next free one.
func ApplySuffix(fsys afero.Fs, path string, d dateparser.Date, limit int) (SuffixResult, error) {
	suffix := DateSuffix(d)
	dir := filepath.Dir(path)
	stem, ext := splitName(filepath.Base(path))

	if strings.Contains(stem, suffix) {
		return SuffixResult{Path: path, Suffix: suffix}, nil
	}

	if _, err := fsys.Stat(path); err != nil {
		return SuffixResult{}, statError(path, err)
	}

	target, err := ProbeName(fsys, dir, stem+suffix, ext, limit)
	if err != nil {
		return SuffixResult{}, err
	}

	if err := fsys.Rename(path, target); err != nil {
		if os.IsPermission(err) {
			return SuffixResult{}, &MoveError{Type: PermissionDenied, Path: path, Err: err}
		}
		return SuffixResult{}, &MoveError{Type: TransferFailed, Path: path, Err: err}
	}

	return SuffixResult{
		Path:      target,
		Suffix:    suffix,
		Renamed:   true,
		Collision: filepath.Base(target) != stem+suffix+ext,
	}, nil
}
