// Package scanner walks source trees and yields files whose names carry a date.
package scanner

import (
	"errors"
	"iter"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"monthsort/internal/dateparser"
)

// ScanErrorType represents the type of scanning error.
type ScanErrorType string

const (
	// DirectoryNotFound indicates the directory does not exist.
	DirectoryNotFound ScanErrorType = "DIRECTORY_NOT_FOUND"
	// PermissionDenied indicates insufficient permissions to read the directory.
	PermissionDenied ScanErrorType = "PERMISSION_DENIED"
	// SymlinkError indicates a symlink was encountered with "error" policy.
	SymlinkError ScanErrorType = "SYMLINK_ERROR"
	// CycleDetected indicates a followed symlink leads back to one of its ancestors.
	CycleDetected ScanErrorType = "CYCLE_DETECTED"
	// ReadFailed covers any other failure to list a directory.
	ReadFailed ScanErrorType = "READ_FAILED"
)

// Symlink policy constants
const (
	SymlinkPolicyFollow = "follow"
	SymlinkPolicySkip   = "skip"
	SymlinkPolicyError  = "error"
)

// ScanError represents an error that occurred during directory scanning.
type ScanError struct {
	Type ScanErrorType
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	if e.Err != nil {
		return string(e.Type) + ": " + e.Path + ": " + e.Err.Error()
	}
	return string(e.Type) + ": " + e.Path
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// Options configures scanning behavior.
type Options struct {
	MaxDepth      int    // Maximum depth to descend (0 = root only, -1 = unlimited)
	SymlinkPolicy string // "follow", "skip", or "error"
}

// DefaultOptions walks the whole tree and skips symlinks.
func DefaultOptions() Options {
	return Options{
		MaxDepth:      -1,
		SymlinkPolicy: SymlinkPolicySkip,
	}
}

// FileEntry represents a file found during scanning.
type FileEntry struct {
	Name     string // Filename only
	FullPath string // Absolute path
}

// Record is a file whose name resolved to a date. Path is where the file was
// at discovery; once the file is renamed or moved the caller owns the new path.
type Record struct {
	Path string
	Name string
	Dir  string
	Date dateparser.Date
}

// Walk lazily yields every regular file under root, top-down, in lexical
// order within each directory. A root that cannot be scanned yields a single
// *ScanError. Errors below the root are yielded and the walk continues with
// the next sibling.
func Walk(fsys afero.Fs, root string, opts Options) iter.Seq2[FileEntry, error] {
	return func(yield func(FileEntry, error) bool) {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			absRoot = root
		}

		info, err := lstat(fsys, absRoot)
		if err != nil {
			yield(FileEntry{}, classify(absRoot, err))
			return
		}

		if info.Mode()&os.ModeSymlink != 0 {
			switch opts.SymlinkPolicy {
			case SymlinkPolicyError:
				yield(FileEntry{}, &ScanError{
					Type: SymlinkError,
					Path: absRoot,
					Err:  errors.New("symlink encountered with error policy"),
				})
				return
			case SymlinkPolicyFollow:
				if info, err = fsys.Stat(absRoot); err != nil {
					yield(FileEntry{}, classify(absRoot, err))
					return
				}
			default:
				return
			}
		}

		if !info.IsDir() {
			yield(FileEntry{}, &ScanError{
				Type: DirectoryNotFound,
				Path: absRoot,
				Err:  errors.New("path is not a directory"),
			})
			return
		}

		w := walker{fsys: fsys, opts: opts, yield: yield}
		w.dir(absRoot, 0, []os.FileInfo{info})
	}
}

// Dated yields a Record for each file under root whose name resolves to a
// date in year. Scan errors pass through unchanged.
func Dated(fsys afero.Fs, root string, resolver *dateparser.Resolver, year int, opts Options) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for entry, err := range Walk(fsys, root, opts) {
			if err != nil {
				if !yield(Record{}, err) {
					return
				}
				continue
			}
			date, ok := resolver.Resolve(entry.Name, year)
			if !ok {
				continue
			}
			rec := Record{
				Path: entry.FullPath,
				Name: entry.Name,
				Dir:  filepath.Dir(entry.FullPath),
				Date: date,
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

type walker struct {
	fsys  afero.Fs
	opts  Options
	yield func(FileEntry, error) bool
}

// dir walks one directory. ancestors holds the FileInfo of every directory
// on the path from the root, used to stop symlink loops. It returns false
// when the consumer has stopped iterating.
func (w *walker) dir(path string, depth int, ancestors []os.FileInfo) bool {
	entries, err := afero.ReadDir(w.fsys, path)
	if err != nil {
		return w.yield(FileEntry{}, classify(path, err))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, info := range entries {
		fullPath := filepath.Join(path, info.Name())

		if info.Mode()&os.ModeSymlink != 0 {
			switch w.opts.SymlinkPolicy {
			case SymlinkPolicyError:
				if !w.yield(FileEntry{}, &ScanError{
					Type: SymlinkError,
					Path: fullPath,
					Err:  errors.New("symlink encountered with error policy"),
				}) {
					return false
				}
				continue
			case SymlinkPolicyFollow:
				target, err := w.fsys.Stat(fullPath)
				if err != nil {
					continue // Skip broken symlinks
				}
				info = target
			default:
				continue
			}
		}

		if info.IsDir() {
			if w.opts.MaxDepth != -1 && depth >= w.opts.MaxDepth {
				continue
			}
			if isAncestor(info, ancestors) {
				if !w.yield(FileEntry{}, &ScanError{
					Type: CycleDetected,
					Path: fullPath,
					Err:  errors.New("directory is its own ancestor"),
				}) {
					return false
				}
				continue
			}
			if !w.dir(fullPath, depth+1, append(ancestors, info)) {
				return false
			}
			continue
		}

		if !info.Mode().IsRegular() {
			continue
		}

		if !w.yield(FileEntry{Name: info.Name(), FullPath: fullPath}, nil) {
			return false
		}
	}
	return true
}

func isAncestor(info os.FileInfo, ancestors []os.FileInfo) bool {
	for _, a := range ancestors {
		if os.SameFile(a, info) {
			return true
		}
	}
	return false
}

func lstat(fsys afero.Fs, path string) (os.FileInfo, error) {
	if l, ok := fsys.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return fsys.Stat(path)
}

func classify(path string, err error) error {
	switch {
	case os.IsNotExist(err):
		return &ScanError{Type: DirectoryNotFound, Path: path, Err: err}
	case os.IsPermission(err):
		return &ScanError{Type: PermissionDenied, Path: path, Err: err}
	default:
		return &ScanError{Type: ReadFailed, Path: path, Err: err}
	}
}
