package organizer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"monthsort/internal/dateparser"
	"monthsort/internal/monthfolder"
)

// MoveErrorType represents the type of move error.
type MoveErrorType string

const (
	// SourceNotFound indicates the source file does not exist.
	SourceNotFound MoveErrorType = "SOURCE_NOT_FOUND"
	// PermissionDenied indicates insufficient permissions for the operation.
	PermissionDenied MoveErrorType = "PERMISSION_DENIED"
	// DestinationMissing indicates the month folder has not been created.
	DestinationMissing MoveErrorType = "DESTINATION_MISSING"
	// NameExhausted indicates every "_N" variant up to the probe limit is taken.
	NameExhausted MoveErrorType = "NAME_EXHAUSTED"
	// TransferFailed covers any other rename, copy or remove failure.
	TransferFailed MoveErrorType = "TRANSFER_FAILED"
)

// MoveError represents an error that occurred during file movement.
type MoveError struct {
	Type MoveErrorType
	Path string
	Err  error
}

func (e *MoveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Path)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

// Mode selects whether Place moves or copies.
type Mode string

const (
	ModeMove Mode = "move"
	ModeCopy Mode = "copy"
)

// ParseMode accepts "move" or "copy".
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeMove, ModeCopy:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (want move or copy)", s)
}

// PlaceResult represents the result of a successful placement.
type PlaceResult struct {
	SourcePath      string
	DestinationPath string
	DestinationDir  string
	Mode            Mode
	Collision       bool // True if the file was renamed to a "_N" variant
	InPlace         bool // True if the file already sat at its destination
	Bytes           int64
}

// Place moves or copies path into the month folder for d under destRoot,
// labelled with year. The folder must already exist; Place never creates it.
// A name clash in the folder is resolved with the "_N" probe. A file that
// already sits in its month folder under its own name is left alone.
func Place(fsys afero.Fs, path, destRoot string, d dateparser.Date, year int, mode Mode, limit int) (*PlaceResult, error) {
	folder, err := monthfolder.Name(d.Month, year)
	if err != nil {
		return nil, err
	}
	destDir := filepath.Join(destRoot, folder)

	ok, err := afero.DirExists(fsys, destDir)
	if err != nil || !ok {
		return nil, &MoveError{Type: DestinationMissing, Path: destDir, Err: err}
	}

	info, err := fsys.Stat(path)
	if err != nil {
		return nil, statError(path, err)
	}

	name := filepath.Base(path)
	if filepath.Clean(path) == filepath.Join(destDir, name) {
		return &PlaceResult{
			SourcePath:      path,
			DestinationPath: path,
			DestinationDir:  destDir,
			Mode:            mode,
			InPlace:         true,
		}, nil
	}

	stem, ext := splitName(name)
	destPath, err := ProbeName(fsys, destDir, stem, ext, limit)
	if err != nil {
		return nil, err
	}

	result := &PlaceResult{
		SourcePath:      path,
		DestinationPath: destPath,
		DestinationDir:  destDir,
		Mode:            mode,
		Collision:       filepath.Base(destPath) != name,
		Bytes:           info.Size(),
	}

	if mode == ModeCopy {
		if err := copyFile(fsys, path, destPath, info); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := fsys.Rename(path, destPath); err != nil {
		if os.IsPermission(err) {
			return nil, &MoveError{
				Type: PermissionDenied,
				Path: path,
				Err:  err,
			}
		}
		// If rename fails (e.g., cross-device), fall back to copy+delete
		if err := copyAndDelete(fsys, path, destPath, info); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// copyFile streams src into a newly created dst, keeping permission bits
// and modification time. A partially written dst is removed on failure.
func copyFile(fsys afero.Fs, src, dst string, info os.FileInfo) error {
	in, err := fsys.Open(src)
	if err != nil {
		return statError(src, err)
	}
	defer in.Close()

	out, err := fsys.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		if os.IsPermission(err) {
			return &MoveError{Type: PermissionDenied, Path: dst, Err: err}
		}
		return &MoveError{Type: TransferFailed, Path: dst, Err: err}
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		fsys.Remove(dst)
		return &MoveError{Type: TransferFailed, Path: dst, Err: err}
	}
	if err := out.Close(); err != nil {
		fsys.Remove(dst)
		return &MoveError{Type: TransferFailed, Path: dst, Err: err}
	}

	if err := fsys.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return &MoveError{Type: TransferFailed, Path: dst, Err: err}
	}
	return nil
}

// copyAndDelete copies a file to a new location and deletes the original.
// Used as a fallback when Rename fails (e.g., cross-device moves).
func copyAndDelete(fsys afero.Fs, src, dst string, info os.FileInfo) error {
	if err := copyFile(fsys, src, dst, info); err != nil {
		return err
	}

	if err := fsys.Remove(src); err != nil {
		// If we can't delete source, try to clean up destination
		fsys.Remove(dst)
		if os.IsPermission(err) {
			return &MoveError{
				Type: PermissionDenied,
				Path: src,
				Err:  err,
			}
		}
		return &MoveError{Type: TransferFailed, Path: src, Err: err}
	}

	return nil
}

func statError(path string, err error) error {
	switch {
	case os.IsNotExist(err):
		return &MoveError{Type: SourceNotFound, Path: path, Err: err}
	case os.IsPermission(err):
		return &MoveError{Type: PermissionDenied, Path: path, Err: err}
	default:
		return &MoveError{Type: TransferFailed, Path: path, Err: err}
	}
}
