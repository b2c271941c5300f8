package editor

import (
	"os"

	"github.com/pkg/errors"
)

// Error kinds. Use errors.Is to test an error returned by this package against them.
var (
	ErrNotFound       = errors.New("file not found")
	ErrEncoding       = errors.New("not valid UTF-8 text")
	ErrIO             = errors.New("i/o error")
	ErrRunUnsupported = errors.New("the file cannot be run")
	ErrNoPath         = errors.New("no file name")
	ErrNoTabs         = errors.New("no open tabs")
)

// FileError records a failed file operation together with its kind.
type FileError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *FileError) Error() string {
	if e.Err == nil {
		return e.Op + " " + e.Path + ": " + e.Kind.Error()
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error { return e.Err }

// Is matches the kind of the error.
func (e *FileError) Is(target error) bool { return target == e.Kind }

// fileError classifies an os error into one of the kinds above.
func fileError(op, path string, err error) error {
	kind := ErrIO
	if os.IsNotExist(err) {
		kind = ErrNotFound
	}
	return &FileError{Op: op, Path: path, Kind: kind, Err: err}
}
