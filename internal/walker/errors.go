package walker

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrorKind classifies traversal failures.
type ErrorKind int

const (
	KindIO ErrorKind = iota
	KindNotFound
	KindPermissionDenied
)

// Error is returned when the walk root cannot be traversed.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("path not found: %s", e.Path)
	case KindPermissionDenied:
		return fmt.Sprintf("permission denied: %s", e.Path)
	default:
		return fmt.Sprintf("IO error at %s: %v", e.Path, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError classifies a failure to stat or read path.
func NewError(path string, err error) *Error {
	kind := KindIO
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = KindNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = KindPermissionDenied
	}
	return &Error{Kind: kind, Path: path, Err: err}
}
