package doc

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPath  = errors.New("invalid path")
	ErrPathNotFound = errors.New("path not found")
	ErrNotContainer = errors.New("value is not a record or list")
	ErrNotList      = errors.New("value is not a list")
	ErrNotRecord    = errors.New("value is not a record")
	ErrEmptyField   = errors.New("field name is empty")
)

// PathError records the path at which an operation failed.
type PathError struct {
	Path Path
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// IndexError is returned for a collection index outside [0, Len).
type IndexError struct {
	Path  Path
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index %d out of range (len %d)", e.Path, e.Index, e.Len)
}
