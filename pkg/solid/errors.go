package solid

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates a missing input path or file. It is fatal to the
// call that raised it and is never retried.
var ErrNotFound = errors.New("solid: file not found")

// GeometryError indicates that a solid, face or edge could not be sampled.
// In batch mode it is scoped to one file; in single-file mode it is fatal.
type GeometryError struct {
	Op  string // what was being sampled, e.g. "face points"
	Err error
}

func (e *GeometryError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("geometry error: %s", e.Op)
	}
	return fmt.Sprintf("geometry error: %s: %v", e.Op, e.Err)
}

func (e *GeometryError) Unwrap() error { return e.Err }

// Geometryf constructs a GeometryError with a formatted operation description.
func Geometryf(format string, args ...interface{}) *GeometryError {
	return &GeometryError{Op: fmt.Sprintf(format, args...)}
}
