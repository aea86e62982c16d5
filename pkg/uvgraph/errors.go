package uvgraph

import "fmt"

// EmptyInputError indicates an operation received no usable input: an empty
// point set, or a graph without a single visible sample. It is fatal and
// surfaced immediately.
type EmptyInputError struct {
	What string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("empty input: %s", e.What)
}

// DegenerateGeometryError indicates that the visible geometry collapses to a
// point or sliver, so no finite normalization scale exists. Raised instead
// of propagating an infinite scale.
type DegenerateGeometryError struct {
	Reason string
}

func (e *DegenerateGeometryError) Error() string {
	return fmt.Sprintf("degenerate geometry: %s", e.Reason)
}
