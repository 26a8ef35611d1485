package spatial

import "errors"

var (
	// ErrDegenerateBox is returned for boxes with zero or negative area.
	ErrDegenerateBox = errors.New("spatial: degenerate box")

	// ErrOutOfBounds is returned when a box cannot be made to fit the tree,
	// even after expanding the root.
	ErrOutOfBounds = errors.New("spatial: box out of bounds")

	// ErrDanglingHandle is returned when a handle no longer refers to a live
	// object, typically because it was removed.
	ErrDanglingHandle = errors.New("spatial: dangling handle")
)
