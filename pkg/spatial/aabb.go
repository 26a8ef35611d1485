// pkg/spatial/aabb.go
package spatial

import (
	"fmt"
	"math"
)

// AABB is an axis-aligned bounding box described by its min and max corners.
// A valid AABB always has MinX < MaxX and MinY < MaxY.
type AABB struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Bounded is implemented by anything that can report its current bounds.
type Bounded interface {
	Bounds() AABB
}

// NewAABB builds a box from its corners. Zero-area or inverted boxes are
// rejected with ErrDegenerateBox.
func NewAABB(minX, minY, maxX, maxY float64) (AABB, error) {
	box := AABB{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
	if !box.Valid() {
		return AABB{}, fmt.Errorf("%w: %v", ErrDegenerateBox, box)
	}
	return box, nil
}

// MustAABB is like NewAABB but panics on a degenerate box.
func MustAABB(minX, minY, maxX, maxY float64) AABB {
	box, err := NewAABB(minX, minY, maxX, maxY)
	if err != nil {
		panic(err)
	}
	return box
}

// FromRect builds a box from a position and a size, the way sprites describe
// themselves.
func FromRect(x, y, width, height float64) (AABB, error) {
	return NewAABB(x, y, x+width, y+height)
}

// FromCenter builds a box of the given half extents around a point.
func FromCenter(cx, cy, halfWidth, halfHeight float64) (AABB, error) {
	return NewAABB(cx-halfWidth, cy-halfHeight, cx+halfWidth, cy+halfHeight)
}

// Valid reports whether the box has positive area. NaN coordinates are never
// valid.
func (a AABB) Valid() bool {
	return a.MinX < a.MaxX && a.MinY < a.MaxY
}

// finite reports whether every coordinate is a finite number.
func (a AABB) finite() bool {
	return !math.IsInf(a.MinX, 0) && !math.IsInf(a.MinY, 0) &&
		!math.IsInf(a.MaxX, 0) && !math.IsInf(a.MaxY, 0)
}

// Intersects reports whether the open interiors of a and b overlap.
// Boxes that only share an edge do not intersect, so adjacent tiles never
// collide with each other.
func (a AABB) Intersects(b AABB) bool {
	return a.MinX < b.MaxX && a.MaxX > b.MinX &&
		a.MinY < b.MaxY && a.MaxY > b.MinY
}

// FitsIn reports whether a lies inside b. The lower bound is strict and the
// upper bound inclusive, so a box sitting on a split line belongs to exactly
// one side.
func (a AABB) FitsIn(b AABB) bool {
	return b.MinX < a.MinX && b.MaxX >= a.MaxX &&
		b.MinY < a.MinY && b.MaxY >= a.MaxY
}

// Width returns the horizontal extent.
func (a AABB) Width() float64 {
	return a.MaxX - a.MinX
}

// Height returns the vertical extent.
func (a AABB) Height() float64 {
	return a.MaxY - a.MinY
}

// Center returns the midpoint of the box.
func (a AABB) Center() (float64, float64) {
	return (a.MinX + a.MaxX) / 2, (a.MinY + a.MaxY) / 2
}

// Translate returns the box moved by (dx, dy).
func (a AABB) Translate(dx, dy float64) AABB {
	return AABB{MinX: a.MinX + dx, MinY: a.MinY + dy, MaxX: a.MaxX + dx, MaxY: a.MaxY + dy}
}

// Union returns the smallest box containing both a and b.
func (a AABB) Union(b AABB) AABB {
	return AABB{
		MinX: math.Min(a.MinX, b.MinX),
		MinY: math.Min(a.MinY, b.MinY),
		MaxX: math.Max(a.MaxX, b.MaxX),
		MaxY: math.Max(a.MaxY, b.MaxY),
	}
}

func (a AABB) String() string {
	return fmt.Sprintf("{%.2f, %.2f, %.2f, %.2f}", a.MinX, a.MinY, a.MaxX, a.MaxY)
}
