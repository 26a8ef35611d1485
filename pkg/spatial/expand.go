// pkg/spatial/expand.go
package spatial

import "fmt"

// maxExpansions bounds how many times a single Expand call may double the
// root. 64 doublings take any finite box into range unless its coordinates
// are close to the float64 limit.
const maxExpansions = 64

// Expand grows the root region until box fits inside it. Every step doubles
// the root toward box and keeps the previous root as one of the new root's
// quadrants, so existing nodes and handles stay valid.
//
// Expand does not mutate the tree when it returns an error.
func (t *QuadTree) Expand(box AABB) error {
	if !box.Valid() {
		return fmt.Errorf("%w: %v", ErrDegenerateBox, box)
	}
	if !box.finite() {
		return fmt.Errorf("%w: %v is not finite", ErrOutOfBounds, box)
	}
	if box.FitsIn(t.Region()) {
		return nil
	}

	// Dry run on regions first so a box that cannot be reached leaves the
	// tree untouched.
	region := t.Region()
	steps := 0
	for !box.FitsIn(region) {
		if steps == maxExpansions || !region.finite() {
			return fmt.Errorf("%w: %v unreachable from root %v", ErrOutOfBounds, box, t.Region())
		}
		region, _ = grow(region, box)
		steps++
	}

	for i := 0; i < steps; i++ {
		t.expandOnce(box)
	}
	return nil
}

// grow returns the doubled region and the quadrant the old region occupies
// in it. The direction follows the sign of the offset between the lower
// corners of want and r.
func grow(r, want AABB) (AABB, int) {
	w, h := r.Width(), r.Height()
	dx := want.MinX - r.MinX
	dy := want.MinY - r.MinY

	switch {
	case dx > 0 && dy > 0:
		return AABB{MinX: r.MinX, MinY: r.MinY, MaxX: r.MaxX + w, MaxY: r.MaxY + h}, SW
	case dx > 0:
		return AABB{MinX: r.MinX, MinY: r.MinY - h, MaxX: r.MaxX + w, MaxY: r.MaxY}, NW
	case dy > 0:
		return AABB{MinX: r.MinX - w, MinY: r.MinY, MaxX: r.MaxX, MaxY: r.MaxY + h}, SE
	default:
		return AABB{MinX: r.MinX - w, MinY: r.MinY - h, MaxX: r.MaxX, MaxY: r.MaxY}, NE
	}
}

func (t *QuadTree) expandOnce(toward AABB) {
	oldRoot := t.root
	from := t.nodes[oldRoot].region
	to, slot := grow(from, toward)

	newRoot := t.allocNode(to, nilNode)
	t.split(newRoot)

	placeholder := t.nodes[newRoot].children[slot]
	t.freeNode(placeholder)
	t.nodes[newRoot].children[slot] = oldRoot
	t.nodes[oldRoot].parent = newRoot

	t.root = newRoot
	t.expansions++
	if t.onExpand != nil {
		t.onExpand(from, to)
	}
}
