// pkg/spatial/query.go
package spatial

import (
	"errors"
	"fmt"
)

// Query returns the handles of every stored object whose bounds intersect
// box. Results come out in depth-first order, children visited NE, NW, SW, SE.
func (t *QuadTree) Query(box AABB) []Handle {
	return t.QueryAppend(nil, box)
}

// QueryAppend is like Query but appends to dst, letting callers reuse a
// buffer across frames.
func (t *QuadTree) QueryAppend(dst []Handle, box AABB) []Handle {
	stack := make([]nodeID, 0, 32)
	stack = append(stack, t.root)

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &t.nodes[id]
		if !n.region.Intersects(box) {
			continue
		}
		for _, obj := range n.objects {
			o := &t.objects[obj]
			if o.bounds.Intersects(box) {
				dst = append(dst, Handle{index: obj, gen: o.gen})
			}
		}
		if n.isLeaf() {
			continue
		}
		// pushed in reverse so NE is popped first
		for i := numChildren - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
	}
	return dst
}

// Handles returns every live handle in traversal order.
func (t *QuadTree) Handles() []Handle {
	out := make([]Handle, 0, t.items)
	t.walk(func(id nodeID, _ int) {
		for _, obj := range t.nodes[id].objects {
			out = append(out, Handle{index: obj, gen: t.objects[obj].gen})
		}
	})
	return out
}

// NodeInfo describes a single node during Walk.
type NodeInfo struct {
	Region  AABB
	Depth   int
	Leaf    bool
	Objects []AABB
}

// Walk visits every node depth-first, parents before children.
func (t *QuadTree) Walk(fn func(NodeInfo)) {
	t.walk(func(id nodeID, depth int) {
		n := &t.nodes[id]
		info := NodeInfo{Region: n.region, Depth: depth, Leaf: n.isLeaf()}
		for _, obj := range n.objects {
			info.Objects = append(info.Objects, t.objects[obj].bounds)
		}
		fn(info)
	})
}

// NodeCount returns the number of live nodes, root included.
func (t *QuadTree) NodeCount() int {
	count := 0
	t.walk(func(nodeID, int) { count++ })
	return count
}

// Depth returns the depth of the deepest node; a lone root has depth 0.
func (t *QuadTree) Depth() int {
	deepest := 0
	t.walk(func(_ nodeID, depth int) {
		if depth > deepest {
			deepest = depth
		}
	})
	return deepest
}

func (t *QuadTree) walk(fn func(id nodeID, depth int)) {
	var visit func(id nodeID, depth int)
	visit = func(id nodeID, depth int) {
		fn(id, depth)
		n := &t.nodes[id]
		if n.isLeaf() {
			return
		}
		for _, c := range n.children {
			visit(c, depth+1)
		}
	}
	visit(t.root, 0)
}

// Validate checks the structural invariants of the tree and returns every
// violation it finds joined into one error.
func (t *QuadTree) Validate() error {
	var errs []error
	seen := make(map[int32]bool, t.items)

	t.walk(func(id nodeID, _ int) {
		n := &t.nodes[id]
		if !n.live {
			errs = append(errs, fmt.Errorf("node %d reachable but freed", id))
			return
		}
		if n.isLeaf() {
			if len(n.objects) > t.capacity {
				errs = append(errs, fmt.Errorf("leaf %v holds %d objects, capacity %d", n.region, len(n.objects), t.capacity))
			}
		} else {
			for q, c := range n.children {
				if c == nilNode {
					errs = append(errs, fmt.Errorf("node %v has a partial child set", n.region))
					continue
				}
				child := &t.nodes[c]
				if child.parent != id {
					errs = append(errs, fmt.Errorf("child %d of %v has parent %d", q, n.region, child.parent))
				}
				if !within(child.region, n.region) {
					errs = append(errs, fmt.Errorf("child %v escapes parent %v", child.region, n.region))
				}
			}
		}
		for _, obj := range n.objects {
			o := &t.objects[obj]
			if !o.live {
				errs = append(errs, fmt.Errorf("node %v holds removed object %d", n.region, obj))
				continue
			}
			if seen[obj] {
				errs = append(errs, fmt.Errorf("object %d stored twice", obj))
			}
			seen[obj] = true
			if o.node != id {
				errs = append(errs, fmt.Errorf("object %d owner mismatch: %d != %d", obj, o.node, id))
			}
			if !o.bounds.FitsIn(n.region) {
				errs = append(errs, fmt.Errorf("object %v does not fit owner %v", o.bounds, n.region))
			}
		}
	})

	if len(seen) != t.items {
		errs = append(errs, fmt.Errorf("reachable objects %d != count %d", len(seen), t.items))
	}
	return errors.Join(errs...)
}

// within is a non-strict containment test used for node regions, which share
// edges with their parent.
func within(inner, outer AABB) bool {
	return inner.MinX >= outer.MinX && inner.MinY >= outer.MinY &&
		inner.MaxX <= outer.MaxX && inner.MaxY <= outer.MaxY
}
