// pkg/spatial/quadtree.go
package spatial

import (
	"fmt"
)

// Quadrant indices. Children of an internal node are always stored in this
// order.
const (
	NE = iota
	NW
	SW
	SE
	numChildren
)

// DefaultCapacity is the number of objects a leaf holds before it splits.
const DefaultCapacity = 2

const nilNode nodeID = -1

type nodeID int32

type node struct {
	region   AABB
	parent   nodeID
	children [numChildren]nodeID
	objects  []int32
	live     bool
}

func (n *node) isLeaf() bool {
	return n.children[NE] == nilNode
}

type object struct {
	bounds  AABB
	payload any
	node    nodeID
	gen     uint32
	live    bool
}

// Handle identifies an object stored in a QuadTree. The zero Handle never
// refers to a live object.
type Handle struct {
	index int32
	gen   uint32
}

// Valid reports whether the handle was ever issued by a tree.
func (h Handle) Valid() bool {
	return h.gen != 0
}

func (h Handle) String() string {
	return fmt.Sprintf("handle(%d#%d)", h.index, h.gen)
}

// QuadTree is a region quadtree over axis-aligned boxes. Nodes and objects
// live in arenas addressed by integer handles, so splits, collapses and root
// expansion never invalidate outstanding handles.
//
// A QuadTree is not safe for concurrent use.
type QuadTree struct {
	nodes       []node
	freeNodes   []nodeID
	objects     []object
	freeObjects []int32

	root     nodeID
	items    int
	capacity int

	expansions int
	onExpand   func(from, to AABB)
}

// New creates a tree covering region with the default leaf capacity.
func New(region AABB) (*QuadTree, error) {
	return NewWithCapacity(region, DefaultCapacity)
}

// NewWithCapacity creates a tree whose leaves split once they would hold more
// than capacity objects.
func NewWithCapacity(region AABB, capacity int) (*QuadTree, error) {
	if !region.Valid() {
		return nil, fmt.Errorf("%w: root region %v", ErrDegenerateBox, region)
	}
	if !region.finite() {
		return nil, fmt.Errorf("%w: root region %v", ErrOutOfBounds, region)
	}
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	t := &QuadTree{capacity: capacity}
	t.root = t.allocNode(region, nilNode)
	return t, nil
}

// OnExpand registers a callback invoked every time the root doubles.
func (t *QuadTree) OnExpand(fn func(from, to AABB)) {
	t.onExpand = fn
}

// Len returns the number of objects stored in the tree.
func (t *QuadTree) Len() int {
	return t.items
}

// Region returns the root region.
func (t *QuadTree) Region() AABB {
	return t.nodes[t.root].region
}

// Expansions returns how many times the root has doubled.
func (t *QuadTree) Expansions() int {
	return t.expansions
}

// Capacity returns the leaf split threshold.
func (t *QuadTree) Capacity() int {
	return t.capacity
}

// Insert stores payload under box and returns its handle. The root is
// expanded first if box lies outside it.
func (t *QuadTree) Insert(box AABB, payload any) (Handle, error) {
	if !box.Valid() {
		return Handle{}, fmt.Errorf("%w: %v", ErrDegenerateBox, box)
	}
	if !box.FitsIn(t.Region()) {
		if err := t.Expand(box); err != nil {
			return Handle{}, err
		}
	}

	h := t.allocObject(box, payload)
	if err := t.add(t.root, h.index); err != nil {
		t.freeObject(h.index)
		return Handle{}, err
	}
	t.items++
	return h, nil
}

// Relocate moves the object behind h to newBounds. When the new box still
// fits the owning node only the stored bounds change; otherwise the object
// climbs to the nearest ancestor that fits it and descends again from there.
func (t *QuadTree) Relocate(h Handle, newBounds AABB) error {
	if _, err := t.lookup(h); err != nil {
		return err
	}
	if !newBounds.Valid() {
		return fmt.Errorf("%w: %v", ErrDegenerateBox, newBounds)
	}

	oldNode := t.objects[h.index].node
	if newBounds.FitsIn(t.nodes[oldNode].region) {
		t.objects[h.index].bounds = newBounds
		return nil
	}

	target := t.ancestorFitting(oldNode, newBounds)
	if target == nilNode {
		if err := t.Expand(newBounds); err != nil {
			return err
		}
		target = t.root
	}

	t.detach(oldNode, h.index)
	t.objects[h.index].bounds = newBounds
	if err := t.add(target, h.index); err != nil {
		// add only fails when target does not fit, which ancestorFitting
		// and Expand rule out.
		panic(fmt.Sprintf("spatial: relocate %v into %v: %v", h, t.nodes[target].region, err))
	}

	t.prune(oldNode)
	return nil
}

// Remove deletes the object behind h. The handle is dangling afterwards.
func (t *QuadTree) Remove(h Handle) error {
	if _, err := t.lookup(h); err != nil {
		return err
	}
	owner := t.objects[h.index].node
	t.detach(owner, h.index)
	t.freeObject(h.index)
	t.items--
	t.prune(owner)
	return nil
}

// Bounds returns the stored box for h.
func (t *QuadTree) Bounds(h Handle) (AABB, error) {
	o, err := t.lookup(h)
	if err != nil {
		return AABB{}, err
	}
	return o.bounds, nil
}

// Payload returns the caller data stored with h.
func (t *QuadTree) Payload(h Handle) (any, error) {
	o, err := t.lookup(h)
	if err != nil {
		return nil, err
	}
	return o.payload, nil
}

// OwnerRegion returns the region of the node currently holding h.
func (t *QuadTree) OwnerRegion(h Handle) (AABB, error) {
	o, err := t.lookup(h)
	if err != nil {
		return AABB{}, err
	}
	return t.nodes[o.node].region, nil
}

// Contains reports whether h refers to a live object in this tree.
func (t *QuadTree) Contains(h Handle) bool {
	_, err := t.lookup(h)
	return err == nil
}

func (t *QuadTree) lookup(h Handle) (*object, error) {
	if h.gen == 0 || h.index < 0 || int(h.index) >= len(t.objects) {
		return nil, fmt.Errorf("%w: %v", ErrDanglingHandle, h)
	}
	o := &t.objects[h.index]
	if !o.live || o.gen != h.gen {
		return nil, fmt.Errorf("%w: %v", ErrDanglingHandle, h)
	}
	if o.node == nilNode || !t.nodes[o.node].live {
		return nil, fmt.Errorf("%w: %v has no owning node", ErrDanglingHandle, h)
	}
	return o, nil
}

// add descends from id and attaches obj to the deepest node that strictly
// contains it, splitting full leaves on the way.
func (t *QuadTree) add(id nodeID, obj int32) error {
	box := t.objects[obj].bounds
	for {
		if !box.FitsIn(t.nodes[id].region) {
			return fmt.Errorf("%w: %v does not fit %v", ErrOutOfBounds, box, t.nodes[id].region)
		}
		if t.nodes[id].isLeaf() {
			if len(t.nodes[id].objects) < t.capacity {
				t.attach(id, obj)
				return nil
			}
			t.split(id)
			t.pushDown(id)
		}
		child := t.childFitting(id, box)
		if child == nilNode {
			t.attach(id, obj)
			return nil
		}
		id = child
	}
}

// pushDown moves every object held by id into the single child that fits it.
// Straddling objects stay where they are.
func (t *QuadTree) pushDown(id nodeID) {
	held := t.nodes[id].objects
	kept := held[:0:0]
	for _, obj := range held {
		child := t.childFitting(id, t.objects[obj].bounds)
		if child == nilNode {
			kept = append(kept, obj)
			continue
		}
		if err := t.add(child, obj); err != nil {
			kept = append(kept, obj)
		}
	}
	t.nodes[id].objects = kept
	for _, obj := range kept {
		t.objects[obj].node = id
	}
}

func (t *QuadTree) childFitting(id nodeID, box AABB) nodeID {
	for _, c := range t.nodes[id].children {
		if box.FitsIn(t.nodes[c].region) {
			return c
		}
	}
	return nilNode
}

func (t *QuadTree) ancestorFitting(id nodeID, box AABB) nodeID {
	for cur := id; cur != nilNode; cur = t.nodes[cur].parent {
		if box.FitsIn(t.nodes[cur].region) {
			return cur
		}
	}
	return nilNode
}

// split turns the leaf id into an internal node with four equal quadrants.
func (t *QuadTree) split(id nodeID) {
	r := t.nodes[id].region
	halfW := r.Width() / 2
	halfH := r.Height() / 2
	midX := r.MinX + halfW
	midY := r.MinY + halfH

	var quads [numChildren]AABB
	quads[NE] = AABB{MinX: midX, MinY: midY, MaxX: r.MaxX, MaxY: r.MaxY}
	quads[NW] = AABB{MinX: r.MinX, MinY: midY, MaxX: midX, MaxY: r.MaxY}
	quads[SW] = AABB{MinX: r.MinX, MinY: r.MinY, MaxX: midX, MaxY: midY}
	quads[SE] = AABB{MinX: midX, MinY: r.MinY, MaxX: r.MaxX, MaxY: midY}

	for i, q := range quads {
		// allocNode may grow the arena, so index through t.nodes each time.
		c := t.allocNode(q, id)
		t.nodes[id].children[i] = c
	}
}

// collapse drops the children of id when id holds no straddling objects and
// all four children are empty leaves. It reports whether id is now an empty
// leaf itself.
func (t *QuadTree) collapse(id nodeID) bool {
	n := &t.nodes[id]
	if len(n.objects) > 0 {
		return false
	}
	if n.isLeaf() {
		return true
	}
	for _, c := range n.children {
		child := &t.nodes[c]
		if !child.isLeaf() || len(child.objects) > 0 {
			return false
		}
	}
	for i, c := range n.children {
		t.freeNode(c)
		n.children[i] = nilNode
	}
	return true
}

// prune collapses id and as many of its ancestors as have become empty.
func (t *QuadTree) prune(id nodeID) {
	if t.collapse(id) {
		t.collapseUp(id)
	}
}

func (t *QuadTree) collapseUp(id nodeID) {
	for parent := t.nodes[id].parent; parent != nilNode; parent = t.nodes[parent].parent {
		if !t.collapse(parent) {
			return
		}
	}
}

func (t *QuadTree) attach(id nodeID, obj int32) {
	t.nodes[id].objects = append(t.nodes[id].objects, obj)
	t.objects[obj].node = id
}

func (t *QuadTree) detach(id nodeID, obj int32) {
	held := t.nodes[id].objects
	for i, o := range held {
		if o == obj {
			// keep insertion order so query results stay stable
			t.nodes[id].objects = append(held[:i], held[i+1:]...)
			break
		}
	}
	t.objects[obj].node = nilNode
}

func (t *QuadTree) allocNode(region AABB, parent nodeID) nodeID {
	n := node{region: region, parent: parent, live: true}
	for i := range n.children {
		n.children[i] = nilNode
	}
	if k := len(t.freeNodes); k > 0 {
		id := t.freeNodes[k-1]
		t.freeNodes = t.freeNodes[:k-1]
		n.objects = t.nodes[id].objects[:0]
		t.nodes[id] = n
		return id
	}
	t.nodes = append(t.nodes, n)
	return nodeID(len(t.nodes) - 1)
}

func (t *QuadTree) freeNode(id nodeID) {
	n := &t.nodes[id]
	if !n.isLeaf() {
		for _, c := range n.children {
			t.freeNode(c)
		}
	}
	n.live = false
	n.parent = nilNode
	n.objects = n.objects[:0]
	for i := range n.children {
		n.children[i] = nilNode
	}
	t.freeNodes = append(t.freeNodes, id)
}

func (t *QuadTree) allocObject(box AABB, payload any) Handle {
	if k := len(t.freeObjects); k > 0 {
		idx := t.freeObjects[k-1]
		t.freeObjects = t.freeObjects[:k-1]
		o := &t.objects[idx]
		o.bounds = box
		o.payload = payload
		o.node = nilNode
		o.live = true
		return Handle{index: idx, gen: o.gen}
	}
	t.objects = append(t.objects, object{bounds: box, payload: payload, node: nilNode, gen: 1, live: true})
	return Handle{index: int32(len(t.objects) - 1), gen: 1}
}

func (t *QuadTree) freeObject(idx int32) {
	o := &t.objects[idx]
	o.live = false
	o.payload = nil
	o.node = nilNode
	o.gen++
	if o.gen == 0 {
		o.gen = 1
	}
	t.freeObjects = append(t.freeObjects, idx)
}
