// pkg/collision/driver.go
package collision

import (
	"fmt"

	"github.com/opd-ai/go-outbreak/pkg/entity"
	"github.com/opd-ai/go-outbreak/pkg/spatial"
)

// Driver runs the broad phase. For every dynamic agent it queries the index
// with the agent's bounds and hands each candidate to the resolver straight
// away, relocating whatever the resolver moved.
type Driver struct {
	tree     *spatial.QuadTree
	resolver *Resolver
	buf      []spatial.Handle
	report   Report
}

// NewDriver creates a driver over tree.
func NewDriver(tree *spatial.QuadTree, resolver *Resolver) *Driver {
	return &Driver{tree: tree, resolver: resolver}
}

// Run resolves every contact involving agents. All movement for the frame
// must already have been relocated in the tree. Agents are visited in slice
// order; agent pairs are resolved once, from the side with the lower ID.
//
// The returned report is reused by the next call.
func (d *Driver) Run(agents []*entity.Agent) (*Report, error) {
	d.report.reset()

	for _, a := range agents {
		d.buf = d.tree.QueryAppend(d.buf[:0], a.Bounds())

		for _, h := range d.buf {
			payload, err := d.tree.Payload(h)
			if err != nil {
				return &d.report, err
			}

			switch other := payload.(type) {
			case *entity.Agent:
				if other == a || other.ID() < a.ID() {
					continue
				}
				if d.resolver.Dynamic(a, other, &d.report) {
					if err := Sync(d.tree, a); err != nil {
						return &d.report, err
					}
					if err := Sync(d.tree, other); err != nil {
						return &d.report, err
					}
				}
			case *entity.Obstacle:
				if d.resolver.Static(a, other, &d.report) {
					if err := Sync(d.tree, a); err != nil {
						return &d.report, err
					}
				}
			default:
				return &d.report, fmt.Errorf("collision: unexpected payload %T", payload)
			}
		}
	}
	return &d.report, nil
}

// Sync moves the agent's tree entry to its current bounds.
func Sync(tree *spatial.QuadTree, a *entity.Agent) error {
	if err := tree.Relocate(a.Handle, a.Bounds()); err != nil {
		return fmt.Errorf("relocate agent %d: %w", a.ID(), err)
	}
	return nil
}
