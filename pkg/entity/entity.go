// pkg/entity/entity.go
package entity

import (
	"fmt"
	"image/color"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-outbreak/pkg/physics"
	"github.com/opd-ai/go-outbreak/pkg/spatial"
)

// Kind classifies an agent for the infection rules.
type Kind int

const (
	Human Kind = iota
	Zombie
	Player
)

func (k Kind) String() string {
	switch k {
	case Human:
		return "human"
	case Zombie:
		return "zombie"
	case Player:
		return "player"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Hunter reports whether agents of this kind infect prey on contact.
func (k Kind) Hunter() bool { return k == Zombie }

// Prey reports whether agents of this kind can be infected.
func (k Kind) Prey() bool { return k == Human }

// Authoritative reports whether collisions never displace agents of this
// kind.
func (k Kind) Authoritative() bool { return k == Player }

// Default markers per kind. Infected humans take the marker of the zombie
// that bit them instead.
var (
	HumanMarker  = color.RGBA{R: 0x3c, G: 0xb4, B: 0x4b, A: 0xff}
	ZombieMarker = color.RGBA{R: 0xb0, G: 0x1e, B: 0x1e, A: 0xff}
	PlayerMarker = color.RGBA{R: 0x1e, G: 0x64, B: 0xd2, A: 0xff}
)

// DefaultMarker returns the marker a freshly spawned agent of kind k wears.
func DefaultMarker(k Kind) color.RGBA {
	switch k {
	case Zombie:
		return ZombieMarker
	case Player:
		return PlayerMarker
	default:
		return HumanMarker
	}
}

// Agent is a moving, round participant in the simulation.
type Agent struct {
	ecs.BasicEntity

	Kind   Kind
	Body   physics.Body
	Speed  float64
	Marker color.RGBA
	Handle spatial.Handle
	Wander WanderState
}

// NewAgent creates an agent centered at pos.
func NewAgent(kind Kind, pos physics.Vector2D, radius, speed float64) *Agent {
	return &Agent{
		BasicEntity: ecs.NewBasic(),
		Kind:        kind,
		Body:        physics.Body{Position: pos, Radius: radius},
		Speed:       speed,
		Marker:      DefaultMarker(kind),
	}
}

// Bounds returns the square enclosing the agent's collision circle.
func (a *Agent) Bounds() spatial.AABB {
	p, r := a.Body.Position, a.Body.Radius
	return spatial.AABB{MinX: p.X - r, MinY: p.Y - r, MaxX: p.X + r, MaxY: p.Y + r}
}

// Center returns the agent's position.
func (a *Agent) Center() physics.Vector2D {
	return a.Body.Position
}

// Render draws the agent through r.
func (a *Agent) Render(r Renderer) {
	r.RenderAgent(a)
}

// Material is the kind of wall tile an obstacle was built from.
type Material byte

const (
	RedBrick   Material = 'R'
	BlueBrick  Material = 'B'
	Glass      Material = 'G'
	LightBrick Material = 'L'
)

func (m Material) String() string {
	switch m {
	case RedBrick:
		return "red_brick"
	case BlueBrick:
		return "blue_brick"
	case Glass:
		return "glass"
	case LightBrick:
		return "light_brick"
	default:
		return fmt.Sprintf("Material(%q)", byte(m))
	}
}

// Obstacle is a static wall tile.
type Obstacle struct {
	ecs.BasicEntity

	Material Material
	Box      spatial.AABB
	Handle   spatial.Handle
}

// NewObstacle creates an obstacle covering box.
func NewObstacle(material Material, box spatial.AABB) *Obstacle {
	return &Obstacle{
		BasicEntity: ecs.NewBasic(),
		Material:    material,
		Box:         box,
	}
}

// Bounds implements spatial.Bounded.
func (o *Obstacle) Bounds() spatial.AABB {
	return o.Box
}

// Shape returns the obstacle as a physics box.
func (o *Obstacle) Shape() physics.Box {
	cx, cy := o.Box.Center()
	return physics.Box{
		Center: physics.Vector2D{X: cx, Y: cy},
		HalfW:  o.Box.Width() / 2,
		HalfH:  o.Box.Height() / 2,
	}
}

// Render draws the obstacle through r.
func (o *Obstacle) Render(r Renderer) {
	r.RenderObstacle(o)
}
