package engine

import (
	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-outbreak/pkg/collision"
	"github.com/opd-ai/go-outbreak/pkg/entity"
	"github.com/opd-ai/go-outbreak/pkg/event"
	"github.com/opd-ai/go-outbreak/pkg/metrics"
	"github.com/opd-ai/go-outbreak/pkg/physics"
	"github.com/opd-ai/go-outbreak/pkg/spatial"
)

// System priorities. The world runs higher priorities first, so every frame
// moves, then collides, then applies the rules.
const (
	MovementPriority  = 30
	CollisionPriority = 20
	RulesPriority     = 10
)

// MovementSystem steers and integrates every agent, then relocates it in the
// spatial index.
type MovementSystem struct {
	game *Game
}

func (*MovementSystem) Priority() int { return MovementPriority }

func (*MovementSystem) Remove(ecs.BasicEntity) {}

func (s *MovementSystem) Update(float32) {
	g := s.game
	if g.Status != GameStatusActive {
		return
	}

	for _, a := range g.Agents {
		switch a.Kind {
		case entity.Player:
			a.Body.Steer(g.playerDir, a.Speed)
		case entity.Zombie:
			if target, ok := g.nearestHuman(a); ok {
				a.Body.Steer(target.Sub(a.Body.Position), a.Speed)
				break
			}
			s.wander(a)
		default:
			s.wander(a)
		}

		a.Body.Integrate(g.dt)
		if err := collision.Sync(g.Tree, a); err != nil {
			g.fail(err)
			return
		}
	}
}

func (s *MovementSystem) wander(a *entity.Agent) {
	a.Wander.Tick(s.game.rng, s.game.Config.Agents.WanderInterval)
	a.Body.Steer(a.Wander.Direction(), a.Speed)
}

// nearestHuman returns the position of the closest human within the chase
// radius of z.
func (g *Game) nearestHuman(z *entity.Agent) (physics.Vector2D, bool) {
	radius := g.Config.Agents.ChaseRadius
	if radius <= 0 {
		return physics.Vector2D{}, false
	}

	p := z.Body.Position
	area := spatial.AABB{MinX: p.X - radius, MinY: p.Y - radius, MaxX: p.X + radius, MaxY: p.Y + radius}
	g.queryBuf = g.Tree.QueryAppend(g.queryBuf[:0], area)

	best, found := radius*radius, false
	var target physics.Vector2D
	for _, h := range g.queryBuf {
		payload, err := g.Tree.Payload(h)
		if err != nil {
			continue
		}
		other, ok := payload.(*entity.Agent)
		if !ok || other.Kind != entity.Human {
			continue
		}
		if d := other.Body.Position.Sub(p).LengthSquared(); d < best {
			best, target, found = d, other.Body.Position, true
		}
	}
	return target, found
}

// CollisionSystem runs the broad and narrow phases over the moved agents.
type CollisionSystem struct {
	game *Game
}

func (*CollisionSystem) Priority() int { return CollisionPriority }

func (*CollisionSystem) Remove(ecs.BasicEntity) {}

func (s *CollisionSystem) Update(float32) {
	g := s.game
	if g.Status != GameStatusActive {
		return
	}

	report, err := g.driver.Run(g.Agents)
	if err != nil {
		g.fail(err)
		return
	}

	metrics.CountContacts("dynamic", report.Contacts)
	metrics.CountContacts("static", report.StaticContacts)

	for _, p := range report.Pairs {
		g.emit(event.NewCollisionEvent(g, p.A, p.B, p.Static))
	}
	for _, t := range report.Transitions {
		eventType := event.AgentCured
		if t.To.Hunter() {
			eventType = event.AgentInfected
		}
		metrics.CountTransition(t.From.String(), t.To.String())
		g.logger.Debug(g.ctx, "agent changed kind",
			"agent", t.AgentID, "by", t.ByID, "from", t.From.String(), "to", t.To.String())
		g.emit(event.NewAgentEvent(eventType, g, t.AgentID, t.ByID, t.From.String(), t.To.String()))
	}
}

// RulesSystem counts the frame, checks the index when configured to, and
// ends the round once an outcome is reached.
type RulesSystem struct {
	game *Game
}

func (*RulesSystem) Priority() int { return RulesPriority }

func (*RulesSystem) Remove(ecs.BasicEntity) {}

func (s *RulesSystem) Update(float32) {
	g := s.game
	if g.Status != GameStatusActive {
		return
	}
	g.CurrentTick++

	if g.Config.World.ValidateTree {
		if err := g.Tree.Validate(); err != nil {
			g.fail(err)
			return
		}
	}
	g.updateGauges()

	g.Outcome = collision.Evaluate(g.Rosters)
	if g.Outcome == collision.Playing {
		if limit := g.Config.Rules.FrameLimit; limit > 0 && g.CurrentTick >= uint64(limit) {
			g.Outcome = collision.TimeUp
		}
	}
	if g.Outcome.Terminal() {
		g.endRound()
	}
}
