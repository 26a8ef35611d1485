// pkg/collision/resolver.go
package collision

import (
	"github.com/opd-ai/go-outbreak/pkg/entity"
	"github.com/opd-ai/go-outbreak/pkg/physics"
)

// Rosters holds the agents of each infectable kind. The player is tracked
// separately and never appears here.
type Rosters struct {
	Humans  *entity.Roster
	Zombies *entity.Roster
}

// NewRosters creates empty human and zombie rosters.
func NewRosters() *Rosters {
	return &Rosters{
		Humans:  entity.NewRoster(entity.Human),
		Zombies: entity.NewRoster(entity.Zombie),
	}
}

// For returns the roster that tracks kind, or nil for the player.
func (r *Rosters) For(kind entity.Kind) *entity.Roster {
	switch kind {
	case entity.Human:
		return r.Humans
	case entity.Zombie:
		return r.Zombies
	default:
		return nil
	}
}

// Add puts agent on the roster for its kind.
func (r *Rosters) Add(agent *entity.Agent) {
	if roster := r.For(agent.Kind); roster != nil {
		roster.Add(agent)
	}
}

// Total returns the combined size of both rosters.
func (r *Rosters) Total() int {
	return r.Humans.Len() + r.Zombies.Len()
}

// Transition records an agent changing kind.
type Transition struct {
	AgentID uint64
	ByID    uint64
	From    entity.Kind
	To      entity.Kind
}

// Correction records how far an agent was pushed during resolution.
type Correction struct {
	AgentID uint64
	Delta   physics.Vector2D
}

// Pair is one resolved contact. For a static contact B is the obstacle.
type Pair struct {
	A, B   uint64
	Static bool
}

// Report collects what happened during one collision pass.
type Report struct {
	Contacts       int
	StaticContacts int
	Pairs          []Pair
	Corrections    []Correction
	Transitions    []Transition
}

// Infections returns how many transitions turned prey into hunters.
func (r *Report) Infections() int {
	n := 0
	for _, t := range r.Transitions {
		if t.To.Hunter() {
			n++
		}
	}
	return n
}

// Cures returns how many transitions turned hunters back into prey.
func (r *Report) Cures() int {
	return len(r.Transitions) - r.Infections()
}

func (r *Report) reset() {
	r.Contacts = 0
	r.StaticContacts = 0
	r.Pairs = r.Pairs[:0]
	r.Corrections = r.Corrections[:0]
	r.Transitions = r.Transitions[:0]
}

// Resolver applies the narrow phase to candidate pairs.
type Resolver struct {
	Policy  physics.StaticPolicy
	Mass    physics.MassModel
	Elastic bool
	Rosters *Rosters
	// Speeds, when set, gives the movement speed an agent adopts after
	// changing kind.
	Speeds map[entity.Kind]float64
}

// Dynamic resolves contact between two agents. It reports whether they
// overlapped.
func (r *Resolver) Dynamic(a, b *entity.Agent, report *Report) bool {
	authority := physics.AuthorityNone
	switch {
	case a.Kind.Authoritative():
		authority = physics.AuthorityA
	case b.Kind.Authoritative():
		authority = physics.AuthorityB
	}

	beforeA, beforeB := a.Body.Position, b.Body.Position
	if _, ok := physics.SeparateCircles(&a.Body, &b.Body, authority); !ok {
		return false
	}
	report.Contacts++
	report.Pairs = append(report.Pairs, Pair{A: a.ID(), B: b.ID()})
	recordCorrection(report, a, beforeA)
	recordCorrection(report, b, beforeB)

	if r.Elastic {
		r.exchangeVelocities(a, b, authority)
	}

	switch {
	case a.Kind.Hunter() && b.Kind.Prey():
		r.infect(b, a, report)
	case b.Kind.Hunter() && a.Kind.Prey():
		r.infect(a, b, report)
	case a.Kind.Hunter() && b.Kind.Authoritative():
		r.cure(a, b, report)
	case b.Kind.Hunter() && a.Kind.Authoritative():
		r.cure(b, a, report)
	}
	return true
}

// Static resolves contact between an agent and a wall. It reports whether
// they overlapped.
func (r *Resolver) Static(a *entity.Agent, o *entity.Obstacle, report *Report) bool {
	before := a.Body.Position
	axis := physics.ResolveStatic(&a.Body, o.Shape(), r.Policy)
	if axis == physics.AxisNone {
		return false
	}
	report.StaticContacts++
	report.Pairs = append(report.Pairs, Pair{A: a.ID(), B: o.ID(), Static: true})
	recordCorrection(report, a, before)

	if r.Policy == physics.StaticBounce && !a.Kind.Authoritative() {
		followVelocity(a)
	}
	return true
}

// exchangeVelocities applies the elastic response. An authoritative agent
// keeps its own velocity.
func (r *Resolver) exchangeVelocities(a, b *entity.Agent, authority physics.Authority) {
	keepA, keepB := a.Body.Velocity, b.Body.Velocity
	physics.ElasticVelocities(&a.Body, &b.Body, r.Mass)

	switch authority {
	case physics.AuthorityA:
		a.Body.Velocity = keepA
	case physics.AuthorityB:
		b.Body.Velocity = keepB
	}
	if !a.Kind.Authoritative() {
		followVelocity(a)
	}
	if !b.Kind.Authoritative() {
		followVelocity(b)
	}
}

// infect turns prey into the hunter's kind and moves it between rosters.
func (r *Resolver) infect(prey, hunter *entity.Agent, report *Report) {
	r.transition(prey, hunter.Kind, report, hunter.ID())
	prey.Marker = hunter.Marker
}

// cure reverts a hunter touched by the authoritative agent.
func (r *Resolver) cure(hunter, by *entity.Agent, report *Report) {
	r.transition(hunter, entity.Human, report, by.ID())
	hunter.Marker = entity.DefaultMarker(entity.Human)
}

func (r *Resolver) transition(agent *entity.Agent, to entity.Kind, report *Report, byID uint64) {
	from := agent.Kind
	if from == to {
		return
	}
	if r.Rosters != nil {
		if roster := r.Rosters.For(from); roster != nil {
			roster.Remove(agent.ID())
		}
		if roster := r.Rosters.For(to); roster != nil {
			roster.Add(agent)
		}
	}
	agent.Kind = to
	if speed, ok := r.Speeds[to]; ok {
		agent.Speed = speed
	}
	report.Transitions = append(report.Transitions, Transition{
		AgentID: agent.ID(),
		ByID:    byID,
		From:    from,
		To:      to,
	})
}

func recordCorrection(report *Report, a *entity.Agent, before physics.Vector2D) {
	delta := a.Body.Position.Sub(before)
	if delta.IsZero() {
		return
	}
	report.Corrections = append(report.Corrections, Correction{AgentID: a.ID(), Delta: delta})
}

// followVelocity turns the agent's wander heading towards its velocity so a
// bounce survives the next steering step.
func followVelocity(a *entity.Agent) {
	if !a.Body.Velocity.IsZero() {
		a.Wander.Heading = a.Body.Velocity.Angle()
	}
}
