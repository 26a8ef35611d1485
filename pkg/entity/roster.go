// pkg/entity/roster.go
package entity

// Roster is an insertion-ordered set of agents of one kind.
type Roster struct {
	kind    Kind
	order   []uint64
	members map[uint64]*Agent
}

// NewRoster creates an empty roster for agents of kind.
func NewRoster(kind Kind) *Roster {
	return &Roster{
		kind:    kind,
		members: make(map[uint64]*Agent),
	}
}

// Kind returns the kind of agents this roster tracks.
func (r *Roster) Kind() Kind {
	return r.kind
}

// Add inserts agent and reports whether it was not already present.
func (r *Roster) Add(agent *Agent) bool {
	id := agent.ID()
	if _, ok := r.members[id]; ok {
		return false
	}
	r.members[id] = agent
	r.order = append(r.order, id)
	return true
}

// Remove deletes the agent with the given id and returns it.
func (r *Roster) Remove(id uint64) (*Agent, bool) {
	agent, ok := r.members[id]
	if !ok {
		return nil, false
	}
	delete(r.members, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return agent, true
}

// Contains reports whether id is on the roster.
func (r *Roster) Contains(id uint64) bool {
	_, ok := r.members[id]
	return ok
}

// Get returns the agent with the given id.
func (r *Roster) Get(id uint64) (*Agent, bool) {
	agent, ok := r.members[id]
	return agent, ok
}

// Len returns the number of agents on the roster.
func (r *Roster) Len() int {
	return len(r.order)
}

// Empty reports whether the roster has no agents.
func (r *Roster) Empty() bool {
	return len(r.order) == 0
}

// IDs returns a copy of the member ids in insertion order.
func (r *Roster) IDs() []uint64 {
	out := make([]uint64, len(r.order))
	copy(out, r.order)
	return out
}

// Each calls fn for every member in insertion order until fn returns false.
// fn must not modify the roster.
func (r *Roster) Each(fn func(*Agent) bool) {
	for _, id := range r.order {
		if !fn(r.members[id]) {
			return
		}
	}
}
