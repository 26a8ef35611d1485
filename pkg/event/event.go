// pkg/event/event.go
package event

import (
	"sync"

	"github.com/opd-ai/go-outbreak/pkg/spatial"
)

// Type represents the type of event
type Type string

// Event types published by the engine.
const (
	AgentInfected   Type = "agent_infected"
	AgentCured      Type = "agent_cured"
	EntityCollision Type = "entity_collision"
	TreeExpanded    Type = "tree_expanded"
	GameStarted     Type = "game_started"
	GameEnded       Type = "game_ended"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching. Handlers run
// synchronously on the publishing goroutine.
type Bus struct {
	handlers map[Type][]subscriber
	nextID   uint64
	mu       sync.RWMutex
}

// Subscription identifies a registered handler.
type Subscription struct {
	bus       *Bus
	eventType Type
	id        uint64
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscriber),
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscriber{id: b.nextID, handler: handler})
	return &Subscription{bus: b, eventType: eventType, id: b.nextID}
}

// Cancel removes the handler from its bus. Cancelling twice is a no-op.
func (s *Subscription) Cancel() {
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[s.eventType]
	for i, sub := range subs {
		if sub.id == s.id {
			b.handlers[s.eventType] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.handler(event)
	}
}

// AgentEvent reports an agent changing kind. ByID is the agent whose contact
// caused the change.
type AgentEvent struct {
	BaseEvent
	AgentID uint64
	ByID    uint64
	From    string
	To      string
}

// NewAgentEvent creates an infection or cure event.
func NewAgentEvent(eventType Type, source interface{}, agentID, byID uint64, from, to string) *AgentEvent {
	return &AgentEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		AgentID: agentID,
		ByID:    byID,
		From:    from,
		To:      to,
	}
}

// CollisionEvent contains information about entity collisions
type CollisionEvent struct {
	BaseEvent
	EntityA uint64
	EntityB uint64
	Static  bool
}

// NewCollisionEvent creates a new collision event
func NewCollisionEvent(source interface{}, entityA, entityB uint64, static bool) *CollisionEvent {
	return &CollisionEvent{
		BaseEvent: BaseEvent{
			EventType: EntityCollision,
			Source:    source,
		},
		EntityA: entityA,
		EntityB: entityB,
		Static:  static,
	}
}

// TreeEvent reports the spatial index root growing.
type TreeEvent struct {
	BaseEvent
	From spatial.AABB
	To   spatial.AABB
}

// NewTreeEvent creates a tree expansion event.
func NewTreeEvent(source interface{}, from, to spatial.AABB) *TreeEvent {
	return &TreeEvent{
		BaseEvent: BaseEvent{
			EventType: TreeExpanded,
			Source:    source,
		},
		From: from,
		To:   to,
	}
}

// RoundEvent marks the start or end of a round.
type RoundEvent struct {
	BaseEvent
	RoundID string
	Level   string
	Frame   uint64
	Outcome string
}

// NewRoundEvent creates a round lifecycle event.
func NewRoundEvent(eventType Type, source interface{}, roundID, level string, frame uint64, outcome string) *RoundEvent {
	return &RoundEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		RoundID: roundID,
		Level:   level,
		Frame:   frame,
		Outcome: outcome,
	}
}
