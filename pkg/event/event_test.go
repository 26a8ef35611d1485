// pkg/event/event_test.go
package event

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/opd-ai/go-outbreak/pkg/spatial"
)

func TestNewEventBus_Creation_ReturnsInitializedBus(t *testing.T) {
	bus := NewEventBus()
	if bus == nil || bus.handlers == nil {
		t.Fatal("NewEventBus() returned an uninitialized bus")
	}
}

func TestBusPublish_WithSubscribers_CallsAllHandlers(t *testing.T) {
	bus := NewEventBus()
	var calls []string

	bus.Subscribe(AgentInfected, func(e Event) { calls = append(calls, "first") })
	bus.Subscribe(AgentInfected, func(e Event) { calls = append(calls, "second") })
	bus.Subscribe(AgentCured, func(e Event) { calls = append(calls, "cured") })

	bus.Publish(NewAgentEvent(AgentInfected, nil, 7, 3, "human", "zombie"))

	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Errorf("handlers called = %v, want [first second]", calls)
	}
}

func TestBusPublish_NoSubscribers_NoError(t *testing.T) {
	bus := NewEventBus()
	bus.Publish(NewCollisionEvent(nil, 1, 2, false))
}

func TestSubscriptionCancel_ValidSubscription_RemovesHandler(t *testing.T) {
	bus := NewEventBus()
	var first, second int

	sub := bus.Subscribe(GameEnded, func(Event) { first++ })
	bus.Subscribe(GameEnded, func(Event) { second++ })

	bus.Publish(NewRoundEvent(GameEnded, nil, "r1", "alley", 10, "win"))
	sub.Cancel()
	sub.Cancel()
	bus.Publish(NewRoundEvent(GameEnded, nil, "r1", "alley", 10, "win"))

	if first != 1 {
		t.Errorf("cancelled handler called %d times, want 1", first)
	}
	if second != 2 {
		t.Errorf("remaining handler called %d times, want 2", second)
	}
}

func TestBusSubscribe_ConcurrentAccess_ThreadSafe(t *testing.T) {
	bus := NewEventBus()
	var count atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			bus.Subscribe(EntityCollision, func(Event) { count.Add(1) })
		}()
		go func() {
			defer wg.Done()
			bus.Publish(NewCollisionEvent(nil, 1, 2, true))
		}()
	}
	wg.Wait()

	count.Store(0)
	bus.Publish(NewCollisionEvent(nil, 1, 2, true))
	if count.Load() != 20 {
		t.Errorf("handlers called %d times, want 20", count.Load())
	}
}

func TestEventConstructors(t *testing.T) {
	from := spatial.MustAABB(0, 0, 10, 10)
	to := spatial.MustAABB(0, 0, 20, 20)

	tests := []struct {
		name     string
		event    Event
		expected Type
	}{
		{name: "agent", event: NewAgentEvent(AgentCured, "src", 1, 2, "zombie", "human"), expected: AgentCured},
		{name: "collision", event: NewCollisionEvent("src", 1, 2, false), expected: EntityCollision},
		{name: "tree", event: NewTreeEvent("src", from, to), expected: TreeExpanded},
		{name: "round", event: NewRoundEvent(GameStarted, "src", "r", "l", 0, ""), expected: GameStarted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.event.GetType() != tt.expected {
				t.Errorf("GetType() = %v, want %v", tt.event.GetType(), tt.expected)
			}
			if tt.event.GetSource() != "src" {
				t.Errorf("GetSource() = %v, want src", tt.event.GetSource())
			}
		})
	}

	tree := NewTreeEvent(nil, from, to)
	if tree.From != from || tree.To != to {
		t.Errorf("TreeEvent regions = %v -> %v", tree.From, tree.To)
	}
}
