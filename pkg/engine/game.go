// pkg/engine/game.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/EngoEngine/ecs"
	"github.com/google/uuid"

	"github.com/opd-ai/go-outbreak/pkg/collision"
	"github.com/opd-ai/go-outbreak/pkg/config"
	"github.com/opd-ai/go-outbreak/pkg/entity"
	"github.com/opd-ai/go-outbreak/pkg/event"
	"github.com/opd-ai/go-outbreak/pkg/level"
	"github.com/opd-ai/go-outbreak/pkg/logging"
	"github.com/opd-ai/go-outbreak/pkg/metrics"
	"github.com/opd-ai/go-outbreak/pkg/physics"
	"github.com/opd-ai/go-outbreak/pkg/spatial"
)

// GameStatus is the lifecycle state of a round.
type GameStatus int

const (
	GameStatusWaiting GameStatus = iota
	GameStatusActive
	GameStatusEnded
)

func (s GameStatus) String() string {
	switch s {
	case GameStatusWaiting:
		return "waiting"
	case GameStatusActive:
		return "active"
	default:
		return "ended"
	}
}

// ErrNotRunning is returned by Step when the round is not active.
var ErrNotRunning = errors.New("engine: round is not running")

// Game owns one round: the level, the agents, the spatial index over them
// and the systems that advance them.
type Game struct {
	Config    *config.GameConfig
	Level     *level.Level
	RoundID   string
	// EventBus handlers run after EntityLock is released and may read the
	// game, but must not call Step.
	EventBus  *event.Bus
	Tree      *spatial.QuadTree
	Rosters   *collision.Rosters
	Player    *entity.Agent
	Agents    []*entity.Agent // player first, then zombies, then humans
	Obstacles []*entity.Obstacle

	EntityLock  sync.RWMutex
	Status      GameStatus
	Outcome     collision.Outcome
	CurrentTick uint64
	StartTime   time.Time
	EndTime     time.Time
	// Err is the structural error that stopped the round, if any.
	Err error

	logger    *logging.Logger
	ctx       context.Context
	world     ecs.World
	rng       *rand.Rand
	dt        float64
	playerDir physics.Vector2D
	resolver  *collision.Resolver
	driver    *collision.Driver
	queryBuf  []spatial.Handle
	// pending holds events raised under EntityLock until it is released.
	pending []event.Event
}

// NewGame builds a round from cfg and lvl. Obstacles, the player and the
// zombies are placed where the level says; humans are spawned on random free
// cells.
func NewGame(cfg *config.GameConfig, lvl *level.Level, logger *logging.Logger) (*Game, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	policy, model, err := cfg.Physics.Policies()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	tree, err := spatial.NewWithCapacity(lvl.Bounds(), cfg.World.TreeCapacity)
	if err != nil {
		return nil, fmt.Errorf("build spatial index for %s: %w", lvl.Name, err)
	}

	seed := cfg.Agents.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	roundID := uuid.NewString()
	g := &Game{
		Config:   cfg,
		Level:    lvl,
		RoundID:  roundID,
		EventBus: event.NewEventBus(),
		Tree:     tree,
		Rosters:  collision.NewRosters(),
		logger:   logger.With("round_id", roundID, "level", lvl.Name),
		ctx:      logging.WithCorrelationID(context.Background(), roundID),
		rng:      rand.New(rand.NewSource(seed)),
	}

	g.resolver = &collision.Resolver{
		Policy:  policy,
		Mass:    model,
		Elastic: cfg.Physics.Elastic,
		Rosters: g.Rosters,
		Speeds: map[entity.Kind]float64{
			entity.Human:  cfg.Agents.HumanSpeed,
			entity.Zombie: cfg.Agents.ZombieSpeed,
		},
	}
	g.driver = collision.NewDriver(tree, g.resolver)
	tree.OnExpand(g.handleExpansion)

	if err := g.populate(); err != nil {
		return nil, err
	}

	g.world.AddSystem(&MovementSystem{game: g})
	g.world.AddSystem(&CollisionSystem{game: g})
	g.world.AddSystem(&RulesSystem{game: g})
	// Nobody can have subscribed to expansions made while placing agents.
	g.pending = nil

	return g, nil
}

// populate inserts every obstacle and agent into the index.
func (g *Game) populate() error {
	for _, tile := range g.Level.Tiles {
		o := entity.NewObstacle(tile.Material, tile.Box)
		h, err := g.Tree.Insert(o.Bounds(), o)
		if err != nil {
			return fmt.Errorf("insert %s tile at %d,%d: %w", tile.Material, tile.Col, tile.Row, err)
		}
		o.Handle = h
		g.Obstacles = append(g.Obstacles, o)
	}

	agents := g.Config.Agents
	g.Player = entity.NewAgent(entity.Player, g.Level.PlayerStart, agents.Radius, agents.PlayerSpeed)
	if err := g.addAgent(g.Player); err != nil {
		return err
	}

	for _, pos := range g.Level.ZombieStarts {
		if err := g.addAgent(entity.NewAgent(entity.Zombie, pos, agents.Radius, agents.ZombieSpeed)); err != nil {
			return err
		}
	}

	free := g.Level.FreeCells()
	if g.Level.HumanCount > 0 && len(free) == 0 {
		return fmt.Errorf("level %s has no free cells for %d humans", g.Level.Name, g.Level.HumanCount)
	}
	order := g.rng.Perm(len(free))
	for i := 0; i < g.Level.HumanCount; i++ {
		pos := free[order[i%len(order)]]
		if err := g.addAgent(entity.NewAgent(entity.Human, pos, agents.Radius, agents.HumanSpeed)); err != nil {
			return err
		}
	}
	return nil
}

func (g *Game) addAgent(a *entity.Agent) error {
	h, err := g.Tree.Insert(a.Bounds(), a)
	if err != nil {
		return fmt.Errorf("insert %s %d: %w", a.Kind, a.ID(), err)
	}
	a.Handle = h
	g.Agents = append(g.Agents, a)
	g.Rosters.Add(a)
	return nil
}

// Start begins the round.
func (g *Game) Start() {
	g.EntityLock.Lock()
	defer g.unlockAndPublish()

	if g.Status != GameStatusWaiting {
		return
	}
	g.Status = GameStatusActive
	g.StartTime = time.Now()
	g.updateGauges()

	g.logger.Info(g.ctx, "round started",
		"humans", g.Rosters.Humans.Len(),
		"zombies", g.Rosters.Zombies.Len(),
		"obstacles", len(g.Obstacles))
	g.emit(event.NewRoundEvent(event.GameStarted, g, g.RoundID, g.Level.Name, 0, ""))
}

// Stop ends the round early. The outcome stays whatever it was.
func (g *Game) Stop() {
	g.EntityLock.Lock()
	defer g.unlockAndPublish()

	g.endRound()
}

// Step advances the round by dt seconds.
func (g *Game) Step(dt float64) error {
	g.EntityLock.Lock()
	defer g.unlockAndPublish()

	if g.Status != GameStatusActive {
		return ErrNotRunning
	}
	start := time.Now()

	g.dt = dt
	g.world.Update(float32(dt))

	metrics.ObserveFrame(time.Since(start))
	return g.Err
}

// Running reports whether the round is active.
func (g *Game) Running() bool {
	g.EntityLock.RLock()
	defer g.EntityLock.RUnlock()
	return g.Status == GameStatusActive
}

// SetPlayerDirection sets the direction the player moves in from the next
// step on. A zero vector stops the player.
func (g *Game) SetPlayerDirection(dir physics.Vector2D) {
	g.EntityLock.Lock()
	defer g.EntityLock.Unlock()
	g.playerDir = dir
}

// Render draws the round through r.
func (g *Game) Render(r entity.Renderer) {
	g.EntityLock.RLock()
	defer g.EntityLock.RUnlock()

	r.Clear()
	for _, o := range g.Obstacles {
		o.Render(r)
	}
	for _, a := range g.Agents {
		a.Render(r)
	}
	r.Present()
}

// fail stops the round after a structural error. Must be called with the
// lock held.
func (g *Game) fail(err error) {
	if g.Err != nil {
		return
	}
	g.Err = err
	g.logger.Error(g.ctx, "round aborted", err, "frame", g.CurrentTick)
	g.endRound()
}

// endRound must be called with the lock held.
func (g *Game) endRound() {
	if g.Status == GameStatusEnded {
		return
	}
	g.Status = GameStatusEnded
	g.EndTime = time.Now()

	label := g.OutcomeLabel()
	metrics.CountRound(label)
	g.logger.Info(g.ctx, "round ended",
		"outcome", label,
		"frames", g.CurrentTick,
		"humans", g.Rosters.Humans.Len(),
		"zombies", g.Rosters.Zombies.Len(),
		"expansions", g.Tree.Expansions())
	g.emit(event.NewRoundEvent(event.GameEnded, g, g.RoundID, g.Level.Name, g.CurrentTick, label))
}

// OutcomeLabel names the outcome for logs and records. A round stopped by a
// structural error is "aborted".
func (g *Game) OutcomeLabel() string {
	if g.Err != nil {
		return "aborted"
	}
	return g.Outcome.String()
}

func (g *Game) handleExpansion(from, to spatial.AABB) {
	metrics.CountExpansion()
	g.logger.Debug(g.ctx, "spatial index expanded", "from", from.String(), "to", to.String())
	g.emit(event.NewTreeEvent(g, from, to))
}

// emit queues e. Events are published once EntityLock is released, so
// handlers may call back into the game.
func (g *Game) emit(e event.Event) {
	g.pending = append(g.pending, e)
}

// unlockAndPublish releases EntityLock and publishes the queued events in
// the order they were raised.
func (g *Game) unlockAndPublish() {
	pending := g.pending
	g.pending = nil
	g.EntityLock.Unlock()

	for _, e := range pending {
		g.EventBus.Publish(e)
	}
}

func (g *Game) updateGauges() {
	metrics.SetPopulation(entity.Human.String(), g.Rosters.Humans.Len())
	metrics.SetPopulation(entity.Zombie.String(), g.Rosters.Zombies.Len())
	metrics.SetTreeNodes(g.Tree.NodeCount())
}
