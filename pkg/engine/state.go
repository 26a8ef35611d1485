package engine

import (
	"time"

	"github.com/opd-ai/go-outbreak/pkg/physics"
	"github.com/opd-ai/go-outbreak/pkg/snapshot"
)

// PlayerPosition returns where the player currently stands.
func (g *Game) PlayerPosition() physics.Vector2D {
	g.EntityLock.RLock()
	defer g.EntityLock.RUnlock()
	return g.Player.Body.Position
}

// Snapshot returns an immutable copy of the round state. Walls are included
// only when withWalls is set since they never change during a round.
func (g *Game) Snapshot(withWalls bool) *snapshot.Frame {
	g.EntityLock.RLock()
	defer g.EntityLock.RUnlock()

	world := g.Tree.Region()
	f := &snapshot.Frame{
		RoundID: g.RoundID,
		Level:   g.Level.Name,
		Frame:   g.CurrentTick,
		Status:  g.Status.String(),
		Outcome: g.OutcomeLabel(),
		Humans:  g.Rosters.Humans.Len(),
		Zombies: g.Rosters.Zombies.Len(),
		Agents:  make([]snapshot.Agent, 0, len(g.Agents)),
		World:   [4]float64{world.MinX, world.MinY, world.MaxX, world.MaxY},
	}

	for _, a := range g.Agents {
		f.Agents = append(f.Agents, snapshot.Agent{
			ID:     a.ID(),
			Kind:   a.Kind.String(),
			X:      a.Body.Position.X,
			Y:      a.Body.Position.Y,
			Radius: a.Body.Radius,
			Marker: snapshot.PackColor(a.Marker.R, a.Marker.G, a.Marker.B, a.Marker.A),
		})
	}

	if withWalls {
		f.Walls = make([]snapshot.Wall, 0, len(g.Obstacles))
		for _, o := range g.Obstacles {
			f.Walls = append(f.Walls, snapshot.Wall{
				Material: o.Material.String(),
				MinX:     o.Box.MinX,
				MinY:     o.Box.MinY,
				MaxX:     o.Box.MaxX,
				MaxY:     o.Box.MaxY,
			})
		}
	}
	return f
}

// Summary is the record of a finished round.
type Summary struct {
	RoundID    string
	Level      string
	Outcome    string
	Frames     uint64
	Humans     int
	Zombies    int
	Expansions int
	FinishedAt time.Time
}

// Summary describes the round as it stands.
func (g *Game) Summary() Summary {
	g.EntityLock.RLock()
	defer g.EntityLock.RUnlock()

	return Summary{
		RoundID:    g.RoundID,
		Level:      g.Level.Name,
		Outcome:    g.OutcomeLabel(),
		Frames:     g.CurrentTick,
		Humans:     g.Rosters.Humans.Len(),
		Zombies:    g.Rosters.Zombies.Len(),
		Expansions: g.Tree.Expansions(),
		FinishedAt: g.EndTime,
	}
}
