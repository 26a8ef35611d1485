package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/opd-ai/go-outbreak/pkg/entity"
	"github.com/opd-ai/go-outbreak/pkg/physics"
	"github.com/opd-ai/go-outbreak/pkg/snapshot"
	"github.com/opd-ai/go-outbreak/pkg/spatial"
)

func TestNewTerminalRenderer_CreatesValidRenderer_WithCorrectDimensions(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		scale  float64
		want   float64
	}{
		{"small renderer", 10, 5, 1.0, 1.0},
		{"medium renderer", 80, 24, 10.0, 10.0},
		{"zero scale defaults to one", 20, 10, 0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := NewTerminalRenderer(&bytes.Buffer{}, tt.width, tt.height, tt.scale)

			if renderer.scale != tt.want {
				t.Errorf("expected scale %f, got %f", tt.want, renderer.scale)
			}
			if len(renderer.buffer) != tt.height {
				t.Errorf("expected buffer height %d, got %d", tt.height, len(renderer.buffer))
			}
			for i, row := range renderer.buffer {
				if len(row) != tt.width {
					t.Errorf("row %d: expected width %d, got %d", i, tt.width, len(row))
				}
				if strings.TrimSpace(string(row)) != "" {
					t.Errorf("row %d not blank: %q", i, string(row))
				}
			}
		})
	}
}

func TestWorldToScreen(t *testing.T) {
	r := NewTerminalRenderer(&bytes.Buffer{}, 10, 10, 2)
	r.SetCenter(physics.Vector2D{X: 100, Y: 100})

	tests := []struct {
		pos          physics.Vector2D
		wantX, wantY int
	}{
		{physics.Vector2D{X: 100, Y: 100}, 5, 5},
		{physics.Vector2D{X: 90, Y: 90}, 0, 0},
		{physics.Vector2D{X: 89, Y: 100}, -1, 5},
		{physics.Vector2D{X: 109.9, Y: 101}, 9, 5},
	}
	for _, tt := range tests {
		x, y := r.worldToScreen(tt.pos)
		if x != tt.wantX || y != tt.wantY {
			t.Errorf("worldToScreen(%v) = (%d,%d), want (%d,%d)", tt.pos, x, y, tt.wantX, tt.wantY)
		}
	}
}

func TestTerminalRenderer_RendersAgentsAndWalls(t *testing.T) {
	var out bytes.Buffer
	r := NewTerminalRenderer(&out, 4, 2, 1)
	r.SetCenter(physics.Vector2D{X: 2, Y: 1})

	wall := entity.NewObstacle(entity.RedBrick, spatial.MustAABB(0, 0, 2, 1))
	human := entity.NewAgent(entity.Human, physics.Vector2D{X: 2.5, Y: 0.5}, 0.4, 0)
	zombie := entity.NewAgent(entity.Zombie, physics.Vector2D{X: 0.5, Y: 1.5}, 0.4, 0)
	player := entity.NewAgent(entity.Player, physics.Vector2D{X: 3.5, Y: 1.5}, 0.4, 0)
	outside := entity.NewAgent(entity.Human, physics.Vector2D{X: 50, Y: 50}, 0.4, 0)

	r.Clear()
	r.RenderObstacle(wall)
	for _, a := range []*entity.Agent{human, zombie, player, outside} {
		r.RenderAgent(a)
	}
	r.Present()

	want := "+----+\n" +
		"|##h |\n" +
		"|Z  @|\n" +
		"+----+\n"
	if out.String() != want {
		t.Errorf("Present() wrote\n%s\nwant\n%s", out.String(), want)
	}
}

func TestTerminalRenderer_ClearScreen(t *testing.T) {
	var out bytes.Buffer
	r := NewTerminalRenderer(&out, 1, 1, 1)
	r.ClearScreen = true
	r.Present()
	if !strings.HasPrefix(out.String(), "\033[H\033[2J") {
		t.Errorf("expected ANSI clear prefix, got %q", out.String())
	}
}

func TestTerminalRenderer_DrawFrame(t *testing.T) {
	var out bytes.Buffer
	r := NewTerminalRenderer(&out, 8, 4, 1)
	r.Fit(0, 0, 16, 8)

	if r.scale != 2 {
		t.Fatalf("Fit() scale = %f, want 2", r.scale)
	}

	r.DrawFrame(&snapshot.Frame{
		Level:   "yard",
		Frame:   12,
		Humans:  1,
		Zombies: 1,
		Outcome: "playing",
		Walls:   []snapshot.Wall{{Material: "glass", MinX: 0, MinY: 0, MaxX: 16, MaxY: 2}},
		Agents: []snapshot.Agent{
			{ID: 1, Kind: "human", X: 1, Y: 7},
			{ID: 2, Kind: "zombie", X: 15, Y: 7},
		},
	})

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("expected 7 lines, got %d:\n%s", len(lines), out.String())
	}
	if lines[1] != "|########|" {
		t.Errorf("wall row = %q", lines[1])
	}
	if lines[4] != "|h      Z|" {
		t.Errorf("agent row = %q", lines[4])
	}
	if lines[6] != "yard frame 12  humans 1  zombies 1  playing" {
		t.Errorf("status line = %q", lines[6])
	}
}

func TestAgentSymbol(t *testing.T) {
	tests := map[string]rune{"player": '@', "zombie": 'Z', "human": 'h', "ghost": '?'}
	for kind, want := range tests {
		if got := agentSymbol(kind); got != want {
			t.Errorf("agentSymbol(%q) = %q, want %q", kind, got, want)
		}
	}
}
