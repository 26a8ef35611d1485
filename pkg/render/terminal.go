package render

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/opd-ai/go-outbreak/pkg/entity"
	"github.com/opd-ai/go-outbreak/pkg/physics"
	"github.com/opd-ai/go-outbreak/pkg/snapshot"
)

// TerminalRenderer draws the world as ASCII: '@' player, 'Z' zombie,
// 'h' human and '#' wall. Each cell covers scale world units.
type TerminalRenderer struct {
	out       io.Writer
	width     int
	height    int
	buffer    [][]rune
	scale     float64
	centerPos physics.Vector2D
	status    string
	// ClearScreen emits an ANSI clear before every frame.
	ClearScreen bool
}

// NewTerminalRenderer creates a renderer writing to out.
func NewTerminalRenderer(out io.Writer, width, height int, scale float64) *TerminalRenderer {
	buffer := make([][]rune, height)
	for i := range buffer {
		buffer[i] = make([]rune, width)
	}
	if scale <= 0 {
		scale = 1
	}

	r := &TerminalRenderer{
		out:    out,
		width:  width,
		height: height,
		buffer: buffer,
		scale:  scale,
	}
	r.Clear()
	return r
}

// SetCenter sets the world position shown in the middle of the view.
func (r *TerminalRenderer) SetCenter(pos physics.Vector2D) {
	r.centerPos = pos
}

// Fit centers the view on the region and picks the smallest scale that
// shows all of it.
func (r *TerminalRenderer) Fit(minX, minY, maxX, maxY float64) {
	r.centerPos = physics.Vector2D{X: (minX + maxX) / 2, Y: (minY + maxY) / 2}
	sx := (maxX - minX) / float64(r.width)
	sy := (maxY - minY) / float64(r.height)
	r.scale = math.Max(math.Max(sx, sy), 1e-9)
}

func (r *TerminalRenderer) screen(pos physics.Vector2D) (float64, float64) {
	return (pos.X-r.centerPos.X)/r.scale + float64(r.width)/2,
		(pos.Y-r.centerPos.Y)/r.scale + float64(r.height)/2
}

func (r *TerminalRenderer) worldToScreen(pos physics.Vector2D) (int, int) {
	x, y := r.screen(pos)
	return int(math.Floor(x)), int(math.Floor(y))
}

func (r *TerminalRenderer) plot(pos physics.Vector2D, symbol rune) {
	x, y := r.worldToScreen(pos)
	if x >= 0 && x < r.width && y >= 0 && y < r.height {
		r.buffer[y][x] = symbol
	}
}

// fill marks every cell the box overlaps. The max edges are exclusive.
func (r *TerminalRenderer) fill(minX, minY, maxX, maxY float64, symbol rune) {
	fx0, fy0 := r.screen(physics.Vector2D{X: minX, Y: minY})
	fx1, fy1 := r.screen(physics.Vector2D{X: maxX, Y: maxY})
	x0, y0 := int(math.Floor(fx0)), int(math.Floor(fy0))
	x1, y1 := int(math.Ceil(fx1))-1, int(math.Ceil(fy1))-1
	for y := max(y0, 0); y <= min(y1, r.height-1); y++ {
		for x := max(x0, 0); x <= min(x1, r.width-1); x++ {
			r.buffer[y][x] = symbol
		}
	}
}

// Clear implements entity.Renderer.
func (r *TerminalRenderer) Clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = ' '
		}
	}
	r.status = ""
}

// Present implements entity.Renderer.
func (r *TerminalRenderer) Present() {
	w := bufio.NewWriter(r.out)
	defer w.Flush()

	if r.ClearScreen {
		w.WriteString("\033[H\033[2J")
	}

	border := "+" + strings.Repeat("-", r.width) + "+\n"
	w.WriteString(border)
	for y := range r.buffer {
		w.WriteByte('|')
		w.WriteString(string(r.buffer[y]))
		w.WriteString("|\n")
	}
	w.WriteString(border)
	if r.status != "" {
		w.WriteString(r.status)
		w.WriteByte('\n')
	}
}

// RenderAgent implements entity.Renderer.
func (r *TerminalRenderer) RenderAgent(agent *entity.Agent) {
	r.plot(agent.Body.Position, agentSymbol(agent.Kind.String()))
}

// RenderObstacle implements entity.Renderer.
func (r *TerminalRenderer) RenderObstacle(obstacle *entity.Obstacle) {
	b := obstacle.Box
	r.fill(b.MinX, b.MinY, b.MaxX, b.MaxY, '#')
}

// DrawFrame renders a snapshot with a status line underneath. Walls are
// drawn only when the frame carries them.
func (r *TerminalRenderer) DrawFrame(f *snapshot.Frame) {
	r.Clear()
	for _, w := range f.Walls {
		r.fill(w.MinX, w.MinY, w.MaxX, w.MaxY, '#')
	}
	for _, a := range f.Agents {
		r.plot(physics.Vector2D{X: a.X, Y: a.Y}, agentSymbol(a.Kind))
	}
	r.status = fmt.Sprintf("%s frame %d  humans %d  zombies %d  %s",
		f.Level, f.Frame, f.Humans, f.Zombies, f.Outcome)
	r.Present()
}

func agentSymbol(kind string) rune {
	switch kind {
	case "player":
		return '@'
	case "zombie":
		return 'Z'
	case "human":
		return 'h'
	default:
		return '?'
	}
}

var _ entity.Renderer = (*TerminalRenderer)(nil)
