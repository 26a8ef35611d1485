// pkg/render/engo/renderer.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-outbreak/pkg/entity"
)

// spriteSink is the part of common.RenderSystem the renderer needs.
type spriteSink interface {
	Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent)
	Remove(basic ecs.BasicEntity)
}

type sprite struct {
	basic  ecs.BasicEntity
	render common.RenderComponent
	space  common.SpaceComponent
	seen   bool
}

// EngoRenderer implements entity.Renderer by keeping one engo sprite per
// simulation entity. Sprites not drawn between Clear and Present are removed.
type EngoRenderer struct {
	sink    spriteSink
	assets  *AssetManager
	sprites map[uint64]*sprite
}

// NewEngoRenderer creates a renderer that adds its sprites to sink.
func NewEngoRenderer(sink spriteSink, assets *AssetManager) *EngoRenderer {
	if assets == nil {
		assets = NewAssetManager()
	}
	return &EngoRenderer{
		sink:    sink,
		assets:  assets,
		sprites: make(map[uint64]*sprite),
	}
}

// RenderAgent implements entity.Renderer.
func (r *EngoRenderer) RenderAgent(agent *entity.Agent) {
	s := r.spriteFor(agent.ID(), r.assets.AgentDrawable())
	p, radius := agent.Body.Position, agent.Body.Radius
	s.space.Position = engo.Point{X: float32(p.X - radius), Y: float32(p.Y - radius)}
	s.space.Width = float32(2 * radius)
	s.space.Height = float32(2 * radius)
	s.render.Color = agent.Marker
}

// RenderObstacle implements entity.Renderer.
func (r *EngoRenderer) RenderObstacle(obstacle *entity.Obstacle) {
	s := r.spriteFor(obstacle.ID(), r.assets.WallDrawable())
	b := obstacle.Box
	s.space.Position = engo.Point{X: float32(b.MinX), Y: float32(b.MinY)}
	s.space.Width = float32(b.Width())
	s.space.Height = float32(b.Height())
	s.render.Color = r.assets.MaterialColor(obstacle.Material)
}

// Clear implements entity.Renderer.
func (r *EngoRenderer) Clear() {
	for _, s := range r.sprites {
		s.seen = false
	}
}

// Present implements entity.Renderer. The render system draws on its own
// update; Present only drops stale sprites.
func (r *EngoRenderer) Present() {
	for id, s := range r.sprites {
		if !s.seen {
			r.sink.Remove(s.basic)
			delete(r.sprites, id)
		}
	}
}

// Reset removes every sprite.
func (r *EngoRenderer) Reset() {
	for id, s := range r.sprites {
		r.sink.Remove(s.basic)
		delete(r.sprites, id)
	}
}

// Len returns the number of live sprites.
func (r *EngoRenderer) Len() int {
	return len(r.sprites)
}

// spriteFor returns the sprite for id, creating it on first use. Sprites are
// drawn in creation order, so walls rendered first stay underneath agents.
func (r *EngoRenderer) spriteFor(id uint64, shape common.Drawable) *sprite {
	s, ok := r.sprites[id]
	if !ok {
		s = &sprite{basic: ecs.NewBasic()}
		s.render.Drawable = shape
		r.sprites[id] = s
		r.sink.Add(&s.basic, &s.render, &s.space)
	}
	s.seen = true
	return s
}

var _ entity.Renderer = (*EngoRenderer)(nil)
