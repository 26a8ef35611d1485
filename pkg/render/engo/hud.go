// pkg/render/engo/hud.go
package engo

import (
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
)

// Status is what the HUD shows about the round.
type Status struct {
	Frame   uint64
	Humans  int
	Zombies int
	Outcome string
}

const (
	hudMargin    = 10
	hudBarWidth  = 240
	hudBarHeight = 12
)

// HUDSystem draws a population bar (humans against zombies) and, once the
// round is over, a banner tinted by the outcome.
type HUDSystem struct {
	status func() Status

	humans  sprite
	zombies sprite
	banner  sprite

	last Status

	friendlyColor color.RGBA
	enemyColor    color.RGBA
}

// NewHUDSystem creates a HUD reading the round through status.
func NewHUDSystem(status func() Status) *HUDSystem {
	hud := &HUDSystem{
		status:        status,
		friendlyColor: color.RGBA{R: 0x3c, G: 0xb4, B: 0x4b, A: 0xff},
		enemyColor:    color.RGBA{R: 0xb0, G: 0x1e, B: 0x1e, A: 0xff},
	}
	for _, s := range []*sprite{&hud.humans, &hud.zombies, &hud.banner} {
		s.basic = ecs.NewBasic()
		s.render.Drawable = common.Rectangle{}
	}
	hud.humans.render.Color = hud.friendlyColor
	hud.zombies.render.Color = hud.enemyColor
	hud.humans.space = common.SpaceComponent{
		Position: engo.Point{X: hudMargin, Y: hudMargin},
		Height:   hudBarHeight,
	}
	hud.zombies.space = hud.humans.space
	hud.banner.render.Hidden = true
	return hud
}

// Attach adds the HUD sprites to sink as screen-space overlays covering a
// width by height window.
func (hud *HUDSystem) Attach(sink spriteSink, width, height float32) {
	hud.banner.space = common.SpaceComponent{Width: width, Height: height}
	for _, s := range []*sprite{&hud.banner, &hud.humans, &hud.zombies} {
		s.render.SetShader(common.HUDShader)
		s.render.SetZIndex(10)
		sink.Add(&s.basic, &s.render, &s.space)
	}
}

// Remove satisfies the ecs.System interface
func (hud *HUDSystem) Remove(basic ecs.BasicEntity) {}

// Update resizes the bars and shows the banner once the round has ended.
func (hud *HUDSystem) Update(dt float32) {
	st := hud.status()
	hud.last = st

	humans, zombies := barWidths(st.Humans, st.Zombies, hudBarWidth)
	hud.humans.space.Width = humans
	hud.zombies.space.Position.X = hudMargin + humans
	hud.zombies.space.Width = zombies

	if c, ok := bannerColor(st.Outcome); ok {
		hud.banner.render.Color = c
		hud.banner.render.Hidden = false
	} else {
		hud.banner.render.Hidden = true
	}
}

// Last returns the status shown by the latest Update.
func (hud *HUDSystem) Last() Status {
	return hud.last
}

// barWidths splits total between humans and zombies by head count.
func barWidths(humans, zombies int, total float32) (float32, float32) {
	n := humans + zombies
	if n == 0 {
		return 0, 0
	}
	h := total * float32(humans) / float32(n)
	return h, total - h
}

// bannerColor returns the overlay tint for a finished round.
func bannerColor(outcome string) (color.RGBA, bool) {
	switch outcome {
	case "zombies_cured":
		return color.RGBA{R: 0x3c, G: 0xb4, B: 0x4b, A: 0x50}, true
	case "humans_wiped":
		return color.RGBA{R: 0xb0, G: 0x1e, B: 0x1e, A: 0x50}, true
	case "time_up", "aborted":
		return color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0x50}, true
	default:
		return color.RGBA{}, false
	}
}
