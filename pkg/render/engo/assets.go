// pkg/render/engo/assets.go
package engo

import (
	"image/color"

	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-outbreak/pkg/entity"
)

// AssetManager hands out the drawables and colors the viewer uses. Agents
// are tinted discs and walls are tinted squares, so nothing is loaded from
// disk.
type AssetManager struct {
	agentShape common.Drawable
	wallShape  common.Drawable

	materialColors map[entity.Material]color.RGBA
	fallback       color.RGBA
	background     color.RGBA
}

// NewAssetManager creates an asset manager with the default palette.
func NewAssetManager() *AssetManager {
	return &AssetManager{
		agentShape: common.Circle{},
		wallShape:  common.Rectangle{},
		materialColors: map[entity.Material]color.RGBA{
			entity.RedBrick:   {R: 0x8b, G: 0x2e, B: 0x1f, A: 0xff},
			entity.BlueBrick:  {R: 0x2a, G: 0x3f, B: 0x7a, A: 0xff},
			entity.Glass:      {R: 0x9f, G: 0xd8, B: 0xe6, A: 0xa0},
			entity.LightBrick: {R: 0xc8, G: 0xb4, B: 0x8c, A: 0xff},
		},
		fallback:   color.RGBA{R: 128, G: 128, B: 128, A: 255},
		background: color.RGBA{R: 0x1b, G: 0x1d, B: 0x1a, A: 0xff},
	}
}

// AgentDrawable returns the shape drawn for every agent.
func (am *AssetManager) AgentDrawable() common.Drawable {
	return am.agentShape
}

// WallDrawable returns the shape drawn for every obstacle.
func (am *AssetManager) WallDrawable() common.Drawable {
	return am.wallShape
}

// MaterialColor returns the tint for a wall material. Unknown materials are
// grey.
func (am *AssetManager) MaterialColor(m entity.Material) color.RGBA {
	if c, ok := am.materialColors[m]; ok {
		return c
	}
	return am.fallback
}

// SetMaterialColor overrides the tint for m.
func (am *AssetManager) SetMaterialColor(m entity.Material, c color.RGBA) {
	am.materialColors[m] = c
}

// Background returns the clear color.
func (am *AssetManager) Background() color.RGBA {
	return am.background
}
