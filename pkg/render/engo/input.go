// pkg/render/engo/input.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-outbreak/pkg/physics"
)

// Button names registered by SetupInputBindings.
const (
	ButtonUp        = "up"
	ButtonDown      = "down"
	ButtonLeft      = "left"
	ButtonRight     = "right"
	ButtonPause     = "pause"
	ButtonZoomIn    = "zoomIn"
	ButtonZoomOut   = "zoomOut"
	ButtonResetZoom = "resetZoom"
)

// PlayerController receives the player's movement direction.
type PlayerController interface {
	SetPlayerDirection(dir physics.Vector2D)
}

// InputSystem turns keyboard state into player movement.
type InputSystem struct {
	controller PlayerController
	last       physics.Vector2D
	paused     bool
}

// NewInputSystem creates an input system driving controller.
func NewInputSystem(controller PlayerController) *InputSystem {
	return &InputSystem{controller: controller}
}

// Remove satisfies the ecs.System interface
func (is *InputSystem) Remove(basic ecs.BasicEntity) {}

// Update reads the movement keys and forwards any change of direction.
func (is *InputSystem) Update(dt float32) {
	if engo.Input.Button(ButtonPause).JustPressed() {
		is.paused = !is.paused
	}
	is.apply(directionFrom(
		engo.Input.Button(ButtonUp).Down(),
		engo.Input.Button(ButtonDown).Down(),
		engo.Input.Button(ButtonLeft).Down(),
		engo.Input.Button(ButtonRight).Down(),
	))
}

func (is *InputSystem) apply(dir physics.Vector2D) {
	if dir == is.last {
		return
	}
	is.last = dir
	is.controller.SetPlayerDirection(dir)
}

// SetController switches the system to a new round.
func (is *InputSystem) SetController(controller PlayerController) {
	is.controller = controller
	is.last = physics.Vector2D{}
}

// Paused reports whether the simulation is paused.
func (is *InputSystem) Paused() bool {
	return is.paused
}

// directionFrom maps key state to a unit direction. World Y grows
// downwards, like the screen.
func directionFrom(up, down, left, right bool) physics.Vector2D {
	var dir physics.Vector2D
	if up {
		dir.Y--
	}
	if down {
		dir.Y++
	}
	if left {
		dir.X--
	}
	if right {
		dir.X++
	}
	return dir.Normalize()
}

// SetupInputBindings registers the viewer's keys.
func SetupInputBindings() {
	engo.Input.RegisterButton(ButtonUp, engo.KeyW, engo.KeyArrowUp)
	engo.Input.RegisterButton(ButtonDown, engo.KeyS, engo.KeyArrowDown)
	engo.Input.RegisterButton(ButtonLeft, engo.KeyA, engo.KeyArrowLeft)
	engo.Input.RegisterButton(ButtonRight, engo.KeyD, engo.KeyArrowRight)
	engo.Input.RegisterButton(ButtonPause, engo.KeySpace)
	engo.Input.RegisterButton(ButtonZoomIn, engo.KeyE)
	engo.Input.RegisterButton(ButtonZoomOut, engo.KeyQ)
	engo.Input.RegisterButton(ButtonResetZoom, engo.KeyR)
}
