// pkg/render/engo/scene.go
package engo

import (
	"context"
	"errors"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-outbreak/pkg/engine"
	"github.com/opd-ai/go-outbreak/pkg/logging"
)

// restartDelay is how long a finished round stays on screen before Restart
// is consulted.
const restartDelay = 3.0

// GameScene runs a round locally and draws it with engo.
type GameScene struct {
	game   *engine.Game
	logger *logging.Logger

	assets   *AssetManager
	renderer *EngoRenderer
	camera   *CameraSystem
	input    *InputSystem
	hud      *HUDSystem

	// Restart, when set, builds the next round once the current one ends.
	Restart func() (*engine.Game, error)

	endedFor float32
}

// NewGameScene creates a scene for game.
func NewGameScene(game *engine.Game, logger *logging.Logger) *GameScene {
	if logger == nil {
		logger = logging.Discard()
	}
	return &GameScene{
		game:   game,
		logger: logger,
		assets: NewAssetManager(),
	}
}

// Type returns the scene type (required by Engo)
func (scene *GameScene) Type() string {
	return "OutbreakScene"
}

// Preload is called before the scene starts (required by Engo)
func (scene *GameScene) Preload() {}

// Setup is called when the scene starts (required by Engo)
func (scene *GameScene) Setup(u engo.Updater) {
	world, _ := u.(*ecs.World)

	common.SetBackground(scene.assets.Background())

	renderSystem := &common.RenderSystem{}
	world.AddSystem(renderSystem)
	scene.renderer = NewEngoRenderer(renderSystem, scene.assets)

	SetupInputBindings()
	scene.camera = NewCameraSystem()
	scene.input = NewInputSystem(scene.game)
	scene.hud = NewHUDSystem(scene.status)
	scene.hud.Attach(renderSystem, engo.GameWidth(), engo.GameHeight())

	world.AddSystem(scene.input)
	world.AddSystem(&simulationSystem{scene: scene})
	world.AddSystem(scene.camera)
	world.AddSystem(scene.hud)

	if !scene.game.Running() {
		scene.game.Start()
	}
	scene.camera.SetTarget(scene.game.PlayerPosition())
}

// Exit is called when the scene is exiting (required by Engo)
func (scene *GameScene) Exit() {
	scene.game.Stop()
}

func (scene *GameScene) status() Status {
	s := scene.game.Summary()
	return Status{Frame: s.Frames, Humans: s.Humans, Zombies: s.Zombies, Outcome: s.Outcome}
}

// advance steps the round by dt and redraws it. After a round ends it waits
// restartDelay seconds and then swaps in the next round from Restart.
func (scene *GameScene) advance(dt float32) {
	if scene.game.Running() {
		if !scene.input.Paused() {
			if err := scene.game.Step(float64(dt)); err != nil && !errors.Is(err, engine.ErrNotRunning) {
				scene.logger.Error(context.Background(), "simulation step failed", err)
			}
		}
	} else if scene.Restart != nil {
		scene.endedFor += dt
		if scene.endedFor >= restartDelay {
			scene.restart()
		}
	}

	scene.game.Render(scene.renderer)
	scene.camera.SetTarget(scene.game.PlayerPosition())
}

func (scene *GameScene) restart() {
	scene.endedFor = 0
	next, err := scene.Restart()
	if err != nil {
		scene.logger.Error(context.Background(), "failed to start next round", err)
		scene.Restart = nil
		return
	}
	scene.renderer.Reset()
	scene.game = next
	scene.input.SetController(next)
	scene.game.Start()
}

// simulationSystem drives the round from engo's update loop.
type simulationSystem struct {
	scene *GameScene
}

func (s *simulationSystem) Update(dt float32) {
	s.scene.advance(dt)
}

func (s *simulationSystem) Remove(basic ecs.BasicEntity) {}
