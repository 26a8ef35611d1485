// cmd/viewer/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-outbreak/pkg/config"
	"github.com/opd-ai/go-outbreak/pkg/engine"
	"github.com/opd-ai/go-outbreak/pkg/level"
	"github.com/opd-ai/go-outbreak/pkg/logging"
	"github.com/opd-ai/go-outbreak/pkg/network"
	"github.com/opd-ai/go-outbreak/pkg/render"
	engorender "github.com/opd-ai/go-outbreak/pkg/render/engo"
	"github.com/opd-ai/go-outbreak/pkg/snapshot"
)

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()

	configPath := flag.String("config", "config.json", "Path to configuration file")
	levelPath := flag.String("level", "", "Level file (overrides config)")
	watch := flag.String("watch", "", "Spectate a server instead, e.g. ws://localhost:8080/ws")
	fullscreen := flag.Bool("fullscreen", false, "Run in fullscreen mode")
	width := flag.Int("width", 1024, "Window width")
	height := flag.Int("height", 768, "Window height")
	flag.Parse()

	if *watch != "" {
		if err := spectate(ctx, *watch, logger); err != nil {
			logger.Error(ctx, "Spectating failed", err, "url", *watch)
			os.Exit(1)
		}
		return
	}

	gameConfig := config.DefaultConfig()
	if _, err := os.Stat(*configPath); err == nil {
		if gameConfig, err = config.LoadConfig(*configPath); err != nil {
			logger.Error(ctx, "Failed to load configuration", err, "config_path", *configPath)
			os.Exit(1)
		}
	}
	if err := config.ApplyEnvironmentOverrides(gameConfig); err != nil {
		logger.Error(ctx, "Invalid configuration", err)
		os.Exit(1)
	}
	if *levelPath != "" {
		gameConfig.World.Level = *levelPath
	}

	lvl, err := level.Load(gameConfig.World.Level, gameConfig.World.TileSize)
	if err != nil {
		logger.Error(ctx, "Failed to load level", err, "level", gameConfig.World.Level)
		os.Exit(1)
	}

	newRound := func() (*engine.Game, error) {
		return engine.NewGame(gameConfig, lvl, logger)
	}
	game, err := newRound()
	if err != nil {
		logger.Error(ctx, "Failed to create round", err)
		os.Exit(1)
	}

	scene := engorender.NewGameScene(game, logger)
	scene.Restart = newRound

	engo.Run(engo.RunOptions{
		Title:      "Outbreak - " + lvl.Name,
		Width:      *width,
		Height:     *height,
		Fullscreen: *fullscreen,
		VSync:      true,
	}, scene)
}

// spectate draws a server's frames in the terminal until interrupted.
func spectate(ctx context.Context, url string, logger *logging.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	term := render.NewTerminalRenderer(os.Stdout, 100, 36, 1)
	term.ClearScreen = true

	var walls []snapshot.Wall
	logger.Info(ctx, "Connecting to server", "url", url)
	err := network.Watch(ctx, url, func(f *snapshot.Frame) {
		if len(f.Walls) > 0 {
			walls = f.Walls
			term.Fit(f.World[0], f.World[1], f.World[2], f.World[3])
		} else {
			f.Walls = walls
		}
		term.DrawFrame(f)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}
