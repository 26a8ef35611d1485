// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opd-ai/go-outbreak/pkg/config"
	"github.com/opd-ai/go-outbreak/pkg/health"
	"github.com/opd-ai/go-outbreak/pkg/level"
	"github.com/opd-ai/go-outbreak/pkg/logging"
	"github.com/opd-ai/go-outbreak/pkg/network"
	"github.com/opd-ai/go-outbreak/pkg/render"
	"github.com/opd-ai/go-outbreak/pkg/server"
	"github.com/opd-ai/go-outbreak/pkg/store"
)

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()

	configPath := flag.String("config", "config.json", "Path to configuration file")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	levelPath := flag.String("level", "", "Level file (overrides config)")
	rounds := flag.Int("rounds", 0, "Stop after this many rounds (0 runs forever)")
	ascii := flag.Bool("ascii", false, "Draw the round in the terminal")
	flag.Parse()

	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err, "config_path", *configPath)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file", "config_path", *configPath)
		return
	}

	gameConfig, err := loadConfig(*configPath, logger)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err, "config_path", *configPath)
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
	for _, w := range lvl.Warnings {
		logger.Warn(ctx, "Level warning", "level", lvl.Name, "warning", w.String())
	}

	db, err := store.Open(gameConfig.Server.ResultsDB)
	if err != nil {
		logger.Error(ctx, "Failed to open results store", err, "path", gameConfig.Server.ResultsDB)
		os.Exit(1)
	}
	defer db.Close()

	hub := network.NewHub(network.HubConfig{
		MaxSpectators:   gameConfig.Server.MaxSpectators,
		WriteTimeout:    gameConfig.Server.WriteTimeout(),
		BreakerFailures: gameConfig.Server.BreakerFailures,
		BreakerTimeout:  gameConfig.Server.BreakerTimeout(),

		ConnectsPerMinute: gameConfig.Server.ConnectsPerMinute,
	}, logger)

	opts := server.Options{
		Config:     gameConfig,
		Level:      lvl,
		Recorder:   db,
		Spectators: hub,
		Logger:     logger,
		Rounds:     *rounds,
		RoundPause: 3 * time.Second,
	}
	if *ascii {
		term := render.NewTerminalRenderer(os.Stdout, 100, 36, 1)
		b := lvl.Bounds()
		term.Fit(b.MinX, b.MinY, b.MaxX, b.MaxY)
		term.ClearScreen = true
		opts.ASCII = term
	}

	srv, err := server.New(opts)
	if err != nil {
		logger.Error(ctx, "Failed to create server", err)
		os.Exit(1)
	}
	hub.Welcome = srv.Welcome

	healthChecker := health.NewHealthChecker()
	// Storing a round blocks the loop for up to RecordTimeout.
	healthChecker.AddCheck(health.NewSimulationHealthCheck(srv.LastFrame, server.RecordTimeout+2*time.Second))
	healthChecker.AddCheck(health.NewStoreHealthCheck(db.Ping))
	healthChecker.AddCheck(health.NewMemoryHealthCheck(500, nil))

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthChecker.LivenessHandler)
	mux.HandleFunc("/ready", healthChecker.ReadinessHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/ws", hub)

	httpServer := &http.Server{
		Addr:              gameConfig.Server.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info(ctx, "Starting HTTP server", "address", gameConfig.Server.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "HTTP server failed", err)
		}
	}()

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting simulation",
		"level", lvl.Name,
		"humans", lvl.HumanCount,
		"tick_rate", gameConfig.Server.TickRate,
	)
	if err := srv.Run(runCtx); err != nil {
		logger.Error(ctx, "Simulation stopped", err)
	}

	logger.Info(ctx, "Shutting down server", "rounds", srv.Rounds())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.Close()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "HTTP server shutdown failed", err)
	}
}

func loadConfig(path string, logger *logging.Logger) (*config.GameConfig, error) {
	gameConfig := config.DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info(context.Background(), "Configuration file not found, using default configuration", "config_path", path)
	} else {
		if gameConfig, err = config.LoadConfig(path); err != nil {
			return nil, err
		}
	}
	if err := config.ApplyEnvironmentOverrides(gameConfig); err != nil {
		return nil, err
	}
	return gameConfig, nil
}
