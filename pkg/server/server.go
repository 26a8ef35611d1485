// Package server runs outbreak rounds back to back on a wall-clock ticker,
// streams snapshots to spectators and records every finished round.
package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/opd-ai/go-outbreak/pkg/config"
	"github.com/opd-ai/go-outbreak/pkg/engine"
	"github.com/opd-ai/go-outbreak/pkg/level"
	"github.com/opd-ai/go-outbreak/pkg/logging"
	"github.com/opd-ai/go-outbreak/pkg/network"
	"github.com/opd-ai/go-outbreak/pkg/render"
	"github.com/opd-ai/go-outbreak/pkg/snapshot"
	"github.com/opd-ai/go-outbreak/pkg/store"
)

// RecordTimeout bounds how long storing one finished round may take,
// retries included.
const RecordTimeout = 5 * time.Second

// Recorder persists finished rounds.
type Recorder interface {
	RecordRound(ctx context.Context, r store.Round) error
}

// Broadcaster fans snapshots out to spectators.
type Broadcaster interface {
	Broadcast(f *snapshot.Frame) error
}

// Options configures a Server. Recorder, Spectators and ASCII are optional.
type Options struct {
	Config     *config.GameConfig
	Level      *level.Level
	Recorder   Recorder
	Spectators Broadcaster
	ASCII      *render.TerminalRenderer
	Logger     *logging.Logger
	// Rounds stops Run after that many rounds. Zero runs until cancelled.
	Rounds int
	// RoundPause is the wait between rounds.
	RoundPause time.Duration
}

// Server owns the round loop.
type Server struct {
	opts    Options
	logger  *logging.Logger
	breaker *network.Breaker

	mu        sync.RWMutex
	game      *engine.Game
	lastFrame time.Time
	rounds    int
}

// New creates a server.
func New(opts Options) (*Server, error) {
	if opts.Config == nil || opts.Level == nil {
		return nil, fmt.Errorf("%w: server needs a config and a level", config.ErrInvalidConfig)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Server{
		opts:   opts,
		logger: opts.Logger,
		breaker: network.NewBreaker(network.BreakerSettings{
			Name:     "results-store",
			Failures: opts.Config.Server.BreakerFailures,
			Timeout:  opts.Config.Server.BreakerTimeout(),
		}, opts.Logger),
	}, nil
}

// Run plays rounds until ctx is done or the configured number of rounds has
// been played. Cancellation is not an error.
func (s *Server) Run(ctx context.Context) error {
	for {
		if err := s.playRound(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		s.mu.Lock()
		s.rounds++
		played := s.rounds
		s.mu.Unlock()
		if s.opts.Rounds > 0 && played >= s.opts.Rounds {
			return nil
		}

		if err := s.pause(ctx); err != nil {
			return nil
		}
	}
}

// pause waits RoundPause between rounds. The loop keeps beating at the tick
// rate so health checks see an idle server, not a stalled one.
func (s *Server) pause(ctx context.Context) error {
	s.touch()
	if s.opts.RoundPause <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.opts.RoundPause)
	defer timer.Stop()
	beat := time.NewTicker(s.opts.Config.Server.TickInterval())
	defer beat.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case <-beat.C:
			s.touch()
		}
	}
}

func (s *Server) touch() {
	s.mu.Lock()
	s.lastFrame = time.Now()
	s.mu.Unlock()
}

func (s *Server) playRound(ctx context.Context) error {
	game, err := engine.NewGame(s.opts.Config, s.opts.Level, s.logger)
	if err != nil {
		return fmt.Errorf("start round: %w", err)
	}
	s.mu.Lock()
	s.game = game
	s.mu.Unlock()

	game.Start()
	s.publish(game.Snapshot(true))

	interval := s.opts.Config.Server.TickInterval()
	dt := interval.Seconds()
	every := uint64(max(s.opts.Config.Server.SnapshotEvery, 1))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for game.Running() {
		select {
		case <-ctx.Done():
			game.Stop()
			s.record(game)
			return ctx.Err()
		case <-ticker.C:
			if err := game.Step(dt); err != nil && !errors.Is(err, engine.ErrNotRunning) {
				s.logger.Error(ctx, "round aborted", err, "round_id", game.RoundID)
			}
			s.touch()

			if game.CurrentTick%every == 0 && game.Running() {
				s.publish(game.Snapshot(s.opts.ASCII != nil))
			}
		}
	}

	s.publish(game.Snapshot(true))
	s.record(game)
	return nil
}

func (s *Server) publish(f *snapshot.Frame) {
	if s.opts.ASCII != nil {
		s.opts.ASCII.DrawFrame(f)
	}
	if s.opts.Spectators == nil {
		return
	}
	if err := s.opts.Spectators.Broadcast(f); err != nil && !errors.Is(err, network.ErrHubClosed) {
		s.logger.Warn(context.Background(), "snapshot broadcast failed", "error", err, "frame", f.Frame)
	}
}

// record stores the round through the breaker. Failures are logged and the
// loop carries on.
func (s *Server) record(game *engine.Game) {
	sum := game.Summary()
	s.logger.Info(context.Background(), "round finished",
		"round_id", sum.RoundID,
		"outcome", sum.Outcome,
		"frames", sum.Frames,
		"expansions", sum.Expansions)

	if s.opts.Recorder == nil {
		return
	}
	round := store.Round{
		ID:         sum.RoundID,
		Level:      sum.Level,
		Outcome:    sum.Outcome,
		Frames:     sum.Frames,
		Humans:     sum.Humans,
		Zombies:    sum.Zombies,
		FinishedAt: sum.FinishedAt,
	}

	ctx, cancel := context.WithTimeout(context.Background(), RecordTimeout)
	defer cancel()
	err := s.breaker.ExecuteWithRetry(ctx, 3, 100*time.Millisecond, func() error {
		return s.opts.Recorder.RecordRound(ctx, round)
	})
	if err != nil {
		s.logger.Error(ctx, "failed to record round", err, "round_id", round.ID)
	}
}

// Welcome returns the frame a new spectator starts from.
func (s *Server) Welcome() *snapshot.Frame {
	s.mu.RLock()
	game := s.game
	s.mu.RUnlock()
	if game == nil {
		return &snapshot.Frame{Level: s.opts.Level.Name, Status: engine.GameStatusWaiting.String()}
	}
	return game.Snapshot(true)
}

// LastFrame returns when the round loop last made progress: a simulated
// frame or a beat of the pause between rounds.
func (s *Server) LastFrame() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastFrame
}

// Rounds returns how many rounds have finished.
func (s *Server) Rounds() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rounds
}
