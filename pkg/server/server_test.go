package server

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-outbreak/pkg/config"
	"github.com/opd-ai/go-outbreak/pkg/health"
	"github.com/opd-ai/go-outbreak/pkg/level"
	"github.com/opd-ai/go-outbreak/pkg/render"
	"github.com/opd-ai/go-outbreak/pkg/snapshot"
	"github.com/opd-ai/go-outbreak/pkg/store"
)

type memoryRecorder struct {
	mu     sync.Mutex
	rounds []store.Round
	fail   int
}

func (m *memoryRecorder) RecordRound(ctx context.Context, r store.Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail > 0 {
		m.fail--
		return errors.New("disk full")
	}
	m.rounds = append(m.rounds, r)
	return nil
}

func (m *memoryRecorder) recorded() []store.Round {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]store.Round(nil), m.rounds...)
}

type memoryBroadcaster struct {
	mu     sync.Mutex
	frames []*snapshot.Frame
}

func (m *memoryBroadcaster) Broadcast(f *snapshot.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, f)
	return nil
}

func fastConfig(frameLimit int) *config.GameConfig {
	cfg := config.DefaultConfig()
	cfg.Agents.Seed = 7
	cfg.Agents.HumanSpeed = 0
	cfg.Agents.ZombieSpeed = 0
	cfg.Agents.ChaseRadius = 0
	cfg.Rules.FrameLimit = frameLimit
	cfg.Server.TickRate = 1000
	cfg.Server.SnapshotEvery = 2
	return cfg
}

func testLevel(t *testing.T) *level.Level {
	t.Helper()
	lvl, err := level.Parse(strings.NewReader("pen 2\nRRRRR\nR@..R\nR..ZR\nRRRRR\n"), 64)
	require.NoError(t, err)
	return lvl
}

func TestNew_RequiresConfigAndLevel(t *testing.T) {
	_, err := New(Options{})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestServer_RunsAndRecordsRounds(t *testing.T) {
	rec := &memoryRecorder{}
	spectators := &memoryBroadcaster{}
	srv, err := New(Options{
		Config:     fastConfig(6),
		Level:      testLevel(t),
		Recorder:   rec,
		Spectators: spectators,
		Rounds:     2,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, srv.Run(ctx))

	assert.Equal(t, 2, srv.Rounds())
	rounds := rec.recorded()
	require.Len(t, rounds, 2)
	assert.NotEqual(t, rounds[0].ID, rounds[1].ID)
	for _, r := range rounds {
		assert.Equal(t, "pen", r.Level)
		assert.Equal(t, "time_up", r.Outcome)
		assert.Equal(t, uint64(6), r.Frames)
		assert.Equal(t, 2, r.Humans)
		assert.Equal(t, 1, r.Zombies)
	}
	assert.False(t, srv.LastFrame().IsZero())

	spectators.mu.Lock()
	defer spectators.mu.Unlock()
	// Per round: opening frame, frames 2 and 4, final frame.
	require.Len(t, spectators.frames, 8)
	first := spectators.frames[0]
	assert.NotEmpty(t, first.Walls)
	assert.Equal(t, "active", first.Status)
	assert.Empty(t, spectators.frames[1].Walls)
	last := spectators.frames[3]
	assert.Equal(t, "ended", last.Status)
	assert.Equal(t, "time_up", last.Outcome)
}

func TestServer_RetriesRecording(t *testing.T) {
	rec := &memoryRecorder{fail: 2}
	srv, err := New(Options{Config: fastConfig(2), Level: testLevel(t), Recorder: rec, Rounds: 1})
	require.NoError(t, err)

	require.NoError(t, srv.Run(context.Background()))
	assert.Len(t, rec.recorded(), 1)
}

func TestServer_StopsOnCancel(t *testing.T) {
	srv, err := New(Options{Config: fastConfig(0), Level: testLevel(t)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, 0, srv.Rounds())
}

func TestServer_StaysReadyBetweenRounds(t *testing.T) {
	const maxLag = 150 * time.Millisecond
	srv, err := New(Options{
		Config:     fastConfig(5),
		Level:      testLevel(t),
		Recorder:   &memoryRecorder{},
		Rounds:     2,
		RoundPause: 3 * maxLag,
	})
	require.NoError(t, err)
	check := health.NewSimulationHealthCheck(srv.LastFrame, maxLag)

	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background()) }()

	var failures []error
	poll := time.NewTicker(10 * time.Millisecond)
	defer poll.Stop()
	deadline := time.After(5 * time.Second)
	for running := true; running; {
		select {
		case err := <-done:
			require.NoError(t, err)
			running = false
		case <-poll.C:
			if srv.LastFrame().IsZero() {
				continue
			}
			if err := check.Check(context.Background()); err != nil {
				failures = append(failures, err)
			}
		case <-deadline:
			t.Fatal("Run did not finish")
		}
	}

	assert.Equal(t, 2, srv.Rounds())
	assert.Empty(t, failures, "simulation reported stalled during the pause")
}

func TestServer_Welcome(t *testing.T) {
	srv, err := New(Options{Config: fastConfig(2), Level: testLevel(t), Rounds: 1})
	require.NoError(t, err)

	w := srv.Welcome()
	assert.Equal(t, "waiting", w.Status)
	assert.Equal(t, "pen", w.Level)

	require.NoError(t, srv.Run(context.Background()))
	w = srv.Welcome()
	assert.Equal(t, "ended", w.Status)
	assert.NotEmpty(t, w.Walls)
	assert.Equal(t, 1, w.Count("player"))
}

func TestServer_ASCII(t *testing.T) {
	var out bytes.Buffer
	srv, err := New(Options{
		Config: fastConfig(2),
		Level:  testLevel(t),
		ASCII:  render.NewTerminalRenderer(&out, 10, 6, 32),
		Rounds: 1,
	})
	require.NoError(t, err)
	require.NoError(t, srv.Run(context.Background()))

	assert.Contains(t, out.String(), "pen frame 2")
	assert.Contains(t, out.String(), "#")
}

func TestServer_WithSQLiteStore(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "rounds.db"))
	require.NoError(t, err)
	defer db.Close()

	srv, err := New(Options{Config: fastConfig(3), Level: testLevel(t), Recorder: db, Rounds: 1})
	require.NoError(t, err)
	require.NoError(t, srv.Run(context.Background()))

	rounds, err := db.RecentRounds(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	assert.Equal(t, "time_up", rounds[0].Outcome)
}
