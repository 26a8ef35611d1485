// Package network streams round snapshots to websocket spectators. Every
// spectator's writes go through its own circuit breaker so one stalled
// connection cannot hold up the others.
package network

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-outbreak/pkg/logging"
)

// BreakerSettings configures a Breaker.
type BreakerSettings struct {
	Name string
	// Failures is the number of consecutive failures that opens the breaker.
	Failures int
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
}

// Breaker wraps an operation with gobreaker.
type Breaker struct {
	breaker *gobreaker.CircuitBreaker
	logger  *logging.Logger
}

// Operation is a guarded call. It returns an error when it fails.
type Operation func() error

// NewBreaker creates a breaker from s.
func NewBreaker(s BreakerSettings, logger *logging.Logger) *Breaker {
	if logger == nil {
		logger = logging.Discard()
	}
	failures := s.Failures
	if failures < 1 {
		failures = 1
	}

	settings := gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(failures)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info(context.Background(), "circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &Breaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// Execute runs op through the breaker. While the breaker is open it fails
// immediately with an error wrapping gobreaker.ErrOpenState.
func (b *Breaker) Execute(ctx context.Context, op Operation) error {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, op()
	})
	if err != nil {
		b.logger.LogWithContext(ctx, slog.LevelDebug, "guarded operation failed",
			"error", err,
			"state", b.breaker.State().String(),
		)
		return fmt.Errorf("circuit breaker %s: %w", b.breaker.Name(), err)
	}
	return nil
}

// ExecuteWithRetry runs op up to attempts times, waiting baseDelay, then
// twice baseDelay and so on between attempts. It gives up early once the
// breaker opens or ctx is done.
func (b *Breaker) ExecuteWithRetry(ctx context.Context, attempts int, baseDelay time.Duration, op Operation) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = b.Execute(ctx, op); err == nil {
			return nil
		}
		if b.Open() {
			return err
		}
		if attempt == attempts-1 {
			break
		}

		delay := time.Duration(attempt+1) * baseDelay
		b.logger.LogWithContext(ctx, slog.LevelWarn, "operation failed, retrying",
			"attempt", attempt+1,
			"max_retries", attempts,
			"delay", delay,
			"error", err,
		)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		}
	}
	return fmt.Errorf("max retries (%d) exceeded: %w", attempts, err)
}

// Open reports whether the breaker is rejecting calls.
func (b *Breaker) Open() bool {
	return b.breaker.State() == gobreaker.StateOpen
}

// State returns the current state of the breaker.
func (b *Breaker) State() gobreaker.State {
	return b.breaker.State()
}

// Counts returns the breaker's failure and success counts.
func (b *Breaker) Counts() gobreaker.Counts {
	return b.breaker.Counts()
}
