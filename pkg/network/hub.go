package network

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/opd-ai/go-outbreak/pkg/logging"
	"github.com/opd-ai/go-outbreak/pkg/metrics"
	"github.com/opd-ai/go-outbreak/pkg/snapshot"
	"github.com/opd-ai/go-outbreak/pkg/validation"
)

// ErrHubClosed is returned by Broadcast after Close.
var ErrHubClosed = errors.New("network: hub closed")

// ErrHubFull is returned when MaxSpectators are already connected.
var ErrHubFull = errors.New("network: too many spectators")

const (
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufSize    = 16
)

// HubConfig configures a Hub.
type HubConfig struct {
	MaxSpectators   int
	WriteTimeout    time.Duration
	BreakerFailures int
	BreakerTimeout  time.Duration

	// ConnectsPerMinute caps connection attempts per remote host. Zero
	// disables the limit.
	ConnectsPerMinute int
}

// Hub accepts websocket spectators and fans snapshots out to them.
type Hub struct {
	config   HubConfig
	logger   *logging.Logger
	upgrader websocket.Upgrader
	limiter  *validation.RateLimiter

	// Welcome, when set, supplies the first frame a new spectator receives.
	Welcome func() *snapshot.Frame

	mu         sync.RWMutex
	spectators map[string]*Spectator
	closed     bool
}

// NewHub creates a hub.
func NewHub(cfg HubConfig, logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Discard()
	}
	h := &Hub{
		config:     cfg,
		logger:     logger,
		spectators: make(map[string]*Spectator),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     sameOrigin,
		},
	}
	if cfg.ConnectsPerMinute > 0 {
		h.limiter = validation.NewRateLimiter(cfg.ConnectsPerMinute, time.Minute)
	}
	return h
}

// sameOrigin accepts non-browser clients and browsers on the serving host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

// ServeHTTP upgrades the request and registers the spectator.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil && !h.limiter.Allow(validation.RemoteKey(r)) {
		metrics.CountSendError("rate_limited")
		h.logger.Warn(r.Context(), "spectator connection rate limited", "remote", r.RemoteAddr)
		http.Error(w, "too many connection attempts", http.StatusTooManyRequests)
		return
	}

	h.mu.RLock()
	full := h.config.MaxSpectators > 0 && len(h.spectators) >= h.config.MaxSpectators
	closed := h.closed
	h.mu.RUnlock()
	if closed || full {
		http.Error(w, "too many spectators", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), "websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	id := uuid.NewString()
	s := newSpectator(h, id, conn, NewBreaker(BreakerSettings{
		Name:     "spectator-" + id,
		Failures: h.config.BreakerFailures,
		Timeout:  h.config.BreakerTimeout,
	}, h.logger))

	if err := h.register(s); err != nil {
		// Another upgrade may have taken the last slot since the check above.
		h.logger.Warn(r.Context(), "spectator rejected", "error", err, "remote", r.RemoteAddr)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(time.Second))
		conn.Close()
		return
	}
	h.logger.Info(r.Context(), "spectator connected", "spectator", id, "remote", r.RemoteAddr)

	if h.Welcome != nil {
		if b, err := snapshot.Encode(h.Welcome()); err == nil {
			s.enqueue(b)
		}
	}

	go s.writePump()
	go s.readPump()
}

func (h *Hub) register(s *Spectator) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	if h.config.MaxSpectators > 0 && len(h.spectators) >= h.config.MaxSpectators {
		return ErrHubFull
	}
	h.spectators[s.id] = s
	metrics.SpectatorConnected()
	return nil
}

func (h *Hub) unregister(s *Spectator, reason string) {
	h.mu.Lock()
	_, ok := h.spectators[s.id]
	delete(h.spectators, s.id)
	h.mu.Unlock()

	if ok {
		s.close()
		metrics.SpectatorDisconnected()
		h.logger.Info(context.Background(), "spectator disconnected", "spectator", s.id, "reason", reason)
	}
}

// Broadcast encodes f once and queues it for every spectator. Spectators
// whose queue is full skip the frame.
func (h *Hub) Broadcast(f *snapshot.Frame) error {
	b, err := snapshot.Encode(f)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrHubClosed
	}
	for _, s := range h.spectators {
		if !s.enqueue(b) {
			metrics.CountSendError("queue_full")
		}
	}
	return nil
}

// Len returns the number of connected spectators.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.spectators)
}

// Close disconnects every spectator and refuses new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	if h.limiter != nil {
		h.limiter.Close()
	}
	spectators := make([]*Spectator, 0, len(h.spectators))
	for _, s := range h.spectators {
		spectators = append(spectators, s)
	}
	h.mu.Unlock()

	for _, s := range spectators {
		h.unregister(s, "hub closed")
	}
	return nil
}
