package network

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/opd-ai/go-outbreak/pkg/metrics"
)

// Spectator is one websocket connection receiving snapshots.
type Spectator struct {
	id      string
	hub     *Hub
	conn    *websocket.Conn
	breaker *Breaker
	send    chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func newSpectator(hub *Hub, id string, conn *websocket.Conn, breaker *Breaker) *Spectator {
	return &Spectator{
		id:      id,
		hub:     hub,
		conn:    conn,
		breaker: breaker,
		send:    make(chan []byte, sendBufSize),
		done:    make(chan struct{}),
	}
}

// enqueue reports whether b was queued.
func (s *Spectator) enqueue(b []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- b:
		return true
	default:
		return false
	}
}

func (s *Spectator) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// readPump drains control frames so pongs and close messages are handled.
// Spectators never send data.
func (s *Spectator) readPump() {
	defer s.hub.unregister(s, "read closed")

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump sends queued frames through the breaker. Once the breaker opens
// the spectator is dropped.
func (s *Spectator) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	ctx := context.Background()
	timeout := s.hub.config.WriteTimeout
	if timeout <= 0 {
		timeout = time.Second
	}

	write := func(messageType int, b []byte) error {
		return s.breaker.Execute(ctx, func() error {
			s.conn.SetWriteDeadline(time.Now().Add(timeout))
			return s.conn.WriteMessage(messageType, b)
		})
	}

	for {
		select {
		case <-s.done:
			return
		case b := <-s.send:
			if err := write(websocket.BinaryMessage, b); err != nil {
				metrics.CountSendError("write")
				if s.breaker.Open() {
					s.hub.unregister(s, "circuit open")
					return
				}
				continue
			}
			metrics.CountSnapshot(len(b))
		case <-ticker.C:
			if err := write(websocket.PingMessage, nil); err != nil && s.breaker.Open() {
				s.hub.unregister(s, "circuit open")
				return
			}
		}
	}
}
