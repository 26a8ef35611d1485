package network

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/opd-ai/go-outbreak/pkg/snapshot"
)

// Watch connects to a spectator endpoint and calls fn for every frame until
// ctx is done or the server closes the connection.
func Watch(ctx context.Context, url string, fn func(*snapshot.Frame)) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
		case <-stop:
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("failed to read frame: %w", err)
		}
		if messageType != websocket.BinaryMessage {
			continue
		}

		frame, err := snapshot.Decode(data)
		if err != nil {
			return fmt.Errorf("failed to decode frame: %w", err)
		}
		fn(frame)
	}
}
