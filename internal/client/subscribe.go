package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"gatta/internal/logger"
	"gatta/internal/models"

	"github.com/gorilla/websocket"
)

// Subscribe opens the pot's realtime stream. The channel is closed when ctx
// is done or the connection drops.
func (c *Client) Subscribe(ctx context.Context, potID string) (<-chan models.SeatUpdatedEvent, error) {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + potPath(potID, "/live")

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			defer resp.Body.Close()
			return nil, decodeError(resp)
		}
		return nil, fmt.Errorf("failed to open realtime stream: %w", err)
	}

	events := make(chan models.SeatUpdatedEvent)
	done := make(chan struct{})

	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		conn.Close()
	}()

	go func() {
		defer close(events)
		defer close(done)
		log := logger.WithFields("pot_id", potID)

		for {
			var ev models.SeatUpdatedEvent
			if err := conn.ReadJSON(&ev); err != nil {
				if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					log.Warn("Realtime stream closed", "error", err)
				}
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}
