// Package realtime pushes seat changes to the clients watching a pot
package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"gatta/internal/logger"
	"gatta/internal/metrics"
	"gatta/internal/models"

	"github.com/gorilla/websocket"
)

const (
	sendBuffer   = 64
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// pots are reachable by link only, any origin may watch one
	CheckOrigin: func(r *http.Request) bool { return true },
}

type subscriber struct {
	potID string
	send  chan []byte
}

// Hub fans seat events out to the subscribers of each pot. A subscriber that
// cannot keep up misses events instead of slowing the others down.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	closed bool
	logger *slog.Logger
}

func NewHub() *Hub {
	return &Hub{
		subs:   make(map[string]map[*subscriber]struct{}),
		logger: logger.WithFields("component", "realtime_hub"),
	}
}

// Subscribe registers interest in potID. The returned channel is closed by the
// cancel func or when the hub closes.
func (h *Hub) Subscribe(potID string) (<-chan []byte, func()) {
	sub := &subscriber{potID: potID, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(sub.send)
		return sub.send, func() {}
	}
	if h.subs[potID] == nil {
		h.subs[potID] = make(map[*subscriber]struct{})
	}
	h.subs[potID][sub] = struct{}{}
	h.mu.Unlock()
	metrics.SubscriberAdded()

	var once sync.Once
	return sub.send, func() {
		once.Do(func() { h.remove(sub) })
	}
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[sub.potID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.potID)
	}
	close(sub.send)
	metrics.SubscriberRemoved()
}

// Subscribers returns the number of subscribers watching potID
func (h *Hub) Subscribers(potID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[potID])
}

// Publish lets the hub stand in for the message broker when it is disabled.
// Only seat updates reach subscribers.
func (h *Hub) Publish(subject string, data any) error {
	if subject != models.EventSeatUpdated {
		return nil
	}
	ev, ok := data.(models.SeatUpdatedEvent)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", data, subject)
	}
	return h.Broadcast(ev)
}

// Broadcast sends ev to every subscriber of ev.PotID
func (h *Hub) Broadcast(ev models.SeatUpdatedEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal seat event: %w", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[ev.PotID] {
		select {
		case sub.send <- payload:
		default:
			metrics.EventDropped()
			h.logger.Warn("Dropping seat event for slow subscriber", "pot_id", ev.PotID, "seat_id", ev.Seat.ID)
		}
	}
	return nil
}

// Close disconnects every subscriber
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for potID, set := range h.subs {
		for sub := range set {
			close(sub.send)
			metrics.SubscriberRemoved()
		}
		delete(h.subs, potID)
	}
}

// ServeWS upgrades the request and streams potID's seat events as JSON text
// frames until either side goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, potID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", "pot_id", potID, "error", err)
		return
	}

	events, cancel := h.Subscribe(potID)
	h.logger.Debug("Realtime client connected", "pot_id", potID, "subscribers", h.Subscribers(potID))

	go h.writePump(conn, events)
	h.readPump(conn)
	cancel()
}

// readPump only watches for close and pong frames
func (h *Hub) readPump(conn *websocket.Conn) {
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("Realtime read error", "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn, events <-chan []byte) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case payload, ok := <-events:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
