package realtime

import (
	"encoding/json"
	"fmt"

	"gatta/internal/models"

	"github.com/nats-io/stan.go"
)

// Source subscribes to a streaming subject
type Source interface {
	Subscribe(subject string, handler stan.MsgHandler) (stan.Subscription, error)
}

// Relay forwards seat.updated messages from the broker to the local hub, so
// writes handled by any API instance reach every instance's watchers.
type Relay struct {
	source Source
	hub    *Hub
	sub    stan.Subscription
}

func NewRelay(source Source, hub *Hub) *Relay {
	return &Relay{source: source, hub: hub}
}

func (r *Relay) Start() error {
	sub, err := r.source.Subscribe(models.EventSeatUpdated, func(msg *stan.Msg) {
		r.deliver(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("failed to start seat relay: %w", err)
	}
	r.sub = sub
	return nil
}

func (r *Relay) Stop() error {
	if r.sub == nil {
		return nil
	}
	return r.sub.Close()
}

func (r *Relay) deliver(data []byte) {
	var ev models.SeatUpdatedEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		r.hub.logger.Error("Invalid seat event payload", "error", err)
		return
	}
	if ev.PotID == "" {
		return
	}
	if err := r.hub.Broadcast(ev); err != nil {
		r.hub.logger.Error("Failed to relay seat event", "pot_id", ev.PotID, "error", err)
	}
}
