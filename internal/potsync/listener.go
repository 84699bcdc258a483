package potsync

import (
	"context"

	"gatta/internal/models"
	"gatta/internal/seats"
)

// ApplyPatch merges a realtime seat update into local state. Only name and
// paid of the seat with the same id change; events for other pots or unknown
// seats are ignored. An inserted seat with an unknown id takes over the last
// vacancy, since padded vacancies get fresh ids on every read. The last patch
// wins.
func (s *Session) ApplyPatch(ev models.SeatUpdatedEvent) bool {
	s.mu.Lock()
	if ev.PotID != "" && ev.PotID != s.pot.ID {
		s.mu.Unlock()
		return false
	}
	idx := s.pot.SeatIndex(ev.Seat.ID)
	if idx < 0 && ev.Inserted {
		idx = seats.LastVacant(s.pot.Seats)
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}

	next := s.pot.Seats[idx]
	next.ID = ev.Seat.ID
	next.Name = seats.CleanName(ev.Seat.Name)
	next.Paid = ev.Seat.Paid
	if next == s.pot.Seats[idx] {
		s.mu.Unlock()
		return false
	}
	s.pot.Seats[idx] = next
	snapshot := s.pot.Clone()
	s.mu.Unlock()

	s.logger.Debug("Applied realtime seat patch", "seat_id", next.ID, "paid", next.Paid)
	s.notify(snapshot)
	return true
}

// Listen applies every event from feed until the feed closes or ctx is done
func (s *Session) Listen(ctx context.Context, feed <-chan models.SeatUpdatedEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-feed:
			if !ok {
				return nil
			}
			s.ApplyPatch(ev)
		}
	}
}
