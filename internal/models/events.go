package models

import "time"

// NATS Event Types
const (
	EventPotCreated  = "pot.created"
	EventSeatUpdated = "seat.updated"
	EventBankUpdated = "pot.bank_updated"
)

// PotCreatedEvent represents a pot creation event
type PotCreatedEvent struct {
	PotID     string    `json:"pot_id"`
	SeatCount int       `json:"seat_count"`
	Timestamp time.Time `json:"timestamp"`
}

// SeatUpdatedEvent carries the new image of one seat row. Receivers merge
// Seat.Name and Seat.Paid into the seat with the same id. Inserted is set when
// the write persisted a padded vacancy, whose id only the writer knew.
type SeatUpdatedEvent struct {
	PotID     string    `json:"pot_id"`
	Seat      Seat      `json:"seat"`
	Inserted  bool      `json:"inserted,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// BankUpdatedEvent represents an organizer changing transfer details
type BankUpdatedEvent struct {
	PotID     string    `json:"pot_id"`
	Timestamp time.Time `json:"timestamp"`
}
