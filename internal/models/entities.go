package models

import (
	"time"
)

// CurrentSchemaVersion is stamped on every pot written by this service.
// Pots with an older version go through seats.Migrate at read time.
const CurrentSchemaVersion = 1

// PotRow is a pot as stored in the pots table
type PotRow struct {
	ID            string    `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	Total         float64   `json:"total" db:"total"`
	SeatCount     float64   `json:"seat_count" db:"seat_count"`
	FeePerSeat    float64   `json:"fee_per_seat" db:"fee_per_seat"`
	EventAt       time.Time `json:"event_at" db:"event_at"`
	BankName      *string   `json:"bank_name" db:"bank_name"`
	IBAN          *string   `json:"iban" db:"iban"`
	SchemaVersion int       `json:"schema_version" db:"schema_version"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// SeatRow is a raw member record as stored in the seats table.
// Rows are never deleted or reordered.
type SeatRow struct {
	ID        string    `json:"id" db:"id"`
	PotID     string    `json:"pot_id" db:"pot_id"`
	Name      string    `json:"name" db:"name"`
	Paid      bool      `json:"paid" db:"paid"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Seat is one normalized slot of a pot. An empty Name marks a vacant seat.
type Seat struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Paid bool   `json:"paid"`
}

// Vacant reports whether nobody occupies the seat.
func (s Seat) Vacant() bool {
	return s.Name == ""
}

// Pot is the canonical in-memory view of a pot: len(Seats) == SeatCount always.
type Pot struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Total      float64   `json:"total"`
	SeatCount  int       `json:"seat_count"`
	FeePerSeat float64   `json:"fee_per_seat"`
	EventAt    time.Time `json:"event_at"`
	BankName   string    `json:"bank_name,omitempty"`
	IBAN       string    `json:"iban,omitempty"`
	Seats      []Seat    `json:"seats"`
}

// Clone returns a copy whose seat slice can be modified independently
func (p Pot) Clone() Pot {
	out := p
	out.Seats = make([]Seat, len(p.Seats))
	copy(out.Seats, p.Seats)
	return out
}

// SeatIndex returns the position of the seat with the given id, or -1
func (p Pot) SeatIndex(seatID string) int {
	for i, s := range p.Seats {
		if s.ID == seatID {
			return i
		}
	}
	return -1
}
