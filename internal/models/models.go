package models

import (
	"fmt"
	"strings"
	"time"
)

// FlexibleBool accepts true/false as JSON booleans, strings or numbers
type FlexibleBool bool

// UnmarshalJSON parses "true", "1", "yes", "on" and their negatives
func (fb *FlexibleBool) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)

	switch strings.ToLower(str) {
	case "true", "1", "yes", "on":
		*fb = true
	case "false", "0", "no", "off":
		*fb = false
	default:
		return fmt.Errorf("invalid boolean value: %s", str)
	}
	return nil
}

// Bool returns the plain bool value
func (fb FlexibleBool) Bool() bool {
	return bool(fb)
}

// CreatePotRequest - body of POST /api/pots
type CreatePotRequest struct {
	Title     string    `json:"title" binding:"required"`
	Total     float64   `json:"total"`
	SeatCount float64   `json:"seat_count"`
	EventAt   time.Time `json:"event_at"`
	BankName  string    `json:"bank_name,omitempty"`
	IBAN      string    `json:"iban,omitempty"`
}

// CreatePotResponse carries the organizer capability token. It is returned
// exactly once, at creation time.
type CreatePotResponse struct {
	ID             string `json:"id"`
	OrganizerToken string `json:"organizer_token"`
	Link           string `json:"link"`
	OrganizerLink  string `json:"organizer_link"`
}

// PotSummary holds the figures derived from a normalized pot
type PotSummary struct {
	Share       float64 `json:"share"`
	PaidCount   int     `json:"paid_count"`
	JoinedCount int     `json:"joined_count"`
	SeatCount   int     `json:"seat_count"`
	IsFull      bool    `json:"is_full"`
	Progress    int     `json:"progress"`
	Remaining   string  `json:"remaining"`
}

// PotView - response of GET /api/pots/:id
type PotView struct {
	Pot     Pot        `json:"pot"`
	Summary PotSummary `json:"summary"`
}

// UpdateSeatRequest is the raw last-write-wins seat write
type UpdateSeatRequest struct {
	Name string       `json:"name"`
	Paid FlexibleBool `json:"paid"`
}

// NameRequest - body of the confirm and add member intents
type NameRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateBankRequest - body of PATCH /api/pots/:id/bank
type UpdateBankRequest struct {
	BankName string `json:"bank_name"`
	IBAN     string `json:"iban"`
}

// SeatResponse is returned by every seat mutation
type SeatResponse struct {
	Seat    Seat       `json:"seat"`
	Changed bool       `json:"changed"`
	Summary PotSummary `json:"summary"`
}

// ShareMessageResponse - response of GET /api/pots/:id/share
type ShareMessageResponse struct {
	Text string `json:"text"`
	Link string `json:"link"`
}
