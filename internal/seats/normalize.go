// Package seats reconciles the variable-length list of stored member rows
// with the fixed seat count a pot was created with, and plans the seat
// mutations every writer shares.
package seats

import (
	"math"
	"strings"

	"gatta/internal/models"

	"github.com/google/uuid"
)

const (
	MinSeats = 2
	MaxSeats = 50

	// MaxNameLength is counted in runes
	MaxNameLength = 60
)

// vacantMarker is stored by some writers instead of an empty name
const vacantMarker = "EMPTY"

// ClampSeatCount maps a declared seat count to clamp(floor(p), 2, 50).
// Non-finite input yields the minimum.
func ClampSeatCount(p float64) int {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return MinSeats
	}
	n := math.Floor(p)
	if n < MinSeats {
		return MinSeats
	}
	if n > MaxSeats {
		return MaxSeats
	}
	return int(n)
}

// CleanName trims a stored name and maps vacancy markers to "".
func CleanName(raw string) string {
	name := strings.TrimSpace(raw)
	if strings.EqualFold(name, vacantMarker) {
		return ""
	}
	return name
}

// IsVacantName reports whether a stored name denotes an unassigned seat
func IsVacantName(raw string) bool {
	return CleanName(raw) == ""
}

// Normalize returns exactly ClampSeatCount(declared) seats. Rows are taken by
// position; missing seats are synthesized as fresh vacancies at the tail and
// surplus rows are dropped. Paid is carried as stored, even for vacant seats:
// derived counts only look at named seats.
func Normalize(declared float64, rows []models.SeatRow) []models.Seat {
	n := ClampSeatCount(declared)
	out := make([]models.Seat, n)

	for i := range out {
		if i >= len(rows) {
			out[i] = models.Seat{ID: uuid.NewString()}
			continue
		}

		row := rows[i]
		id := row.ID
		if id == "" {
			id = uuid.NewString()
		}
		out[i] = models.Seat{
			ID:   id,
			Name: CleanName(row.Name),
			Paid: row.Paid,
		}
	}

	return out
}

// NormalizePot builds the canonical pot from its stored row and member rows.
// Rows must already be migrated to the current schema.
func NormalizePot(pot models.PotRow, rows []models.SeatRow) models.Pot {
	seats := Normalize(pot.SeatCount, rows)

	out := models.Pot{
		ID:         pot.ID,
		Title:      pot.Title,
		Total:      pot.Total,
		SeatCount:  len(seats),
		FeePerSeat: pot.FeePerSeat,
		EventAt:    pot.EventAt,
		Seats:      seats,
	}
	if pot.BankName != nil {
		out.BankName = *pot.BankName
	}
	if pot.IBAN != nil {
		out.IBAN = *pot.IBAN
	}
	return out
}
