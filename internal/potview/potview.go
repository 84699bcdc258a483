// Package potview derives the display figures of a normalized pot.
// Every function here is pure; callers pass the clock in.
package potview

import (
	"fmt"
	"math"
	"strings"
	"time"

	"gatta/internal/models"
)

// ArrivedText is shown once the meeting time has passed
const ArrivedText = "It's meeting time 🎉"

// Share returns what each seat owes. With a flat fee the base share is
// rounded up before the fee is added.
func Share(total float64, seatCount int, fee float64) float64 {
	if seatCount <= 0 {
		return 0
	}
	if fee > 0 {
		return math.Ceil(total/float64(seatCount)) + fee
	}
	return total / float64(seatCount)
}

// PaidCount counts named seats marked paid
func PaidCount(seats []models.Seat) int {
	n := 0
	for _, s := range seats {
		if s.Paid && strings.TrimSpace(s.Name) != "" {
			n++
		}
	}
	return n
}

// JoinedCount counts seats with a non-empty name
func JoinedCount(seats []models.Seat) int {
	n := 0
	for _, s := range seats {
		if strings.TrimSpace(s.Name) != "" {
			n++
		}
	}
	return n
}

// IsFull reports whether every seat is named
func IsFull(seats []models.Seat) bool {
	return JoinedCount(seats) == len(seats)
}

// Progress is the paid share of seats as a rounded percentage
func Progress(paid, seatCount int) int {
	if seatCount <= 0 {
		return 0
	}
	return int(math.Round(float64(paid) / float64(seatCount) * 100))
}

// Remaining renders the countdown from now to at. Days, hours and minutes
// while a day or more remains; hours, minutes and seconds while an hour or
// more remains; minutes and seconds otherwise.
func Remaining(now, at time.Time) string {
	if at.IsZero() {
		return ""
	}
	d := at.Sub(now)
	if d <= 0 {
		return ArrivedText
	}

	s := int64(d / time.Second)
	days := s / 86400
	hours := (s % 86400) / 3600
	minutes := (s % 3600) / 60
	seconds := s % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%d %s • %d %s • %d %s",
			days, plural(days, "day"), hours, plural(hours, "hour"), minutes, plural(minutes, "minute"))
	case hours > 0:
		return fmt.Sprintf("%d %s • %d %s • %d %s",
			hours, plural(hours, "hour"), minutes, plural(minutes, "minute"), seconds, plural(seconds, "second"))
	default:
		return fmt.Sprintf("%d %s • %d %s",
			minutes, plural(minutes, "minute"), seconds, plural(seconds, "second"))
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}

// Summarize computes every derived figure of a pot at the given instant
func Summarize(pot models.Pot, now time.Time) models.PotSummary {
	paid := PaidCount(pot.Seats)
	return models.PotSummary{
		Share:       Share(pot.Total, pot.SeatCount, pot.FeePerSeat),
		PaidCount:   paid,
		JoinedCount: JoinedCount(pot.Seats),
		SeatCount:   pot.SeatCount,
		IsFull:      IsFull(pot.Seats),
		Progress:    Progress(paid, pot.SeatCount),
		Remaining:   Remaining(now, pot.EventAt),
	}
}

// DisplayOrder lists named seats first, then vacancies, keeping relative
// order. The first named seat is the organizer's.
func DisplayOrder(seats []models.Seat) []models.Seat {
	out := make([]models.Seat, 0, len(seats))
	for _, s := range seats {
		if !s.Vacant() {
			out = append(out, s)
		}
	}
	for _, s := range seats {
		if s.Vacant() {
			out = append(out, s)
		}
	}
	return out
}
