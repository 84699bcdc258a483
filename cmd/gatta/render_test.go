package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"gatta/internal/models"
	"gatta/internal/potview"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMeetingTime(t *testing.T) {
	riyadh := time.FixedZone("AST", 3*3600)

	got, err := parseMeetingTime("2026-03-01 20:30", riyadh)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 17, 30, 0, 0, time.UTC), got.UTC())

	got, err = parseMeetingTime("2026-03-01T20:30:00Z", riyadh)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 20, 30, 0, 0, time.UTC), got.UTC())

	_, err = parseMeetingTime("tomorrow", riyadh)
	assert.Error(t, err)
}

func TestRenderPot(t *testing.T) {
	pot := models.Pot{
		ID:         "pot-1",
		Title:      "Dinner",
		Total:      100,
		SeatCount:  4,
		FeePerSeat: 2,
		BankName:   "Rajhi",
		Seats: []models.Seat{
			{ID: "s1"},
			{ID: "s2", Name: "Sara", Paid: true},
			{ID: "s3", Name: "Omar"},
			{ID: "s4"},
		},
	}
	summary := potview.Summarize(pot, time.Now())

	var buf bytes.Buffer
	renderPot(&buf, pot, summary, true)
	out := buf.String()

	assert.Contains(t, out, "You are the organizer")
	assert.Contains(t, out, "Total 100 • 4 seats • 27 each")
	assert.Contains(t, out, "Paid 1/4 (25%)")
	assert.Contains(t, out, "Transfer to: Rajhi")
	assert.NotContains(t, out, "⏳")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	seatLines := lines[len(lines)-4:]
	assert.Equal(t, "  ✓ Sara (organizer)  [s2]", seatLines[0])
	assert.Equal(t, "  · Omar  [s3]", seatLines[1])
	assert.Equal(t, "  ○ (vacant)", seatLines[2])
	assert.Equal(t, "  ○ (vacant)", seatLines[3])
}
