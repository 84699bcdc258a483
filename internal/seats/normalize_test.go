package seats

import (
	"math"
	"testing"

	"gatta/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rows(names ...string) []models.SeatRow {
	out := make([]models.SeatRow, len(names))
	for i, n := range names {
		out[i] = models.SeatRow{ID: string(rune('a' + i)), Name: n}
	}
	return out
}

func TestClampSeatCount(t *testing.T) {
	cases := map[float64]int{
		-3:   2,
		0:    2,
		1.9:  2,
		2:    2,
		5.7:  5,
		50:   50,
		50.9: 50,
		51:   50,
		1000: 50,
	}
	for in, want := range cases {
		assert.Equal(t, want, ClampSeatCount(in), "declared %v", in)
	}

	assert.Equal(t, MinSeats, ClampSeatCount(math.NaN()))
	assert.Equal(t, MinSeats, ClampSeatCount(math.Inf(1)))
}

func TestNormalizeLengthAlwaysMatchesClampedCount(t *testing.T) {
	for _, declared := range []float64{-1, 0, 2, 3.5, 8, 49, 50, 77} {
		for _, n := range []int{0, 1, 5, 60} {
			raw := make([]models.SeatRow, n)
			got := Normalize(declared, raw)
			assert.Len(t, got, ClampSeatCount(declared), "declared=%v rows=%d", declared, n)
		}
	}
}

func TestNormalizeCleansVacantNames(t *testing.T) {
	in := rows("", "   ", "empty", "EMPTY", " Sara ", "Empty Nest")
	in[1].Paid = true

	got := Normalize(6, in)
	require.Len(t, got, 6)

	for i := 0; i < 4; i++ {
		assert.Equal(t, "", got[i].Name, "seat %d", i)
		assert.True(t, got[i].Vacant())
	}
	assert.True(t, got[1].Paid, "paid is carried as stored")
	assert.Equal(t, "Sara", got[4].Name)
	assert.Equal(t, "Empty Nest", got[5].Name)
}

func TestNormalizePadsVacanciesAtTail(t *testing.T) {
	in := rows("Ali", "Sara")
	in[1].Paid = true

	got := Normalize(5, in)
	require.Len(t, got, 5)

	assert.Equal(t, models.Seat{ID: "a", Name: "Ali"}, got[0])
	assert.Equal(t, models.Seat{ID: "b", Name: "Sara", Paid: true}, got[1])

	seen := map[string]bool{"a": true, "b": true}
	for _, s := range got[2:] {
		assert.True(t, s.Vacant())
		assert.False(t, s.Paid)
		assert.NotEmpty(t, s.ID)
		assert.False(t, seen[s.ID], "synthesized ids must be unique")
		seen[s.ID] = true
	}
}

func TestNormalizeTruncatesByPosition(t *testing.T) {
	got := Normalize(2, rows("Ali", "Sara", "Omar"))
	require.Len(t, got, 2)
	assert.Equal(t, "Ali", got[0].Name)
	assert.Equal(t, "Sara", got[1].Name)
}

func TestNormalizeKeepsOrderAndFillsMissingIDs(t *testing.T) {
	in := []models.SeatRow{{Name: "Ali"}, {ID: "x", Name: "Sara"}}
	got := Normalize(2, in)
	assert.NotEmpty(t, got[0].ID)
	assert.Equal(t, "Ali", got[0].Name)
	assert.Equal(t, "x", got[1].ID)
}

func TestNormalizePot(t *testing.T) {
	bank := "Rajhi"
	pot := models.PotRow{ID: "p1", Title: "Chalet", Total: 2400, SeatCount: 8, FeePerSeat: 2, BankName: &bank}

	got := NormalizePot(pot, rows("Ali"))
	assert.Equal(t, 8, got.SeatCount)
	assert.Len(t, got.Seats, 8)
	assert.Equal(t, "Rajhi", got.BankName)
	assert.Equal(t, "", got.IBAN)
}
