package seats

import (
	"strings"
	"testing"

	apperrors "gatta/internal/errors"
	"gatta/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSeats() []models.Seat {
	return []models.Seat{
		{ID: "s1", Name: "Ali", Paid: true},
		{ID: "s2", Name: "Sara"},
		{ID: "s3"},
		{ID: "s4"},
	}
}

func TestPlanConfirmExistingName(t *testing.T) {
	c, err := PlanConfirm(sampleSeats(), "  sARA ")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Index)
	assert.Equal(t, models.Seat{ID: "s2", Name: "Sara", Paid: true}, c.After)
}

func TestPlanConfirmAlreadyPaidIsNoop(t *testing.T) {
	c, err := PlanConfirm(sampleSeats(), "ali")
	require.NoError(t, err)
	assert.True(t, c.Noop())
}

func TestPlanConfirmNewNameTakesFirstVacancy(t *testing.T) {
	c, err := PlanConfirm(sampleSeats(), "Omar")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Index)
	assert.Equal(t, models.Seat{ID: "s3", Name: "Omar", Paid: true}, c.After)
}

func TestPlanConfirmFull(t *testing.T) {
	full := []models.Seat{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}
	_, err := PlanConfirm(full, "C")
	assert.ErrorIs(t, err, apperrors.ErrPotFull)
}

func TestPlanConfirmRejectsBadNames(t *testing.T) {
	_, err := PlanConfirm(sampleSeats(), "   ")
	assert.ErrorIs(t, err, apperrors.ErrEmptyName)

	_, err = PlanConfirm(sampleSeats(), "empty")
	assert.ErrorIs(t, err, apperrors.ErrEmptyName)

	_, err = PlanConfirm(sampleSeats(), strings.Repeat("x", MaxNameLength+1))
	assert.ErrorIs(t, err, apperrors.ErrNameTooLong)
}

func TestPlanToggle(t *testing.T) {
	c, ok, err := PlanToggle(sampleSeats(), "s1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, c.After.Paid)

	_, ok, err = PlanToggle(sampleSeats(), "s3")
	require.NoError(t, err)
	assert.False(t, ok, "vacant seats cannot be toggled")

	_, _, err = PlanToggle(sampleSeats(), "nope")
	assert.ErrorIs(t, err, apperrors.ErrSeatNotFound)
}

func TestPlanAdd(t *testing.T) {
	c, err := PlanAdd(sampleSeats(), "Omar")
	require.NoError(t, err)
	assert.Equal(t, models.Seat{ID: "s3", Name: "Omar"}, c.After)

	_, err = PlanAdd(sampleSeats(), "ALI")
	assert.ErrorIs(t, err, apperrors.ErrDuplicateName)

	_, err = PlanAdd([]models.Seat{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}, "C")
	assert.ErrorIs(t, err, apperrors.ErrPotFull)
}

func TestLastVacant(t *testing.T) {
	assert.Equal(t, 2, LastVacant([]models.Seat{{ID: "a"}, {ID: "b", Name: "Sara"}, {ID: "c"}, {ID: "d", Name: "Ali"}}))
	assert.Equal(t, -1, LastVacant([]models.Seat{{ID: "a", Name: "Sara"}}))
	assert.Equal(t, -1, LastVacant(nil))
}
