package seats

import (
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "gatta/internal/errors"
	"gatta/internal/models"
)

// Change describes one planned seat mutation: the seat at Index goes from
// Before to After.
type Change struct {
	Index  int
	Before models.Seat
	After  models.Seat
}

// Noop reports whether applying the change leaves the seat as it is
func (c Change) Noop() bool {
	return c.Before == c.After
}

// ValidateName trims a user supplied name and rejects empty or oversized input
func ValidateName(raw string) (string, error) {
	name := CleanName(raw)
	if name == "" {
		return "", apperrors.ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", fmt.Errorf("%w: at most %d characters", apperrors.ErrNameTooLong, MaxNameLength)
	}
	return name, nil
}

// FindByName returns the index of the named seat matching name
// case-insensitively, or -1.
func FindByName(seats []models.Seat, name string) int {
	name = strings.TrimSpace(name)
	if name == "" {
		return -1
	}
	for i, s := range seats {
		if s.Vacant() {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(s.Name), name) {
			return i
		}
	}
	return -1
}

// FirstVacant returns the index of the first vacant seat in current order, or -1
func FirstVacant(seats []models.Seat) int {
	for i, s := range seats {
		if s.Vacant() {
			return i
		}
	}
	return -1
}

// LastVacant returns the index of the last vacant seat, or -1. Padded
// vacancies always trail the stored rows.
func LastVacant(seats []models.Seat) int {
	for i := len(seats) - 1; i >= 0; i-- {
		if seats[i].Vacant() {
			return i
		}
	}
	return -1
}

// PlanConfirm marks an existing seat paid when the name matches one, and
// otherwise assigns the name to the first vacancy as paid. The seat count is
// never increased.
func PlanConfirm(seats []models.Seat, rawName string) (Change, error) {
	name, err := ValidateName(rawName)
	if err != nil {
		return Change{}, err
	}

	if idx := FindByName(seats, name); idx >= 0 {
		after := seats[idx]
		after.Paid = true
		return Change{Index: idx, Before: seats[idx], After: after}, nil
	}

	idx := FirstVacant(seats)
	if idx < 0 {
		return Change{}, apperrors.ErrPotFull
	}
	return Change{
		Index:  idx,
		Before: seats[idx],
		After:  models.Seat{ID: seats[idx].ID, Name: name, Paid: true},
	}, nil
}

// PlanToggle flips paid on a named seat. ok is false when the seat is vacant:
// an unnamed seat cannot be toggled.
func PlanToggle(seats []models.Seat, seatID string) (change Change, ok bool, err error) {
	idx := -1
	for i, s := range seats {
		if s.ID == seatID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Change{}, false, apperrors.ErrSeatNotFound
	}
	if seats[idx].Vacant() {
		return Change{}, false, nil
	}

	after := seats[idx]
	after.Paid = !after.Paid
	return Change{Index: idx, Before: seats[idx], After: after}, true, nil
}

// PlanAdd assigns a new, unpaid name to the first vacancy
func PlanAdd(seats []models.Seat, rawName string) (Change, error) {
	name, err := ValidateName(rawName)
	if err != nil {
		return Change{}, err
	}
	if FindByName(seats, name) >= 0 {
		return Change{}, apperrors.ErrDuplicateName
	}

	idx := FirstVacant(seats)
	if idx < 0 {
		return Change{}, apperrors.ErrPotFull
	}
	return Change{
		Index:  idx,
		Before: seats[idx],
		After:  models.Seat{ID: seats[idx].ID, Name: name, Paid: false},
	}, nil
}
