package errors

import "errors"

var ErrUnauthorized = errors.New("organizer token is missing or invalid")
var ErrForbidden = errors.New("operation is allowed for the organizer only")

// Validation failures. Nothing is mutated when one of these is returned.
var (
	ErrInvalidPot       = errors.New("invalid pot")
	ErrEmptyName        = errors.New("name is required")
	ErrNameTooLong      = errors.New("name is too long")
	ErrPotFull          = errors.New("pot is full: no vacant seat left")
	ErrDuplicateName    = errors.New("name already exists in this pot")
	ErrSeatAlreadyNamed = errors.New("a named seat cannot become vacant again")
)

var (
	ErrPotNotFound  = errors.New("pot not found")
	ErrSeatNotFound = errors.New("seat not found")
)
