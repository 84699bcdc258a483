package repository

import (
	"gatta/internal/database"
)

type Repositories struct {
	Pots  *PotRepository
	Seats *SeatRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Pots:  NewPotRepository(db),
		Seats: NewSeatRepository(db),
	}
}
