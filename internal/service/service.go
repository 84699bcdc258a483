package service

import (
	"context"
	"time"

	"gatta/internal/auth"
	"gatta/internal/messaging"
	"gatta/internal/models"
)

// PotStore persists pot rows
type PotStore interface {
	Create(ctx context.Context, pot models.PotRow, seats []models.SeatRow) error
	GetByID(ctx context.Context, id string) (*models.PotRow, error)
	UpdateBank(ctx context.Context, id string, bankName, iban *string) error
}

// SeatStore persists seat rows
type SeatStore interface {
	ListByPot(ctx context.Context, potID string) ([]models.SeatRow, error)
	Upsert(ctx context.Context, seat models.SeatRow) error
}

// PotCache holds normalized pots between reads. Get returns an error on miss.
// Invalidate bumps the pot's generation; Set refuses with cache.ErrStale
// when the generation moved past the one read before loading.
type PotCache interface {
	Get(ctx context.Context, potID string) (*models.Pot, error)
	Generation(ctx context.Context, potID string) (int64, error)
	Set(ctx context.Context, pot models.Pot, generation int64) error
	Invalidate(ctx context.Context, potID string) error
}

// Options carries the settings the services need from config
type Options struct {
	PublicBaseURL string
	FeePerSeat    float64
	Location      *time.Location
}

type Services struct {
	Pots *PotService
}

func NewServices(pots PotStore, seats SeatStore, publisher messaging.Publisher, cache PotCache, issuer *auth.Issuer, opts Options) *Services {
	return &Services{
		Pots: NewPotService(pots, seats, publisher, cache, issuer, opts),
	}
}
