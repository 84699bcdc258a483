package repository

import (
	"context"

	"gatta/internal/database"
	apperrors "gatta/internal/errors"
	"gatta/internal/models"
)

type SeatRepository struct {
	db *database.DB
}

func NewSeatRepository(db *database.DB) *SeatRepository {
	return &SeatRepository{db: db}
}

// ListByPot returns the pot's seat rows in creation order
func (r *SeatRepository) ListByPot(ctx context.Context, potID string) ([]models.SeatRow, error) {
	query := `
		SELECT id, pot_id, name, paid, created_at, updated_at
		FROM seats
		WHERE pot_id = $1
		ORDER BY created_at, seq`

	rows, err := r.db.QueryWithRetry(ctx, query, potID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []models.SeatRow
	for rows.Next() {
		var seat models.SeatRow
		if err := rows.Scan(
			&seat.ID,
			&seat.PotID,
			&seat.Name,
			&seat.Paid,
			&seat.CreatedAt,
			&seat.UpdatedAt,
		); err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}

	return seats, rows.Err()
}

// Upsert writes name and paid for the seat id. A missing row is inserted,
// which persists a vacancy the normalizer padded. Rows of another pot are
// never overwritten.
func (r *SeatRepository) Upsert(ctx context.Context, seat models.SeatRow) error {
	query := `
		INSERT INTO seats (id, pot_id, name, paid)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, paid = EXCLUDED.paid, updated_at = NOW()
		WHERE seats.pot_id = EXCLUDED.pot_id`

	res, err := r.db.ExecContext(ctx, query, seat.ID, seat.PotID, seat.Name, seat.Paid)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.ErrSeatNotFound
	}
	return nil
}
