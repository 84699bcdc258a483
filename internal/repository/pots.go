package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gatta/internal/database"
	"gatta/internal/models"
)

type PotRepository struct {
	db *database.DB
}

func NewPotRepository(db *database.DB) *PotRepository {
	return &PotRepository{db: db}
}

// Create writes the pot and its seat rows in one transaction. Seats are
// inserted with a single multi-row statement in the given order.
func (r *PotRepository) Create(ctx context.Context, pot models.PotRow, seats []models.SeatRow) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO pots (id, title, total, seat_count, fee_per_seat, event_at, bank_name, iban, schema_version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = tx.ExecContext(ctx, query,
		pot.ID, pot.Title, pot.Total, pot.SeatCount, pot.FeePerSeat,
		pot.EventAt, pot.BankName, pot.IBAN, pot.SchemaVersion)
	if err != nil {
		return fmt.Errorf("failed to insert pot: %w", err)
	}

	if len(seats) > 0 {
		seatQuery, args := buildSeatInsert(pot.ID, seats)
		if _, err := tx.ExecContext(ctx, seatQuery, args...); err != nil {
			return fmt.Errorf("failed to insert seats: %w", err)
		}
	}

	return tx.Commit()
}

func buildSeatInsert(potID string, seats []models.SeatRow) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO seats (id, pot_id, name, paid) VALUES ")

	args := make([]any, 0, len(seats)*4)
	for i, s := range seats {
		if i > 0 {
			b.WriteString(", ")
		}
		n := i * 4
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4)
		args = append(args, s.ID, potID, s.Name, s.Paid)
	}
	return b.String(), args
}

func (r *PotRepository) GetByID(ctx context.Context, id string) (*models.PotRow, error) {
	pot := &models.PotRow{}
	query := `
		SELECT id, title, total, seat_count, fee_per_seat, event_at, bank_name, iban,
		       schema_version, created_at, updated_at
		FROM pots
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&pot.ID,
		&pot.Title,
		&pot.Total,
		&pot.SeatCount,
		&pot.FeePerSeat,
		&pot.EventAt,
		&pot.BankName,
		&pot.IBAN,
		&pot.SchemaVersion,
		&pot.CreatedAt,
		&pot.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return pot, nil
}

func (r *PotRepository) UpdateBank(ctx context.Context, id string, bankName, iban *string) error {
	query := `UPDATE pots SET bank_name = $1, iban = $2, updated_at = NOW() WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, bankName, iban, id)
	return err
}
