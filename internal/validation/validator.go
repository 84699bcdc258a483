package validation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"gatta/internal/client"
	apperrors "gatta/internal/errors"
	"gatta/internal/models"

	"github.com/google/uuid"
)

// SpecValidator runs an end-to-end scenario against a live API
type SpecValidator struct {
	organizer *client.Client
	member    *client.Client
	logger    *slog.Logger
}

// NewSpecValidator creates a validator for baseURL. The organizer token of
// the scenario pot is kept in memory only.
func NewSpecValidator(baseURL string) (*SpecValidator, error) {
	tokens, err := client.LoadTokenStore("")
	if err != nil {
		return nil, err
	}
	return &SpecValidator{
		organizer: client.New(client.Config{BaseURL: baseURL, Tokens: tokens}),
		member:    client.New(client.Config{BaseURL: baseURL}),
		logger:    slog.Default().With("component", "validator"),
	}, nil
}

// ValidateAll walks one pot through creation, live updates, confirmations,
// organizer-only operations and the full-pot rejection.
func (v *SpecValidator) ValidateAll(ctx context.Context) error {
	v.logger.Info("Starting API validation")

	created, err := v.organizer.CreatePot(ctx, models.CreatePotRequest{
		Title:     "Validation dinner",
		Total:     90,
		SeatCount: 3,
		EventAt:   time.Now().Add(72 * time.Hour),
	})
	if err != nil {
		return fmt.Errorf("POST /api/pots: %w", err)
	}
	potID := created.ID

	view, err := v.member.GetPot(ctx, potID)
	if err != nil {
		return fmt.Errorf("GET /api/pots/:id: %w", err)
	}
	if len(view.Pot.Seats) != 3 || view.Summary.JoinedCount != 0 {
		return fmt.Errorf("GET /api/pots/:id: expected 3 vacant seats, got %d seats with %d joined",
			len(view.Pot.Seats), view.Summary.JoinedCount)
	}
	v.logger.Info("Pot created", "pot_id", potID)

	liveCtx, cancelLive := context.WithCancel(ctx)
	defer cancelLive()
	events, err := v.member.Subscribe(liveCtx, potID)
	if err != nil {
		return fmt.Errorf("GET /api/pots/:id/live: %w", err)
	}

	confirmed, err := v.member.ConfirmPayment(ctx, potID, "Validator A")
	if err != nil {
		return fmt.Errorf("POST /api/pots/:id/confirm: %w", err)
	}
	if !confirmed.Changed || !confirmed.Seat.Paid || confirmed.Summary.PaidCount != 1 {
		return fmt.Errorf("POST /api/pots/:id/confirm: unexpected response %+v", confirmed)
	}
	if err := awaitSeat(events, confirmed.Seat.ID, 5*time.Second); err != nil {
		return fmt.Errorf("live stream: %w", err)
	}
	v.logger.Info("Confirmation streamed", "seat_id", confirmed.Seat.ID)

	if _, err := v.member.AddMember(ctx, potID, "Validator B"); client.StatusOf(err) != http.StatusForbidden {
		return fmt.Errorf("POST /api/pots/:id/members without token: expected 403, got %v", err)
	}
	if _, err := v.organizer.AddMember(ctx, potID, "Validator B"); err != nil {
		return fmt.Errorf("POST /api/pots/:id/members: %w", err)
	}

	toggled, err := v.member.TogglePaid(ctx, potID, confirmed.Seat.ID)
	if err != nil {
		return fmt.Errorf("POST /api/pots/:id/seats/:seatId/toggle: %w", err)
	}
	if toggled.Seat.Paid {
		return fmt.Errorf("POST /api/pots/:id/seats/:seatId/toggle: seat still paid")
	}

	if _, err := v.member.ConfirmPayment(ctx, potID, "Validator C"); err != nil {
		return fmt.Errorf("POST /api/pots/:id/confirm: %w", err)
	}
	if _, err := v.member.ConfirmPayment(ctx, potID, "Validator D"); !errors.Is(err, apperrors.ErrPotFull) {
		return fmt.Errorf("POST /api/pots/:id/confirm on a full pot: expected %q, got %v", apperrors.ErrPotFull, err)
	}

	if _, err := v.member.UpdateBank(ctx, potID, "Bank", "SA00"); client.StatusOf(err) != http.StatusForbidden {
		return fmt.Errorf("PATCH /api/pots/:id/bank without token: expected 403, got %v", err)
	}
	if _, err := v.organizer.UpdateBank(ctx, potID, "Bank", "SA00"); err != nil {
		return fmt.Errorf("PATCH /api/pots/:id/bank: %w", err)
	}

	share, err := v.member.ShareMessage(ctx, potID)
	if err != nil {
		return fmt.Errorf("GET /api/pots/:id/share: %w", err)
	}
	if share.Link != created.Link {
		return fmt.Errorf("GET /api/pots/:id/share: link %q, expected %q", share.Link, created.Link)
	}

	if _, err := v.member.GetPot(ctx, uuid.NewString()); client.StatusOf(err) != http.StatusNotFound {
		return fmt.Errorf("GET /api/pots/:id for a missing pot: expected 404, got %v", err)
	}

	v.logger.Info("✅ API validation passed", "pot_id", potID)
	return nil
}

func awaitSeat(events <-chan models.SeatUpdatedEvent, seatID string, wait time.Duration) error {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return errors.New("stream closed before the update arrived")
			}
			if ev.Seat.ID == seatID {
				return nil
			}
		case <-timer.C:
			return fmt.Errorf("no update for seat %s within %s", seatID, wait)
		}
	}
}

// RunValidation runs the scenario against baseURL
func RunValidation(ctx context.Context, baseURL string) error {
	validator, err := NewSpecValidator(baseURL)
	if err != nil {
		return err
	}
	return validator.ValidateAll(ctx)
}
