package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gatta/internal/auth"
	"gatta/internal/cache"
	apperrors "gatta/internal/errors"
	"gatta/internal/logger"
	"gatta/internal/messaging"
	"gatta/internal/metrics"
	"gatta/internal/models"
	"gatta/internal/potsync"
	"gatta/internal/potview"
	"gatta/internal/seats"

	"github.com/google/uuid"
)

type PotService struct {
	pots      PotStore
	seats     SeatStore
	publisher messaging.Publisher
	cache     PotCache
	issuer    *auth.Issuer
	opts      Options
	now       func() time.Time
}

func NewPotService(pots PotStore, seatStore SeatStore, publisher messaging.Publisher, potCache PotCache, issuer *auth.Issuer, opts Options) *PotService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &PotService{
		pots:      pots,
		seats:     seatStore,
		publisher: publisher,
		cache:     potCache,
		issuer:    issuer,
		opts:      opts,
		now:       time.Now,
	}
}

// Create stores a new pot with every seat vacant and returns the organizer
// token. The token is not stored and cannot be retrieved again.
func (s *PotService) Create(ctx context.Context, req *models.CreatePotRequest) (*models.CreatePotResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrInvalidPot)
	}
	if math.IsNaN(req.Total) || math.IsInf(req.Total, 0) || req.Total <= 0 {
		return nil, fmt.Errorf("%w: total must be positive", apperrors.ErrInvalidPot)
	}
	if math.IsNaN(req.SeatCount) || req.SeatCount < seats.MinSeats {
		return nil, fmt.Errorf("%w: at least %d seats are required", apperrors.ErrInvalidPot, seats.MinSeats)
	}
	if req.EventAt.IsZero() {
		return nil, fmt.Errorf("%w: meeting time is required", apperrors.ErrInvalidPot)
	}

	count := seats.ClampSeatCount(req.SeatCount)
	now := s.now().UTC()

	pot := models.PotRow{
		ID:            uuid.NewString(),
		Title:         title,
		Total:         req.Total,
		SeatCount:     float64(count),
		FeePerSeat:    s.opts.FeePerSeat,
		EventAt:       req.EventAt.UTC(),
		BankName:      optional(req.BankName),
		IBAN:          optional(req.IBAN),
		SchemaVersion: models.CurrentSchemaVersion,
	}

	rows := make([]models.SeatRow, count)
	for i := range rows {
		rows[i] = models.SeatRow{ID: uuid.NewString(), PotID: pot.ID}
	}

	if err := s.pots.Create(ctx, pot, rows); err != nil {
		return nil, fmt.Errorf("failed to create pot: %w", err)
	}

	token, err := s.issuer.Issue(pot.ID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, models.EventPotCreated, models.PotCreatedEvent{
		PotID:     pot.ID,
		SeatCount: count,
		Timestamp: now,
	})

	logger.WithContext(ctx).Info("Pot created", "pot_id", pot.ID, "seats", count)

	return &models.CreatePotResponse{
		ID:             pot.ID,
		OrganizerToken: token,
		Link:           potview.ShareLink(s.opts.PublicBaseURL, pot.ID, false),
		OrganizerLink:  potview.ShareLink(s.opts.PublicBaseURL, pot.ID, true),
	}, nil
}

// Get returns the normalized pot with its derived figures
func (s *PotService) Get(ctx context.Context, potID string) (*models.PotView, error) {
	pot, err := s.cached(ctx, potID)
	if err != nil {
		return nil, err
	}
	return &models.PotView{Pot: pot, Summary: potview.Summarize(pot, s.now())}, nil
}

// ShareMessage returns the text members receive with the pot link
func (s *PotService) ShareMessage(ctx context.Context, potID string) (*models.ShareMessageResponse, error) {
	pot, err := s.cached(ctx, potID)
	if err != nil {
		return nil, err
	}
	link := potview.ShareLink(s.opts.PublicBaseURL, pot.ID, false)
	summary := potview.Summarize(pot, s.now())
	return &models.ShareMessageResponse{
		Text: potview.ShareMessage(pot, summary, link, s.opts.Location),
		Link: link,
	}, nil
}

// UpdateSeat is the raw last-write-wins write of one seat's name and paid
// fields. A vacant seat given a name with paid=false is a member addition and
// needs the organizer capability.
func (s *PotService) UpdateSeat(ctx context.Context, potID, seatID string, req *models.UpdateSeatRequest) (*models.SeatResponse, error) {
	pot, stored, err := s.load(ctx, potID)
	if err != nil {
		return nil, err
	}

	idx := pot.SeatIndex(seatID)
	current := models.Seat{ID: seatID}
	switch {
	case idx >= 0:
		current = pot.Seats[idx]
	case stored < pot.SeatCount && uuid.Validate(seatID) == nil:
		// a vacancy padded by an earlier read; the write persists it
	default:
		return nil, apperrors.ErrSeatNotFound
	}

	name := seats.CleanName(req.Name)
	if name != "" {
		if name, err = seats.ValidateName(name); err != nil {
			return nil, err
		}
	}
	paid := req.Paid.Bool()

	switch {
	case !current.Vacant() && !strings.EqualFold(name, current.Name):
		// named seats keep their member; only paid may change
		return nil, apperrors.ErrSeatAlreadyNamed
	case !current.Vacant():
		name = current.Name
	case name == "" && paid:
		return nil, fmt.Errorf("%w: a vacant seat cannot be paid", apperrors.ErrEmptyName)
	case current.Vacant() && name != "" && !paid && !auth.IsOrganizer(ctx, potID):
		return nil, apperrors.ErrForbidden
	}
	if dup := seats.FindByName(pot.Seats, name); dup >= 0 && pot.Seats[dup].ID != seatID {
		return nil, apperrors.ErrDuplicateName
	}

	after := models.Seat{ID: seatID, Name: name, Paid: paid}
	if after == current {
		return s.respond(pot, current, false), nil
	}

	if err := s.write(ctx, pot.ID, after, idx < 0); err != nil {
		return nil, err
	}
	if idx < 0 {
		// padded vacancies follow the stored rows, so the new row lands there
		idx = stored
	}
	pot.Seats[idx] = after
	return s.respond(pot, after, true), nil
}

// ConfirmPayment marks the named member paid, seating them first when needed
func (s *PotService) ConfirmPayment(ctx context.Context, potID, name string) (*models.SeatResponse, error) {
	return s.apply(ctx, potID, potsync.IntentConfirm, func(current []models.Seat) (seats.Change, bool, error) {
		c, err := seats.PlanConfirm(current, name)
		return c, err == nil, err
	})
}

// TogglePaid flips a named seat's paid flag. Vacant seats are left as they are.
func (s *PotService) TogglePaid(ctx context.Context, potID, seatID string) (*models.SeatResponse, error) {
	return s.apply(ctx, potID, potsync.IntentToggle, func(current []models.Seat) (seats.Change, bool, error) {
		return seats.PlanToggle(current, seatID)
	})
}

// AddMember seats a new unpaid member. Organizer only.
func (s *PotService) AddMember(ctx context.Context, potID, name string) (*models.SeatResponse, error) {
	if !auth.IsOrganizer(ctx, potID) {
		return nil, apperrors.ErrForbidden
	}
	return s.apply(ctx, potID, potsync.IntentAdd, func(current []models.Seat) (seats.Change, bool, error) {
		c, err := seats.PlanAdd(current, name)
		return c, err == nil, err
	})
}

// UpdateBank replaces the transfer details. Organizer only.
func (s *PotService) UpdateBank(ctx context.Context, potID string, req *models.UpdateBankRequest) (*models.PotView, error) {
	if !auth.IsOrganizer(ctx, potID) {
		return nil, apperrors.ErrForbidden
	}
	pot, _, err := s.load(ctx, potID)
	if err != nil {
		return nil, err
	}

	bankName, iban := strings.TrimSpace(req.BankName), strings.TrimSpace(req.IBAN)
	if err := s.pots.UpdateBank(ctx, pot.ID, optional(bankName), optional(iban)); err != nil {
		return nil, fmt.Errorf("failed to update bank details: %w", err)
	}
	s.invalidate(ctx, pot.ID)
	s.publish(ctx, models.EventBankUpdated, models.BankUpdatedEvent{PotID: pot.ID, Timestamp: s.now().UTC()})

	pot.BankName, pot.IBAN = bankName, iban
	return &models.PotView{Pot: pot, Summary: potview.Summarize(pot, s.now())}, nil
}

type planFunc func(current []models.Seat) (change seats.Change, ok bool, err error)

func (s *PotService) apply(ctx context.Context, potID string, intent potsync.Intent, plan planFunc) (*models.SeatResponse, error) {
	pot, stored, err := s.load(ctx, potID)
	if err != nil {
		return nil, err
	}

	change, ok, err := plan(pot.Seats)
	if err != nil {
		return nil, err
	}
	if !ok || change.Noop() {
		metrics.SeatMutation(string(intent), potsync.Unchanged.String())
		return s.respond(pot, change.Before, false), nil
	}

	if err := s.write(ctx, pot.ID, change.After, change.Index >= stored); err != nil {
		return nil, err
	}
	pot.Seats[change.Index] = change.After
	metrics.SeatMutation(string(intent), potsync.Applied.String())

	logger.WithContext(ctx).Info("Seat intent applied",
		"intent", intent, "pot_id", pot.ID, "seat_id", change.After.ID, "paid", change.After.Paid)

	return s.respond(pot, change.After, true), nil
}

// write upserts seat. inserted marks a padded vacancy getting its first row.
func (s *PotService) write(ctx context.Context, potID string, seat models.Seat, inserted bool) error {
	err := s.seats.Upsert(ctx, models.SeatRow{ID: seat.ID, PotID: potID, Name: seat.Name, Paid: seat.Paid})
	if err != nil {
		return fmt.Errorf("failed to save seat: %w", err)
	}
	s.invalidate(ctx, potID)
	s.publish(ctx, models.EventSeatUpdated, models.SeatUpdatedEvent{
		PotID:     potID,
		Seat:      seat,
		Inserted:  inserted,
		Timestamp: s.now().UTC(),
	})
	return nil
}

func (s *PotService) respond(pot models.Pot, seat models.Seat, changed bool) *models.SeatResponse {
	return &models.SeatResponse{
		Seat:    seat,
		Changed: changed,
		Summary: potview.Summarize(pot, s.now()),
	}
}

// load reads the pot from the row store, bypassing the cache. stored is the
// number of seat rows actually persisted.
func (s *PotService) load(ctx context.Context, potID string) (pot models.Pot, stored int, err error) {
	if uuid.Validate(potID) != nil {
		return models.Pot{}, 0, apperrors.ErrPotNotFound
	}

	row, err := s.pots.GetByID(ctx, potID)
	if err != nil {
		return models.Pot{}, 0, fmt.Errorf("failed to get pot: %w", err)
	}
	if row == nil {
		return models.Pot{}, 0, apperrors.ErrPotNotFound
	}

	rows, err := s.seats.ListByPot(ctx, potID)
	if err != nil {
		return models.Pot{}, 0, fmt.Errorf("failed to get seats: %w", err)
	}

	rows = seats.Migrate(row.SchemaVersion, rows)
	return seats.NormalizePot(*row, rows), len(rows), nil
}

func (s *PotService) cached(ctx context.Context, potID string) (models.Pot, error) {
	var generation int64
	fill := s.cache != nil
	if fill {
		if pot, err := s.cache.Get(ctx, potID); err == nil {
			metrics.CacheHit()
			return *pot, nil
		}
		metrics.CacheMiss()

		var err error
		if generation, err = s.cache.Generation(ctx, potID); err != nil {
			logger.WithContext(ctx).Warn("Failed to read pot cache generation", "pot_id", potID, "error", err)
			fill = false
		}
	}

	pot, _, err := s.load(ctx, potID)
	if err != nil {
		return models.Pot{}, err
	}

	if fill {
		err := s.cache.Set(ctx, pot, generation)
		switch {
		case errors.Is(err, cache.ErrStale):
			logger.WithContext(ctx).Debug("Pot written during load, not caching", "pot_id", potID)
		case err != nil:
			logger.WithContext(ctx).Warn("Failed to cache pot", "pot_id", potID, "error", err)
		}
	}
	return pot, nil
}

func (s *PotService) invalidate(ctx context.Context, potID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, potID); err != nil {
		logger.WithContext(ctx).Warn("Failed to invalidate cached pot", "pot_id", potID, "error", err)
	}
}

// publish is best effort: the row is already written when it runs
func (s *PotService) publish(ctx context.Context, subject string, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(subject, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event", "subject", subject, "error", err)
	}
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
