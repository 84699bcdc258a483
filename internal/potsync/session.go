// Package potsync keeps one pot's local state in step with the remote store.
// Mutations are applied locally first, written remotely, and reverted when the
// write fails. Realtime seat updates from other writers are merged in as they
// arrive.
package potsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	apperrors "gatta/internal/errors"
	"gatta/internal/models"
	"gatta/internal/seats"
)

// RemoteStore persists a seat's name and paid fields by seat id
type RemoteStore interface {
	UpdateSeat(ctx context.Context, potID string, seat models.Seat) error
}

// Kind tags the outcome of a mutation
type Kind int

const (
	// Unchanged means nothing was applied and no remote call was issued
	Unchanged Kind = iota
	Applied
	RolledBack
)

func (k Kind) String() string {
	switch k {
	case Applied:
		return "applied"
	case RolledBack:
		return "rolled_back"
	default:
		return "unchanged"
	}
}

// Result is the tagged outcome of one mutation. Reason is set for RolledBack.
type Result struct {
	Kind   Kind
	Seat   models.Seat
	Reason string
}

// Intent names a mutation for logging and metrics
type Intent string

const (
	IntentConfirm Intent = "confirm"
	IntentToggle  Intent = "toggle"
	IntentAdd     Intent = "add"
)

// GenericFailure is reported when the remote call panics
const GenericFailure = "something went wrong, please try again"

// Session is the local, optimistically written view of one pot. It is safe
// for concurrent use; the lock is never held across a remote call.
type Session struct {
	mu        sync.Mutex
	pot       models.Pot
	store     RemoteStore
	organizer bool
	logger    *slog.Logger

	onChange func(models.Pot)
	observe  func(Intent, Result)
}

// Option configures a Session
type Option func(*Session)

// AsOrganizer grants the session the organizer capability
func AsOrganizer() Option {
	return func(s *Session) { s.organizer = true }
}

// WithLogger sets the session logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// OnChange registers a callback invoked with a snapshot after every local
// state change, including rollbacks and realtime patches.
func OnChange(fn func(models.Pot)) Option {
	return func(s *Session) { s.onChange = fn }
}

// OnResult registers a callback invoked after every mutation outcome
func OnResult(fn func(Intent, Result)) Option {
	return func(s *Session) { s.observe = fn }
}

// NewSession starts a session from an already normalized pot
func NewSession(pot models.Pot, store RemoteStore, opts ...Option) *Session {
	s := &Session{
		pot:    pot.Clone(),
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("pot_id", pot.ID)
	return s
}

// Snapshot returns a copy of the current local state
func (s *Session) Snapshot() models.Pot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pot.Clone()
}

// Organizer reports whether the session holds the organizer capability
func (s *Session) Organizer() bool {
	return s.organizer
}

// ConfirmPayment marks the seat matching name as paid, or seats the name in
// the first vacancy as paid. ErrPotFull is returned when neither is possible.
func (s *Session) ConfirmPayment(ctx context.Context, name string) (Result, error) {
	return s.mutate(ctx, IntentConfirm, func(current []models.Seat) (seats.Change, bool, error) {
		c, err := seats.PlanConfirm(current, name)
		return c, err == nil, err
	})
}

// TogglePaid flips paid on a named seat. Toggling a vacant seat is a no-op.
func (s *Session) TogglePaid(ctx context.Context, seatID string) (Result, error) {
	return s.mutate(ctx, IntentToggle, func(current []models.Seat) (seats.Change, bool, error) {
		return seats.PlanToggle(current, seatID)
	})
}

// AddMember seats a new unpaid name. Only the organizer may add members.
func (s *Session) AddMember(ctx context.Context, name string) (Result, error) {
	if !s.organizer {
		return Result{Kind: Unchanged}, apperrors.ErrForbidden
	}
	return s.mutate(ctx, IntentAdd, func(current []models.Seat) (seats.Change, bool, error) {
		c, err := seats.PlanAdd(current, name)
		return c, err == nil, err
	})
}

type planFunc func(current []models.Seat) (change seats.Change, ok bool, err error)

func (s *Session) mutate(ctx context.Context, intent Intent, plan planFunc) (Result, error) {
	s.mu.Lock()
	change, ok, err := plan(s.pot.Seats)
	if err != nil {
		s.mu.Unlock()
		return Result{Kind: Unchanged}, err
	}
	if !ok {
		s.mu.Unlock()
		result := Result{Kind: Unchanged}
		s.report(intent, result)
		return result, nil
	}
	s.pot.Seats[change.Index] = change.After
	snapshot := s.pot.Clone()
	s.mu.Unlock()

	s.notify(snapshot)

	if err := s.write(ctx, change.After); err != nil {
		reason := err.Error()
		var panicErr *remotePanic
		if errors.As(err, &panicErr) {
			reason = GenericFailure
		}
		s.rollback(change)
		s.logger.Warn("Seat mutation rolled back",
			"intent", intent, "seat_id", change.After.ID, "error", err)

		result := Result{Kind: RolledBack, Seat: change.Before, Reason: reason}
		s.report(intent, result)
		return result, nil
	}

	s.logger.Info("Seat mutation applied",
		"intent", intent, "seat_id", change.After.ID, "paid", change.After.Paid)

	result := Result{Kind: Applied, Seat: change.After}
	s.report(intent, result)
	return result, nil
}

type remotePanic struct {
	value any
}

func (p *remotePanic) Error() string {
	return fmt.Sprintf("remote store panicked: %v", p.value)
}

func (s *Session) write(ctx context.Context, seat models.Seat) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &remotePanic{value: r}
		}
	}()
	return s.store.UpdateSeat(ctx, s.pot.ID, seat)
}

// rollback restores the prior seat value unless a newer realtime patch has
// already replaced the optimistic one.
func (s *Session) rollback(change seats.Change) {
	s.mu.Lock()
	idx := s.pot.SeatIndex(change.After.ID)
	if idx < 0 || s.pot.Seats[idx] != change.After {
		s.mu.Unlock()
		return
	}
	s.pot.Seats[idx] = change.Before
	snapshot := s.pot.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
}

func (s *Session) notify(snapshot models.Pot) {
	if s.onChange != nil {
		s.onChange(snapshot)
	}
}

func (s *Session) report(intent Intent, result Result) {
	if s.observe != nil {
		s.observe(intent, result)
	}
}
