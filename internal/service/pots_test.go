package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"gatta/internal/auth"
	"gatta/internal/cache"
	apperrors "gatta/internal/errors"
	"gatta/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu    sync.Mutex
	pots  map[string]models.PotRow
	seats map[string][]models.SeatRow

	// afterList runs once the rows are copied, before they are returned
	afterList func()
}

func newMemStore() *memStore {
	return &memStore{pots: map[string]models.PotRow{}, seats: map[string][]models.SeatRow{}}
}

func (m *memStore) Create(_ context.Context, pot models.PotRow, rows []models.SeatRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pots[pot.ID] = pot
	m.seats[pot.ID] = append([]models.SeatRow(nil), rows...)
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*models.PotRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pot, ok := m.pots[id]
	if !ok {
		return nil, nil
	}
	return &pot, nil
}

func (m *memStore) UpdateBank(_ context.Context, id string, bankName, iban *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	pot := m.pots[id]
	pot.BankName, pot.IBAN = bankName, iban
	m.pots[id] = pot
	return nil
}

func (m *memStore) ListByPot(_ context.Context, potID string) ([]models.SeatRow, error) {
	m.mu.Lock()
	rows := append([]models.SeatRow(nil), m.seats[potID]...)
	hook := m.afterList
	m.afterList = nil
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return rows, nil
}

func (m *memStore) Upsert(_ context.Context, seat models.SeatRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.seats[seat.PotID]
	for i := range rows {
		if rows[i].ID == seat.ID {
			rows[i].Name, rows[i].Paid = seat.Name, seat.Paid
			return nil
		}
	}
	m.seats[seat.PotID] = append(rows, seat)
	return nil
}

type published struct {
	subject string
	data    any
}

type memPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *memPublisher) Publish(subject string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{subject, data})
	return nil
}

func (p *memPublisher) seatEvents() []models.SeatUpdatedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []models.SeatUpdatedEvent
	for _, e := range p.events {
		if ev, ok := e.data.(models.SeatUpdatedEvent); ok {
			out = append(out, ev)
		}
	}
	return out
}

type memCache struct {
	pots        map[string]models.Pot
	generations map[string]int64
	invalidated []string
}

func newMemCache() *memCache {
	return &memCache{pots: map[string]models.Pot{}, generations: map[string]int64{}}
}

func (c *memCache) Get(_ context.Context, id string) (*models.Pot, error) {
	pot, ok := c.pots[id]
	if !ok {
		return nil, cache.ErrMiss
	}
	return &pot, nil
}

func (c *memCache) Generation(_ context.Context, id string) (int64, error) {
	return c.generations[id], nil
}

func (c *memCache) Set(_ context.Context, pot models.Pot, generation int64) error {
	if c.generations[pot.ID] != generation {
		return cache.ErrStale
	}
	c.pots[pot.ID] = pot.Clone()
	return nil
}

func (c *memCache) Invalidate(_ context.Context, id string) error {
	delete(c.pots, id)
	c.generations[id]++
	c.invalidated = append(c.invalidated, id)
	return nil
}

type fixture struct {
	svc    *PotService
	store  *memStore
	pub    *memPublisher
	cache  *memCache
	issuer *auth.Issuer
}

func newFixture() *fixture {
	f := &fixture{
		store:  newMemStore(),
		pub:    &memPublisher{},
		cache:  newMemCache(),
		issuer: auth.NewIssuer("test-secret", 0),
	}
	f.svc = NewPotService(f.store, f.store, f.pub, f.cache, f.issuer, Options{
		PublicBaseURL: "https://gatta.test",
		FeePerSeat:    2,
	})
	f.svc.now = func() time.Time { return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func (f *fixture) createPot(t *testing.T, seatCount float64) string {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), &models.CreatePotRequest{
		Title:     "Dinner",
		Total:     100,
		SeatCount: seatCount,
		EventAt:   time.Date(2026, 1, 3, 20, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return resp.ID
}

func organizer(potID string) context.Context {
	return auth.WithOrganizer(context.Background(), potID)
}

func TestCreate(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.Create(context.Background(), &models.CreatePotRequest{
		Title:     "  Dinner ",
		Total:     100,
		SeatCount: 80,
		EventAt:   time.Date(2026, 1, 3, 20, 0, 0, 0, time.UTC),
		BankName:  "Rajhi",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://gatta.test/s/"+resp.ID, resp.Link)
	assert.Equal(t, "https://gatta.test/s/"+resp.ID+"?org=1", resp.OrganizerLink)
	assert.NoError(t, f.issuer.Verify(resp.OrganizerToken, resp.ID))

	row := f.store.pots[resp.ID]
	assert.Equal(t, "Dinner", row.Title)
	assert.Equal(t, float64(50), row.SeatCount)
	assert.Equal(t, float64(2), row.FeePerSeat)
	assert.Equal(t, models.CurrentSchemaVersion, row.SchemaVersion)
	require.NotNil(t, row.BankName)
	assert.Nil(t, row.IBAN)
	assert.Len(t, f.store.seats[resp.ID], 50)

	require.Len(t, f.pub.events, 1)
	assert.Equal(t, models.EventPotCreated, f.pub.events[0].subject)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture()
	at := time.Date(2026, 1, 3, 20, 0, 0, 0, time.UTC)

	cases := map[string]models.CreatePotRequest{
		"empty title":    {Title: " ", Total: 100, SeatCount: 3, EventAt: at},
		"zero total":     {Title: "x", Total: 0, SeatCount: 3, EventAt: at},
		"one seat":       {Title: "x", Total: 100, SeatCount: 1, EventAt: at},
		"no meeting set": {Title: "x", Total: 100, SeatCount: 3},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), &req)
			assert.ErrorIs(t, err, apperrors.ErrInvalidPot)
		})
	}
	assert.Empty(t, f.store.pots)
}

func TestGetNormalizesAndCaches(t *testing.T) {
	f := newFixture()
	id := f.createPot(t, 4)
	rows := f.store.seats[id]
	rows[0].Name = "EMPTY"
	rows[1].Name = "Sara"
	rows[1].Paid = true
	f.store.seats[id] = rows[:3]

	view, err := f.svc.Get(context.Background(), id)
	require.NoError(t, err)

	require.Len(t, view.Pot.Seats, 4)
	assert.Equal(t, "", view.Pot.Seats[0].Name)
	assert.Equal(t, "Sara", view.Pot.Seats[1].Name)
	assert.Equal(t, 1, view.Summary.PaidCount)
	assert.Equal(t, float64(27), view.Summary.Share)
	assert.Equal(t, "2 days • 8 hours • 0 minutes", view.Summary.Remaining)
	assert.Contains(t, f.cache.pots, id)

	// served from cache while the row store changes underneath
	f.store.seats[id][2].Name = "Omar"
	again, err := f.svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, view.Pot, again.Pot)
}

func TestGetSkipsCacheFillAfterConcurrentWrite(t *testing.T) {
	f := newFixture()
	id := f.createPot(t, 3)
	ctx := context.Background()

	// the confirm commits after the reader copied its rows
	f.store.afterList = func() {
		_, err := f.svc.ConfirmPayment(ctx, id, "Sara")
		require.NoError(t, err)
	}
	view, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Summary.PaidCount)
	assert.NotContains(t, f.cache.pots, id)

	view, err = f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Summary.PaidCount)
	assert.Equal(t, "Sara", view.Pot.Seats[0].Name)
	assert.Contains(t, f.cache.pots, id)
}

func TestGetMigratesLegacyPlaceholders(t *testing.T) {
	f := newFixture()
	id := f.createPot(t, 3)
	row := f.store.pots[id]
	row.SchemaVersion = 0
	f.store.pots[id] = row
	f.store.seats[id][0].Name = "شخص 1"
	f.store.seats[id][1].Name = "Sara"

	view, err := f.svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, view.Pot.Seats[0].Vacant())
	assert.Equal(t, "Sara", view.Pot.Seats[1].Name)
}

func TestGetUnknownPot(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrPotNotFound)

	_, err = f.svc.Get(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, apperrors.ErrPotNotFound)
}

func TestConfirmPayment(t *testing.T) {
	f := newFixture()
	id := f.createPot(t, 2)
	ctx := context.Background()

	resp, err := f.svc.ConfirmPayment(ctx, id, " Sara ")
	require.NoError(t, err)
	assert.True(t, resp.Changed)
	assert.Equal(t, "Sara", resp.Seat.Name)
	assert.True(t, resp.Seat.Paid)
	assert.Equal(t, 1, resp.Summary.PaidCount)
	assert.Contains(t, f.cache.invalidated, id)

	events := f.pub.seatEvents()
	require.Len(t, events, 1)
	assert.Equal(t, resp.Seat, events[0].Seat)

	again, err := f.svc.ConfirmPayment(ctx, id, "sara")
	require.NoError(t, err)
	assert.False(t, again.Changed)
	assert.Len(t, f.pub.seatEvents(), 1)

	_, err = f.svc.ConfirmPayment(ctx, id, "Omar")
	require.NoError(t, err)
	_, err = f.svc.ConfirmPayment(ctx, id, "Laila")
	assert.ErrorIs(t, err, apperrors.ErrPotFull)
}

func TestTogglePaid(t *testing.T) {
	f := newFixture()
	id := f.createPot(t, 3)
	ctx := context.Background()

	confirmed, err := f.svc.ConfirmPayment(ctx, id, "Sara")
	require.NoError(t, err)

	resp, err := f.svc.TogglePaid(ctx, id, confirmed.Seat.ID)
	require.NoError(t, err)
	assert.True(t, resp.Changed)
	assert.False(t, resp.Seat.Paid)

	vacant := f.store.seats[id][1].ID
	resp, err = f.svc.TogglePaid(ctx, id, vacant)
	require.NoError(t, err)
	assert.False(t, resp.Changed)

	_, err = f.svc.TogglePaid(ctx, id, uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrSeatNotFound)
}

func TestAddMemberRequiresOrganizer(t *testing.T) {
	f := newFixture()
	id := f.createPot(t, 3)

	_, err := f.svc.AddMember(context.Background(), id, "Omar")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.svc.AddMember(organizer(uuid.NewString()), id, "Omar")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	resp, err := f.svc.AddMember(organizer(id), id, "Omar")
	require.NoError(t, err)
	assert.Equal(t, "Omar", resp.Seat.Name)
	assert.False(t, resp.Seat.Paid)

	_, err = f.svc.AddMember(organizer(id), id, "omar")
	assert.ErrorIs(t, err, apperrors.ErrDuplicateName)
}

func TestUpdateSeat(t *testing.T) {
	f := newFixture()
	id := f.createPot(t, 3)
	seatID := f.store.seats[id][0].ID
	ctx := context.Background()

	t.Run("member joining unpaid needs organizer", func(t *testing.T) {
		_, err := f.svc.UpdateSeat(ctx, id, seatID, &models.UpdateSeatRequest{Name: "Omar"})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("paid join is open", func(t *testing.T) {
		resp, err := f.svc.UpdateSeat(ctx, id, seatID, &models.UpdateSeatRequest{Name: "Omar", Paid: true})
		require.NoError(t, err)
		assert.True(t, resp.Changed)
		assert.Equal(t, models.Seat{ID: seatID, Name: "Omar", Paid: true}, resp.Seat)
	})

	t.Run("named seat cannot be vacated", func(t *testing.T) {
		_, err := f.svc.UpdateSeat(ctx, id, seatID, &models.UpdateSeatRequest{Name: "EMPTY"})
		assert.ErrorIs(t, err, apperrors.ErrSeatAlreadyNamed)
	})

	t.Run("named seat cannot be renamed", func(t *testing.T) {
		before := len(f.pub.seatEvents())
		_, err := f.svc.UpdateSeat(ctx, id, seatID, &models.UpdateSeatRequest{Name: "Mallory"})
		assert.ErrorIs(t, err, apperrors.ErrSeatAlreadyNamed)
		_, err = f.svc.UpdateSeat(organizer(id), id, seatID, &models.UpdateSeatRequest{Name: "Mallory", Paid: true})
		assert.ErrorIs(t, err, apperrors.ErrSeatAlreadyNamed)

		assert.Equal(t, "Omar", f.store.seats[id][0].Name)
		assert.Len(t, f.pub.seatEvents(), before)
	})

	t.Run("duplicate name", func(t *testing.T) {
		other := f.store.seats[id][1].ID
		_, err := f.svc.UpdateSeat(ctx, id, other, &models.UpdateSeatRequest{Name: "OMAR", Paid: true})
		assert.ErrorIs(t, err, apperrors.ErrDuplicateName)
	})

	t.Run("same value is not written", func(t *testing.T) {
		before := len(f.pub.seatEvents())
		resp, err := f.svc.UpdateSeat(ctx, id, seatID, &models.UpdateSeatRequest{Name: "Omar", Paid: true})
		require.NoError(t, err)
		assert.False(t, resp.Changed)
		assert.Len(t, f.pub.seatEvents(), before)
	})

	t.Run("unknown seat", func(t *testing.T) {
		_, err := f.svc.UpdateSeat(ctx, id, uuid.NewString(), &models.UpdateSeatRequest{Name: "X", Paid: true})
		assert.ErrorIs(t, err, apperrors.ErrSeatNotFound)
	})

	t.Run("paid flag changes under the stored name", func(t *testing.T) {
		resp, err := f.svc.UpdateSeat(ctx, id, seatID, &models.UpdateSeatRequest{Name: "omar"})
		require.NoError(t, err)
		assert.True(t, resp.Changed)
		assert.Equal(t, models.Seat{ID: seatID, Name: "Omar", Paid: false}, resp.Seat)
		assert.Equal(t, "Omar", f.store.seats[id][0].Name)
	})
}

func TestUpdateSeatPersistsPaddedVacancy(t *testing.T) {
	f := newFixture()
	id := f.createPot(t, 3)
	f.store.seats[id] = f.store.seats[id][:1]

	padded := uuid.NewString()
	resp, err := f.svc.UpdateSeat(context.Background(), id, padded, &models.UpdateSeatRequest{Name: "Laila", Paid: true})
	require.NoError(t, err)
	assert.True(t, resp.Changed)
	assert.Equal(t, 1, resp.Summary.PaidCount)

	rows := f.store.seats[id]
	require.Len(t, rows, 2)
	assert.Equal(t, padded, rows[1].ID)

	events := f.pub.seatEvents()
	require.Len(t, events, 1)
	assert.True(t, events[0].Inserted)

	// the stored vacancy fills first, then the last padded seat
	_, err = f.svc.ConfirmPayment(context.Background(), id, "Sara")
	require.NoError(t, err)
	confirmed, err := f.svc.ConfirmPayment(context.Background(), id, "Omar")
	require.NoError(t, err)
	require.Len(t, f.store.seats[id], 3)

	events = f.pub.seatEvents()
	require.Len(t, events, 3)
	assert.False(t, events[1].Inserted)
	assert.Equal(t, confirmed.Seat.ID, events[2].Seat.ID)
	assert.True(t, events[2].Inserted)
}

func TestUpdateBank(t *testing.T) {
	f := newFixture()
	id := f.createPot(t, 3)
	req := &models.UpdateBankRequest{BankName: " Rajhi ", IBAN: "SA03 8000"}

	_, err := f.svc.UpdateBank(context.Background(), id, req)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	view, err := f.svc.UpdateBank(organizer(id), id, req)
	require.NoError(t, err)
	assert.Equal(t, "Rajhi", view.Pot.BankName)
	assert.Equal(t, "SA03 8000", view.Pot.IBAN)
	assert.Equal(t, "Rajhi", *f.store.pots[id].BankName)
}

func TestShareMessage(t *testing.T) {
	f := newFixture()
	id := f.createPot(t, 4)

	msg, err := f.svc.ShareMessage(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "https://gatta.test/s/"+id, msg.Link)
	assert.Contains(t, msg.Text, "Dinner")
	assert.Contains(t, msg.Text, "27 each")
	assert.Contains(t, msg.Text, msg.Link)
}
