package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"eventbooking/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// mockBookingRepository enforces the (eventId, email) unique index.
type mockBookingRepository struct {
	bookings map[string]*domain.Booking
	nextID   int
	lastSet  map[string]any
	err      error
}

func newMockBookingRepository() *mockBookingRepository {
	return &mockBookingRepository{bookings: map[string]*domain.Booking{}}
}

func (m *mockBookingRepository) conflict(id, eventID, email string) error {
	for _, b := range m.bookings {
		if b.ID != id && b.EventID == eventID && b.Email == email {
			return &domain.ConflictError{Index: "eventId_1_email_1", Err: errors.New("E11000 duplicate key")}
		}
	}
	return nil
}

func clone(b *domain.Booking) *domain.Booking {
	c := *b
	return &c
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	if m.err != nil {
		return m.err
	}
	if err := m.conflict("", booking.EventID, booking.Email); err != nil {
		return err
	}
	m.nextID++
	booking.ID = fmt.Sprintf("bk-%d", m.nextID)
	booking.MarkPersisted()
	m.bookings[booking.ID] = clone(booking)
	return nil
}

func (m *mockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(b), nil
}

func (m *mockBookingRepository) FindOne(ctx context.Context, filter domain.BookingFilter) (*domain.Booking, error) {
	for _, b := range m.bookings {
		if filter.ID != "" && b.ID != filter.ID {
			continue
		}
		if filter.EventID != "" && b.EventID != filter.EventID {
			continue
		}
		if filter.Email != "" && b.Email != filter.Email {
			continue
		}
		return clone(b), nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	if _, ok := m.bookings[booking.ID]; !ok {
		return domain.ErrNotFound
	}
	if err := m.conflict(booking.ID, booking.EventID, booking.Email); err != nil {
		return err
	}
	booking.MarkPersisted()
	m.bookings[booking.ID] = clone(booking)
	return nil
}

func (m *mockBookingRepository) UpdateByFilter(ctx context.Context, filter domain.BookingFilter, fields map[string]any) (*domain.Booking, error) {
	m.lastSet = fields
	found, err := m.FindOne(ctx, filter)
	if err != nil {
		return nil, err
	}
	if v, ok := fields[domain.FieldEventID].(string); ok {
		found.EventID = v
	}
	if v, ok := fields[domain.FieldEmail].(string); ok {
		found.Email = v
	}
	if err := m.conflict(found.ID, found.EventID, found.Email); err != nil {
		return nil, err
	}
	found.MarkPersisted()
	m.bookings[found.ID] = clone(found)
	return clone(found), nil
}

type bookingFixture struct {
	events   *mockEventRepository
	bookings *mockBookingRepository
	svc      domain.BookingService
	eventID  string
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	events := newMockEventRepository()
	ev := newTestEvent("Booking Target")
	ev.Slug = "booking-target"
	require.NoError(t, events.Create(context.Background(), ev))

	bookings := newMockBookingRepository()
	svc := NewBookingService(bookings, events, zerolog.Nop(), time.Second)
	return &bookingFixture{events: events, bookings: bookings, svc: svc, eventID: ev.ID}
}

func TestBookingService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes email", func(t *testing.T) {
		f := newBookingFixture(t)
		b := domain.NewBooking(f.eventID, "  Alice@Example.COM ")
		require.NoError(t, f.svc.Create(ctx, b))
		require.NotEmpty(t, b.ID)

		stored, err := f.bookings.GetByID(ctx, b.ID)
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", stored.Email)
		require.False(t, stored.CreatedAt.IsZero())
	})

	t.Run("missing event", func(t *testing.T) {
		f := newBookingFixture(t)
		err := f.svc.Create(ctx, domain.NewBooking("ev-missing", "a@example.com"))
		var re *domain.ReferenceError
		require.ErrorAs(t, err, &re)
		require.Equal(t, "ev-missing", re.EventID)
		require.Empty(t, f.bookings.bookings)
	})

	t.Run("invalid email", func(t *testing.T) {
		f := newBookingFixture(t)
		err := f.svc.Create(ctx, domain.NewBooking(f.eventID, "not-an-email"))
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		require.Contains(t, ve.Fields, domain.FieldEmail)
	})

	t.Run("missing event id", func(t *testing.T) {
		f := newBookingFixture(t)
		err := f.svc.Create(ctx, domain.NewBooking(" ", "a@example.com"))
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		require.Contains(t, ve.Fields, domain.FieldEventID)
	})

	t.Run("duplicate email per event is a conflict", func(t *testing.T) {
		f := newBookingFixture(t)
		require.NoError(t, f.svc.Create(ctx, domain.NewBooking(f.eventID, "bob@example.com")))
		err := f.svc.Create(ctx, domain.NewBooking(f.eventID, "BOB@example.com"))
		require.True(t, domain.IsConflict(err))
		require.Len(t, f.bookings.bookings, 1)
	})

	t.Run("storage error", func(t *testing.T) {
		f := newBookingFixture(t)
		f.bookings.err = errors.New("write failed")
		err := f.svc.Create(ctx, domain.NewBooking(f.eventID, "c@example.com"))
		require.ErrorContains(t, err, "write failed")
	})
}

func TestBookingService_Save(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)

	b := domain.NewBooking(f.eventID, "dana@example.com")
	require.NoError(t, f.svc.Create(ctx, b))

	lookups := f.events.getByIDCalls
	b.Email = "Dana.New@Example.com"
	require.NoError(t, f.svc.Save(ctx, b))
	require.Equal(t, "dana.new@example.com", b.Email)
	require.Equal(t, lookups, f.events.getByIDCalls, "unchanged eventId must not be re-checked")

	b.EventID = "ev-gone"
	err := f.svc.Save(ctx, b)
	require.True(t, domain.IsReference(err))

	stored, err := f.bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, f.eventID, stored.EventID)
}

func TestBookingService_UpdateByFilter(t *testing.T) {
	ctx := context.Background()

	t.Run("email setter runs on filter update", func(t *testing.T) {
		f := newBookingFixture(t)
		b := domain.NewBooking(f.eventID, "old@example.com")
		require.NoError(t, f.svc.Create(ctx, b))

		got, err := f.svc.UpdateByFilter(ctx, domain.BookingFilter{ID: b.ID},
			domain.Set(map[string]any{domain.FieldEmail: "TEST@EXAMPLE.COM"}))
		require.NoError(t, err)
		require.Equal(t, "test@example.com", got.Email)

		stored, err := f.bookings.GetByID(ctx, b.ID)
		require.NoError(t, err)
		require.Equal(t, "test@example.com", stored.Email)
	})

	t.Run("top level email", func(t *testing.T) {
		f := newBookingFixture(t)
		b := domain.NewBooking(f.eventID, "old@example.com")
		require.NoError(t, f.svc.Create(ctx, b))

		got, err := f.svc.UpdateByFilter(ctx, domain.BookingFilter{Email: "OLD@example.com"},
			domain.Update{domain.FieldEmail: " New@Example.com "})
		require.NoError(t, err)
		require.Equal(t, "new@example.com", got.Email)
	})

	for _, tt := range []struct {
		name   string
		update domain.Update
	}{
		{"missing event via set", domain.Set(map[string]any{domain.FieldEventID: "ev-nope"})},
		{"missing event top level", domain.Update{domain.FieldEventID: "ev-nope"}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture(t)
			b := domain.NewBooking(f.eventID, "e@example.com")
			require.NoError(t, f.svc.Create(ctx, b))

			_, err := f.svc.UpdateByFilter(ctx, domain.BookingFilter{ID: b.ID}, tt.update)
			var re *domain.ReferenceError
			require.ErrorAs(t, err, &re)
			require.Equal(t, "ev-nope", re.EventID)
			require.Nil(t, f.bookings.lastSet)

			createErr := f.svc.Create(ctx, domain.NewBooking("ev-nope", "x@example.com"))
			require.IsType(t, err, createErr)
		})
	}

	t.Run("moves booking to existing event", func(t *testing.T) {
		f := newBookingFixture(t)
		other := newTestEvent("Second Target")
		other.Slug = "second-target"
		require.NoError(t, f.events.Create(ctx, other))
		b := domain.NewBooking(f.eventID, "move@example.com")
		require.NoError(t, f.svc.Create(ctx, b))

		got, err := f.svc.UpdateByFilter(ctx, domain.BookingFilter{ID: b.ID},
			domain.Set(map[string]any{domain.FieldEventID: other.ID}))
		require.NoError(t, err)
		require.Equal(t, other.ID, got.EventID)
	})

	t.Run("invalid email", func(t *testing.T) {
		f := newBookingFixture(t)
		_, err := f.svc.UpdateByFilter(ctx, domain.BookingFilter{ID: "bk-1"},
			domain.Set(map[string]any{domain.FieldEmail: "nope"}))
		require.True(t, domain.IsValidation(err))
	})

	t.Run("unknown field", func(t *testing.T) {
		f := newBookingFixture(t)
		_, err := f.svc.UpdateByFilter(ctx, domain.BookingFilter{ID: "bk-1"},
			domain.Set(map[string]any{"createdAt": "yesterday"}))
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		require.Contains(t, ve.Fields, "createdAt")
	})

	t.Run("empty filter", func(t *testing.T) {
		f := newBookingFixture(t)
		_, err := f.svc.UpdateByFilter(ctx, domain.BookingFilter{},
			domain.Set(map[string]any{domain.FieldEmail: "a@example.com"}))
		require.True(t, domain.IsValidation(err))
	})

	t.Run("no match", func(t *testing.T) {
		f := newBookingFixture(t)
		_, err := f.svc.UpdateByFilter(ctx, domain.BookingFilter{ID: "bk-404"},
			domain.Set(map[string]any{domain.FieldEmail: "a@example.com"}))
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("conflict surfaces", func(t *testing.T) {
		f := newBookingFixture(t)
		require.NoError(t, f.svc.Create(ctx, domain.NewBooking(f.eventID, "taken@example.com")))
		b := domain.NewBooking(f.eventID, "free@example.com")
		require.NoError(t, f.svc.Create(ctx, b))

		_, err := f.svc.UpdateByFilter(ctx, domain.BookingFilter{ID: b.ID},
			domain.Set(map[string]any{domain.FieldEmail: "Taken@Example.com"}))
		require.True(t, domain.IsConflict(err))
	})
}

func TestBookingService_FindByEventAndEmail(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)
	b := domain.NewBooking(f.eventID, "find@example.com")
	require.NoError(t, f.svc.Create(ctx, b))

	got, err := f.svc.FindByEventAndEmail(ctx, f.eventID, " FIND@example.com")
	require.NoError(t, err)
	require.Equal(t, b.ID, got.ID)

	_, err = f.svc.FindByEventAndEmail(ctx, f.eventID, "other@example.com")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
