package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventbooking/internal/domain"

	"github.com/rs/zerolog"
)

type bookingService struct {
	bookingRepo    domain.BookingRepository
	eventRepo      domain.EventRepository
	logger         zerolog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

// NewBookingService creates a BookingService that refuses writes referencing a missing event.
//
// The event lookup and the booking write are not atomic: an event deleted between the two
// still leaves an orphan on backends without a foreign key. The unique (eventId, email) index
// remains the final arbiter for duplicates and surfaces as *domain.ConflictError.
func NewBookingService(bookingRepo domain.BookingRepository, eventRepo domain.EventRepository, logger zerolog.Logger, timeout time.Duration) domain.BookingService {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &bookingService{
		bookingRepo:    bookingRepo,
		eventRepo:      eventRepo,
		logger:         logger.With().Str("component", "booking_service").Logger(),
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *bookingService) Create(ctx context.Context, booking *domain.Booking) error {
	if !booking.IsNew() {
		return fmt.Errorf("create booking: booking %s is already persisted", booking.ID)
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	booking.ApplySetters()
	if err := booking.Validate(); err != nil {
		return err
	}
	if err := s.ensureEvent(ctx, booking.EventID); err != nil {
		return err
	}

	now := s.now()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	s.logger.Info().Str("booking_id", booking.ID).Str("event_id", booking.EventID).Msg("booking created")
	return nil
}

func (s *bookingService) Save(ctx context.Context, booking *domain.Booking) error {
	if booking.IsNew() {
		return s.Create(ctx, booking)
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	booking.ApplySetters()
	if err := booking.Validate(); err != nil {
		return err
	}
	if booking.IsModified(domain.FieldEventID) {
		if err := s.ensureEvent(ctx, booking.EventID); err != nil {
			return err
		}
	}

	booking.UpdatedAt = s.now()
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update booking: %w", err)
	}
	return nil
}

// UpdateByFilter always runs the booking setters and validators on the changes, so a
// partial update stores exactly what a whole-document save would.
func (s *bookingService) UpdateByFilter(ctx context.Context, filter domain.BookingFilter, update domain.Update) (*domain.Booking, error) {
	if filter.IsEmpty() {
		return nil, domain.NewValidationError("filter", "at least one condition is required")
	}
	fields, err := domain.PrepareBookingUpdate(update, domain.DefaultUpdateOptions)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, domain.NewValidationError("update", "no fields to update")
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if eventID, ok := fields[domain.FieldEventID].(string); ok {
		if err := s.ensureEvent(ctx, eventID); err != nil {
			return nil, err
		}
	}

	booking, err := s.bookingRepo.UpdateByFilter(ctx, filter.Normalized(), fields)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update booking by filter: %w", err)
	}
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return booking, nil
}

func (s *bookingService) FindByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	filter := domain.BookingFilter{EventID: eventID, Email: email}.Normalized()
	booking, err := s.bookingRepo.FindOne(ctx, filter)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return booking, nil
}

// ensureEvent fails with *domain.ReferenceError when eventID names no event.
func (s *bookingService) ensureEvent(ctx context.Context, eventID string) error {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn().Str("event_id", eventID).Msg("booking references missing event")
			return &domain.ReferenceError{EventID: eventID}
		}
		return fmt.Errorf("get event: %w", err)
	}
	return nil
}
