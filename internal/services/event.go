package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventbooking/internal/domain"

	"github.com/rs/zerolog"
)

const (
	// DefaultMaxSlugAttempts bounds the slug suffix search.
	DefaultMaxSlugAttempts = 1000
	// DefaultTimeout applies when a service is built without a positive timeout.
	DefaultTimeout = 10 * time.Second
)

type eventService struct {
	eventRepo       domain.EventRepository
	logger          zerolog.Logger
	maxSlugAttempts int
	contextTimeout  time.Duration
	now             func() time.Time
}

// NewEventService creates an EventService that normalizes title, date and time before every write.
func NewEventService(eventRepo domain.EventRepository, logger zerolog.Logger, maxSlugAttempts int, timeout time.Duration) domain.EventService {
	if maxSlugAttempts <= 0 {
		maxSlugAttempts = DefaultMaxSlugAttempts
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &eventService{
		eventRepo:       eventRepo,
		logger:          logger.With().Str("component", "event_service").Logger(),
		maxSlugAttempts: maxSlugAttempts,
		contextTimeout:  timeout,
		now:             time.Now,
	}
}

func (s *eventService) Create(ctx context.Context, event *domain.Event) error {
	if !event.IsNew() {
		return fmt.Errorf("create event: event %s is already persisted", event.ID)
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.beforeSave(ctx, event); err != nil {
		return err
	}
	now := s.now()
	event.CreatedAt = now
	event.UpdatedAt = now
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	s.logger.Info().Str("event_id", event.ID).Str("slug", event.Slug).Msg("event created")
	return nil
}

func (s *eventService) Save(ctx context.Context, event *domain.Event) error {
	if event.IsNew() {
		return s.Create(ctx, event)
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.beforeSave(ctx, event); err != nil {
		return err
	}
	event.UpdatedAt = s.now()
	if err := s.eventRepo.Update(ctx, event); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update event: %w", err)
	}
	s.logger.Info().Str("event_id", event.ID).Str("slug", event.Slug).Msg("event saved")
	return nil
}

func (s *eventService) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetBySlug(ctx, Slugify(slug))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event by slug: %w", err)
	}
	return event, nil
}

// beforeSave is the pre-persistence hook. Only modified title, date and time are examined.
// The setters and checks run on a copy, which replaces event only when every check passes.
func (s *eventService) beforeSave(ctx context.Context, event *domain.Event) error {
	next := event.Clone()
	next.ApplySetters()
	if err := next.Validate(); err != nil {
		return err
	}

	ve := &domain.ValidationError{Fields: map[string]string{}}
	if next.IsModified(domain.FieldDate) {
		d, err := NormalizeDate(next.Date)
		if err != nil {
			ve.Fields[domain.FieldDate] = err.Error()
		}
		next.Date = d
	}
	if next.IsModified(domain.FieldTime) {
		t, err := NormalizeTime(next.Time)
		if err != nil {
			ve.Fields[domain.FieldTime] = err.Error()
		}
		next.Time = t
	}
	if len(ve.Fields) > 0 {
		return ve
	}

	if next.IsModified(domain.FieldTitle) {
		slug, err := s.uniqueSlug(ctx, next.Title, next.ID)
		if err != nil {
			return err
		}
		next.Slug = slug
	}

	*event = *next
	return nil
}

// uniqueSlug returns the first of base, base-1, base-2, ... not held by another event.
func (s *eventService) uniqueSlug(ctx context.Context, title, excludeID string) (string, error) {
	base := Slugify(title)
	if base == "" {
		return "", domain.NewValidationError(domain.FieldTitle, "title must contain at least one letter or digit")
	}
	for attempt := 0; attempt < s.maxSlugAttempts; attempt++ {
		candidate := slugCandidate(base, attempt)
		taken, err := s.eventRepo.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		s.logger.Debug().Str("slug", candidate).Msg("slug taken, trying next suffix")
	}
	return "", fmt.Errorf("%w: %q after %d attempts", domain.ErrSlugExhausted, base, s.maxSlugAttempts)
}
