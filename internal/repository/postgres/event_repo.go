package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventbooking/internal/domain"

	"github.com/lib/pq"
)

const eventColumns = `id, title, slug, description, overview, image, venue, location, event_date, event_time, mode, audience, agenda, organizer, tags, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, slug, description, overview, image, venue, location, event_date, event_time, mode, audience, agenda, organizer, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.Title, e.Slug, e.Description, e.Overview, e.Image, e.Venue, e.Location, e.Date, e.Time,
		string(e.Mode), e.Audience, pq.Array(e.Agenda), e.Organizer, pq.Array(e.Tags), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		return translateError(err, "")
	}
	e.MarkPersisted()
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return r.FindOne(ctx, domain.EventFilter{ID: id})
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	return r.FindOne(ctx, domain.EventFilter{Slug: slug})
}

func (r *eventRepository) FindOne(ctx context.Context, filter domain.EventFilter) (*domain.Event, error) {
	var a args
	var conds []string
	if filter.ID != "" {
		if !validUUID(filter.ID) {
			return nil, domain.ErrNotFound
		}
		conds = append(conds, "id = "+a.add(filter.ID))
	}
	if filter.Slug != "" {
		conds = append(conds, "slug = "+a.add(filter.Slug))
	}
	query := `SELECT ` + eventColumns + ` FROM events WHERE ` + and(conds) + ` LIMIT 1`
	return scanEvent(r.DB.QueryRowContext(ctx, query, a...))
}

func (r *eventRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	var err error
	if validUUID(excludeID) {
		err = r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE slug = $1 AND id <> $2)`, slug, excludeID).Scan(&exists)
	} else {
		err = r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE slug = $1)`, slug).Scan(&exists)
	}
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	if !validUUID(e.ID) {
		return domain.ErrNotFound
	}
	query := `
		UPDATE events SET title = $1, slug = $2, description = $3, overview = $4, image = $5, venue = $6,
			location = $7, event_date = $8, event_time = $9, mode = $10, audience = $11, agenda = $12,
			organizer = $13, tags = $14, updated_at = $15
		WHERE id = $16
	`
	result, err := r.DB.ExecContext(ctx, query,
		e.Title, e.Slug, e.Description, e.Overview, e.Image, e.Venue, e.Location, e.Date, e.Time,
		string(e.Mode), e.Audience, pq.Array(e.Agenda), e.Organizer, pq.Array(e.Tags), e.UpdatedAt, e.ID,
	)
	if err != nil {
		return translateError(err, "")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	e.MarkPersisted()
	return nil
}

func scanEvent(row *sql.Row) (*domain.Event, error) {
	e := &domain.Event{}
	var mode string
	err := row.Scan(
		&e.ID, &e.Title, &e.Slug, &e.Description, &e.Overview, &e.Image, &e.Venue, &e.Location,
		&e.Date, &e.Time, &mode, &e.Audience, pq.Array(&e.Agenda), &e.Organizer, pq.Array(&e.Tags),
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	e.Mode = domain.Mode(mode)
	e.MarkPersisted()
	return e, nil
}
