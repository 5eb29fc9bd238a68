// Package postgres stores events and bookings in PostgreSQL through lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eventbooking/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Constraint names referenced by ConflictError.Index.
const (
	SlugConstraint       = "events_slug_key"
	EventEmailConstraint = "bookings_event_id_email_key"
	BookingEventFK       = "bookings_event_id_fkey"
)

// Schema creates the events and bookings tables. The foreign key on bookings.event_id
// closes the check-then-write window left by the booking service's event lookup.
const Schema = `
CREATE TABLE IF NOT EXISTS events (
	id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	title       TEXT NOT NULL,
	slug        TEXT NOT NULL,
	description TEXT NOT NULL,
	overview    TEXT NOT NULL,
	image       TEXT NOT NULL,
	venue       TEXT NOT NULL,
	location    TEXT NOT NULL,
	event_date  TEXT NOT NULL,
	event_time  TEXT NOT NULL,
	mode        TEXT NOT NULL CHECK (mode IN ('online', 'offline', 'hybrid')),
	audience    TEXT NOT NULL,
	agenda      TEXT[] NOT NULL,
	organizer   TEXT NOT NULL,
	tags        TEXT[] NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL,
	CONSTRAINT events_slug_key UNIQUE (slug)
);

CREATE TABLE IF NOT EXISTS bookings (
	id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	event_id   UUID NOT NULL,
	email      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	CONSTRAINT bookings_event_id_fkey FOREIGN KEY (event_id) REFERENCES events (id),
	CONSTRAINT bookings_event_id_email_key UNIQUE (event_id, email)
);

CREATE INDEX IF NOT EXISTS bookings_event_id_idx ON bookings (event_id);
`

// Migrate applies Schema. It is safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// translateError maps unique and foreign-key violations onto domain errors.
func translateError(err error, eventID string) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23505":
		return &domain.ConflictError{Index: pqErr.Constraint, Err: err}
	case "23503":
		return &domain.ReferenceError{EventID: eventID}
	}
	return err
}

// validUUID reports whether id can be a primary key; anything else never matches a row.
func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// args accumulates positional parameters while a statement is built.
type args []any

func (a *args) add(v any) string {
	*a = append(*a, v)
	return fmt.Sprintf("$%d", len(*a))
}

func and(conds []string) string {
	if len(conds) == 0 {
		return "TRUE"
	}
	return strings.Join(conds, " AND ")
}
