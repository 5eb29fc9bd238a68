package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"eventbooking/internal/domain"
)

const bookingColumns = `id, event_id, email, created_at, updated_at`

// bookingFieldColumns maps booking document fields to their columns.
var bookingFieldColumns = map[string]string{
	domain.FieldEventID: "event_id",
	domain.FieldEmail:   "email",
}

type bookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(db *sql.DB) domain.BookingRepository {
	return &bookingRepository{
		DB: db,
	}
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	if !validUUID(b.EventID) {
		return &domain.ReferenceError{EventID: b.EventID}
	}
	query := `
		INSERT INTO bookings (event_id, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, b.EventID, b.Email, b.CreatedAt, b.UpdatedAt).Scan(&b.ID)
	if err != nil {
		return translateError(err, b.EventID)
	}
	b.MarkPersisted()
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	return r.FindOne(ctx, domain.BookingFilter{ID: id})
}

func (r *bookingRepository) FindOne(ctx context.Context, filter domain.BookingFilter) (*domain.Booking, error) {
	var a args
	where, ok := bookingWhere(filter, &a)
	if !ok {
		return nil, domain.ErrNotFound
	}
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + where + ` LIMIT 1`
	return scanBooking(r.DB.QueryRowContext(ctx, query, a...))
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	if !validUUID(b.ID) {
		return domain.ErrNotFound
	}
	if !validUUID(b.EventID) {
		return &domain.ReferenceError{EventID: b.EventID}
	}
	query := `UPDATE bookings SET event_id = $1, email = $2, updated_at = $3 WHERE id = $4`
	result, err := r.DB.ExecContext(ctx, query, b.EventID, b.Email, b.UpdatedAt, b.ID)
	if err != nil {
		return translateError(err, b.EventID)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	b.MarkPersisted()
	return nil
}

func (r *bookingRepository) UpdateByFilter(ctx context.Context, filter domain.BookingFilter, fields map[string]any) (*domain.Booking, error) {
	names := make([]string, 0, len(fields))
	for f := range fields {
		if _, ok := bookingFieldColumns[f]; !ok {
			return nil, fmt.Errorf("unsupported booking field %q", f)
		}
		names = append(names, f)
	}
	sort.Strings(names)

	var a args
	setClauses := []string{"updated_at = NOW()"}
	eventID := ""
	for _, f := range names {
		s, _ := fields[f].(string)
		if f == domain.FieldEventID {
			if !validUUID(s) {
				return nil, &domain.ReferenceError{EventID: s}
			}
			eventID = s
		}
		setClauses = append(setClauses, bookingFieldColumns[f]+" = "+a.add(s))
	}
	where, ok := bookingWhere(filter, &a)
	if !ok {
		return nil, domain.ErrNotFound
	}
	query := fmt.Sprintf(`
		UPDATE bookings SET %s
		WHERE id = (SELECT id FROM bookings WHERE %s LIMIT 1)
		RETURNING %s
	`, strings.Join(setClauses, ", "), where, bookingColumns)
	b, err := scanBooking(r.DB.QueryRowContext(ctx, query, a...))
	if err != nil {
		return nil, translateError(err, eventID)
	}
	return b, nil
}

// bookingWhere renders filter as a WHERE body. ok is false when the filter can match nothing.
func bookingWhere(filter domain.BookingFilter, a *args) (string, bool) {
	var conds []string
	if filter.ID != "" {
		if !validUUID(filter.ID) {
			return "", false
		}
		conds = append(conds, "id = "+a.add(filter.ID))
	}
	if filter.EventID != "" {
		if !validUUID(filter.EventID) {
			return "", false
		}
		conds = append(conds, "event_id = "+a.add(filter.EventID))
	}
	if filter.Email != "" {
		conds = append(conds, "email = "+a.add(filter.Email))
	}
	return and(conds), true
}

func scanBooking(row *sql.Row) (*domain.Booking, error) {
	b := &domain.Booking{}
	err := row.Scan(&b.ID, &b.EventID, &b.Email, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	b.MarkPersisted()
	return b, nil
}
