package domain

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Booking document field names.
const (
	FieldEventID = "eventId"
	FieldEmail   = "email"
)

// Booking is one email's reservation for one event.
type Booking struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	persisted *bookingState
}

type bookingState struct {
	eventID, email string
}

// NewBooking returns a new Booking. ID is set by the repository on create.
func NewBooking(eventID, email string) *Booking {
	return &Booking{EventID: eventID, Email: email}
}

// MarkPersisted records the current field values as the stored state.
func (b *Booking) MarkPersisted() {
	b.persisted = &bookingState{eventID: b.EventID, email: b.Email}
}

// IsNew reports whether the booking has never been persisted.
func (b *Booking) IsNew() bool {
	return b.persisted == nil
}

// IsModified reports whether field differs from the persisted state.
func (b *Booking) IsModified(field string) bool {
	if b.persisted == nil {
		return true
	}
	switch field {
	case FieldEventID:
		return b.EventID != b.persisted.eventID
	case FieldEmail:
		return b.Email != b.persisted.email
	}
	return false
}

// ApplySetters trims the event id and trims and lowercases the email.
func (b *Booking) ApplySetters() {
	b.EventID = strings.TrimSpace(b.EventID)
	b.Email = normalizeEmail(b.Email)
}

// Validate checks the event reference and the email syntax.
func (b *Booking) Validate() error {
	return fromValidation(validation.ValidateStruct(b,
		validation.Field(&b.EventID, validation.Required.Error("event id is required")),
		validation.Field(&b.Email, emailRules...),
	))
}

var emailRules = []validation.Rule{
	validation.Required.Error("email is required"),
	is.EmailFormat.Error("please provide a valid email address"),
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// BookingFilter selects bookings. Empty fields are ignored; set fields are ANDed.
type BookingFilter struct {
	ID      string
	EventID string
	Email   string
}

// IsEmpty reports whether the filter has no conditions.
func (f BookingFilter) IsEmpty() bool {
	return f.ID == "" && f.EventID == "" && f.Email == ""
}

// Normalized applies the booking setters to the filter values so they match stored documents.
func (f BookingFilter) Normalized() BookingFilter {
	return BookingFilter{
		ID:      strings.TrimSpace(f.ID),
		EventID: strings.TrimSpace(f.EventID),
		Email:   normalizeEmail(f.Email),
	}
}

// BookingRepository defines the interface for booking storage.
type BookingRepository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	FindOne(ctx context.Context, filter BookingFilter) (*Booking, error)
	// Update saves the whole document by ID.
	Update(ctx context.Context, booking *Booking) error
	// UpdateByFilter applies prepared field changes to the first booking matching filter and
	// returns it as stored after the update.
	UpdateByFilter(ctx context.Context, filter BookingFilter, fields map[string]any) (*Booking, error)
}

// BookingService guards booking writes against dangling event references.
type BookingService interface {
	Create(ctx context.Context, booking *Booking) error
	Save(ctx context.Context, booking *Booking) error
	UpdateByFilter(ctx context.Context, filter BookingFilter, update Update) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	FindByEventAndEmail(ctx context.Context, eventID, email string) (*Booking, error)
}
