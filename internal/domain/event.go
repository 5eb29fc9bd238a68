package domain

import (
	"context"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Mode is how an event is attended.
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
	ModeHybrid  Mode = "hybrid"
)

// Event document field names.
const (
	FieldTitle = "title"
	FieldSlug  = "slug"
	FieldDate  = "date"
	FieldTime  = "time"
)

// Event represents a bookable event. Date is YYYY-MM-DD and Time is HH:MM once normalized.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Overview    string    `json:"overview"`
	Image       string    `json:"image"`
	Venue       string    `json:"venue"`
	Location    string    `json:"location"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Mode        Mode      `json:"mode"`
	Audience    string    `json:"audience"`
	Agenda      []string  `json:"agenda"`
	Organizer   string    `json:"organizer"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	persisted *eventState
}

// eventState is the subset of an Event that drives the save hook.
type eventState struct {
	title, date, time string
}

// MarkPersisted records the current field values as the stored state.
// Repositories call it after every load and write.
func (e *Event) MarkPersisted() {
	e.persisted = &eventState{title: e.Title, date: e.Date, time: e.Time}
}

// IsNew reports whether the event has never been persisted.
func (e *Event) IsNew() bool {
	return e.persisted == nil
}

// IsModified reports whether field differs from the persisted state.
// Every field of a new event counts as modified.
func (e *Event) IsModified(field string) bool {
	if e.persisted == nil {
		return true
	}
	switch field {
	case FieldTitle:
		return e.Title != e.persisted.title
	case FieldDate:
		return e.Date != e.persisted.date
	case FieldTime:
		return e.Time != e.persisted.time
	}
	return false
}

// ApplySetters trims every string field and lowercases the slug.
func (e *Event) ApplySetters() {
	e.Title = strings.TrimSpace(e.Title)
	e.Slug = strings.ToLower(strings.TrimSpace(e.Slug))
	e.Description = strings.TrimSpace(e.Description)
	e.Overview = strings.TrimSpace(e.Overview)
	e.Image = strings.TrimSpace(e.Image)
	e.Venue = strings.TrimSpace(e.Venue)
	e.Location = strings.TrimSpace(e.Location)
	e.Date = strings.TrimSpace(e.Date)
	e.Time = strings.TrimSpace(e.Time)
	e.Mode = Mode(strings.TrimSpace(string(e.Mode)))
	e.Audience = strings.TrimSpace(e.Audience)
	e.Organizer = strings.TrimSpace(e.Organizer)
}

// Validate checks required fields, the mode enum and the agenda/tags lists.
func (e *Event) Validate() error {
	return fromValidation(validation.ValidateStruct(e,
		validation.Field(&e.Title, validation.Required.Error("title is required"), validation.RuneLength(1, 100)),
		validation.Field(&e.Description, validation.Required.Error("description is required"), validation.RuneLength(1, 1000)),
		validation.Field(&e.Overview, validation.Required.Error("overview is required"), validation.RuneLength(1, 500)),
		validation.Field(&e.Image, validation.Required.Error("image is required")),
		validation.Field(&e.Venue, validation.Required.Error("venue is required")),
		validation.Field(&e.Location, validation.Required.Error("location is required")),
		validation.Field(&e.Date, validation.Required.Error("date is required")),
		validation.Field(&e.Time, validation.Required.Error("time is required")),
		validation.Field(&e.Mode,
			validation.Required.Error("mode is required"),
			validation.In(ModeOnline, ModeOffline, ModeHybrid).Error("mode must be one of online, offline, hybrid"),
		),
		validation.Field(&e.Audience, validation.Required.Error("audience is required")),
		validation.Field(&e.Agenda,
			validation.Required.Error("at least one agenda item is required"),
			validation.Each(validation.By(notBlank)),
		),
		validation.Field(&e.Organizer, validation.Required.Error("organizer is required")),
		validation.Field(&e.Tags,
			validation.Required.Error("at least one tag is required"),
			validation.Each(validation.By(notBlank)),
		),
	))
}

func notBlank(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return validation.NewError("validation_blank", "must not be blank")
	}
	return nil
}

// Clone returns a deep copy of the event, including its persisted state.
func (e *Event) Clone() *Event {
	c := *e
	c.Agenda = slices.Clone(e.Agenda)
	c.Tags = slices.Clone(e.Tags)
	if e.persisted != nil {
		p := *e.persisted
		c.persisted = &p
	}
	return &c
}

// EventFilter selects events. Empty fields are ignored.
type EventFilter struct {
	ID   string
	Slug string
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	FindOne(ctx context.Context, filter EventFilter) (*Event, error)
	// SlugExists reports whether any event other than excludeID currently holds slug.
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	// Update saves the whole document by ID.
	Update(ctx context.Context, event *Event) error
}

// EventService runs the event save hook in front of an EventRepository.
type EventService interface {
	Create(ctx context.Context, event *Event) error
	Save(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
}
