package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventbooking/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type eventDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Slug        string             `bson:"slug"`
	Description string             `bson:"description"`
	Overview    string             `bson:"overview"`
	Image       string             `bson:"image"`
	Venue       string             `bson:"venue"`
	Location    string             `bson:"location"`
	Date        string             `bson:"date"`
	Time        string             `bson:"time"`
	Mode        string             `bson:"mode"`
	Audience    string             `bson:"audience"`
	Agenda      []string           `bson:"agenda"`
	Organizer   string             `bson:"organizer"`
	Tags        []string           `bson:"tags"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func newEventDocument(e *domain.Event) eventDocument {
	return eventDocument{
		Title:       e.Title,
		Slug:        e.Slug,
		Description: e.Description,
		Overview:    e.Overview,
		Image:       e.Image,
		Venue:       e.Venue,
		Location:    e.Location,
		Date:        e.Date,
		Time:        e.Time,
		Mode:        string(e.Mode),
		Audience:    e.Audience,
		Agenda:      e.Agenda,
		Organizer:   e.Organizer,
		Tags:        e.Tags,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (d eventDocument) toDomain() *domain.Event {
	e := &domain.Event{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Slug:        d.Slug,
		Description: d.Description,
		Overview:    d.Overview,
		Image:       d.Image,
		Venue:       d.Venue,
		Location:    d.Location,
		Date:        d.Date,
		Time:        d.Time,
		Mode:        domain.Mode(d.Mode),
		Audience:    d.Audience,
		Agenda:      d.Agenda,
		Organizer:   d.Organizer,
		Tags:        d.Tags,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	e.MarkPersisted()
	return e
}

type eventRepository struct {
	coll *mongo.Collection
}

// NewEventRepository returns an EventRepository over the events collection of db.
func NewEventRepository(db *mongo.Database) domain.EventRepository {
	return &eventRepository{coll: db.Collection(EventsCollection)}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	res, err := r.coll.InsertOne(ctx, newEventDocument(e))
	if err != nil {
		return translateWriteError(err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	e.ID = oid.Hex()
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
	q, ok := eventQuery(filter)
	if !ok {
		return nil, domain.ErrNotFound
	}
	var doc eventDocument
	if err := r.coll.FindOne(ctx, q).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.toDomain(), nil
}

func (r *eventRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	q := bson.M{"slug": slug}
	if oid, ok := objectID(excludeID); ok {
		q["_id"] = bson.M{"$ne": oid}
	}
	err := r.coll.FindOne(ctx, q, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	oid, ok := objectID(e.ID)
	if !ok {
		return domain.ErrNotFound
	}
	doc := newEventDocument(e)
	doc.ID = oid
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return translateWriteError(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	e.MarkPersisted()
	return nil
}

// eventQuery builds the query document for filter. ok is false when the filter can match nothing.
func eventQuery(filter domain.EventFilter) (bson.M, bool) {
	q := bson.M{}
	if filter.ID != "" {
		oid, ok := objectID(filter.ID)
		if !ok {
			return nil, false
		}
		q["_id"] = oid
	}
	if filter.Slug != "" {
		q["slug"] = filter.Slug
	}
	return q, true
}
