package mongodb

import (
	"context"
	"fmt"
	"time"

	"eventbooking/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type bookingDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	EventID   primitive.ObjectID `bson:"eventId"`
	Email     string             `bson:"email"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d bookingDocument) toDomain() *domain.Booking {
	b := &domain.Booking{
		ID:        d.ID.Hex(),
		EventID:   d.EventID.Hex(),
		Email:     d.Email,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	b.MarkPersisted()
	return b
}

type bookingRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewBookingRepository returns a BookingRepository over the bookings collection of db.
func NewBookingRepository(db *mongo.Database) domain.BookingRepository {
	return &bookingRepository{coll: db.Collection(BookingsCollection), now: time.Now}
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	eventOID, ok := objectID(b.EventID)
	if !ok {
		return &domain.ReferenceError{EventID: b.EventID}
	}
	res, err := r.coll.InsertOne(ctx, bookingDocument{
		EventID:   eventOID,
		Email:     b.Email,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	})
	if err != nil {
		return translateWriteError(err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	b.ID = oid.Hex()
	b.MarkPersisted()
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	return r.FindOne(ctx, domain.BookingFilter{ID: id})
}

func (r *bookingRepository) FindOne(ctx context.Context, filter domain.BookingFilter) (*domain.Booking, error) {
	q, ok := bookingQuery(filter)
	if !ok {
		return nil, domain.ErrNotFound
	}
	var doc bookingDocument
	if err := r.coll.FindOne(ctx, q).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.toDomain(), nil
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	oid, ok := objectID(b.ID)
	if !ok {
		return domain.ErrNotFound
	}
	eventOID, ok := objectID(b.EventID)
	if !ok {
		return &domain.ReferenceError{EventID: b.EventID}
	}
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, bookingDocument{
		ID:        oid,
		EventID:   eventOID,
		Email:     b.Email,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	})
	if err != nil {
		return translateWriteError(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	b.MarkPersisted()
	return nil
}

func (r *bookingRepository) UpdateByFilter(ctx context.Context, filter domain.BookingFilter, fields map[string]any) (*domain.Booking, error) {
	q, ok := bookingQuery(filter)
	if !ok {
		return nil, domain.ErrNotFound
	}
	set := bson.M{"updatedAt": r.now().UTC()}
	for field, v := range fields {
		s, _ := v.(string)
		switch field {
		case domain.FieldEventID:
			oid, ok := objectID(s)
			if !ok {
				return nil, &domain.ReferenceError{EventID: s}
			}
			set[field] = oid
		case domain.FieldEmail:
			set[field] = s
		default:
			return nil, fmt.Errorf("unsupported booking field %q", field)
		}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc bookingDocument
	err := r.coll.FindOneAndUpdate(ctx, q, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		return nil, notFound(translateWriteError(err))
	}
	return doc.toDomain(), nil
}

func bookingQuery(filter domain.BookingFilter) (bson.M, bool) {
	q := bson.M{}
	if filter.ID != "" {
		oid, ok := objectID(filter.ID)
		if !ok {
			return nil, false
		}
		q["_id"] = oid
	}
	if filter.EventID != "" {
		oid, ok := objectID(filter.EventID)
		if !ok {
			return nil, false
		}
		q["eventId"] = oid
	}
	if filter.Email != "" {
		q["email"] = filter.Email
	}
	return q, true
}
