// Package mongodb stores events and bookings as MongoDB documents.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"eventbooking/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	EventsCollection   = "events"
	BookingsCollection = "bookings"
)

// Index names, as MongoDB derives them from the keys.
const (
	SlugIndex         = "slug_1"
	EventEmailIndex   = "eventId_1_email_1"
	BookingEventIndex = "eventId_1"
)

// EnsureIndexes creates the unique slug index and the unique (eventId, email) index.
// It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(EventsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetName(SlugIndex).SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create %s index: %w", SlugIndex, err)
	}
	_, err = db.Collection(BookingsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "eventId", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetName(EventEmailIndex).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "eventId", Value: 1}},
			Options: options.Index().SetName(BookingEventIndex),
		},
	})
	if err != nil {
		return fmt.Errorf("create booking indexes: %w", err)
	}
	return nil
}

var dupIndexName = regexp.MustCompile(`index: (\S+) dup key`)

// translateWriteError turns duplicate-key failures into *domain.ConflictError.
func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		index := ""
		if m := dupIndexName.FindStringSubmatch(err.Error()); m != nil {
			index = m[1]
		}
		return &domain.ConflictError{Index: index, Err: err}
	}
	return err
}

// objectID parses a hex id. ok is false for ids MongoDB could never have issued.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrNotFound
	}
	return err
}
