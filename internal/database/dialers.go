package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoDialer connects to uri and pings the primary.
func MongoDialer(uri string, timeout time.Duration) DialFunc[*mongo.Client] {
	return func(ctx context.Context) (*mongo.Client, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("ping mongo: %w", err)
		}
		return client, nil
	}
}

// CloseMongo disconnects client.
func CloseMongo(ctx context.Context, client *mongo.Client) error {
	return client.Disconnect(ctx)
}

// PostgresDialer opens dbURL with lib/pq and pings it.
func PostgresDialer(dbURL string, timeout time.Duration) DialFunc[*sql.DB] {
	return func(ctx context.Context) (*sql.DB, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		db, err := sql.Open("postgres", dbURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return db, nil
	}
}

// ClosePostgres closes db.
func ClosePostgres(_ context.Context, db *sql.DB) error {
	return db.Close()
}
