// Package app wires the configured storage backend into the event and booking services.
package app

import (
	"context"
	"database/sql"

	"eventbooking/config"
	"eventbooking/internal/database"
	"eventbooking/internal/domain"
	"eventbooking/internal/repository/mongodb"
	"eventbooking/internal/repository/postgres"
	"eventbooking/internal/services"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

// Model names in the registry.
const (
	EventModel   = "Event"
	BookingModel = "Booking"
	schemaModel  = "schema"
)

// App holds the services built for one backend.
type App struct {
	Events   domain.EventService
	Bookings domain.BookingService
	Registry *database.Registry

	close func(context.Context) error
}

// New connects to the backend named by cfg.DBDriver and builds the services on it.
// Each call owns a fresh Cache and Registry, so calling New twice dials twice. Processes
// that build more than one App should share them through NewMongo or NewPostgres.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	reg := database.NewRegistry()
	if cfg.DBDriver == config.DriverPostgres {
		cache := database.NewCache(database.PostgresDialer(cfg.DBUrl, cfg.Timeout), database.ClosePostgres)
		return NewPostgres(ctx, cfg, logger, cache, reg)
	}
	cache := database.NewCache(database.MongoDialer(cfg.MongoURI, cfg.Timeout), database.CloseMongo)
	return NewMongo(ctx, cfg, logger, cache, reg)
}

// ModelName is the registry key of model on driver.
func ModelName(driver, model string) string {
	return driver + "." + model
}

// NewMongo builds the services on the client held by cache. Indexes are created and
// repositories registered once per reg. A failed setup closes the connection.
func NewMongo(ctx context.Context, cfg *config.Config, logger zerolog.Logger, cache *database.Cache[*mongo.Client], reg *database.Registry) (_ *App, err error) {
	client, err := cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = cache.Close(context.Background())
		}
	}()
	db := client.Database(cfg.MongoDatabase)

	if _, err = database.Lookup(reg, ModelName(config.DriverMongo, schemaModel), func() (bool, error) {
		return true, mongodb.EnsureIndexes(ctx, db)
	}); err != nil {
		return nil, err
	}
	events, err := database.Lookup(reg, ModelName(config.DriverMongo, EventModel), func() (domain.EventRepository, error) {
		return mongodb.NewEventRepository(db), nil
	})
	if err != nil {
		return nil, err
	}
	bookings, err := database.Lookup(reg, ModelName(config.DriverMongo, BookingModel), func() (domain.BookingRepository, error) {
		return mongodb.NewBookingRepository(db), nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Str("driver", config.DriverMongo).Str("database", cfg.MongoDatabase).Msg("storage ready")
	return build(cfg, logger, reg, events, bookings, cache.Close), nil
}

// NewPostgres builds the services on the pool held by cache. The schema is migrated and
// repositories registered once per reg. A failed setup closes the connection.
func NewPostgres(ctx context.Context, cfg *config.Config, logger zerolog.Logger, cache *database.Cache[*sql.DB], reg *database.Registry) (_ *App, err error) {
	db, err := cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = cache.Close(context.Background())
		}
	}()

	if _, err = database.Lookup(reg, ModelName(config.DriverPostgres, schemaModel), func() (bool, error) {
		return true, postgres.Migrate(ctx, db)
	}); err != nil {
		return nil, err
	}
	events, err := database.Lookup(reg, ModelName(config.DriverPostgres, EventModel), func() (domain.EventRepository, error) {
		return postgres.NewEventRepository(db), nil
	})
	if err != nil {
		return nil, err
	}
	bookings, err := database.Lookup(reg, ModelName(config.DriverPostgres, BookingModel), func() (domain.BookingRepository, error) {
		return postgres.NewBookingRepository(db), nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Str("driver", config.DriverPostgres).Msg("storage ready")
	return build(cfg, logger, reg, events, bookings, cache.Close), nil
}

func build(cfg *config.Config, logger zerolog.Logger, reg *database.Registry, events domain.EventRepository, bookings domain.BookingRepository, closeFn func(context.Context) error) *App {
	return &App{
		Events:   services.NewEventService(events, logger, cfg.SlugMaxAttempts, cfg.Timeout),
		Bookings: services.NewBookingService(bookings, events, logger, cfg.Timeout),
		Registry: reg,
		close:    closeFn,
	}
}

// Close releases the backend connection. Repositories registered on it go stale, so an
// App built afterwards needs a fresh Registry.
func (a *App) Close(ctx context.Context) error {
	return a.close(ctx)
}
