// Command setterrepro shows that a filter-based booking update stores the same normalized
// email a whole-document save would, and that bookings for unknown events are refused.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"eventbooking/config"
	"eventbooking/internal/app"
	"eventbooking/internal/domain"

	"github.com/rs/zerolog"
)

func main() {
	logger := config.NewLogger()
	if err := run(context.Background(), logger); err != nil {
		logger.Error().Err(err).Msg("setterrepro failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, logger zerolog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("close storage")
		}
	}()

	event := &domain.Event{
		Title:       fmt.Sprintf("Setter Repro %d", time.Now().Unix()),
		Description: "Filter-based updates and setters",
		Overview:    "Book, then change the email through UpdateByFilter",
		Image:       "/images/repro.png",
		Venue:       "Online",
		Location:    "Internet",
		Date:        "2025-11-07",
		Time:        "9:30",
		Mode:        domain.ModeOnline,
		Audience:    "Developers",
		Agenda:      []string{"Create booking", "Update email"},
		Organizer:   "eventbooking",
		Tags:        []string{"repro"},
	}
	if err := a.Events.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	fmt.Printf("event   %s slug=%s date=%s time=%s\n", event.ID, event.Slug, event.Date, event.Time)

	booking := domain.NewBooking(event.ID, "first@example.com")
	if err := a.Bookings.Create(ctx, booking); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	fmt.Printf("booking %s email=%s\n", booking.ID, booking.Email)

	raw, err := domain.PrepareBookingUpdate(domain.Set(map[string]any{domain.FieldEmail: "TEST@EXAMPLE.COM"}), domain.UpdateOptions{})
	if err != nil {
		return err
	}
	fmt.Printf("without setters the update would store email=%v\n", raw[domain.FieldEmail])

	updated, err := a.Bookings.UpdateByFilter(ctx, domain.BookingFilter{ID: booking.ID},
		domain.Set(map[string]any{domain.FieldEmail: "TEST@EXAMPLE.COM"}))
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	stored, err := a.Bookings.GetByID(ctx, updated.ID)
	if err != nil {
		return fmt.Errorf("reload booking: %w", err)
	}
	fmt.Printf("stored email=%s (expected test@example.com)\n", stored.Email)

	missing := "000000000000000000000000"
	if cfg.DBDriver == config.DriverPostgres {
		missing = "00000000-0000-4000-8000-000000000000"
	}
	err = a.Bookings.Create(ctx, domain.NewBooking(missing, "ghost@example.com"))
	var refErr *domain.ReferenceError
	if !errors.As(err, &refErr) {
		return fmt.Errorf("expected a reference error for event %s, got %v", missing, err)
	}
	fmt.Printf("missing event rejected: %v\n", refErr)
	return nil
}
