package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ametelkin/tripline/internal/logger"
	"github.com/ametelkin/tripline/internal/repositories"
)

// Reminder periodically nudges users about trips starting within a day.
type Reminder struct {
	trips    repositories.TripRepository
	notifier Notifier
	interval time.Duration
	log      *logger.Logger
}

func NewReminder(log *logger.Logger, trips repositories.TripRepository, notifier Notifier) *Reminder {
	return &Reminder{
		trips:    trips,
		notifier: notifier,
		interval: time.Hour,
		log:      log.With("service", "Reminder"),
	}
}

// Run blocks until ctx is cancelled, checking once per hour.
func (r *Reminder) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Reminder loop stopped")
			return
		case <-ticker.C:
			if err := r.runOnce(ctx); err != nil {
				r.log.Warn("Reminder pass failed", "error", err)
			}
		}
	}
}

func (r *Reminder) runOnce(ctx context.Context) error {
	today := utcToday()
	tomorrow := today.AddDate(0, 0, 1)

	trips, err := r.trips.ListStartingBetween(ctx, today, tomorrow)
	if err != nil {
		return fmt.Errorf("failed to list upcoming trips: %w", err)
	}

	for _, trip := range trips {
		r.notifier.SendMessage(trip.UserID,
			fmt.Sprintf("Reminder: your trip %q starts on %s",
				trip.Name, trip.StartDate.Format("2006-01-02")))
	}
	return nil
}
