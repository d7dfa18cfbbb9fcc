package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ametelkin/tripline/internal/logger"
	"github.com/ametelkin/tripline/internal/models"
	"github.com/ametelkin/tripline/internal/repositories"
)

// History covers finished trips: listing, details, ratings.
type History struct {
	trips     repositories.TripRepository
	waypoints repositories.WaypointRepository
	notifier  Notifier
	log       *logger.Logger
}

func NewHistory(log *logger.Logger, trips repositories.TripRepository, waypoints repositories.WaypointRepository, notifier Notifier) *History {
	return &History{
		trips:     trips,
		waypoints: waypoints,
		notifier:  notifier,
		log:       log.With("service", "History"),
	}
}

// ListFinished returns the user's trips that ended before today.
func (h *History) ListFinished(ctx context.Context, userID int64) ([]models.Trip, error) {
	return h.trips.ListFinished(ctx, userID, utcToday())
}

// TripDetails returns one finished trip with its waypoints. The trip must be
// owned by the requesting user and already over.
func (h *History) TripDetails(ctx context.Context, userID, tripID int64) (*models.TripWithWaypoints, error) {
	trip, err := h.ownedFinishedTrip(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}

	waypoints, err := h.waypoints.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trip waypoints: %w", err)
	}
	return &models.TripWithWaypoints{Trip: *trip, Waypoints: waypoints}, nil
}

// Rate sets a 1..5 rating on a finished, owned trip and thanks the user.
func (h *History) Rate(ctx context.Context, userID, tripID int64, rating int) (*models.Trip, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	if _, err := h.ownedFinishedTrip(ctx, userID, tripID); err != nil {
		return nil, err
	}

	trip, err := h.trips.SetRating(ctx, tripID, rating)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, fmt.Errorf("failed to set rating: %w", err)
	}

	h.notifier.SendMessage(userID,
		fmt.Sprintf("Your trip %q has been rated %d/5. Thanks!", trip.Name, rating))
	return trip, nil
}

func (h *History) ownedFinishedTrip(ctx context.Context, userID, tripID int64) (*models.Trip, error) {
	trip, err := h.trips.GetByID(ctx, tripID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrTripNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	if trip.UserID != userID {
		return nil, ErrAccessDenied
	}
	if !trip.Finished(utcToday()) {
		return nil, ErrTripNotFinished
	}
	return trip, nil
}
