package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ametelkin/tripline/internal/geo"
	"github.com/ametelkin/tripline/internal/logger"
	"github.com/ametelkin/tripline/internal/models"
	"github.com/ametelkin/tripline/internal/repositories"
)

// Helper handles the in-trip flows: starting a trip, matching reported
// locations against waypoints, manual visit marks and notes.
type Helper struct {
	trips       repositories.TripRepository
	waypoints   repositories.WaypointRepository
	notifier    Notifier
	visitRadius float64
	log         *logger.Logger
}

func NewHelper(log *logger.Logger, trips repositories.TripRepository, waypoints repositories.WaypointRepository, notifier Notifier, visitRadius float64) *Helper {
	return &Helper{
		trips:       trips,
		waypoints:   waypoints,
		notifier:    notifier,
		visitRadius: visitRadius,
		log:         log.With("service", "Helper"),
	}
}

// StartTrip tells the trip owner their trip has begun and asks them to share
// a location.
func (h *Helper) StartTrip(ctx context.Context, tripID int64) error {
	trip, err := h.trips.GetByID(ctx, tripID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrTripNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get trip: %w", err)
	}

	h.notifier.RequestLocation(trip.UserID,
		fmt.Sprintf("Your trip %q starts now! Please share your location.", trip.Name))
	return nil
}

// HandleLocation marks every waypoint of the trip within the visit radius as
// visited and tells the reporting chat about each new visit. Waypoints that
// were already visited stay silent.
func (h *Helper) HandleLocation(ctx context.Context, chatID, tripID int64, lat, lon float64) error {
	waypoints, err := h.waypoints.ListByTrip(ctx, tripID)
	if err != nil {
		return fmt.Errorf("failed to list trip waypoints: %w", err)
	}

	for _, wp := range geo.VisitedWithin(lat, lon, waypoints, h.visitRadius) {
		if wp.Visited {
			continue
		}
		updated, err := h.waypoints.SetVisited(ctx, wp.ID)
		if err != nil {
			h.log.Error("Failed to mark waypoint visited",
				"waypoint_id", wp.ID, "trip_id", tripID, "error", err)
			continue
		}
		h.notifier.SendMessage(chatID, fmt.Sprintf("You visited %q", updated.Name))
	}
	return nil
}

// MarkVisited force-marks a waypoint as visited regardless of distance.
func (h *Helper) MarkVisited(ctx context.Context, waypointID uuid.UUID) (*models.Waypoint, error) {
	wp, err := h.waypoints.SetVisited(ctx, waypointID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrWaypointNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark waypoint: %w", err)
	}
	return wp, nil
}

// AddNote appends a note to a waypoint.
func (h *Helper) AddNote(ctx context.Context, waypointID uuid.UUID, note string) (*models.Waypoint, error) {
	wp, err := h.waypoints.AppendNote(ctx, waypointID, note)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrWaypointNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add note: %w", err)
	}
	return wp, nil
}
