package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ametelkin/tripline/internal/logger"
	"github.com/ametelkin/tripline/internal/models"
	"github.com/ametelkin/tripline/internal/repositories"
)

// Planner covers the planning side of the bot: upcoming trips, creation with
// waypoints, deletion with waypoint cascade.
type Planner struct {
	trips     repositories.TripRepository
	waypoints repositories.WaypointRepository
	log       *logger.Logger
}

func NewPlanner(log *logger.Logger, trips repositories.TripRepository, waypoints repositories.WaypointRepository) *Planner {
	return &Planner{
		trips:     trips,
		waypoints: waypoints,
		log:       log.With("service", "Planner"),
	}
}

// ListPlanned returns the user's trips starting today or later.
func (p *Planner) ListPlanned(ctx context.Context, userID int64) ([]models.Trip, error) {
	return p.trips.ListPlanned(ctx, userID, utcToday())
}

// CreateTrip stores a trip and its waypoints.
func (p *Planner) CreateTrip(ctx context.Context, userID int64, name string, start, end time.Time, points []models.WaypointInput) (*models.TripWithWaypoints, error) {
	trip := models.Trip{
		UserID:    userID,
		Name:      name,
		StartDate: start,
		EndDate:   end,
	}
	if err := p.trips.Create(ctx, &trip); err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}

	waypoints, err := p.waypoints.CreateMany(ctx, trip.ID, points)
	if err != nil {
		return nil, fmt.Errorf("failed to create waypoints: %w", err)
	}

	p.log.Info("Trip created", "trip_id", trip.ID, "user_id", userID, "waypoints", len(waypoints))
	return &models.TripWithWaypoints{Trip: trip, Waypoints: waypoints}, nil
}

// DeleteTrip removes a trip and every waypoint that belongs to it.
func (p *Planner) DeleteTrip(ctx context.Context, tripID int64) error {
	if err := p.trips.Delete(ctx, tripID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTripNotFound
		}
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	if err := p.waypoints.DeleteByTrip(ctx, tripID); err != nil {
		return fmt.Errorf("failed to delete trip waypoints: %w", err)
	}
	return nil
}

// utcToday is the current UTC day at midnight, matching stored date columns.
func utcToday() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
