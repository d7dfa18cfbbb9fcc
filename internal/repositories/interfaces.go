package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ametelkin/tripline/internal/models"
)

type TripRepository interface {
	Create(ctx context.Context, trip *models.Trip) error
	GetByID(ctx context.Context, id int64) (*models.Trip, error)
	ListPlanned(ctx context.Context, userID int64, today time.Time) ([]models.Trip, error)
	ListFinished(ctx context.Context, userID int64, today time.Time) ([]models.Trip, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Trip, error)
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]models.Trip, error)
	SetRating(ctx context.Context, id int64, rating int) (*models.Trip, error)
	Delete(ctx context.Context, id int64) error
}

type WaypointRepository interface {
	CreateMany(ctx context.Context, tripID int64, inputs []models.WaypointInput) ([]models.Waypoint, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Waypoint, error)
	ListByTrip(ctx context.Context, tripID int64) ([]models.Waypoint, error)
	SetVisited(ctx context.Context, id uuid.UUID) (*models.Waypoint, error)
	AppendNote(ctx context.Context, id uuid.UUID, note string) (*models.Waypoint, error)
	DeleteByTrip(ctx context.Context, tripID int64) error
}
