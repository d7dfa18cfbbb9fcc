package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ametelkin/tripline/internal/models"
)

type PostgresTripRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresTripRepository(pool *pgxpool.Pool) *PostgresTripRepository {
	return &PostgresTripRepository{pool: pool}
}

func (r *PostgresTripRepository) Create(ctx context.Context, trip *models.Trip) error {
	query := `INSERT INTO trips (user_id, name, start_date, end_date)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		trip.UserID,
		trip.Name,
		trip.StartDate,
		trip.EndDate,
	).Scan(&trip.ID)

	if err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}
	return nil
}

func (r *PostgresTripRepository) GetByID(ctx context.Context, id int64) (*models.Trip, error) {
	query := `SELECT id, user_id, name, start_date, end_date, rating
	          FROM trips
	          WHERE id = $1`

	var trip models.Trip
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&trip.ID,
		&trip.UserID,
		&trip.Name,
		&trip.StartDate,
		&trip.EndDate,
		&trip.Rating,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip by ID: %w", err)
	}
	return &trip, nil
}

func (r *PostgresTripRepository) ListPlanned(ctx context.Context, userID int64, today time.Time) ([]models.Trip, error) {
	query := `SELECT id, user_id, name, start_date, end_date, rating
	          FROM trips
	          WHERE user_id = $1 AND start_date >= $2
	          ORDER BY start_date ASC`

	return r.list(ctx, query, userID, today)
}

func (r *PostgresTripRepository) ListFinished(ctx context.Context, userID int64, today time.Time) ([]models.Trip, error) {
	query := `SELECT id, user_id, name, start_date, end_date, rating
	          FROM trips
	          WHERE user_id = $1 AND end_date < $2
	          ORDER BY end_date DESC`

	return r.list(ctx, query, userID, today)
}

func (r *PostgresTripRepository) ListByUser(ctx context.Context, userID int64) ([]models.Trip, error) {
	query := `SELECT id, user_id, name, start_date, end_date, rating
	          FROM trips
	          WHERE user_id = $1
	          ORDER BY start_date ASC`

	return r.list(ctx, query, userID)
}

func (r *PostgresTripRepository) ListStartingBetween(ctx context.Context, from, to time.Time) ([]models.Trip, error) {
	query := `SELECT id, user_id, name, start_date, end_date, rating
	          FROM trips
	          WHERE start_date >= $1 AND start_date <= $2
	          ORDER BY start_date ASC`

	return r.list(ctx, query, from, to)
}

func (r *PostgresTripRepository) SetRating(ctx context.Context, id int64, rating int) (*models.Trip, error) {
	query := `UPDATE trips
	          SET rating = $1
	          WHERE id = $2
	          RETURNING id, user_id, name, start_date, end_date, rating`

	var trip models.Trip
	err := r.pool.QueryRow(ctx, query, rating, id).Scan(
		&trip.ID,
		&trip.UserID,
		&trip.Name,
		&trip.StartDate,
		&trip.EndDate,
		&trip.Rating,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set trip rating: %w", err)
	}
	return &trip, nil
}

func (r *PostgresTripRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM trips WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresTripRepository) list(ctx context.Context, query string, args ...any) ([]models.Trip, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		var trip models.Trip
		err := rows.Scan(
			&trip.ID,
			&trip.UserID,
			&trip.Name,
			&trip.StartDate,
			&trip.EndDate,
			&trip.Rating,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, trip)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trips: %w", err)
	}

	return trips, nil
}
