package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ametelkin/tripline/internal/models"
)

const waypointPrefix = "waypoint:"
const tripWaypointsPrefix = "trip:%d:waypoints"

// RedisWaypointRepository stores waypoints as JSON documents keyed by id,
// with a per-trip set of ids as a secondary index.
type RedisWaypointRepository struct {
	client *redis.Client
}

func NewRedisWaypointRepository(client *redis.Client) *RedisWaypointRepository {
	return &RedisWaypointRepository{client: client}
}

func (r *RedisWaypointRepository) CreateMany(ctx context.Context, tripID int64, inputs []models.WaypointInput) ([]models.Waypoint, error) {
	waypoints := make([]models.Waypoint, 0, len(inputs))
	indexKey := fmt.Sprintf(tripWaypointsPrefix, tripID)

	for _, in := range inputs {
		wp := models.Waypoint{
			ID:     uuid.New(),
			TripID: tripID,
			Name:   in.Name,
			Lat:    in.Lat,
			Lon:    in.Lon,
			Notes:  []string{},
		}
		if err := r.save(ctx, &wp); err != nil {
			return nil, err
		}
		if err := r.client.SAdd(ctx, indexKey, wp.ID.String()).Err(); err != nil {
			return nil, fmt.Errorf("failed to index waypoint: %w", err)
		}
		waypoints = append(waypoints, wp)
	}
	return waypoints, nil
}

func (r *RedisWaypointRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Waypoint, error) {
	key := waypointPrefix + id.String()

	jsonData, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get waypoint: %w", err)
	}

	var wp models.Waypoint
	if err := json.Unmarshal([]byte(jsonData), &wp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal waypoint: %w", err)
	}
	return &wp, nil
}

func (r *RedisWaypointRepository) ListByTrip(ctx context.Context, tripID int64) ([]models.Waypoint, error) {
	indexKey := fmt.Sprintf(tripWaypointsPrefix, tripID)

	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read waypoint index: %w", err)
	}

	var waypoints []models.Waypoint
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		wp, err := r.GetByID(ctx, id)
		if errors.Is(err, ErrNotFound) {
			// Stale index entry, drop it lazily.
			r.client.SRem(ctx, indexKey, raw)
			continue
		}
		if err != nil {
			return nil, err
		}
		waypoints = append(waypoints, *wp)
	}
	return waypoints, nil
}

// SetVisited marks the waypoint visited. The transition only goes
// false -> true; marking an already visited waypoint is a no-op.
func (r *RedisWaypointRepository) SetVisited(ctx context.Context, id uuid.UUID) (*models.Waypoint, error) {
	wp, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wp.Visited {
		return wp, nil
	}
	wp.Visited = true
	if err := r.save(ctx, wp); err != nil {
		return nil, err
	}
	return wp, nil
}

func (r *RedisWaypointRepository) AppendNote(ctx context.Context, id uuid.UUID, note string) (*models.Waypoint, error) {
	wp, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	wp.Notes = append(wp.Notes, note)
	if err := r.save(ctx, wp); err != nil {
		return nil, err
	}
	return wp, nil
}

func (r *RedisWaypointRepository) DeleteByTrip(ctx context.Context, tripID int64) error {
	indexKey := fmt.Sprintf(tripWaypointsPrefix, tripID)

	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return fmt.Errorf("failed to read waypoint index: %w", err)
	}

	for _, raw := range ids {
		if err := r.client.Del(ctx, waypointPrefix+raw).Err(); err != nil {
			return fmt.Errorf("failed to delete waypoint: %w", err)
		}
	}
	if err := r.client.Del(ctx, indexKey).Err(); err != nil {
		return fmt.Errorf("failed to delete waypoint index: %w", err)
	}
	return nil
}

func (r *RedisWaypointRepository) save(ctx context.Context, wp *models.Waypoint) error {
	jsonData, err := json.Marshal(wp)
	if err != nil {
		return fmt.Errorf("failed to marshal waypoint: %w", err)
	}
	key := waypointPrefix + wp.ID.String()
	if err := r.client.Set(ctx, key, jsonData, 0).Err(); err != nil {
		return fmt.Errorf("failed to set waypoint: %w", err)
	}
	return nil
}
