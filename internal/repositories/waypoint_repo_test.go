package repositories

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ametelkin/tripline/internal/models"
)

// TestWaypointRepository_CreateMany tests storing waypoints with the trip index
func TestWaypointRepository_CreateMany(t *testing.T) {
	client := getTestRedisClient(t)
	repo := NewRedisWaypointRepository(client)
	ctx := context.Background()

	defer cleanupTestWaypoints(t, client, ctx)

	// ACT: Create two waypoints for one trip
	waypoints, err := repo.CreateMany(ctx, 9001, []models.WaypointInput{
		{Name: "Cathedral", Lat: 55.75, Lon: 37.62},
		{Name: "Museum", Lat: 55.74, Lon: 37.60},
	})

	// ASSERT: Each waypoint got an id and is retrievable
	require.NoError(t, err)
	require.Len(t, waypoints, 2)
	for _, wp := range waypoints {
		assert.NotEqual(t, uuid.Nil, wp.ID)
		assert.Equal(t, int64(9001), wp.TripID)
		assert.False(t, wp.Visited)

		retrieved, err := repo.GetByID(ctx, wp.ID)
		require.NoError(t, err)
		assert.Equal(t, wp.Name, retrieved.Name)
	}

	// Verify secondary index covers both
	listed, err := repo.ListByTrip(ctx, 9001)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

// TestWaypointRepository_SetVisited tests the one-way visited transition
func TestWaypointRepository_SetVisited(t *testing.T) {
	client := getTestRedisClient(t)
	repo := NewRedisWaypointRepository(client)
	ctx := context.Background()

	defer cleanupTestWaypoints(t, client, ctx)

	waypoints, err := repo.CreateMany(ctx, 9002, []models.WaypointInput{
		{Name: "Pier", Lat: 1, Lon: 2},
	})
	require.NoError(t, err)

	// ACT: Mark visited twice
	wp, err := repo.SetVisited(ctx, waypoints[0].ID)
	require.NoError(t, err)
	assert.True(t, wp.Visited)

	wp, err = repo.SetVisited(ctx, waypoints[0].ID)
	require.NoError(t, err)
	assert.True(t, wp.Visited, "Second call should be a no-op")

	// ASSERT: Missing waypoint reports ErrNotFound
	_, err = repo.SetVisited(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestWaypointRepository_AppendNote tests accumulating notes on a waypoint
func TestWaypointRepository_AppendNote(t *testing.T) {
	client := getTestRedisClient(t)
	repo := NewRedisWaypointRepository(client)
	ctx := context.Background()

	defer cleanupTestWaypoints(t, client, ctx)

	waypoints, err := repo.CreateMany(ctx, 9003, []models.WaypointInput{
		{Name: "Castle", Lat: 3, Lon: 4},
	})
	require.NoError(t, err)

	_, err = repo.AppendNote(ctx, waypoints[0].ID, "closed on Mondays")
	require.NoError(t, err)
	wp, err := repo.AppendNote(ctx, waypoints[0].ID, "great view from tower")
	require.NoError(t, err)

	assert.Equal(t, []string{"closed on Mondays", "great view from tower"}, wp.Notes)
}

// TestWaypointRepository_DeleteByTrip tests removing documents and the index
func TestWaypointRepository_DeleteByTrip(t *testing.T) {
	client := getTestRedisClient(t)
	repo := NewRedisWaypointRepository(client)
	ctx := context.Background()

	defer cleanupTestWaypoints(t, client, ctx)

	waypoints, err := repo.CreateMany(ctx, 9004, []models.WaypointInput{
		{Name: "A", Lat: 1, Lon: 1},
		{Name: "B", Lat: 2, Lon: 2},
	})
	require.NoError(t, err)

	// ACT: Delete everything for the trip
	err = repo.DeleteByTrip(ctx, 9004)

	// ASSERT: Documents and index are gone
	require.NoError(t, err)
	for _, wp := range waypoints {
		_, err := repo.GetByID(ctx, wp.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	}
	listed, err := repo.ListByTrip(ctx, 9004)
	require.NoError(t, err)
	assert.Len(t, listed, 0)
}

// Helper functions for test setup

// getTestRedisClient returns a Redis client for testing, skipping the test
// when TEST_REDIS_ADDR is unset
func getTestRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping Redis integration test")
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   1, // Use DB 1 for tests (different from production DB 0)
	})

	ctx := context.Background()
	err := client.Ping(ctx).Err()
	require.NoError(t, err, "Failed to connect to test Redis")

	return client
}

// cleanupTestWaypoints removes test data
func cleanupTestWaypoints(t *testing.T, client *redis.Client, ctx context.Context) {
	keys, err := client.Keys(ctx, waypointPrefix+"*").Result()
	if err != nil {
		t.Logf("Warning: failed to get keys: %v", err)
		return
	}
	if len(keys) > 0 {
		if err := client.Del(ctx, keys...).Err(); err != nil {
			t.Logf("Warning: failed to cleanup test waypoints: %v", err)
		}
	}

	indexKeys, err := client.Keys(ctx, "trip:*:waypoints").Result()
	if err == nil && len(indexKeys) > 0 {
		client.Del(ctx, indexKeys...)
	}
}
