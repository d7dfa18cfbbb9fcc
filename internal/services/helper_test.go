package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ametelkin/tripline/internal/logger"
	"github.com/ametelkin/tripline/internal/models"
)

func TestHelper_StartTrip_RequestsLocationFromOwner(t *testing.T) {
	trips := newFakeTripRepo()
	notifier := &recordingNotifier{}
	helper := NewHelper(logger.NewNop(), trips, newFakeWaypointRepo(), notifier, 100)

	trip := models.Trip{UserID: 77, Name: "Alps"}
	require.NoError(t, trips.Create(context.Background(), &trip))

	require.NoError(t, helper.StartTrip(context.Background(), trip.ID))

	requests := notifier.locationRequests()
	require.Len(t, requests, 1)
	assert.Equal(t, int64(77), requests[0].chatID)
	assert.Contains(t, requests[0].text, `"Alps"`)
}

func TestHelper_StartTrip_NotFound(t *testing.T) {
	helper := NewHelper(logger.NewNop(), newFakeTripRepo(), newFakeWaypointRepo(), &recordingNotifier{}, 100)
	err := helper.StartTrip(context.Background(), 999)
	assert.ErrorIs(t, err, ErrTripNotFound)
}

func TestHelper_HandleLocation_MarksNearbyWaypoints(t *testing.T) {
	waypoints := newFakeWaypointRepo()
	notifier := &recordingNotifier{}
	helper := NewHelper(logger.NewNop(), newFakeTripRepo(), waypoints, notifier, 100)

	near := waypoints.add(models.Waypoint{TripID: 5, Name: "Dom", Lat: 55.75, Lon: 37.62})
	far := waypoints.add(models.Waypoint{TripID: 5, Name: "Airport", Lat: 55.97, Lon: 37.41})

	require.NoError(t, helper.HandleLocation(context.Background(), 10, 5, 55.75, 37.62))

	nearStored, err := waypoints.GetByID(context.Background(), near.ID)
	require.NoError(t, err)
	assert.True(t, nearStored.Visited)

	farStored, err := waypoints.GetByID(context.Background(), far.ID)
	require.NoError(t, err)
	assert.False(t, farStored.Visited)

	sent := notifier.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, int64(10), sent[0].chatID)
	assert.Contains(t, sent[0].text, `"Dom"`)
}

func TestHelper_HandleLocation_AlreadyVisitedStaysSilent(t *testing.T) {
	waypoints := newFakeWaypointRepo()
	notifier := &recordingNotifier{}
	helper := NewHelper(logger.NewNop(), newFakeTripRepo(), waypoints, notifier, 100)

	waypoints.add(models.Waypoint{TripID: 5, Name: "Dom", Lat: 55.75, Lon: 37.62, Visited: true})

	require.NoError(t, helper.HandleLocation(context.Background(), 10, 5, 55.75, 37.62))
	require.NoError(t, helper.HandleLocation(context.Background(), 10, 5, 55.75, 37.62))

	assert.Empty(t, notifier.sent(), "an already visited waypoint must not notify again")
}

func TestHelper_HandleLocation_IgnoresOtherTrips(t *testing.T) {
	waypoints := newFakeWaypointRepo()
	notifier := &recordingNotifier{}
	helper := NewHelper(logger.NewNop(), newFakeTripRepo(), waypoints, notifier, 100)

	other := waypoints.add(models.Waypoint{TripID: 6, Name: "Dom", Lat: 55.75, Lon: 37.62})

	require.NoError(t, helper.HandleLocation(context.Background(), 10, 5, 55.75, 37.62))

	stored, err := waypoints.GetByID(context.Background(), other.ID)
	require.NoError(t, err)
	assert.False(t, stored.Visited)
}

func TestHelper_MarkVisited_IgnoresDistance(t *testing.T) {
	waypoints := newFakeWaypointRepo()
	helper := NewHelper(logger.NewNop(), newFakeTripRepo(), waypoints, &recordingNotifier{}, 100)

	wp := waypoints.add(models.Waypoint{TripID: 5, Name: "Far away", Lat: 1, Lon: 1})

	marked, err := helper.MarkVisited(context.Background(), wp.ID)
	require.NoError(t, err)
	assert.True(t, marked.Visited)
}

func TestHelper_MarkVisited_NotFound(t *testing.T) {
	helper := NewHelper(logger.NewNop(), newFakeTripRepo(), newFakeWaypointRepo(), &recordingNotifier{}, 100)
	_, err := helper.MarkVisited(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrWaypointNotFound)
}

func TestHelper_AddNote(t *testing.T) {
	waypoints := newFakeWaypointRepo()
	helper := NewHelper(logger.NewNop(), newFakeTripRepo(), waypoints, &recordingNotifier{}, 100)

	wp := waypoints.add(models.Waypoint{TripID: 5, Name: "Dom"})

	updated, err := helper.AddNote(context.Background(), wp.ID, "lovely at sunset")
	require.NoError(t, err)
	assert.Equal(t, []string{"lovely at sunset"}, updated.Notes)
}
