package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ametelkin/tripline/internal/models"
	"github.com/ametelkin/tripline/internal/repositories"
)

// In-memory repository fakes shared by the service tests.

type fakeTripRepo struct {
	trips  map[int64]models.Trip
	nextID int64
}

func newFakeTripRepo() *fakeTripRepo {
	return &fakeTripRepo{trips: make(map[int64]models.Trip)}
}

func (f *fakeTripRepo) Create(ctx context.Context, trip *models.Trip) error {
	f.nextID++
	trip.ID = f.nextID
	f.trips[trip.ID] = *trip
	return nil
}

func (f *fakeTripRepo) GetByID(ctx context.Context, id int64) (*models.Trip, error) {
	trip, ok := f.trips[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &trip, nil
}

func (f *fakeTripRepo) ListPlanned(ctx context.Context, userID int64, today time.Time) ([]models.Trip, error) {
	var out []models.Trip
	for _, t := range f.trips {
		if t.UserID == userID && !t.StartDate.Before(today) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTripRepo) ListFinished(ctx context.Context, userID int64, today time.Time) ([]models.Trip, error) {
	var out []models.Trip
	for _, t := range f.trips {
		if t.UserID == userID && t.EndDate.Before(today) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTripRepo) ListByUser(ctx context.Context, userID int64) ([]models.Trip, error) {
	var out []models.Trip
	for _, t := range f.trips {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTripRepo) ListStartingBetween(ctx context.Context, from, to time.Time) ([]models.Trip, error) {
	var out []models.Trip
	for _, t := range f.trips {
		if !t.StartDate.Before(from) && !t.StartDate.After(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTripRepo) SetRating(ctx context.Context, id int64, rating int) (*models.Trip, error) {
	trip, ok := f.trips[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	trip.Rating = &rating
	f.trips[id] = trip
	return &trip, nil
}

func (f *fakeTripRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.trips[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.trips, id)
	return nil
}

type fakeWaypointRepo struct {
	waypoints map[uuid.UUID]models.Waypoint
}

func newFakeWaypointRepo() *fakeWaypointRepo {
	return &fakeWaypointRepo{waypoints: make(map[uuid.UUID]models.Waypoint)}
}

func (f *fakeWaypointRepo) add(wp models.Waypoint) models.Waypoint {
	if wp.ID == uuid.Nil {
		wp.ID = uuid.New()
	}
	f.waypoints[wp.ID] = wp
	return wp
}

func (f *fakeWaypointRepo) CreateMany(ctx context.Context, tripID int64, inputs []models.WaypointInput) ([]models.Waypoint, error) {
	out := make([]models.Waypoint, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, f.add(models.Waypoint{
			TripID: tripID, Name: in.Name, Lat: in.Lat, Lon: in.Lon, Notes: []string{},
		}))
	}
	return out, nil
}

func (f *fakeWaypointRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Waypoint, error) {
	wp, ok := f.waypoints[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &wp, nil
}

func (f *fakeWaypointRepo) ListByTrip(ctx context.Context, tripID int64) ([]models.Waypoint, error) {
	var out []models.Waypoint
	for _, wp := range f.waypoints {
		if wp.TripID == tripID {
			out = append(out, wp)
		}
	}
	return out, nil
}

func (f *fakeWaypointRepo) SetVisited(ctx context.Context, id uuid.UUID) (*models.Waypoint, error) {
	wp, ok := f.waypoints[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	wp.Visited = true
	f.waypoints[id] = wp
	return &wp, nil
}

func (f *fakeWaypointRepo) AppendNote(ctx context.Context, id uuid.UUID, note string) (*models.Waypoint, error) {
	wp, ok := f.waypoints[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	wp.Notes = append(wp.Notes, note)
	f.waypoints[id] = wp
	return &wp, nil
}

func (f *fakeWaypointRepo) DeleteByTrip(ctx context.Context, tripID int64) error {
	for id, wp := range f.waypoints {
		if wp.TripID == tripID {
			delete(f.waypoints, id)
		}
	}
	return nil
}

type notification struct {
	chatID int64
	text   string
}

type recordingNotifier struct {
	mu        sync.Mutex
	messages  []notification
	locations []notification
}

func (r *recordingNotifier) SendMessage(chatID int64, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, notification{chatID, text})
}

func (r *recordingNotifier) RequestLocation(chatID int64, prompt string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locations = append(r.locations, notification{chatID, prompt})
}

func (r *recordingNotifier) sent() []notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification(nil), r.messages...)
}

func (r *recordingNotifier) locationRequests() []notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification(nil), r.locations...)
}
