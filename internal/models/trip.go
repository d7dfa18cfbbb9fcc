package models

import (
	"time"
)

type Trip struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Rating    *int      `json:"rating,omitempty"`
}

// Finished reports whether the trip ended strictly before the given day.
// Callers pass a midnight-UTC day, matching how dates are stored.
func (t *Trip) Finished(today time.Time) bool {
	return t.EndDate.Before(today)
}

type TripWithWaypoints struct {
	Trip      Trip       `json:"trip"`
	Waypoints []Waypoint `json:"waypoints"`
}
