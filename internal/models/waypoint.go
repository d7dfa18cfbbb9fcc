package models

import (
	"github.com/google/uuid"
)

type Waypoint struct {
	ID      uuid.UUID `json:"id"`
	TripID  int64     `json:"trip_id"`
	Name    string    `json:"name"`
	Lat     float64   `json:"lat"`
	Lon     float64   `json:"lon"`
	Visited bool      `json:"visited"`
	Notes   []string  `json:"notes"`
}

// WaypointInput is the creation payload parsed from a /plan command.
type WaypointInput struct {
	Name string
	Lat  float64
	Lon  float64
}
