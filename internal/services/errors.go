package services

import "errors"

// Domain validation errors. The dispatcher turns these into chat messages;
// they never travel further up than that.
var (
	ErrTripNotFound     = errors.New("trip not found")
	ErrWaypointNotFound = errors.New("waypoint not found")
	ErrAccessDenied     = errors.New("access denied")
	ErrTripNotFinished  = errors.New("trip not finished")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
)
