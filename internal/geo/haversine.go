package geo

import (
	"math"

	"github.com/ametelkin/tripline/internal/models"
)

// EarthRadiusMeters is the mean Earth radius used for great-circle distance.
const EarthRadiusMeters = 6371000.0

// DistanceMeters returns the haversine distance between two coordinates.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// VisitedWithin returns the waypoints strictly closer than radiusMeters to
// the reported position. A waypoint at exactly radiusMeters is not a visit.
func VisitedWithin(lat, lon float64, waypoints []models.Waypoint, radiusMeters float64) []models.Waypoint {
	var within []models.Waypoint
	for _, wp := range waypoints {
		if DistanceMeters(lat, lon, wp.Lat, wp.Lon) < radiusMeters {
			within = append(within, wp)
		}
	}
	return within
}
