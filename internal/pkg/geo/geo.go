package geo

import "math"

// EarthRadiusMeters is the mean earth radius used by Distance.
const EarthRadiusMeters = 6371000

// DefaultRadiusMeters is the push-in radius used when a project does not set one.
const DefaultRadiusMeters float64 = 200

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinate is inside the WGS84 range.
func (p Point) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

// Distance returns the great-circle distance between a and b in meters (haversine).
func Distance(a, b Point) float64 {
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// WithinRadius treats a distance equal to the radius as inside.
func WithinRadius(distanceMeters, radiusMeters float64) bool {
	return distanceMeters <= radiusMeters
}

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
