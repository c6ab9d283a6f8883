package project

import (
	"time"

	"github.com/faena-app/faena-backend/internal/pkg/geo"
)

type Project struct {
	ID           string
	Name         string
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
	Timezone     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Site returns the geofence center.
func (p Project) Site() geo.Point {
	return geo.Point{Latitude: p.Latitude, Longitude: p.Longitude}
}

// Radius falls back to fallback when the project has no radius of its own.
func (p Project) Radius(fallback float64) float64 {
	if p.RadiusMeters > 0 {
		return p.RadiusMeters
	}
	return fallback
}

// Location loads the project timezone, falling back on an empty or unknown zone.
func (p Project) Location(fallback *time.Location) *time.Location {
	if p.Timezone == "" {
		return fallback
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return fallback
	}
	return loc
}

// DateKey is the "YYYY-MM-DD" day of t in the project's timezone.
func (p Project) DateKey(t time.Time, fallback *time.Location) string {
	return t.In(p.Location(fallback)).Format("2006-01-02")
}
