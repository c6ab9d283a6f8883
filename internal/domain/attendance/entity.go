package attendance

import (
	"math"
	"time"

	"github.com/faena-app/faena-backend/internal/pkg/geo"
)

// State of a (user, project, day) session. Closed is terminal.
type State string

const (
	StateNotStarted State = "not_started"
	StateOpen       State = "open"
	StateClosed     State = "closed"
)

// CloseReason records who ended a session.
type CloseReason string

const (
	CloseManual   CloseReason = "manual"
	CloseGeofence CloseReason = "geofence"
	CloseStale    CloseReason = "stale"
)

type Record struct {
	ID          string
	UserID      string
	ProjectID   string
	Date        string // YYYY-MM-DD in the project timezone
	PushInTime  time.Time
	PushOutTime *time.Time
	TotalHours  float64
	Latitude    float64
	Longitude   float64
	CloseReason *CloseReason
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Joined for listings
	ProjectName *string
}

func (r Record) State() State {
	if r.ID == "" {
		return StateNotStarted
	}
	if r.PushOutTime == nil {
		return StateOpen
	}
	return StateClosed
}

func (r Record) IsOpen() bool {
	return r.State() == StateOpen
}

func (r Record) Location() geo.Point {
	return geo.Point{Latitude: r.Latitude, Longitude: r.Longitude}
}

// TotalHours is (out - in) in hours rounded to two decimals. Never negative.
func TotalHours(in, out time.Time) float64 {
	d := out.Sub(in)
	if d < 0 {
		return 0
	}
	return math.Round(d.Hours()*100) / 100
}
