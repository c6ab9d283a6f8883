package location

import (
	"context"
	"errors"
	"time"

	"github.com/faena-app/faena-backend/internal/pkg/geo"
)

var (
	ErrPositionUnavailable = errors.New("no position reported for this user")
	ErrInvalidCoordinates  = errors.New("coordinates are out of range")
	ErrPositionStale       = errors.New("last reported position is too old, report location again")
)

// Position is the last report a device sent for its user.
type Position struct {
	Point             geo.Point `json:"point"`
	PermissionGranted bool      `json:"permission_granted"`
	ReportedAt        time.Time `json:"reported_at"`
}

// Subscription is a live position watch. Remove stops further callbacks and is idempotent.
type Subscription interface {
	Remove()
}

// Provider is the location source the attendance tracker depends on.
type Provider interface {
	RequestForegroundPermission(ctx context.Context, userID string) (bool, error)
	CurrentPosition(ctx context.Context, userID string) (geo.Point, error)
	WatchPosition(ctx context.Context, userID string, minDistanceMeters float64, fn func(geo.Point)) (Subscription, error)
}

// ReportRequest is what a device posts on every location change.
type ReportRequest struct {
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	PermissionGranted bool    `json:"permission_granted"`
}

func (r ReportRequest) Point() geo.Point {
	return geo.Point{Latitude: r.Latitude, Longitude: r.Longitude}
}
