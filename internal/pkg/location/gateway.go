package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/faena-app/faena-backend/internal/domain/location"
	"github.com/faena-app/faena-backend/internal/pkg/geo"
)

// DefaultMaxPositionAge bounds how old a report may be to count as the current position.
const DefaultMaxPositionAge = 2 * time.Minute

// PositionStore keeps the last reported position per user.
type PositionStore interface {
	Save(ctx context.Context, userID string, pos location.Position) error
	Load(ctx context.Context, userID string) (location.Position, error)
}

// Fanout carries accepted reports to the watchers of every API instance.
// Without one, reports only reach watchers registered in this process.
type Fanout interface {
	Publish(ctx context.Context, userID string, p geo.Point) error
}

type Options struct {
	MaxPositionAge time.Duration // reports older than this are stale, default 2m
	Fanout         Fanout
	Now            func() time.Time
}

// Gateway implements location.Provider on top of device reports.
// Watch callbacks run on the delivering goroutine, outside the gateway lock.
type Gateway struct {
	store  PositionStore
	fanout Fanout
	maxAge time.Duration
	now    func() time.Time

	mu       sync.RWMutex
	watchers map[string]map[*watcher]struct{}
}

func NewGateway(store PositionStore, opts Options) *Gateway {
	if opts.MaxPositionAge <= 0 {
		opts.MaxPositionAge = DefaultMaxPositionAge
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Gateway{
		store:    store,
		fanout:   opts.Fanout,
		maxAge:   opts.MaxPositionAge,
		now:      opts.Now,
		watchers: make(map[string]map[*watcher]struct{}),
	}
}

type watcher struct {
	gateway     *Gateway
	userID      string
	minDistance float64
	fn          func(geo.Point)

	mu      sync.Mutex
	last    *geo.Point
	removed bool
}

// Remove implements location.Subscription.
func (w *watcher) Remove() {
	w.mu.Lock()
	if w.removed {
		w.mu.Unlock()
		return
	}
	w.removed = true
	w.mu.Unlock()

	w.gateway.mu.Lock()
	delete(w.gateway.watchers[w.userID], w)
	if len(w.gateway.watchers[w.userID]) == 0 {
		delete(w.gateway.watchers, w.userID)
	}
	w.gateway.mu.Unlock()
}

func (w *watcher) deliver(p geo.Point) {
	w.mu.Lock()
	if w.removed {
		w.mu.Unlock()
		return
	}
	if w.last != nil && geo.Distance(*w.last, p) < w.minDistance {
		w.mu.Unlock()
		return
	}
	w.last = &p
	w.mu.Unlock()

	w.fn(p)
}

// Report stores a device report and fans the point out to the user's watchers.
func (g *Gateway) Report(ctx context.Context, userID string, req location.ReportRequest) (location.Position, error) {
	point := req.Point()
	if req.PermissionGranted && !point.Valid() {
		return location.Position{}, location.ErrInvalidCoordinates
	}

	pos := location.Position{
		Point:             point,
		PermissionGranted: req.PermissionGranted,
		ReportedAt:        g.now().UTC(),
	}
	if err := g.store.Save(ctx, userID, pos); err != nil {
		return location.Position{}, fmt.Errorf("failed to save position: %w", err)
	}

	if !req.PermissionGranted {
		return pos, nil
	}

	if g.fanout != nil {
		err := g.fanout.Publish(ctx, userID, point)
		if err == nil {
			return pos, nil
		}
		slog.Warn("Position fan-out failed, delivering locally", "user_id", userID, "error", err)
	}
	g.Deliver(userID, point)

	return pos, nil
}

// Deliver hands a point to this process's watchers of userID.
func (g *Gateway) Deliver(userID string, point geo.Point) {
	g.mu.RLock()
	targets := make([]*watcher, 0, len(g.watchers[userID]))
	for w := range g.watchers[userID] {
		targets = append(targets, w)
	}
	g.mu.RUnlock()

	for _, w := range targets {
		w.deliver(point)
	}
}

// RequestForegroundPermission implements location.Provider.
// A user who never reported counts as denied.
func (g *Gateway) RequestForegroundPermission(ctx context.Context, userID string) (bool, error) {
	pos, err := g.store.Load(ctx, userID)
	if err != nil {
		if errors.Is(err, location.ErrPositionUnavailable) {
			return false, nil
		}
		return false, err
	}
	return pos.PermissionGranted, nil
}

// CurrentPosition implements location.Provider. Only a report younger than the
// max position age counts as current.
func (g *Gateway) CurrentPosition(ctx context.Context, userID string) (geo.Point, error) {
	pos, err := g.store.Load(ctx, userID)
	if err != nil {
		return geo.Point{}, err
	}
	if !pos.PermissionGranted {
		return geo.Point{}, location.ErrPositionUnavailable
	}
	if g.now().Sub(pos.ReportedAt) > g.maxAge {
		return geo.Point{}, location.ErrPositionStale
	}
	return pos.Point, nil
}

// WatchPosition implements location.Provider.
func (g *Gateway) WatchPosition(ctx context.Context, userID string, minDistanceMeters float64, fn func(geo.Point)) (location.Subscription, error) {
	if fn == nil {
		return nil, fmt.Errorf("watch callback is required")
	}

	w := &watcher{
		gateway:     g,
		userID:      userID,
		minDistance: minDistanceMeters,
		fn:          fn,
	}

	g.mu.Lock()
	if g.watchers[userID] == nil {
		g.watchers[userID] = make(map[*watcher]struct{})
	}
	g.watchers[userID][w] = struct{}{}
	g.mu.Unlock()

	slog.Debug("Position watch started", "user_id", userID, "min_distance_m", minDistanceMeters)
	return w, nil
}

// WatcherCount returns the number of live watches for a user.
func (g *Gateway) WatcherCount(userID string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.watchers[userID])
}
