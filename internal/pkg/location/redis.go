package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/faena-app/faena-backend/internal/config"
	"github.com/faena-app/faena-backend/internal/domain/location"
	"github.com/faena-app/faena-backend/internal/pkg/geo"
	goredis "github.com/redis/go-redis/v9"
)

const (
	positionKeyPrefix = "faena:position:"
	positionChannel   = "faena:positions"
)

// RedisStore shares last-known positions between API instances.
type RedisStore struct {
	rdb goredis.Cmdable
	ttl time.Duration
}

// NewRedisClient connects and pings the configured Redis.
func NewRedisClient(cfg config.RedisConfig) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	slog.Info("Redis connected", "addr", cfg.Addr)
	return rdb, nil
}

func NewRedisStore(rdb goredis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (r *RedisStore) Save(ctx context.Context, userID string, pos location.Position) error {
	payload, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("encode position: %w", err)
	}
	return r.rdb.Set(ctx, positionKeyPrefix+userID, payload, r.ttl).Err()
}

func (r *RedisStore) Load(ctx context.Context, userID string) (location.Position, error) {
	raw, err := r.rdb.Get(ctx, positionKeyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return location.Position{}, location.ErrPositionUnavailable
		}
		return location.Position{}, fmt.Errorf("load position: %w", err)
	}

	var pos location.Position
	if err := json.Unmarshal(raw, &pos); err != nil {
		return location.Position{}, fmt.Errorf("decode position: %w", err)
	}
	return pos, nil
}

// ==================== Fan-out ====================

type positionMessage struct {
	UserID string    `json:"user_id"`
	Point  geo.Point `json:"point"`
}

func encodePositionMessage(userID string, p geo.Point) ([]byte, error) {
	return json.Marshal(positionMessage{UserID: userID, Point: p})
}

func decodePositionMessage(payload string) (positionMessage, error) {
	var msg positionMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return positionMessage{}, err
	}
	if msg.UserID == "" || !msg.Point.Valid() {
		return positionMessage{}, location.ErrInvalidCoordinates
	}
	return msg, nil
}

// RedisFanout publishes accepted reports on a Redis channel. Every instance calls
// Start so a monitor sees reports handled by any instance.
type RedisFanout struct {
	rdb goredis.UniversalClient
}

var _ Fanout = (*RedisFanout)(nil)

func NewRedisFanout(rdb goredis.UniversalClient) *RedisFanout {
	return &RedisFanout{rdb: rdb}
}

// Publish implements Fanout.
func (f *RedisFanout) Publish(ctx context.Context, userID string, p geo.Point) error {
	payload, err := encodePositionMessage(userID, p)
	if err != nil {
		return fmt.Errorf("encode position message: %w", err)
	}
	return f.rdb.Publish(ctx, positionChannel, payload).Err()
}

// Start subscribes to the report channel and delivers messages to g until ctx is
// done. The subscription is confirmed before Start returns.
func (f *RedisFanout) Start(ctx context.Context, g *Gateway) error {
	pubsub := f.rdb.Subscribe(ctx, positionChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", positionChannel, err)
	}
	slog.Info("Position fan-out subscribed", "channel", positionChannel)

	go func() {
		defer pubsub.Close()
		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				pm, err := decodePositionMessage(msg.Payload)
				if err != nil {
					slog.Warn("Dropping malformed position message", "error", err)
					continue
				}
				g.Deliver(pm.UserID, pm.Point)
			}
		}
	}()
	return nil
}
