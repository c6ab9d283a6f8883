package location

import (
	"context"
	"sync"

	"github.com/faena-app/faena-backend/internal/domain/location"
)

// MemoryStore keeps positions in process. Used when no Redis is configured.
type MemoryStore struct {
	mu        sync.RWMutex
	positions map[string]location.Position
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{positions: make(map[string]location.Position)}
}

func (m *MemoryStore) Save(_ context.Context, userID string, pos location.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[userID] = pos
	return nil
}

func (m *MemoryStore) Load(_ context.Context, userID string) (location.Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pos, ok := m.positions[userID]
	if !ok {
		return location.Position{}, location.ErrPositionUnavailable
	}
	return pos, nil
}
