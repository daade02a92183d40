package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"Manifold/internal/domain/models"
	"Manifold/pkg/cache"
)

// CacheSnapshotStore keeps monitor state in a cache.Service. The cache must
// be owned by the monitor: a shared LRU may evict state and re-fire alerts.
// Backed by RedisCache it survives restarts.
type CacheSnapshotStore struct {
	cache cache.Service
	ttl   time.Duration
}

// NewCacheSnapshotStore creates a store; ttl 0 keeps entries until deleted.
func NewCacheSnapshotStore(c cache.Service, ttl time.Duration) *CacheSnapshotStore {
	return &CacheSnapshotStore{cache: c, ttl: ttl}
}

func snapshotKey(key models.MonitorKey) string {
	return cache.GenerateKeyWithParams("monitor", key.Symbol, key.Horizon)
}

func (s *CacheSnapshotStore) Load(ctx context.Context, key models.MonitorKey) (*models.MonitorState, bool, error) {
	var state models.MonitorState
	if err := s.cache.Get(ctx, snapshotKey(key), &state); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load state %s: %w", key, err)
	}
	return &state, true, nil
}

func (s *CacheSnapshotStore) Save(ctx context.Context, key models.MonitorKey, state *models.MonitorState) error {
	if state == nil {
		return fmt.Errorf("save state %s: nil state", key)
	}
	if err := s.cache.Set(ctx, snapshotKey(key), state, s.ttl); err != nil {
		return fmt.Errorf("save state %s: %w", key, err)
	}
	return nil
}

func (s *CacheSnapshotStore) Delete(ctx context.Context, key models.MonitorKey) error {
	return s.cache.Delete(ctx, snapshotKey(key))
}

// MemorySnapshotStore keeps monitor state in a process-local map. Entries
// live until deleted; nothing else shares or evicts them.
type MemorySnapshotStore struct {
	mu     sync.RWMutex
	states map[models.MonitorKey]models.MonitorState
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{states: make(map[models.MonitorKey]models.MonitorState)}
}

func (s *MemorySnapshotStore) Load(_ context.Context, key models.MonitorKey) (*models.MonitorState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[key]
	if !ok {
		return nil, false, nil
	}
	return &state, true, nil
}

func (s *MemorySnapshotStore) Save(_ context.Context, key models.MonitorKey, state *models.MonitorState) error {
	if state == nil {
		return fmt.Errorf("save state %s: nil state", key)
	}
	s.mu.Lock()
	s.states[key] = *state
	s.mu.Unlock()
	return nil
}

func (s *MemorySnapshotStore) Delete(_ context.Context, key models.MonitorKey) error {
	s.mu.Lock()
	delete(s.states, key)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored keys.
func (s *MemorySnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}
