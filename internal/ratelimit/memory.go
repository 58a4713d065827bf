package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps window counters in process memory behind a mutex.
// State is process-wide and vanishes on restart; deployments that need
// shared or durable counters use the Redis store instead.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]*memoryEntry{}}
}

// Incr increments the counter for key, creating it with a window-long
// lifetime on first sight.  Expired entries for other windows are swept
// opportunistically to keep the map from growing without bound.
func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || now.After(e.expiresAt) {
		e = &memoryEntry{expiresAt: now.Add(window)}
		s.entries[key] = e
	}
	e.count++

	if len(s.entries) > 1024 {
		for k, v := range s.entries {
			if now.After(v.expiresAt) {
				delete(s.entries, k)
			}
		}
	}
	return e.count, nil
}
