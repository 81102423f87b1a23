package cachestor

import (
	"context"
	"sync"
	"time"

	"integral-solver/api"
)

type memoryEntry struct {
	resp    api.SolveResponse
	expires time.Time
}

type MemoryCache struct {
	data  map[string]memoryEntry
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	stats stats
}

var _ SolveCache = (*MemoryCache)(nil)

// NewMemory keeps entries for ttl; zero keeps them until Close.
func NewMemory(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		data: make(map[string]memoryEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (s *MemoryCache) Get(ctx context.Context, key string) (*api.SolveResponse, bool, error) {
	s.mu.RLock()
	entry, exists := s.data[key]
	s.mu.RUnlock()
	if !exists {
		s.stats.misses.Add(1)
		return nil, false, nil
	}
	if !entry.expires.IsZero() && s.now().After(entry.expires) {
		s.mu.Lock()
		delete(s.data, key)
		s.mu.Unlock()
		s.stats.misses.Add(1)
		return nil, false, nil
	}
	s.stats.hits.Add(1)
	resp := entry.resp
	resp.Steps = append([]string(nil), entry.resp.Steps...)
	return &resp, true, nil
}

func (s *MemoryCache) Set(ctx context.Context, key string, resp *api.SolveResponse) error {
	entry := memoryEntry{resp: *resp}
	entry.resp.Steps = append([]string(nil), resp.Steps...)
	if s.ttl > 0 {
		entry.expires = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = entry
	s.stats.sets.Add(1)
	return nil
}

func (s *MemoryCache) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryCache) Purge(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]memoryEntry)
	return nil
}

func (s *MemoryCache) Ping(ctx context.Context) error { return nil }

func (s *MemoryCache) Stats() StatsSnapshot { return s.stats.snapshot() }

func (s *MemoryCache) Backend() string { return "memory" }

func (s *MemoryCache) Close() error { return s.Purge(context.Background()) }
