// Package cachestor keeps solve responses keyed by normalized request.
package cachestor

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"integral-solver/api"
	"integral-solver/solver"
)

type SolveCache interface {
	Get(ctx context.Context, key string) (*api.SolveResponse, bool, error)
	Set(ctx context.Context, key string, resp *api.SolveResponse) error
	Purge(ctx context.Context) error
	Ping(ctx context.Context) error
	Stats() StatsSnapshot
	Backend() string
	Close() error
}

type Config struct {
	Backend   string
	RedisAddr string
	Prefix    string
	TTL       time.Duration
}

// New builds the backend named in cfg. An empty or "none" backend disables
// caching.
func New(ctx context.Context, cfg Config) (SolveCache, error) {
	switch cfg.Backend {
	case "", "none":
		return Nop{}, nil
	case "memory":
		return NewMemory(cfg.TTL), nil
	case "redis":
		c, err := NewRedis(ctx, cfg.RedisAddr, cfg.Prefix, cfg.TTL)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}

// Key identifies a request by the canonical form of its parsed expression,
// so "x*x" and "x x" share an entry while "xx" does not. Text that does not
// parse is keyed by itself, trimmed; canonical forms always parse, so the
// two never collide.
func Key(req api.SolveRequest) string {
	v := req.Variable
	if v == "" {
		v = solver.DefaultVariable
	}
	expr := strings.TrimSpace(req.Expression)
	if e, err := solver.Parse(expr); err == nil {
		expr = e.String()
	}
	return v + "|" + expr
}

type stats struct {
	hits   atomic.Uint64
	misses atomic.Uint64
	sets   atomic.Uint64
	errors atomic.Uint64
}

type StatsSnapshot struct {
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	Sets    uint64  `json:"sets"`
	Errors  uint64  `json:"errors"`
	HitRate float64 `json:"hit_rate"`
}

func (s *stats) snapshot() StatsSnapshot {
	hits, misses := s.hits.Load(), s.misses.Load()
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total) * 100
	}
	return StatsSnapshot{
		Hits:    hits,
		Misses:  misses,
		Sets:    s.sets.Load(),
		Errors:  s.errors.Load(),
		HitRate: rate,
	}
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) (*api.SolveResponse, bool, error) { return nil, false, nil }

func (Nop) Set(context.Context, string, *api.SolveResponse) error { return nil }

func (Nop) Purge(context.Context) error { return nil }

func (Nop) Ping(context.Context) error { return nil }

func (Nop) Stats() StatsSnapshot { return StatsSnapshot{} }

func (Nop) Backend() string { return "none" }

func (Nop) Close() error { return nil }
