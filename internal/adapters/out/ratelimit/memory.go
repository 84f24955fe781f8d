// Package ratelimit throttles login attempts per key.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ekingoksan/docker-cmd-studio/internal/boundaries/out"
)

var _ out.RateLimiter = (*MemoryStore)(nil)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryStore keeps one token bucket per key in memory. Buckets idle for
// longer than the idle window are dropped by Sweep.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	rps     float64
	burst   int
	idle    time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// NewMemoryStore creates a store allowing rps events per second per key
// with the given burst.
func NewMemoryStore(rps float64, burst int, log zerolog.Logger) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*entry),
		rps:     rps,
		burst:   burst,
		idle:    15 * time.Minute,
		now:     time.Now,
		log:     log.With().Str("adapter", "ratelimit").Logger(),
	}
}

// Allow reports whether one more event for key is allowed now.
func (s *MemoryStore) Allow(ctx context.Context, key string) bool {
	return s.AllowN(ctx, key, 1)
}

// AllowN reports whether n events for key are allowed now.
func (s *MemoryStore) AllowN(_ context.Context, key string, n int) bool {
	now := s.now()

	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(rate.Limit(s.rps), s.burst)}
		s.entries[key] = e
	}
	e.lastSeen = now
	s.mu.Unlock()

	allowed := e.limiter.AllowN(now, n)
	if !allowed {
		s.log.Debug().Str("key", key).Int("n", n).Msg("rate limit exceeded")
	}
	return allowed
}

// Sweep drops buckets not used within the idle window and returns how many
// were removed.
func (s *MemoryStore) Sweep() int {
	cutoff := s.now().Add(-s.idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Run sweeps idle buckets every interval until ctx is done.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.log.Debug().Int("removed", n).Msg("swept idle rate limiters")
			}
		}
	}
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
