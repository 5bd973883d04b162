package provider

import (
	"sync"
	"time"
)

// Limit is a fixed-window request budget.
type Limit struct {
	MaxRequests int           `json:"maxRequests" yaml:"maxRequests"`
	Window      time.Duration `json:"window" yaml:"window"`
}

// DefaultLimits mirrors the published quotas of the upstream APIs.
func DefaultLimits() map[ID]Limit {
	return map[ID]Limit{
		Naver:   {MaxRequests: 20, Window: time.Minute},
		NewsAPI: {MaxRequests: 800, Window: time.Hour},
		OpenAI:  {MaxRequests: 50, Window: time.Minute},
		Skywork: {MaxRequests: 80, Window: time.Minute},
	}
}

// RateLimitState is a point-in-time copy of one provider's window.
type RateLimitState struct {
	Requests    int       `json:"requests"`
	ResetAt     time.Time `json:"resetTime"`
	MaxRequests int       `json:"maxRequests"`
}

type window struct {
	limit   Limit
	enabled bool
	count   int
	resetAt time.Time
}

// RateLimiter admits calls per provider inside a fixed window.
// Providers without a configured limit are always admitted.
type RateLimiter struct {
	mu      sync.Mutex
	now     func() time.Time
	windows [count]window
}

// RateLimiterOption customises a RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithLimiterClock replaces the wall clock (tests).
func WithLimiterClock(now func() time.Time) RateLimiterOption {
	return func(r *RateLimiter) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRateLimiter builds a limiter; the first window of each provider starts now.
func NewRateLimiter(limits map[ID]Limit, opts ...RateLimiterOption) *RateLimiter {
	r := &RateLimiter{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	start := r.now()
	for id, limit := range limits {
		if !id.valid() || limit.MaxRequests <= 0 || limit.Window <= 0 {
			continue
		}
		r.windows[id] = window{
			limit:   limit,
			enabled: true,
			resetAt: start.Add(limit.Window),
		}
	}
	return r
}

// Allow consumes one request from the provider's window. It returns false,
// without consuming, when the window is exhausted.
func (r *RateLimiter) Allow(id ID) bool {
	if !id.valid() {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	w := &r.windows[id]
	if !w.enabled {
		return true
	}

	now := r.now()
	if now.After(w.resetAt) {
		w.count = 0
		w.resetAt = now.Add(w.limit.Window)
	}
	if w.count >= w.limit.MaxRequests {
		return false
	}
	w.count++
	return true
}

// Snapshot reports the limited providers keyed by wire name.
func (r *RateLimiter) Snapshot() map[string]RateLimitState {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]RateLimitState)
	for id := ID(0); id < count; id++ {
		w := r.windows[id]
		if !w.enabled {
			continue
		}
		out[id.String()] = RateLimitState{
			Requests:    w.count,
			ResetAt:     w.resetAt,
			MaxRequests: w.limit.MaxRequests,
		}
	}
	return out
}
