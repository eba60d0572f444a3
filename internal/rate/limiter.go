// Package rate throttles outbound gateway calls per merchant.
package rate

import (
	"context"
	"sync"

	xrate "golang.org/x/time/rate"
)

// Config defines the throttle applied to one merchant's calls.
// RequestsPerSecond <= 0 disables throttling.
type Config struct {
	RequestsPerSecond int
	Burst             int
}

// Limiter is a token bucket for a single merchant.
type Limiter struct {
	bucket *xrate.Limiter
}

// New creates a new limiter.
func New(cfg Config) *Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return &Limiter{bucket: xrate.NewLimiter(xrate.Inf, 0)}
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &Limiter{bucket: xrate.NewLimiter(xrate.Limit(cfg.RequestsPerSecond), burst)}
}

// Allow reports whether a call may proceed now, consuming a token if so.
func (l *Limiter) Allow() bool {
	return l.bucket.Allow()
}

// Wait blocks until a token becomes available or context is canceled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.bucket.Wait(ctx)
}

// Manager holds per-merchant limiters.
type Manager struct {
	mu       sync.RWMutex
	limiters map[string]*Limiter
	defaults Config
}

func NewManager(defaults Config) *Manager {
	return &Manager{
		limiters: make(map[string]*Limiter),
		defaults: defaults,
	}
}

func (m *Manager) GetLimiter(merchantID string) *Limiter {
	m.mu.RLock()
	if lim, ok := m.limiters[merchantID]; ok {
		m.mu.RUnlock()
		return lim
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if lim, ok := m.limiters[merchantID]; ok {
		return lim
	}
	lim := New(m.defaults)
	m.limiters[merchantID] = lim
	return lim
}

// Wait ensures rate limit compliance for a given merchant.
func (m *Manager) Wait(ctx context.Context, merchantID string) error {
	return m.GetLimiter(merchantID).Wait(ctx)
}
