// Package ratelimit gates new connection attempts per remote address.
// Established connections are never affected by the limiter.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// PoolConfig describes one token-bucket pool. A bucket holds Points tokens
// refilled over Window; exhausting it blocks the address for Block before
// attempts are charged against a bucket again.
type PoolConfig struct {
	Points int
	Window time.Duration
	Block  time.Duration
}

type pool struct {
	cfg      PoolConfig
	limiters map[string]*rate.Limiter
	blocked  map[string]time.Time
}

func newPool(cfg PoolConfig) pool {
	if cfg.Points <= 0 {
		cfg.Points = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return pool{
		cfg:      cfg,
		limiters: make(map[string]*rate.Limiter),
		blocked:  make(map[string]time.Time),
	}
}

func (p *pool) allow(addr string, now time.Time) bool {
	if until, ok := p.blocked[addr]; ok {
		if now.Before(until) {
			return false
		}
		delete(p.blocked, addr)
	}

	lim, ok := p.limiters[addr]
	if !ok {
		refill := rate.Limit(float64(p.cfg.Points) / p.cfg.Window.Seconds())
		lim = rate.NewLimiter(refill, p.cfg.Points)
		p.limiters[addr] = lim
	}

	if lim.AllowN(now, 1) {
		return true
	}
	p.blocked[addr] = now.Add(p.cfg.Block)
	return false
}

// Limiter holds two independent pools. The pool is chosen once per attempt
// from the prospective authenticated status; a connection that later fails
// token verification has already been charged against the chosen pool.
type Limiter struct {
	mu   sync.Mutex
	anon pool
	auth pool
	now  func() time.Time
}

// New creates a limiter with the given anonymous and authenticated pools.
func New(anon, auth PoolConfig) *Limiter {
	return &Limiter{
		anon: newPool(anon),
		auth: newPool(auth),
		now:  time.Now,
	}
}

// Allow charges one connection attempt from addr against the selected pool
// and reports whether the attempt may proceed.
func (l *Limiter) Allow(addr string, authenticated bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := &l.anon
	if authenticated {
		p = &l.auth
	}
	return p.allow(addr, l.now())
}
