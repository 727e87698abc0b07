// Package ratelimit limits requests per client and endpoint with token buckets.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Info describes the limit applied to one request.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

type entry struct {
	limiter    *rate.Limiter
	burst      int
	lastAccess time.Time
}

// Limiter keeps one token bucket per client, endpoint and method.
type Limiter struct {
	config      *Config
	mu          sync.Mutex
	entries     map[string]*entry
	cleanupStop chan struct{}
	stopOnce    sync.Once
	now         func() time.Time
}

// NewLimiter creates a limiter. A nil config uses DefaultConfig(10, 20).
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = DefaultConfig(10, 20)
	}

	l := &Limiter{
		config:  config,
		entries: make(map[string]*entry),
		now:     time.Now,
	}

	if config.Enabled && config.CleanupInterval > 0 {
		l.cleanupStop = make(chan struct{})
		go l.cleanup(config.CleanupInterval)
	}
	return l
}

// Allow consumes a token for clientID on endpoint and reports whether the request may proceed.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	limit, burst, perSecond := l.limitFor(endpoint, method)
	if limit <= 0 {
		return true, Info{Allowed: true}
	}

	key := clientID + ":" + endpoint + ":" + method
	now := l.now()
	e := l.getEntry(key, perSecond, burst, now)

	allowed := e.limiter.AllowN(now, 1)
	tokens := e.limiter.TokensAt(now)

	info := Info{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: max(0, int(math.Floor(tokens))),
		ResetTime: now.Add(untilFull(tokens, float64(burst), perSecond)),
	}
	if !allowed {
		info.RetryAfter = untilFull(tokens, math.Min(1, float64(burst)), perSecond)
	}
	return allowed, info
}

// limitFor resolves the per-window limit, bucket size and refill rate for a request.
func (l *Limiter) limitFor(endpoint, method string) (limit, burst int, perSecond float64) {
	if ec := MatchEndpoint(endpoint, method, l.config.EndpointConfigs); ec != nil {
		if ec.Limit <= 0 || ec.Window <= 0 {
			return 0, 0, 0
		}
		burst = ec.Burst
		if burst <= 0 {
			burst = ec.Limit
		}
		return ec.Limit, burst, float64(ec.Limit) / ec.Window.Seconds()
	}

	perSecond = l.config.DefaultRate
	burst = l.config.DefaultBurst
	if burst <= 0 {
		burst = int(math.Ceil(perSecond))
	}
	return burst, burst, perSecond
}

func (l *Limiter) getEntry(key string, perSecond float64, burst int, now time.Time) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(rate.Limit(perSecond), burst), burst: burst}
		l.entries[key] = e
	}
	e.lastAccess = now
	return e
}

// untilFull returns how long the bucket takes to refill from tokens to target.
func untilFull(tokens, target, perSecond float64) time.Duration {
	if tokens >= target || perSecond <= 0 {
		return 0
	}
	return time.Duration((target - tokens) / perSecond * float64(time.Second))
}

func (l *Limiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanupIdle()
		case <-l.cleanupStop:
			return
		}
	}
}

// cleanupIdle drops limiters that have not been used within IdleTTL.
func (l *Limiter) cleanupIdle() {
	ttl := l.config.IdleTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	cutoff := l.now().Add(-ttl)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.entries {
		if e.lastAccess.Before(cutoff) {
			delete(l.entries, key)
		}
	}
}

// size returns the number of tracked buckets.
func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupStop != nil {
			close(l.cleanupStop)
		}
	})
}
