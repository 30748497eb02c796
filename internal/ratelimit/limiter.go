// Package ratelimit implements the in-process abuse throttle guarding the
// credential endpoints. Keys combine a purpose tag with one or more request
// dimensions (account code, client IP, or both) so the same limiter instance
// can throttle each dimension independently. State lives in memory; a fresh
// process has no memory of prior abuse.
package ratelimit

import (
	"math"
	"strings"
	"sync"
	"time"
)

// Config bounds attempts for one endpoint class. A caller gets MaxAttempts
// tries per Window; exceeding that imposes a Block cooldown during which
// every attempt is rejected regardless of the window counter.
type Config struct {
	Window      time.Duration
	MaxAttempts int
	Block       time.Duration
}

// Result reports the outcome of a consumption attempt. RetryAfter is a hint
// in whole seconds and is only meaningful when Allowed is false.
type Result struct {
	Allowed    bool
	RetryAfter int
}

type entry struct {
	windowStart  time.Time
	attempts     int
	blockedUntil time.Time
	lastSeen     time.Time
}

// Limiter tracks attempt counters per composite key. All access to the key
// map happens under a single mutex so two concurrent attempts can never both
// observe "under limit" and slip past the threshold together.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	cleanup *time.Ticker
	stopped chan struct{}
	now     func() time.Time
}

// New returns a Limiter with a background sweeper that drops entries not
// touched for an hour. Call Stop when the limiter is no longer needed.
func New() *Limiter {
	l := &Limiter{
		entries: make(map[string]*entry),
		cleanup: time.NewTicker(5 * time.Minute),
		stopped: make(chan struct{}),
		now:     time.Now,
	}
	go l.sweep()
	return l
}

// Key builds a composite limiter key from a purpose tag and one or more
// identifying dimensions, e.g. Key("login", code, ip).
func Key(purpose string, dims ...string) string {
	return purpose + ":" + strings.Join(dims, ":")
}

// Consume records one attempt against key and reports whether it is allowed
// under cfg. While a block is in force every attempt is rejected with the
// remaining cooldown as the retry hint.
func (l *Limiter) Consume(key string, cfg Config) Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.consumeLocked(key, cfg)
}

// ConsumeAll records one attempt against every key and allows the caller
// only if all of them allow it. Every key is consumed even when an earlier
// one rejects, so the attempt counts on each dimension. The retry hint is
// the largest among the rejecting keys.
func (l *Limiter) ConsumeAll(cfg Config, keys ...string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := Result{Allowed: true}
	for _, k := range keys {
		r := l.consumeLocked(k, cfg)
		if !r.Allowed {
			out.Allowed = false
			if r.RetryAfter > out.RetryAfter {
				out.RetryAfter = r.RetryAfter
			}
		}
	}
	return out
}

// Reset forgets the given keys entirely. A successful, intended use of the
// guarded operation calls this so later legitimate attempts start from a
// fresh window.
func (l *Limiter) Reset(keys ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, k := range keys {
		delete(l.entries, k)
	}
}

// Stop terminates the background sweeper.
func (l *Limiter) Stop() {
	l.cleanup.Stop()
	close(l.stopped)
}

func (l *Limiter) consumeLocked(key string, cfg Config) Result {
	now := l.now()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{windowStart: now}
		l.entries[key] = e
	}
	e.lastSeen = now

	if now.Before(e.blockedUntil) {
		return Result{RetryAfter: ceilSeconds(e.blockedUntil.Sub(now))}
	}
	if now.Sub(e.windowStart) >= cfg.Window {
		e.windowStart = now
		e.attempts = 0
	}
	e.attempts++
	if e.attempts > cfg.MaxAttempts {
		e.blockedUntil = now.Add(cfg.Block)
		return Result{RetryAfter: ceilSeconds(cfg.Block)}
	}
	return Result{Allowed: true}
}

func (l *Limiter) sweep() {
	for {
		select {
		case <-l.stopped:
			return
		case <-l.cleanup.C:
			l.mu.Lock()
			stale := l.now().Add(-time.Hour)
			for k, e := range l.entries {
				if e.lastSeen.Before(stale) && e.blockedUntil.Before(l.now()) {
					delete(l.entries, k)
				}
			}
			l.mu.Unlock()
		}
	}
}

func ceilSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 0 {
		return 0
	}
	return s
}
