package ratelimit

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Limiter spaces operations at least 1/rps apart, optionally stretching each
// gap by up to jitter*interval. Safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	jitter   float64 // 0.0 to 1.0
	next     time.Time
}

// NewLimiter creates a limiter for rps operations per second. rps <= 0 never blocks.
func NewLimiter(rps float64, jitter float64) *Limiter {
	if rps <= 0 {
		return &Limiter{}
	}
	return &Limiter{
		interval: time.Duration(float64(time.Second) / rps),
		jitter:   min(max(jitter, 0), 1),
	}
}

// reserve claims the next slot and returns how long the caller must wait for it.
func (l *Limiter) reserve(now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot := l.next
	if slot.Before(now) {
		slot = now
	}
	gap := l.interval
	if l.jitter > 0 {
		gap += time.Duration(float64(l.interval) * l.jitter * rand.Float64())
	}
	l.next = slot.Add(gap)
	return slot.Sub(now)
}

// Wait blocks until the caller's slot arrives or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.interval == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	delay := l.reserve(time.Now())
	if delay <= 0 {
		return nil
	}

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Group holds one Limiter per key, so that each upstream platform is paced
// independently and a slow schedule on one never delays another.
type Group struct {
	mu       sync.Mutex
	rps      float64
	jitter   float64
	limiters map[string]*Limiter
}

// NewGroup creates a Group whose limiters share the given rate and jitter.
func NewGroup(rps, jitter float64) *Group {
	return &Group{rps: rps, jitter: jitter, limiters: make(map[string]*Limiter)}
}

// For returns the limiter for key, creating it on first use.
func (g *Group) For(key string) *Limiter {
	if g == nil {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	l, ok := g.limiters[key]
	if !ok {
		l = NewLimiter(g.rps, g.jitter)
		g.limiters[key] = l
	}
	return l
}
