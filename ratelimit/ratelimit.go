// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package ratelimit implements the dispatcher's fixed-window rate limiter:
// max_requests admissions per window_seconds, tracked independently per
// client key (peer address, or API-key hash for HTTP).
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a fixed window of maxRequests per window, one
// independent window per key.
type Limiter struct {
	maxRequests int
	window      time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	windowStart time.Time
	count       int
	// tokens is a continuously-refilling bucket at the same nominal rate,
	// consulted both as a second admission gate (smooths bursts within a
	// window; can only make AllowAt stricter, never looser, so the
	// fixed-window upper bound still holds) and by Remaining for headroom
	// reporting.
	tokens *rate.Limiter
}

// New returns a Limiter admitting at most maxRequests per window, per key.
func New(maxRequests int, window time.Duration) *Limiter {
	return &Limiter{
		maxRequests: maxRequests,
		window:      window,
		buckets:     make(map[string]*bucket),
	}
}

// Allow reports whether a request for key is admitted under the current
// window, incrementing the window's counter if so.
func (l *Limiter) Allow(key string) bool {
	return l.AllowAt(key, time.Now())
}

// AllowAt is Allow with an explicit "now", for deterministic tests.
func (l *Limiter) AllowAt(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = l.newBucket(now)
		l.buckets[key] = b
	}
	if now.Sub(b.windowStart) >= l.window {
		b.windowStart = now
		b.count = 0
	}
	if b.count >= l.maxRequests {
		return false
	}
	if !b.tokens.AllowN(now, 1) {
		return false
	}
	b.count++
	return true
}

func (l *Limiter) newBucket(now time.Time) *bucket {
	perSecond := float64(l.maxRequests) / l.window.Seconds()
	return &bucket{
		windowStart: now,
		tokens:      rate.NewLimiter(rate.Limit(perSecond), l.maxRequests),
	}
}

// Remaining returns how many further requests key may make in its current
// window, and the time at which the window resets. It is not part of the
// admission decision itself.
func (l *Limiter) Remaining(key string) (remaining int, resetAt time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		return l.maxRequests, time.Time{}
	}
	windowRemaining := l.maxRequests - b.count
	if windowRemaining < 0 {
		windowRemaining = 0
	}
	if tokenRemaining := int(b.tokens.TokensAt(time.Now())); tokenRemaining < windowRemaining {
		windowRemaining = tokenRemaining
	}
	if windowRemaining < 0 {
		windowRemaining = 0
	}
	return windowRemaining, b.windowStart.Add(l.window)
}

// Forget drops a key's bucket, e.g. once a connection using it closes.
func (l *Limiter) Forget(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}
