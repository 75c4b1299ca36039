// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package syncx adds deadline-aware waiting on top of the standard
// sync primitives, for the connection pool and client correlator, which
// both need to block a caller until a condition becomes true or a deadline
// passes.
package syncx

import (
	"context"
	"sync"
	"time"
)

// Cond wraps sync.Cond with a Go channel so that waiters can also be woken
// by a context deadline or cancellation, which sync.Cond cannot do on its
// own (Wait has no timeout parameter).
type Cond struct {
	L *sync.Mutex
	c *sync.Cond

	mu   sync.Mutex // guards gen and subs
	gen  uint64     // bumped on every Broadcast/Signal
	subs map[uint64]chan struct{}
}

// NewCond returns a Cond guarded by l.
func NewCond(l *sync.Mutex) *Cond {
	c := &Cond{L: l, subs: make(map[uint64]chan struct{})}
	c.c = sync.NewCond(l)
	return c
}

// Broadcast wakes all waiters. L must be held by the caller.
func (c *Cond) Broadcast() {
	c.c.Broadcast()
	c.wakeSubs()
}

// Signal wakes at most one Wait-style waiter of the underlying sync.Cond,
// but every goroutine blocked in WaitContext, since each WaitContext call
// is woken through its own channel. L must be held by the caller.
func (c *Cond) Signal() {
	c.c.Signal()
	c.wakeSubs()
}

func (c *Cond) wakeSubs() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
	c.gen++
}

// WaitContext blocks until Broadcast/Signal is called, ctx is done, or
// deadline (if non-zero) passes, whichever comes first. L must be held on
// entry and is reacquired before WaitContext returns, matching sync.Cond's
// Wait contract. It reports which of these woke it: true if Broadcast or
// Signal fired, false if ctx expired or the deadline passed.
func (c *Cond) WaitContext(ctx context.Context, deadline time.Time) bool {
	ch := make(chan struct{})
	c.mu.Lock()
	id := c.gen
	for {
		if _, dup := c.subs[id]; !dup {
			break
		}
		id++
	}
	c.subs[id] = ch
	c.mu.Unlock()

	var timer *time.Timer
	var timerC <-chan time.Time
	if !deadline.IsZero() {
		timer = time.NewTimer(time.Until(deadline))
		timerC = timer.C
		defer timer.Stop()
	}

	c.L.Unlock()
	defer c.L.Lock()

	select {
	case <-ch:
		return true
	case <-ctx.Done():
		c.removeSub(id)
		return false
	case <-timerC:
		c.removeSub(id)
		return false
	}
}

func (c *Cond) removeSub(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subs, id)
}
