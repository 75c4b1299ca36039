// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package pool implements a fixed-size TCP connection pool: a slot array
// of [Conn] handed out by GetConnection and returned by ReturnConnection,
// backed by an idle reaper that closes connections past idle_timeout once
// the pool is above its minimum size.
package pool

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/coremcp/mcpd/internal/sockutil"
	"github.com/coremcp/mcpd/internal/syncx"
)

// ErrTimeout is returned by GetConnection when no connection becomes
// available before the deadline.
var ErrTimeout = errors.New("pool: timed out waiting for a connection")

// ErrClosed is returned by GetConnection once Shutdown has been called.
var ErrClosed = errors.New("pool: shut down")

// Config configures a Pool's target endpoint and sizing/timeouts.
type Config struct {
	Host                string
	Port                string
	MinSize             int
	MaxSize             int
	ConnectTimeout      time.Duration
	IdleTimeout         time.Duration
	HealthCheckInterval time.Duration
}

// Conn is a pooled connection. Callers obtain one from GetConnection and
// must give it back via ReturnConnection.
type Conn struct {
	netConn         net.Conn
	inUse           bool
	valid           bool
	reserved        bool
	lastUsedAt      time.Time
	healthCheckedAt time.Time
}

// NetConn returns the underlying network connection.
func (c *Conn) NetConn() net.Conn { return c.netConn }

// Pool is a fixed-size array of pooled connections to one endpoint.
type Pool struct {
	cfg  Config
	mu   sync.Mutex
	cond *syncx.Cond

	slots      []*Conn
	inUseCount int
	closing    bool

	stopReaper chan struct{}
	reaperDone chan struct{}
}

// New creates a Pool and starts its idle reaper. It does not eagerly dial
// MinSize connections; slots fill lazily on first use, matching the
// get_connection algorithm below.
func New(cfg Config) *Pool {
	if cfg.MaxSize < 1 {
		cfg.MaxSize = 1
	}
	if cfg.MinSize > cfg.MaxSize {
		cfg.MinSize = cfg.MaxSize
	}
	if cfg.HealthCheckInterval <= 0 {
		cfg.HealthCheckInterval = 30 * time.Second
	}
	p := &Pool{
		cfg:        cfg,
		slots:      make([]*Conn, cfg.MaxSize),
		stopReaper: make(chan struct{}),
		reaperDone: make(chan struct{}),
	}
	p.cond = syncx.NewCond(&p.mu)
	go p.reapLoop()
	return p
}

// GetConnection returns an idle, healthy connection, dialing a new one if
// the pool has capacity, or blocks up to timeout for one to free up.
func (p *Pool) GetConnection(ctx context.Context, timeout time.Duration) (*Conn, error) {
	deadline := time.Now().Add(timeout)

	p.mu.Lock()
	for {
		if p.closing {
			p.mu.Unlock()
			return nil, ErrClosed
		}
		if c := p.findIdleLocked(); c != nil {
			c.inUse = true
			p.inUseCount++
			p.mu.Unlock()
			return c, nil
		}
		if idx, ok := p.firstEmptySlotLocked(); ok {
			placeholder := &Conn{inUse: true, reserved: true}
			p.slots[idx] = placeholder
			p.inUseCount++
			p.mu.Unlock()

			remaining := time.Until(deadline)
			connectTimeout := p.cfg.ConnectTimeout
			if connectTimeout <= 0 || remaining < connectTimeout {
				connectTimeout = remaining
			}
			netConn, err := sockutil.DialTimeout("tcp", net.JoinHostPort(p.cfg.Host, p.cfg.Port), connectTimeout)

			p.mu.Lock()
			if err != nil {
				p.slots[idx] = nil
				p.inUseCount--
				p.cond.Broadcast()
				p.mu.Unlock()
				return nil, err
			}
			now := time.Now()
			c := &Conn{netConn: netConn, inUse: true, valid: true, lastUsedAt: now, healthCheckedAt: now}
			p.slots[idx] = c
			p.mu.Unlock()
			return c, nil
		}
		if !p.cond.WaitContext(ctx, deadline) {
			p.mu.Unlock()
			return nil, ErrTimeout
		}
	}
}

func (p *Pool) findIdleLocked() *Conn {
	for _, c := range p.slots {
		if c != nil && c.valid && !c.inUse {
			return c
		}
	}
	return nil
}

func (p *Pool) firstEmptySlotLocked() (int, bool) {
	if p.inUseCount+p.idleCountLocked() >= p.cfg.MaxSize {
		return 0, false
	}
	for i, c := range p.slots {
		if c == nil {
			return i, true
		}
	}
	return 0, false
}

func (p *Pool) idleCountLocked() int {
	n := 0
	for _, c := range p.slots {
		if c != nil && c.valid && !c.inUse {
			n++
		}
	}
	return n
}

// ReturnConnection gives a connection back to the pool. If ok is false,
// or the pool is closing, the connection is closed and its slot freed;
// otherwise it is marked idle and a waiter (if any) is signaled.
func (p *Pool) ReturnConnection(c *Conn, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !ok || p.closing {
		c.netConn.Close()
		p.removeSlotLocked(c)
		p.inUseCount--
		p.cond.Signal()
		return
	}
	c.inUse = false
	c.lastUsedAt = time.Now()
	p.inUseCount--
	p.cond.Signal()
}

func (p *Pool) removeSlotLocked(c *Conn) {
	for i, s := range p.slots {
		if s == c {
			p.slots[i] = nil
			return
		}
	}
}

func (p *Pool) reapLoop() {
	ticker := time.NewTicker(p.cfg.HealthCheckInterval)
	defer ticker.Stop()
	defer close(p.reaperDone)
	for {
		select {
		case <-p.stopReaper:
			return
		case <-ticker.C:
		}
		if p.reapOnce() {
			return
		}
	}
}

// reapOnce closes idle connections past IdleTimeout while the pool
// remains above MinSize, then reports whether the pool has since closed.
func (p *Pool) reapOnce() (closed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closing {
		return true
	}
	now := time.Now()
	for i, c := range p.slots {
		if c == nil || c.inUse || !c.valid {
			continue
		}
		total := p.inUseCount + p.idleCountLocked()
		if total <= p.cfg.MinSize {
			break
		}
		if p.cfg.IdleTimeout > 0 && now.Sub(c.lastUsedAt) > p.cfg.IdleTimeout {
			c.netConn.Close()
			p.slots[i] = nil
		}
	}
	return false
}

// Shutdown marks the pool closing, wakes every waiter so they observe
// ErrClosed, waits for the reaper to exit, then closes any remaining
// connections.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closing {
		p.mu.Unlock()
		return
	}
	p.closing = true
	p.cond.Broadcast()
	p.mu.Unlock()

	close(p.stopReaper)
	<-p.reaperDone

	p.mu.Lock()
	defer p.mu.Unlock()
	for i, c := range p.slots {
		if c != nil && c.netConn != nil {
			c.netConn.Close()
		}
		p.slots[i] = nil
	}
}

// Stats reports the pool's current occupancy.
type Stats struct {
	InUse int
	Idle  int
	Max   int
}

// Stats returns a snapshot of the pool's occupancy.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{InUse: p.inUseCount, Idle: p.idleCountLocked(), Max: p.cfg.MaxSize}
}
