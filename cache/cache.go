// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package cache implements the server's resource cache: an open-addressed,
// lock-striped hash table with LRU-K (K=2) eviction and TTL expiry, storing
// deep copies of [content.Item] so that Get never hands out an alias into
// cache storage.
//
// Open question resolved here (see the spec's note that using one hash for
// both the table index and the lock-stripe index risks correlated,
// non-independent stripes during linear probing): this implementation
// partitions the table into L independently-locked stripes up front and
// computes a stripe hash and an in-stripe probe hash separately, so a
// single stripe's lock covers its entire probe sequence — probing never
// crosses a stripe boundary.
package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/coremcp/mcpd/content"
)

// K is the number of most-recent accesses the eviction policy considers.
const K = 2

// DefaultStripes is the number of independently-locked stripes (L in the
// spec).
const DefaultStripes = 16

type entry struct {
	uri         string
	valid       bool
	content     []content.Item
	expiry      time.Time // zero value means "Never"
	history     [K]time.Time
	accessCount uint8
}

func (e *entry) permanent() bool { return e.expiry.IsZero() }

func (e *entry) expired(now time.Time) bool {
	return !e.permanent() && now.After(e.expiry)
}

type stripe struct {
	mu    sync.Mutex
	slots []entry
}

// Cache is the lock-striped LRU-K resource cache.
type Cache struct {
	defaultTTL     time.Duration
	stripes        []*stripe
	slotsPerStripe int
	count          atomic.Int64 // advisory, updated outside the stripe lock that changed it; exact after PruneExpired
}

// New returns a Cache whose table holds at least capacity entries, spread
// evenly across DefaultStripes independently-locked stripes.
func New(capacity int, defaultTTL time.Duration) *Cache {
	return NewStriped(capacity, DefaultStripes, defaultTTL)
}

// NewStriped is New with an explicit stripe count.
func NewStriped(capacity, stripes int, defaultTTL time.Duration) *Cache {
	if stripes < 1 {
		stripes = 1
	}
	slotsPerStripe := (capacity + stripes - 1) / stripes
	if slotsPerStripe < 1 {
		slotsPerStripe = 1
	}
	c := &Cache{
		defaultTTL:     defaultTTL,
		slotsPerStripe: slotsPerStripe,
		stripes:        make([]*stripe, stripes),
	}
	for i := range c.stripes {
		c.stripes[i] = &stripe{slots: make([]entry, slotsPerStripe)}
	}
	return c
}

// Capacity returns the table's actual capacity (may be rounded up from the
// value passed to New to divide evenly across stripes).
func (c *Cache) Capacity() int { return c.slotsPerStripe * len(c.stripes) }

func (c *Cache) stripeFor(uri string) *stripe {
	return c.stripes[fnv1a(uri)%uint64(len(c.stripes))]
}

func (c *Cache) localIndex(uri string) int {
	return int(djb2(uri) % uint64(c.slotsPerStripe))
}

// Get looks up uri, returning a deep copy of its content. A stale (expired)
// entry is invalidated in place and reported as a miss.
func (c *Cache) Get(uri string) ([]content.Item, bool) {
	s := c.stripeFor(uri)
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := c.probeFind(s, uri)
	if !ok {
		return nil, false
	}
	e := &s.slots[idx]
	now := time.Now()
	if e.expired(now) {
		*e = entry{}
		return nil, false
	}
	e.history[1] = e.history[0]
	e.history[0] = now
	if int(e.accessCount) < K {
		e.accessCount++
	}
	return content.CloneItems(e.content), true
}

// Put inserts or overwrites uri's entry. ttl == 0 means use the cache's
// default TTL; ttl < 0 means the entry never expires, as with PutNever.
func (c *Cache) Put(uri string, items []content.Item, ttl time.Duration) {
	s := c.stripeFor(uri)
	s.mu.Lock()
	defer s.mu.Unlock()
	c.putLocked(s, uri, items, c.expiryFor(ttl))
}

// PutNever inserts uri's entry with no expiry.
func (c *Cache) PutNever(uri string, items []content.Item) {
	s := c.stripeFor(uri)
	s.mu.Lock()
	defer s.mu.Unlock()
	c.putLocked(s, uri, items, time.Time{})
}

func (c *Cache) expiryFor(ttl time.Duration) time.Time {
	if ttl < 0 {
		return time.Time{}
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

func (c *Cache) putLocked(s *stripe, uri string, items []content.Item, expiry time.Time) {
	idx, found := c.probeFind(s, uri)
	if !found {
		if freeIdx, ok := c.probeFirstInvalid(s, uri); ok {
			idx = freeIdx
		} else {
			idx = c.evict(s)
			found = s.slots[idx].valid
		}
	}
	now := time.Now()
	s.slots[idx] = entry{
		uri:         uri,
		valid:       true,
		content:     content.CloneItems(items),
		expiry:      expiry,
		history:     [K]time.Time{now},
		accessCount: 1,
	}
	if !found {
		c.count.Add(1)
	}
}

// Invalidate removes uri's entry, if present.
func (c *Cache) Invalidate(uri string) {
	s := c.stripeFor(uri)
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := c.probeFind(s, uri); ok {
		s.slots[idx] = entry{}
		c.count.Add(-1)
	}
}

// probeFind returns the slot index holding uri, if valid and present.
func (c *Cache) probeFind(s *stripe, uri string) (int, bool) {
	n := len(s.slots)
	start := c.localIndex(uri)
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		e := &s.slots[idx]
		if !e.valid {
			return 0, false
		}
		if e.uri == uri {
			return idx, true
		}
	}
	return 0, false
}

// probeFirstInvalid returns the first invalid (empty) slot encountered
// while probing for uri.
func (c *Cache) probeFirstInvalid(s *stripe, uri string) (int, bool) {
	n := len(s.slots)
	start := c.localIndex(uri)
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if !s.slots[idx].valid {
			return idx, true
		}
	}
	return 0, false
}

// evict picks a victim slot within s using LRU-K and returns its index.
// Candidates are valid, non-permanent entries: preferentially one with
// accessCount < K and the smallest most-recent access; otherwise the one
// with the smallest Kth-last access. Ties favor the lowest slot index. If
// every entry is permanent, slot 0 is evicted; this case is not logged.
func (c *Cache) evict(s *stripe) int {
	bestUnsaturated := -1
	bestSaturated := -1
	for i := range s.slots {
		e := &s.slots[i]
		if !e.valid || e.permanent() {
			continue
		}
		if int(e.accessCount) < K {
			if bestUnsaturated < 0 || e.history[0].Before(s.slots[bestUnsaturated].history[0]) {
				bestUnsaturated = i
			}
			continue
		}
		if bestSaturated < 0 || e.history[K-1].Before(s.slots[bestSaturated].history[K-1]) {
			bestSaturated = i
		}
	}
	switch {
	case bestUnsaturated >= 0:
		return bestUnsaturated
	case bestSaturated >= 0:
		return bestSaturated
	default:
		return 0
	}
}

// PruneExpired scans every stripe, removing expired entries and
// recomputing the exact advisory count. It acquires all stripe locks in
// ascending order and releases them in reverse, the only operation that
// holds more than one stripe at a time.
func (c *Cache) PruneExpired() {
	for _, s := range c.stripes {
		s.mu.Lock()
	}
	defer func() {
		for i := len(c.stripes) - 1; i >= 0; i-- {
			c.stripes[i].mu.Unlock()
		}
	}()

	now := time.Now()
	var exact int64
	for _, s := range c.stripes {
		for i := range s.slots {
			e := &s.slots[i]
			if !e.valid {
				continue
			}
			if e.expired(now) {
				*e = entry{}
				continue
			}
			exact++
		}
	}
	c.count.Store(exact)
}

// Count returns the advisory number of valid entries; exact immediately
// after PruneExpired.
func (c *Cache) Count() int64 { return c.count.Load() }

func djb2(s string) uint64 {
	h := uint64(5381)
	for i := 0; i < len(s); i++ {
		h = h*33 + uint64(s[i])
	}
	return h
}

func fnv1a(s string) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}
