// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/coremcp/mcpd/content"
)

func items(text string) []content.Item {
	return []content.Item{content.Text(text, "text/plain")}
}

func TestGetMissThenPutThenGet(t *testing.T) {
	c := New(16, time.Minute)
	if _, ok := c.Get("res://a"); ok {
		t.Fatal("expected miss before put")
	}
	c.Put("res://a", items("v1"), 0)
	got, ok := c.Get("res://a")
	if !ok {
		t.Fatal("expected hit after put")
	}
	if got[0].Text != "v1" {
		t.Errorf("got %q, want v1", got[0].Text)
	}
}

func TestGetReturnsIndependentCopy(t *testing.T) {
	c := New(16, time.Minute)
	c.Put("res://a", items("v1"), 0)
	got, _ := c.Get("res://a")
	got[0].Text = "mutated"
	got2, _ := c.Get("res://a")
	if got2[0].Text != "v1" {
		t.Errorf("cache storage was mutated through a returned copy: %q", got2[0].Text)
	}
}

func TestTTLExpiry(t *testing.T) {
	c := New(16, time.Hour)
	c.Put("res://a", items("v1"), time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("res://a"); ok {
		t.Fatal("expected miss after TTL expiry")
	}
}

func TestInvalidate(t *testing.T) {
	c := New(16, time.Minute)
	c.Put("res://a", items("v1"), 0)
	c.Invalidate("res://a")
	if _, ok := c.Get("res://a"); ok {
		t.Fatal("expected miss after invalidate")
	}
}

// TestLRUKEviction follows the scenario in the end-to-end test catalog:
// capacity=3, K=2; put A, B, C; get A twice; put D should evict B (the
// older of the two access_count<K entries); put E should then evict C.
func TestLRUKEviction(t *testing.T) {
	// single stripe so the scenario's single-table semantics apply directly;
	// a long-but-finite TTL keeps every entry a genuine (non-permanent)
	// eviction candidate instead of falling into the "all permanent" fallback.
	c := NewStriped(3, 1, time.Hour)
	c.Put("A", items("a"), time.Hour)
	time.Sleep(time.Millisecond)
	c.Put("B", items("b"), time.Hour)
	time.Sleep(time.Millisecond)
	c.Put("C", items("c"), time.Hour)
	time.Sleep(time.Millisecond)

	if _, ok := c.Get("A"); !ok {
		t.Fatal("expected hit for A")
	}
	time.Sleep(time.Millisecond)
	if _, ok := c.Get("A"); !ok {
		t.Fatal("expected second hit for A")
	}
	time.Sleep(time.Millisecond)

	c.Put("D", items("d"), time.Hour)
	if _, ok := c.Get("B"); ok {
		t.Error("expected B to have been evicted")
	}
	for _, uri := range []string{"A", "C", "D"} {
		if _, ok := c.Get(uri); !ok {
			t.Errorf("expected %s to still be present", uri)
		}
	}

	time.Sleep(time.Millisecond)
	c.Put("E", items("e"), time.Hour)
	if _, ok := c.Get("C"); ok {
		t.Error("expected C to have been evicted next")
	}
}

func TestPruneExpiredRestoresExactCount(t *testing.T) {
	c := New(16, 0)
	c.Put("res://a", items("v1"), time.Millisecond)
	c.PutNever("res://b", items("v2"))
	time.Sleep(5 * time.Millisecond)
	c.PruneExpired()
	if c.Count() != 1 {
		t.Errorf("Count() = %d, want 1", c.Count())
	}
	if _, ok := c.Get("res://b"); !ok {
		t.Error("expected res://b to survive prune")
	}
}

func TestConcurrentAccessDoesNotRace(t *testing.T) {
	c := New(64, time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			uri := "res://concurrent"
			c.Put(uri, items("v"), 0)
			c.Get(uri)
			if i%4 == 0 {
				c.Invalidate(uri)
			}
		}(i)
	}
	wg.Wait()
}
