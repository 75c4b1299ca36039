// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package syncx

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestCondWaitWokenByBroadcast(t *testing.T) {
	var mu sync.Mutex
	c := NewCond(&mu)
	ready := false

	done := make(chan struct{})
	go func() {
		mu.Lock()
		for !ready {
			c.WaitContext(context.Background(), time.Time{})
		}
		mu.Unlock()
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	mu.Lock()
	ready = true
	c.Broadcast()
	mu.Unlock()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter was not woken by Broadcast")
	}
}

func TestCondWaitContextDeadline(t *testing.T) {
	var mu sync.Mutex
	c := NewCond(&mu)

	mu.Lock()
	start := time.Now()
	woken := c.WaitContext(context.Background(), start.Add(20*time.Millisecond))
	mu.Unlock()

	if woken {
		t.Fatal("WaitContext reported woken=true, want false on deadline expiry")
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("WaitContext returned after %v, want >= 20ms", elapsed)
	}
}

func TestCondWaitContextCancel(t *testing.T) {
	var mu sync.Mutex
	c := NewCond(&mu)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	mu.Lock()
	woken := c.WaitContext(ctx, time.Time{})
	mu.Unlock()

	if woken {
		t.Fatal("WaitContext reported woken=true, want false on context cancel")
	}
}
