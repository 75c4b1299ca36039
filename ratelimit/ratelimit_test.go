// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ratelimit

import (
	"testing"
	"time"
)

func TestAllowWithinWindow(t *testing.T) {
	l := New(3, time.Second)
	now := time.Now()
	for i := 0; i < 3; i++ {
		if !l.AllowAt("client-a", now) {
			t.Fatalf("request %d: expected admission within window", i)
		}
	}
	if l.AllowAt("client-a", now) {
		t.Fatal("4th request in window should be rejected")
	}
}

func TestAllowResetsAfterWindow(t *testing.T) {
	l := New(1, time.Second)
	now := time.Now()
	if !l.AllowAt("client-a", now) {
		t.Fatal("first request should be admitted")
	}
	if l.AllowAt("client-a", now.Add(500*time.Millisecond)) {
		t.Fatal("second request within same window should be rejected")
	}
	if !l.AllowAt("client-a", now.Add(1100*time.Millisecond)) {
		t.Fatal("request in next window should be admitted")
	}
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := New(1, time.Second)
	now := time.Now()
	if !l.AllowAt("client-a", now) {
		t.Fatal("client-a should be admitted")
	}
	if !l.AllowAt("client-b", now) {
		t.Fatal("client-b should be admitted independently of client-a")
	}
}

func TestRemaining(t *testing.T) {
	l := New(2, time.Second)
	now := time.Now()
	if remaining, _ := l.Remaining("client-a"); remaining != 2 {
		t.Errorf("Remaining before any request = %d, want 2", remaining)
	}
	l.AllowAt("client-a", now)
	remaining, resetAt := l.Remaining("client-a")
	if remaining != 1 {
		t.Errorf("Remaining after one request = %d, want 1", remaining)
	}
	if !resetAt.After(now) {
		t.Error("resetAt should be after now")
	}
}

func TestForget(t *testing.T) {
	l := New(1, time.Second)
	now := time.Now()
	l.AllowAt("client-a", now)
	l.Forget("client-a")
	if !l.AllowAt("client-a", now) {
		t.Fatal("expected admission after Forget reset the bucket")
	}
}
