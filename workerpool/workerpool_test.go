// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package workerpool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmitRunsTask(t *testing.T) {
	p := New(8, 2, 0)
	defer p.Shutdown()

	var ran atomic.Bool
	var wg sync.WaitGroup
	wg.Add(1)
	if err := p.Submit(func() {
		defer wg.Done()
		ran.Store(true)
	}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	wg.Wait()
	if !ran.Load() {
		t.Error("task did not run")
	}
}

func TestSubmitBusyWhenQueueFull(t *testing.T) {
	block := make(chan struct{})
	p := New(1, 1, 0)
	defer func() {
		close(block)
		p.Shutdown()
	}()

	// Occupy the single worker so the queue backs up.
	started := make(chan struct{})
	if err := p.Submit(func() { close(started); <-block }); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	<-started
	// Fill the one queue slot.
	if err := p.Submit(func() {}); err != nil {
		t.Fatalf("Submit (fill queue): %v", err)
	}
	if err := p.Submit(func() {}); err != ErrBusy {
		t.Errorf("Submit on full queue = %v, want ErrBusy", err)
	}
}

func TestSubmitAfterShutdown(t *testing.T) {
	p := New(4, 1, 0)
	p.Shutdown()
	if err := p.Submit(func() {}); err != ErrShutdown {
		t.Errorf("Submit after Shutdown = %v, want ErrShutdown", err)
	}
}

func TestResizeGrowAndShrink(t *testing.T) {
	p := New(16, 2, 0)
	defer p.Shutdown()

	p.Resize(4)
	if s := p.Stats(); s.Workers != 4 {
		t.Errorf("Workers after grow = %d, want 4", s.Workers)
	}
	p.Resize(1)
	if s := p.Stats(); s.Workers != 1 {
		t.Errorf("Workers after shrink = %d, want 1", s.Workers)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	if err := p.Submit(func() { wg.Done() }); err != nil {
		t.Fatalf("Submit after resize: %v", err)
	}
	wg.Wait()
}

func TestStatsCountCompletedAndFailed(t *testing.T) {
	p := New(8, 2, 0)
	defer p.Shutdown()

	var wg sync.WaitGroup
	wg.Add(2)
	p.Submit(func() { defer wg.Done() })
	p.Submit(func() { defer wg.Done(); panic("boom") })
	wg.Wait()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		s := p.Stats()
		if s.Completed+s.Failed >= 2 {
			if s.Failed != 1 {
				t.Errorf("Failed = %d, want 1", s.Failed)
			}
			if s.Completed != 1 {
				t.Errorf("Completed = %d, want 1", s.Completed)
			}
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("stats never reflected both completed tasks")
}
