// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"testing"
	"time"
)

func TestTCPServerServesMultipleConnections(t *testing.T) {
	srv, err := ListenTCP("127.0.0.1:0", 0, nil)
	if err != nil {
		t.Fatal(err)
	}

	received := make(chan []byte, 4)
	go srv.Serve(context.Background(), func(ctx context.Context, body []byte, clientKey string) {
		received <- body
	}, func(error) {}, nil)
	defer srv.Close()

	for i := 0; i < 2; i++ {
		client, err := DialTCP(context.Background(), srv.Addr().String(), 1000, nil)
		if err != nil {
			t.Fatal(err)
		}
		if err := client.Start(context.Background(), func(context.Context, []byte, string) {}, func(error) {}); err != nil {
			t.Fatal(err)
		}
		if err := client.Send(context.Background(), []byte("ping")); err != nil {
			t.Fatal(err)
		}
		client.Stop()
	}

	for i := 0; i < 2; i++ {
		select {
		case <-received:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for message")
		}
	}
}

func TestTCPServerCloseStopsServe(t *testing.T) {
	srv, err := ListenTCP("127.0.0.1:0", 0, nil)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(context.Background(), func(context.Context, []byte, string) {}, func(error) {}, nil)
	}()

	if err := srv.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v, want nil after Close", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Close")
	}
}
