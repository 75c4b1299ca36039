// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"io"
	"testing"
	"time"
)

func TestStdioSendAndReceive(t *testing.T) {
	clientR, serverW := io.Pipe()
	serverR, clientW := io.Pipe()

	server := NewStdio(serverR, serverW, serverR, 0, nil)
	client := NewStdio(clientR, clientW, clientR, 0, nil)

	received := make(chan []byte, 1)
	if err := server.Start(context.Background(), func(ctx context.Context, body []byte, clientKey string) {
		received <- body
	}, func(error) {}); err != nil {
		t.Fatal(err)
	}
	if err := client.Start(context.Background(), func(context.Context, []byte, string) {}, func(error) {}); err != nil {
		t.Fatal(err)
	}
	defer server.Stop()
	defer client.Stop()

	if err := client.Send(context.Background(), []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case got := <-received:
		if string(got) != `{"a":1}` {
			t.Errorf("got %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}
