// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestTCPSendAndReceive(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	serverMsgs := make(chan []byte, 4)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		srv := NewTCP(conn, 0, nil)
		srv.Start(context.Background(), func(ctx context.Context, body []byte, clientKey string) {
			serverMsgs <- body
		}, func(err error) {})
	}()

	client, err := DialTCP(context.Background(), ln.Addr().String(), 1000, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Start(context.Background(), func(context.Context, []byte, string) {}, func(error) {}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer client.Stop()

	if err := client.Send(context.Background(), []byte(`{"hello":"world"}`)); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case got := <-serverMsgs:
		if string(got) != `{"hello":"world"}` {
			t.Errorf("got %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestTCPStartTwiceReturnsAlreadyRunning(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	tr := NewTCP(c1, 0, nil)
	if err := tr.Start(context.Background(), func(context.Context, []byte, string) {}, func(error) {}); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if err := tr.Start(context.Background(), func(context.Context, []byte, string) {}, func(error) {}); err != ErrAlreadyRunning {
		t.Fatalf("second Start: got %v, want ErrAlreadyRunning", err)
	}
	tr.Stop()
}

func TestTCPSendBeforeStartReturnsNotRunning(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	tr := NewTCP(c1, 0, nil)
	if err := tr.Send(context.Background(), []byte("x")); err != ErrNotRunning {
		t.Fatalf("got %v, want ErrNotRunning", err)
	}
}
