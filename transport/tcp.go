// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"fmt"
	"net"

	"github.com/coremcp/mcpd/internal/mcplog"
	"github.com/coremcp/mcpd/internal/sockutil"
)

// TCP is a stream-oriented transport over an already-established
// net.Conn, framed with the 4-byte big-endian length prefix.
type TCP struct {
	conn    net.Conn
	maxSize int
	log     *mcplog.Logger

	loop *streamLoop
}

// NewTCP wraps an established connection. maxSize <= 0 uses
// sockutil.DefaultMaxMessageSize.
func NewTCP(conn net.Conn, maxSize int, log *mcplog.Logger) *TCP {
	if maxSize <= 0 {
		maxSize = sockutil.DefaultMaxMessageSize
	}
	return &TCP{conn: conn, maxSize: maxSize, log: log}
}

func (t *TCP) Start(ctx context.Context, onMessage MessageCallback, onError ErrorCallback) error {
	if t.loop != nil {
		return ErrAlreadyRunning
	}
	clientKey := t.conn.RemoteAddr().String()
	t.loop = newStreamLoop(t.conn, t.maxSize, clientKey, t.log)
	go t.loop.run(ctx, onMessage, onError)
	return nil
}

func (t *TCP) Send(ctx context.Context, body []byte) error {
	if t.loop == nil {
		return ErrNotRunning
	}
	return t.loop.send(body)
}

func (t *TCP) Stop() error {
	if t.loop == nil {
		return ErrNotRunning
	}
	return t.loop.stop()
}

// ClientKey returns the peer address this transport was started with.
func (t *TCP) ClientKey() string { return t.conn.RemoteAddr().String() }

// DialTCP connects to addr and returns a TCP transport that is not yet
// started; call Start before Send.
func DialTCP(ctx context.Context, addr string, connectTimeout int, log *mcplog.Logger) (*TCP, error) {
	conn, err := sockutil.DialTimeout("tcp", addr, msToDuration(connectTimeout))
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}
	return NewTCP(conn, sockutil.DefaultMaxMessageSize, log), nil
}
