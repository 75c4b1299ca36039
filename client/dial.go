// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package client

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/coremcp/mcpd/internal/mcplog"
	"github.com/coremcp/mcpd/transport"
)

// DialTCP connects to addr over TCP and wraps the connection in a Client.
func DialTCP(ctx context.Context, addr string, connectTimeout time.Duration, onNotify NotificationHandler, log *mcplog.Logger) (*Client, error) {
	t, err := transport.DialTCP(ctx, addr, int(connectTimeout.Milliseconds()), log)
	if err != nil {
		return nil, err
	}
	c := New(t, onNotify, log)
	if err := c.Start(ctx); err != nil {
		t.Stop()
		return nil, err
	}
	return c, nil
}

// NewStdio wraps the process's stdin/stdout (or any reader/writer/closer
// triple) in a Client, for talking to a subprocess-hosted MCP server.
func NewStdio(ctx context.Context, r io.Reader, w io.Writer, closer io.Closer, maxSize int, onNotify NotificationHandler, log *mcplog.Logger) (*Client, error) {
	t := transport.NewStdio(r, w, closer, maxSize, log)
	c := New(t, onNotify, log)
	if err := c.Start(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// DialWebSocket connects to url as a WebSocket client.
func DialWebSocket(ctx context.Context, url string, header http.Header, onNotify NotificationHandler, log *mcplog.Logger) (*Client, error) {
	t, err := transport.DialWebSocket(ctx, url, header, log)
	if err != nil {
		return nil, err
	}
	c := New(t, onNotify, log)
	if err := c.Start(ctx); err != nil {
		t.Stop()
		return nil, err
	}
	return c, nil
}

// DialMQTT connects to cfg.Broker as an MQTT client.
func DialMQTT(ctx context.Context, cfg transport.MQTTConfig, onNotify NotificationHandler, log *mcplog.Logger) (*Client, error) {
	t, err := transport.DialMQTT(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	c := New(t, onNotify, log)
	if err := c.Start(ctx); err != nil {
		t.Stop()
		return nil, err
	}
	return c, nil
}

// NewHTTP wraps a synchronous request/response HTTP transport (the
// /call_tool demo endpoint) in a Client.
func NewHTTP(url string, timeout time.Duration, apiKey string, onNotify NotificationHandler, log *mcplog.Logger) (*Client, error) {
	t := transport.NewHTTPClient(url, timeout, apiKey, log)
	c := New(t, onNotify, log)
	if err := c.Start(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

// NewStreamableHTTP wraps the Streamable-HTTP client state machine in a
// Client.
func NewStreamableHTTP(ctx context.Context, cfg transport.StreamableHTTPClientConfig, onNotify NotificationHandler, log *mcplog.Logger) (*Client, error) {
	t := transport.NewStreamableHTTPClient(cfg, log)
	c := New(t, onNotify, log)
	if err := c.Start(ctx); err != nil {
		return nil, err
	}
	return c, nil
}
