// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transport defines the polymorphic transport contract shared by
// every wire variant (stdio, TCP, WebSocket, MQTT, plain HTTP, and
// Streamable HTTP) and the stream-oriented framing codec common to the
// byte-stream transports.
package transport

import (
	"context"
	"errors"
)

// MessageCallback is invoked once per received JSON-RPC message body (a
// single logical message, with any wire framing already stripped).
// clientKey identifies the sender for rate limiting (a peer address, or
// an API-key hash for HTTP).
type MessageCallback func(ctx context.Context, body []byte, clientKey string)

// ErrorCallback reports an asynchronous transport error, e.g. a receive
// loop failure. It is never called from within Send.
type ErrorCallback func(err error)

// ErrAlreadyRunning is returned by Start when called on a transport
// already started.
var ErrAlreadyRunning = errors.New("transport: already running")

// ErrNotRunning is returned by Send/Stop on a transport that was never
// started.
var ErrNotRunning = errors.New("transport: not running")

// Transport is the capability set every wire variant implements: start
// with callbacks, send a single logical message, and stop.
//
// Start is idempotent: a second call while running returns
// ErrAlreadyRunning. Send takes one logical JSON-RPC message without
// framing metadata; the transport prepends whatever framing its wire
// needs. Send returns once the message is handed to the OS/socket
// layer; delivery is not guaranteed by the time it returns. Stop signals
// background goroutines, unblocks any blocked I/O, and waits for them to
// exit; no callback fires after Stop returns.
type Transport interface {
	Start(ctx context.Context, onMessage MessageCallback, onError ErrorCallback) error
	Send(ctx context.Context, body []byte) error
	Stop() error
}

// KeyedTransport is a Transport that can report the clientKey it passes to
// MessageCallback, so a caller juggling many simultaneous connections
// (e.g. TCPServer's per-accept transports) can route a reply back to the
// connection that produced a given request.
type KeyedTransport interface {
	Transport
	ClientKey() string
}
