// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package client implements the MCP client's request/response correlator
// (spec component K): one Transport in, SendRequest/notifications out,
// with each in-flight call's id mapped to a slot a caller blocks on until
// the matching response arrives (or its own context/timeout expires).
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/segmentio/encoding/json"

	"github.com/coremcp/mcpd/internal/mcplog"
	"github.com/coremcp/mcpd/internal/syncx"
	"github.com/coremcp/mcpd/protocol"
	"github.com/coremcp/mcpd/transport"
)

// ErrClosed is returned by SendRequest once Close has been called, and by
// any pending call when Close runs while it is still waiting.
var ErrClosed = errors.New("client: closed")

// NotificationHandler is invoked for every incoming message that carries a
// method (a JSON-RPC notification or request from the server). A response
// whose id matches no pending call does not reach it; resolve logs and
// drops such a response.
type NotificationHandler func(method string, params json.RawMessage)

type pendingCall struct {
	done   bool
	result json.RawMessage
	werr   *protocol.WireError
}

// Client correlates requests sent over one Transport with their
// responses. It is safe for concurrent use by multiple goroutines calling
// SendRequest.
type Client struct {
	t   transport.Transport
	log *mcplog.Logger

	nextID atomic.Uint64

	mu      sync.Mutex
	cond    *syncx.Cond
	pending map[uint64]*pendingCall
	closed  bool

	onNotify NotificationHandler
}

// New wraps an already-constructed transport.Transport with request
// correlation. onNotify may be nil to discard server-initiated
// notifications.
func New(t transport.Transport, onNotify NotificationHandler, log *mcplog.Logger) *Client {
	if log == nil {
		log = mcplog.Discard()
	}
	c := &Client{
		t:        t,
		log:      log,
		pending:  make(map[uint64]*pendingCall),
		onNotify: onNotify,
	}
	c.cond = syncx.NewCond(&c.mu)
	return c
}

// Start begins receiving on the underlying transport. Callers must not
// call SendRequest before Start returns successfully.
func (c *Client) Start(ctx context.Context) error {
	return c.t.Start(ctx, c.onMessage, c.onError)
}

// Stop stops the underlying transport and fails every call still
// waiting on a response with ErrClosed.
func (c *Client) Stop() error {
	c.mu.Lock()
	c.closed = true
	c.cond.Broadcast()
	c.mu.Unlock()
	return c.t.Stop()
}

func (c *Client) onError(err error) {
	c.log.Error("client transport error: %v", err)
}

// onMessage is the transport.MessageCallback wired in Start. It classifies
// an incoming body as a response (resolves a pending call) or a
// notification (method present, routed to onNotify).
func (c *Client) onMessage(ctx context.Context, body []byte, clientKey string) {
	req, resp, err := protocol.Decode(body)
	if err != nil {
		c.log.Warn("client: dropping unparseable message: %v", err)
		return
	}
	if req != nil {
		if c.onNotify != nil {
			c.onNotify(req.Method, req.Params)
		}
		return
	}
	c.resolve(resp.ID, resp.Result, resp.Error)
}

func (c *Client) resolve(id uint64, result json.RawMessage, werr *protocol.WireError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[id]
	if !ok {
		c.log.Warn("client: response for unknown id %d", id)
		return
	}
	p.done = true
	p.result = result
	p.werr = werr
	c.cond.Broadcast()
}

// SendRequest sends method with the given params (marshaled if non-nil,
// a raw json.RawMessage passed through unchanged) and blocks until a
// matching response arrives, ctx is done, or timeout elapses, whichever
// is first.
func (c *Client) SendRequest(ctx context.Context, method string, params any, timeout time.Duration) (json.RawMessage, error) {
	id := c.nextID.Add(1)

	req, err := protocol.NewRequest(id, method, params)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("client: marshal request: %w", err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	p := &pendingCall{}
	c.pending[id] = p
	c.mu.Unlock()
	defer c.forget(id)

	if err := c.t.Send(ctx, data); err != nil {
		return nil, fmt.Errorf("client: send request: %w", err)
	}

	deadline := time.Now().Add(timeout)
	c.mu.Lock()
	defer c.mu.Unlock()
	for !p.done {
		if c.closed {
			return nil, ErrClosed
		}
		if !c.cond.WaitContext(ctx, deadline) {
			return nil, fmt.Errorf("client: waiting for response to %q (id %d): %w", method, id, context.DeadlineExceeded)
		}
	}
	if p.werr != nil {
		return nil, p.werr
	}
	return p.result, nil
}

// Notify sends method as a fire-and-forget notification (id 0); no
// response is expected or waited for.
func (c *Client) Notify(ctx context.Context, method string, params any) error {
	req, err := protocol.NewRequest(0, method, params)
	if err != nil {
		return fmt.Errorf("client: build notification: %w", err)
	}
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("client: marshal notification: %w", err)
	}
	return c.t.Send(ctx, data)
}

func (c *Client) forget(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}
