// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coremcp/mcpd/internal/mcplog"
)

// SSEState is a Streamable-HTTP client connection state.
type SSEState int32

const (
	StateDisconnected SSEState = iota
	StateConnecting
	StateConnected
	StateSSEConnecting
	StateSSEConnected
	StateReconnecting
	StateError
)

func (s SSEState) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateSSEConnecting:
		return "SseConnecting"
	case StateSSEConnected:
		return "SseConnected"
	case StateReconnecting:
		return "Reconnecting"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

// StreamableHTTPClientConfig configures a StreamableHTTPClient.
type StreamableHTTPClientConfig struct {
	BaseURL              string // e.g. "http://host:port/mcp"
	APIKey               string
	Timeout              time.Duration
	EnableSessions       bool
	EnableSSE            bool
	EnableAutoReconnect  bool
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int // 0 means unlimited
}

// StreamableHTTPClient implements the hybrid Streamable-HTTP transport:
// synchronous POST request/response plus an optional resumable SSE GET
// stream for server-pushed messages, per the state machine
// Disconnected -> Connecting -> Connected -> SseConnecting -> SseConnected
// <-> Reconnecting -> Error.
type StreamableHTTPClient struct {
	cfg    StreamableHTTPClientConfig
	client *http.Client
	log    *mcplog.Logger

	state       atomic.Int32
	sessionID   atomic.Value // string
	lastEventID atomic.Value // string

	onMessage MessageCallback
	onError   ErrorCallback

	stopOnce sync.Once
	stopCh   chan struct{}
	sseDone  chan struct{}
}

// NewStreamableHTTPClient returns a client ready to Start.
func NewStreamableHTTPClient(cfg StreamableHTTPClientConfig, log *mcplog.Logger) *StreamableHTTPClient {
	if log == nil {
		log = mcplog.Discard()
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = time.Second
	}
	c := &StreamableHTTPClient{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		log:     log,
		stopCh:  make(chan struct{}),
		sseDone: make(chan struct{}),
	}
	c.sessionID.Store("")
	c.lastEventID.Store("")
	c.state.Store(int32(StateDisconnected))
	return c
}

// State returns the client's current connection state.
func (c *StreamableHTTPClient) State() SSEState { return SSEState(c.state.Load()) }

func (c *StreamableHTTPClient) Start(ctx context.Context, onMessage MessageCallback, onError ErrorCallback) error {
	c.onMessage = onMessage
	c.onError = onError
	c.state.Store(int32(StateConnected))
	if c.cfg.EnableSSE {
		c.state.Store(int32(StateSSEConnecting))
		go c.sseLoop(ctx)
	} else {
		close(c.sseDone)
	}
	return nil
}

func (c *StreamableHTTPClient) Send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("transport: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	if sid := c.sessionID.Load().(string); c.cfg.EnableSessions && sid != "" {
		req.Header.Set("Mcp-Session-Id", sid)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("transport: streamable http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusGone {
		c.sessionID.Store("")
	}
	if c.cfg.EnableSessions {
		if sid := resp.Header.Get("Mcp-Session-Id"); sid != "" {
			c.sessionID.Store(sid)
		}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("transport: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("transport: streamable http post: status %d: %s", resp.StatusCode, respBody)
	}
	if len(respBody) > 0 && c.onMessage != nil {
		c.onMessage(ctx, respBody, c.cfg.BaseURL)
	}
	return nil
}

func (c *StreamableHTTPClient) sseLoop(ctx context.Context) {
	defer close(c.sseDone)
	attempts := 0
	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		err := c.performHangingGet(ctx)
		if err == nil {
			return
		}
		select {
		case <-c.stopCh:
			return
		default:
		}

		if !c.cfg.EnableAutoReconnect {
			c.state.Store(int32(StateError))
			if c.onError != nil {
				c.onError(err)
			}
			return
		}
		attempts++
		if c.cfg.MaxReconnectAttempts != 0 && attempts >= c.cfg.MaxReconnectAttempts {
			c.state.Store(int32(StateError))
			if c.onError != nil {
				c.onError(fmt.Errorf("transport: sse reconnect attempts exhausted: %w", err))
			}
			return
		}
		c.state.Store(int32(StateReconnecting))
		select {
		case <-c.stopCh:
			return
		case <-time.After(c.cfg.ReconnectDelay):
		}
		c.state.Store(int32(StateSSEConnecting))
	}
}

func (c *StreamableHTTPClient) performHangingGet(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-c.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	if sid := c.sessionID.Load().(string); c.cfg.EnableSessions && sid != "" {
		req.Header.Set("Mcp-Session-Id", sid)
	}
	if lastID := c.lastEventID.Load().(string); lastID != "" {
		req.Header.Set("Last-Event-ID", lastID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sse GET: status %d", resp.StatusCode)
	}
	c.state.Store(int32(StateSSEConnected))
	return c.handleSSE(ctx, resp.Body)
}

// handleSSE parses "id: <id>\nevent: <type>\ndata: <line>\n\n" frames.
func (c *StreamableHTTPClient) handleSSE(ctx context.Context, body io.Reader) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	var eventID, data string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if data != "" {
				if eventID != "" {
					c.lastEventID.Store(eventID)
				}
				if c.onMessage != nil {
					c.onMessage(ctx, []byte(data), c.cfg.BaseURL)
				}
			}
			eventID, data = "", ""
		case strings.HasPrefix(line, "id:"):
			eventID = strings.TrimSpace(strings.TrimPrefix(line, "id:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		case strings.HasPrefix(line, "event:"):
			// event type is not otherwise distinguished by this transport
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}

func (c *StreamableHTTPClient) Stop() error {
	c.stopOnce.Do(func() { close(c.stopCh) })
	<-c.sseDone
	c.state.Store(int32(StateDisconnected))
	return nil
}

// TerminateSession issues the DELETE that ends the current session, per
// the transport contract's explicit session teardown.
func (c *StreamableHTTPClient) TerminateSession(ctx context.Context) error {
	sid := c.sessionID.Load().(string)
	if sid == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.cfg.BaseURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Mcp-Session-Id", sid)
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	c.sessionID.Store("")
	return nil
}
