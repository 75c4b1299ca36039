// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/coremcp/mcpd/internal/mcplog"
)

// WebSocket is a message-oriented transport over a gorilla/websocket
// connection using the "mcp" subprotocol. Framing is the WebSocket
// message boundary itself; no length prefix is applied.
type WebSocket struct {
	conn      *websocket.Conn
	clientKey string
	log       *mcplog.Logger

	writeMu sync.Mutex
	stopped atomic.Bool
	done    chan struct{}
}

// NewWebSocket wraps an already-established *websocket.Conn (either
// dialed by a client or upgraded by a server).
func NewWebSocket(conn *websocket.Conn, clientKey string, log *mcplog.Logger) *WebSocket {
	if log == nil {
		log = mcplog.Discard()
	}
	return &WebSocket{conn: conn, clientKey: clientKey, log: log, done: make(chan struct{})}
}

// DialWebSocket connects to url with the "mcp" subprotocol.
func DialWebSocket(ctx context.Context, url string, header http.Header, log *mcplog.Logger) (*WebSocket, error) {
	dialer := *websocket.DefaultDialer
	dialer.Subprotocols = []string{"mcp"}
	conn, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("transport: websocket dial %s: %w (status %d)", url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("transport: websocket dial %s: %w", url, err)
	}
	return NewWebSocket(conn, url, log), nil
}

// UpgradeWebSocket upgrades an incoming HTTP request to a server-side
// WebSocket connection using the "mcp" subprotocol.
func UpgradeWebSocket(w http.ResponseWriter, r *http.Request, log *mcplog.Logger) (*WebSocket, error) {
	upgrader := websocket.Upgrader{
		Subprotocols: []string{"mcp"},
		CheckOrigin:  func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: websocket upgrade: %w", err)
	}
	return NewWebSocket(conn, r.RemoteAddr, log), nil
}

func (t *WebSocket) Start(ctx context.Context, onMessage MessageCallback, onError ErrorCallback) error {
	go t.readLoop(ctx, onMessage, onError)
	return nil
}

func (t *WebSocket) readLoop(ctx context.Context, onMessage MessageCallback, onError ErrorCallback) {
	defer close(t.done)
	for {
		messageType, data, err := t.conn.ReadMessage()
		if err != nil {
			if t.stopped.Load() {
				return
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				t.log.Info("websocket closed by peer (%s)", t.clientKey)
			} else {
				t.log.Error("websocket read failed (%s): %v", t.clientKey, err)
				if onError != nil {
					onError(err)
				}
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		onMessage(ctx, data, t.clientKey)
	}
}

func (t *WebSocket) Send(ctx context.Context, body []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		t.conn.SetWriteDeadline(deadline)
		defer t.conn.SetWriteDeadline(noDeadline)
	}
	return t.conn.WriteMessage(websocket.TextMessage, body)
}

// ClientKey returns the key this transport was constructed with (the
// dial URL for a client connection, the peer address for an upgraded
// server connection).
func (t *WebSocket) ClientKey() string { return t.clientKey }

func (t *WebSocket) Stop() error {
	if !t.stopped.CompareAndSwap(false, true) {
		<-t.done
		return nil
	}
	err := t.conn.Close()
	<-t.done
	return err
}
