// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	"github.com/coremcp/mcpd/internal/mcplog"
	"github.com/coremcp/mcpd/internal/sockutil"
)

// TCPServer accepts TCP connections and starts a framed TCP transport
// for each, handing every connection's messages to the same callbacks.
type TCPServer struct {
	ln      net.Listener
	maxSize int
	log     *mcplog.Logger

	wg      sync.WaitGroup
	closing atomic.Bool
}

// ListenTCP starts listening on addr.
func ListenTCP(addr string, maxSize int, log *mcplog.Logger) (*TCPServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	if maxSize <= 0 {
		maxSize = sockutil.DefaultMaxMessageSize
	}
	return &TCPServer{ln: ln, maxSize: maxSize, log: log}, nil
}

// Addr returns the listener's bound address.
func (s *TCPServer) Addr() net.Addr { return s.ln.Addr() }

// Serve accepts connections until Close is called, starting a TCP
// transport per connection. It blocks; callers typically run it in its
// own goroutine. onConnect, if non-nil, is invoked once per accepted
// connection right after its transport starts, so the caller can track
// (clientKey -> Transport) for routing a dispatcher's reply back to the
// connection that sent the request; the shared onMessage callback alone
// carries no transport reference.
func (s *TCPServer) Serve(ctx context.Context, onMessage MessageCallback, onError ErrorCallback, onConnect func(Transport)) error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if s.closing.Load() {
				return nil
			}
			return err
		}
		t := NewTCP(conn, s.maxSize, s.log)
		if err := t.Start(ctx, onMessage, onError); err != nil {
			conn.Close()
			continue
		}
		if onConnect != nil {
			onConnect(t)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			<-t.loop.done
		}()
	}
}

// Close stops accepting new connections. It does not forcibly close
// already-accepted connections; those stop when their transport's Stop
// is called or their peer disconnects.
func (s *TCPServer) Close() error {
	s.closing.Store(true)
	err := s.ln.Close()
	s.wg.Wait()
	return err
}
