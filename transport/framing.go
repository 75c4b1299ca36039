// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/coremcp/mcpd/internal/mcplog"
	"github.com/coremcp/mcpd/internal/sockutil"
)

// streamLoop drives the receive side of a length-prefix-framed
// io.ReadWriteCloser (TCP, stdio-binary) until stop fires or a read
// error occurs. A peer close between frames is logged at INFO; a close
// partway through a frame, an oversized frame, or any other read error is
// logged at ERROR.
type streamLoop struct {
	conn      io.ReadWriteCloser
	maxSize   int
	clientKey string
	log       *mcplog.Logger

	writeMu sync.Mutex
	stopped atomic.Bool
	done    chan struct{}
}

func newStreamLoop(conn io.ReadWriteCloser, maxSize int, clientKey string, log *mcplog.Logger) *streamLoop {
	if log == nil {
		log = mcplog.Discard()
	}
	return &streamLoop{conn: conn, maxSize: maxSize, clientKey: clientKey, log: log, done: make(chan struct{})}
}

func (s *streamLoop) run(ctx context.Context, onMessage MessageCallback, onError ErrorCallback) {
	defer close(s.done)
	for {
		body, err := sockutil.ReadFrame(s.conn, s.maxSize)
		if err != nil {
			if s.stopped.Load() {
				return
			}
			if errors.Is(err, io.EOF) {
				s.log.Info("stream closed by peer (%s)", s.clientKey)
			} else {
				s.log.Error("stream read failed (%s): %v", s.clientKey, err)
				if onError != nil {
					onError(err)
				}
			}
			return
		}
		onMessage(ctx, body, s.clientKey)
	}
}

func (s *streamLoop) send(body []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return sockutil.WriteFrame(s.conn, body)
}

func (s *streamLoop) stop() error {
	if !s.stopped.CompareAndSwap(false, true) {
		<-s.done
		return nil
	}
	err := s.conn.Close()
	<-s.done
	return err
}
