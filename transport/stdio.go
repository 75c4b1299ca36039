// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"io"

	"github.com/coremcp/mcpd/internal/mcplog"
	"github.com/coremcp/mcpd/internal/sockutil"
)

// rwc joins a reader and writer half into one io.ReadWriteCloser, the
// shape stdin/stdout need since neither half alone implements Close the
// way a socket does.
type rwc struct {
	r io.Reader
	w io.Writer
	c io.Closer
}

func (x rwc) Read(p []byte) (int, error)  { return x.r.Read(p) }
func (x rwc) Write(p []byte) (int, error) { return x.w.Write(p) }
func (x rwc) Close() error {
	if x.c != nil {
		return x.c.Close()
	}
	return nil
}

// Stdio is a framed, stream-oriented transport over an arbitrary
// reader/writer pair, typically os.Stdin/os.Stdout. Stdout is reserved
// for protocol traffic; diagnostic logging must go to a separate sink.
type Stdio struct {
	maxSize int
	log     *mcplog.Logger
	conn    io.ReadWriteCloser

	loop *streamLoop
}

// NewStdio returns a Stdio transport reading r and writing w, using
// closer (if non-nil) to implement Stop. With a nil closer, Stop cannot
// interrupt a pending read and returns only once r yields EOF or an error.
func NewStdio(r io.Reader, w io.Writer, closer io.Closer, maxSize int, log *mcplog.Logger) *Stdio {
	if maxSize <= 0 {
		maxSize = sockutil.DefaultMaxMessageSize
	}
	return &Stdio{maxSize: maxSize, log: log, conn: rwc{r: r, w: w, c: closer}}
}

func (s *Stdio) Start(ctx context.Context, onMessage MessageCallback, onError ErrorCallback) error {
	if s.loop != nil {
		return ErrAlreadyRunning
	}
	s.loop = newStreamLoop(s.conn, s.maxSize, "stdio", s.log)
	go s.loop.run(ctx, onMessage, onError)
	return nil
}

func (s *Stdio) Send(ctx context.Context, body []byte) error {
	if s.loop == nil {
		return ErrNotRunning
	}
	return s.loop.send(body)
}

func (s *Stdio) Stop() error {
	if s.loop == nil {
		return ErrNotRunning
	}
	return s.loop.stop()
}

// ClientKey always returns "stdio": a process has exactly one stdio pair.
func (s *Stdio) ClientKey() string { return "stdio" }
