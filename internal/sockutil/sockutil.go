// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package sockutil provides the length-prefixed framing and read/write
// helpers shared by the byte-stream transports (TCP and stdio), plus a
// timeout-bounded dial helper for the connection pool.
package sockutil

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// DefaultMaxMessageSize bounds a single framed message, matching the
// protocol's stated default.
const DefaultMaxMessageSize = 1 << 20 // 1 MiB

// ErrMessageTooLarge is returned by ReadFrame when the declared length
// exceeds maxSize.
var ErrMessageTooLarge = errors.New("sockutil: frame exceeds maximum message size")

// WriteFrame writes a 4-byte big-endian length prefix followed by payload to
// w. It is the inverse of ReadFrame.
func WriteFrame(w io.Writer, payload []byte) error {
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("sockutil: write frame header: %w", err)
	}
	if len(payload) == 0 {
		return nil
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("sockutil: write frame payload: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame from r, rejecting frames whose
// declared length exceeds maxSize (0 means DefaultMaxMessageSize).
func ReadFrame(r io.Reader, maxSize int) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxMessageSize
	}
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if int(n) > maxSize {
		return nil, ErrMessageTooLarge
	}
	buf := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, buf); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("sockutil: read frame payload: %w", err)
		}
	}
	return buf, nil
}

// SendExact writes all of buf to w, looping until the full buffer is
// written or an error occurs. io.Writer.Write already gives this guarantee
// for well-behaved implementations, but callers that pass raw net.Conn
// writers under partial-write conditions (e.g. after a WriteDeadline trims a
// large buffer) go through here for the explicit retry loop.
func SendExact(w io.Writer, buf []byte) error {
	for len(buf) > 0 {
		n, err := w.Write(buf)
		if err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}

// RecvExact reads exactly len(buf) bytes from r into buf.
func RecvExact(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	return err
}

// DialTimeout dials addr on network, bounding the connect by timeout. No
// deadline is set on the returned connection.
func DialTimeout(network, addr string, timeout time.Duration) (net.Conn, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.Dial(network, addr)
	if err != nil {
		return nil, fmt.Errorf("sockutil: dial %s %s: %w", network, addr, err)
	}
	return conn, nil
}
