// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package server

import "net"

func newListener(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}
