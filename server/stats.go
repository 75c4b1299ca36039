// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package server

import (
	"net/http"
	"sync/atomic"

	json "github.com/segmentio/encoding/json"

	"github.com/coremcp/mcpd/workerpool"
)

// Stats is a point-in-time snapshot of the dispatcher's lock-free and
// advisory counters, per SPEC_FULL's stats/introspection surface.
type Stats struct {
	Pool        workerpool.Stats `json:"pool"`
	CacheCount  int64            `json:"cacheCount"`
	CacheHits   int64            `json:"cacheHits"`
	CacheMisses int64            `json:"cacheMisses"`
	Connections int              `json:"connections"`
}

// Stats returns a snapshot of the server's counters. Reads may be
// non-linearizable with concurrent activity, matching the worker pool's
// own advisory counters.
func (s *Server) Stats() Stats {
	s.connsMu.RLock()
	conns := len(s.conns)
	s.connsMu.RUnlock()
	return Stats{
		Pool:        s.pool.Stats(),
		CacheCount:  s.cache.Count(),
		CacheHits:   atomic.LoadInt64(&s.cacheHits),
		CacheMisses: atomic.LoadInt64(&s.cacheMisses),
		Connections: conns,
	}
}

func (s *Server) serveStats(w http.ResponseWriter, r *http.Request) {
	data, err := json.Marshal(s.Stats())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
