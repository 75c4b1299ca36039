// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package server

import (
	"context"

	json "github.com/segmentio/encoding/json"

	"github.com/coremcp/mcpd/internal/arena"
	"github.com/coremcp/mcpd/internal/wirejson"
	"github.com/coremcp/mcpd/protocol"
)

// dispatch is the server's ingress entry point: transport bytes in, a
// framed JSON-RPC response out through reply. It offloads the actual
// parse/route/handle work to the worker pool (spec §4.2's thread-pool
// offloading); if the pool's queue is full, it answers synchronously on
// the calling (I/O) goroutine with -32000 Server busy, without touching
// any worker's arena.
func (s *Server) dispatch(ctx context.Context, body []byte, clientKey string, reply replyFunc) {
	err := s.pool.SubmitState(func(state any) {
		s.process(ctx, body, clientKey, reply, state)
	})
	if err == nil {
		return
	}
	id := peekID(body)
	if id == 0 {
		return // can't usefully report to a fire-and-forget caller; drop.
	}
	s.sendError(ctx, reply, id, protocol.CodeServerError, "server busy")
}

// peekID best-effort extracts a top-level "id" field without allocating
// through the arena-parse path, for use only on the synchronous busy-path
// above where no worker (and therefore no arena) is available.
func peekID(body []byte) uint64 {
	var m struct {
		ID uint64 `json:"id"`
	}
	_ = json.Unmarshal(body, &m)
	return m.ID
}

// process runs on a worker goroutine with its own thread-local arena
// (acquired once at worker spawn via workerpool.Lifecycle, reset here at
// the start of every task). Before any parsing, the caller's rate-limit
// bucket is checked; a rejected request gets id 0, matching the spec's
// "before parse" ordering (no id is known yet at that point).
func (s *Server) process(ctx context.Context, body []byte, clientKey string, reply replyFunc, state any) {
	handle, _ := state.(*arena.Handle)
	var a *arena.Arena
	if handle != nil {
		handle.Reset()
		a = handle.Arena()
	} else {
		a = arena.New(0)
	}

	if !s.limiter.Allow(clientKey) {
		s.sendError(ctx, reply, 0, protocol.CodeServerError, "rate limit exceeded")
		return
	}

	root, err := wirejson.Parse(a, body)
	if err != nil {
		s.sendError(ctx, reply, 0, protocol.CodeParseError, "invalid JSON: "+err.Error())
		return
	}
	if root.Kind() == wirejson.KindArray {
		s.sendError(ctx, reply, 0, protocol.CodeInvalidRequest, "batched JSON-RPC requests are not supported")
		return
	}
	if root.Kind() != wirejson.KindObject {
		s.sendError(ctx, reply, 0, protocol.CodeInvalidRequest, "request must be a JSON object")
		return
	}

	methodVal, ok := root.Field("method")
	method, isStr := methodVal.String()
	if !ok || !isStr || method == "" {
		s.sendError(ctx, reply, 0, protocol.CodeInvalidRequest, "message has no method")
		return
	}

	var id uint64
	if idVal, ok := root.Field("id"); ok {
		if n, ok := idVal.Number(); ok {
			id = uint64(n)
		}
	}

	paramsVal, hasParams := root.Field("params")
	var paramsJSON []byte
	if hasParams && !paramsVal.IsNull() {
		paramsJSON = []byte(wirejson.Print(paramsVal))
	}

	result, werr := s.route(ctx, method, paramsJSON)
	if id == 0 {
		// Notification: side effects already ran; JSON-RPC notifications
		// never receive a response, successful or not.
		if werr != nil {
			s.log.Warn("notification %q failed: %s", method, werr.Message)
		}
		return
	}
	if werr != nil {
		s.sendError(ctx, reply, id, werr.Code, werr.Message)
		return
	}
	s.sendResult(ctx, reply, id, result)
}

func (s *Server) sendResult(ctx context.Context, reply replyFunc, id uint64, result any) {
	resp, err := protocol.NewResultResponse(id, result)
	if err != nil {
		s.sendError(ctx, reply, id, protocol.CodeInternalError, "failed to build response")
		return
	}
	s.send(ctx, reply, resp)
}

func (s *Server) sendError(ctx context.Context, reply replyFunc, id uint64, code int32, message string) {
	s.send(ctx, reply, protocol.NewErrorResponse(id, protocol.NewError(code, message)))
}

func (s *Server) send(ctx context.Context, reply replyFunc, resp *protocol.Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		// Allocation/marshal failure building the response: best effort
		// already failed, so the client will see this as a timeout.
		s.log.Error("failed to marshal response: %v", err)
		return
	}
	if err := reply(ctx, data); err != nil {
		s.log.Error("failed to send response: %v", err)
	}
}
