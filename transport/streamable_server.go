// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/coremcp/mcpd/internal/mcplog"
)

// sseEvent is one buffered, replayable Streamable-HTTP server push.
type sseEvent struct {
	id   uint64
	data []byte
}

// streamableSession tracks one Mcp-Session-Id: the client's plain POST
// responses need no session state, but the resumable SSE stream attached
// to GET /mcp needs a per-session event log to replay after Last-Event-ID.
type streamableSession struct {
	mu         sync.Mutex
	id         string
	nextEvent  uint64
	backlog    []sseEvent
	backlogCap int
	writers    map[chan sseEvent]struct{}
	lastSeenAt time.Time
}

func newStreamableSession(id string, backlogCap int) *streamableSession {
	return &streamableSession{id: id, backlogCap: backlogCap, writers: map[chan sseEvent]struct{}{}, lastSeenAt: time.Now()}
}

func (s *streamableSession) publish(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEvent++
	ev := sseEvent{id: s.nextEvent, data: data}
	s.backlog = append(s.backlog, ev)
	if len(s.backlog) > s.backlogCap {
		s.backlog = s.backlog[len(s.backlog)-s.backlogCap:]
	}
	for ch := range s.writers {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *streamableSession) subscribe(lastEventID uint64) (chan sseEvent, []sseEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var replay []sseEvent
	for _, ev := range s.backlog {
		if ev.id > lastEventID {
			replay = append(replay, ev)
		}
	}
	ch := make(chan sseEvent, 16)
	s.writers[ch] = struct{}{}
	return ch, replay
}

func (s *streamableSession) unsubscribe(ch chan sseEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.writers, ch)
}

// StreamableServerConfig configures the server-side Streamable-HTTP
// endpoint.
type StreamableServerConfig struct {
	EnableSessions bool
	SessionTTL     time.Duration
	BacklogSize    int
}

// StreamableServer mounts the Streamable-HTTP /mcp endpoint: POST for
// synchronous JSON-RPC request/response, GET for a resumable SSE stream
// of server-pushed messages, DELETE to terminate a session.
type StreamableServer struct {
	cfg       StreamableServerConfig
	onMessage MessageCallback
	onError   ErrorCallback
	log       *mcplog.Logger

	mu       sync.Mutex
	sessions map[string]*streamableSession
	closing  bool

	router     *mux.Router
	stopReaper chan struct{}
	reaperDone chan struct{}
}

// NewStreamableServer builds a StreamableServer and registers its routes
// on router under prefix (typically "/mcp").
func NewStreamableServer(router *mux.Router, prefix string, cfg StreamableServerConfig, onMessage MessageCallback, onError ErrorCallback, log *mcplog.Logger) *StreamableServer {
	if log == nil {
		log = mcplog.Discard()
	}
	if cfg.BacklogSize <= 0 {
		cfg.BacklogSize = 256
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	s := &StreamableServer{
		cfg:        cfg,
		onMessage:  onMessage,
		onError:    onError,
		log:        log,
		sessions:   map[string]*streamableSession{},
		router:     router,
		stopReaper: make(chan struct{}),
		reaperDone: make(chan struct{}),
	}
	router.HandleFunc(prefix, s.handlePost).Methods(http.MethodPost)
	router.HandleFunc(prefix, s.handleGet).Methods(http.MethodGet)
	router.HandleFunc(prefix, s.handleDelete).Methods(http.MethodDelete)
	go s.reapLoop()
	return s
}

// reapLoop periodically evicts sessions idle past cfg.SessionTTL, mirroring
// pool.Pool's idle-connection reaper.
func (s *StreamableServer) reapLoop() {
	interval := s.cfg.SessionTTL / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(s.reaperDone)
	for {
		select {
		case <-s.stopReaper:
			return
		case <-ticker.C:
		}
		if s.reapSessions(time.Now()) {
			return
		}
	}
}

// Close stops the session reaper and waits for it to exit. It does not
// close in-flight SSE connections; those end when their request context
// is canceled by the owning HTTP server's shutdown.
func (s *StreamableServer) Close() {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return
	}
	s.closing = true
	s.mu.Unlock()

	close(s.stopReaper)
	<-s.reaperDone
}

func newSessionID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func (s *StreamableServer) sessionFor(id string) *streamableSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = newStreamableSession(id, s.cfg.BacklogSize)
		s.sessions[id] = sess
	}
	sess.lastSeenAt = time.Now()
	return sess
}

func (s *StreamableServer) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	sessionID := r.Header.Get("Mcp-Session-Id")
	if s.cfg.EnableSessions && sessionID == "" {
		sessionID = newSessionID()
	}
	if s.cfg.EnableSessions {
		s.sessionFor(sessionID)
		w.Header().Set("Mcp-Session-Id", sessionID)
	}

	clientKey := r.RemoteAddr
	if sessionID != "" {
		clientKey = sessionID
	}
	ctx := contextWithResponseWriter(r.Context(), w)
	s.onMessage(ctx, body, clientKey)
}

func (s *StreamableServer) handleGet(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	sessionID := r.Header.Get("Mcp-Session-Id")
	if s.cfg.EnableSessions && sessionID == "" {
		http.Error(w, "missing Mcp-Session-Id", http.StatusBadRequest)
		return
	}
	sess := s.sessionFor(sessionID)

	var lastEventID uint64
	if raw := r.Header.Get("Last-Event-ID"); raw != "" {
		fmt.Sscanf(raw, "%d", &lastEventID)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ch, replay := sess.subscribe(lastEventID)
	defer sess.unsubscribe(ch)

	for _, ev := range replay {
		writeSSE(w, ev)
	}
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev sseEvent) {
	fmt.Fprintf(w, "id: %d\nevent: message\ndata: %s\n\n", ev.id, ev.data)
}

func (s *StreamableServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get("Mcp-Session-Id")
	if sessionID == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// Publish pushes data to every SSE subscriber of sessionID, buffering it
// for replay by clients that reconnect with Last-Event-ID.
func (s *StreamableServer) Publish(sessionID string, data []byte) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return
	}
	sess.publish(data)
}

// reapSessions removes sessions idle past cfg.SessionTTL and reports
// whether the server has since closed, so reapLoop knows to stop ticking.
func (s *StreamableServer) reapSessions(now time.Time) (closed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return true
	}
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := now.Sub(sess.lastSeenAt)
		sess.mu.Unlock()
		if idle > s.cfg.SessionTTL {
			delete(s.sessions, id)
		}
	}
	return false
}
