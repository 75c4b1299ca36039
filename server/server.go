// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package server implements the MCP request pipeline (spec component J):
// receive -> rate-limit -> arena-scoped parse -> route -> handler ->
// serialize -> reply, fronted by a bounded worker pool and guarded by a
// per-URI resource cache. It is transport-agnostic: any number of
// transport.Transport values (TCP, stdio, WebSocket, MQTT, plain HTTP,
// Streamable HTTP) can be attached to the same Server and share its
// registry, cache, rate limiter, and worker pool.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/coremcp/mcpd/cache"
	"github.com/coremcp/mcpd/internal/arena"
	"github.com/coremcp/mcpd/internal/mcplog"
	"github.com/coremcp/mcpd/pool"
	"github.com/coremcp/mcpd/ratelimit"
	"github.com/coremcp/mcpd/registry"
	"github.com/coremcp/mcpd/transport"
	"github.com/coremcp/mcpd/workerpool"
)

// Config configures a Server's ambient limits: queueing, worker count,
// rate limiting, cache sizing, and the per-worker arena chunk size.
type Config struct {
	QueueSize      int
	Workers        int
	SubmitTimeout  time.Duration
	ArenaChunkSize int

	RateLimitMaxRequests int
	RateLimitWindow      time.Duration

	CacheCapacity int
	CacheTTL      time.Duration

	// ResourcesEnabled gates list_resources, list_resource_templates, and
	// read_resource; false answers all three with "method not found",
	// per spec §4.2's "Fails with -32601 if resources capability disabled".
	ResourcesEnabled bool

	// BackendPool, if set, is exposed to resource/tool handlers via
	// Server.BackendPool so they can proxy work through a pooled TCP
	// connection to an upstream service (spec component G), rather than
	// dialing ad hoc per call.
	BackendPool *pool.Pool
}

func (c *Config) setDefaults() {
	if c.QueueSize <= 0 {
		c.QueueSize = 1024
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.ArenaChunkSize <= 0 {
		c.ArenaChunkSize = 1 << 20
	}
	if c.RateLimitMaxRequests <= 0 {
		c.RateLimitMaxRequests = 100
	}
	if c.RateLimitWindow <= 0 {
		c.RateLimitWindow = time.Second
	}
	if c.CacheCapacity <= 0 {
		c.CacheCapacity = 256
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 5 * time.Minute
	}
}

// replyFunc sends one JSON-RPC response (or notification-side error log)
// back to whichever connection produced the request that's being
// answered.
type replyFunc func(ctx context.Context, resp []byte) error

// Server is the transport-agnostic MCP dispatcher: a registry of
// resources/templates/tools, a resource cache, a rate limiter, and a
// bounded worker pool, reachable from any number of attached transports.
type Server struct {
	cfg Config
	log *mcplog.Logger

	registry *registry.Registry
	cache    *cache.Cache
	limiter  *ratelimit.Limiter
	pool     *workerpool.Pool
	arenas   *arena.TLS

	connsMu sync.RWMutex
	conns   map[string]transport.Transport

	httpServer *http.Server
	router     *mux.Router
	streamable *transport.StreamableServer

	statsMu     sync.Mutex
	cacheHits   int64
	cacheMisses int64
}

// New builds a Server. Resources, templates, and tools are registered
// with RegisterResource/RegisterTemplate/RegisterTool before any
// transport is attached.
func New(cfg Config, log *mcplog.Logger) *Server {
	cfg.setDefaults()
	if log == nil {
		log = mcplog.Discard()
	}
	s := &Server{
		cfg:      cfg,
		log:      log,
		registry: registry.New(),
		cache:    cache.New(cfg.CacheCapacity, cfg.CacheTTL),
		limiter:  ratelimit.New(cfg.RateLimitMaxRequests, cfg.RateLimitWindow),
		arenas:   arena.NewTLS(),
		conns:    make(map[string]transport.Transport),
	}
	s.pool = workerpool.NewWithLifecycle(cfg.QueueSize, cfg.Workers, cfg.SubmitTimeout, workerpool.Lifecycle{
		Init:     func() any { return s.arenas.Acquire(cfg.ArenaChunkSize) },
		Teardown: func(state any) { state.(*arena.Handle).Release() },
	})
	return s
}

// Registry exposes the underlying registry for RegisterResource/
// RegisterTemplate/RegisterTool, kept on Server itself for convenience.
func (s *Server) Registry() *registry.Registry { return s.registry }

// BackendPool returns the optional upstream connection pool configured in
// Config, or nil if none was set. Resource/tool handlers may use it to
// avoid dialing a fresh TCP connection per call.
func (s *Server) BackendPool() *pool.Pool { return s.cfg.BackendPool }

// InvalidateCache drops uri from the resource cache, e.g. after a
// handler observes the underlying data changed.
func (s *Server) InvalidateCache(uri string) { s.cache.Invalidate(uri) }

// trackConn registers t under clientKey so a later reply can be routed
// back to it. Stream transports with many simultaneous connections (TCP)
// call this once per accepted connection; single-connection transports
// (stdio, a dialed WebSocket, MQTT) call it once at Attach time.
//
// Entries are not actively reaped on disconnect: the transport package's
// ErrorCallback carries no clientKey, so there is no cheap signal to
// untrack a closed TCP peer from here. Each TCP clientKey is a
// host:ephemeral-port pair that is not reused within a process lifetime,
// so this is a bounded, accepted leak rather than an unbounded one.
func (s *Server) trackConn(clientKey string, t transport.Transport) {
	s.connsMu.Lock()
	s.conns[clientKey] = t
	s.connsMu.Unlock()
}

func (s *Server) untrackConn(clientKey string) {
	s.connsMu.Lock()
	delete(s.conns, clientKey)
	s.connsMu.Unlock()
}

// onMessage is the transport.MessageCallback shared by every attached
// transport; it picks the right replier for ctx/clientKey and hands the
// message to the dispatch pipeline.
func (s *Server) onMessage(ctx context.Context, body []byte, clientKey string) {
	s.dispatch(ctx, body, clientKey, s.replierFor(ctx, clientKey))
}

// onError is the transport.ErrorCallback shared by every attached
// transport.
func (s *Server) onError(err error) {
	s.log.Error("transport error: %v", err)
}

func (s *Server) replierFor(ctx context.Context, clientKey string) replyFunc {
	if w, ok := transport.ResponseWriterFromContext(ctx); ok {
		return func(ctx context.Context, resp []byte) error {
			w.Header().Set("Content-Type", "application/json")
			_, err := w.Write(resp)
			return err
		}
	}
	s.connsMu.RLock()
	t, ok := s.conns[clientKey]
	s.connsMu.RUnlock()
	if !ok {
		return func(context.Context, []byte) error {
			return fmt.Errorf("server: no transport registered for client %q", clientKey)
		}
	}
	return t.Send
}

// AttachStdio starts t and registers it as the process's one stdio
// connection.
func (s *Server) AttachStdio(ctx context.Context, t *transport.Stdio) error {
	if err := t.Start(ctx, s.onMessage, s.onError); err != nil {
		return err
	}
	s.trackConn(t.ClientKey(), t)
	return nil
}

// AttachTCP starts accepting connections on srv, tracking each one under
// its peer-address clientKey so replies route back correctly.
func (s *Server) AttachTCP(ctx context.Context, srv *transport.TCPServer) {
	go func() {
		if err := srv.Serve(ctx, s.onMessage, s.onError, func(t transport.Transport) {
			if kt, ok := t.(transport.KeyedTransport); ok {
				s.trackConn(kt.ClientKey(), t)
			}
		}); err != nil {
			s.log.Error("tcp server stopped: %v", err)
		}
	}()
}

// AttachWebSocket upgrades one incoming HTTP request to a WebSocket
// transport and starts it, tracking it under its peer address.
func (s *Server) AttachWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	ws, err := transport.UpgradeWebSocket(w, r, s.log)
	if err != nil {
		return err
	}
	if err := ws.Start(ctx, s.onMessage, s.onError); err != nil {
		return err
	}
	s.trackConn(ws.ClientKey(), ws)
	return nil
}

// AttachMQTT starts t and registers it under its broker/topic clientKey.
func (s *Server) AttachMQTT(ctx context.Context, t *transport.MQTT) error {
	if err := t.Start(ctx, s.onMessage, s.onError); err != nil {
		return err
	}
	s.trackConn(t.ClientKey(), t)
	return nil
}

// HTTPConfig configures the combined plain-HTTP + Streamable-HTTP mux
// mounted by ListenAndServeHTTP.
type HTTPConfig struct {
	Addr             string
	StreamablePrefix string // default "/mcp"
	CallToolPath     string // default "/call_tool"
	StatsPath        string // default "/stats"
	Streamable       transport.StreamableServerConfig
}

// ListenAndServeHTTP mounts the plain /call_tool demo endpoint, the
// Streamable-HTTP /mcp endpoint, and a /stats introspection endpoint on
// one *http.Server, and starts serving in a background goroutine.
func (s *Server) ListenAndServeHTTP(ctx context.Context, cfg HTTPConfig) error {
	if cfg.StreamablePrefix == "" {
		cfg.StreamablePrefix = "/mcp"
	}
	if cfg.CallToolPath == "" {
		cfg.CallToolPath = "/call_tool"
	}
	if cfg.StatsPath == "" {
		cfg.StatsPath = "/stats"
	}

	router := mux.NewRouter()
	router.Handle(cfg.CallToolPath, transport.NewHTTPServerHandler(s.onMessage, s.onError, s.log)).Methods(http.MethodPost)
	router.HandleFunc(cfg.StatsPath, s.serveStats).Methods(http.MethodGet)
	s.streamable = transport.NewStreamableServer(router, cfg.StreamablePrefix, cfg.Streamable, s.onMessage, s.onError, s.log)
	s.router = router

	s.httpServer = &http.Server{Addr: cfg.Addr, Handler: router}
	ln, err := newListener(cfg.Addr)
	if err != nil {
		return err
	}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("http server stopped: %v", err)
		}
	}()
	return nil
}

// Shutdown stops the HTTP server (if any) and the worker pool, draining
// in-flight tasks before returning.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	if s.streamable != nil {
		s.streamable.Close()
	}
	s.pool.Shutdown()
	return err
}
