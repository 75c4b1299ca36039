// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/coremcp/mcpd/internal/mcplog"
)

// HTTPClient is the plain request-response transport: each Send is one
// POST whose response body is delivered synchronously to the stored
// message callback before Send returns, since the HTTP transport has no
// asynchronous receive thread of its own.
type HTTPClient struct {
	url       string
	client    *http.Client
	apiKey    string
	clientKey string
	log       *mcplog.Logger

	onMessage MessageCallback
}

// NewHTTPClient returns an HTTP client transport posting to url.
func NewHTTPClient(url string, timeout time.Duration, apiKey string, log *mcplog.Logger) *HTTPClient {
	if log == nil {
		log = mcplog.Discard()
	}
	return &HTTPClient{
		url:       url,
		client:    &http.Client{Timeout: timeout},
		apiKey:    apiKey,
		clientKey: url,
		log:       log,
	}
}

func (t *HTTPClient) Start(ctx context.Context, onMessage MessageCallback, onError ErrorCallback) error {
	t.onMessage = onMessage
	return nil
}

func (t *HTTPClient) Send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("transport: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("transport: http post %s: %w", t.url, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("transport: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("transport: http post %s: status %d: %s", t.url, resp.StatusCode, respBody)
	}
	if len(respBody) > 0 && t.onMessage != nil {
		t.onMessage(ctx, respBody, t.clientKey)
	}
	return nil
}

func (t *HTTPClient) Stop() error { return nil }

// HTTPServerHandler adapts the dispatcher's callback pair to a plain
// http.Handler: one request body in, one response body out, no framing.
// It is mounted at a single path (e.g. "/call_tool") by cmd/mcpd.
type HTTPServerHandler struct {
	onMessage MessageCallback
	onError   ErrorCallback
	log       *mcplog.Logger
}

// NewHTTPServerHandler builds an http.Handler. The dispatcher's
// onMessage implementation is expected to write the JSON-RPC response
// through the request's stashed http.ResponseWriter (see
// ResponseWriterFromContext), since the synchronous plain-HTTP path
// carries no other way to route a reply back to the caller.
func NewHTTPServerHandler(onMessage MessageCallback, onError ErrorCallback, log *mcplog.Logger) *HTTPServerHandler {
	if log == nil {
		log = mcplog.Discard()
	}
	return &HTTPServerHandler{onMessage: onMessage, onError: onError, log: log}
}

func (h *HTTPServerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	clientKey := r.RemoteAddr
	if key := r.Header.Get("Authorization"); key != "" {
		sum := sha256.Sum256([]byte(key))
		clientKey = hex.EncodeToString(sum[:])
	}
	ctx := contextWithResponseWriter(r.Context(), w)
	h.onMessage(ctx, body, clientKey)
}
