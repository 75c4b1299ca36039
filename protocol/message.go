// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package protocol defines the JSON-RPC 2.0 wire types shared by the
// client, server, and every transport: requests, responses, notifications,
// and the error-code taxonomy. Structured wire messages are marshaled with
// github.com/segmentio/encoding/json, a drop-in encoding/json replacement
// used throughout the module for typed struct (de)serialization.
package protocol

import (
	"fmt"

	json "github.com/segmentio/encoding/json"
)

const Version = "2.0"

// Error codes, per the JSON-RPC 2.0 spec plus the server's application
// band.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	// CodeServerError is the low end of the -32000..-32099 application band;
	// handlers and the dispatcher both use it for busy/rate-limit/not-found
	// conditions that aren't one of the standard codes above.
	CodeServerError = -32000
)

// WireError is the {code, message, data?} object carried by a Response.
type WireError struct {
	Code    int32           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *WireError) Error() string {
	return fmt.Sprintf("jsonrpc: %s (code %d)", e.Message, e.Code)
}

// NewError builds a WireError with no data payload.
func NewError(code int32, message string) *WireError {
	return &WireError{Code: code, Message: message}
}

// Request is both a call (ID != 0) and a notification (ID == 0); the spec
// reserves id 0 to mean "no id".
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether r carries no id, and therefore expects no
// response.
func (r *Request) IsNotification() bool { return r.ID == 0 }

// Response carries exactly one of Result or Error.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *WireError      `json:"error,omitempty"`
}

// NewRequest builds a call (or, if id == 0, a notification) with params
// marshaled from p.
func NewRequest(id uint64, method string, p any) (*Request, error) {
	raw, err := marshalParams(p)
	if err != nil {
		return nil, err
	}
	return &Request{JSONRPC: Version, ID: id, Method: method, Params: raw}, nil
}

// NewResultResponse builds a successful response carrying result.
func NewResultResponse(id uint64, result any) (*Response, error) {
	raw, err := marshalParams(result)
	if err != nil {
		return nil, err
	}
	return &Response{JSONRPC: Version, ID: id, Result: raw}, nil
}

// NewErrorResponse builds a failed response.
func NewErrorResponse(id uint64, werr *WireError) *Response {
	return &Response{JSONRPC: Version, ID: id, Error: werr}
}

func marshalParams(p any) (json.RawMessage, error) {
	if p == nil {
		return nil, nil
	}
	if raw, ok := p.(json.RawMessage); ok {
		return raw, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("protocol: marshal params: %w", err)
	}
	return data, nil
}

// peekMessage is used to classify an incoming frame before fully decoding
// it: a "method" key present means Request, its absence means Response.
type peekMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	Result  json.RawMessage `json:"result"`
	Error   *WireError      `json:"error"`
}

// Decode classifies and decodes a single JSON-RPC message. Batches (a
// top-level JSON array) are explicitly out of scope and rejected with
// CodeInvalidRequest.
func Decode(data []byte) (*Request, *Response, error) {
	trimmed := trimLeadingSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return nil, nil, NewError(CodeInvalidRequest, "batched JSON-RPC requests are not supported")
	}
	var m peekMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, nil, NewError(CodeParseError, "invalid JSON: "+err.Error())
	}
	if m.Method != "" {
		return &Request{JSONRPC: m.JSONRPC, ID: m.ID, Method: m.Method, Params: m.Params}, nil, nil
	}
	if m.Result == nil && m.Error == nil {
		return nil, nil, NewError(CodeInvalidRequest, "message has neither method, result, nor error")
	}
	return nil, &Response{JSONRPC: m.JSONRPC, ID: m.ID, Result: m.Result, Error: m.Error}, nil
}

func trimLeadingSpace(b []byte) []byte {
	i := 0
	for i < len(b) {
		switch b[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return b[i:]
		}
	}
	return nil
}
