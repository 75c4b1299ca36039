// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package server

import (
	"context"
	"sync/atomic"

	json "github.com/segmentio/encoding/json"

	"github.com/coremcp/mcpd/content"
	"github.com/coremcp/mcpd/protocol"
	"github.com/coremcp/mcpd/registry"
	"github.com/coremcp/mcpd/toolschema"
)

// route dispatches one JSON-RPC method to its handler. A nil *WireError
// with a nil result is a valid outcome only for methods whose result is
// legitimately empty; every handler below always returns a non-nil
// result on success.
func (s *Server) route(ctx context.Context, method string, params []byte) (any, *protocol.WireError) {
	switch method {
	case "list_resources":
		return s.listResources(ctx)
	case "list_resource_templates":
		return s.listResourceTemplates(ctx)
	case "read_resource":
		return s.readResource(ctx, params)
	case "list_tools":
		return s.listTools(ctx)
	case "call_tool":
		return s.callTool(ctx, params)
	default:
		return nil, protocol.NewError(protocol.CodeMethodNotFound, "method not found: "+method)
	}
}

type resourceListResult struct {
	Resources []registry.Resource `json:"resources"`
}

func (s *Server) listResources(ctx context.Context) (any, *protocol.WireError) {
	if !s.cfg.ResourcesEnabled {
		return nil, protocol.NewError(protocol.CodeMethodNotFound, "resources capability disabled")
	}
	return resourceListResult{Resources: s.registry.ListResources()}, nil
}

type resourceTemplateListResult struct {
	ResourceTemplates []registry.ResourceTemplate `json:"resourceTemplates"`
}

func (s *Server) listResourceTemplates(ctx context.Context) (any, *protocol.WireError) {
	if !s.cfg.ResourcesEnabled {
		return nil, protocol.NewError(protocol.CodeMethodNotFound, "resources capability disabled")
	}
	return resourceTemplateListResult{ResourceTemplates: s.registry.ListResourceTemplates()}, nil
}

type readResourceParams struct {
	URI string `json:"uri"`
}

func (s *Server) readResource(ctx context.Context, raw []byte) (any, *protocol.WireError) {
	if !s.cfg.ResourcesEnabled {
		return nil, protocol.NewError(protocol.CodeMethodNotFound, "resources capability disabled")
	}
	var p readResourceParams
	if err := json.Unmarshal(raw, &p); err != nil || p.URI == "" {
		return nil, protocol.NewError(protocol.CodeInvalidParams, "read_resource requires a non-empty uri")
	}

	if cached, ok := s.cache.Get(p.URI); ok {
		atomic.AddInt64(&s.cacheHits, 1)
		return content.MarshalReadResource(p.URI, cached), nil
	}
	atomic.AddInt64(&s.cacheMisses, 1)

	handler, params, ok := s.registry.ResolveResource(p.URI)
	if !ok {
		return nil, protocol.NewError(protocol.CodeServerError, "resource not found: "+p.URI)
	}
	items, err := handler(ctx, p.URI, params)
	if err != nil {
		return nil, protocol.NewError(protocol.CodeInternalError, "resource handler failed: "+err.Error())
	}
	if len(items) == 0 {
		return nil, protocol.NewError(protocol.CodeInternalError, "resource handler returned no content")
	}
	s.cache.Put(p.URI, items, s.cfg.CacheTTL)
	return content.MarshalReadResource(p.URI, items), nil
}

type toolDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	InputSchema any    `json:"inputSchema"`
}

type toolListResult struct {
	Tools []toolDescriptor `json:"tools"`
}

func (s *Server) listTools(ctx context.Context) (any, *protocol.WireError) {
	tools := s.registry.ListTools()
	out := make([]toolDescriptor, 0, len(tools))
	for _, t := range tools {
		schema, err := toolschema.Build(t.Params)
		if err != nil {
			return nil, protocol.NewError(protocol.CodeInternalError, "failed to build schema for tool "+t.Name+": "+err.Error())
		}
		out = append(out, toolDescriptor{Name: t.Name, Description: t.Description, InputSchema: schema})
	}
	return toolListResult{Tools: out}, nil
}

type callToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type callToolResult struct {
	Content []content.Item `json:"-"`
	IsError bool           `json:"isError"`
}

// MarshalJSON renders the call_tool result's content array through
// content.MarshalToolContent rather than content.Item's own field layout.
func (r callToolResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Content any  `json:"content"`
		IsError bool `json:"isError"`
	}{
		Content: content.MarshalToolContent(r.Content),
		IsError: r.IsError,
	})
}

func (s *Server) callTool(ctx context.Context, raw []byte) (any, *protocol.WireError) {
	var p callToolParams
	if err := json.Unmarshal(raw, &p); err != nil || p.Name == "" {
		return nil, protocol.NewError(protocol.CodeInvalidParams, "call_tool requires a non-empty name")
	}
	args := p.Arguments
	if args == nil {
		args = json.RawMessage("{}")
	}

	handler, _, ok := s.registry.ResolveTool(p.Name)
	if !ok {
		return nil, protocol.NewError(protocol.CodeServerError, "tool not found: "+p.Name)
	}
	items, isError, err := handler(ctx, args)
	if err != nil {
		return nil, protocol.NewError(protocol.CodeInternalError, "tool handler failed: "+err.Error())
	}
	if len(items) == 0 && !isError {
		return nil, protocol.NewError(protocol.CodeInternalError, "tool handler returned no content")
	}
	return callToolResult{Content: items, IsError: isError}, nil
}
