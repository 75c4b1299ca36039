// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package registry holds a server's resources, resource templates, and
// tools, enforcing the uniqueness invariants the dispatcher relies on:
// tool names are unique, and static resource URIs are unique.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/coremcp/mcpd/content"
	"github.com/coremcp/mcpd/toolschema"
	"github.com/coremcp/mcpd/uritemplate"
)

// Resource describes one statically addressable resource.
type Resource struct {
	URI         string
	Name        string
	MIMEType    string
	Description string
}

// ResourceTemplate describes a URI-templated family of resources.
type ResourceTemplate struct {
	URITemplate string
	Name        string
	MIMEType    string
	Description string
}

// Tool describes one invocable tool.
type Tool struct {
	Name        string
	Description string
	Params      []toolschema.ParamSchema
}

// ResourceHandler produces the content for a resource read. params is
// nil for a static resource, or the extracted placeholder values for a
// templated one.
type ResourceHandler func(ctx context.Context, uri string, params map[string]uritemplate.Value) ([]content.Item, error)

// ToolHandler invokes a tool with its raw JSON arguments (or "{}").
// isError reports application-level tool failure, distinct from err,
// which signals a handler/infrastructure fault.
type ToolHandler func(ctx context.Context, arguments []byte) (items []content.Item, isError bool, err error)

type registeredTemplate struct {
	ResourceTemplate
	tmpl    *uritemplate.Template
	handler ResourceHandler
}

type registeredResource struct {
	Resource
	handler ResourceHandler
}

type registeredTool struct {
	Tool
	handler ToolHandler
}

// Registry is the server's resource/tool registry.
type Registry struct {
	mu        sync.RWMutex
	resources map[string]*registeredResource
	templates []*registeredTemplate
	tools     map[string]*registeredTool
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		resources: make(map[string]*registeredResource),
		tools:     make(map[string]*registeredTool),
	}
}

// RegisterResource adds a static resource. It errors if r.URI is empty
// or already registered.
func (r *Registry) RegisterResource(res Resource, handler ResourceHandler) error {
	if res.URI == "" {
		return fmt.Errorf("registry: resource URI must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.resources[res.URI]; exists {
		return fmt.Errorf("registry: resource URI %q already registered", res.URI)
	}
	r.resources[res.URI] = &registeredResource{Resource: res, handler: handler}
	return nil
}

// RegisterTemplate adds a URI-templated resource family.
func (r *Registry) RegisterTemplate(rt ResourceTemplate, handler ResourceHandler) error {
	tmpl, err := uritemplate.Parse(rt.URITemplate)
	if err != nil {
		return fmt.Errorf("registry: invalid resource template %q: %w", rt.URITemplate, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates = append(r.templates, &registeredTemplate{ResourceTemplate: rt, tmpl: tmpl, handler: handler})
	return nil
}

// RegisterTool adds a tool. It errors if t.Name is empty or already
// registered.
func (r *Registry) RegisterTool(t Tool, handler ToolHandler) error {
	if t.Name == "" {
		return fmt.Errorf("registry: tool name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name]; exists {
		return fmt.Errorf("registry: tool %q already registered", t.Name)
	}
	r.tools[t.Name] = &registeredTool{Tool: t, handler: handler}
	return nil
}

// ListResources returns the registered static resources, in no
// guaranteed order.
func (r *Registry) ListResources() []Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Resource, 0, len(r.resources))
	for _, rr := range r.resources {
		out = append(out, rr.Resource)
	}
	return out
}

// ListResourceTemplates returns the registered resource templates.
func (r *Registry) ListResourceTemplates() []ResourceTemplate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ResourceTemplate, 0, len(r.templates))
	for _, rt := range r.templates {
		out = append(out, rt.ResourceTemplate)
	}
	return out
}

// ListTools returns the registered tools.
func (r *Registry) ListTools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.tools))
	for _, rt := range r.tools {
		out = append(out, rt.Tool)
	}
	return out
}

// ResolveResource finds the handler for uri, checking static resources
// first (exact match) and then resource templates in registration
// order. params is nil when the match was a static resource.
func (r *Registry) ResolveResource(uri string) (handler ResourceHandler, params map[string]uritemplate.Value, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rr, exists := r.resources[uri]; exists {
		return rr.handler, nil, true
	}
	for _, rt := range r.templates {
		if vals, matched := rt.tmpl.Extract(uri); matched {
			return rt.handler, vals, true
		}
	}
	return nil, nil, false
}

// ResolveTool looks up a tool's handler and declared parameters by name.
func (r *Registry) ResolveTool(name string) (handler ToolHandler, tool Tool, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, exists := r.tools[name]
	if !exists {
		return nil, Tool{}, false
	}
	return rt.handler, rt.Tool, true
}
