// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package client

import (
	"context"
	"time"

	json "github.com/segmentio/encoding/json"
)

// Resource mirrors registry.Resource on the wire, decoded independently
// here so this package carries no dependency on the server's registry.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	MIMEType    string `json:"mimeType,omitempty"`
	Description string `json:"description,omitempty"`
}

// ResourceTemplate mirrors registry.ResourceTemplate on the wire.
type ResourceTemplate struct {
	URITemplate string `json:"uriTemplate"`
	Name        string `json:"name"`
	MIMEType    string `json:"mimeType,omitempty"`
	Description string `json:"description,omitempty"`
}

// Tool mirrors one entry of list_tools' "tools" array.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// ResourceContent mirrors one element of read_resource's "contents" array.
type ResourceContent struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
}

// ToolContent mirrors one element of call_tool's "content" array.
type ToolContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ListResources calls list_resources.
func (c *Client) ListResources(ctx context.Context, timeout time.Duration) ([]Resource, error) {
	raw, err := c.SendRequest(ctx, "list_resources", nil, timeout)
	if err != nil {
		return nil, err
	}
	var out struct {
		Resources []Resource `json:"resources"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out.Resources, nil
}

// ListResourceTemplates calls list_resource_templates.
func (c *Client) ListResourceTemplates(ctx context.Context, timeout time.Duration) ([]ResourceTemplate, error) {
	raw, err := c.SendRequest(ctx, "list_resource_templates", nil, timeout)
	if err != nil {
		return nil, err
	}
	var out struct {
		ResourceTemplates []ResourceTemplate `json:"resourceTemplates"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out.ResourceTemplates, nil
}

// ReadResource calls read_resource for uri.
func (c *Client) ReadResource(ctx context.Context, uri string, timeout time.Duration) ([]ResourceContent, error) {
	raw, err := c.SendRequest(ctx, "read_resource", struct {
		URI string `json:"uri"`
	}{URI: uri}, timeout)
	if err != nil {
		return nil, err
	}
	var out []ResourceContent
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTools calls list_tools.
func (c *Client) ListTools(ctx context.Context, timeout time.Duration) ([]Tool, error) {
	raw, err := c.SendRequest(ctx, "list_tools", nil, timeout)
	if err != nil {
		return nil, err
	}
	var out struct {
		Tools []Tool `json:"tools"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out.Tools, nil
}

// CallToolResult is call_tool's decoded response.
type CallToolResult struct {
	Content []ToolContent `json:"content"`
	IsError bool          `json:"isError"`
}

// CallTool calls call_tool for name with the given raw JSON arguments
// (nil means "{}").
func (c *Client) CallTool(ctx context.Context, name string, arguments json.RawMessage, timeout time.Duration) (*CallToolResult, error) {
	raw, err := c.SendRequest(ctx, "call_tool", struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments,omitempty"`
	}{Name: name, Arguments: arguments}, timeout)
	if err != nil {
		return nil, err
	}
	var out CallToolResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
