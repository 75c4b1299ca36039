// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package registry

import (
	"context"
	"testing"

	"github.com/coremcp/mcpd/content"
	"github.com/coremcp/mcpd/toolschema"
	"github.com/coremcp/mcpd/uritemplate"
)

func textHandler(s string) ResourceHandler {
	return func(ctx context.Context, uri string, params map[string]uritemplate.Value) ([]content.Item, error) {
		return []content.Item{content.Text(s, "text/plain")}, nil
	}
}

func TestRegisterResourceDuplicateURIRejected(t *testing.T) {
	r := New()
	if err := r.RegisterResource(Resource{URI: "res://a"}, textHandler("a")); err != nil {
		t.Fatalf("first RegisterResource: %v", err)
	}
	if err := r.RegisterResource(Resource{URI: "res://a"}, textHandler("b")); err == nil {
		t.Fatal("expected error for duplicate resource URI")
	}
}

func TestRegisterToolDuplicateNameRejected(t *testing.T) {
	r := New()
	h := func(ctx context.Context, args []byte) ([]content.Item, bool, error) { return nil, false, nil }
	if err := r.RegisterTool(Tool{Name: "echo"}, h); err != nil {
		t.Fatalf("first RegisterTool: %v", err)
	}
	if err := r.RegisterTool(Tool{Name: "echo"}, h); err == nil {
		t.Fatal("expected error for duplicate tool name")
	}
}

func TestResolveResourceStaticTakesPrecedence(t *testing.T) {
	r := New()
	r.RegisterResource(Resource{URI: "res://fixed/1"}, textHandler("static"))
	r.RegisterTemplate(ResourceTemplate{URITemplate: "res://fixed/{id}"}, textHandler("templated"))

	handler, params, ok := r.ResolveResource("res://fixed/1")
	if !ok {
		t.Fatal("expected a match")
	}
	if params != nil {
		t.Errorf("params = %v, want nil (static match)", params)
	}
	items, err := handler(context.Background(), "res://fixed/1", params)
	if err != nil || items[0].Text != "static" {
		t.Errorf("handler = %+v, %v, want static content", items, err)
	}
}

func TestResolveResourceFallsBackToTemplate(t *testing.T) {
	r := New()
	r.RegisterTemplate(ResourceTemplate{URITemplate: "res://item/{id:int}"}, textHandler("templated"))

	handler, params, ok := r.ResolveResource("res://item/42")
	if !ok {
		t.Fatal("expected a template match")
	}
	if params["id"].Text != "42" {
		t.Errorf("params[id] = %+v, want 42", params["id"])
	}
	items, err := handler(context.Background(), "res://item/42", params)
	if err != nil || items[0].Text != "templated" {
		t.Errorf("handler = %+v, %v", items, err)
	}
}

func TestResolveToolReturnsDeclaredParams(t *testing.T) {
	r := New()
	params := []toolschema.ParamSchema{{Name: "query", Type: "string", Required: true}}
	r.RegisterTool(Tool{Name: "search", Params: params}, func(ctx context.Context, args []byte) ([]content.Item, bool, error) {
		return nil, false, nil
	})

	_, tool, ok := r.ResolveTool("search")
	if !ok {
		t.Fatal("expected tool to resolve")
	}
	if len(tool.Params) != 1 || tool.Params[0].Name != "query" {
		t.Errorf("tool.Params = %+v", tool.Params)
	}
}

func TestListResourcesAndTools(t *testing.T) {
	r := New()
	r.RegisterResource(Resource{URI: "res://a"}, textHandler("a"))
	r.RegisterTool(Tool{Name: "echo"}, func(ctx context.Context, args []byte) ([]content.Item, bool, error) {
		return nil, false, nil
	})
	if len(r.ListResources()) != 1 {
		t.Errorf("ListResources() length = %d, want 1", len(r.ListResources()))
	}
	if len(r.ListTools()) != 1 {
		t.Errorf("ListTools() length = %d, want 1", len(r.ListTools()))
	}
}
