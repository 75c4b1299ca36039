// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package toolschema

import "testing"

func TestBuildOmitsRequiredWhenEmpty(t *testing.T) {
	s, err := Build([]ParamSchema{{Name: "query", Type: "string"}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if s.Type != "object" {
		t.Errorf("Type = %q, want object", s.Type)
	}
	if len(s.Required) != 0 {
		t.Errorf("Required = %v, want empty", s.Required)
	}
	if s.Properties["query"] == nil || s.Properties["query"].Type != "string" {
		t.Errorf("Properties[query] = %+v", s.Properties["query"])
	}
}

func TestBuildCollectsRequired(t *testing.T) {
	s, err := Build([]ParamSchema{
		{Name: "query", Type: "string", Required: true},
		{Name: "limit", Type: "number"},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(s.Required) != 1 || s.Required[0] != "query" {
		t.Errorf("Required = %v, want [query]", s.Required)
	}
}

func TestBuildRejectsUnsupportedType(t *testing.T) {
	if _, err := Build([]ParamSchema{{Name: "x", Type: "int"}}); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}

func TestBuildRejectsEmptyName(t *testing.T) {
	if _, err := Build([]ParamSchema{{Name: "", Type: "string"}}); err == nil {
		t.Fatal("expected error for empty parameter name")
	}
}
