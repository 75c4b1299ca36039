// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package toolschema builds the JSON-Schema-like inputSchema object a
// tool's list_tools entry carries, from its declared parameter list.
package toolschema

import (
	"fmt"

	"github.com/coremcp/mcpd/jsonschema"
)

// ParamSchema describes one tool parameter.
type ParamSchema struct {
	Name        string
	Type        string // "string" | "number" | "boolean" | "object" | "array"
	Description string
	Required    bool
}

var validTypes = map[string]bool{
	"string": true, "number": true, "boolean": true, "object": true, "array": true,
}

// Build constructs the {type: "object", properties: {...}, required: [...]}
// schema for params. The required array is omitted entirely when no
// parameter is required, matching the wire format's "omitted if empty"
// rule.
func Build(params []ParamSchema) (*jsonschema.Schema, error) {
	props := make(map[string]*jsonschema.Schema, len(params))
	var required []string
	for _, p := range params {
		if p.Name == "" {
			return nil, fmt.Errorf("toolschema: parameter with empty name")
		}
		if !validTypes[p.Type] {
			return nil, fmt.Errorf("toolschema: parameter %q has unsupported type %q", p.Name, p.Type)
		}
		props[p.Name] = &jsonschema.Schema{
			Type:        p.Type,
			Description: p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}, nil
}
