// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package wirejson

import (
	"testing"

	"github.com/coremcp/mcpd/internal/arena"
)

func TestParseScalars(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, v Value)
	}{
		{"null", `null`, func(t *testing.T, v Value) {
			if !v.IsNull() {
				t.Errorf("IsNull() = false, want true")
			}
		}},
		{"true", `true`, func(t *testing.T, v Value) {
			b, ok := v.Bool()
			if !ok || !b {
				t.Errorf("Bool() = %v, %v, want true, true", b, ok)
			}
		}},
		{"number", `3.5`, func(t *testing.T, v Value) {
			n, ok := v.Number()
			if !ok || n != 3.5 {
				t.Errorf("Number() = %v, %v, want 3.5, true", n, ok)
			}
		}},
		{"negative exponent", `-1.5e2`, func(t *testing.T, v Value) {
			n, ok := v.Number()
			if !ok || n != -150 {
				t.Errorf("Number() = %v, %v, want -150, true", n, ok)
			}
		}},
		{"string with escapes", `"a\nb\"c"`, func(t *testing.T, v Value) {
			s, ok := v.String()
			if !ok || s != "a\nb\"c" {
				t.Errorf("String() = %q, %v, want %q, true", s, ok, "a\nb\"c")
			}
		}},
		{"unicode escape", `"\u00e9"`, func(t *testing.T, v Value) {
			s, ok := v.String()
			if !ok || s != "é" {
				t.Errorf("String() = %q, %v, want %q, true", s, ok, "é")
			}
		}},
	}
	a := arena.New(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse(a, []byte(tt.input))
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}
			tt.check(t, v)
		})
	}
}

func TestParseObjectAndArray(t *testing.T) {
	a := arena.New(0)
	v, err := Parse(a, []byte(`{"name":"widget","tags":["a","b"],"count":2,"nested":{"ok":true}}`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if v.Kind() != KindObject {
		t.Fatalf("Kind() = %v, want KindObject", v.Kind())
	}
	name, ok := v.Field("name")
	if !ok {
		t.Fatal("Field(\"name\") not found")
	}
	if s, _ := name.String(); s != "widget" {
		t.Errorf("name = %q, want widget", s)
	}
	tags, ok := v.Field("tags")
	if !ok || tags.Kind() != KindArray {
		t.Fatalf("Field(\"tags\") = %v, %v", tags, ok)
	}
	arr, _ := tags.Array()
	if len(arr) != 2 {
		t.Fatalf("len(tags) = %d, want 2", len(arr))
	}
	nested, ok := v.Field("nested")
	if !ok {
		t.Fatal("Field(\"nested\") not found")
	}
	okField, _ := nested.Field("ok")
	b, _ := okField.Bool()
	if !b {
		t.Error("nested.ok = false, want true")
	}
	_, ok = v.Field("missing")
	if ok {
		t.Error("Field(\"missing\") found, want not found")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		``,
		`{`,
		`[1,]`,
		`{"a":}`,
		`truex`,
		`"unterminated`,
		`{"a" 1}`,
		`[1 2]`,
	}
	a := arena.New(0)
	for _, input := range tests {
		if _, err := Parse(a, []byte(input)); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", input)
		}
	}
}

func TestPrintRoundTrip(t *testing.T) {
	const input = `{"a":1,"b":[true,false,null],"c":"hi\nthere"}`
	a := arena.New(0)
	v, err := Parse(a, []byte(input))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	out := Print(v)
	a2 := arena.New(0)
	v2, err := Parse(a2, []byte(out))
	if err != nil {
		t.Fatalf("re-parsing printed output failed: %v\noutput: %s", err, out)
	}
	c, ok := v2.Field("c")
	if !ok {
		t.Fatal("round-tripped value missing field c")
	}
	s, _ := c.String()
	if s != "hi\nthere" {
		t.Errorf("round-tripped c = %q, want %q", s, "hi\nthere")
	}
}

func TestBuilders(t *testing.T) {
	v := Object("name", "widget", "count", 3, "ok", true, "tags", Array("x", "y"))
	name, _ := v.Field("name")
	if s, _ := name.String(); s != "widget" {
		t.Errorf("name = %q, want widget", s)
	}
	tags, _ := v.Field("tags")
	arr, _ := tags.Array()
	if len(arr) != 2 {
		t.Errorf("len(tags) = %d, want 2", len(arr))
	}
}

func TestArenaReuseAfterReset(t *testing.T) {
	a := arena.New(64)
	v, err := Parse(a, []byte(`{"k":"value-one"}`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	s := Print(v)
	a.Reset()
	if s == "" {
		t.Fatal("printed value was empty before reset")
	}
	// A second parse after Reset should not observe data from the first.
	v2, err := Parse(a, []byte(`{"k":"value-two"}`))
	if err != nil {
		t.Fatalf("second Parse error: %v", err)
	}
	k, _ := v2.Field("k")
	if s2, _ := k.String(); s2 != "value-two" {
		t.Errorf("k = %q, want value-two", s2)
	}
}
