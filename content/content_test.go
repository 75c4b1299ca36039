// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package content

import "testing"

func TestCloneIsIndependent(t *testing.T) {
	orig := Binary([]byte{1, 2, 3}, "application/octet-stream")
	clone := orig.Clone()
	clone.Binary[0] = 99
	if orig.Binary[0] != 1 {
		t.Fatalf("Clone aliased the original's backing array")
	}
}

func TestCloneItemsNil(t *testing.T) {
	if got := CloneItems(nil); got != nil {
		t.Errorf("CloneItems(nil) = %v, want nil", got)
	}
}

func TestMarshalReadResourceBinaryOmitsText(t *testing.T) {
	items := []Item{Binary([]byte("hello"), "application/octet-stream")}
	out := MarshalReadResource("res://x", items)
	if len(out) != 1 {
		t.Fatalf("len = %d, want 1", len(out))
	}
	if out[0].Text != "" {
		t.Errorf("Text = %q, want empty for binary content", out[0].Text)
	}
	if out[0].MIMEType == "" {
		t.Error("MIMEType should be set for binary content")
	}
}

func TestJSONItem(t *testing.T) {
	it, err := JSON(map[string]int{"n": 3}, "")
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if it.MIMEType != "application/json" {
		t.Errorf("MIMEType = %q", it.MIMEType)
	}
	if it.JSONText == "" {
		t.Error("JSONText should be populated")
	}
}
