// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package content implements the tagged-union content item returned by
// read_resource and call_tool: text, JSON, or binary bytes, each carrying
// an optional MIME type.
package content

import (
	"fmt"

	json "github.com/segmentio/encoding/json"
)

// Kind discriminates the variant an Item holds.
type Kind int

const (
	KindText Kind = iota
	KindJSON
	KindBinary
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindJSON:
		return "json"
	case KindBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Item is one piece of content: exactly one of Text/JSONText/Binary is
// populated according to Kind. Binary data carries its length implicitly
// via len(Binary); Text is a Go string, not a C-style length-tracked
// null-terminated buffer, since Go strings already carry their length.
type Item struct {
	Kind     Kind
	Text     string // valid when Kind == KindText
	JSONText string // valid when Kind == KindJSON: a pre-encoded JSON value
	Binary   []byte // valid when Kind == KindBinary
	MIMEType string // optional, for any Kind
}

// Text returns a KindText item.
func Text(s string, mimeType string) Item {
	return Item{Kind: KindText, Text: s, MIMEType: mimeType}
}

// JSON returns a KindJSON item from a value marshaled to its JSON text
// form; the item stores the encoded string, not the original value,
// matching the spec's "owned content item" model.
func JSON(v any, mimeType string) (Item, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Item{}, fmt.Errorf("content: marshal JSON item: %w", err)
	}
	if mimeType == "" {
		mimeType = "application/json"
	}
	return Item{Kind: KindJSON, JSONText: string(data), MIMEType: mimeType}, nil
}

// Binary returns a KindBinary item.
func Binary(b []byte, mimeType string) Item {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Item{Kind: KindBinary, Binary: cp, MIMEType: mimeType}
}

// Clone returns a deep, independent copy of it. The resource cache uses
// this on both put and get so that neither the cache nor a caller can
// mutate storage the other holds a reference to.
func (it Item) Clone() Item {
	out := it
	if it.Binary != nil {
		out.Binary = make([]byte, len(it.Binary))
		copy(out.Binary, it.Binary)
	}
	return out
}

// CloneItems deep-copies a slice of items.
func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

// wireReadResourceContent is the shape the server marshals content into
// for read_resource: {uri, mimeType?, text?}. Binary content is returned
// with mimeType present and text omitted, per the spec's explicit choice
// not to base64-encode.
type wireReadResourceContent struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
}

// MarshalReadResource renders items as the "contents" array of a
// read_resource response for the given uri.
func MarshalReadResource(uri string, items []Item) []wireReadResourceContent {
	out := make([]wireReadResourceContent, len(items))
	for i, it := range items {
		w := wireReadResourceContent{URI: uri, MIMEType: it.MIMEType}
		switch it.Kind {
		case KindText:
			w.Text = it.Text
		case KindJSON:
			w.Text = it.JSONText
		case KindBinary:
			// text omitted; only mimeType is surfaced, per spec §4.2.
		}
		out[i] = w
	}
	return out
}

// wireToolContent is the shape of one element of a call_tool response's
// "content" array: {type, text?}.
type wireToolContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// MarshalToolContent renders items as the "content" array of a call_tool
// response.
func MarshalToolContent(items []Item) []wireToolContent {
	out := make([]wireToolContent, len(items))
	for i, it := range items {
		w := wireToolContent{Type: "text"}
		switch it.Kind {
		case KindText:
			w.Text = it.Text
		case KindJSON:
			w.Text = it.JSONText
		case KindBinary:
			w.Type = "binary"
		}
		out[i] = w
	}
	return out
}
