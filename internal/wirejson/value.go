// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package wirejson implements a small JSON value tree, parser, and printer.
// The parser takes an [arena.Arena] for string copies; the tree's nodes are
// ordinary heap values. It exists for the server
// dispatch path (spec component B), where a request's params are parsed
// into a scratch tree that is discarded (via arena reset) once the handler
// returns; the final response string is produced on the regular heap, since
// it outlives the arena reset.
//
// For structured wire messages (requests, responses, tool schemas) the rest
// of the module uses github.com/segmentio/encoding/json against ordinary Go
// structs; this package is reserved for the generic "parse untyped JSON
// params into a tree, inspect/extract, then discard" path that the arena
// design calls for.
package wirejson

// Kind discriminates the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is a node in a parsed JSON tree. Its string, array and object
// storage is ordinary heap memory; no Value refers to the arena supplied to
// Parse.
type Value struct {
	kind Kind
	b    bool
	num  float64
	str  string
	arr  []Value
	obj  []member
}

type member struct {
	key string
	val Value
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

func (v Value) Number() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

func (v Value) String() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

func (v Value) Array() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

// Field looks up a key in an object value. ok is false if v is not an
// object or the key is absent.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	for _, m := range v.obj {
		if m.key == key {
			return m.val, true
		}
	}
	return Value{}, false
}

// Keys returns the object's member names in encounter order.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, len(v.obj))
	for i, m := range v.obj {
		keys[i] = m.key
	}
	return keys
}

func nullValue() Value             { return Value{kind: KindNull} }
func boolValue(b bool) Value       { return Value{kind: KindBool, b: b} }
func numberValue(f float64) Value  { return Value{kind: KindNumber, num: f} }
func stringValue(s string) Value   { return Value{kind: KindString, str: s} }
func arrayValue(a []Value) Value   { return Value{kind: KindArray, arr: a} }
func objectValue(o []member) Value { return Value{kind: KindObject, obj: o} }
