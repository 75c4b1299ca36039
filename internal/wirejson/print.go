// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package wirejson

import (
	"strconv"
	"strings"
)

// Print renders v as compact JSON on the regular heap. Unlike Parse, Print
// does not touch an arena: the result is a response body that must outlive
// the request arena's reset, so it is built with an ordinary strings.Builder.
func Print(v Value) string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v Value) {
	switch v.kind {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		if v.b {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case KindNumber:
		b.WriteString(strconv.FormatFloat(v.num, 'g', -1, 64))
	case KindString:
		writeQuoted(b, v.str)
	case KindArray:
		b.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				b.WriteByte(',')
			}
			writeValue(b, e)
		}
		b.WriteByte(']')
	case KindObject:
		b.WriteByte('{')
		for i, m := range v.obj {
			if i > 0 {
				b.WriteByte(',')
			}
			writeQuoted(b, m.key)
			b.WriteByte(':')
			writeValue(b, m.val)
		}
		b.WriteByte('}')
	}
}

func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				b.WriteString(`\u`)
				const hex = "0123456789abcdef"
				b.WriteByte(hex[(r>>12)&0xf])
				b.WriteByte(hex[(r>>8)&0xf])
				b.WriteByte(hex[(r>>4)&0xf])
				b.WriteByte(hex[r&0xf])
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
}

// Object and Array are convenience builders for constructing Values outside
// of Parse, e.g. when a handler assembles a response tree directly.
func Object(pairs ...any) Value {
	if len(pairs)%2 != 0 {
		panic("wirejson.Object: odd number of arguments")
	}
	members := make([]member, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic("wirejson.Object: key must be a string")
		}
		members = append(members, member{key: key, val: toValue(pairs[i+1])})
	}
	return objectValue(members)
}

func Array(items ...any) Value {
	vals := make([]Value, len(items))
	for i, it := range items {
		vals[i] = toValue(it)
	}
	return arrayValue(vals)
}

func toValue(x any) Value {
	switch t := x.(type) {
	case Value:
		return t
	case nil:
		return nullValue()
	case bool:
		return boolValue(t)
	case string:
		return stringValue(t)
	case int:
		return numberValue(float64(t))
	case int64:
		return numberValue(float64(t))
	case float64:
		return numberValue(t)
	default:
		panic("wirejson.toValue: unsupported type")
	}
}
