// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package wirejson

import (
	"fmt"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/coremcp/mcpd/internal/arena"
)

// ParseError reports a JSON syntax error together with the byte offset at
// which it was detected.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("wirejson: %s (offset %d)", e.Msg, e.Offset)
}

// Parse parses data into a Value tree. Strings and composite nodes are
// built from Go's native representation (arrays/strings), not literally
// carved out of a's byte chunks — a is used only to copy extracted strings
// and object keys via a.AllocString, which returns heap strings. The
// returned tree holds no arena storage and stays valid after a.Reset.
func Parse(a *arena.Arena, data []byte) (Value, error) {
	p := &parser{a: a, data: data}
	p.skipSpace()
	v, err := p.parseValue()
	if err != nil {
		return Value{}, err
	}
	p.skipSpace()
	if p.pos != len(p.data) {
		return Value{}, &ParseError{Offset: p.pos, Msg: "trailing data after JSON value"}
	}
	return v, nil
}

type parser struct {
	a    *arena.Arena
	data []byte
	pos  int
}

func (p *parser) errf(format string, args ...any) error {
	return &ParseError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.data) {
		switch p.data[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.data) {
		return 0, false
	}
	return p.data[p.pos], true
}

func (p *parser) parseValue() (Value, error) {
	c, ok := p.peek()
	if !ok {
		return Value{}, p.errf("unexpected end of input")
	}
	switch {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '"':
		s, err := p.parseString()
		if err != nil {
			return Value{}, err
		}
		return stringValue(p.a.AllocString(s)), nil
	case c == 't':
		return p.literal("true", boolValue(true))
	case c == 'f':
		return p.literal("false", boolValue(false))
	case c == 'n':
		return p.literal("null", nullValue())
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return Value{}, p.errf("unexpected character %q", c)
	}
}

func (p *parser) literal(lit string, v Value) (Value, error) {
	if p.pos+len(lit) > len(p.data) || string(p.data[p.pos:p.pos+len(lit)]) != lit {
		return Value{}, p.errf("invalid literal, expected %q", lit)
	}
	p.pos += len(lit)
	return v, nil
}

func (p *parser) parseNumber() (Value, error) {
	start := p.pos
	if c, ok := p.peek(); ok && c == '-' {
		p.pos++
	}
	for {
		c, ok := p.peek()
		if !ok || c < '0' || c > '9' {
			break
		}
		p.pos++
	}
	if c, ok := p.peek(); ok && c == '.' {
		p.pos++
		for {
			c, ok := p.peek()
			if !ok || c < '0' || c > '9' {
				break
			}
			p.pos++
		}
	}
	if c, ok := p.peek(); ok && (c == 'e' || c == 'E') {
		p.pos++
		if c, ok := p.peek(); ok && (c == '+' || c == '-') {
			p.pos++
		}
		for {
			c, ok := p.peek()
			if !ok || c < '0' || c > '9' {
				break
			}
			p.pos++
		}
	}
	f, err := strconv.ParseFloat(string(p.data[start:p.pos]), 64)
	if err != nil {
		return Value{}, p.errf("invalid number: %v", err)
	}
	return numberValue(f), nil
}

func (p *parser) parseString() (string, error) {
	if c, ok := p.peek(); !ok || c != '"' {
		return "", p.errf("expected string")
	}
	p.pos++
	var buf []byte
	for {
		if p.pos >= len(p.data) {
			return "", p.errf("unterminated string")
		}
		c := p.data[p.pos]
		switch {
		case c == '"':
			p.pos++
			return string(buf), nil
		case c == '\\':
			p.pos++
			if p.pos >= len(p.data) {
				return "", p.errf("unterminated escape")
			}
			esc := p.data[p.pos]
			switch esc {
			case '"', '\\', '/':
				buf = append(buf, esc)
				p.pos++
			case 'b':
				buf = append(buf, '\b')
				p.pos++
			case 'f':
				buf = append(buf, '\f')
				p.pos++
			case 'n':
				buf = append(buf, '\n')
				p.pos++
			case 'r':
				buf = append(buf, '\r')
				p.pos++
			case 't':
				buf = append(buf, '\t')
				p.pos++
			case 'u':
				r, err := p.parseUnicodeEscape()
				if err != nil {
					return "", err
				}
				var tmp [4]byte
				n := utf8.EncodeRune(tmp[:], r)
				buf = append(buf, tmp[:n]...)
			default:
				return "", p.errf("invalid escape %q", esc)
			}
		case c < 0x20:
			return "", p.errf("control character in string")
		default:
			buf = append(buf, c)
			p.pos++
		}
	}
}

func (p *parser) parseUnicodeEscape() (rune, error) {
	p.pos++ // consume 'u'
	r1, err := p.hex4()
	if err != nil {
		return 0, err
	}
	if utf16.IsSurrogate(rune(r1)) {
		if p.pos+1 < len(p.data) && p.data[p.pos] == '\\' && p.data[p.pos+1] == 'u' {
			p.pos += 2
			r2, err := p.hex4()
			if err != nil {
				return 0, err
			}
			if dec := utf16.DecodeRune(rune(r1), rune(r2)); dec != utf8.RuneError {
				return dec, nil
			}
		}
		return utf8.RuneError, nil
	}
	return rune(r1), nil
}

func (p *parser) hex4() (uint32, error) {
	if p.pos+4 > len(p.data) {
		return 0, p.errf("truncated unicode escape")
	}
	v, err := strconv.ParseUint(string(p.data[p.pos:p.pos+4]), 16, 32)
	if err != nil {
		return 0, p.errf("invalid unicode escape: %v", err)
	}
	p.pos += 4
	return uint32(v), nil
}

func (p *parser) parseArray() (Value, error) {
	p.pos++ // '['
	var elems []Value
	p.skipSpace()
	if c, ok := p.peek(); ok && c == ']' {
		p.pos++
		return arrayValue(elems), nil
	}
	for {
		p.skipSpace()
		v, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, v)
		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return Value{}, p.errf("unterminated array")
		}
		if c == ',' {
			p.pos++
			continue
		}
		if c == ']' {
			p.pos++
			return arrayValue(elems), nil
		}
		return Value{}, p.errf("expected ',' or ']', got %q", c)
	}
}

func (p *parser) parseObject() (Value, error) {
	p.pos++ // '{'
	var members []member
	p.skipSpace()
	if c, ok := p.peek(); ok && c == '}' {
		p.pos++
		return objectValue(members), nil
	}
	for {
		p.skipSpace()
		key, err := p.parseString()
		if err != nil {
			return Value{}, err
		}
		p.skipSpace()
		if c, ok := p.peek(); !ok || c != ':' {
			return Value{}, p.errf("expected ':' after object key")
		}
		p.pos++
		p.skipSpace()
		v, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		members = append(members, member{key: p.a.AllocString(key), val: v})
		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return Value{}, p.errf("unterminated object")
		}
		if c == ',' {
			p.pos++
			continue
		}
		if c == '}' {
			p.pos++
			return objectValue(members), nil
		}
		return Value{}, p.errf("expected ',' or '}', got %q", c)
	}
}
