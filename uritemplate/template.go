// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package uritemplate implements the resource template grammar:
//
//	{name(:type)?(:pattern:glob)?((=default)|?)?}
//
// Types are int, float, bool, or string (the default). A pattern, when
// given, is a small glob where '*' means "one or more non-slash
// characters"; otherwise the type implies a default pattern. A trailing
// '=default' supplies a default value; a trailing '?' marks the
// placeholder optional (default empty); the two are mutually exclusive.
//
// A template compiles once to a sequence of literal/placeholder segments,
// used by Expand, and to an anchored regular expression, used by Matches
// and Extract.
package uritemplate

import (
	"fmt"
	"regexp"
	"strings"
)

// Placeholder is one {..} component of a template.
type Placeholder struct {
	Name       string
	Type       string // "int", "float", "bool", or "string"
	Pattern    string // raw glob, empty if the type's default pattern applies
	HasDefault bool
	Default    string
	Optional   bool
}

type segmentKind int

const (
	segLiteral segmentKind = iota
	segPlaceholder
)

type segment struct {
	kind    segmentKind
	literal string
	ph      Placeholder
}

// Template is a compiled resource template.
type Template struct {
	Raw          string
	segments     []segment
	placeholders []Placeholder
	re           *regexp.Regexp
}

var validTypes = map[string]bool{"int": true, "float": true, "bool": true, "string": true}

// Parse compiles raw into a Template.
func Parse(raw string) (*Template, error) {
	segs, err := splitSegments(raw)
	if err != nil {
		return nil, err
	}
	t := &Template{Raw: raw, segments: segs}
	for _, s := range segs {
		if s.kind == segPlaceholder {
			t.placeholders = append(t.placeholders, s.ph)
		}
	}
	if err := t.compileRegexp(); err != nil {
		return nil, err
	}
	return t, nil
}

// Placeholders returns the template's placeholders in left-to-right order.
func (t *Template) Placeholders() []Placeholder {
	return append([]Placeholder(nil), t.placeholders...)
}

// splitSegments scans raw for literal runs and {...} placeholders.
func splitSegments(raw string) ([]segment, error) {
	var segs []segment
	var lit strings.Builder
	i := 0
	for i < len(raw) {
		c := raw[i]
		if c == '{' {
			end := strings.IndexByte(raw[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("uritemplate: unterminated placeholder in %q", raw)
			}
			if lit.Len() > 0 {
				segs = append(segs, segment{kind: segLiteral, literal: lit.String()})
				lit.Reset()
			}
			inner := raw[i+1 : i+end]
			ph, err := parsePlaceholder(inner)
			if err != nil {
				return nil, fmt.Errorf("uritemplate: %w (in %q)", err, raw)
			}
			segs = append(segs, segment{kind: segPlaceholder, ph: ph})
			i += end + 1
			continue
		}
		if c == '}' {
			return nil, fmt.Errorf("uritemplate: unmatched '}' in %q", raw)
		}
		lit.WriteByte(c)
		i++
	}
	if lit.Len() > 0 {
		segs = append(segs, segment{kind: segLiteral, literal: lit.String()})
	}
	return segs, nil
}

func parsePlaceholder(s string) (Placeholder, error) {
	var p Placeholder
	switch {
	case strings.HasSuffix(s, "?") && !strings.Contains(s, "="):
		p.Optional = true
		s = s[:len(s)-1]
	case strings.Contains(s, "="):
		idx := strings.IndexByte(s, '=')
		p.HasDefault = true
		p.Default = s[idx+1:]
		s = s[:idx]
	}

	parts := strings.Split(s, ":")
	p.Name = parts[0]
	if p.Name == "" {
		return p, fmt.Errorf("empty placeholder name")
	}
	rest := parts[1:]

	if len(rest) > 0 {
		if rest[0] == "pattern" {
			if len(rest) < 2 {
				return p, fmt.Errorf("placeholder %q: 'pattern' with no glob", p.Name)
			}
			p.Pattern = strings.Join(rest[1:], ":")
		} else {
			if !validTypes[rest[0]] {
				return p, fmt.Errorf("placeholder %q: unknown type %q", p.Name, rest[0])
			}
			p.Type = rest[0]
			if len(rest) > 1 {
				if rest[1] != "pattern" || len(rest) < 3 {
					return p, fmt.Errorf("placeholder %q: expected ':pattern:<glob>' after type", p.Name)
				}
				p.Pattern = strings.Join(rest[2:], ":")
			}
		}
	}
	if p.Type == "" {
		p.Type = "string"
	}
	return p, nil
}

// compileRegexp builds the single anchored regexp used by Match/Extract,
// one named capture group per placeholder, wrapped to allow an empty
// match when the placeholder is optional or has a default.
func (t *Template) compileRegexp() error {
	var b strings.Builder
	b.WriteByte('^')
	seen := make(map[string]bool)
	for _, s := range t.segments {
		switch s.kind {
		case segLiteral:
			b.WriteString(regexp.QuoteMeta(s.literal))
		case segPlaceholder:
			if seen[s.ph.Name] {
				return fmt.Errorf("uritemplate: duplicate placeholder name %q", s.ph.Name)
			}
			seen[s.ph.Name] = true
			inner, err := placeholderPattern(s.ph)
			if err != nil {
				return err
			}
			if s.ph.Optional || s.ph.HasDefault {
				fmt.Fprintf(&b, "(?P<%s>%s|)", s.ph.Name, inner)
			} else {
				fmt.Fprintf(&b, "(?P<%s>%s)", s.ph.Name, inner)
			}
		}
	}
	b.WriteByte('$')
	re, err := regexp.Compile(b.String())
	if err != nil {
		return fmt.Errorf("uritemplate: compiling %q: %w", t.Raw, err)
	}
	t.re = re
	return nil
}

func placeholderPattern(p Placeholder) (string, error) {
	if p.Pattern != "" {
		return globToRegexp(p.Pattern), nil
	}
	switch p.Type {
	case "int":
		return `-?[0-9]+`, nil
	case "float":
		return `-?[0-9]+(?:\.[0-9]+)?`, nil
	case "bool":
		return `true|false`, nil
	case "string", "":
		return `[^/]+`, nil
	default:
		return "", fmt.Errorf("placeholder %q: unknown type %q", p.Name, p.Type)
	}
}

// globToRegexp converts the engine's small glob grammar ('*' = one or more
// non-slash characters, everything else literal) to a regexp fragment.
func globToRegexp(glob string) string {
	var b strings.Builder
	for _, r := range glob {
		if r == '*' {
			b.WriteString(`[^/]+`)
		} else {
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return b.String()
}
