// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package uritemplate

import (
	"fmt"
	"strconv"

	rfc6570 "github.com/yosida95/uritemplate/v3"
)

// percentEncoder is a single-variable RFC 6570 template ("{v}") reused to
// percent-encode each placeholder's expanded text. The engine's own
// grammar performs no percent-encoding (per its grammar definition); this
// package is the "caller" that pre-encodes on the engine's behalf before
// splicing a placeholder's text into the literal surroundings.
var percentEncoder = rfc6570.Must(rfc6570.New("{v}"))

func percentEncode(s string) string {
	out, err := percentEncoder.Expand(rfc6570.Values{"v": rfc6570.String(s)})
	if err != nil {
		// Expand of a single required string variable cannot fail; fall back
		// to the raw string rather than panic if the library's behavior ever
		// changes underneath us.
		return s
	}
	return out
}

// Expand renders a concrete URI by substituting each placeholder with
// params[name] (stringified) or its default; a missing required
// placeholder or a type mismatch is an error. Literal segments are copied
// verbatim.
func (t *Template) Expand(params map[string]any) (string, error) {
	var out []byte
	for _, s := range t.segments {
		switch s.kind {
		case segLiteral:
			out = append(out, s.literal...)
		case segPlaceholder:
			text, err := resolvePlaceholder(s.ph, params)
			if err != nil {
				return "", err
			}
			out = append(out, percentEncode(text)...)
		}
	}
	return string(out), nil
}

func resolvePlaceholder(p Placeholder, params map[string]any) (string, error) {
	v, ok := params[p.Name]
	if !ok || v == nil {
		switch {
		case p.HasDefault:
			return p.Default, nil
		case p.Optional:
			return "", nil
		default:
			return "", fmt.Errorf("uritemplate: missing required placeholder %q", p.Name)
		}
	}
	text, err := stringify(v)
	if err != nil {
		return "", fmt.Errorf("uritemplate: placeholder %q: %w", p.Name, err)
	}
	if err := validateType(p, text); err != nil {
		return "", fmt.Errorf("uritemplate: placeholder %q: %w", p.Name, err)
	}
	return text, nil
}

func stringify(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

func validateType(p Placeholder, text string) error {
	switch p.Type {
	case "int":
		if _, err := strconv.ParseInt(text, 10, 64); err != nil {
			return fmt.Errorf("value %q is not a valid int", text)
		}
	case "float":
		if _, err := strconv.ParseFloat(text, 64); err != nil {
			return fmt.Errorf("value %q is not a valid float", text)
		}
	case "bool":
		if text != "true" && text != "false" {
			return fmt.Errorf("value %q is not a valid bool", text)
		}
	}
	return nil
}
