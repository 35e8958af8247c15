// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import (
	"strings"
)

// parseFString splits the undecoded body of an f-string literal into
// literal text and replacement fields.
func (p *parser) parseFString(pos Position, raw, body string, rawStr bool) *FStringExpr {
	parts := parseFStringBody(p.in, pos, body, rawStr, 0)
	return &FStringExpr{TokenPos: pos, Raw: raw, Parts: mergeLiterals(parts)}
}

func parseFStringBody(in *scanner, pos Position, body string, rawStr bool, nesting int) []Expr {
	var parts []Expr
	var text strings.Builder
	flush := func() {
		if text.Len() == 0 {
			return
		}
		s, err := unescape(text.String(), rawStr, false)
		if err != nil {
			in.error(pos, err.Error())
		}
		parts = append(parts, &Literal{Token: STRING, TokenPos: pos, Value: s})
		text.Reset()
	}

	for i := 0; i < len(body); {
		c := body[i]
		switch {
		case c == '{' && i+1 < len(body) && body[i+1] == '{':
			text.WriteByte('{')
			i += 2
		case c == '}' && i+1 < len(body) && body[i+1] == '}':
			text.WriteByte('}')
			i += 2
		case c == '}':
			in.error(pos, "f-string: single '}' is not allowed")
		case c == '{':
			if nesting > 1 {
				in.error(pos, "f-string: expressions nested too deeply")
			}
			flush()
			var field []Expr
			field, i = parseField(in, pos, body, i+1, rawStr, nesting)
			parts = append(parts, field...)
		case c == '\\' && !rawStr && i+1 < len(body):
			if body[i+1] == 'N' && i+2 < len(body) && body[i+2] == '{' {
				in.error(pos, `\N{...} escapes are not supported`)
			}
			text.WriteString(body[i : i+2])
			i += 2
		default:
			text.WriteByte(c)
			i++
		}
	}
	flush()
	return parts
}

// parseField parses the replacement field whose expression starts at
// body[start] (just after the opening brace). It returns the parts the
// field contributes and the index just past its closing brace.
func parseField(in *scanner, pos Position, body string, start int, rawStr bool, nesting int) ([]Expr, int) {
	j := start
	depth := 0
	var quote byte
scan:
	for ; j < len(body); j++ {
		c := body[j]
		if quote != 0 {
			if c == '\\' {
				j++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']':
			depth--
		case '}':
			if depth == 0 {
				break scan
			}
			depth--
		case '!':
			if depth == 0 && !(j+1 < len(body) && body[j+1] == '=') {
				break scan
			}
		case ':':
			if depth == 0 {
				break scan
			}
		case '=':
			if depth == 0 && j > start && !strings.ContainsRune("=!<>:", rune(body[j-1])) &&
				!(j+1 < len(body) && body[j+1] == '=') {
				break scan
			}
		}
	}
	if j >= len(body) {
		in.error(pos, "f-string: expecting '}'")
	}
	text := body[start:j]
	if strings.TrimSpace(text) == "" {
		in.error(pos, "f-string: empty expression not allowed")
	}
	x := parseFieldExpr(in, pos, text)

	var parts []Expr
	field := &FormattedValue{Lbrace: pos, X: x}
	selfDoc := false
	if body[j] == '=' {
		selfDoc = true
		parts = append(parts, &Literal{Token: STRING, TokenPos: pos, Value: body[start : j+1]})
		j++
	}
	if j < len(body) && body[j] == '!' {
		if j+1 >= len(body) || !strings.ContainsRune("rsa", rune(body[j+1])) {
			in.error(pos, "f-string: invalid conversion character: expected 's', 'r', or 'a'")
		}
		field.Conv = rune(body[j+1])
		j += 2
	}
	if j < len(body) && body[j] == ':' {
		k := j + 1
		depth := 0
		for ; k < len(body); k++ {
			if body[k] == '{' {
				depth++
			} else if body[k] == '}' {
				if depth == 0 {
					break
				}
				depth--
			}
		}
		if k >= len(body) {
			in.error(pos, "f-string: expecting '}'")
		}
		specParts := parseFStringBody(in, pos, body[j+1:k], rawStr, nesting+1)
		field.Spec = &FStringExpr{TokenPos: pos, Parts: mergeLiterals(specParts)}
		j = k
	}
	if j >= len(body) || body[j] != '}' {
		in.error(pos, "f-string: expecting '}'")
	}
	if selfDoc && field.Conv == 0 && field.Spec == nil {
		field.Conv = 'r'
	}
	return append(parts, field), j + 1
}

// parseFieldExpr parses the expression of a replacement field.
// The text is parenthesized so that it may span lines and form a tuple.
func parseFieldExpr(in *scanner, pos Position, text string) Expr {
	filename := pos.Filename()
	sc, err := newScanner(filename, "("+text+")")
	if err != nil {
		in.error(pos, err.Error())
	}
	sc.pos = pos
	p := parser{in: sc}
	var x Expr
	func() {
		defer sc.recover(&err)
		p.nextToken()
		x = p.parsePrimary()
		if p.tok == NEWLINE {
			p.nextToken()
		}
		if p.tok != EOF {
			p.in.errorf(p.in.pos, "got %#v, want '}'", p.tok)
		}
	}()
	if err != nil {
		msg := err.Error()
		if e, ok := err.(Error); ok {
			msg = e.Msg
		}
		in.error(pos, "f-string: "+msg)
	}
	return x
}
