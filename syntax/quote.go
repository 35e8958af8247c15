// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// Python quoted string utilities.

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// unesc maps single-letter chars following \ to their actual values.
var unesc = [256]byte{
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
}

// esc maps escape-worthy bytes to the char that should follow \.
var esc = [256]byte{
	'\a': 'a',
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	'\v': 'v',
	'\\': '\\',
	'"':  '"',
}

// unquote unquotes the quoted string, returning the actual
// string value, whether the original was triple-quoted,
// whether it was a byte string, and an error describing invalid input.
func unquote(quoted string) (s string, triple, isByte bool, err error) {
	// Check for prefixes; r means don't interpret the inner \.
	raw := false
	for len(quoted) > 0 && quoted[0] != '"' && quoted[0] != '\'' {
		switch quoted[0] {
		case 'r', 'R':
			raw = true
		case 'b', 'B':
			isByte = true
		case 'u', 'U':
		default:
			err = fmt.Errorf("invalid string prefix %q", quoted[0])
			return
		}
		quoted = quoted[1:]
	}

	if len(quoted) < 2 {
		err = fmt.Errorf("string literal too short")
		return
	}

	if quoted[0] != '"' && quoted[0] != '\'' || quoted[0] != quoted[len(quoted)-1] {
		err = fmt.Errorf("string literal has invalid quotes")
		return
	}

	// Check for triple quoted string.
	quote := quoted[0]
	if len(quoted) >= 6 && quoted[1] == quote && quoted[2] == quote && quoted[:3] == quoted[len(quoted)-3:] {
		triple = true
		quoted = quoted[3 : len(quoted)-3]
	} else {
		quoted = quoted[1 : len(quoted)-1]
	}

	s, err = unescape(quoted, raw, isByte)
	return
}

// unescape decodes the escape sequences in the body of a string
// literal. In raw mode only line endings are normalized.
func unescape(quoted string, raw, isByte bool) (s string, err error) {
	// If we're in raw mode or there are no escapes or
	// carriage returns, we're done.
	var unquoteChars string
	if raw {
		unquoteChars = "\r"
	} else {
		unquoteChars = "\\\r"
	}
	if !strings.ContainsAny(quoted, unquoteChars) {
		s = quoted
		return
	}

	// Otherwise process quoted string.
	// Each iteration processes one escape sequence along with the
	// plain text leading up to it.
	buf := new(strings.Builder)
	for {
		// Remove prefix before escape sequence.
		i := strings.IndexAny(quoted, unquoteChars)
		if i < 0 {
			i = len(quoted)
		}
		buf.WriteString(quoted[:i])
		quoted = quoted[i:]

		if len(quoted) == 0 {
			break
		}

		// Process carriage return.
		if quoted[0] == '\r' {
			buf.WriteByte('\n')
			if len(quoted) > 1 && quoted[1] == '\n' {
				quoted = quoted[2:]
			} else {
				quoted = quoted[1:]
			}
			continue
		}

		// Process escape sequence.
		if len(quoted) == 1 {
			err = fmt.Errorf(`truncated escape sequence \`)
			return
		}

		switch quoted[1] {
		default:
			// Unknown escapes keep their backslash.
			buf.WriteString(quoted[:2])
			quoted = quoted[2:]

		case '\n':
			// Ignore the escape and the line break.
			quoted = quoted[2:]

		case '\r':
			quoted = quoted[2:]
			if len(quoted) > 0 && quoted[0] == '\n' {
				quoted = quoted[1:]
			}

		case 'a', 'b', 'f', 'n', 'r', 't', 'v', '\\', '\'', '"':
			// One-char escape.
			buf.WriteByte(unesc[quoted[1]])
			quoted = quoted[2:]

		case '0', '1', '2', '3', '4', '5', '6', '7':
			// Octal escape, up to 3 digits.
			n := 1
			for n < 3 && n+1 < len(quoted) && '0' <= quoted[n+1] && quoted[n+1] <= '7' {
				n++
			}
			x, _ := strconv.ParseUint(quoted[1:1+n], 8, 0)
			if x >= 256 {
				err = fmt.Errorf(`invalid escape sequence %s`, quoted[:1+n])
				return
			}
			writeCode(buf, rune(x), isByte)
			quoted = quoted[1+n:]

		case 'x':
			// Hexadecimal escape, exactly 2 digits.
			if len(quoted) < 4 {
				err = fmt.Errorf(`truncated escape sequence %s`, quoted)
				return
			}
			x, err1 := strconv.ParseUint(quoted[2:4], 16, 0)
			if err1 != nil {
				err = fmt.Errorf(`invalid escape sequence %s`, quoted[:4])
				return
			}
			writeCode(buf, rune(x), isByte)
			quoted = quoted[4:]

		case 'u', 'U':
			if isByte {
				// \u is not an escape in bytes literals.
				buf.WriteString(quoted[:2])
				quoted = quoted[2:]
				continue
			}
			sz := 6
			if quoted[1] == 'U' {
				sz = 10
			}
			if len(quoted) < sz {
				err = fmt.Errorf(`truncated escape sequence %s`, quoted)
				return
			}
			x, err1 := strconv.ParseUint(quoted[2:sz], 16, 0)
			if err1 != nil {
				err = fmt.Errorf(`invalid escape sequence %s`, quoted[:sz])
				return
			}
			if x > unicode.MaxRune {
				err = fmt.Errorf("code point out of range: %s (max \\U%08x)",
					quoted[:sz], unicode.MaxRune)
				return
			}
			// Surrogates have no UTF-8 encoding; WriteRune
			// substitutes U+FFFD. Callers that care detect
			// them with HasSurrogateEscape.
			buf.WriteRune(rune(x))
			quoted = quoted[sz:]

		case 'N':
			if isByte {
				buf.WriteString(quoted[:2])
				quoted = quoted[2:]
				continue
			}
			err = fmt.Errorf(`\N{...} escapes are not supported`)
			return
		}
	}

	s = buf.String()
	return
}

func writeCode(buf *strings.Builder, x rune, isByte bool) {
	if isByte || x < utf8.RuneSelf {
		buf.WriteByte(byte(x))
	} else {
		buf.WriteRune(x)
	}
}

// HasSurrogateEscape reports whether src contains a \u or \U escape
// denoting a UTF-16 surrogate code point. Such literals cannot be
// represented faithfully after decoding.
func HasSurrogateEscape(src []byte) bool {
	for i := 0; i+1 < len(src); i++ {
		if src[i] != '\\' {
			continue
		}
		c := src[i+1]
		sz := 0
		switch c {
		case 'u':
			sz = 4
		case 'U':
			sz = 8
		case '\\':
			i++ // skip escaped backslash
			continue
		default:
			continue
		}
		if i+2+sz > len(src) {
			return false
		}
		x, err := strconv.ParseUint(string(src[i+2:i+2+sz]), 16, 32)
		if err == nil && 0xD800 <= x && x <= 0xDFFF {
			return true
		}
	}
	return false
}

// Quote returns a double-quoted Python literal that denotes s.
// If b, the result is a bytes literal.
func Quote(s string, b bool) string {
	return quote(s, b, false)
}

// quote returns the quoted form of s.
// If triple, newlines are written literally inside triple quotes.
func quote(s string, b, triple bool) string {
	const hex = "0123456789abcdef"
	var buf strings.Builder
	if b {
		buf.WriteByte('b')
	}
	q := `"`
	if triple {
		q = `"""`
	}
	buf.WriteString(q)
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf || b {
			i++
			if triple && c == '\n' {
				buf.WriteByte(c)
				continue
			}
			if e := esc[c]; e != 0 {
				buf.WriteByte('\\')
				buf.WriteByte(e)
				continue
			}
			if c < 0x20 || c >= 0x7f {
				buf.WriteString(`\x`)
				buf.WriteByte(hex[c>>4])
				buf.WriteByte(hex[c&0xf])
				continue
			}
			buf.WriteByte(c)
			continue
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch {
		case r == utf8.RuneError && size == 1:
			fmt.Fprintf(&buf, `\x%02x`, s[i-1])
		case unicode.IsPrint(r):
			buf.WriteRune(r)
		case r < 0x10000:
			fmt.Fprintf(&buf, `\u%04x`, r)
		default:
			fmt.Fprintf(&buf, `\U%08x`, r)
		}
	}
	buf.WriteString(q)
	return buf.String()
}
