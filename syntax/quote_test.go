// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import (
	"strings"
	"testing"
)

var quoteTests = []struct {
	q   string // quoted
	s   string // unquoted (actual string)
	std bool   // q is standard form for s
}{
	{`""`, "", true},
	{`''`, "", false},
	{`"hello"`, `hello`, true},
	{`'hello'`, `hello`, false},
	{`"quote\"here"`, `quote"here`, true},
	{`'quote"here'`, `quote"here`, false},
	{`"quote'here"`, `quote'here`, true},
	{`'quote\'here'`, `quote'here`, false},
	{`"""hello " ' world "" asdf ''' foo"""`, `hello " ' world "" asdf ''' foo`, false},
	{`"""hello
world"""`, "hello\nworld", true},
	{`"\a\b\f\n\r\t\v\x00\x7f"`, "\a\b\f\n\r\t\v\000\x7f", true},
	{`"\a\b\f\n\r\t\v\000\177"`, "\a\b\f\n\r\t\v\000\x7f", false},
	{`"\xe9t\xe9"`, "été", false},
	{`"été"`, "été", true},
	{`"é"`, "é", false},
	{`"\U0001F600"`, "\U0001F600", false},
	{`"\d\w"`, `\d\w`, false},
	{`r"\d\n"`, `\d\n`, false},
	{`"line \
continued"`, "line continued", false},
}

func TestQuote(t *testing.T) {
	for _, tt := range quoteTests {
		if !tt.std {
			continue
		}
		q := quote(tt.s, false, strings.HasPrefix(tt.q, `"""`))
		if q != tt.q {
			t.Errorf("quote(%#q) = %s, want %s", tt.s, q, tt.q)
		}
	}
}

func TestUnquote(t *testing.T) {
	for _, tt := range quoteTests {
		s, triple, isByte, err := unquote(tt.q)
		wantTriple := strings.HasPrefix(tt.q, `"""`) || strings.HasPrefix(tt.q, `'''`)
		if s != tt.s || triple != wantTriple || isByte || err != nil {
			t.Errorf("unquote(%s) = %#q, %v, %v, %v want %#q, %v, false, nil", tt.q, s, triple, isByte, err, tt.s, wantTriple)
		}
	}
}

func TestQuoteBytes(t *testing.T) {
	for _, test := range []struct {
		q, s string
	}{
		{`b"abc"`, "abc"},
		{`b"\x00\xff"`, "\x00\xff"},
		{`b"\\u1234"`, `\u1234`},
	} {
		if got := Quote(test.s, true); got != test.q {
			t.Errorf("Quote(%q, true) = %s, want %s", test.s, got, test.q)
		}
		s, _, isByte, err := unquote(test.q)
		if err != nil || !isByte || s != test.s {
			t.Errorf("unquote(%s) = %q, %v, %v", test.q, s, isByte, err)
		}
	}
}

func TestHasSurrogateEscape(t *testing.T) {
	for _, test := range []struct {
		src  string
		want bool
	}{
		{`x = "\ud800"`, true},
		{`x = "\uDFFF"`, true},
		{`x = "\U0000dc00"`, true},
		{`x = "é"`, false},
		{`x = "\\ud800"`, false},
		{`x = 1`, false},
	} {
		if got := HasSurrogateEscape([]byte(test.src)); got != test.want {
			t.Errorf("HasSurrogateEscape(%s) = %t, want %t", test.src, got, test.want)
		}
	}
}
