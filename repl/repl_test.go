// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package repl

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"go.dietpy.dev/desugar"
)

// lines returns a readline function that delivers the given lines,
// then io.EOF.
func lines(input ...string) func() ([]byte, error) {
	return func() ([]byte, error) {
		if len(input) == 0 {
			return nil, io.EOF
		}
		line := input[0]
		input = input[1:]
		return []byte(line + "\n"), nil
	}
}

func TestDesugar(t *testing.T) {
	opts := statementOptions(nil)
	for _, test := range []struct {
		input []string
		want  string
	}{
		{[]string{"x = a + b"}, "x = __dp__.add(a, b)\n"},
		{[]string{""}, ""},
		{
			[]string{"if a:", "    f(a[0])", ""},
			"if a:\n    f(__dp__.getitem(a, 0))\n",
		},
		{
			[]string{"assert c"},
			"if __debug__:\n    if __dp__.not_(c):\n        raise __dp__.builtins.AssertionError\n",
		},
	} {
		var out bytes.Buffer
		if err := Desugar(&out, lines(test.input...), opts); err != nil {
			t.Errorf("%q: %v", test.input, err)
			continue
		}
		if got := out.String(); got != test.want {
			t.Errorf("%q: got %q, want %q", test.input, got, test.want)
		}
	}
}

func TestDesugarEOF(t *testing.T) {
	var out bytes.Buffer
	err := Desugar(&out, lines(), statementOptions(nil))
	if !errors.Is(err, io.EOF) {
		t.Errorf("at end of input: got %v, want io.EOF", err)
	}

	// An unfinished compound statement is abandoned.
	err = Desugar(&out, lines("if a:", "    pass"), statementOptions(nil))
	if !errors.Is(err, io.EOF) {
		t.Errorf("in compound statement: got %v, want io.EOF", err)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestDesugarErrors(t *testing.T) {
	var out bytes.Buffer
	var syntaxErr *desugar.SyntaxError
	err := Desugar(&out, lines("x = )"), statementOptions(nil))
	if !errors.As(err, &syntaxErr) {
		t.Errorf("got %v, want SyntaxError", err)
	}
	if errors.Is(err, io.EOF) {
		t.Errorf("syntax error mistaken for end of input")
	}

	var unsupported *desugar.UnsupportedError
	err = Desugar(&out, lines("*a = b"), statementOptions(nil))
	if !errors.As(err, &unsupported) {
		t.Errorf("got %v, want UnsupportedError", err)
	}
}

func TestStatementOptions(t *testing.T) {
	opts := &desugar.Options{InjectImport: true, CleanupGlobals: true, LowerAttributes: true}
	got := statementOptions(opts)
	if got.InjectImport || got.CleanupGlobals {
		t.Errorf("module-level passes enabled for a statement: %+v", got)
	}
	if !got.LowerAttributes {
		t.Errorf("LowerAttributes lost")
	}
	if !opts.InjectImport {
		t.Errorf("caller's options modified")
	}

	var out bytes.Buffer
	if err := Desugar(&out, lines("y = o.f"), got); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `__dp__.getattr(o, "f")`) {
		t.Errorf("attribute not lowered: %q", out.String())
	}
}
