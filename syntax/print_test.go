// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax_test

import (
	"math"
	"os"
	"testing"

	"go.dietpy.dev/syntax"
)

func TestFormat(t *testing.T) {
	for _, test := range []struct {
		input, want string
	}{
		{"x = 1", "x = 1\n"},
		{"if a:\n  pass\nelif b:\n  pass\nelse:\n  x = 2\n",
			"if a:\n    pass\nelif b:\n    pass\nelse:\n    x = 2\n"},
		{"x = (a + b) * c", "x = (a + b) * c\n"},
		{"x = a - (b - c)", "x = a - (b - c)\n"},
		{"x = a - b - c", "x = a - b - c\n"},
		{"x = -y ** 2", "x = -y ** 2\n"},
		{"x = (-y) ** 2", "x = (-y) ** 2\n"},
		{"x = a ** b ** c", "x = a ** b ** c\n"},
		{"x = (a ** b) ** c", "x = (a ** b) ** c\n"},
		{"f(*args, k=1, **kw)", "f(*args, k=1, **kw)\n"},
		{"a, b = b, a", "(a, b) = (b, a)\n"},
		{"for k, v in d.items(): pass", "for k, v in d.items():\n    pass\n"},
		{"y = [x for x, _ in z if x]", "y = [x for x, _ in z if x]\n"},
		{"y = [x for x in (a if b else c)]", "y = [x for x in (a if b else c)]\n"},
		{"x = lambda a, *b, c=1, **d: a if b else c", "x = lambda a, *b, c=1, **d: a if b else c\n"},
		{"def f(a: int = 1, *, b) -> str:\n  return b", "def f(a: int = 1, *, b) -> str:\n    return b\n"},
		{"def f(a, /, b):\n  return a, b", "def f(a, /, b):\n    return (a, b)\n"},
		{"@dec\nclass C(B):\n  x: int", "@dec\nclass C(B):\n    x: int\n"},
		{"try:\n  pass\nexcept E as e:\n  raise X from e\nfinally:\n  pass",
			"try:\n    pass\nexcept E as e:\n    raise X from e\nfinally:\n    pass\n"},
		{"with a as (b, c), d: pass", "with a as (b, c), d:\n    pass\n"},
		{"s = 'it' 's'", "s = 'it' 's'\n"},
		{"x = not a == b", "x = not a == b\n"},
		{"x = (not a) == b", "x = (not a) == b\n"},
		{"x = (a < b) < c", "x = (a < b) < c\n"},
		{"x = (a if b else c) if d else e", "x = (a if b else c) if d else e\n"},
		{"del a, b[0]", "del a, b[0]\n"},
		{"x = y[1:2, ::3]", "x = y[1:2, ::3]\n"},
		{"x = y[a,]", "x = y[a,]\n"},
		{"x = y[:]", "x = y[:]\n"},
		{"from .. import a as b, c", "from .. import a as b, c\n"},
		{"import a.b as c", "import a.b as c\n"},
		{"global a, b", "global a, b\n"},
		{"while (n := f()): pass", "while (n := f()):\n    pass\n"},
		{"if (n := f()) > 1: pass", "if (n := f()) > 1:\n    pass\n"},
		{"x = {**a, 'k': 1}", "x = {**a, 'k': 1}\n"},
		{"x = {1, *a}", "x = {1, *a}\n"},
		{"assert x, 'msg'", "assert x, 'msg'\n"},
		{"print(f'{x!r:>{w}}')", "print(f'{x!r:>{w}}')\n"},
		{"x = yield a, b", "x = yield (a, b)\n"},
		{"f((yield))", "f((yield))\n"},
		{"x = 1 .real", "x = (1).real\n"},
		{"x = a.b.c(d)[e]", "x = a.b.c(d)[e]\n"},
		{"x = [*a, *b]", "x = [*a, *b]\n"},
		{"x = ()", "x = ()\n"},
		{"x = (1,)", "x = (1,)\n"},
		{"x = sum(v for v in w)", "x = sum((v for v in w))\n"},
	} {
		f, err := syntax.Parse("foo.py", test.input)
		if err != nil {
			t.Errorf("parse `%s` failed: %v", test.input, err)
			continue
		}
		if got := syntax.Format(f); got != test.want {
			t.Errorf("format `%s` = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestFormatSynthesized(t *testing.T) {
	ident := func(name string) *syntax.Ident { return &syntax.Ident{Name: name} }
	for _, test := range []struct {
		expr syntax.Expr
		want string
	}{
		{&syntax.Literal{Token: syntax.STRING, Value: "a'b\n"}, `"a'b\n"`},
		{&syntax.Literal{Token: syntax.BYTES, Value: "\xff"}, `b"\xff"`},
		{&syntax.Literal{Token: syntax.FLOAT, Value: 1.0}, "1.0"},
		{&syntax.Literal{Token: syntax.FLOAT, Value: 2.5e-10}, "2.5e-10"},
		{&syntax.Literal{Token: syntax.FLOAT, Value: math.Inf(+1)}, "1e999"},
		{&syntax.Literal{Token: syntax.IMAG, Value: 2.0}, "2.0j"},
		{&syntax.Literal{Token: syntax.INT, Value: int64(42)}, "42"},
		{&syntax.Literal{Token: syntax.NONE}, "None"},
		{&syntax.Literal{Token: syntax.TRUE, Value: true}, "True"},
		{&syntax.Literal{Token: syntax.ELLIPSIS}, "..."},
		{&syntax.DotExpr{X: &syntax.Literal{Token: syntax.INT, Value: int64(-3)}, Name: "real"}, "(-3).real"},
		{&syntax.BinaryExpr{
			X:  &syntax.Literal{Token: syntax.INT, Value: int64(-2)},
			Op: syntax.STARSTAR,
			Y:  &syntax.Literal{Token: syntax.INT, Value: int64(2)},
		}, "(-2) ** 2"},
		{&syntax.FStringExpr{Parts: []syntax.Expr{
			&syntax.Literal{Token: syntax.STRING, Value: "a{'"},
			&syntax.FormattedValue{X: ident("x"), Conv: 'r'},
		}}, `f'a{{\'{x!r}'`},
		{&syntax.CallExpr{Fn: ident("f"), Args: []syntax.Expr{
			&syntax.NamedExpr{Target: ident("y"), Value: &syntax.Literal{Token: syntax.INT, Value: int64(1)}},
		}}, "f((y := 1))"},
		{&syntax.CallExpr{Fn: &syntax.LambdaExpr{Body: ident("x")}}, "(lambda: x)()"},
		{&syntax.TupleExpr{List: []syntax.Expr{ident("x")}}, "(x,)"},
		{&syntax.UnaryExpr{Op: syntax.NOT, X: &syntax.BinaryExpr{X: ident("a"), Op: syntax.AND, Y: ident("b")}}, "not (a and b)"},
	} {
		if got := syntax.FormatExpr(test.expr); got != test.want {
			t.Errorf("FormatExpr(%T) = %s, want %s", test.expr, got, test.want)
		}
	}
}

// TestFormatIdempotent checks that formatting is a fixed point:
// the output parses and formats to itself.
func TestFormatIdempotent(t *testing.T) {
	data, err := os.ReadFile("testdata/scan.py")
	if err != nil {
		t.Fatal(err)
	}
	f, err := syntax.Parse("scan.py", data)
	if err != nil {
		t.Fatal(err)
	}
	once := syntax.Format(f)
	f2, err := syntax.Parse("scan.py", once)
	if err != nil {
		t.Fatalf("formatted output does not parse: %v\n%s", err, once)
	}
	if twice := syntax.Format(f2); twice != once {
		t.Errorf("format is not idempotent:\n--- once ---\n%s\n--- twice ---\n%s", once, twice)
	}
}
