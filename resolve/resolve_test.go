// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve_test

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"go.dietpy.dev/internal/chunkedfile"
	"go.dietpy.dev/resolve"
	"go.dietpy.dev/syntax"
)

func TestResolve(t *testing.T) {
	filename := "testdata/resolve.py"
	for _, chunk := range chunkedfile.Read(filename, t) {
		f, err := syntax.Parse(filename, chunk.Source)
		if err != nil {
			t.Error(err)
			continue
		}
		if _, err := resolve.Module(f); err != nil {
			for _, err := range err.(resolve.ErrorList) {
				chunk.GotError(int(err.Pos.Line), err.Msg)
			}
		}
		chunk.Done()
	}
}

func mustModule(t *testing.T, src string) *resolve.Scope {
	t.Helper()
	f, err := syntax.Parse("test.py", src)
	if err != nil {
		t.Fatal(err)
	}
	root, err := resolve.Module(f)
	if err != nil {
		t.Fatal(err)
	}
	return root
}

// format renders bindings as "name:kind" pairs in name order.
func format(bindings map[string]syntax.Binding) string {
	var parts []string
	for name, b := range bindings {
		parts = append(parts, fmt.Sprintf("%s:%s", name, b))
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}

func TestCollect(t *testing.T) {
	for _, test := range []struct {
		src, want string
	}{
		{"x = 1", "x:local"},
		{"a, (b, *c) = d", "a:local b:local c:local"},
		{"x += 1\ny.z = 2\nw[0] = 3", "x:local"},
		{"for i in r: pass", "i:local"},
		{"with m as (p, q): pass", "p:local q:local"},
		{"del x", "x:local"},
		{"try:\n  pass\nexcept E as e:\n  pass", "e:local"},
		{"import a.b, c as d\nfrom m import e, f as g", "a:local d:local e:local g:local"},
		{"from m import *", ""},
		{"def f(): x = 1\nclass C: y = 1", "C:local f:local"},
		{"x = 1\nglobal x", "x:global"},
		{"nonlocal y\ny = 1", "y:nonlocal"},
		{"print([z := i for i in r])", "z:local"},
		{"f(lambda q: (w := q))", ""},
		{"if (n := 10) > 5: pass", "n:local"},
		{"x: int", "x:local"},
		{"global _dp_tmp_1\n_dp_tmp_1 = 0", "_dp_tmp_1:local"},
	} {
		f, err := syntax.Parse("test.py", test.src)
		if err != nil {
			t.Errorf("parse %q: %v", test.src, err)
			continue
		}
		if got := format(resolve.Collect(f.Stmts, nil)); got != test.want {
			t.Errorf("Collect(%q) = %q, want %q", test.src, got, test.want)
		}
	}
}

func TestCollectParams(t *testing.T) {
	f, err := syntax.Parse("test.py", "def f(a, /, b=1, *args, c, **kw):\n    d = a\n")
	if err != nil {
		t.Fatal(err)
	}
	def := f.Stmts[0].(*syntax.DefStmt)
	got := format(resolve.Collect(def.Body, def.Params))
	if want := "a:local args:local b:local c:local d:local kw:local"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestImplicitCapture(t *testing.T) {
	root := mustModule(t, `
def outer():
    x = 1
    y = 2
    def inner():
        return x + g
    class C:
        z = y
        def m(self):
            return y
    return inner
`)
	outer := root.Children[0]
	inner := outer.Children[0]
	class := outer.Children[1]
	method := class.Children[0]

	if got, want := format(inner.Bindings), "x:nonlocal"; got != want {
		t.Errorf("inner bindings = %q, want %q", got, want)
	}
	if got, want := format(class.Bindings), "m:local y:nonlocal z:local"; got != want {
		t.Errorf("class bindings = %q, want %q", got, want)
	}
	if got, want := format(method.Bindings), "self:local y:nonlocal"; got != want {
		t.Errorf("method bindings = %q, want %q", got, want)
	}
	if got, want := strings.Join(outer.CellNames(), " "), "x y"; got != want {
		t.Errorf("outer cells = %q, want %q", got, want)
	}
	if method.CellOwner("y") != outer {
		t.Errorf("cell owner of y is %v, want %v", method.CellOwner("y"), outer)
	}
	if len(root.CellNames()) != 0 {
		t.Errorf("module has cells %v", root.CellNames())
	}
}

func TestGlobalsAreNotCaptured(t *testing.T) {
	root := mustModule(t, `
x = 0
def f():
    global y
    y = 1
    def g():
        return x + y
`)
	f := root.Children[0]
	g := f.Children[0]
	if got := format(g.Bindings); got != "" {
		t.Errorf("g bindings = %q, want none", got)
	}
	if len(f.CellNames()) != 0 {
		t.Errorf("f has cells %v", f.CellNames())
	}
}

func TestNonlocalChain(t *testing.T) {
	root := mustModule(t, `
def a():
    v = 1
    def b():
        nonlocal v
        def c():
            nonlocal v
            v = 3
        v = 2
`)
	a := root.Children[0]
	b := a.Children[0]
	c := b.Children[0]
	if !a.NeedsCell("v") {
		t.Errorf("a does not hold a cell for v")
	}
	if b.NeedsCell("v") || c.NeedsCell("v") {
		t.Errorf("cell for v placed below its owner")
	}
	if c.CellOwner("v") != a {
		t.Errorf("cell owner of v in c = %v, want %v", c.CellOwner("v"), a)
	}
	if !b.ExplicitNonlocals["v"] || !c.ExplicitNonlocals["v"] {
		t.Errorf("explicit nonlocal declarations not recorded")
	}
}

func TestQualnames(t *testing.T) {
	root := mustModule(t, `
def f():
    def g():
        pass
    class C:
        def m(self):
            def n():
                pass
    global h
    def h():
        pass

class D:
    class E:
        def _dp_lambda_3():
            pass
`)
	var got []string
	var visit func(s *resolve.Scope)
	visit = func(s *resolve.Scope) {
		for _, c := range s.Children {
			got = append(got, c.Qualname)
			visit(c)
		}
	}
	visit(root)
	want := []string{
		"f",
		"f.<locals>.g",
		"f.<locals>.C",
		"f.<locals>.C.m",
		"f.<locals>.C.m.<locals>.n",
		"h",
		"D",
		"D.E",
		"D.E.<lambda>",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("got qualnames %q, want %q", got, want)
	}
}

func TestChild(t *testing.T) {
	f, err := syntax.Parse("test.py", "def f():\n    pass\ndef f():\n    x = 1\n")
	if err != nil {
		t.Fatal(err)
	}
	root, err := resolve.Module(f)
	if err != nil {
		t.Fatal(err)
	}
	second := root.Child(f.Stmts[1])
	if second == nil || !second.Binds("x") {
		t.Errorf("Child did not find the scope of the second def")
	}
	if second.Depth() != 1 || root.Depth() != 0 {
		t.Errorf("depths = %d, %d", root.Depth(), second.Depth())
	}
	if root.Child(&syntax.DefStmt{}) != nil {
		t.Errorf("Child found a scope for an unknown node")
	}
}

func TestHelperDeclarations(t *testing.T) {
	root := mustModule(t, `
def f():
    def _dp_listcomp_1(_dp_iter_2):
        nonlocal y
        y = 1
    def g():
        return y
`)
	f := root.Children[0]
	if f.Binding("y") != syntax.Local || !f.Binds("y") {
		t.Errorf("y not bound in f: %s", format(f.Bindings))
	}
	if !f.NeedsCell("y") {
		t.Errorf("f does not hold a cell for y")
	}
}

func TestDisplayName(t *testing.T) {
	for _, test := range []struct{ name, want string }{
		{"f", "f"},
		{"_dp_lambda_1", "<lambda>"},
		{"_dp_genexpr_12", "<genexpr>"},
		{"_dp_listcomp_2", "<listcomp>"},
		{"_dp_setcomp_2", "<setcomp>"},
		{"_dp_dictcomp_2", "<dictcomp>"},
		{"_dp_fn_method_4", "method"},
		{"_dp_fn_snake_case_name_10", "snake_case_name"},
		{"_dp_fn_x", "x"},
		{"_dp_tmp_1", "_dp_tmp_1"},
	} {
		if got := resolve.DisplayName(test.name); got != test.want {
			t.Errorf("DisplayName(%q) = %q, want %q", test.name, got, test.want)
		}
	}
}

func TestIsInternal(t *testing.T) {
	for name, want := range map[string]bool{
		"__dp__":     true,
		"_dp_tmp_1":  true,
		"_dp_":       true,
		"dp":         false,
		"__dp":       false,
		"_dpx":       false,
		"x_dp_":      false,
		"__dp__.add": false,
	} {
		if got := resolve.IsInternal(name); got != want {
			t.Errorf("IsInternal(%q) = %t, want %t", name, got, want)
		}
	}
}
