// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package desugar

// This file defines constructors and predicates for syntax trees.
// Larger shapes are built from source templates; see
// go.dietpy.dev/internal/template.

import (
	"fmt"

	"go.dietpy.dev/resolve"
	"go.dietpy.dev/syntax"
)

// runtime is the name of the runtime support module.
const runtime = "__dp__"

func ident(name string) *syntax.Ident { return &syntax.Ident{Name: name} }

func str(s string) *syntax.Literal {
	return &syntax.Literal{Token: syntax.STRING, Value: s}
}

func none() *syntax.Literal { return &syntax.Literal{Token: syntax.NONE} }

func boolean(b bool) *syntax.Literal {
	if b {
		return &syntax.Literal{Token: syntax.TRUE, Value: true}
	}
	return &syntax.Literal{Token: syntax.FALSE, Value: false}
}

func intLit(i int) *syntax.Literal {
	return &syntax.Literal{Token: syntax.INT, Value: int64(i)}
}

// dp returns the expression __dp__.attr.
func dp(attr string) *syntax.DotExpr {
	return &syntax.DotExpr{X: ident(runtime), Name: attr}
}

// builtin returns the expression __dp__.builtins.name.
func builtin(name string) *syntax.DotExpr {
	return &syntax.DotExpr{X: dp("builtins"), Name: name}
}

func call(fn syntax.Expr, args ...syntax.Expr) *syntax.CallExpr {
	return &syntax.CallExpr{Fn: fn, Args: args}
}

// dpCall returns the call __dp__.attr(args...).
func dpCall(attr string, args ...syntax.Expr) *syntax.CallExpr {
	return call(dp(attr), args...)
}

func assign(name string, value syntax.Expr) *syntax.AssignStmt {
	return &syntax.AssignStmt{Targets: []syntax.Expr{ident(name)}, Value: value}
}

func exprStmt(x syntax.Expr) *syntax.ExprStmt { return &syntax.ExprStmt{X: x} }

func pass() *syntax.BranchStmt { return &syntax.BranchStmt{Token: syntax.PASS} }

func del(name string) *syntax.DelStmt {
	return &syntax.DelStmt{Targets: []syntax.Expr{ident(name)}}
}

func tuple(list ...syntax.Expr) *syntax.TupleExpr { return &syntax.TupleExpr{List: list} }

// isDPCall reports whether x is a call of __dp__.attr.
func isDPCall(x syntax.Expr, attr string) bool {
	c, ok := x.(*syntax.CallExpr)
	if !ok {
		return false
	}
	dot, ok := c.Fn.(*syntax.DotExpr)
	return ok && dot.Name == attr && isIdent(dot.X, runtime)
}

func isIdent(x syntax.Expr, name string) bool {
	id, ok := x.(*syntax.Ident)
	return ok && id.Name == name
}

// rootedAtRuntime reports whether x is a selector chain __dp__.a.b...
func rootedAtRuntime(x syntax.Expr) bool {
	for {
		switch e := x.(type) {
		case *syntax.Ident:
			return e.Name == runtime
		case *syntax.DotExpr:
			x = e.X
		default:
			return false
		}
	}
}

// pure reports whether evaluating x has no effects and yields the same
// value wherever it is moved within a statement.
func pure(x syntax.Expr) bool {
	switch x := x.(type) {
	case nil, *syntax.Literal, *syntax.Ident:
		return true
	case *syntax.DotExpr:
		return rootedAtRuntime(x)
	}
	return false
}

// hoists reports whether lowering x produces statements.
func hoists(x syntax.Expr) bool {
	if x == nil {
		return false
	}
	found := false
	syntax.Walk(x, func(n syntax.Node) bool {
		switch n := n.(type) {
		case *syntax.BinaryExpr:
			if n.Op == syntax.AND || n.Op == syntax.OR {
				found = true
			}
		case *syntax.CompareExpr:
			if len(n.Ops) > 1 {
				found = true
			}
		case *syntax.CondExpr, *syntax.NamedExpr, *syntax.LambdaExpr, *syntax.Comprehension:
			found = true
		}
		return !found
	})
	return found
}

// containsNamedExpr reports whether x contains an assignment expression.
func containsNamedExpr(x syntax.Expr) bool {
	found := false
	syntax.Walk(x, func(n syntax.Node) bool {
		if _, ok := n.(*syntax.NamedExpr); ok {
			found = true
		}
		return !found
	})
	return found
}

// isDocstring reports whether stmt is a string literal expression.
func isDocstring(stmt syntax.Stmt) bool {
	e, ok := stmt.(*syntax.ExprStmt)
	if !ok {
		return false
	}
	lit, ok := e.X.(*syntax.Literal)
	return ok && lit.Token == syntax.STRING
}

// docstringEnd returns the number of leading statements of body that
// form its docstring: 1 or 0.
func docstringEnd(body []syntax.Stmt) int {
	if len(body) > 0 && isDocstring(body[0]) {
		return 1
	}
	return 0
}

// futureEnd returns the number of leading statements of a module body
// that form its docstring and __future__ imports, which must precede
// any other statement.
func futureEnd(body []syntax.Stmt) int {
	i := docstringEnd(body)
	for ; i < len(body); i++ {
		imp, ok := body[i].(*syntax.ImportFromStmt)
		if !ok || imp.Module != "__future__" || imp.Level != 0 {
			break
		}
	}
	return i
}

// insertAt returns body with stmts inserted before index i.
func insertAt(body []syntax.Stmt, i int, stmts ...syntax.Stmt) []syntax.Stmt {
	out := make([]syntax.Stmt, 0, len(body)+len(stmts))
	out = append(out, body[:i]...)
	out = append(out, stmts...)
	return append(out, body[i:]...)
}

func isInternal(name string) bool { return resolve.IsInternal(name) }

// cloneable reports whether clone can copy x.
func cloneable(x syntax.Expr) bool {
	switch x := x.(type) {
	case *syntax.Ident, *syntax.Literal:
		return true
	case *syntax.DotExpr:
		return cloneable(x.X)
	}
	return false
}

// clone returns a copy of a name, literal or selector chain, so that
// the same value can appear twice in a tree without aliasing.
func clone(x syntax.Expr) syntax.Expr {
	switch x := x.(type) {
	case *syntax.Ident:
		c := *x
		return &c
	case *syntax.Literal:
		c := *x
		return &c
	case *syntax.DotExpr:
		c := *x
		c.X = clone(x.X)
		return &c
	}
	panic(fmt.Sprintf("clone: unexpected %T", x))
}

// describe names the kind of expression x for error messages.
func describe(x syntax.Expr) string {
	switch x := x.(type) {
	case *syntax.CallExpr:
		return "function call"
	case *syntax.Literal:
		return "literal"
	case *syntax.BinaryExpr, *syntax.UnaryExpr, *syntax.CompareExpr:
		return "operator expression"
	case *syntax.Comprehension:
		return x.Kind.String()
	case *syntax.LambdaExpr:
		return "lambda"
	case *syntax.DictExpr, *syntax.SetExpr:
		return "display"
	case *syntax.StarredExpr:
		return "starred expression"
	}
	return "expression"
}

// nestedBodies returns the statement lists nested in stmt, except the
// bodies of defs and classes. Absent optional bodies are included as
// pointers to nil lists.
func nestedBodies(stmt syntax.Stmt) []*[]syntax.Stmt {
	switch s := stmt.(type) {
	case *syntax.IfStmt:
		return []*[]syntax.Stmt{&s.True, &s.False}
	case *syntax.WhileStmt:
		return []*[]syntax.Stmt{&s.Body, &s.Else}
	case *syntax.ForStmt:
		return []*[]syntax.Stmt{&s.Body, &s.Else}
	case *syntax.WithStmt:
		return []*[]syntax.Stmt{&s.Body}
	case *syntax.TryStmt:
		bodies := []*[]syntax.Stmt{&s.Body}
		for _, h := range s.Handlers {
			bodies = append(bodies, &h.Body)
		}
		return append(bodies, &s.Else, &s.Finally)
	}
	return nil
}
