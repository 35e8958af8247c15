// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package desugar

import (
	"strings"

	"go.dietpy.dev/resolve"
	"go.dietpy.dev/syntax"
)

// A FunctionName records the identity of a function renamed by the
// desugarer.
type FunctionName struct {
	Name     string // name as declared, or <lambda>, <genexpr>, ...
	Qualname string
}

// FunctionNames maps generated function names to the identity of the
// function they implement.
type FunctionNames map[string]FunctionName

// rewriteFunctionDefs renames each def to a generated name, binds the
// original name explicitly and applies the decorators:
//
//	@d
//	def f(x): ...
//
// becomes
//
//	def _dp_fn_f_1(x): ...
//	f = d(__dp__.update_fn(_dp_fn_f_1, "f", "f"))
//	del _dp_fn_f_1
//
// Name and qualified name are set by update_fn, since the def's own
// name is no longer the declared one. Helper functions generated for
// lambdas and comprehensions keep their names and are updated in place.
func (ctx *Context) rewriteFunctionDefs(f *syntax.File, root *resolve.Scope) {
	f.Stmts = ctx.functionDefs(f.Stmts, root)
}

func (ctx *Context) functionDefs(body []syntax.Stmt, sc *resolve.Scope) []syntax.Stmt {
	var out []syntax.Stmt
	for i, stmt := range body {
		switch s := stmt.(type) {
		case *syntax.DefStmt:
			child := sc.Child(s)
			s.Body = ctx.functionDefs(s.Body, child)
			out = append(out, ctx.functionDef(s, child, body[i+1:])...)
			continue
		case *syntax.ClassStmt:
			s.Body = ctx.functionDefs(s.Body, sc.Child(s))
		default:
			for _, b := range nestedBodies(stmt) {
				*b = ctx.functionDefs(*b, sc)
			}
		}
		out = append(out, stmt)
	}
	return out
}

func (ctx *Context) functionDef(s *syntax.DefStmt, sc *resolve.Scope, rest []syntax.Stmt) []syntax.Stmt {
	name := s.Name.Name
	if isInternal(name) {
		display := resolve.DisplayName(name)
		if !strings.HasPrefix(display, "<") || updatedBy(rest, name) {
			return []syntax.Stmt{s}
		}
		ctx.names[name] = FunctionName{Name: display, Qualname: sc.Qualname}
		return []syntax.Stmt{s, assign(name, dpCall("update_fn", ident(name), str(sc.Qualname), str(display)))}
	}

	fn := ctx.Fresh("fn_" + name)
	ctx.names[fn] = FunctionName{Name: name, Qualname: sc.Qualname}
	pre, decorators := ctx.hoistDecorators(s.Decorators)
	s.Decorators = nil
	s.Name = &syntax.Ident{NamePos: s.Name.NamePos, Name: fn}

	var value syntax.Expr = dpCall("update_fn", ident(fn), str(sc.Qualname), str(name))
	for i := len(decorators) - 1; i >= 0; i-- {
		value = call(decorators[i], value)
	}
	ctx.log.Debug("rename function", "name", name, "qualname", sc.Qualname, "as", fn)
	return append(pre, s, assign(name, value), del(fn))
}

// hoistDecorators saves impure decorator expressions in temporaries,
// since they are evaluated before the decorated definition.
func (ctx *Context) hoistDecorators(decorators []syntax.Expr) ([]syntax.Stmt, []syntax.Expr) {
	var pre []syntax.Stmt
	out := make([]syntax.Expr, len(decorators))
	for i, d := range decorators {
		if pure(d) {
			out[i] = d
			continue
		}
		tmp := ctx.Fresh("dec")
		pre = append(pre, assign(tmp, d))
		out[i] = ident(tmp)
	}
	return pre, out
}

// updatedBy reports whether the statement following a helper def
// already passes it to __dp__.update_fn.
func updatedBy(rest []syntax.Stmt, name string) bool {
	if len(rest) == 0 {
		return false
	}
	found := false
	syntax.Walk(rest[0], func(n syntax.Node) bool {
		if c, ok := n.(*syntax.CallExpr); ok && isDPCall(c, "update_fn") && len(c.Args) > 0 && isIdent(c.Args[0], name) {
			found = true
		}
		return !found
	})
	return found
}
