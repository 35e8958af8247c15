// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package desugar

import (
	"go.dietpy.dev/resolve"
	"go.dietpy.dev/syntax"
)

// Names of the parameters of a class namespace function.
const (
	classNamespace = "_dp_class_ns"
	classCell      = "_dp_classcell"
)

// rewriteClasses turns each class statement into a namespace function
// and an explicit call of the class construction protocol:
//
//	@d
//	class C(B, metaclass=M):
//	    x = 1
//	    y = x
//
// becomes
//
//	def _dp_class_ns_C_1(_dp_class_ns, _dp_classcell):
//	    __dp__.setitem(_dp_class_ns, "__module__", __name__)
//	    __dp__.setitem(_dp_class_ns, "__qualname__", "C")
//	    __dp__.setitem(_dp_class_ns, "x", 1)
//	    __dp__.setitem(_dp_class_ns, "y", __dp__.class_lookup_global(_dp_class_ns, "x", globals()))
//	C = d(__dp__.create_class("C", _dp_class_ns_C_1, (B,), {"metaclass": M}, False))
//	del _dp_class_ns_C_1
//
// Nested classes are rewritten first. The last argument of
// create_class reports whether some method uses zero-argument super()
// or __class__, which then refer to the class through _dp_classcell.
func (ctx *Context) rewriteClasses(f *syntax.File, root *resolve.Scope) {
	f.Stmts = ctx.classes(f.Stmts, root)
}

func (ctx *Context) classes(body []syntax.Stmt, sc *resolve.Scope) []syntax.Stmt {
	var out []syntax.Stmt
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *syntax.DefStmt:
			s.Body = ctx.classes(s.Body, sc.Child(s))
		case *syntax.ClassStmt:
			child := sc.Child(s)
			s.Body = ctx.classes(s.Body, child)
			out = append(out, ctx.class(s, child)...)
			continue
		default:
			for _, b := range nestedBodies(stmt) {
				*b = ctx.classes(*b, sc)
			}
		}
		out = append(out, stmt)
	}
	return out
}

func (ctx *Context) class(s *syntax.ClassStmt, sc *resolve.Scope) []syntax.Stmt {
	name := s.Name.Name
	ns := ctx.Fresh("class_ns_" + name)

	needsCell := false
	methods(s.Body, func(def *syntax.DefStmt) {
		if rewriteSuper(def) {
			needsCell = true
		}
	})

	cr := &classRewriter{scope: sc}
	cr.VisitBody(&s.Body)
	body := s.Body
	header := []syntax.Stmt{
		exprStmt(dpCall("setitem", ident(classNamespace), str("__module__"), ident("__name__"))),
		exprStmt(dpCall("setitem", ident(classNamespace), str("__qualname__"), str(sc.Qualname))),
	}
	if len(body) > 0 && isDocstring(body[0]) {
		doc := body[0].(*syntax.ExprStmt).X
		header = append(header, exprStmt(dpCall("setitem", ident(classNamespace), str("__doc__"), doc)))
		body = body[1:]
	}

	def := &syntax.DefStmt{
		Def:  s.Class,
		Name: &syntax.Ident{NamePos: s.Name.NamePos, Name: ns},
		Function: syntax.Function{
			Params: []*syntax.Param{
				{Kind: syntax.ParamNormal, Name: ident(classNamespace)},
				{Kind: syntax.ParamNormal, Name: ident(classCell)},
			},
			Body: append(header, body...),
		},
	}

	pre, decorators := ctx.hoistDecorators(s.Decorators)
	bases, keywords := classArguments(s.Bases)
	var value syntax.Expr = dpCall("create_class", str(name), ident(ns), bases, keywords, boolean(needsCell))
	for i := len(decorators) - 1; i >= 0; i-- {
		value = call(decorators[i], value)
	}
	ctx.log.Debug("class", "name", name, "qualname", sc.Qualname, "namespace", ns, "classcell", needsCell)
	return append(pre, def, assign(name, value), del(ns))
}

// classArguments splits the arguments of a class statement into a
// tuple of bases and a dict of keywords, or None if there are none.
func classArguments(args []syntax.Expr) (bases, keywords syntax.Expr) {
	var positional, named []syntax.Expr
	for _, arg := range args {
		switch arg := arg.(type) {
		case *syntax.KeywordArg:
			named = append(named, &syntax.DictEntry{Key: str(arg.Name), Value: arg.Value})
		case *syntax.StarredExpr:
			if arg.Op == syntax.STARSTAR {
				named = append(named, arg)
			} else {
				positional = append(positional, arg)
			}
		default:
			positional = append(positional, arg)
		}
	}
	if hasStarred(positional) {
		bases = splat(positional)
	} else {
		bases = tuple(positional...)
	}
	switch {
	case len(named) == 0:
		keywords = none()
	case hasStarred(named):
		keywords = mergeDicts(named)
	default:
		keywords = &syntax.DictExpr{List: named}
	}
	return bases, keywords
}

// methods calls f for each def in a class body, including defs nested
// in compound statements but not those in nested functions.
func methods(body []syntax.Stmt, f func(*syntax.DefStmt)) {
	for _, stmt := range body {
		if def, ok := stmt.(*syntax.DefStmt); ok {
			f(def)
			continue
		}
		for _, b := range nestedBodies(stmt) {
			methods(*b, f)
		}
	}
}

// rewriteSuper replaces zero-argument super() in a method by an
// explicit call through the class cell, and __class__ by the cell's
// contents. It reports whether the method needs the class cell.
func rewriteSuper(def *syntax.DefStmt) bool {
	var self string
	if len(def.Params) > 0 && def.Params[0].Kind == syntax.ParamNormal && def.Params[0].Name != nil {
		self = def.Params[0].Name.Name
	}
	r := &superRewriter{self: self}
	r.VisitBody(&def.Body)
	return r.used
}

type superRewriter struct {
	self string
	used bool
}

func (r *superRewriter) VisitBody(body *[]syntax.Stmt) { syntax.WalkBody(r, body) }

func (r *superRewriter) VisitStmt(stmt *syntax.Stmt) {
	switch s := (*stmt).(type) {
	case *syntax.DefStmt:
		for _, param := range s.Params {
			if param.Default != nil {
				r.VisitExpr(&param.Default)
			}
		}
	case *syntax.DelStmt:
		if len(s.Targets) == 1 && isIdent(s.Targets[0], "__class__") {
			r.used = true
			*stmt = &syntax.DelStmt{Del: s.Del, Targets: []syntax.Expr{cellContents(classCell)}}
			return
		}
		syntax.WalkStmt(r, stmt)
	default:
		syntax.WalkStmt(r, stmt)
	}
}

func (r *superRewriter) VisitExpr(x *syntax.Expr) {
	switch e := (*x).(type) {
	case *syntax.CallExpr:
		if isIdent(e.Fn, "super") && len(e.Args) == 0 {
			r.used = true
			if r.self != "" {
				*x = dpCall("call_super", ident("super"), ident(classCell), ident(r.self))
			} else {
				*x = dpCall("call_super_noargs", ident("super"))
			}
			return
		}
	case *syntax.Ident:
		if e.Name == "__class__" {
			r.used = true
			*x = cellContents(classCell)
		}
		return
	}
	syntax.WalkExpr(r, x)
}

func (r *superRewriter) VisitTarget(x *syntax.Expr) { syntax.WalkTarget(r, x) }

// cellContents returns the expression name.cell_contents.
func cellContents(name string) *syntax.DotExpr {
	return &syntax.DotExpr{X: ident(name), Name: "cell_contents"}
}

// A classRewriter rewrites the names of a class body, which runs as a
// namespace function, to explicit operations on the namespace.
// Nested function bodies are not visited; internal names and names
// declared global or nonlocal are left alone, and their declarations
// kept, for the closure resolver.
type classRewriter struct {
	scope *resolve.Scope
}

// explicit reports whether name keeps its own binding in the class
// namespace function.
func (r *classRewriter) explicit(name string) bool {
	return isInternal(name) || r.scope.ExplicitGlobals[name] || r.scope.ExplicitNonlocals[name]
}

func (r *classRewriter) VisitBody(body *[]syntax.Stmt) { syntax.WalkBody(r, body) }

func (r *classRewriter) VisitStmt(stmt *syntax.Stmt) {
	switch s := (*stmt).(type) {
	case *syntax.AssignStmt:
		if id, ok := s.Targets[0].(*syntax.Ident); ok && len(s.Targets) == 1 && !r.explicit(id.Name) {
			r.VisitExpr(&s.Value)
			*stmt = exprStmt(dpCall("setitem", ident(classNamespace), str(id.Name), s.Value))
			return
		}
		syntax.WalkStmt(r, stmt)

	case *syntax.DelStmt:
		if id, ok := s.Targets[0].(*syntax.Ident); ok && len(s.Targets) == 1 && !r.explicit(id.Name) {
			*stmt = exprStmt(dpCall("delitem", ident(classNamespace), str(id.Name)))
			return
		}
		syntax.WalkStmt(r, stmt)

	case *syntax.DefStmt:
		// Defaults are evaluated in the class body; the function body
		// is a scope of its own.
		for _, param := range s.Params {
			if param.Default != nil {
				r.VisitExpr(&param.Default)
			}
		}

	default:
		syntax.WalkStmt(r, stmt)
	}
}

func (r *classRewriter) VisitExpr(x *syntax.Expr) {
	switch e := (*x).(type) {
	case *syntax.Ident:
		name := e.Name
		if r.explicit(name) {
			return
		}
		if r.scope.Binding(name) == syntax.Nonlocal {
			*x = dpCall("class_lookup_cell", ident(classNamespace), str(name), &syntax.Ident{NamePos: e.NamePos, Name: name})
		} else {
			*x = dpCall("class_lookup_global", ident(classNamespace), str(name), call(ident("globals")))
		}
		return

	case *syntax.CallExpr:
		// locals() and vars() in a class body denote the namespace.
		if id, ok := e.Fn.(*syntax.Ident); ok && len(e.Args) == 0 &&
			(id.Name == "locals" || id.Name == "vars") && !r.scope.Binds(id.Name) {
			*x = ident(classNamespace)
			return
		}
	}
	syntax.WalkExpr(r, x)
}

func (r *classRewriter) VisitTarget(x *syntax.Expr) {
	if _, ok := (*x).(*syntax.Ident); ok {
		return
	}
	syntax.WalkTarget(r, x)
}
