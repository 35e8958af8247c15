// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package desugar

import (
	"go.dietpy.dev/resolve"
	"go.dietpy.dev/syntax"
)

// resolveClosures makes the scoping of function bodies explicit.
//
// Each name that a nested function captures is held in a cell, created
// at the start of the function that owns it:
//
//	def f(x):
//	    def g():
//	        return x
//
// becomes
//
//	def f(x):
//	    _dp_cell_x = __dp__.make_cell(x)
//	    def g():
//	        return __dp__.load_cell(_dp_cell_x)
//
// Names declared global in a function are accessed through globals().
// Global and nonlocal declarations are then removed. Module-level
// names are left alone.
func (ctx *Context) resolveClosures(f *syntax.File, root *resolve.Scope) {
	r := &closureRewriter{ctx: ctx, scope: root}
	r.VisitBody(&f.Stmts)
}

// cellName returns the name of the variable holding the cell for name.
func cellName(name string) string { return "_dp_cell_" + name }

type closureRewriter struct {
	ctx   *Context
	scope *resolve.Scope
}

// global reports whether name is declared global in a function scope.
func (r *closureRewriter) global(name string) bool {
	return r.scope.Kind != syntax.ModuleScope && r.scope.Binding(name) == syntax.Global
}

// cell reports whether name is held in a cell in the current scope,
// either one it owns or one of an enclosing function.
func (r *closureRewriter) cell(name string) bool {
	sc := r.scope
	if sc.Kind == syntax.ModuleScope || isInternal(name) {
		return false
	}
	return sc.NeedsCell(name) || sc.Binding(name) == syntax.Nonlocal && sc.CellOwner(name) != nil
}

// boundOnChain reports whether some scope enclosing the current one,
// or the current one, binds name.
func (r *closureRewriter) boundOnChain(name string) bool {
	for sc := r.scope; sc != nil; sc = sc.Parent {
		if sc.Binds(name) {
			return true
		}
	}
	return false
}

func (r *closureRewriter) VisitBody(body *[]syntax.Stmt) { syntax.WalkBody(r, body) }

func (r *closureRewriter) VisitStmt(stmt *syntax.Stmt) {
	switch s := (*stmt).(type) {
	case *syntax.ScopeStmt:
		*stmt = pass()

	case *syntax.AssignStmt:
		id, ok := s.Targets[0].(*syntax.Ident)
		if !ok || len(s.Targets) != 1 {
			syntax.WalkStmt(r, stmt)
			return
		}
		r.VisitExpr(&s.Value)
		switch name := id.Name; {
		case r.global(name):
			*stmt = exprStmt(dpCall("store_global", call(ident("globals")), str(name), s.Value))
		case r.cell(name):
			*stmt = exprStmt(dpCall("store_cell", ident(cellName(name)), s.Value))
		}

	case *syntax.DelStmt:
		id, ok := s.Targets[0].(*syntax.Ident)
		if !ok || len(s.Targets) != 1 {
			syntax.WalkStmt(r, stmt)
			return
		}
		switch name := id.Name; {
		case r.global(name):
			*stmt = exprStmt(dpCall("delitem", call(ident("globals")), str(name)))
		case r.cell(name):
			*stmt = &syntax.DelStmt{Del: s.Del, Targets: []syntax.Expr{cellContents(cellName(name))}}
		}

	case *syntax.DefStmt:
		// Decorators and defaults are evaluated in the enclosing scope.
		for i := range s.Decorators {
			r.VisitExpr(&s.Decorators[i])
		}
		for _, param := range s.Params {
			if param.Default != nil {
				r.VisitExpr(&param.Default)
			}
		}
		child := r.scope.Child(s)
		inner := &closureRewriter{ctx: r.ctx, scope: child}
		inner.VisitBody(&s.Body)
		s.Body = insertAt(s.Body, docstringEnd(s.Body), makeCells(child)...)

	case *syntax.ClassStmt:
		for i := range s.Decorators {
			r.VisitExpr(&s.Decorators[i])
		}
		for i := range s.Bases {
			r.VisitExpr(&s.Bases[i])
		}
		inner := &closureRewriter{ctx: r.ctx, scope: r.scope.Child(s)}
		inner.VisitBody(&s.Body)

	default:
		syntax.WalkStmt(r, stmt)
	}
}

// makeCells returns the statements that create the cells owned by a
// function scope. A cell for a parameter starts out holding its value.
func makeCells(sc *resolve.Scope) []syntax.Stmt {
	var stmts []syntax.Stmt
	for _, name := range sc.CellNames() {
		var value syntax.Expr
		if sc.Params[name] {
			value = dpCall("make_cell", ident(name))
		} else {
			value = dpCall("make_cell")
		}
		stmts = append(stmts, assign(cellName(name), value))
	}
	return stmts
}

func (r *closureRewriter) VisitExpr(x *syntax.Expr) {
	switch e := (*x).(type) {
	case *syntax.Ident:
		switch name := e.Name; {
		case r.global(name):
			*x = dpCall("load_global", call(ident("globals")), str(name))
		case r.cell(name):
			*x = dpCall("load_cell", ident(cellName(name)))
		}
		return

	case *syntax.CallExpr:
		if isDPCall(e, "class_lookup_cell") && len(e.Args) == 3 {
			// The class namespace falls back to the cell itself.
			r.VisitExpr(&e.Args[0])
			r.VisitExpr(&e.Args[1])
			if id, ok := e.Args[2].(*syntax.Ident); ok && r.cell(id.Name) {
				e.Args[2] = ident(cellName(id.Name))
			} else {
				r.VisitExpr(&e.Args[2])
			}
			return
		}
		if isIdent(e.Fn, "locals") && len(e.Args) == 0 &&
			r.scope.Kind == syntax.FunctionScope && !r.boundOnChain("locals") {
			*x = dpCall("locals")
			return
		}
	}
	syntax.WalkExpr(r, x)
}

func (r *closureRewriter) VisitTarget(x *syntax.Expr) {
	if id, ok := (*x).(*syntax.Ident); ok {
		if r.global(id.Name) || r.cell(id.Name) {
			unsupported(id, "binding of %s in this position", id.Name)
		}
		return
	}
	syntax.WalkTarget(r, x)
}
