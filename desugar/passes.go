// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package desugar

import "go.dietpy.dev/syntax"

// This file defines the final passes over the lowered module.

// stripPasses removes the pass statements generated by rewriting from
// every body that has other statements. Generated statements have no
// position, so a pass written in the input is kept. A module may be
// left empty.
func stripPasses(f *syntax.File) {
	f.Stmts = stripBody(f.Stmts)
	if len(f.Stmts) == 1 && isGeneratedPass(f.Stmts[0]) {
		f.Stmts = nil
	}
}

func isGeneratedPass(stmt syntax.Stmt) bool {
	b, ok := stmt.(*syntax.BranchStmt)
	return ok && b.Token == syntax.PASS && !b.TokenPos.IsValid()
}

func stripBody(body []syntax.Stmt) []syntax.Stmt {
	if body == nil {
		return nil
	}
	out := body[:0]
	for _, stmt := range body {
		if isGeneratedPass(stmt) {
			continue
		}
		for _, inner := range bodies(stmt) {
			*inner = stripBody(*inner)
		}
		out = append(out, stmt)
	}
	if len(out) == 0 {
		out = append(out, pass())
	}
	return out
}

// bodies returns all statement lists nested directly in stmt,
// including those of defs and classes.
func bodies(stmt syntax.Stmt) []*[]syntax.Stmt {
	switch s := stmt.(type) {
	case *syntax.DefStmt:
		return []*[]syntax.Stmt{&s.Body}
	case *syntax.ClassStmt:
		return []*[]syntax.Stmt{&s.Body}
	}
	return nestedBodies(stmt)
}

// truthy wraps the conditions of if and while statements in
// __dp__.truth, making the conversion to bool explicit.
type truthy struct{}

func (t truthy) VisitBody(body *[]syntax.Stmt) { syntax.WalkBody(t, body) }

func (t truthy) VisitStmt(stmt *syntax.Stmt) {
	switch s := (*stmt).(type) {
	case *syntax.IfStmt:
		s.Cond = truth(s.Cond)
	case *syntax.WhileStmt:
		s.Cond = truth(s.Cond)
	}
	syntax.WalkStmt(t, stmt)
}

// Expressions contain no statements once lowered.
func (truthy) VisitExpr(x *syntax.Expr)   {}
func (truthy) VisitTarget(x *syntax.Expr) {}

func truth(x syntax.Expr) syntax.Expr {
	if isDPCall(x, "truth") {
		return x
	}
	if lit, ok := x.(*syntax.Literal); ok && (lit.Token == syntax.TRUE || lit.Token == syntax.FALSE) {
		return x
	}
	return dpCall("truth", x)
}

// cleanupGlobals appends a call that deletes the module's generated
// globals.
func cleanupGlobals(f *syntax.File) {
	if n := len(f.Stmts); n > 0 {
		if e, ok := f.Stmts[n-1].(*syntax.ExprStmt); ok && isDPCall(e.X, "cleanup_dp_globals") {
			return
		}
	}
	f.Stmts = append(f.Stmts, exprStmt(dpCall("cleanup_dp_globals", call(ident("globals")))))
}

// ensureImport binds the runtime module at the top of f, after the
// docstring and __future__ imports, unless f already does so.
func ensureImport(f *syntax.File) {
	for _, stmt := range f.Stmts {
		if s, ok := stmt.(*syntax.AssignStmt); ok && len(s.Targets) == 1 && isIdent(s.Targets[0], runtime) {
			return
		}
	}
	imp := assign(runtime, call(ident("__import__"), str(runtime)))
	f.Stmts = insertAt(f.Stmts, futureEnd(f.Stmts), imp)
}
