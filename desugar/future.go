// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package desugar

import "go.dietpy.dev/syntax"

// annotations processes annotations before lowering.
//
// If the module imports annotations from __future__, that name is
// removed from the import and annotations are stored as their source
// text. Annotated assignments in module and class bodies become plain
// assignments that also record the annotation in __annotations__;
// in function bodies, where Python does not evaluate annotations,
// the annotation is dropped. Parameter and return annotations are
// dropped.
func (ctx *Context) annotations(f *syntax.File) {
	a := &annotator{deferred: stripFutureAnnotations(f)}
	f.Stmts = a.scope(f.Stmts, moduleFrame)
	ctx.log.Debug("annotations", "deferred", a.deferred)
}

// stripFutureAnnotations removes "annotations" from the module's
// __future__ imports and reports whether it was present.
func stripFutureAnnotations(f *syntax.File) bool {
	found := false
	out := f.Stmts[:0]
	for _, stmt := range f.Stmts {
		if imp, ok := stmt.(*syntax.ImportFromStmt); ok && imp.Module == "__future__" && imp.Level == 0 {
			names := imp.Names[:0]
			for _, name := range imp.Names {
				if name.Name == "annotations" {
					found = true
				} else {
					names = append(names, name)
				}
			}
			imp.Names = names
			if len(names) == 0 {
				continue
			}
		}
		out = append(out, stmt)
	}
	f.Stmts = out
	return found
}

type annotator struct {
	deferred bool // from __future__ import annotations
}

// An annScope is a module, class or function body being annotated.
type annScope struct {
	kind     frameKind
	recorded bool // an annotation was stored in __annotations__
}

func (a *annotator) annotation(x syntax.Expr) syntax.Expr {
	if a.deferred {
		return str(syntax.FormatExpr(x))
	}
	return x
}

// scope rewrites the body of a module, class or function. Module and
// class bodies that record annotations first bind __annotations__.
func (a *annotator) scope(stmts []syntax.Stmt, kind frameKind) []syntax.Stmt {
	sc := &annScope{kind: kind}
	out := a.body(stmts, sc)
	if sc.recorded && !bindsAnnotations(out) {
		out = insertAt(out, futureEnd(out), assign("__annotations__", &syntax.DictExpr{}))
	}
	return out
}

// body rewrites the annotated assignments of a statement list.
func (a *annotator) body(stmts []syntax.Stmt, sc *annScope) []syntax.Stmt {
	if stmts == nil {
		return nil
	}
	var out []syntax.Stmt
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *syntax.AnnAssignStmt:
			if s.Value != nil {
				out = append(out, &syntax.AssignStmt{Targets: []syntax.Expr{s.Target}, Value: s.Value})
			}
			id, simple := s.Target.(*syntax.Ident)
			if sc.kind == functionFrame || !simple {
				if s.Value == nil {
					out = append(out, pass())
				}
				continue
			}
			out = append(out, &syntax.AssignStmt{
				Targets: []syntax.Expr{&syntax.IndexExpr{X: ident("__annotations__"), Y: str(id.Name)}},
				Value:   a.annotation(s.Annotation),
			})
			sc.recorded = true
			continue

		case *syntax.DefStmt:
			for _, param := range s.Params {
				param.Annotation = nil
			}
			s.Returns = nil
			s.Body = a.scope(s.Body, functionFrame)

		case *syntax.ClassStmt:
			s.Body = a.scope(s.Body, classFrame)

		case *syntax.IfStmt:
			s.True = a.body(s.True, sc)
			s.False = a.body(s.False, sc)
		case *syntax.WhileStmt:
			s.Body = a.body(s.Body, sc)
			s.Else = a.body(s.Else, sc)
		case *syntax.ForStmt:
			s.Body = a.body(s.Body, sc)
			s.Else = a.body(s.Else, sc)
		case *syntax.WithStmt:
			s.Body = a.body(s.Body, sc)
		case *syntax.TryStmt:
			s.Body = a.body(s.Body, sc)
			for _, h := range s.Handlers {
				h.Body = a.body(h.Body, sc)
			}
			s.Else = a.body(s.Else, sc)
			s.Finally = a.body(s.Finally, sc)
		}
		out = append(out, stmt)
	}
	return out
}

// bindsAnnotations reports whether a body assigns __annotations__ itself.
func bindsAnnotations(stmts []syntax.Stmt) bool {
	for _, stmt := range stmts {
		if s, ok := stmt.(*syntax.AssignStmt); ok && len(s.Targets) == 1 && isIdent(s.Targets[0], "__annotations__") {
			return true
		}
	}
	return false
}
