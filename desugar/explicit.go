// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package desugar

import (
	"strconv"
	"strings"

	"go.dietpy.dev/resolve"
	"go.dietpy.dev/syntax"
)

// renameExplicit replaces closure resolution when ExplicitScopes is
// set. A reference to a name that is not local to the function
// containing it is renamed name@depth, where depth is the nesting
// depth of the function that binds it: 0 for the module, 1 for a
// top-level function, and so on. Unresolved names, including
// builtins, get depth 0. Class namespace functions share the depth of
// their enclosing body and are skipped by lookups, as class bodies
// are in Python.
//
// The output is not Python; it is meant for backends that address
// variables by frame.
func (ctx *Context) renameExplicit(f *syntax.File) {
	root := &scopeFrame{bindings: resolve.Collect(f.Stmts, nil), module: true}
	r := &explicitRenamer{frame: root}
	r.VisitBody(&f.Stmts)
	ctx.log.Debug("explicit scopes")
}

// A scopeFrame is the body of the module or of one function.
type scopeFrame struct {
	bindings map[string]syntax.Binding
	depth    int
	module   bool
	class    bool // a class namespace function
	parent   *scopeFrame
}

// lookup returns the depth of the nearest frame, starting at fr and
// skipping class frames, that binds name locally.
func (fr *scopeFrame) lookup(name string) int {
	for ; fr != nil; fr = fr.parent {
		if fr.class {
			continue
		}
		switch b, ok := fr.bindings[name]; {
		case !ok, b == syntax.Nonlocal:
			continue
		case b == syntax.Global:
			return 0
		}
		return fr.depth
	}
	return 0
}

type explicitRenamer struct {
	frame *scopeFrame
}

// rename returns the form of name as referenced in the current frame.
func (r *explicitRenamer) rename(name string) string {
	fr := r.frame
	switch {
	case fr.module,
		isInternal(name),
		strings.Contains(name, "@"),
		name == "__classcell__",
		fr.class && name == "__class__":
		return name
	}
	var depth int
	switch b, ok := fr.bindings[name]; {
	case ok && b == syntax.Local:
		return name
	case ok && b == syntax.Global:
		depth = 0
	default:
		depth = fr.parent.lookup(name)
	}
	return name + "@" + strconv.Itoa(depth)
}

func (r *explicitRenamer) VisitBody(body *[]syntax.Stmt) { syntax.WalkBody(r, body) }

func (r *explicitRenamer) VisitStmt(stmt *syntax.Stmt) {
	switch s := (*stmt).(type) {
	case *syntax.ScopeStmt:
		*stmt = pass()

	case *syntax.DefStmt:
		for i := range s.Decorators {
			r.VisitExpr(&s.Decorators[i])
		}
		for _, param := range s.Params {
			if param.Default != nil {
				r.VisitExpr(&param.Default)
			}
		}
		s.Name.Name = r.rename(s.Name.Name)

		fr := &scopeFrame{
			bindings: resolve.Collect(s.Body, s.Params),
			depth:    r.frame.depth + 1,
			parent:   r.frame,
		}
		if isClassNamespace(s) {
			fr.class = true
			fr.depth = r.frame.depth
		}
		inner := &explicitRenamer{frame: fr}
		inner.VisitBody(&s.Body)

	default:
		syntax.WalkStmt(r, stmt)
	}
}

// isClassNamespace reports whether def is the namespace function of a
// class.
func isClassNamespace(def *syntax.DefStmt) bool {
	return strings.HasPrefix(def.Name.Name, "_dp_class_ns_") &&
		len(def.Params) > 0 && def.Params[0].Name != nil && def.Params[0].Name.Name == classNamespace
}

func (r *explicitRenamer) VisitExpr(x *syntax.Expr) {
	if id, ok := (*x).(*syntax.Ident); ok {
		id.Name = r.rename(id.Name)
		return
	}
	syntax.WalkExpr(r, x)
}

func (r *explicitRenamer) VisitTarget(x *syntax.Expr) {
	if id, ok := (*x).(*syntax.Ident); ok {
		id.Name = r.rename(id.Name)
		return
	}
	syntax.WalkTarget(r, x)
}
