// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

import (
	"strings"

	"go.dietpy.dev/syntax"
)

// A collector gathers the bindings and free uses of one body.
// It implements syntax.Visitor but never modifies the tree.
type collector struct {
	r        *resolver
	s        *Scope
	nested   []syntax.Node              // defs and classes, in order
	declared map[string]syntax.Position // position of each global/nonlocal declaration
	params   map[string]syntax.Position
}

func (r *resolver) collect(s *Scope, body []syntax.Stmt, params []*syntax.Param) *collector {
	s.Bindings = make(map[string]syntax.Binding)
	s.Params = make(map[string]bool)
	s.ExplicitNonlocals = make(map[string]bool)
	s.ExplicitGlobals = make(map[string]bool)
	s.LocalDefs = make(map[string]bool)
	s.uses = make(map[string]syntax.Position)

	c := &collector{
		r:        r,
		s:        s,
		declared: make(map[string]syntax.Position),
		params:   make(map[string]syntax.Position),
	}
	for _, param := range params {
		if param.Name != nil {
			s.Params[param.Name.Name] = true
			c.params[param.Name.Name] = param.Name.NamePos
			c.bind(param.Name.Name, syntax.Local)
		}
	}
	c.VisitBody(&body)
	return c
}

func (c *collector) bind(name string, b syntax.Binding) {
	if IsInternal(name) {
		b = syntax.Local
	}
	if old, ok := c.s.Bindings[name]; ok {
		b = old.Merge(b)
	}
	c.s.Bindings[name] = b
}

func (c *collector) use(id *syntax.Ident) {
	if _, ok := c.s.uses[id.Name]; !ok {
		c.s.uses[id.Name] = id.NamePos
	}
}

func (c *collector) declare(s *syntax.ScopeStmt) {
	for _, id := range s.Names {
		name := id.Name
		if s.Token == syntax.NONLOCAL {
			if c.s.Kind == syntax.ModuleScope {
				c.r.errorf(id.NamePos, "nonlocal declaration not allowed at module level")
				continue
			}
			if c.s.ExplicitGlobals[name] {
				c.r.errorf(id.NamePos, "name '%s' is nonlocal and global", name)
				continue
			}
			if _, ok := c.params[name]; ok {
				c.r.errorf(id.NamePos, "name '%s' is parameter and nonlocal", name)
				continue
			}
			c.s.ExplicitNonlocals[name] = true
			c.bind(name, syntax.Nonlocal)
		} else {
			if c.s.ExplicitNonlocals[name] {
				c.r.errorf(id.NamePos, "name '%s' is nonlocal and global", name)
				continue
			}
			if _, ok := c.params[name]; ok {
				c.r.errorf(id.NamePos, "name '%s' is parameter and global", name)
				continue
			}
			c.s.ExplicitGlobals[name] = true
			c.bind(name, syntax.Global)
		}
		if _, ok := c.declared[name]; !ok {
			c.declared[name] = id.NamePos
		}
	}
}

func (c *collector) VisitBody(body *[]syntax.Stmt) { syntax.WalkBody(c, body) }

func (c *collector) VisitStmt(stmt *syntax.Stmt) {
	switch s := (*stmt).(type) {
	case *syntax.ScopeStmt:
		c.declare(s)

	case *syntax.ImportStmt:
		for _, name := range s.Names {
			c.bind(name.Binds(), syntax.Local)
		}

	case *syntax.ImportFromStmt:
		if !s.IsStar() {
			for _, name := range s.Names {
				c.bind(name.Binds(), syntax.Local)
			}
		}

	case *syntax.TryStmt:
		for _, h := range s.Handlers {
			if h.Name != nil {
				c.bind(h.Name.Name, syntax.Local)
			}
		}
		syntax.WalkStmt(c, stmt)

	case *syntax.DefStmt:
		// Decorators and defaults are evaluated in this scope;
		// the body is a scope of its own.
		for i := range s.Decorators {
			c.VisitExpr(&s.Decorators[i])
		}
		for _, param := range s.Params {
			if param.Annotation != nil {
				c.VisitExpr(&param.Annotation)
			}
			if param.Default != nil {
				c.VisitExpr(&param.Default)
			}
		}
		if s.Returns != nil {
			c.VisitExpr(&s.Returns)
		}
		c.bind(s.Name.Name, syntax.Local)
		c.s.LocalDefs[s.Name.Name] = true
		c.nested = append(c.nested, s)
		if strings.HasPrefix(s.Name.Name, "_dp_") {
			c.helperDeclarations(s.Body)
		}

	case *syntax.ClassStmt:
		for i := range s.Decorators {
			c.VisitExpr(&s.Decorators[i])
		}
		for i := range s.Bases {
			c.VisitExpr(&s.Bases[i])
		}
		c.bind(s.Name.Name, syntax.Local)
		c.nested = append(c.nested, s)

	default:
		syntax.WalkStmt(c, stmt)
	}
}

// helperDeclarations binds, in the enclosing body, the names that a
// generated helper function declares nonlocal. Such helpers replace
// comprehensions whose assignment expressions bind in this scope.
func (c *collector) helperDeclarations(body []syntax.Stmt) {
	if c.s.Kind == syntax.ModuleScope {
		return
	}
	for _, stmt := range body {
		if s, ok := stmt.(*syntax.ScopeStmt); ok && s.Token == syntax.NONLOCAL {
			for _, id := range s.Names {
				if !c.s.Binds(id.Name) {
					c.bind(id.Name, syntax.Local)
				}
			}
		}
	}
}

func (c *collector) VisitTarget(x *syntax.Expr) {
	if id, ok := (*x).(*syntax.Ident); ok {
		c.bind(id.Name, syntax.Local)
		return
	}
	syntax.WalkTarget(c, x)
}

func (c *collector) VisitExpr(x *syntax.Expr) {
	switch e := (*x).(type) {
	case *syntax.Ident:
		c.use(e)

	case *syntax.NamedExpr:
		c.VisitExpr(&e.Value)
		c.bind(e.Target.Name, syntax.Local)

	case *syntax.LambdaExpr:
		bound := make(map[string]bool)
		for _, param := range e.Params {
			if param.Default != nil {
				c.VisitExpr(&param.Default)
			}
			if param.Name != nil {
				bound[param.Name.Name] = true
			}
		}
		c.freeUses(e.Body, bound, false)

	case *syntax.FStringExpr:
		// Walked without the visitor, which would discard the raw text.
		c.freeUses(e, make(map[string]bool), true)

	case *syntax.Comprehension:
		// The first iterable is evaluated in this scope.
		// Assignment expressions in the rest bind here too.
		bound := make(map[string]bool)
		for i, clause := range e.Clauses {
			switch clause := clause.(type) {
			case *syntax.ForClause:
				if i == 0 {
					c.VisitExpr(&clause.X)
				} else {
					c.freeUses(clause.X, bound, true)
				}
				syntax.Walk(clause.Vars, func(n syntax.Node) bool {
					if id, ok := n.(*syntax.Ident); ok {
						bound[id.Name] = true
					}
					return true
				})
			case *syntax.IfClause:
				c.freeUses(clause.Cond, bound, true)
			}
		}
		c.freeUses(e.Body, bound, true)

	default:
		syntax.WalkExpr(c, x)
	}
}

// freeUses records the loads in x of names not in bound.
// If walrus, assignment expressions in x bind in this scope.
func (c *collector) freeUses(x syntax.Expr, bound map[string]bool, walrus bool) {
	syntax.Walk(x, func(n syntax.Node) bool {
		switch n := n.(type) {
		case *syntax.Ident:
			if !bound[n.Name] {
				c.use(n)
			}
		case *syntax.NamedExpr:
			if walrus {
				c.bind(n.Target.Name, syntax.Local)
				bound[n.Target.Name] = true
			}
		case *syntax.LambdaExpr:
			inner := make(map[string]bool, len(bound))
			for name := range bound {
				inner[name] = true
			}
			for _, param := range n.Params {
				if param.Default != nil {
					c.freeUses(param.Default, bound, walrus)
				}
				if param.Name != nil {
					inner[param.Name.Name] = true
				}
			}
			c.freeUses(n.Body, inner, false)
			return false
		}
		return true
	})
}
