// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package resolve defines the scope analysis used by the desugarer.
//
// The analysis builds a tree of scopes, one for the module and one for
// each def and class statement, and classifies every name bound in
// each scope as Local, Global or Nonlocal. Lambdas and comprehensions
// do not introduce scopes here: the desugarer turns them into defs
// before it analyzes the module.
//
// Classification proceeds in three steps. First, the bindings of each
// body are collected: the targets of assignments, loops, with items,
// del statements and except clauses, imported names, def and class
// names, and explicit global and nonlocal declarations. A declaration
// wins over a local binding regardless of order. Assignment-expression
// targets inside comprehensions are attributed to the enclosing body,
// as in Python.
//
// Second, implicit captures are added. A name that a function or class
// body loads but does not bind becomes Nonlocal if the nearest
// enclosing function that binds it does so locally or nonlocally.
// Class scopes are transparent to this lookup, and names that resolve
// to the module stay unbound (and therefore global).
//
// Third, for each Nonlocal name the nearest enclosing function in
// which that name is Local is marked as holding a cell for it.
package resolve // import "go.dietpy.dev/resolve"

import (
	"fmt"
	"sort"
	"strings"

	"go.dietpy.dev/syntax"
)

const debug = false

// A Scope describes the bindings of one module, function or class body.
type Scope struct {
	Kind     syntax.ScopeKind
	Name     string      // def or class name; "" for the module
	Qualname string      // dotted qualified name, as in __qualname__
	Node     syntax.Node // *syntax.File, *syntax.DefStmt or *syntax.ClassStmt

	// Bindings maps each name bound or captured in the scope to
	// its classification.
	Bindings map[string]syntax.Binding

	Params            map[string]bool // parameter names (functions only)
	ExplicitNonlocals map[string]bool // names declared nonlocal
	ExplicitGlobals   map[string]bool // names declared global
	LocalDefs         map[string]bool // names bound by def statements

	Parent   *Scope
	Children []*Scope

	cells map[string]bool
	uses  map[string]syntax.Position // loads of names not bound here
}

// Binding returns the classification of name in s.
// Names the scope does not bind are reported as Local.
func (s *Scope) Binding(name string) syntax.Binding {
	return s.Bindings[name]
}

// Binds reports whether name is bound or captured in s.
func (s *Scope) Binds(name string) bool {
	_, ok := s.Bindings[name]
	return ok
}

// Child returns the scope introduced by node, a def or class statement
// directly nested in s, or nil if there is none.
func (s *Scope) Child(node syntax.Node) *Scope {
	for _, c := range s.Children {
		if c.Node == node {
			return c
		}
	}
	return nil
}

// Depth returns the number of scopes enclosing s.
func (s *Scope) Depth() int {
	d := 0
	for p := s.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

// NeedsCell reports whether name is a local of s that some nested
// scope refers to through a nonlocal binding.
func (s *Scope) NeedsCell(name string) bool { return s.cells[name] }

// CellNames returns the names that need cells in s, in sorted order.
func (s *Scope) CellNames() []string {
	names := make([]string, 0, len(s.cells))
	for name := range s.cells {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CellOwner returns the function scope that holds the cell for a
// name classified Nonlocal in s, or nil if no enclosing function
// binds it locally.
func (s *Scope) CellOwner(name string) *Scope {
	for p := s.Parent; p != nil; p = p.Parent {
		switch p.Kind {
		case syntax.ClassScope:
			continue
		case syntax.ModuleScope:
			return nil
		}
		switch b, ok := p.Bindings[name]; {
		case !ok, b == syntax.Nonlocal:
			continue
		case b == syntax.Local:
			return p
		default:
			return nil
		}
	}
	return nil
}

func (s *Scope) String() string {
	if s.Kind == syntax.ModuleScope {
		return "module scope"
	}
	return fmt.Sprintf("%s scope %s", s.Kind, s.Qualname)
}

// An ErrorList is a non-empty list of resolver error messages.
type ErrorList []Error // len > 0

func (e ErrorList) Error() string { return e[0].Error() }

// An Error describes the nature and position of a resolver error.
type Error struct {
	Pos syntax.Position
	Msg string
}

func (e Error) Error() string { return e.Pos.String() + ": " + e.Msg }

// IsInternal reports whether name is reserved for generated code.
// Internal names are never captured, renamed or moved into a class
// namespace.
func IsInternal(name string) bool {
	return strings.HasPrefix(name, "_dp_") || name == "__dp__"
}

var displayPrefixes = []struct{ prefix, display string }{
	{"_dp_lambda_", "<lambda>"},
	{"_dp_genexpr_", "<genexpr>"},
	{"_dp_listcomp_", "<listcomp>"},
	{"_dp_setcomp_", "<setcomp>"},
	{"_dp_dictcomp_", "<dictcomp>"},
}

// DisplayName returns the user-facing name of a def named name.
// Helpers generated for lambdas and comprehensions display as
// <lambda>, <genexpr> and so on; a renamed def displays as the name
// it had before renaming.
func DisplayName(name string) string {
	for _, p := range displayPrefixes {
		if strings.HasPrefix(name, p.prefix) {
			return p.display
		}
	}
	if rest := strings.TrimPrefix(name, "_dp_fn_"); rest != name {
		// Drop the numeric suffix added by the fresh-name generator.
		if i := strings.LastIndexByte(rest, '_'); i > 0 && isDigits(rest[i+1:]) {
			rest = rest[:i]
		}
		return rest
	}
	return name
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Module analyzes the scopes of the file. On failure it returns an
// ErrorList; the scope tree is returned in either case.
func Module(f *syntax.File) (*Scope, error) {
	r := new(resolver)
	root := &Scope{Kind: syntax.ModuleScope, Node: f}
	r.build(root, f.Stmts, nil)
	r.capture(root)
	r.cells(root)
	if debug {
		dump(root, 0)
	}
	if len(r.errors) > 0 {
		return root, r.errors
	}
	return root, nil
}

// Collect returns the bindings of a function body with the given
// parameters, without regard to enclosing scopes.
func Collect(body []syntax.Stmt, params []*syntax.Param) map[string]syntax.Binding {
	r := new(resolver)
	s := &Scope{Kind: syntax.FunctionScope}
	r.collect(s, body, params)
	return s.Bindings
}

type resolver struct {
	errors ErrorList
}

func (r *resolver) errorf(posn syntax.Position, format string, args ...interface{}) {
	r.errors = append(r.errors, Error{posn, fmt.Sprintf(format, args...)})
}

// build populates s from its body and recursively creates the scopes
// of nested defs and classes.
func (r *resolver) build(s *Scope, body []syntax.Stmt, params []*syntax.Param) {
	c := r.collect(s, body, params)
	for _, node := range c.nested {
		child := &Scope{Parent: s, Node: node}
		switch node := node.(type) {
		case *syntax.DefStmt:
			child.Kind = syntax.FunctionScope
			child.Name = node.Name.Name
			child.Qualname = qualname(s, child.Name)
			s.Children = append(s.Children, child)
			r.build(child, node.Body, node.Params)
		case *syntax.ClassStmt:
			child.Kind = syntax.ClassScope
			child.Name = node.Name.Name
			child.Qualname = qualname(s, child.Name)
			s.Children = append(s.Children, child)
			r.build(child, node.Body, nil)
		}
	}

	if s.Kind == syntax.ModuleScope {
		return // nonlocal declarations were reported by collect
	}
	names := make([]string, 0, len(s.ExplicitNonlocals))
	for name := range s.ExplicitNonlocals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if s.CellOwner(name) == nil {
			r.errorf(c.declared[name], "no binding for nonlocal '%s' found", name)
		}
	}
}

// qualname returns the qualified name of a scope called name
// nested in parent.
func qualname(parent *Scope, name string) string {
	display := DisplayName(name)
	if parent.Kind == syntax.ModuleScope || parent.Binding(name) == syntax.Global {
		return display
	}
	if parent.Kind == syntax.FunctionScope {
		return parent.Qualname + ".<locals>." + display
	}
	return parent.Qualname + "." + display
}

// capture adds implicit nonlocal bindings for free names, parents
// before children.
func (r *resolver) capture(s *Scope) {
	if s.Kind != syntax.ModuleScope {
		names := make([]string, 0, len(s.uses))
		for name := range s.uses {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if s.Binds(name) || IsInternal(name) {
				continue
			}
			if enclosingFunctionBinds(s, name) {
				s.Bindings[name] = syntax.Nonlocal
			}
		}
	}
	for _, c := range s.Children {
		r.capture(c)
	}
}

// enclosingFunctionBinds reports whether name, free in s, refers to a
// local or nonlocal binding of an enclosing function.
func enclosingFunctionBinds(s *Scope, name string) bool {
	for p := s.Parent; p != nil; p = p.Parent {
		switch p.Kind {
		case syntax.ClassScope:
			continue
		case syntax.ModuleScope:
			return false
		}
		if b, ok := p.Bindings[name]; ok {
			return b != syntax.Global
		}
	}
	return false
}

// cells marks, for each nonlocal name, the function that owns it.
func (r *resolver) cells(s *Scope) {
	for name, b := range s.Bindings {
		if b != syntax.Nonlocal {
			continue
		}
		if owner := s.CellOwner(name); owner != nil {
			if owner.cells == nil {
				owner.cells = make(map[string]bool)
			}
			owner.cells[name] = true
		}
	}
	for _, c := range s.Children {
		r.cells(c)
	}
}

func dump(s *Scope, depth int) {
	fmt.Printf("%s%s %v cells=%v\n", strings.Repeat("  ", depth), s, s.Bindings, s.CellNames())
	for _, c := range s.Children {
		dump(c, depth+1)
	}
}
