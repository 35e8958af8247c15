// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// This file defines resolver data types referenced by the desugarer.
// We cannot guarantee API stability for these types
// as they are closely tied to the implementation.

// A Binding classifies one name within one scope.
type Binding uint8

const (
	Local    Binding = iota // name is bound in its own scope
	Global                  // name is declared global
	Nonlocal                // name refers to a binding of an enclosing function
)

var bindingNames = [...]string{
	Local:    "local",
	Global:   "global",
	Nonlocal: "nonlocal",
}

func (b Binding) String() string { return bindingNames[b] }

// Merge returns the classification of a name bound as b and also as c
// within the same scope. A global or nonlocal declaration anywhere in
// a scope wins over local bindings regardless of order.
func (b Binding) Merge(c Binding) Binding {
	if b == Local {
		return c
	}
	return b
}

// The ScopeKind of a scope indicates what kind of block introduces it.
type ScopeKind uint8

const (
	ModuleScope   ScopeKind = iota // top level of a module
	FunctionScope                  // body of a def, lambda or comprehension
	ClassScope                     // body of a class
)

var scopeKindNames = [...]string{
	ModuleScope:   "module",
	FunctionScope: "function",
	ClassScope:    "class",
}

func (k ScopeKind) String() string { return scopeKindNames[k] }
