// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package desugar

import (
	"strings"

	"go.dietpy.dev/syntax"
)

// manglePrivate renames private names inside class bodies: __x in a
// class C becomes _C__x. Nested classes mangle with their own name.
func (ctx *Context) manglePrivate(f *syntax.File) {
	manglePrivate(f, "")
}

func manglePrivate(n syntax.Node, class string) {
	syntax.Walk(n, func(n syntax.Node) bool {
		switch n := n.(type) {
		case *syntax.ClassStmt:
			for _, d := range n.Decorators {
				manglePrivate(d, class)
			}
			for _, b := range n.Bases {
				manglePrivate(b, class)
			}
			name := n.Name.Name
			n.Name.Name = mangle(class, name)
			for _, stmt := range n.Body {
				manglePrivate(stmt, name)
			}
			return false
		case *syntax.Ident:
			n.Name = mangle(class, n.Name)
		case *syntax.DotExpr:
			n.Name = mangle(class, n.Name)
		}
		return true
	})
}

// mangle returns the private form of name within the named class.
func mangle(class, name string) string {
	if class == "" || !strings.HasPrefix(name, "__") || strings.HasSuffix(name, "__") || strings.Contains(name, ".") {
		return name
	}
	class = strings.TrimLeft(class, "_")
	if class == "" {
		return name
	}
	return "_" + class + name
}
