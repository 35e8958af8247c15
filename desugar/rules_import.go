// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package desugar

import (
	"strings"

	"go.dietpy.dev/internal/template"
	"go.dietpy.dev/syntax"
)

// rewriteImport lowers import statements to calls of __dp__.import_:
//
//	import a.b        =>  a = __dp__.import_("a.b", __spec__)
//	import a.b as c   =>  c = __dp__.import_attr(__dp__.import_("a.b", __spec__), "b")
func (ctx *Context) rewriteImport(s *syntax.ImportStmt) Rewrite {
	var stmts []syntax.Stmt
	for _, name := range s.Names {
		var value syntax.Expr = dpCall("import_", str(name.Name), ident("__spec__"))
		if name.AsName != nil {
			parts := strings.Split(name.Name, ".")
			for _, part := range parts[1:] {
				value = dpCall("import_attr", value, str(part))
			}
		}
		stmts = append(stmts, &syntax.AssignStmt{
			Targets: []syntax.Expr{&syntax.Ident{NamePos: name.NamePos, Name: name.Binds()}},
			Value:   value,
		})
	}
	return walk(stmts...)
}

// rewriteImportFrom lowers from-imports:
//
//	from m import x, y as z
//
// becomes
//
//	_dp_import_1 = __dp__.import_("m", __spec__, ["x", "y"])
//	x = __dp__.import_attr(_dp_import_1, "x")
//	z = __dp__.import_attr(_dp_import_1, "y")
//
// Future imports are kept unless ForceImportRewrite is set; star
// imports follow the ImportStar option.
func (ctx *Context) rewriteImportFrom(s *syntax.ImportFromStmt) Rewrite {
	star := false
	for _, name := range s.Names {
		if name.Name == "*" {
			star = true
		}
	}
	if star {
		switch ctx.opts.ImportStar {
		case ImportStarAllowed:
			return Rewrite{}
		case ImportStarError:
			unsupported(s, "from %s import *", moduleName(s))
		case ImportStarStrip:
			return walk(pass())
		}
	}
	if s.Module == "__future__" && s.Level == 0 && !ctx.opts.ForceImportRewrite {
		return Rewrite{}
	}

	tmp := ctx.Fresh("import")
	fromlist := make([]string, len(s.Names))
	for i, name := range s.Names {
		fromlist[i] = name.Name
	}
	var stmts []syntax.Stmt
	if s.Level > 0 {
		stmts = template.Stmts(`{tmp:id} = __dp__.import_({module:literal}, __spec__, {fromlist:literal}, {level:literal})`,
			template.Vars{"tmp": tmp, "module": s.Module, "fromlist": fromlist, "level": s.Level})
	} else {
		stmts = template.Stmts(`{tmp:id} = __dp__.import_({module:literal}, __spec__, {fromlist:literal})`,
			template.Vars{"tmp": tmp, "module": s.Module, "fromlist": fromlist})
	}
	for _, name := range s.Names {
		stmts = append(stmts, &syntax.AssignStmt{
			Targets: []syntax.Expr{&syntax.Ident{NamePos: name.NamePos, Name: name.Binds()}},
			Value:   dpCall("import_attr", ident(tmp), str(name.Name)),
		})
	}
	return walk(stmts...)
}

func moduleName(s *syntax.ImportFromStmt) string {
	return strings.Repeat(".", s.Level) + s.Module
}
