// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package template builds syntax trees from Python source templates.
//
// A template is Python source containing placeholders of the form
// {name:kind}. The kind determines how the value bound to name is
// substituted:
//
//	id       a string or *syntax.Ident, spliced in as an identifier
//	literal  a string, integer, bool, nil or []string, spliced in as
//	         the corresponding Python literal
//	expr     a syntax.Expr, substituted for the placeholder expression
//	stmt     a syntax.Stmt or []syntax.Stmt, substituted for a
//	         placeholder that stands alone on a line; an empty list
//	         becomes pass
//
// For example:
//
//	template.Stmts(`
//	{tmp:id} = {value:expr}
//	if not {tmp:id}:
//	    {body:stmt}
//	`, template.Vars{"tmp": "_dp_tmp_1", "value": x, "body": stmts})
//
// Each expr placeholder may appear at most once in a template, since
// its value is inserted without copying. Malformed templates and
// missing or ill-typed values are programming errors and cause a panic.
package template // import "go.dietpy.dev/internal/template"

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.dietpy.dev/syntax"
)

// Vars binds placeholder names to values.
type Vars map[string]interface{}

var placeholderRx = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*):(id|literal|expr|stmt)\}`)

const (
	exprPrefix = "_dp_placeholder_expr_"
	stmtPrefix = "_dp_placeholder_stmt_"
)

// Stmts instantiates a template and returns its statements.
func Stmts(src string, vars Vars) []syntax.Stmt {
	text := expand(src, vars)
	f, err := syntax.Parse("<template>", text)
	if err != nil {
		panic(fmt.Sprintf("template: %v\n%s", err, text))
	}
	s := &substituter{vars: vars, used: make(map[string]bool)}
	s.VisitBody(&f.Stmts)
	return f.Stmts
}

// Stmt instantiates a template holding exactly one statement.
func Stmt(src string, vars Vars) syntax.Stmt {
	stmts := Stmts(src, vars)
	if len(stmts) != 1 {
		panic(fmt.Sprintf("template: got %d statements, want 1: %s", len(stmts), src))
	}
	return stmts[0]
}

// Expr instantiates a template holding exactly one expression.
func Expr(src string, vars Vars) syntax.Expr {
	stmt, ok := Stmt(src, vars).(*syntax.ExprStmt)
	if !ok {
		panic(fmt.Sprintf("template: not an expression: %s", src))
	}
	return stmt.X
}

// expand replaces the placeholders of src by source text: identifiers
// and literals by their final text, expressions and statements by
// sentinel identifiers that the substituter later replaces.
func expand(src string, vars Vars) string {
	src = dedent(src)
	return placeholderRx.ReplaceAllStringFunc(src, func(m string) string {
		sub := placeholderRx.FindStringSubmatch(m)
		name, kind := sub[1], sub[2]
		v, ok := vars[name]
		if !ok {
			panic(fmt.Sprintf("template: no value for placeholder %s", m))
		}
		switch kind {
		case "id":
			switch v := v.(type) {
			case string:
				return v
			case *syntax.Ident:
				return v.Name
			}
		case "literal":
			if lit, ok := literal(v); ok {
				return lit
			}
		case "expr":
			if _, ok := v.(syntax.Expr); ok {
				return exprPrefix + name
			}
		case "stmt":
			switch v.(type) {
			case syntax.Stmt, []syntax.Stmt:
				return stmtPrefix + name
			}
		}
		panic(fmt.Sprintf("template: invalid value %T for placeholder %s", v, m))
	})
}

func literal(v interface{}) (string, bool) {
	switch v := v.(type) {
	case nil:
		return "None", true
	case bool:
		if v {
			return "True", true
		}
		return "False", true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case string:
		return syntax.Quote(v, false), true
	case []string:
		quoted := make([]string, len(v))
		for i, s := range v {
			quoted[i] = syntax.Quote(s, false)
		}
		return "[" + strings.Join(quoted, ", ") + "]", true
	}
	return "", false
}

// dedent removes leading blank lines and the common indentation
// of the remaining lines, so templates may be written as indented
// raw strings.
func dedent(src string) string {
	lines := strings.Split(strings.TrimLeft(src, "\n"), "\n")
	prefix := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if prefix < 0 || n < prefix {
			prefix = n
		}
	}
	if prefix <= 0 {
		return strings.Join(lines, "\n")
	}
	for i, line := range lines {
		if len(line) >= prefix {
			lines[i] = line[prefix:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}

// A substituter replaces sentinel identifiers by the values bound
// to their placeholders.
type substituter struct {
	vars Vars
	used map[string]bool
}

func (s *substituter) VisitBody(body *[]syntax.Stmt) {
	var out []syntax.Stmt
	for _, stmt := range *body {
		if name, ok := sentinel(stmt); ok {
			switch v := s.vars[name].(type) {
			case syntax.Stmt:
				out = append(out, v)
			case []syntax.Stmt:
				if len(v) == 0 {
					out = append(out, &syntax.BranchStmt{Token: syntax.PASS})
				}
				out = append(out, v...)
			}
			continue
		}
		s.VisitStmt(&stmt)
		out = append(out, stmt)
	}
	*body = out
}

func sentinel(stmt syntax.Stmt) (string, bool) {
	if e, ok := stmt.(*syntax.ExprStmt); ok {
		if id, ok := e.X.(*syntax.Ident); ok && strings.HasPrefix(id.Name, stmtPrefix) {
			return strings.TrimPrefix(id.Name, stmtPrefix), true
		}
	}
	return "", false
}

func (s *substituter) VisitStmt(stmt *syntax.Stmt) { syntax.WalkStmt(s, stmt) }

func (s *substituter) VisitExpr(x *syntax.Expr) {
	if s.replace(x) {
		return
	}
	syntax.WalkExpr(s, x)
}

func (s *substituter) VisitTarget(x *syntax.Expr) {
	if s.replace(x) {
		return
	}
	syntax.WalkTarget(s, x)
}

func (s *substituter) replace(x *syntax.Expr) bool {
	id, ok := (*x).(*syntax.Ident)
	if !ok || !strings.HasPrefix(id.Name, exprPrefix) {
		return false
	}
	name := strings.TrimPrefix(id.Name, exprPrefix)
	if s.used[name] {
		panic(fmt.Sprintf("template: expression placeholder %s used twice", name))
	}
	s.used[name] = true
	*x = s.vars[name].(syntax.Expr)
	return true
}
