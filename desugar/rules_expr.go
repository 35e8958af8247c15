// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package desugar

import (
	"fmt"
	"math"
	"math/big"
	"sort"

	"go.dietpy.dev/syntax"
)

var binaryFuncs = map[syntax.Token]string{
	syntax.PLUS:       "add",
	syntax.MINUS:      "sub",
	syntax.STAR:       "mul",
	syntax.AT:         "matmul",
	syntax.SLASH:      "truediv",
	syntax.SLASHSLASH: "floordiv",
	syntax.PERCENT:    "mod",
	syntax.STARSTAR:   "pow",
	syntax.LTLT:       "lshift",
	syntax.GTGT:       "rshift",
	syntax.PIPE:       "or_",
	syntax.CIRCUMFLEX: "xor",
	syntax.AMP:        "and_",
}

var inplaceFuncs = map[syntax.Token]string{
	syntax.PLUS:       "iadd",
	syntax.MINUS:      "isub",
	syntax.STAR:       "imul",
	syntax.AT:         "imatmul",
	syntax.SLASH:      "itruediv",
	syntax.SLASHSLASH: "ifloordiv",
	syntax.PERCENT:    "imod",
	syntax.STARSTAR:   "ipow",
	syntax.LTLT:       "ilshift",
	syntax.GTGT:       "irshift",
	syntax.PIPE:       "ior",
	syntax.CIRCUMFLEX: "ixor",
	syntax.AMP:        "iand",
}

var unaryFuncs = map[syntax.Token]string{
	syntax.MINUS: "neg",
	syntax.PLUS:  "pos",
	syntax.TILDE: "invert",
	syntax.NOT:   "not_",
}

var compareFuncs = map[syntax.Token]string{
	syntax.EQL:    "eq",
	syntax.NEQ:    "ne",
	syntax.LT:     "lt",
	syntax.LE:     "le",
	syntax.GT:     "gt",
	syntax.GE:     "ge",
	syntax.IS:     "is_",
	syntax.IS_NOT: "is_not",
}

func opFunc(table map[syntax.Token]string, op syntax.Token) string {
	name, ok := table[op]
	if !ok {
		panic(fmt.Sprintf("no runtime function for operator %s", op))
	}
	return name
}

// rule applies the expression rule for x, if any, and returns the
// replacement, or nil.
func (l *lowerer) rule(x syntax.Expr) syntax.Expr {
	switch e := x.(type) {
	case *syntax.BinaryExpr:
		if e.Op == syntax.AND || e.Op == syntax.OR {
			return l.boolOp(e)
		}
		return dpCall(opFunc(binaryFuncs, e.Op), e.X, e.Y)

	case *syntax.UnaryExpr:
		if lit := negate(e); lit != nil {
			return lit
		}
		return dpCall(opFunc(unaryFuncs, e.Op), e.X)

	case *syntax.CompareExpr:
		return l.compare(e)

	case *syntax.IndexExpr:
		return dpCall("getitem", e.X, e.Y)

	case *syntax.SliceExpr:
		return dpCall("slice", orNone(e.Lo), orNone(e.Hi), orNone(e.Step))

	case *syntax.DotExpr:
		if l.d.ctx.opts.LowerAttributes && !internalRooted(e.X) {
			return dpCall("getattr", e.X, str(e.Name))
		}

	case *syntax.CondExpr:
		tmp := l.d.ctx.Fresh("tmp")
		l.buf = append(l.buf, &syntax.IfStmt{
			Cond:  e.Cond,
			True:  []syntax.Stmt{assign(tmp, e.True)},
			False: []syntax.Stmt{assign(tmp, e.False)},
		})
		return ident(tmp)

	case *syntax.NamedExpr:
		l.buf = append(l.buf, assign(e.Target.Name, e.Value))
		return ident(e.Target.Name)

	case *syntax.LambdaExpr:
		name := l.d.ctx.Fresh("lambda")
		l.buf = append(l.buf, &syntax.DefStmt{
			Def:  e.Lambda,
			Name: &syntax.Ident{NamePos: e.Lambda, Name: name},
			Function: syntax.Function{
				Params: e.Params,
				Body:   []syntax.Stmt{&syntax.ReturnStmt{Return: e.Lambda, Result: e.Body}},
			},
		})
		return ident(name)

	case *syntax.Comprehension:
		return l.comprehension(e)

	case *syntax.ListExpr:
		if hasStarred(e.List) {
			return dpCall("list", splat(e.List))
		}

	case *syntax.SetExpr:
		if hasStarred(e.List) {
			return dpCall("set", splat(e.List))
		}

	case *syntax.TupleExpr:
		if hasStarred(e.List) {
			return splat(e.List)
		}

	case *syntax.DictExpr:
		if hasStarred(e.List) {
			return mergeDicts(e.List)
		}

	case *syntax.FStringExpr:
		return fstring(e)
	}
	return nil
}

func orNone(x syntax.Expr) syntax.Expr {
	if x == nil {
		return none()
	}
	return x
}

// internalRooted reports whether x is a selector chain rooted at an
// internal name such as __dp__ or a generated temporary.
func internalRooted(x syntax.Expr) bool {
	for {
		switch e := x.(type) {
		case *syntax.Ident:
			return isInternal(e.Name)
		case *syntax.DotExpr:
			x = e.X
		default:
			return false
		}
	}
}

// boolOp lowers a short-circuit operator to a temporary assigned
// conditionally:
//
//	t = a
//	if not t:    (if t: for and)
//	    t = b
func (l *lowerer) boolOp(e *syntax.BinaryExpr) syntax.Expr {
	tmp := l.d.ctx.Fresh("tmp")
	var test syntax.Expr = ident(tmp)
	if e.Op == syntax.OR {
		test = &syntax.UnaryExpr{OpPos: e.OpPos, Op: syntax.NOT, X: ident(tmp)}
	}
	l.buf = append(l.buf,
		assign(tmp, e.X),
		&syntax.IfStmt{If: e.OpPos, Cond: test, True: []syntax.Stmt{assign(tmp, e.Y)}})
	return ident(tmp)
}

// negate folds a minus sign into the numeric literal it precedes.
func negate(e *syntax.UnaryExpr) *syntax.Literal {
	lit, ok := e.X.(*syntax.Literal)
	if e.Op != syntax.MINUS || !ok || lit.Raw == "" {
		return nil
	}
	var v interface{}
	switch x := lit.Value.(type) {
	case int64:
		if x == math.MinInt64 {
			return nil
		}
		v = -x
	case *big.Int:
		v = new(big.Int).Neg(x)
	case float64:
		v = -x
	default:
		return nil
	}
	return &syntax.Literal{Token: lit.Token, TokenPos: e.OpPos, Raw: "-" + lit.Raw, Value: v}
}

// compare lowers a comparison. In a chain, each middle operand is
// evaluated once, into a temporary:
//
//	a < b < c   =>   a < (t := b) and t < c
func (l *lowerer) compare(e *syntax.CompareExpr) syntax.Expr {
	if len(e.Ops) == 1 {
		return compareCall(e.Ops[0], e.X, e.Ys[0])
	}
	var result syntax.Expr
	left := e.X
	for i, op := range e.Ops {
		right, next := e.Ys[i], e.Ys[i]
		if i < len(e.Ops)-1 && !reusable(right) {
			tmp := l.d.ctx.Fresh("tmp")
			right = &syntax.NamedExpr{Target: ident(tmp), Value: right}
			next = ident(tmp)
		}
		cmp := &syntax.CompareExpr{X: left, Ops: []syntax.Token{op}, Ys: []syntax.Expr{right}}
		if result == nil {
			result = cmp
		} else {
			result = &syntax.BinaryExpr{X: result, Op: syntax.AND, Y: cmp}
		}
		left = next
	}
	return result
}

// reusable reports whether x may be evaluated twice.
func reusable(x syntax.Expr) bool {
	switch x := x.(type) {
	case *syntax.Literal:
		return true
	case *syntax.Ident:
		return isInternal(x.Name)
	}
	return false
}

func compareCall(op syntax.Token, x, y syntax.Expr) syntax.Expr {
	switch op {
	case syntax.IN:
		return dpCall("contains", y, x)
	case syntax.NOT_IN:
		return dpCall("not_", dpCall("contains", y, x))
	}
	return dpCall(opFunc(compareFuncs, op), x, y)
}

func hasStarred(list []syntax.Expr) bool {
	for _, x := range list {
		if _, ok := x.(*syntax.StarredExpr); ok {
			return true
		}
	}
	return false
}

// splat builds a tuple from display elements some of which are
// starred: runs of plain elements become tuples, starred elements
// become __dp__.tuple(x), and the segments are joined with __dp__.add.
func splat(list []syntax.Expr) syntax.Expr {
	var segments, values []syntax.Expr
	for _, x := range list {
		if s, ok := x.(*syntax.StarredExpr); ok {
			if len(values) > 0 {
				segments = append(segments, tuple(values...))
				values = nil
			}
			segments = append(segments, dpCall("tuple", s.X))
		} else {
			values = append(values, x)
		}
	}
	if len(values) > 0 {
		segments = append(segments, tuple(values...))
	}
	return join("add", segments)
}

// mergeDicts builds a dict from display entries some of which are
// **mappings, joining the segments with __dp__.or_.
func mergeDicts(list []syntax.Expr) syntax.Expr {
	var segments, entries []syntax.Expr
	for _, x := range list {
		if s, ok := x.(*syntax.StarredExpr); ok {
			if len(entries) > 0 {
				segments = append(segments, &syntax.DictExpr{List: entries})
				entries = nil
			}
			segments = append(segments, dpCall("dict", s.X))
		} else {
			entries = append(entries, x)
		}
	}
	if len(entries) > 0 {
		segments = append(segments, &syntax.DictExpr{List: entries})
	}
	return join("or_", segments)
}

// join folds segments from the left with the runtime function fn.
func join(fn string, segments []syntax.Expr) syntax.Expr {
	if len(segments) == 0 {
		return tuple()
	}
	result := segments[0]
	for _, s := range segments[1:] {
		result = dpCall(fn, result, s)
	}
	return result
}

// fstring lowers an f-string to a join of its formatted parts.
func fstring(e *syntax.FStringExpr) syntax.Expr {
	var parts []syntax.Expr
	for _, part := range e.Parts {
		switch part := part.(type) {
		case *syntax.Literal:
			parts = append(parts, str(part.Value.(string)))
		case *syntax.FormattedValue:
			x := part.X
			switch part.Conv {
			case 'r':
				x = call(builtin("repr"), x)
			case 's':
				x = call(builtin("str"), x)
			case 'a':
				x = call(builtin("ascii"), x)
			}
			if part.Spec != nil {
				parts = append(parts, call(builtin("format"), x, part.Spec))
			} else {
				parts = append(parts, call(builtin("format"), x))
			}
		}
	}
	switch len(parts) {
	case 0:
		return str("")
	case 1:
		if lit, ok := parts[0].(*syntax.Literal); ok {
			return lit
		}
	}
	return call(&syntax.DotExpr{X: str(""), Name: "join"}, tuple(parts...))
}

// comprehension lowers a comprehension to a call of a helper function
// that receives an iterator over the first iterable:
//
//	def _dp_listcomp_1(_dp_iter_2):
//	    _dp_result_3 = []
//	    for x in _dp_iter_2:
//	        if c:
//	            _dp_result_3.append(body)
//	    return _dp_result_3
//
// Assignment expressions in a comprehension bind in the enclosing
// scope, so the helper declares their targets nonlocal (in a function)
// or global (at module level).
func (l *lowerer) comprehension(e *syntax.Comprehension) syntax.Expr {
	ctx := l.d.ctx
	name := ctx.Fresh(e.Kind.String())
	iter := ctx.Fresh("iter")
	first := e.Clauses[0].(*syntax.ForClause)

	var body []syntax.Stmt
	if targets := namedTargets(e); len(targets) > 0 {
		mode := l.walrusMode(e)
		ctx.helperMode[name] = mode
		decl := &syntax.ScopeStmt{Token: mode}
		for _, t := range targets {
			decl.Names = append(decl.Names, ident(t))
		}
		body = append(body, decl)
	}

	var result string
	var inner syntax.Stmt
	switch e.Kind {
	case syntax.ListComp:
		result = ctx.Fresh("result")
		body = append(body, assign(result, &syntax.ListExpr{}))
		inner = exprStmt(call(&syntax.DotExpr{X: ident(result), Name: "append"}, e.Body))
	case syntax.SetComp:
		result = ctx.Fresh("result")
		body = append(body, assign(result, call(builtin("set"))))
		inner = exprStmt(call(&syntax.DotExpr{X: ident(result), Name: "add"}, e.Body))
	case syntax.DictComp:
		result = ctx.Fresh("result")
		entry := e.Body.(*syntax.DictEntry)
		body = append(body, assign(result, &syntax.DictExpr{}))
		inner = exprStmt(dpCall("setitem", ident(result), entry.Key, entry.Value))
	case syntax.GeneratorExp:
		inner = exprStmt(&syntax.YieldExpr{Value: e.Body})
	}

	stmt := inner
	for i := len(e.Clauses) - 1; i >= 0; i-- {
		switch c := e.Clauses[i].(type) {
		case *syntax.ForClause:
			x := c.X
			if i == 0 {
				x = ident(iter)
			}
			stmt = &syntax.ForStmt{For: c.For, Vars: c.Vars, X: x, Body: []syntax.Stmt{stmt}}
		case *syntax.IfClause:
			stmt = &syntax.IfStmt{If: c.If, Cond: c.Cond, True: []syntax.Stmt{stmt}}
		}
	}
	body = append(body, stmt)
	if result != "" {
		body = append(body, &syntax.ReturnStmt{Result: ident(result)})
	}

	l.buf = append(l.buf, &syntax.DefStmt{
		Def:  first.For,
		Name: &syntax.Ident{NamePos: first.For, Name: name},
		Function: syntax.Function{
			Params: []*syntax.Param{{Kind: syntax.ParamNormal, Name: ident(iter)}},
			Body:   body,
		},
	})
	return call(ident(name), dpCall("iter", first.X))
}

// walrusMode returns the declaration a comprehension helper created in
// the current body needs for its assignment-expression targets.
func (l *lowerer) walrusMode(e *syntax.Comprehension) syntax.Token {
	ctx := l.d.ctx
	fr := ctx.top()
	switch fr.kind {
	case moduleFrame:
		return syntax.GLOBAL
	case classFrame:
		unsupported(e, "assignment expression in a comprehension in a class body")
	}
	if mode, ok := ctx.helperMode[fr.def.Name.Name]; ok {
		return mode
	}
	return syntax.NONLOCAL
}

// namedTargets returns the sorted targets of the assignment expressions
// of a comprehension, including those of nested comprehensions but not
// those of lambdas, which bind in the lambda. The first iterable is
// excluded: it is evaluated in the enclosing scope.
func namedTargets(e *syntax.Comprehension) []string {
	seen := make(map[string]bool)
	visit := func(x syntax.Node) {
		syntax.Walk(x, func(n syntax.Node) bool {
			switch n := n.(type) {
			case *syntax.LambdaExpr:
				return false
			case *syntax.NamedExpr:
				seen[n.Target.Name] = true
			}
			return true
		})
	}
	for i, clause := range e.Clauses {
		switch c := clause.(type) {
		case *syntax.ForClause:
			if i > 0 {
				visit(c.X)
			}
		case *syntax.IfClause:
			visit(c.Cond)
		}
	}
	visit(e.Body)
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
