// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package desugar

import (
	"go.dietpy.dev/internal/template"
	"go.dietpy.dev/syntax"
)

// rewriteAssign lowers assignments to anything but a single name.
func (ctx *Context) rewriteAssign(s *syntax.AssignStmt) Rewrite {
	if len(s.Targets) > 1 {
		// a = b = v: evaluate v once, then store left to right.
		var stmts []syntax.Stmt
		value := s.Value
		if !pure(value) {
			tmp := ctx.Fresh("tmp")
			stmts = append(stmts, assign(tmp, value))
			value = ident(tmp)
		}
		for i, target := range s.Targets {
			v := value
			if i > 0 {
				v = clone(value)
			}
			stmts = append(stmts, &syntax.AssignStmt{Targets: []syntax.Expr{target}, OpPos: s.OpPos, Value: v})
		}
		return visit(stmts...)
	}

	switch target := s.Targets[0].(type) {
	case *syntax.Ident:
		return Rewrite{}

	case *syntax.TupleExpr:
		return visit(ctx.unpack(target.List, s.Value)...)

	case *syntax.ListExpr:
		return visit(ctx.unpack(target.List, s.Value)...)

	case *syntax.DotExpr:
		if ctx.opts.LowerAttributes && !internalRooted(target.X) {
			pre, value := ctx.evalFirst(s.Value, target.X)
			return visit(append(pre, exprStmt(dpCall("setattr", target.X, str(target.Name), value)))...)
		}
		if hoists(target.X) && !pure(s.Value) {
			// Statements generated for the object would run before
			// the value is computed.
			tmp := ctx.Fresh("tmp")
			return visit(
				assign(tmp, s.Value),
				&syntax.AssignStmt{Targets: s.Targets, OpPos: s.OpPos, Value: ident(tmp)})
		}
		return Rewrite{}

	case *syntax.IndexExpr:
		pre, value := ctx.evalFirst(s.Value, target.X, target.Y)
		return visit(append(pre, exprStmt(dpCall("setitem", target.X, target.Y, value)))...)

	case *syntax.StarredExpr:
		unsupported(target, "starred assignment target outside a list or tuple")
	default:
		unsupported(target, "assignment to %s", describe(target))
	}
	panic("unreachable")
}

// evalFirst returns statements that evaluate value ahead of the parts
// of a target that the lowered form evaluates before it, and the
// expression to use for value in their place.
func (ctx *Context) evalFirst(value syntax.Expr, parts ...syntax.Expr) ([]syntax.Stmt, syntax.Expr) {
	if pure(value) {
		return nil, value
	}
	walrus := containsNamedExpr(value)
	for _, part := range parts {
		if !stable(part, walrus) {
			tmp := ctx.Fresh("tmp")
			return []syntax.Stmt{assign(tmp, value)}, ident(tmp)
		}
	}
	return nil, value
}

// stable reports whether evaluating x before rather than after
// another expression yields the same result. Names are stable unless
// the other expression contains an assignment expression.
func stable(x syntax.Expr, walrus bool) bool {
	switch x := x.(type) {
	case *syntax.Literal:
		return true
	case *syntax.Ident:
		return !walrus || isInternal(x.Name)
	case *syntax.DotExpr:
		return rootedAtRuntime(x)
	case *syntax.SliceExpr:
		return stable(orNone(x.Lo), walrus) && stable(orNone(x.Hi), walrus) && stable(orNone(x.Step), walrus)
	case *syntax.TupleExpr:
		for _, elem := range x.List {
			if !stable(elem, walrus) {
				return false
			}
		}
		return true
	}
	return false
}

// unpack lowers an assignment to a tuple or list of targets:
//
//	_dp_tmp_1 = __dp__.unpack(value, (True, False, True))
//	try:
//	    a = __dp__.getitem(_dp_tmp_1, 0)
//	    b = __dp__.list(__dp__.getitem(_dp_tmp_1, 1))
//	    c = __dp__.getitem(_dp_tmp_1, 2)
//	finally:
//	    _dp_tmp_1 = None
//
// The tuple of flags holds False for the starred target, which
// receives the remaining items.
func (ctx *Context) unpack(elems []syntax.Expr, value syntax.Expr) []syntax.Stmt {
	var spec []syntax.Expr
	starred := false
	for _, elem := range elems {
		if _, ok := elem.(*syntax.StarredExpr); ok {
			if starred {
				unsupported(elem, "multiple starred expressions in assignment")
			}
			starred = true
			spec = append(spec, boolean(false))
		} else {
			spec = append(spec, boolean(true))
		}
	}

	tmp := ctx.Fresh("tmp")
	var body []syntax.Stmt
	for i, elem := range elems {
		item := dpCall("getitem", ident(tmp), intLit(i))
		if s, ok := elem.(*syntax.StarredExpr); ok {
			elem = s.X
			item = dpCall("list", item)
		}
		body = append(body, &syntax.AssignStmt{Targets: []syntax.Expr{elem}, Value: item})
	}
	return template.Stmts(`
		{tmp:id} = __dp__.unpack({value:expr}, {spec:expr})
		try:
		    {body:stmt}
		finally:
		    {tmp:id} = None
		`, template.Vars{
		"tmp":   tmp,
		"value": value,
		"spec":  tuple(spec...),
		"body":  body,
	})
}

// rewriteAugAssign lowers x op= v to x = __dp__.iop(x, v). The object
// and key of an attribute or subscript target are evaluated once.
func (ctx *Context) rewriteAugAssign(s *syntax.AugAssignStmt) Rewrite {
	fn := opFunc(inplaceFuncs, s.Op)
	walrus := containsNamedExpr(s.Value)
	var stmts []syntax.Stmt
	once := func(x syntax.Expr) syntax.Expr {
		if sl, ok := x.(*syntax.SliceExpr); ok {
			x = dpCall("slice", orNone(sl.Lo), orNone(sl.Hi), orNone(sl.Step))
		}
		if cloneable(x) && stable(x, walrus) {
			return x
		}
		tmp := ctx.Fresh("tmp")
		stmts = append(stmts, assign(tmp, x))
		return ident(tmp)
	}

	var load, store syntax.Expr
	switch target := s.Target.(type) {
	case *syntax.Ident:
		load, store = ident(target.Name), target
	case *syntax.DotExpr:
		obj := once(target.X)
		load = &syntax.DotExpr{X: clone(obj), Name: target.Name}
		store = &syntax.DotExpr{X: obj, Dot: target.Dot, NamePos: target.NamePos, Name: target.Name}
	case *syntax.IndexExpr:
		obj := once(target.X)
		key := once(target.Y)
		load = &syntax.IndexExpr{X: clone(obj), Y: clone(key)}
		store = &syntax.IndexExpr{X: obj, Lbrack: target.Lbrack, Y: key, Rbrack: target.Rbrack}
	default:
		unsupported(target, "augmented assignment to %s", describe(target))
	}
	stmts = append(stmts, &syntax.AssignStmt{
		Targets: []syntax.Expr{store},
		OpPos:   s.OpPos,
		Value:   dpCall(fn, load, s.Value),
	})
	return visit(stmts...)
}

// rewriteAnnAssign turns an annotated assignment that survived
// annotation processing into a plain one.
func (ctx *Context) rewriteAnnAssign(s *syntax.AnnAssignStmt) Rewrite {
	if s.Value == nil {
		return walk(pass())
	}
	return visit(&syntax.AssignStmt{Targets: []syntax.Expr{s.Target}, Value: s.Value})
}

// rewriteDel lowers deletion of items and attributes, and splits
// deletions of several targets.
func (ctx *Context) rewriteDel(s *syntax.DelStmt) Rewrite {
	if len(s.Targets) == 1 {
		switch target := s.Targets[0].(type) {
		case *syntax.Ident:
			return Rewrite{}
		case *syntax.DotExpr:
			if internalRooted(target.X) {
				return Rewrite{}
			}
		}
	}
	var stmts []syntax.Stmt
	var expand func(target syntax.Expr)
	expand = func(target syntax.Expr) {
		switch target := target.(type) {
		case *syntax.Ident:
			stmts = append(stmts, &syntax.DelStmt{Del: s.Del, Targets: []syntax.Expr{target}})
		case *syntax.TupleExpr:
			for _, elem := range target.List {
				expand(elem)
			}
		case *syntax.ListExpr:
			for _, elem := range target.List {
				expand(elem)
			}
		case *syntax.IndexExpr:
			stmts = append(stmts, exprStmt(dpCall("delitem", target.X, target.Y)))
		case *syntax.DotExpr:
			if internalRooted(target.X) {
				stmts = append(stmts, &syntax.DelStmt{Del: s.Del, Targets: []syntax.Expr{target}})
			} else {
				stmts = append(stmts, exprStmt(dpCall("delattr", target.X, str(target.Name))))
			}
		default:
			unsupported(target, "deletion of %s", describe(target))
		}
	}
	for _, target := range s.Targets {
		expand(target)
	}
	return walk(stmts...)
}

// rewriteRaise lowers raise X from Y.
func (ctx *Context) rewriteRaise(s *syntax.RaiseStmt) Rewrite {
	if s.Cause == nil {
		return Rewrite{}
	}
	return walk(&syntax.RaiseStmt{Raise: s.Raise, Exc: dpCall("raise_from", s.Exc, s.Cause)})
}

// rewriteAssert lowers an assertion to an explicit test guarded by
// __debug__.
func (ctx *Context) rewriteAssert(s *syntax.AssertStmt) Rewrite {
	if s.Msg == nil {
		return walk(template.Stmt(`
			if __debug__:
			    if not {test:expr}:
			        raise __dp__.builtins.AssertionError
			`, template.Vars{"test": s.Test}))
	}
	return walk(template.Stmt(`
		if __debug__:
		    if not {test:expr}:
		        raise __dp__.builtins.AssertionError({msg:expr})
		`, template.Vars{"test": s.Test, "msg": s.Msg}))
}

// rewriteWhile moves a test that needs statements of its own into the
// loop body, where they run before every test:
//
//	_dp_exited_1 = False
//	while True:
//	    if not test:
//	        _dp_exited_1 = True
//	        break
//	    body
//	if _dp_exited_1:
//	    orelse
func (ctx *Context) rewriteWhile(s *syntax.WhileStmt) Rewrite {
	if !hoists(s.Cond) {
		return Rewrite{}
	}
	flag := ctx.Fresh("exited")
	stmts := template.Stmts(`
		{flag:id} = False
		while True:
		    if not {test:expr}:
		        {flag:id} = True
		        break
		    {body:stmt}
		`, template.Vars{"flag": flag, "test": s.Cond, "body": s.Body})
	if len(s.Else) > 0 {
		stmts = append(stmts, &syntax.IfStmt{Cond: ident(flag), True: s.Else})
	}
	return walk(stmts...)
}

// rewriteFor lowers a for loop to the iterator protocol:
//
//	_dp_completed_3 = False
//	_dp_iter_1 = __dp__.iter(x)
//	while not _dp_completed_3:
//	    _dp_tmp_2 = __dp__.next_or_sentinel(_dp_iter_1)
//	    if _dp_tmp_2 is __dp__.ITER_COMPLETE:
//	        _dp_completed_3 = True
//	    else:
//	        vars = _dp_tmp_2
//	        body
//	if _dp_completed_3:
//	    orelse
func (ctx *Context) rewriteFor(s *syntax.ForStmt) Rewrite {
	iter := ctx.Fresh("iter")
	tmp := ctx.Fresh("tmp")
	completed := ctx.Fresh("completed")
	stmts := template.Stmts(`
		{completed:id} = False
		{iter:id} = __dp__.iter({x:expr})
		while not {completed:id}:
		    {tmp:id} = __dp__.next_or_sentinel({iter:id})
		    if {tmp:id} is __dp__.ITER_COMPLETE:
		        {completed:id} = True
		    else:
		        {vars:expr} = {tmp:id}
		        {body:stmt}
		`, template.Vars{
		"completed": completed,
		"iter":      iter,
		"tmp":       tmp,
		"x":         s.X,
		"vars":      s.Vars,
		"body":      s.Body,
	})
	if len(s.Else) > 0 {
		stmts = append(stmts, &syntax.IfStmt{Cond: ident(completed), True: s.Else})
	}
	return walk(stmts...)
}

// rewriteWith lowers a with statement to explicit calls of the context
// manager protocol. Several items nest.
func (ctx *Context) rewriteWith(s *syntax.WithStmt) Rewrite {
	item := s.Items[0]
	body := s.Body
	if len(s.Items) > 1 {
		body = []syntax.Stmt{&syntax.WithStmt{With: s.With, Items: s.Items[1:], Body: s.Body}}
	}
	mgr := ctx.Fresh("with_ctx")
	exit := ctx.Fresh("with_exit")
	ok := ctx.Fresh("with_ok")

	var enter syntax.Stmt = exprStmt(dpCall("contextmanager_enter", ident(mgr)))
	if item.Vars != nil {
		enter = &syntax.AssignStmt{
			Targets: []syntax.Expr{item.Vars},
			Value:   dpCall("contextmanager_enter", ident(mgr)),
		}
	}
	return visit(template.Stmts(`
		{mgr:id} = {x:expr}
		{exit:id} = __dp__.contextmanager_get_exit({mgr:id})
		{enter:stmt}
		{ok:id} = True
		try:
		    {body:stmt}
		except:
		    {ok:id} = False
		    __dp__.contextmanager_exit({exit:id}, __dp__.exc_info())
		finally:
		    if {ok:id}:
		        __dp__.contextmanager_exit({exit:id}, None)
		    {exit:id} = None
		`, template.Vars{
		"mgr":   mgr,
		"x":     item.X,
		"exit":  exit,
		"enter": enter,
		"ok":    ok,
		"body":  body,
	})...)
}
