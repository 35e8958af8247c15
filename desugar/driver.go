// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package desugar

// This file defines the rewrite driver, which applies the rule
// catalog to a module until no rule applies.
//
// Each statement of a body is submitted to the statement rules, which
// return a Rewrite. A Visit result is pushed back onto the front of
// the body's queue, so its statements are submitted again from
// scratch. Walk and Unmodified results are final at this level: the
// driver lowers the expressions they contain, processes their nested
// bodies recursively, and emits them.
//
// Lowering an expression may produce statements, such as the
// conditional assignment that replaces a short-circuit operator.
// These are processed like any other statements and emitted before
// the statement that produced them. When a subexpression produces
// statements, its left siblings are first saved in temporaries so that
// evaluation order is preserved.

import (
	"context"
	"fmt"
	"log/slog"

	"go.dietpy.dev/syntax"
)

// RewriteKind classifies the result of a statement rule.
type RewriteKind uint8

const (
	Unmodified RewriteKind = iota // the statement is final
	Walk                          // the replacements are final at this level
	Visit                         // the replacements must be rewritten again
)

var rewriteKindNames = [...]string{
	Unmodified: "unmodified",
	Walk:       "walk",
	Visit:      "visit",
}

func (k RewriteKind) String() string { return rewriteKindNames[k] }

// A Rewrite is the result of a statement rule.
type Rewrite struct {
	Kind  RewriteKind
	Stmts []syntax.Stmt
}

func walk(stmts ...syntax.Stmt) Rewrite  { return Rewrite{Kind: Walk, Stmts: stmts} }
func visit(stmts ...syntax.Stmt) Rewrite { return Rewrite{Kind: Visit, Stmts: stmts} }

// maxPasses bounds the number of passes over a module. A correct rule
// catalog reaches its fixpoint in the first pass and confirms it in
// the second; exceeding the bound reports a defective rule.
const maxPasses = 8

// lowerModule applies the rule catalog to f until no rule applies.
func (ctx *Context) lowerModule(f *syntax.File) {
	for {
		ctx.passes++
		if ctx.passes > maxPasses {
			panic(&InternalError{Err: fmt.Errorf("rewriting did not converge after %d passes", maxPasses)})
		}
		d := &driver{ctx: ctx, file: f}
		f.Stmts = d.body(f.Stmts)
		ctx.log.Debug("stage 1 pass", "pass", ctx.passes, "modified", d.modified)
		if !d.modified {
			return
		}
	}
}

// A driver performs one pass of the rule catalog.
type driver struct {
	ctx      *Context
	file     *syntax.File // for node indices in debug records
	modified bool
}

// body rewrites a statement list.
func (d *driver) body(stmts []syntax.Stmt) []syntax.Stmt {
	queue := append([]syntax.Stmt(nil), stmts...)
	var out []syntax.Stmt
	for len(queue) > 0 {
		stmt := queue[0]
		queue = queue[1:]
		rw := d.rule(stmt)
		if rw.Kind != Unmodified {
			d.modified = true
			if d.ctx.log.Enabled(context.Background(), slog.LevelDebug) {
				d.ctx.log.Debug("rewrite",
					"kind", rw.Kind,
					"stmt", fmt.Sprintf("%T", stmt),
					"node", d.file.Index(stmt),
					"line", syntax.Start(stmt).Line)
			}
		}
		switch rw.Kind {
		case Unmodified:
			out = append(out, d.flush(stmt)...)
		case Walk:
			for _, s := range rw.Stmts {
				out = append(out, d.flush(s)...)
			}
		case Visit:
			queue = append(append([]syntax.Stmt(nil), rw.Stmts...), queue...)
		}
	}
	return out
}

// rule applies the statement rule for stmt, if any.
func (d *driver) rule(stmt syntax.Stmt) Rewrite {
	ctx := d.ctx
	switch s := stmt.(type) {
	case *syntax.AssignStmt:
		return ctx.rewriteAssign(s)
	case *syntax.AugAssignStmt:
		return ctx.rewriteAugAssign(s)
	case *syntax.DelStmt:
		return ctx.rewriteDel(s)
	case *syntax.RaiseStmt:
		return ctx.rewriteRaise(s)
	case *syntax.AssertStmt:
		return ctx.rewriteAssert(s)
	case *syntax.ImportStmt:
		return ctx.rewriteImport(s)
	case *syntax.ImportFromStmt:
		return ctx.rewriteImportFrom(s)
	case *syntax.WhileStmt:
		return ctx.rewriteWhile(s)
	case *syntax.ForStmt:
		return ctx.rewriteFor(s)
	case *syntax.TryStmt:
		return ctx.rewriteTry(s)
	case *syntax.WithStmt:
		return ctx.rewriteWith(s)
	case *syntax.AnnAssignStmt:
		return ctx.rewriteAnnAssign(s)
	case *syntax.ExprStmt, *syntax.BranchStmt, *syntax.ReturnStmt, *syntax.ScopeStmt,
		*syntax.IfStmt, *syntax.DefStmt, *syntax.ClassStmt:
		return Rewrite{}
	}
	panic(fmt.Sprintf("unexpected statement type %T", stmt))
}

// flush lowers the expressions and nested bodies of a final statement.
// It returns the statements generated by expression lowering, already
// rewritten, followed by stmt.
func (d *driver) flush(stmt syntax.Stmt) []syntax.Stmt {
	l := &lowerer{d: d}
	l.VisitStmt(&stmt)
	if len(l.buf) == 0 {
		return []syntax.Stmt{stmt}
	}
	return append(d.body(l.buf), stmt)
}

// A lowerer lowers the expressions of one statement. Statements
// generated along the way accumulate in buf.
type lowerer struct {
	d   *driver
	buf []syntax.Stmt
}

func (l *lowerer) VisitBody(body *[]syntax.Stmt) {
	*body = l.d.body(*body)
}

func (l *lowerer) VisitStmt(stmt *syntax.Stmt) {
	ctx := l.d.ctx
	switch s := (*stmt).(type) {
	case *syntax.DefStmt:
		// Decorators and defaults belong to the enclosing body.
		for i := range s.Decorators {
			l.VisitExpr(&s.Decorators[i])
		}
		for _, param := range s.Params {
			if param.Default != nil {
				l.VisitExpr(&param.Default)
			}
		}
		ctx.push(frame{kind: functionFrame, def: s})
		l.VisitBody(&s.Body)
		ctx.pop()

	case *syntax.ClassStmt:
		for i := range s.Decorators {
			l.VisitExpr(&s.Decorators[i])
		}
		for i := range s.Bases {
			l.VisitExpr(&s.Bases[i])
		}
		ctx.push(frame{kind: classFrame})
		l.VisitBody(&s.Body)
		ctx.pop()

	default:
		syntax.WalkStmt(l, stmt)
	}
}

func (l *lowerer) VisitExpr(x *syntax.Expr) { l.expr(x) }

func (l *lowerer) VisitTarget(x *syntax.Expr) {
	switch e := (*x).(type) {
	case *syntax.Ident:
		// leaf
	case *syntax.DotExpr:
		l.expr(&e.X)
	default:
		syntax.WalkTarget(l, x)
	}
}

// expr lowers *x: first the rules for the expression itself, to a
// local fixpoint, then its operands from left to right.
func (l *lowerer) expr(x *syntax.Expr) {
	for {
		y := l.rule(*x)
		if y == nil {
			break
		}
		*x = y
		l.d.modified = true
	}
	slots := operands(*x)
	for i, slot := range slots {
		saved := l.buf
		l.buf = nil
		l.expr(slot)
		generated := l.buf
		l.buf = saved
		if len(generated) > 0 {
			for _, prev := range slots[:i] {
				l.hoist(prev)
			}
			l.buf = append(l.buf, generated...)
		}
	}
}

// operands returns the slots of the operands of x, in evaluation order.
// Lambdas and comprehensions have none: the rules turn them into
// functions before their contents are lowered.
func operands(x syntax.Expr) []*syntax.Expr {
	var slots []*syntax.Expr
	add := func(p *syntax.Expr) {
		if *p != nil {
			slots = append(slots, p)
		}
	}
	addList := func(list []syntax.Expr) {
		for i := range list {
			add(&list[i])
		}
	}
	switch e := x.(type) {
	case *syntax.CallExpr:
		add(&e.Fn)
		addList(e.Args)
	case *syntax.KeywordArg:
		add(&e.Value)
	case *syntax.StarredExpr:
		add(&e.X)
	case *syntax.DotExpr:
		add(&e.X)
	case *syntax.IndexExpr:
		add(&e.X)
		add(&e.Y)
	case *syntax.SliceExpr:
		add(&e.Lo)
		add(&e.Hi)
		add(&e.Step)
	case *syntax.BinaryExpr:
		add(&e.X)
		add(&e.Y)
	case *syntax.CompareExpr:
		add(&e.X)
		addList(e.Ys)
	case *syntax.UnaryExpr:
		add(&e.X)
	case *syntax.ListExpr:
		addList(e.List)
	case *syntax.TupleExpr:
		addList(e.List)
	case *syntax.SetExpr:
		addList(e.List)
	case *syntax.DictExpr:
		addList(e.List)
	case *syntax.DictEntry:
		add(&e.Key)
		add(&e.Value)
	case *syntax.YieldExpr:
		add(&e.Value)
	}
	return slots
}

// hoist saves the value of an already lowered operand in a temporary,
// unless it is a literal or a runtime reference. Names are saved too,
// since the statements generated for a later operand may rebind them.
func (l *lowerer) hoist(slot *syntax.Expr) {
	switch e := (*slot).(type) {
	case *syntax.StarredExpr:
		l.hoist(&e.X)
		return
	case *syntax.KeywordArg:
		l.hoist(&e.Value)
		return
	case *syntax.DictEntry:
		l.hoist(&e.Key)
		l.hoist(&e.Value)
		return
	case *syntax.Ident:
		if isInternal(e.Name) {
			return
		}
	default:
		if pure(e) {
			return
		}
	}
	tmp := l.d.ctx.Fresh("tmp")
	l.buf = append(l.buf, assign(tmp, *slot))
	*slot = ident(tmp)
}
