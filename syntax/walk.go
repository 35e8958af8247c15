// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import "fmt"

// Walk traverses a syntax tree in depth-first order.
// It starts by calling f(n); n must not be nil.
// If f returns true, Walk calls itself
// recursively for each non-nil child of n.
// Walk then calls f(nil).
func Walk(n Node, f func(Node) bool) {
	if n == nil {
		panic("nil")
	}
	if !f(n) {
		return
	}

	// TODO(adonovan): opt: order cases using profile data.
	switch n := n.(type) {
	case *File:
		walkStmts(n.Stmts, f)

	case *ExprStmt:
		Walk(n.X, f)

	case *AssignStmt:
		for _, t := range n.Targets {
			Walk(t, f)
		}
		Walk(n.Value, f)

	case *AugAssignStmt:
		Walk(n.Target, f)
		Walk(n.Value, f)

	case *AnnAssignStmt:
		Walk(n.Target, f)
		Walk(n.Annotation, f)
		if n.Value != nil {
			Walk(n.Value, f)
		}

	case *DelStmt:
		for _, t := range n.Targets {
			Walk(t, f)
		}

	case *BranchStmt:
		// no-op

	case *ReturnStmt:
		if n.Result != nil {
			Walk(n.Result, f)
		}

	case *RaiseStmt:
		if n.Exc != nil {
			Walk(n.Exc, f)
		}
		if n.Cause != nil {
			Walk(n.Cause, f)
		}

	case *ScopeStmt:
		for _, name := range n.Names {
			Walk(name, f)
		}

	case *AssertStmt:
		Walk(n.Test, f)
		if n.Msg != nil {
			Walk(n.Msg, f)
		}

	case *ImportStmt:
		for _, name := range n.Names {
			Walk(name, f)
		}

	case *ImportFromStmt:
		for _, name := range n.Names {
			Walk(name, f)
		}

	case *ImportName:
		if n.AsName != nil {
			Walk(n.AsName, f)
		}

	case *IfStmt:
		Walk(n.Cond, f)
		walkStmts(n.True, f)
		walkStmts(n.False, f)

	case *WhileStmt:
		Walk(n.Cond, f)
		walkStmts(n.Body, f)
		walkStmts(n.Else, f)

	case *ForStmt:
		Walk(n.Vars, f)
		Walk(n.X, f)
		walkStmts(n.Body, f)
		walkStmts(n.Else, f)

	case *TryStmt:
		walkStmts(n.Body, f)
		for _, h := range n.Handlers {
			Walk(h, f)
		}
		walkStmts(n.Else, f)
		walkStmts(n.Finally, f)

	case *ExceptClause:
		if n.Type != nil {
			Walk(n.Type, f)
		}
		if n.Name != nil {
			Walk(n.Name, f)
		}
		walkStmts(n.Body, f)

	case *WithStmt:
		for _, item := range n.Items {
			Walk(item.X, f)
			if item.Vars != nil {
				Walk(item.Vars, f)
			}
		}
		walkStmts(n.Body, f)

	case *DefStmt:
		for _, d := range n.Decorators {
			Walk(d, f)
		}
		Walk(n.Name, f)
		for _, param := range n.Params {
			Walk(param, f)
		}
		if n.Returns != nil {
			Walk(n.Returns, f)
		}
		walkStmts(n.Body, f)

	case *Param:
		if n.Name != nil {
			Walk(n.Name, f)
		}
		if n.Annotation != nil {
			Walk(n.Annotation, f)
		}
		if n.Default != nil {
			Walk(n.Default, f)
		}

	case *ClassStmt:
		for _, d := range n.Decorators {
			Walk(d, f)
		}
		Walk(n.Name, f)
		for _, b := range n.Bases {
			Walk(b, f)
		}
		walkStmts(n.Body, f)

	case *Ident, *Literal:
		// no-op

	case *FStringExpr:
		for _, part := range n.Parts {
			Walk(part, f)
		}

	case *FormattedValue:
		Walk(n.X, f)
		if n.Spec != nil {
			Walk(n.Spec, f)
		}

	case *CallExpr:
		Walk(n.Fn, f)
		for _, arg := range n.Args {
			Walk(arg, f)
		}

	case *KeywordArg:
		Walk(n.Value, f)

	case *StarredExpr:
		Walk(n.X, f)

	case *DotExpr:
		Walk(n.X, f)

	case *IndexExpr:
		Walk(n.X, f)
		Walk(n.Y, f)

	case *SliceExpr:
		if n.Lo != nil {
			Walk(n.Lo, f)
		}
		if n.Hi != nil {
			Walk(n.Hi, f)
		}
		if n.Step != nil {
			Walk(n.Step, f)
		}

	case *BinaryExpr:
		Walk(n.X, f)
		Walk(n.Y, f)

	case *CompareExpr:
		Walk(n.X, f)
		for _, y := range n.Ys {
			Walk(y, f)
		}

	case *UnaryExpr:
		Walk(n.X, f)

	case *CondExpr:
		Walk(n.Cond, f)
		Walk(n.True, f)
		Walk(n.False, f)

	case *LambdaExpr:
		for _, param := range n.Params {
			Walk(param, f)
		}
		Walk(n.Body, f)

	case *ListExpr:
		for _, x := range n.List {
			Walk(x, f)
		}

	case *TupleExpr:
		for _, x := range n.List {
			Walk(x, f)
		}

	case *SetExpr:
		for _, x := range n.List {
			Walk(x, f)
		}

	case *DictExpr:
		for _, entry := range n.List {
			Walk(entry, f)
		}

	case *DictEntry:
		Walk(n.Key, f)
		Walk(n.Value, f)

	case *Comprehension:
		Walk(n.Body, f)
		for _, clause := range n.Clauses {
			Walk(clause, f)
		}

	case *ForClause:
		Walk(n.Vars, f)
		Walk(n.X, f)

	case *IfClause:
		Walk(n.Cond, f)

	case *NamedExpr:
		Walk(n.Target, f)
		Walk(n.Value, f)

	case *YieldExpr:
		if n.Value != nil {
			Walk(n.Value, f)
		}

	default:
		panic(fmt.Sprintf("Walk: unexpected node type %T", n))
	}

	f(nil)
}

func walkStmts(stmts []Stmt, f func(Node) bool) {
	for _, stmt := range stmts {
		Walk(stmt, f)
	}
}

// A Visitor rewrites a syntax tree in place. Each method receives the
// address of a slot holding a node and may replace its contents.
//
// The functions WalkBody, WalkStmt, WalkExpr and WalkTarget provide
// the default traversal of a node's children; an implementation calls
// them for the nodes it does not handle itself.
type Visitor interface {
	VisitBody(body *[]Stmt)
	VisitStmt(stmt *Stmt)
	VisitExpr(x *Expr)

	// VisitTarget is called for expressions in binding position:
	// the targets of assignments, for loops, with items and del.
	VisitTarget(x *Expr)
}

// WalkBody calls v.VisitStmt for each statement of body.
func WalkBody(v Visitor, body *[]Stmt) {
	for i := range *body {
		v.VisitStmt(&(*body)[i])
	}
}

// WalkStmt visits the children of the statement in *stmt.
func WalkStmt(v Visitor, stmt *Stmt) {
	switch s := (*stmt).(type) {
	case *ExprStmt:
		v.VisitExpr(&s.X)

	case *AssignStmt:
		v.VisitExpr(&s.Value)
		for i := range s.Targets {
			v.VisitTarget(&s.Targets[i])
		}

	case *AugAssignStmt:
		v.VisitTarget(&s.Target)
		v.VisitExpr(&s.Value)

	case *AnnAssignStmt:
		v.VisitTarget(&s.Target)
		v.VisitExpr(&s.Annotation)
		visitOptExpr(v, &s.Value)

	case *DelStmt:
		for i := range s.Targets {
			v.VisitTarget(&s.Targets[i])
		}

	case *BranchStmt, *ScopeStmt, *ImportStmt, *ImportFromStmt:
		// no-op

	case *ReturnStmt:
		visitOptExpr(v, &s.Result)

	case *RaiseStmt:
		visitOptExpr(v, &s.Exc)
		visitOptExpr(v, &s.Cause)

	case *AssertStmt:
		v.VisitExpr(&s.Test)
		visitOptExpr(v, &s.Msg)

	case *IfStmt:
		v.VisitExpr(&s.Cond)
		v.VisitBody(&s.True)
		visitOptBody(v, &s.False)

	case *WhileStmt:
		v.VisitExpr(&s.Cond)
		v.VisitBody(&s.Body)
		visitOptBody(v, &s.Else)

	case *ForStmt:
		v.VisitExpr(&s.X)
		v.VisitTarget(&s.Vars)
		v.VisitBody(&s.Body)
		visitOptBody(v, &s.Else)

	case *TryStmt:
		v.VisitBody(&s.Body)
		for _, h := range s.Handlers {
			visitOptExpr(v, &h.Type)
			v.VisitBody(&h.Body)
		}
		visitOptBody(v, &s.Else)
		visitOptBody(v, &s.Finally)

	case *WithStmt:
		for _, item := range s.Items {
			v.VisitExpr(&item.X)
			if item.Vars != nil {
				v.VisitTarget(&item.Vars)
			}
		}
		v.VisitBody(&s.Body)

	case *DefStmt:
		for i := range s.Decorators {
			v.VisitExpr(&s.Decorators[i])
		}
		visitParams(v, s.Params)
		visitOptExpr(v, &s.Returns)
		v.VisitBody(&s.Body)

	case *ClassStmt:
		for i := range s.Decorators {
			v.VisitExpr(&s.Decorators[i])
		}
		for i := range s.Bases {
			v.VisitExpr(&s.Bases[i])
		}
		v.VisitBody(&s.Body)

	default:
		panic(fmt.Sprintf("WalkStmt: unexpected statement type %T", s))
	}
}

// WalkExpr visits the children of the expression in *x.
func WalkExpr(v Visitor, x *Expr) {
	switch e := (*x).(type) {
	case *Ident, *Literal:
		// no-op

	case *FStringExpr:
		// Rewriting a field invalidates the raw text.
		e.Raw = ""
		for i := range e.Parts {
			v.VisitExpr(&e.Parts[i])
		}

	case *FormattedValue:
		v.VisitExpr(&e.X)
		if e.Spec != nil {
			var spec Expr = e.Spec
			v.VisitExpr(&spec)
			if fs, ok := spec.(*FStringExpr); ok {
				e.Spec = fs
			}
		}

	case *CallExpr:
		v.VisitExpr(&e.Fn)
		for i := range e.Args {
			v.VisitExpr(&e.Args[i])
		}

	case *KeywordArg:
		v.VisitExpr(&e.Value)

	case *StarredExpr:
		v.VisitExpr(&e.X)

	case *DotExpr:
		v.VisitExpr(&e.X)

	case *IndexExpr:
		v.VisitExpr(&e.X)
		v.VisitExpr(&e.Y)

	case *SliceExpr:
		visitOptExpr(v, &e.Lo)
		visitOptExpr(v, &e.Hi)
		visitOptExpr(v, &e.Step)

	case *BinaryExpr:
		v.VisitExpr(&e.X)
		v.VisitExpr(&e.Y)

	case *CompareExpr:
		v.VisitExpr(&e.X)
		for i := range e.Ys {
			v.VisitExpr(&e.Ys[i])
		}

	case *UnaryExpr:
		v.VisitExpr(&e.X)

	case *CondExpr:
		v.VisitExpr(&e.Cond)
		v.VisitExpr(&e.True)
		v.VisitExpr(&e.False)

	case *LambdaExpr:
		visitParams(v, e.Params)
		v.VisitExpr(&e.Body)

	case *ListExpr:
		for i := range e.List {
			v.VisitExpr(&e.List[i])
		}

	case *TupleExpr:
		for i := range e.List {
			v.VisitExpr(&e.List[i])
		}

	case *SetExpr:
		for i := range e.List {
			v.VisitExpr(&e.List[i])
		}

	case *DictExpr:
		for i := range e.List {
			v.VisitExpr(&e.List[i])
		}

	case *DictEntry:
		v.VisitExpr(&e.Key)
		v.VisitExpr(&e.Value)

	case *Comprehension:
		for _, clause := range e.Clauses {
			switch clause := clause.(type) {
			case *ForClause:
				v.VisitExpr(&clause.X)
				v.VisitTarget(&clause.Vars)
			case *IfClause:
				v.VisitExpr(&clause.Cond)
			}
		}
		v.VisitExpr(&e.Body)

	case *NamedExpr:
		v.VisitExpr(&e.Value)

	case *YieldExpr:
		visitOptExpr(v, &e.Value)

	default:
		panic(fmt.Sprintf("WalkExpr: unexpected expression type %T", e))
	}
}

// WalkTarget visits the children of the binding target in *x.
// Names are leaves; the operands of attribute and subscript
// targets are visited as ordinary expressions.
func WalkTarget(v Visitor, x *Expr) {
	switch e := (*x).(type) {
	case *Ident:
		// no-op

	case *TupleExpr:
		for i := range e.List {
			v.VisitTarget(&e.List[i])
		}

	case *ListExpr:
		for i := range e.List {
			v.VisitTarget(&e.List[i])
		}

	case *StarredExpr:
		v.VisitTarget(&e.X)

	case *DotExpr:
		v.VisitExpr(&e.X)

	case *IndexExpr:
		v.VisitExpr(&e.X)
		v.VisitExpr(&e.Y)

	default:
		WalkExpr(v, x)
	}
}

func visitOptExpr(v Visitor, x *Expr) {
	if *x != nil {
		v.VisitExpr(x)
	}
}

func visitOptBody(v Visitor, body *[]Stmt) {
	if *body != nil {
		v.VisitBody(body)
	}
}

func visitParams(v Visitor, params []*Param) {
	for _, param := range params {
		visitOptExpr(v, &param.Annotation)
		visitOptExpr(v, &param.Default)
	}
}
