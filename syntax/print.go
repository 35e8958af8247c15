// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// This file defines a printer that renders a syntax tree as Python
// source. Parentheses are inserted according to operator precedence,
// so the output re-parses to an equal tree.

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Format returns the Python source text of the file.
func Format(f *File) string {
	var pr printer
	pr.stmts(f.Stmts)
	return pr.buf.String()
}

// FormatStmts returns the Python source text of a statement list.
func FormatStmts(stmts []Stmt) string {
	var pr printer
	pr.stmts(stmts)
	return pr.buf.String()
}

// FormatExpr returns the Python source text of an expression.
func FormatExpr(x Expr) string {
	var pr printer
	pr.expr(x, precLowest)
	return pr.buf.String()
}

// Expression precedence levels, lowest to highest.
const (
	precLowest  = iota // yield, unparenthesized tuple
	precLambda         // lambda
	precCond           // x if c else y
	precNamed          // x := y (always parenthesized)
	precOr             // or
	precAnd            // and
	precNot            // not x
	precCompare        // < > == in is ...
	precPipe           // |
	precXor            // ^
	precAmp            // &
	precShift          // << >>
	precAdd            // + -
	precMul            // * @ / // %
	precUnary          // +x -x ~x
	precPower          // **
	precAtom           // primary expressions
)

var binaryPrec = map[Token]int{
	OR:         precOr,
	AND:        precAnd,
	PIPE:       precPipe,
	CIRCUMFLEX: precXor,
	AMP:        precAmp,
	LTLT:       precShift,
	GTGT:       precShift,
	PLUS:       precAdd,
	MINUS:      precAdd,
	STAR:       precMul,
	AT:         precMul,
	SLASH:      precMul,
	SLASHSLASH: precMul,
	PERCENT:    precMul,
	STARSTAR:   precPower,
}

func exprPrec(x Expr) int {
	switch x := x.(type) {
	case *YieldExpr:
		return precLowest
	case *LambdaExpr:
		return precLambda
	case *CondExpr:
		return precCond
	case *NamedExpr:
		return precNamed
	case *BinaryExpr:
		return binaryPrec[x.Op]
	case *CompareExpr:
		return precCompare
	case *UnaryExpr:
		if x.Op == NOT {
			return precNot
		}
		return precUnary
	case *Literal:
		// A negative number prints with a leading minus.
		if isNegative(x) {
			return precUnary
		}
	}
	return precAtom
}

func isNegative(lit *Literal) bool {
	switch v := lit.Value.(type) {
	case int64:
		return v < 0 && lit.Raw == ""
	case *big.Int:
		return v.Sign() < 0 && lit.Raw == ""
	case float64:
		return (v < 0 || math.Signbit(v)) && lit.Raw == "" && lit.Token != STRING
	}
	return false
}

type printer struct {
	buf    strings.Builder
	indent int
}

func (pr *printer) line(format string, args ...interface{}) {
	for i := 0; i < pr.indent; i++ {
		pr.buf.WriteString("    ")
	}
	fmt.Fprintf(&pr.buf, format, args...)
	pr.buf.WriteByte('\n')
}

// begin starts a new indented line; the caller completes it with end.
func (pr *printer) begin() {
	for i := 0; i < pr.indent; i++ {
		pr.buf.WriteString("    ")
	}
}

func (pr *printer) end() { pr.buf.WriteByte('\n') }

func (pr *printer) stmts(stmts []Stmt) {
	for _, stmt := range stmts {
		pr.stmt(stmt)
	}
}

// block prints an indented suite; an empty suite prints as pass.
func (pr *printer) block(stmts []Stmt) {
	pr.indent++
	if len(stmts) == 0 {
		pr.line("pass")
	} else {
		pr.stmts(stmts)
	}
	pr.indent--
}

func (pr *printer) stmt(stmt Stmt) {
	switch s := stmt.(type) {
	case *ExprStmt:
		pr.begin()
		pr.exprList(s.X)
		pr.end()

	case *AssignStmt:
		pr.begin()
		for _, t := range s.Targets {
			pr.exprList(t)
			pr.buf.WriteString(" = ")
		}
		pr.exprList(s.Value)
		pr.end()

	case *AugAssignStmt:
		pr.begin()
		pr.expr(s.Target, precAtom)
		fmt.Fprintf(&pr.buf, " %s= ", s.Op)
		pr.exprList(s.Value)
		pr.end()

	case *AnnAssignStmt:
		pr.begin()
		pr.expr(s.Target, precAtom)
		pr.buf.WriteString(": ")
		pr.expr(s.Annotation, precLambda)
		if s.Value != nil {
			pr.buf.WriteString(" = ")
			pr.exprList(s.Value)
		}
		pr.end()

	case *DelStmt:
		pr.begin()
		pr.buf.WriteString("del ")
		pr.commaList(s.Targets, precPipe)
		pr.end()

	case *BranchStmt:
		pr.line("%s", s.Token)

	case *ReturnStmt:
		pr.begin()
		pr.buf.WriteString("return")
		if s.Result != nil {
			pr.buf.WriteByte(' ')
			pr.expr(s.Result, precLambda)
		}
		pr.end()

	case *RaiseStmt:
		pr.begin()
		pr.buf.WriteString("raise")
		if s.Exc != nil {
			pr.buf.WriteByte(' ')
			pr.expr(s.Exc, precLambda)
			if s.Cause != nil {
				pr.buf.WriteString(" from ")
				pr.expr(s.Cause, precLambda)
			}
		}
		pr.end()

	case *ScopeStmt:
		names := make([]string, len(s.Names))
		for i, name := range s.Names {
			names[i] = name.Name
		}
		pr.line("%s %s", s.Token, strings.Join(names, ", "))

	case *AssertStmt:
		pr.begin()
		pr.buf.WriteString("assert ")
		pr.expr(s.Test, precLambda)
		if s.Msg != nil {
			pr.buf.WriteString(", ")
			pr.expr(s.Msg, precLambda)
		}
		pr.end()

	case *ImportStmt:
		pr.line("import %s", importNames(s.Names))

	case *ImportFromStmt:
		pr.line("from %s%s import %s", strings.Repeat(".", s.Level), s.Module, importNames(s.Names))

	case *IfStmt:
		pr.ifStmt(s, "if")

	case *WhileStmt:
		pr.begin()
		pr.buf.WriteString("while ")
		pr.expr(s.Cond, precLambda)
		pr.buf.WriteByte(':')
		pr.end()
		pr.block(s.Body)
		if s.Else != nil {
			pr.line("else:")
			pr.block(s.Else)
		}

	case *ForStmt:
		pr.begin()
		pr.buf.WriteString("for ")
		pr.target(s.Vars)
		pr.buf.WriteString(" in ")
		pr.exprList(s.X)
		pr.buf.WriteByte(':')
		pr.end()
		pr.block(s.Body)
		if s.Else != nil {
			pr.line("else:")
			pr.block(s.Else)
		}

	case *TryStmt:
		pr.line("try:")
		pr.block(s.Body)
		for _, h := range s.Handlers {
			pr.begin()
			pr.buf.WriteString("except")
			if h.Type != nil {
				pr.buf.WriteByte(' ')
				pr.expr(h.Type, precLambda)
				if h.Name != nil {
					pr.buf.WriteString(" as ")
					pr.buf.WriteString(h.Name.Name)
				}
			}
			pr.buf.WriteByte(':')
			pr.end()
			pr.block(h.Body)
		}
		if s.Else != nil {
			pr.line("else:")
			pr.block(s.Else)
		}
		if s.Finally != nil || len(s.Handlers) == 0 {
			pr.line("finally:")
			pr.block(s.Finally)
		}

	case *WithStmt:
		pr.begin()
		pr.buf.WriteString("with ")
		for i, item := range s.Items {
			if i > 0 {
				pr.buf.WriteString(", ")
			}
			pr.expr(item.X, precLambda)
			if item.Vars != nil {
				pr.buf.WriteString(" as ")
				pr.expr(item.Vars, precAtom)
			}
		}
		pr.buf.WriteByte(':')
		pr.end()
		pr.block(s.Body)

	case *DefStmt:
		pr.decorators(s.Decorators)
		pr.begin()
		fmt.Fprintf(&pr.buf, "def %s(", s.Name.Name)
		pr.params(s.Params)
		pr.buf.WriteByte(')')
		if s.Returns != nil {
			pr.buf.WriteString(" -> ")
			pr.expr(s.Returns, precLambda)
		}
		pr.buf.WriteByte(':')
		pr.end()
		pr.block(s.Body)

	case *ClassStmt:
		pr.decorators(s.Decorators)
		pr.begin()
		fmt.Fprintf(&pr.buf, "class %s", s.Name.Name)
		if len(s.Bases) > 0 {
			pr.buf.WriteByte('(')
			pr.commaList(s.Bases, precLambda)
			pr.buf.WriteByte(')')
		}
		pr.buf.WriteByte(':')
		pr.end()
		pr.block(s.Body)

	default:
		panic(fmt.Sprintf("Format: unexpected statement type %T", s))
	}
}

func (pr *printer) ifStmt(s *IfStmt, keyword string) {
	pr.begin()
	pr.buf.WriteString(keyword)
	pr.buf.WriteByte(' ')
	pr.expr(s.Cond, precLambda)
	pr.buf.WriteByte(':')
	pr.end()
	pr.block(s.True)
	if len(s.False) == 1 {
		if elif, ok := s.False[0].(*IfStmt); ok && elif.If.IsValid() && elif.If == s.ElsePos {
			pr.ifStmt(elif, "elif")
			return
		}
	}
	if s.False != nil {
		pr.line("else:")
		pr.block(s.False)
	}
}

func (pr *printer) decorators(decorators []Expr) {
	for _, d := range decorators {
		pr.begin()
		pr.buf.WriteByte('@')
		pr.expr(d, precLambda)
		pr.end()
	}
}

func importNames(names []*ImportName) string {
	var parts []string
	for _, name := range names {
		if name.AsName != nil {
			parts = append(parts, name.Name+" as "+name.AsName.Name)
		} else {
			parts = append(parts, name.Name)
		}
	}
	return strings.Join(parts, ", ")
}

func (pr *printer) params(params []*Param) {
	for i, param := range params {
		if i > 0 {
			pr.buf.WriteString(", ")
		}
		switch param.Kind {
		case ParamSlash:
			pr.buf.WriteByte('/')
			continue
		case ParamStar:
			pr.buf.WriteByte('*')
		case ParamStarStar:
			pr.buf.WriteString("**")
		}
		if param.Name != nil {
			pr.buf.WriteString(param.Name.Name)
		}
		if param.Annotation != nil {
			pr.buf.WriteString(": ")
			pr.expr(param.Annotation, precLambda)
		}
		if param.Default != nil {
			if param.Annotation != nil {
				pr.buf.WriteString(" = ")
			} else {
				pr.buf.WriteByte('=')
			}
			pr.expr(param.Default, precLambda)
		}
	}
}

// exprList prints an expression in a context where a bare tuple or a
// yield expression is permitted, such as the right side of an
// assignment.
func (pr *printer) exprList(x Expr) {
	pr.expr(x, precLowest)
}

// target prints a binding target. Tuples are printed bare.
func (pr *printer) target(x Expr) {
	if tuple, ok := x.(*TupleExpr); ok && len(tuple.List) > 0 {
		pr.tupleElems(tuple.List)
		return
	}
	pr.expr(x, precPipe)
}

func (pr *printer) commaList(list []Expr, prec int) {
	for i, x := range list {
		if i > 0 {
			pr.buf.WriteString(", ")
		}
		pr.expr(x, prec)
	}
}

func (pr *printer) tupleElems(list []Expr) {
	pr.commaList(list, precLambda)
	if len(list) == 1 {
		pr.buf.WriteByte(',')
	}
}

// expr prints x, parenthesized if its precedence is below prec.
func (pr *printer) expr(x Expr, prec int) {
	if exprPrec(x) < prec {
		pr.buf.WriteByte('(')
		defer pr.buf.WriteByte(')')
	}

	switch x := x.(type) {
	case *Ident:
		pr.buf.WriteString(x.Name)

	case *Literal:
		pr.literal(x)

	case *FStringExpr:
		if x.Raw != "" {
			pr.buf.WriteString(x.Raw)
		} else {
			pr.buf.WriteString("f'")
			pr.fstringParts(x.Parts)
			pr.buf.WriteByte('\'')
		}

	case *CallExpr:
		pr.expr(x.Fn, precAtom)
		pr.buf.WriteByte('(')
		for i, arg := range x.Args {
			if i > 0 {
				pr.buf.WriteString(", ")
			}
			pr.expr(arg, precLambda)
		}
		pr.buf.WriteByte(')')

	case *KeywordArg:
		pr.buf.WriteString(x.Name)
		pr.buf.WriteByte('=')
		pr.expr(x.Value, precLambda)

	case *StarredExpr:
		pr.buf.WriteString(x.Op.String())
		pr.expr(x.X, precPipe)

	case *DotExpr:
		if lit, ok := x.X.(*Literal); ok && (lit.Token == INT || lit.Token == FLOAT) {
			// 1.real would scan as a float.
			pr.buf.WriteByte('(')
			pr.expr(x.X, precLowest)
			pr.buf.WriteByte(')')
		} else {
			pr.expr(x.X, precAtom)
		}
		pr.buf.WriteByte('.')
		pr.buf.WriteString(x.Name)

	case *IndexExpr:
		pr.expr(x.X, precAtom)
		pr.buf.WriteByte('[')
		if tuple, ok := x.Y.(*TupleExpr); ok && len(tuple.List) > 0 {
			for i, elem := range tuple.List {
				if i > 0 {
					pr.buf.WriteString(", ")
				}
				pr.subscript(elem)
			}
			if len(tuple.List) == 1 {
				pr.buf.WriteByte(',')
			}
		} else {
			pr.subscript(x.Y)
		}
		pr.buf.WriteByte(']')

	case *SliceExpr:
		pr.subscript(x)

	case *BinaryExpr:
		prec := binaryPrec[x.Op]
		if x.Op == STARSTAR {
			// Right-associative; the left operand must be a primary.
			pr.expr(x.X, precAtom)
			pr.buf.WriteString(" ** ")
			pr.expr(x.Y, precUnary)
			break
		}
		pr.expr(x.X, prec)
		fmt.Fprintf(&pr.buf, " %s ", x.Op)
		pr.expr(x.Y, prec+1)

	case *CompareExpr:
		pr.expr(x.X, precPipe)
		for i, op := range x.Ops {
			fmt.Fprintf(&pr.buf, " %s ", op)
			pr.expr(x.Ys[i], precPipe)
		}

	case *UnaryExpr:
		if x.Op == NOT {
			pr.buf.WriteString("not ")
			pr.expr(x.X, precNot)
		} else {
			pr.buf.WriteString(x.Op.String())
			pr.expr(x.X, precUnary)
		}

	case *CondExpr:
		pr.expr(x.True, precOr)
		pr.buf.WriteString(" if ")
		pr.expr(x.Cond, precOr)
		pr.buf.WriteString(" else ")
		pr.expr(x.False, precCond)

	case *LambdaExpr:
		pr.buf.WriteString("lambda")
		if len(x.Params) > 0 {
			pr.buf.WriteByte(' ')
			pr.params(x.Params)
		}
		pr.buf.WriteString(": ")
		pr.expr(x.Body, precLambda)

	case *ListExpr:
		pr.buf.WriteByte('[')
		pr.commaList(x.List, precLambda)
		pr.buf.WriteByte(']')

	case *TupleExpr:
		pr.buf.WriteByte('(')
		pr.tupleElems(x.List)
		pr.buf.WriteByte(')')

	case *SetExpr:
		pr.buf.WriteByte('{')
		pr.commaList(x.List, precLambda)
		pr.buf.WriteByte('}')

	case *DictExpr:
		pr.buf.WriteByte('{')
		for i, entry := range x.List {
			if i > 0 {
				pr.buf.WriteString(", ")
			}
			pr.expr(entry, precLambda)
		}
		pr.buf.WriteByte('}')

	case *DictEntry:
		pr.expr(x.Key, precLambda)
		pr.buf.WriteString(": ")
		pr.expr(x.Value, precLambda)

	case *Comprehension:
		open, close := "[", "]"
		switch x.Kind {
		case SetComp, DictComp:
			open, close = "{", "}"
		case GeneratorExp:
			open, close = "(", ")"
		}
		pr.buf.WriteString(open)
		pr.comprehension(x)
		pr.buf.WriteString(close)

	case *NamedExpr:
		// Assignment expressions are always parenthesized.
		if prec <= precNamed {
			pr.buf.WriteByte('(')
			defer pr.buf.WriteByte(')')
		}
		pr.buf.WriteString(x.Target.Name)
		pr.buf.WriteString(" := ")
		pr.expr(x.Value, precLambda)

	case *YieldExpr:
		pr.buf.WriteString("yield")
		if x.From {
			pr.buf.WriteString(" from ")
			pr.expr(x.Value, precLambda)
		} else if x.Value != nil {
			pr.buf.WriteByte(' ')
			pr.exprList(x.Value)
		}

	case *FormattedValue:
		pr.buf.WriteString("{")
		pr.expr(x.X, precLambda)
		pr.buf.WriteString("}")

	default:
		panic(fmt.Sprintf("Format: unexpected expression type %T", x))
	}
}

func (pr *printer) comprehension(x *Comprehension) {
	pr.expr(x.Body, precLambda)
	for _, clause := range x.Clauses {
		switch clause := clause.(type) {
		case *ForClause:
			pr.buf.WriteString(" for ")
			pr.target(clause.Vars)
			pr.buf.WriteString(" in ")
			pr.expr(clause.X, precOr)
		case *IfClause:
			pr.buf.WriteString(" if ")
			pr.expr(clause.Cond, precOr)
		}
	}
}

func (pr *printer) subscript(x Expr) {
	slice, ok := x.(*SliceExpr)
	if !ok {
		pr.expr(x, precLambda)
		return
	}
	if slice.Lo != nil {
		pr.expr(slice.Lo, precLambda)
	}
	pr.buf.WriteByte(':')
	if slice.Hi != nil {
		pr.expr(slice.Hi, precLambda)
	}
	if slice.Step != nil {
		pr.buf.WriteByte(':')
		pr.expr(slice.Step, precLambda)
	}
}

// fstringParts prints the body of a single-quoted f-string.
func (pr *printer) fstringParts(parts []Expr) {
	for _, part := range parts {
		switch part := part.(type) {
		case *Literal:
			s := part.Value.(string)
			q := quote(s, false, false)
			q = q[1 : len(q)-1]
			q = strings.ReplaceAll(q, `\"`, `"`)
			q = strings.ReplaceAll(q, `'`, `\'`)
			q = strings.ReplaceAll(q, "{", "{{")
			q = strings.ReplaceAll(q, "}", "}}")
			pr.buf.WriteString(q)
		case *FormattedValue:
			pr.buf.WriteByte('{')
			inner := FormatExpr(part.X)
			if strings.HasPrefix(inner, "{") {
				pr.buf.WriteByte(' ')
			}
			pr.buf.WriteString(inner)
			if part.Conv != 0 {
				pr.buf.WriteByte('!')
				pr.buf.WriteRune(part.Conv)
			}
			if part.Spec != nil {
				pr.buf.WriteByte(':')
				pr.fstringParts(part.Spec.Parts)
			}
			pr.buf.WriteByte('}')
		}
	}
}

func (pr *printer) literal(x *Literal) {
	if x.Raw != "" {
		pr.buf.WriteString(x.Raw)
		return
	}
	switch x.Token {
	case STRING:
		pr.buf.WriteString(Quote(x.Value.(string), false))
	case BYTES:
		pr.buf.WriteString(Quote(x.Value.(string), true))
	case INT:
		switch v := x.Value.(type) {
		case int64:
			pr.buf.WriteString(strconv.FormatInt(v, 10))
		case *big.Int:
			pr.buf.WriteString(v.String())
		}
	case FLOAT, IMAG:
		v := x.Value.(float64)
		var s string
		switch {
		case math.IsInf(v, +1):
			s = "1e999"
		case math.IsInf(v, -1):
			s = "-1e999"
		default:
			s = strconv.FormatFloat(v, 'g', -1, 64)
			if !strings.ContainsAny(s, ".eEn") {
				s += ".0"
			}
		}
		pr.buf.WriteString(s)
		if x.Token == IMAG {
			pr.buf.WriteByte('j')
		}
	default:
		pr.buf.WriteString(x.Token.String())
	}
}
