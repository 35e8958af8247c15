// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// This file defines a recursive-descent parser for Python.
// The LL(1) grammar of Python and the syntax tree are described in
// https://docs.python.org/3/reference/grammar.html.

import (
	"log"
)

// Enable this flag to print the token stream and log.Fatal on the first error.
const debug = false

// Parse parses the input data and returns the corresponding parse tree.
//
// If src != nil, Parse parses the source from src and the filename
// is only used when recording position information.
// The type of the argument for the src parameter must be string,
// []byte, or io.Reader.
// If src == nil, Parse parses the file specified by filename.
func Parse(filename string, src interface{}) (f *File, err error) {
	in, err := newScanner(filename, src)
	if err != nil {
		return nil, err
	}
	p := parser{in: in}
	defer p.in.recover(&err)

	p.nextToken() // read first lookahead token
	f = p.parseFile()
	if f != nil {
		f.Path = filename
	}
	return f, nil
}

// ParseCompoundStmt parses a single compound statement:
// a blank line, a def, class, if, for, while, try or with statement,
// or a semicolon-separated list of simple statements followed by a
// newline. (Compound statements must be terminated by a blank line.)
// ParseCompoundStmt does not consume any following input.
// The parser calls the readline function each
// time it needs a new line of input.
func ParseCompoundStmt(filename string, readline func() ([]byte, error)) (f *File, err error) {
	in, err := newScanner(filename, readline)
	if err != nil {
		return nil, err
	}

	p := parser{in: in}
	defer p.in.recover(&err)

	p.nextToken() // read first lookahead token

	var stmts []Stmt
	switch p.tok {
	case DEF, CLASS, IF, FOR, WHILE, TRY, WITH, AT:
		stmts = p.parseStmt(stmts)
	case NEWLINE:
		// blank line
	default:
		stmts = p.parseSimpleStmt(stmts, false)
		// Require but don't consume newline, to avoid blocking again.
		if p.tok != NEWLINE {
			p.in.errorf(p.in.pos, "invalid syntax")
		}
	}

	return &File{Path: filename, Stmts: stmts}, nil
}

// ParseExpr parses a Python expression.
// A comma-separated list of expressions is parsed as a tuple.
// See Parse for explanation of parameters.
func ParseExpr(filename string, src interface{}) (expr Expr, err error) {
	in, err := newScanner(filename, src)
	if err != nil {
		return nil, err
	}
	p := parser{in: in}
	defer p.in.recover(&err)

	p.nextToken() // read first lookahead token

	// Use parseExprList to handle a trailing comma.
	expr = p.parseExprList(true)

	// A following newline (e.g. "f()\n") appears outside any brackets,
	// on a non-blank line, and thus results in a NEWLINE token.
	if p.tok == NEWLINE {
		p.nextToken()
	}

	if p.tok != EOF {
		p.in.errorf(p.in.pos, "got %#v after expression, want EOF", p.tok)
	}
	return expr, nil
}

type parser struct {
	in     *scanner
	tok    Token
	tokval tokenValue
}

// nextToken advances the scanner and returns the position of the
// previous token.
func (p *parser) nextToken() Position {
	oldpos := p.tokval.pos
	p.tok = p.in.nextToken(&p.tokval)
	// enable to see the token stream
	if debug {
		log.Printf("nextToken: %-20s%+v\n", p.tok, p.tokval.pos)
	}
	return oldpos
}

// file_input = (NEWLINE | stmt)* EOF
func (p *parser) parseFile() *File {
	var stmts []Stmt
	for p.tok != EOF {
		if p.tok == NEWLINE {
			p.nextToken()
			continue
		}
		stmts = p.parseStmt(stmts)
	}
	return &File{Stmts: stmts}
}

func (p *parser) parseStmt(stmts []Stmt) []Stmt {
	switch p.tok {
	case AT:
		return append(stmts, p.parseDecorated())
	case DEF:
		return append(stmts, p.parseDefStmt(nil))
	case CLASS:
		return append(stmts, p.parseClassStmt(nil))
	case IF:
		return append(stmts, p.parseIfStmt())
	case FOR:
		return append(stmts, p.parseForStmt())
	case WHILE:
		return append(stmts, p.parseWhileStmt())
	case TRY:
		return append(stmts, p.parseTryStmt())
	case WITH:
		return append(stmts, p.parseWithStmt())
	case ASYNC:
		p.in.errorf(p.in.pos, "async is not supported")
	case IDENT:
		if p.tokval.raw == "match" && p.matchStmtAhead() {
			p.in.errorf(p.in.pos, "match statement is not supported")
		}
	}
	return p.parseSimpleStmt(stmts, true)
}

// matchStmtAhead reports whether the current statement, which begins
// with the soft keyword 'match', is a match statement: a subject,
// then a colon ending the line, then an indented block that starts
// with 'case'. It scans ahead with a copy of the scanner, so the
// parser's position is unchanged.
//
// In the REPL the lines after the header have not been read yet, and
// a header alone decides. No other statement can begin with 'match'
// and have a colon end its line.
func (p *parser) matchStmtAhead() (ok bool) {
	sc := *p.in
	sc.indentstk = append([]int(nil), p.in.indentstk...)
	sc.readline = nil
	defer func() {
		if recover() != nil {
			ok = false // not a well-formed header
		}
	}()

	var val tokenValue
	next := func() Token { return sc.nextToken(&val) }

	// subject
	n := 0
	for tok := next(); tok != COLON || sc.depth > 0; tok = next() {
		if tok == NEWLINE || tok == EOF {
			return false
		}
		n++
	}
	if n == 0 || next() != NEWLINE {
		return false
	}

	switch next() {
	case INDENT:
		return next() == IDENT && val.raw == "case"
	case EOF, OUTDENT:
		return p.in.readline != nil
	}
	return false
}

// decorated = ('@' test NEWLINE)+ (def_stmt | class_stmt)
func (p *parser) parseDecorated() Stmt {
	var decorators []Expr
	for p.tok == AT {
		p.nextToken()
		decorators = append(decorators, p.parseNamedTest())
		p.consume(NEWLINE)
	}
	switch p.tok {
	case DEF:
		return p.parseDefStmt(decorators)
	case CLASS:
		return p.parseClassStmt(decorators)
	case ASYNC:
		p.in.errorf(p.in.pos, "async is not supported")
	}
	p.in.errorf(p.in.pos, "got %#v, want def or class after decorator", p.tok)
	panic("unreachable")
}

// def_stmt = 'def' IDENT '(' params ')' ['->' test] ':' suite
func (p *parser) parseDefStmt(decorators []Expr) Stmt {
	defpos := p.nextToken() // consume DEF
	id := p.parseIdent()
	p.consume(LPAREN)
	params := p.parseParams(RPAREN, true)
	p.consume(RPAREN)
	var returns Expr
	if p.tok == ARROW {
		p.nextToken()
		returns = p.parseTest()
	}
	p.consume(COLON)
	body := p.parseSuite()
	return &DefStmt{
		Decorators: decorators,
		Def:        defpos,
		Name:       id,
		Function: Function{
			Params:  params,
			Returns: returns,
			Body:    body,
		},
	}
}

// class_stmt = 'class' IDENT ['(' [arguments] ')'] ':' suite
func (p *parser) parseClassStmt(decorators []Expr) Stmt {
	classpos := p.nextToken() // consume CLASS
	id := p.parseIdent()
	var bases []Expr
	if p.tok == LPAREN {
		p.nextToken()
		bases = p.parseArgs()
		p.consume(RPAREN)
	}
	p.consume(COLON)
	body := p.parseSuite()
	return &ClassStmt{
		Decorators: decorators,
		Class:      classpos,
		Name:       id,
		Bases:      bases,
		Body:       body,
	}
}

// parseParams parses a parameter list up to (not including) the
// closing token: RPAREN for def, COLON for lambda.
//
// params = (param ',')* [param]
// param  = IDENT [':' test] ['=' test]
//        | '*' [IDENT [':' test]]
//        | '**' IDENT [':' test]
//        | '/'
func (p *parser) parseParams(closing Token, annotations bool) []*Param {
	var params []*Param
	for p.tok != closing {
		param := new(Param)
		switch p.tok {
		case SLASH:
			param.Kind = ParamSlash
			param.KindPos = p.nextToken()
		case STAR:
			param.Kind = ParamStar
			param.KindPos = p.nextToken()
			if p.tok == IDENT {
				param.Name = p.parseIdent()
				if annotations && p.tok == COLON {
					p.nextToken()
					param.Annotation = p.parseStarOrTest()
				}
			}
		case STARSTAR:
			param.Kind = ParamStarStar
			param.KindPos = p.nextToken()
			param.Name = p.parseIdent()
			if annotations && p.tok == COLON {
				p.nextToken()
				param.Annotation = p.parseTest()
			}
		default:
			param.Name = p.parseIdent()
			if annotations && p.tok == COLON {
				p.nextToken()
				param.Annotation = p.parseTest()
			}
			if p.tok == EQ {
				p.nextToken()
				param.Default = p.parseTest()
			}
		}
		params = append(params, param)
		if p.tok != COMMA {
			break
		}
		p.nextToken()
	}
	checkParams(p.in, params)
	return params
}

// checkParams reports misplaced or duplicate parameters.
func checkParams(in *scanner, params []*Param) {
	seen := make(map[string]bool)
	var star, starstar, slash, defaults bool
	for _, param := range params {
		if starstar {
			in.error(Start(param), "parameter follows **kwargs")
		}
		switch param.Kind {
		case ParamSlash:
			if slash || star {
				in.error(param.KindPos, "invalid / in parameter list")
			}
			slash = true
		case ParamStar:
			if star {
				in.error(param.KindPos, "multiple * parameters")
			}
			star = true
		case ParamStarStar:
			starstar = true
		case ParamNormal:
			if param.Default != nil {
				defaults = true
			} else if defaults && !star {
				in.error(param.Name.NamePos, "non-default parameter follows default parameter")
			}
		}
		if param.Name != nil {
			if seen[param.Name.Name] {
				in.errorf(param.Name.NamePos, "duplicate parameter: %s", param.Name.Name)
			}
			seen[param.Name.Name] = true
		}
	}
}

// suite is typically what follows a COLON (e.g. after DEF or FOR).
//
//	suite = simple_stmt | NEWLINE INDENT stmt+ OUTDENT
func (p *parser) parseSuite() []Stmt {
	if p.tok == NEWLINE {
		p.nextToken() // consume NEWLINE
		p.consume(INDENT)
		var stmts []Stmt
		for p.tok != OUTDENT && p.tok != EOF {
			stmts = p.parseStmt(stmts)
		}
		p.consume(OUTDENT)
		return stmts
	}

	return p.parseSimpleStmt(nil, true)
}

func (p *parser) parseIfStmt() Stmt {
	ifpos := p.nextToken() // consume IF
	cond := p.parseNamedTest()
	p.consume(COLON)
	body := p.parseSuite()
	ifStmt := &IfStmt{
		If:   ifpos,
		Cond: cond,
		True: body,
	}
	tail := ifStmt
	for p.tok == ELIF {
		elifpos := p.nextToken() // consume ELIF
		cond := p.parseNamedTest()
		p.consume(COLON)
		body := p.parseSuite()
		elif := &IfStmt{
			If:   elifpos,
			Cond: cond,
			True: body,
		}
		tail.ElsePos = elifpos
		tail.False = []Stmt{elif}
		tail = elif
	}
	if p.tok == ELSE {
		tail.ElsePos = p.nextToken() // consume ELSE
		p.consume(COLON)
		tail.False = p.parseSuite()
	}
	return ifStmt
}

func (p *parser) parseForStmt() Stmt {
	forpos := p.nextToken() // consume FOR
	vars := p.parseForLoopVariables()
	p.consume(IN)
	x := p.parseExprList(true)
	p.consume(COLON)
	body := p.parseSuite()
	var orelse []Stmt
	if p.tok == ELSE {
		p.nextToken()
		p.consume(COLON)
		orelse = p.parseSuite()
	}
	return &ForStmt{
		For:  forpos,
		Vars: vars,
		X:    x,
		Body: body,
		Else: orelse,
	}
}

func (p *parser) parseWhileStmt() Stmt {
	whilepos := p.nextToken() // consume WHILE
	cond := p.parseNamedTest()
	p.consume(COLON)
	body := p.parseSuite()
	var orelse []Stmt
	if p.tok == ELSE {
		p.nextToken()
		p.consume(COLON)
		orelse = p.parseSuite()
	}
	return &WhileStmt{
		While: whilepos,
		Cond:  cond,
		Body:  body,
		Else:  orelse,
	}
}

// try_stmt = 'try' ':' suite
//            (except_clause ':' suite)+ ['else' ':' suite] ['finally' ':' suite]
//          | 'try' ':' suite 'finally' ':' suite
func (p *parser) parseTryStmt() Stmt {
	trypos := p.nextToken() // consume TRY
	p.consume(COLON)
	stmt := &TryStmt{Try: trypos, Body: p.parseSuite()}
	for p.tok == EXCEPT {
		clause := &ExceptClause{Except: p.nextToken()}
		if p.tok == STAR {
			p.in.error(p.in.pos, "except* is not supported")
		}
		if p.tok != COLON {
			clause.Type = p.parseTest()
			if p.tok == COMMA {
				// except A, B: is Python 2 syntax.
				p.in.error(p.in.pos, "multiple exception types must be parenthesized")
			}
			if p.tok == AS {
				p.nextToken()
				clause.Name = p.parseIdent()
			}
		}
		p.consume(COLON)
		clause.Body = p.parseSuite()
		if len(stmt.Handlers) > 0 && stmt.Handlers[len(stmt.Handlers)-1].Type == nil {
			p.in.error(clause.Except, "default 'except:' must be last")
		}
		stmt.Handlers = append(stmt.Handlers, clause)
	}
	if p.tok == ELSE {
		if len(stmt.Handlers) == 0 {
			p.in.error(p.in.pos, "else clause requires an except clause")
		}
		p.nextToken()
		p.consume(COLON)
		stmt.Else = p.parseSuite()
	}
	if p.tok == FINALLY {
		p.nextToken()
		p.consume(COLON)
		stmt.Finally = p.parseSuite()
		if stmt.Finally == nil {
			stmt.Finally = []Stmt{}
		}
	}
	if len(stmt.Handlers) == 0 && stmt.Finally == nil {
		p.in.errorf(p.in.pos, "got %#v, want except or finally", p.tok)
	}
	return stmt
}

// with_stmt = 'with' with_item (',' with_item)* ':' suite
// with_item = test ['as' expr]
func (p *parser) parseWithStmt() Stmt {
	withpos := p.nextToken() // consume WITH
	var items []*WithItem
	for {
		item := &WithItem{X: p.parseTest()}
		if p.tok == AS {
			p.nextToken()
			item.Vars = p.parseTargetExpr()
			p.checkTarget(item.Vars, "with")
		}
		items = append(items, item)
		if p.tok != COMMA {
			break
		}
		p.nextToken()
	}
	p.consume(COLON)
	return &WithStmt{
		With:  withpos,
		Items: items,
		Body:  p.parseSuite(),
	}
}

// Equivalent to 'exprlist' production in Python grammar.
//
// loop_variables = primary_with_suffix (COMMA primary_with_suffix)* COMMA?
func (p *parser) parseForLoopVariables() Expr {
	// Avoid parseExprList as it would consume the IN token.
	v := p.parseTargetExpr()
	if p.tok == COMMA {
		list := []Expr{v}
		for p.tok == COMMA {
			p.nextToken()
			if p.tok == IN {
				break
			}
			list = append(list, p.parseTargetExpr())
		}
		v = &TupleExpr{List: list}
	}
	p.checkTarget(v, "for")
	return v
}

// parseTargetExpr parses an expression at the precedence of a
// binding target (no comparisons), or a starred target.
func (p *parser) parseTargetExpr() Expr {
	if p.tok == STAR {
		pos := p.nextToken()
		return &StarredExpr{OpPos: pos, Op: STAR, X: p.parseBinopExpr(0)}
	}
	return p.parseBinopExpr(0)
}

// simple_stmt = small_stmt (SEMI small_stmt)* SEMI? NEWLINE
// In REPL mode, it does not consume the NEWLINE.
func (p *parser) parseSimpleStmt(stmts []Stmt, consumeNL bool) []Stmt {
	for {
		stmts = append(stmts, p.parseSmallStmt())
		if p.tok != SEMI {
			break
		}
		p.nextToken() // consume SEMI
		if p.tok == NEWLINE || p.tok == EOF {
			break
		}
	}
	// EOF without NEWLINE occurs in `if x: pass`, for example.
	if p.tok != EOF && consumeNL {
		p.consume(NEWLINE)
	}

	return stmts
}

// small_stmt = RETURN expr?
//            | PASS | BREAK | CONTINUE
//            | DEL targets | RAISE [test [FROM test]]
//            | GLOBAL names | NONLOCAL names | ASSERT test [',' test]
//            | IMPORT ... | FROM ... IMPORT ...
//            | expr ('=' | augop | ':') expr   // assign
//            | expr
func (p *parser) parseSmallStmt() Stmt {
	switch p.tok {
	case RETURN:
		pos := p.nextToken() // consume RETURN
		var result Expr
		if p.tok != EOF && p.tok != NEWLINE && p.tok != SEMI {
			result = p.parseExprList(true)
		}
		return &ReturnStmt{Return: pos, Result: result}

	case BREAK, CONTINUE, PASS:
		tok := p.tok
		pos := p.nextToken() // consume it
		return &BranchStmt{Token: tok, TokenPos: pos}

	case DEL:
		pos := p.nextToken() // consume DEL
		var targets []Expr
		for {
			x := p.parseTargetExpr()
			p.checkTarget(x, "del")
			targets = append(targets, x)
			if p.tok != COMMA {
				break
			}
			p.nextToken()
			if p.tok == NEWLINE || p.tok == EOF || p.tok == SEMI {
				break
			}
		}
		return &DelStmt{Del: pos, Targets: targets}

	case RAISE:
		pos := p.nextToken() // consume RAISE
		stmt := &RaiseStmt{Raise: pos}
		if p.tok != EOF && p.tok != NEWLINE && p.tok != SEMI {
			stmt.Exc = p.parseTest()
			if p.tok == FROM {
				p.nextToken()
				stmt.Cause = p.parseTest()
			}
		}
		return stmt

	case GLOBAL, NONLOCAL:
		tok := p.tok
		pos := p.nextToken()
		stmt := &ScopeStmt{Token: tok, TokenPos: pos}
		for {
			stmt.Names = append(stmt.Names, p.parseIdent())
			if p.tok != COMMA {
				break
			}
			p.nextToken()
		}
		return stmt

	case ASSERT:
		pos := p.nextToken()
		stmt := &AssertStmt{Assert: pos, Test: p.parseTest()}
		if p.tok == COMMA {
			p.nextToken()
			stmt.Msg = p.parseTest()
		}
		return stmt

	case IMPORT:
		return p.parseImportStmt()

	case FROM:
		return p.parseImportFromStmt()
	}

	// Assignment
	x := p.parseExprOrYield()
	switch p.tok {
	case EQ:
		targets := []Expr{x}
		var oppos Position
		var value Expr
		for p.tok == EQ {
			oppos = p.nextToken() // consume EQ
			value = p.parseExprOrYield()
			if p.tok == EQ {
				targets = append(targets, value)
			}
		}
		for _, target := range targets {
			p.checkTarget(target, "assignment")
		}
		return &AssignStmt{Targets: targets, OpPos: oppos, Value: value}

	case PLUS_EQ, MINUS_EQ, STAR_EQ, SLASH_EQ, SLASHSLASH_EQ, PERCENT_EQ,
		AMP_EQ, PIPE_EQ, CIRCUMFLEX_EQ, LTLT_EQ, GTGT_EQ, AT_EQ, STARSTAR_EQ:
		op := p.tok.BinaryOp()
		pos := p.nextToken() // consume op
		switch x.(type) {
		case *Ident, *DotExpr, *IndexExpr:
		default:
			p.in.errorf(Start(x), "'%s' is an illegal expression for augmented assignment", describe(x))
		}
		value := p.parseExprOrYield()
		return &AugAssignStmt{Target: x, OpPos: pos, Op: op, Value: value}

	case COLON:
		p.nextToken() // consume COLON
		switch x.(type) {
		case *Ident, *DotExpr, *IndexExpr:
		default:
			p.in.errorf(Start(x), "only single target (not %s) can be annotated", describe(x))
		}
		stmt := &AnnAssignStmt{Target: x, Annotation: p.parseTest()}
		if p.tok == EQ {
			p.nextToken()
			stmt.Value = p.parseExprOrYield()
		}
		return stmt
	}

	// Expression statement (e.g. function call, docstring).
	return &ExprStmt{X: x}
}

// parseExprOrYield parses a yield expression or an expression list.
func (p *parser) parseExprOrYield() Expr {
	if p.tok == YIELD {
		return p.parseYield()
	}
	return p.parseExprList(true)
}

// yield_expr = 'yield' [testlist] | 'yield' 'from' test
func (p *parser) parseYield() Expr {
	pos := p.nextToken() // consume YIELD
	y := &YieldExpr{Yield: pos}
	if p.tok == FROM {
		p.nextToken()
		y.From = true
		y.Value = p.parseTest()
		return y
	}
	if !terminatesExprList(p.tok) {
		y.Value = p.parseExprList(true)
	}
	return y
}

// import_stmt = 'import' dotted_name ['as' IDENT] (',' ...)*
func (p *parser) parseImportStmt() Stmt {
	pos := p.nextToken() // consume IMPORT
	stmt := &ImportStmt{Import: pos}
	for {
		name := &ImportName{NamePos: p.tokval.pos, Name: p.parseDottedName()}
		if p.tok == AS {
			p.nextToken()
			name.AsName = p.parseIdent()
		}
		stmt.Names = append(stmt.Names, name)
		if p.tok != COMMA {
			break
		}
		p.nextToken()
	}
	return stmt
}

// import_from = 'from' ('.'* dotted_name | '.'+) 'import' ('*' | '(' names ')' | names)
func (p *parser) parseImportFromStmt() Stmt {
	pos := p.nextToken() // consume FROM
	stmt := &ImportFromStmt{From: pos}
	for p.tok == DOT || p.tok == ELLIPSIS {
		if p.tok == DOT {
			stmt.Level++
		} else {
			stmt.Level += 3
		}
		p.nextToken()
	}
	if p.tok != IMPORT {
		stmt.Module = p.parseDottedName()
	} else if stmt.Level == 0 {
		p.in.errorf(p.in.pos, "got %#v, want module name", p.tok)
	}
	p.consume(IMPORT)

	if p.tok == STAR {
		stmt.Names = []*ImportName{{NamePos: p.nextToken(), Name: "*"}}
		return stmt
	}

	paren := p.tok == LPAREN
	if paren {
		p.nextToken()
	}
	for {
		id := p.parseIdent()
		name := &ImportName{NamePos: id.NamePos, Name: id.Name}
		if p.tok == AS {
			p.nextToken()
			name.AsName = p.parseIdent()
		}
		stmt.Names = append(stmt.Names, name)
		if p.tok != COMMA {
			break
		}
		p.nextToken()
		if paren && p.tok == RPAREN {
			break
		}
	}
	if paren {
		stmt.Rparen = p.consume(RPAREN)
	}
	return stmt
}

func (p *parser) parseDottedName() string {
	name := p.parseIdent().Name
	for p.tok == DOT {
		p.nextToken()
		name += "." + p.parseIdent().Name
	}
	return name
}

// consume consumes a token of the specified type, or reports an error.
// It returns the position of the token.
func (p *parser) consume(t Token) Position {
	if p.tok != t {
		p.in.errorf(p.in.pos, "got %#v, want %#v", p.tok, t)
	}
	return p.nextToken()
}

// exprlist = (test | '*' expr) (COMMA (test | '*' expr))* COMMA?
//
// In many cases we must use parseTest to avoid ambiguity such as
// f(x, y) vs. f((x, y)).
func (p *parser) parseExprList(allowTrailingComma bool) Expr {
	x := p.parseStarOrTest()
	if p.tok != COMMA {
		return x
	}

	// tuple
	exprs := []Expr{x}
	for p.tok == COMMA {
		p.nextToken()
		if terminatesExprList(p.tok) {
			if !allowTrailingComma {
				p.in.error(p.in.pos, "unparenthesized tuple with trailing comma")
			}
			break
		}
		exprs = append(exprs, p.parseStarOrTest())
	}
	return &TupleExpr{List: exprs}
}

// parseStarOrTest parses '*' expr or a test.
func (p *parser) parseStarOrTest() Expr {
	if p.tok == STAR {
		pos := p.nextToken()
		return &StarredExpr{OpPos: pos, Op: STAR, X: p.parseBinopExpr(0)}
	}
	return p.parseTest()
}

// parseNamedTest parses a test optionally followed by ':=' test.
func (p *parser) parseNamedTest() Expr {
	x := p.parseTest()
	if p.tok == COLONEQ {
		id, ok := x.(*Ident)
		if !ok {
			p.in.errorf(Start(x), "cannot use assignment expressions with %s", describe(x))
		}
		pos := p.nextToken()
		return &NamedExpr{Target: id, OpPos: pos, Value: p.parseTest()}
	}
	return x
}

// parseNamedOrStar parses a display or argument element.
func (p *parser) parseNamedOrStar() Expr {
	if p.tok == STAR {
		return p.parseStarOrTest()
	}
	return p.parseNamedTest()
}

// parseTest parses a 'test', a single-component expression.
func (p *parser) parseTest() Expr {
	if p.tok == LAMBDA {
		return p.parseLambda(true)
	}

	x := p.parseTestPrec(0)

	// conditional expression (t IF cond ELSE f)
	if p.tok == IF {
		ifpos := p.nextToken()
		cond := p.parseTestPrec(0)
		if p.tok != ELSE {
			p.in.error(ifpos, "conditional expression without else clause")
		}
		elsepos := p.nextToken()
		else_ := p.parseTest()
		return &CondExpr{If: ifpos, Cond: cond, True: x, ElsePos: elsepos, False: else_}
	}

	return x
}

// parseTestNoCond parses a a single-component expression without
// consuming a trailing 'if expr else expr'.
func (p *parser) parseTestNoCond() Expr {
	if p.tok == LAMBDA {
		return p.parseLambda(false)
	}
	return p.parseTestPrec(0)
}

// parseLambda parses a lambda expression.
// The allowCond flag allows the body to be an 'a if b else c' conditional.
func (p *parser) parseLambda(allowCond bool) Expr {
	lambda := p.nextToken()
	params := p.parseParams(COLON, false)
	p.consume(COLON)

	var body Expr
	if allowCond {
		body = p.parseTest()
	} else {
		body = p.parseTestNoCond()
	}

	return &LambdaExpr{
		Lambda: lambda,
		Params: params,
		Body:   body,
	}
}

// Levels of the logical operators handled by parseTestPrec.
const (
	logicalOr = iota
	logicalAnd
	logicalNot
)

func (p *parser) parseTestPrec(prec int) Expr {
	switch prec {
	case logicalOr, logicalAnd:
		op := OR
		if prec == logicalAnd {
			op = AND
		}
		x := p.parseTestPrec(prec + 1)
		for p.tok == op {
			pos := p.nextToken()
			y := p.parseTestPrec(prec + 1)
			x = &BinaryExpr{OpPos: pos, Op: op, X: x, Y: y}
		}
		return x
	}

	// not_test = 'not' not_test | comparison
	if p.tok == NOT {
		pos := p.nextToken()
		x := p.parseTestPrec(logicalNot)
		return &UnaryExpr{OpPos: pos, Op: NOT, X: x}
	}
	return p.parseComparison()
}

// comparison = expr (comp_op expr)*
func (p *parser) parseComparison() Expr {
	x := p.parseBinopExpr(0)
	var cmp *CompareExpr
	for {
		var op Token
		switch p.tok {
		case LT, GT, LE, GE, EQL, NEQ, IN:
			op = p.tok
			p.nextToken()
		case IS:
			op = IS
			p.nextToken()
			if p.tok == NOT {
				op = IS_NOT
				p.nextToken()
			}
		case NOT:
			// In this position, NOT must be followed by IN.
			p.nextToken()
			if p.tok != IN {
				p.in.errorf(p.in.pos, "got %#v, want in", p.tok)
			}
			p.nextToken()
			op = NOT_IN
		default:
			return x
		}
		if cmp == nil {
			cmp = &CompareExpr{X: x}
			x = cmp
		}
		cmp.Ops = append(cmp.Ops, op)
		cmp.Ys = append(cmp.Ys, p.parseBinopExpr(0))
	}
}

// binopPrec maps each binary operator to its precedence level.
// Higher levels bind more tightly.
var binopPrec = map[Token]int{
	PIPE:       0,
	CIRCUMFLEX: 1,
	AMP:        2,
	LTLT:       3,
	GTGT:       3,
	PLUS:       4,
	MINUS:      4,
	STAR:       5,
	AT:         5,
	SLASH:      5,
	SLASHSLASH: 5,
	PERCENT:    5,
}

// parseBinopExpr parses a left-associative binary expression
// whose operators have precedence at least prec.
func (p *parser) parseBinopExpr(prec int) Expr {
	x := p.parseFactor()
	for {
		opprec, ok := binopPrec[p.tok]
		if !ok || opprec < prec {
			return x
		}
		op := p.tok
		pos := p.nextToken()
		y := p.parseBinopExpr(opprec + 1)
		x = &BinaryExpr{OpPos: pos, Op: op, X: x, Y: y}
	}
}

// factor = ('+' | '-' | '~') factor | power
func (p *parser) parseFactor() Expr {
	switch p.tok {
	case PLUS, MINUS, TILDE:
		op := p.tok
		pos := p.nextToken()
		x := p.parseFactor()
		return &UnaryExpr{OpPos: pos, Op: op, X: x}
	}
	return p.parsePower()
}

// power = primary_with_suffix ['**' factor]
func (p *parser) parsePower() Expr {
	if p.tok == AWAIT {
		p.in.errorf(p.in.pos, "await is not supported")
	}
	x := p.parsePrimaryWithSuffix()
	if p.tok == STARSTAR {
		pos := p.nextToken()
		y := p.parseFactor()
		return &BinaryExpr{OpPos: pos, Op: STARSTAR, X: x, Y: y}
	}
	return x
}

// primary_with_suffix = primary
//                     | primary '.' IDENT
//                     | primary slice_suffix
//                     | primary call_suffix
func (p *parser) parsePrimaryWithSuffix() Expr {
	x := p.parsePrimary()
	for {
		switch p.tok {
		case DOT:
			dot := p.nextToken()
			id := p.parseIdent()
			x = &DotExpr{Dot: dot, X: x, Name: id.Name, NamePos: id.NamePos}
		case LBRACK:
			x = p.parseSliceSuffix(x)
		case LPAREN:
			x = p.parseCallSuffix(x)
		default:
			return x
		}
	}
}

// slice_suffix = '[' subscript (',' subscript)* [','] ']'
func (p *parser) parseSliceSuffix(x Expr) Expr {
	lbrack := p.nextToken()
	var y Expr
	first := p.parseSubscript()
	if p.tok == COMMA {
		list := []Expr{first}
		for p.tok == COMMA {
			p.nextToken()
			if p.tok == RBRACK {
				break
			}
			list = append(list, p.parseSubscript())
		}
		y = &TupleExpr{List: list}
	} else {
		y = first
	}
	rbrack := p.consume(RBRACK)
	return &IndexExpr{X: x, Lbrack: lbrack, Y: y, Rbrack: rbrack}
}

// subscript = test | [test] ':' [test] [':' [test]]
func (p *parser) parseSubscript() Expr {
	var lo Expr
	if p.tok != COLON {
		lo = p.parseNamedOrStar()
		if p.tok != COLON {
			return lo
		}
	}
	slice := &SliceExpr{Lo: lo, Colon: p.nextToken()}
	if p.tok != COLON && p.tok != COMMA && p.tok != RBRACK {
		slice.Hi = p.parseTest()
	}
	if p.tok == COLON {
		p.nextToken()
		if p.tok != COMMA && p.tok != RBRACK {
			slice.Step = p.parseTest()
		}
	}
	return slice
}

// call_suffix = '(' [args] ')'
func (p *parser) parseCallSuffix(fn Expr) Expr {
	lparen := p.consume(LPAREN)
	var rparen Position
	var args []Expr
	if p.tok == RPAREN {
		rparen = p.nextToken()
	} else {
		args = p.parseArgs()
		rparen = p.consume(RPAREN)
	}
	return &CallExpr{Fn: fn, Lparen: lparen, Args: args, Rparen: rparen}
}

// parseArgs parses a list of actual parameter values (arguments).
// It mirrors the structure of parseParams.
// arg = test | IDENT '=' test | '*' test | '**' test
func (p *parser) parseArgs() []Expr {
	var args []Expr
	for p.tok != RPAREN {
		var x Expr
		switch p.tok {
		case STAR, STARSTAR:
			op := p.tok
			pos := p.nextToken()
			x = &StarredExpr{OpPos: pos, Op: op, X: p.parseTest()}
		default:
			x = p.parseNamedTest()
			if p.tok == EQ {
				id, ok := x.(*Ident)
				if !ok {
					p.in.errorf(Start(x), "expression %s cannot be used as a keyword argument name", describe(x))
				}
				p.nextToken()
				x = &KeywordArg{NamePos: id.NamePos, Name: id.Name, Value: p.parseTest()}
			} else if p.tok == FOR {
				// Sole unparenthesized generator argument: f(x for x in y).
				if len(args) > 0 {
					p.in.error(Start(x), "generator expression must be parenthesized")
				}
				return []Expr{p.parseComprehensionSuffix(GeneratorExp, Position{}, x, RPAREN)}
			}
		}
		args = append(args, x)
		if p.tok != COMMA {
			break
		}
		p.nextToken()
	}
	checkArgs(p.in, args)
	return args
}

// checkArgs rejects positional arguments that follow keyword
// arguments or ** unpacking.
func checkArgs(in *scanner, args []Expr) {
	var keyword, kwstar bool
	for _, arg := range args {
		switch arg := arg.(type) {
		case *KeywordArg:
			keyword = true
		case *StarredExpr:
			if arg.Op == STARSTAR {
				kwstar = true
			} else if kwstar {
				in.error(arg.OpPos, "iterable argument unpacking follows keyword argument unpacking")
			}
		default:
			if kwstar {
				in.error(Start(arg), "positional argument follows keyword argument unpacking")
			}
			if keyword {
				in.error(Start(arg), "positional argument follows keyword argument")
			}
		}
	}
}

//	primary = IDENT
//	        | INT | FLOAT | IMAG | STRING | BYTES | FSTRING
//	        | None | True | False | '...'
//	        | '[' ...                    // list literal or comprehension
//	        | '{' ...                    // dict/set literal or comprehension
//	        | '(' ...                    // tuple or parenthesized expression
func (p *parser) parsePrimary() Expr {
	switch p.tok {
	case IDENT:
		return p.parseIdent()

	case INT, FLOAT, IMAG:
		var val interface{}
		tok := p.tok
		switch tok {
		case INT:
			if p.tokval.bigInt != nil {
				val = p.tokval.bigInt
			} else {
				val = p.tokval.int
			}
		case FLOAT, IMAG:
			val = p.tokval.float
		}
		raw := p.tokval.raw
		pos := p.nextToken()
		return &Literal{Token: tok, TokenPos: pos, Raw: raw, Value: val}

	case STRING, BYTES, FSTRING:
		return p.parseStrings()

	case NONE, TRUE, FALSE, ELLIPSIS:
		tok := p.tok
		pos := p.nextToken()
		var val interface{}
		switch tok {
		case TRUE:
			val = true
		case FALSE:
			val = false
		}
		return &Literal{Token: tok, TokenPos: pos, Value: val}

	case LBRACK:
		return p.parseList()

	case LBRACE:
		return p.parseDictOrSet()

	case LPAREN:
		lparen := p.nextToken()
		if p.tok == RPAREN {
			// empty tuple
			rparen := p.nextToken()
			return &TupleExpr{Lparen: lparen, Rparen: rparen}
		}
		if p.tok == YIELD {
			y := p.parseYield()
			p.consume(RPAREN)
			return y
		}
		first := p.parseNamedOrStar()
		if p.tok == FOR {
			return p.parseComprehensionSuffix(GeneratorExp, lparen, first, RPAREN)
		}
		if p.tok != COMMA {
			if _, ok := first.(*StarredExpr); ok {
				p.in.error(Start(first), "cannot use starred expression here")
			}
			p.consume(RPAREN)
			return first
		}
		list := []Expr{first}
		for p.tok == COMMA {
			p.nextToken()
			if p.tok == RPAREN {
				break
			}
			list = append(list, p.parseNamedOrStar())
		}
		rparen := p.consume(RPAREN)
		return &TupleExpr{Lparen: lparen, List: list, Rparen: rparen}
	}
	p.in.errorf(p.in.pos, "got %#v, want primary expression", p.tok)
	panic("unreachable")
}

// parseStrings parses a sequence of adjacent string, bytes and
// f-string literals, which Python concatenates.
func (p *parser) parseStrings() Expr {
	pos := p.tokval.pos
	var (
		raws    []string
		parts   []Expr
		isBytes = p.tok == BYTES
		fstring bool
		text    string
	)
	for p.tok == STRING || p.tok == BYTES || p.tok == FSTRING {
		if (p.tok == BYTES) != isBytes {
			p.in.error(p.tokval.pos, "cannot mix bytes and nonbytes literals")
		}
		raws = append(raws, p.tokval.raw)
		if p.tok == FSTRING {
			fstring = true
			if text != "" {
				parts = append(parts, &Literal{Token: STRING, Value: text})
				text = ""
			}
			parts = append(parts, p.parseFString(p.tokval.pos, p.tokval.raw, p.tokval.string, p.tokval.rawStr).Parts...)
		} else {
			text += p.tokval.string
		}
		p.nextToken()
	}
	raw := joinRaw(raws)
	if !fstring {
		tok := STRING
		if isBytes {
			tok = BYTES
		}
		return &Literal{Token: tok, TokenPos: pos, Raw: raw, Value: text}
	}
	if text != "" {
		parts = append(parts, &Literal{Token: STRING, Value: text})
	}
	return &FStringExpr{TokenPos: pos, Raw: raw, Parts: mergeLiterals(parts)}
}

func joinRaw(raws []string) string {
	if len(raws) == 1 {
		return raws[0]
	}
	n := 0
	for _, r := range raws {
		n += len(r) + 1
	}
	buf := make([]byte, 0, n)
	for i, r := range raws {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, r...)
	}
	return string(buf)
}

// mergeLiterals joins adjacent literal parts of an f-string and drops
// empty ones.
func mergeLiterals(parts []Expr) []Expr {
	var out []Expr
	for _, part := range parts {
		if lit, ok := part.(*Literal); ok {
			s := lit.Value.(string)
			if s == "" {
				continue
			}
			if n := len(out); n > 0 {
				if prev, ok := out[n-1].(*Literal); ok {
					out[n-1] = &Literal{Token: STRING, TokenPos: prev.TokenPos, Value: prev.Value.(string) + s}
					continue
				}
			}
		}
		out = append(out, part)
	}
	return out
}

// list = '[' ']'
//      | '[' expr ']'
//      | '[' expr expr_list ']'
//      | '[' expr (FOR loop_variables IN expr)+ ']'
func (p *parser) parseList() Expr {
	lbrack := p.nextToken()
	if p.tok == RBRACK {
		// empty List
		rbrack := p.nextToken()
		return &ListExpr{Lbrack: lbrack, Rbrack: rbrack}
	}

	x := p.parseNamedOrStar()

	if p.tok == FOR {
		// list comprehension
		return p.parseComprehensionSuffix(ListComp, lbrack, x, RBRACK)
	}

	exprs := []Expr{x}
	if p.tok == COMMA {
		// multi-item list literal
		exprs = p.parseDisplayTail(exprs, RBRACK)
	}

	rbrack := p.consume(RBRACK)
	return &ListExpr{Lbrack: lbrack, List: exprs, Rbrack: rbrack}
}

func (p *parser) parseDisplayTail(exprs []Expr, closing Token) []Expr {
	for p.tok == COMMA {
		p.nextToken()
		if p.tok == closing {
			break
		}
		exprs = append(exprs, p.parseNamedOrStar())
	}
	return exprs
}

// dict = '{' '}'
//      | '{' dict_entry_list '}'
//      | '{' dict_entry FOR loop_variables IN expr '}'
// set  = '{' expr (',' expr)* '}'
//      | '{' expr FOR ... '}'
func (p *parser) parseDictOrSet() Expr {
	lbrace := p.nextToken()
	if p.tok == RBRACE {
		// empty dict
		rbrace := p.nextToken()
		return &DictExpr{Lbrace: lbrace, Rbrace: rbrace}
	}

	var first Expr
	if p.tok == STARSTAR {
		pos := p.nextToken()
		first = &StarredExpr{OpPos: pos, Op: STARSTAR, X: p.parseBinopExpr(0)}
	} else {
		x := p.parseNamedOrStar()
		if p.tok != COLON {
			// set
			if p.tok == FOR {
				return p.parseComprehensionSuffix(SetComp, lbrace, x, RBRACE)
			}
			exprs := []Expr{x}
			if p.tok == COMMA {
				exprs = p.parseDisplayTail(exprs, RBRACE)
			}
			rbrace := p.consume(RBRACE)
			return &SetExpr{Lbrace: lbrace, List: exprs, Rbrace: rbrace}
		}
		if _, ok := x.(*StarredExpr); ok {
			p.in.error(Start(x), "cannot use a starred expression in a dictionary value")
		}
		colon := p.nextToken()
		first = &DictEntry{Key: x, Colon: colon, Value: p.parseTest()}
		if p.tok == FOR {
			return p.parseComprehensionSuffix(DictComp, lbrace, first, RBRACE)
		}
	}

	entries := []Expr{first}
	for p.tok == COMMA {
		p.nextToken()
		if p.tok == RBRACE {
			break
		}
		entries = append(entries, p.parseDictEntry())
	}

	rbrace := p.consume(RBRACE)
	return &DictExpr{Lbrace: lbrace, List: entries, Rbrace: rbrace}
}

// dict_entry = test ':' test | '**' expr
func (p *parser) parseDictEntry() Expr {
	if p.tok == STARSTAR {
		pos := p.nextToken()
		return &StarredExpr{OpPos: pos, Op: STARSTAR, X: p.parseBinopExpr(0)}
	}
	k := p.parseTest()
	colon := p.consume(COLON)
	v := p.parseTest()
	return &DictEntry{Key: k, Colon: colon, Value: v}
}

// comp_suffix = FOR loopvars IN expr comp_suffix
//             | IF expr comp_suffix
//             | ']'  or  ')'                              (end)
//
// There can be multiple FOR/IF clauses; the first is always a FOR.
func (p *parser) parseComprehensionSuffix(kind ComprehensionKind, lbrace Position, body Expr, endBrace Token) Expr {
	if star, ok := body.(*StarredExpr); ok {
		p.in.error(star.OpPos, "iterable unpacking cannot be used in comprehension")
	}
	var clauses []Node
	for p.tok != endBrace {
		if p.tok == FOR {
			pos := p.nextToken()
			vars := p.parseForLoopVariables()
			in := p.consume(IN)
			// Following Python 3, the operand of IN cannot be:
			// - a conditional expression ('x if y else z'),
			//   due to conflicts in Python grammar
			//  ('if' is used by the comprehension);
			// - a lambda expression
			// - an unparenthesized tuple.
			x := p.parseTestPrec(0)
			clauses = append(clauses, &ForClause{For: pos, Vars: vars, In: in, X: x})
		} else if p.tok == IF {
			pos := p.nextToken()
			cond := p.parseTestNoCond()
			clauses = append(clauses, &IfClause{If: pos, Cond: cond})
		} else if p.tok == ASYNC {
			p.in.errorf(p.in.pos, "async is not supported")
		} else if p.tok == COMMA && !lbrace.IsValid() {
			// f(x for x in y, z)
			p.in.error(Start(body), "generator expression must be parenthesized")
		} else {
			p.in.errorf(p.in.pos, "got %#v, want '%s', for, or if", p.tok, endBrace)
		}
	}
	var rbrace Position
	if lbrace.IsValid() {
		rbrace = p.nextToken()
	}

	return &Comprehension{
		Kind:    kind,
		Lbrack:  lbrace,
		Body:    body,
		Clauses: clauses,
		Rbrack:  rbrace,
	}
}

func (p *parser) parseIdent() *Ident {
	if p.tok != IDENT {
		p.in.errorf(p.in.pos, "got %#v, want identifier", p.tok)
	}
	id := &Ident{
		NamePos: p.tokval.pos,
		Name:    p.tokval.raw,
	}
	p.nextToken()
	return id
}

// checkTarget reports an error if x is not a valid binding target.
func (p *parser) checkTarget(x Expr, context string) {
	switch x := x.(type) {
	case *Ident, *DotExpr, *IndexExpr:
		return
	case *TupleExpr:
		p.checkTargetList(x.List, context)
		return
	case *ListExpr:
		p.checkTargetList(x.List, context)
		return
	case *StarredExpr:
		if x.Op == STAR && context != "del" {
			p.checkTarget(x.X, context)
			return
		}
	}
	if context == "del" {
		p.in.errorf(Start(x), "cannot delete %s", describe(x))
	}
	p.in.errorf(Start(x), "cannot assign to %s", describe(x))
}

func (p *parser) checkTargetList(list []Expr, context string) {
	stars := 0
	for _, elem := range list {
		if star, ok := elem.(*StarredExpr); ok {
			stars++
			if stars > 1 {
				p.in.error(star.OpPos, "multiple starred expressions in assignment")
			}
		}
		p.checkTarget(elem, context)
	}
}

// describe returns a short phrase naming the kind of expression x,
// for use in error messages.
func describe(x Expr) string {
	switch x := x.(type) {
	case *Literal:
		return "literal"
	case *FStringExpr:
		return "f-string expression"
	case *CallExpr:
		return "function call"
	case *CompareExpr:
		return "comparison"
	case *CondExpr:
		return "conditional expression"
	case *LambdaExpr:
		return "lambda"
	case *DictExpr:
		return "dict literal"
	case *SetExpr:
		return "set display"
	case *Comprehension:
		if x.Kind == GeneratorExp {
			return "generator expression"
		}
		return x.Kind.String()[:len(x.Kind.String())-4] + " comprehension"
	case *NamedExpr:
		return "named expression"
	case *YieldExpr:
		return "yield expression"
	case *StarredExpr:
		return "starred"
	case *KeywordArg:
		return "keyword argument"
	case *SliceExpr:
		return "slice"
	case *Ident:
		return "name"
	case *DotExpr:
		return "attribute"
	case *IndexExpr:
		return "subscript"
	case *TupleExpr:
		return "tuple"
	case *ListExpr:
		return "list"
	}
	return "expression"
}

// terminatesExprList reports whether tok terminates an expression list.
func terminatesExprList(tok Token) bool {
	switch tok {
	case EOF, NEWLINE, EQ, RBRACE, RBRACK, RPAREN, SEMI, COLON:
		return true
	}
	if _, ok := augmentedOps[tok]; ok {
		return true
	}
	return false
}
