// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package syntax provides a Python parser, printer and abstract syntax tree.
package syntax

import "strings"

// A Node is a node in a Python syntax tree.
type Node interface {
	// Span returns the start and end position of the expression.
	Span() (start, end Position)
}

// Start returns the start position of the expression.
func Start(n Node) Position {
	start, _ := n.Span()
	return start
}

// End returns the end position of the expression.
func End(n Node) Position {
	_, end := n.Span()
	return end
}

// A File represents a Python module.
type File struct {
	Path  string
	Stmts []Stmt

	index map[Node]int // see Index
}

func (x *File) Span() (start, end Position) {
	if len(x.Stmts) == 0 {
		return
	}
	start, _ = x.Stmts[0].Span()
	_, end = x.Stmts[len(x.Stmts)-1].Span()
	return start, end
}

// Index returns the identity index of node n within the file,
// assigning the next unused index the first time n is seen.
// Indices are used only to label nodes in diagnostics.
func (x *File) Index(n Node) int {
	if x.index == nil {
		x.index = make(map[Node]int)
	}
	i, ok := x.index[n]
	if !ok {
		i = len(x.index) + 1
		x.index[n] = i
	}
	return i
}

// A Stmt is a Python statement.
type Stmt interface {
	Node
	stmt()
}

func (*ExprStmt) stmt()       {}
func (*AssignStmt) stmt()     {}
func (*AugAssignStmt) stmt()  {}
func (*AnnAssignStmt) stmt()  {}
func (*DelStmt) stmt()        {}
func (*BranchStmt) stmt()     {}
func (*ReturnStmt) stmt()     {}
func (*RaiseStmt) stmt()      {}
func (*ScopeStmt) stmt()      {}
func (*AssertStmt) stmt()     {}
func (*ImportStmt) stmt()     {}
func (*ImportFromStmt) stmt() {}
func (*IfStmt) stmt()         {}
func (*WhileStmt) stmt()      {}
func (*ForStmt) stmt()        {}
func (*TryStmt) stmt()        {}
func (*WithStmt) stmt()       {}
func (*DefStmt) stmt()        {}
func (*ClassStmt) stmt()      {}

// An ExprStmt is an expression evaluated for effect.
type ExprStmt struct {
	X Expr
}

func (x *ExprStmt) Span() (start, end Position) {
	return x.X.Span()
}

// An AssignStmt represents a (possibly chained) assignment:
//
//	Targets[0] = Targets[1] = ... = Value
type AssignStmt struct {
	Targets []Expr
	OpPos   Position // position of the final '='
	Value   Expr
}

func (x *AssignStmt) Span() (start, end Position) {
	start, _ = x.Targets[0].Span()
	_, end = x.Value.Span()
	return
}

// An AugAssignStmt represents an augmented assignment: Target Op= Value.
// Op is the binary operator, e.g. PLUS for +=.
type AugAssignStmt struct {
	Target Expr
	OpPos  Position
	Op     Token
	Value  Expr
}

func (x *AugAssignStmt) Span() (start, end Position) {
	start, _ = x.Target.Span()
	_, end = x.Value.Span()
	return
}

// An AnnAssignStmt is an annotated assignment: Target: Annotation [= Value].
type AnnAssignStmt struct {
	Target     Expr
	Annotation Expr
	Value      Expr // may be nil
}

func (x *AnnAssignStmt) Span() (start, end Position) {
	start, _ = x.Target.Span()
	if x.Value != nil {
		_, end = x.Value.Span()
	} else {
		_, end = x.Annotation.Span()
	}
	return
}

// A DelStmt is a del statement.
type DelStmt struct {
	Del     Position
	Targets []Expr
}

func (x *DelStmt) Span() (start, end Position) {
	if len(x.Targets) == 0 {
		return x.Del, x.Del.add("del")
	}
	_, end = x.Targets[len(x.Targets)-1].Span()
	return x.Del, end
}

// A BranchStmt changes the flow of control: break, continue, pass.
type BranchStmt struct {
	Token    Token // = BREAK | CONTINUE | PASS
	TokenPos Position
}

func (x *BranchStmt) Span() (start, end Position) {
	return x.TokenPos, x.TokenPos.add(x.Token.String())
}

// A ReturnStmt returns from a function.
type ReturnStmt struct {
	Return Position
	Result Expr // may be nil
}

func (x *ReturnStmt) Span() (start, end Position) {
	if x.Result == nil {
		return x.Return, x.Return.add("return")
	}
	_, end = x.Result.Span()
	return x.Return, end
}

// A RaiseStmt raises an exception: raise [Exc [from Cause]].
type RaiseStmt struct {
	Raise Position
	Exc   Expr // may be nil
	Cause Expr // may be nil
}

func (x *RaiseStmt) Span() (start, end Position) {
	switch {
	case x.Cause != nil:
		_, end = x.Cause.Span()
	case x.Exc != nil:
		_, end = x.Exc.Span()
	default:
		end = x.Raise.add("raise")
	}
	return x.Raise, end
}

// A ScopeStmt is a global or nonlocal declaration.
type ScopeStmt struct {
	Token    Token // = GLOBAL | NONLOCAL
	TokenPos Position
	Names    []*Ident
}

func (x *ScopeStmt) Span() (start, end Position) {
	_, end = x.Names[len(x.Names)-1].Span()
	return x.TokenPos, end
}

// An AssertStmt is an assertion: assert Test [, Msg].
type AssertStmt struct {
	Assert Position
	Test   Expr
	Msg    Expr // may be nil
}

func (x *AssertStmt) Span() (start, end Position) {
	if x.Msg != nil {
		_, end = x.Msg.Span()
	} else {
		_, end = x.Test.Span()
	}
	return x.Assert, end
}

// An ImportName is one clause of an import statement: Name [as AsName].
// In an ImportStmt, Name is a dotted module path; in an ImportFromStmt
// it is a single identifier, or "*".
type ImportName struct {
	NamePos Position
	Name    string
	AsName  *Ident // may be nil
}

func (x *ImportName) Span() (start, end Position) {
	if x.AsName != nil {
		_, end = x.AsName.Span()
	} else {
		end = x.NamePos.add(x.Name)
	}
	return x.NamePos, end
}

// Binds returns the name bound by this import clause.
func (x *ImportName) Binds() string {
	if x.AsName != nil {
		return x.AsName.Name
	}
	if i := strings.IndexByte(x.Name, '.'); i >= 0 {
		return x.Name[:i]
	}
	return x.Name
}

// An ImportStmt is an import statement: import a.b [as c], ...
type ImportStmt struct {
	Import Position
	Names  []*ImportName
}

func (x *ImportStmt) Span() (start, end Position) {
	_, end = x.Names[len(x.Names)-1].Span()
	return x.Import, end
}

// An ImportFromStmt is a from-import: from [.]*Module import Names.
type ImportFromStmt struct {
	From   Position
	Module string // may be empty for relative imports
	Level  int    // number of leading dots
	Names  []*ImportName
	Rparen Position // position of closing paren, if any
}

func (x *ImportFromStmt) Span() (start, end Position) {
	if x.Rparen.IsValid() {
		return x.From, x.Rparen.add(")")
	}
	_, end = x.Names[len(x.Names)-1].Span()
	return x.From, end
}

// IsStar reports whether this is a wildcard import.
func (x *ImportFromStmt) IsStar() bool {
	return len(x.Names) == 1 && x.Names[0].Name == "*"
}

// An IfStmt is a conditional: If Cond: True; else: False.
// 'elseif' is desugared into a chain of IfStmts.
type IfStmt struct {
	If      Position // IF or ELIF
	Cond    Expr
	True    []Stmt
	ElsePos Position // ELSE or ELIF
	False   []Stmt   // optional
}

func (x *IfStmt) Span() (start, end Position) {
	body := x.False
	if body == nil {
		body = x.True
	}
	_, end = lastSpan(body, x.Cond)
	return x.If, end
}

// A WhileStmt represents a while loop: while Cond: Body; else: Else.
type WhileStmt struct {
	While Position
	Cond  Expr
	Body  []Stmt
	Else  []Stmt // optional
}

func (x *WhileStmt) Span() (start, end Position) {
	body := x.Else
	if body == nil {
		body = x.Body
	}
	_, end = lastSpan(body, x.Cond)
	return x.While, end
}

// A ForStmt represents a loop: for Vars in X: Body; else: Else.
type ForStmt struct {
	For  Position
	Vars Expr // name, or tuple of names
	X    Expr
	Body []Stmt
	Else []Stmt // optional
}

func (x *ForStmt) Span() (start, end Position) {
	body := x.Else
	if body == nil {
		body = x.Body
	}
	_, end = lastSpan(body, x.X)
	return x.For, end
}

// An ExceptClause is one handler of a try statement:
// except [Type [as Name]]: Body.
type ExceptClause struct {
	Except Position
	Type   Expr   // may be nil
	Name   *Ident // may be nil
	Body   []Stmt
}

func (x *ExceptClause) Span() (start, end Position) {
	_, end = lastSpan(x.Body, nil)
	return x.Except, end
}

// A TryStmt is a try statement with handlers, else and finally clauses.
type TryStmt struct {
	Try      Position
	Body     []Stmt
	Handlers []*ExceptClause
	Else     []Stmt // optional
	Finally  []Stmt // optional
}

func (x *TryStmt) Span() (start, end Position) {
	switch {
	case x.Finally != nil:
		_, end = lastSpan(x.Finally, nil)
	case x.Else != nil:
		_, end = lastSpan(x.Else, nil)
	case len(x.Handlers) > 0:
		_, end = x.Handlers[len(x.Handlers)-1].Span()
	default:
		_, end = lastSpan(x.Body, nil)
	}
	return x.Try, end
}

// A WithItem is one context manager of a with statement: X [as Vars].
type WithItem struct {
	X    Expr
	Vars Expr // may be nil
}

// A WithStmt is a with statement.
type WithStmt struct {
	With  Position
	Items []*WithItem
	Body  []Stmt
}

func (x *WithStmt) Span() (start, end Position) {
	_, end = lastSpan(x.Body, nil)
	return x.With, end
}

// A DefStmt represents a function definition, with decorators.
type DefStmt struct {
	Decorators []Expr
	Def        Position
	Name       *Ident
	Function
}

func (x *DefStmt) Span() (start, end Position) {
	_, end = lastSpan(x.Body, x.Name)
	return x.Def, end
}

// Function holds the common parts of a function: its parameters,
// return annotation and body.
type Function struct {
	Params  []*Param
	Returns Expr // return annotation; may be nil
	Body    []Stmt
}

// ParamKind distinguishes the forms of Param.
type ParamKind uint8

const (
	ParamNormal   ParamKind = iota // x, x=1, x: int
	ParamStar                      // *args, or bare * when Name is nil
	ParamStarStar                  // **kwargs
	ParamSlash                     // / marker for positional-only
)

// A Param is one formal parameter of a def or lambda.
type Param struct {
	Kind       ParamKind
	KindPos    Position // position of '*', '**' or '/'
	Name       *Ident   // nil for bare '*' and '/'
	Annotation Expr     // may be nil
	Default    Expr     // may be nil
}

func (x *Param) Span() (start, end Position) {
	if x.Kind != ParamNormal {
		start = x.KindPos
		end = start.add("*")
	} else {
		start = x.Name.NamePos
	}
	if x.Name != nil {
		_, end = x.Name.Span()
	}
	if x.Default != nil {
		_, end = x.Default.Span()
	}
	return
}

// A ClassStmt represents a class definition, with decorators.
// Bases holds the parenthesized arguments, including keyword
// arguments such as metaclass=M.
type ClassStmt struct {
	Decorators []Expr
	Class      Position
	Name       *Ident
	Bases      []Expr
	Body       []Stmt
}

func (x *ClassStmt) Span() (start, end Position) {
	_, end = lastSpan(x.Body, x.Name)
	return x.Class, end
}

func lastSpan(body []Stmt, fallback Node) (start, end Position) {
	if len(body) > 0 {
		return body[len(body)-1].Span()
	}
	if fallback != nil {
		return fallback.Span()
	}
	return
}

// An Expr is a Python expression.
type Expr interface {
	Node
	expr()
}

func (*Ident) expr()          {}
func (*Literal) expr()        {}
func (*FStringExpr) expr()    {}
func (*CallExpr) expr()       {}
func (*KeywordArg) expr()     {}
func (*StarredExpr) expr()    {}
func (*DotExpr) expr()        {}
func (*IndexExpr) expr()      {}
func (*SliceExpr) expr()      {}
func (*BinaryExpr) expr()     {}
func (*CompareExpr) expr()    {}
func (*UnaryExpr) expr()      {}
func (*CondExpr) expr()       {}
func (*LambdaExpr) expr()     {}
func (*ListExpr) expr()       {}
func (*TupleExpr) expr()      {}
func (*SetExpr) expr()        {}
func (*DictExpr) expr()       {}
func (*DictEntry) expr()      {}
func (*Comprehension) expr()  {}
func (*NamedExpr) expr()      {}
func (*YieldExpr) expr()      {}
func (*FormattedValue) expr() {}

// An Ident represents an identifier.
type Ident struct {
	NamePos Position
	Name    string
}

func (x *Ident) Span() (start, end Position) {
	return x.NamePos, x.NamePos.add(x.Name)
}

// A Literal represents a literal constant: a number, string or bytes
// literal, or one of None, True, False and '...'.
type Literal struct {
	Token    Token // = INT | FLOAT | IMAG | STRING | BYTES | NONE | TRUE | FALSE | ELLIPSIS
	TokenPos Position
	Raw      string      // raw text of the token(s) as they appeared in the source; may be empty
	Value    interface{} // = string | int64 | *big.Int | float64 | bool | nil
}

func (x *Literal) Span() (start, end Position) {
	raw := x.Raw
	if raw == "" {
		raw = x.Token.String()
	}
	return x.TokenPos, x.TokenPos.add(raw)
}

// An FStringExpr is an f-string. Its parts are *Literal (STRING)
// and *FormattedValue.
type FStringExpr struct {
	TokenPos Position
	Raw      string // raw text, if parsed; may be empty
	Parts    []Expr
}

func (x *FStringExpr) Span() (start, end Position) {
	raw := x.Raw
	if raw == "" {
		raw = `f""`
	}
	return x.TokenPos, x.TokenPos.add(raw)
}

// A FormattedValue is a replacement field {X!Conv:Spec} of an f-string.
// Conv is 0, 'r', 's' or 'a'. Spec is nil or an *FStringExpr.
type FormattedValue struct {
	Lbrace Position
	X      Expr
	Conv   rune
	Spec   *FStringExpr
}

func (x *FormattedValue) Span() (start, end Position) {
	_, end = x.X.Span()
	return x.Lbrace, end
}

// A CallExpr represents a function call expression: Fn(Args).
// Each element of Args is an ordinary expression, a *KeywordArg,
// or a *StarredExpr (*x or **x).
type CallExpr struct {
	Fn     Expr
	Lparen Position
	Args   []Expr
	Rparen Position
}

func (x *CallExpr) Span() (start, end Position) {
	start, _ = x.Fn.Span()
	return start, x.Rparen.add(")")
}

// A KeywordArg is a keyword argument name=Value of a call.
type KeywordArg struct {
	NamePos Position
	Name    string
	Value   Expr
}

func (x *KeywordArg) Span() (start, end Position) {
	_, end = x.Value.Span()
	return x.NamePos, end
}

// A StarredExpr is *X (Op=STAR) or **X (Op=STARSTAR), appearing in
// calls, displays and assignment targets.
type StarredExpr struct {
	OpPos Position
	Op    Token
	X     Expr
}

func (x *StarredExpr) Span() (start, end Position) {
	_, end = x.X.Span()
	return x.OpPos, end
}

// A DotExpr represents a field or method selector: X.Name.
type DotExpr struct {
	X       Expr
	Dot     Position
	NamePos Position
	Name    string
}

func (x *DotExpr) Span() (start, end Position) {
	start, _ = x.X.Span()
	return start, x.NamePos.add(x.Name)
}

// An IndexExpr represents a subscript: X[Y].
// Y may be a *SliceExpr, or a tuple whose elements may be slices.
type IndexExpr struct {
	X      Expr
	Lbrack Position
	Y      Expr
	Rbrack Position
}

func (x *IndexExpr) Span() (start, end Position) {
	start, _ = x.X.Span()
	return start, x.Rbrack.add("]")
}

// A SliceExpr represents a slice Lo:Hi:Step within a subscript.
type SliceExpr struct {
	Colon        Position
	Lo, Hi, Step Expr // all optional
}

func (x *SliceExpr) Span() (start, end Position) {
	start, end = x.Colon, x.Colon.add(":")
	if x.Lo != nil {
		start, _ = x.Lo.Span()
	}
	if x.Step != nil {
		_, end = x.Step.Span()
	} else if x.Hi != nil {
		_, end = x.Hi.Span()
	}
	return
}

// A BinaryExpr represents a binary expression: X Op Y.
// Op is an arithmetic or bitwise operator, AND or OR.
type BinaryExpr struct {
	X     Expr
	OpPos Position
	Op    Token
	Y     Expr
}

func (x *BinaryExpr) Span() (start, end Position) {
	start, _ = x.X.Span()
	_, end = x.Y.Span()
	return
}

// A CompareExpr represents a possibly chained comparison:
// X Ops[0] Ys[0] Ops[1] Ys[1] ...
type CompareExpr struct {
	X   Expr
	Ops []Token // = LT | GT | LE | GE | EQL | NEQ | IN | NOT_IN | IS | IS_NOT
	Ys  []Expr
}

func (x *CompareExpr) Span() (start, end Position) {
	start, _ = x.X.Span()
	_, end = x.Ys[len(x.Ys)-1].Span()
	return
}

// A UnaryExpr represents a unary expression: Op X.
type UnaryExpr struct {
	OpPos Position
	Op    Token // = PLUS | MINUS | TILDE | NOT
	X     Expr
}

func (x *UnaryExpr) Span() (start, end Position) {
	_, end = x.X.Span()
	return x.OpPos, end
}

// A CondExpr represents the conditional: X if COND else ELSE.
type CondExpr struct {
	If      Position
	Cond    Expr
	True    Expr
	ElsePos Position
	False   Expr
}

func (x *CondExpr) Span() (start, end Position) {
	start, _ = x.True.Span()
	_, end = x.False.Span()
	return start, end
}

// A LambdaExpr represents an inline function abstraction.
type LambdaExpr struct {
	Lambda Position
	Params []*Param
	Body   Expr
}

func (x *LambdaExpr) Span() (start, end Position) {
	_, end = x.Body.Span()
	return x.Lambda, end
}

// A ListExpr represents a list literal: [ List ].
type ListExpr struct {
	Lbrack Position
	List   []Expr
	Rbrack Position
}

func (x *ListExpr) Span() (start, end Position) {
	return x.Lbrack, x.Rbrack.add("]")
}

// A TupleExpr represents a tuple literal: (List).
type TupleExpr struct {
	Lparen Position // optional (e.g. in x, y = 0, 1), but required if List is empty
	List   []Expr
	Rparen Position
}

func (x *TupleExpr) Span() (start, end Position) {
	if x.Lparen.IsValid() {
		return x.Lparen, x.Rparen.add(")")
	} else if len(x.List) > 0 {
		start, _ = x.List[0].Span()
		_, end = x.List[len(x.List)-1].Span()
	}
	return
}

// A SetExpr represents a set literal: { List }.
type SetExpr struct {
	Lbrace Position
	List   []Expr
	Rbrace Position
}

func (x *SetExpr) Span() (start, end Position) {
	return x.Lbrace, x.Rbrace.add("}")
}

// A DictExpr represents a dictionary literal: { List }.
// Each element is a *DictEntry or a *StarredExpr with Op STARSTAR.
type DictExpr struct {
	Lbrace Position
	List   []Expr
	Rbrace Position
}

func (x *DictExpr) Span() (start, end Position) {
	return x.Lbrace, x.Rbrace.add("}")
}

// A DictEntry represents a dictionary entry: Key: Value.
// Used only within a DictExpr or dict comprehension.
type DictEntry struct {
	Key   Expr
	Colon Position
	Value Expr
}

func (x *DictEntry) Span() (start, end Position) {
	start, _ = x.Key.Span()
	_, end = x.Value.Span()
	return start, end
}

// ComprehensionKind distinguishes the four forms of comprehension.
type ComprehensionKind uint8

const (
	ListComp ComprehensionKind = iota // [x for ...]
	SetComp                           // {x for ...}
	DictComp                          // {k: v for ...}
	GeneratorExp                      // (x for ...)
)

var comprehensionNames = [...]string{
	ListComp:     "listcomp",
	SetComp:      "setcomp",
	DictComp:     "dictcomp",
	GeneratorExp: "genexpr",
}

func (k ComprehensionKind) String() string { return comprehensionNames[k] }

// A Comprehension represents a list, set, dict or generator
// comprehension. For DictComp, Body is a *DictEntry.
// Clauses is a non-empty list of *ForClause and *IfClause.
type Comprehension struct {
	Kind    ComprehensionKind
	Lbrack  Position
	Body    Expr
	Clauses []Node // = *ForClause | *IfClause
	Rbrack  Position
}

func (x *Comprehension) Span() (start, end Position) {
	if x.Lbrack.IsValid() {
		return x.Lbrack, x.Rbrack.add("]")
	}
	start, _ = x.Body.Span()
	_, end = x.Clauses[len(x.Clauses)-1].Span()
	return
}

// A ForClause represents a for clause in a comprehension: for Vars in X.
type ForClause struct {
	For  Position
	Vars Expr // name, or tuple of names
	In   Position
	X    Expr
}

func (x *ForClause) Span() (start, end Position) {
	_, end = x.X.Span()
	return x.For, end
}

// An IfClause represents an if clause in a comprehension: if Cond.
type IfClause struct {
	If   Position
	Cond Expr
}

func (x *IfClause) Span() (start, end Position) {
	_, end = x.Cond.Span()
	return x.If, end
}

// A NamedExpr is an assignment expression: Target := Value.
type NamedExpr struct {
	Target *Ident
	OpPos  Position
	Value  Expr
}

func (x *NamedExpr) Span() (start, end Position) {
	start, _ = x.Target.Span()
	_, end = x.Value.Span()
	return
}

// A YieldExpr is yield [Value] or yield from Value.
type YieldExpr struct {
	Yield Position
	From  bool
	Value Expr // may be nil unless From
}

func (x *YieldExpr) Span() (start, end Position) {
	if x.Value == nil {
		return x.Yield, x.Yield.add("yield")
	}
	_, end = x.Value.Span()
	return x.Yield, end
}
