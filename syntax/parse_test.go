// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax_test

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"reflect"
	"strings"
	"testing"

	"go.dietpy.dev/internal/chunkedfile"
	"go.dietpy.dev/syntax"
)

func TestExprParseTrees(t *testing.T) {
	for _, test := range []struct {
		input, want string
	}{
		{`print(1)`,
			`(CallExpr Fn=print Args=(1))`},
		{"print(1)\n",
			`(CallExpr Fn=print Args=(1))`},
		{`x + 1`,
			`(BinaryExpr X=x Op=+ Y=1)`},
		{`[x for x in y]`,
			`(Comprehension Kind=listcomp Body=x Clauses=((ForClause Vars=x X=y)))`},
		{`[x for x in (a if b else c)]`,
			`(Comprehension Kind=listcomp Body=x Clauses=((ForClause Vars=x X=(CondExpr Cond=b True=a False=c))))`},
		{`x[i].f(42)`,
			`(CallExpr Fn=(DotExpr X=(IndexExpr X=x Y=i) Name=f) Args=(42))`},
		{`x.f()`,
			`(CallExpr Fn=(DotExpr X=x Name=f))`},
		{`x+y*z`,
			`(BinaryExpr X=x Op=+ Y=(BinaryExpr X=y Op=* Y=z))`},
		{`x%y-z`,
			`(BinaryExpr X=(BinaryExpr X=x Op=% Y=y) Op=- Y=z)`},
		{`a + b not in c`,
			`(CompareExpr X=(BinaryExpr X=a Op=+ Y=b) Ops=(not in) Ys=(c))`},
		{`a < b <= c`,
			`(CompareExpr X=a Ops=(< <=) Ys=(b c))`},
		{`a is not b`,
			`(CompareExpr X=a Ops=(is not) Ys=(b))`},
		{`lambda x, *args, **kwargs: None`,
			`(LambdaExpr Params=((Param Name=x) (Param Kind=* Name=args) (Param Kind=** Name=kwargs)) Body=None)`},
		{`lambda: 0`,
			`(LambdaExpr Body=0)`},
		{`lambda x=1, *, y: x`,
			`(LambdaExpr Params=((Param Name=x Default=1) (Param Kind=*) (Param Name=y)) Body=x)`},
		{`{"one": 1}`,
			`(DictExpr List=((DictEntry Key="one" Value=1)))`},
		{`a[i]`,
			`(IndexExpr X=a Y=i)`},
		{`a[i:]`,
			`(IndexExpr X=a Y=(SliceExpr Lo=i))`},
		{`a[:j]`,
			`(IndexExpr X=a Y=(SliceExpr Hi=j))`},
		{`a[::]`,
			`(IndexExpr X=a Y=(SliceExpr))`},
		{`a[::k]`,
			`(IndexExpr X=a Y=(SliceExpr Step=k))`},
		{`a[1:2, ::3]`,
			`(IndexExpr X=a Y=(TupleExpr List=((SliceExpr Lo=1 Hi=2) (SliceExpr Step=3))))`},
		{`a[i,]`,
			`(IndexExpr X=a Y=(TupleExpr List=(i)))`},
		{`[]`,
			`(ListExpr)`},
		{`[1]`,
			`(ListExpr List=(1))`},
		{`[1,]`,
			`(ListExpr List=(1))`},
		{`[1, 2]`,
			`(ListExpr List=(1 2))`},
		{`[*a, b]`,
			`(ListExpr List=((StarredExpr Op=* X=a) b))`},
		{`()`,
			`(TupleExpr)`},
		{`(4,)`,
			`(TupleExpr List=(4))`},
		{`(4)`,
			`4`},
		{`(4, 5)`,
			`(TupleExpr List=(4 5))`},
		{`1, 2, 3`,
			`(TupleExpr List=(1 2 3))`},
		{`1, 2,`,
			`(TupleExpr List=(1 2))`},
		{`{}`,
			`(DictExpr)`},
		{`{"a": 1,}`,
			`(DictExpr List=((DictEntry Key="a" Value=1)))`},
		{`{"a": 1, "b": 2}`,
			`(DictExpr List=((DictEntry Key="a" Value=1) (DictEntry Key="b" Value=2)))`},
		{`{**a, "b": 1}`,
			`(DictExpr List=((StarredExpr Op=** X=a) (DictEntry Key="b" Value=1)))`},
		{`{1, *a}`,
			`(SetExpr List=(1 (StarredExpr Op=* X=a)))`},
		{`{x: y for (x, y) in z}`,
			`(Comprehension Kind=dictcomp Body=(DictEntry Key=x Value=y) Clauses=((ForClause Vars=(TupleExpr List=(x y)) X=z)))`},
		{`{x: y for a in b if c}`,
			`(Comprehension Kind=dictcomp Body=(DictEntry Key=x Value=y) Clauses=((ForClause Vars=a X=b) (IfClause Cond=c)))`},
		{`{x for x in y}`,
			`(Comprehension Kind=setcomp Body=x Clauses=((ForClause Vars=x X=y)))`},
		{`(x for x in y)`,
			`(Comprehension Kind=genexpr Body=x Clauses=((ForClause Vars=x X=y)))`},
		{`f(x for x in y)`,
			`(CallExpr Fn=f Args=((Comprehension Kind=genexpr Body=x Clauses=((ForClause Vars=x X=y)))))`},
		{`-1 + +2`,
			`(BinaryExpr X=(UnaryExpr Op=- X=1) Op=+ Y=(UnaryExpr Op=+ X=2))`},
		{`"foo" + "bar"`,
			`(BinaryExpr X="foo" Op=+ Y="bar")`},
		{`-1 * 2`, // prec(unary -) > prec(binary *)
			`(BinaryExpr X=(UnaryExpr Op=- X=1) Op=* Y=2)`},
		{`-x[i]`, // prec(unary -) < prec(x[i])
			`(UnaryExpr Op=- X=(IndexExpr X=x Y=i))`},
		{`-x ** 2`, // prec(unary -) < prec(**)
			`(UnaryExpr Op=- X=(BinaryExpr X=x Op=** Y=2))`},
		{`2 ** -1`,
			`(BinaryExpr X=2 Op=** Y=(UnaryExpr Op=- X=1))`},
		{`a ** b ** c`,
			`(BinaryExpr X=a Op=** Y=(BinaryExpr X=b Op=** Y=c))`},
		{`a | b & c | d`, // prec(|) < prec(&)
			`(BinaryExpr X=(BinaryExpr X=a Op=| Y=(BinaryExpr X=b Op=& Y=c)) Op=| Y=d)`},
		{`a @ b`,
			`(BinaryExpr X=a Op=@ Y=b)`},
		{`a or b and c or d`,
			`(BinaryExpr X=(BinaryExpr X=a Op=or Y=(BinaryExpr X=b Op=and Y=c)) Op=or Y=d)`},
		{`a and b or c and d`,
			`(BinaryExpr X=(BinaryExpr X=a Op=and Y=b) Op=or Y=(BinaryExpr X=c Op=and Y=d))`},
		{`f(1, x=y)`,
			`(CallExpr Fn=f Args=(1 (KeywordArg Name=x Value=y)))`},
		{`f(a, *b, c=1, **d)`,
			`(CallExpr Fn=f Args=(a (StarredExpr Op=* X=b) (KeywordArg Name=c Value=1) (StarredExpr Op=** X=d)))`},
		{`a if b else c`,
			`(CondExpr Cond=b True=a False=c)`},
		{`a and not b`,
			`(BinaryExpr X=a Op=and Y=(UnaryExpr Op=not X=b))`},
		{`[e for x in y if cond1 if cond2]`,
			`(Comprehension Kind=listcomp Body=e Clauses=((ForClause Vars=x X=y) (IfClause Cond=cond1) (IfClause Cond=cond2)))`},
		{`(y := f(x))`,
			`(NamedExpr Target=y Value=(CallExpr Fn=f Args=(x)))`},
		{`(yield)`,
			`(YieldExpr)`},
		{`...`,
			`...`},
		{`1j + 1.5`,
			`(BinaryExpr X=1j Op=+ Y=1.5)`},
		{`b"x"`,
			`b"x"`},
		{`"a" "b"`,
			`"ab"`},
		{`"a" f"{x}" "b"`,
			`(FStringExpr Parts=("a" (FormattedValue X=x) "b"))`},
		{`f"a{x!r:>{w}}b"`,
			`(FStringExpr Parts=("a" (FormattedValue X=x Conv=r Spec=(FStringExpr Parts=(">" (FormattedValue X=w)))) "b"))`},
		{`f"{x=}"`,
			`(FStringExpr Parts=("x=" (FormattedValue X=x Conv=r)))`},
		{`f"{{}}{a, b}"`,
			`(FStringExpr Parts=("{}" (FormattedValue X=(TupleExpr List=(a b)))))`},
		{`f"{a != b}"`,
			`(FStringExpr Parts=((FormattedValue X=(CompareExpr X=a Ops=(!=) Ys=(b)))))`},
		// errors
		{`f(x=1, y)`,
			`positional argument follows keyword argument`},
		{`f(**a, *b)`,
			`iterable argument unpacking follows keyword argument unpacking`},
		{`f(x for x in y, 1)`,
			`generator expression must be parenthesized`},
		{`await x`,
			`await is not supported`},
		{`(f() := 1)`,
			`cannot use assignment expressions with function call`},
		{`[*x for x in y]`,
			`iterable unpacking cannot be used in comprehension`},
		{`"a" b"b"`,
			`cannot mix bytes and nonbytes literals`},
		{`f"{}"`,
			`f-string: empty expression not allowed`},
		{`f"}"`,
			`f-string: single '}' is not allowed`},
		{`f"{x!z}"`,
			`f-string: invalid conversion character: expected 's', 'r', or 'a'`},
		{`lambda a=1, b: 0`,
			`non-default parameter follows default parameter`},
		{`lambda a, a: 0`,
			`duplicate parameter: a`},
	} {
		e, err := syntax.ParseExpr("foo.py", test.input)
		var got string
		if err != nil {
			got = stripPos(err)
		} else {
			got = treeString(e)
		}
		if test.want != got {
			t.Errorf("parse `%s` = %s, want %s", test.input, got, test.want)
		}
	}
}

func TestStmtParseTrees(t *testing.T) {
	for _, test := range []struct {
		input, want string
	}{
		{`print(1)`,
			`(ExprStmt X=(CallExpr Fn=print Args=(1)))`},
		{`return 1, 2`,
			`(ReturnStmt Result=(TupleExpr List=(1 2)))`},
		{`return`,
			`(ReturnStmt)`},
		{`for i in "abc": break`,
			`(ForStmt Vars=i X="abc" Body=((BranchStmt Token=break)))`},
		{`for i in "abc": continue`,
			`(ForStmt Vars=i X="abc" Body=((BranchStmt Token=continue)))`},
		{`for x, y in z: pass`,
			`(ForStmt Vars=(TupleExpr List=(x y)) X=z Body=((BranchStmt Token=pass)))`},
		{"for x in y:\n\tpass\nelse:\n\tbreak",
			`(ForStmt Vars=x X=y Body=((BranchStmt Token=pass)) Else=((BranchStmt Token=break)))`},
		{"while x:\n\tpass\nelse:\n\tpass",
			`(WhileStmt Cond=x Body=((BranchStmt Token=pass)) Else=((BranchStmt Token=pass)))`},
		{`while (n := f()): pass`,
			`(WhileStmt Cond=(NamedExpr Target=n Value=(CallExpr Fn=f)) Body=((BranchStmt Token=pass)))`},
		{`if True: pass`,
			`(IfStmt Cond=True True=((BranchStmt Token=pass)))`},
		{`if True: pass
else:
	pass`,
			`(IfStmt Cond=True True=((BranchStmt Token=pass)) False=((BranchStmt Token=pass)))`},
		{"if a: pass\nelif b: pass\nelse: pass",
			`(IfStmt Cond=a True=((BranchStmt Token=pass)) False=((IfStmt Cond=b True=((BranchStmt Token=pass)) False=((BranchStmt Token=pass)))))`},
		{`x, y = 1, 2`,
			`(AssignStmt Targets=((TupleExpr List=(x y))) Value=(TupleExpr List=(1 2)))`},
		{`x = y = 1`,
			`(AssignStmt Targets=(x y) Value=1)`},
		{`x[i] = 1`,
			`(AssignStmt Targets=((IndexExpr X=x Y=i)) Value=1)`},
		{`x.f = 1`,
			`(AssignStmt Targets=((DotExpr X=x Name=f)) Value=1)`},
		{`(x, y) = 1`,
			`(AssignStmt Targets=((TupleExpr List=(x y))) Value=1)`},
		{`a, *b = c`,
			`(AssignStmt Targets=((TupleExpr List=(a (StarredExpr Op=* X=b)))) Value=c)`},
		{`x = yield 1`,
			`(AssignStmt Targets=(x) Value=(YieldExpr Value=1))`},
		{`yield from g`,
			`(ExprStmt X=(YieldExpr From Value=g))`},
		{`x += 1`,
			`(AugAssignStmt Target=x Op=+ Value=1)`},
		{`x.y **= 2`,
			`(AugAssignStmt Target=(DotExpr X=x Name=y) Op=** Value=2)`},
		{`x: int = 1`,
			`(AnnAssignStmt Target=x Annotation=int Value=1)`},
		{`x[0]: int`,
			`(AnnAssignStmt Target=(IndexExpr X=x Y=0) Annotation=int)`},
		{`del a, b[0]`,
			`(DelStmt Targets=(a (IndexExpr X=b Y=0)))`},
		{`raise`,
			`(RaiseStmt)`},
		{`raise E from e`,
			`(RaiseStmt Exc=E Cause=e)`},
		{`global a, b`,
			`(ScopeStmt Token=global Names=(a b))`},
		{`nonlocal a`,
			`(ScopeStmt Token=nonlocal Names=(a))`},
		{`assert x, "m"`,
			`(AssertStmt Test=x Msg="m")`},
		{`import a.b as c, d`,
			`(ImportStmt Names=((ImportName Name=a.b AsName=c) (ImportName Name=d)))`},
		{`from ..m import (a as b, c,)`,
			`(ImportFromStmt Module=m Level=2 Names=((ImportName Name=a AsName=b) (ImportName Name=c)))`},
		{`from . import x`,
			`(ImportFromStmt Level=1 Names=((ImportName Name=x)))`},
		{`from m import *`,
			`(ImportFromStmt Module=m Names=((ImportName Name=*)))`},
		{`def f(x, *args, **kwargs):
	pass`,
			`(DefStmt Name=f Function=(Function Params=((Param Name=x) (Param Kind=* Name=args) (Param Kind=** Name=kwargs)) Body=((BranchStmt Token=pass))))`},
		{`def f(a, /, b: int = 1, *args, c, **kw) -> str: pass`,
			`(DefStmt Name=f Function=(Function Params=((Param Name=a) (Param Kind=/) (Param Name=b Annotation=int Default=1) (Param Kind=* Name=args) (Param Name=c) (Param Kind=** Name=kw)) Returns=str Body=((BranchStmt Token=pass))))`},
		{"@dec\n@mod.dec(1)\ndef f(): pass",
			`(DefStmt Decorators=(dec (CallExpr Fn=(DotExpr X=mod Name=dec) Args=(1))) Name=f Function=(Function Body=((BranchStmt Token=pass))))`},
		{`def f():
	def g():
		pass
	pass
def h():
	pass`,
			`(DefStmt Name=f Function=(Function Body=((DefStmt Name=g Function=(Function Body=((BranchStmt Token=pass)))) (BranchStmt Token=pass))))`},
		{`class C: pass`,
			`(ClassStmt Name=C Body=((BranchStmt Token=pass)))`},
		{`class C(B, metaclass=M): x = 1`,
			`(ClassStmt Name=C Bases=(B (KeywordArg Name=metaclass Value=M)) Body=((AssignStmt Targets=(x) Value=1)))`},
		{"try:\n\tpass\nexcept E as e:\n\tpass\nexcept:\n\tpass\nelse:\n\tpass\nfinally:\n\tpass",
			`(TryStmt Body=((BranchStmt Token=pass)) Handlers=((ExceptClause Type=E Name=e Body=((BranchStmt Token=pass))) (ExceptClause Body=((BranchStmt Token=pass)))) Else=((BranchStmt Token=pass)) Finally=((BranchStmt Token=pass)))`},
		{"try:\n\tpass\nfinally:\n\tpass",
			`(TryStmt Body=((BranchStmt Token=pass)) Finally=((BranchStmt Token=pass)))`},
		{`with a as b, c: pass`,
			`(WithStmt Items=((WithItem X=a Vars=b) (WithItem X=c)) Body=((BranchStmt Token=pass)))`},
		{`with a as (b, c): pass`,
			`(WithStmt Items=((WithItem X=a Vars=(TupleExpr List=(b c)))) Body=((BranchStmt Token=pass)))`},
		{`match = 1`,
			`(AssignStmt Targets=(match) Value=1)`},
		{`match(x)`,
			`(ExprStmt X=(CallExpr Fn=match Args=(x)))`},
		{"f();g()",
			`(ExprStmt X=(CallExpr Fn=f))`},
		{"f();",
			`(ExprStmt X=(CallExpr Fn=f))`},
		{"f();g()\n",
			`(ExprStmt X=(CallExpr Fn=f))`},
		{"f();\n",
			`(ExprStmt X=(CallExpr Fn=f))`},
	} {
		f, err := syntax.Parse("foo.py", test.input)
		if err != nil {
			t.Errorf("parse `%s` failed: %v", test.input, stripPos(err))
			continue
		}
		if got := treeString(f.Stmts[0]); test.want != got {
			t.Errorf("parse `%s` = %s, want %s", test.input, got, test.want)
		}
	}
}

// TestFileParseTrees tests sequences of statements, and particularly
// handling of indentation, newlines, line continuations, and blank lines.
func TestFileParseTrees(t *testing.T) {
	for _, test := range []struct {
		input, want string
	}{
		{`x = 1
print(x)`,
			`(AssignStmt Targets=(x) Value=1)
(ExprStmt X=(CallExpr Fn=print Args=(x)))`},
		{"if cond:\n\tpass",
			`(IfStmt Cond=cond True=((BranchStmt Token=pass)))`},
		{"if cond:\n\tpass\nelse:\n\tpass",
			`(IfStmt Cond=cond True=((BranchStmt Token=pass)) False=((BranchStmt Token=pass)))`},
		{`def f():
	pass
pass

pass`,
			`(DefStmt Name=f Function=(Function Body=((BranchStmt Token=pass))))
(BranchStmt Token=pass)
(BranchStmt Token=pass)`},
		{`pass; pass`,
			`(BranchStmt Token=pass)
(BranchStmt Token=pass)`},
		{"pass\npass",
			`(BranchStmt Token=pass)
(BranchStmt Token=pass)`},
		{"pass\n\npass",
			`(BranchStmt Token=pass)
(BranchStmt Token=pass)`},
		{`x = (1 +
2)`,
			`(AssignStmt Targets=(x) Value=(BinaryExpr X=1 Op=+ Y=2))`},
		{`x = 1 \
+ 2`,
			`(AssignStmt Targets=(x) Value=(BinaryExpr X=1 Op=+ Y=2))`},
		{"class C:\n    \"doc\"\n    def m(self):\n        return 1\n",
			`(ClassStmt Name=C Body=((ExprStmt X="doc") (DefStmt Name=m Function=(Function Params=((Param Name=self)) Body=((ReturnStmt Result=1))))))`},
	} {
		f, err := syntax.Parse("foo.py", test.input)
		if err != nil {
			t.Errorf("parse `%s` failed: %v", test.input, stripPos(err))
			continue
		}
		var buf bytes.Buffer
		for i, stmt := range f.Stmts {
			if i > 0 {
				buf.WriteByte('\n')
			}
			writeTree(&buf, reflect.ValueOf(stmt))
		}
		if got := buf.String(); test.want != got {
			t.Errorf("parse `%s` = %s, want %s", test.input, got, test.want)
		}
	}
}

// TestCompoundStmt tests handling of REPL-style compound statements.
func TestCompoundStmt(t *testing.T) {
	for _, test := range []struct {
		input, want string
	}{
		// blank lines
		{"\n",
			``},
		{"   \n",
			``},
		{"# comment\n",
			``},
		// simple statement
		{"1\n",
			`(ExprStmt X=1)`},
		{"print(1)\n",
			`(ExprStmt X=(CallExpr Fn=print Args=(1)))`},
		{"1;2;3;\n",
			`(ExprStmt X=1)(ExprStmt X=2)(ExprStmt X=3)`},
		{"f();g()\n",
			`(ExprStmt X=(CallExpr Fn=f))(ExprStmt X=(CallExpr Fn=g))`},
		{"f();\n",
			`(ExprStmt X=(CallExpr Fn=f))`},
		{"f(\n\n\n\n\n\n\n)\n",
			`(ExprStmt X=(CallExpr Fn=f))`},
		// complex statements
		{"def f():\n  pass\n\n",
			`(DefStmt Name=f Function=(Function Body=((BranchStmt Token=pass))))`},
		{"if cond:\n  pass\n\n",
			`(IfStmt Cond=cond True=((BranchStmt Token=pass)))`},
		// Even as a 1-liner, the following blank line is required.
		{"if cond: pass\n\n",
			`(IfStmt Cond=cond True=((BranchStmt Token=pass)))`},
		{"a; b; c\n",
			`(ExprStmt X=a)(ExprStmt X=b)(ExprStmt X=c)`},
		{"a; b c\n",
			`invalid syntax`},
	} {

		// Fake readline input from string.
		// The ! suffix, which would cause a parse error,
		// tests that the parser doesn't read more than necessary.
		sc := bufio.NewScanner(strings.NewReader(test.input + "!"))
		readline := func() ([]byte, error) {
			if sc.Scan() {
				return []byte(sc.Text() + "\n"), nil
			}
			return nil, sc.Err()
		}

		var got string
		f, err := syntax.ParseCompoundStmt("foo.py", readline)
		if err != nil {
			got = stripPos(err)
		} else {
			for _, stmt := range f.Stmts {
				got += treeString(stmt)
			}
		}
		if test.want != got {
			t.Errorf("parse `%s` = %s, want %s", test.input, got, test.want)
		}
	}
}

func stripPos(err error) string {
	s := err.Error()
	if i := strings.Index(s, ": "); i >= 0 {
		s = s[i+len(": "):] // strip file:line:col
	}
	return s
}

// treeString prints a syntax node as a parenthesized tree.
// Idents are printed as foo and Literals as "foo" or 42.
// Structs are printed as (type name=value ...).
// Only non-empty fields are shown.
func treeString(n syntax.Node) string {
	var buf bytes.Buffer
	writeTree(&buf, reflect.ValueOf(n))
	return buf.String()
}

var paramKinds = map[syntax.ParamKind]string{
	syntax.ParamStar:     "*",
	syntax.ParamStarStar: "**",
	syntax.ParamSlash:    "/",
}

func writeTree(out *bytes.Buffer, x reflect.Value) {
	if tok, ok := x.Interface().(syntax.Token); ok {
		out.WriteString(tok.String())
		return
	}
	switch x.Kind() {
	case reflect.String, reflect.Int, reflect.Bool:
		fmt.Fprintf(out, "%v", x.Interface())
	case reflect.Ptr, reflect.Interface:
		if elem := x.Elem(); elem.Kind() == 0 {
			out.WriteString("nil")
		} else {
			writeTree(out, elem)
		}
	case reflect.Struct:
		switch v := x.Interface().(type) {
		case syntax.Literal:
			switch v.Token {
			case syntax.STRING:
				fmt.Fprintf(out, "%q", v.Value)
			case syntax.BYTES:
				fmt.Fprintf(out, "b%q", v.Value)
			case syntax.INT:
				fmt.Fprintf(out, "%d", v.Value)
			case syntax.FLOAT:
				fmt.Fprintf(out, "%g", v.Value)
			case syntax.IMAG:
				fmt.Fprintf(out, "%gj", v.Value)
			default:
				out.WriteString(v.Token.String())
			}
			return
		case syntax.Ident:
			out.WriteString(v.Name)
			return
		}
		fmt.Fprintf(out, "(%s", strings.TrimPrefix(x.Type().String(), "syntax."))
		for i, n := 0, x.NumField(); i < n; i++ {
			f := x.Field(i)
			if f.Type() == reflect.TypeOf(syntax.Position{}) {
				continue // skip positions
			}
			name := x.Type().Field(i).Name
			if name == "Raw" {
				continue // skip source text
			}
			switch v := f.Interface().(type) {
			case syntax.Token:
				fmt.Fprintf(out, " %s=%s", name, v)
				continue
			case syntax.ParamKind:
				if v != syntax.ParamNormal {
					fmt.Fprintf(out, " %s=%s", name, paramKinds[v])
				}
				continue
			case syntax.ComprehensionKind:
				fmt.Fprintf(out, " %s=%s", name, v)
				continue
			case rune:
				if v != 0 {
					fmt.Fprintf(out, " %s=%c", name, v)
				}
				continue
			}

			switch f.Kind() {
			case reflect.Slice:
				if n := f.Len(); n > 0 {
					fmt.Fprintf(out, " %s=(", name)
					for i := 0; i < n; i++ {
						if i > 0 {
							out.WriteByte(' ')
						}
						writeTree(out, f.Index(i))
					}
					out.WriteByte(')')
				}
				continue
			case reflect.Ptr, reflect.Interface:
				if f.IsNil() {
					continue
				}
			case reflect.String:
				if f.Len() == 0 {
					continue
				}
			case reflect.Int:
				if f.Int() != 0 {
					fmt.Fprintf(out, " %s=%d", name, f.Int())
				}
				continue
			case reflect.Bool:
				if f.Bool() {
					fmt.Fprintf(out, " %s", name)
				}
				continue
			}
			fmt.Fprintf(out, " %s=", name)
			writeTree(out, f)
		}
		fmt.Fprintf(out, ")")
	default:
		fmt.Fprintf(out, "%T", x.Interface())
	}
}

func TestParseErrors(t *testing.T) {
	filename := "testdata/errors.py"
	for _, chunk := range chunkedfile.Read(filename, t) {
		_, err := syntax.Parse(filename, chunk.Source)
		switch err := err.(type) {
		case nil:
			// ok
		case syntax.Error:
			chunk.GotError(int(err.Pos.Line), err.Msg)
		default:
			t.Error(err)
		}
		chunk.Done()
	}
}

func TestSpans(t *testing.T) {
	file, err := syntax.Parse("foo.py", "x = f(a, b)\nfor i in y:\n    pass\n")
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []string{
		"foo.py:1:1 foo.py:1:12",
		"foo.py:2:1 foo.py:3:9",
	} {
		start, end := file.Stmts[i].Span()
		if got := fmt.Sprint(start, " ", end); got != want {
			t.Errorf("stmt %d: wrong span: got %q, want %q", i, got, want)
		}
	}
}

func BenchmarkParse(b *testing.B) {
	filename := "testdata/scan.py"
	b.StopTimer()
	data, err := os.ReadFile(filename)
	if err != nil {
		b.Fatal(err)
	}
	b.StartTimer()

	for i := 0; i < b.N; i++ {
		_, err := syntax.Parse(filename, data)
		if err != nil {
			b.Fatal(err)
		}
	}
}
