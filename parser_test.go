package novascript

import (
	"strings"
	"testing"
)

func wantParseErr(t *testing.T, src, substr string) *ParseError {
	t.Helper()
	_, err := Parse(src)
	if err == nil {
		t.Fatalf("expected parse error\nsource:\n%s", src)
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if !strings.Contains(pe.Msg, substr) {
		t.Fatalf("message %q does not contain %q", pe.Msg, substr)
	}
	return pe
}

func TestProgramEnvelopeAndMetadata(t *testing.T) {
	prog := mustParse(t, `PROGRAM BEGIN
    DESCRIPTION "A sample"
    AUTHOR "Ada"
    DATE "2024-01-01"
    display 1
PROGRAM END
`)
	if prog.Description != "A sample" || prog.Author != "Ada" || prog.Date != "2024-01-01" {
		t.Fatalf("metadata not captured: %+v", prog)
	}
	if len(prog.Body) != 1 {
		t.Fatalf("want 1 statement, got %d", len(prog.Body))
	}
}

func TestMetadataIsOptional(t *testing.T) {
	prog := mustParse(t, "PROGRAM BEGIN\nPROGRAM END")
	if prog.Description != "" || len(prog.Body) != 0 {
		t.Fatalf("unexpected program: %+v", prog)
	}
}

func TestMissingEnvelope(t *testing.T) {
	wantParseErr(t, "display 1", "PROGRAM BEGIN")
	wantParseErr(t, "PROGRAM BEGIN\ndisplay 1\n", "PROGRAM END")
}

func TestTrailingInputAfterEnd(t *testing.T) {
	wantParseErr(t, "PROGRAM BEGIN\nPROGRAM END\ndisplay 1", "after 'PROGRAM END'")
}

func TestPrecedenceShape(t *testing.T) {
	stmts := mustParseStmts(t, "1 + 2 * 3")
	top, ok := stmts[0].(*ExprStmt).X.(*BinaryExpr)
	if !ok || top.Op != PLUS {
		t.Fatalf("top must be +, got %#v", stmts[0])
	}
	right, ok := top.Right.(*BinaryExpr)
	if !ok || right.Op != MULT {
		t.Fatalf("right operand must be *, got %#v", top.Right)
	}
}

func TestLeftAssociativity(t *testing.T) {
	stmts := mustParseStmts(t, "10 - 2 - 3")
	top := stmts[0].(*ExprStmt).X.(*BinaryExpr)
	if _, ok := top.Left.(*BinaryExpr); !ok {
		t.Fatalf("subtraction must nest left, got %#v", top)
	}
}

func TestFuncReturnTypeDisambiguation(t *testing.T) {
	stmts := mustParseStmts(t, `
func f(x: num) return num
    return x
end
`)
	f := stmts[0].(*FuncDecl)
	if f.ReturnType != "num" {
		t.Fatalf("want return type num, got %q", f.ReturnType)
	}
	if len(f.Body) != 1 {
		t.Fatalf("want 1 body statement, got %d", len(f.Body))
	}
	ret := f.Body[0].(*Return)
	if ret.Value.(*Ident).Name != "x" {
		t.Fatalf("return value mangled: %#v", ret.Value)
	}
}

func TestFuncWithoutReturnType(t *testing.T) {
	stmts := mustParseStmts(t, "func f()\n    return\nend")
	f := stmts[0].(*FuncDecl)
	if f.ReturnType != "" {
		t.Fatalf("want no return type, got %q", f.ReturnType)
	}
	if f.Body[0].(*Return).Value != nil {
		t.Fatal("bare return must carry no value")
	}
}

func TestParamTypes(t *testing.T) {
	stmts := mustParseStmts(t, "func f(a: num, b, c: list)\nend")
	f := stmts[0].(*FuncDecl)
	want := []Param{{Name: "a", Type: "num"}, {Name: "b"}, {Name: "c", Type: "list"}}
	if len(f.Params) != len(want) {
		t.Fatalf("want %d params, got %d", len(want), len(f.Params))
	}
	for i, p := range want {
		if f.Params[i] != p {
			t.Fatalf("param %d: want %+v, got %+v", i, p, f.Params[i])
		}
	}
}

func TestClassShape(t *testing.T) {
	stmts := mustParseStmts(t, `
class Person
    str name
    num age
    func greet()
        return this.name
    end
end
`)
	c := stmts[0].(*ClassDecl)
	if c.Name != "Person" || len(c.Fields) != 2 || len(c.Methods) != 1 {
		t.Fatalf("unexpected class: %+v", c)
	}
	if c.Fields[0] != (FieldDecl{Name: "name", Type: "str"}) {
		t.Fatalf("field mangled: %+v", c.Fields[0])
	}
}

func TestClassFieldAfterMethodRejected(t *testing.T) {
	_, err := ParseStatements("class C\n    func m()\n    end\n    num late\nend")
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "precede") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestIfElseIfShape(t *testing.T) {
	stmts := mustParseStmts(t, `
if a then
    display 1
else if b then
    display 2
else
    display 3
end
`)
	s := stmts[0].(*If)
	if len(s.Branches) != 2 || s.Else == nil {
		t.Fatalf("want 2 branches plus else, got %d (%v)", len(s.Branches), s.Else)
	}
}

func TestForBinderMayBeTypeKeyword(t *testing.T) {
	stmts := mustParseStmts(t, "for num in [1] do\nend")
	if got := stmts[0].(*ForIn).Var; got != "num" {
		t.Fatalf("want binder num, got %q", got)
	}
}

func TestTryExceptShape(t *testing.T) {
	stmts := mustParseStmts(t, "try\n    display 1\nexcept err\n    display err\nend")
	s := stmts[0].(*TryExcept)
	if s.ErrName != "err" || len(s.Body) != 1 || len(s.Handler) != 1 {
		t.Fatalf("unexpected try: %+v", s)
	}
}

func TestAssignmentTargets(t *testing.T) {
	stmts := mustParseStmts(t, "x = 1\nthis.y += 2\nf()")
	if a := stmts[0].(*Assign); a.Op != ASSIGN {
		t.Fatalf("want =, got %v", a.Op)
	}
	a := stmts[1].(*Assign)
	if a.Op != PLUS_ASSIGN {
		t.Fatalf("want +=, got %v", a.Op)
	}
	if _, ok := a.Target.(*MemberExpr); !ok {
		t.Fatalf("want member target, got %#v", a.Target)
	}
	if _, ok := stmts[2].(*ExprStmt); !ok {
		t.Fatalf("call must be an expression statement, got %#v", stmts[2])
	}
}

func TestInvalidAssignmentTarget(t *testing.T) {
	_, err := ParseStatements("1 + 2 = 3")
	if err == nil || !strings.Contains(err.Error(), "assignment target") {
		t.Fatalf("unexpected: %v", err)
	}
}

func TestPostfixChaining(t *testing.T) {
	stmts := mustParseStmts(t, "Person(\"John\", 30).greet()[0]")
	x := stmts[0].(*ExprStmt).X
	idx, ok := x.(*IndexExpr)
	if !ok {
		t.Fatalf("outermost must be index, got %#v", x)
	}
	call, ok := idx.Object.(*CallExpr)
	if !ok {
		t.Fatalf("index object must be a call, got %#v", idx.Object)
	}
	if _, ok := call.Callee.(*MemberExpr); !ok {
		t.Fatalf("callee must be member access, got %#v", call.Callee)
	}
}

func TestIncompleteInput(t *testing.T) {
	for _, src := range []string{
		"if x then",
		"func f()",
		"while x do\n    display 1",
		"try\n    display 1",
		"[1, 2",
	} {
		_, err := ParseStatements(src)
		if err == nil {
			t.Fatalf("expected error for %q", src)
		}
		if !IsIncomplete(err) {
			t.Fatalf("%q should be incomplete, got %v", src, err)
		}
	}
}

func TestCompleteErrorsAreNotIncomplete(t *testing.T) {
	_, err := ParseStatements("if x display")
	if err == nil || IsIncomplete(err) {
		t.Fatalf("mid-input error must not be incomplete: %v", err)
	}
}

func TestUseStatement(t *testing.T) {
	stmts := mustParseStmts(t, "use strlib")
	if got := stmts[0].(*Use).Name; got != "strlib" {
		t.Fatalf("want strlib, got %q", got)
	}
}
