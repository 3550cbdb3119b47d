package novascript

import (
	"strings"
	"testing"
)

func TestWrapParseErrorSnippet(t *testing.T) {
	src := "PROGRAM BEGIN\nif x\n    display 1\nend\nPROGRAM END\n"
	_, err := Parse(src)
	if err == nil {
		t.Fatal("expected parse error")
	}

	wrapped := WrapErrorWithName(err, "fib.nvs", src).Error()
	for _, want := range []string{
		"PARSE ERROR in fib.nvs at 3:",
		"   2 | if x",
		"   3 |     display 1",
		"^",
		"   4 | end",
	} {
		if !strings.Contains(wrapped, want) {
			t.Fatalf("snippet missing %q:\n%s", want, wrapped)
		}
	}
}

func TestWrapLexErrorSnippet(t *testing.T) {
	src := "num x = @\n"
	_, err := Parse(src)
	if err == nil {
		t.Fatal("expected lex error")
	}
	wrapped := WrapErrorWithName(err, "bad.nvs", src).Error()
	if !strings.Contains(wrapped, "LEXICAL ERROR in bad.nvs at 1:9") {
		t.Fatalf("unexpected header:\n%s", wrapped)
	}
	if !strings.Contains(wrapped, "| "+strings.Repeat(" ", 8)+"^") {
		t.Fatalf("caret misplaced:\n%s", wrapped)
	}
}

func TestWrapRuntimeErrorIncludesKind(t *testing.T) {
	rte := &RuntimeError{Kind: ErrDiv, Msg: "division by zero", Line: 1, Col: 4}
	wrapped := WrapErrorWithName(rte, "calc.nvs", "x = 1 / 0\n").Error()
	if !strings.Contains(wrapped, "RUNTIME ERROR in calc.nvs at 1:5: DivisionByZero: division by zero") {
		t.Fatalf("unexpected:\n%s", wrapped)
	}
}

func TestWrapWithoutName(t *testing.T) {
	rte := &RuntimeError{Kind: ErrName, Msg: "undefined name 'q'", Line: 1, Col: 0}
	wrapped := WrapErrorWithName(rte, "", "q\n").Error()
	if !strings.HasPrefix(wrapped, "RUNTIME ERROR at 1:1:") {
		t.Fatalf("unexpected:\n%s", wrapped)
	}
}

func TestWrapClampsOutOfRangePositions(t *testing.T) {
	rte := &RuntimeError{Kind: ErrDiv, Msg: "division by zero", Line: 99, Col: 50}
	wrapped := WrapErrorWithName(rte, "short.nvs", "x\n").Error()
	if !strings.Contains(wrapped, "^") {
		t.Fatalf("clamped render must still produce a caret:\n%s", wrapped)
	}
}

func TestWrapLeavesForeignErrorsAlone(t *testing.T) {
	err := WrapErrorWithName(strings.NewReader("").UnreadByte(), "x.nvs", "")
	if err == nil || strings.Contains(err.Error(), "ERROR in") {
		t.Fatalf("foreign errors must pass through: %v", err)
	}
}

func TestSuggest(t *testing.T) {
	if got := suggest("leng", []string{"length", "append"}); got != ", did you mean 'length'?" {
		t.Fatalf("got %q", got)
	}
	if got := suggest("length", []string{"length"}); got != "" {
		t.Fatalf("exact matches need no suggestion, got %q", got)
	}
	if got := suggest("zzz", []string{"length", "append"}); got != "" {
		t.Fatalf("no candidate, got %q", got)
	}
}
