package novascript

import (
	"strings"
	"testing"
)

func TestFormatValue(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Nil, "nil"},
		{NumVal(3), "3"},
		{NumVal(3.5), "3.5"},
		{NumVal(-0.25), "-0.25"},
		{BoolVal(true), "true"},
		{StrVal("plain text"), "plain text"},
		{ListVal([]Value{NumVal(1), StrVal("a"), BoolVal(false)}), `[1, "a", false]`},
		{ListVal(nil), "[]"},
		{ListVal([]Value{ListVal([]Value{NumVal(1)})}), "[[1]]"},
	}
	for _, c := range cases {
		if got := FormatValue(c.v); got != c.want {
			t.Errorf("FormatValue(%#v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestFormatValueObjects(t *testing.T) {
	f := &Fun{Name: "inc"}
	if got := FormatValue(FunVal(f)); got != "<func inc>" {
		t.Fatalf("got %q", got)
	}
	cls := &Class{Name: "Person"}
	if got := FormatValue(Value{Tag: VTClass, Data: cls}); got != "<class Person>" {
		t.Fatalf("got %q", got)
	}
	inst := &Instance{Class: cls}
	if got := FormatValue(Value{Tag: VTInstance, Data: inst}); got != "<Person instance>" {
		t.Fatalf("got %q", got)
	}
}

func TestStringQuotedInsideLists(t *testing.T) {
	v := ListVal([]Value{StrVal("a\"b\n")})
	if got := FormatValue(v); got != `["a\"b\n"]` {
		t.Fatalf("got %q", got)
	}
}

// canonical reformatting must reach a fixed point: formatting the parse of
// formatted output reproduces the same text.
func checkRoundTrip(t *testing.T, src string) {
	t.Helper()
	first := FormatProgram(mustParse(t, src))
	second := FormatProgram(mustParse(t, first))
	if first != second {
		t.Fatalf("format is not a fixed point:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestRoundTripProgram(t *testing.T) {
	checkRoundTrip(t, `PROGRAM BEGIN
DESCRIPTION "demo"
AUTHOR "Ada"
DATE "2024-06-01"
num total = 0
str label = "sum: "
for n in [1, 2, 3] do
total += n
end
if total > 3 then
display label + total
else
display "small"
end
func scale(x: num, k: num) return num
return x * k
end
class Point
num x
num y
func init(x: num, y: num)
this.x = x
this.y = y
end
end
while total > 0 do
total = total - 1
end
try
num r = 1 / 0
except e
display e
end
use mathlib
display mathlib.abs(0 - scale(2, 3))
display [1, 2][0]
PROGRAM END
`)
}

func TestRoundTripPreservesPrecedence(t *testing.T) {
	src := "PROGRAM BEGIN\ndisplay (1 + 2) * 3\ndisplay not (true and false)\nPROGRAM END\n"
	first := FormatProgram(mustParse(t, src))
	prog := mustParse(t, first)
	d := prog.Body[0].(*Display)
	top := d.Value.(*BinaryExpr)
	if top.Op != MULT {
		t.Fatalf("grouping lost: %#v", d.Value)
	}
	if inner, ok := top.Left.(*BinaryExpr); !ok || inner.Op != PLUS {
		t.Fatalf("grouping lost: %#v", top.Left)
	}
}

func TestFormatStmt(t *testing.T) {
	stmts := mustParseStmts(t, "x += f(1)[0].y")
	got := FormatStmt(stmts[0])
	if got != "x += f(1)[0].y\n" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatProgramIndents(t *testing.T) {
	out := FormatProgram(mustParse(t, "PROGRAM BEGIN\nif x then\ndisplay 1\nend\nPROGRAM END"))
	if !strings.Contains(out, "    if x then\n        display 1\n    end\n") {
		t.Fatalf("bad indentation:\n%s", out)
	}
}
