// printer.go — canonical text forms.
//
// Two printers live here. FormatValue renders a runtime Value the way
// `display` emits it: numbers without unnecessary trailing zeros, bools as
// true/false, lists bracketed and comma-separated (strings inside lists are
// quoted; a top-level string prints raw). FormatProgram re-serializes a
// parsed AST back to canonical NovaScript text, preserving statement order
// and kind — parse(FormatProgram(parse(src))) is structurally identical to
// parse(src).
package novascript

import (
	"fmt"
	"strconv"
	"strings"
)

/* ---------- runtime value printer ---------- */

// FormatValue returns the canonical display form of v.
func FormatValue(v Value) string {
	if v.Tag == VTStr {
		return v.Data.(string)
	}
	return formatElem(v)
}

// formatElem is the nested form: strings are quoted so list output is
// re-readable.
func formatElem(v Value) string {
	switch v.Tag {
	case VTNil:
		return "nil"
	case VTNum:
		return formatNum(v.Data.(float64))
	case VTStr:
		return quoteString(v.Data.(string))
	case VTBool:
		if v.Data.(bool) {
			return "true"
		}
		return "false"
	case VTList:
		lst := v.Data.(*ListObject)
		parts := make([]string, len(lst.Elems))
		for i, el := range lst.Elems {
			parts[i] = formatElem(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case VTFun:
		return "<func " + v.Data.(*Fun).displayName() + ">"
	case VTClass:
		return "<class " + v.Data.(*Class).Name + ">"
	case VTInstance:
		return "<" + v.Data.(*Instance).Class.Name + " instance>"
	case VTModule:
		return "<module " + v.Data.(*Module).Name + ">"
	default:
		return "<unknown>"
	}
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

/* ---------- AST re-serializer ---------- */

const indentUnit = "    "

// FormatProgram renders a Program back to canonical NovaScript source.
func FormatProgram(p *Program) string {
	var b strings.Builder
	b.WriteString("PROGRAM BEGIN\n")
	if p.Description != "" {
		fmt.Fprintf(&b, "%sDESCRIPTION %s\n", indentUnit, quoteString(p.Description))
	}
	if p.Author != "" {
		fmt.Fprintf(&b, "%sAUTHOR %s\n", indentUnit, quoteString(p.Author))
	}
	if p.Date != "" {
		fmt.Fprintf(&b, "%sDATE %s\n", indentUnit, quoteString(p.Date))
	}
	writeStmts(&b, p.Body, 1)
	b.WriteString("PROGRAM END\n")
	return b.String()
}

// FormatStmt renders one statement at top-level indentation.
func FormatStmt(s Stmt) string {
	var b strings.Builder
	writeStmt(&b, s, 0)
	return b.String()
}

func writeStmts(b *strings.Builder, stmts []Stmt, depth int) {
	for _, s := range stmts {
		writeStmt(b, s, depth)
	}
}

func writeStmt(b *strings.Builder, s Stmt, depth int) {
	pad := strings.Repeat(indentUnit, depth)
	switch st := s.(type) {
	case *VarDecl:
		fmt.Fprintf(b, "%s%s %s = %s\n", pad, st.Type, st.Name, formatExpr(st.Value))
	case *Assign:
		op := "="
		if st.Op == PLUS_ASSIGN {
			op = "+="
		}
		fmt.Fprintf(b, "%s%s %s %s\n", pad, formatExpr(st.Target), op, formatExpr(st.Value))
	case *FuncDecl:
		writeFunc(b, st, depth)
	case *ClassDecl:
		fmt.Fprintf(b, "%sclass %s\n", pad, st.Name)
		for _, f := range st.Fields {
			fmt.Fprintf(b, "%s%s%s %s\n", pad, indentUnit, f.Type, f.Name)
		}
		for _, m := range st.Methods {
			writeFunc(b, m, depth+1)
		}
		fmt.Fprintf(b, "%send\n", pad)
	case *If:
		for i, br := range st.Branches {
			kw := "if"
			if i > 0 {
				kw = "else if"
			}
			fmt.Fprintf(b, "%s%s %s then\n", pad, kw, formatExpr(br.Cond))
			writeStmts(b, br.Body, depth+1)
		}
		if st.Else != nil {
			fmt.Fprintf(b, "%selse\n", pad)
			writeStmts(b, st.Else, depth+1)
		}
		fmt.Fprintf(b, "%send\n", pad)
	case *ForIn:
		fmt.Fprintf(b, "%sfor %s in %s do\n", pad, st.Var, formatExpr(st.Iterable))
		writeStmts(b, st.Body, depth+1)
		fmt.Fprintf(b, "%send\n", pad)
	case *While:
		fmt.Fprintf(b, "%swhile %s do\n", pad, formatExpr(st.Cond))
		writeStmts(b, st.Body, depth+1)
		fmt.Fprintf(b, "%send\n", pad)
	case *TryExcept:
		fmt.Fprintf(b, "%stry\n", pad)
		writeStmts(b, st.Body, depth+1)
		fmt.Fprintf(b, "%sexcept %s\n", pad, st.ErrName)
		writeStmts(b, st.Handler, depth+1)
		fmt.Fprintf(b, "%send\n", pad)
	case *Display:
		fmt.Fprintf(b, "%sdisplay %s\n", pad, formatExpr(st.Value))
	case *Return:
		if st.Value != nil {
			fmt.Fprintf(b, "%sreturn %s\n", pad, formatExpr(st.Value))
		} else {
			fmt.Fprintf(b, "%sreturn\n", pad)
		}
	case *Use:
		fmt.Fprintf(b, "%suse %s\n", pad, st.Name)
	case *ExprStmt:
		fmt.Fprintf(b, "%s%s\n", pad, formatExpr(st.X))
	}
}

func writeFunc(b *strings.Builder, f *FuncDecl, depth int) {
	pad := strings.Repeat(indentUnit, depth)
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		if p.Type != "" {
			params[i] = p.Name + ": " + p.Type
		} else {
			params[i] = p.Name
		}
	}
	fmt.Fprintf(b, "%sfunc %s(%s)", pad, f.Name, strings.Join(params, ", "))
	if f.ReturnType != "" {
		fmt.Fprintf(b, " return %s", f.ReturnType)
	}
	b.WriteByte('\n')
	writeStmts(b, f.Body, depth+1)
	fmt.Fprintf(b, "%send\n", pad)
}

var opLexemes = map[TokenType]string{
	PLUS: "+", MINUS: "-", MULT: "*", DIV: "/",
	EQ: "==", NEQ: "!=", LESS: "<", LESS_EQ: "<=",
	GREATER: ">", GREATER_EQ: ">=", AND: "and", OR: "or", NOT: "not",
}

func formatExpr(e Expr) string {
	switch x := e.(type) {
	case *NumberLit:
		return formatNum(x.Value)
	case *StringLit:
		return quoteString(x.Value)
	case *BoolLit:
		if x.Value {
			return "true"
		}
		return "false"
	case *ListLit:
		parts := make([]string, len(x.Elems))
		for i, el := range x.Elems {
			parts[i] = formatExpr(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Ident:
		return x.Name
	case *ThisRef:
		return "this"
	case *UnaryExpr:
		if x.Op == NOT {
			return "not " + formatSubExpr(x.X)
		}
		return "-" + formatSubExpr(x.X)
	case *BinaryExpr:
		return formatSubExpr(x.Left) + " " + opLexemes[x.Op] + " " + formatSubExpr(x.Right)
	case *CallExpr:
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			args[i] = formatExpr(a)
		}
		return formatSubExpr(x.Callee) + "(" + strings.Join(args, ", ") + ")"
	case *MemberExpr:
		return formatSubExpr(x.Object) + "." + x.Name
	case *IndexExpr:
		return formatSubExpr(x.Object) + "[" + formatExpr(x.Index) + "]"
	default:
		return "<expr>"
	}
}

// formatSubExpr parenthesizes nested operator expressions so the canonical
// form re-parses with identical structure regardless of precedence.
func formatSubExpr(e Expr) string {
	switch e.(type) {
	case *BinaryExpr, *UnaryExpr:
		return "(" + formatExpr(e) + ")"
	default:
		return formatExpr(e)
	}
}
