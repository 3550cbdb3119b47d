// errors.go — user-facing error wrapping and caret-snippet rendering.
//
// Low-level lexer/parser/runtime diagnostics are turned into readable
// snippets with a caret pointing at the offending column:
//
//	PARSE ERROR in fib.nvs at 3:12: expected 'then' after if condition
//
//	   2 | if n < 2
//	   3 |     return n
//	     |     ^
//	   4 | end
//
// The snippet shows up to one line of context before and after the error
// line. WrapErrorWithName recognizes *LexError, *ParseError, and
// *RuntimeError; any other error is returned unchanged. Line/column are
// clamped to the source bounds so rendering never fails.
//
// This file also provides the "did you mean" helper used for NameError and
// ModuleError messages, backed by fuzzy matching over the visible names.
package novascript

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

// WrapErrorWithName returns err augmented with a caret-annotated snippet of
// src. name labels the source ("fib.nvs", "<repl>"); pass "" to omit it.
func WrapErrorWithName(err error, name, src string) error {
	switch e := err.(type) {
	case *LexError:
		return fmt.Errorf("%s", snippet(src, "LEXICAL ERROR", name, e.Line, e.Col+1, e.Msg))
	case *ParseError:
		return fmt.Errorf("%s", snippet(src, "PARSE ERROR", name, e.Line, e.Col+1, e.Msg))
	case *RuntimeError:
		msg := fmt.Sprintf("%s: %s", e.Kind, e.Msg)
		return fmt.Errorf("%s", snippet(src, "RUNTIME ERROR", name, e.Line, e.Col+1, msg))
	default:
		return err
	}
}

// snippet builds the caret-annotated context block. Coordinates are treated
// as 1-based and clamped to the source bounds.
func snippet(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	lineTxt := lines[line-1]

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lineTxt)
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}

// suggest returns a ", did you mean 'x'?" suffix when a close candidate for
// name exists, else "".
func suggest(name string, candidates []string) string {
	matches := fuzzy.Find(name, candidates)
	if len(matches) == 0 {
		return ""
	}
	best := matches[0].Str
	if best == name {
		return ""
	}
	return fmt.Sprintf(", did you mean '%s'?", best)
}
