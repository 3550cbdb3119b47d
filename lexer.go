// lexer.go — tokenizer for NovaScript (.nvs) source.
//
// The lexer scans the raw source string byte-by-byte and produces a flat
// token slice terminated by EOF. It skips whitespace and both comment forms
// ('#' to end of line, '/* ... */' spanning lines, non-nesting), tracks
// 1-based line and 0-based column positions, and reports malformed input as
// a *LexError carrying the offending character and position.
//
// NovaScript has a single numeric type: every numeric literal, integer or
// decimal, is lexed to a float64 literal value.
package novascript

import (
	"fmt"
	"strconv"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	ILLEGAL

	// Punctuation
	LPAREN   // "("
	RPAREN   // ")"
	LBRACKET // "["
	RBRACKET // "]"
	COMMA    // ","
	DOT      // "."
	COLON    // ":"

	// Operators
	PLUS
	MINUS
	MULT
	DIV
	ASSIGN      // "="
	PLUS_ASSIGN // "+="
	EQ          // "=="
	NEQ         // "!="
	LESS
	LESS_EQ
	GREATER
	GREATER_EQ

	// Literals & identifiers
	IDENT
	STRING
	NUMBER

	// Keywords
	PROGRAM
	BEGIN
	END_KW // "END" (program envelope; distinct from lowercase "end")
	NUM_TYPE
	STR_TYPE
	BOOL_TYPE
	LIST_TYPE
	FUNC
	RETURN
	END // "end"
	IF
	THEN
	ELSE
	FOR
	IN
	DO
	WHILE
	TRY
	EXCEPT
	USE
	DISPLAY
	CLASS
	THIS
	TRUE
	FALSE
	AND
	OR
	NOT
)

// Token is a lexical token with an optional parsed literal value.
type Token struct {
	Type    TokenType
	Lexeme  string      // raw text slice
	Literal interface{} // float64 for NUMBER, decoded string for STRING
	Line    int         // 1-based
	Col     int         // 0-based column of the first byte
}

// keywords map
var keywords = map[string]TokenType{
	"PROGRAM": PROGRAM,
	"BEGIN":   BEGIN,
	"END":     END_KW,
	"num":     NUM_TYPE,
	"str":     STR_TYPE,
	"bool":    BOOL_TYPE,
	"list":    LIST_TYPE,
	"func":    FUNC,
	"return":  RETURN,
	"end":     END,
	"if":      IF,
	"then":    THEN,
	"else":    ELSE,
	"for":     FOR,
	"in":      IN,
	"do":      DO,
	"while":   WHILE,
	"try":     TRY,
	"except":  EXCEPT,
	"use":     USE,
	"display": DISPLAY,
	"class":   CLASS,
	"this":    THIS,
	"true":    TRUE,
	"false":   FALSE,
	"and":     AND,
	"or":      OR,
	"not":     NOT,
}

// tokenNames gives a user-facing spelling for diagnostics.
var tokenNames = map[TokenType]string{
	EOF: "end of input", ILLEGAL: "illegal character",
	LPAREN: "'('", RPAREN: "')'", LBRACKET: "'['", RBRACKET: "']'",
	COMMA: "','", DOT: "'.'", COLON: "':'",
	PLUS: "'+'", MINUS: "'-'", MULT: "'*'", DIV: "'/'",
	ASSIGN: "'='", PLUS_ASSIGN: "'+='", EQ: "'=='", NEQ: "'!='",
	LESS: "'<'", LESS_EQ: "'<='", GREATER: "'>'", GREATER_EQ: "'>='",
	IDENT: "identifier", STRING: "string literal", NUMBER: "number literal",
	PROGRAM: "'PROGRAM'", BEGIN: "'BEGIN'", END_KW: "'END'",
	NUM_TYPE: "'num'", STR_TYPE: "'str'", BOOL_TYPE: "'bool'", LIST_TYPE: "'list'",
	FUNC: "'func'", RETURN: "'return'", END: "'end'",
	IF: "'if'", THEN: "'then'", ELSE: "'else'",
	FOR: "'for'", IN: "'in'", DO: "'do'", WHILE: "'while'",
	TRY: "'try'", EXCEPT: "'except'", USE: "'use'", DISPLAY: "'display'",
	CLASS: "'class'", THIS: "'this'", TRUE: "'true'", FALSE: "'false'",
	AND: "'and'", OR: "'or'", NOT: "'not'",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Lexer scans a NovaScript source string into tokens.
type Lexer struct {
	src   string
	start int // start index of current token
	cur   int // current index
	line  int // 1-based
	col   int // 0-based column within line

	// precise token start position
	tokStartLine int
	tokStartCol  int
}

// NewLexer creates a new lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 0}
}

// ----- errors -----

// LexError reports a malformed token with its 1-based line and 0-based column.
type LexError struct {
	Line int
	Col  int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("LEXICAL ERROR at %d:%d: %s", e.Line, e.Col+1, e.Msg)
}

func (l *Lexer) err(msg string) error {
	return &LexError{Line: l.line, Col: l.col, Msg: msg}
}

// ----- low-level cursor -----

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) peekNext() (byte, bool) {
	if l.cur+1 >= len(l.src) {
		return 0, false
	}
	return l.src[l.cur+1], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return ch, true
}

func (l *Lexer) makeToken(tt TokenType, lit interface{}) Token {
	return Token{
		Type:    tt,
		Lexeme:  l.src[l.start:l.cur],
		Literal: lit,
		Line:    l.tokStartLine,
		Col:     l.tokStartCol,
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isDigit(b)
}

// ----- whitespace & comments -----

func (l *Lexer) skipWhitespace() error {
	for !l.isAtEnd() {
		ch, _ := l.peek()
		switch ch {
		case ' ', '\r', '\n', '\t':
			l.advance()
		case '#':
			// line comment: '#' to end of line
			for {
				b, ok := l.peek()
				if !ok || b == '\n' {
					break
				}
				l.advance()
			}
		case '/':
			// '/*' opens a block comment; a lone '/' is the DIV operator
			if b2, ok := l.peekNext(); ok && b2 == '*' {
				if err := l.skipBlockComment(); err != nil {
					return err
				}
				continue
			}
			return nil
		default:
			return nil
		}
	}
	return nil
}

func (l *Lexer) skipBlockComment() error {
	openLine, openCol := l.line, l.col
	l.advance() // '/'
	l.advance() // '*'
	for !l.isAtEnd() {
		ch, _ := l.advance()
		if ch == '*' {
			if b, ok := l.peek(); ok && b == '/' {
				l.advance()
				return nil
			}
		}
	}
	return &LexError{Line: openLine, Col: openCol, Msg: "block comment was not terminated"}
}

// ----- scanners -----

// scanString parses a double-quoted string literal with standard escapes.
func (l *Lexer) scanString() (string, error) {
	var out []byte
	for !l.isAtEnd() {
		ch, _ := l.advance()
		if ch == '"' {
			return string(out), nil
		}
		if ch == '\n' {
			return "", &LexError{Line: l.tokStartLine, Col: l.tokStartCol, Msg: "string was not terminated"}
		}
		if ch == '\\' {
			esc, ok := l.advance()
			if !ok {
				return "", l.err("unfinished escape sequence")
			}
			switch esc {
			case '"':
				out = append(out, '"')
			case '\\':
				out = append(out, '\\')
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			default:
				return "", l.err(fmt.Sprintf("invalid escape sequence: \\%c", esc))
			}
			continue
		}
		out = append(out, ch)
	}
	return "", &LexError{Line: l.tokStartLine, Col: l.tokStartCol, Msg: "string was not terminated"}
}

// scanNumber parses an integer or decimal literal; the value is always float64.
func (l *Lexer) scanNumber() (float64, error) {
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			break
		}
		l.advance()
	}
	if b, ok := l.peek(); ok && b == '.' {
		if b2, ok2 := l.peekNext(); ok2 && isDigit(b2) {
			l.advance() // '.'
			for {
				b, ok := l.peek()
				if !ok || !isDigit(b) {
					break
				}
				l.advance()
			}
		}
	}
	lex := l.src[l.start:l.cur]
	v, convErr := strconv.ParseFloat(lex, 64)
	if convErr != nil {
		return 0, l.err(fmt.Sprintf("invalid number literal %q", lex))
	}
	return v, nil
}

func (l *Lexer) scanIdentifier() string {
	for {
		b, ok := l.peek()
		if !ok || !isAlphaNum(b) {
			break
		}
		l.advance()
	}
	return l.src[l.start:l.cur]
}

// ----- main scanner -----

func (l *Lexer) scanToken() (Token, error) {
	if err := l.skipWhitespace(); err != nil {
		return Token{}, err
	}
	l.tokStartLine = l.line
	l.tokStartCol = l.col
	l.start = l.cur

	if l.isAtEnd() {
		return l.makeToken(EOF, nil), nil
	}

	ch, _ := l.advance()

	switch ch {
	case '(':
		return l.makeToken(LPAREN, nil), nil
	case ')':
		return l.makeToken(RPAREN, nil), nil
	case '[':
		return l.makeToken(LBRACKET, nil), nil
	case ']':
		return l.makeToken(RBRACKET, nil), nil
	case ',':
		return l.makeToken(COMMA, nil), nil
	case ':':
		return l.makeToken(COLON, nil), nil
	case '.':
		return l.makeToken(DOT, nil), nil
	case '-':
		return l.makeToken(MINUS, nil), nil
	case '*':
		return l.makeToken(MULT, nil), nil
	case '/':
		return l.makeToken(DIV, nil), nil
	case '+':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.makeToken(PLUS_ASSIGN, nil), nil
		}
		return l.makeToken(PLUS, nil), nil
	case '=':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.makeToken(EQ, nil), nil
		}
		return l.makeToken(ASSIGN, nil), nil
	case '!':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.makeToken(NEQ, nil), nil
		}
		return Token{}, &LexError{Line: l.tokStartLine, Col: l.tokStartCol, Msg: "unexpected character: '!'"}
	case '<':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.makeToken(LESS_EQ, nil), nil
		}
		return l.makeToken(LESS, nil), nil
	case '>':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.makeToken(GREATER_EQ, nil), nil
		}
		return l.makeToken(GREATER, nil), nil
	case '"':
		text, err := l.scanString()
		if err != nil {
			return Token{}, err
		}
		return l.makeToken(STRING, text), nil
	}

	if isDigit(ch) {
		v, err := l.scanNumber()
		if err != nil {
			return Token{}, err
		}
		return l.makeToken(NUMBER, v), nil
	}

	if isAlpha(ch) {
		lex := l.scanIdentifier()
		if tt, ok := keywords[lex]; ok {
			return l.makeToken(tt, nil), nil
		}
		return l.makeToken(IDENT, lex), nil
	}

	return Token{}, &LexError{Line: l.tokStartLine, Col: l.tokStartCol, Msg: fmt.Sprintf("unexpected character: %q", ch)}
}

// Scan tokenizes the entire source and returns tokens (EOF included).
func (l *Lexer) Scan() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.scanToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}
