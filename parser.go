// parser.go — recursive-descent parser for NovaScript.
//
// The parser consumes the token slice produced by the lexer and builds the
// typed AST in ast.go. Parsing is fail-fast: the first structural error
// aborts the whole program with a *ParseError naming the unexpected token
// and its position. No partial-AST recovery is attempted.
//
// Grammar shape (statement keywords dispatch the statement kind):
//
//	program  := PROGRAM BEGIN metadata* stmt* PROGRAM END
//	metadata := DESCRIPTION|AUTHOR|DATE string
//	stmt     := typed-decl | func | class | if | for | while | try
//	          | display | return | use | assignment-or-expression
//
// Expression precedence, lowest to highest, all left-associative:
//
//	or  <  and  <  == !=  <  < <= > >=  <  + -  <  * /  <  unary  <  postfix
//
// where postfix covers calls, member access, and index reads.
//
// Two entry points exist: Parse for whole programs, and ParseStatements for
// the REPL, which accepts a bare statement list without the PROGRAM
// envelope. In the REPL case an error caused by running out of input is
// marked Incomplete so the driver can prompt for a continuation line.
package novascript

import (
	"errors"
	"fmt"
	"strings"
)

// ParseError reports the unexpected token and its position. Incomplete is
// set when the error is caused by end of input, which interactive drivers
// treat as "keep typing" rather than a hard failure.
type ParseError struct {
	Line       int
	Col        int
	Msg        string
	Incomplete bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("PARSE ERROR at %d:%d: %s", e.Line, e.Col+1, e.Msg)
}

// IsIncomplete reports whether err is a ParseError caused by truncated input.
func IsIncomplete(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Incomplete
}

// Parse lexes and parses a complete NovaScript program.
func Parse(src string) (*Program, error) {
	toks, err := NewLexer(src).Scan()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.program()
}

// ParseStatements lexes and parses a bare statement list (REPL input).
func ParseStatements(src string) ([]Stmt, error) {
	toks, err := NewLexer(src).Scan()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	stmts, perr := p.stmtList(EOF)
	if perr != nil {
		return nil, perr
	}
	if _, perr := p.need(EOF, "unexpected trailing input"); perr != nil {
		return nil, perr
	}
	return stmts, nil
}

type parser struct {
	toks []Token
	i    int
}

// ----- token plumbing -----

func (p *parser) peek() Token {
	if p.i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i]
}

func (p *parser) peekNext() Token {
	if p.i+1 >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+1]
}

func (p *parser) prev() Token { return p.toks[p.i-1] }

func (p *parser) atEnd() bool { return p.peek().Type == EOF }

func (p *parser) match(tt ...TokenType) bool {
	for _, t := range tt {
		if p.peek().Type == t {
			p.i++
			return true
		}
	}
	return false
}

func (p *parser) need(t TokenType, msg string) (Token, error) {
	if p.match(t) {
		return p.prev(), nil
	}
	return Token{}, p.errHere(msg)
}

func (p *parser) errHere(msg string) error {
	g := p.peek()
	return &ParseError{
		Line:       g.Line,
		Col:        g.Col,
		Msg:        fmt.Sprintf("%s (got %s)", msg, g.Type),
		Incomplete: g.Type == EOF,
	}
}

func at(t Token) base { return base{Line: t.Line, Col: t.Col} }

// ----- program & metadata -----

func (p *parser) program() (*Program, error) {
	if _, err := p.need(PROGRAM, "program must begin with 'PROGRAM BEGIN'"); err != nil {
		return nil, err
	}
	if _, err := p.need(BEGIN, "program must begin with 'PROGRAM BEGIN'"); err != nil {
		return nil, err
	}

	prog := &Program{}
	// Optional DESCRIPTION/AUTHOR/DATE string metadata, in any order.
	for p.peek().Type == IDENT && p.peekNext().Type == STRING {
		key := strings.ToUpper(p.peek().Lexeme)
		if key != "DESCRIPTION" && key != "AUTHOR" && key != "DATE" {
			break
		}
		p.i++
		val := p.peek().Literal.(string)
		p.i++
		switch key {
		case "DESCRIPTION":
			prog.Description = val
		case "AUTHOR":
			prog.Author = val
		case "DATE":
			prog.Date = val
		}
	}

	body, err := p.stmtList(PROGRAM)
	if err != nil {
		return nil, err
	}
	prog.Body = body

	if _, err := p.need(PROGRAM, "program must end with 'PROGRAM END'"); err != nil {
		return nil, err
	}
	if _, err := p.need(END_KW, "program must end with 'PROGRAM END'"); err != nil {
		return nil, err
	}
	if _, err := p.need(EOF, "unexpected input after 'PROGRAM END'"); err != nil {
		return nil, err
	}
	return prog, nil
}

// stmtList parses statements until the given terminator (not consumed).
// Block terminators END, EXCEPT, ELSE, and PROGRAM always stop the list so
// enclosing constructs can consume them.
func (p *parser) stmtList(until TokenType) ([]Stmt, error) {
	var out []Stmt
	for {
		t := p.peek().Type
		if t == until || t == END || t == EXCEPT || t == ELSE || t == PROGRAM || t == EOF {
			return out, nil
		}
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
}

// ----- statements -----

func (p *parser) statement() (Stmt, error) {
	switch p.peek().Type {
	case NUM_TYPE, STR_TYPE, BOOL_TYPE, LIST_TYPE:
		// A type keyword followed by a name declares a variable; otherwise
		// the keyword is read as a plain identifier (loop variables may
		// legally shadow type names, e.g. `for num in ...`).
		if p.peekNext().Type == IDENT {
			return p.varDecl()
		}
		return p.assignOrExpr()
	case FUNC:
		return p.funcDecl()
	case CLASS:
		return p.classDecl()
	case IF:
		return p.ifStmt()
	case FOR:
		return p.forStmt()
	case WHILE:
		return p.whileStmt()
	case TRY:
		return p.tryStmt()
	case DISPLAY:
		return p.displayStmt()
	case RETURN:
		return p.returnStmt()
	case USE:
		return p.useStmt()
	default:
		return p.assignOrExpr()
	}
}

func (p *parser) varDecl() (Stmt, error) {
	typeTok := p.peek()
	p.i++
	name, err := p.need(IDENT, "expected variable name after type")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(ASSIGN, "expected '=' in variable declaration"); err != nil {
		return nil, err
	}
	val, err := p.expression()
	if err != nil {
		return nil, err
	}
	return &VarDecl{base: at(typeTok), Name: name.Lexeme, Type: typeTok.Lexeme, Value: val}, nil
}

func isTypeKeyword(t TokenType) bool {
	return t == NUM_TYPE || t == STR_TYPE || t == BOOL_TYPE || t == LIST_TYPE
}

func (p *parser) funcDecl() (*FuncDecl, error) {
	kw := p.peek()
	p.i++
	name, err := p.need(IDENT, "expected function name after 'func'")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(LPAREN, "expected '(' after function name"); err != nil {
		return nil, err
	}

	var params []Param
	for p.peek().Type != RPAREN {
		pn, err := p.need(IDENT, "expected parameter name")
		if err != nil {
			return nil, err
		}
		param := Param{Name: pn.Lexeme}
		if p.match(COLON) {
			tt := p.peek()
			if !isTypeKeyword(tt.Type) {
				return nil, p.errHere("expected parameter type after ':'")
			}
			p.i++
			param.Type = tt.Lexeme
		}
		params = append(params, param)
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.need(RPAREN, "expected ')' after parameters"); err != nil {
		return nil, err
	}

	// `return TYPE` directly after the parameter list declares the return
	// type; a `return` followed by anything else begins the body.
	retType := ""
	if p.peek().Type == RETURN && isTypeKeyword(p.peekNext().Type) {
		p.i++
		retType = p.peek().Lexeme
		p.i++
	}

	body, err := p.stmtList(END)
	if err != nil {
		return nil, err
	}
	if _, err := p.need(END, "expected 'end' to close function body"); err != nil {
		return nil, err
	}
	return &FuncDecl{base: at(kw), Name: name.Lexeme, Params: params, ReturnType: retType, Body: body}, nil
}

func (p *parser) classDecl() (Stmt, error) {
	kw := p.peek()
	p.i++
	name, err := p.need(IDENT, "expected class name after 'class'")
	if err != nil {
		return nil, err
	}

	decl := &ClassDecl{base: at(kw), Name: name.Lexeme}
	// Ordered typed fields first, then methods, until 'end'.
	for {
		switch p.peek().Type {
		case NUM_TYPE, STR_TYPE, BOOL_TYPE, LIST_TYPE:
			typeTok := p.peek()
			p.i++
			fn, err := p.need(IDENT, "expected field name after type")
			if err != nil {
				return nil, err
			}
			if len(decl.Methods) > 0 {
				return nil, &ParseError{Line: typeTok.Line, Col: typeTok.Col,
					Msg: "field declarations must precede methods"}
			}
			decl.Fields = append(decl.Fields, FieldDecl{Name: fn.Lexeme, Type: typeTok.Lexeme})
		case FUNC:
			m, err := p.funcDecl()
			if err != nil {
				return nil, err
			}
			decl.Methods = append(decl.Methods, m)
		case END:
			p.i++
			return decl, nil
		default:
			return nil, p.errHere("expected field declaration, method, or 'end' in class body")
		}
	}
}

func (p *parser) ifStmt() (Stmt, error) {
	kw := p.peek()
	p.i++
	stmt := &If{base: at(kw)}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.need(THEN, "expected 'then' after if condition"); err != nil {
		return nil, err
	}
	body, err := p.stmtList(END)
	if err != nil {
		return nil, err
	}
	stmt.Branches = append(stmt.Branches, IfBranch{Cond: cond, Body: body})

	for p.peek().Type == ELSE {
		p.i++
		if p.match(IF) {
			cond, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.need(THEN, "expected 'then' after else-if condition"); err != nil {
				return nil, err
			}
			body, err := p.stmtList(END)
			if err != nil {
				return nil, err
			}
			stmt.Branches = append(stmt.Branches, IfBranch{Cond: cond, Body: body})
			continue
		}
		elseBody, err := p.stmtList(END)
		if err != nil {
			return nil, err
		}
		stmt.Else = elseBody
		break
	}
	if _, err := p.need(END, "expected 'end' to close if statement"); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *parser) forStmt() (Stmt, error) {
	kw := p.peek()
	p.i++
	// The loop binder may shadow a type keyword name.
	v := p.peek()
	if v.Type != IDENT && !isTypeKeyword(v.Type) {
		return nil, p.errHere("expected loop variable after 'for'")
	}
	p.i++
	if _, err := p.need(IN, "expected 'in' in for statement"); err != nil {
		return nil, err
	}
	iter, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.need(DO, "expected 'do' after for iterable"); err != nil {
		return nil, err
	}
	body, err := p.stmtList(END)
	if err != nil {
		return nil, err
	}
	if _, err := p.need(END, "expected 'end' to close for body"); err != nil {
		return nil, err
	}
	return &ForIn{base: at(kw), Var: v.Lexeme, Iterable: iter, Body: body}, nil
}

func (p *parser) whileStmt() (Stmt, error) {
	kw := p.peek()
	p.i++
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.need(DO, "expected 'do' after while condition"); err != nil {
		return nil, err
	}
	body, err := p.stmtList(END)
	if err != nil {
		return nil, err
	}
	if _, err := p.need(END, "expected 'end' to close while body"); err != nil {
		return nil, err
	}
	return &While{base: at(kw), Cond: cond, Body: body}, nil
}

func (p *parser) tryStmt() (Stmt, error) {
	kw := p.peek()
	p.i++
	body, err := p.stmtList(EXCEPT)
	if err != nil {
		return nil, err
	}
	if _, err := p.need(EXCEPT, "expected 'except' after try block"); err != nil {
		return nil, err
	}
	name, err := p.need(IDENT, "expected error name after 'except'")
	if err != nil {
		return nil, err
	}
	handler, err := p.stmtList(END)
	if err != nil {
		return nil, err
	}
	if _, err := p.need(END, "expected 'end' to close try statement"); err != nil {
		return nil, err
	}
	return &TryExcept{base: at(kw), Body: body, ErrName: name.Lexeme, Handler: handler}, nil
}

func (p *parser) displayStmt() (Stmt, error) {
	kw := p.peek()
	p.i++
	val, err := p.expression()
	if err != nil {
		return nil, err
	}
	return &Display{base: at(kw), Value: val}, nil
}

func (p *parser) returnStmt() (Stmt, error) {
	kw := p.peek()
	p.i++
	stmt := &Return{base: at(kw)}
	if p.canStartExpr() {
		val, err := p.expression()
		if err != nil {
			return nil, err
		}
		stmt.Value = val
	}
	return stmt, nil
}

func (p *parser) canStartExpr() bool {
	switch p.peek().Type {
	case NUMBER, STRING, TRUE, FALSE, IDENT, THIS, LPAREN, LBRACKET, MINUS, NOT,
		NUM_TYPE, STR_TYPE, BOOL_TYPE, LIST_TYPE:
		return true
	default:
		return false
	}
}

func (p *parser) useStmt() (Stmt, error) {
	kw := p.peek()
	p.i++
	name, err := p.need(IDENT, "expected module name after 'use'")
	if err != nil {
		return nil, err
	}
	return &Use{base: at(kw), Name: name.Lexeme}, nil
}

// assignOrExpr parses a leading expression, then decides between an
// assignment statement (when followed by '=' or '+=' and the expression is a
// valid target) and a bare expression statement.
func (p *parser) assignOrExpr() (Stmt, error) {
	start := p.peek()
	x, err := p.expression()
	if err != nil {
		return nil, err
	}
	if p.peek().Type == ASSIGN || p.peek().Type == PLUS_ASSIGN {
		op := p.peek().Type
		switch x.(type) {
		case *Ident, *MemberExpr:
		default:
			return nil, p.errHere("invalid assignment target")
		}
		p.i++
		val, err := p.expression()
		if err != nil {
			return nil, err
		}
		return &Assign{base: at(start), Target: x, Op: op, Value: val}, nil
	}
	return &ExprStmt{base: at(start), X: x}, nil
}

// ----- expressions (precedence ladder, all left-associative) -----

func (p *parser) expression() (Expr, error) { return p.orExpr() }

func (p *parser) binaryLevel(next func() (Expr, error), ops ...TokenType) (Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		matched := false
		for _, op := range ops {
			if p.peek().Type == op {
				p.i++
				right, err := next()
				if err != nil {
					return nil, err
				}
				line, col := left.Pos()
				left = &BinaryExpr{base: base{Line: line, Col: col}, Op: op, Left: left, Right: right}
				matched = true
				break
			}
		}
		if !matched {
			return left, nil
		}
	}
}

func (p *parser) orExpr() (Expr, error) {
	return p.binaryLevel(p.andExpr, OR)
}

func (p *parser) andExpr() (Expr, error) {
	return p.binaryLevel(p.equality, AND)
}

func (p *parser) equality() (Expr, error) {
	return p.binaryLevel(p.relational, EQ, NEQ)
}

func (p *parser) relational() (Expr, error) {
	return p.binaryLevel(p.additive, LESS, LESS_EQ, GREATER, GREATER_EQ)
}

func (p *parser) additive() (Expr, error) {
	return p.binaryLevel(p.multiplicative, PLUS, MINUS)
}

func (p *parser) multiplicative() (Expr, error) {
	return p.binaryLevel(p.unary, MULT, DIV)
}

func (p *parser) unary() (Expr, error) {
	if p.peek().Type == NOT || p.peek().Type == MINUS {
		opTok := p.peek()
		p.i++
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{base: at(opTok), Op: opTok.Type, X: x}, nil
	}
	return p.postfix()
}

func (p *parser) postfix() (Expr, error) {
	x, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Type {
		case LPAREN:
			open := p.peek()
			p.i++
			var args []Expr
			for p.peek().Type != RPAREN {
				a, err := p.expression()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if !p.match(COMMA) {
					break
				}
			}
			if _, err := p.need(RPAREN, "expected ')' after arguments"); err != nil {
				return nil, err
			}
			x = &CallExpr{base: at(open), Callee: x, Args: args}
		case DOT:
			p.i++
			name, err := p.need(IDENT, "expected member name after '.'")
			if err != nil {
				return nil, err
			}
			x = &MemberExpr{base: at(name), Object: x, Name: name.Lexeme}
		case LBRACKET:
			open := p.peek()
			p.i++
			idx, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.need(RBRACKET, "expected ']' after index"); err != nil {
				return nil, err
			}
			x = &IndexExpr{base: at(open), Object: x, Index: idx}
		default:
			return x, nil
		}
	}
}

func (p *parser) primary() (Expr, error) {
	t := p.peek()
	switch t.Type {
	case NUMBER:
		p.i++
		return &NumberLit{base: at(t), Value: t.Literal.(float64)}, nil
	case STRING:
		p.i++
		return &StringLit{base: at(t), Value: t.Literal.(string)}, nil
	case TRUE:
		p.i++
		return &BoolLit{base: at(t), Value: true}, nil
	case FALSE:
		p.i++
		return &BoolLit{base: at(t), Value: false}, nil
	case THIS:
		p.i++
		return &ThisRef{base: at(t)}, nil
	case IDENT:
		p.i++
		return &Ident{base: at(t), Name: t.Lexeme}, nil
	case NUM_TYPE, STR_TYPE, BOOL_TYPE, LIST_TYPE:
		// Type keywords read as plain names in expression position, so a
		// loop variable that shadows a type name stays referencable.
		p.i++
		return &Ident{base: at(t), Name: t.Lexeme}, nil
	case LPAREN:
		p.i++
		x, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.need(RPAREN, "expected ')' after expression"); err != nil {
			return nil, err
		}
		return x, nil
	case LBRACKET:
		p.i++
		lit := &ListLit{base: at(t)}
		for p.peek().Type != RBRACKET {
			e, err := p.expression()
			if err != nil {
				return nil, err
			}
			lit.Elems = append(lit.Elems, e)
			if !p.match(COMMA) {
				break
			}
		}
		if _, err := p.need(RBRACKET, "expected ']' after list elements"); err != nil {
			return nil, err
		}
		return lit, nil
	default:
		return nil, p.errHere("expected expression")
	}
}
