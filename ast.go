// ast.go — typed syntax tree for NovaScript.
//
// Every node records the 1-based line and 0-based column of its first token
// so the evaluator can attach positions to runtime errors. Statements and
// expressions are closed sets discriminated by the Stmt/Expr marker methods.
package novascript

// Node is the common interface of all syntax nodes.
type Node interface {
	Pos() (line, col int)
}

// Stmt is implemented by all statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by all expression nodes.
type Expr interface {
	Node
	exprNode()
}

type base struct {
	Line int
	Col  int
}

func (b base) Pos() (int, int) { return b.Line, b.Col }

// Program is the root node: the PROGRAM BEGIN ... PROGRAM END envelope with
// its optional metadata strings. Metadata is parsed but never evaluated.
type Program struct {
	Description string
	Author      string
	Date        string
	Body        []Stmt
}

// Param is a function parameter with an optional declared type ("" if inferred).
type Param struct {
	Name string
	Type string
}

// FieldDecl is a typed class field. Instances initialize each field to the
// zero value of its declared type.
type FieldDecl struct {
	Name string
	Type string
}

// ----- statements -----

// VarDecl is a typed declaration: `num x = expr`. Type is one of
// "num", "str", "bool", "list".
type VarDecl struct {
	base
	Name  string
	Type  string
	Value Expr
}

// Assign mutates an existing binding (`x = expr`, `x += expr`) or an object
// field (`this.name = expr`). Op is ASSIGN or PLUS_ASSIGN.
type Assign struct {
	base
	Target Expr // *Ident or *MemberExpr
	Op     TokenType
	Value  Expr
}

// FuncDecl declares a named function: `func f(a: num) return num ... end`.
type FuncDecl struct {
	base
	Name       string
	Params     []Param
	ReturnType string // "" when omitted
	Body       []Stmt
}

// ClassDecl declares a class: ordered typed fields, then methods.
// A method named "init" is the constructor.
type ClassDecl struct {
	base
	Name    string
	Fields  []FieldDecl
	Methods []*FuncDecl
}

// IfBranch is one (condition, block) arm of an if/else-if chain.
type IfBranch struct {
	Cond Expr
	Body []Stmt
}

// If is an ordered branch list with an optional trailing else block.
type If struct {
	base
	Branches []IfBranch
	Else     []Stmt
}

// ForIn iterates a list: `for x in expr do ... end`.
type ForIn struct {
	base
	Var      string
	Iterable Expr
	Body     []Stmt
}

// While is `while cond do ... end`.
type While struct {
	base
	Cond Expr
	Body []Stmt
}

// TryExcept is `try ... except NAME ... end`. A runtime error raised in Body
// binds its message to ErrName inside Handler's scope.
type TryExcept struct {
	base
	Body    []Stmt
	ErrName string
	Handler []Stmt
}

// Display is the single output statement: `display expr`.
type Display struct {
	base
	Value Expr
}

// Return exits the nearest enclosing function call. Value may be nil.
type Return struct {
	base
	Value Expr
}

// Use imports a module into the global scope: `use strlib`.
type Use struct {
	base
	Name string
}

// ExprStmt is an expression evaluated for its effects (usually a call).
type ExprStmt struct {
	base
	X Expr
}

func (*VarDecl) stmtNode()   {}
func (*Assign) stmtNode()    {}
func (*FuncDecl) stmtNode()  {}
func (*ClassDecl) stmtNode() {}
func (*If) stmtNode()        {}
func (*ForIn) stmtNode()     {}
func (*While) stmtNode()     {}
func (*TryExcept) stmtNode() {}
func (*Display) stmtNode()   {}
func (*Return) stmtNode()    {}
func (*Use) stmtNode()       {}
func (*ExprStmt) stmtNode()  {}

// ----- expressions -----

// NumberLit is a numeric literal (always float64).
type NumberLit struct {
	base
	Value float64
}

// StringLit is a decoded string literal.
type StringLit struct {
	base
	Value string
}

// BoolLit is `true` or `false`.
type BoolLit struct {
	base
	Value bool
}

// ListLit is `[e1, e2, ...]`.
type ListLit struct {
	base
	Elems []Expr
}

// Ident is a name reference.
type Ident struct {
	base
	Name string
}

// BinaryExpr applies an infix operator; all binary operators are
// left-associative.
type BinaryExpr struct {
	base
	Op    TokenType
	Left  Expr
	Right Expr
}

// UnaryExpr is `not x` or `-x`.
type UnaryExpr struct {
	base
	Op TokenType
	X  Expr
}

// CallExpr invokes a function, method, or class constructor.
type CallExpr struct {
	base
	Callee Expr
	Args   []Expr
}

// MemberExpr is `obj.name` — instance field/method access or module member.
type MemberExpr struct {
	base
	Object Expr
	Name   string
}

// IndexExpr is the list read `xs[i]`.
type IndexExpr struct {
	base
	Object Expr
	Index  Expr
}

// ThisRef is the receiver reference inside a method body.
type ThisRef struct {
	base
}

func (*NumberLit) exprNode()  {}
func (*StringLit) exprNode()  {}
func (*BoolLit) exprNode()    {}
func (*ListLit) exprNode()    {}
func (*Ident) exprNode()      {}
func (*BinaryExpr) exprNode() {}
func (*UnaryExpr) exprNode()  {}
func (*CallExpr) exprNode()   {}
func (*MemberExpr) exprNode() {}
func (*IndexExpr) exprNode()  {}
func (*ThisRef) exprNode()    {}
