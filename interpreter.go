// interpreter.go — public surface of the NovaScript runtime.
//
// This file defines the runtime value model (tagged `Value`), lexical
// environments (`Env`), structured runtime errors, and the `Interpreter`
// entry points. The tree-walking evaluator itself lives in interp_exec.go;
// module resolution lives in modules.go.
//
// EXECUTION & SCOPING
// -------------------
// NovaScript code evaluates in environments that form a lexical chain via a
// parent pointer. Lookup walks innermost-outward and returns the first
// binding found; defining in an inner scope shadows without mutating the
// outer binding. A new scope is pushed on every function call and on every
// block entry (if/for/while/try bodies) and discarded on every exit path.
// Closures keep a non-owning reference to their defining scope, which the
// host's garbage collector keeps alive as long as the function value is
// reachable.
//
// VALUES
// ------
// `Value` is a tagged union: nil, num (float64 — the language's single
// numeric type), str, bool, list, function/closure, class, instance, and
// module namespace. Lists are shared by reference: mutation through one
// alias is visible through all aliases. Everything else behaves as a value.
//
// ERRORS
// ------
// All evaluation failures are *RuntimeError values with a Kind from the
// fixed taxonomy, a message, and a 1-based source position. They propagate
// as ordinary Go errors through the evaluator; a try/except block converts
// a propagated error back into a normal Str binding. Lex and parse errors
// abort before evaluation and never reach the evaluator.
package novascript

import (
	"fmt"
	"io"
	"os"
)

// Version is the interpreter release version reported by `nvs version`.
const Version = "0.4.0"

// BuildDate is stamped by the build (ldflags); "unknown" for plain go build.
var BuildDate = "unknown"

////////////////////////////////////////////////////////////////////////////////
//                                VALUE MODEL
////////////////////////////////////////////////////////////////////////////////

// ValueTag enumerates the runtime kinds a Value may hold.
type ValueTag int

const (
	VTNil      ValueTag = iota // nil (no payload)
	VTNum                      // float64
	VTStr                      // string
	VTBool                     // bool
	VTList                     // *ListObject (shared by reference)
	VTFun                      // *Fun (closure; native or user-defined)
	VTClass                    // *Class
	VTInstance                 // *Instance
	VTModule                   // *Module (namespace bound by `use`)
)

// TypeName returns the language-level name of a tag ("num", "str", ...).
func (t ValueTag) TypeName() string {
	switch t {
	case VTNil:
		return "nil"
	case VTNum:
		return "num"
	case VTStr:
		return "str"
	case VTBool:
		return "bool"
	case VTList:
		return "list"
	case VTFun:
		return "func"
	case VTClass:
		return "class"
	case VTInstance:
		return "instance"
	case VTModule:
		return "module"
	default:
		return "unknown"
	}
}

// Value is the universal runtime carrier. Tag determines which Go type Data
// holds (see ValueTag).
type Value struct {
	Tag  ValueTag
	Data interface{}
}

// Nil is the singleton nil Value.
var Nil = Value{Tag: VTNil}

// Primitive constructors.
func NumVal(f float64) Value { return Value{Tag: VTNum, Data: f} }
func StrVal(s string) Value  { return Value{Tag: VTStr, Data: s} }
func BoolVal(b bool) Value   { return Value{Tag: VTBool, Data: b} }

// ListObject is the shared payload of a VTList value. All aliases of a list
// point at the same ListObject, so append through one alias is visible
// through the others.
type ListObject struct {
	Elems []Value
}

// ListVal wraps a fresh element slice into a list Value.
func ListVal(elems []Value) Value {
	return Value{Tag: VTList, Data: &ListObject{Elems: elems}}
}

// NativeFn is the module call contract: ordered evaluated arguments in, a
// Value or a *RuntimeError out. Implementations report bad argument count or
// type via Kind ErrModule; the evaluator attaches the call-site position.
type NativeFn func(args []Value) (Value, error)

// Fun represents a function value: either user-declared (Body+Env) or
// native (Native non-nil). User functions capture their defining Env — the
// closure — which becomes the parent of every call scope.
type Fun struct {
	Name       string
	Params     []Param
	ReturnType string // "" when undeclared
	Body       []Stmt
	Env        *Env     // closure; nil for natives
	Native     NativeFn // non-nil for module built-ins
}

// FunVal wraps *Fun into a Value.
func FunVal(f *Fun) Value { return Value{Tag: VTFun, Data: f} }

// Class is a flat field/method table; NovaScript has no inheritance.
type Class struct {
	Name    string
	Fields  []FieldDecl
	Methods map[string]*Fun
}

// Instance is a reference to its class plus a mutable field map.
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

// Module is the namespace value bound by `use NAME`; member access
// dispatches into Members.
type Module struct {
	Name    string
	Members map[string]Value
	Order   []string // deterministic member listing for tooling
}

// Get returns an exported member and a presence flag.
func (m *Module) Get(name string) (Value, bool) {
	v, ok := m.Members[name]
	return v, ok
}

////////////////////////////////////////////////////////////////////////////////
//                                ENVIRONMENTS
////////////////////////////////////////////////////////////////////////////////

// Env is a lexical environment frame with a parent link. The global frame
// has a nil parent.
type Env struct {
	parent *Env
	table  map[string]Value
	types  map[string]string // declared type per name; "" / absent means inferred
}

// NewEnv creates a new lexical frame with the given parent (which may be nil).
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, table: make(map[string]Value), types: make(map[string]string)}
}

// Define binds name in the current frame, shadowing any outer binding.
func (e *Env) Define(name string, v Value) { e.table[name] = v }

// DefineTyped binds name with a declared type that later assignments to the
// same binding must satisfy. An empty type means inference: the binding
// accepts any tag.
func (e *Env) DefineTyped(name string, v Value, typ string) {
	e.table[name] = v
	if typ != "" {
		e.types[name] = typ
	}
}

// resolve returns the innermost frame that binds name, or nil.
func (e *Env) resolve(name string) *Env {
	for s := e; s != nil; s = s.parent {
		if _, ok := s.table[name]; ok {
			return s
		}
	}
	return nil
}

// Set updates the nearest existing binding of name. It reports false when no
// visible frame binds the name; it never implicitly defines.
func (e *Env) Set(name string, v Value) bool {
	for s := e; s != nil; s = s.parent {
		if _, ok := s.table[name]; ok {
			s.table[name] = v
			return true
		}
	}
	return false
}

// Get retrieves the nearest visible binding for name.
func (e *Env) Get(name string) (Value, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.table[name]; ok {
			return v, true
		}
	}
	return Value{}, false
}

// Names returns every name visible from this frame, innermost first.
// Used for "did you mean" suggestions.
func (e *Env) Names() []string {
	var out []string
	seen := map[string]bool{}
	for s := e; s != nil; s = s.parent {
		for k := range s.table {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}

////////////////////////////////////////////////////////////////////////////////
//                               RUNTIME ERRORS
////////////////////////////////////////////////////////////////////////////////

// ErrorKind names one entry of the fixed runtime error taxonomy.
type ErrorKind string

const (
	ErrType   ErrorKind = "TypeMismatch"
	ErrName   ErrorKind = "NameError"
	ErrDiv    ErrorKind = "DivisionByZero"
	ErrIndex  ErrorKind = "IndexOutOfRange"
	ErrMethod ErrorKind = "MethodNotFound"
	ErrModule ErrorKind = "ModuleError"
)

// RuntimeError is an execution-time failure with a source position.
// Line is 1-based; Col is 0-based (rendered 1-based).
type RuntimeError struct {
	Kind ErrorKind
	Msg  string
	Line int
	Col  int
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("RUNTIME ERROR at %d:%d: %s: %s", e.Line, e.Col+1, e.Kind, e.Msg)
}

func rtError(n Node, kind ErrorKind, format string, args ...interface{}) *RuntimeError {
	line, col := n.Pos()
	return &RuntimeError{Kind: kind, Msg: fmt.Sprintf(format, args...), Line: line, Col: col}
}

////////////////////////////////////////////////////////////////////////////////
//                                INTERPRETER
////////////////////////////////////////////////////////////////////////////////

// Interpreter executes NovaScript programs against a persistent global
// environment. The module registry is an explicit collaborator passed at
// construction; there is no process-wide state.
type Interpreter struct {
	Globals  *Env
	registry *Registry
	out      io.Writer
}

// NewInterpreter constructs an interpreter with the given module registry
// and `display` sink. A nil registry gets the built-in modules only; a nil
// writer defaults to stdout.
func NewInterpreter(reg *Registry, out io.Writer) *Interpreter {
	if reg == nil {
		reg = NewRegistry()
	}
	if out == nil {
		out = os.Stdout
	}
	return &Interpreter{
		Globals:  NewEnv(nil),
		registry: reg,
		out:      out,
	}
}

// Run executes a parsed program. It returns nil on success or the uncaught
// *RuntimeError that terminated the run.
func (ip *Interpreter) Run(prog *Program) error {
	_, err := ip.execBlock(prog.Body, ip.Globals)
	return err
}

// RunSource parses and executes src. Lex and parse failures are returned
// before any statement executes; name labels diagnostics (a file path or
// "<repl>").
func (ip *Interpreter) RunSource(name, src string) error {
	prog, err := Parse(src)
	if err != nil {
		return WrapErrorWithName(err, name, src)
	}
	if err := ip.Run(prog); err != nil {
		return WrapErrorWithName(err, name, src)
	}
	return nil
}

// EvalStatements executes a bare statement list in the persistent global
// environment (REPL mode) and returns the value of the final expression
// statement, or Nil when the input ends with a non-expression statement.
func (ip *Interpreter) EvalStatements(stmts []Stmt) (Value, error) {
	last := Nil
	for _, s := range stmts {
		if es, ok := s.(*ExprStmt); ok {
			v, err := ip.evalExpr(es.X, ip.Globals)
			if err != nil {
				return Nil, err
			}
			last = v
			continue
		}
		ret, err := ip.execStmt(s, ip.Globals)
		if err != nil {
			return Nil, err
		}
		if ret != nil {
			return *ret, nil
		}
		last = Nil
	}
	return last, nil
}
