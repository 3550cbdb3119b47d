// interp_exec.go — tree-walking evaluator for NovaScript.
//
// Execution is strictly sequential with a single control path. Each
// statement either completes normally, produces a return value (propagated
// up to the nearest enclosing function call as a non-nil *Value), or fails
// with a *RuntimeError carried as an ordinary Go error. try/except
// intercepts the error path and converts the error's message into a normal
// Str binding; return values pass through try blocks untouched.
//
// Scoping discipline: every block and every call pushes exactly one fresh
// Env whose parent is the lexically enclosing scope — for calls, the
// function's captured closure scope, never the caller's. Scopes are
// discarded implicitly on every exit path.
package novascript

import "math"

// ----- statements -----

// execBlock runs stmts in env. A non-nil ret means a return is propagating.
func (ip *Interpreter) execBlock(stmts []Stmt, env *Env) (ret *Value, err error) {
	for _, s := range stmts {
		ret, err = ip.execStmt(s, env)
		if err != nil || ret != nil {
			return ret, err
		}
	}
	return nil, nil
}

func (ip *Interpreter) execStmt(s Stmt, env *Env) (*Value, error) {
	switch st := s.(type) {
	case *VarDecl:
		return nil, ip.execVarDecl(st, env)
	case *Assign:
		return nil, ip.execAssign(st, env)
	case *FuncDecl:
		env.Define(st.Name, FunVal(&Fun{
			Name:       st.Name,
			Params:     st.Params,
			ReturnType: st.ReturnType,
			Body:       st.Body,
			Env:        env,
		}))
		return nil, nil
	case *ClassDecl:
		return nil, ip.execClassDecl(st, env)
	case *If:
		return ip.execIf(st, env)
	case *ForIn:
		return ip.execForIn(st, env)
	case *While:
		return ip.execWhile(st, env)
	case *TryExcept:
		return ip.execTry(st, env)
	case *Display:
		v, err := ip.evalExpr(st.Value, env)
		if err != nil {
			return nil, err
		}
		if _, err := ip.out.Write([]byte(FormatValue(v) + "\n")); err != nil {
			return nil, rtError(st, ErrModule, "display failed: %v", err)
		}
		return nil, nil
	case *Return:
		v := Nil
		if st.Value != nil {
			var err error
			v, err = ip.evalExpr(st.Value, env)
			if err != nil {
				return nil, err
			}
		}
		return &v, nil
	case *Use:
		mod, err := ip.registry.Resolve(st.Name)
		if err != nil {
			return nil, ip.moduleErrorAt(st, err)
		}
		// `use` always lands in the global scope, wherever it executes.
		ip.Globals.Define(st.Name, Value{Tag: VTModule, Data: mod})
		return nil, nil
	case *ExprStmt:
		_, err := ip.evalExpr(st.X, env)
		return nil, err
	default:
		return nil, rtError(s, ErrType, "unsupported statement")
	}
}

func (ip *Interpreter) execVarDecl(st *VarDecl, env *Env) error {
	v, err := ip.evalExpr(st.Value, env)
	if err != nil {
		return err
	}
	if !tagMatchesType(v.Tag, st.Type) {
		return rtError(st, ErrType, "cannot assign %s value to '%s' declared as %s",
			v.Tag.TypeName(), st.Name, st.Type)
	}
	env.DefineTyped(st.Name, v, st.Type)
	return nil
}

func (ip *Interpreter) execAssign(st *Assign, env *Env) error {
	v, err := ip.evalExpr(st.Value, env)
	if err != nil {
		return err
	}

	switch target := st.Target.(type) {
	case *Ident:
		frame := env.resolve(target.Name)
		if frame == nil {
			return rtError(st, ErrName, "assignment to undeclared name '%s'%s",
				target.Name, suggest(target.Name, env.Names()))
		}
		if st.Op == PLUS_ASSIGN {
			v, err = ip.applyPlus(st, frame.table[target.Name], v)
			if err != nil {
				return err
			}
		}
		if typ := frame.types[target.Name]; typ != "" && !tagMatchesType(v.Tag, typ) {
			return rtError(st, ErrType, "cannot assign %s value to '%s' declared as %s",
				v.Tag.TypeName(), target.Name, typ)
		}
		frame.table[target.Name] = v
		return nil

	case *MemberExpr:
		obj, err2 := ip.evalExpr(target.Object, env)
		if err2 != nil {
			return err2
		}
		if obj.Tag != VTInstance {
			return rtError(st, ErrType, "cannot assign to member of %s value", obj.Tag.TypeName())
		}
		inst := obj.Data.(*Instance)
		decl, ok := inst.Class.fieldDecl(target.Name)
		if !ok {
			return rtError(st, ErrName, "class %s has no field '%s'", inst.Class.Name, target.Name)
		}
		if st.Op == PLUS_ASSIGN {
			v, err = ip.applyPlus(st, inst.Fields[target.Name], v)
			if err != nil {
				return err
			}
		}
		if !tagMatchesType(v.Tag, decl.Type) {
			return rtError(st, ErrType, "cannot assign %s value to field '%s' declared as %s",
				v.Tag.TypeName(), target.Name, decl.Type)
		}
		inst.Fields[target.Name] = v
		return nil

	default:
		return rtError(st, ErrType, "invalid assignment target")
	}
}

func (ip *Interpreter) execClassDecl(st *ClassDecl, env *Env) error {
	cls := &Class{
		Name:    st.Name,
		Fields:  st.Fields,
		Methods: make(map[string]*Fun, len(st.Methods)),
	}
	for _, m := range st.Methods {
		cls.Methods[m.Name] = &Fun{
			Name:       m.Name,
			Params:     m.Params,
			ReturnType: m.ReturnType,
			Body:       m.Body,
			Env:        env,
		}
	}
	env.Define(st.Name, Value{Tag: VTClass, Data: cls})
	return nil
}

func (c *Class) fieldDecl(name string) (FieldDecl, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDecl{}, false
}

func (ip *Interpreter) execIf(st *If, env *Env) (*Value, error) {
	for _, br := range st.Branches {
		cond, err := ip.evalExpr(br.Cond, env)
		if err != nil {
			return nil, err
		}
		if cond.Tag != VTBool {
			return nil, rtError(st, ErrType, "if condition must be bool, got %s", cond.Tag.TypeName())
		}
		if cond.Data.(bool) {
			return ip.execBlock(br.Body, NewEnv(env))
		}
	}
	if st.Else != nil {
		return ip.execBlock(st.Else, NewEnv(env))
	}
	return nil, nil
}

func (ip *Interpreter) execForIn(st *ForIn, env *Env) (*Value, error) {
	iter, err := ip.evalExpr(st.Iterable, env)
	if err != nil {
		return nil, err
	}
	if iter.Tag != VTList {
		return nil, rtError(st, ErrType, "for loop iterable must be list, got %s", iter.Tag.TypeName())
	}
	lst := iter.Data.(*ListObject)
	// No snapshot: mutation of the list during iteration is visible to
	// subsequent iterations, so the length is re-read every pass.
	for i := 0; i < len(lst.Elems); i++ {
		scope := NewEnv(env)
		scope.Define(st.Var, lst.Elems[i])
		ret, err := ip.execBlock(st.Body, scope)
		if err != nil || ret != nil {
			return ret, err
		}
	}
	return nil, nil
}

func (ip *Interpreter) execWhile(st *While, env *Env) (*Value, error) {
	for {
		cond, err := ip.evalExpr(st.Cond, env)
		if err != nil {
			return nil, err
		}
		if cond.Tag != VTBool {
			return nil, rtError(st, ErrType, "while condition must be bool, got %s", cond.Tag.TypeName())
		}
		if !cond.Data.(bool) {
			return nil, nil
		}
		ret, err := ip.execBlock(st.Body, NewEnv(env))
		if err != nil || ret != nil {
			return ret, err
		}
	}
}

func (ip *Interpreter) execTry(st *TryExcept, env *Env) (*Value, error) {
	ret, err := ip.execBlock(st.Body, NewEnv(env))
	if err == nil {
		return ret, nil
	}
	rte, ok := err.(*RuntimeError)
	if !ok {
		return nil, err
	}
	scope := NewEnv(env)
	scope.Define(st.ErrName, StrVal(rte.Msg))
	return ip.execBlock(st.Handler, scope)
}

// moduleErrorAt positions a registry failure at the `use` statement.
func (ip *Interpreter) moduleErrorAt(n Node, err error) error {
	if rte, ok := err.(*RuntimeError); ok {
		if rte.Line == 0 {
			rte.Line, rte.Col = n.Pos()
		}
		return rte
	}
	return rtError(n, ErrModule, "%v", err)
}

// ----- expressions -----

func (ip *Interpreter) evalExpr(e Expr, env *Env) (Value, error) {
	switch x := e.(type) {
	case *NumberLit:
		return NumVal(x.Value), nil
	case *StringLit:
		return StrVal(x.Value), nil
	case *BoolLit:
		return BoolVal(x.Value), nil
	case *ListLit:
		elems := make([]Value, 0, len(x.Elems))
		for _, el := range x.Elems {
			v, err := ip.evalExpr(el, env)
			if err != nil {
				return Nil, err
			}
			elems = append(elems, v)
		}
		return ListVal(elems), nil
	case *Ident:
		v, ok := env.Get(x.Name)
		if !ok {
			return Nil, rtError(x, ErrName, "undefined name '%s'%s", x.Name, suggest(x.Name, env.Names()))
		}
		return v, nil
	case *ThisRef:
		v, ok := env.Get("this")
		if !ok {
			return Nil, rtError(x, ErrName, "'this' used outside of a method")
		}
		return v, nil
	case *UnaryExpr:
		return ip.evalUnary(x, env)
	case *BinaryExpr:
		return ip.evalBinary(x, env)
	case *CallExpr:
		return ip.evalCall(x, env)
	case *MemberExpr:
		return ip.evalMember(x, env)
	case *IndexExpr:
		return ip.evalIndex(x, env)
	default:
		return Nil, rtError(e, ErrType, "unsupported expression")
	}
}

func (ip *Interpreter) evalUnary(x *UnaryExpr, env *Env) (Value, error) {
	v, err := ip.evalExpr(x.X, env)
	if err != nil {
		return Nil, err
	}
	switch x.Op {
	case NOT:
		if v.Tag != VTBool {
			return Nil, rtError(x, ErrType, "'not' requires bool, got %s", v.Tag.TypeName())
		}
		return BoolVal(!v.Data.(bool)), nil
	case MINUS:
		if v.Tag != VTNum {
			return Nil, rtError(x, ErrType, "unary '-' requires num, got %s", v.Tag.TypeName())
		}
		return NumVal(-v.Data.(float64)), nil
	default:
		return Nil, rtError(x, ErrType, "unsupported unary operator")
	}
}

func (ip *Interpreter) evalBinary(x *BinaryExpr, env *Env) (Value, error) {
	// and/or short-circuit before the right operand is evaluated.
	if x.Op == AND || x.Op == OR {
		l, err := ip.evalExpr(x.Left, env)
		if err != nil {
			return Nil, err
		}
		if l.Tag != VTBool {
			return Nil, rtError(x, ErrType, "'%s' requires bool operands, got %s",
				logicalName(x.Op), l.Tag.TypeName())
		}
		lb := l.Data.(bool)
		if x.Op == AND && !lb {
			return BoolVal(false), nil
		}
		if x.Op == OR && lb {
			return BoolVal(true), nil
		}
		r, err := ip.evalExpr(x.Right, env)
		if err != nil {
			return Nil, err
		}
		if r.Tag != VTBool {
			return Nil, rtError(x, ErrType, "'%s' requires bool operands, got %s",
				logicalName(x.Op), r.Tag.TypeName())
		}
		return BoolVal(r.Data.(bool)), nil
	}

	l, err := ip.evalExpr(x.Left, env)
	if err != nil {
		return Nil, err
	}
	r, err := ip.evalExpr(x.Right, env)
	if err != nil {
		return Nil, err
	}

	switch x.Op {
	case EQ:
		return BoolVal(valuesEqual(l, r)), nil
	case NEQ:
		return BoolVal(!valuesEqual(l, r)), nil
	case PLUS:
		return ip.applyPlus(x, l, r)
	case MINUS, MULT, DIV:
		if l.Tag != VTNum || r.Tag != VTNum {
			return Nil, rtError(x, ErrType, "arithmetic requires num operands, got %s and %s",
				l.Tag.TypeName(), r.Tag.TypeName())
		}
		a, b := l.Data.(float64), r.Data.(float64)
		switch x.Op {
		case MINUS:
			return NumVal(a - b), nil
		case MULT:
			return NumVal(a * b), nil
		default:
			if b == 0 {
				return Nil, rtError(x, ErrDiv, "division by zero")
			}
			return NumVal(a / b), nil
		}
	case LESS, LESS_EQ, GREATER, GREATER_EQ:
		if l.Tag == VTStr && r.Tag == VTStr {
			return BoolVal(compareOrdered(x.Op, l.Data.(string), r.Data.(string))), nil
		}
		if l.Tag != VTNum || r.Tag != VTNum {
			return Nil, rtError(x, ErrType, "comparison requires num or str operands, got %s and %s",
				l.Tag.TypeName(), r.Tag.TypeName())
		}
		return BoolVal(compareOrdered(x.Op, l.Data.(float64), r.Data.(float64))), nil
	default:
		return Nil, rtError(x, ErrType, "unsupported binary operator")
	}
}

func logicalName(op TokenType) string {
	if op == AND {
		return "and"
	}
	return "or"
}

// applyPlus implements '+': num addition, or concatenation when either
// operand is a str (the other operand is stringified in its display form).
func (ip *Interpreter) applyPlus(n Node, l, r Value) (Value, error) {
	switch {
	case l.Tag == VTNum && r.Tag == VTNum:
		return NumVal(l.Data.(float64) + r.Data.(float64)), nil
	case l.Tag == VTStr || r.Tag == VTStr:
		return StrVal(FormatValue(l) + FormatValue(r)), nil
	default:
		return Nil, rtError(n, ErrType, "'+' requires num or str operands, got %s and %s",
			l.Tag.TypeName(), r.Tag.TypeName())
	}
}

func compareOrdered[T float64 | string](op TokenType, a, b T) bool {
	switch op {
	case LESS:
		return a < b
	case LESS_EQ:
		return a <= b
	case GREATER:
		return a > b
	default:
		return a >= b
	}
}

func valuesEqual(l, r Value) bool {
	if l.Tag != r.Tag {
		return false
	}
	switch l.Tag {
	case VTNil:
		return true
	case VTNum:
		return l.Data.(float64) == r.Data.(float64)
	case VTStr:
		return l.Data.(string) == r.Data.(string)
	case VTBool:
		return l.Data.(bool) == r.Data.(bool)
	case VTList:
		a, b := l.Data.(*ListObject), r.Data.(*ListObject)
		if a == b {
			return true
		}
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !valuesEqual(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	default:
		// Functions, classes, instances, and modules compare by identity.
		return l.Data == r.Data
	}
}

// ----- calls & members -----

func (ip *Interpreter) evalCall(x *CallExpr, env *Env) (Value, error) {
	callee, err := ip.evalExpr(x.Callee, env)
	if err != nil {
		return Nil, err
	}

	args := make([]Value, 0, len(x.Args))
	for _, a := range x.Args {
		v, err := ip.evalExpr(a, env)
		if err != nil {
			return Nil, err
		}
		args = append(args, v)
	}

	switch callee.Tag {
	case VTFun:
		return ip.callFunction(x, callee.Data.(*Fun), args)
	case VTClass:
		return ip.instantiate(x, callee.Data.(*Class), args)
	default:
		return Nil, rtError(x, ErrType, "%s value is not callable", callee.Tag.TypeName())
	}
}

// callFunction applies a function value. For user functions the call scope's
// parent is the function's captured closure scope — lexical, not dynamic.
func (ip *Interpreter) callFunction(site Node, f *Fun, args []Value) (Value, error) {
	if f.Native != nil {
		v, err := f.Native(args)
		if err != nil {
			return Nil, ip.moduleErrorAt(site, err)
		}
		return v, nil
	}

	if len(args) != len(f.Params) {
		return Nil, rtError(site, ErrType, "function '%s' expects %d argument(s), got %d",
			f.displayName(), len(f.Params), len(args))
	}
	scope := NewEnv(f.Env)
	for i, p := range f.Params {
		if p.Type != "" && !tagMatchesType(args[i].Tag, p.Type) {
			return Nil, rtError(site, ErrType, "parameter '%s' of '%s' expects %s, got %s",
				p.Name, f.displayName(), p.Type, args[i].Tag.TypeName())
		}
		scope.DefineTyped(p.Name, args[i], p.Type)
	}

	ret, err := ip.execBlock(f.Body, scope)
	if err != nil {
		return Nil, err
	}
	result := Nil
	if ret != nil {
		result = *ret
	}
	if f.ReturnType != "" && !tagMatchesType(result.Tag, f.ReturnType) {
		return Nil, rtError(site, ErrType, "function '%s' declared to return %s, returned %s",
			f.displayName(), f.ReturnType, result.Tag.TypeName())
	}
	return result, nil
}

func (f *Fun) displayName() string {
	if f.Name != "" {
		return f.Name
	}
	return "<anonymous>"
}

// instantiate allocates an Instance with zero-valued declared fields, then
// invokes init (when declared) as an ordinary method call.
func (ip *Interpreter) instantiate(site Node, cls *Class, args []Value) (Value, error) {
	inst := &Instance{Class: cls, Fields: make(map[string]Value, len(cls.Fields))}
	for _, f := range cls.Fields {
		inst.Fields[f.Name] = zeroValue(f.Type)
	}
	self := Value{Tag: VTInstance, Data: inst}

	if init, ok := cls.Methods["init"]; ok {
		if _, err := ip.callFunction(site, bindMethod(init, self), args); err != nil {
			return Nil, err
		}
	} else if len(args) != 0 {
		return Nil, rtError(site, ErrType, "class %s has no init method, got %d argument(s)",
			cls.Name, len(args))
	}
	return self, nil
}

// bindMethod injects the receiver as a 'this' binding between the method's
// closure scope and its future call scope.
func bindMethod(m *Fun, self Value) *Fun {
	recv := NewEnv(m.Env)
	recv.Define("this", self)
	bound := *m
	bound.Env = recv
	return &bound
}

func (ip *Interpreter) evalMember(x *MemberExpr, env *Env) (Value, error) {
	obj, err := ip.evalExpr(x.Object, env)
	if err != nil {
		return Nil, err
	}

	switch obj.Tag {
	case VTModule:
		mod := obj.Data.(*Module)
		v, ok := mod.Get(x.Name)
		if !ok {
			return Nil, rtError(x, ErrModule, "module %s has no member '%s'%s",
				mod.Name, x.Name, suggest(x.Name, mod.Order))
		}
		return v, nil

	case VTInstance:
		inst := obj.Data.(*Instance)
		if v, ok := inst.Fields[x.Name]; ok {
			return v, nil
		}
		if m, ok := inst.Class.Methods[x.Name]; ok {
			return FunVal(bindMethod(m, obj)), nil
		}
		return Nil, rtError(x, ErrMethod, "class %s has no method or field '%s'",
			inst.Class.Name, x.Name)

	case VTList:
		lst := obj.Data.(*ListObject)
		if fn, ok := listMethod(x, lst, x.Name); ok {
			return fn, nil
		}
		return Nil, rtError(x, ErrMethod, "list has no method '%s'", x.Name)

	default:
		return Nil, rtError(x, ErrType, "%s value has no members", obj.Tag.TypeName())
	}
}

// listMethod exposes the documented mutating-list surface: append and length.
func listMethod(site Node, lst *ListObject, name string) (Value, bool) {
	switch name {
	case "append":
		return FunVal(&Fun{Name: "append", Native: func(args []Value) (Value, error) {
			if len(args) != 1 {
				return Nil, rtError(site, ErrType, "append expects 1 argument, got %d", len(args))
			}
			lst.Elems = append(lst.Elems, args[0])
			return Nil, nil
		}}), true
	case "length":
		return FunVal(&Fun{Name: "length", Native: func(args []Value) (Value, error) {
			if len(args) != 0 {
				return Nil, rtError(site, ErrType, "length expects no arguments, got %d", len(args))
			}
			return NumVal(float64(len(lst.Elems))), nil
		}}), true
	default:
		return Nil, false
	}
}

func (ip *Interpreter) evalIndex(x *IndexExpr, env *Env) (Value, error) {
	obj, err := ip.evalExpr(x.Object, env)
	if err != nil {
		return Nil, err
	}
	if obj.Tag != VTList {
		return Nil, rtError(x, ErrType, "cannot index %s value", obj.Tag.TypeName())
	}
	idx, err := ip.evalExpr(x.Index, env)
	if err != nil {
		return Nil, err
	}
	if idx.Tag != VTNum {
		return Nil, rtError(x, ErrType, "list index must be num, got %s", idx.Tag.TypeName())
	}
	f := idx.Data.(float64)
	if f != math.Trunc(f) {
		return Nil, rtError(x, ErrType, "list index must be a whole number, got %v", f)
	}
	lst := obj.Data.(*ListObject)
	i := int(f)
	if i < 0 || i >= len(lst.Elems) {
		return Nil, rtError(x, ErrIndex, "index %d out of range for list of length %d", i, len(lst.Elems))
	}
	return lst.Elems[i], nil
}

// ----- declared-type plumbing -----

// tagMatchesType reports whether a runtime tag satisfies a declared type
// keyword.
func tagMatchesType(tag ValueTag, typ string) bool {
	switch typ {
	case "num":
		return tag == VTNum
	case "str":
		return tag == VTStr
	case "bool":
		return tag == VTBool
	case "list":
		return tag == VTList
	default:
		return true
	}
}

// zeroValue returns the declared type's zero value used for fresh instance
// fields.
func zeroValue(typ string) Value {
	switch typ {
	case "num":
		return NumVal(0)
	case "str":
		return StrVal("")
	case "bool":
		return BoolVal(false)
	case "list":
		return ListVal(nil)
	default:
		return Nil
	}
}
