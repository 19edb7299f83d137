package interpreter

import (
	"math"

	"github.com/atlas-lang/atlas/internal/ast"
	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/token"
	"github.com/atlas-lang/atlas/internal/value"
)

func (i *Interpreter) evalExpr(e ast.Expr, env *Environment) (Value, error) {
	switch x := e.(type) {
	case *ast.Literal:
		return literalValue(x), nil
	case *ast.Ident:
		v, ok := env.Get(x.Name)
		if !ok {
			return nil, newRuntimeError(diag.ErrUndefinedVar, x.Sp, "undefined variable %q", x.Name)
		}
		return v, nil
	case *ast.GroupExpr:
		return i.evalExpr(x.X, env)
	case *ast.UnaryExpr:
		return i.evalUnary(x, env)
	case *ast.BinaryExpr:
		return i.evalBinary(x, env)
	case *ast.CallExpr:
		return i.evalCall(x, env)
	case *ast.IndexExpr:
		return i.evalIndex(x, env)
	case *ast.MemberExpr:
		return i.evalMember(x, env)
	case *ast.ArrayLiteral:
		items := make([]Value, len(x.Elements))
		for idx, el := range x.Elements {
			v, err := i.evalExpr(el, env)
			if err != nil {
				return nil, err
			}
			items[idx] = v
		}
		return value.NewArray(items), nil
	case *ast.MatchExpr:
		return i.evalMatch(x, env)
	case *ast.TryExpr:
		return i.evalTry(x, env)
	default:
		return nil, newRuntimeError(diag.ErrRuntimeNonCall, e.Span(), "unhandled expression %T", e)
	}
}

func literalValue(l *ast.Literal) Value {
	switch v := l.Value.(type) {
	case float64:
		return value.Number(v)
	case string:
		return value.String(v)
	case bool:
		return value.Bool(v)
	case nil:
		return value.Null{}
	default:
		return value.Null{}
	}
}

func (i *Interpreter) evalUnary(x *ast.UnaryExpr, env *Environment) (Value, error) {
	v, err := i.evalExpr(x.X, env)
	if err != nil {
		return nil, err
	}
	switch x.Op {
	case token.MINUS:
		n, ok := v.(value.Number)
		if !ok {
			return nil, newRuntimeError(diag.ErrRuntimeNonCall, x.Sp, "cannot negate a %s", v.TypeName())
		}
		return -n, nil
	case token.BANG:
		b, ok := v.(value.Bool)
		if !ok {
			return nil, newRuntimeError(diag.ErrRuntimeNonCall, x.Sp, "cannot negate a %s", v.TypeName())
		}
		return !b, nil
	default:
		return nil, newRuntimeError(diag.ErrRuntimeNonCall, x.Sp, "unknown unary operator %s", x.Op)
	}
}

func (i *Interpreter) evalBinary(x *ast.BinaryExpr, env *Environment) (Value, error) {
	// && and || short-circuit: the right operand is not evaluated unless needed.
	if x.Op == token.AND_AND || x.Op == token.OR_OR {
		l, err := i.evalExpr(x.Left, env)
		if err != nil {
			return nil, err
		}
		lb, ok := l.(value.Bool)
		if !ok {
			return nil, newRuntimeError(diag.ErrRuntimeNonCall, x.Left.Span(), "operand of %s must be bool", x.Op)
		}
		if x.Op == token.AND_AND && !bool(lb) {
			return value.Bool(false), nil
		}
		if x.Op == token.OR_OR && bool(lb) {
			return value.Bool(true), nil
		}
		r, err := i.evalExpr(x.Right, env)
		if err != nil {
			return nil, err
		}
		rb, ok := r.(value.Bool)
		if !ok {
			return nil, newRuntimeError(diag.ErrRuntimeNonCall, x.Right.Span(), "operand of %s must be bool", x.Op)
		}
		return rb, nil
	}

	l, err := i.evalExpr(x.Left, env)
	if err != nil {
		return nil, err
	}
	r, err := i.evalExpr(x.Right, env)
	if err != nil {
		return nil, err
	}

	switch x.Op {
	case token.PLUS:
		if ls, ok := l.(value.String); ok {
			rs, ok := r.(value.String)
			if !ok {
				return nil, newRuntimeError(diag.ErrOperandType, x.Sp, "cannot add string and %s", r.TypeName())
			}
			return ls + rs, nil
		}
		ln, lok := l.(value.Number)
		rn, rok := r.(value.Number)
		if !lok || !rok {
			return nil, newRuntimeError(diag.ErrOperandType, x.Sp, "cannot add %s and %s", l.TypeName(), r.TypeName())
		}
		return ln + rn, nil
	case token.MINUS, token.STAR, token.SLASH, token.PERCENT:
		ln, lok := l.(value.Number)
		rn, rok := r.(value.Number)
		if !lok || !rok {
			return nil, newRuntimeError(diag.ErrOperandType, x.Sp, "arithmetic requires numbers, got %s and %s", l.TypeName(), r.TypeName())
		}
		switch x.Op {
		case token.MINUS:
			return ln - rn, nil
		case token.STAR:
			return ln * rn, nil
		case token.SLASH:
			if rn == 0 {
				return nil, newRuntimeError(diag.ErrDivByZero, x.Sp, "division by zero")
			}
			return ln / rn, nil
		case token.PERCENT:
			if rn == 0 {
				return nil, newRuntimeError(diag.ErrDivByZero, x.Sp, "modulo by zero")
			}
			return value.Number(math.Mod(float64(ln), float64(rn))), nil
		}
	case token.EQ:
		return value.Bool(value.Equal(l, r)), nil
	case token.NOT_EQ:
		return value.Bool(!value.Equal(l, r)), nil
	case token.LT, token.LTE, token.GT, token.GTE:
		ln, lok := l.(value.Number)
		rn, rok := r.(value.Number)
		if !lok || !rok {
			return nil, newRuntimeError(diag.ErrOperandType, x.Sp, "comparison requires numbers, got %s and %s", l.TypeName(), r.TypeName())
		}
		switch x.Op {
		case token.LT:
			return value.Bool(ln < rn), nil
		case token.LTE:
			return value.Bool(ln <= rn), nil
		case token.GT:
			return value.Bool(ln > rn), nil
		case token.GTE:
			return value.Bool(ln >= rn), nil
		}
	}
	return nil, newRuntimeError(diag.ErrRuntimeNonCall, x.Sp, "unknown binary operator %s", x.Op)
}

func (i *Interpreter) evalCall(x *ast.CallExpr, env *Environment) (Value, error) {
	callee, err := i.evalExpr(x.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]Value, len(x.Args))
	for idx, a := range x.Args {
		v, err := i.evalExpr(a, env)
		if err != nil {
			return nil, err
		}
		args[idx] = v
	}
	return i.callValue(callee, args, x.Sp)
}

func (i *Interpreter) callValue(callee Value, args []Value, span diag.Span) (Value, error) {
	switch fn := callee.(type) {
	case *Closure:
		return i.callClosure(fn, args, span)
	case value.Native:
		if !fn.Variadic && len(args) != fn.Arity {
			return nil, newRuntimeError(diag.ErrRuntimeArity, span, "%s expects %d argument(s), got %d", fn.Name, fn.Arity, len(args))
		}
		return fn.Fn(args)
	default:
		return nil, newRuntimeError(diag.ErrRuntimeNonCall, span, "value of type %s is not callable", callee.TypeName())
	}
}

func (i *Interpreter) callClosure(fn *Closure, args []Value, span diag.Span) (Value, error) {
	i.callDepth++
	defer func() { i.callDepth-- }()
	if i.callDepth > maxCallDepth {
		return nil, newRuntimeError(diag.ErrResourceLimit, span, "maximum call depth exceeded")
	}

	params := fn.Decl.Params
	variadic := len(params) > 0 && params[len(params)-1].Variadic
	if variadic {
		if len(args) < len(params)-1 {
			return nil, newRuntimeError(diag.ErrRuntimeArity, span, "%s expects at least %d argument(s), got %d", fn.Decl.Name, len(params)-1, len(args))
		}
	} else if len(args) != len(params) {
		return nil, newRuntimeError(diag.ErrRuntimeArity, span, "%s expects %d argument(s), got %d", fn.Decl.Name, len(params), len(args))
	}

	callEnv := NewEnclosedEnvironment(fn.Env)
	for idx, p := range params {
		if p.Variadic {
			rest := make([]Value, len(args)-idx)
			copy(rest, args[idx:])
			callEnv.Define(p.Name, value.NewArray(rest), true)
			break
		}
		callEnv.Define(p.Name, args[idx], true)
	}

	_, sig, err := i.evalBlock(fn.Decl.Body, callEnv)
	if tp, ok := err.(*tryPropagation); ok {
		return tp.value, nil
	}
	if err != nil {
		return nil, err
	}
	if sig.kind == signalReturn {
		return sig.value, nil
	}
	return value.Void{}, nil
}

func (i *Interpreter) evalIndex(x *ast.IndexExpr, env *Environment) (Value, error) {
	base, err := i.evalExpr(x.X, env)
	if err != nil {
		return nil, err
	}
	idx, err := i.evalExpr(x.Index, env)
	if err != nil {
		return nil, err
	}
	switch b := base.(type) {
	case *value.Array:
		n, ok := idx.(value.Number)
		if !ok {
			return nil, newRuntimeError(diag.ErrOperandType, x.Sp, "array index must be a number")
		}
		pos := int(n)
		if pos < 0 || pos >= len(b.Items) {
			return nil, newRuntimeError(diag.ErrIndexOOB, x.Sp, "index %d out of bounds (len %d)", pos, len(b.Items))
		}
		return b.Items[pos], nil
	case value.String:
		n, ok := idx.(value.Number)
		if !ok {
			return nil, newRuntimeError(diag.ErrOperandType, x.Sp, "string index must be a number")
		}
		runes := []rune(string(b))
		pos := int(n)
		if pos < 0 || pos >= len(runes) {
			return nil, newRuntimeError(diag.ErrIndexOOB, x.Sp, "index %d out of bounds (len %d)", pos, len(runes))
		}
		return value.String(string(runes[pos])), nil
	case *value.HashMap:
		key, ok := idx.(value.String)
		if !ok {
			return nil, newRuntimeError(diag.ErrOperandType, x.Sp, "hashmap key must be a string")
		}
		v, found := b.Items[string(key)]
		if !found {
			return nil, newRuntimeError(diag.ErrIndexOOB, x.Sp, "key %q not found", string(key))
		}
		return v, nil
	default:
		return nil, newRuntimeError(diag.ErrRuntimeNonCall, x.Sp, "value of type %s is not indexable", base.TypeName())
	}
}

func (i *Interpreter) evalMember(x *ast.MemberExpr, env *Environment) (Value, error) {
	base, err := i.evalExpr(x.X, env)
	if err != nil {
		return nil, err
	}
	switch b := base.(type) {
	case *value.Array:
		if x.Member == "length" {
			return value.Number(len(b.Items)), nil
		}
	case value.String:
		if x.Member == "length" {
			return value.Number(len([]rune(string(b)))), nil
		}
	}
	return nil, newRuntimeError(diag.ErrRuntimeNonCall, x.Sp, "value of type %s has no member %q", base.TypeName(), x.Member)
}

func (i *Interpreter) evalTry(x *ast.TryExpr, env *Environment) (Value, error) {
	v, err := i.evalExpr(x.X, env)
	if err != nil {
		return nil, err
	}
	switch r := v.(type) {
	case value.Result:
		if r.Err {
			return nil, &tryPropagation{value: r}
		}
		return r.Val, nil
	case value.Option:
		if !r.IsSet {
			return nil, &tryPropagation{value: r}
		}
		return r.Some, nil
	default:
		return nil, newRuntimeError(diag.ErrRuntimeNonCall, x.Sp, "`?` requires a Result or Option, got %s", v.TypeName())
	}
}

// tryPropagation unwinds a `?` short-circuit up to the nearest enclosing
// function call, which converts it back into the function's own
// Result/Option return value. evalStmt turns it into a return signal for
// variable declarations, return statements and expression statements, and
// callClosure catches it from any other position in the body; it is not
// a RuntimeError, since it is ordinary control flow, not a fault.
type tryPropagation struct {
	value Value
}

func (t *tryPropagation) Error() string { return "try propagation" }
