package interpreter

import (
	"math"

	"github.com/atlas-lang/atlas/internal/ast"
	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/token"
	"github.com/atlas-lang/atlas/internal/value"
)

// evalAssign handles `target = value`. A plain identifier target rebinds
// through the environment chain; an index target clones the container
// out of the environment, mutates the clone, and writes the clone back —
// the "clone from the environment, mutate, write back" rule that gives
// shared containers their copy-on-write semantics.
func (i *Interpreter) evalAssign(s *ast.AssignStmt, env *Environment) error {
	v, err := i.evalExpr(s.Value, env)
	if err != nil {
		return err
	}
	return i.assignTo(s.Target, v, env)
}

func (i *Interpreter) assignTo(target ast.Expr, v Value, env *Environment) error {
	switch t := target.(type) {
	case *ast.Ident:
		if !env.Assign(t.Name, v) {
			if _, ok := env.Get(t.Name); ok {
				return newRuntimeError(diag.ErrRuntimeNonCall, t.Sp, "cannot assign to immutable binding %q", t.Name)
			}
			return newRuntimeError(diag.ErrUndefinedVar, t.Sp, "undefined variable %q", t.Name)
		}
		return nil
	case *ast.IndexExpr:
		return i.assignIndex(t, v, env)
	default:
		return newRuntimeError(diag.ErrRuntimeNonCall, target.Span(), "invalid assignment target")
	}
}

// assignIndex recurses on the base expression first so that nested
// index assignment (`a[0][1] = x`) clones each level of the container
// chain from the outermost binding inward, then writes each clone back
// to its parent in turn.
func (i *Interpreter) assignIndex(t *ast.IndexExpr, v Value, env *Environment) error {
	base, err := i.evalExpr(t.X, env)
	if err != nil {
		return err
	}
	idx, err := i.evalExpr(t.Index, env)
	if err != nil {
		return err
	}
	switch b := base.(type) {
	case *value.Array:
		n, ok := idx.(value.Number)
		if !ok {
			return newRuntimeError(diag.ErrOperandType, t.Sp, "array index must be a number")
		}
		pos := int(n)
		if pos < 0 || pos >= len(b.Items) {
			return newRuntimeError(diag.ErrIndexOOB, t.Sp, "index %d out of bounds (len %d)", pos, len(b.Items))
		}
		clone := b.Clone()
		clone.Items[pos] = v
		return i.assignTo(t.X, clone, env)
	case *value.HashMap:
		key, ok := idx.(value.String)
		if !ok {
			return newRuntimeError(diag.ErrOperandType, t.Sp, "hashmap key must be a string")
		}
		clone := b.Clone()
		clone.Items[string(key)] = v
		return i.assignTo(t.X, clone, env)
	default:
		return newRuntimeError(diag.ErrRuntimeNonCall, t.Sp, "value of type %s is not indexable", base.TypeName())
	}
}

func (i *Interpreter) evalCompoundAssign(s *ast.CompoundAssignStmt, env *Environment) error {
	cur, err := i.evalExpr(s.Target, env)
	if err != nil {
		return err
	}
	rhs, err := i.evalExpr(s.Value, env)
	if err != nil {
		return err
	}
	result, err := applyCompound(s.Op, cur, rhs, s.Sp)
	if err != nil {
		return err
	}
	return i.assignTo(s.Target, result, env)
}

func applyCompound(op token.Type, cur, rhs Value, span diag.Span) (Value, error) {
	switch op {
	case token.PLUS_ASSIGN:
		if ls, ok := cur.(value.String); ok {
			rs, ok := rhs.(value.String)
			if !ok {
				return nil, newRuntimeError(diag.ErrOperandType, span, "cannot add string and %s", rhs.TypeName())
			}
			return ls + rs, nil
		}
		ln, lok := cur.(value.Number)
		rn, rok := rhs.(value.Number)
		if !lok || !rok {
			return nil, newRuntimeError(diag.ErrOperandType, span, "cannot add %s and %s", cur.TypeName(), rhs.TypeName())
		}
		return ln + rn, nil
	case token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN, token.PERCENT_ASSIGN:
		ln, lok := cur.(value.Number)
		rn, rok := rhs.(value.Number)
		if !lok || !rok {
			return nil, newRuntimeError(diag.ErrOperandType, span, "arithmetic requires numbers, got %s and %s", cur.TypeName(), rhs.TypeName())
		}
		switch op {
		case token.MINUS_ASSIGN:
			return ln - rn, nil
		case token.STAR_ASSIGN:
			return ln * rn, nil
		case token.SLASH_ASSIGN:
			if rn == 0 {
				return nil, newRuntimeError(diag.ErrDivByZero, span, "division by zero")
			}
			return ln / rn, nil
		case token.PERCENT_ASSIGN:
			if rn == 0 {
				return nil, newRuntimeError(diag.ErrDivByZero, span, "modulo by zero")
			}
			return value.Number(math.Mod(float64(ln), float64(rn))), nil
		}
	}
	return nil, newRuntimeError(diag.ErrRuntimeNonCall, span, "unknown compound operator %s", op)
}

func (i *Interpreter) evalIncDec(s *ast.IncDecStmt, env *Environment) error {
	cur, err := i.evalExpr(s.Target, env)
	if err != nil {
		return err
	}
	n, ok := cur.(value.Number)
	if !ok {
		return newRuntimeError(diag.ErrOperandType, s.Sp, "++/-- requires a number, got %s", cur.TypeName())
	}
	if s.Inc {
		n++
	} else {
		n--
	}
	return i.assignTo(s.Target, n, env)
}
