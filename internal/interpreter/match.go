package interpreter

import (
	"github.com/atlas-lang/atlas/internal/ast"
	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/value"
)

// evalMatch evaluates each arm's pattern against the subject in order,
// binding pattern variables into a fresh scope per arm, and evaluates
// the first arm whose pattern matches and whose guard (if any) is true.
func (i *Interpreter) evalMatch(x *ast.MatchExpr, env *Environment) (Value, error) {
	subject, err := i.evalExpr(x.Subject, env)
	if err != nil {
		return nil, err
	}
	for _, arm := range x.Arms {
		armEnv := NewEnclosedEnvironment(env)
		if !matchPattern(arm.Pattern, subject, armEnv) {
			continue
		}
		if arm.Guard != nil {
			g, err := i.evalExpr(arm.Guard, armEnv)
			if err != nil {
				return nil, err
			}
			if b, ok := g.(value.Bool); !ok || !bool(b) {
				continue
			}
		}
		return i.evalExpr(arm.Body, armEnv)
	}
	return nil, newRuntimeError(diag.ErrMatchFailure, x.Sp, "no match arm matched the subject")
}

// matchPattern reports whether pat matches v, binding any variables pat
// introduces into env as it goes.
func matchPattern(pat ast.Pattern, v Value, env *Environment) bool {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return true
	case *ast.VariablePattern:
		env.Define(p.Name, v, false)
		return true
	case *ast.LiteralPattern:
		return literalPatternMatches(p.Value, v)
	case *ast.OrPattern:
		for _, alt := range p.Alternatives {
			if matchPattern(alt, v, env) {
				return true
			}
		}
		return false
	case *ast.ArrayPattern:
		arr, ok := v.(*value.Array)
		if !ok || len(arr.Items) != len(p.Elements) {
			return false
		}
		for idx, elPat := range p.Elements {
			if !matchPattern(elPat, arr.Items[idx], env) {
				return false
			}
		}
		return true
	case *ast.ConstructorPattern:
		return matchConstructor(p, v, env)
	default:
		return false
	}
}

func literalPatternMatches(want interface{}, v Value) bool {
	switch w := want.(type) {
	case float64:
		n, ok := v.(value.Number)
		return ok && float64(n) == w
	case string:
		s, ok := v.(value.String)
		return ok && string(s) == w
	case bool:
		b, ok := v.(value.Bool)
		return ok && bool(b) == w
	case nil:
		_, ok := v.(value.Null)
		return ok
	default:
		return false
	}
}

func matchConstructor(p *ast.ConstructorPattern, v Value, env *Environment) bool {
	switch p.Name {
	case "Some":
		opt, ok := v.(value.Option)
		if !ok || !opt.IsSet {
			return false
		}
		return bindConstructorArgs(p.Args, []Value{opt.Some}, env)
	case "None":
		opt, ok := v.(value.Option)
		return ok && !opt.IsSet
	case "Ok":
		res, ok := v.(value.Result)
		if !ok || res.Err {
			return false
		}
		return bindConstructorArgs(p.Args, []Value{res.Val}, env)
	case "Err":
		res, ok := v.(value.Result)
		if !ok || !res.Err {
			return false
		}
		return bindConstructorArgs(p.Args, []Value{res.Val}, env)
	default:
		return false
	}
}

func bindConstructorArgs(pats []ast.Pattern, vals []Value, env *Environment) bool {
	if len(pats) != len(vals) {
		return false
	}
	for idx, pat := range pats {
		if !matchPattern(pat, vals[idx], env) {
			return false
		}
	}
	return true
}
