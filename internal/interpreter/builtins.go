package interpreter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atlas-lang/atlas/internal/value"
)

func native(name string, arity int, variadic bool, fn func(args []Value) (Value, error)) value.Native {
	return value.Native{Name: name, Arity: arity, Variadic: variadic, Fn: fn}
}

// registerPrelude defines the globally-visible builtins every Atlas
// program gets without an import: print/len/str plus the array and
// string helper functions the standard library exposes as free
// functions (Atlas has no method-call syntax, so `arr.push(x)` in other
// languages is `push(arr, x)` here).
func (i *Interpreter) registerPrelude() {
	for name, fn := range Prelude(i.Out) {
		i.Globals.Define(name, fn, false)
	}
}

// Prelude builds the name-to-builtin map shared by the tree-walking
// interpreter and the bytecode VM, so both engines expose exactly the
// same globals (spec.md §8 invariant 2: engine equivalence). out is
// print's output sink.
func Prelude(out io.Writer) map[string]value.Native {
	g := map[string]value.Native{}
	def := func(n value.Native) { g[n.Name] = n }

	def(native("print", 0, true, func(args []Value) (Value, error) {
		parts := make([]string, len(args))
		for idx, a := range args {
			parts[idx] = value.String_(a)
		}
		fmt.Fprintln(out, strings.Join(parts, " "))
		return value.Void{}, nil
	}))

	def(native("str", 1, false, func(args []Value) (Value, error) {
		return value.String(value.String_(args[0])), nil
	}))

	def(native("len", 1, false, func(args []Value) (Value, error) {
		switch v := args[0].(type) {
		case *value.Array:
			return value.Number(len(v.Items)), nil
		case value.String:
			return value.Number(len([]rune(string(v)))), nil
		case *value.HashMap:
			return value.Number(len(v.Items)), nil
		case *value.HashSet:
			return value.Number(len(v.Items)), nil
		case *value.Queue:
			return value.Number(len(v.Items)), nil
		case *value.Stack:
			return value.Number(len(v.Items)), nil
		default:
			return nil, fmt.Errorf("len: unsupported type %s", v.TypeName())
		}
	}))

	def(native("parse_number", 1, false, func(args []Value) (Value, error) {
		s, ok := args[0].(value.String)
		if !ok {
			return value.None(), nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(string(s)), 64)
		if err != nil {
			return value.None(), nil
		}
		return value.Some(value.Number(f)), nil
	}))

	def(native("push", 2, false, func(args []Value) (Value, error) {
		arr, ok := args[0].(*value.Array)
		if !ok {
			return nil, fmt.Errorf("push: expected array, got %s", args[0].TypeName())
		}
		clone := arr.Clone()
		clone.Items = append(clone.Items, args[1])
		return clone, nil
	}))

	def(native("pop", 1, false, func(args []Value) (Value, error) {
		arr, ok := args[0].(*value.Array)
		if !ok {
			return nil, fmt.Errorf("pop: expected array, got %s", args[0].TypeName())
		}
		if len(arr.Items) == 0 {
			return value.None(), nil
		}
		clone := arr.Clone()
		last := clone.Items[len(clone.Items)-1]
		clone.Items = clone.Items[:len(clone.Items)-1]
		return value.NewArray([]Value{clone, last}), nil
	}))

	def(native("slice", 3, false, func(args []Value) (Value, error) {
		arr, ok := args[0].(*value.Array)
		if !ok {
			return nil, fmt.Errorf("slice: expected array, got %s", args[0].TypeName())
		}
		start, sok := args[1].(value.Number)
		end, eok := args[2].(value.Number)
		if !sok || !eok {
			return nil, fmt.Errorf("slice: start/end must be numbers")
		}
		s, e := clampRange(int(start), int(end), len(arr.Items))
		out := make([]Value, e-s)
		copy(out, arr.Items[s:e])
		return value.NewArray(out), nil
	}))

	def(native("concat", 2, false, func(args []Value) (Value, error) {
		a, aok := args[0].(*value.Array)
		b, bok := args[1].(*value.Array)
		if !aok || !bok {
			return nil, fmt.Errorf("concat: expected two arrays")
		}
		out := make([]Value, 0, len(a.Items)+len(b.Items))
		out = append(out, a.Items...)
		out = append(out, b.Items...)
		return value.NewArray(out), nil
	}))

	def(native("upper", 1, false, func(args []Value) (Value, error) {
		s, ok := args[0].(value.String)
		if !ok {
			return nil, fmt.Errorf("upper: expected string")
		}
		return value.String(strings.ToUpper(string(s))), nil
	}))

	def(native("lower", 1, false, func(args []Value) (Value, error) {
		s, ok := args[0].(value.String)
		if !ok {
			return nil, fmt.Errorf("lower: expected string")
		}
		return value.String(strings.ToLower(string(s))), nil
	}))

	def(native("trim", 1, false, func(args []Value) (Value, error) {
		s, ok := args[0].(value.String)
		if !ok {
			return nil, fmt.Errorf("trim: expected string")
		}
		return value.String(strings.TrimSpace(string(s))), nil
	}))

	def(native("split", 2, false, func(args []Value) (Value, error) {
		s, sok := args[0].(value.String)
		sep, pok := args[1].(value.String)
		if !sok || !pok {
			return nil, fmt.Errorf("split: expected two strings")
		}
		parts := strings.Split(string(s), string(sep))
		out := make([]Value, len(parts))
		for idx, p := range parts {
			out[idx] = value.String(p)
		}
		return value.NewArray(out), nil
	}))

	def(native("join", 2, false, func(args []Value) (Value, error) {
		arr, aok := args[0].(*value.Array)
		sep, sok := args[1].(value.String)
		if !aok || !sok {
			return nil, fmt.Errorf("join: expected array and string")
		}
		parts := make([]string, len(arr.Items))
		for idx, v := range arr.Items {
			parts[idx] = value.String_(v)
		}
		return value.String(strings.Join(parts, string(sep))), nil
	}))

	def(native("contains", 2, false, func(args []Value) (Value, error) {
		s, sok := args[0].(value.String)
		sub, pok := args[1].(value.String)
		if !sok || !pok {
			return nil, fmt.Errorf("contains: expected two strings")
		}
		return value.Bool(strings.Contains(string(s), string(sub))), nil
	}))

	registerCollectionBuiltins(def)
	registerHiddenHelpers(def)
	return g
}

func clampRange(start, end, length int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > length {
		end = length
	}
	if start > end {
		start = end
	}
	return start, end
}

// registerCollectionBuiltins exposes constructors and operations for
// Atlas's HashMap/HashSet/Queue/Stack values, all of which are shared
// and copy-on-write just like Array.
func registerCollectionBuiltins(def func(value.Native)) {
	def(native("hashmap_new", 0, false, func(args []Value) (Value, error) {
		return value.NewHashMap(), nil
	}))

	def(native("hashmap_set", 3, false, func(args []Value) (Value, error) {
		m, ok := args[0].(*value.HashMap)
		if !ok {
			return nil, fmt.Errorf("hashmap_set: expected hashmap")
		}
		key, ok := args[1].(value.String)
		if !ok {
			return nil, fmt.Errorf("hashmap_set: key must be a string")
		}
		clone := m.Clone()
		clone.Items[string(key)] = args[2]
		return clone, nil
	}))

	def(native("hashmap_get", 2, false, func(args []Value) (Value, error) {
		m, ok := args[0].(*value.HashMap)
		if !ok {
			return nil, fmt.Errorf("hashmap_get: expected hashmap")
		}
		key, ok := args[1].(value.String)
		if !ok {
			return nil, fmt.Errorf("hashmap_get: key must be a string")
		}
		v, found := m.Items[string(key)]
		if !found {
			return value.None(), nil
		}
		return value.Some(v), nil
	}))

	def(native("hashset_new", 0, false, func(args []Value) (Value, error) {
		return value.NewHashSet(), nil
	}))

	def(native("hashset_add", 2, false, func(args []Value) (Value, error) {
		s, ok := args[0].(*value.HashSet)
		if !ok {
			return nil, fmt.Errorf("hashset_add: expected hashset")
		}
		key, ok := args[1].(value.String)
		if !ok {
			return nil, fmt.Errorf("hashset_add: expected string member")
		}
		clone := s.Clone()
		clone.Items[string(key)] = struct{}{}
		return clone, nil
	}))

	def(native("hashset_has", 2, false, func(args []Value) (Value, error) {
		s, ok := args[0].(*value.HashSet)
		if !ok {
			return nil, fmt.Errorf("hashset_has: expected hashset")
		}
		key, ok := args[1].(value.String)
		if !ok {
			return nil, fmt.Errorf("hashset_has: expected string member")
		}
		_, found := s.Items[string(key)]
		return value.Bool(found), nil
	}))

	def(native("queue_new", 0, false, func(args []Value) (Value, error) {
		return value.NewQueue(), nil
	}))

	def(native("queue_push", 2, false, func(args []Value) (Value, error) {
		q, ok := args[0].(*value.Queue)
		if !ok {
			return nil, fmt.Errorf("queue_push: expected queue")
		}
		clone := q.Clone()
		clone.Items = append(clone.Items, args[1])
		return clone, nil
	}))

	def(native("queue_pop", 1, false, func(args []Value) (Value, error) {
		q, ok := args[0].(*value.Queue)
		if !ok {
			return nil, fmt.Errorf("queue_pop: expected queue")
		}
		if len(q.Items) == 0 {
			return value.NewArray([]Value{q, value.None()}), nil
		}
		clone := q.Clone()
		front := clone.Items[0]
		clone.Items = clone.Items[1:]
		return value.NewArray([]Value{clone, value.Some(front)}), nil
	}))

	def(native("stack_new", 0, false, func(args []Value) (Value, error) {
		return value.NewStack(), nil
	}))

	def(native("stack_push", 2, false, func(args []Value) (Value, error) {
		s, ok := args[0].(*value.Stack)
		if !ok {
			return nil, fmt.Errorf("stack_push: expected stack")
		}
		clone := s.Clone()
		clone.Items = append(clone.Items, args[1])
		return clone, nil
	}))

	def(native("stack_pop", 1, false, func(args []Value) (Value, error) {
		s, ok := args[0].(*value.Stack)
		if !ok {
			return nil, fmt.Errorf("stack_pop: expected stack")
		}
		if len(s.Items) == 0 {
			return value.NewArray([]Value{s, value.None()}), nil
		}
		clone := s.Clone()
		top := clone.Items[len(clone.Items)-1]
		clone.Items = clone.Items[:len(clone.Items)-1]
		return value.NewArray([]Value{clone, value.Some(top)}), nil
	}))
}

// registerHiddenHelpers defines the runtime-support globals the
// compiler emits Call instructions against for `match` and `?` lowering
// (internal/compiler/match.go). They are not part of the documented
// prelude — ordinary Atlas source never spells their names — but they
// live in the same global namespace so the VM's OpCall needs no special
// case to reach them, and so the interpreter's evalMatch/evalTry and the
// VM's lowering agree on exactly one definition of each.
func registerHiddenHelpers(def func(value.Native)) {
	def(native("__match_fail", 0, false, func(args []Value) (Value, error) {
		return nil, fmt.Errorf("no match arm matched the subject value")
	}))

	def(native("__array_len_eq", 2, false, func(args []Value) (Value, error) {
		arr, ok := args[0].(*value.Array)
		if !ok {
			return value.Bool(false), nil
		}
		n, ok := args[1].(value.Number)
		if !ok {
			return value.Bool(false), nil
		}
		return value.Bool(len(arr.Items) == int(n)), nil
	}))

	def(native("__is_some", 1, false, func(args []Value) (Value, error) {
		o, ok := args[0].(value.Option)
		return value.Bool(ok && o.IsSet), nil
	}))
	def(native("__is_none", 1, false, func(args []Value) (Value, error) {
		o, ok := args[0].(value.Option)
		return value.Bool(ok && !o.IsSet), nil
	}))
	def(native("__is_ok", 1, false, func(args []Value) (Value, error) {
		r, ok := args[0].(value.Result)
		return value.Bool(ok && !r.Err), nil
	}))
	def(native("__is_err", 1, false, func(args []Value) (Value, error) {
		r, ok := args[0].(value.Result)
		return value.Bool(ok && r.Err), nil
	}))

	def(native("__unwrap_some", 1, false, func(args []Value) (Value, error) {
		o, ok := args[0].(value.Option)
		if !ok || !o.IsSet {
			return nil, fmt.Errorf("__unwrap_some: not a Some")
		}
		return o.Some, nil
	}))
	def(native("__unwrap_ok", 1, false, func(args []Value) (Value, error) {
		r, ok := args[0].(value.Result)
		if !ok || r.Err {
			return nil, fmt.Errorf("__unwrap_ok: not an Ok")
		}
		return r.Val, nil
	}))
	def(native("__unwrap_err", 1, false, func(args []Value) (Value, error) {
		r, ok := args[0].(value.Result)
		if !ok || !r.Err {
			return nil, fmt.Errorf("__unwrap_err: not an Err")
		}
		return r.Val, nil
	}))

	def(native("__try_failed", 1, false, func(args []Value) (Value, error) {
		switch v := args[0].(type) {
		case value.Result:
			return value.Bool(v.Err), nil
		case value.Option:
			return value.Bool(!v.IsSet), nil
		default:
			return nil, fmt.Errorf("`?` requires a Result or Option, got %s", v.TypeName())
		}
	}))
	def(native("__try_unwrap", 1, false, func(args []Value) (Value, error) {
		switch v := args[0].(type) {
		case value.Result:
			return v.Val, nil
		case value.Option:
			return v.Some, nil
		default:
			return nil, fmt.Errorf("`?` requires a Result or Option, got %s", v.TypeName())
		}
	}))
}
