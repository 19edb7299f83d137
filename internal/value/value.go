// Package value implements Atlas's runtime value representation: the
// tagged variants that flow through both the tree-walking interpreter
// and the bytecode VM. Collections are shared until mutated — spec's
// "mutable container, immutable binding" rule is implemented by always
// cloning the backing store before a mutating operation and writing the
// clone back into the binding, mirroring the interpreter's own
// "clone from the environment, mutate, write back" evaluation rule
// rather than a reference-counted uniqueness check.
package value

import "fmt"

// Value is implemented by every runtime value variant. Unlike the static
// type lattice, Value is intentionally left open rather than sealed with
// an unexported marker method: the interpreter package defines its own
// Closure variant (a function paired with its captured environment),
// and an environment belongs one layer up from this package, so it
// cannot live here without an import cycle.
type Value interface {
	TypeName() string
}

// Number, String, Bool, Null and Void are Atlas's scalar values.
type (
	Number float64
	String string
	Bool   bool
	Null   struct{}
	Void   struct{}
)


func (Number) TypeName() string { return "number" }
func (String) TypeName() string { return "string" }
func (Bool) TypeName() string   { return "bool" }
func (Null) TypeName() string   { return "null" }
func (Void) TypeName() string   { return "void" }

// Array is a homogeneous, shared, copy-on-write sequence.
type Array struct {
	Items []Value
}

func (*Array) TypeName() string  { return "array" }
func NewArray(items []Value) *Array { return &Array{Items: items} }

// Clone returns a new Array with its own backing slice, so the caller
// can mutate it without affecting any other binding that aliases the
// original Array.
func (a *Array) Clone() *Array {
	items := make([]Value, len(a.Items))
	copy(items, a.Items)
	return &Array{Items: items}
}

// HashMap is a shared, copy-on-write string-keyed map.
type HashMap struct {
	Items map[string]Value
}

func (*HashMap) TypeName() string { return "hashmap" }

func NewHashMap() *HashMap { return &HashMap{Items: make(map[string]Value)} }

func (m *HashMap) Clone() *HashMap {
	items := make(map[string]Value, len(m.Items))
	for k, v := range m.Items {
		items[k] = v
	}
	return &HashMap{Items: items}
}

// HashSet is a shared, copy-on-write string-keyed set.
type HashSet struct {
	Items map[string]struct{}
}

func (*HashSet) TypeName() string { return "hashset" }

func NewHashSet() *HashSet { return &HashSet{Items: make(map[string]struct{})} }

func (s *HashSet) Clone() *HashSet {
	items := make(map[string]struct{}, len(s.Items))
	for k := range s.Items {
		items[k] = struct{}{}
	}
	return &HashSet{Items: items}
}

// Queue is a shared, copy-on-write FIFO (push at the back, pop at the front).
type Queue struct {
	Items []Value
}

func (*Queue) TypeName() string { return "queue" }

func NewQueue() *Queue { return &Queue{} }

func (q *Queue) Clone() *Queue {
	items := make([]Value, len(q.Items))
	copy(items, q.Items)
	return &Queue{Items: items}
}

// Stack is a shared, copy-on-write LIFO (push/pop at the back).
type Stack struct {
	Items []Value
}

func (*Stack) TypeName() string { return "stack" }

func NewStack() *Stack { return &Stack{} }

func (s *Stack) Clone() *Stack {
	items := make([]Value, len(s.Items))
	copy(items, s.Items)
	return &Stack{Items: items}
}

// Option represents Option<T>: either Some(value) or None.
type Option struct {
	Some  Value
	IsSet bool
}

func (Option) TypeName() string { return "option" }

func Some(v Value) Option { return Option{Some: v, IsSet: true} }
func None() Option        { return Option{} }

// Result represents Result<T, E>: either Ok(value) or Err(value).
type Result struct {
	Val Value
	Err bool
}

func (Result) TypeName() string { return "result" }

func Ok(v Value) Result  { return Result{Val: v} }
func ErrVal(v Value) Result { return Result{Val: v, Err: true} }

// Function references a user-defined function by name. The interpreter
// resolves the body by name at call time; the compiler additionally
// records BytecodeOffset/LocalCount for the VM's call instruction.
type Function struct {
	Name           string
	Arity          int
	Variadic       bool
	BytecodeOffset int
	LocalCount     int
}

func (Function) TypeName() string { return "function" }

// Native wraps a Go function exposed to Atlas code as a builtin or
// prelude symbol, such as print/len/str and the string-library builtins.
type Native struct {
	Name     string
	Arity    int
	Variadic bool
	Fn       func(args []Value) (Value, error)
}

func (Native) TypeName() string { return "native" }

// Extern is an opaque pointer crossing the FFI boundary (a dlopen'd
// library handle, a C struct pointer, a callback trampoline address).
type Extern struct {
	Kind string
	Ptr  uintptr
}

func (Extern) TypeName() string { return "extern" }

// JSON is a dynamically-typed value decoded from JSON, preserved
// separately from Atlas's static Value variants until unpacked.
type JSON struct {
	Data interface{}
}

func (JSON) TypeName() string { return "json" }

// String renders a Value the way Atlas's `str()` builtin and `print()`
// do: numbers without a trailing ".0" when they're integral, strings bare
// (no surrounding quotes), and containers with JSON-like bracket syntax.
func String_(v Value) string {
	switch x := v.(type) {
	case Number:
		f := float64(x)
		if f == float64(int64(f)) {
			return fmt.Sprintf("%d", int64(f))
		}
		return fmt.Sprintf("%g", f)
	case String:
		return string(x)
	case Bool:
		if x {
			return "true"
		}
		return "false"
	case Null:
		return "null"
	case Void:
		return "void"
	case *Array:
		out := "["
		for i, item := range x.Items {
			if i > 0 {
				out += ", "
			}
			out += String_(item)
		}
		return out + "]"
	case Option:
		if !x.IsSet {
			return "None"
		}
		return "Some(" + String_(x.Some) + ")"
	case Result:
		if x.Err {
			return "Err(" + String_(x.Val) + ")"
		}
		return "Ok(" + String_(x.Val) + ")"
	case Function:
		return "<function " + x.Name + ">"
	case Native:
		return "<builtin " + x.Name + ">"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Equal implements Atlas's `==`/`!=` for every comparable Value variant,
// shared by the interpreter and the bytecode VM so both engines agree on
// equality (arrays compare element-wise; all other mismatched types are
// unequal, never an error).
func Equal(l, r Value) bool {
	switch lv := l.(type) {
	case Number:
		rv, ok := r.(Number)
		return ok && lv == rv
	case String:
		rv, ok := r.(String)
		return ok && lv == rv
	case Bool:
		rv, ok := r.(Bool)
		return ok && lv == rv
	case Null:
		_, ok := r.(Null)
		return ok
	case Void:
		_, ok := r.(Void)
		return ok
	case *Array:
		rv, ok := r.(*Array)
		if !ok || len(lv.Items) != len(rv.Items) {
			return false
		}
		for idx := range lv.Items {
			if !Equal(lv.Items[idx], rv.Items[idx]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Truthy is used only by non-boolean-condition diagnostics; spec.md
// explicitly excludes truthy/falsy coercion (no Non-goals bypass here),
// so this exists solely to render a helpful message, never to branch.
func Truthy(v Value) (bool, bool) {
	b, ok := v.(Bool)
	return bool(b), ok
}
