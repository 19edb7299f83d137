package ffi

import (
	"fmt"
	"reflect"

	"github.com/atlas-lang/atlas/internal/value"
	"github.com/ebitengine/purego"
)

// ExternFunc is one resolved `extern "lib" fn name(...) -> ...;`
// declaration: its C parameter/return types and the symbol address to
// invoke. Atlas signatures are fixed-arity (no extern varargs in the
// data model), so a single reflect.FuncOf shape is built once at bind
// time and reused for every call.
type ExternFunc struct {
	Name       string
	Params     []CType
	Return     CType
	addr       uintptr
	callerType reflect.Type
	caller     reflect.Value // addressable *funcType, registered via purego.RegisterFunc
}

// Bind resolves declName's symbol in libName via loader and builds the
// dynamic call shape purego needs to invoke it.
func Bind(loader *LibraryLoader, libName, symName, declName string, params []CType, ret CType) (*ExternFunc, error) {
	addr, err := loader.Symbol(libName, symName)
	if err != nil {
		return nil, err
	}

	in := make([]reflect.Type, len(params))
	for idx, p := range params {
		if p == CVoid {
			return nil, fmt.Errorf("extern %q: CVoid is not valid as a parameter type", declName)
		}
		in[idx] = reflectType(p)
	}
	var out []reflect.Type
	if ret != CVoid {
		out = []reflect.Type{reflectType(ret)}
	}
	funcType := reflect.FuncOf(in, out, false)
	fnPtr := reflect.New(funcType)
	purego.RegisterFunc(fnPtr.Interface(), addr)

	return &ExternFunc{
		Name:       declName,
		Params:     params,
		Return:     ret,
		addr:       addr,
		callerType: funcType,
		caller:     fnPtr.Elem(),
	}, nil
}

// Call marshals args per Params, invokes the C function, and unmarshals
// its result. Marshaling allocations live in a fresh MarshalContext for
// the duration of this one call, per spec.md §4.10.
func (f *ExternFunc) Call(args []value.Value) (value.Value, error) {
	if len(args) != len(f.Params) {
		return nil, fmt.Errorf("%s expects %d argument(s), got %d", f.Name, len(f.Params), len(args))
	}
	arena := NewMarshalContext()
	in := make([]reflect.Value, len(args))
	for idx, a := range args {
		rv, err := arena.ToC(a, f.Params[idx])
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", f.Name, idx, err)
		}
		in[idx] = rv
	}

	out := f.caller.Call(in)

	if f.Return == CVoid {
		return value.Null{}, nil
	}
	return FromC(out[0], f.Return)
}

// AsNative wraps f as a value.Native callable from Atlas code.
func (f *ExternFunc) AsNative() value.Native {
	return value.Native{
		Name:  f.Name,
		Arity: len(f.Params),
		Fn: func(args []value.Value) (value.Value, error) {
			return f.Call(args)
		},
	}
}
