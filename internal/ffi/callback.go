package ffi

import (
	"reflect"

	"github.com/atlas-lang/atlas/internal/value"
	"github.com/ebitengine/purego"
)

// CallbackHost is the subset of *interpreter.Interpreter a callback
// trampoline needs: a way to invoke an Atlas function by name. The FFI
// package depends on this interface rather than importing interpreter
// directly so internal/vm's compiled path can supply its own adapter.
type CallbackHost interface {
	CallNamed(name string, args []value.Value) (value.Value, error)
}

// Callback is a live C-callable trampoline bound to one Atlas function.
// Callback has no release method, and dropping it does not free the
// underlying purego callback registration: the trampoline stays
// registered for the life of the process.
type Callback struct {
	FnPtr value.Extern
	host  CallbackHost
}

// CreateCallback builds a C function pointer that, when invoked, calls
// fnName on host with the C arguments unmarshaled per paramTypes and
// marshals the Atlas result back to returnType. Errors inside the
// callback (the named function doesn't exist, raises a runtime error,
// or returns an unexpected Value shape) translate to a typed zero
// return — C callers cannot propagate Atlas panics across the boundary.
func CreateCallback(fnName string, paramTypes []CType, returnType CType, host CallbackHost) *Callback {
	in := make([]reflect.Type, len(paramTypes))
	for idx, p := range paramTypes {
		in[idx] = reflectType(p)
	}
	var out []reflect.Type
	if returnType != CVoid {
		out = []reflect.Type{reflectType(returnType)}
	}
	shape := reflect.FuncOf(in, out, false)

	trampoline := reflect.MakeFunc(shape, func(cargs []reflect.Value) []reflect.Value {
		args := make([]value.Value, len(cargs))
		for idx, cv := range cargs {
			v, err := FromC(cv, paramTypes[idx])
			if err != nil {
				return zeroResults(out)
			}
			args[idx] = v
		}
		result, err := host.CallNamed(fnName, args)
		if err != nil {
			return zeroResults(out)
		}
		if returnType == CVoid {
			return nil
		}
		rv, err := toCReturn(result, returnType)
		if err != nil {
			return zeroResults(out)
		}
		return []reflect.Value{rv}
	})

	addr := purego.NewCallback(trampoline.Interface())
	return &Callback{FnPtr: value.Extern{Kind: "callback:" + fnName, Ptr: addr}, host: host}
}

// zeroResults builds the typed-zero return spec.md §4.10 mandates when
// a callback's Atlas side fails: 0, 0.0, false, or a null pointer,
// never a Go panic crossing back into C.
func zeroResults(out []reflect.Type) []reflect.Value {
	if len(out) == 0 {
		return nil
	}
	return []reflect.Value{reflect.Zero(out[0])}
}

// toCReturn marshals an Atlas value already produced by CallNamed back
// to the C-side reflect.Value the trampoline must return.
func toCReturn(v value.Value, t CType) (reflect.Value, error) {
	arena := NewMarshalContext()
	return arena.ToC(v, t)
}
