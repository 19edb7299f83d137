package ffi

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/atlas-lang/atlas/internal/value"
)

// MarshalContext is the per-call arena spec.md §4.10 describes: every
// CCharPtr argument marshaled through it keeps its NUL-terminated byte
// buffer alive (via a Go-side reference, not a pinned allocation — purego
// calls are synchronous and return before the arena goes out of scope)
// until the call returns, then the whole arena is dropped.
type MarshalContext struct {
	strs [][]byte
}

// NewMarshalContext returns an empty arena for one extern call.
func NewMarshalContext() *MarshalContext {
	return &MarshalContext{}
}

// reflectType returns the Go type purego's dynamic signature should use
// for t, on both the parameter and return side.
func reflectType(t CType) reflect.Type {
	switch t {
	case CInt:
		return reflect.TypeOf(int32(0))
	case CLong:
		return reflect.TypeOf(int64(0))
	case CDouble:
		return reflect.TypeOf(float64(0))
	case CBool:
		return reflect.TypeOf(false)
	case CCharPtr:
		return reflect.TypeOf(uintptr(0))
	case CVoid:
		return nil
	default:
		return nil
	}
}

// ToC marshals an Atlas value to the reflect.Value purego expects for a
// parameter of type t, using arena for CCharPtr allocations.
func (m *MarshalContext) ToC(v value.Value, t CType) (reflect.Value, error) {
	switch t {
	case CInt:
		n, ok := v.(value.Number)
		if !ok {
			return reflect.Value{}, fmt.Errorf("expected number for CInt, got %s", v.TypeName())
		}
		return reflect.ValueOf(int32(n)), nil
	case CLong:
		n, ok := v.(value.Number)
		if !ok {
			return reflect.Value{}, fmt.Errorf("expected number for CLong, got %s", v.TypeName())
		}
		return reflect.ValueOf(int64(n)), nil
	case CDouble:
		n, ok := v.(value.Number)
		if !ok {
			return reflect.Value{}, fmt.Errorf("expected number for CDouble, got %s", v.TypeName())
		}
		return reflect.ValueOf(float64(n)), nil
	case CBool:
		b, ok := v.(value.Bool)
		if !ok {
			return reflect.Value{}, fmt.Errorf("expected bool for CBool, got %s", v.TypeName())
		}
		return reflect.ValueOf(bool(b)), nil
	case CCharPtr:
		s, ok := v.(value.String)
		if !ok {
			return reflect.Value{}, fmt.Errorf("expected string for CCharPtr, got %s", v.TypeName())
		}
		if strings.IndexByte(string(s), 0) >= 0 {
			return reflect.Value{}, fmt.Errorf("string argument contains a NUL byte, cannot marshal to CCharPtr")
		}
		buf := append([]byte(string(s)), 0)
		m.strs = append(m.strs, buf)
		return reflect.ValueOf(uintptr(bytesPtr(buf))), nil
	default:
		return reflect.Value{}, fmt.Errorf("CVoid is not a valid parameter type")
	}
}

// FromC unmarshals purego's return reflect.Value back to an Atlas value
// for return type t. A zero CCharPtr pointer raises an error rather than
// being read as a string (spec.md §4.10: "null pointers read from return
// types raise RuntimeError").
func FromC(rv reflect.Value, t CType) (value.Value, error) {
	switch t {
	case CInt:
		return value.Number(rv.Int()), nil
	case CLong:
		return value.Number(rv.Int()), nil
	case CDouble:
		return value.Number(rv.Float()), nil
	case CBool:
		return value.Bool(rv.Bool()), nil
	case CCharPtr:
		ptr := uintptr(rv.Uint())
		if ptr == 0 {
			return nil, fmt.Errorf("extern call returned a null CCharPtr")
		}
		return value.String(goStringFromCPtr(ptr)), nil
	case CVoid:
		return value.Null{}, nil
	default:
		return nil, fmt.Errorf("unknown return CType")
	}
}
