// Package ffi implements Atlas's two-directional foreign function
// interface (spec.md §4.10): extern declarations that call into a
// dynamic library, and callback handles that let C code call back into
// Atlas. Both directions go through github.com/ebitengine/purego, which
// gives dlopen/dlsym and C-callable trampolines without a cgo toolchain
// step — the same dependency the retrieval pack's manifests reach for
// whenever a project needs this exact capability.
package ffi

import (
	"fmt"

	"github.com/atlas-lang/atlas/internal/ast"
)

// CType is one of the marshalable extern parameter/return types named
// in spec.md §4.10's marshaling table.
type CType int

const (
	CInt CType = iota
	CLong
	CDouble
	CBool
	CCharPtr
	CVoid
)

func (t CType) String() string {
	switch t {
	case CInt:
		return "CInt"
	case CLong:
		return "CLong"
	case CDouble:
		return "CDouble"
	case CBool:
		return "CBool"
	case CCharPtr:
		return "CCharPtr"
	case CVoid:
		return "CVoid"
	default:
		return "unknown"
	}
}

// typeRefName recovers the bare identifier a named TypeRef was written
// as (CInt, CDouble, ...); extern signatures never use union/array/
// generic/function/structural types, so anything else is a bind error.
func typeRefName(t ast.TypeRef) (string, bool) {
	n, ok := t.(*ast.NamedTypeRef)
	if !ok {
		return "", false
	}
	return n.Name, true
}

// ParseCType resolves a parameter or return TypeRef to its CType, or an
// error naming the offending type if it isn't one of the six extern
// primitives.
func ParseCType(t ast.TypeRef) (CType, error) {
	name, ok := typeRefName(t)
	if !ok {
		return 0, fmt.Errorf("extern signatures only allow CInt/CLong/CDouble/CBool/CCharPtr/CVoid, got a non-named type")
	}
	switch name {
	case "CInt":
		return CInt, nil
	case "CLong":
		return CLong, nil
	case "CDouble":
		return CDouble, nil
	case "CBool":
		return CBool, nil
	case "CCharPtr":
		return CCharPtr, nil
	case "CVoid":
		return CVoid, nil
	default:
		return 0, fmt.Errorf("unknown extern type %q", name)
	}
}
