// Package types implements Atlas's type lattice and assignability rules.
// Like the AST, every variant is a concrete struct behind a closed Type
// interface instead of a class hierarchy.
package types

import "fmt"

// Type is implemented by every member of the lattice.
type Type interface {
	String() string
	typeNode()
}

// Number, String, Bool, Null, Void, JsonValue, and Unknown are singleton
// primitive types.
type (
	NumberType    struct{}
	StringType    struct{}
	BoolType      struct{}
	NullType      struct{}
	VoidType      struct{}
	JsonValueType struct{}
	// UnknownType marks a type that could not be determined (error
	// recovery); it is assignable to and from everything so that one bad
	// expression doesn't cascade into unrelated diagnostics.
	UnknownType struct{}
)

func (NumberType) typeNode()    {}
func (StringType) typeNode()    {}
func (BoolType) typeNode()      {}
func (NullType) typeNode()      {}
func (VoidType) typeNode()      {}
func (JsonValueType) typeNode() {}
func (UnknownType) typeNode()   {}

func (NumberType) String() string    { return "Number" }
func (StringType) String() string    { return "String" }
func (BoolType) String() string      { return "Bool" }
func (NullType) String() string      { return "Null" }
func (VoidType) String() string      { return "Void" }
func (JsonValueType) String() string { return "JsonValue" }
func (UnknownType) String() string   { return "Unknown" }

// Shared singletons so callers can compare by value where convenient.
var (
	Number    = NumberType{}
	String    = StringType{}
	Bool      = BoolType{}
	Null      = NullType{}
	Void      = VoidType{}
	JSONValue = JsonValueType{}
	Unknown   = UnknownType{}
)

// ArrayType is a homogeneous array of Elem.
type ArrayType struct {
	Elem Type
}

func (ArrayType) typeNode() {}
func (a ArrayType) String() string { return fmt.Sprintf("%s[]", a.Elem.String()) }

// FunctionType is a (possibly generic) function signature.
type FunctionType struct {
	TypeParams []string
	Params     []Type
	Return     Type
	Variadic   bool
}

func (FunctionType) typeNode() {}
func (f FunctionType) String() string {
	s := "("
	for i, p := range f.Params {
		if i > 0 {
			s += ", "
		}
		s += p.String()
	}
	return s + ") -> " + f.Return.String()
}

// GenericType is a named type constructor applied to arguments, e.g.
// `Map<K, V>`.
type GenericType struct {
	Name string
	Args []Type
}

func (GenericType) typeNode() {}
func (g GenericType) String() string {
	s := g.Name + "<"
	for i, a := range g.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ">"
}

// TypeParameter is a bound generic type variable, e.g. the `T` in `fn id<T>(x: T) T`.
type TypeParameter struct {
	Name string
}

func (TypeParameter) typeNode()        {}
func (t TypeParameter) String() string { return t.Name }

// AliasType names another type via `type X = ...`; Target is resolved at
// binding time and may itself be an AliasType during recursive resolution.
type AliasType struct {
	Name   string
	Target Type
}

func (AliasType) typeNode() {}
func (a AliasType) String() string { return a.Name }

// Resolve follows a chain of AliasTypes to the first non-alias type.
func Resolve(t Type) Type {
	for {
		a, ok := t.(AliasType)
		if !ok || a.Target == nil {
			return t
		}
		t = a.Target
	}
}

// ExternType describes the shape of a value crossing the FFI boundary:
// CInt, CLong, CDouble, CBool, CCharPtr, CVoid.
type ExternType struct {
	Kind string
}

func (ExternType) typeNode()        {}
func (e ExternType) String() string { return "extern(" + e.Kind + ")" }

// UnionType and IntersectionType are structural TypeRef shapes that get
// reduced to this lattice by the checker; they are kept as first-class
// members so structural assignability can be computed without re-walking
// the AST.
type UnionType struct{ Members []Type }
type IntersectionType struct{ Members []Type }

func (UnionType) typeNode() {}
func (u UnionType) String() string {
	s := ""
	for i, m := range u.Members {
		if i > 0 {
			s += " | "
		}
		s += m.String()
	}
	return s
}

func (IntersectionType) typeNode() {}
func (i IntersectionType) String() string {
	s := ""
	for idx, m := range i.Members {
		if idx > 0 {
			s += " & "
		}
		s += m.String()
	}
	return s
}

// StructuralField is one named, typed field of a StructuralType.
type StructuralField struct {
	Name string
	Type Type
}

// StructuralType describes a value by the fields it exposes, independent
// of any nominal declaration.
type StructuralType struct {
	Fields []StructuralField
}

func (StructuralType) typeNode() {}
func (s StructuralType) String() string {
	out := "{"
	for i, f := range s.Fields {
		if i > 0 {
			out += ", "
		}
		out += f.Name + ": " + f.Type.String()
	}
	return out + "}"
}

func field(s StructuralType, name string) (Type, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// Assignable reports whether a value of type src can be used where dst is
// expected: Unknown is assignable to/from anything, Null only
// to Null, generics check head name then pairwise arg assignability, and
// structural types require dst's fields to be present and assignable in
// src.
func Assignable(src, dst Type) bool {
	if _, ok := src.(UnknownType); ok {
		return true
	}
	if _, ok := dst.(UnknownType); ok {
		return true
	}
	src = Resolve(src)
	dst = Resolve(dst)

	if _, ok := dst.(NullType); ok {
		_, ok := src.(NullType)
		return ok
	}

	switch d := dst.(type) {
	case NumberType:
		_, ok := src.(NumberType)
		return ok
	case StringType:
		_, ok := src.(StringType)
		return ok
	case BoolType:
		_, ok := src.(BoolType)
		return ok
	case VoidType:
		_, ok := src.(VoidType)
		return ok
	case JsonValueType:
		return true
	case ArrayType:
		s, ok := src.(ArrayType)
		return ok && Assignable(s.Elem, d.Elem)
	case GenericType:
		s, ok := src.(GenericType)
		if !ok || s.Name != d.Name || len(s.Args) != len(d.Args) {
			return false
		}
		for i := range d.Args {
			if !Assignable(s.Args[i], d.Args[i]) {
				return false
			}
		}
		return true
	case TypeParameter:
		s, ok := src.(TypeParameter)
		return ok && s.Name == d.Name
	case FunctionType:
		s, ok := src.(FunctionType)
		if !ok || len(s.Params) != len(d.Params) {
			return false
		}
		for i := range d.Params {
			// Parameters are contravariant; return type is covariant.
			if !Assignable(d.Params[i], s.Params[i]) {
				return false
			}
		}
		return Assignable(s.Return, d.Return)
	case UnionType:
		for _, m := range d.Members {
			if Assignable(src, m) {
				return true
			}
		}
		return false
	case IntersectionType:
		for _, m := range d.Members {
			if !Assignable(src, m) {
				return false
			}
		}
		return true
	case StructuralType:
		ss, ok := src.(StructuralType)
		if !ok {
			return false
		}
		for _, f := range d.Fields {
			sf, found := field(ss, f.Name)
			if !found || !Assignable(sf, f.Type) {
				return false
			}
		}
		return true
	case ExternType:
		s, ok := src.(ExternType)
		return ok && s.Kind == d.Kind
	default:
		return false
	}
}

// Equal reports structural equality of two resolved types, ignoring alias
// names. Used for same-type rules like `==`/`!=` operands.
func Equal(a, b Type) bool {
	return Assignable(a, b) && Assignable(b, a)
}
