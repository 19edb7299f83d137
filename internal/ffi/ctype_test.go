package ffi

import (
	"testing"

	"github.com/atlas-lang/atlas/internal/ast"
	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/value"
)

func namedType(name string) ast.TypeRef {
	return &ast.NamedTypeRef{Name: name, Sp: diag.Dummy}
}

func TestParseCTypeRecognizesAllSixPrimitives(t *testing.T) {
	cases := map[string]CType{
		"CInt":     CInt,
		"CLong":    CLong,
		"CDouble":  CDouble,
		"CBool":    CBool,
		"CCharPtr": CCharPtr,
		"CVoid":    CVoid,
	}
	for name, want := range cases {
		got, err := ParseCType(namedType(name))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if got != want {
			t.Fatalf("%s: got %v, want %v", name, got, want)
		}
	}
}

func TestParseCTypeRejectsUnknownName(t *testing.T) {
	_, err := ParseCType(namedType("number"))
	if err == nil {
		t.Fatal("expected an error for a non-extern type name")
	}
}

func TestMarshalContextRejectsNulByteString(t *testing.T) {
	m := NewMarshalContext()
	_, err := m.ToC(value.String("a\x00b"), CCharPtr)
	if err == nil {
		t.Fatal("expected an error marshaling a string containing a NUL byte")
	}
}
