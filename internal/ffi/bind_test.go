package ffi

import (
	"strings"
	"testing"

	"github.com/atlas-lang/atlas/internal/ast"
	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/value"
)

// stubResolver is a LibraryResolver that renames every library name it's
// asked about, so a test can observe whether BindExterns actually
// consulted it without needing a real shared library on disk.
type stubResolver struct {
	from, to string
}

func (s stubResolver) Resolve(name string) string {
	if name == s.from {
		return s.to
	}
	return name
}

func externProgram(lib string) *ast.Program {
	return &ast.Program{Items: []ast.Item{&ast.ExternDecl{
		Library: lib,
		Name:    "doit",
		Sp:      diag.Dummy,
	}}}
}

func TestBindExternsAppliesManifestResolution(t *testing.T) {
	loader := NewLibraryLoader()
	manifest := stubResolver{from: "mylib", to: "definitely-not-a-real-library.so"}

	diags := BindExterns(externProgram("mylib"), loader, manifest, func(string, value.Value) {})

	if !diags.HasErrors() {
		t.Fatal("expected a dlopen failure against the resolved (nonexistent) library name")
	}
	if !strings.Contains(diags[0].Message, "definitely-not-a-real-library.so") {
		t.Fatalf("expected error to mention the resolved library name, got: %s", diags[0].Message)
	}
	if strings.Contains(diags[0].Message, "\"mylib\"") {
		t.Fatalf("error still names the unresolved library name: %s", diags[0].Message)
	}
}

func TestBindExternsNilManifestLeavesLibraryNameUnchanged(t *testing.T) {
	loader := NewLibraryLoader()

	diags := BindExterns(externProgram("mylib"), loader, nil, func(string, value.Value) {})

	if !diags.HasErrors() {
		t.Fatal("expected a dlopen failure against the made-up library name")
	}
	if !strings.Contains(diags[0].Message, "mylib") {
		t.Fatalf("expected error to mention the original library name, got: %s", diags[0].Message)
	}
}
