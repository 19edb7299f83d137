// Package symbols implements Atlas's two-pass binder: hoisting of
// top-level functions, lexical scope stack, type-parameter scopes used
// only during type resolution, and the prelude-shadowing rule.
package symbols

import (
	"github.com/atlas-lang/atlas/internal/ast"
	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/types"
)

// Kind classifies what a Symbol denotes.
type Kind int

const (
	Variable Kind = iota
	Function
	Parameter
	Builtin
)

func (k Kind) String() string {
	switch k {
	case Function:
		return "function"
	case Parameter:
		return "parameter"
	case Builtin:
		return "builtin"
	default:
		return "variable"
	}
}

// Symbol is one named binding in a scope.
type Symbol struct {
	Name     string
	Type     types.Type
	Mutable  bool
	Kind     Kind
	Span     diag.Span
	Exported bool
}

// scope is one level of the lexical scope stack: a flat name -> Symbol map.
type scope struct {
	names map[string]*Symbol
}

func newScope() *scope { return &scope{names: make(map[string]*Symbol)} }

// preludeBuiltins are the names that can never be shadowed at global scope
// (spec.md GLOSSARY, AT1012).
var preludeBuiltins = map[string]bool{
	"print": true,
	"len":   true,
	"str":   true,
}

// IsPreludeBuiltin reports whether name is one of the prelude builtins.
func IsPreludeBuiltin(name string) bool { return preludeBuiltins[name] }

// Table is the scope stack built by the Binder. Scope 0 is always global.
type Table struct {
	scopes []*scope

	// typeParamScopes is a parallel stack, pushed/popped only around
	// generic function/type-alias signatures, per spec.md §4.3.
	typeParamScopes []map[string]ast.TypeParam
}

// NewTable creates a Table seeded with an empty global scope and the
// prelude builtins registered as Kind=Builtin symbols so lookups succeed
// before any shadowing check runs.
func NewTable() *Table {
	t := &Table{}
	t.scopes = append(t.scopes, newScope())
	for name := range preludeBuiltins {
		t.scopes[0].names[name] = &Symbol{Name: name, Kind: Builtin, Type: types.Unknown}
	}
	return t
}

// EnterScope pushes a new lexical scope (function body, block, for-init).
func (t *Table) EnterScope() { t.scopes = append(t.scopes, newScope()) }

// ExitScope pops the innermost lexical scope.
func (t *Table) ExitScope() {
	if len(t.scopes) > 1 {
		t.scopes = t.scopes[:len(t.scopes)-1]
	}
}

// IsGlobalScope reports whether the current scope is the outermost one.
func (t *Table) IsGlobalScope() bool { return len(t.scopes) == 1 }

// Depth returns how many scopes are currently pushed (1 = global only).
func (t *Table) Depth() int { return len(t.scopes) }

// Define adds sym to the innermost scope. It returns a redeclaration
// diagnostic (AT2003), with the existing symbol's span attached as a
// related location, if name already exists in that same scope.
func (t *Table) Define(sym Symbol) (*Symbol, *diag.Diagnostic) {
	cur := t.scopes[len(t.scopes)-1]
	if existing, ok := cur.names[sym.Name]; ok {
		d := diag.New(diag.ErrRedeclared, sym.Span, "'%s' is already declared in this scope", sym.Name).
			WithLabel(sym.Span, "redeclaration").
			WithRelated(existing.Span, "'%s' first declared here", sym.Name)
		return existing, d
	}
	stored := sym
	cur.names[sym.Name] = &stored
	return &stored, nil
}

// Lookup searches from the innermost scope outward and returns the first
// match, or nil if name is unresolved.
func (t *Table) Lookup(name string) *Symbol {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if s, ok := t.scopes[i].names[name]; ok {
			return s
		}
	}
	return nil
}

// LookupGlobal looks up name only in the outermost (global) scope. The
// binder's prelude-shadowing check does not call it; that check uses
// IsGlobalScope and IsPreludeBuiltin.
func (t *Table) LookupGlobal(name string) *Symbol {
	return t.scopes[0].names[name]
}

// EnterTypeParamScope pushes a new type-parameter scope, used while
// resolving a generic function or type-alias signature.
func (t *Table) EnterTypeParamScope() {
	t.typeParamScopes = append(t.typeParamScopes, make(map[string]ast.TypeParam))
}

// ExitTypeParamScope pops the innermost type-parameter scope.
func (t *Table) ExitTypeParamScope() {
	if len(t.typeParamScopes) > 0 {
		t.typeParamScopes = t.typeParamScopes[:len(t.typeParamScopes)-1]
	}
}

// RegisterTypeParam registers tp in the innermost type-parameter scope.
// It reports ok=false if tp.Name is already registered in that scope
// (duplicate type parameter within one list).
func (t *Table) RegisterTypeParam(tp ast.TypeParam) bool {
	if len(t.typeParamScopes) == 0 {
		return true
	}
	cur := t.typeParamScopes[len(t.typeParamScopes)-1]
	if _, ok := cur[tp.Name]; ok {
		return false
	}
	cur[tp.Name] = tp
	return true
}

// LookupTypeParam searches the type-parameter scope stack innermost-first.
func (t *Table) LookupTypeParam(name string) (ast.TypeParam, bool) {
	for i := len(t.typeParamScopes) - 1; i >= 0; i-- {
		if tp, ok := t.typeParamScopes[i][name]; ok {
			return tp, true
		}
	}
	return ast.TypeParam{}, false
}
