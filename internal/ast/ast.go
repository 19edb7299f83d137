// Package ast defines Atlas's abstract syntax tree: closed sum types
// dispatched by tag, following the visitor idiom rather than dynamic
// dispatch.
package ast

import (
	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/token"
)

// Node is the base interface every AST node implements.
type Node interface {
	Span() diag.Span
	Accept(v Visitor)
}

// Item is a top-level member of a Program: Function, Statement, Import,
// Export, Extern, TypeAlias, Trait, or Impl.
type Item interface {
	Node
	itemNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	Item
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Pattern is a match-arm pattern node.
type Pattern interface {
	Node
	patternNode()
}

// TypeRef is a parsed type expression (not yet resolved to internal/types.Type).
type TypeRef interface {
	Node
	typeRefNode()
}

// Program is the root of every parsed module: an ordered sequence of items.
type Program struct {
	File  string
	Items []Item
}

func (p *Program) Span() diag.Span {
	if len(p.Items) == 0 {
		return diag.Dummy
	}
	return diag.Merge(p.Items[0].Span(), p.Items[len(p.Items)-1].Span())
}
func (p *Program) Accept(v Visitor) { v.VisitProgram(p) }

// ---- Items (Function, Import, Export, Extern, TypeAlias, Trait, Impl) ----

// Param is a single function parameter.
type Param struct {
	Name     string
	Type     TypeRef // nil if unannotated
	Variadic bool
}

// TypeParam is a generic type-parameter declaration, e.g. `<T>`.
type TypeParam struct {
	Name string
}

// FunctionDecl declares a named function. It is both an Item (top-level
// declaration) and a Stmt, since nested function declarations are legal.
type FunctionDecl struct {
	Tok        token.Token
	Name       string
	TypeParams []TypeParam
	Params     []Param
	ReturnType TypeRef // nil means inferred/void
	Body       *Block
	Exported   bool
	Sp       diag.Span
}

func (f *FunctionDecl) Span() diag.Span { return f.Sp }
func (f *FunctionDecl) Accept(v Visitor) { v.VisitFunctionDecl(f) }
func (f *FunctionDecl) itemNode()        {}
func (f *FunctionDecl) stmtNode()        {}

// SetSpan lets the parser finalize the span once the body is parsed.
func (f *FunctionDecl) SetSpan(s diag.Span) { f.Sp = s }

// ImportStmt: `import "path" [as alias] [(sym, ...)] [!(sym, ...)] [(*)]`.
type ImportStmt struct {
	Tok       token.Token
	Path      string
	Alias     string
	Symbols   []string
	Exclude   []string
	ImportAll bool
	Sp      diag.Span
}

func (i *ImportStmt) Span() diag.Span  { return i.Sp }
func (i *ImportStmt) Accept(v Visitor) { v.VisitImportStmt(i) }
func (i *ImportStmt) itemNode()        {}
func (i *ImportStmt) stmtNode()        {}

// ExportStmt: `export name`, `export { a, b }`, or `export <decl>`. When it
// wraps an inline declaration (`export fn`/`export let`/`export var`/
// `export type`), Decl holds that declaration so it still appears as a
// bindable, checkable program item in its own right.
type ExportStmt struct {
	Tok   token.Token
	Names []string
	Decl  Item
	Sp    diag.Span
}

func (e *ExportStmt) Span() diag.Span  { return e.Sp }
func (e *ExportStmt) Accept(v Visitor) { v.VisitExportStmt(e) }
func (e *ExportStmt) itemNode()        {}
func (e *ExportStmt) stmtNode()        {}

// ExternDecl declares a foreign function imported from a native library.
type ExternDecl struct {
	Tok        token.Token
	Library    string
	Name       string
	Params     []Param
	ReturnType TypeRef
	Sp       diag.Span
}

func (e *ExternDecl) Span() diag.Span  { return e.Sp }
func (e *ExternDecl) Accept(v Visitor) { v.VisitExternDecl(e) }
func (e *ExternDecl) itemNode()        {}
func (e *ExternDecl) stmtNode()        {}

// TypeAliasDecl: `type Name<T...> = TypeRef`.
type TypeAliasDecl struct {
	Tok        token.Token
	Name       string
	TypeParams []TypeParam
	Target     TypeRef
	Exported   bool
	Sp       diag.Span
}

func (t *TypeAliasDecl) Span() diag.Span  { return t.Sp }
func (t *TypeAliasDecl) Accept(v Visitor) { v.VisitTypeAliasDecl(t) }
func (t *TypeAliasDecl) itemNode()        {}
func (t *TypeAliasDecl) stmtNode()        {}

// TraitMethod is a method signature declared inside a trait.
type TraitMethod struct {
	Name       string
	Params     []Param
	ReturnType TypeRef
}

// TraitDecl declares a named set of method signatures. Dispatch strategy
// (static monomorphization vs. vtable) is left to the checker and runtime;
// this package only represents the declaration shape.
type TraitDecl struct {
	Tok      token.Token
	Name     string
	Methods  []TraitMethod
	Exported bool
	Sp     diag.Span
}

func (t *TraitDecl) Span() diag.Span  { return t.Sp }
func (t *TraitDecl) Accept(v Visitor) { v.VisitTraitDecl(t) }
func (t *TraitDecl) itemNode()        {}
func (t *TraitDecl) stmtNode()        {}

// ImplDecl implements a trait for a concrete named type.
type ImplDecl struct {
	Tok       token.Token
	TraitName string
	TypeName  string
	Methods   []*FunctionDecl
	Sp      diag.Span
}

func (i *ImplDecl) Span() diag.Span  { return i.Sp }
func (i *ImplDecl) Accept(v Visitor) { v.VisitImplDecl(i) }
func (i *ImplDecl) itemNode()        {}
func (i *ImplDecl) stmtNode()        {}

// ---- Statements ----

// Block is a brace-delimited statement sequence.
type Block struct {
	Tok   token.Token
	Stmts []Stmt
	Sp  diag.Span
}

func (b *Block) Span() diag.Span  { return b.Sp }
func (b *Block) Accept(v Visitor) { v.VisitBlock(b) }
func (b *Block) itemNode()        {}
func (b *Block) stmtNode()        {}

// VarDecl: `let name[: T] = expr` or `var name[: T] = expr`.
type VarDecl struct {
	Tok      token.Token
	Name     string
	Type     TypeRef // nil if uninferred
	Value    Expr
	Mutable  bool
	Exported bool
	Sp       diag.Span
}

func (d *VarDecl) Span() diag.Span  { return d.Sp }
func (d *VarDecl) Accept(v Visitor) { v.VisitVarDecl(d) }
func (d *VarDecl) itemNode()        {}
func (d *VarDecl) stmtNode()        {}

// AssignStmt: `target = value`.
type AssignStmt struct {
	Tok    token.Token
	Target Expr
	Value  Expr
	Sp   diag.Span
}

func (a *AssignStmt) Span() diag.Span  { return a.Sp }
func (a *AssignStmt) Accept(v Visitor) { v.VisitAssignStmt(a) }
func (a *AssignStmt) itemNode()        {}
func (a *AssignStmt) stmtNode()        {}

// CompoundAssignStmt: `target += value`, `-=`, `*=`, `/=`, `%=`.
type CompoundAssignStmt struct {
	Tok    token.Token
	Op     token.Type
	Target Expr
	Value  Expr
	Sp   diag.Span
}

func (a *CompoundAssignStmt) Span() diag.Span  { return a.Sp }
func (a *CompoundAssignStmt) Accept(v Visitor) { v.VisitCompoundAssignStmt(a) }
func (a *CompoundAssignStmt) itemNode()        {}
func (a *CompoundAssignStmt) stmtNode()        {}

// IncDecStmt: `target++` or `target--`.
type IncDecStmt struct {
	Tok    token.Token
	Target Expr
	Inc    bool // true for ++, false for --
	Sp   diag.Span
}

func (s *IncDecStmt) Span() diag.Span  { return s.Sp }
func (s *IncDecStmt) Accept(v Visitor) { v.VisitIncDecStmt(s) }
func (s *IncDecStmt) itemNode()        {}
func (s *IncDecStmt) stmtNode()        {}

// IfStmt: `if cond { ... } [else (ifstmt | block)]`.
type IfStmt struct {
	Tok    token.Token
	Cond   Expr
	Then   *Block
	Else   Stmt // *Block or *IfStmt, nil if absent
	Sp   diag.Span
}

func (s *IfStmt) Span() diag.Span  { return s.Sp }
func (s *IfStmt) Accept(v Visitor) { v.VisitIfStmt(s) }
func (s *IfStmt) itemNode()        {}
func (s *IfStmt) stmtNode()        {}

// WhileStmt: `while cond { ... }`.
type WhileStmt struct {
	Tok  token.Token
	Cond Expr
	Body *Block
	Sp diag.Span
}

func (s *WhileStmt) Span() diag.Span  { return s.Sp }
func (s *WhileStmt) Accept(v Visitor) { v.VisitWhileStmt(s) }
func (s *WhileStmt) itemNode()        {}
func (s *WhileStmt) stmtNode()        {}

// ForStmt: C-style `for init; cond; post { ... }`.
type ForStmt struct {
	Tok  token.Token
	Init Stmt // nil if absent
	Cond Expr // nil if absent
	Post Stmt // nil if absent
	Body *Block
	Sp diag.Span
}

func (s *ForStmt) Span() diag.Span  { return s.Sp }
func (s *ForStmt) Accept(v Visitor) { v.VisitForStmt(s) }
func (s *ForStmt) itemNode()        {}
func (s *ForStmt) stmtNode()        {}

// ForInStmt: `for name in iterable { ... }`.
type ForInStmt struct {
	Tok      token.Token
	Name     string
	Iterable Expr
	Body     *Block
	Sp     diag.Span
}

func (s *ForInStmt) Span() diag.Span  { return s.Sp }
func (s *ForInStmt) Accept(v Visitor) { v.VisitForInStmt(s) }
func (s *ForInStmt) itemNode()        {}
func (s *ForInStmt) stmtNode()        {}

// ReturnStmt: `return [expr]`.
type ReturnStmt struct {
	Tok   token.Token
	Value Expr // nil for bare `return`
	Sp  diag.Span
}

func (s *ReturnStmt) Span() diag.Span  { return s.Sp }
func (s *ReturnStmt) Accept(v Visitor) { v.VisitReturnStmt(s) }
func (s *ReturnStmt) itemNode()        {}
func (s *ReturnStmt) stmtNode()        {}

// BreakStmt: `break`.
type BreakStmt struct {
	Tok  token.Token
	Sp diag.Span
}

func (s *BreakStmt) Span() diag.Span  { return s.Sp }
func (s *BreakStmt) Accept(v Visitor) { v.VisitBreakStmt(s) }
func (s *BreakStmt) itemNode()        {}
func (s *BreakStmt) stmtNode()        {}

// ContinueStmt: `continue`.
type ContinueStmt struct {
	Tok  token.Token
	Sp diag.Span
}

func (s *ContinueStmt) Span() diag.Span  { return s.Sp }
func (s *ContinueStmt) Accept(v Visitor) { v.VisitContinueStmt(s) }
func (s *ContinueStmt) itemNode()        {}
func (s *ContinueStmt) stmtNode()        {}

// ExprStmt wraps a bare expression used as a statement.
type ExprStmt struct {
	Tok  token.Token
	X    Expr
	Sp diag.Span
}

func (s *ExprStmt) Span() diag.Span  { return s.Sp }
func (s *ExprStmt) Accept(v Visitor) { v.VisitExprStmt(s) }
func (s *ExprStmt) itemNode()        {}
func (s *ExprStmt) stmtNode()        {}

// ---- Expressions ----

// Literal holds a Number, String, Bool, or Null constant.
type Literal struct {
	Tok   token.Token
	Value interface{} // float64 | string | bool | nil
	Sp  diag.Span
}

func (l *Literal) Span() diag.Span  { return l.Sp }
func (l *Literal) Accept(v Visitor) { v.VisitLiteral(l) }
func (l *Literal) exprNode()        {}

// Ident is an identifier reference.
type Ident struct {
	Tok  token.Token
	Name string
	Sp diag.Span
}

func (i *Ident) Span() diag.Span  { return i.Sp }
func (i *Ident) Accept(v Visitor) { v.VisitIdent(i) }
func (i *Ident) exprNode()        {}

// UnaryExpr: `-x`, `!x`.
type UnaryExpr struct {
	Tok  token.Token
	Op   token.Type
	X    Expr
	Sp diag.Span
}

func (e *UnaryExpr) Span() diag.Span  { return e.Sp }
func (e *UnaryExpr) Accept(v Visitor) { v.VisitUnaryExpr(e) }
func (e *UnaryExpr) exprNode()        {}

// BinaryExpr: `x OP y`. All operators are left-associative.
type BinaryExpr struct {
	Tok   token.Token
	Op    token.Type
	Left  Expr
	Right Expr
	Sp  diag.Span
}

func (e *BinaryExpr) Span() diag.Span  { return e.Sp }
func (e *BinaryExpr) Accept(v Visitor) { v.VisitBinaryExpr(e) }
func (e *BinaryExpr) exprNode()        {}

// CallExpr: `callee(args...)`.
type CallExpr struct {
	Tok    token.Token
	Callee Expr
	Args   []Expr
	Sp   diag.Span
}

func (e *CallExpr) Span() diag.Span  { return e.Sp }
func (e *CallExpr) Accept(v Visitor) { v.VisitCallExpr(e) }
func (e *CallExpr) exprNode()        {}

// IndexExpr: `x[i]`.
type IndexExpr struct {
	Tok   token.Token
	X     Expr
	Index Expr
	Sp  diag.Span
}

func (e *IndexExpr) Span() diag.Span  { return e.Sp }
func (e *IndexExpr) Accept(v Visitor) { v.VisitIndexExpr(e) }
func (e *IndexExpr) exprNode()        {}

// MemberExpr: `x.field`.
type MemberExpr struct {
	Tok    token.Token
	X      Expr
	Member string
	Sp   diag.Span
}

func (e *MemberExpr) Span() diag.Span  { return e.Sp }
func (e *MemberExpr) Accept(v Visitor) { v.VisitMemberExpr(e) }
func (e *MemberExpr) exprNode()        {}

// ArrayLiteral: `[a, b, c]`.
type ArrayLiteral struct {
	Tok      token.Token
	Elements []Expr
	Sp     diag.Span
}

func (e *ArrayLiteral) Span() diag.Span  { return e.Sp }
func (e *ArrayLiteral) Accept(v Visitor) { v.VisitArrayLiteral(e) }
func (e *ArrayLiteral) exprNode()        {}

// GroupExpr: `(x)`, kept so pretty-printers can preserve source parens.
type GroupExpr struct {
	Tok  token.Token
	X    Expr
	Sp diag.Span
}

func (e *GroupExpr) Span() diag.Span  { return e.Sp }
func (e *GroupExpr) Accept(v Visitor) { v.VisitGroupExpr(e) }
func (e *GroupExpr) exprNode()        {}

// MatchArm is one `pattern [if guard] -> expr` arm.
type MatchArm struct {
	Pattern Pattern
	Guard   Expr // nil if absent
	Body    Expr
}

// MatchExpr: `match x { arm, ... }`.
type MatchExpr struct {
	Tok     token.Token
	Subject Expr
	Arms    []MatchArm
	Sp    diag.Span
}

func (e *MatchExpr) Span() diag.Span  { return e.Sp }
func (e *MatchExpr) Accept(v Visitor) { v.VisitMatchExpr(e) }
func (e *MatchExpr) exprNode()        {}

// TryExpr: `x?` — propagates an error/Option out of the enclosing function.
type TryExpr struct {
	Tok  token.Token
	X    Expr
	Sp diag.Span
}

func (e *TryExpr) Span() diag.Span  { return e.Sp }
func (e *TryExpr) Accept(v Visitor) { v.VisitTryExpr(e) }
func (e *TryExpr) exprNode()        {}

// ---- Patterns ----

// LiteralPattern matches a constant value.
type LiteralPattern struct {
	Tok   token.Token
	Value interface{}
	Sp  diag.Span
}

func (p *LiteralPattern) Span() diag.Span  { return p.Sp }
func (p *LiteralPattern) Accept(v Visitor) { v.VisitLiteralPattern(p) }
func (p *LiteralPattern) patternNode()     {}

// WildcardPattern matches `_`, irrefutably, binding nothing.
type WildcardPattern struct {
	Tok  token.Token
	Sp diag.Span
}

func (p *WildcardPattern) Span() diag.Span  { return p.Sp }
func (p *WildcardPattern) Accept(v Visitor) { v.VisitWildcardPattern(p) }
func (p *WildcardPattern) patternNode()     {}

// VariablePattern binds the matched value to a name.
type VariablePattern struct {
	Tok  token.Token
	Name string
	Sp diag.Span
}

func (p *VariablePattern) Span() diag.Span  { return p.Sp }
func (p *VariablePattern) Accept(v Visitor) { v.VisitVariablePattern(p) }
func (p *VariablePattern) patternNode()     {}

// ConstructorPattern matches a tagged variant, e.g. `Some(x)`.
type ConstructorPattern struct {
	Tok  token.Token
	Name string
	Args []Pattern
	Sp diag.Span
}

func (p *ConstructorPattern) Span() diag.Span  { return p.Sp }
func (p *ConstructorPattern) Accept(v Visitor) { v.VisitConstructorPattern(p) }
func (p *ConstructorPattern) patternNode()     {}

// ArrayPattern matches array literals positionally: `[a, b, c]`.
type ArrayPattern struct {
	Tok      token.Token
	Elements []Pattern
	Sp     diag.Span
}

func (p *ArrayPattern) Span() diag.Span  { return p.Sp }
func (p *ArrayPattern) Accept(v Visitor) { v.VisitArrayPattern(p) }
func (p *ArrayPattern) patternNode()     {}

// OrPattern: `p1 | p2 | ...`, matches if any alternative matches.
type OrPattern struct {
	Tok          token.Token
	Alternatives []Pattern
	Sp         diag.Span
}

func (p *OrPattern) Span() diag.Span  { return p.Sp }
func (p *OrPattern) Accept(v Visitor) { v.VisitOrPattern(p) }
func (p *OrPattern) patternNode()     {}

// ---- TypeRefs ----

// NamedTypeRef: a bare type name, e.g. `Int`.
type NamedTypeRef struct {
	Tok  token.Token
	Name string
	Sp diag.Span
}

func (t *NamedTypeRef) Span() diag.Span  { return t.Sp }
func (t *NamedTypeRef) Accept(v Visitor) { v.VisitNamedTypeRef(t) }
func (t *NamedTypeRef) typeRefNode()     {}

// ArrayTypeRef: `T[]`.
type ArrayTypeRef struct {
	Tok   token.Token
	Inner TypeRef
	Sp  diag.Span
}

func (t *ArrayTypeRef) Span() diag.Span  { return t.Sp }
func (t *ArrayTypeRef) Accept(v Visitor) { v.VisitArrayTypeRef(t) }
func (t *ArrayTypeRef) typeRefNode()     {}

// FunctionTypeRef: `(T, U) -> R`.
type FunctionTypeRef struct {
	Tok    token.Token
	Params []TypeRef
	Return TypeRef
	Sp   diag.Span
}

func (t *FunctionTypeRef) Span() diag.Span  { return t.Sp }
func (t *FunctionTypeRef) Accept(v Visitor) { v.VisitFunctionTypeRef(t) }
func (t *FunctionTypeRef) typeRefNode()     {}

// GenericTypeRef: `Name<T1, T2>`.
type GenericTypeRef struct {
	Tok  token.Token
	Name string
	Args []TypeRef
	Sp diag.Span
}

func (t *GenericTypeRef) Span() diag.Span  { return t.Sp }
func (t *GenericTypeRef) Accept(v Visitor) { v.VisitGenericTypeRef(t) }
func (t *GenericTypeRef) typeRefNode()     {}

// UnionTypeRef: `A | B | ...`.
type UnionTypeRef struct {
	Tok     token.Token
	Members []TypeRef
	Sp    diag.Span
}

func (t *UnionTypeRef) Span() diag.Span  { return t.Sp }
func (t *UnionTypeRef) Accept(v Visitor) { v.VisitUnionTypeRef(t) }
func (t *UnionTypeRef) typeRefNode()     {}

// IntersectionTypeRef: `A & B & ...`.
type IntersectionTypeRef struct {
	Tok     token.Token
	Members []TypeRef
	Sp    diag.Span
}

func (t *IntersectionTypeRef) Span() diag.Span  { return t.Sp }
func (t *IntersectionTypeRef) Accept(v Visitor) { v.VisitIntersectionTypeRef(t) }
func (t *IntersectionTypeRef) typeRefNode()     {}

// StructuralField is one `name: TypeRef` entry of a structural type.
type StructuralField struct {
	Name string
	Type TypeRef
}

// StructuralTypeRef: `{ field: T, ... }`.
type StructuralTypeRef struct {
	Tok    token.Token
	Fields []StructuralField
	Sp   diag.Span
}

func (t *StructuralTypeRef) Span() diag.Span  { return t.Sp }
func (t *StructuralTypeRef) Accept(v Visitor) { v.VisitStructuralTypeRef(t) }
func (t *StructuralTypeRef) typeRefNode()     {}
