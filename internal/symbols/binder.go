package symbols

import (
	"fmt"

	"github.com/atlas-lang/atlas/internal/ast"
	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/types"
)

// Binder performs two-pass name resolution over a parsed Program:
// pass 1 hoists top-level function names so forward references resolve,
// pass 2 walks every item, pushing/popping scopes at block boundaries.
type Binder struct {
	table *Table
	diags diag.List
}

// NewBinder creates a Binder with a fresh Table seeded with prelude builtins.
func NewBinder() *Binder {
	return &Binder{table: NewTable()}
}

// WithTable lets a REPL session reuse a Table across successive binds.
func WithTable(t *Table) *Binder {
	return &Binder{table: t}
}

// Bind runs both passes over prog and returns the populated Table plus
// every diagnostic accumulated while binding.
func (b *Binder) Bind(prog *ast.Program) (*Table, diag.List) {
	for _, item := range prog.Items {
		switch it := unwrapExport(item).(type) {
		case *ast.FunctionDecl:
			b.hoistFunction(it)
		case *ast.ImplDecl:
			// impl methods have no receiver-dot call syntax (spec.md §9);
			// they are static, monomorphized functions in the same flat
			// global namespace as any other top-level function.
			for _, m := range it.Methods {
				b.hoistFunction(m)
			}
		}
	}
	for _, item := range prog.Items {
		b.bindItem(item)
	}
	return b.table, b.diags
}

func (b *Binder) errorf(code diag.Code, span diag.Span, format string, args ...interface{}) *diag.Diagnostic {
	d := diag.New(code, span, format, args...)
	b.diags = append(b.diags, d)
	return d
}

// checkPreludeShadow reports AT1012 if name shadows a prelude builtin at
// global scope; nested shadowing is allowed (spec.md §4.3).
func (b *Binder) checkPreludeShadow(name string, span diag.Span) bool {
	if b.table.IsGlobalScope() && IsPreludeBuiltin(name) {
		b.errorf(diag.ErrShadowPrelude, span, "cannot shadow prelude builtin '%s' in global scope", name).
			WithLabel(span, "shadows prelude builtin").
			WithHelp("prelude builtins cannot be redefined at the top level; use a different name or shadow in a nested scope")
		return true
	}
	return false
}

func (b *Binder) hoistFunction(fn *ast.FunctionDecl) {
	nameSpan := diag.Span{Start: fn.Sp.Start, End: fn.Sp.Start + len(fn.Name)}
	if b.checkPreludeShadow(fn.Name, nameSpan) {
		return
	}

	b.table.EnterTypeParamScope()
	for _, tp := range fn.TypeParams {
		if !b.table.RegisterTypeParam(tp) {
			b.errorf(diag.ErrParse, fn.Sp, "duplicate type parameter '%s'", tp.Name)
		}
	}
	paramTypes := make([]types.Type, len(fn.Params))
	for i, p := range fn.Params {
		paramTypes[i] = b.resolveTypeRef(p.Type)
	}
	retType := types.Type(types.Void)
	if fn.ReturnType != nil {
		retType = b.resolveTypeRef(fn.ReturnType)
	}
	b.table.ExitTypeParamScope()

	tpNames := make([]string, len(fn.TypeParams))
	for i, tp := range fn.TypeParams {
		tpNames[i] = tp.Name
	}

	sym := Symbol{
		Name:     fn.Name,
		Type:     types.FunctionType{TypeParams: tpNames, Params: paramTypes, Return: retType},
		Kind:     Function,
		Span:     nameSpan,
		Exported: fn.Exported,
	}
	if _, d := b.table.Define(sym); d != nil {
		b.diags = append(b.diags, d)
	}
}

// unwrapExport returns the wrapped declaration of an `export <decl>` item,
// or item itself if it isn't an ExportStmt. Used so hoisting and binding
// see the same top-level declarations regardless of export wrapping.
func unwrapExport(item ast.Item) ast.Item {
	if exp, ok := item.(*ast.ExportStmt); ok && exp.Decl != nil {
		return exp.Decl
	}
	return item
}

func (b *Binder) bindItem(item ast.Item) {
	switch it := unwrapExport(item).(type) {
	case *ast.FunctionDecl:
		b.bindFunction(it)
	case *ast.VarDecl:
		b.bindStmt(it)
	case *ast.ImplDecl:
		for _, m := range it.Methods {
			b.bindFunction(m)
		}
	case *ast.ImportStmt, *ast.ExportStmt, *ast.ExternDecl, *ast.TypeAliasDecl,
		*ast.TraitDecl:
		// Module/type-level items are resolved by the module loader /
		// checker respectively; nothing to bind here beyond their shape.
	default:
		if stmt, ok := it.(ast.Stmt); ok {
			b.bindStmt(stmt)
		}
	}
}

func (b *Binder) bindFunction(fn *ast.FunctionDecl) {
	b.table.EnterScope()
	for _, p := range fn.Params {
		sym := Symbol{Name: p.Name, Type: b.resolveTypeRef(p.Type), Kind: Parameter, Span: fn.Sp}
		if _, d := b.table.Define(sym); d != nil {
			d.Message = fmt.Sprintf("parameter '%s' is already declared in this scope", p.Name)
			b.diags = append(b.diags, d)
		}
	}
	b.bindBlock(fn.Body)
	b.table.ExitScope()
}

func (b *Binder) bindBlock(block *ast.Block) {
	if block == nil {
		return
	}
	b.table.EnterScope()
	for _, s := range block.Stmts {
		b.bindStmt(s)
	}
	b.table.ExitScope()
}

func (b *Binder) bindStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		if b.checkPreludeShadow(s.Name, s.Sp) {
			return
		}
		b.bindExpr(s.Value)
		ty := types.Type(types.Unknown)
		if s.Type != nil {
			ty = b.resolveTypeRef(s.Type)
		}
		sym := Symbol{Name: s.Name, Type: ty, Mutable: s.Mutable, Kind: Variable, Span: s.Sp}
		if _, d := b.table.Define(sym); d != nil {
			d.Message = fmt.Sprintf("variable '%s' is already declared in this scope", s.Name)
			b.diags = append(b.diags, d)
		}
	case *ast.AssignStmt:
		b.bindAssignTarget(s.Target)
		b.bindExpr(s.Value)
	case *ast.CompoundAssignStmt:
		b.bindAssignTarget(s.Target)
		b.bindExpr(s.Value)
	case *ast.IncDecStmt:
		b.bindAssignTarget(s.Target)
	case *ast.IfStmt:
		b.bindExpr(s.Cond)
		b.bindBlock(s.Then)
		if s.Else != nil {
			b.bindStmt(s.Else)
		}
	case *ast.WhileStmt:
		b.bindExpr(s.Cond)
		b.bindBlock(s.Body)
	case *ast.ForStmt:
		b.table.EnterScope()
		if s.Init != nil {
			b.bindStmt(s.Init)
		}
		if s.Cond != nil {
			b.bindExpr(s.Cond)
		}
		if s.Post != nil {
			b.bindStmt(s.Post)
		}
		b.bindBlock(s.Body)
		b.table.ExitScope()
	case *ast.ForInStmt:
		b.bindExpr(s.Iterable)
		b.table.EnterScope()
		sym := Symbol{Name: s.Name, Type: types.Unknown, Mutable: false, Kind: Variable, Span: s.Sp}
		b.table.Define(sym)
		b.bindBlock(s.Body)
		b.table.ExitScope()
	case *ast.ReturnStmt:
		if s.Value != nil {
			b.bindExpr(s.Value)
		}
	case *ast.BreakStmt, *ast.ContinueStmt:
		// nothing to bind
	case *ast.ExprStmt:
		b.bindExpr(s.X)
	case *ast.Block:
		b.bindBlock(s)
	case *ast.FunctionDecl:
		// Only top-level functions are hoisted (spec.md §5); a nested fn's
		// own name is defined here, at its declaration point in the
		// already-entered enclosing scope, so it resolves from there on
		// but not to statements above it.
		b.hoistFunction(s)
		b.bindFunction(s)
	}
}

func (b *Binder) bindAssignTarget(target ast.Expr) {
	switch t := target.(type) {
	case *ast.Ident:
		if b.table.Lookup(t.Name) == nil {
			b.errorf(diag.ErrUnknownSymbol, t.Sp, "unknown symbol '%s'", t.Name).
				WithLabel(t.Sp, "undefined variable")
		}
	case *ast.IndexExpr:
		b.bindExpr(t.X)
		b.bindExpr(t.Index)
	case *ast.MemberExpr:
		b.bindExpr(t.X)
	default:
		b.bindExpr(target)
	}
}

func (b *Binder) bindExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case nil, *ast.Literal:
		// literals need no binding
	case *ast.Ident:
		if b.table.Lookup(e.Name) == nil {
			b.errorf(diag.ErrUnknownSymbol, e.Sp, "unknown symbol '%s'", e.Name).
				WithLabel(e.Sp, "undefined variable")
		}
	case *ast.UnaryExpr:
		b.bindExpr(e.X)
	case *ast.BinaryExpr:
		b.bindExpr(e.Left)
		b.bindExpr(e.Right)
	case *ast.CallExpr:
		b.bindExpr(e.Callee)
		for _, a := range e.Args {
			b.bindExpr(a)
		}
	case *ast.IndexExpr:
		b.bindExpr(e.X)
		b.bindExpr(e.Index)
	case *ast.MemberExpr:
		b.bindExpr(e.X)
	case *ast.ArrayLiteral:
		for _, el := range e.Elements {
			b.bindExpr(el)
		}
	case *ast.GroupExpr:
		b.bindExpr(e.X)
	case *ast.MatchExpr:
		b.bindExpr(e.Subject)
		for _, arm := range e.Arms {
			b.table.EnterScope()
			b.bindPattern(arm.Pattern)
			if arm.Guard != nil {
				b.bindExpr(arm.Guard)
			}
			b.bindExpr(arm.Body)
			b.table.ExitScope()
		}
	case *ast.TryExpr:
		b.bindExpr(e.X)
	}
}

func (b *Binder) bindPattern(p ast.Pattern) {
	switch pat := p.(type) {
	case *ast.VariablePattern:
		if pat.Name != "_" {
			b.table.Define(Symbol{Name: pat.Name, Type: types.Unknown, Kind: Variable, Span: pat.Sp})
		}
	case *ast.ConstructorPattern:
		for _, a := range pat.Args {
			b.bindPattern(a)
		}
	case *ast.ArrayPattern:
		for _, el := range pat.Elements {
			b.bindPattern(el)
		}
	case *ast.OrPattern:
		for _, alt := range pat.Alternatives {
			b.bindPattern(alt)
		}
	}
}

// genericArity is the built-in generic type arity table (spec.md §3):
// Array<T>, Option<T>, HashMap<K,V>, HashSet<T>, Queue<T>, Stack<T>.
var genericArity = map[string]int{
	"Array":   1,
	"Option":  1,
	"HashMap": 2,
	"HashSet": 1,
	"Queue":   1,
	"Stack":   1,
}

// resolveTypeRef lowers a parsed TypeRef into an internal/types.Type,
// validating generic instantiation arity along the way.
func (b *Binder) resolveTypeRef(ref ast.TypeRef) types.Type {
	switch t := ref.(type) {
	case nil:
		return types.Unknown
	case *ast.NamedTypeRef:
		switch t.Name {
		case "number":
			return types.Number
		case "string":
			return types.String
		case "bool":
			return types.Bool
		case "void":
			return types.Void
		case "null":
			return types.Null
		case "json":
			return types.JSONValue
		default:
			if tp, ok := b.table.LookupTypeParam(t.Name); ok {
				return types.TypeParameter{Name: tp.Name}
			}
			return types.Unknown
		}
	case *ast.ArrayTypeRef:
		return types.ArrayType{Elem: b.resolveTypeRef(t.Inner)}
	case *ast.FunctionTypeRef:
		params := make([]types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = b.resolveTypeRef(p)
		}
		return types.FunctionType{Params: params, Return: b.resolveTypeRef(t.Return)}
	case *ast.GenericTypeRef:
		if arity, ok := genericArity[t.Name]; ok {
			if len(t.Args) != arity {
				b.errorf(diag.ErrParse, t.Sp, "generic type '%s' expects %d type argument(s), found %d",
					t.Name, arity, len(t.Args))
				return types.Unknown
			}
		} else if _, ok := b.table.LookupTypeParam(t.Name); !ok {
			b.errorf(diag.ErrParse, t.Sp, "unknown generic type '%s'", t.Name)
			return types.Unknown
		}
		args := make([]types.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = b.resolveTypeRef(a)
		}
		return types.GenericType{Name: t.Name, Args: args}
	case *ast.UnionTypeRef:
		members := make([]types.Type, len(t.Members))
		for i, m := range t.Members {
			members[i] = b.resolveTypeRef(m)
		}
		return types.UnionType{Members: members}
	case *ast.IntersectionTypeRef:
		members := make([]types.Type, len(t.Members))
		for i, m := range t.Members {
			members[i] = b.resolveTypeRef(m)
		}
		return types.IntersectionType{Members: members}
	case *ast.StructuralTypeRef:
		fields := make([]types.StructuralField, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = types.StructuralField{Name: f.Name, Type: b.resolveTypeRef(f.Type)}
		}
		return types.StructuralType{Fields: fields}
	default:
		return types.Unknown
	}
}
