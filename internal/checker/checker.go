// Package checker implements Atlas's type checker: it walks the bound
// AST, computes a types.Type for every expression, verifies each
// statement against the rules in spec.md §4.4, performs generic
// unification for call-site inference, exhaustiveness checking for
// pattern match, and unused-binding analysis.
package checker

import (
	"github.com/atlas-lang/atlas/internal/ast"
	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/symbols"
	"github.com/atlas-lang/atlas/internal/token"
	"github.com/atlas-lang/atlas/internal/types"
)

// binding tracks declared-vs-used state for unused-binding analysis
// (AT2001), one per lexical scope frame pushed by the checker.
type binding struct {
	name string
	span diag.Span
	used bool
}

// Checker walks a bound Program and accumulates diagnostics plus a
// Types map from expression node to its computed Type.
type Checker struct {
	table *symbols.Table
	diags diag.List
	Types map[ast.Expr]types.Type

	currentReturn types.Type
	hasReturn     bool
	loopDepth     int

	scopeBindings [][]*binding
}

// New creates a Checker over a Table produced by the Binder.
func New(table *symbols.Table) *Checker {
	return &Checker{table: table, Types: make(map[ast.Expr]types.Type)}
}

func (c *Checker) errorf(code diag.Code, span diag.Span, format string, args ...interface{}) *diag.Diagnostic {
	d := diag.New(code, span, format, args...)
	c.diags = append(c.diags, d)
	return d
}

func (c *Checker) warnf(code diag.Code, span diag.Span, format string, args ...interface{}) *diag.Diagnostic {
	d := diag.NewWarning(code, span, format, args...)
	c.diags = append(c.diags, d)
	return d
}

// Check type-checks prog and returns every diagnostic accumulated.
func (c *Checker) Check(prog *ast.Program) diag.List {
	c.pushBindingScope()
	for _, item := range prog.Items {
		c.checkItem(item)
	}
	c.popBindingScope(false)
	return c.diags
}

func (c *Checker) pushBindingScope() {
	c.scopeBindings = append(c.scopeBindings, nil)
}

// popBindingScope emits AT2001 for every declared-but-unused, non-underscore
// binding in the innermost scope. warn is false for the top-level/global
// frame, which is never flagged (top-level bindings may be part of a
// module's public surface even when never referenced locally).
func (c *Checker) popBindingScope(warn bool) {
	n := len(c.scopeBindings) - 1
	frame := c.scopeBindings[n]
	c.scopeBindings = c.scopeBindings[:n]
	if !warn {
		return
	}
	for _, b := range frame {
		if !b.used && b.name != "_" {
			c.warnf(diag.ErrUnusedBinding, b.span, "'%s' is declared but never used", b.name)
		}
	}
}

func (c *Checker) declare(name string, span diag.Span) {
	n := len(c.scopeBindings) - 1
	c.scopeBindings[n] = append(c.scopeBindings[n], &binding{name: name, span: span})
}

func (c *Checker) use(name string) {
	for i := len(c.scopeBindings) - 1; i >= 0; i-- {
		for _, b := range c.scopeBindings[i] {
			if b.name == name {
				b.used = true
				return
			}
		}
	}
}

// unwrapExport returns the wrapped declaration of an `export <decl>` item,
// or item itself if it isn't an ExportStmt.
func unwrapExport(item ast.Item) ast.Item {
	if exp, ok := item.(*ast.ExportStmt); ok && exp.Decl != nil {
		return exp.Decl
	}
	return item
}

func (c *Checker) checkItem(item ast.Item) {
	switch it := unwrapExport(item).(type) {
	case *ast.FunctionDecl:
		c.checkFunction(it)
	case *ast.ImplDecl:
		for _, m := range it.Methods {
			c.checkFunction(m)
		}
	case ast.Stmt:
		c.checkStmt(it)
	}
}

func (c *Checker) checkFunction(fn *ast.FunctionDecl) {
	// Resolved straight off the declaration rather than via c.table.Lookup:
	// the binder's scope for a nested fn's own symbol is long gone by check
	// time (Bind pops every non-global scope before returning), so a lookup
	// here would only ever find a top-level function's entry.
	var retType types.Type = types.Void
	if fn.ReturnType != nil {
		retType = c.resolveTypeRef(fn.ReturnType)
	}

	savedRet, savedHas := c.currentReturn, c.hasReturn
	c.currentReturn, c.hasReturn = retType, true
	c.pushBindingScope()

	for _, p := range fn.Params {
		c.declare(p.Name, fn.Sp)
	}
	if fn.Body != nil {
		for _, s := range fn.Body.Stmts {
			c.checkStmt(s)
		}
	}

	c.popBindingScope(true)
	c.currentReturn, c.hasReturn = savedRet, savedHas

	if _, void := retType.(types.VoidType); !void {
		if _, null := retType.(types.NullType); !null {
			if fn.Body == nil || !c.blockAlwaysReturns(fn.Body) {
				c.errorf(diag.ErrNonExhaustiveRet, fn.Sp, "not all code paths return a value").
					WithLabel(fn.Sp, "function body")
			}
		}
	}
}

func (c *Checker) blockAlwaysReturns(b *ast.Block) bool {
	for _, s := range b.Stmts {
		if c.stmtAlwaysReturns(s) {
			return true
		}
	}
	return false
}

func (c *Checker) stmtAlwaysReturns(s ast.Stmt) bool {
	switch st := s.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.IfStmt:
		if st.Else == nil {
			return false
		}
		elseReturns := false
		switch e := st.Else.(type) {
		case *ast.Block:
			elseReturns = c.blockAlwaysReturns(e)
		default:
			elseReturns = c.stmtAlwaysReturns(e)
		}
		return c.blockAlwaysReturns(st.Then) && elseReturns
	default:
		return false
	}
}

func (c *Checker) checkBlock(b *ast.Block) {
	if b == nil {
		return
	}
	c.pushBindingScope()
	unreachableReported := false
	for i, s := range b.Stmts {
		if unreachableReported {
			c.warnf(diag.ErrUnreachable, s.Span(), "unreachable statement")
			unreachableReported = false // report once per run of dead code
		}
		c.checkStmt(s)
		if i < len(b.Stmts)-1 && c.stmtAlwaysReturns(s) {
			unreachableReported = true
		}
	}
	c.popBindingScope(true)
}

func (c *Checker) checkStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		initType := c.checkExpr(s.Value)
		declared := initType
		if s.Type != nil {
			declared = c.resolveTypeRef(s.Type)
			if !types.Assignable(initType, declared) && !isUnknown(initType) {
				c.errorf(diag.ErrTypeMismatch, s.Sp, "type mismatch: cannot assign %s to variable of type %s",
					initType, declared).WithLabel(s.Sp, "type mismatch")
			}
		}
		if sym := c.table.Lookup(s.Name); sym != nil && s.Type == nil {
			sym.Type = declared
		}
		c.declare(s.Name, s.Sp)

	case *ast.AssignStmt:
		valType := c.checkExpr(s.Value)
		targetType := c.checkAssignTarget(s.Target)
		if !types.Assignable(valType, targetType) && !isUnknown(valType) {
			c.errorf(diag.ErrTypeMismatch, s.Sp, "type mismatch in assignment: cannot assign %s to %s",
				valType, targetType).WithLabel(s.Sp, "type mismatch")
		}
		if id, ok := s.Target.(*ast.Ident); ok {
			if sym := c.table.Lookup(id.Name); sym != nil && !sym.Mutable {
				c.errorf(diag.ErrImmutableAssign, id.Sp, "cannot assign to immutable variable '%s'", id.Name).
					WithLabel(id.Sp, "immutable variable").
					WithRelated(sym.Span, "'%s' declared here", id.Name)
			}
		}

	case *ast.CompoundAssignStmt:
		valType := c.checkExpr(s.Value)
		targetType := c.checkAssignTarget(s.Target)
		if !isUnknown(valType) && !isUnknown(targetType) && !types.Equal(valType, targetType) {
			c.errorf(diag.ErrOperandType, s.Sp, "compound assignment requires matching operand types, found %s and %s",
				targetType, valType)
		}
		if id, ok := s.Target.(*ast.Ident); ok {
			if sym := c.table.Lookup(id.Name); sym != nil && !sym.Mutable {
				c.errorf(diag.ErrImmutableAssign, id.Sp, "cannot assign to immutable variable '%s'", id.Name)
			}
		}

	case *ast.IncDecStmt:
		targetType := c.checkAssignTarget(s.Target)
		if !isUnknown(targetType) {
			if _, ok := targetType.(types.NumberType); !ok {
				c.errorf(diag.ErrOperandType, s.Sp, "'++'/'--' requires a number operand, found %s", targetType)
			}
		}

	case *ast.IfStmt:
		condType := c.checkExpr(s.Cond)
		c.requireBool(condType, s.Cond.Span())
		c.checkBlock(s.Then)
		if s.Else != nil {
			c.checkStmt(s.Else)
		}

	case *ast.WhileStmt:
		condType := c.checkExpr(s.Cond)
		c.requireBool(condType, s.Cond.Span())
		c.loopDepth++
		c.checkBlock(s.Body)
		c.loopDepth--

	case *ast.ForStmt:
		c.pushBindingScope()
		if s.Init != nil {
			c.checkStmt(s.Init)
		}
		if s.Cond != nil {
			condType := c.checkExpr(s.Cond)
			c.requireBool(condType, s.Cond.Span())
		}
		if s.Post != nil {
			c.checkStmt(s.Post)
		}
		c.loopDepth++
		c.checkBlock(s.Body)
		c.loopDepth--
		c.popBindingScope(true)

	case *ast.ForInStmt:
		iterType := c.checkExpr(s.Iterable)
		c.pushBindingScope()
		c.declare(s.Name, s.Sp)
		if arr, ok := types.Resolve(iterType).(types.ArrayType); ok {
			if sym := c.table.Lookup(s.Name); sym != nil {
				sym.Type = arr.Elem
			}
		}
		c.loopDepth++
		c.checkBlock(s.Body)
		c.loopDepth--
		c.popBindingScope(true)

	case *ast.ReturnStmt:
		if !c.hasReturn {
			c.errorf(diag.ErrReturnOutsideFn, s.Sp, "return statement outside function").
				WithLabel(s.Sp, "invalid return")
			return
		}
		var retType types.Type = types.Void
		if s.Value != nil {
			retType = c.checkExpr(s.Value)
		}
		if !types.Assignable(retType, c.currentReturn) && !isUnknown(retType) {
			c.errorf(diag.ErrTypeMismatch, s.Sp, "return type mismatch: expected %s, found %s",
				c.currentReturn, retType).WithLabel(s.Sp, "type mismatch")
		}

	case *ast.BreakStmt:
		if c.loopDepth == 0 {
			c.errorf(diag.ErrLoopControl, s.Sp, "break statement outside loop").WithLabel(s.Sp, "invalid break")
		}

	case *ast.ContinueStmt:
		if c.loopDepth == 0 {
			c.errorf(diag.ErrLoopControl, s.Sp, "continue statement outside loop").WithLabel(s.Sp, "invalid continue")
		}

	case *ast.ExprStmt:
		c.checkExpr(s.X)

	case *ast.Block:
		c.checkBlock(s)

	case *ast.FunctionDecl:
		c.checkFunction(s)
	}
}

func (c *Checker) requireBool(t types.Type, span diag.Span) {
	if isUnknown(t) {
		return
	}
	if _, ok := t.(types.BoolType); !ok {
		c.errorf(diag.ErrTypeMismatch, span, "condition must be bool, found %s", t).WithLabel(span, "type mismatch")
	}
}

func (c *Checker) checkAssignTarget(target ast.Expr) types.Type {
	switch t := target.(type) {
	case *ast.Ident:
		c.use(t.Name)
		if sym := c.table.Lookup(t.Name); sym != nil {
			return sym.Type
		}
		return types.Unknown
	case *ast.IndexExpr:
		return c.checkIndex(t)
	case *ast.MemberExpr:
		return c.checkMember(t)
	default:
		return c.checkExpr(target)
	}
}

func isUnknown(t types.Type) bool {
	_, ok := types.Resolve(t).(types.UnknownType)
	return ok
}

func (c *Checker) checkExpr(expr ast.Expr) types.Type {
	var t types.Type
	switch e := expr.(type) {
	case *ast.Literal:
		switch e.Value.(type) {
		case float64:
			t = types.Number
		case string:
			t = types.String
		case bool:
			t = types.Bool
		default:
			t = types.Null
		}
	case *ast.Ident:
		c.use(e.Name)
		if sym := c.table.Lookup(e.Name); sym != nil {
			t = sym.Type
		} else {
			t = types.Unknown
		}
	case *ast.UnaryExpr:
		t = c.checkUnary(e)
	case *ast.BinaryExpr:
		t = c.checkBinary(e)
	case *ast.CallExpr:
		t = c.checkCall(e)
	case *ast.IndexExpr:
		t = c.checkIndex(e)
	case *ast.MemberExpr:
		t = c.checkMember(e)
	case *ast.ArrayLiteral:
		t = c.checkArrayLiteral(e)
	case *ast.GroupExpr:
		t = c.checkExpr(e.X)
	case *ast.MatchExpr:
		t = c.checkMatch(e)
	case *ast.TryExpr:
		t = c.checkExpr(e.X)
	default:
		t = types.Unknown
	}
	if expr != nil {
		c.Types[expr] = t
	}
	return t
}

func (c *Checker) checkUnary(e *ast.UnaryExpr) types.Type {
	xt := c.checkExpr(e.X)
	if isUnknown(xt) {
		return types.Unknown
	}
	switch e.Op {
	case token.MINUS:
		if _, ok := xt.(types.NumberType); ok {
			return types.Number
		}
		c.errorf(diag.ErrOperandType, e.Sp, "unary '-' requires a number operand, found %s", xt)
		return types.Unknown
	case token.BANG:
		if _, ok := xt.(types.BoolType); ok {
			return types.Bool
		}
		c.errorf(diag.ErrOperandType, e.Sp, "unary '!' requires a bool operand, found %s", xt)
		return types.Unknown
	}
	return types.Unknown
}

func (c *Checker) checkBinary(e *ast.BinaryExpr) types.Type {
	lt := c.checkExpr(e.Left)
	rt := c.checkExpr(e.Right)
	if isUnknown(lt) || isUnknown(rt) {
		return types.Unknown
	}
	switch e.Op {
	case token.PLUS:
		_, lnum := lt.(types.NumberType)
		_, rnum := rt.(types.NumberType)
		_, lstr := lt.(types.StringType)
		_, rstr := rt.(types.StringType)
		if lnum && rnum {
			return types.Number
		}
		if lstr && rstr {
			return types.String
		}
		c.errorf(diag.ErrOperandType, e.Sp, "'+' requires both operands to be number or both to be string, found %s and %s", lt, rt)
		return types.Unknown
	case token.MINUS, token.STAR, token.SLASH, token.PERCENT:
		_, lnum := lt.(types.NumberType)
		_, rnum := rt.(types.NumberType)
		if lnum && rnum {
			return types.Number
		}
		c.errorf(diag.ErrOperandType, e.Sp, "arithmetic operator requires number operands, found %s and %s", lt, rt)
		return types.Unknown
	case token.EQ, token.NOT_EQ:
		if !types.Equal(lt, rt) {
			c.errorf(diag.ErrOperandType, e.Sp, "equality comparison requires same-typed operands, found %s and %s", lt, rt)
		}
		return types.Bool
	case token.LT, token.LTE, token.GT, token.GTE:
		_, lnum := lt.(types.NumberType)
		_, rnum := rt.(types.NumberType)
		if !lnum || !rnum {
			c.errorf(diag.ErrOperandType, e.Sp, "comparison requires number operands, found %s and %s", lt, rt)
		}
		return types.Bool
	case token.AND_AND, token.OR_OR:
		_, lbool := lt.(types.BoolType)
		_, rbool := rt.(types.BoolType)
		if !lbool || !rbool {
			c.errorf(diag.ErrOperandType, e.Sp, "logical operators require bool operands, found %s and %s", lt, rt)
		}
		return types.Bool
	}
	return types.Unknown
}

// checkCall handles both monomorphic calls and generic inference via
// unification: type-parameter variables are solved from argument types,
// conflicting solutions (T=Number then T=String) raise a diagnostic.
func (c *Checker) checkCall(e *ast.CallExpr) types.Type {
	calleeType := c.checkExpr(e.Callee)
	for _, a := range e.Args {
		c.checkExpr(a)
	}
	ft, ok := types.Resolve(calleeType).(types.FunctionType)
	if !ok {
		if isUnknown(calleeType) {
			return types.Unknown
		}
		c.errorf(diag.ErrNonCallable, e.Sp, "cannot call non-function type %s", calleeType).
			WithLabel(e.Sp, "not callable")
		return types.Unknown
	}

	if len(e.Args) != len(ft.Params) && !ft.Variadic {
		c.errorf(diag.ErrArityMismatch, e.Sp, "function expects %d argument(s), found %d", len(ft.Params), len(e.Args)).
			WithLabel(e.Sp, "argument count mismatch")
	}

	var solution map[string]types.Type
	if len(ft.TypeParams) > 0 {
		solution = make(map[string]types.Type)
		for i, a := range e.Args {
			if i >= len(ft.Params) {
				break
			}
			argType := c.Types[a]
			unify(ft.Params[i], argType, solution, c, e.Sp)
		}
	}

	for i, a := range e.Args {
		if i >= len(ft.Params) {
			break
		}
		expected := substitute(ft.Params[i], solution)
		argType := c.Types[a]
		if !types.Assignable(argType, expected) && !isUnknown(argType) {
			c.errorf(diag.ErrTypeMismatch, a.Span(), "argument %d has wrong type: expected %s, found %s",
				i+1, expected, argType).WithLabel(a.Span(), "type mismatch")
		}
	}

	return substitute(ft.Return, solution)
}

// unify collects constraints on type-parameter variables found in param
// by comparing its shape against arg, reporting a diagnostic when a
// variable is solved to two incompatible concrete types.
func unify(param, arg types.Type, solution map[string]types.Type, c *Checker, span diag.Span) {
	if arg == nil || isUnknown(arg) {
		return
	}
	switch p := param.(type) {
	case types.TypeParameter:
		if existing, ok := solution[p.Name]; ok {
			if !types.Equal(existing, arg) {
				c.errorf(diag.ErrTypeMismatch, span, "generic parameter '%s' inferred as both %s and %s", p.Name, existing, arg)
			}
			return
		}
		solution[p.Name] = arg
	case types.ArrayType:
		if a, ok := types.Resolve(arg).(types.ArrayType); ok {
			unify(p.Elem, a.Elem, solution, c, span)
		}
	case types.GenericType:
		if a, ok := types.Resolve(arg).(types.GenericType); ok && a.Name == p.Name {
			for i := range p.Args {
				if i < len(a.Args) {
					unify(p.Args[i], a.Args[i], solution, c, span)
				}
			}
		}
	}
}

// substitute replaces every TypeParameter in t with its solved type, if any.
func substitute(t types.Type, solution map[string]types.Type) types.Type {
	if solution == nil {
		return t
	}
	switch tt := t.(type) {
	case types.TypeParameter:
		if s, ok := solution[tt.Name]; ok {
			return s
		}
		return t
	case types.ArrayType:
		return types.ArrayType{Elem: substitute(tt.Elem, solution)}
	case types.GenericType:
		args := make([]types.Type, len(tt.Args))
		for i, a := range tt.Args {
			args[i] = substitute(a, solution)
		}
		return types.GenericType{Name: tt.Name, Args: args}
	default:
		return t
	}
}

func (c *Checker) checkIndex(e *ast.IndexExpr) types.Type {
	targetType := c.checkExpr(e.X)
	indexType := c.checkExpr(e.Index)
	if !isUnknown(indexType) {
		if _, ok := indexType.(types.NumberType); !ok {
			c.errorf(diag.ErrTypeMismatch, e.Index.Span(), "array index must be number, found %s", indexType)
		}
	}
	switch tt := types.Resolve(targetType).(type) {
	case types.ArrayType:
		return tt.Elem
	case types.UnknownType:
		return types.Unknown
	default:
		c.errorf(diag.ErrTypeMismatch, e.X.Span(), "cannot index into non-array type %s", targetType).
			WithLabel(e.X.Span(), "not an array")
		return types.Unknown
	}
}

func (c *Checker) checkMember(e *ast.MemberExpr) types.Type {
	targetType := c.checkExpr(e.X)
	if st, ok := types.Resolve(targetType).(types.StructuralType); ok {
		for _, f := range st.Fields {
			if f.Name == e.Member {
				return f.Type
			}
		}
		c.errorf(diag.ErrTypeMismatch, e.Sp, "type %s has no field '%s'", targetType, e.Member)
		return types.Unknown
	}
	if isUnknown(targetType) {
		return types.Unknown
	}
	return types.Unknown
}

func (c *Checker) checkArrayLiteral(e *ast.ArrayLiteral) types.Type {
	if len(e.Elements) == 0 {
		return types.ArrayType{Elem: types.Unknown}
	}
	first := c.checkExpr(e.Elements[0])
	for i := 1; i < len(e.Elements); i++ {
		elemType := c.checkExpr(e.Elements[i])
		if !types.Assignable(elemType, first) && !isUnknown(elemType) {
			c.errorf(diag.ErrTypeMismatch, e.Elements[i].Span(), "array element %d has wrong type: expected %s, found %s",
				i, first, elemType)
		}
	}
	return types.ArrayType{Elem: first}
}

// checkMatch type-checks a match expression and enforces exhaustiveness
// (AT3027): a wildcard or irrefutable variable pattern makes the match
// exhaustive; otherwise every known constructor of the subject's
// declared variant set must be covered.
func (c *Checker) checkMatch(e *ast.MatchExpr) types.Type {
	subjectType := c.checkExpr(e.Subject)

	covered := make(map[string]bool)
	irrefutable := false
	var resultType types.Type = types.Unknown
	for i, arm := range e.Arms {
		c.pushBindingScope()
		c.bindPatternTypes(arm.Pattern, subjectType)
		if arm.Guard != nil {
			c.requireBool(c.checkExpr(arm.Guard), arm.Guard.Span())
		}
		bodyType := c.checkExpr(arm.Body)
		c.popBindingScope(false)

		switch p := arm.Pattern.(type) {
		case *ast.WildcardPattern, *ast.VariablePattern:
			if arm.Guard == nil {
				irrefutable = true
			}
		case *ast.ConstructorPattern:
			covered[p.Name] = true
		}

		if i == 0 {
			resultType = bodyType
		}
	}

	if !irrefutable {
		if variants, ok := knownVariants(subjectType); ok {
			var missing []string
			for _, v := range variants {
				if !covered[v] {
					missing = append(missing, v)
				}
			}
			if len(missing) > 0 {
				c.errorf(diag.ErrNonExhaustiveMat, e.Sp, "non-exhaustive match: missing %v", missing).
					WithLabel(e.Sp, "non-exhaustive match").
					WithHelp("add a wildcard arm or cover every remaining constructor")
			}
		}
	}

	return resultType
}

// knownVariants returns the constructor names of Atlas's built-in
// Option/Result generics, the only tagged-union shapes the prelude
// defines (spec.md §3's Value::Option).
func knownVariants(t types.Type) ([]string, bool) {
	g, ok := types.Resolve(t).(types.GenericType)
	if !ok {
		return nil, false
	}
	switch g.Name {
	case "Option":
		return []string{"Some", "None"}, true
	case "Result":
		return []string{"Ok", "Err"}, true
	default:
		return nil, false
	}
}

func (c *Checker) bindPatternTypes(p ast.Pattern, subject types.Type) {
	switch pat := p.(type) {
	case *ast.VariablePattern:
		if pat.Name != "_" {
			c.declare(pat.Name, pat.Sp)
			if sym := c.table.Lookup(pat.Name); sym != nil {
				sym.Type = subject
			}
		}
	case *ast.ConstructorPattern:
		for _, a := range pat.Args {
			c.bindPatternTypes(a, types.Unknown)
		}
	case *ast.ArrayPattern:
		elem := types.Type(types.Unknown)
		if at, ok := types.Resolve(subject).(types.ArrayType); ok {
			elem = at.Elem
		}
		for _, el := range pat.Elements {
			c.bindPatternTypes(el, elem)
		}
	case *ast.OrPattern:
		for _, alt := range pat.Alternatives {
			c.bindPatternTypes(alt, subject)
		}
	}
}

func (c *Checker) resolveTypeRef(ref ast.TypeRef) types.Type {
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
			if tp, ok := c.table.LookupTypeParam(t.Name); ok {
				return types.TypeParameter{Name: tp.Name}
			}
			return types.Unknown
		}
	case *ast.ArrayTypeRef:
		return types.ArrayType{Elem: c.resolveTypeRef(t.Inner)}
	case *ast.FunctionTypeRef:
		params := make([]types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = c.resolveTypeRef(p)
		}
		return types.FunctionType{Params: params, Return: c.resolveTypeRef(t.Return)}
	case *ast.GenericTypeRef:
		args := make([]types.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = c.resolveTypeRef(a)
		}
		return types.GenericType{Name: t.Name, Args: args}
	case *ast.UnionTypeRef:
		members := make([]types.Type, len(t.Members))
		for i, m := range t.Members {
			members[i] = c.resolveTypeRef(m)
		}
		return types.UnionType{Members: members}
	case *ast.IntersectionTypeRef:
		members := make([]types.Type, len(t.Members))
		for i, m := range t.Members {
			members[i] = c.resolveTypeRef(m)
		}
		return types.IntersectionType{Members: members}
	case *ast.StructuralTypeRef:
		fields := make([]types.StructuralField, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = types.StructuralField{Name: f.Name, Type: c.resolveTypeRef(f.Type)}
		}
		return types.StructuralType{Fields: fields}
	default:
		return types.Unknown
	}
}
