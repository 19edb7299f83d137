package ast

// Visitor dispatches over every concrete node type by tag. Each Accept
// method calls back exactly one method here, so adding a node means
// adding one method to this interface and every implementation.
type Visitor interface {
	VisitProgram(*Program)

	VisitFunctionDecl(*FunctionDecl)
	VisitImportStmt(*ImportStmt)
	VisitExportStmt(*ExportStmt)
	VisitExternDecl(*ExternDecl)
	VisitTypeAliasDecl(*TypeAliasDecl)
	VisitTraitDecl(*TraitDecl)
	VisitImplDecl(*ImplDecl)

	VisitBlock(*Block)
	VisitVarDecl(*VarDecl)
	VisitAssignStmt(*AssignStmt)
	VisitCompoundAssignStmt(*CompoundAssignStmt)
	VisitIncDecStmt(*IncDecStmt)
	VisitIfStmt(*IfStmt)
	VisitWhileStmt(*WhileStmt)
	VisitForStmt(*ForStmt)
	VisitForInStmt(*ForInStmt)
	VisitReturnStmt(*ReturnStmt)
	VisitBreakStmt(*BreakStmt)
	VisitContinueStmt(*ContinueStmt)
	VisitExprStmt(*ExprStmt)

	VisitLiteral(*Literal)
	VisitIdent(*Ident)
	VisitUnaryExpr(*UnaryExpr)
	VisitBinaryExpr(*BinaryExpr)
	VisitCallExpr(*CallExpr)
	VisitIndexExpr(*IndexExpr)
	VisitMemberExpr(*MemberExpr)
	VisitArrayLiteral(*ArrayLiteral)
	VisitGroupExpr(*GroupExpr)
	VisitMatchExpr(*MatchExpr)
	VisitTryExpr(*TryExpr)

	VisitLiteralPattern(*LiteralPattern)
	VisitWildcardPattern(*WildcardPattern)
	VisitVariablePattern(*VariablePattern)
	VisitConstructorPattern(*ConstructorPattern)
	VisitArrayPattern(*ArrayPattern)
	VisitOrPattern(*OrPattern)

	VisitNamedTypeRef(*NamedTypeRef)
	VisitArrayTypeRef(*ArrayTypeRef)
	VisitFunctionTypeRef(*FunctionTypeRef)
	VisitGenericTypeRef(*GenericTypeRef)
	VisitUnionTypeRef(*UnionTypeRef)
	VisitIntersectionTypeRef(*IntersectionTypeRef)
	VisitStructuralTypeRef(*StructuralTypeRef)
}

// BaseVisitor implements Visitor with no-op methods so callers can embed
// it and override only the node kinds they care about.
type BaseVisitor struct{}

func (BaseVisitor) VisitProgram(*Program) {}

func (BaseVisitor) VisitFunctionDecl(*FunctionDecl)     {}
func (BaseVisitor) VisitImportStmt(*ImportStmt)         {}
func (BaseVisitor) VisitExportStmt(*ExportStmt)         {}
func (BaseVisitor) VisitExternDecl(*ExternDecl)         {}
func (BaseVisitor) VisitTypeAliasDecl(*TypeAliasDecl)   {}
func (BaseVisitor) VisitTraitDecl(*TraitDecl)           {}
func (BaseVisitor) VisitImplDecl(*ImplDecl)             {}

func (BaseVisitor) VisitBlock(*Block)                             {}
func (BaseVisitor) VisitVarDecl(*VarDecl)                         {}
func (BaseVisitor) VisitAssignStmt(*AssignStmt)                   {}
func (BaseVisitor) VisitCompoundAssignStmt(*CompoundAssignStmt)   {}
func (BaseVisitor) VisitIncDecStmt(*IncDecStmt)                   {}
func (BaseVisitor) VisitIfStmt(*IfStmt)                           {}
func (BaseVisitor) VisitWhileStmt(*WhileStmt)                     {}
func (BaseVisitor) VisitForStmt(*ForStmt)                         {}
func (BaseVisitor) VisitForInStmt(*ForInStmt)                     {}
func (BaseVisitor) VisitReturnStmt(*ReturnStmt)                   {}
func (BaseVisitor) VisitBreakStmt(*BreakStmt)                     {}
func (BaseVisitor) VisitContinueStmt(*ContinueStmt)               {}
func (BaseVisitor) VisitExprStmt(*ExprStmt)                       {}

func (BaseVisitor) VisitLiteral(*Literal)           {}
func (BaseVisitor) VisitIdent(*Ident)               {}
func (BaseVisitor) VisitUnaryExpr(*UnaryExpr)       {}
func (BaseVisitor) VisitBinaryExpr(*BinaryExpr)     {}
func (BaseVisitor) VisitCallExpr(*CallExpr)         {}
func (BaseVisitor) VisitIndexExpr(*IndexExpr)       {}
func (BaseVisitor) VisitMemberExpr(*MemberExpr)     {}
func (BaseVisitor) VisitArrayLiteral(*ArrayLiteral) {}
func (BaseVisitor) VisitGroupExpr(*GroupExpr)       {}
func (BaseVisitor) VisitMatchExpr(*MatchExpr)       {}
func (BaseVisitor) VisitTryExpr(*TryExpr)           {}

func (BaseVisitor) VisitLiteralPattern(*LiteralPattern)         {}
func (BaseVisitor) VisitWildcardPattern(*WildcardPattern)       {}
func (BaseVisitor) VisitVariablePattern(*VariablePattern)       {}
func (BaseVisitor) VisitConstructorPattern(*ConstructorPattern) {}
func (BaseVisitor) VisitArrayPattern(*ArrayPattern)             {}
func (BaseVisitor) VisitOrPattern(*OrPattern)                   {}

func (BaseVisitor) VisitNamedTypeRef(*NamedTypeRef)                 {}
func (BaseVisitor) VisitArrayTypeRef(*ArrayTypeRef)                 {}
func (BaseVisitor) VisitFunctionTypeRef(*FunctionTypeRef)           {}
func (BaseVisitor) VisitGenericTypeRef(*GenericTypeRef)             {}
func (BaseVisitor) VisitUnionTypeRef(*UnionTypeRef)                 {}
func (BaseVisitor) VisitIntersectionTypeRef(*IntersectionTypeRef)   {}
func (BaseVisitor) VisitStructuralTypeRef(*StructuralTypeRef)       {}
