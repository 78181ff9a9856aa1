package ast

// TreeKind enumerates the structural node kinds spec §3 lists for the
// Tree(tree-kind) variant of a node's value. RightRecArithExpr and
// RightRecTerm are real nodes that stay in the tree handed to later passes:
// each ArithExpr/Term has exactly two children, the left operand and a
// RightRecArithExpr/RightRecTerm tail node (either empty, for "no more
// operators", or {op-leaf, next-operand, nested-tail}). internal/typecheck
// and internal/codegen walk and left-fold this chain themselves to get the
// binary operand/operator/operand shape spec §4.6/§4.7 describe; the tail
// nodes are still visited and annotated like any other node along the way.
type TreeKind int

const (
	Program TreeKind = iota
	Class
	InheritsList
	ClassMembers
	Attribute
	ConstructorFunc
	MemberFunc
	Function
	FunctionHead
	FunctionBody
	ParameterList
	Parameter
	IndiceList
	ArgumentList
	LocalVarDecl
	Variable
	IndexedVar
	NestedVar
	Scope
	Factor
	Term
	ArithExpr
	RightRecArithExpr
	RightRecTerm
	RelExpr
	Expr
	Assignment
	FunctionCall
	If
	IfBlock
	ElseBlock
	While
	WhileBlock
	Read
	Write
	Return
)

var treeKindNames = [...]string{
	"Program", "Class", "InheritsList", "ClassMembers", "Attribute",
	"ConstructorFunc", "MemberFunc", "Function", "FunctionHead", "FunctionBody",
	"ParameterList", "Parameter", "IndiceList", "ArgumentList", "LocalVarDecl",
	"Variable", "IndexedVar", "NestedVar", "Scope", "Factor", "Term",
	"ArithExpr", "RightRecArithExpr", "RightRecTerm", "RelExpr", "Expr",
	"Assignment", "FunctionCall", "If", "IfBlock", "ElseBlock", "While",
	"WhileBlock", "Read", "Write", "Return",
}

func (k TreeKind) String() string {
	if int(k) >= 0 && int(k) < len(treeKindNames) {
		return treeKindNames[k]
	}
	return "TreeKind(?)"
}
