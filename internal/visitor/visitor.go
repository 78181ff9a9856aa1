// Package visitor implements the double-dispatch tree-walking framework
// spec §4.4 describes: one method per tree-kind plus a leaf method, with a
// default traversal that always recurses into children and accumulates
// diagnostics from the whole subtree regardless of what any single hook
// returns.
//
// Go has no algebraic match arms, so every hook shares one signature
// (the node itself) rather than a bespoke typed-children signature per
// kind; node.Child(i) is the ordered, positional accessor spec §4.4 calls
// "already-extracted children" — the exact child order and arity for each
// kind is documented on the corresponding production in internal/language.
package visitor

import (
	"fmt"

	"github.com/arboretic/moonc/internal/ast"
	"github.com/arboretic/moonc/internal/diag"
)

// Hooks is implemented by each pass (resolver, type checker, code
// generator) that wants kind-specific behavior. Embed DefaultHooks to get
// no-op defaults for the kinds a pass doesn't care about.
type Hooks interface {
	Leaf(n *ast.Node) []diag.Diagnostic

	Program(n *ast.Node) []diag.Diagnostic
	Class(n *ast.Node) []diag.Diagnostic
	InheritsList(n *ast.Node) []diag.Diagnostic
	ClassMembers(n *ast.Node) []diag.Diagnostic
	Attribute(n *ast.Node) []diag.Diagnostic
	ConstructorFunc(n *ast.Node) []diag.Diagnostic
	MemberFunc(n *ast.Node) []diag.Diagnostic
	Function(n *ast.Node) []diag.Diagnostic
	FunctionHead(n *ast.Node) []diag.Diagnostic
	FunctionBody(n *ast.Node) []diag.Diagnostic
	ParameterList(n *ast.Node) []diag.Diagnostic
	Parameter(n *ast.Node) []diag.Diagnostic
	IndiceList(n *ast.Node) []diag.Diagnostic
	ArgumentList(n *ast.Node) []diag.Diagnostic
	LocalVarDecl(n *ast.Node) []diag.Diagnostic
	Variable(n *ast.Node) []diag.Diagnostic
	IndexedVar(n *ast.Node) []diag.Diagnostic
	NestedVar(n *ast.Node) []diag.Diagnostic
	Scope(n *ast.Node) []diag.Diagnostic
	Factor(n *ast.Node) []diag.Diagnostic
	Term(n *ast.Node) []diag.Diagnostic
	ArithExpr(n *ast.Node) []diag.Diagnostic
	RightRecArithExpr(n *ast.Node) []diag.Diagnostic
	RightRecTerm(n *ast.Node) []diag.Diagnostic
	RelExpr(n *ast.Node) []diag.Diagnostic
	Expr(n *ast.Node) []diag.Diagnostic
	Assignment(n *ast.Node) []diag.Diagnostic
	FunctionCall(n *ast.Node) []diag.Diagnostic
	If(n *ast.Node) []diag.Diagnostic
	IfBlock(n *ast.Node) []diag.Diagnostic
	ElseBlock(n *ast.Node) []diag.Diagnostic
	While(n *ast.Node) []diag.Diagnostic
	WhileBlock(n *ast.Node) []diag.Diagnostic
	Read(n *ast.Node) []diag.Diagnostic
	Write(n *ast.Node) []diag.Diagnostic
	Return(n *ast.Node) []diag.Diagnostic
}

// DefaultHooks implements every Hooks method as a no-op returning no
// diagnostics. Passes embed this and override only the kinds they annotate
// or validate.
type DefaultHooks struct{}

func (DefaultHooks) Leaf(*ast.Node) []diag.Diagnostic              { return nil }
func (DefaultHooks) Program(*ast.Node) []diag.Diagnostic           { return nil }
func (DefaultHooks) Class(*ast.Node) []diag.Diagnostic             { return nil }
func (DefaultHooks) InheritsList(*ast.Node) []diag.Diagnostic      { return nil }
func (DefaultHooks) ClassMembers(*ast.Node) []diag.Diagnostic      { return nil }
func (DefaultHooks) Attribute(*ast.Node) []diag.Diagnostic         { return nil }
func (DefaultHooks) ConstructorFunc(*ast.Node) []diag.Diagnostic   { return nil }
func (DefaultHooks) MemberFunc(*ast.Node) []diag.Diagnostic        { return nil }
func (DefaultHooks) Function(*ast.Node) []diag.Diagnostic          { return nil }
func (DefaultHooks) FunctionHead(*ast.Node) []diag.Diagnostic      { return nil }
func (DefaultHooks) FunctionBody(*ast.Node) []diag.Diagnostic      { return nil }
func (DefaultHooks) ParameterList(*ast.Node) []diag.Diagnostic     { return nil }
func (DefaultHooks) Parameter(*ast.Node) []diag.Diagnostic         { return nil }
func (DefaultHooks) IndiceList(*ast.Node) []diag.Diagnostic        { return nil }
func (DefaultHooks) ArgumentList(*ast.Node) []diag.Diagnostic      { return nil }
func (DefaultHooks) LocalVarDecl(*ast.Node) []diag.Diagnostic      { return nil }
func (DefaultHooks) Variable(*ast.Node) []diag.Diagnostic          { return nil }
func (DefaultHooks) IndexedVar(*ast.Node) []diag.Diagnostic        { return nil }
func (DefaultHooks) NestedVar(*ast.Node) []diag.Diagnostic         { return nil }
func (DefaultHooks) Scope(*ast.Node) []diag.Diagnostic             { return nil }
func (DefaultHooks) Factor(*ast.Node) []diag.Diagnostic            { return nil }
func (DefaultHooks) Term(*ast.Node) []diag.Diagnostic              { return nil }
func (DefaultHooks) ArithExpr(*ast.Node) []diag.Diagnostic         { return nil }
func (DefaultHooks) RightRecArithExpr(*ast.Node) []diag.Diagnostic { return nil }
func (DefaultHooks) RightRecTerm(*ast.Node) []diag.Diagnostic      { return nil }
func (DefaultHooks) RelExpr(*ast.Node) []diag.Diagnostic           { return nil }
func (DefaultHooks) Expr(*ast.Node) []diag.Diagnostic              { return nil }
func (DefaultHooks) Assignment(*ast.Node) []diag.Diagnostic        { return nil }
func (DefaultHooks) FunctionCall(*ast.Node) []diag.Diagnostic      { return nil }
func (DefaultHooks) If(*ast.Node) []diag.Diagnostic                { return nil }
func (DefaultHooks) IfBlock(*ast.Node) []diag.Diagnostic           { return nil }
func (DefaultHooks) ElseBlock(*ast.Node) []diag.Diagnostic         { return nil }
func (DefaultHooks) While(*ast.Node) []diag.Diagnostic             { return nil }
func (DefaultHooks) WhileBlock(*ast.Node) []diag.Diagnostic        { return nil }
func (DefaultHooks) Read(*ast.Node) []diag.Diagnostic              { return nil }
func (DefaultHooks) Write(*ast.Node) []diag.Diagnostic             { return nil }
func (DefaultHooks) Return(*ast.Node) []diag.Diagnostic            { return nil }

// Walk dispatches on n's value variant, calls the matching hook, then
// always recurses into n's children so errors accumulate across the whole
// subtree (spec §4.4 steps 1-3). A nil node is a no-op.
func Walk(h Hooks, n *ast.Node) []diag.Diagnostic {
	if n == nil {
		return nil
	}

	var out []diag.Diagnostic
	switch n.Kind {
	case ast.VLeaf:
		out = append(out, h.Leaf(n)...)
	case ast.VTree:
		out = append(out, dispatch(h, n)...)
	case ast.VMarker:
		panic("visitor: Marker node escaped into the final AST — grammar invariant violation")
	}

	for _, c := range n.Children {
		out = append(out, Walk(h, c)...)
	}
	return out
}

func dispatch(h Hooks, n *ast.Node) []diag.Diagnostic {
	switch n.Tree {
	case ast.Program:
		return h.Program(n)
	case ast.Class:
		return h.Class(n)
	case ast.InheritsList:
		return h.InheritsList(n)
	case ast.ClassMembers:
		return h.ClassMembers(n)
	case ast.Attribute:
		return h.Attribute(n)
	case ast.ConstructorFunc:
		return h.ConstructorFunc(n)
	case ast.MemberFunc:
		return h.MemberFunc(n)
	case ast.Function:
		return h.Function(n)
	case ast.FunctionHead:
		return h.FunctionHead(n)
	case ast.FunctionBody:
		return h.FunctionBody(n)
	case ast.ParameterList:
		return h.ParameterList(n)
	case ast.Parameter:
		return h.Parameter(n)
	case ast.IndiceList:
		return h.IndiceList(n)
	case ast.ArgumentList:
		return h.ArgumentList(n)
	case ast.LocalVarDecl:
		return h.LocalVarDecl(n)
	case ast.Variable:
		return h.Variable(n)
	case ast.IndexedVar:
		return h.IndexedVar(n)
	case ast.NestedVar:
		return h.NestedVar(n)
	case ast.Scope:
		return h.Scope(n)
	case ast.Factor:
		return h.Factor(n)
	case ast.Term:
		return h.Term(n)
	case ast.ArithExpr:
		return h.ArithExpr(n)
	case ast.RightRecArithExpr:
		return h.RightRecArithExpr(n)
	case ast.RightRecTerm:
		return h.RightRecTerm(n)
	case ast.RelExpr:
		return h.RelExpr(n)
	case ast.Expr:
		return h.Expr(n)
	case ast.Assignment:
		return h.Assignment(n)
	case ast.FunctionCall:
		return h.FunctionCall(n)
	case ast.If:
		return h.If(n)
	case ast.IfBlock:
		return h.IfBlock(n)
	case ast.ElseBlock:
		return h.ElseBlock(n)
	case ast.While:
		return h.While(n)
	case ast.WhileBlock:
		return h.WhileBlock(n)
	case ast.Read:
		return h.Read(n)
	case ast.Write:
		return h.Write(n)
	case ast.Return:
		return h.Return(n)
	default:
		panic(fmt.Sprintf("visitor: unhandled tree kind %s", n.Tree))
	}
}
