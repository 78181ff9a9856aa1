// Package typecheck implements the type checker pass (spec §4.6). It walks
// every function body, annotating each expression node with its VarType and
// reporting mismatches, unknown identifiers, and unknown calls as
// diagnostics. It assumes the resolver pass has already run: function/class
// symbol tables must already be attached to the tree.
package typecheck

import (
	"fmt"
	"strings"

	"github.com/arboretic/moonc/internal/ast"
	"github.com/arboretic/moonc/internal/diag"
	"github.com/arboretic/moonc/internal/token"
	"github.com/arboretic/moonc/internal/visitor"
)

// Checker carries the state shared across one program's type check: the
// program's global symbol table, populated by the resolver pass, for
// function-call and class-member lookups.
type Checker struct {
	global *ast.SymbolTable
	diags  *diag.Bag
}

// Check type-checks every function in root and returns the accumulated
// diagnostics. root.Symbols must already be set (resolver.Resolve must have
// run first).
func Check(root *ast.Node) *diag.Bag {
	c := &Checker{global: root.Symbols, diags: &diag.Bag{}}
	visitor.Walk(funcHooks{c: c}, root)
	return c.diags
}

type funcHooks struct {
	visitor.DefaultHooks
	c *Checker
}

func (h funcHooks) Function(n *ast.Node) []diag.Diagnostic {
	h.c.checkFunction(n)
	return nil
}

func (c *Checker) checkFunction(n *ast.Node) {
	body := n.Child(1)
	c.checkStatements(body)
}

func (c *Checker) checkStatements(list *ast.Node) {
	for _, s := range list.Children {
		c.checkStatement(s)
	}
}

func (c *Checker) checkStatement(n *ast.Node) {
	switch n.Tree {
	case ast.LocalVarDecl:
		// Already inserted into the enclosing function's table by the
		// resolver pass; nothing left to annotate here.
	case ast.Assignment:
		c.typeOfVariable(n.Child(0))
		c.typeOfExpr(n.Child(1))
	case ast.FunctionCall:
		c.typeOfFunctionCall(n)
	case ast.If:
		c.typeOfExpr(n.Child(0))
		c.checkStatements(n.Child(1))
		c.checkStatements(n.Child(2))
	case ast.While:
		c.typeOfExpr(n.Child(0))
		c.checkStatements(n.Child(1))
	case ast.Read:
		c.typeOfVariable(n.Child(0))
	case ast.Write:
		c.typeOfExpr(n.Child(0))
	case ast.Return:
		c.checkReturn(n)
	default:
		panic(fmt.Sprintf("typecheck: unexpected statement kind %s", n.Tree))
	}
}

func (c *Checker) checkReturn(n *ast.Node) {
	t := c.typeOfExpr(n.Child(0))
	fn := n.EnclosingFunction()
	if fn == nil || fn.Symbols == nil {
		return
	}
	retSD, ok := fn.Symbols.Get(ast.KeyReturn)
	if !ok {
		return
	}
	if !sameType(t, retSD.VarType) {
		c.diags.Error(n.Child(0).Token, "return expression type %q does not match the function's declared return type %q", t.String(), retSD.VarType.String())
	}
}

func sameType(a, b ast.VarType) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == ast.TClass {
		return a.ClassName == b.ClassName
	}
	return true
}

// typeOfExpr dispatches on the node's tree kind and returns its inferred
// type, annotating the node with VType as it goes. It is called both for
// genuine Expr wrapper nodes and directly for the ArithExpr/Term/Factor/
// FunctionCall/Variable nodes an Expr's single child can be, since the
// grammar's Factor production sometimes yields a FunctionCall or Variable
// tree directly instead of wrapping it in a Factor node.
func (c *Checker) typeOfExpr(n *ast.Node) ast.VarType {
	switch n.Tree {
	case ast.Expr:
		t := c.typeOfExpr(n.Child(0))
		n.SetVType(t)
		return t
	case ast.RelExpr:
		return c.typeOfRelExpr(n)
	case ast.ArithExpr:
		base := c.typeOfExpr(n.Child(0))
		t := c.foldRightRec(n.Child(1), base)
		n.SetVType(t)
		return t
	case ast.Term:
		base := c.typeOfExpr(n.Child(0))
		t := c.foldRightRec(n.Child(1), base)
		n.SetVType(t)
		return t
	case ast.Factor:
		return c.typeOfFactor(n)
	case ast.FunctionCall:
		return c.typeOfFunctionCall(n)
	case ast.Variable:
		return c.typeOfVariable(n)
	default:
		panic(fmt.Sprintf("typecheck: unexpected expression node kind %s", n.Tree))
	}
}

func (c *Checker) typeOfRelExpr(n *ast.Node) ast.VarType {
	opLeaf := n.Child(1)
	left := c.typeOfExpr(n.Child(0))
	right := c.typeOfExpr(n.Child(2))
	if !left.Scalar() || !right.Scalar() || !left.SameBaseVariant(right) {
		c.diags.Error(opLeaf.Token, "mismatched operand types in relational expression (%q vs %q)", left.String(), right.String())
	}
	t := ast.Integer(nil)
	n.SetVType(t)
	return t
}

// foldRightRec walks a RightRecTerm/RightRecArithExpr right-recursive chain
// left to right, validating each operand against the running type and
// annotating every tail node along the way with that type. It returns the
// chain's type, which per spec §4.6 is always the left operand's type — the
// fold only needs to validate that every later operand agrees with it.
func (c *Checker) foldRightRec(tail *ast.Node, acc ast.VarType) ast.VarType {
	for len(tail.Children) != 0 {
		opLeaf := tail.Child(0)
		operand := c.typeOfExpr(tail.Child(1))
		if !acc.Scalar() || !operand.Scalar() || !acc.SameBaseVariant(operand) {
			c.diags.Error(opLeaf.Token, "mismatched operand types for %q (%q vs %q)", opLeaf.Token.Lexeme, acc.String(), operand.String())
		}
		tail.SetVType(acc)
		tail = tail.Child(2)
	}
	tail.SetVType(acc)
	return acc
}

func (c *Checker) typeOfFactor(n *ast.Node) ast.VarType {
	if len(n.Children) == 1 {
		child := n.Child(0)
		if child.Kind == ast.VLeaf {
			var t ast.VarType
			switch child.Token.Class {
			case token.IntNum:
				t = ast.Integer(nil)
			case token.FloatNum:
				t = ast.Float(nil)
			default:
				panic(fmt.Sprintf("typecheck: unexpected literal class %s", child.Token.Class))
			}
			n.SetVType(t)
			return t
		}
		// Parenthesized sub-expression: pass through.
		t := c.typeOfExpr(child)
		n.SetVType(t)
		return t
	}

	// Unary not/-/+.
	opLeaf := n.Child(0)
	operand := c.typeOfExpr(n.Child(1))
	if (opLeaf.Token.Class == token.Minus || opLeaf.Token.Class == token.Plus) && !operand.Scalar() {
		c.diags.Error(opLeaf.Token, "unary %q requires a scalar operand, got %q", opLeaf.Token.Lexeme, operand.String())
	}
	n.SetVType(operand)
	return operand
}

func (c *Checker) typeOfFunctionCall(n *ast.Node) ast.VarType {
	idLeaf := n.Child(0)
	argList := n.Child(1)

	argTypes := make([]string, 0, len(argList.Children))
	for _, a := range argList.Children {
		t := c.typeOfExpr(a)
		argTypes = append(argTypes, t.String())
	}
	sig := fmt.Sprintf("%s(%s)", idLeaf.Token.Lexeme, strings.Join(argTypes, ", "))

	sd, ok := c.global.Get(sig)
	if !ok {
		c.diags.Error(idLeaf.Token, "call to undeclared function %q", sig)
		t := ast.Void()
		n.SetVType(t)
		return t
	}

	var ret ast.VarType
	if sd.Nested != nil {
		if retSD, ok := sd.Nested.Get(ast.KeyReturn); ok {
			ret = retSD.VarType
		}
	}
	n.SetVType(ret)
	return ret
}

func (c *Checker) typeOfVariable(n *ast.Node) ast.VarType {
	indexedVar := n.Child(0)
	idLeaf := indexedVar.Child(0)
	indices := indexedVar.Child(1)

	sd, _ := n.Lookup(idLeaf.Token.Lexeme)
	if sd == nil {
		c.diags.Error(idLeaf.Token, "undeclared identifier %q", idLeaf.Token.Lexeme)
		t := ast.Void()
		n.SetVType(t)
		return t
	}

	t := c.applyIndices(idLeaf.Token, sd.VarType, indices)

	for _, nested := range n.Children[1:] {
		t = c.resolveNestedVar(nested, t)
	}
	n.SetVType(t)
	return t
}

func (c *Checker) resolveNestedVar(n *ast.Node, base ast.VarType) ast.VarType {
	idLeaf := n.Child(0)
	indices := n.Child(1)

	if base.Kind != ast.TClass {
		c.diags.Error(idLeaf.Token, "cannot access member %q of a non-class value", idLeaf.Token.Lexeme)
		t := ast.Void()
		n.SetVType(t)
		return t
	}

	classSD, ok := c.global.Get(base.ClassName)
	if !ok || classSD.Nested == nil {
		c.diags.Error(idLeaf.Token, "unknown class %q", base.ClassName)
		t := ast.Void()
		n.SetVType(t)
		return t
	}

	memberSD, ok := classSD.Nested.Get(idLeaf.Token.Lexeme)
	if !ok {
		c.diags.Error(idLeaf.Token, "class %q has no member %q", base.ClassName, idLeaf.Token.Lexeme)
		t := ast.Void()
		n.SetVType(t)
		return t
	}

	t := c.applyIndices(idLeaf.Token, memberSD.VarType, indices)
	n.SetVType(t)
	return t
}

// applyIndices checks each index expression is a scalar integer and peels
// rank leading dimensions off base (spec §4.6 Variable rule).
func (c *Checker) applyIndices(tok token.Token, base ast.VarType, indices *ast.Node) ast.VarType {
	rank := len(indices.Children)
	for _, idxExpr := range indices.Children {
		it := c.typeOfExpr(idxExpr)
		if it.Kind != ast.TInteger || !it.Scalar() {
			c.diags.Error(tok, "array index must be a scalar integer expression, got %q", it.String())
		}
	}
	indices.SetVType(ast.IndiceListType(rank))

	if rank == 0 {
		return base
	}
	if base.Kind != ast.TInteger && base.Kind != ast.TFloat {
		c.diags.Error(tok, "cannot index non-array identifier %q", tok.Lexeme)
		return base
	}
	if rank > len(base.Dims) {
		c.diags.Error(tok, "index rank %d exceeds the declared dimensions of %q", rank, tok.Lexeme)
		return base
	}
	return base.Peel(rank)
}
