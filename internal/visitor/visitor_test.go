package visitor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arboretic/moonc/internal/ast"
	"github.com/arboretic/moonc/internal/diag"
	"github.com/arboretic/moonc/internal/token"
	"github.com/arboretic/moonc/internal/visitor"
)

// countingHooks records which tree kinds and how many leaves were visited,
// proving Walk dispatches every node exactly once and always recurses.
type countingHooks struct {
	visitor.DefaultHooks
	leaves    int
	functions int
}

func (c *countingHooks) Leaf(*ast.Node) []diag.Diagnostic {
	c.leaves++
	return nil
}

func (c *countingHooks) Function(*ast.Node) []diag.Diagnostic {
	c.functions++
	return nil
}

func TestWalkVisitsEveryNodeAndRecurses(t *testing.T) {
	ids := ast.NewIDAllocator()
	tok := func(lex string) token.Token { return token.Token{Class: token.Id, Lexeme: lex} }

	name := ids.NewLeaf(tok("main"))
	params := ids.NewTree(ast.ParameterList, token.Token{}, nil)
	retType := ids.NewLeaf(token.Token{Class: token.KwVoid, Lexeme: "void"})
	head := ids.NewTree(ast.FunctionHead, token.Token{}, []*ast.Node{name, params, retType})
	body := ids.NewTree(ast.FunctionBody, token.Token{}, nil)
	fn := ids.NewTree(ast.Function, token.Token{}, []*ast.Node{head, body})
	program := ids.NewTree(ast.Program, token.Token{}, []*ast.Node{fn})

	h := &countingHooks{}
	errs := visitor.Walk(h, program)

	assert.Empty(t, errs)
	assert.Equal(t, 2, h.leaves, "the FunctionID and return-type leaves must both be visited")
	assert.Equal(t, 1, h.functions)
}

// errorAccumulatingHooks emits one diagnostic per Leaf visited and proves
// Walk keeps descending and keeps collecting even after a hook reports an
// error (spec §4.4: "recurse regardless of hook outcome").
type errorAccumulatingHooks struct {
	visitor.DefaultHooks
}

func (errorAccumulatingHooks) Leaf(n *ast.Node) []diag.Diagnostic {
	return []diag.Diagnostic{{Severity: diag.SevError, Message: "boom", Token: n.Token}}
}

func TestWalkAccumulatesErrorsAcrossSiblings(t *testing.T) {
	ids := ast.NewIDAllocator()
	a := ids.NewLeaf(token.Token{Class: token.Id, Lexeme: "a"})
	b := ids.NewLeaf(token.Token{Class: token.Id, Lexeme: "b"})
	tree := ids.NewTree(ast.ParameterList, token.Token{}, []*ast.Node{a, b})

	errs := visitor.Walk(errorAccumulatingHooks{}, tree)
	require.Len(t, errs, 2)
}

func TestWalkNilIsNoOp(t *testing.T) {
	errs := visitor.Walk(errorAccumulatingHooks{}, nil)
	assert.Empty(t, errs)
}
