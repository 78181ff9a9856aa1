// Package action implements the four semantic-action primitives spec §4.1
// names: they are the only way the parser's node-build stack is ever
// mutated while running the grammar in internal/language.
package action

import (
	"fmt"

	"github.com/arboretic/moonc/internal/ast"
	"github.com/arboretic/moonc/internal/token"
)

// Stack is the node-build stack threaded through semantic actions as they
// execute, interleaved with grammar-symbol matching (spec §4.3 step 3).
type Stack struct {
	nodes []*ast.Node
	ids   *ast.IDAllocator
}

// NewStack creates an empty node-build stack bound to one compilation's id
// allocator.
func NewStack(ids *ast.IDAllocator) *Stack {
	return &Stack{ids: ids}
}

func (s *Stack) push(n *ast.Node) { s.nodes = append(s.nodes, n) }

func (s *Stack) pop() (*ast.Node, bool) {
	if len(s.nodes) == 0 {
		return nil, false
	}
	n := s.nodes[len(s.nodes)-1]
	s.nodes = s.nodes[:len(s.nodes)-1]
	return n, true
}

// Result returns the stack's sole remaining node once parsing succeeds
// (spec §3 invariant: "the stack contains exactly one node").
func (s *Stack) Result() (*ast.Node, bool) {
	if len(s.nodes) != 1 {
		return nil, false
	}
	return s.nodes[0], true
}

// Len reports the current stack depth (used by tests and debugging).
func (s *Stack) Len() int { return len(s.nodes) }

// LastMatched is the terminal most recently matched by the parser, together
// with the token consumed for it; the parser records only terminal matches,
// so NonTerm is never filled in by it. Actions receive this
// pair the way spec §4.1 describes ("last-matched-symbol, last-matched-
// token").
type LastMatched struct {
	IsTerminal bool
	Terminal   token.Class
	NonTerm    string
	Token      token.Token
}

// Action is a callable that mutates the node-build stack. Implementations
// never inspect or modify the grammar stack — only the four constructors
// below exist, matching spec §4.1's "four actions suffice" claim.
type Action func(stack *Stack, last LastMatched)

// CreateLeaf requires the last matched grammar symbol to be a terminal;
// pushes a new Leaf node carrying its token (classification, lexeme,
// literal value). A non-terminal last symbol means the compiler itself is
// ill-formed (spec §4.1): that is an internal panic, not a user error.
func CreateLeaf(ids *ast.IDAllocator) Action {
	return func(stack *Stack, last LastMatched) {
		if !last.IsTerminal {
			panic(fmt.Sprintf("create_leaf invoked with non-terminal last symbol %q", last.NonTerm))
		}
		stack.push(ids.NewLeaf(last.Token))
	}
}

// CreateMarker pushes a transient Marker node.
func CreateMarker(ids *ast.IDAllocator) Action {
	return func(stack *Stack, _ LastMatched) {
		stack.push(ids.NewMarker())
	}
}

// CreateSubtreeFromN pops the top n nodes and wraps them, in original stack
// order, as the children of a new Tree(kind) node.
func CreateSubtreeFromN(ids *ast.IDAllocator, kind ast.TreeKind, n int) Action {
	return func(stack *Stack, last LastMatched) {
		children := make([]*ast.Node, n)
		for i := n - 1; i >= 0; i-- {
			node, ok := stack.pop()
			if !ok {
				panic(fmt.Sprintf("stack underflow building %s from %d nodes", kind, n))
			}
			children[i] = node
		}
		stack.push(ids.NewTree(kind, last.Token, children))
	}
}

// CreateSubtreeUntilMarker pops nodes until (and including) a Marker,
// collecting them in original stack order as children of a new Tree(kind)
// node. Absence of a marker is a fatal internal error (spec §4.1).
func CreateSubtreeUntilMarker(ids *ast.IDAllocator, kind ast.TreeKind) Action {
	return func(stack *Stack, last LastMatched) {
		var children []*ast.Node
		for {
			node, ok := stack.pop()
			if !ok {
				panic(fmt.Sprintf("no marker found while building %s", kind))
			}
			if node.Kind == ast.VMarker {
				break
			}
			children = append([]*ast.Node{node}, children...)
		}
		stack.push(ids.NewTree(kind, last.Token, children))
	}
}
