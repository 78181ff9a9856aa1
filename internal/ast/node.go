// Package ast defines the polymorphic AST node carrying value, originating
// token, and the per-pass annotations later passes attach (spec §3).
package ast

import "github.com/arboretic/moonc/internal/token"

// Variant discriminates a Node's value (spec §3: Leaf/Tree/Marker).
type Variant int

const (
	VLeaf Variant = iota
	VTree
	VMarker
)

// Node is the AST's single node type. Parent is a non-owning back-reference
// used only for scope-chain lookups during the resolver/type-checker/codegen
// passes (spec §9: "parent pointers used by symbol lookup... never treat the
// parent link as ownership"). Children are owned, ordered.
type Node struct {
	ID     int
	Kind   Variant
	Tree   TreeKind // valid when Kind == VTree
	Token  token.Token
	Children []*Node
	Parent   *Node

	// Per-pass annotations. Each is written at most once by its owning pass
	// and read-only afterward (spec §3 invariants, §9 "Shared annotations").
	Symbols *SymbolTable
	Label   *string
	Code    *string
	VType   *VarType
}

// IDAllocator is a per-compilation monotonic node-id counter (spec §5: "node
// id allocation... must be unique across one compilation but need not
// persist between runs... scope it to a compilation context object").
type IDAllocator struct {
	next int
}

// NewIDAllocator starts a fresh counter at 1 (0 is reserved for markers).
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: 1}
}

func (a *IDAllocator) next_() int {
	id := a.next
	a.next++
	return id
}

// NewLeaf creates a Leaf node from a matched terminal token.
func (a *IDAllocator) NewLeaf(tok token.Token) *Node {
	return &Node{ID: a.next_(), Kind: VLeaf, Token: tok}
}

// NewMarker creates a transient Marker node (id 0, per spec §3 invariant).
func (a *IDAllocator) NewMarker() *Node {
	return &Node{ID: 0, Kind: VMarker}
}

// NewTree creates a Tree node of the given kind with the given children, in
// order, wiring parent back-references.
func (a *IDAllocator) NewTree(kind TreeKind, tok token.Token, children []*Node) *Node {
	n := &Node{ID: a.next_(), Kind: VTree, Tree: kind, Token: tok, Children: children}
	for _, c := range children {
		c.Parent = n
	}
	return n
}

// Child returns children[i] or nil if out of range — callers treat a nil
// result at a fixed grammar position as a fatal internal error (spec §4.4).
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// SetSymbols, SetLabel, SetCode, SetVType implement the "written once"
// annotation discipline; they are safe to call repeatedly with the same
// stored value (idempotent re-computation inside recursive helpers) but the
// passes never overwrite an annotation set by a different pass.
func (n *Node) SetSymbols(t *SymbolTable) { n.Symbols = t }
func (n *Node) SetLabel(l string)          { n.Label = &l }
func (n *Node) SetCode(c string)           { n.Code = &c }
func (n *Node) SetVType(v VarType)         { n.VType = &v }

// LabelOr returns the label or "" if unset.
func (n *Node) LabelOr() string {
	if n.Label == nil {
		return ""
	}
	return *n.Label
}

// CodeOr returns the accumulated code or "" if unset.
func (n *Node) CodeOr() string {
	if n.Code == nil {
		return ""
	}
	return *n.Code
}

// EnclosingTable walks Parent links (starting at the node itself) and
// returns the nearest ancestor (inclusive) carrying a non-nil symbol table.
func (n *Node) EnclosingTable() *SymbolTable {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Symbols != nil {
			return cur.Symbols
		}
	}
	return nil
}

// EnclosingFunction walks Parent links and returns the nearest ancestor Tree
// node of kind Function, per codegen's get_current_function helper.
func (n *Node) EnclosingFunction() *Node {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if cur.Kind == VTree && cur.Tree == Function {
			return cur
		}
	}
	return nil
}

// Lookup resolves id by walking the parent chain's symbol tables, innermost
// first (spec §4.6 Variable rule).
func (n *Node) Lookup(id string) (*SymbolData, *SymbolTable) {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Symbols == nil {
			continue
		}
		if sd, ok := cur.Symbols.Get(id); ok {
			return sd, cur.Symbols
		}
	}
	return nil, nil
}
