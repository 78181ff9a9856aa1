// Package resolver implements the symbol resolver pass (spec §4.5): it
// walks the AST twice — once to register every class's member table, once
// to register every function's parameter/local frame and its entry in the
// program-wide function table — and reports the main() requirement as a
// distinguished pass-level failure rather than a located diagnostic.
package resolver

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/arboretic/moonc/internal/ast"
	"github.com/arboretic/moonc/internal/diag"
	"github.com/arboretic/moonc/internal/token"
	"github.com/arboretic/moonc/internal/visitor"
)

// ErrNoMainFunction is returned by Resolve when the program declares no
// main() function (spec §4.5: "semantic pass fails with NoMainFunction").
var ErrNoMainFunction = errors.New("no main() function declared")

const (
	baseOffset  = 4
	intSize     = 4
	floatSize   = 4
	retAddrSize = 4
)

// Resolver carries the state shared across both walks: the stack-frame
// offset counter (reset to baseOffset at the start of every resolveFunction
// call, spec §4.5 step 1 / §8.6: each function/class table extends its own
// frame downward from 4 — not a single whole-program counter), the
// program's global function/class table, and a side index of class member
// tables keyed by class name so a scoped function definition
// (Class::method) can find its class's table regardless of declaration
// order.
type Resolver struct {
	offset       int
	labelCounter int
	global       *ast.SymbolTable
	classTables  map[string]*ast.SymbolTable
	funcNames    map[string]bool
	diags        *diag.Bag
}

// Resolve runs the resolver pass over a parsed Program root. It attaches the
// resolved global table to root and returns every accumulated diagnostic
// plus ErrNoMainFunction when no "main()" entry exists in the global table.
func Resolve(root *ast.Node) (*diag.Bag, error) {
	r := &Resolver{
		offset:      baseOffset,
		global:      ast.NewSymbolTable(),
		classTables: map[string]*ast.SymbolTable{},
		funcNames:   map[string]bool{},
		diags:       &diag.Bag{},
	}

	visitor.Walk(classPassHooks{r: r}, root)
	visitor.Walk(funcPassHooks{r: r}, root)

	root.SetSymbols(r.global)

	if _, ok := r.global.Get("main()"); !ok {
		return r.diags, ErrNoMainFunction
	}
	return r.diags, nil
}

// classPassHooks registers every class's member table before any function
// is resolved, so a scoped function definition can always find its class's
// table no matter which comes first in source order.
type classPassHooks struct {
	visitor.DefaultHooks
	r *Resolver
}

func (h classPassHooks) Class(n *ast.Node) []diag.Diagnostic {
	h.r.resolveClass(n)
	return nil
}

// funcPassHooks resolves every Function node's parameter/local frame and
// registers it in the program's global function table.
type funcPassHooks struct {
	visitor.DefaultHooks
	r *Resolver
}

func (h funcPassHooks) Function(n *ast.Node) []diag.Diagnostic {
	h.r.resolveFunction(n)
	return nil
}

// resolveClass builds the member table for one Class node (spec §3: Class
// table entries keyed by attribute/constructor/method name or signature,
// plus the reserved "_inherits" entry). Children per internal/language's
// Class production: [nameLeaf, InheritsList, ClassMembers].
func (r *Resolver) resolveClass(n *ast.Node) {
	nameLeaf := n.Child(0)
	inheritsList := n.Child(1)
	members := n.Child(2)
	className := nameLeaf.Token.Lexeme

	table := ast.NewSymbolTable()

	inheritNames := make([]string, 0, len(inheritsList.Children))
	for _, c := range inheritsList.Children {
		inheritNames = append(inheritNames, c.Token.Lexeme)
	}
	table.Set(ast.KeyInherits, ast.NewSymbolData(0, 0, ast.Inherits(inheritNames)))

	attrOffset := 0
	memberNames := map[string]bool{}
	for _, member := range members.Children {
		switch member.Tree {
		case ast.Attribute:
			r.resolveAttribute(member, table, &attrOffset)
		case ast.ConstructorFunc:
			r.resolveConstructorFunc(member, table, memberNames)
		case ast.MemberFunc:
			r.resolveMemberFunc(member, table, memberNames)
		default:
			panic(fmt.Sprintf("resolver: unexpected class member kind %s", member.Tree))
		}
	}

	members.SetSymbols(table)
	r.classTables[className] = table

	sd := ast.NewSymbolDataWithTable(table.TotalSize(), 0, ast.ClassType(className), table)
	if !r.global.Insert(className, sd) {
		r.diags.Error(nameLeaf.Token, "class %q already declared", className)
	}
}

// resolveAttribute assigns an ascending, class-local offset to one instance
// field. Object layout is independent of any function's stack frame, so it
// does not share the resolver's monotonic counter; fields are laid out in
// declaration order starting at 0.
func (r *Resolver) resolveAttribute(n *ast.Node, table *ast.SymbolTable, offset *int) {
	visibility := n.Child(0).Token.Lexeme
	nameLeaf := n.Child(1)
	typeLeaf := n.Child(2)
	indices := n.Child(3)

	vt, size := r.typeAndSize(typeLeaf, indices)
	sd := ast.NewSymbolData(size, *offset, vt)
	sd.Visibility = visibility
	*offset += size

	if !table.Insert(nameLeaf.Token.Lexeme, sd) {
		r.diags.Error(nameLeaf.Token, "attribute %q already declared", nameLeaf.Token.Lexeme)
	}
}

// resolveConstructorFunc registers a constructor prototype. Constructors
// carry no identifier of their own in this grammar (ConstructorFunc's only
// children are [visibility, ParameterList]), so the class table keys them
// by their parameter signature the same way overloaded free functions are
// keyed by their full signature string.
func (r *Resolver) resolveConstructorFunc(n *ast.Node, table *ast.SymbolTable, seen map[string]bool) {
	visibility := n.Child(0).Token.Lexeme
	paramList := n.Child(1)
	sig := fmt.Sprintf("constructor(%s)", r.paramTypeSignature(paramList))

	sd := ast.NewSymbolData(0, 0, ast.FunctionType())
	sd.Visibility = visibility
	if !table.Insert(sig, sd) {
		r.diags.Error(n.Child(0).Token, "constructor %q already declared", sig)
		return
	}
	if seen["constructor"] {
		r.diags.Warning(n.Child(0).Token, "constructor overloaded with a different signature")
	}
	seen["constructor"] = true
}

// resolveMemberFunc registers a method prototype (spec §9 resolved open
// question: method bodies are defined separately via Class::method Function
// nodes; the prototype here exists only so the class table records the
// method's visibility and signature).
func (r *Resolver) resolveMemberFunc(n *ast.Node, table *ast.SymbolTable, seen map[string]bool) {
	visibility := n.Child(0).Token.Lexeme
	nameLeaf := n.Child(1)
	paramList := n.Child(2)
	returnLeaf := n.Child(3)

	paramSig := r.paramTypeSignature(paramList)
	sig := fmt.Sprintf("%s(%s)", nameLeaf.Token.Lexeme, paramSig)

	sd := ast.NewSymbolData(0, 0, ast.FunctionType())
	sd.Visibility = visibility
	if !table.Insert(sig, sd) {
		r.diags.Error(nameLeaf.Token, "method %q already declared", sig)
		return
	}
	if seen[nameLeaf.Token.Lexeme] {
		r.diags.Warning(nameLeaf.Token, "method %q overloaded with a different signature", nameLeaf.Token.Lexeme)
	}
	seen[nameLeaf.Token.Lexeme] = true
	_ = returnLeaf
}

// resolveFunction builds one Function node's stack frame (parameters, then
// every LocalVarDecl reachable from its body, including nested if/while
// blocks) and registers it in the program's global function table keyed by
// its full signature string (spec §4.5 / §8 scenario (c): "f(integer)" and
// "f(float)" coexist as distinct entries).
func (r *Resolver) resolveFunction(n *ast.Node) {
	r.offset = baseOffset

	head := n.Child(0)
	body := n.Child(1)

	idNode := head.Child(0)
	paramList := head.Child(1)
	returnLeaf := head.Child(2)

	funcName, className := funcNameAndClass(idNode)

	table := ast.NewSymbolTable()
	paramTypes := make([]string, 0, len(paramList.Children))
	for _, p := range paramList.Children {
		pname := p.Child(0).Token.Lexeme
		typeLeaf := p.Child(1)
		indices := p.Child(2)

		vt, size := r.typeAndSize(typeLeaf, indices)
		offset := -r.nextOffset(size)
		sd := ast.NewSymbolData(size, offset, vt)
		sd.Label = labelPtr(fmt.Sprintf("%d(r14)", offset))

		if !table.Insert(pname, sd) {
			r.diags.Error(p.Child(0).Token, "parameter %q already declared", pname)
		}
		paramTypes = append(paramTypes, vt.String())
	}

	qualifiedName := funcName
	if className != "" {
		qualifiedName = className + "::" + funcName
	}
	signature := fmt.Sprintf("%s(%s)", qualifiedName, strings.Join(paramTypes, ", "))

	retVT, retSize := r.returnTypeAndSize(returnLeaf)
	table.Set(ast.KeyReturn, ast.NewSymbolData(retSize, 0, retVT))
	table.Set(ast.KeyRetAddr, ast.NewSymbolData(retAddrSize, 0, ast.Void()))

	if className != "" {
		classTable, ok := r.classTables[className]
		if !ok {
			r.diags.Error(idNode.Token, "method %s::%s references undeclared class %q", className, funcName, className)
		} else {
			table.Set(ast.KeyParent, ast.NewSymbolDataWithTable(0, 0, ast.Global(), classTable))
		}
	} else {
		table.Set(ast.KeyParent, ast.NewSymbolDataWithTable(0, 0, ast.Global(), r.global))
	}

	r.resolveLocals(body, table)

	n.SetSymbols(table)

	var label string
	if signature == "main()" {
		label = "main"
	} else {
		label = fmt.Sprintf("f%d_%s", r.labelCounter, funcName)
		r.labelCounter++
	}
	n.SetLabel(label)

	sd := ast.NewSymbolDataWithTable(table.TotalSize(), 0, ast.FunctionType(), table)
	sd.Label = &label
	if !r.global.Insert(signature, sd) {
		r.diags.Error(idNode.Token, "function %q already declared with this signature", signature)
		return
	}
	if r.funcNames[funcName] {
		r.diags.Warning(idNode.Token, "function %q overloaded with a different signature", funcName)
	}
	r.funcNames[funcName] = true
}

// resolveLocals walks a statement list looking for LocalVarDecl nodes,
// descending into nested if/while blocks (spec §3: locals declared inside a
// nested block still occupy the enclosing function's single flat frame).
func (r *Resolver) resolveLocals(n *ast.Node, table *ast.SymbolTable) {
	for _, c := range n.Children {
		switch c.Tree {
		case ast.LocalVarDecl:
			r.resolveLocalVarDecl(c, table)
		case ast.If:
			r.resolveLocals(c.Child(1), table)
			r.resolveLocals(c.Child(2), table)
		case ast.While:
			r.resolveLocals(c.Child(1), table)
		}
	}
}

func (r *Resolver) resolveLocalVarDecl(n *ast.Node, table *ast.SymbolTable) {
	nameLeaf := n.Child(0)
	typeLeaf := n.Child(1)
	indices := n.Child(2)

	vt, size := r.typeAndSize(typeLeaf, indices)
	offset := -r.nextOffset(size)
	sd := ast.NewSymbolData(size, offset, vt)
	sd.Label = labelPtr(fmt.Sprintf("%d(r14)", offset))

	if !table.Insert(nameLeaf.Token.Lexeme, sd) {
		r.diags.Error(nameLeaf.Token, "local variable %q already declared", nameLeaf.Token.Lexeme)
	}
}

// nextOffset returns the current counter value then advances it by size,
// fetch-then-add semantics matching original_source's AtomicIsize counter —
// scoped to one function's frame here, so each function's first slot lands
// at exactly -baseOffset.
func (r *Resolver) nextOffset(size int) int {
	v := r.offset
	r.offset += size
	return v
}

// paramTypeSignature renders a ParameterList's types in declaration order
// ("integer, float[3]") for use as part of a function/method signature key.
func (r *Resolver) paramTypeSignature(paramList *ast.Node) string {
	parts := make([]string, 0, len(paramList.Children))
	for _, p := range paramList.Children {
		typeLeaf := p.Child(1)
		indices := p.Child(2)
		vt, _ := r.typeAndSize(typeLeaf, indices)
		parts = append(parts, vt.String())
	}
	return strings.Join(parts, ", ")
}

// typeAndSize computes a declared variable's VarType and byte size from its
// type leaf and DeclIndiceList/IndiceList node. Class-typed fields get size
// 0 (array dimensions on a class-typed declaration are dropped, not reported);
// struct layout for class-typed storage is out of scope for this pass.
func (r *Resolver) typeAndSize(typeLeaf *ast.Node, indices *ast.Node) (ast.VarType, int) {
	dims := intDims(indices)
	mult := dimProduct(dims)

	switch typeLeaf.Token.Class {
	case token.KwInteger:
		return ast.Integer(dims), intSize * mult
	case token.KwFloat:
		return ast.Float(dims), floatSize * mult
	default:
		return ast.ClassType(typeLeaf.Token.Lexeme), 0
	}
}

func (r *Resolver) returnTypeAndSize(leaf *ast.Node) (ast.VarType, int) {
	switch leaf.Token.Class {
	case token.KwVoid:
		return ast.Void(), 0
	case token.KwInteger:
		return ast.Integer(nil), intSize
	case token.KwFloat:
		return ast.Float(nil), floatSize
	default:
		return ast.ClassType(leaf.Token.Lexeme), 0
	}
}

func intDims(indices *ast.Node) []int {
	if indices == nil || len(indices.Children) == 0 {
		return nil
	}
	dims := make([]int, 0, len(indices.Children))
	for _, c := range indices.Children {
		dims = append(dims, int(c.Token.IntValue))
	}
	return dims
}

func dimProduct(dims []int) int {
	if len(dims) == 0 {
		return 1
	}
	p := 1
	for _, d := range dims {
		p *= d
	}
	return p
}

// funcNameAndClass derives a FunctionHead's id child into a bare name and,
// for a Class::method definition, the owning class name. A plain Id leaf
// has no owning class; a Scope tree yields its second Leaf as the name and
// its first as the class (resolveFunction joins them with "::" again for
// the signature key).
func funcNameAndClass(idNode *ast.Node) (name string, class string) {
	if idNode.Kind == ast.VLeaf {
		return idNode.Token.Lexeme, ""
	}
	return idNode.Child(1).Token.Lexeme, idNode.Child(0).Token.Lexeme
}

func labelPtr(s string) *string { return &s }
