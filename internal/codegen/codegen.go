// Package codegen implements the code generator pass (spec §4.7): a single
// walk that emits MOON assembly text into two buffers, a leading `alloc`
// section for static reservations and a `code` section holding the
// per-function executable text. It assumes both the resolver and type
// checker passes have already run: every Variable/FunctionCall node carries
// a resolvable symbol, and every expression node carries a VType.
package codegen

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/arboretic/moonc/internal/ast"
	"github.com/arboretic/moonc/internal/diag"
	"github.com/arboretic/moonc/internal/token"
)

const savedRegCount = 4

// Generator carries the state scoped to one codegen pass: the register
// pool, the static-allocation buffer, the program's global function table
// (for FunctionCall label/offset resolution), and a counter for the
// temporary branch labels If/While mint.
type Generator struct {
	alloc      strings.Builder
	registers  []string
	global     *ast.SymbolTable
	labelCount int
	diags      *diag.Bag
}

// Generate walks every top-level Function in root and returns the full
// assembly text plus any codegen diagnostics.
func Generate(root *ast.Node) (string, *diag.Bag) {
	g := &Generator{global: root.Symbols, diags: &diag.Bag{}}
	g.alloc.WriteString("strbuf res 32\n")
	g.alloc.WriteString("regbuf res 16\n")
	g.registers = []string{"r11", "r10", "r9", "r8", "r7", "r6", "r5", "r4", "r3", "r2", "r1"}

	var code strings.Builder
	for _, c := range root.Children {
		if c.Tree != ast.Function {
			continue
		}
		g.genFunction(c)
		code.WriteString(c.CodeOr())
	}

	asm := fmt.Sprintf(
		"align\n%sentry\naddi r14, r0, topaddr\nsubi r14, r14, 4\njl r15, main\nhlt\n%s",
		g.alloc.String(), code.String(),
	)
	return asm, g.diags
}

func isReg(s string) bool { return strings.HasPrefix(s, "r") }

func (g *Generator) popReg() string {
	n := len(g.registers)
	if n == 0 {
		panic("codegen: register pool exhausted")
	}
	r := g.registers[n-1]
	g.registers = g.registers[:n-1]
	return r
}

func (g *Generator) pushReg(r string) {
	if !isReg(r) {
		return
	}
	g.registers = append(g.registers, r)
}

func (g *Generator) newTempLabel() string {
	l := fmt.Sprintf("t%d", g.labelCount)
	g.labelCount++
	return l
}

func (g *Generator) genFunction(n *ast.Node) {
	label := n.LabelOr()
	body := n.Child(1)

	var code strings.Builder
	code.WriteString(fmt.Sprintf("%s nop\n", label))
	code.WriteString("sw 0(r14), r15\n")
	for _, s := range body.Children {
		g.genStatement(s)
		code.WriteString(s.CodeOr())
	}
	code.WriteString("lw r15, 0(r14)\n")
	code.WriteString("jr r15\n")
	n.SetCode(code.String())
}

func (g *Generator) genStatement(n *ast.Node) {
	switch n.Tree {
	case ast.LocalVarDecl:
		// The resolver pass already computed and stored this variable's
		// `<offset>(r14)` label on its symbol-table entry; nothing left to
		// emit for a bare declaration.
	case ast.Assignment:
		g.genAssignment(n)
	case ast.FunctionCall:
		g.genFunctionCall(n)
	case ast.If:
		g.genIf(n)
	case ast.While:
		g.genWhile(n)
	case ast.Read:
		g.genRead(n)
	case ast.Write:
		g.genWrite(n)
	case ast.Return:
		g.genReturn(n)
	default:
		panic(fmt.Sprintf("codegen: unexpected statement kind %s", n.Tree))
	}
}

func (g *Generator) genAssignment(n *ast.Node) {
	v := n.Child(0)
	e := n.Child(1)
	g.genVariable(v)
	g.genExpr(e)

	exprLabel := e.LabelOr()
	var code strings.Builder
	code.WriteString("% assignment\n")
	code.WriteString(e.CodeOr())
	code.WriteString(fmt.Sprintf("sw %s, %s\n", v.LabelOr(), exprLabel))
	n.SetCode(code.String())

	g.pushReg(exprLabel)
}

func (g *Generator) genIf(n *ast.Node) {
	cond := n.Child(0)
	ifBlock := n.Child(1)
	elseBlock := n.Child(2)

	g.genExpr(cond)
	elseLabel := g.newTempLabel()
	endLabel := g.newTempLabel()

	var code strings.Builder
	code.WriteString("% if\n")
	code.WriteString(cond.CodeOr())
	code.WriteString(fmt.Sprintf("bz %s, %s\n", cond.LabelOr(), elseLabel))
	code.WriteString("% if block\n")
	for _, s := range ifBlock.Children {
		g.genStatement(s)
		code.WriteString(s.CodeOr())
	}
	code.WriteString(fmt.Sprintf("j %s\n", endLabel))
	code.WriteString("% else block\n")
	code.WriteString(fmt.Sprintf("%s nop\n", elseLabel))
	for _, s := range elseBlock.Children {
		g.genStatement(s)
		code.WriteString(s.CodeOr())
	}
	code.WriteString(fmt.Sprintf("%s nop\n", endLabel))
	n.SetCode(code.String())
}

func (g *Generator) genWhile(n *ast.Node) {
	cond := n.Child(0)
	body := n.Child(1)

	whileLabel := g.newTempLabel()
	endLabel := g.newTempLabel()

	var code strings.Builder
	code.WriteString("% while\n")
	code.WriteString(fmt.Sprintf("%s nop\n", whileLabel))
	g.genExpr(cond)
	code.WriteString(cond.CodeOr())
	code.WriteString(fmt.Sprintf("bz %s, %s\n", cond.LabelOr(), endLabel))
	code.WriteString("% while block\n")
	for _, s := range body.Children {
		g.genStatement(s)
		code.WriteString(s.CodeOr())
	}
	code.WriteString(fmt.Sprintf("j %s\n", whileLabel))
	code.WriteString(fmt.Sprintf("%s nop\n", endLabel))
	n.SetCode(code.String())
}

// genRead and genWrite both adjust r14 by the enclosing function's frame
// size plus 4 bytes of scratch padding before touching the shared strbuf —
// the Open Question resolution in SPEC_FULL.md §1 applies the same `+4`
// convention to both, not just Write.
func (g *Generator) genRead(n *ast.Node) {
	variable := n.Child(0)
	g.genVariable(variable)
	adjusted := g.frameSizeOf(n) + 4

	var code strings.Builder
	code.WriteString("% read\n")
	code.WriteString(variable.CodeOr())
	code.WriteString(g.saveRegs())
	code.WriteString(fmt.Sprintf("subi r14, r14, %d\n", adjusted))

	bufReg := g.popReg()
	code.WriteString(fmt.Sprintf("addi %s, r0, strbuf\n", bufReg))
	code.WriteString(fmt.Sprintf("sw -8(r14), %s\n", bufReg))
	g.pushReg(bufReg)

	code.WriteString("jl r15, getstr\n")
	code.WriteString("jl r15, strint\n")
	code.WriteString(fmt.Sprintf("addi r14, r14, %d\n", adjusted))
	code.WriteString(fmt.Sprintf("sw %s, r13\n", variable.LabelOr()))
	code.WriteString(g.restoreRegs())
	n.SetCode(code.String())
}

func (g *Generator) genWrite(n *ast.Node) {
	expr := n.Child(0)
	g.genExpr(expr)
	adjusted := g.frameSizeOf(n) + 4

	var code strings.Builder
	code.WriteString("% write\n")
	code.WriteString(expr.CodeOr())
	code.WriteString(g.saveRegs())

	valReg := expr.LabelOr()
	if !isReg(valReg) {
		r := g.popReg()
		code.WriteString(fmt.Sprintf("lw %s, %s\n", r, valReg))
		valReg = r
	}
	code.WriteString(fmt.Sprintf("subi r14, r14, %d\n", adjusted))
	code.WriteString(fmt.Sprintf("sw -8(r14), %s\n", valReg))
	g.pushReg(valReg)

	bufReg := g.popReg()
	code.WriteString(fmt.Sprintf("addi %s, r0, strbuf\n", bufReg))
	code.WriteString(fmt.Sprintf("sw -12(r14), %s\n", bufReg))
	g.pushReg(bufReg)

	code.WriteString("jl r15, intstr\n")
	code.WriteString("sw -8(r14), r13\n")
	code.WriteString("jl r15, putstr\n")
	code.WriteString("% write newline\n")
	code.WriteString("addi r13, r0, 13\n")
	code.WriteString("putc r13\n")
	code.WriteString("addi r13, r0, 10\n")
	code.WriteString("putc r13\n")
	code.WriteString(fmt.Sprintf("addi r14, r14, %d\n", adjusted))
	code.WriteString(g.restoreRegs())
	n.SetCode(code.String())
}

func (g *Generator) frameSizeOf(n *ast.Node) int {
	fn := n.EnclosingFunction()
	if fn == nil || fn.Symbols == nil {
		return 0
	}
	return fn.Symbols.TotalSize()
}

// saveRegs/restoreRegs spill r1..r4 to regbuf around a call into the
// target VM's getstr/strint/intstr/putstr externals, which clobber the
// general-purpose registers. r12 holds the scratch buffer base address —
// the one reserved register spec §4.7 leaves unassigned a concrete role.
func (g *Generator) saveRegs() string {
	var b strings.Builder
	b.WriteString("addi r12, r0, regbuf\n")
	for i := 0; i < savedRegCount; i++ {
		b.WriteString(fmt.Sprintf("sw %d(r12), r%d\n", i*4, i+1))
	}
	return b.String()
}

func (g *Generator) restoreRegs() string {
	var b strings.Builder
	b.WriteString("addi r12, r0, regbuf\n")
	for i := 0; i < savedRegCount; i++ {
		b.WriteString(fmt.Sprintf("lw r%d, %d(r12)\n", i+1, i*4))
	}
	return b.String()
}

func (g *Generator) genReturn(n *ast.Node) {
	expr := n.Child(0)
	g.genExpr(expr)
	label := expr.LabelOr()

	var code strings.Builder
	code.WriteString("% return\n")
	code.WriteString(expr.CodeOr())
	if isReg(label) {
		code.WriteString(fmt.Sprintf("add r13, r0, %s\n", label))
		g.pushReg(label)
	} else {
		code.WriteString(fmt.Sprintf("lw r13, %s\n", label))
	}
	n.SetCode(code.String())
}

// genExpr dispatches on the node's tree kind. It is reachable both on
// genuine Expr wrapper nodes and directly on ArithExpr/Term/Factor/
// FunctionCall/Variable, since the grammar's Factor production sometimes
// hands back a FunctionCall or Variable tree directly rather than wrapping
// it in a Factor node (see internal/typecheck for the same dispatch shape).
func (g *Generator) genExpr(n *ast.Node) {
	switch n.Tree {
	case ast.Expr:
		g.genExpr(n.Child(0))
		n.SetLabel(n.Child(0).LabelOr())
		n.SetCode(n.Child(0).CodeOr())
	case ast.RelExpr:
		g.genRelExpr(n)
	case ast.ArithExpr, ast.Term:
		g.genChain(n)
	case ast.Factor:
		g.genFactor(n)
	case ast.FunctionCall:
		g.genFunctionCall(n)
	case ast.Variable:
		g.genVariable(n)
	default:
		panic(fmt.Sprintf("codegen: unexpected expression node kind %s", n.Tree))
	}
}

func (g *Generator) genRelExpr(n *ast.Node) {
	left := n.Child(0)
	opLeaf := n.Child(1)
	right := n.Child(2)
	g.genExpr(left)
	g.genExpr(right)

	label, code := g.emitBinaryOp(left.LabelOr(), left.CodeOr(), right.LabelOr(), right.CodeOr(), relMnemonic(opLeaf.Token.Class), "rel")
	n.SetLabel(label)
	n.SetCode(code)
}

// genChain folds an ArithExpr/Term's right-recursive RightRecArithExpr/
// RightRecTerm tail left to right, emitting one binary op per step. Per
// spec §4.6/§4.7 the chain's own label is always the running left-hand
// value, so each step just replaces the accumulated label/code with the
// newly emitted combination.
func (g *Generator) genChain(n *ast.Node) {
	g.genExpr(n.Child(0))
	label := n.Child(0).LabelOr()
	code := n.Child(0).CodeOr()

	tail := n.Child(1)
	for len(tail.Children) != 0 {
		opLeaf := tail.Child(0)
		operand := tail.Child(1)
		g.genExpr(operand)

		label, code = g.emitBinaryOp(label, code, operand.LabelOr(), operand.CodeOr(), arithMnemonic(opLeaf.Token.Class), "arith")
		tail.SetLabel(label)
		tail = tail.Child(2)
	}
	tail.SetLabel(label)
	n.SetLabel(label)
	n.SetCode(code)
}

func (g *Generator) emitBinaryOp(leftLabel, leftCode, rightLabel, rightCode, mnemonic, kind string) (string, string) {
	reg := g.popReg()
	var code strings.Builder
	code.WriteString(fmt.Sprintf("%% %s expression\n", kind))
	code.WriteString(leftCode)
	code.WriteString(rightCode)

	lReg := leftLabel
	if !isReg(lReg) {
		r := g.popReg()
		code.WriteString(fmt.Sprintf("lw %s, %s\n", r, lReg))
		lReg = r
	}
	rReg := rightLabel
	if !isReg(rReg) {
		r := g.popReg()
		code.WriteString(fmt.Sprintf("lw %s, %s\n", r, rReg))
		rReg = r
	}

	code.WriteString(fmt.Sprintf("%s %s, %s, %s\n", mnemonic, reg, lReg, rReg))
	code.WriteString(fmt.Sprintf("%% end %s expression\n", kind))
	g.pushReg(lReg)
	g.pushReg(rReg)
	return reg, code.String()
}

func arithMnemonic(class token.Class) string {
	switch class {
	case token.Plus:
		return "add"
	case token.Minus:
		return "sub"
	case token.Mult:
		return "mul"
	case token.Div:
		return "div"
	default:
		panic(fmt.Sprintf("codegen: unexpected arithmetic operator %s", class))
	}
}

// relMnemonic follows spec §4.6's operator map literally ({=, ≠, <, ≤, >,
// ≥} -> {ceq, cne, clt, cle, cgt, cge}); original_source's own rel-expr
// codegen visitor has a stray, incorrect mapping for this (it never handles
// Eq at all and maps NotEq to "ceq"), which this repo does not port.
func relMnemonic(class token.Class) string {
	switch class {
	case token.Eq:
		return "ceq"
	case token.NotEq:
		return "cne"
	case token.Lt:
		return "clt"
	case token.LEq:
		return "cle"
	case token.Gt:
		return "cgt"
	case token.GEq:
		return "cge"
	default:
		panic(fmt.Sprintf("codegen: unexpected relational operator %s", class))
	}
}

func (g *Generator) genFactor(n *ast.Node) {
	if len(n.Children) == 1 {
		child := n.Child(0)
		if child.Kind == ast.VLeaf {
			g.genLiteral(n, child.Token)
			return
		}
		// Parenthesized sub-expression: pass through.
		g.genExpr(child)
		n.SetLabel(child.LabelOr())
		n.SetCode(child.CodeOr())
		return
	}

	// Unary not/-/+: the grammar parses and the type checker validates
	// these, but codegen passes the operand through unchanged — neither
	// spec §4.7 nor original_source's own Factor visitor defines a unary
	// emission rule.
	inner := n.Child(1)
	g.genExpr(inner)
	n.SetLabel(inner.LabelOr())
	n.SetCode(inner.CodeOr())
}

func (g *Generator) genLiteral(n *ast.Node, tok token.Token) {
	reg := g.popReg()
	var code strings.Builder
	if tok.Class == token.IntNum {
		code.WriteString(fmt.Sprintf("%% assign literal %s\n", tok.Lexeme))
		code.WriteString(fmt.Sprintf("addi %s, r0, %s\n", reg, tok.Lexeme))
	} else {
		key := mangleFloatLabel(tok.Lexeme)
		g.alloc.WriteString(fmt.Sprintf("%s db %s\n", key, floatLEBytes(tok.FloatValue)))
		code.WriteString(fmt.Sprintf("%% assign literal %s\n", tok.Lexeme))
		code.WriteString(fmt.Sprintf("sw %s, %s\n", reg, key))
	}
	n.SetLabel(reg)
	n.SetCode(code.String())
}

func mangleFloatLabel(lexeme string) string {
	return "l" + strings.ReplaceAll(lexeme, ".", "_")
}

// floatLEBytes encodes a float literal as 4 bytes (spec §6: word size is 4
// bytes for both integers and floats), truncating to IEEE-754 single
// precision rather than the original_source Rust codegen's native f64.
func floatLEBytes(v float64) string {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(v)))
	parts := make([]string, len(buf))
	for i, b := range buf {
		parts[i] = strconv.Itoa(int(b))
	}
	return strings.Join(parts, ",")
}

// genVariable resolves the base identifier's storage label via the parent
// symbol-table chain. Like original_source's own visit_variable, it does
// not compute an element address for indexed access — arrays are parsed
// and type-checked but this pass (both here and in the teacher's original)
// never materializes per-element addressing.
func (g *Generator) genVariable(n *ast.Node) {
	indexedVar := n.Child(0)
	idLeaf := indexedVar.Child(0)

	sd, _ := n.Lookup(idLeaf.Token.Lexeme)
	if sd == nil || sd.Label == nil {
		g.diags.Error(idLeaf.Token, "no storage label recorded for %q", idLeaf.Token.Lexeme)
		n.SetLabel("r0")
		n.SetCode("")
		return
	}
	n.SetLabel(*sd.Label)
	n.SetCode("")

	if len(n.Children) > 1 {
		g.diags.Error(idLeaf.Token, "member access codegen is not supported for %q", idLeaf.Token.Lexeme)
	}
}

// genFunctionCall resolves the callee by the signature built from each
// argument's already-annotated VType, matching the caller's arguments to
// the callee's parameters positionally (its symbol table's insertion order,
// filtered to the parameter entries — the reserved `_return`/`_ret_addr`/
// `..` keys excluded). Arguments are evaluated against the caller's frame
// first, then r14 is decremented to the callee's frame and each argument is
// stored directly at the callee's own declared offset, so no offset
// translation between caller and callee addressing is needed. Neither
// spec §4.7's prose nor original_source (which has no FunctionCall codegen
// visitor at all) pins this down more precisely; this is this repo's
// resolution.
func (g *Generator) genFunctionCall(n *ast.Node) {
	idLeaf := n.Child(0)
	argList := n.Child(1)

	argLabels := make([]string, len(argList.Children))
	argTypes := make([]string, len(argList.Children))
	var code strings.Builder
	code.WriteString(fmt.Sprintf("%% call %s\n", idLeaf.Token.Lexeme))
	for i, a := range argList.Children {
		g.genExpr(a)
		argLabels[i] = a.LabelOr()
		code.WriteString(a.CodeOr())
		if !isReg(argLabels[i]) {
			r := g.popReg()
			code.WriteString(fmt.Sprintf("lw %s, %s\n", r, argLabels[i]))
			argLabels[i] = r
		}
		if a.VType != nil {
			argTypes[i] = a.VType.String()
		}
	}

	sig := fmt.Sprintf("%s(%s)", idLeaf.Token.Lexeme, strings.Join(argTypes, ", "))
	sd, ok := g.global.Get(sig)
	if !ok || sd.Label == nil || sd.Nested == nil {
		g.diags.Error(idLeaf.Token, "call to undeclared function %q", sig)
		reg := g.popReg()
		code.WriteString(fmt.Sprintf("addi %s, r0, 0\n", reg))
		n.SetLabel(reg)
		n.SetCode(code.String())
		return
	}

	calleeTable := sd.Nested
	frameSize := calleeTable.TotalSize()
	params := parameterKeys(calleeTable)

	code.WriteString(fmt.Sprintf("subi r14, r14, %d\n", frameSize))
	for i, pname := range params {
		if i >= len(argLabels) {
			break
		}
		psd, _ := calleeTable.Get(pname)
		argReg := argLabels[i]
		code.WriteString(fmt.Sprintf("sw %d(r14), %s\n", psd.Offset, argReg))
		g.pushReg(argReg)
	}
	code.WriteString(fmt.Sprintf("jl r15, %s\n", *sd.Label))
	code.WriteString(fmt.Sprintf("addi r14, r14, %d\n", frameSize))

	resultReg := g.popReg()
	code.WriteString(fmt.Sprintf("add %s, r0, r13\n", resultReg))
	n.SetLabel(resultReg)
	n.SetCode(code.String())
}

func parameterKeys(table *ast.SymbolTable) []string {
	keys := table.Keys()
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		switch k {
		case ast.KeyReturn, ast.KeyRetAddr, ast.KeyParent, ast.KeyInherits:
			continue
		}
		out = append(out, k)
	}
	return out
}
