package codegen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arboretic/moonc/internal/ast"
	"github.com/arboretic/moonc/internal/codegen"
	"github.com/arboretic/moonc/internal/language"
	"github.com/arboretic/moonc/internal/lexer"
	"github.com/arboretic/moonc/internal/ll1"
	"github.com/arboretic/moonc/internal/parser"
	"github.com/arboretic/moonc/internal/resolver"
	"github.com/arboretic/moonc/internal/typecheck"
)

func compile(t *testing.T, src string) (*ast.Node, string) {
	t.Helper()
	ids := ast.NewIDAllocator()
	g := language.Build(ids)
	table, first, follow := ll1.BuildParseTable(g)
	require.Empty(t, table.Conflicts)

	toks, lexErrs := lexer.New(src).Tokenize()
	require.Empty(t, lexErrs)

	res := parser.New(g, table, first, follow, ids).Parse(toks)
	require.False(t, res.Diags.HasErrors(), "parse diags: %v", res.Diags.Items())
	require.NotNil(t, res.Root)

	_, err := resolver.Resolve(res.Root)
	require.NoError(t, err)

	diags := typecheck.Check(res.Root)
	require.False(t, diags.HasErrors(), "typecheck diags: %v", diags.Items())

	asm, cgDiags := codegen.Generate(res.Root)
	require.False(t, cgDiags.HasErrors(), "codegen diags: %v", cgDiags.Items())

	return res.Root, asm
}

func TestGenerateBareMainHasExpectedPrologueShape(t *testing.T) {
	_, asm := compile(t, `function main ( ) => void { } ;`)

	assert.True(t, strings.HasPrefix(asm, "align\n"), "assembly must begin with align")
	assert.Contains(t, asm, "entry\n")
	assert.Contains(t, asm, "jl r15, main\n")
	assert.Contains(t, asm, "hlt\n")
	assert.Contains(t, asm, "main nop\n")
	assert.Contains(t, asm, "sw 0(r14), r15\n")
	assert.Contains(t, asm, "lw r15, 0(r14)\n")
	assert.Contains(t, asm, "jr r15\n")
}

func TestGenerateWriteEmitsIntStrAndPutStr(t *testing.T) {
	_, asm := compile(t, `function main ( ) => void {
		write ( 2 + 3 ) ;
	} ;`)

	assert.Contains(t, asm, "add ")
	assert.Contains(t, asm, "jl r15, intstr\n")
	assert.Contains(t, asm, "jl r15, putstr\n")
}

func TestGenerateIfEmitsSingleBranchAndTwoTargets(t *testing.T) {
	_, asm := compile(t, `function main ( ) => void {
		localvar x : integer ;
		if ( x < 10 ) then {
			x := 1 ;
		} else {
			x := 2 ;
		} ;
	} ;`)

	assert.Equal(t, 1, strings.Count(asm, "bz "), "expected exactly one conditional branch")
	assert.Equal(t, 1, strings.Count(asm, "j t"), "expected exactly one unconditional jump to a temp label")
	assert.Equal(t, 2, strings.Count(asm, " nop\n")-1, "expected two temp-label targets besides the function's own nop")
}

func TestGenerateWhileEmitsLoopBackJump(t *testing.T) {
	_, asm := compile(t, `function main ( ) => void {
		localvar x : integer ;
		while ( x < 10 ) {
			x := x + 1 ;
		} ;
	} ;`)

	assert.Contains(t, asm, "bz ")
	assert.Equal(t, 1, strings.Count(asm, "j t"))
}

func TestGenerateFunctionCallPassesArgumentsByOffset(t *testing.T) {
	_, asm := compile(t, `function f ( a : integer ) => integer {
		return ( a ) ;
	} ;
	function main ( ) => void {
		localvar x : integer ;
		x := f ( 1 ) ;
	} ;`)

	assert.Contains(t, asm, "jl r15, f")
	assert.Contains(t, asm, "f0_f nop\n")
}

func TestGenerateReadAppliesFramePadding(t *testing.T) {
	_, asm := compile(t, `function main ( ) => void {
		localvar x : integer ;
		read ( x ) ;
	} ;`)

	assert.Contains(t, asm, "jl r15, getstr\n")
	assert.Contains(t, asm, "jl r15, strint\n")
	assert.Contains(t, asm, "subi r14, r14, 12\n", "main's frame is 8 bytes, plus 4 padding")
}

func TestGenerateAlwaysHasAtLeastOneHalt(t *testing.T) {
	_, asm := compile(t, `function main ( ) => void {
		localvar x : integer ;
		x := 1 ;
	} ;`)

	assert.True(t, strings.Count(asm, "hlt") >= 1)
}
