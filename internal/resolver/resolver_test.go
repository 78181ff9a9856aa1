package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arboretic/moonc/internal/ast"
	"github.com/arboretic/moonc/internal/language"
	"github.com/arboretic/moonc/internal/lexer"
	"github.com/arboretic/moonc/internal/ll1"
	"github.com/arboretic/moonc/internal/parser"
	"github.com/arboretic/moonc/internal/resolver"
)

func parseProgram(t *testing.T, src string) *ast.Node {
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
	return res.Root
}

func TestResolveFailsWithoutMain(t *testing.T) {
	root := parseProgram(t, `function f ( ) => void { } ;`)
	_, err := resolver.Resolve(root)
	assert.ErrorIs(t, err, resolver.ErrNoMainFunction)
}

func TestResolveParameterOffsetsDescend(t *testing.T) {
	root := parseProgram(t, `function f ( a : integer, b : integer ) => void { } ;
function main ( ) => void { } ;`)
	_, err := resolver.Resolve(root)
	require.NoError(t, err)

	global := root.Symbols
	require.NotNil(t, global)

	sd, ok := global.Get("f(integer, integer)")
	require.True(t, ok)
	ft := sd.Nested
	require.NotNil(t, ft)

	a, ok := ft.Get("a")
	require.True(t, ok)
	b, ok := ft.Get("b")
	require.True(t, ok)

	assert.Less(t, a.Offset, 0)
	assert.Less(t, b.Offset, a.Offset, "later parameters get more negative offsets")
}

func TestResolveOverloadedFunctionsCoexistWithWarning(t *testing.T) {
	root := parseProgram(t, `function f ( a : integer ) => void { } ;
function f ( a : float ) => void { } ;
function main ( ) => void { } ;`)
	diags, err := resolver.Resolve(root)
	require.NoError(t, err)

	global := root.Symbols
	_, ok := global.Get("f(integer)")
	assert.True(t, ok)
	_, ok = global.Get("f(float)")
	assert.True(t, ok)

	found := false
	for _, d := range diags.Items() {
		if d.Message == `function "f" overloaded with a different signature` {
			found = true
		}
	}
	assert.True(t, found, "expected an overload warning, got: %v", diags.Items())
}

func TestResolveDuplicateSignatureIsAnError(t *testing.T) {
	root := parseProgram(t, `function f ( a : integer ) => void { } ;
function f ( a : integer ) => void { } ;
function main ( ) => void { } ;`)
	diags, err := resolver.Resolve(root)
	require.NoError(t, err)
	assert.True(t, diags.HasErrors())
}

func TestResolveClassMembersAndScopedMethod(t *testing.T) {
	src := `class Point isa Shape {
		public attribute x : integer ;
		public attribute y : integer ;
		private function area ( ) => integer ;
	} ;
	function Point::area ( ) => integer {
		return ( 0 ) ;
	} ;
	function main ( ) => void { } ;`
	root := parseProgram(t, src)
	diags, err := resolver.Resolve(root)
	require.NoError(t, err)
	assert.False(t, diags.HasErrors(), "diags: %v", diags.Items())

	global := root.Symbols
	classSD, ok := global.Get("Point")
	require.True(t, ok)
	require.NotNil(t, classSD.Nested)

	x, ok := classSD.Nested.Get("x")
	require.True(t, ok)
	y, ok := classSD.Nested.Get("y")
	require.True(t, ok)
	assert.Equal(t, 0, x.Offset)
	assert.Equal(t, 4, y.Offset, "attribute offsets ascend from 0 independent of the function frame counter")

	_, ok = global.Get("Point::area()")
	assert.True(t, ok)
}

func TestResolveLocalVarDeclInsideIfBlockSharesFunctionFrame(t *testing.T) {
	src := `function main ( ) => void {
		localvar x : integer ;
		if ( 1 ) then {
			localvar y : integer ;
		} else { } ;
	} ;`
	root := parseProgram(t, src)
	_, err := resolver.Resolve(root)
	require.NoError(t, err)

	global := root.Symbols
	sd, ok := global.Get("main()")
	require.True(t, ok)
	ft := sd.Nested

	x, ok := ft.Get("x")
	require.True(t, ok)
	y, ok := ft.Get("y")
	require.True(t, ok)
	assert.Less(t, y.Offset, x.Offset, "a local declared in a nested block still extends the enclosing function's frame")
}
