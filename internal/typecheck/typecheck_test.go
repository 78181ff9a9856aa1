package typecheck_test

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
	"github.com/arboretic/moonc/internal/typecheck"
)

func parseAndResolve(t *testing.T, src string) *ast.Node {
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

	return res.Root
}

func TestCheckArithExprMatchingIntegerOperandsIsClean(t *testing.T) {
	src := `function main ( ) => void {
		localvar x : integer ;
		x := 1 + 2 * 3 ;
	} ;`
	root := parseAndResolve(t, src)
	diags := typecheck.Check(root)
	assert.False(t, diags.HasErrors(), "diags: %v", diags.Items())
}

func TestCheckArithExprMismatchedVariantIsAnError(t *testing.T) {
	src := `function main ( ) => void {
		localvar x : integer ;
		localvar y : float ;
		x := 1 + y ;
	} ;`
	root := parseAndResolve(t, src)
	diags := typecheck.Check(root)
	assert.True(t, diags.HasErrors(), "expected an integer/float mismatch error")
}

func TestCheckRelExprAlwaysYieldsInteger(t *testing.T) {
	src := `function main ( ) => void {
		localvar x : integer ;
		while ( x < 10 ) {
			x := x + 1 ;
		} ;
	} ;`
	root := parseAndResolve(t, src)
	diags := typecheck.Check(root)
	assert.False(t, diags.HasErrors(), "diags: %v", diags.Items())

	rel := root.Child(0).Child(1).Child(1).Child(0).Child(0)
	require.Equal(t, ast.RelExpr, rel.Tree)
	require.NotNil(t, rel.VType)
	assert.Equal(t, ast.TInteger, rel.VType.Kind)
}

func TestCheckUndeclaredIdentifierIsAnError(t *testing.T) {
	src := `function main ( ) => void {
		write ( nope ) ;
	} ;`
	root := parseAndResolve(t, src)
	diags := typecheck.Check(root)
	assert.True(t, diags.HasErrors())
}

func TestCheckFunctionCallResolvesBySignature(t *testing.T) {
	src := `function f ( a : integer ) => integer {
		return ( a ) ;
	} ;
	function main ( ) => void {
		localvar x : integer ;
		x := f ( 1 ) ;
	} ;`
	root := parseAndResolve(t, src)
	diags := typecheck.Check(root)
	assert.False(t, diags.HasErrors(), "diags: %v", diags.Items())
}

func TestCheckCallToUndeclaredSignatureIsAnError(t *testing.T) {
	src := `function f ( a : integer ) => integer {
		return ( a ) ;
	} ;
	function main ( ) => void {
		localvar x : integer ;
		x := f ( 1.0 ) ;
	} ;`
	root := parseAndResolve(t, src)
	diags := typecheck.Check(root)
	assert.True(t, diags.HasErrors(), "expected no f(float) overload to exist")
}

func TestCheckReturnTypeMismatchIsAnError(t *testing.T) {
	src := `function f ( ) => integer {
		return ( 1.0 ) ;
	} ;
	function main ( ) => void { } ;`
	root := parseAndResolve(t, src)
	diags := typecheck.Check(root)
	assert.True(t, diags.HasErrors(), "float return should not satisfy an integer return type")
}

func TestCheckClassMemberAccessThroughDottedChain(t *testing.T) {
	src := `class Point isa Shape {
		public attribute x : integer ;
		private function area ( ) => integer ;
	} ;
	function Point::area ( ) => integer {
		return ( 0 ) ;
	} ;
	function main ( ) => void {
		localvar p : Point ;
		localvar x : integer ;
		x := p . x ;
	} ;`
	root := parseAndResolve(t, src)
	diags := typecheck.Check(root)
	assert.False(t, diags.HasErrors(), "diags: %v", diags.Items())
}

func TestCheckIndexingBeyondDeclaredDimensionsIsAnError(t *testing.T) {
	src := `function main ( ) => void {
		localvar a : integer [ 3 ] ;
		localvar x : integer ;
		x := a [ 0 ] [ 1 ] ;
	} ;`
	root := parseAndResolve(t, src)
	diags := typecheck.Check(root)
	assert.True(t, diags.HasErrors(), "a only has one declared dimension")
}
