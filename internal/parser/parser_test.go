package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arboretic/moonc/internal/ast"
	"github.com/arboretic/moonc/internal/language"
	"github.com/arboretic/moonc/internal/lexer"
	"github.com/arboretic/moonc/internal/ll1"
	"github.com/arboretic/moonc/internal/parser"
)

func newParser(t *testing.T) (*parser.Parser, *ast.IDAllocator) {
	t.Helper()
	ids := ast.NewIDAllocator()
	g := language.Build(ids)
	table, first, follow := ll1.BuildParseTable(g)
	require.Empty(t, table.Conflicts)
	return parser.New(g, table, first, follow, ids), ids
}

func TestParseEmptyMainFunction(t *testing.T) {
	p, _ := newParser(t)

	toks, lexErrs := lexer.New("function main ( ) => void { } ;").Tokenize()
	require.Empty(t, lexErrs)

	res := p.Parse(toks)
	require.NotEmpty(t, res.Derivation)
	assert.False(t, res.Diags.HasErrors())
	require.NotNil(t, res.Root)

	require.Equal(t, ast.VTree, res.Root.Kind)
	require.Equal(t, ast.Program, res.Root.Tree)
	require.Len(t, res.Root.Children, 1)

	fn := res.Root.Child(0)
	require.Equal(t, ast.Function, fn.Tree)
	require.Len(t, fn.Children, 2)

	head := fn.Child(0)
	require.Equal(t, ast.FunctionHead, head.Tree)
	require.Len(t, head.Children, 3)

	funcID := head.Child(0)
	require.Equal(t, ast.VLeaf, funcID.Kind)
	assert.Equal(t, "main", funcID.Token.Lexeme)

	params := head.Child(1)
	require.Equal(t, ast.ParameterList, params.Tree)
	assert.Empty(t, params.Children)

	returnType := head.Child(2)
	require.Equal(t, ast.VLeaf, returnType.Kind)

	body := fn.Child(1)
	require.Equal(t, ast.FunctionBody, body.Tree)
	assert.Empty(t, body.Children)
}

func TestParseClassWithAttributeAndMethod(t *testing.T) {
	p, _ := newParser(t)

	src := `class Point isa Shape {
		public attribute x: integer;
		private function area() => integer;
	};
	function Point::area() => integer {
		return (0);
	};
	function main() => void { };`

	toks, lexErrs := lexer.New(src).Tokenize()
	require.Empty(t, lexErrs)

	res := p.Parse(toks)
	assert.False(t, res.Diags.HasErrors(), "diags: %v", res.Diags.Items())
	require.NotNil(t, res.Root)
	require.Len(t, res.Root.Children, 3)

	class := res.Root.Child(0)
	require.Equal(t, ast.Class, class.Tree)
	require.Len(t, class.Children, 3)
	assert.Equal(t, "Point", class.Child(0).Token.Lexeme)
	require.Equal(t, ast.InheritsList, class.Child(1).Tree)
	require.Len(t, class.Child(1).Children, 1)
	assert.Equal(t, "Shape", class.Child(1).Child(0).Token.Lexeme)

	members := class.Child(2)
	require.Equal(t, ast.ClassMembers, members.Tree)
	require.Len(t, members.Children, 2)

	attr := members.Child(0)
	require.Equal(t, ast.Attribute, attr.Tree)
	require.Len(t, attr.Children, 4)
	assert.Equal(t, "public", attr.Child(0).Token.Lexeme)
	assert.Equal(t, "x", attr.Child(1).Token.Lexeme)

	method := members.Child(1)
	require.Equal(t, ast.MemberFunc, method.Tree)
	require.Len(t, method.Children, 4)
	assert.Equal(t, "private", method.Child(0).Token.Lexeme)

	scopedFn := res.Root.Child(1)
	require.Equal(t, ast.Function, scopedFn.Tree)
	head := scopedFn.Child(0)
	scope := head.Child(0)
	require.Equal(t, ast.Scope, scope.Tree)
	require.Len(t, scope.Children, 2)
	assert.Equal(t, "Point", scope.Child(0).Token.Lexeme)
	assert.Equal(t, "area", scope.Child(1).Token.Lexeme)
}

func TestRecoverySoundnessMissingSemicolon(t *testing.T) {
	p, _ := newParser(t)

	src := `function main ( ) => void {
		write ( 1 )
		write ( 2 ) ;
	} ;`

	toks, lexErrs := lexer.New(src).Tokenize()
	require.Empty(t, lexErrs)

	res := p.Parse(toks)
	require.NotNil(t, res.Root, "recovery must still produce a Program root")
	require.True(t, res.Diags.HasErrors())
	require.NotEmpty(t, res.Derivation)

	fn := res.Root.Child(0)
	body := fn.Child(1)
	require.Len(t, body.Children, 2, "both write statements should still be parsed")
	assert.Equal(t, ast.Write, body.Child(0).Tree)
	assert.Equal(t, ast.Write, body.Child(1).Tree)
}

func TestSelfAliasesToIdentifier(t *testing.T) {
	p, _ := newParser(t)

	src := `function Point::reset() => void {
		self.x := 0;
	};
	function main() => void { };`

	toks, lexErrs := lexer.New(src).Tokenize()
	require.Empty(t, lexErrs)

	res := p.Parse(toks)
	assert.False(t, res.Diags.HasErrors(), "diags: %v", res.Diags.Items())
	require.NotNil(t, res.Root)
}
