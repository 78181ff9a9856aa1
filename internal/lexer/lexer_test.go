package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arboretic/moonc/internal/lexer"
	"github.com/arboretic/moonc/internal/token"
)

func classes(toks []token.Token) []token.Class {
	out := make([]token.Class, len(toks))
	for i, t := range toks {
		out[i] = t.Class
	}
	return out
}

func TestTokenizeBasicProgram(t *testing.T) {
	src := `function main() => void { };`
	toks, errs := lexer.New(src).Tokenize()
	require.Empty(t, errs)
	require.Equal(t, []token.Class{
		token.KwFunction, token.Id, token.OpenPar, token.ClosePar, token.Arrow,
		token.KwVoid, token.OpenCubr, token.CloseCubr, token.Semi, token.EOF,
	}, classes(toks))
}

func TestTokenizeLocalVarAssignment(t *testing.T) {
	src := `localvar x: integer; x := 2 + 3;`
	toks, errs := lexer.New(src).Tokenize()
	require.Empty(t, errs)
	require.Equal(t, []token.Class{
		token.KwLocalVar, token.Id, token.Colon, token.KwInteger, token.Semi,
		token.Id, token.Assign, token.IntNum, token.Plus, token.IntNum, token.Semi,
		token.EOF,
	}, classes(toks))
}

func TestLeadingZeroIsLexicalError(t *testing.T) {
	_, errs := lexer.New(`x := 007;`).Tokenize()
	require.Len(t, errs, 1)
	require.Equal(t, token.InvalidLeadingZero, errs[0].Kind)
}

func TestTrailingZeroIsLexicalError(t *testing.T) {
	_, errs := lexer.New(`x := 1.50;`).Tokenize()
	require.Len(t, errs, 1)
	require.Equal(t, token.InvalidTrailingZero, errs[0].Kind)
}

func TestUnclosedBlockCommentIsLexicalError(t *testing.T) {
	_, errs := lexer.New("/* never closes").Tokenize()
	require.Len(t, errs, 1)
	require.Equal(t, token.InvalidUnclosedBlockCmt, errs[0].Kind)
}

func TestInvalidCharIsLexicalError(t *testing.T) {
	_, errs := lexer.New("x := 1 # 2;").Tokenize()
	require.Len(t, errs, 1)
	require.Equal(t, token.InvalidChar, errs[0].Kind)
}

func TestCommentsAreClassifiedNotDropped(t *testing.T) {
	toks, errs := lexer.New("% hi\nx := 1;").Tokenize()
	require.Empty(t, errs)
	require.Equal(t, token.InlineCmt, toks[0].Class)
}
