package ll1_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arboretic/moonc/internal/action"
	"github.com/arboretic/moonc/internal/ast"
	"github.com/arboretic/moonc/internal/grammar"
	"github.com/arboretic/moonc/internal/ll1"
	"github.com/arboretic/moonc/internal/token"
)

// exprGrammar builds a minimal left-factored arithmetic grammar:
//
//	E  -> IntNum E'
//	E' -> + IntNum E' | ε
//
// This exercises nullable non-terminals, FOLLOW propagation across a
// Sequence tail, and table flattening with embedded ActionRules, without
// pulling in the full language grammar from internal/language.
func exprGrammar(ids *ast.IDAllocator) grammar.Grammar {
	leaf := action.CreateLeaf(ids)
	return grammar.Grammar{
		Start: "E",
		Productions: map[grammar.Symbol]grammar.Rule{
			"E": grammar.Sequence{
				grammar.Terminal{Class: token.IntNum},
				grammar.ActionRule{Name: "leaf", Act: leaf},
				grammar.NonTerminal{Symbol: "E'"},
			},
			"E'": grammar.Alternative{
				grammar.Sequence{
					grammar.Terminal{Class: token.Plus},
					grammar.Terminal{Class: token.IntNum},
					grammar.ActionRule{Name: "leaf", Act: leaf},
					grammar.NonTerminal{Symbol: "E'"},
				},
				grammar.Sequence{},
			},
		},
	}
}

func TestFirstSets(t *testing.T) {
	ids := ast.NewIDAllocator()
	g := exprGrammar(ids)
	first := ll1.ComputeFirstSets(g)

	assert.True(t, first.Get("E")[token.IntNum])
	assert.False(t, first.IsNullable("E"))

	assert.True(t, first.Get("E'")[token.Plus])
	assert.True(t, first.IsNullable("E'"))
}

func TestFollowSets(t *testing.T) {
	ids := ast.NewIDAllocator()
	g := exprGrammar(ids)
	first := ll1.ComputeFirstSets(g)
	follow := ll1.ComputeFollowSets(g, first)

	assert.True(t, follow.Get("E")[token.EOF])
	assert.True(t, follow.Get("E'")[token.EOF])
}

func TestBuildParseTableHasNoConflicts(t *testing.T) {
	ids := ast.NewIDAllocator()
	g := exprGrammar(ids)
	table, _, _ := ll1.BuildParseTable(g)

	assert.Empty(t, table.Conflicts)

	seq, ok := table.Lookup("E", token.IntNum)
	require.True(t, ok)
	require.Len(t, seq, 3)
	assert.True(t, seq[0].IsTerminal)
	assert.Equal(t, token.IntNum, seq[0].Terminal)
	assert.True(t, seq[1].IsAction)
	assert.True(t, seq[2].IsNonTerminal)
	assert.Equal(t, grammar.Symbol("E'"), seq[2].NonTerm)

	epsSeq, ok := table.Lookup("E'", token.EOF)
	require.True(t, ok)
	assert.Empty(t, epsSeq)

	plusSeq, ok := table.Lookup("E'", token.Plus)
	require.True(t, ok)
	require.Len(t, plusSeq, 4)
	assert.True(t, plusSeq[0].IsTerminal)
	assert.Equal(t, token.Plus, plusSeq[0].Terminal)
}

func TestDumpHelpersDoNotPanic(t *testing.T) {
	ids := ast.NewIDAllocator()
	g := exprGrammar(ids)
	table, first, follow := ll1.BuildParseTable(g)

	assert.NotEmpty(t, ll1.DumpFirst(g, first))
	assert.NotEmpty(t, ll1.DumpFollow(g, follow))
	assert.NotEmpty(t, ll1.DumpTable(table))
}
