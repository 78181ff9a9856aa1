package language_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arboretic/moonc/internal/ast"
	"github.com/arboretic/moonc/internal/grammar"
	"github.com/arboretic/moonc/internal/language"
	"github.com/arboretic/moonc/internal/ll1"
	"github.com/arboretic/moonc/internal/token"
)

// TestGrammarIsConflictFree guards the LL(1) property every hand-authored
// production in language.go depends on: no (non-terminal, lookahead) cell
// is ever claimed twice.
func TestGrammarIsConflictFree(t *testing.T) {
	ids := ast.NewIDAllocator()
	g := language.Build(ids)
	table, _, _ := ll1.BuildParseTable(g)

	assert.Empty(t, table.Conflicts, "grammar must be LL(1): %v", table.Conflicts)
	require.NotNil(t, table)
}

// TestProgramEntryPoints spot-checks a handful of (non-terminal, lookahead)
// cells a correct table must populate, including the left-factored
// disambiguation points (MemberDecl, Factor, Statement).
func TestProgramEntryPoints(t *testing.T) {
	ids := ast.NewIDAllocator()
	g := language.Build(ids)
	table, _, _ := ll1.BuildParseTable(g)

	cases := []struct {
		nt   grammar.Symbol
		la   token.Class
		name string
	}{
		{language.Program, token.KwClass, "Program/class"},
		{language.Program, token.KwFunction, "Program/function"},
		{language.Program, token.EOF, "Program/eof"},
		{language.MemberDecl, token.KwAttribute, "MemberDecl/attribute"},
		{language.MemberDecl, token.KwConstructor, "MemberDecl/constructor"},
		{language.MemberDecl, token.KwFunction, "MemberDecl/function"},
		{language.Factor, token.IntNum, "Factor/intnum"},
		{language.Factor, token.Id, "Factor/id"},
		{language.Factor, token.OpenPar, "Factor/openpar"},
		{language.Statement, token.KwIf, "Statement/if"},
		{language.Statement, token.Id, "Statement/id"},
		{language.FactorIDTail, token.OpenPar, "FactorIDTail/call"},
		{language.FactorIDTail, token.OpenSqbr, "FactorIDTail/index"},
		{language.StatementIDTail, token.OpenPar, "StatementIDTail/call"},
		{language.StatementIDTail, token.Assign, "StatementIDTail/assign"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, ok := table.Lookup(c.nt, c.la)
			assert.True(t, ok, "missing table entry for %s", c.name)
		})
	}
}

// TestNoUnresolvedNonTerminals checks every NonTerminal reference used
// anywhere in the grammar resolves to a defined production, catching typos
// in grammar.Symbol string literals that the table builder would otherwise
// silently treat as "no entry" rather than a build error.
func TestNoUnresolvedNonTerminals(t *testing.T) {
	ids := ast.NewIDAllocator()
	g := language.Build(ids)

	missing := map[grammar.Symbol]bool{}
	var walk func(r grammar.Rule)
	walk = func(r grammar.Rule) {
		switch v := r.(type) {
		case grammar.NonTerminal:
			if _, ok := g.Productions[v.Symbol]; !ok {
				missing[v.Symbol] = true
			}
		case grammar.Sequence:
			for _, e := range v {
				walk(e)
			}
		case grammar.Alternative:
			for _, e := range v {
				walk(e)
			}
		case grammar.Optional:
			walk(v.Inner)
		case grammar.ZeroOrMore:
			walk(v.Inner)
		case grammar.OneOrMore:
			walk(v.Inner)
		}
	}
	for _, rule := range g.Productions {
		walk(rule)
	}
	assert.Empty(t, missing, "grammar references undefined non-terminals: %v", missing)
}
