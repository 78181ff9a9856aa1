package ll1

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arboretic/moonc/internal/grammar"
)

// DumpFirst renders FIRST sets for every non-terminal in g, sorted by name,
// for the CLI's -debug output.
func DumpFirst(g grammar.Grammar, fs *FirstSets) string {
	var b strings.Builder
	for _, sym := range sortedSymbols(g) {
		terms := fs.Get(sym)
		names := make([]string, 0, len(terms))
		for t := range terms {
			names = append(names, t.String())
		}
		sort.Strings(names)
		nullMark := ""
		if fs.IsNullable(sym) {
			nullMark = " (nullable)"
		}
		fmt.Fprintf(&b, "FIRST(%s) = { %s }%s\n", sym, strings.Join(names, ", "), nullMark)
	}
	return b.String()
}

// DumpFollow renders FOLLOW sets for every non-terminal in g.
func DumpFollow(g grammar.Grammar, fo *FollowSets) string {
	var b strings.Builder
	for _, sym := range sortedSymbols(g) {
		terms := fo.Get(sym)
		names := make([]string, 0, len(terms))
		for t := range terms {
			names = append(names, t.String())
		}
		sort.Strings(names)
		fmt.Fprintf(&b, "FOLLOW(%s) = { %s }\n", sym, strings.Join(names, ", "))
	}
	return b.String()
}

// DumpTable renders every populated (non-terminal, terminal) cell as
// "A, t -> X Y Z" lines, sorted for determinism.
func DumpTable(t *Table) string {
	type row struct {
		key tableKey
		seq []StackSymbol
	}
	rows := make([]row, 0, len(t.cells))
	for k, v := range t.cells {
		rows = append(rows, row{k, v})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].key.NonTerm != rows[j].key.NonTerm {
			return rows[i].key.NonTerm < rows[j].key.NonTerm
		}
		return rows[i].key.Terminal < rows[j].key.Terminal
	})

	var b strings.Builder
	for _, r := range rows {
		parts := make([]string, len(r.seq))
		for i, s := range r.seq {
			parts[i] = s.String()
		}
		rhs := strings.Join(parts, " ")
		if rhs == "" {
			rhs = "ε"
		}
		fmt.Fprintf(&b, "%s, %s -> %s\n", r.key.NonTerm, r.key.Terminal, rhs)
	}
	return b.String()
}

func sortedSymbols(g grammar.Grammar) []grammar.Symbol {
	out := make([]grammar.Symbol, 0, len(g.Productions))
	for sym := range g.Productions {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
