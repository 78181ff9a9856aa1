// Package ll1 computes FIRST/FOLLOW sets and the LL(1) parsing table from a
// internal/grammar.Grammar (spec §4.2), adapting the teacher's tooling/ll1
// fixpoint algorithms to a grammar whose rules can carry inline semantic
// actions (internal/grammar.ActionRule).
package ll1

import (
	"github.com/arboretic/moonc/internal/grammar"
	"github.com/arboretic/moonc/internal/token"
)

// FirstSets holds FIRST(X) for every symbol (terminal and non-terminal)
// plus which non-terminals are nullable.
type FirstSets struct {
	sets     map[grammar.Symbol]map[token.Class]bool
	nullable map[grammar.Symbol]bool
}

func newFirstSets() *FirstSets {
	return &FirstSets{
		sets:     make(map[grammar.Symbol]map[token.Class]bool),
		nullable: make(map[grammar.Symbol]bool),
	}
}

// Get returns FIRST(symbol), or an empty set if unknown.
func (fs *FirstSets) Get(sym grammar.Symbol) map[token.Class]bool {
	if s, ok := fs.sets[sym]; ok {
		return s
	}
	return map[token.Class]bool{}
}

// IsNullable reports whether a non-terminal can derive the empty string.
func (fs *FirstSets) IsNullable(sym grammar.Symbol) bool { return fs.nullable[sym] }

// ComputeFirstSets computes FIRST sets for every non-terminal in g by
// fixpoint iteration.
func ComputeFirstSets(g grammar.Grammar) *FirstSets {
	fs := newFirstSets()

	changed := true
	for changed {
		changed = false
		for sym, rule := range g.Productions {
			before := len(fs.sets[sym])
			beforeNullable := fs.nullable[sym]

			first, nullable := fs.computeFirstOfRule(rule)
			if fs.sets[sym] == nil {
				fs.sets[sym] = make(map[token.Class]bool)
			}
			for t := range first {
				fs.sets[sym][t] = true
			}
			if nullable {
				fs.nullable[sym] = true
			}

			if len(fs.sets[sym]) != before || fs.nullable[sym] != beforeNullable {
				changed = true
			}
		}
	}

	return fs
}

// computeFirstOfRule computes FIRST and nullability for an arbitrary rule,
// consulting (possibly still-growing) non-terminal FIRST sets.
func (fs *FirstSets) computeFirstOfRule(r grammar.Rule) (map[token.Class]bool, bool) {
	result := make(map[token.Class]bool)

	switch p := r.(type) {
	case grammar.Terminal:
		result[p.Class] = true
		return result, false

	case grammar.NonTerminal:
		for t := range fs.Get(p.Symbol) {
			result[t] = true
		}
		return result, fs.IsNullable(p.Symbol)

	case grammar.ActionRule:
		return result, true

	case grammar.Sequence:
		nullable := true
		for _, elem := range p {
			first, elemNullable := fs.computeFirstOfRule(elem)
			for t := range first {
				result[t] = true
			}
			if !elemNullable {
				nullable = false
				break
			}
		}
		return result, nullable

	case grammar.Alternative:
		nullable := false
		for _, alt := range p {
			first, altNullable := fs.computeFirstOfRule(alt)
			for t := range first {
				result[t] = true
			}
			if altNullable {
				nullable = true
			}
		}
		return result, nullable

	case grammar.Optional:
		first, _ := fs.computeFirstOfRule(p.Inner)
		for t := range first {
			result[t] = true
		}
		return result, true

	case grammar.ZeroOrMore:
		first, _ := fs.computeFirstOfRule(p.Inner)
		for t := range first {
			result[t] = true
		}
		return result, true

	case grammar.OneOrMore:
		first, innerNullable := fs.computeFirstOfRule(p.Inner)
		for t := range first {
			result[t] = true
		}
		return result, innerNullable

	default:
		return result, false
	}
}
