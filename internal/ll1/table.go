package ll1

import (
	"fmt"

	"github.com/arboretic/moonc/internal/action"
	"github.com/arboretic/moonc/internal/grammar"
	"github.com/arboretic/moonc/internal/token"
)

// StackSymbol is one element of a flattened production, the shape the
// predictive parser's symbol stack is actually made of (spec §4.3): either a
// terminal to match, a non-terminal to expand via another table lookup, or
// an inline semantic action to run immediately.
type StackSymbol struct {
	IsTerminal    bool
	Terminal      token.Class
	IsNonTerminal bool
	NonTerm       grammar.Symbol
	IsAction      bool
	ActionName    string
	Act           action.Action
}

func (s StackSymbol) String() string {
	switch {
	case s.IsTerminal:
		return s.Terminal.String()
	case s.IsNonTerminal:
		return string(s.NonTerm)
	case s.IsAction:
		return "{" + s.ActionName + "}"
	default:
		return "?"
	}
}

func termSym(c token.Class) StackSymbol       { return StackSymbol{IsTerminal: true, Terminal: c} }
func nonTermSym(s grammar.Symbol) StackSymbol { return StackSymbol{IsNonTerminal: true, NonTerm: s} }
func actionSym(name string, act action.Action) StackSymbol {
	return StackSymbol{IsAction: true, ActionName: name, Act: act}
}

// tableKey indexes one parse-table cell.
type tableKey struct {
	NonTerm  grammar.Symbol
	Terminal token.Class
}

// Table is the production table spec §4.2 describes: (non-terminal,
// terminal) -> ordered sequence of grammar symbols (and actions) to push.
type Table struct {
	cells map[tableKey][]StackSymbol
	// Conflicts records (non-terminal, terminal) pairs where two different
	// productions both claimed the cell — a grammar-authoring bug, never a
	// user-facing error, surfaced so internal/language tests fail loudly.
	Conflicts []string
}

func newTable() *Table {
	return &Table{cells: make(map[tableKey][]StackSymbol)}
}

// Lookup returns the flattened production for (nonTerm, lookahead), or false
// if the cell is empty (a syntax error at the caller's position).
func (t *Table) Lookup(nonTerm grammar.Symbol, lookahead token.Class) ([]StackSymbol, bool) {
	seq, ok := t.cells[tableKey{nonTerm, lookahead}]
	return seq, ok
}

func (t *Table) addEntry(nonTerm grammar.Symbol, term token.Class, seq []StackSymbol) {
	key := tableKey{nonTerm, term}
	if _, exists := t.cells[key]; exists {
		t.Conflicts = append(t.Conflicts, fmt.Sprintf("table conflict at (%s, %s)", nonTerm, term))
		return
	}
	t.cells[key] = seq
}

// BuildParseTable builds the complete LL(1) production table for g.
func BuildParseTable(g grammar.Grammar) (*Table, *FirstSets, *FollowSets) {
	first := ComputeFirstSets(g)
	follow := ComputeFollowSets(g, first)
	t := newTable()

	for nonTerm, rule := range g.Productions {
		addProduction(t, nonTerm, rule, first, follow)
	}
	return t, first, follow
}

// addProduction walks rule (the full right-hand side registered for
// nonTerm) and, for each terminal in FIRST (and, if nullable, FOLLOW),
// installs the flattened symbol sequence into the table.
func addProduction(t *Table, nonTerm grammar.Symbol, rule grammar.Rule, first *FirstSets, follow *FollowSets) {
	switch p := rule.(type) {
	case grammar.Alternative:
		for _, alt := range p {
			addProduction(t, nonTerm, alt, first, follow)
		}
	case grammar.Optional:
		innerFirst, _ := first.computeFirstOfRule(p.Inner)
		flat := Flatten(p.Inner)
		for term := range innerFirst {
			t.addEntry(nonTerm, term, flat)
		}
		for term := range follow.Get(nonTerm) {
			t.addEntry(nonTerm, term, nil)
		}
	case grammar.ZeroOrMore:
		innerFirst, _ := first.computeFirstOfRule(p.Inner)
		flat := Flatten(p.Inner)
		for term := range innerFirst {
			t.addEntry(nonTerm, term, flat)
		}
		for term := range follow.Get(nonTerm) {
			t.addEntry(nonTerm, term, nil)
		}
	case grammar.OneOrMore:
		innerFirst, _ := first.computeFirstOfRule(p.Inner)
		flat := Flatten(p.Inner)
		for term := range innerFirst {
			t.addEntry(nonTerm, term, flat)
		}
	default:
		ruleFirst, nullable := first.computeFirstOfRule(rule)
		flat := Flatten(rule)
		for term := range ruleFirst {
			t.addEntry(nonTerm, term, flat)
		}
		if nullable {
			for term := range follow.Get(nonTerm) {
				t.addEntry(nonTerm, term, flat)
			}
		}
	}
}

// Flatten resolves a chosen production body into the ordered []StackSymbol
// the parser pushes onto its symbol stack. By grammar-authoring discipline
// (internal/language), Optional/ZeroOrMore/OneOrMore only ever appear as the
// top-level rule bound to some non-terminal — never nested inside a
// Sequence — so Flatten only has to linearize Terminal/NonTerminal/
// ActionRule/Sequence/Alternative-of-one-already-chosen.
func Flatten(r grammar.Rule) []StackSymbol {
	switch p := r.(type) {
	case grammar.Terminal:
		return []StackSymbol{termSym(p.Class)}
	case grammar.NonTerminal:
		return []StackSymbol{nonTermSym(p.Symbol)}
	case grammar.ActionRule:
		return []StackSymbol{actionSym(p.Name, p.Act)}
	case grammar.Sequence:
		var out []StackSymbol
		for _, elem := range p {
			out = append(out, Flatten(elem)...)
		}
		return out
	case grammar.Alternative:
		if len(p) != 1 {
			panic("Flatten: Alternative must be resolved to a single branch before flattening")
		}
		return Flatten(p[0])
	case grammar.Optional, grammar.ZeroOrMore, grammar.OneOrMore:
		panic("Flatten: Optional/ZeroOrMore/OneOrMore must be the top-level rule of a named non-terminal, never nested in a Sequence")
	default:
		return nil
	}
}
