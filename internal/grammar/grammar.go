// Package grammar defines the syntactic-grammar value types used to build
// the LL(1) production table (spec §4.2). Productions are expressed with a
// small EBNF-like combinator set (Sequence/Alternative/Optional/
// ZeroOrMore/OneOrMore) so FIRST/FOLLOW/table construction can be computed
// generically (internal/ll1) rather than hand-tabulated; a table cell still
// resolves to a flat ordered sequence of grammar symbols at parse time, the
// contract spec §3 requires of the production table.
package grammar

import (
	"strings"

	"github.com/arboretic/moonc/internal/action"
	"github.com/arboretic/moonc/internal/token"
)

// Symbol names a non-terminal.
type Symbol string

// Rule is the marker interface every production-rule shape implements.
type Rule interface {
	isRule()
}

// Terminal matches one token.Class.
type Terminal struct{ Class token.Class }

func (Terminal) isRule() {}

// NonTerminal references another rule by name.
type NonTerminal struct{ Symbol Symbol }

func (NonTerminal) isRule() {}

// ActionRule is a semantic action placed inline in a production — the
// parser executes it immediately when it is popped, without consuming
// lookahead (spec §4.3 step 3).
type ActionRule struct {
	Name string
	Act  action.Action
}

func (ActionRule) isRule() {}

// Sequence matches its elements in order.
type Sequence []Rule

func (Sequence) isRule() {}

// Alternative matches exactly one of its elements; the table decides which
// at build time based on FIRST/FOLLOW.
type Alternative []Rule

func (Alternative) isRule() {}

// Optional matches zero or one occurrence.
type Optional struct{ Inner Rule }

func (Optional) isRule() {}

// ZeroOrMore matches zero or more repetitions.
type ZeroOrMore struct{ Inner Rule }

func (ZeroOrMore) isRule() {}

// OneOrMore matches one or more repetitions.
type OneOrMore struct{ Inner Rule }

func (OneOrMore) isRule() {}

// Grammar is a complete syntactic grammar: named productions plus a start
// symbol (spec §4.2).
type Grammar struct {
	Productions map[Symbol]Rule
	Start       Symbol
}

// Format renders a rule as a short human-readable string, used by
// internal/ll1's debug printers and derivation/error messages.
func Format(r Rule) string {
	switch p := r.(type) {
	case Terminal:
		return p.Class.String()
	case NonTerminal:
		return string(p.Symbol)
	case ActionRule:
		return "{" + p.Name + "}"
	case Sequence:
		if len(p) == 0 {
			return "ε"
		}
		parts := make([]string, len(p))
		for i, e := range p {
			parts[i] = Format(e)
		}
		return strings.Join(parts, " ")
	case Alternative:
		parts := make([]string, len(p))
		for i, e := range p {
			parts[i] = Format(e)
		}
		return "(" + strings.Join(parts, " | ") + ")"
	case Optional:
		return Format(p.Inner) + "?"
	case ZeroOrMore:
		return Format(p.Inner) + "*"
	case OneOrMore:
		return Format(p.Inner) + "+"
	default:
		return "?"
	}
}
