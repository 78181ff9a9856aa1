// Package parser implements the table-driven LL(1) predictive parser (spec
// §4.3): a stack of grammar symbols driven by a precomputed production
// table, with an interleaved node-build stack for semantic actions and
// panic-mode error recovery.
package parser

import (
	"fmt"
	"strings"

	"github.com/arboretic/moonc/internal/action"
	"github.com/arboretic/moonc/internal/ast"
	"github.com/arboretic/moonc/internal/diag"
	"github.com/arboretic/moonc/internal/grammar"
	"github.com/arboretic/moonc/internal/ll1"
	"github.com/arboretic/moonc/internal/token"
)

// Parser holds the constant, precomputed grammar artifacts (spec §4.2: "the
// tables are effectively constant data emitted once at startup") and the id
// allocator scoped to one compilation context. A single Parser can Parse
// many token streams.
type Parser struct {
	table  *ll1.Table
	first  *ll1.FirstSets
	follow *ll1.FollowSets
	start  grammar.Symbol
	ids    *ast.IDAllocator
}

// New binds a precomputed table/FIRST/FOLLOW set to one id allocator.
func New(g grammar.Grammar, table *ll1.Table, first *ll1.FirstSets, follow *ll1.FollowSets, ids *ast.IDAllocator) *Parser {
	return &Parser{table: table, first: first, follow: follow, start: g.Start, ids: ids}
}

// Result is the predictive parser's output (spec §4.3's "on success,
// (derivation log, error list, ast-stack whose first element is the Program
// root)"). Root may be non-nil even when Diags reports errors: the driver
// writes whatever partial artifacts exist (spec §7).
type Result struct {
	Root       *ast.Node
	Derivation []string
	Diags      *diag.Bag
}

// Parse runs the predictive parser over tokens, a complete token stream for
// one source file (including its trailing EOF token). Comment tokens are
// filtered before any stack operation; `self` is aliased to a generic
// identifier for table lookups and terminal matching only — the pushed
// Leaf's token keeps its original lexeme and location.
func (p *Parser) Parse(tokens []token.Token) Result {
	r := &run{
		p:         p,
		tokens:    filterComments(tokens),
		nodeStack: action.NewStack(p.ids),
		diags:     &diag.Bag{},
		stack:     []ll1.StackSymbol{{IsNonTerminal: true, NonTerm: p.start}},
	}
	r.execute()

	root, _ := r.nodeStack.Result()
	return Result{Root: root, Derivation: r.derivation, Diags: r.diags}
}

func filterComments(tokens []token.Token) []token.Token {
	out := make([]token.Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Class == token.InlineCmt || t.Class == token.BlockCmt {
			continue
		}
		out = append(out, t)
	}
	return out
}

// effectiveClass aliases the self keyword to a generic identifier for
// grammar-matching purposes (spec §4.3 pre-filtering).
func effectiveClass(c token.Class) token.Class {
	if c == token.KwSelf {
		return token.Id
	}
	return c
}

// run is one Parse invocation's mutable state.
type run struct {
	p      *Parser
	tokens []token.Token
	pos    int

	stack       []ll1.StackSymbol
	nodeStack   *action.Stack
	lastMatched action.LastMatched

	derivation []string
	diags      *diag.Bag
}

func (r *run) lookahead() token.Token {
	if r.pos >= len(r.tokens) {
		return token.Token{Class: token.EOF}
	}
	return r.tokens[r.pos]
}

func (r *run) advance() token.Token {
	if r.pos < len(r.tokens)-1 {
		r.pos++
	} else {
		r.pos = len(r.tokens)
	}
	return r.lookahead()
}

// execute runs the parser's stepping loop to termination: an empty stack
// (success) or a fatal recovery failure (end-of-input while skipping).
func (r *run) execute() {
	for len(r.stack) > 0 {
		if !r.step() {
			return
		}
	}
}

func (r *run) top() ll1.StackSymbol {
	return r.stack[len(r.stack)-1]
}

func (r *run) pop() {
	r.stack = r.stack[:len(r.stack)-1]
}

// step performs one parser transition (spec §4.3 steps 1-3). It returns
// false only when recovery hits end-of-input and parsing cannot continue.
func (r *run) step() bool {
	sym := r.top()

	switch {
	case sym.IsAction:
		r.pop()
		sym.Act(r.nodeStack, r.lastMatched)
		return true

	case sym.IsTerminal:
		la := r.lookahead()
		if effectiveClass(la.Class) == sym.Terminal {
			r.lastMatched = action.LastMatched{IsTerminal: true, Terminal: sym.Terminal, Token: la}
			r.pop()
			r.advance()
			return true
		}
		r.diags.Error(la, "unexpected %s, expected %s", describeToken(la), sym.Terminal)
		r.pop()
		return true

	case sym.IsNonTerminal:
		la := r.lookahead()
		seq, ok := r.p.table.Lookup(sym.NonTerm, effectiveClass(la.Class))
		if ok {
			r.pop()
			r.derivation = append(r.derivation, r.derivationLine(sym.NonTerm, seq))
			for i := len(seq) - 1; i >= 0; i-- {
				r.stack = append(r.stack, seq[i])
			}
			return true
		}
		return r.recover(sym.NonTerm, la)

	default:
		panic("parser: stack symbol is neither terminal, non-terminal, nor action")
	}
}

// recover implements spec §4.3's panic-mode algorithm for a failed lookup
// on non-terminal n at lookahead la.
func (r *run) recover(n grammar.Symbol, la token.Token) bool {
	r.diags.Error(la, "unexpected %s while parsing %s", describeToken(la), n)

	follow := r.p.follow.Get(n)
	if la.Class == token.EOF || follow[effectiveClass(la.Class)] {
		r.pop()
		return true
	}

	first := r.p.first.Get(n)
	for {
		cls := effectiveClass(la.Class)
		if first[cls] || follow[cls] {
			return true
		}
		if la.Class == token.EOF {
			r.diags.Error(la, "unexpected end of input while recovering in %s", n)
			return false
		}
		la = r.advance()
	}
}

func describeToken(t token.Token) string {
	if t.Class == token.EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q (%s)", t.Lexeme, t.Class)
}

// derivationLine renders one canonical leftmost-derivation trace entry
// (spec §6 outderivation), matching the original_source tracer's
// "N -> symbols" shape.
func (r *run) derivationLine(n grammar.Symbol, seq []ll1.StackSymbol) string {
	if len(seq) == 0 {
		return fmt.Sprintf("%s -> ε", n)
	}
	parts := make([]string, len(seq))
	for i, s := range seq {
		parts[i] = s.String()
	}
	return fmt.Sprintf("%s -> %s", n, strings.Join(parts, " "))
}
