package ll1

import (
	"github.com/arboretic/moonc/internal/grammar"
	"github.com/arboretic/moonc/internal/token"
)

// FollowSets holds FOLLOW(A) for every non-terminal A.
type FollowSets struct {
	sets map[grammar.Symbol]map[token.Class]bool
}

func (fo *FollowSets) Get(sym grammar.Symbol) map[token.Class]bool {
	if s, ok := fo.sets[sym]; ok {
		return s
	}
	return map[token.Class]bool{}
}

func (fo *FollowSets) add(sym grammar.Symbol, t token.Class) bool {
	if fo.sets[sym] == nil {
		fo.sets[sym] = make(map[token.Class]bool)
	}
	if fo.sets[sym][t] {
		return false
	}
	fo.sets[sym][t] = true
	return true
}

func (fo *FollowSets) addAll(sym grammar.Symbol, ts map[token.Class]bool) bool {
	changed := false
	for t := range ts {
		if fo.add(sym, t) {
			changed = true
		}
	}
	return changed
}

// ComputeFollowSets computes FOLLOW sets for every non-terminal by fixpoint
// iteration (spec §4.2). start's FOLLOW set always contains token.EOF.
func ComputeFollowSets(g grammar.Grammar, fs *FirstSets) *FollowSets {
	fo := &FollowSets{sets: make(map[grammar.Symbol]map[token.Class]bool)}
	fo.add(g.Start, token.EOF)

	changed := true
	for changed {
		changed = false
		for sym, rule := range g.Productions {
			if fo.walkRule(sym, rule, fs, fo.Get(sym)) {
				changed = true
			}
		}
	}
	return fo
}

// walkRule scans rule (the production body for sym) for every adjacent pair
// of symbols, adding FIRST(next) to FOLLOW(cur) for non-terminal cur, and
// propagating followOfSym (FOLLOW of the enclosing non-terminal) to any
// non-terminal that can end the production.
func (fo *FollowSets) walkRule(sym grammar.Symbol, rule grammar.Rule, fs *FirstSets, followOfSym map[token.Class]bool) bool {
	changed := false
	switch p := rule.(type) {
	case grammar.Sequence:
		for i, elem := range p {
			nt, isNonTerm := elem.(grammar.NonTerminal)
			if !isNonTerm {
				if fo.walkRule(sym, elem, fs, followOfSym) {
					changed = true
				}
				continue
			}
			rest := grammar.Sequence(p[i+1:])
			restFirst, restNullable := firstOfSeq(rest, fs)
			if fo.addAll(nt.Symbol, restFirst) {
				changed = true
			}
			if restNullable {
				if fo.addAll(nt.Symbol, followOfSym) {
					changed = true
				}
			}
		}
	case grammar.Alternative:
		for _, alt := range p {
			if fo.walkRule(sym, alt, fs, followOfSym) {
				changed = true
			}
		}
	case grammar.Optional:
		if fo.walkRule(sym, p.Inner, fs, followOfSym) {
			changed = true
		}
	case grammar.ZeroOrMore:
		if fo.walkRule(sym, p.Inner, fs, followOfSym) {
			changed = true
		}
		if nt, ok := p.Inner.(grammar.NonTerminal); ok {
			if fo.addAll(nt.Symbol, followOfSym) {
				changed = true
			}
		}
	case grammar.OneOrMore:
		if fo.walkRule(sym, p.Inner, fs, followOfSym) {
			changed = true
		}
		if nt, ok := p.Inner.(grammar.NonTerminal); ok {
			if fo.addAll(nt.Symbol, followOfSym) {
				changed = true
			}
		}
	case grammar.NonTerminal:
		if fo.addAll(p.Symbol, followOfSym) {
			changed = true
		}
	}
	return changed
}

// firstOfSeq computes FIRST of a slice of rules treated as a sequence, using
// already-computed non-terminal FIRST/nullable sets.
func firstOfSeq(seq grammar.Sequence, fs *FirstSets) (map[token.Class]bool, bool) {
	result := make(map[token.Class]bool)
	nullable := true
	for _, elem := range seq {
		first, elemNullable := firstOfElem(elem, fs)
		for t := range first {
			result[t] = true
		}
		if !elemNullable {
			nullable = false
			break
		}
	}
	return result, nullable
}

func firstOfElem(r grammar.Rule, fs *FirstSets) (map[token.Class]bool, bool) {
	switch p := r.(type) {
	case grammar.Terminal:
		return map[token.Class]bool{p.Class: true}, false
	case grammar.NonTerminal:
		return fs.Get(p.Symbol), fs.IsNullable(p.Symbol)
	case grammar.ActionRule:
		return map[token.Class]bool{}, true
	case grammar.Sequence:
		return firstOfSeq(p, fs)
	case grammar.Alternative:
		result := make(map[token.Class]bool)
		nullable := false
		for _, alt := range p {
			first, altNullable := firstOfElem(alt, fs)
			for t := range first {
				result[t] = true
			}
			if altNullable {
				nullable = true
			}
		}
		return result, nullable
	case grammar.Optional:
		first, _ := firstOfElem(p.Inner, fs)
		return first, true
	case grammar.ZeroOrMore:
		first, _ := firstOfElem(p.Inner, fs)
		return first, true
	case grammar.OneOrMore:
		return firstOfElem(p.Inner, fs)
	default:
		return map[token.Class]bool{}, false
	}
}
