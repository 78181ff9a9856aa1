// Package diag is the shared diagnostic accumulator every non-internal pass
// (parser, resolver, type checker, code generator) reports into (spec §7:
// "all non-internal errors are accumulated into a per-pass vector annotated
// with token and location... the driver aggregates across passes, sorts by
// location"). Passes never short-circuit on the first diagnostic.
package diag

import (
	"fmt"
	"sort"

	"github.com/arboretic/moonc/internal/token"
)

// Severity distinguishes a hard error from a warning (spec §7: "Warning:
// overload of an existing function name with a different signature" is the
// only warning kind today).
type Severity int

const (
	SevError Severity = iota
	SevWarning
)

func (s Severity) String() string {
	if s == SevWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one reported problem, tied to the offending token so the
// driver can sort the final output file by source location.
type Diagnostic struct {
	Severity Severity
	Message  string
	Token    token.Token
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Token.Loc, d.Severity, d.Message)
}

// Bag collects diagnostics for one pass. Its zero value is ready to use.
type Bag struct {
	items []Diagnostic
}

// Error appends a SevError diagnostic.
func (b *Bag) Error(tok token.Token, format string, args ...any) {
	b.items = append(b.items, Diagnostic{Severity: SevError, Message: fmt.Sprintf(format, args...), Token: tok})
}

// Warning appends a SevWarning diagnostic.
func (b *Bag) Warning(tok token.Token, format string, args ...any) {
	b.items = append(b.items, Diagnostic{Severity: SevWarning, Message: fmt.Sprintf(format, args...), Token: tok})
}

// Append merges another bag's items in, used when a pass composes
// sub-walks (globals walk, then per-function walk) that each build their
// own bag.
func (b *Bag) Append(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
}

// HasErrors reports whether any SevError diagnostic was recorded; warnings
// alone never fail a pass.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == SevError {
			return true
		}
	}
	return false
}

// Items returns the accumulated diagnostics in recording order.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Sorted returns a copy of the accumulated diagnostics ordered by source
// location, the order the driver's error output files require.
func (b *Bag) Sorted() []Diagnostic {
	out := make([]Diagnostic, len(b.items))
	copy(out, b.items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Token.Loc.Less(out[j].Token.Loc)
	})
	return out
}
