// Package compiler orchestrates one source file through the full pipeline
// (spec §2): lex, parse, resolve, type-check, generate code. It owns no I/O;
// internal/driver reads the source text and writes the result's fields out
// to the sibling output files spec §6 names.
package compiler

import (
	"github.com/pkg/errors"

	"github.com/arboretic/moonc/internal/ast"
	"github.com/arboretic/moonc/internal/codegen"
	"github.com/arboretic/moonc/internal/diag"
	"github.com/arboretic/moonc/internal/language"
	"github.com/arboretic/moonc/internal/lexer"
	"github.com/arboretic/moonc/internal/ll1"
	"github.com/arboretic/moonc/internal/parser"
	"github.com/arboretic/moonc/internal/resolver"
	"github.com/arboretic/moonc/internal/token"
	"github.com/arboretic/moonc/internal/typecheck"
)

// Tables bundles the parse table and FIRST/FOLLOW sets that Compile reuses
// across every file it is given — spec §9's "materialize them once at
// startup" applied at the driver's granularity rather than per file. The
// table's cells hold the semantic actions of the grammar built in
// NewTables, so those actions, and the id allocator they close over, are
// shared by every compilation that uses the same Tables.
type Tables struct {
	Table  *ll1.Table
	First  *ll1.FirstSets
	Follow *ll1.FollowSets
}

// NewTables builds the grammar and its LL(1) artifacts once. Conflicts in
// the generated table are an internal invariant failure: the grammar is
// fixed at compile time, so a conflict here can only mean a bug in this
// repo's grammar construction, not a malformed input.
func NewTables() (*Tables, error) {
	ids := ast.NewIDAllocator()
	g := language.Build(ids)
	table, first, follow := ll1.BuildParseTable(g)
	if len(table.Conflicts) != 0 {
		return nil, errors.Errorf("grammar produced %d LL(1) table conflicts: %v", len(table.Conflicts), table.Conflicts)
	}
	return &Tables{Table: table, First: first, Follow: follow}, nil
}

// Result is everything one source file's compilation produced, partial
// results included: spec §7 requires the driver to write whatever exists
// even when a pass reported errors.
type Result struct {
	Tokens      []token.Token
	LexErrors   []lexer.LexError
	Derivation  []string
	Root        *ast.Node
	SyntaxDiags *diag.Bag
	SemDiags    *diag.Bag
	NoMain      bool
	Assembly    string
}

// Compile runs the full pipeline over src. Node ids come from the allocator
// the table's actions were built with in NewTables, so they stay unique
// within one compilation but keep counting up across files compiled with
// the same Tables rather than restarting. It never returns an error itself — every failure
// mode the spec recognizes (lexical, syntactic, semantic, missing main) is
// recorded in the returned Result instead, so the driver can write partial
// artifacts regardless of how far the pipeline got.
func Compile(tables *Tables, src string) Result {
	var res Result

	toks, lexErrs := lexer.New(src).Tokenize()
	res.Tokens = toks
	res.LexErrors = lexErrs

	ids := ast.NewIDAllocator()
	g := language.Build(ids)
	p := parser.New(g, tables.Table, tables.First, tables.Follow, ids)
	parseResult := p.Parse(toks)
	res.Derivation = parseResult.Derivation
	res.Root = parseResult.Root
	res.SyntaxDiags = parseResult.Diags

	if res.Root == nil {
		res.SemDiags = &diag.Bag{}
		return res
	}

	semDiags, err := resolver.Resolve(res.Root)
	res.SemDiags = semDiags
	if err != nil {
		if errors.Is(err, resolver.ErrNoMainFunction) {
			res.NoMain = true
		}
		return res
	}

	tcDiags := typecheck.Check(res.Root)
	res.SemDiags.Append(tcDiags)
	if res.SemDiags.HasErrors() {
		return res
	}

	asm, cgDiags := codegen.Generate(res.Root)
	res.SemDiags.Append(cgDiags)
	res.Assembly = asm
	return res
}
