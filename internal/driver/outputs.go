package driver

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/arboretic/moonc/internal/ast"
	"github.com/arboretic/moonc/internal/compiler"
	"github.com/arboretic/moonc/internal/diag"
	"github.com/arboretic/moonc/internal/lexer"
	"github.com/arboretic/moonc/internal/token"
)

// writeOutputs writes every sibling file spec §6 names for one compiled
// unit, stem being the output path with no extension (e.g. ".../foo" for
// "foo.outlextokens", "foo.moon", ...). A pass's own failure never stops
// the later, independent output files from being written (spec §7).
func writeOutputs(stem string, r compiler.Result) error {
	writers := []struct {
		ext string
		fn  func(path string) error
	}{
		{"outlextokens", func(p string) error { return writeTokens(p, r.Tokens) }},
		{"outlexerrors", func(p string) error { return writeLexErrors(p, r.LexErrors) }},
		{"outderivation", func(p string) error { return writeDerivation(p, r.Derivation) }},
		{"outsyntaxerrors", func(p string) error { return writeDiags(p, r.SyntaxDiags) }},
		{"outast", func(p string) error { return writeAST(p, r.Root) }},
		{"outsymboltables", func(p string) error { return writeSymbolTables(p, r.Root) }},
		{"outsemanticerrors", func(p string) error { return writeSemanticErrors(p, r.SemDiags, r.NoMain) }},
		{"moon", func(p string) error { return writeText(p, r.Assembly) }},
	}

	var firstErr error
	for _, w := range writers {
		if err := w.fn(stem + "." + w.ext); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "writing .%s", w.ext)
		}
	}
	return firstErr
}

func writeText(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

// writeTokens groups every token's "[<location>, <class>, <lexeme>]"
// rendering (token.Token.String) onto one output line per source line
// (spec §6 outlextokens).
func writeTokens(path string, toks []token.Token) error {
	var b strings.Builder
	line := -1
	for _, t := range toks {
		if t.Class == token.EOF {
			continue
		}
		if t.Loc.Line != line {
			if line != -1 {
				b.WriteByte('\n')
			}
			line = t.Loc.Line
		} else {
			b.WriteByte(' ')
		}
		b.WriteString(t.String())
	}
	if line != -1 {
		b.WriteByte('\n')
	}
	return writeText(path, b.String())
}

// writeLexErrors writes one line per invalid token: kind, escaped lexeme,
// line number (spec §6 outlexerrors).
func writeLexErrors(path string, errs []lexer.LexError) error {
	var b strings.Builder
	for _, e := range errs {
		lexeme := strings.NewReplacer("\n", "\\n", "\r", "\\r").Replace(e.Lexeme)
		fmt.Fprintf(&b, "%s, %s, %d\n", e.Kind, lexeme, e.Line)
	}
	return writeText(path, b.String())
}

// writeDerivation writes the canonical leftmost-derivation trace, one line
// per production application (spec §6 outderivation), already formatted by
// the parser the way original_source's tracer does.
func writeDerivation(path string, lines []string) error {
	if len(lines) == 0 {
		return writeText(path, "")
	}
	return writeText(path, strings.Join(lines, "\n")+"\n")
}

// writeDiags writes diagnostics sorted by location (spec §6 outsyntaxerrors).
func writeDiags(path string, diags *diag.Bag) error {
	if diags == nil {
		return writeText(path, "")
	}
	var b strings.Builder
	for _, d := range diags.Sorted() {
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	return writeText(path, b.String())
}

// writeSemanticErrors writes errors sorted by location, followed by
// warnings sorted by location (SPEC_FULL.md §4's "warnings channel
// distinct from errors" supplement, spec §7's "missing main" case folded in
// as a distinguished leading diagnostic since it carries no single token).
func writeSemanticErrors(path string, diags *diag.Bag, noMain bool) error {
	var b strings.Builder
	if noMain {
		b.WriteString("error: no main() function declared\n")
	}
	if diags != nil {
		errs, warns := splitBySeverity(diags)
		for _, d := range errs {
			b.WriteString(d.String())
			b.WriteByte('\n')
		}
		for _, d := range warns {
			b.WriteString(d.String())
			b.WriteByte('\n')
		}
	}
	return writeText(path, b.String())
}

func splitBySeverity(diags *diag.Bag) (errs, warns []diag.Diagnostic) {
	for _, d := range diags.Sorted() {
		if d.Severity == diag.SevWarning {
			warns = append(warns, d)
		} else {
			errs = append(errs, d)
		}
	}
	return errs, warns
}

// writeAST renders the AST as Graphviz DOT with record-shaped nodes (spec
// §6 outast), following original_source/lib/src/ast/nodes.rs's
// string_tree shape: one "id[label=\"name\"]" line per node in pre-order,
// plus a "parent -> id" edge line for every non-root node. The graph name
// carries a uuid suffix (SPEC_FULL.md §3) so multiple .src files compiled
// from one directory produce distinguishable graphs.
func writeAST(path string, root *ast.Node) error {
	if root == nil {
		return writeText(path, "")
	}
	var body strings.Builder
	dotNode(&body, root)

	out := fmt.Sprintf(
		"digraph AST_%s {\nnode [shape=record];\nnode [fontname=Sans];charset=\"UTF-8\" splines=true splines=spline rankdir =LR\n%s}\n",
		uuid.New().String(), body.String(),
	)
	return writeText(path, out)
}

func dotNode(b *strings.Builder, n *ast.Node) {
	name := strings.ReplaceAll(dotLabel(n), "\"", "'")
	fmt.Fprintf(b, "%d[label=\"%s\"]\n", n.ID, name)
	if n.Parent != nil {
		fmt.Fprintf(b, "%d -> %d\n", n.Parent.ID, n.ID)
	}
	for _, c := range n.Children {
		dotNode(b, c)
	}
}

func dotLabel(n *ast.Node) string {
	switch n.Kind {
	case ast.VLeaf:
		if n.Token.Lexeme != "" {
			return fmt.Sprintf("%s(%s)", n.Token.Class, n.Token.Lexeme)
		}
		return n.Token.Class.String()
	case ast.VTree:
		return n.Tree.String()
	default:
		return "MARKER"
	}
}

// writeSymbolTables pretty-prints every symbol table reachable from the
// global table in an ASCII column layout (spec §6 outsymboltables),
// entries sorted by offset then key per internal/ast's own documented
// display convention.
func writeSymbolTables(path string, root *ast.Node) error {
	if root == nil || root.Symbols == nil {
		return writeText(path, "")
	}
	var b strings.Builder
	dumpTable(&b, "global", root.Symbols, 0)
	return writeText(path, b.String())
}

func dumpTable(b *strings.Builder, name string, table *ast.SymbolTable, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%sTable: %s\n", indent, name)

	tw := tabwriter.NewWriter(b, 0, 2, 2, ' ', 0)
	fmt.Fprintf(tw, "%sname\ttype\toffset\tsize\tvisibility\n", indent)
	for _, k := range table.SortedKeys() {
		sd, _ := table.Get(k)
		fmt.Fprintf(tw, "%s%s\t%s\t%d\t%d\t%s\n", indent, k, sd.VarType.String(), sd.Offset, sd.Size, sd.Visibility)
	}
	tw.Flush()

	for _, k := range table.SortedKeys() {
		sd, _ := table.Get(k)
		if sd.Nested != nil {
			dumpTable(b, name+"::"+k, sd.Nested, depth+1)
		}
	}
}
