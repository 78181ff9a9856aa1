package driver_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arboretic/moonc/internal/compiler"
	"github.com/arboretic/moonc/internal/config"
	"github.com/arboretic/moonc/internal/driver"
)

func newDriver(t *testing.T) *driver.Driver {
	t.Helper()
	tables, err := compiler.NewTables()
	require.NoError(t, err)
	return driver.New(tables, zap.NewNop().Sugar(), config.Config{})
}

func writeSrc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunSingleFileWritesAllSiblingOutputs(t *testing.T) {
	dir := t.TempDir()
	path := writeSrc(t, dir, "ok.src", `function main ( ) => void {
		localvar x : integer ;
		x := 2 + 3 ;
		write ( x ) ;
	} ;`)

	d := newDriver(t)
	require.NoError(t, d.Run(path))

	for _, ext := range []string{
		"outlextokens", "outlexerrors", "outderivation", "outsyntaxerrors",
		"outast", "outsymboltables", "outsemanticerrors", "moon",
	} {
		sibling := filepath.Join(dir, "ok."+ext)
		_, err := os.Stat(sibling)
		assert.NoError(t, err, "expected sibling file %s", sibling)
	}

	asm, err := os.ReadFile(filepath.Join(dir, "ok.moon"))
	require.NoError(t, err)
	assert.Contains(t, string(asm), "align\n")
	assert.Contains(t, string(asm), "jl r15, intstr\n")
}

func TestRunDirectoryCompilesEverySrcFile(t *testing.T) {
	dir := t.TempDir()
	writeSrc(t, dir, "a.src", `function main ( ) => void { } ;`)
	writeSrc(t, dir, "b.src", `function main ( ) => void { } ;`)
	writeSrc(t, dir, "ignored.txt", `not a source file`)

	d := newDriver(t)
	require.NoError(t, d.Run(dir))

	_, errA := os.Stat(filepath.Join(dir, "a.moon"))
	_, errB := os.Stat(filepath.Join(dir, "b.moon"))
	assert.NoError(t, errA)
	assert.NoError(t, errB)
}

func TestRunMissingPathFails(t *testing.T) {
	d := newDriver(t)
	err := d.Run(filepath.Join(t.TempDir(), "nope.src"))
	assert.Error(t, err)
}

func TestRunWritesSemanticErrorsForMissingMain(t *testing.T) {
	dir := t.TempDir()
	path := writeSrc(t, dir, "nomain.src", `function f ( ) => void { } ;`)

	d := newDriver(t)
	require.NoError(t, d.Run(path))

	content, err := os.ReadFile(filepath.Join(dir, "nomain.outsemanticerrors"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "no main()")
}
