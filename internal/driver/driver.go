// Package driver is the compiler's file-system boundary (spec §6): it
// discovers .src input files, runs each through internal/compiler, and
// writes the eight sibling output files spec §6 names, writing whatever
// artifacts a pass managed to produce even when an earlier pass reported
// errors (spec §7).
package driver

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/arboretic/moonc/internal/compiler"
	"github.com/arboretic/moonc/internal/config"
)

// Driver binds the reusable parse tables, the driver's own operational
// logger, and loaded config defaults to one compilation run.
type Driver struct {
	tables *compiler.Tables
	log    *zap.SugaredLogger
	cfg    config.Config
}

// New builds a Driver. tables should come from compiler.NewTables once per
// process; log from driverlog.New.
func New(tables *compiler.Tables, log *zap.SugaredLogger, cfg config.Config) *Driver {
	return &Driver{tables: tables, log: log, cfg: cfg}
}

// Run accepts a single path (spec §6): a file is compiled directly, a
// directory has every ".src" file within it compiled independently. It
// returns a non-zero-exit-worthy error only for driver-level failures
// (missing path, I/O error) — pipeline-reported user errors are written to
// their output files and do not make Run fail.
func (d *Driver) Run(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "stat %s", path)
	}

	if !info.IsDir() {
		return d.compileFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return errors.Wrapf(err, "read directory %s", path)
	}

	var firstErr error
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".src" {
			continue
		}
		if err := d.compileFile(filepath.Join(path, e.Name())); err != nil {
			d.log.Errorw("failed to compile file", "file", e.Name(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (d *Driver) compileFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}

	result := compiler.Compile(d.tables, string(src))

	outDir := filepath.Dir(path)
	if d.cfg.OutputDir != "" {
		outDir = d.cfg.OutputDir
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return errors.Wrapf(err, "create output directory %s", outDir)
		}
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem := filepath.Join(outDir, base)

	if err := writeOutputs(stem, result); err != nil {
		return errors.Wrapf(err, "write outputs for %s", path)
	}

	d.log.Infow("compiled file",
		"file", path,
		"tokens", len(result.Tokens),
		"lexErrors", len(result.LexErrors),
		"syntaxErrors", len(result.SyntaxDiags.Items()),
		"semanticErrors", len(result.SemDiags.Items()),
		"noMain", result.NoMain,
		"assembly", result.Assembly != "",
	)
	return nil
}
