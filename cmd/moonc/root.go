package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arboretic/moonc/internal/ast"
	"github.com/arboretic/moonc/internal/compiler"
	"github.com/arboretic/moonc/internal/config"
	"github.com/arboretic/moonc/internal/driver"
	"github.com/arboretic/moonc/internal/driverlog"
	"github.com/arboretic/moonc/internal/language"
	"github.com/arboretic/moonc/internal/ll1"
)

var rootFlags = struct {
	debug *bool
}{}

var rootCmd = &cobra.Command{
	Use:   "moonc [path]",
	Short: "Compile a small class-based language to MOON assembly",
	Long: `moonc compiles a single .src file, or every .src file in a
directory, down to MOON assembly, writing the lexer/parser/semantic
intermediate artifacts alongside the input as it goes.`,
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runRoot,
}

func init() {
	rootFlags.debug = rootCmd.Flags().Bool("debug", false, "dump the grammar's FIRST/FOLLOW sets and parse table before compiling")
}

// Execute runs the CLI's root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return err
	}
	return nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := config.Load(inputDir(path))
	if err != nil {
		return err
	}
	debug := cfg.Debug
	if cmd.Flags().Changed("debug") {
		debug = *rootFlags.debug
	}

	log, err := driverlog.New(debug)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if debug {
		dumpGrammar(cmd)
	}

	tables, err := compiler.NewTables()
	if err != nil {
		return err
	}

	d := driver.New(tables, log, cfg)
	return d.Run(path)
}

func inputDir(path string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return path
	}
	return filepath.Dir(path)
}

func dumpGrammar(cmd *cobra.Command) {
	ids := ast.NewIDAllocator()
	g := language.Build(ids)
	table, first, follow := ll1.BuildParseTable(g)

	fmt.Fprint(cmd.OutOrStdout(), ll1.DumpFirst(g, first))
	fmt.Fprint(cmd.OutOrStdout(), ll1.DumpFollow(g, follow))
	fmt.Fprint(cmd.OutOrStdout(), ll1.DumpTable(table))
}
