package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/naming"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/tpyparse"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/walker"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

func newGenerateMacrosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-macros <tpy-file> <dir> <rules>",
		Short: "Register a macro-file sink over a symbol table",
		Long: `generate-macros is the Go-native shape of tcGenerateMacros <dir>
<rules>: it re-walks the named symbol table and writes one EPICS
substitution-style macro line per leaf record into <dir>/macros.subst
(§4.14, §6). This is a minimal rendering: the original tool's full
macro-expansion language is out of core scope (SPEC_FULL.md §4.14).`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateMacros(args[0], args[1], args[2])
		},
	}
}

func init() {
	rootCmd.AddCommand(newGenerateMacrosCmd())
}

func generateMacros(tpyPath, dir, rules string) error {
	f, err := os.Open(tpyPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", tpyPath, err)
	}
	defer f.Close()

	model, _, err := tpyparse.Parse(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", tpyPath, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	out, err := os.Create(filepath.Join(dir, "macros.subst"))
	if err != nil {
		return err
	}
	defer out.Close()
	w := bufio.NewWriter(out)
	defer w.Flush()

	namingOpts := cfg.Naming.ToNaming()
	if rules == "ligo-std" {
		namingOpts.Rule = naming.RuleLigoStd
	} else if rules == "ligo-vac" {
		namingOpts.Rule = naming.RuleLigoVac
	}

	visit := func(leaf walker.Leaf) error {
		if leaf.Composite {
			return nil
		}
		name := naming.Convert(leaf.Name, namingOpts)
		_, err := fmt.Fprintf(w, "%s=\"%s\"\n", name, leaf.Name)
		return err
	}

	for _, sym := range model.Symbols {
		if err := walker.Walk(model, sym, walker.Options{Mode: types.WalkAtomicOnly}, visit); err != nil {
			return fmt.Errorf("walk %s: %w", sym.Name, err)
		}
	}
	printInfo("wrote macros %s\n", filepath.Join(dir, "macros.subst"))
	return nil
}
