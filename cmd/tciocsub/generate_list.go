package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/dbemit"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/naming"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/tpyparse"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/walker"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

func newGenerateListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-list <tpy-file> <filename> <rules>",
		Short: "Register an additional plain/long listing sink over a symbol table",
		Long: `generate-list is the Go-native shape of tcGenerateList <filename>
<rules>: it re-walks the named symbol table independently of any loaded
PLC and writes a plain or long listing file (§4.14). rules is one of
"plain" or "long"; the burt-save-restore and daq-ini formats named in
spec.md §6 are out of scope (SPEC_FULL.md §4.14).`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateListFromFile(filenameStem(args[1]), args[0], args[2], cfg.Naming.ToNaming(), walker.Options{Mode: types.WalkBoth})
		},
	}
}

func init() {
	rootCmd.AddCommand(newGenerateListCmd())
}

func filenameStem(path string) string {
	base := path
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSuffix(base, ".list")
}

// generateListFromFile re-parses tpyPath and walks every symbol into a
// ListSink, since a single symbol walk only drives one sink per call
// (engine.LoadSymbolFile's DBSink); this mirrors the original tool's
// independent listing pass over the same source file.
func generateListFromFile(outBase, tpyPath, rules string, namingOpts naming.Options, walkOpts walker.Options) error {
	f, err := os.Open(tpyPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", tpyPath, err)
	}
	defer f.Close()

	model, _, err := tpyparse.Parse(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", tpyPath, err)
	}

	format := dbemit.ListPlain
	if rules == "long" {
		format = dbemit.ListLong
	}

	name := outBase + ".list"
	out, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer out.Close()

	sink := dbemit.NewListSink(out, format, namingOpts)
	for _, sym := range model.Symbols {
		if err := walker.Walk(model, sym, walkOpts, sink.Visit); err != nil {
			return fmt.Errorf("walk %s: %w", sym.Name, err)
		}
	}
	if err := sink.Close(); err != nil {
		return err
	}
	printInfo("wrote listing %s\n", name)
	return nil
}
