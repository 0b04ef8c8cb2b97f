package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/registry"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

func newPrintValsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "print-vals <plc-name>",
		Short: "Diagnostic dump of every record's current value",
		Long: `print-vals is the Go-native shape of tcPrintVals <plc-name> (§6): it
prints the current value of every record registered for plc-name,
in .reg-style "name value" text by default, or a JSON object with
--json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVals(args[0], "*")
		},
	}
}

func newPrintValCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "print-val <plc-name> <glob>",
		Short: "Diagnostic dump of records whose name matches glob",
		Long: `print-val is the Go-native shape of tcPrintVal <plc-name> <glob>
(§6): like print-vals, but restricted to record names matching glob
(path/filepath.Match syntax, e.g. "MAIN.axis1.*").`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVals(args[0], args[1])
		},
	}
}

func init() {
	rootCmd.AddCommand(newPrintValsCmd())
	rootCmd.AddCommand(newPrintValCmd())
}

func printVals(plcName, glob string) error {
	p, ok := engine.PLC(plcName)
	if !ok {
		return fmt.Errorf("unknown plc %q", plcName)
	}

	var matches []*registry.Record
	p.Registry.ForEach(func(rec *registry.Record) {
		if ok, _ := filepath.Match(glob, rec.Name); ok {
			matches = append(matches, rec)
		}
	})
	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })

	if jsonOut {
		return printValsJSON(matches)
	}
	for _, rec := range matches {
		fmt.Fprintf(os.Stdout, "%-40s %s\n", rec.Name, formatCellValue(rec))
	}
	return nil
}

func printValsJSON(matches []*registry.Record) error {
	result := make(map[string]interface{}, len(matches))
	for _, rec := range matches {
		result[rec.Name] = cellValueForJSON(rec)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func cellValueForJSON(rec *registry.Record) interface{} {
	if !rec.Cell.Valid() {
		return nil
	}
	switch rec.Cell.Kind() {
	case types.KindString, types.KindWString:
		v, err := rec.Cell.ReadString(types.SideUser)
		if err != nil {
			return nil
		}
		return v
	default:
		v, err := rec.Cell.ReadFloat(types.SideUser)
		if err != nil {
			return nil
		}
		return v
	}
}

func formatCellValue(rec *registry.Record) string {
	if !rec.Cell.Valid() {
		return "<invalid>"
	}
	switch rec.Cell.Kind() {
	case types.KindString, types.KindWString:
		v, err := rec.Cell.ReadString(types.SideUser)
		if err != nil {
			return fmt.Sprintf("<error: %v>", err)
		}
		return fmt.Sprintf("%q", v)
	default:
		v, err := rec.Cell.ReadFloat(types.SideUser)
		if err != nil {
			return fmt.Sprintf("<error: %v>", err)
		}
		return fmt.Sprintf("%v", v)
	}
}
