package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/dbemit"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/infoplane"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/naming"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/plc"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/transport"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/walker"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

// pendingAlias and pendingInfoPrefix hold per-PLC overrides staged by
// tcSetAlias/tcInfoPrefix for the *next* tcLoadRecords call against that
// PLC name (§6: "set alias and substitution rules for the next
// tcLoadRecords").
var (
	pendingAlias      = map[string]aliasOverride{}
	pendingInfoPrefix = map[string]string{}
)

type aliasOverride struct {
	alias         string
	substitutions []naming.Substitution
}

func newLoadRecordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load-records <plc-name> <tpy-file> [option tokens...]",
		Short: "Ingest a symbol-table file, emit its record database, and start scanning",
		Long: `load-records is the Go-native shape of tcLoadRecords <tpy-file>
<option-string>: it parses the symbol table, walks it into record
definitions, writes the record database, and starts the PLC's scanners.

No concrete wire transport is in scope for this repository (§1 Non-goal),
so load-records runs the loaded PLC against an in-memory fake transport;
supply a real transport.Transport to internal/plc.LoadOptions to point
this at an actual remote memory server.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoadRecords(args[0], args[1], args[2:])
		},
	}
}

func init() {
	rootCmd.AddCommand(newLoadRecordsCmd())
}

func runLoadRecords(plcName, tpyPath string, optionTokens []string) error {
	flags, err := parseLoadRecordOptions(optionTokens)
	if err != nil {
		return fmt.Errorf("option string: %w", err)
	}

	f, err := os.Open(tpyPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", tpyPath, err)
	}
	defer f.Close()

	namingOpts := flags.namingOptions()
	pending, hasPending := pendingAlias[plcName]
	if hasPending {
		namingOpts.Substitutions = append(namingOpts.Substitutions, pending.substitutions...)
		delete(pendingAlias, plcName)
	}
	walkOpts := flags.walkOptions()

	serverName := flags.serverName
	if serverName == "" {
		serverName = plcName
	}
	dbOpts := cfg.DBEmitOptions()
	dbOpts.Naming = namingOpts
	dbOpts.Split = flags.split
	dbOpts.ServerName = serverName
	if flags.deviceKind == "opc" {
		dbOpts.DeviceType = "OPC_RAW"
	} else {
		dbOpts.DeviceType = "TC_RAW"
	}

	open := func(index int, direction string) (io.WriteCloser, error) {
		name := plcName + ".db"
		switch {
		case direction != "":
			name = fmt.Sprintf("%s_%s.db", plcName, direction)
		case flags.split == dbemit.SplitByCount:
			name = fmt.Sprintf("%s_%d.db", plcName, index)
		}
		printVerbose("writing %s\n", name)
		return os.Create(name)
	}

	var filter func(walker.Leaf) bool
	if !flags.includeStrings {
		filter = func(leaf walker.Leaf) bool {
			return leaf.Kind != types.KindString && leaf.Kind != types.KindWString
		}
	}

	p, err := engine.LoadSymbolFile(plcName, f, plc.LoadOptions{
		Open:       open,
		DBEmit:     dbOpts,
		Walk:       walkOpts,
		ScanConfig: cfg.Scan.ToPLC(),
		Transport:  transport.NewFake(),
		Filter:     filter,
	})
	if err != nil {
		return err
	}

	if hasPending {
		p.SetAlias(pending.alias)
	}
	if mtime, err := os.Stat(tpyPath); err == nil {
		p.SetSymbolFile(tpyPath, mtime.ModTime())
	} else {
		p.SetSymbolFile(tpyPath, time.Time{})
	}

	printInfo("loaded %s: %d records in %d request groups\n", plcName, p.Registry.Count(), len(p.Groups))

	if flags.listFormat != "" {
		if err := generateListFromFile(plcName, tpyPath, flags.listFormat, namingOpts, walkOpts); err != nil {
			return fmt.Errorf("listing: %w", err)
		}
	}

	if flags.registerInfo {
		prefix := "INFO." + plcName
		if override, ok := pendingInfoPrefix[plcName]; ok {
			prefix = override
			delete(pendingInfoPrefix, plcName)
		}
		src := newEngineInfoSource(p)
		reg, err := infoplane.Register(p.Registry, prefix, src)
		if err != nil {
			return fmt.Errorf("info plane: %w", err)
		}
		reg.Sample()
	}

	engine.Start(runCtx)
	return nil
}
