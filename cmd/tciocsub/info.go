package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/infoplane"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/plc"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

// engineInfoSource adapts a *plc.PLC to infoplane.Source. The info-*
// shell commands named in SPEC_FULL.md §4.12 (print-vals/print-val
// against the synthetic info PLC) need no separate subcommand: Info
// Plane records are registered into the same p.Registry as every other
// record, so the existing print-vals/print-val commands already reach
// them through an "INFO.*" glob.
type engineInfoSource struct {
	p *plc.PLC
}

func newEngineInfoSource(p *plc.PLC) *engineInfoSource { return &engineInfoSource{p: p} }

func (s *engineInfoSource) Name() string               { return s.p.Name() }
func (s *engineInfoSource) Alias() string              { return s.p.Alias() }
func (s *engineInfoSource) ConnState() types.ConnState { return s.p.State.Conn() }
func (s *engineInfoSource) Timestamp() time.Time       { return time.Now() }

func (s *engineInfoSource) ScanPeriods() (read, write, update time.Duration) {
	return s.p.Config.ReadPeriod, s.p.Config.WritePeriod, s.p.Config.UpdatePeriod
}

func (s *engineInfoSource) RecordCount() int { return s.p.Registry.Count() }

func (s *engineInfoSource) SymbolFile() (string, bool, time.Time) {
	return s.p.SymbolFilePath(), s.p.State.SymbolValid(), s.p.SymbolFileModTime()
}

func (s *engineInfoSource) TransportVersion() (int, int, int) {
	return s.p.Transport.Version()
}

// addresser is an optional capability a Transport may implement to
// report the remote endpoint it is bound to; transport.Fake does not,
// since it has no real endpoint.
type addresser interface{ Address() string }

func (s *engineInfoSource) Address() string {
	if a, ok := s.p.Transport.(addresser); ok {
		return a.Address()
	}
	return ""
}

func (s *engineInfoSource) BuildInfo() map[string]string {
	return map[string]string{"version": version, "commit": commit, "date": date}
}

// QueueStats reports zeroed callback-queue statistics: this module's
// Transport abstraction has no concrete network implementation (§1
// Non-goal), so there is no real priority-queue depth to sample. One
// "default" level is reported so the Info Plane field table (§4.10) is
// still fully populated.
func (s *engineInfoSource) QueueStats() map[string]infoplane.QueueStat {
	return map[string]infoplane.QueueStat{
		"default": {},
	}
}

func newInfoPrefixCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info-prefix <plc-name> <prefix>",
		Short: "Set the Info Plane record-name prefix for the next load-records call",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pendingInfoPrefix[args[0]] = args[1]
			printInfo("info prefix for %s set to %q\n", args[0], args[1])
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newInfoPrefixCmd())
}
