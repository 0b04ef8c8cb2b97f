package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newSetScanRateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-scan-rate <plc-name> <ms> <multiple>",
		Short: "Set the read/write/update scan period and the slowdown multiple",
		Long: `set-scan-rate is the Go-native shape of tcSetScanRate <ms> <multiple>
(§6): it sets a PLC's read, write, and update periods to <ms> and its
read-only slowdown multiple to <multiple> (§4.9), clamped to the bounds
internal/plc.ScanConfig.Normalize enforces.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ms, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid ms %q: %w", args[1], err)
			}
			multiple, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid multiple %q: %w", args[2], err)
			}
			p, ok := engine.PLC(args[0])
			if !ok {
				return fmt.Errorf("unknown plc %q", args[0])
			}
			p.SetScanRate(time.Duration(ms)*time.Millisecond, multiple)
			printInfo("scan rate for %s: %dms, slowdown x%d\n", args[0], ms, multiple)
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newSetScanRateCmd())
}
