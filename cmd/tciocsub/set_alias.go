package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/naming"
)

func newSetAliasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-alias <plc-name> <alias> [from=to ...]",
		Short: "Set a PLC's alias and substitution rules for the next load-records call",
		Long: `set-alias is the Go-native shape of tcSetAlias <alias> <rules> (§6):
it stages an alias and a literal substitution table (each trailing
argument is a "from=to" pair, §4.6) to be applied the next time
load-records runs against this PLC name. If the PLC is already loaded,
the alias takes effect immediately; the substitution table only affects
a future (re-)load, since naming conversion only happens once, at
ingest time.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			plcName, alias := args[0], args[1]
			var subs []naming.Substitution
			for _, tok := range args[2:] {
				from, to, ok := strings.Cut(tok, "=")
				if !ok {
					return fmt.Errorf("invalid substitution %q, want from=to", tok)
				}
				subs = append(subs, naming.Substitution{From: from, To: to})
			}
			pendingAlias[plcName] = aliasOverride{alias: alias, substitutions: subs}

			if p, ok := engine.PLC(plcName); ok {
				p.SetAlias(alias)
			}
			printInfo("alias for %s staged as %q (%d substitution(s))\n", plcName, alias, len(subs))
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newSetAliasCmd())
}
