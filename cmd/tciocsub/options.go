package main

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/dbemit"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/naming"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/walker"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

// loadRecordFlags is the parsed form of §6's tcLoadRecords option-string
// tokens (`-ea`/`-eo`, `-ns`/`-ys`, `-pa`/`-ps`/`-pc`, `-rn`/`-rd`/`-rl`/
// `-rv`, `-cp`/`-cu`/`-cl`, `-nd`/`-yd`, `-ni`/`-yi`, `-p`, `-ysio`/
// `-nsio`, `-sn`, `-devopc`/`-devtc`, `-ss`/`-sl`/`-sd`, `-is`/`-il`/
// `-id`).
type loadRecordFlags struct {
	exportAll       bool
	includeStrings  bool
	mode            types.WalkMode
	rule            naming.Rule
	caseRule        naming.CaseRule
	stripLeadingDot bool
	arrayBrackets   bool
	prefix          string
	registerInfo    bool
	serverName      string
	deviceKind      string
	split           dbemit.SplitPolicy
	listFormat      string // "plain", "long", or "" (none)
}

func defaultLoadRecordFlags() loadRecordFlags {
	return loadRecordFlags{
		exportAll:      true,
		includeStrings: true,
		mode:           types.WalkBoth,
		rule:           naming.RuleNone,
		caseRule:       naming.CasePreserve,
		arrayBrackets:  true,
		registerInfo:   true,
		deviceKind:     "tc",
		split:          dbemit.SplitSingle,
		listFormat:     "",
	}
}

// normalizeOptionTokens rewrites the TwinCAT-style single-dash multi-letter
// tokens of §6 ("-ea", "-sn") into pflag long-flag form ("--ea", "--sn")
// so they can be parsed by a real pflag.FlagSet (SPEC_FULL.md §4.12)
// instead of a hand-rolled tokenizer; single-letter tokens such as "-p"
// become "--p" the same way. A token that is already double-dash, a lone
// "-", or doesn't start with "-" passes through as-is.
func normalizeOptionTokens(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		if strings.HasPrefix(t, "-") && !strings.HasPrefix(t, "--") && len(t) >= 2 {
			out[i] = "-" + t
		} else {
			out[i] = t
		}
	}
	return out
}

// parseLoadRecordOptions parses an option-string token vector into
// loadRecordFlags. When tokens of the same group are both given, a fixed
// precedence decides regardless of their order (e.g. "-ea -eo" and
// "-eo -ea" both end with eo): eo over ea, ns over ys, ps over pc over pa,
// rd over rl over rv over rn, cu over cl over cp, yd over nd, ni over yi,
// nsio over ysio, devtc over devopc, sl over sd over ss, il over is over id.
func parseLoadRecordOptions(tokens []string) (loadRecordFlags, error) {
	f := defaultLoadRecordFlags()

	fs := pflag.NewFlagSet("load-records-options", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true

	var (
		ea, eo           bool
		ys, ns           bool
		pa, ps, pc       bool
		rn, rd, rl, rv   bool
		cp, cu, cl       bool
		yd, nd           bool
		yi, ni           bool
		p                string
		ysio, nsio       bool
		sn               string
		devopc, devtc    bool
		ss, sl, sd       bool
		is, il, id       bool
	)
	fs.BoolVar(&ea, "ea", false, "export every symbol regardless of publish flag")
	fs.BoolVar(&eo, "eo", false, "export only symbols explicitly marked publish")
	fs.BoolVar(&ys, "ys", false, "include string-typed leaves")
	fs.BoolVar(&ns, "ns", false, "exclude string-typed leaves")
	fs.BoolVar(&pa, "pa", false, "walk atomic and structured leaves")
	fs.BoolVar(&ps, "ps", false, "walk atomic leaves only")
	fs.BoolVar(&pc, "pc", false, "walk structured leaves only")
	fs.BoolVar(&rn, "rn", false, "naming rule: none")
	fs.BoolVar(&rd, "rd", false, "naming rule: replace dots with underscore")
	fs.BoolVar(&rl, "rl", false, "naming rule: ligo-std")
	fs.BoolVar(&rv, "rv", false, "naming rule: ligo-vac")
	fs.BoolVar(&cp, "cp", false, "case: preserve")
	fs.BoolVar(&cu, "cu", false, "case: upper")
	fs.BoolVar(&cl, "cl", false, "case: lower")
	fs.BoolVar(&yd, "yd", false, "strip the leading namespace segment")
	fs.BoolVar(&nd, "nd", false, "keep the leading namespace segment")
	fs.BoolVar(&yi, "yi", false, "render array indices as [n]")
	fs.BoolVar(&ni, "ni", false, "render array indices as _n")
	fs.StringVar(&p, "p", "", "record name prefix")
	fs.BoolVar(&ysio, "ysio", false, "register the info plane for this PLC")
	fs.BoolVar(&nsio, "nsio", false, "do not register the info plane for this PLC")
	fs.StringVar(&sn, "sn", "", "record link server name")
	fs.BoolVar(&devopc, "devopc", false, "device kind: opc")
	fs.BoolVar(&devtc, "devtc", false, "device kind: twincat")
	fs.BoolVar(&ss, "ss", false, "split policy: single file")
	fs.BoolVar(&sl, "sl", false, "split policy: by direction")
	fs.BoolVar(&sd, "sd", false, "split policy: by record count")
	fs.BoolVar(&is, "is", false, "also register a plain listing sink")
	fs.BoolVar(&il, "il", false, "also register a long listing sink")
	fs.BoolVar(&id, "id", false, "do not register a listing sink")

	if err := fs.Parse(normalizeOptionTokens(tokens)); err != nil {
		return f, err
	}

	if eo {
		f.exportAll = false
	} else if ea {
		f.exportAll = true
	}
	if ns {
		f.includeStrings = false
	} else if ys {
		f.includeStrings = true
	}
	switch {
	case ps:
		f.mode = types.WalkAtomicOnly
	case pc:
		f.mode = types.WalkStructuredOnly
	case pa:
		f.mode = types.WalkBoth
	}
	switch {
	case rd:
		f.rule = naming.RuleReplaceDots
	case rl:
		f.rule = naming.RuleLigoStd
	case rv:
		f.rule = naming.RuleLigoVac
	case rn:
		f.rule = naming.RuleNone
	}
	switch {
	case cu:
		f.caseRule = naming.CaseUpper
	case cl:
		f.caseRule = naming.CaseLower
	case cp:
		f.caseRule = naming.CasePreserve
	}
	if yd {
		f.stripLeadingDot = true
	} else if nd {
		f.stripLeadingDot = false
	}
	if ni {
		f.arrayBrackets = false
	} else if yi {
		f.arrayBrackets = true
	}
	if p != "" {
		f.prefix = p
	}
	if nsio {
		f.registerInfo = false
	} else if ysio {
		f.registerInfo = true
	}
	if sn != "" {
		f.serverName = sn
	}
	if devtc {
		f.deviceKind = "tc"
	} else if devopc {
		f.deviceKind = "opc"
	}
	switch {
	case sl:
		f.split = dbemit.SplitByDirection
	case sd:
		f.split = dbemit.SplitByCount
	case ss:
		f.split = dbemit.SplitSingle
	}
	switch {
	case il:
		f.listFormat = "long"
	case is:
		f.listFormat = "plain"
	case id:
		f.listFormat = ""
	}

	return f, nil
}

// walkOptions builds the walker.Options this flag set implies.
func (f loadRecordFlags) walkOptions() walker.Options {
	return walker.Options{Prefix: f.prefix, ExportAll: f.exportAll, Mode: f.mode}
}

// namingOptions builds the naming.Options this flag set implies.
func (f loadRecordFlags) namingOptions() naming.Options {
	return naming.Options{
		Rule:           f.rule,
		Case:           f.caseRule,
		ArrayIndex:     f.arrayIndexRule(),
		Prefix:         f.prefix,
		StripNamespace: f.stripLeadingDot,
	}
}

func (f loadRecordFlags) arrayIndexRule() naming.ArrayIndexRule {
	if f.arrayBrackets {
		return naming.ArrayIndexBrackets
	}
	return naming.ArrayIndexUnderscore
}
