// Package config loads the small YAML baseline SPEC_FULL.md §4.13
// describes: default scan periods, naming/conversion policy, and
// listing-sink paths, read once at tciocsub startup and converted into
// the Go-native option structs internal/plc, internal/naming, and
// internal/dbemit already expose. tcSetScanRate/tcSetAlias (§6) then
// override this baseline per PLC rather than requiring every invocation
// to restate every flag.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/dbemit"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/naming"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/plc"
)

// ScanConfig is the YAML shape of a PLC's scan-period baseline, mirroring
// plc.ScanConfig with millisecond fields since raw time.Duration does not
// round-trip through YAML as a human-editable value.
type ScanConfig struct {
	ReadPeriodMS     int `yaml:"read_period_ms"`
	WritePeriodMS    int `yaml:"write_period_ms"`
	UpdatePeriodMS   int `yaml:"update_period_ms"`
	SlowdownMultiple int `yaml:"slowdown_multiple"`
	WriteBatchLimit  int `yaml:"write_batch_limit"`
}

// ToPLC converts to the plc package's runtime shape, normalizing bounds.
func (c ScanConfig) ToPLC() plc.ScanConfig {
	return plc.ScanConfig{
		ReadPeriod:       time.Duration(c.ReadPeriodMS) * time.Millisecond,
		WritePeriod:      time.Duration(c.WritePeriodMS) * time.Millisecond,
		UpdatePeriod:     time.Duration(c.UpdatePeriodMS) * time.Millisecond,
		SlowdownMultiple: c.SlowdownMultiple,
		WriteBatchLimit:  c.WriteBatchLimit,
	}.Normalize()
}

// NamingConfig is the YAML shape of §4.6's conversion policy.
type NamingConfig struct {
	// Rule is one of "none", "replace-dots", "ligo-std", "ligo-vac".
	Rule string `yaml:"rule"`
	// Case is one of "preserve", "upper", "lower".
	Case string `yaml:"case"`
	// ArrayIndex is one of "brackets", "underscore".
	ArrayIndex string            `yaml:"array_index"`
	Prefix     string            `yaml:"prefix"`
	Tokens     map[string]string `yaml:"tokens"`
}

// ToNaming converts to internal/naming's runtime Options.
func (c NamingConfig) ToNaming() naming.Options {
	opts := naming.Options{Prefix: c.Prefix, Tokens: naming.TokenRules{Table: c.Tokens}}
	switch c.Rule {
	case "replace-dots":
		opts.Rule = naming.RuleReplaceDots
	case "ligo-std":
		opts.Rule = naming.RuleLigoStd
	case "ligo-vac":
		opts.Rule = naming.RuleLigoVac
	default:
		opts.Rule = naming.RuleNone
	}
	switch c.Case {
	case "upper":
		opts.Case = naming.CaseUpper
	case "lower":
		opts.Case = naming.CaseLower
	default:
		opts.Case = naming.CasePreserve
	}
	if c.ArrayIndex == "underscore" {
		opts.ArrayIndex = naming.ArrayIndexUnderscore
	} else {
		opts.ArrayIndex = naming.ArrayIndexBrackets
	}
	return opts
}

// ListingConfig names the optional plain/long listing-sink output paths
// (§4.14). The paths are loaded from the file but no command reads them;
// listings are produced by generate-list and the load-records -is/-il
// tokens.
type ListingConfig struct {
	PlainPath string `yaml:"plain_path"`
	LongPath  string `yaml:"long_path"`
}

// Config is the top-level YAML document loaded once at tciocsub startup.
type Config struct {
	ServerName string       `yaml:"server_name"`
	Scan       ScanConfig   `yaml:"scan"`
	Naming     NamingConfig `yaml:"naming"`
	Listing    ListingConfig `yaml:"listing"`
	// GzipRotated mirrors dbemit.Options.GzipRotated (§4.7).
	GzipRotated bool `yaml:"gzip_rotated"`
}

// Default returns the out-of-the-box configuration: plc.DefaultScanConfig
// expressed in milliseconds, no naming conversion, and no listing sinks.
func Default() Config {
	d := plc.DefaultScanConfig()
	return Config{
		ServerName: "tciocsub",
		Scan: ScanConfig{
			ReadPeriodMS:     int(d.ReadPeriod.Milliseconds()),
			SlowdownMultiple: d.SlowdownMultiple,
		},
		Naming: NamingConfig{Rule: "none", Case: "preserve", ArrayIndex: "brackets"},
	}
}

// Load reads and parses a YAML config file, defaulting unset fields via
// Default first so a partial file is valid.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// DBEmitOptions builds the dbemit.Options baseline this config implies,
// leaving Owner/PLCPath for the caller to fill in per PLC.
func (c Config) DBEmitOptions() dbemit.Options {
	return dbemit.Options{
		Naming:      c.Naming.ToNaming(),
		ServerName:  c.ServerName,
		GzipRotated: c.GzipRotated,
	}
}
