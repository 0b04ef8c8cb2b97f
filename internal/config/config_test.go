package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/naming"
)

func TestDefaultProducesNormalizablePLCConfig(t *testing.T) {
	d := Default()
	plcCfg := d.Scan.ToPLC()
	require.True(t, plcCfg.ReadPeriod > 0)
	require.Equal(t, plcCfg.ReadPeriod, plcCfg.WritePeriod)
}

func TestLoadOverridesDefaultsFromPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tciocsub.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server_name: MYPLC
scan:
  read_period_ms: 50
naming:
  rule: ligo-std
  case: upper
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "MYPLC", cfg.ServerName)
	require.Equal(t, 50, cfg.Scan.ReadPeriodMS)
	require.Equal(t, naming.RuleLigoStd, cfg.Naming.ToNaming().Rule)
	require.Equal(t, naming.CaseUpper, cfg.Naming.ToNaming().Case)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load("/nonexistent/tciocsub.yaml")
	require.Error(t, err)
}
