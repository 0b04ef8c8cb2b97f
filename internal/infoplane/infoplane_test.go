package infoplane

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/registry"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

type stubSource struct {
	name, alias string
	conn        types.ConnState
	ts          time.Time
}

func (s *stubSource) Name() string        { return s.name }
func (s *stubSource) Alias() string       { return s.alias }
func (s *stubSource) ConnState() types.ConnState { return s.conn }
func (s *stubSource) Timestamp() time.Time { return s.ts }
func (s *stubSource) ScanPeriods() (read, write, update time.Duration) {
	return 100 * time.Millisecond, 100 * time.Millisecond, time.Second
}
func (s *stubSource) RecordCount() int { return 3 }
func (s *stubSource) SymbolFile() (string, bool, time.Time) {
	return "/data/TESTPLC.tpy", true, s.ts.Add(-time.Hour)
}
func (s *stubSource) TransportVersion() (int, int, int) { return 1, 2, 3 }
func (s *stubSource) Address() string                   { return "127.0.0.1:48898" }
func (s *stubSource) BuildInfo() map[string]string {
	return map[string]string{"version": "1.0.0", "commit": "abc123"}
}
func (s *stubSource) QueueStats() map[string]QueueStat {
	return map[string]QueueStat{
		"low":  {Size: 100, Used: 10, Free: 90, Percent: 10, HighWater: 20, Overflow: 0},
		"high": {Size: 100, Used: 50, Free: 50, Percent: 50, HighWater: 60, Overflow: 2},
	}
}

func TestRegisterCreatesOneRecordPerField(t *testing.T) {
	reg := registry.New()
	src := &stubSource{name: "TESTPLC", alias: "tp", conn: types.ConnRun, ts: time.Date(2026, 7, 29, 12, 30, 0, 0, time.UTC)}

	_, err := Register(reg, "INFO.TESTPLC", src)
	require.NoError(t, err)

	for _, name := range []string{
		"INFO.TESTPLC.name",
		"INFO.TESTPLC.conn_state_str",
		"INFO.TESTPLC.record_count",
		"INFO.TESTPLC.build_version",
		"INFO.TESTPLC.build_commit",
		"INFO.TESTPLC.queue_low_used",
		"INFO.TESTPLC.queue_high_overflow",
	} {
		_, ok := reg.Find(name)
		require.True(t, ok, "expected record %s", name)
	}
}

func TestRegisterRejectsDuplicatePrefix(t *testing.T) {
	reg := registry.New()
	src := &stubSource{name: "TESTPLC", ts: time.Now().UTC()}

	_, err := Register(reg, "INFO.TESTPLC", src)
	require.NoError(t, err)

	_, err = Register(reg, "INFO.TESTPLC", src)
	require.Error(t, err)
}

func TestSamplePopulatesCellsFromSource(t *testing.T) {
	reg := registry.New()
	src := &stubSource{
		name:  "TESTPLC",
		alias: "tp",
		conn:  types.ConnRun,
		ts:    time.Date(2026, 7, 29, 12, 30, 45, 0, time.UTC),
	}

	r, err := Register(reg, "INFO.TESTPLC", src)
	require.NoError(t, err)
	r.Sample()

	nameRec, ok := reg.Find("INFO.TESTPLC.name")
	require.True(t, ok)
	got, err := nameRec.Cell.ReadString(types.SideUser)
	require.NoError(t, err)
	require.Equal(t, "TESTPLC", got)
	require.True(t, nameRec.Cell.Valid())

	connRec, ok := reg.Find("INFO.TESTPLC.conn_state_str")
	require.True(t, ok)
	gotConn, err := connRec.Cell.ReadString(types.SideUser)
	require.NoError(t, err)
	require.Equal(t, "RUN", gotConn)

	secRec, ok := reg.Find("INFO.TESTPLC.timestamp_second")
	require.True(t, ok)
	v, err := secRec.Cell.ReadFloat(types.SideUser)
	require.NoError(t, err)
	require.Equal(t, float64(45), v)

	overflowRec, ok := reg.Find("INFO.TESTPLC.queue_high_overflow")
	require.True(t, ok)
	v, err = overflowRec.Cell.ReadFloat(types.SideUser)
	require.NoError(t, err)
	require.Equal(t, float64(2), v)

	buildRec, ok := reg.Find("INFO.TESTPLC.build_commit")
	require.True(t, ok)
	gotBuild, err := buildRec.Cell.ReadString(types.SideUser)
	require.NoError(t, err)
	require.Equal(t, "abc123", gotBuild)
}
