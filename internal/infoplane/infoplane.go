package infoplane

import (
	"fmt"
	"sort"
	"time"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/registry"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/valuecell"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

// QueueStat is one callback-queue priority level's statistics (§4.10).
type QueueStat struct {
	Size      int
	Used      int
	Free      int
	Percent   float64
	HighWater int
	Overflow  int
}

// Source is the engine-state view the Info Plane samples each tick. A
// real Engine/PLC pair implements it; tests supply a stub.
type Source interface {
	Name() string
	Alias() string
	ConnState() types.ConnState
	Timestamp() time.Time
	ScanPeriods() (read, write, update time.Duration)
	RecordCount() int
	SymbolFile() (path string, valid bool, modTime time.Time)
	TransportVersion() (major, minor, patch int)
	Address() string
	BuildInfo() map[string]string
	QueueStats() map[string]QueueStat
}

type field struct {
	suffix string
	kind   types.CellKind
	size   int
	sample func(Source) any
}

// Registrar holds the info records created by Register and samples them
// on demand.
type Registrar struct {
	src     Source
	entries []regEntry
}

type regEntry struct {
	rec    *registry.Record
	kind   types.CellKind
	sample func(Source) any
}

// Register creates one Record per info field, named "<prefix>.<field>",
// and returns a Registrar whose Sample method refreshes them all. The
// BuildInfo and QueueStats key sets are read once here to fix the field
// list, matching the rest of this system's "ingest once, then frozen"
// lifecycle (§3).
func Register(reg *registry.Registry, prefix string, src Source) (*Registrar, error) {
	fields := staticFields()
	fields = append(fields, buildInfoFields(src)...)
	fields = append(fields, queueFields(src)...)

	r := &Registrar{src: src}
	for _, f := range fields {
		cell, err := valuecell.New(f.kind, f.size)
		if err != nil {
			return nil, fmt.Errorf("infoplane: field %s: %w", f.suffix, err)
		}
		name := prefix + "." + f.suffix
		rec := registry.NewRecord(name, types.AccessReadOnly, cell)
		if !reg.Add(rec) {
			return nil, fmt.Errorf("infoplane: duplicate record %s", name)
		}
		r.entries = append(r.entries, regEntry{rec: rec, kind: f.kind, sample: f.sample})
	}
	return r, nil
}

// Sample refreshes every registered info record from the current engine
// state, per §4.10: "its 'read' is serviced by a per-record update
// method that samples the engine, writes via plc_write, and transitions
// the cell".
func (r *Registrar) Sample() {
	for _, e := range r.entries {
		v := e.sample(r.src)
		if e.kind == types.KindString {
			_, _ = e.rec.Cell.WriteString(types.SidePLC, fmt.Sprint(v))
		} else if e.kind == types.KindBool {
			b, _ := v.(bool)
			val := 0.0
			if b {
				val = 1
			}
			_, _ = e.rec.Cell.WriteFloat(types.SidePLC, val)
		} else {
			_, _ = e.rec.Cell.WriteFloat(types.SidePLC, toFloat(v))
		}
		e.rec.Cell.SetValid(types.SidePLC, true)
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}

func staticFields() []field {
	return []field{
		{"name", types.KindString, 64, func(s Source) any { return s.Name() }},
		{"alias", types.KindString, 64, func(s Source) any { return s.Alias() }},
		{"conn_state", types.KindI16, 0, func(s Source) any { return int32(s.ConnState()) }},
		{"conn_state_str", types.KindString, 16, func(s Source) any { return s.ConnState().String() }},
		{"timestamp_iso", types.KindString, 32, func(s Source) any { return s.Timestamp().UTC().Format(time.RFC3339) }},
		{"timestamp_year", types.KindI32, 0, func(s Source) any { return int32(s.Timestamp().Year()) }},
		{"timestamp_month", types.KindI32, 0, func(s Source) any { return int32(s.Timestamp().Month()) }},
		{"timestamp_day", types.KindI32, 0, func(s Source) any { return int32(s.Timestamp().Day()) }},
		{"timestamp_hour", types.KindI32, 0, func(s Source) any { return int32(s.Timestamp().Hour()) }},
		{"timestamp_minute", types.KindI32, 0, func(s Source) any { return int32(s.Timestamp().Minute()) }},
		{"timestamp_second", types.KindI32, 0, func(s Source) any { return int32(s.Timestamp().Second()) }},
		{"read_period_ms", types.KindI32, 0, func(s Source) any { r, _, _ := s.ScanPeriods(); return int32(r.Milliseconds()) }},
		{"write_period_ms", types.KindI32, 0, func(s Source) any { _, w, _ := s.ScanPeriods(); return int32(w.Milliseconds()) }},
		{"update_period_ms", types.KindI32, 0, func(s Source) any { _, _, u := s.ScanPeriods(); return int32(u.Milliseconds()) }},
		{"record_count", types.KindI32, 0, func(s Source) any { return int32(s.RecordCount()) }},
		{"symbol_file_path", types.KindString, 260, func(s Source) any { p, _, _ := s.SymbolFile(); return p }},
		{"symbol_file_valid", types.KindBool, 0, func(s Source) any { _, v, _ := s.SymbolFile(); return v }},
		{"symbol_file_mtime_iso", types.KindString, 32, func(s Source) any { _, _, m := s.SymbolFile(); return m.UTC().Format(time.RFC3339) }},
		{"symbol_file_mtime_year", types.KindI32, 0, func(s Source) any { _, _, m := s.SymbolFile(); return int32(m.Year()) }},
		{"symbol_file_mtime_month", types.KindI32, 0, func(s Source) any { _, _, m := s.SymbolFile(); return int32(m.Month()) }},
		{"symbol_file_mtime_day", types.KindI32, 0, func(s Source) any { _, _, m := s.SymbolFile(); return int32(m.Day()) }},
		{"symbol_file_mtime_hour", types.KindI32, 0, func(s Source) any { _, _, m := s.SymbolFile(); return int32(m.Hour()) }},
		{"symbol_file_mtime_minute", types.KindI32, 0, func(s Source) any { _, _, m := s.SymbolFile(); return int32(m.Minute()) }},
		{"symbol_file_mtime_second", types.KindI32, 0, func(s Source) any { _, _, m := s.SymbolFile(); return int32(m.Second()) }},
		{"transport_version", types.KindString, 32, func(s Source) any {
			maj, min, patch := s.TransportVersion()
			return fmt.Sprintf("%d.%d.%d", maj, min, patch)
		}},
		{"address", types.KindString, 64, func(s Source) any { return s.Address() }},
	}
}

// buildInfoFields reads src.BuildInfo() once to fix the set of
// "build_<key>" fields; if BuildInfo returns no entries, no fields are
// added. src must not be nil.
func buildInfoFields(src Source) []field {
	info := src.BuildInfo()
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]field, 0, len(keys))
	for _, k := range keys {
		k := k
		fields = append(fields, field{
			suffix: "build_" + k,
			kind:   types.KindString,
			size:   128,
			sample: func(s Source) any { return s.BuildInfo()[k] },
		})
	}
	return fields
}

// queueFields reads src.QueueStats() once to fix the set of per-priority
// fields, per §4.10's "callback-queue statistics per priority level
// (size, used, free, percent, high-water mark, overflow count)".
func queueFields(src Source) []field {
	stats := src.QueueStats()
	levels := make([]string, 0, len(stats))
	for lvl := range stats {
		levels = append(levels, lvl)
	}
	sort.Strings(levels)

	var fields []field
	for _, lvl := range levels {
		lvl := lvl
		prefix := "queue_" + lvl + "_"
		fields = append(fields,
			field{prefix + "size", types.KindI32, 0, func(s Source) any { return int32(s.QueueStats()[lvl].Size) }},
			field{prefix + "used", types.KindI32, 0, func(s Source) any { return int32(s.QueueStats()[lvl].Used) }},
			field{prefix + "free", types.KindI32, 0, func(s Source) any { return int32(s.QueueStats()[lvl].Free) }},
			field{prefix + "percent", types.KindF32, 0, func(s Source) any { return s.QueueStats()[lvl].Percent }},
			field{prefix + "highwater", types.KindI32, 0, func(s Source) any { return int32(s.QueueStats()[lvl].HighWater) }},
			field{prefix + "overflow", types.KindI32, 0, func(s Source) any { return int32(s.QueueStats()[lvl].Overflow) }},
		)
	}
	return fields
}
