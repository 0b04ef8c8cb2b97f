package dbemit

import (
	"bufio"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/naming"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/plctypes"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/registry"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/symtab"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/valuecell"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/walker"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

// SplitPolicy controls how record-database output is divided across
// files (§4.7 item 1).
type SplitPolicy int

const (
	// SplitSingle writes every record to one output.
	SplitSingle SplitPolicy = iota
	// SplitByDirection writes read-only records and read-write records
	// to two separate outputs.
	SplitByDirection
	// SplitByCount rotates to a new output every MaxRecordsPerFile
	// records.
	SplitByCount
)

// Options configures a DBSink.
type Options struct {
	Naming            naming.Options
	Split             SplitPolicy
	MaxRecordsPerFile int    // only consulted when Split == SplitByCount
	ServerName        string // §6 INP/OUT "@<server><plc-path>" prefix
	PLCPath           string
	Owner             registry.PLCOwner
	// DeviceType is the default DTYP field value (§6 `-devtc`/`-devopc`),
	// overridden per-leaf by PropDeviceTypeOverride when present.
	DeviceType string
	// GzipRotated compresses every file SplitByCount opens with gzip,
	// including the one still open when the sink is closed, a common
	// operational need once file splitting produces more than a handful of
	// outputs.
	GzipRotated bool
}

// gzipCloser wraps a gzip.Writer over the underlying file so Close
// flushes the compressed trailer before closing the file itself.
type gzipCloser struct {
	*gzip.Writer
	under io.WriteCloser
}

func (g gzipCloser) Close() error {
	if err := g.Writer.Close(); err != nil {
		return err
	}
	return g.under.Close()
}

// FileOpener returns a fresh writer for the next output file, called once
// up front (SplitSingle), once per direction (SplitByDirection), or every
// MaxRecordsPerFile records (SplitByCount). Index is 0-based and
// direction is "" unless Split is SplitByDirection ("ro"/"rw").
type FileOpener func(index int, direction string) (io.WriteCloser, error)

// DBSink is a walker.Visitor that emits a record-database text file and
// populates reg with one Record per leaf (§4.7).
type DBSink struct {
	opts Options
	reg  *registry.Registry
	open FileOpener

	current    *bufio.Writer
	currentRaw io.WriteCloser
	roWriter   *bufio.Writer
	roRaw      io.WriteCloser
	rwWriter   *bufio.Writer
	rwRaw      io.WriteCloser

	fileIndex    int
	countInFile  int
	invalidCount int
}

// NewDBSink constructs a DBSink writing through open and registering
// records into reg.
func NewDBSink(reg *registry.Registry, open FileOpener, opts Options) *DBSink {
	return &DBSink{opts: opts, reg: reg, open: open}
}

// InvalidRecords returns the number of leaves dropped because their
// record could not be allocated or added (§7's Allocation error kind).
func (s *DBSink) InvalidRecords() int { return s.invalidCount }

// Visit implements walker.Visitor. Composite leaves (structure headers)
// are ignored; dbemit only ever produces one record per atomic/enum leaf.
func (s *DBSink) Visit(leaf walker.Leaf) error {
	if leaf.Composite {
		return nil
	}

	name := naming.Convert(leaf.Name, s.opts.Naming)
	writable := direction(leaf.Props)

	cell, err := valuecell.New(leaf.Kind, leaf.ByteSize)
	if err != nil {
		s.invalidCount++
		return nil
	}
	access := types.AccessReadOnly
	if writable {
		access = types.AccessReadWrite
	}
	rec := registry.NewRecord(name, access, cell)
	rec.Owner = s.opts.Owner
	rec.Binding = &registry.PLCBinding{IndexGroup: leaf.IGroup, IndexOffset: leaf.IOffset, Size: leaf.ByteSize}
	if !s.reg.Add(rec) {
		s.invalidCount++
		return nil
	}

	w, err := s.writerFor(writable)
	if err != nil {
		return err
	}
	return writeRecordBlock(w, name, leaf, writable, s.opts)
}

func (s *DBSink) writerFor(writable bool) (*bufio.Writer, error) {
	switch s.opts.Split {
	case SplitByDirection:
		if writable {
			if s.rwWriter == nil {
				raw, err := s.open(0, "rw")
				if err != nil {
					return nil, err
				}
				s.rwRaw, s.rwWriter = raw, bufio.NewWriter(raw)
			}
			return s.rwWriter, nil
		}
		if s.roWriter == nil {
			raw, err := s.open(0, "ro")
			if err != nil {
				return nil, err
			}
			s.roRaw, s.roWriter = raw, bufio.NewWriter(raw)
		}
		return s.roWriter, nil
	case SplitByCount:
		if s.current == nil || s.countInFile >= s.opts.MaxRecordsPerFile {
			if s.current != nil {
				if err := s.closeCurrent(); err != nil {
					return nil, err
				}
				s.fileIndex++
			}
			raw, err := s.open(s.fileIndex, "")
			if err != nil {
				return nil, err
			}
			if s.opts.GzipRotated {
				raw = gzipCloser{gzip.NewWriter(raw), raw}
			}
			s.currentRaw, s.current = raw, bufio.NewWriter(raw)
			s.countInFile = 0
		}
		s.countInFile++
		return s.current, nil
	default: // SplitSingle
		if s.current == nil {
			raw, err := s.open(0, "")
			if err != nil {
				return nil, err
			}
			s.currentRaw, s.current = raw, bufio.NewWriter(raw)
		}
		return s.current, nil
	}
}

func (s *DBSink) closeCurrent() error {
	if s.current == nil {
		return nil
	}
	if err := s.current.Flush(); err != nil {
		return err
	}
	return s.currentRaw.Close()
}

// Close flushes and closes every output this sink opened.
func (s *DBSink) Close() error {
	var firstErr error
	for _, pair := range []struct {
		w *bufio.Writer
		c io.WriteCloser
	}{{s.current, s.currentRaw}, {s.roWriter, s.roRaw}, {s.rwWriter, s.rwRaw}} {
		if pair.w == nil {
			continue
		}
		if err := pair.w.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := pair.c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// writeRecordBlock writes one `record(kind,"name") { ... }` block per §6.
func writeRecordBlock(w io.Writer, name string, leaf walker.Leaf, writable bool, opts Options) error {
	kind := recordKind(leaf.Process, writable)
	if _, err := fmt.Fprintf(w, "record(%s,\"%s\") {\n", kind, name); err != nil {
		return err
	}

	fields := buildFields(leaf, writable, opts)
	for _, f := range fields {
		if _, err := fmt.Fprintf(w, "    field(%s,\"%s\")\n", f.Key, f.Value); err != nil {
			return err
		}
	}

	_, err := fmt.Fprint(w, "}\n\n")
	return err
}

// buildFields assembles the field list for leaf per §6's key table, plus
// any passthrough fields (§3, S6) and alarm-severity defaults (§4.7).
func buildFields(leaf walker.Leaf, writable bool, opts Options) []Field {
	var fields []Field
	props := leaf.Props

	if v, ok := props.Get(symtab.PropDescription); ok {
		fields = append(fields, Field{"DESC", v})
	}
	fields = append(fields, Field{"SCAN", scanField(writable)})

	dtyp := opts.DeviceType
	if dtyp == "" {
		dtyp = "TC_RAW"
	}
	if v, ok := props.Get(symtab.PropDeviceTypeOverride); ok {
		dtyp = v
	}
	fields = append(fields, Field{"DTYP", dtyp})

	addr := plcAddress(opts)
	if writable {
		fields = append(fields, Field{"OUT", addr})
	} else {
		fields = append(fields, Field{"INP", addr})
	}

	if v, ok := props.Get(symtab.PropTimeStampSource); ok {
		fields = append(fields, Field{"TSE", v})
	}
	if v, ok := props.Get(symtab.PropInitOnStart); ok {
		fields = append(fields, Field{"PINI", v})
	}
	if v, ok := props.Get(symtab.PropUnit); ok {
		fields = append(fields, Field{"EGU", v})
	}
	if v, ok := props.Get(symtab.PropEguHigh); ok {
		fields = append(fields, Field{"HOPR", v})
	}
	if v, ok := props.Get(symtab.PropEguLow); ok {
		fields = append(fields, Field{"LOPR", v})
	}
	if v, ok := props.Get(symtab.PropDrvHigh); ok {
		fields = append(fields, Field{"DRVH", v})
	}
	if v, ok := props.Get(symtab.PropDrvLow); ok {
		fields = append(fields, Field{"DRVL", v})
	}
	if v, ok := props.Get(symtab.PropOneState); ok {
		fields = append(fields, Field{"ONAM", v})
	}
	if v, ok := props.Get(symtab.PropZeroState); ok {
		fields = append(fields, Field{"ZNAM", v})
	}
	if v, ok := props.Get(symtab.PropPrecision); ok {
		fields = append(fields, Field{"PREC", v})
	}

	if leaf.Process == plctypes.ProcessEnum && len(leaf.EnumLabels) > 0 {
		fields = append(fields, enumStateFields(leaf.EnumLabels)...)
	}

	fields = append(fields, alarmFields(props)...)

	for code, raw := range props.Props {
		if !code.IsPassthrough() {
			continue
		}
		if key, value, ok := splitPassthrough(raw); ok {
			fields = append(fields, Field{key, value})
		}
	}

	return fields
}

// alarmFields emits the OSV/COSV/UNSV, HIHI/HIGH/LOW/LOLO/HYST, and
// HHSV/HSV/LSV/LLSV fields, filling in the matching severity default
// ("MAJOR"/"MINOR" per the limit's extremity) whenever a limit is set
// without an explicit severity (§4.7's closing sentence).
func alarmFields(props symtab.PropertyList) []Field {
	var fields []Field
	limitSeverity := []struct {
		limitCode, sevCode symtab.PropertyCode
		limitKey, sevKey   string
		defaultSev         string
	}{
		{symtab.PropHIHILimit, symtab.PropHIHISeverity, "HIHI", "HHSV", "MAJOR"},
		{symtab.PropHILimit, symtab.PropHISeverity, "HIGH", "HSV", "MINOR"},
		{symtab.PropLOLimit, symtab.PropLOSeverity, "LOW", "LSV", "MINOR"},
		{symtab.PropLOLOLimit, symtab.PropLOLOSeverity, "LOLO", "LLSV", "MAJOR"},
	}
	for _, ls := range limitSeverity {
		v, ok := props.Get(ls.limitCode)
		if !ok {
			continue
		}
		fields = append(fields, Field{ls.limitKey, v})
		if sev, ok := props.Get(ls.sevCode); ok {
			fields = append(fields, Field{ls.sevKey, sev})
		} else {
			fields = append(fields, Field{ls.sevKey, ls.defaultSev})
		}
	}
	if v, ok := props.Get(symtab.PropDeadband); ok {
		fields = append(fields, Field{"HYST", v})
	}
	if v, ok := props.Get(symtab.PropOneStateSeverity); ok {
		fields = append(fields, Field{"OSV", v})
	}
	if v, ok := props.Get(symtab.PropChangeOfStateSeverity); ok {
		fields = append(fields, Field{"COSV", v})
	}
	if v, ok := props.Get(symtab.PropUnknownSeverity); ok {
		fields = append(fields, Field{"UNSV", v})
	}
	return fields
}

// plcAddress builds the "@<server><plc-path>" INP/OUT payload (§6).
func plcAddress(opts Options) string {
	return "@" + opts.ServerName + opts.PLCPath
}
