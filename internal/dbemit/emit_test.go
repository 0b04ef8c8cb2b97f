package dbemit

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/naming"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/plctypes"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/registry"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/symtab"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/walker"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

func singleFileOpener(buf *bytes.Buffer) FileOpener {
	return func(index int, direction string) (io.WriteCloser, error) {
		return nopCloser{buf}, nil
	}
}

func TestDBSinkEnumRenderingS5(t *testing.T) {
	reg := registry.New()
	var buf bytes.Buffer
	sink := NewDBSink(reg, singleFileOpener(&buf), Options{Naming: naming.Options{Rule: naming.RuleNone}})

	leaf := walker.Leaf{
		Name:       "E1",
		IGroup:     16448,
		IOffset:    0,
		ByteSize:   2,
		Kind:       types.KindU16,
		Process:    plctypes.ProcessEnum,
		EnumLabels: map[int]string{0: "A", 1: "B", 2: "C"},
	}
	require.NoError(t, sink.Visit(leaf))
	require.NoError(t, sink.Close())

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "record(mbbi,\"E1\")"))
	require.Contains(t, out, `field(ZRVL,"0")`)
	require.Contains(t, out, `field(ZRST,"A")`)
	require.Contains(t, out, `field(ONVL,"1")`)
	require.Contains(t, out, `field(ONST,"B")`)
	require.Contains(t, out, `field(TWVL,"2")`)
	require.Contains(t, out, `field(TWST,"C")`)
}

func TestDBSinkEnumOutOfRangeFallsBackToInteger(t *testing.T) {
	reg := registry.New()
	var buf bytes.Buffer
	sink := NewDBSink(reg, singleFileOpener(&buf), Options{Naming: naming.Options{Rule: naming.RuleNone}})

	leaf := walker.Leaf{
		Name:     "E2",
		ByteSize: 2,
		Kind:     types.KindU16,
		Process:  plctypes.ProcessInteger,
	}
	require.NoError(t, sink.Visit(leaf))
	require.NoError(t, sink.Close())
	require.True(t, strings.HasPrefix(buf.String(), "record(longin,\"E2\")"))
}

func TestDBSinkPropertyPassthroughS6(t *testing.T) {
	reg := registry.New()
	var buf bytes.Buffer
	sink := NewDBSink(reg, singleFileOpener(&buf), Options{Naming: naming.Options{Rule: naming.RuleNone}})

	props := symtab.PropertyList{}
	props.Set(symtab.PropertyCode(8801), "RTYP, calc")
	leaf := walker.Leaf{Name: "P1", ByteSize: 2, Kind: types.KindI16, Process: plctypes.ProcessInteger, Props: props}
	require.NoError(t, sink.Visit(leaf))
	require.NoError(t, sink.Close())
	require.Contains(t, buf.String(), `field(RTYP,"calc")`)
}

func TestDBSinkDirectionFromAccessRightsBit(t *testing.T) {
	propsRO := symtab.PropertyList{}
	propsRO.Set(symtab.PropAccessRights, "1")
	require.False(t, direction(propsRO))

	propsRW := symtab.PropertyList{}
	propsRW.Set(symtab.PropAccessRights, "3")
	require.True(t, direction(propsRW))
}

func TestDBSinkDirectionFromOverride(t *testing.T) {
	props := symtab.PropertyList{}
	props.Set(symtab.PropDirectionOverride, "output")
	require.True(t, direction(props))

	props2 := symtab.PropertyList{}
	props2.Set(symtab.PropDirectionOverride, "input")
	require.False(t, direction(props2))
}

func TestDBSinkRegistersRecordWithBinding(t *testing.T) {
	reg := registry.New()
	var buf bytes.Buffer
	sink := NewDBSink(reg, singleFileOpener(&buf), Options{Naming: naming.Options{Rule: naming.RuleNone}})

	leaf := walker.Leaf{Name: "MAIN.x", IGroup: 16448, IOffset: 4, ByteSize: 2, Kind: types.KindI16, Process: plctypes.ProcessInteger}
	require.NoError(t, sink.Visit(leaf))

	rec, ok := reg.Find("MAIN.x")
	require.True(t, ok)
	require.Equal(t, uint32(16448), rec.Binding.IndexGroup)
	require.Equal(t, uint32(4), rec.Binding.IndexOffset)
}

func TestDBSinkSkipsCompositeLeaves(t *testing.T) {
	reg := registry.New()
	var buf bytes.Buffer
	sink := NewDBSink(reg, singleFileOpener(&buf), Options{Naming: naming.Options{Rule: naming.RuleNone}})

	require.NoError(t, sink.Visit(walker.Leaf{Name: "MAIN.s", Composite: true}))
	require.NoError(t, sink.Close())
	require.Empty(t, buf.String())
	require.Equal(t, 0, reg.Count())
}

func TestDBSinkAlarmSeverityDefaultFilledWhenAbsent(t *testing.T) {
	reg := registry.New()
	var buf bytes.Buffer
	sink := NewDBSink(reg, singleFileOpener(&buf), Options{Naming: naming.Options{Rule: naming.RuleNone}})

	props := symtab.PropertyList{}
	props.Set(symtab.PropHIHILimit, "100")
	leaf := walker.Leaf{Name: "A1", ByteSize: 4, Kind: types.KindF32, Process: plctypes.ProcessReal, Props: props}
	require.NoError(t, sink.Visit(leaf))
	require.NoError(t, sink.Close())
	require.Contains(t, buf.String(), `field(HIHI,"100")`)
	require.Contains(t, buf.String(), `field(HHSV,"MAJOR")`)
}

func TestListSinkPlainFormatSkipsComposite(t *testing.T) {
	var buf bytes.Buffer
	sink := NewListSink(&buf, ListPlain, naming.Options{Rule: naming.RuleNone})
	require.NoError(t, sink.Visit(walker.Leaf{Name: "MAIN.s", Composite: true}))
	require.NoError(t, sink.Visit(walker.Leaf{Name: "MAIN.s.a", Kind: types.KindBool}))
	require.NoError(t, sink.Close())
	require.Equal(t, "MAIN.s.a\n", buf.String())
}

func TestListSinkLongFormatIncludesOffsets(t *testing.T) {
	var buf bytes.Buffer
	sink := NewListSink(&buf, ListLong, naming.Options{Rule: naming.RuleNone})
	require.NoError(t, sink.Visit(walker.Leaf{Name: "MAIN.x", IGroup: 16448, IOffset: 2, ByteSize: 2, Kind: types.KindI16}))
	require.NoError(t, sink.Close())
	require.Contains(t, buf.String(), "igroup=16448")
	require.Contains(t, buf.String(), "ioffset=2")
}

func TestSplitPassthroughTrimsWhitespace(t *testing.T) {
	key, value, ok := splitPassthrough("RTYP, calc")
	require.True(t, ok)
	require.Equal(t, "RTYP", key)
	require.Equal(t, "calc", value)
}
