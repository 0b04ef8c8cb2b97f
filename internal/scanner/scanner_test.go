package scanner

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/optimizer"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/registry"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/transport"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/valuecell"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

func newBoundRecord(t *testing.T, reg *registry.Registry, name string, access types.AccessMode, igroup, offset uint32, size int) *registry.Record {
	t.Helper()
	cell, err := valuecell.New(types.KindI16, size)
	require.NoError(t, err)
	rec := registry.NewRecord(name, access, cell)
	rec.Binding = &registry.PLCBinding{IndexGroup: igroup, IndexOffset: offset, Size: size}
	require.True(t, reg.Add(rec))
	return rec
}

func TestReadScannerAtomicLeafRoundTripS1(t *testing.T) {
	reg := registry.New()
	rec := newBoundRecord(t, reg, "MAIN:x", types.AccessReadWrite, 16448, 0, 2)
	groups := optimizer.Optimize(reg)
	require.Len(t, groups, 1)

	tr := transport.NewFake()
	tr.Seed(16448, 0, []byte{42, 0})

	state := NewPLCState()
	state.SetConn(types.ConnRun)

	rs := &ReadScanner{Registry: reg, Groups: groups, Transport: tr, Slowdown: 10}
	rs.Tick(context.Background(), state)

	v, err := rec.Cell.ReadFloat(types.SideUser)
	require.NoError(t, err)
	require.Equal(t, float64(42), v)

	ok, err := rec.Cell.WriteFloat(types.SideUser, -7)
	require.NoError(t, err)
	require.True(t, ok)

	ws := &WriteScanner{Registry: reg, Transport: tr}
	ws.Tick(context.Background(), state)
	require.False(t, rec.Cell.Dirty(types.SidePLC))

	raw := tr.Peek(16448, 0, 2)
	got := int16(binary.LittleEndian.Uint16(raw))
	require.Equal(t, int16(-7), got)
}

func TestReadScannerDisconnectedCycleS4(t *testing.T) {
	reg := registry.New()
	rec := newBoundRecord(t, reg, "r", types.AccessReadOnly, 1, 0, 2)
	rec.Cell.SetValid(types.SidePLC, true)
	groups := optimizer.Optimize(reg)

	tr := transport.NewFake()
	state := NewPLCState()
	state.SetConn(types.ConnStop)

	rs := &ReadScanner{Registry: reg, Groups: groups, Transport: tr, Slowdown: 1}
	rs.Tick(context.Background(), state)

	require.False(t, rec.Cell.Valid())
}

func TestWriteScannerLeavesDirtyOnFailure(t *testing.T) {
	reg := registry.New()
	rec := newBoundRecord(t, reg, "r", types.AccessReadWrite, 1, 0, 2)
	_, err := rec.Cell.WriteFloat(types.SideUser, 5)
	require.NoError(t, err)
	require.True(t, rec.Cell.Dirty(types.SidePLC))

	tr := transport.NewFake()
	tr.WriteErr = transport.NewDisconnectedError(nil)

	state := NewPLCState()
	state.SetConn(types.ConnRun)

	ws := &WriteScanner{Registry: reg, Transport: tr}
	ws.Tick(context.Background(), state)

	require.True(t, rec.Cell.Dirty(types.SidePLC), "dirty flag must survive a failed write so the next tick retries")
}

func TestUpdateScannerFreshnessSweepCoversRegistry(t *testing.T) {
	reg := registry.New()
	const n = 20
	for i := 0; i < n; i++ {
		cell, err := valuecell.New(types.KindI16, 0)
		require.NoError(t, err)
		rec := registry.NewRecord(string(rune('a'+i)), types.AccessReadOnly, cell)
		require.True(t, reg.Add(rec))
	}

	tr := transport.NewFake()
	state := NewPLCState()
	us := &UpdateScanner{Registry: reg, Transport: tr, Period: FreshnessWindow / time.Duration(n)}

	for i := 0; i < n; i++ {
		us.Tick(context.Background(), state)
	}

	touched := 0
	reg.ForEach(func(r *registry.Record) {
		if r.Cell.Dirty(types.SideUser) {
			touched++
		}
	})
	require.Equal(t, n, touched)
}
