package optimizer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/registry"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/valuecell"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

func addBoundRecord(t *testing.T, reg *registry.Registry, name string, igroup, offset uint32, size int) *registry.Record {
	t.Helper()
	cell, err := valuecell.New(types.KindI16, size)
	require.NoError(t, err)
	rec := registry.NewRecord(name, types.AccessReadOnly, cell)
	rec.Binding = &registry.PLCBinding{IndexGroup: igroup, IndexOffset: offset, Size: size}
	require.True(t, reg.Add(rec))
	return rec
}

func TestOptimizeRequestCoalescingS3(t *testing.T) {
	reg := registry.New()
	addBoundRecord(t, reg, "r0", 16448, 0, 2)
	addBoundRecord(t, reg, "r1", 16448, 2, 2)
	addBoundRecord(t, reg, "r2", 16448, 60, 2)

	groups := Optimize(reg)
	require.Len(t, groups, 2)
	require.Equal(t, uint32(0), groups[0].Offset)
	require.Equal(t, 4, groups[0].Length)
	require.Equal(t, uint32(60), groups[1].Offset)
	require.Equal(t, 2, groups[1].Length)
}

func TestOptimizeStartsNewGroupOnIndexGroupChange(t *testing.T) {
	reg := registry.New()
	addBoundRecord(t, reg, "a", 1, 0, 2)
	addBoundRecord(t, reg, "b", 2, 0, 2)

	groups := Optimize(reg)
	require.Len(t, groups, 2)
	require.Equal(t, uint32(1), groups[0].IndexGroup)
	require.Equal(t, uint32(2), groups[1].IndexGroup)
}

func TestOptimizeStartsNewGroupWhenRequestSizeExceedsMax(t *testing.T) {
	reg := registry.New()
	addBoundRecord(t, reg, "a", 1, 0, MaxReqSize-10)
	addBoundRecord(t, reg, "b", 1, MaxReqSize-10, 20)

	groups := Optimize(reg)
	require.Len(t, groups, 2)
}

func TestOptimizeRecordsGroupIndexAndOffsetInGroup(t *testing.T) {
	reg := registry.New()
	r0 := addBoundRecord(t, reg, "r0", 16448, 0, 2)
	r1 := addBoundRecord(t, reg, "r1", 16448, 2, 2)

	Optimize(reg)
	require.Equal(t, 0, r0.Binding.GroupIndex)
	require.Equal(t, 0, r0.Binding.OffsetInGroup)
	require.Equal(t, 0, r1.Binding.GroupIndex)
	require.Equal(t, 2, r1.Binding.OffsetInGroup)
}

func TestResponseSizeAddsStatusWordPadding(t *testing.T) {
	g := Group{Length: 100}
	require.Equal(t, 104, g.ResponseSize())
}

func TestOptimizeIgnoresUnboundRecords(t *testing.T) {
	reg := registry.New()
	cell, err := valuecell.New(types.KindI16, 2)
	require.NoError(t, err)
	rec := registry.NewRecord("unbound", types.AccessReadOnly, cell)
	require.True(t, reg.Add(rec))

	groups := Optimize(reg)
	require.Empty(t, groups)
}

func TestOptimizeCoverageInvariant6(t *testing.T) {
	reg := registry.New()
	addBoundRecord(t, reg, "a", 1, 0, 10)
	addBoundRecord(t, reg, "b", 1, 10, 10)
	addBoundRecord(t, reg, "c", 1, 100, 10)

	groups := Optimize(reg)
	totalGroupSize := 0
	for _, g := range groups {
		totalGroupSize += g.Length
	}
	require.GreaterOrEqual(t, totalGroupSize, 30)

	seen := map[*registry.Record]bool{}
	for _, g := range groups {
		for _, r := range g.Records {
			require.False(t, seen[r], "record present in two groups")
			seen[r] = true
		}
	}
}
