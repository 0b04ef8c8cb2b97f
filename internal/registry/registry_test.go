package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/valuecell"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

func mustRecord(t *testing.T, name string) *Record {
	t.Helper()
	cell, err := valuecell.New(types.KindI32, 0)
	require.NoError(t, err)
	return NewRecord(name, types.AccessReadWrite, cell)
}

func TestAddRejectsCaseInsensitiveDuplicate(t *testing.T) {
	r := New()
	require.True(t, r.Add(mustRecord(t, "MAIN:x")))
	require.False(t, r.Add(mustRecord(t, "main:X")))
	require.Equal(t, 1, r.Count())
}

func TestFindIsCaseInsensitive(t *testing.T) {
	r := New()
	rec := mustRecord(t, "MAIN:x")
	require.True(t, r.Add(rec))
	found, ok := r.Find("main:X")
	require.True(t, ok)
	require.Same(t, rec, found)
}

func TestGetNextWrapsAroundAndSkipsErased(t *testing.T) {
	r := New()
	a, b, c := mustRecord(t, "a"), mustRecord(t, "b"), mustRecord(t, "c")
	r.Add(a)
	r.Add(b)
	r.Add(c)
	require.True(t, r.Erase("b"))

	n := r.GetNext(nil)
	require.Same(t, a, n)
	n = r.GetNext(n)
	require.Same(t, c, n)
	n = r.GetNext(n)
	require.Same(t, a, n) // wrapped, skipping erased b
}

func TestGetNextResetsWhenPrevErased(t *testing.T) {
	r := New()
	a, b := mustRecord(t, "a"), mustRecord(t, "b")
	r.Add(a)
	r.Add(b)
	r.Erase("a")
	n := r.GetNext(a)
	require.Same(t, b, n)
}
