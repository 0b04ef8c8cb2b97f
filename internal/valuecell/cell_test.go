package valuecell

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

func TestUserWriteThenPLCReadRoundTrip(t *testing.T) {
	c, err := New(types.KindI16, 0)
	require.NoError(t, err)

	ok, err := c.WriteFloat(types.SideUser, 42)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, c.Dirty(types.SidePLC))

	v, err := c.ReadFloat(types.SidePLC)
	require.NoError(t, err)
	require.Equal(t, float64(42), v)
	require.False(t, c.Dirty(types.SidePLC))

	ok, err = c.WriteFloat(types.SidePLC, -7)
	require.NoError(t, err)
	require.True(t, ok)

	v, err = c.ReadFloat(types.SideUser)
	require.NoError(t, err)
	require.Equal(t, float64(-7), v)
}

func TestSetValidTogglesOppositeDirtyOnlyOnChange(t *testing.T) {
	c, err := New(types.KindBool, 0)
	require.NoError(t, err)

	c.SetValid(types.SideUser, true)
	require.True(t, c.Dirty(types.SidePLC))

	_, _ = c.ReadFloat(types.SidePLC)
	require.False(t, c.Dirty(types.SidePLC))

	// no change: dirty flag must not be re-armed
	c.SetValid(types.SideUser, true)
	require.False(t, c.Dirty(types.SidePLC))
}

func TestWriteSkippedWhileOppositeReadInFlight(t *testing.T) {
	c, err := New(types.KindI32, 0)
	require.NoError(t, err)
	c.reading[types.SidePLC].Store(true)

	ok, err := c.WriteFloat(types.SideUser, 1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStringClampsToMaxLength(t *testing.T) {
	c, err := New(types.KindString, 4) // 3 usable chars + NUL
	require.NoError(t, err)

	ok, err := c.WriteString(types.SideUser, "hello")
	require.NoError(t, err)
	require.True(t, ok)

	s, err := c.ReadString(types.SidePLC)
	require.NoError(t, err)
	require.Equal(t, "hel", s)
}

func TestBinarySizeMismatch(t *testing.T) {
	c, err := New(types.KindBinary, 4)
	require.NoError(t, err)

	_, err = c.WriteBinary(types.SideUser, []byte{1, 2, 3})
	require.ErrorIs(t, err, types.ErrSizeMismatch)
}
