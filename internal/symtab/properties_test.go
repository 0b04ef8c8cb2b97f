package symtab

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// ParsePropertyName must key the property map by the literal OPC wire
// code (ParseUtilConst.h's OPC_PROP_* values), since that is the code a
// real symbol file's "opc_prop N" property name carries and the one any
// later PropDescription/PropAccessRights/... lookup must match.
func TestParsePropertyNameUsesWireCodes(t *testing.T) {
	cases := []struct {
		name string
		want PropertyCode
	}{
		{"opc_prop 101", PropDescription},
		{"opc_prop[100]", PropUnit},
		{"opc_prop 5", PropAccessRights},
		{"opc_prop 307", PropHIHILimit},
		{"opc_prop 8604", PropDeviceTypeOverride},
		{"opc_prop 8620", PropAlias},
		{"opc_prop 8801", PropertyCode(8801)},
	}
	for _, c := range cases {
		code, isOpc, ok := ParsePropertyName(c.name)
		require.True(t, ok, c.name)
		require.False(t, isOpc, c.name)
		require.Equal(t, c.want, code, c.name)
	}
}

func TestParsePropertyNameOpcTogglesPublish(t *testing.T) {
	_, isOpc, ok := ParsePropertyName("opc")
	require.True(t, ok)
	require.True(t, isOpc)
}

func TestParsePropertyNamePassthroughWindow(t *testing.T) {
	code, _, ok := ParsePropertyName("opc_prop 8801")
	require.True(t, ok)
	require.True(t, code.IsPassthrough())
}
