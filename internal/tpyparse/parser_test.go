package tpyparse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/symtab"
)

const sampleDoc = `<?xml version="1.0"?>
<PlcProjectInfo>
  <RoutingInfo><NetId>5.1.2.3.1.1</NetId></RoutingInfo>
  <AdsInfo><Port>851</Port></AdsInfo>
</PlcProjectInfo>
<Symbols>
  <Symbol>
    <Name>MAIN.x</Name>
    <Type>INT</Type>
    <IGroup>16448</IGroup>
    <IOffset>0</IOffset>
    <BitSize>16</BitSize>
  </Symbol>
  <Symbol>
    <Name>MAIN.s</Name>
    <Type Decoration="1">S</Type>
    <IGroup>16448</IGroup>
    <IOffset>64</IOffset>
    <BitSize>40</BitSize>
    <Properties>
      <Property><Name>opc</Name><Value>1</Value></Property>
    </Properties>
  </Symbol>
</Symbols>
<DataTypes>
  <DataType>
    <Name Decoration="1">S</Name>
    <BitSize>40</BitSize>
    <SubItem>
      <Name>a</Name>
      <Type>BOOL</Type>
      <BitOffs>0</BitOffs>
      <BitSize>8</BitSize>
    </SubItem>
    <SubItem>
      <Name>b</Name>
      <Type Decoration="2">ARRAY [0..1] OF INT</Type>
      <BitOffs>8</BitOffs>
      <BitSize>32</BitSize>
    </SubItem>
  </DataType>
  <DataType>
    <Name Decoration="2">ARRAY [0..1] OF INT</Name>
    <BitSize>32</BitSize>
    <ArrayInfo><LBound>0</LBound><Elements>2</Elements></ArrayInfo>
    <Type>INT</Type>
  </DataType>
</DataTypes>
`

func TestParseBuildsSymbolsAndTypes(t *testing.T) {
	model, info, err := Parse(strings.NewReader(sampleDoc))
	require.NoError(t, err)
	require.Equal(t, "tc://5.1.2.3.1.1:851/", info.PLCAddress)
	require.Len(t, model.Symbols, 2)

	require.Equal(t, "MAIN.x", model.Symbols[0].Name)
	require.Equal(t, uint32(16448), model.Symbols[0].IGroup)
	require.Equal(t, 2, model.Symbols[0].ByteSize)

	s, ok := model.Lookup(1, "S")
	require.True(t, ok)
	require.Equal(t, symtab.KindStruct, s.Kind)
	require.Len(t, s.SubItems, 2)
	require.Equal(t, "b", s.SubItems[1].Name)
	require.Equal(t, symtab.KindArray, func() symtab.TypeKind {
		arr, ok := model.Lookup(2, "ARRAY [0..1] OF INT")
		require.True(t, ok)
		return arr.Kind
	}())
}

func TestParseRejectsMalformedDocument(t *testing.T) {
	_, _, err := Parse(strings.NewReader("<Symbols><Symbol><Name>oops</Symbols>"))
	require.Error(t, err)
}

const enumDoc = `<?xml version="1.0"?>
<DataTypes>
  <DataType>
    <Name>E</Name>
    <BitSize>16</BitSize>
    <EnumInfo><Enum>0</Enum><Text>A</Text></EnumInfo>
    <EnumInfo><Enum>1</Enum><Text>B</Text></EnumInfo>
    <EnumInfo><Enum>32</Enum><Text>C</Text></EnumInfo>
  </DataType>
</DataTypes>
`

// Each <EnumInfo> block is one member carrying its own integer value in
// <Enum>, not a document-position ordinal, per ParseTpy.cpp's
// enum_element handling (DESIGN.md Open Question 5).
func TestParseEnumUsesExplicitIntegerValue(t *testing.T) {
	model, _, err := Parse(strings.NewReader(enumDoc))
	require.NoError(t, err)

	e, ok := model.Lookup(0, "E")
	require.True(t, ok)
	require.Equal(t, symtab.KindEnum, e.Kind)
	require.Equal(t, map[int]string{0: "A", 1: "B", 32: "C"}, e.EnumLabels)
}
