package tpyparse

// These mirror the documented tag set of §4.4. encoding/xml fills one of
// these per Symbol/DataType subtree; callers never see the raw tokens
// inside a subtree, only the assembled struct.

type xmlTypeRef struct {
	Name       string `xml:",chardata"`
	Decoration string `xml:"Decoration,attr"`
	Pointer    string `xml:"Pointer,attr"`
}

type xmlProperty struct {
	Name  string `xml:"Name"`
	Value string `xml:"Value"`
}

type xmlProperties struct {
	Property []xmlProperty `xml:"Property"`
}

type xmlArrayInfo struct {
	LBound   string `xml:"LBound"`
	Elements string `xml:"Elements"`
}

// xmlEnumInfo is one member of an enumeration: the source document
// repeats one <EnumInfo> block per member, each carrying its own integer
// value as the <Enum> element's chardata, a <Text> label, and an optional
// <Comment>.
type xmlEnumInfo struct {
	Enum    string `xml:"Enum"`
	Text    string `xml:"Text"`
	Comment string `xml:"Comment"`
}

type xmlSubItem struct {
	Name       string        `xml:"Name"`
	Type       xmlTypeRef    `xml:"Type"`
	BitOffs    string        `xml:"BitOffs"`
	BitSize    string        `xml:"BitSize"`
	Properties xmlProperties `xml:"Properties"`
}

type xmlSymbol struct {
	Name       string        `xml:"Name"`
	Type       xmlTypeRef    `xml:"Type"`
	IGroup     string        `xml:"IGroup"`
	IOffset    string        `xml:"IOffset"`
	BitSize    string        `xml:"BitSize"`
	Properties xmlProperties `xml:"Properties"`
}

type xmlNamedDecoration struct {
	Name       string `xml:",chardata"`
	Decoration string `xml:"Decoration,attr"`
}

type xmlDataType struct {
	Name       xmlNamedDecoration `xml:"Name"`
	BitSize    string             `xml:"BitSize"`
	ArrayInfo  []xmlArrayInfo     `xml:"ArrayInfo"`
	EnumInfo   []xmlEnumInfo      `xml:"EnumInfo"`
	SubItem    []xmlSubItem       `xml:"SubItem"`
	FbInfo     *struct{}          `xml:"FbInfo"`
	Type       xmlTypeRef         `xml:"Type"` // element type, for ArrayInfo-bearing types
	Properties xmlProperties      `xml:"Properties"`
}

type xmlRoutingInfo struct {
	NetId string `xml:"NetId"`
}

type xmlAdsInfo struct {
	Port string `xml:"Port"`
}

type xmlPlcProjectInfo struct {
	RoutingInfo *xmlRoutingInfo `xml:"RoutingInfo"`
	AdsInfo     *xmlAdsInfo     `xml:"AdsInfo"`
}

type xmlCompilerInfo struct {
	CompilerVersion string `xml:"CompilerVersion"`
	TargetRuntime   string `xml:"TargetRuntime"`
	CpuFamily       string `xml:"CpuFamily"`
}
