package symtab

import (
	"strings"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

// PropertyCode identifies a recognized entry in a PropertyList (§3). These
// are the literal OPC property wire codes a real symbol file's
// "opc_prop N" names carry (ParseUtilConst.h's OPC_PROP_* table) -- not a
// private renumbering -- since ParsePropertyName below stores entries
// under the wire code it parsed out of the property name, unchanged.
type PropertyCode int

const (
	PropCanonicalDataType PropertyCode = 1 // OPC_PROP_CDT
	PropOpcValue          PropertyCode = 2 // OPC_PROP_VALUE
	PropQuality           PropertyCode = 3 // OPC_PROP_QUALITY
	PropTimestamp         PropertyCode = 4 // OPC_PROP_TIME
	PropAccessRights      PropertyCode = 5 // OPC_PROP_RIGHTS
	PropScanRate          PropertyCode = 6 // OPC_PROP_SCANRATE

	PropUnit        PropertyCode = 100 // OPC_PROP_UNIT -> EGU
	PropDescription PropertyCode = 101 // OPC_PROP_DESC -> DESC
	PropEguHigh     PropertyCode = 102 // OPC_PROP_HIEU -> HOPR
	PropEguLow      PropertyCode = 103 // OPC_PROP_LOEU -> LOPR
	PropDrvHigh     PropertyCode = 104 // OPC_PROP_HIRANGE -> DRVH
	PropDrvLow      PropertyCode = 105 // OPC_PROP_LORANGE -> DRVL
	PropOneState    PropertyCode = 106 // OPC_PROP_CLOSE -> ONAM
	PropZeroState   PropertyCode = 107 // OPC_PROP_OPEN -> ZNAM

	PropDeadband  PropertyCode = 306 // OPC_PROP_ALMDB -> HYST
	PropHIHILimit PropertyCode = 307 // OPC_PROP_ALMHH -> HIHI
	PropHILimit   PropertyCode = 308 // OPC_PROP_ALMH -> HIGH
	PropLOLimit   PropertyCode = 309 // OPC_PROP_ALML -> LOW
	PropLOLOLimit PropertyCode = 310 // OPC_PROP_ALMLL -> LOLO

	PropPrecision PropertyCode = 8500 // OPC_PROP_PREC

	PropRecordTypeOverride PropertyCode = 8600 // OPC_PROP_RECTYPE
	PropDirectionOverride  PropertyCode = 8601 // OPC_PROP_INOUT
	PropTimeStampSource    PropertyCode = 8602 // OPC_PROP_TSE
	PropInitOnStart        PropertyCode = 8603 // OPC_PROP_PINI
	PropDeviceTypeOverride PropertyCode = 8604 // OPC_PROP_DTYP
	PropServerName         PropertyCode = 8610 // OPC_PROP_SERVER
	PropFullAddress        PropertyCode = 8611 // OPC_PROP_PLCNAME
	PropAlias              PropertyCode = 8620 // OPC_PROP_ALIAS

	PropOneStateSeverity      PropertyCode = 8700 // OPC_PROP_ALMOSV
	PropChangeOfStateSeverity PropertyCode = 8702 // OPC_PROP_ALMCOSV
	PropUnknownSeverity       PropertyCode = 8703 // OPC_PROP_ALMUNSV

	PropHIHISeverity PropertyCode = 8727 // OPC_PROP_ALMHHSV
	PropHISeverity   PropertyCode = 8728 // OPC_PROP_ALMHSV
	PropLOSeverity   PropertyCode = 8729 // OPC_PROP_ALMLSV
	PropLOLOSeverity PropertyCode = 8730 // OPC_PROP_ALMLLSV
)

// PropEnumStateBase is the first of 16 consecutive codes (8510..8525,
// OPC_PROP_ZRST..OPC_PROP_FFST) carrying enum value/label pairs, per §3.
const PropEnumStateBase PropertyCode = 8510

// PropEnumSeverityBase is the first of 16 consecutive codes (8710..8725,
// OPC_PROP_ALMZRSV..OPC_PROP_ALMFFSV) carrying per-enum-state alarm
// severities.
const PropEnumSeverityBase PropertyCode = 8710

// PropPassthroughLow/PropPassthroughHigh bound the "field,value"
// passthrough window: codes in [8800, 9000) carry a literal
// "FIELD,value" string split at the first comma by the DB emitter (§4.4, S6).
const (
	PropPassthroughLow  PropertyCode = 8800
	PropPassthroughHigh PropertyCode = 8999
)

// IsPassthrough reports whether code falls in the user-passthrough window.
func (c PropertyCode) IsPassthrough() bool {
	return c >= PropPassthroughLow && c <= PropPassthroughHigh
}

// PropertyList is a tri-state publish flag plus an integer->string map
// (§3). The zero value is PublishInherit with no properties.
type PropertyList struct {
	Publish types.PublishMode
	Props   map[PropertyCode]string
}

// Get returns the raw string value for code, if present.
func (p PropertyList) Get(code PropertyCode) (string, bool) {
	if p.Props == nil {
		return "", false
	}
	v, ok := p.Props[code]
	return v, ok
}

// Set stores value for code, allocating the map on first use.
func (p *PropertyList) Set(code PropertyCode, value string) {
	if p.Props == nil {
		p.Props = make(map[PropertyCode]string)
	}
	p.Props[code] = value
}

// Merge returns base's entries overridden by overlay's entries (and
// overlay's publish mode unless it is inherit) -- i.e. later entries win, per
// the inheritance rule in §4.5: "parent's defaults ∪ child's type-level
// properties ∪ child's symbol-level properties, with later entries
// winning". Callers chain Merge calls in that order.
func Merge(base, overlay PropertyList) PropertyList {
	out := PropertyList{Publish: base.Publish}
	if overlay.Publish != types.PublishInherit {
		out.Publish = overlay.Publish
	}
	if len(base.Props) == 0 && len(overlay.Props) == 0 {
		return out
	}
	out.Props = make(map[PropertyCode]string, len(base.Props)+len(overlay.Props))
	for k, v := range base.Props {
		out.Props[k] = v
	}
	for k, v := range overlay.Props {
		out.Props[k] = v
	}
	return out
}

// ParsePropertyName resolves a raw <Property><Name> string into a
// PropertyCode and, for "opc", the publish-flag value it carries.
//
// "opc" (exact match) toggles the tri-state publish flag. A name of the
// form "opc_prop" followed by whitespace and an integer (optionally
// bracketed, e.g. "opc_prop [28]") keys into the integer property map
// (§4.4).
func ParsePropertyName(name string) (code PropertyCode, isOpc bool, ok bool) {
	if name == "opc" {
		return 0, true, true
	}
	const prefix = "opc_prop"
	if !strings.HasPrefix(name, prefix) {
		return 0, false, false
	}
	rest := strings.TrimSpace(name[len(prefix):])
	rest = strings.Trim(rest, "[]")
	rest = strings.TrimSpace(rest)
	n, err := parseInt(rest)
	if err != nil {
		return 0, false, false
	}
	return PropertyCode(n), false, true
}

func parseInt(s string) (int, error) {
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	if s == "" {
		return 0, types.NewSchemaError("empty integer in property name")
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, types.NewSchemaError("non-digit in property name")
		}
		n = n*10 + int(r-'0')
	}
	if neg {
		n = -n
	}
	return n, nil
}
