package dbemit

import (
	"strconv"
	"strings"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/plctypes"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/symtab"
)

// recordKind picks an EPICS record type from a leaf's process
// classification and its resolved direction (§4.7, §6).
func recordKind(process plctypes.ProcessType, writable bool) string {
	switch process {
	case plctypes.ProcessBool:
		if writable {
			return "bo"
		}
		return "bi"
	case plctypes.ProcessEnum:
		if writable {
			return "mbbo"
		}
		return "mbbi"
	case plctypes.ProcessString:
		if writable {
			return "stringout"
		}
		return "stringin"
	case plctypes.ProcessReal:
		if writable {
			return "ao"
		}
		return "ai"
	default: // ProcessInteger, ProcessBinary
		if writable {
			return "longout"
		}
		return "longin"
	}
}

// direction resolves whether a leaf is writable per §4.7: writable if the
// direction-override property equals "output" or access-rights bit 2 is
// set; read-only if the override equals "input" or access-rights bit 1
// is the only bit set. Absent both signals, defaults to read-only.
func direction(props symtab.PropertyList) (writable bool) {
	if v, ok := props.Get(symtab.PropDirectionOverride); ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "output":
			return true
		case "input":
			return false
		}
	}
	if v, ok := props.Get(symtab.PropAccessRights); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			if n&2 != 0 {
				return true
			}
			if n == 1 {
				return false
			}
		}
	}
	return false
}

// scanField returns the SCAN field value for a record, per §6.
func scanField(writable bool) string {
	if writable {
		return "Passive"
	}
	return "I/O Intr"
}

// enumStateFields returns the ZRST/ONST/.../FFST and matching
// ZRVL/.../FFVL field pairs for an enum leaf's labels, sorted by ordinal.
func enumStateFields(labels map[int]string) []Field {
	names := [16]string{
		"ZR", "ON", "TW", "TH", "FR", "FV", "SX", "SV",
		"EI", "NI", "TE", "EL", "TV", "TT", "FT", "FF",
	}
	fields := make([]Field, 0, len(labels)*2)
	for ord := 0; ord < 16; ord++ {
		label, ok := labels[ord]
		if !ok {
			continue
		}
		fields = append(fields, Field{Key: names[ord] + "VL", Value: strconv.Itoa(ord)})
		fields = append(fields, Field{Key: names[ord] + "ST", Value: label})
	}
	return fields
}

// Field is one `field(KEY,"VALUE")` line.
type Field struct {
	Key   string
	Value string
}

// splitPassthrough splits a "FIELD,value" passthrough string at the
// first comma, trimming both halves (§4.4, S6).
func splitPassthrough(raw string) (key, value string, ok bool) {
	idx := strings.IndexByte(raw, ',')
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(raw[:idx])
	value = strings.TrimSpace(raw[idx+1:])
	return key, value, key != ""
}
