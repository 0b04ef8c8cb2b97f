// Package plctypes is the shared table of atomic PLC type keywords and
// their process-type classification (§4.5) and cell-kind mapping (§4.7).
// It is consulted by the type-tree walker, the symbol-table post-patch
// pass, and the DB emitter, so the three agree on exactly one answer for
// "what kind of leaf is this".
package plctypes

import (
	"strings"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

// ProcessType is the walker's coarse leaf classification (§4.5 step 3).
type ProcessType int

const (
	ProcessInteger ProcessType = iota
	ProcessReal
	ProcessBool
	ProcessString
	ProcessEnum
	ProcessBinary
)

// atomicInfo pairs a keyword's process classification with the cell kind
// used when no enum/struct resolution applies (§4.7's source-type table).
type atomicInfo struct {
	process ProcessType
	kind    types.CellKind
}

var atomicKeywords = map[string]atomicInfo{
	"BOOL":         {ProcessBool, types.KindBool},
	"BYTE":         {ProcessInteger, types.KindU8},
	"SINT":         {ProcessInteger, types.KindI8},
	"USINT":        {ProcessInteger, types.KindU8},
	"INT":          {ProcessInteger, types.KindI16},
	"UINT":         {ProcessInteger, types.KindU16},
	"WORD":         {ProcessInteger, types.KindU16},
	"DINT":         {ProcessInteger, types.KindI32},
	"UDINT":        {ProcessInteger, types.KindU32},
	"DWORD":        {ProcessInteger, types.KindU32},
	"LINT":         {ProcessInteger, types.KindI64},
	"ULINT":        {ProcessInteger, types.KindU64},
	"LWORD":        {ProcessInteger, types.KindU64},
	"LTIME":        {ProcessInteger, types.KindU64},
	"REAL":         {ProcessReal, types.KindF32},
	"LREAL":        {ProcessReal, types.KindF64},
	"STRING":       {ProcessString, types.KindString},
	"WSTRING":      {ProcessString, types.KindWString},
	"TIME":         {ProcessInteger, types.KindU32},
	"TOD":          {ProcessInteger, types.KindU32},
	"TIME_OF_DAY":  {ProcessInteger, types.KindU32},
	"DATE":         {ProcessInteger, types.KindU32},
	"DT":           {ProcessInteger, types.KindU32},
	"DATE_AND_TIME": {ProcessInteger, types.KindU32},
}

// bareAtomicName strips a "STRING(80)"-style length suffix so the keyword
// table lookup only needs the base keyword.
func bareAtomicName(name string) string {
	if idx := strings.IndexByte(name, '('); idx >= 0 {
		return name[:idx]
	}
	return name
}

// IsAtomicKeyword reports whether name (ignoring any "(n)" length suffix)
// names one of the fixed atomic PLC types enumerated in §4.5.
func IsAtomicKeyword(name string) bool {
	_, ok := atomicKeywords[strings.ToUpper(bareAtomicName(name))]
	return ok
}

// Classify returns the process-type and default cell kind for an atomic
// keyword. ok is false if name is not a recognized atomic keyword.
func Classify(name string) (ProcessType, types.CellKind, bool) {
	info, ok := atomicKeywords[strings.ToUpper(bareAtomicName(name))]
	if !ok {
		return 0, 0, false
	}
	return info.process, info.kind, true
}

// IntKindForBitSize picks the unsigned integer cell kind whose width is
// exactly bits, for leaves without a more specific classification (an
// enumeration with out-of-range values, per §4.5 step 7). ok is false for
// a bit count this table has no kind for.
func IntKindForBitSize(bits int) (types.CellKind, bool) {
	switch bits {
	case 8:
		return types.KindU8, true
	case 16:
		return types.KindU16, true
	case 32:
		return types.KindU32, true
	case 64:
		return types.KindU64, true
	default:
		return 0, false
	}
}

// StringLength parses the "(n)" suffix of a STRING(n)/WSTRING(n) keyword,
// defaulting to 80 (the conventional PLC default) when absent.
func StringLength(name string) int {
	idx := strings.IndexByte(name, '(')
	if idx < 0 {
		return 80
	}
	end := strings.IndexByte(name[idx:], ')')
	if end < 0 {
		return 80
	}
	n := 0
	for _, r := range name[idx+1 : idx+end] {
		if r < '0' || r > '9' {
			return 80
		}
		n = n*10 + int(r-'0')
	}
	if n <= 0 {
		return 80
	}
	return n
}
