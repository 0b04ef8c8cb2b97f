package valuecell

import (
	"encoding/binary"
	"math"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

// Typed accessors perform the lossy numeric convert described in §4.1:
// any numeric kind can be read or written as a float64, with values
// truncated or rounded to fit the cell's actual representation. No
// overflow check is performed, matching the reference semantics.

// ReadFloat returns the cell's current value converted to float64.
func (c *Cell) ReadFloat(side types.Side) (float64, error) {
	if !c.kind.IsNumeric() {
		return 0, types.NewSchemaError("ReadFloat on non-numeric cell")
	}
	raw := c.readRaw(side)
	if raw == nil {
		return 0, nil
	}
	return decodeNumeric(c.kind, raw), nil
}

// WriteFloat stores v, converting (lossily, no overflow check) into the
// cell's fixed-width representation.
func (c *Cell) WriteFloat(side types.Side, v float64) (bool, error) {
	if !c.kind.IsNumeric() {
		return false, types.NewSchemaError("WriteFloat on non-numeric cell")
	}
	return c.writeRaw(side, encodeNumeric(c.kind, v)), nil
}

func decodeNumeric(kind types.CellKind, raw []byte) float64 {
	switch kind {
	case types.KindBool:
		if len(raw) > 0 && raw[0] != 0 {
			return 1
		}
		return 0
	case types.KindI8:
		return float64(int8(raw[0]))
	case types.KindU8:
		return float64(raw[0])
	case types.KindI16:
		return float64(int16(binary.LittleEndian.Uint16(raw)))
	case types.KindU16:
		return float64(binary.LittleEndian.Uint16(raw))
	case types.KindI32:
		return float64(int32(binary.LittleEndian.Uint32(raw)))
	case types.KindU32:
		return float64(binary.LittleEndian.Uint32(raw))
	case types.KindI64:
		return float64(int64(binary.LittleEndian.Uint64(raw)))
	case types.KindU64:
		return float64(binary.LittleEndian.Uint64(raw))
	case types.KindF32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(raw)))
	case types.KindF64:
		return math.Float64frombits(binary.LittleEndian.Uint64(raw))
	default:
		return 0
	}
}

func encodeNumeric(kind types.CellKind, v float64) []byte {
	buf := make([]byte, kind.FixedSize())
	switch kind {
	case types.KindBool:
		if v != 0 {
			buf[0] = 1
		}
	case types.KindI8:
		buf[0] = byte(int8(v))
	case types.KindU8:
		buf[0] = byte(uint8(v))
	case types.KindI16:
		binary.LittleEndian.PutUint16(buf, uint16(int16(v)))
	case types.KindU16:
		binary.LittleEndian.PutUint16(buf, uint16(v))
	case types.KindI32:
		binary.LittleEndian.PutUint32(buf, uint32(int32(v)))
	case types.KindU32:
		binary.LittleEndian.PutUint32(buf, uint32(v))
	case types.KindI64:
		binary.LittleEndian.PutUint64(buf, uint64(int64(v)))
	case types.KindU64:
		binary.LittleEndian.PutUint64(buf, uint64(v))
	case types.KindF32:
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(v)))
	case types.KindF64:
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
	}
	return buf
}

// ReadString decodes the cell's current bytes as an ASCII string,
// stopping at the first NUL. wstring cells are assumed already narrowed
// to ASCII, per the reference's lossy string/wstring interconversion.
func (c *Cell) ReadString(side types.Side) (string, error) {
	if c.kind != types.KindString && c.kind != types.KindWString {
		return "", types.NewSchemaError("ReadString on non-string cell")
	}
	raw := c.readRaw(side)
	n := 0
	for n < len(raw) && raw[n] != 0 {
		n++
	}
	return string(raw[:n]), nil
}

// WriteString stores v NUL-terminated, truncating to the cell's max
// length (size - 1) if necessary. Always succeeds provided size >= 1,
// unless suppressed by a concurrent opposite-side read.
func (c *Cell) WriteString(side types.Side, v string) (bool, error) {
	if c.kind != types.KindString && c.kind != types.KindWString {
		return false, types.NewSchemaError("WriteString on non-string cell")
	}
	if c.size < 1 {
		return false, types.ErrSizeMismatch
	}
	maxLen := c.size - 1
	if len(v) > maxLen {
		v = v[:maxLen]
	}
	buf := make([]byte, c.size)
	copy(buf, v)
	return c.writeRaw(side, buf), nil
}
