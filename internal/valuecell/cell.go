package valuecell

import (
	"sync/atomic"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

// Cell is the dual-owner value cell described in §4.1. Kind and Size are
// fixed at construction; everything else is reached through atomics so
// reads and writes from the two sides never block each other.
type Cell struct {
	kind types.CellKind
	size int // byte size: fixed for numerics, blob/max length for binary/string

	buf   atomic.Pointer[[]byte]
	valid atomic.Bool

	// dirty[s] is true when side s has not yet consumed the most recent
	// write (or validity transition) made by the opposite side.
	dirty [2]atomic.Bool

	// reading[s] is true for the duration of a Read call on side s. A
	// write from the opposite side is suppressed while this is set, so the
	// "clear dirty" and "load value" halves of a read are never torn by a
	// concurrent write (§5).
	reading [2]atomic.Bool
}

// New allocates a cell of the given kind and size. For binary and string
// kinds size is the blob/max length; for fixed-width numerics size is
// ignored and kind.FixedSize() is used instead.
func New(kind types.CellKind, size int) (*Cell, error) {
	if fs := kind.FixedSize(); fs != 0 {
		size = fs
	} else if size <= 0 {
		return nil, &types.Error{Kind: types.ErrKindInvariant, Msg: "cell: non-positive size for variable-length kind"}
	}
	return &Cell{kind: kind, size: size}, nil
}

// Kind returns the cell's fixed storage kind.
func (c *Cell) Kind() types.CellKind { return c.kind }

// Size returns the cell's fixed byte size (blob/max length for binary/string).
func (c *Cell) Size() int { return c.size }

// Valid reports the current validity bit.
func (c *Cell) Valid() bool { return c.valid.Load() }

// Dirty reports whether side's dirty flag is currently set.
func (c *Cell) Dirty(side types.Side) bool { return c.dirty[side].Load() }

// SetValid flips the valid bit and, on an observed change, arms the
// opposite side's dirty flag so it notices the transition.
func (c *Cell) SetValid(side types.Side, v bool) {
	if c.valid.Swap(v) != v {
		c.dirty[side.Other()].Store(true)
	}
}

// readRaw clears side's own dirty flag before loading the current bytes,
// per the clean→dirty→clean state machine in §4.1.
func (c *Cell) readRaw(side types.Side) []byte {
	c.reading[side].Store(true)
	defer c.reading[side].Store(false)
	c.dirty[side].Store(false)
	p := c.buf.Load()
	if p == nil {
		return nil
	}
	return *p
}

// writeRaw stores data atomically and arms the opposite side's dirty flag.
// It is skipped (returning false) while the opposite side's read is in
// flight, so no write can tear a concurrent read.
func (c *Cell) writeRaw(side types.Side, data []byte) bool {
	other := side.Other()
	if c.reading[other].Load() {
		return false
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	c.buf.Store(&cp)
	c.dirty[other].Store(true)
	c.valid.Store(true)
	return true
}

// PeekBinary copies the current bytes into dst without touching side's
// dirty flag. The write scanner (C10) uses this to read a value destined
// for the transport while leaving the dirty flag armed, so a failed
// transport call leaves the record queued for retry on the next tick.
func (c *Cell) PeekBinary(dst []byte) int {
	p := c.buf.Load()
	if p == nil {
		return 0
	}
	return copy(dst, *p)
}

// ClearDirty clears side's dirty flag without performing a read. Paired
// with PeekBinary so a consumer can defer "I have consumed this" until
// after a fallible operation (e.g. a transport write) succeeds.
func (c *Cell) ClearDirty(side types.Side) { c.dirty[side].Store(false) }

// Touch force-arms side's dirty flag regardless of whether the value or
// validity actually changed. The update scanner's freshness sweep (C11)
// uses this to make the record layer re-read unchanged records
// periodically.
func (c *Cell) Touch(side types.Side) { c.dirty[side].Store(true) }

// ReadBinary copies the current bytes into dst and returns the number of
// bytes copied (0 if the cell has never been written). len(dst) must
// equal Size() unless the kind is
// string/wstring, which clamp to the destination.
func (c *Cell) ReadBinary(side types.Side, dst []byte) (int, error) {
	if c.kind != types.KindString && c.kind != types.KindWString && len(dst) != c.size {
		return 0, types.ErrSizeMismatch
	}
	raw := c.readRaw(side)
	n := copy(dst, raw)
	return n, nil
}

// WriteBinary stores an exact-size payload (strings/wstrings clamp and
// always succeed provided the cell's max length is at least 1).
func (c *Cell) WriteBinary(side types.Side, data []byte) (bool, error) {
	switch c.kind {
	case types.KindString, types.KindWString:
		if c.size < 1 {
			return false, types.ErrSizeMismatch
		}
		if len(data) > c.size {
			data = data[:c.size]
		}
	default:
		if len(data) != c.size {
			return false, types.ErrSizeMismatch
		}
	}
	return c.writeRaw(side, data), nil
}

// UserRead / PLCRead / UserWrite / PLCWrite are the side-fixed convenience
// wrappers used throughout the scanners and record layer.
func (c *Cell) UserRead(dst []byte) (int, error) { return c.ReadBinary(types.SideUser, dst) }
func (c *Cell) PLCRead(dst []byte) (int, error)  { return c.ReadBinary(types.SidePLC, dst) }
func (c *Cell) UserWrite(data []byte) (bool, error) {
	return c.WriteBinary(types.SideUser, data)
}
func (c *Cell) PLCWrite(data []byte) (bool, error) {
	return c.WriteBinary(types.SidePLC, data)
}
