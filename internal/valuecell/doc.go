// Package valuecell implements the dual-owner coherent value cell (C1):
// a typed, atomic, two-sided store with independent per-side dirty flags
// and one validity bit shared by both sides, used to pass values between the record layer
// ("user" side) and the PLC transport ("plc" side) without a lock per cell.
//
// A write from one side publishes into the cell and marks the *other*
// side's dirty flag; the other side's next read clears its own dirty flag
// and observes the published value. Writes are suppressed while the
// target side's read is in flight, so a read never tears between the
// "clear dirty" step and the "load value" step (§4.1, §5).
//
// All state transitions use sequentially-consistent atomics; Cell has no
// mutex and is safe for concurrent use by exactly one user-side and one
// plc-side caller.
package valuecell
