// Package scanner implements the three periodic scanners described in
// §4.9 (C9 read, C10 write, C11 update): grouped binary reads, coalesced
// binary writes, and reconnection/freshness sweeps against a
// transport.Transport, publishing into and consuming from value cells.
package scanner

import (
	"sync/atomic"
	"time"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

// PLCState is the shared atomic state a PLC's three scanners read and
// update: connection state, wall-clock timestamp, and the reconnection
// bookkeeping named in §3 ("a wall-clock timestamp updated by the read
// scanner, a connection-state value"). It has no mutex: every field is
// independently atomic, per §5's "PLC connection state: atomic enum".
type PLCState struct {
	conn            atomic.Int32 // types.ConnState
	symbolValid     atomic.Bool
	restartNeeded   atomic.Bool
	lastUpdateNanos atomic.Int64
	lastReconnect   atomic.Int64
}

// NewPLCState returns state initialized to ConnInit with a valid symbol
// table (the normal post-ingest starting point).
func NewPLCState() *PLCState {
	s := &PLCState{}
	s.conn.Store(int32(types.ConnInit))
	s.symbolValid.Store(true)
	return s
}

// Conn returns the current connection state.
func (s *PLCState) Conn() types.ConnState { return types.ConnState(s.conn.Load()) }

// SetConn stores a new connection state and reports whether it changed,
// so callers can log transitions exactly once (§4.9's "transitions are
// logged once").
func (s *PLCState) SetConn(v types.ConnState) (changed bool) {
	return s.conn.Swap(int32(v)) != int32(v)
}

// SymbolValid reports whether the ingested symbol table is still
// considered current (§4.9 C9 step 1).
func (s *PLCState) SymbolValid() bool { return s.symbolValid.Load() }

// InvalidateSymbolTable marks the symbol table stale, e.g. because the
// underlying file's mtime changed out of band (§6's persisted-state
// note). A changed symbol file forces an operator restart (§1
// non-goals); this flag only stops the scanners from trusting stale
// bindings in the meantime.
func (s *PLCState) InvalidateSymbolTable() { s.symbolValid.Store(false) }

// RestartNeeded reports whether the read scanner observed a "port
// disconnected" transport error since the last successful reconnect.
func (s *PLCState) RestartNeeded() bool { return s.restartNeeded.Load() }

// SetRestartNeeded arms or clears the restart-needed flag.
func (s *PLCState) SetRestartNeeded(v bool) { s.restartNeeded.Store(v) }

// Timestamp returns the wall-clock time the read scanner last refreshed
// on a successful tick.
func (s *PLCState) Timestamp() time.Time {
	n := s.lastUpdateNanos.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// touchTimestamp refreshes the read scanner's last-success timestamp.
func (s *PLCState) touchTimestamp(now time.Time) { s.lastUpdateNanos.Store(now.UnixNano()) }

// ReadyForReconnect reports whether at least minInterval has passed since
// the last reconnect attempt, and records this attempt as the latest one
// if so (§4.9 C11: "throttle attempts to at most one per 10 seconds").
func (s *PLCState) ReadyForReconnect(now time.Time, minInterval time.Duration) bool {
	last := s.lastReconnect.Load()
	if last != 0 && now.Sub(time.Unix(0, last)) < minInterval {
		return false
	}
	return s.lastReconnect.CompareAndSwap(last, now.UnixNano())
}
