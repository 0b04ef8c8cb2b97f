// Package transport declares the collaborator spec.md §1 excludes by
// name from the core: "the concrete wire transport to the remote memory
// server". It is a Go interface plus an in-memory fake; no concrete
// network implementation belongs in this module.
package transport

import (
	"context"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

// WriteEntry is one (index-group, index-offset, payload) triple, the
// wire shape the write scanner (C10) coalesces into a single call (§4.9).
type WriteEntry struct {
	IndexGroup  uint32
	IndexOffset uint32
	Data        []byte
}

// Transport is the remote-memory-server collaborator consulted by the
// read, write, and update scanners (C9-C11). Implementations return a
// *types.TransportError so callers can branch on TransportKind.
type Transport interface {
	// ReadBlock issues one grouped binary read covering [indexOffset,
	// indexOffset+size) of indexGroup and returns exactly size bytes on
	// success (§4.8's "one grouped binary read").
	ReadBlock(ctx context.Context, indexGroup, indexOffset uint32, size int) ([]byte, error)

	// WriteBlock issues one coalesced write carrying the given triples,
	// per §4.9 C10 step 3 ("the array of triples followed by the
	// concatenated payloads").
	WriteBlock(ctx context.Context, entries []WriteEntry) error

	// Subscribe registers for out-of-band connection-state notifications
	// (§4.9 C11, §4.10). onChange is invoked from an implementation-owned
	// goroutine whenever the remote server's state changes. The returned
	// func unsubscribes; subsequent calls are no-ops.
	Subscribe(ctx context.Context, onChange func(types.ConnState)) (unsubscribe func(), err error)

	// Version reports the transport library's version triple, consulted
	// by the Info Plane (C12).
	Version() (major, minor, patch int)
}

// NewDisconnectedError wraps err as a TransportDisconnected error, the
// classification that arms the scanners' reconnection logic (§4.9).
func NewDisconnectedError(err error) *types.TransportError {
	return &types.TransportError{Kind: types.TransportDisconnected, Err: err}
}
