package scanner

import (
	"context"
	"log/slog"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/registry"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/transport"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

// DefaultWriteBatchLimit is the default count at which the write scanner
// flushes an in-progress batch (§4.9 C10 step 3).
const DefaultWriteBatchLimit = 1000

// WriteScanner is the periodic coalesced-write scanner (C10, §4.9).
type WriteScanner struct {
	Registry  *registry.Registry
	Transport transport.Transport
	// BatchLimit is the write-entry count that triggers a mid-sweep
	// flush. Defaults to DefaultWriteBatchLimit when <= 0.
	BatchLimit int
	Logger     *slog.Logger
}

type pendingWrite struct {
	entry transport.WriteEntry
	rec   *registry.Record
}

// Tick executes one write-scanner pass against state, per §4.9 C10.
func (ws *WriteScanner) Tick(ctx context.Context, state *PLCState) {
	logger := ws.logger()

	if state.Conn() != types.ConnRun || !state.SymbolValid() {
		return
	}

	limit := ws.BatchLimit
	if limit <= 0 {
		limit = DefaultWriteBatchLimit
	}

	var batch []pendingWrite
	flush := func() {
		if len(batch) == 0 {
			return
		}
		entries := make([]transport.WriteEntry, len(batch))
		for i, p := range batch {
			entries[i] = p.entry
		}
		if err := ws.Transport.WriteBlock(ctx, entries); err != nil {
			// Leave PLC-side dirty flags set (never cleared during the
			// peek above) so the next tick retries these records (§4.9
			// C10 step 5).
			logger.Warn("scanner: write tick failed, will retry", "count", len(batch), "err", err)
			batch = batch[:0]
			return
		}
		for _, p := range batch {
			p.rec.Cell.ClearDirty(types.SidePLC)
		}
		batch = batch[:0]
	}

	ws.Registry.ForEach(func(r *registry.Record) {
		if r.Binding == nil || !r.Cell.Dirty(types.SidePLC) {
			return
		}
		buf := make([]byte, r.Binding.Size)
		r.Cell.PeekBinary(buf)
		batch = append(batch, pendingWrite{
			entry: transport.WriteEntry{IndexGroup: r.Binding.IndexGroup, IndexOffset: r.Binding.IndexOffset, Data: buf},
			rec:   r,
		})
		if len(batch) >= limit {
			flush()
		}
	})
	flush()
}

func (ws *WriteScanner) logger() *slog.Logger {
	if ws.Logger != nil {
		return ws.Logger
	}
	return slog.Default()
}
