package scanner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/optimizer"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/registry"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/transport"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

// ReadScanner is the periodic grouped-read scanner (C9, §4.9).
type ReadScanner struct {
	Registry  *registry.Registry
	Groups    []optimizer.Group
	Transport transport.Transport
	// Slowdown is the "user-side slowdown multiple" M: read-only records
	// publish every M-th cycle, read-write records every cycle.
	Slowdown int
	Logger   *slog.Logger

	cycle uint64
}

// Tick executes one read-scanner pass against state, per §4.9 C9.
func (rs *ReadScanner) Tick(ctx context.Context, state *PLCState) {
	logger := rs.logger()

	if state.Conn() != types.ConnRun || !state.SymbolValid() {
		rs.Registry.ForEach(func(r *registry.Record) {
			r.Cell.SetValid(types.SidePLC, false)
		})
		return
	}

	rs.cycle++
	onMthCycle := rs.Slowdown <= 1 || rs.cycle%uint64(rs.Slowdown) == 0
	anySuccess := false

	for _, g := range rs.Groups {
		data, err := rs.Transport.ReadBlock(ctx, g.IndexGroup, g.Offset, g.Length)
		if err != nil {
			var terr *types.TransportError
			if errors.As(err, &terr) && terr.Kind == types.TransportDisconnected {
				state.SetRestartNeeded(true)
			} else {
				logger.Warn("scanner: read tick failed", "index_group", g.IndexGroup, "offset", g.Offset, "err", err)
			}
			continue
		}
		anySuccess = true
		for _, r := range g.Records {
			if r.Access == types.AccessReadOnly && !onMthCycle {
				continue
			}
			off := r.Binding.OffsetInGroup
			size := r.Binding.Size
			if off < 0 || off+size > len(data) {
				logger.Warn("scanner: record binding out of group bounds", "record", r.Name)
				continue
			}
			if _, err := r.Cell.PLCWrite(data[off : off+size]); err != nil {
				logger.Warn("scanner: plc write failed", "record", r.Name, "err", err)
			}
		}
	}

	if anySuccess {
		state.touchTimestamp(time.Now())
	}
}

func (rs *ReadScanner) logger() *slog.Logger {
	if rs.Logger != nil {
		return rs.Logger
	}
	return slog.Default()
}
