package scanner

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/registry"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/transport"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

// ReconnectInterval bounds how often the update scanner attempts to
// re-subscribe for state-change notifications (§4.9 C11).
const ReconnectInterval = 10 * time.Second

// FreshnessWindow is the target time to sweep the entire registry with
// forced user-side dirty marks (§4.9 C11: "configured to cover the whole
// registry in ~10 seconds").
const FreshnessWindow = 10 * time.Second

// UpdateScanner is the periodic freshness-sweep and reconnection scanner
// (C11, §4.9).
type UpdateScanner struct {
	Registry  *registry.Registry
	Transport transport.Transport
	// Period is this scanner's own tick period, used to size the
	// freshness sweep's per-tick slice so the whole registry is covered
	// in roughly FreshnessWindow.
	Period time.Duration
	Logger *slog.Logger

	cursor      *registry.Record
	unsubscribe func()

	// reconnect de-duplicates concurrent reconnection attempts: the
	// periodic Tick and an operator-triggered TriggerReconnect (§6) can
	// both observe "needs reconnect" at once, and only one Subscribe call
	// should actually go out.
	reconnect singleflight.Group
}

// Tick executes one update-scanner pass against state, per §4.9 C11.
func (us *UpdateScanner) Tick(ctx context.Context, state *PLCState) {
	us.freshnessSweep()
	us.maybeReconnect(ctx, state)
}

// freshnessSweep advances a rolling cursor through the registry, forcing
// user-side dirty on a bounded slice of records each tick so the record
// layer re-reads them periodically even when the underlying value has
// not changed.
func (us *UpdateScanner) freshnessSweep() {
	count := us.Registry.Count()
	if count == 0 {
		return
	}
	sliceSize := us.sliceSize(count)
	for i := 0; i < sliceSize; i++ {
		us.cursor = us.Registry.GetNext(us.cursor)
		if us.cursor == nil {
			return
		}
		us.cursor.Cell.Touch(types.SideUser)
	}
}

// sliceSize computes how many records to touch this tick so a full sweep
// takes roughly FreshnessWindow, given this scanner's own period.
func (us *UpdateScanner) sliceSize(count int) int {
	period := us.Period
	if period <= 0 {
		period = time.Second
	}
	ticksPerWindow := FreshnessWindow / period
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}
	n := (count + int(ticksPerWindow) - 1) / int(ticksPerWindow)
	if n < 1 {
		n = 1
	}
	return n
}

// maybeReconnect re-subscribes for state-change notifications when the
// connection state is invalid or a restart was flagged by the read
// scanner, throttled to at most once per ReconnectInterval.
func (us *UpdateScanner) maybeReconnect(ctx context.Context, state *PLCState) {
	needsReconnect := state.Conn() != types.ConnRun || state.RestartNeeded()
	if !needsReconnect {
		return
	}
	if !state.ReadyForReconnect(time.Now(), ReconnectInterval) {
		return
	}
	us.doReconnect(ctx, state)
}

// TriggerReconnect forces an immediate resubscribe regardless of the
// ReconnectInterval throttle, the Go-native shape of an operator-issued
// "reconnect now" request (§6). It shares maybeReconnect's singleflight
// group, so a manual trigger racing the periodic sweep collapses into a
// single Subscribe call.
func (us *UpdateScanner) TriggerReconnect(ctx context.Context, state *PLCState) {
	us.doReconnect(ctx, state)
}

func (us *UpdateScanner) doReconnect(ctx context.Context, state *PLCState) {
	_, _, _ = us.reconnect.Do("reconnect", func() (any, error) {
		if us.unsubscribe != nil {
			us.unsubscribe()
			us.unsubscribe = nil
		}

		unsub, err := us.Transport.Subscribe(ctx, func(cs types.ConnState) {
			if state.SetConn(cs) {
				us.logger().Info("scanner: plc connection state changed", "state", cs)
			}
		})
		if err != nil {
			us.logger().Warn("scanner: resubscribe failed", "err", err)
			return nil, err
		}
		us.unsubscribe = unsub
		state.SetRestartNeeded(false)
		return nil, nil
	})
}

func (us *UpdateScanner) logger() *slog.Logger {
	if us.Logger != nil {
		return us.Logger
	}
	return slog.Default()
}
