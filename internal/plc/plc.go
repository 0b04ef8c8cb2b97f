package plc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/optimizer"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/registry"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/scanner"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/transport"
)

// PLC is a named collector owning a Registry, scanner configuration, a
// wall-clock timestamp, a connection-state value, and the three scanner
// goroutines (§3).
type PLC struct {
	name  string
	alias string

	Registry  *registry.Registry
	Transport transport.Transport
	Config    ScanConfig
	State     *scanner.PLCState
	Groups    []optimizer.Group
	Logger    *slog.Logger

	symbolFilePath string
	symbolFileTime time.Time

	cancel  context.CancelFunc
	group   *errgroup.Group
}

// New constructs a PLC ready to have its registry populated and Start
// called. The registry is created empty; callers (typically
// Engine.LoadSymbolFile) populate it via the DB emitter before starting.
func New(name string, tr transport.Transport, cfg ScanConfig, logger *slog.Logger) *PLC {
	if logger == nil {
		logger = slog.Default()
	}
	return &PLC{
		name:      name,
		Registry:  registry.New(),
		Transport: tr,
		Config:    cfg.Normalize(),
		State:     scanner.NewPLCState(),
		Logger:    logger.With("plc", name),
	}
}

// Name implements registry.PLCOwner.
func (p *PLC) Name() string { return p.name }

// Alias returns the PLC's configured alias, used by the Info Plane (C12)
// and by `tcSetAlias` (§6).
func (p *PLC) Alias() string { return p.alias }

// SetAlias sets the PLC's alias.
func (p *PLC) SetAlias(alias string) { p.alias = alias }

// SetSymbolFile records the ingested symbol file's path and modification
// time, sampled by the Info Plane and compared on reconnect to detect
// out-of-band changes (§6's persisted-state note).
func (p *PLC) SetSymbolFile(path string, modTime time.Time) {
	p.symbolFilePath = path
	p.symbolFileTime = modTime
}

// SymbolFilePath returns the path last recorded by SetSymbolFile.
func (p *PLC) SymbolFilePath() string { return p.symbolFilePath }

// SymbolFileModTime returns the mtime last recorded by SetSymbolFile.
func (p *PLC) SymbolFileModTime() time.Time { return p.symbolFileTime }

// SetScanRate updates the read/write/update periods and slowdown
// multiple, the Go-native shape of `tcSetScanRate` (§6). Start copies
// these values into the scanners and tickers it launches, so already-running
// scanners keep their old values; the new ones apply from the next Start.
func (p *PLC) SetScanRate(period time.Duration, multiple int) {
	p.Config = ScanConfig{ReadPeriod: period, SlowdownMultiple: multiple}.Normalize()
}

// Start launches the three periodic scanner goroutines under one
// errgroup.Group, per SPEC_FULL.md §4.11: a scanner panic or fatal error
// surfaces through one join point (Stop) instead of a bespoke
// WaitGroup. Start is idempotent only in the sense that calling it twice
// without an intervening Stop leaks the first goroutine set; callers
// should Stop before re-Start.
func (p *PLC) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	g, gctx := errgroup.WithContext(ctx)
	p.group = g

	read := &scanner.ReadScanner{Registry: p.Registry, Groups: p.Groups, Transport: p.Transport, Slowdown: p.Config.SlowdownMultiple, Logger: p.Logger}
	write := &scanner.WriteScanner{Registry: p.Registry, Transport: p.Transport, BatchLimit: p.Config.WriteBatchLimit, Logger: p.Logger}
	update := &scanner.UpdateScanner{Registry: p.Registry, Transport: p.Transport, Period: p.Config.UpdatePeriod, Logger: p.Logger}

	g.Go(func() error { return runTicker(gctx, p.Config.ReadPeriod, func() { read.Tick(gctx, p.State) }) })
	g.Go(func() error { return runTicker(gctx, p.Config.WritePeriod, func() { write.Tick(gctx, p.State) }) })
	g.Go(func() error { return runTicker(gctx, p.Config.UpdatePeriod, func() { update.Tick(gctx, p.State) }) })
}

// Stop cancels the scanner goroutines and waits for them to return.
// Scanner ticks never return an error to Stop (§7: "runtime scanners
// never fail the process"); Wait reports the context's error, which Stop
// swallows when it is context.Canceled. If the context passed to Start
// ended first for another reason (e.g. context.DeadlineExceeded), Stop
// returns that error wrapped.
func (p *PLC) Stop() error {
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	if p.group == nil {
		return nil
	}
	err := p.group.Wait()
	if err == nil || err == context.Canceled {
		return nil
	}
	return fmt.Errorf("plc %s: scanner group: %w", p.name, err)
}

// runTicker invokes tick once per period until ctx is cancelled,
// implementing the "scanners suspend only inside the OS timer wait"
// cooperative-cancellation model of §5.
func runTicker(ctx context.Context, period time.Duration, tick func()) error {
	if period <= 0 {
		period = DefaultReadPeriod
	}
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			tick()
		}
	}
}
