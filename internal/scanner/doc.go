// Package scanner implements the three periodic scanners (C9-C11, §4.9):
// grouped binary reads fanning out to value cells, coalesced binary
// writes collecting dirty cells, and a combined freshness-sweep/
// reconnection scanner. Each scanner is driven by a caller-owned
// time.Ticker; Tick is a single, synchronous pass with no internal
// goroutines, so tests can call it directly without a clock.
package scanner
