package plc

import "time"

// Scan-period bounds and slowdown-multiple bounds from §4.9.
const (
	MinReadPeriod    = 5 * time.Millisecond
	MaxReadPeriod    = 10000 * time.Millisecond
	MinSlowdown      = 1
	MaxSlowdown      = 200
	DefaultSlowdown  = 10
	DefaultReadPeriod = 200 * time.Millisecond
)

// ScanConfig holds one PLC's three scanner periods and the read-only
// slowdown multiple (§3, §4.9). Write and update periods default to the
// read period when zero.
type ScanConfig struct {
	ReadPeriod       time.Duration
	WritePeriod      time.Duration
	UpdatePeriod     time.Duration
	SlowdownMultiple int
	WriteBatchLimit  int
}

// DefaultScanConfig returns the engine's out-of-the-box scan rate.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{ReadPeriod: DefaultReadPeriod, SlowdownMultiple: DefaultSlowdown}
}

// Normalize clamps ReadPeriod to [5,10000]ms and SlowdownMultiple to
// [1,200] (§4.9), and defaults WritePeriod/UpdatePeriod to ReadPeriod
// when unset, returning the adjusted copy.
func (c ScanConfig) Normalize() ScanConfig {
	out := c
	if out.ReadPeriod < MinReadPeriod {
		out.ReadPeriod = MinReadPeriod
	}
	if out.ReadPeriod > MaxReadPeriod {
		out.ReadPeriod = MaxReadPeriod
	}
	if out.WritePeriod <= 0 {
		out.WritePeriod = out.ReadPeriod
	}
	if out.UpdatePeriod <= 0 {
		out.UpdatePeriod = out.ReadPeriod
	}
	if out.SlowdownMultiple < MinSlowdown {
		out.SlowdownMultiple = MinSlowdown
	}
	if out.SlowdownMultiple > MaxSlowdown {
		out.SlowdownMultiple = MaxSlowdown
	}
	return out
}
