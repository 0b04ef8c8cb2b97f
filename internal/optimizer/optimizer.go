// Package optimizer is the Request Optimizer (C8): it partitions the
// registry's PLC-bound records into coalesced read-request groups (§4.8),
// minimizing round-trips to the transport while bounding wasted bandwidth
// on sparsely-used memory ranges.
package optimizer

import (
	"sort"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/registry"
)

// Thresholds governing when a new group starts, per §4.8 step 3.
const (
	MaxSingleGapSize = 50
	MinRelGapSize    = 100
	MaxRelGap        = 0.25
	MaxReqSize       = 250000
)

// Group is one coalesced read request: a contiguous (with internal gaps
// bounded by the thresholds above) span of a single index group.
type Group struct {
	IndexGroup uint32
	Offset     uint32
	Length     int
	Records    []*registry.Record
}

// ResponseSize is the buffer size to allocate for this group's read
// response: its length plus 4 bytes for a per-group status word from the
// transport (§4.8 step 4).
func (g Group) ResponseSize() int { return g.Length + 4 }

// Optimize partitions reg's PLC-bound records (those with a non-nil
// Binding) into groups and records each record's (group index,
// offset-in-group) back onto its Binding. Records with a nil Binding are
// left untouched and do not participate in grouping (§4.8 step 1).
func Optimize(reg *registry.Registry) []Group {
	var candidates []*registry.Record
	reg.ForEach(func(r *registry.Record) {
		if r.Binding != nil {
			candidates = append(candidates, r)
		}
	})
	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i].Binding, candidates[j].Binding
		if a.IndexGroup != b.IndexGroup {
			return a.IndexGroup < b.IndexGroup
		}
		return a.IndexOffset < b.IndexOffset
	})

	var groups []Group
	var totalGap int

	startGroup := func(r *registry.Record) {
		groups = append(groups, Group{
			IndexGroup: r.Binding.IndexGroup,
			Offset:     r.Binding.IndexOffset,
			Length:     r.Binding.Size,
			Records:    []*registry.Record{r},
		})
		totalGap = 0
		r.Binding.GroupIndex = len(groups) - 1
		r.Binding.OffsetInGroup = 0
	}

	startGroup(candidates[0])

	for _, r := range candidates[1:] {
		g := &groups[len(groups)-1]
		gap := int(r.Binding.IndexOffset) - (int(g.Offset) + g.Length)
		newLength := g.Length + gap + r.Binding.Size
		newTotalGap := totalGap + gap
		relGap := float64(newTotalGap) / float64(newLength)

		startNew := gap > MaxSingleGapSize ||
			(newTotalGap > MinRelGapSize && relGap > MaxRelGap) ||
			r.Binding.IndexGroup != g.IndexGroup ||
			newLength > MaxReqSize

		if startNew {
			startGroup(r)
			continue
		}

		r.Binding.GroupIndex = len(groups) - 1
		r.Binding.OffsetInGroup = int(r.Binding.IndexOffset) - int(g.Offset)
		g.Length = newLength
		g.Records = append(g.Records, r)
		totalGap = newTotalGap
	}

	return groups
}
