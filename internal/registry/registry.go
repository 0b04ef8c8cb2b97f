package registry

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/valuecell"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

// PLCBinding locates a record's leaf inside the coalesced request groups
// built by the optimizer (C8): which group it falls in, and the record's
// byte offset within that group's response buffer.
type PLCBinding struct {
	IndexGroup    uint32
	IndexOffset   uint32
	Size          int
	GroupIndex    int
	OffsetInGroup int
}

// PLCOwner is the minimal view a Record needs of its owning PLC, kept as
// an interface to avoid a package import cycle with internal/plc.
type PLCOwner interface {
	Name() string
}

// Record is an owning container for a fully-qualified name, access mode,
// enabled flag, value cell, and optional PLC-side binding (§3).
type Record struct {
	Name    string
	Access  types.AccessMode
	Enabled atomic.Bool
	Cell    *valuecell.Cell
	Binding *PLCBinding
	Owner   PLCOwner

	index int // stable slot in the registry's backing slice; -1 once erased
}

// NewRecord constructs an enabled-by-default record wrapping cell.
func NewRecord(name string, access types.AccessMode, cell *valuecell.Cell) *Record {
	r := &Record{Name: name, Access: access, Cell: cell, index: -1}
	r.Enabled.Store(true)
	return r
}

// Registry is a case-insensitive name -> *Record map with stable slot
// indices, guarded by a single mutex (§4.2, §5).
type Registry struct {
	mu      sync.Mutex
	byName  map[string]*Record
	records []*Record // tombstoned (nil) slots preserve indices for GetNext
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{byName: make(map[string]*Record)}
}

func fold(name string) string { return strings.ToLower(name) }

// Add registers rec under its Name. Returns false without modifying the
// registry if a record with that name (case-insensitively) already exists.
func (r *Registry) Add(rec *Record) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := fold(rec.Name)
	if _, exists := r.byName[key]; exists {
		return false
	}
	rec.index = len(r.records)
	r.records = append(r.records, rec)
	r.byName[key] = rec
	return true
}

// Find looks up a record by name, case-insensitively.
func (r *Registry) Find(name string) (*Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byName[fold(name)]
	return rec, ok
}

// Erase removes a record by name. Returns false if it was not present.
// The record's slot is tombstoned rather than removed so GetNext's
// wraparound iteration stays valid for concurrent callers.
func (r *Registry) Erase(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := fold(name)
	rec, ok := r.byName[key]
	if !ok {
		return false
	}
	delete(r.byName, key)
	r.records[rec.index] = nil
	rec.index = -1
	return true
}

// Count returns the number of live (non-erased) records.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byName)
}

// ForEach invokes fn once per live record while holding the registry's
// lock. fn must not call back into the registry.
func (r *Registry) ForEach(fn func(*Record)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec != nil {
			fn(rec)
		}
	}
}

// GetNext returns the live record following prev in slot order, wrapping
// around to the start. A nil prev (or a prev no longer present) restarts
// from the first live record. Returns nil if the registry is empty.
func (r *Registry) GetNext(prev *Record) *Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.records)
	if n == 0 {
		return nil
	}
	start := 0
	if prev != nil && prev.index >= 0 && prev.index < n && r.records[prev.index] == prev {
		start = prev.index + 1
	}
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if rec := r.records[idx]; rec != nil {
			return rec
		}
	}
	return nil
}
