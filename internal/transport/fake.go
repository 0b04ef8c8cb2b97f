package transport

import (
	"context"
	"sync"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

// Fake is an in-memory Transport used by the engine and scanner tests
// (§1 names the real transport a collaborator with no concrete
// implementation in scope). It models one flat address space per
// index-group and lets tests inject read/write failures and drive
// connection-state transitions directly.
type Fake struct {
	mu     sync.Mutex
	memory map[uint32]map[uint32]byte // indexGroup -> indexOffset -> byte

	// ReadErr/WriteErr, when non-nil, are returned by the next ReadBlock/
	// WriteBlock call and then cleared.
	ReadErr  error
	WriteErr error

	subs []func(types.ConnState)
}

// NewFake returns an empty Fake transport.
func NewFake() *Fake {
	return &Fake{memory: make(map[uint32]map[uint32]byte)}
}

// Seed writes data into the fake memory at (indexGroup, indexOffset),
// for arranging the PLC-side state a test's read scanner should observe.
func (f *Fake) Seed(indexGroup, indexOffset uint32, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bank := f.bank(indexGroup)
	for i, b := range data {
		bank[indexOffset+uint32(i)] = b
	}
}

// Peek reads back data a prior WriteBlock stored, for test assertions.
func (f *Fake) Peek(indexGroup, indexOffset uint32, size int) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	bank := f.bank(indexGroup)
	out := make([]byte, size)
	for i := range out {
		out[i] = bank[indexOffset+uint32(i)]
	}
	return out
}

func (f *Fake) bank(indexGroup uint32) map[uint32]byte {
	b, ok := f.memory[indexGroup]
	if !ok {
		b = make(map[uint32]byte)
		f.memory[indexGroup] = b
	}
	return b
}

// ReadBlock implements Transport.
func (f *Fake) ReadBlock(ctx context.Context, indexGroup, indexOffset uint32, size int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadErr != nil {
		err := f.ReadErr
		f.ReadErr = nil
		return nil, err
	}
	bank := f.bank(indexGroup)
	out := make([]byte, size)
	for i := range out {
		out[i] = bank[indexOffset+uint32(i)]
	}
	return out, nil
}

// WriteBlock implements Transport.
func (f *Fake) WriteBlock(ctx context.Context, entries []WriteEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		err := f.WriteErr
		f.WriteErr = nil
		return err
	}
	for _, e := range entries {
		bank := f.bank(e.IndexGroup)
		for i, b := range e.Data {
			bank[e.IndexOffset+uint32(i)] = b
		}
	}
	return nil
}

// Subscribe implements Transport. Push delivers a connection-state change
// to every subscriber registered so far, simulating the out-of-band
// notification channel (§4.9, §4.10).
func (f *Fake) Subscribe(ctx context.Context, onChange func(types.ConnState)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, onChange)
	idx := len(f.subs) - 1
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.subs[idx] = nil
	}, nil
}

// Push notifies every live subscriber of a connection-state change.
func (f *Fake) Push(state types.ConnState) {
	f.mu.Lock()
	subs := make([]func(types.ConnState), len(f.subs))
	copy(subs, f.subs)
	f.mu.Unlock()
	for _, s := range subs {
		if s != nil {
			s(state)
		}
	}
}

// Version implements Transport with a fixed placeholder triple.
func (f *Fake) Version() (int, int, int) { return 0, 0, 0 }
