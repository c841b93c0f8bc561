package core

import (
	"sort"
	"sync"
)

// Model maps handles to their statistical parameters. It grows lazily: a
// handle's default parameter is inserted the first time it is sampled and
// reused thereafter. Models never shrink.
//
// A model is shared read-mostly across all samplers of a generation. The
// only shared write is the first-touch default insertion in GetOrInsert,
// which is guarded by a mutex so candidate construction may be parallelized
// without two samplers racing to install different defaults for the same
// handle.
type Model struct {
	mu     sync.Mutex
	params map[Handle]Parameter
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{params: make(map[Handle]Parameter)}
}

// GetOrInsert returns the parameter for h, installing def() on first touch.
// The default constructor only runs when the handle is absent.
func (m *Model) GetOrInsert(h Handle, def func() Parameter) Parameter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.params[h]; ok {
		return p
	}
	p := def()
	m.params[h] = p
	return p
}

// Lookup returns the parameter for h without inserting a default.
func (m *Model) Lookup(h Handle) (Parameter, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.params[h]
	return p, ok
}

// Set installs a parameter directly. Used by the updater and by model
// deserialization; samplers never call it.
func (m *Model) Set(h Handle, p Parameter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params[h] = p
}

// Len reports the number of handles in the model.
func (m *Model) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.params)
}

// Snapshot returns a copy of the handle-to-parameter mapping. Parameters
// with internal slices are deep-copied, so mutating the snapshot never
// touches the model.
func (m *Model) Snapshot() map[Handle]Parameter {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[Handle]Parameter, len(m.params))
	for h, p := range m.params {
		out[h] = clone(p)
	}
	return out
}

// Handles returns all handles in lexicographic order.
func (m *Model) Handles() []Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	hs := make([]Handle, 0, len(m.params))
	for h := range m.params {
		hs = append(hs, h)
	}
	sort.Slice(hs, func(i, j int) bool { return hs[i] < hs[j] })
	return hs
}
