package xtx

import "golang.org/x/exp/maps"

// LocalState is the opaque key-value scratchpad carried through
// validation (spec.md §3): it records cross-SFX argument bindings, e.g.
// "this input equals the output of the previous SFX".
type LocalState struct {
	entries map[string][]byte
}

// NewLocalState returns an empty LocalState.
func NewLocalState() LocalState {
	return LocalState{entries: make(map[string][]byte)}
}

// Insert records (or overwrites) a binding.
func (s *LocalState) Insert(key string, value []byte) {
	if s.entries == nil {
		s.entries = make(map[string][]byte)
	}
	s.entries[key] = value
}

// Get returns the binding for key, if any.
func (s LocalState) Get(key string) ([]byte, bool) {
	v, ok := s.entries[key]
	return v, ok
}

// Len reports how many bindings are recorded.
func (s LocalState) Len() int {
	return len(s.entries)
}

// Keys returns the recorded keys in unspecified order, grounded on the
// teacher's own preference for `golang.org/x/exp/maps.Keys` over a
// hand-rolled range loop (e.g. snow/validators/manager.go).
func (s LocalState) Keys() []string {
	return maps.Keys(s.entries)
}
