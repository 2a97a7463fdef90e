// Package state implements the typed storage projection of spec.md §4.C:
// eight independent key-value views plus a single atomic multi-map
// writer. Grounded on the teacher's vms/platformvm/state package, which
// exposes a Chain interface of typed getters/setters in front of an
// in-memory diff that's later applied to a base; here the "base" is the
// only layer there is, since an Xtx's storage horizon never outlives its
// own lifecycle (spec.md §1 Non-goals).
package state

import (
	"sync"

	"github.com/google/btree"

	"github.com/t3rn/circuit/ids"
	"github.com/t3rn/circuit/xtx"
)

// timingEntry is a btree item ordering ActiveXExecSignalsTimingLinks by
// (timeouts_at, xtx id) so the timeout sweep can do an ordered scan for
// the earliest-due Xtx instead of an unordered map iteration — grounded
// on the teacher's use of google/btree for ordered scans over otherwise
// map-shaped state (vms/platformvm/state/state.go).
type timingEntry struct {
	timeoutsAt xtx.BlockNumber
	xtxID      ids.Id
}

func (a timingEntry) Less(than btree.Item) bool {
	b := than.(timingEntry)
	if a.timeoutsAt != b.timeoutsAt {
		return a.timeoutsAt < b.timeoutsAt
	}
	return lessID(a.xtxID, b.xtxID)
}

func lessID(a, b ids.Id) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// Store is the set of typed handles spec.md §4.C requires. All reads
// observe a consistent snapshot; the only writer is Apply, called with a
// WriteSet built in the fixed dependency order §4.C mandates.
type Store interface {
	GetXtx(id ids.Id) (xtx.Xtx, bool)
	GetFullSideEffects(id ids.Id) ([]xtx.Step, bool)
	GetLocalState(id ids.Id) (xtx.LocalState, bool)
	GetInsuranceDeposit(xtxID, sfxID ids.Id) (xtx.InsuranceDeposit, bool)
	GetXtxInsuranceLinks(xtxID ids.Id) []ids.Id
	GetXtxForSideEffect(sfxID ids.Id) (ids.Id, bool)
	GetTimingLink(xtxID ids.Id) (xtx.BlockNumber, bool)
	// EarliestDueTiming returns the single timing-link entry with the
	// smallest timeouts_at that is <= now, if any (spec.md §4.F timeout
	// sweep: "scan ... for the first entry whose timeouts_at <= now").
	EarliestDueTiming(now xtx.BlockNumber) (ids.Id, xtx.BlockNumber, bool)

	// Apply commits ws atomically: every write lands, or none do, and no
	// reader observes a partial write (spec.md §4.C).
	Apply(ws *WriteSet) error

	// Snapshot captures every store needed to rehydrate a LocalCtx for an
	// existing Xtx (setup's non-Requested branch).
	Snapshot(xtxID ids.Id) (Snapshot, bool)
}

// Snapshot bundles everything setup needs to hydrate a LocalCtx for an
// already-existing Xtx.
type Snapshot struct {
	Xtx               xtx.Xtx
	FullSideEffects   []xtx.Step
	LocalState        xtx.LocalState
	InsuranceDeposits map[ids.Id]xtx.InsuranceDeposit // keyed by sfx id
}

type memStore struct {
	mu sync.RWMutex

	xExecSignals     map[ids.Id]xtx.Xtx
	fullSideEffects  map[ids.Id][]xtx.Step
	localXtxStates   map[ids.Id]xtx.LocalState
	insuranceDeposit map[ids.Id]map[ids.Id]xtx.InsuranceDeposit // xtxID -> sfxID -> deposit
	insuranceLinks   map[ids.Id][]ids.Id
	sfxToXtx         map[ids.Id]ids.Id
	timingLinks      map[ids.Id]xtx.BlockNumber
	timingTree       *btree.BTree
}

// NewMemStore constructs an in-memory Store. This is the only Store
// implementation the engine ships: the spec's storage horizon never
// outlives one Xtx's lifecycle, so there is nothing for a durable,
// disk-backed engine (pebble/leveldb, as the teacher's full node uses for
// its own long-lived chain state) to add here — see DESIGN.md.
func NewMemStore() Store {
	return &memStore{
		xExecSignals:     make(map[ids.Id]xtx.Xtx),
		fullSideEffects:  make(map[ids.Id][]xtx.Step),
		localXtxStates:   make(map[ids.Id]xtx.LocalState),
		insuranceDeposit: make(map[ids.Id]map[ids.Id]xtx.InsuranceDeposit),
		insuranceLinks:   make(map[ids.Id][]ids.Id),
		sfxToXtx:         make(map[ids.Id]ids.Id),
		timingLinks:      make(map[ids.Id]xtx.BlockNumber),
		timingTree:       btree.New(32),
	}
}

func (m *memStore) GetXtx(id ids.Id) (xtx.Xtx, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	x, ok := m.xExecSignals[id]
	return x, ok
}

func (m *memStore) GetFullSideEffects(id ids.Id) ([]xtx.Step, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	steps, ok := m.fullSideEffects[id]
	return steps, ok
}

func (m *memStore) GetLocalState(id ids.Id) (xtx.LocalState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ls, ok := m.localXtxStates[id]
	return ls, ok
}

func (m *memStore) GetInsuranceDeposit(xtxID, sfxID ids.Id) (xtx.InsuranceDeposit, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byXtx, ok := m.insuranceDeposit[xtxID]
	if !ok {
		return xtx.InsuranceDeposit{}, false
	}
	d, ok := byXtx[sfxID]
	return d, ok
}

func (m *memStore) GetXtxInsuranceLinks(xtxID ids.Id) []ids.Id {
	m.mu.RLock()
	defer m.mu.RUnlock()
	links := m.insuranceLinks[xtxID]
	out := make([]ids.Id, len(links))
	copy(out, links)
	return out
}

func (m *memStore) GetXtxForSideEffect(sfxID ids.Id) (ids.Id, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.sfxToXtx[sfxID]
	return id, ok
}

func (m *memStore) GetTimingLink(xtxID ids.Id) (xtx.BlockNumber, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.timingLinks[xtxID]
	return t, ok
}

func (m *memStore) EarliestDueTiming(now xtx.BlockNumber) (ids.Id, xtx.BlockNumber, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var (
		found   bool
		foundID ids.Id
		foundAt xtx.BlockNumber
	)
	m.timingTree.Ascend(func(item btree.Item) bool {
		e := item.(timingEntry)
		if e.timeoutsAt > now {
			return false
		}
		found, foundID, foundAt = true, e.xtxID, e.timeoutsAt
		return false
	})
	return foundID, foundAt, found
}

func (m *memStore) Snapshot(xtxID ids.Id) (Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	x, ok := m.xExecSignals[xtxID]
	if !ok {
		return Snapshot{}, false
	}
	var steps []xtx.Step
	if stored := m.fullSideEffects[xtxID]; stored != nil {
		// Copy each step so callers mutating their LocalCtx never write
		// into the stored slices outside Apply.
		steps = make([]xtx.Step, len(stored))
		for i, step := range stored {
			steps[i] = append(xtx.Step(nil), step...)
		}
	}
	deposits := make(map[ids.Id]xtx.InsuranceDeposit, len(m.insuranceDeposit[xtxID]))
	for k, v := range m.insuranceDeposit[xtxID] {
		deposits[k] = v
	}
	return Snapshot{
		Xtx:               x,
		FullSideEffects:    steps,
		LocalState:        m.localXtxStates[xtxID],
		InsuranceDeposits: deposits,
	}, true
}
