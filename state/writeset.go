package state

import (
	"github.com/t3rn/circuit/ids"
	"github.com/t3rn/circuit/xtx"
)

// WriteSet is the only way the engine ever mutates a Store. It is built
// up by apply() (spec.md §4.F phase 5) and committed in one call so that
// every write lands or none do, in the fixed dependency order spec.md
// §4.C mandates: FSX -> local-sfx-index -> insurance rows -> insurance
// link set -> local state -> timing link -> XExecSignals.
type WriteSet struct {
	XtxID ids.Id

	FullSideEffects    []xtx.Step // nil means "don't touch"
	SetFullSideEffects bool

	LocalSfxIndex []ids.Id // sfx ids to link to XtxID, only used on first persist

	InsuranceDeposits    map[ids.Id]xtx.InsuranceDeposit // sfxID -> deposit, full replace
	SetInsuranceDeposits bool

	// InsuranceDepositUpdate overwrites a single (xtxID, sfxID) deposit
	// without touching the rest (apply's PendingInsurance branch).
	InsuranceDepositUpdate   *xtx.InsuranceDeposit
	InsuranceDepositUpdateID ids.Id
	HasInsuranceDepositUpdate bool

	LocalState    xtx.LocalState
	SetLocalState bool

	SetTimingLink    bool
	TimingLinkValue  xtx.BlockNumber
	RemoveTimingLink bool

	Xtx    xtx.Xtx
	SetXtx bool
}

// Apply commits ws against m in the fixed dependency order. In-memory
// maps never fail a put, so "atomic" here means: take the lock once, do
// every write under it, so no reader ever observes a partial WriteSet.
func (m *memStore) Apply(ws *WriteSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ws.SetFullSideEffects {
		m.fullSideEffects[ws.XtxID] = ws.FullSideEffects
	}

	for _, sfxID := range ws.LocalSfxIndex {
		m.sfxToXtx[sfxID] = ws.XtxID
	}

	if ws.SetInsuranceDeposits {
		byXtx := make(map[ids.Id]xtx.InsuranceDeposit, len(ws.InsuranceDeposits))
		for k, v := range ws.InsuranceDeposits {
			byXtx[k] = v
		}
		m.insuranceDeposit[ws.XtxID] = byXtx

		links := make([]ids.Id, 0, len(ws.InsuranceDeposits))
		for sfxID := range ws.InsuranceDeposits {
			links = append(links, sfxID)
		}
		m.insuranceLinks[ws.XtxID] = links
	}

	if ws.HasInsuranceDepositUpdate {
		byXtx, ok := m.insuranceDeposit[ws.XtxID]
		if !ok {
			byXtx = make(map[ids.Id]xtx.InsuranceDeposit)
			m.insuranceDeposit[ws.XtxID] = byXtx
		}
		byXtx[ws.InsuranceDepositUpdateID] = *ws.InsuranceDepositUpdate
	}

	if ws.SetLocalState {
		m.localXtxStates[ws.XtxID] = ws.LocalState
	}

	if ws.RemoveTimingLink {
		if old, ok := m.timingLinks[ws.XtxID]; ok {
			m.timingTree.Delete(timingEntry{timeoutsAt: old, xtxID: ws.XtxID})
		}
		delete(m.timingLinks, ws.XtxID)
	} else if ws.SetTimingLink {
		if old, ok := m.timingLinks[ws.XtxID]; ok {
			m.timingTree.Delete(timingEntry{timeoutsAt: old, xtxID: ws.XtxID})
		}
		m.timingLinks[ws.XtxID] = ws.TimingLinkValue
		m.timingTree.ReplaceOrInsert(timingEntry{timeoutsAt: ws.TimingLinkValue, xtxID: ws.XtxID})
	}

	if ws.SetXtx {
		m.xExecSignals[ws.XtxID] = ws.Xtx
	}

	return nil
}
