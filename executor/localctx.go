package executor

import (
	"github.com/t3rn/circuit/ids"
	"github.com/t3rn/circuit/status"
	"github.com/t3rn/circuit/xtx"
)

// LocalCtx is the per-handler working copy materialized at setup and
// persisted whole at apply (spec.md §9: "the LocalCtx is a per-handler
// working copy ... materialized at setup and persisted whole at apply").
// Every phase after setup mutates this value in memory; nothing touches
// the store directly until apply builds a state.WriteSet from it.
type LocalCtx struct {
	XtxID ids.Id
	Xtx   xtx.Xtx

	// FullSideEffects is nil for a freshly-setup Requested Xtx until
	// validate fills it.
	FullSideEffects []xtx.Step

	LocalState xtx.LocalState

	// InsuranceDeposits is keyed by sfx id, matching
	// state.Snapshot.InsuranceDeposits and the XtxInsuranceLinks
	// relationship (spec.md §3).
	InsuranceDeposits map[ids.Id]xtx.InsuranceDeposit

	// OldStatus is the status local_ctx.Xtx carried on entry to the
	// current phase pipeline, before update() recomputes it. square_up
	// dispatches on this, not on the post-update status (spec.md §4.F:
	// square_up runs before update); kill and ConfirmSideEffect overwrite
	// it to select square_up's revert or settlement branch.
	OldStatus status.Status
}

// CurrentStep returns the FSX group at the cursor, or nil if the cursor
// is out of range (e.g. a fresh Requested Xtx with no steps yet).
func (c *LocalCtx) CurrentStep() xtx.Step {
	if c.Xtx.Steps.Cursor < 0 || c.Xtx.Steps.Cursor >= len(c.FullSideEffects) {
		return nil
	}
	return c.FullSideEffects[c.Xtx.Steps.Cursor]
}

// setCurrentStep overwrites the FSX group at the cursor in place.
func (c *LocalCtx) setCurrentStep(step xtx.Step) {
	c.FullSideEffects[c.Xtx.Steps.Cursor] = step
}

// insuranceViews projects InsuranceDeposits into status.InsuranceDepositView
// for the pure status derivation in status.DeriveInsuranceStatus.
func (c *LocalCtx) insuranceViews() []status.InsuranceDepositView {
	views := make([]status.InsuranceDepositView, 0, len(c.InsuranceDeposits))
	for _, d := range c.InsuranceDeposits {
		views = append(views, status.InsuranceDepositView{Bonded: d.IsBonded()})
	}
	return views
}

// insurancePointers builds the map[id]*InsuranceDeposit view the bonding
// package's TrySlash/TryUnbond need to mutate deposits in place; callers
// must writeBackInsurance the result afterward since lc.InsuranceDeposits
// itself holds values, not pointers, to keep the storage snapshot shape
// (state.Snapshot.InsuranceDeposits) and the working copy identical.
func (c *LocalCtx) insurancePointers() map[ids.Id]*xtx.InsuranceDeposit {
	ptrs := make(map[ids.Id]*xtx.InsuranceDeposit, len(c.InsuranceDeposits))
	for id, d := range c.InsuranceDeposits {
		d := d
		ptrs[id] = &d
	}
	return ptrs
}

// writeBackInsurance copies mutated pointer values back into
// c.InsuranceDeposits after a bonding-package call.
func (c *LocalCtx) writeBackInsurance(ptrs map[ids.Id]*xtx.InsuranceDeposit) {
	for id, p := range ptrs {
		c.InsuranceDeposits[id] = *p
	}
}
