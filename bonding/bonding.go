// Package bonding implements spec.md §4.E: executor insurance deposit
// accounting, slashing, and unbonding. Grounded on the teacher's
// reward.Calculator pattern (a small, pure, injected component with one
// job) and on optimistic.rs in the original source, whose Optimistic type
// this package's Backend replaces.
package bonding

import (
	"errors"

	"github.com/t3rn/circuit/hostif"
	"github.com/t3rn/circuit/ids"
	"github.com/t3rn/circuit/xtx"
)

// Bonding errors (spec.md §7: Bonding kind — "Reject; no state change").
var (
	ErrUnknownSideEffect  = errors.New("bonding: unknown side effect id")
	ErrAlreadyBonded      = errors.New("bonding: deposit already bonded")
	ErrInsufficientFunds  = errors.New("bonding: insufficient funds")
)

// EscrowAccount is the account insurance bonds are held in until slash or
// unbond. A fixed, well-known account, the same way the teacher's
// Escrowed currency holds funds under the pallet's own account id.
const EscrowAccount xtx.Account = "circuit::escrow"

// Backend bundles the collaborator bonding needs.
type Backend struct {
	AccountManager hostif.AccountManager
}

// Bond4Sfx implements spec.md §4.E bond_4_sfx on a deposit the caller has
// already located: require it unbonded, transfer the bond from executor to
// escrow, and record who bonded it and when. Returns the updated deposit
// for the caller to persist via apply.
func (b Backend) Bond4Sfx(executor xtx.Account, deposit xtx.InsuranceDeposit, now xtx.BlockNumber) (xtx.InsuranceDeposit, error) {
	if deposit.IsBonded() {
		return xtx.InsuranceDeposit{}, ErrAlreadyBonded
	}
	if err := b.AccountManager.Transfer(executor, EscrowAccount, deposit.RequiredBond); err != nil {
		return xtx.InsuranceDeposit{}, errJoin(ErrInsufficientFunds, err)
	}
	deposit.BondedAmount = deposit.RequiredBond
	deposit.Bonder = executor
	deposit.BondedAt = now
	return deposit, nil
}

// TrySlash redirects every bonded insurance deposit in deposits
// to the slashing pool (here: the escrow account keeps the funds rather
// than returning them) and every declared reward is left for the
// requester refund path to reclaim via square_up's revert branch
// (spec.md §4.E, §4.F square_up revert family). Idempotent: deposits that
// were never bonded are left untouched, and deposits already slashed
// (BondedAmount == 0 after a prior call) are skipped rather than erroring
// — bonding and slashing are guarded by deposit status, not a transition
// counter (spec.md §4.E).
func (b Backend) TrySlash(deposits map[ids.Id]*xtx.InsuranceDeposit) (slashed int) {
	for _, d := range deposits {
		if !d.IsBonded() || d.BondedAmount == 0 {
			continue
		}
		// The bond already sits in EscrowAccount from Bond4Sfx; slashing
		// means it is never returned. We mark it consumed so a repeat
		// call (re-entry on the same terminal state) is a no-op.
		d.BondedAmount = 0
		slashed++
	}
	return slashed
}

// TryUnbond returns each bonded insurance deposit to its bonder, for use
// on the Finished/FinishedAllSteps settlement path (spec.md §4.E).
// Idempotent for the same reason as TrySlash.
func (b Backend) TryUnbond(deposits map[ids.Id]*xtx.InsuranceDeposit) error {
	for _, d := range deposits {
		if !d.IsBonded() || d.BondedAmount == 0 {
			continue
		}
		if err := b.AccountManager.Transfer(EscrowAccount, d.Bonder, d.BondedAmount); err != nil {
			return err
		}
		d.BondedAmount = 0
	}
	return nil
}

func errJoin(sentinel, cause error) error {
	return &wrappedErr{sentinel: sentinel, cause: cause}
}

type wrappedErr struct {
	sentinel error
	cause    error
}

func (e *wrappedErr) Error() string { return e.sentinel.Error() + ": " + e.cause.Error() }
func (e *wrappedErr) Unwrap() error { return e.sentinel }
