// Package status implements the Xtx status algebra of spec.md §4.B: a
// totally ordered tagged-variant enum plus the two pure derivation rules
// (insurance status, overall Xtx status). Grounded on the teacher's
// status-enum idiom (a small ordered const block with a String() method,
// as in vms/platformvm's own status package) and on the Rust
// CircuitStatus enum in original_source/pallets/circuit/src/lib.rs, which
// this package reproduces the semantics of without its syntax.
package status

import "fmt"

// Status is the Xtx lifecycle status. The non-revert states are totally
// ordered; the Revert family are sinks outside that order: Less reports
// false whenever either side is a revert state, and IsRevertFamily /
// IsTerminal identify them.
type Status uint8

const (
	Requested Status = iota
	PendingInsurance
	Bonded
	Ready
	PendingExecution
	Finished
	FinishedAllSteps

	RevertTimedOut
	RevertMisbehaviour
	Reverted
	RevertKill
)

func (s Status) String() string {
	switch s {
	case Requested:
		return "Requested"
	case PendingInsurance:
		return "PendingInsurance"
	case Bonded:
		return "Bonded"
	case Ready:
		return "Ready"
	case PendingExecution:
		return "PendingExecution"
	case Finished:
		return "Finished"
	case FinishedAllSteps:
		return "FinishedAllSteps"
	case RevertTimedOut:
		return "RevertTimedOut"
	case RevertMisbehaviour:
		return "RevertMisbehaviour"
	case Reverted:
		return "Reverted"
	case RevertKill:
		return "RevertKill"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// IsRevertFamily reports whether s is one of the sink revert states.
func (s Status) IsRevertFamily() bool {
	switch s {
	case RevertTimedOut, RevertMisbehaviour, Reverted, RevertKill:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether s halts further transitions (spec.md §3):
// FinishedAllSteps or any revert-family state.
func (s Status) IsTerminal() bool {
	return s == FinishedAllSteps || s.IsRevertFamily()
}

// linear gives the non-revert states' position in the total order; revert
// states have no defined linear position (they're sinks reached only via
// the explicit kill path, never via ordinal comparison).
func linear(s Status) (int, bool) {
	switch s {
	case Requested, PendingInsurance, Bonded, Ready, PendingExecution, Finished, FinishedAllSteps:
		return int(s), true
	default:
		return 0, false
	}
}

// Less reports a < b under the non-revert total order. Only meaningful
// when both a and b are non-revert states; callers checking monotonicity
// should first confirm neither side is in the revert family.
func Less(a, b Status) bool {
	la, aok := linear(a)
	lb, bok := linear(b)
	if !aok || !bok {
		return false
	}
	return la < lb
}

// InsuranceDepositView is the minimal shape the insurance-status
// derivation needs from an insurance deposit: whether it is bonded yet.
type InsuranceDepositView struct {
	Bonded bool
}

// DeriveInsuranceStatus implements spec.md §4.B rule 1: PendingInsurance
// if any required deposit is unbonded, Bonded once all are bonded. An Xtx
// with no insurance deposits at all is vacuously Bonded.
func DeriveInsuranceStatus(deposits []InsuranceDepositView) Status {
	for _, d := range deposits {
		if !d.Bonded {
			return PendingInsurance
		}
	}
	return Bonded
}

// StepView is the minimal shape the Xtx-status derivation needs from the
// current step: how many FSX it holds and how many are confirmed.
type StepView struct {
	Total     int
	Confirmed int
}

// DeriveXtxStatusInput bundles the pure inputs to DeriveXtxStatus so the
// derivation has no hidden inputs (spec.md §4.B invariant).
type DeriveXtxStatusInput struct {
	InsuranceStatus Status // result of DeriveInsuranceStatus, or Bonded if no insurance at all
	CurrentStep     StepView
	StepsCursor     int
	StepsTotal      int
}

// DeriveXtxStatus implements spec.md §4.B rule 2, the reduction over FSX
// confirmations and insurance state:
//
//   - insurance not fully bonded                               -> PendingInsurance (insurance status passes through)
//   - all bonded, cursor at first step, no confirmations yet    -> Ready
//   - at least one FSX in current step confirmed, not all       -> PendingExecution
//   - all FSX in current step confirmed, more steps remain      -> Finished
//   - steps_cnt.cursor == steps_cnt.total                       -> FinishedAllSteps
func DeriveXtxStatus(in DeriveXtxStatusInput) Status {
	if in.InsuranceStatus != Bonded {
		return in.InsuranceStatus
	}
	if in.StepsCursor >= in.StepsTotal {
		return FinishedAllSteps
	}
	switch {
	case in.CurrentStep.Confirmed == 0:
		return Ready
	case in.CurrentStep.Confirmed < in.CurrentStep.Total:
		return PendingExecution
	default:
		return Finished
	}
}
