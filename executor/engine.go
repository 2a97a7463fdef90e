// Package executor wires the five-phase lifecycle of spec.md §4.F over
// the validator, bonding, state, signalqueue, and hostif packages. It is
// the Circuit engine itself: every host-facing operation in spec.md §6
// is a fixed composition of setup, validate, square_up, update, apply,
// and emit, grounded on the teacher's txs/executor.Backend +
// StandardTxExecutor pattern — one struct of injected collaborators, one
// method per phase, entry points that compose them in a fixed order
// (vms/platformvm/txs/executor/standard_tx_executor.go).
package executor

import (
	"context"
	"fmt"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/t3rn/circuit/bonding"
	"github.com/t3rn/circuit/config"
	"github.com/t3rn/circuit/hostif"
	"github.com/t3rn/circuit/ids"
	"github.com/t3rn/circuit/logging"
	"github.com/t3rn/circuit/metrics"
	"github.com/t3rn/circuit/signalqueue"
	"github.com/t3rn/circuit/state"
	"github.com/t3rn/circuit/status"
	"github.com/t3rn/circuit/utils/set"
	"github.com/t3rn/circuit/validator"
	"github.com/t3rn/circuit/xtx"
)

// Engine bundles every collaborator the lifecycle phases need. One Engine
// serves the whole node; it carries no per-call state (spec.md §5:
// single-writer, block-serialized model — callers never run two phases
// concurrently over the same Xtx).
type Engine struct {
	Store     state.Store
	Validator validator.Backend
	Bonding   bonding.Backend

	Accounts    hostif.AccountManager
	Bus         hostif.AsyncBus
	Portal      hostif.Portal
	NameService hostif.NameService
	Protocol    hostif.SideEffectsProtocol
	Executors   hostif.ExecutorRegistry

	Signals *signalqueue.Queue
	Metrics metrics.Metrics
	Log     logging.Logger
	Tracer  oteltrace.Tracer
	Hasher  ids.Hasher
	Config  config.Config

	// Now returns the current block height; injected the way the
	// teacher injects a mockable.Clock, adapted here to the engine's
	// actual time domain (block numbers, not wall time).
	Now func() xtx.BlockNumber

	// NewXtxID generates a fresh, collision-free Xtx id for setup's
	// Requested branch. The engine never hashes an Xtx's own content to
	// name it (unlike a side effect, which is content-addressed), so
	// this is a host-supplied nonce/randomness source.
	NewXtxID func() ids.Id
}

func (e *Engine) observe(phase string, start time.Time) {
	e.Metrics.ObservePhaseDuration(phase, time.Since(start))
}

// setup implements spec.md §4.F Phase 1. entry selects which branch runs;
// maybeXtxID is required for every entry except Requested.
func (e *Engine) setup(ctx context.Context, entry status.Status, requester xtx.Account, reward uint64, maybeXtxID *ids.Id) (*LocalCtx, error) {
	ctx, span := e.Tracer.Start(ctx, "executor.setup")
	defer span.End()
	defer e.observe("setup", time.Now())
	_ = ctx

	if entry == status.Requested {
		if maybeXtxID != nil {
			if _, ok := e.Store.GetXtx(*maybeXtxID); ok {
				return nil, ErrDuplicatedXtx
			}
		}
		now := e.Now()
		id := e.NewXtxID()
		fresh := xtx.Xtx{
			ID:          id,
			Requester:   requester,
			TimeoutsAt:  now + xtx.BlockNumber(e.Config.XtxTimeoutDefault),
			Steps:       xtx.StepsCounter{Cursor: 0, Total: 0},
			Status:      status.Requested,
			TotalReward: reward,
		}
		return &LocalCtx{
			XtxID:             id,
			Xtx:               fresh,
			FullSideEffects:   nil,
			LocalState:        xtx.NewLocalState(),
			InsuranceDeposits: make(map[ids.Id]xtx.InsuranceDeposit),
			OldStatus:         status.Requested,
		}, nil
	}

	if maybeXtxID == nil {
		return nil, ErrMissingXtxID
	}
	snap, ok := e.Store.Snapshot(*maybeXtxID)
	if !ok {
		return nil, ErrXtxNotFound
	}
	// Only a Finished entry checks disk-status compatibility: commit
	// paths must never re-run against an Xtx still behind Finished
	// (spec.md §4.F Phase 1, grounded on the Rust setup()'s single
	// current_status == Finished && xtx.status < Finished check; every
	// other forward entry status only requires the artifacts to exist).
	if entry == status.Finished && status.Less(snap.Xtx.Status, status.Finished) {
		return nil, ErrIncompatibleEntryStatus
	}
	if snap.FullSideEffects == nil {
		return nil, ErrMissingStorageArtifacts
	}

	return &LocalCtx{
		XtxID:             *maybeXtxID,
		Xtx:               snap.Xtx,
		FullSideEffects:   snap.FullSideEffects,
		LocalState:        snap.LocalState,
		InsuranceDeposits: snap.InsuranceDeposits,
		OldStatus:         snap.Xtx.Status,
	}, nil
}

// runValidate implements spec.md §4.F Phase 2, only ever called for a
// Requested entry. It mutates lc.FullSideEffects and lc.InsuranceDeposits
// in place from the validator's output.
func (e *Engine) runValidate(ctx context.Context, lc *LocalCtx, sfxs []xtx.SideEffect, sequential bool) error {
	ctx, span := e.Tracer.Start(ctx, "executor.validate")
	defer span.End()
	defer e.observe("validate", time.Now())

	steps, fsxs, err := e.Validator.Validate(ctx, sfxs, &lc.LocalState, sequential)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSideEffectsValidationFailed, err)
	}
	lc.FullSideEffects = steps

	for _, fsx := range fsxs {
		hint, err := e.Validator.InsuranceHintOf(fsx.SideEffect)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSideEffectsValidationFailed, err)
		}
		if hint == nil {
			continue
		}
		sfxID := fsx.SideEffect.ID(e.Hasher)
		lc.InsuranceDeposits[sfxID] = xtx.InsuranceDeposit{
			RequiredBond:   hint.Bond,
			RequiredReward: hint.Reward,
		}
	}
	return nil
}

// executorCharge carries the (charge id, payer, amount) the
// PendingExecution/Ready square_up branch needs for scheduled async
// execution (spec.md §4.F Phase 3).
type executorCharge struct {
	ChargeID ids.Id
	Executor xtx.Account
	Amount   uint64
}

// squareUp implements spec.md §4.F Phase 3, dispatching on lc.OldStatus —
// square_up always runs before update, so it sees the status the Xtx
// carried on entry (or the branch kill and ConfirmSideEffect select by
// overwriting OldStatus), not the one update is about to compute.
func (e *Engine) squareUp(ctx context.Context, lc *LocalCtx, maybeRequester *xtx.Account, maybeCharge *executorCharge) error {
	ctx, span := e.Tracer.Start(ctx, "executor.square_up")
	defer span.End()
	defer e.observe("square_up", time.Now())
	_ = ctx

	switch lc.OldStatus {
	case status.Requested:
		if maybeRequester == nil {
			return nil
		}
		for _, fsx := range lc.CurrentStep() {
			if fsx.SideEffect.Prize == 0 {
				continue
			}
			chargeID := fsx.SideEffect.ID(e.Hasher)
			if err := e.Accounts.Deposit(chargeID, *maybeRequester, fsx.SideEffect.Prize, 0, hostif.TrafficRewards, hostif.RoleRequester, nil); err != nil {
				return err
			}
		}
		return nil

	case status.PendingExecution, status.Ready:
		if maybeCharge == nil {
			return nil
		}
		return e.Accounts.Deposit(maybeCharge.ChargeID, maybeCharge.Executor, maybeCharge.Amount, 0, hostif.TrafficFees, hostif.RoleExecutor, nil)

	case status.RevertTimedOut, status.Reverted, status.RevertMisbehaviour, status.RevertKill:
		ptrs := lc.insurancePointers()
		if slashed := e.Bonding.TrySlash(ptrs); slashed > 0 {
			for i := 0; i < slashed; i++ {
				e.Metrics.IncInsuranceSlashed()
			}
		}
		lc.writeBackInsurance(ptrs)
		for _, fsx := range lc.CurrentStep() {
			chargeID := fsx.SideEffect.ID(e.Hasher)
			e.Accounts.TryFinalize(chargeID, hostif.OutcomeRevert, nil, nil)
		}
		return nil

	case status.Finished, status.FinishedAllSteps:
		ptrs := lc.insurancePointers()
		err := e.Bonding.TryUnbond(ptrs)
		lc.writeBackInsurance(ptrs)
		if err != nil {
			return err
		}
		for i := range lc.CurrentStep() {
			fsx := lc.CurrentStep()[i]
			if !fsx.IsConfirmed() {
				return ErrUnconfirmedAtSettlement
			}
			chargeID := fsx.SideEffect.ID(e.Hasher)
			payee := fsx.Confirmed.Executioner
			cost := fsx.Confirmed.Cost
			if err := e.Accounts.Finalize(chargeID, hostif.OutcomeCommit, &payee, &cost); err != nil {
				return err
			}
		}
		return nil

	default:
		return nil
	}
}

// update implements spec.md §4.F Phase 4: pure computation, no I/O.
// Returns (oldStatus, newStatus).
func (e *Engine) update(lc *LocalCtx) (status.Status, status.Status) {
	old := lc.Xtx.Status

	switch old {
	case status.Requested:
		lc.Xtx.Steps = xtx.StepsCounter{Cursor: 0, Total: len(lc.FullSideEffects)}

	case status.PendingInsurance, status.Bonded:
		// recomputed uniformly below via DeriveXtxStatus

	case status.Ready, status.PendingExecution, status.Finished:
		step := lc.CurrentStep()
		if len(step) > 0 && step.AllConfirmed() {
			lc.Xtx.Steps.Cursor++
			if lc.Xtx.Steps.Cursor >= lc.Xtx.Steps.Total {
				lc.Xtx.Status = status.FinishedAllSteps
				return old, status.FinishedAllSteps
			}
			lc.Xtx.Status = status.Finished
		}

	case status.RevertTimedOut:
		// no-op; revert settlement already decided the terminal status.

	default:
		// no-op
	}

	insuranceStatus := status.DeriveInsuranceStatus(lc.insuranceViews())
	var stepView status.StepView
	if step := lc.CurrentStep(); step != nil {
		stepView = status.StepView{Total: len(step), Confirmed: step.ConfirmedCount()}
	}
	newStatus := status.DeriveXtxStatus(status.DeriveXtxStatusInput{
		InsuranceStatus: insuranceStatus,
		CurrentStep:     stepView,
		StepsCursor:     lc.Xtx.Steps.Cursor,
		StepsTotal:      lc.Xtx.Steps.Total,
	})
	lc.Xtx.Status = newStatus
	return old, newStatus
}

// insuranceUpdate is the optional single-deposit overwrite apply's
// PendingInsurance branch applies (spec.md §4.F Phase 5).
type insuranceUpdate struct {
	SfxID   ids.Id
	Deposit xtx.InsuranceDeposit
}

// applyResult is what apply hands back for emit to publish events from
// (spec.md §4.F Phase 5: "Returns (Some(xtx), Some(steps))" etc).
type applyResult struct {
	Xtx             *xtx.Xtx
	FullSideEffects []xtx.Step
}

// apply implements spec.md §4.F Phase 5, the sole writer. oldStatus is
// the status square_up and update saw on entry (lc.OldStatus); newStatus
// is what update just computed (lc.Xtx.Status).
func (e *Engine) apply(ctx context.Context, lc *LocalCtx, maybeInsurance *insuranceUpdate, oldStatus, newStatus status.Status) (applyResult, error) {
	ctx, span := e.Tracer.Start(ctx, "executor.apply")
	defer span.End()
	defer e.observe("apply", time.Now())
	_ = ctx

	ws := &state.WriteSet{XtxID: lc.XtxID}

	switch oldStatus {
	case status.Requested:
		ws.SetFullSideEffects, ws.FullSideEffects = true, lc.FullSideEffects
		ws.LocalSfxIndex = e.localSfxIndex(lc)
		if len(lc.InsuranceDeposits) > 0 {
			ws.SetInsuranceDeposits, ws.InsuranceDeposits = true, lc.InsuranceDeposits
		}
		ws.SetLocalState, ws.LocalState = true, lc.LocalState
		ws.SetTimingLink, ws.TimingLinkValue = true, lc.Xtx.TimeoutsAt
		ws.SetXtx, ws.Xtx = true, lc.Xtx

		if err := e.Store.Apply(ws); err != nil {
			return applyResult{}, err
		}
		e.Metrics.IncSubmitted()
		xtxCopy := lc.Xtx
		return applyResult{Xtx: &xtxCopy, FullSideEffects: lc.FullSideEffects}, nil

	case status.PendingInsurance:
		var result applyResult
		if maybeInsurance != nil {
			ws.HasInsuranceDepositUpdate, ws.InsuranceDepositUpdateID, ws.InsuranceDepositUpdate =
				true, maybeInsurance.SfxID, &maybeInsurance.Deposit
		}
		if newStatus != oldStatus {
			ws.SetXtx, ws.Xtx = true, lc.Xtx
			xtxCopy := lc.Xtx
			result.Xtx = &xtxCopy
		}
		if err := e.Store.Apply(ws); err != nil {
			return applyResult{}, err
		}
		return result, nil

	case status.RevertTimedOut, status.Reverted, status.RevertMisbehaviour, status.RevertKill:
		// spec.md §8 round-trip invariant requires every revert-family
		// cause to leave a terminal Xtx row and clear its timing link —
		// all four causes apply identically here, not just
		// RevertTimedOut, diverging deliberately from the visible Rust
		// apply() catch-all that drops Reverted/RevertMisbehaviour/
		// RevertKill on the floor (see DESIGN.md Open Questions).
		ws.SetXtx, ws.Xtx = true, lc.Xtx
		ws.RemoveTimingLink = true
		if err := e.Store.Apply(ws); err != nil {
			return applyResult{}, err
		}
		xtxCopy := lc.Xtx
		return applyResult{Xtx: &xtxCopy, FullSideEffects: lc.FullSideEffects}, nil

	case status.Ready, status.Bonded, status.PendingExecution, status.Finished:
		ws.SetFullSideEffects, ws.FullSideEffects = true, lc.FullSideEffects
		ws.SetXtx, ws.Xtx = true, lc.Xtx
		if err := e.Store.Apply(ws); err != nil {
			return applyResult{}, err
		}
		if status.Less(status.Ready, newStatus) {
			xtxCopy := lc.Xtx
			return applyResult{Xtx: &xtxCopy, FullSideEffects: lc.FullSideEffects}, nil
		}
		return applyResult{}, nil

	case status.FinishedAllSteps:
		ws.SetXtx, ws.Xtx = true, lc.Xtx
		ws.RemoveTimingLink = true
		if err := e.Store.Apply(ws); err != nil {
			return applyResult{}, err
		}
		e.Metrics.IncFinishedAllSteps()
		xtxCopy := lc.Xtx
		return applyResult{Xtx: &xtxCopy, FullSideEffects: lc.FullSideEffects}, nil

	default:
		return applyResult{}, nil
	}
}

// localSfxIndex returns the sfx ids apply's Requested branch must link to
// XtxID in LocalSideEffectToXtxIdLinks: those "locally executable" on this
// node. Treated as synonymous with Escrowed security level (self-gateway
// or programmable-internal/on-circuit target) — a grounded simplification
// of the Rust source's narrower is_local() check; see DESIGN.md. Ids are
// deduplicated through a set.Set: a bundle that repeats the same
// canonical side effect across two Escrowed entries must still link it to
// XtxID exactly once.
func (e *Engine) localSfxIndex(lc *LocalCtx) []ids.Id {
	seen := set.Set[ids.Id]{}
	var out []ids.Id
	for _, step := range lc.FullSideEffects {
		for _, fsx := range step {
			if fsx.SecurityLvl != xtx.Escrowed {
				continue
			}
			sfxID := fsx.SideEffect.ID(e.Hasher)
			if seen.Contains(sfxID) {
				continue
			}
			seen.Add(sfxID)
			out = append(out, sfxID)
		}
	}
	return out
}

// emit implements spec.md §4.F emit: structured log lines stand in for
// the teacher's event/metrics surface (no on-chain event log exists in
// this engine — see DESIGN.md), grounded on chainCtx.Log.Info calls
// threaded through vm.go's own block-acceptance path.
func (e *Engine) emit(xtxID ids.Id, res applyResult, actor xtx.Account, newSFX []xtx.SideEffect) {
	if len(newSFX) > 0 {
		e.Log.Info("new side effects available",
			zap.Stringer("xtxID", xtxID), zap.String("actor", string(actor)), zap.Int("count", len(newSFX)))
	}
	if res.Xtx == nil {
		return
	}
	switch res.Xtx.Status {
	case status.PendingInsurance:
		e.Log.Info("xtx received for execution", zap.Stringer("xtxID", xtxID))
	case status.Ready:
		e.Log.Info("xtx ready for execution", zap.Stringer("xtxID", xtxID))
	case status.Finished:
		e.Log.Info("xtx step finished", zap.Stringer("xtxID", xtxID))
	case status.FinishedAllSteps:
		e.Log.Info("xtx finished all steps", zap.Stringer("xtxID", xtxID))
	case status.RevertTimedOut:
		e.Metrics.IncRevertedTimeout()
		e.Log.Info("xtx reverted after timeout", zap.Stringer("xtxID", xtxID))
	case status.RevertKill:
		e.Metrics.IncRevertedKill()
		e.Log.Info("xtx reverted by kill signal", zap.Stringer("xtxID", xtxID))
	case status.RevertMisbehaviour:
		e.Metrics.IncRevertedMisbehaviour()
		e.Log.Info("xtx reverted for misbehaviour", zap.Stringer("xtxID", xtxID))
	}
	if status.Less(status.PendingExecution, res.Xtx.Status) || res.Xtx.Status == status.PendingExecution {
		if res.FullSideEffects != nil {
			e.Log.Debug("side effects confirmed", zap.Stringer("xtxID", xtxID))
		}
	}
}

// kill implements spec.md §4.F kill: set the terminal status, slash,
// settle, and apply — infallible by contract for the settlement step.
func (e *Engine) kill(ctx context.Context, lc *LocalCtx, cause status.Status) (applyResult, error) {
	lc.Xtx.Status = cause
	ptrs := lc.insurancePointers()
	if slashed := e.Bonding.TrySlash(ptrs); slashed > 0 {
		for i := 0; i < slashed; i++ {
			e.Metrics.IncInsuranceSlashed()
		}
	}
	lc.writeBackInsurance(ptrs)

	// square_up dispatches on OldStatus; point it at the revert branch.
	if cause.IsRevertFamily() {
		lc.OldStatus = cause
	}
	if err := e.squareUp(ctx, lc, nil, nil); err != nil {
		return applyResult{}, fmt.Errorf("square_up must be infallible for revert causes: %w", err)
	}
	return e.apply(ctx, lc, nil, cause, cause)
}

// confirm implements spec.md §4.F confirm(local_ctx, relayer, sfx, confirmation).
func (e *Engine) confirm(ctx context.Context, lc *LocalCtx, sfx xtx.SideEffect, confirmation xtx.ConfirmedSideEffect) error {
	ctx, span := e.Tracer.Start(ctx, "executor.confirm")
	defer span.End()
	defer e.observe("confirm", time.Now())

	step := lc.CurrentStep()
	if len(step) == 0 {
		return ErrEmptyCurrentStep
	}
	sfxID := sfx.ID(e.Hasher)
	idx := -1
	for i := range step {
		if step[i].SideEffect.ID(e.Hasher) == sfxID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrSideEffectNotInStep
	}
	if step[idx].IsConfirmed() {
		return ErrSideEffectAlreadyConfirmed
	}

	fsx := step[idx]
	params, source, err := e.Portal.ConfirmAndDecodePayloadParams(ctx, sfx.TargetGatewayID, fsx.SubmissionTargetHeight, confirmation.DecodedParams, sfxID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInclusionProofFailed, err)
	}
	confirmation.DecodedParams = params
	if confirmation.Executioner == "" {
		confirmation.Executioner = source
	}

	// The security coordinates lookup is part of the confirmation path in
	// the original source (Xdns::get_gateway_security_coordinates feeding
	// the confirmation plug); a lookup failure here rejects the
	// confirmation with ErrInclusionProofFailed.
	if _, err := e.NameService.GetGatewaySecurityCoordinates(sfx.TargetGatewayID); err != nil {
		return fmt.Errorf("%w: %v", ErrInclusionProofFailed, err)
	}

	if err := e.Protocol.ConfirmationPredicate(sfx, fsx.SecurityLvl, params, lc.LocalState); err != nil {
		return fmt.Errorf("%w: %v", ErrConfirmationPredicateFailed, err)
	}

	confirmed := confirmation
	step[idx].Confirmed = &confirmed
	lc.setCurrentStep(step)
	e.Metrics.IncConfirmationAccepted()
	return nil
}
