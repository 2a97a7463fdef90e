package executor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/t3rn/circuit/bonding"
	"github.com/t3rn/circuit/hostif"
	"github.com/t3rn/circuit/ids"
	"github.com/t3rn/circuit/status"
	"github.com/t3rn/circuit/xtx"
)

// SubmitBundle implements spec.md §6 on_extrinsic_trigger: a requester
// admits a bundle of side effects. Phases: setup(Requested) -> validate ->
// square_up -> update -> apply -> emit.
func (e *Engine) SubmitBundle(ctx context.Context, requester xtx.Account, sfxs []xtx.SideEffect, fee uint64, sequential bool) (ids.Id, error) {
	lc, err := e.setup(ctx, status.Requested, requester, fee, nil)
	if err != nil {
		return ids.Empty, err
	}
	if err := e.runValidate(ctx, lc, sfxs, sequential); err != nil {
		return ids.Empty, err
	}
	if err := e.squareUp(ctx, lc, &requester, nil); err != nil {
		return ids.Empty, err
	}
	old, newStatus := e.update(lc)
	res, err := e.apply(ctx, lc, nil, old, newStatus)
	if err != nil {
		return ids.Empty, err
	}
	e.emit(lc.XtxID, res, requester, sfxs)
	return lc.XtxID, nil
}

// BondInsuranceDeposit implements spec.md §6 bond_insurance_deposit: an
// executor posts collateral for one Optimistic side effect. Phases:
// setup(PendingInsurance) -> Bond4Sfx -> update -> apply -> emit.
func (e *Engine) BondInsuranceDeposit(ctx context.Context, executor xtx.Account, xtxID, sfxID ids.Id) error {
	if !e.Executors.IsKnown(executor) {
		return ErrUnknownExecutor
	}
	lc, err := e.setup(ctx, status.PendingInsurance, executor, 0, &xtxID)
	if err != nil {
		return err
	}
	deposit, ok := lc.InsuranceDeposits[sfxID]
	if !ok {
		return bonding.ErrUnknownSideEffect
	}
	bonded, err := e.Bonding.Bond4Sfx(executor, deposit, e.Now())
	if err != nil {
		return err
	}
	lc.InsuranceDeposits[sfxID] = bonded

	old, newStatus := e.update(lc)
	res, err := e.apply(ctx, lc, &insuranceUpdate{SfxID: sfxID, Deposit: bonded}, old, newStatus)
	if err != nil {
		return err
	}
	e.Metrics.IncInsuranceBonded()
	e.emit(xtxID, res, executor, nil)
	return nil
}

// ScheduleAsyncExecution implements spec.md §6
// execute_side_effects_with_xbi: an executor hands one side effect to the
// async bus for remote execution. Phases: setup(PendingExecution) ->
// square_up(executor charge) -> dispatch async bus. There is no update,
// apply, or emit here — the Xtx only advances when the bus resolves, via
// the registered continuation (spec.md §9: "register-continuation-as-
// deferred-call").
func (e *Engine) ScheduleAsyncExecution(ctx context.Context, executor xtx.Account, xtxID ids.Id, sfx xtx.SideEffect, maxExecCost, maxNotificationsCost uint64) error {
	if !e.Executors.IsKnown(executor) {
		return ErrUnknownExecutor
	}
	sfxID := sfx.ID(e.Hasher)
	if e.Bus.IsScheduled(sfxID) {
		return ErrAlreadyScheduled
	}
	lc, err := e.setup(ctx, status.PendingExecution, executor, 0, &xtxID)
	if err != nil {
		return err
	}
	charge := &executorCharge{ChargeID: sfxID, Executor: executor, Amount: maxExecCost + maxNotificationsCost}
	if err := e.squareUp(ctx, lc, nil, charge); err != nil {
		return err
	}
	return e.Bus.Then(sfxID, sfx.EncodedArgs, func(hostif.CheckOut) error {
		// The continuation fires as an independent later transaction
		// (spec.md §9); it owns its own context rather than reusing one
		// that may already be cancelled by the time the bus resolves.
		return e.OnAsyncResolved(context.Background(), sfxID)
	})
}

// OnAsyncResolved implements spec.md §6 on_xbi_sfx_resolved: the async
// continuation converts the bus's terminal result into a confirmation and
// runs confirm through the same path as a relayer-supplied one.
func (e *Engine) OnAsyncResolved(ctx context.Context, sfxID ids.Id) error {
	co, err := e.Bus.GetCheckOut(sfxID)
	if err != nil {
		return err
	}
	if !co.Success {
		e.Log.Warn("async execution failed", zap.Stringer("sfxID", sfxID), zap.String("reason", co.FailureReason))
		return fmt.Errorf("executor: async execution failed: %s", co.FailureReason)
	}

	xtxID, ok := e.Store.GetXtxForSideEffect(sfxID)
	if !ok {
		return ErrXtxNotFound
	}
	snap, ok := e.Store.Snapshot(xtxID)
	if !ok {
		return ErrXtxNotFound
	}
	sfx, ok := findSfxInStep(snap.FullSideEffects, sfxID, e.Hasher)
	if !ok {
		return ErrSideEffectNotInStep
	}
	return e.ConfirmSideEffect(ctx, "circuit::async-bus", xtxID, sfx, co.Confirmation)
}

// ConfirmSideEffect implements spec.md §6 confirm_side_effect: a relayer
// (or, via OnAsyncResolved, the async bus) supplies a confirmation for one
// side effect in the current step. Phases: setup(PendingExecution) ->
// confirm -> square_up (Finished branch, only once the confirmation
// completes the current step) -> update -> apply -> emit.
func (e *Engine) ConfirmSideEffect(ctx context.Context, relayer xtx.Account, xtxID ids.Id, sfx xtx.SideEffect, confirmation xtx.ConfirmedSideEffect) error {
	lc, err := e.setup(ctx, status.PendingExecution, relayer, 0, &xtxID)
	if err != nil {
		return err
	}
	if err := e.confirm(ctx, lc, sfx, confirmation); err != nil {
		e.Metrics.IncConfirmationRejected()
		return err
	}
	if lc.CurrentStep().AllConfirmed() {
		// The step is complete: commit its charges and unbond insurance
		// before update moves the cursor past it.
		lc.OldStatus = status.Finished
		if err := e.squareUp(ctx, lc, nil, nil); err != nil {
			return err
		}
	}
	old, newStatus := e.update(lc)
	res, err := e.apply(ctx, lc, nil, old, newStatus)
	if err != nil {
		return err
	}
	e.emit(xtxID, res, relayer, nil)
	return nil
}

// ProcessSignalQueue implements spec.md §4.F process_signal_queue: drain
// up to SignalQueueDepth/4 entries per call, running each as a kill path
// through setup(Ready, ...). On setup error the signal rotates to the
// tail instead of being dropped; on success it's popped via SwapRemoveHead.
func (e *Engine) ProcessSignalQueue(ctx context.Context) int {
	budget := int(e.Config.SignalQueueDepth / 4)
	processed := 0
	for i := 0; i < budget; i++ {
		entry, ok := e.Signals.Peek()
		if !ok {
			break
		}
		intended := status.Finished
		if entry.Signal.Kind == xtx.SignalKill {
			intended = status.RevertKill
		}

		lc, err := e.setup(ctx, status.Ready, entry.Account, 0, &entry.Signal.XtxID)
		if err != nil {
			e.Log.Error("could not handle signal", zap.Stringer("xtxID", entry.Signal.XtxID), zap.Error(err))
			e.Signals.RotateHeadToTail()
			continue
		}

		res, err := e.kill(ctx, lc, intended)
		if err != nil {
			// kill is infallible by contract (spec.md §4.F); an error
			// here means a fatal invariant violation in a collaborator,
			// not a retryable condition. Logged and the signal is still
			// consumed so the queue can't wedge on it forever.
			e.Log.Fatal("kill failed processing signal", zap.Stringer("xtxID", entry.Signal.XtxID), zap.Error(err))
		}
		e.Signals.SwapRemoveHead()
		processed++
		e.emit(entry.Signal.XtxID, res, entry.Account, nil)
	}
	e.Metrics.SetSignalQueueDepth(e.Signals.Len())
	return processed
}

// SweepTimeouts implements spec.md §4.F's timeout sweep block hook: every
// XtxTimeoutCheckInterval blocks, find the single earliest-due Xtx and
// revert it. Only one entry is handled per call — spec.md §9 design note
// (a) specifies this as "one per block" to match the observed source
// behavior rather than looping the full DeletionQueueLimit in one pass;
// callers on an interval boundary get one revert per tick and rely on
// the next tick to continue draining a backlog.
func (e *Engine) SweepTimeouts(ctx context.Context) (bool, error) {
	xtxID, _, found := e.Store.EarliestDueTiming(e.Now())
	if !found {
		return false, nil
	}
	selfAccount := xtx.Account(e.Config.SelfAccountID)
	lc, err := e.setup(ctx, status.RevertTimedOut, selfAccount, 0, &xtxID)
	if err != nil {
		return false, err
	}
	res, err := e.kill(ctx, lc, status.RevertTimedOut)
	if err != nil {
		return false, err
	}
	e.emit(xtxID, res, selfAccount, nil)
	return true, nil
}

func findSfxInStep(steps []xtx.Step, sfxID ids.Id, h ids.Hasher) (xtx.SideEffect, bool) {
	for _, step := range steps {
		for _, fsx := range step {
			if fsx.SideEffect.ID(h) == sfxID {
				return fsx.SideEffect, true
			}
		}
	}
	return xtx.SideEffect{}, false
}
