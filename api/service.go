package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/t3rn/circuit/executor"
	"github.com/t3rn/circuit/logging"
	"github.com/t3rn/circuit/xtx"
)

// Service is the JSON-RPC surface over one Engine, grounded on
// vms/platformvm.Service: every method takes the standard gorilla/rpc
// trio (request, args, reply) and returns a plain error, never writing to
// the ResponseWriter directly.
type Service struct {
	engine *executor.Engine
	log    logging.Logger
}

// NewService constructs a Service bound to engine.
func NewService(engine *executor.Engine, log logging.Logger) *Service {
	return &Service{engine: engine, log: log}
}

// SubmitBundle admits a new bundle of side effects (spec.md §6
// on_extrinsic_trigger).
func (s *Service) SubmitBundle(r *http.Request, args *SubmitBundleArgs, reply *SubmitBundleReply) error {
	s.log.Debug("API called", zap.String("method", "submitBundle"))

	sfxs := make([]xtx.SideEffect, 0, len(args.SideEffects))
	for _, a := range args.SideEffects {
		sfx, err := a.toSideEffect()
		if err != nil {
			return err
		}
		sfxs = append(sfxs, sfx)
	}

	xtxID, err := s.engine.SubmitBundle(r.Context(), xtx.Account(args.Requester), sfxs, args.Fee, args.Sequential)
	if err != nil {
		return err
	}
	reply.XtxID = xtxID.String()
	return nil
}

// BondInsuranceDeposit posts collateral for one Optimistic side effect
// (spec.md §6 bond_insurance_deposit).
func (s *Service) BondInsuranceDeposit(r *http.Request, args *BondInsuranceDepositArgs, _ *struct{}) error {
	s.log.Debug("API called", zap.String("method", "bondInsuranceDeposit"))

	xtxID, err := idFromHex(args.XtxID)
	if err != nil {
		return err
	}
	sfxID, err := idFromHex(args.SfxID)
	if err != nil {
		return err
	}
	return s.engine.BondInsuranceDeposit(r.Context(), xtx.Account(args.Executor), xtxID, sfxID)
}

// ScheduleAsyncExecution hands one side effect to the async bus (spec.md
// §6 execute_side_effects_with_xbi).
func (s *Service) ScheduleAsyncExecution(r *http.Request, args *ScheduleAsyncExecutionArgs, _ *struct{}) error {
	s.log.Debug("API called", zap.String("method", "scheduleAsyncExecution"))

	xtxID, err := idFromHex(args.XtxID)
	if err != nil {
		return err
	}
	sfx, err := args.SideEffect.toSideEffect()
	if err != nil {
		return err
	}
	return s.engine.ScheduleAsyncExecution(r.Context(), xtx.Account(args.Executor), xtxID, sfx, args.MaxExecCost, args.MaxNotificationsCost)
}

// ConfirmSideEffect supplies a confirmation for one side effect in the
// current step (spec.md §6 confirm_side_effect).
func (s *Service) ConfirmSideEffect(r *http.Request, args *ConfirmSideEffectArgs, _ *struct{}) error {
	s.log.Debug("API called", zap.String("method", "confirmSideEffect"))

	xtxID, err := idFromHex(args.XtxID)
	if err != nil {
		return err
	}
	sfx, err := args.SideEffect.toSideEffect()
	if err != nil {
		return err
	}
	confirmation, err := args.Confirmation.toConfirmedSideEffect()
	if err != nil {
		return err
	}
	return s.engine.ConfirmSideEffect(r.Context(), xtx.Account(args.Relayer), xtxID, sfx, confirmation)
}

// ProcessSignalQueue drains a bounded batch of pending control signals
// (spec.md §4.F process_signal_queue). Intended to be driven by the host's
// own block-production loop rather than by external callers, but exposed
// here the same way the teacher exposes otherwise-internal admin calls
// under its API surface for operability.
func (s *Service) ProcessSignalQueue(r *http.Request, _ *struct{}, reply *ProcessSignalQueueReply) error {
	reply.Processed = s.engine.ProcessSignalQueue(r.Context())
	return nil
}

// SweepTimeouts reverts the single earliest-due Xtx, if any (spec.md §9
// design note (a)).
func (s *Service) SweepTimeouts(r *http.Request, _ *struct{}, reply *SweepTimeoutsReply) error {
	reverted, err := s.engine.SweepTimeouts(r.Context())
	if err != nil {
		return err
	}
	reply.Reverted = reverted
	return nil
}
