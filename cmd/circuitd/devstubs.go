package main

// In-memory stand-ins for the six hostif collaborators, for running the
// engine standalone without a real name service, portal, or bus behind
// it. Grounded on the shape of the teacher's own xsvm example VM
// (vms/example/xsvm): a complete, self-contained toy chain with no
// external dependencies, used for local development rather than
// production. None of these are a real implementation of their
// interface's actual job (spec.md §1 Non-goals: the engine never
// reimplements Xdns, Portal, AccountManager, Executors, or the async
// bus) — they exist only so `circuitd` has something to run against
// out of the box.

import (
	"context"
	"sync"

	"github.com/t3rn/circuit/hostif"
	"github.com/t3rn/circuit/ids"
	"github.com/t3rn/circuit/xtx"
)

// devNameService treats every gateway as external, allows any 4-byte
// action selector, and hands back an empty ABI/interface descriptor —
// enough for the validator to run its own checks without ever rejecting
// on a name-service lookup.
type devNameService struct{}

func (devNameService) GetABI(ids.GatewayId) (hostif.ABI, error) {
	return hostif.ABI{}, nil
}

func (devNameService) AllowedSideEffects(ids.GatewayId) (map[[4]byte]struct{}, error) {
	return nil, nil
}

func (devNameService) GetGatewayTypeUnsafe(ids.GatewayId) hostif.GatewayType {
	return hostif.GatewayExternal
}

func (devNameService) GetGatewayParaID(ids.GatewayId) (uint32, error) {
	return 0, nil
}

func (devNameService) FetchSideEffectInterface(id ids.Id) (hostif.SideEffectInterface, error) {
	return hostif.SideEffectInterface{ID: id}, nil
}

func (devNameService) GetGatewaySecurityCoordinates(ids.GatewayId) ([]byte, error) {
	return nil, nil
}

// devPortal reports an always-finalized height and treats inclusionData
// as the already-decoded params, with no foreign-chain verification.
type devPortal struct{}

func (devPortal) GetLatestFinalizedHeight(context.Context, ids.GatewayId) (uint64, error) {
	return ^uint64(0) >> 1, nil
}

func (devPortal) ConfirmAndDecodePayloadParams(_ context.Context, _ ids.GatewayId, _ uint64, inclusionData []byte, _ ids.Id) ([]byte, xtx.Account, error) {
	return inclusionData, "", nil
}

// devAccountManager is a simple balance ledger with no charge bookkeeping
// beyond a direct Transfer; Deposit/Finalize/TryFinalize are accepted as
// no-ops since no one outside this stub reads charge state back.
type devAccountManager struct {
	mu       sync.Mutex
	balances map[xtx.Account]uint64
}

func newDevAccountManager(seed map[xtx.Account]uint64) *devAccountManager {
	balances := make(map[xtx.Account]uint64, len(seed))
	for k, v := range seed {
		balances[k] = v
	}
	return &devAccountManager{balances: balances}
}

func (d *devAccountManager) Deposit(ids.Id, xtx.Account, uint64, uint64, hostif.BenefitSource, hostif.CircuitRole, *xtx.Account) error {
	return nil
}

func (d *devAccountManager) Finalize(ids.Id, hostif.Outcome, *xtx.Account, *uint64) error {
	return nil
}

func (d *devAccountManager) TryFinalize(ids.Id, hostif.Outcome, *xtx.Account, *uint64) {}

func (d *devAccountManager) Transfer(from, to xtx.Account, amount uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.balances[from] < amount {
		return errInsufficientDevFunds
	}
	d.balances[from] -= amount
	d.balances[to] += amount
	return nil
}

var errInsufficientDevFunds = &devError{"devstubs: insufficient funds"}

type devError struct{ msg string }

func (e *devError) Error() string { return e.msg }

// devExecutorRegistry treats every account as a known executor — there is
// no real registration flow in this dev deployment.
type devExecutorRegistry struct{}

func (devExecutorRegistry) IsKnown(xtx.Account) bool { return true }

// devAsyncBus resolves every scheduled side effect synchronously and
// successfully, in the calling goroutine, rather than carrying it over a
// real transport. Good enough to exercise the engine's async path
// end-to-end locally; not a substitute for a real bus.
type devAsyncBus struct {
	mu        sync.Mutex
	scheduled map[ids.Id]hostif.CheckOut
}

func newDevAsyncBus() *devAsyncBus {
	return &devAsyncBus{scheduled: make(map[ids.Id]hostif.CheckOut)}
}

func (b *devAsyncBus) GetStatus(sfxID ids.Id) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.scheduled[sfxID]; ok {
		return "resolved", nil
	}
	return "unknown", nil
}

func (b *devAsyncBus) GetCheckIn(ids.Id) ([]byte, error) { return nil, nil }

func (b *devAsyncBus) GetCheckOut(sfxID ids.Id) (hostif.CheckOut, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.scheduled[sfxID], nil
}

func (b *devAsyncBus) IsScheduled(sfxID ids.Id) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.scheduled[sfxID]
	return ok
}

func (b *devAsyncBus) Then(sfxID ids.Id, payload []byte, continuation func(hostif.CheckOut) error) error {
	co := hostif.CheckOut{
		Success: true,
		Confirmation: xtx.ConfirmedSideEffect{
			DecodedParams: payload,
		},
	}
	b.mu.Lock()
	b.scheduled[sfxID] = co
	b.mu.Unlock()
	return continuation(co)
}

// devProtocol performs no type checking, declares no insurance hints, and
// accepts every confirmation predicate unconditionally — the validator
// and confirm() paths exercise their own logic around this stub without
// it ever being the thing that rejects a call.
type devProtocol struct{}

func (devProtocol) TypeCheck(hostif.ABI, map[[4]byte]struct{}, xtx.SideEffect, *xtx.LocalState) error {
	return nil
}

func (devProtocol) ExtractInsuranceHint(xtx.SideEffect) (*xtx.InsuranceHint, error) {
	return nil, nil
}

func (devProtocol) ConfirmationPredicate(xtx.SideEffect, xtx.SecurityLvl, []byte, xtx.LocalState) error {
	return nil
}
