package executor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/t3rn/circuit/bonding"
	"github.com/t3rn/circuit/config"
	"github.com/t3rn/circuit/executor"
	"github.com/t3rn/circuit/hostif"
	"github.com/t3rn/circuit/ids"
	"github.com/t3rn/circuit/logging"
	"github.com/t3rn/circuit/metrics"
	"github.com/t3rn/circuit/signalqueue"
	"github.com/t3rn/circuit/state"
	"github.com/t3rn/circuit/status"
	"github.com/t3rn/circuit/validator"
	"github.com/t3rn/circuit/xtx"
)

var gwEscrowed = ids.GatewayId{'s', 'e', 'l', 'f'}
var gwDirty = ids.GatewayId{'d', 'r', 't', 'y'}

var optimisticAction = [4]byte{0x01, 0x00, 0x00, 0x00}

// testNameService classifies gwEscrowed as on-circuit and everything else
// as external, mirroring the validator package's own test fakes.
type testNameService struct{}

func (testNameService) GetABI(ids.GatewayId) (hostif.ABI, error) { return hostif.ABI{}, nil }
func (testNameService) AllowedSideEffects(ids.GatewayId) (map[[4]byte]struct{}, error) {
	return nil, nil
}
func (testNameService) GetGatewayTypeUnsafe(target ids.GatewayId) hostif.GatewayType {
	if target == gwEscrowed {
		return hostif.GatewayOnCircuit
	}
	return hostif.GatewayExternal
}
func (testNameService) GetGatewayParaID(ids.GatewayId) (uint32, error) { return 0, nil }
func (testNameService) FetchSideEffectInterface(id ids.Id) (hostif.SideEffectInterface, error) {
	return hostif.SideEffectInterface{ID: id}, nil
}
func (testNameService) GetGatewaySecurityCoordinates(ids.GatewayId) ([]byte, error) { return nil, nil }

type testProtocol struct{}

func (testProtocol) TypeCheck(hostif.ABI, map[[4]byte]struct{}, xtx.SideEffect, *xtx.LocalState) error {
	return nil
}
func (testProtocol) ExtractInsuranceHint(sfx xtx.SideEffect) (*xtx.InsuranceHint, error) {
	if sfx.Action == optimisticAction {
		return &xtx.InsuranceHint{Bond: 10, Reward: sfx.Prize}, nil
	}
	return nil, nil
}
func (testProtocol) ConfirmationPredicate(xtx.SideEffect, xtx.SecurityLvl, []byte, xtx.LocalState) error {
	return nil
}

type testPortal struct{}

func (testPortal) GetLatestFinalizedHeight(context.Context, ids.GatewayId) (uint64, error) {
	return 1, nil
}
func (testPortal) ConfirmAndDecodePayloadParams(_ context.Context, _ ids.GatewayId, _ uint64, inclusionData []byte, _ ids.Id) ([]byte, xtx.Account, error) {
	return inclusionData, "executor-1", nil
}

type testAccounts struct {
	balances map[xtx.Account]uint64
}

func newTestAccounts() *testAccounts {
	return &testAccounts{balances: map[xtx.Account]uint64{
		"requester":  1000,
		"executor-1": 1000,
	}}
}

func (a *testAccounts) Deposit(_ ids.Id, payer xtx.Account, fee, reward uint64, _ hostif.BenefitSource, _ hostif.CircuitRole, _ *xtx.Account) error {
	if a.balances[payer] < fee+reward {
		return bonding.ErrInsufficientFunds
	}
	a.balances[payer] -= fee + reward
	return nil
}
func (a *testAccounts) Finalize(_ ids.Id, _ hostif.Outcome, payee *xtx.Account, cost *uint64) error {
	if payee != nil && cost != nil {
		a.balances[*payee] += *cost
	}
	return nil
}
func (a *testAccounts) TryFinalize(ids.Id, hostif.Outcome, *xtx.Account, *uint64) {}
func (a *testAccounts) Transfer(from, to xtx.Account, amount uint64) error {
	if a.balances[from] < amount {
		return bonding.ErrInsufficientFunds
	}
	a.balances[from] -= amount
	a.balances[to] += amount
	return nil
}

type testExecutors struct{}

func (testExecutors) IsKnown(xtx.Account) bool { return true }

type testBus struct {
	then     map[ids.Id]func(hostif.CheckOut) error
	resolved hostif.CheckOut
}

func newTestBus() *testBus { return &testBus{then: map[ids.Id]func(hostif.CheckOut) error{}} }

func (b *testBus) GetStatus(ids.Id) (string, error) { return "", nil }
func (b *testBus) GetCheckIn(ids.Id) ([]byte, error) { return nil, nil }
func (b *testBus) GetCheckOut(ids.Id) (hostif.CheckOut, error) {
	return b.resolved, nil
}
func (b *testBus) IsScheduled(sfxID ids.Id) bool {
	_, ok := b.then[sfxID]
	return ok
}
func (b *testBus) Then(sfxID ids.Id, _ []byte, continuation func(hostif.CheckOut) error) error {
	b.then[sfxID] = continuation
	return nil
}

func newEngine(t *testing.T) (*executor.Engine, *testAccounts, *testBus) {
	t.Helper()
	accounts := newTestAccounts()
	bus := newTestBus()
	var counter byte
	return &executor.Engine{
		Store:     state.NewMemStore(),
		Validator: validator.Backend{NameService: testNameService{}, Protocol: testProtocol{}, Portal: testPortal{}, Hasher: ids.DefaultHasher, SelfGateway: gwEscrowed},
		Bonding:   bonding.Backend{AccountManager: accounts},

		Accounts:    accounts,
		Bus:         bus,
		Portal:      testPortal{},
		NameService: testNameService{},
		Protocol:    testProtocol{},
		Executors:   testExecutors{},

		Signals: signalqueue.New(100),
		Metrics: metrics.NewNop(),
		Log:     logging.NewNop(),
		Tracer:  otel.Tracer("executor_test"),
		Hasher:  ids.DefaultHasher,
		Config:  config.Config{SelfAccountID: "circuit", SignalQueueDepth: 1000, XtxTimeoutDefault: 50, XtxTimeoutCheckInterval: 10},

		Now: func() xtx.BlockNumber { return 1 },
		NewXtxID: func() ids.Id {
			counter++
			id := ids.Id{}
			id[0] = counter
			return id
		},
	}, accounts, bus
}

// TestSubmitBundleEscrowedHappyPath is spec.md §8 S1: a single Escrowed
// side effect settles straight through to Ready on submission, since its
// step has no confirmations required to start but still needs a relayer
// confirmation to finish.
func TestSubmitBundleEscrowedHappyPath(t *testing.T) {
	eng, accounts, _ := newEngine(t)
	ctx := context.Background()

	sfx := xtx.SideEffect{TargetGatewayID: gwEscrowed, Action: [4]byte{0xAA}, Prize: 5}
	xtxID, err := eng.SubmitBundle(ctx, "requester", []xtx.SideEffect{sfx}, 0, false)
	require.NoError(t, err)
	require.Equal(t, uint64(995), accounts.balances["requester"])

	got, ok := eng.Store.GetXtx(xtxID)
	require.True(t, ok)
	require.Equal(t, status.Ready, got.Status)

	confirmation := xtx.ConfirmedSideEffect{Cost: 5, DecodedParams: []byte("ok")}
	require.NoError(t, eng.ConfirmSideEffect(ctx, "relayer", xtxID, sfx, confirmation))

	got, ok = eng.Store.GetXtx(xtxID)
	require.True(t, ok)
	require.Equal(t, status.FinishedAllSteps, got.Status)
	require.Equal(t, uint64(1005), accounts.balances["executor-1"], "payee resolved from the portal-decoded source")
}

// TestSubmitBundleOptimisticRequiresBonding is spec.md §8 S2: an
// Optimistic side effect parks at PendingInsurance until an executor
// bonds collateral, then proceeds to Ready.
func TestSubmitBundleOptimisticRequiresBonding(t *testing.T) {
	eng, _, _ := newEngine(t)
	ctx := context.Background()

	sfx := xtx.SideEffect{TargetGatewayID: gwDirty, Action: optimisticAction, Prize: 7}
	xtxID, err := eng.SubmitBundle(ctx, "requester", []xtx.SideEffect{sfx}, 0, false)
	require.NoError(t, err)

	got, ok := eng.Store.GetXtx(xtxID)
	require.True(t, ok)
	require.Equal(t, status.PendingInsurance, got.Status)

	sfxID := sfx.ID(ids.DefaultHasher)
	require.NoError(t, eng.BondInsuranceDeposit(ctx, "executor-1", xtxID, sfxID))

	got, ok = eng.Store.GetXtx(xtxID)
	require.True(t, ok)
	require.Equal(t, status.Ready, got.Status)
}

// TestBondInsuranceDepositRejectsUnknownExecutor exercises the
// ExecutorRegistry gate added at this entry point.
func TestBondInsuranceDepositRejectsUnknownExecutor(t *testing.T) {
	eng, _, _ := newEngine(t)
	eng.Executors = rejectAllExecutors{}
	ctx := context.Background()

	sfx := xtx.SideEffect{TargetGatewayID: gwDirty, Action: optimisticAction, Prize: 7}
	xtxID, err := eng.SubmitBundle(ctx, "requester", []xtx.SideEffect{sfx}, 0, false)
	require.NoError(t, err)

	err = eng.BondInsuranceDeposit(ctx, "stranger", xtxID, sfx.ID(ids.DefaultHasher))
	require.ErrorIs(t, err, executor.ErrUnknownExecutor)
}

type rejectAllExecutors struct{}

func (rejectAllExecutors) IsKnown(xtx.Account) bool { return false }

// TestSweepTimeoutsRevertsAndSlashes is spec.md §8 S3: an Xtx whose
// timeout has elapsed is reverted by the sweep, and any bonded insurance
// on it is slashed rather than returned.
func TestSweepTimeoutsRevertsAndSlashes(t *testing.T) {
	eng, accounts, _ := newEngine(t)
	ctx := context.Background()

	sfx := xtx.SideEffect{TargetGatewayID: gwDirty, Action: optimisticAction, Prize: 7}
	xtxID, err := eng.SubmitBundle(ctx, "requester", []xtx.SideEffect{sfx}, 0, false)
	require.NoError(t, err)
	require.NoError(t, eng.BondInsuranceDeposit(ctx, "executor-1", xtxID, sfx.ID(ids.DefaultHasher)))

	balanceBeforeSweep := accounts.balances["executor-1"]

	eng.Now = func() xtx.BlockNumber { return 1000 }
	reverted, err := eng.SweepTimeouts(ctx)
	require.NoError(t, err)
	require.True(t, reverted)

	got, ok := eng.Store.GetXtx(xtxID)
	require.True(t, ok)
	require.Equal(t, status.RevertTimedOut, got.Status)
	require.Equal(t, balanceBeforeSweep, accounts.balances["executor-1"], "slashed bond never returns to the executor")

	_, ok = eng.Store.GetTimingLink(xtxID)
	require.False(t, ok, "apply must clear the timing link on revert")

	reverted, err = eng.SweepTimeouts(ctx)
	require.NoError(t, err)
	require.False(t, reverted, "nothing left due once the only timing link is cleared")
}

// TestProcessSignalQueueKill is spec.md §8 S5: a queued Kill signal
// reverts the targeted Xtx via the same settlement path as a timeout.
func TestProcessSignalQueueKill(t *testing.T) {
	eng, _, _ := newEngine(t)
	ctx := context.Background()

	sfx := xtx.SideEffect{TargetGatewayID: gwEscrowed, Action: [4]byte{0xAA}, Prize: 1}
	xtxID, err := eng.SubmitBundle(ctx, "requester", []xtx.SideEffect{sfx}, 0, false)
	require.NoError(t, err)

	require.NoError(t, eng.Signals.Push(signalqueue.Entry{
		Account: "requester",
		Signal:  xtx.ExecutionSignal{XtxID: xtxID, Kind: xtx.SignalKill, Cause: "requester abort"},
	}))

	processed := eng.ProcessSignalQueue(ctx)
	require.Equal(t, 1, processed)

	got, ok := eng.Store.GetXtx(xtxID)
	require.True(t, ok)
	require.Equal(t, status.RevertKill, got.Status)
	require.Equal(t, 0, eng.Signals.Len())
}

// TestScheduleAsyncExecutionResolvesViaBus is spec.md §8 S6: scheduling a
// side effect over the async bus registers a continuation that, once the
// bus resolves, confirms the side effect through the same confirm() path
// a relayer would use.
func TestScheduleAsyncExecutionResolvesViaBus(t *testing.T) {
	eng, _, bus := newEngine(t)
	ctx := context.Background()

	sfx := xtx.SideEffect{TargetGatewayID: gwEscrowed, Action: [4]byte{0xBB}, Prize: 2}
	xtxID, err := eng.SubmitBundle(ctx, "requester", []xtx.SideEffect{sfx}, 0, false)
	require.NoError(t, err)

	require.NoError(t, eng.ScheduleAsyncExecution(ctx, "executor-1", xtxID, sfx, 10, 5))

	sfxID := sfx.ID(ids.DefaultHasher)
	require.True(t, bus.IsScheduled(sfxID))

	bus.resolved = hostif.CheckOut{
		Success: true,
		Confirmation: xtx.ConfirmedSideEffect{
			Cost:          2,
			DecodedParams: []byte("async-ok"),
		},
	}
	continuation := bus.then[sfxID]
	require.NotNil(t, continuation)
	require.NoError(t, continuation(bus.resolved))

	got, ok := eng.Store.GetXtx(xtxID)
	require.True(t, ok)
	require.Equal(t, status.FinishedAllSteps, got.Status)
}
