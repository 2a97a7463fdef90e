package validator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/t3rn/circuit/hostif"
	"github.com/t3rn/circuit/ids"
	"github.com/t3rn/circuit/validator"
	"github.com/t3rn/circuit/xtx"
)

var (
	gwProgrammable = ids.GatewayId{'p', 'r', 'o', 'g'}
	gwExternal     = ids.GatewayId{'e', 'x', 't', '1'}
	gwUnknown      = ids.GatewayId{'u', 'n', 'k', 'n'}
	gwNoHeight     = ids.GatewayId{'n', 'o', 'h', 't'}
)

type fakeNameService struct{}

func (fakeNameService) GetABI(target ids.GatewayId) (hostif.ABI, error) {
	if target == gwUnknown {
		return hostif.ABI{}, errors.New("fakeNameService: unknown gateway")
	}
	return hostif.ABI{}, nil
}

func (fakeNameService) AllowedSideEffects(ids.GatewayId) (map[[4]byte]struct{}, error) {
	return nil, nil
}

func (fakeNameService) GetGatewayTypeUnsafe(target ids.GatewayId) hostif.GatewayType {
	if target == gwProgrammable {
		return hostif.GatewayProgrammableInternal
	}
	return hostif.GatewayExternal
}

func (fakeNameService) GetGatewayParaID(ids.GatewayId) (uint32, error) { return 0, nil }

func (fakeNameService) FetchSideEffectInterface(id ids.Id) (hostif.SideEffectInterface, error) {
	return hostif.SideEffectInterface{ID: id}, nil
}

func (fakeNameService) GetGatewaySecurityCoordinates(ids.GatewayId) ([]byte, error) {
	return nil, nil
}

// fakeProtocol tags a side effect as carrying an insurance hint (bond 5,
// reward 3) whenever its Action selector equals insuredAction;
// rejectingProtocol additionally rejects TypeCheck whenever Action is
// exactly rejectAction {0xFF, 0xFF, 0xFF, 0xFF}, giving tests a simple knob
// for both paths without a real ABI decoder.
type fakeProtocol struct{}

var rejectAction = [4]byte{0xFF, 0xFF, 0xFF, 0xFF}
var insuredAction = [4]byte{0x01, 0x00, 0x00, 0x00}

func (fakeProtocol) TypeCheck(hostif.ABI, map[[4]byte]struct{}, xtx.SideEffect, *xtx.LocalState) error {
	return nil
}

func (fakeProtocol) ExtractInsuranceHint(sfx xtx.SideEffect) (*xtx.InsuranceHint, error) {
	if sfx.Action == insuredAction {
		return &xtx.InsuranceHint{Bond: 5, Reward: 3}, nil
	}
	return nil, nil
}

func (fakeProtocol) ConfirmationPredicate(xtx.SideEffect, xtx.SecurityLvl, []byte, xtx.LocalState) error {
	return nil
}

type rejectingProtocol struct{ fakeProtocol }

func (rejectingProtocol) TypeCheck(_ hostif.ABI, _ map[[4]byte]struct{}, sfx xtx.SideEffect, _ *xtx.LocalState) error {
	if sfx.Action == rejectAction {
		return errors.New("rejectingProtocol: bad args")
	}
	return nil
}

type fakePortal struct{}

func (fakePortal) GetLatestFinalizedHeight(_ context.Context, target ids.GatewayId) (uint64, error) {
	if target == gwNoHeight {
		return 0, errors.New("fakePortal: height unavailable")
	}
	return 42, nil
}

func (fakePortal) ConfirmAndDecodePayloadParams(context.Context, ids.GatewayId, uint64, []byte, ids.Id) ([]byte, xtx.Account, error) {
	return nil, "", nil
}

func backend() validator.Backend {
	return validator.Backend{
		NameService: fakeNameService{},
		Protocol:    fakeProtocol{},
		Portal:      fakePortal{},
		Hasher:      ids.DefaultHasher,
		SelfGateway: ids.GatewayId{},
	}
}

func sideEffect(gw ids.GatewayId, action [4]byte, prize uint64) xtx.SideEffect {
	return xtx.SideEffect{TargetGatewayID: gw, Action: action, Prize: prize}
}

func TestValidateEmptyBundle(t *testing.T) {
	_, _, err := backend().Validate(context.Background(), nil, &xtx.LocalState{}, false)
	require.ErrorIs(t, err, validator.ErrEmptyBundle)
}

func TestValidateUnknownTarget(t *testing.T) {
	ls := xtx.NewLocalState()
	_, _, err := backend().Validate(context.Background(), []xtx.SideEffect{sideEffect(gwUnknown, [4]byte{}, 0)}, &ls, false)
	require.ErrorIs(t, err, validator.ErrUnknownTarget)
}

func TestValidateTargetHeightUnavailable(t *testing.T) {
	ls := xtx.NewLocalState()
	_, _, err := backend().Validate(context.Background(), []xtx.SideEffect{sideEffect(gwNoHeight, [4]byte{}, 0)}, &ls, false)
	require.ErrorIs(t, err, validator.ErrTargetHeightUnavailable)
}

func TestValidateInsurancePrizeMismatch(t *testing.T) {
	ls := xtx.NewLocalState()
	// insuredAction declares reward=3; prize here is 9, which must not match.
	_, _, err := backend().Validate(context.Background(), []xtx.SideEffect{sideEffect(gwExternal, insuredAction, 9)}, &ls, false)
	require.ErrorIs(t, err, validator.ErrInsurancePrizeMismatch)
}

func TestValidateABIMismatch(t *testing.T) {
	b := backend()
	b.Protocol = rejectingProtocol{}
	ls := xtx.NewLocalState()
	_, _, err := b.Validate(context.Background(), []xtx.SideEffect{sideEffect(gwExternal, rejectAction, 0)}, &ls, false)
	require.ErrorIs(t, err, validator.ErrABIMismatch)
}

// TestValidateStepPartitioning is spec.md §8 S4: submit
// [Escrowed_A, Dirty_B, Optimistic_C, Dirty_D]; expect step 0 =
// [Escrowed_A, Optimistic_C], step 1 = [Dirty_B], step 2 = [Dirty_D].
func TestValidateStepPartitioning(t *testing.T) {
	escrowedA := sideEffect(gwProgrammable, [4]byte{0xAA}, 0)
	dirtyB := sideEffect(gwExternal, [4]byte{0xBB}, 0)
	optimisticC := sideEffect(gwExternal, insuredAction, 3)
	dirtyD := sideEffect(gwExternal, [4]byte{0xDD}, 0)

	ls := xtx.NewLocalState()
	steps, fsxs, err := backend().Validate(context.Background(), []xtx.SideEffect{escrowedA, dirtyB, optimisticC, dirtyD}, &ls, false)
	require.NoError(t, err)
	require.Len(t, fsxs, 4)

	require.Len(t, steps, 3)
	require.Len(t, steps[0], 2)
	require.Equal(t, xtx.Escrowed, steps[0][0].SecurityLvl)
	require.Equal(t, escrowedA, steps[0][0].SideEffect)
	require.Equal(t, xtx.Optimistic, steps[0][1].SecurityLvl)
	require.Equal(t, optimisticC, steps[0][1].SideEffect)

	require.Len(t, steps[1], 1)
	require.Equal(t, xtx.Dirty, steps[1][0].SecurityLvl)
	require.Equal(t, dirtyB, steps[1][0].SideEffect)

	require.Len(t, steps[2], 1)
	require.Equal(t, dirtyD, steps[2][0].SideEffect)
}

func TestValidateSelfGatewayIsEscrowed(t *testing.T) {
	b := backend()
	b.SelfGateway = gwExternal
	ls := xtx.NewLocalState()
	_, fsxs, err := b.Validate(context.Background(), []xtx.SideEffect{sideEffect(gwExternal, [4]byte{0xEE}, 0)}, &ls, false)
	require.NoError(t, err)
	require.Equal(t, xtx.Escrowed, fsxs[0].SecurityLvl)
}
