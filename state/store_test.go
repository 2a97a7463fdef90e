package state_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/t3rn/circuit/ids"
	"github.com/t3rn/circuit/state"
	"github.com/t3rn/circuit/status"
	"github.com/t3rn/circuit/xtx"
)

func idOf(n byte) ids.Id {
	id := ids.Id{}
	id[0] = n
	return id
}

func TestApplyPersistsFullBundle(t *testing.T) {
	s := state.NewMemStore()
	xtxID := idOf(1)
	sfxID := idOf(2)

	x := xtx.Xtx{ID: xtxID, Requester: "alice", Status: status.Ready}
	deposit := xtx.InsuranceDeposit{RequiredBond: 5}
	ls := xtx.NewLocalState()
	ls.Insert("k", []byte("v"))

	ws := &state.WriteSet{
		XtxID:              xtxID,
		FullSideEffects:    []xtx.Step{{{SideEffect: xtx.SideEffect{Prize: 1}}}},
		SetFullSideEffects: true,
		LocalSfxIndex:      []ids.Id{sfxID},
		InsuranceDeposits:  map[ids.Id]xtx.InsuranceDeposit{sfxID: deposit},
		SetInsuranceDeposits: true,
		LocalState:         ls,
		SetLocalState:      true,
		SetTimingLink:      true,
		TimingLinkValue:    100,
		Xtx:                x,
		SetXtx:             true,
	}
	require.NoError(t, s.Apply(ws))

	gotXtx, ok := s.GetXtx(xtxID)
	require.True(t, ok)
	require.Equal(t, x, gotXtx)

	steps, ok := s.GetFullSideEffects(xtxID)
	require.True(t, ok)
	require.Len(t, steps, 1)

	linkedXtx, ok := s.GetXtxForSideEffect(sfxID)
	require.True(t, ok)
	require.Equal(t, xtxID, linkedXtx)

	gotDeposit, ok := s.GetInsuranceDeposit(xtxID, sfxID)
	require.True(t, ok)
	require.Equal(t, deposit, gotDeposit)

	links := s.GetXtxInsuranceLinks(xtxID)
	require.ElementsMatch(t, []ids.Id{sfxID}, links)

	gotLS, ok := s.GetLocalState(xtxID)
	require.True(t, ok)
	v, ok := gotLS.Get("k")
	require.True(t, ok)
	require.Equal(t, []byte("v"), v)

	timing, ok := s.GetTimingLink(xtxID)
	require.True(t, ok)
	require.Equal(t, xtx.BlockNumber(100), timing)
}

func TestInsuranceDepositUpdateOverwritesOneEntry(t *testing.T) {
	s := state.NewMemStore()
	xtxID := idOf(1)
	sfxA, sfxB := idOf(2), idOf(3)

	require.NoError(t, s.Apply(&state.WriteSet{
		XtxID: xtxID,
		InsuranceDeposits: map[ids.Id]xtx.InsuranceDeposit{
			sfxA: {RequiredBond: 1},
			sfxB: {RequiredBond: 2},
		},
		SetInsuranceDeposits: true,
	}))

	updated := xtx.InsuranceDeposit{RequiredBond: 1, BondedAmount: 1, Bonder: "alice"}
	require.NoError(t, s.Apply(&state.WriteSet{
		XtxID:                     xtxID,
		InsuranceDepositUpdate:    &updated,
		InsuranceDepositUpdateID:  sfxA,
		HasInsuranceDepositUpdate: true,
	}))

	gotA, _ := s.GetInsuranceDeposit(xtxID, sfxA)
	require.True(t, gotA.IsBonded())
	gotB, _ := s.GetInsuranceDeposit(xtxID, sfxB)
	require.False(t, gotB.IsBonded(), "the other deposit must be untouched")
}

func TestRemoveTimingLinkClearsBothIndexes(t *testing.T) {
	s := state.NewMemStore()
	xtxA, xtxB := idOf(1), idOf(2)

	require.NoError(t, s.Apply(&state.WriteSet{XtxID: xtxA, SetTimingLink: true, TimingLinkValue: 10}))
	require.NoError(t, s.Apply(&state.WriteSet{XtxID: xtxB, SetTimingLink: true, TimingLinkValue: 20}))

	foundID, at, found := s.EarliestDueTiming(100)
	require.True(t, found)
	require.Equal(t, xtxA, foundID)
	require.Equal(t, xtx.BlockNumber(10), at)

	require.NoError(t, s.Apply(&state.WriteSet{XtxID: xtxA, RemoveTimingLink: true}))
	_, ok := s.GetTimingLink(xtxA)
	require.False(t, ok)

	foundID, _, found = s.EarliestDueTiming(100)
	require.True(t, found)
	require.Equal(t, xtxB, foundID, "the earliest remaining timing link is now xtxB")
}

func TestEarliestDueTimingRespectsNow(t *testing.T) {
	s := state.NewMemStore()
	xtxA := idOf(1)
	require.NoError(t, s.Apply(&state.WriteSet{XtxID: xtxA, SetTimingLink: true, TimingLinkValue: 50}))

	_, _, found := s.EarliestDueTiming(49)
	require.False(t, found, "nothing is due yet at block 49")

	_, _, found = s.EarliestDueTiming(50)
	require.True(t, found, "due exactly at timeouts_at")
}

func TestSnapshotRoundTrips(t *testing.T) {
	s := state.NewMemStore()
	xtxID := idOf(1)
	x := xtx.Xtx{ID: xtxID, Requester: "alice"}
	require.NoError(t, s.Apply(&state.WriteSet{XtxID: xtxID, Xtx: x, SetXtx: true}))

	snap, ok := s.Snapshot(xtxID)
	require.True(t, ok)
	require.Equal(t, x, snap.Xtx)

	_, ok = s.Snapshot(idOf(99))
	require.False(t, ok)
}
