package xtx_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/t3rn/circuit/status"
	"github.com/t3rn/circuit/xtx"
)

func TestXtxIsTerminal(t *testing.T) {
	x := xtx.Xtx{Status: status.Ready}
	require.False(t, x.IsTerminal())

	x.Status = status.FinishedAllSteps
	require.True(t, x.IsTerminal())

	x.Status = status.RevertKill
	require.True(t, x.IsTerminal())
}

func TestInsuranceDepositIsBonded(t *testing.T) {
	d := xtx.InsuranceDeposit{RequiredBond: 10}
	require.False(t, d.IsBonded())

	d.Bonder = "alice"
	d.BondedAmount = 10
	require.True(t, d.IsBonded())
}

func TestSignalKindString(t *testing.T) {
	require.Equal(t, "Complete", xtx.SignalComplete.String())
	require.Equal(t, "Kill", xtx.SignalKill.String())
}
