package wrappers_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/t3rn/circuit/utils/wrappers"
)

func TestErrsAddRecordsFirstOnly(t *testing.T) {
	var errs wrappers.Errs
	require.False(t, errs.Errored())

	first := errors.New("first")
	second := errors.New("second")
	errs.Add(nil, first)
	errs.Add(second)

	require.True(t, errs.Errored())
	require.Equal(t, first, errs.Err)
}

func TestJoinNil(t *testing.T) {
	require.NoError(t, wrappers.Join(nil, nil))
}

func TestJoinSingle(t *testing.T) {
	err := errors.New("solo")
	require.Equal(t, err, wrappers.Join(nil, err))
}

func TestJoinMultiple(t *testing.T) {
	a := errors.New("a")
	b := errors.New("b")
	joined := wrappers.Join(a, nil, b)
	require.Equal(t, "a; b", joined.Error())
}
