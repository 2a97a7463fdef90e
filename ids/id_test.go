package ids_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/t3rn/circuit/ids"
)

func TestSha256HasherIsDeterministic(t *testing.T) {
	a := ids.DefaultHasher.Hash([]byte("payload"))
	b := ids.DefaultHasher.Hash([]byte("payload"))
	require.Equal(t, a, b)
	require.NotEqual(t, ids.Empty, a)
}

func TestSha256HasherDistinguishesInputs(t *testing.T) {
	a := ids.DefaultHasher.Hash([]byte("payload-a"))
	b := ids.DefaultHasher.Hash([]byte("payload-b"))
	require.NotEqual(t, a, b)
}

func TestHashWithSaltDistinguishesSameEncoding(t *testing.T) {
	encoded := []byte("same-encoding")
	a := ids.HashWithSalt(ids.DefaultHasher, encoded, []byte{0, 0, 0, 0})
	b := ids.HashWithSalt(ids.DefaultHasher, encoded, []byte{0, 0, 0, 1})
	require.NotEqual(t, a, b)
}

func TestFromHexRoundTrips(t *testing.T) {
	original := ids.DefaultHasher.Hash([]byte("round-trip"))
	parsed, err := ids.FromHex(original.String())
	require.NoError(t, err)
	require.Equal(t, original, parsed)
}

func TestFromHexRejectsWrongLength(t *testing.T) {
	_, err := ids.FromHex("deadbeef")
	require.Error(t, err)
}

func TestFromHexRejectsNonHex(t *testing.T) {
	_, err := ids.FromHex("not-hex-at-all-not-hex-at-all-zz")
	require.Error(t, err)
}

func TestIsEmpty(t *testing.T) {
	require.True(t, ids.Id{}.IsEmpty())
	require.True(t, ids.Empty.IsEmpty())
	require.False(t, ids.DefaultHasher.Hash([]byte("x")).IsEmpty())
}

func TestGatewayIdString(t *testing.T) {
	gw := ids.GatewayId{'e', 'v', 'm', '1'}
	require.Equal(t, "evm1", gw.String())
}
