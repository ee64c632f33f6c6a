package salt

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func addr20(hexStr string) [20]byte {
	var out [20]byte
	b, _ := hex.DecodeString(hexStr)
	copy(out[:], b)
	return out
}

func TestBuildSender(t *testing.T) {
	caller := addr20("1111111111111111111111111111111111111111")
	var prefix [4]byte
	copy(prefix[:], []byte{0xAA, 0xBB, 0xCC, 0xDD})
	var tail7 [7]byte
	copy(tail7[:], mustHex("00112233445566"))

	got := Build(Sender, caller, NewMinedTail(prefix, tail7))
	want := mustHex("1111111111111111111111111111111111111100AABBCCDD00112233445566")

	require.Equal(t, 32, len(want))
	require.EqualValues(t, want, got[:])
}

func TestGuardByteByVariant(t *testing.T) {
	caller := addr20("2222222222222222222222222222222222222222")
	tail := NewMinedTail([4]byte{1, 2, 3, 4}, [7]byte{5, 6, 7, 8, 9, 10, 11})

	cases := []struct {
		v         Variant
		wantGuard byte
	}{
		{Random, 0x00},
		{Sender, 0x00},
		{Crosschain, 0x01},
		{CrosschainSender, 0x01},
	}
	for _, tc := range cases {
		salt := Build(tc.v, caller, tail)
		require.Equalf(t, tc.wantGuard, salt[20], "variant %s", tc.v)
	}
}

func TestRandomVariantLayout(t *testing.T) {
	tail := NewMinedTail([4]byte{0xAA, 0xBB, 0xCC, 0xDD}, [7]byte{1, 2, 3, 4, 5, 6, 7})
	salt := Build(Random, [20]byte{}, tail)
	require.EqualValues(t, tail[:], salt[0:11])
	for _, b := range salt[11:] {
		require.Equal(t, byte(0), b)
	}
}

func TestSelectDegrade(t *testing.T) {
	require.Equal(t, Random, Select(false, false))
	require.Equal(t, Sender, Select(true, false))
	require.Equal(t, Crosschain, Select(false, true))
	require.Equal(t, CrosschainSender, Select(true, true))
}

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}
