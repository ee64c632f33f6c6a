package createx

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/createxcrunch/createxcrunch/internal/salt"
)

func TestGuardRandomIsPlainHash(t *testing.T) {
	var raw [32]byte
	raw[0] = 0xAB
	got := Guard(raw, salt.Random, [20]byte{}, 0)
	require.Len(t, got, 32)
	require.NotEqual(t, raw, got, "guard must hash, not pass through, the raw salt")
}

func TestGuardDeterministic(t *testing.T) {
	var raw [32]byte
	raw[5] = 0x42
	caller := [20]byte{1, 2, 3}
	a := Guard(raw, salt.CrosschainSender, caller, 8453)
	b := Guard(raw, salt.CrosschainSender, caller, 8453)
	require.Equal(t, a, b)

	c := Guard(raw, salt.CrosschainSender, caller, 1)
	require.NotEqual(t, a, c, "different chain id must change the guarded salt")
}

func TestCreate2AddressLength(t *testing.T) {
	var factory [20]byte
	copy(factory[:], []byte{0x9e, 0x3f, 0x8e, 0xae})
	var guarded, initCodeHash [32]byte
	addr := Create2Address(factory, guarded, initCodeHash)
	require.Len(t, addr, 20)
}

func TestDeriveCreate3UsesProxyCodeHash(t *testing.T) {
	var factory, raw, initCodeHash [32]byte
	var factory20 [20]byte
	copy(factory20[:], factory[:20])

	// The supplied (zero) init code hash is ignored: CREATE3 deploys the
	// proxy with ProxyChildCodeHash and returns that proxy's child.
	addr := Derive(Create3, salt.Random, [20]byte{}, 0, factory20, raw, initCodeHash)
	guarded := Guard(raw, salt.Random, [20]byte{}, 0)
	proxy := Create2Address(factory20, guarded, ProxyChildCodeHash)
	require.Equal(t, Create3ChildAddress(proxy), addr)
	// CREATE3's result must not equal the intermediate CREATE2 proxy address
	// for a well-formed factory/salt pair (collision odds are negligible).
	require.NotEqual(t, proxy, addr)
}
