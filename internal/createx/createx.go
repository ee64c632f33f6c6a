// Package createx derives CreateX factory deployment addresses on the CPU.
// It mirrors the address-derivation kernel's arithmetic (spec §4.3) and is
// used by the CPU fallback device to derive candidate addresses.
package createx

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/createxcrunch/createxcrunch/internal/salt"
)

// ProxyChildCodeHash is the fixed codehash CreateX uses for the CREATE3
// minimal proxy it deploys via CREATE2 before the caller's real init code is
// deployed at the derived child address.
var ProxyChildCodeHash = [32]byte{
	33, 195, 93, 190, 27, 52, 74, 36, 136, 207, 51, 33, 214, 206, 84, 47,
	142, 159, 48, 85, 68, 255, 9, 228, 153, 58, 98, 49, 154, 73, 124, 31,
}

// Variant selects the deployment flavor: a direct CREATE2 deploy, or a
// CREATE3 deploy through the proxy.
type Variant int

const (
	Create2 Variant = iota
	Create3
)

func (v Variant) String() string {
	if v == Create3 {
		return "create3"
	}
	return "create2"
}

// Guard reproduces CreateX's internal `_guard` rehash of the raw salt
// preimage, which folds in the caller address and/or chain id depending on
// which variant produced the salt.
func Guard(rawSalt [32]byte, variant salt.Variant, caller [20]byte, chainID uint64) [32]byte {
	var buf []byte
	switch variant {
	case salt.CrosschainSender:
		buf = append(buf, leftPad32(caller[:])...)
		buf = append(buf, chainIDWord(chainID)...)
		buf = append(buf, rawSalt[:]...)
	case salt.Crosschain:
		buf = append(buf, chainIDWord(chainID)...)
		buf = append(buf, rawSalt[:]...)
	case salt.Sender:
		buf = append(buf, leftPad32(caller[:])...)
		buf = append(buf, rawSalt[:]...)
	case salt.Random:
		buf = append(buf, rawSalt[:]...)
	}
	var out [32]byte
	copy(out[:], crypto.Keccak256(buf))
	return out
}

// Create2Address computes keccak256(0xff || factory || guardedSalt ||
// initCodeHash)[12:32].
func Create2Address(factory [20]byte, guardedSalt [32]byte, initCodeHash [32]byte) [20]byte {
	buf := make([]byte, 0, 1+20+32+32)
	buf = append(buf, 0xff)
	buf = append(buf, factory[:]...)
	buf = append(buf, guardedSalt[:]...)
	buf = append(buf, initCodeHash[:]...)
	digest := crypto.Keccak256(buf)
	var addr [20]byte
	copy(addr[:], digest[12:32])
	return addr
}

// Create3ChildAddress computes the address CREATE would assign to the first
// contract deployed by proxy (RLP([proxy, 1])), which is fixed for every
// CreateX CREATE3 deployment since the proxy always deploys exactly once.
func Create3ChildAddress(proxy [20]byte) [20]byte {
	buf := make([]byte, 0, 2+20+1)
	buf = append(buf, 0xd6, 0x94)
	buf = append(buf, proxy[:]...)
	buf = append(buf, 0x01)
	digest := crypto.Keccak256(buf)
	var addr [20]byte
	copy(addr[:], digest[12:32])
	return addr
}

// Derive computes the final deployment address for either variant given the
// raw (unguarded) salt preimage.
func Derive(createVariant Variant, saltVariant salt.Variant, caller [20]byte, chainID uint64, factory [20]byte, rawSalt [32]byte, initCodeHash [32]byte) [20]byte {
	guarded := Guard(rawSalt, saltVariant, caller, chainID)
	switch createVariant {
	case Create3:
		proxy := Create2Address(factory, guarded, ProxyChildCodeHash)
		return Create3ChildAddress(proxy)
	default:
		return Create2Address(factory, guarded, initCodeHash)
	}
}

func leftPad32(b []byte) []byte {
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}

func chainIDWord(chainID uint64) []byte {
	var u uint256.Int
	u.SetUint64(chainID)
	b := u.Bytes32()
	return b[:]
}
