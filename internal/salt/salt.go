// Package salt builds CreateX salt preimages from a mined tail and the
// caller/chain-id context selected by a Variant.
package salt

import "fmt"

// Variant selects which of the four salt layouts a search run targets.
type Variant int

const (
	// Random places the mined tail in bytes 0-10 and zeroes the rest; no
	// caller or chain-id binding.
	Random Variant = iota
	// Sender binds the salt to a specific caller address (byte 20 = 0x00).
	Sender
	// Crosschain sets the cross-chain guard byte with no caller binding.
	Crosschain
	// CrosschainSender binds both a caller and the cross-chain guard byte.
	CrosschainSender
)

func (v Variant) String() string {
	switch v {
	case Random:
		return "random"
	case Sender:
		return "sender"
	case Crosschain:
		return "crosschain"
	case CrosschainSender:
		return "crosschain_sender"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// IsCrosschain reports whether v sets the salt-guard byte to 0x01.
func (v Variant) IsCrosschain() bool {
	return v == Crosschain || v == CrosschainSender
}

// HasCaller reports whether v binds a caller address into bytes 0-19.
func (v Variant) HasCaller() bool {
	return v == Sender || v == CrosschainSender
}

// Select resolves the effective Variant for a (caller present?, crosschain
// chain id present?) pair, applying the degrade rule from the data model: a
// caller is only honored together with a non-zero address, otherwise the
// variant degrades to the chain-id-only or fully random form.
func Select(hasCaller, hasChainID bool) Variant {
	switch {
	case hasCaller && hasChainID:
		return CrosschainSender
	case hasCaller:
		return Sender
	case hasChainID:
		return Crosschain
	default:
		return Random
	}
}

// MinedTail is the 11 attacker-controlled bytes of the salt: a 4-byte batch
// prefix followed by the 7 low bytes of a results-buffer solution word.
type MinedTail [11]byte

// NewMinedTail concatenates a batch prefix with a 7-byte solution tail.
func NewMinedTail(prefix [4]byte, solutionTail7 [7]byte) MinedTail {
	var m MinedTail
	copy(m[0:4], prefix[:])
	copy(m[4:11], solutionTail7[:])
	return m
}

// Build assembles the 32-byte salt preimage for v given the mined tail and,
// when the variant requires one, the 20-byte caller address. caller is
// ignored for Random and Crosschain.
func Build(v Variant, caller [20]byte, tail MinedTail) [32]byte {
	var out [32]byte
	switch v {
	case CrosschainSender:
		copy(out[0:20], caller[:])
		out[20] = 0x01
		copy(out[21:32], tail[:])
	case Crosschain:
		out[20] = 0x01
		copy(out[21:32], tail[:])
	case Sender:
		copy(out[0:20], caller[:])
		out[20] = 0x00
		copy(out[21:32], tail[:])
	case Random:
		copy(out[0:11], tail[:])
	}
	return out
}
