// Package eip55 produces and validates EIP-55 mixed-case checksum strings
// for 20-byte Ethereum addresses.
package eip55

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// Encode returns the "0x"-prefixed mixed-case checksum string for addr.
func Encode(addr [20]byte) string {
	lower := hex.EncodeToString(addr[:])
	digest := crypto.Keccak256([]byte(lower))

	out := make([]byte, len(lower))
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if c < 'a' || c > 'f' {
			out[i] = c
			continue
		}
		// nibble i of the digest: high nibble for even i, low nibble for odd i.
		var nibble byte
		if i%2 == 0 {
			nibble = digest[i/2] >> 4
		} else {
			nibble = digest[i/2] & 0x0f
		}
		if nibble > 7 {
			out[i] = c - 'a' + 'A'
		} else {
			out[i] = c
		}
	}
	return "0x" + string(out)
}

// Short returns the etherscan-style truncated mixed-case form: the first 8
// hex characters and the last 9, joined by "...".
func Short(mixed string) string {
	body := strings.TrimPrefix(mixed, "0x")
	if len(body) != 40 {
		return mixed
	}
	return "0x" + body[:8] + "..." + body[31:40]
}

// ParseChecksummed decodes a hex address string, verifying its mixed-case
// checksum if it contains any uppercase ASCII letter. An all-lowercase or
// all-digit string is accepted without a checksum check.
func ParseChecksummed(s string) ([20]byte, error) {
	var out [20]byte
	body := strings.TrimPrefix(s, "0x")
	if len(body) != 40 {
		return out, fmt.Errorf("address must be 40 hex characters, got %d", len(body))
	}
	raw, err := hex.DecodeString(strings.ToLower(body))
	if err != nil {
		return out, fmt.Errorf("invalid hex address: %w", err)
	}
	copy(out[:], raw)

	if hasUpper(body) {
		want := Encode(out)
		if "0x"+body != want {
			return out, fmt.Errorf("address uses invalid checksum")
		}
	}
	return out, nil
}

func hasUpper(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'F' {
			return true
		}
	}
	return false
}
