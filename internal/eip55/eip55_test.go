package eip55

import "testing"

func TestEncodeKnownVectors(t *testing.T) {
	// Vectors from EIP-55.
	cases := map[string]string{
		"5aaeb6053f3e94c9b9a09f33669435e7ef1beaed": "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"fb6916095ca1df60bb79ce92ce3ea74c37c5d359": "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"dbf03b407c01e7cd3cbea99509d93f8dddc8c6fb": "0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
		"d1220a0cf47c7b9be7a2e6ba89f429762e7b9adb": "0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
	}
	for lower, want := range cases {
		var addr [20]byte
		b := mustHex(lower)
		copy(addr[:], b)
		if got := Encode(addr); got != want {
			t.Errorf("Encode(%s) = %s, want %s", lower, got, want)
		}
	}
}

func TestParseChecksummedRoundTrip(t *testing.T) {
	var addr [20]byte
	for i := range addr {
		addr[i] = byte(i * 7)
	}
	mixed := Encode(addr)
	got, err := ParseChecksummed(mixed)
	if err != nil {
		t.Fatalf("ParseChecksummed: %v", err)
	}
	if got != addr {
		t.Fatalf("round trip mismatch: got %x want %x", got, addr)
	}
}

func TestParseChecksummedRejectsBadCase(t *testing.T) {
	mixed := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	bad := "0x5aaeb6053F3E94C9b9A09f33669435E7Ef1BeAed" // one char forced lowercase
	if _, err := ParseChecksummed(bad); err == nil {
		t.Fatalf("expected checksum error for mutated %s (from %s)", bad, mixed)
	}
}

func TestParseChecksummedAcceptsAllLowercase(t *testing.T) {
	if _, err := ParseChecksummed("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"); err != nil {
		t.Fatalf("all-lowercase address should be accepted without checksum: %v", err)
	}
}

func TestShort(t *testing.T) {
	mixed := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	got := Short(mixed)
	want := "0x5aAeb605...7Ef1BeAed"
	if got != want {
		t.Fatalf("Short() = %s, want %s", got, want)
	}
}

func mustHex(s string) []byte {
	b := make([]byte, len(s)/2)
	for i := range b {
		hi := nibble(s[i*2])
		lo := nibble(s[i*2+1])
		b[i] = hi<<4 | lo
	}
	return b
}

func nibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}
