package reward

import "testing"

func TestHasLeading(t *testing.T) {
	var addr [20]byte
	addr[3] = 0x01
	if !hasLeading(addr, 3) {
		t.Fatal("expected leading 3 zero bytes to match")
	}
	if hasLeading(addr, 4) {
		t.Fatal("expected leading 4 zero bytes to fail")
	}
}

func TestHasTotal(t *testing.T) {
	var addr [20]byte
	for i := 0; i < 5; i++ {
		addr[i] = 1
	}
	// 15 zero bytes out of 20.
	if !hasTotal(addr, 15) {
		t.Fatal("expected total >= 15 zero bytes")
	}
	if hasTotal(addr, 16) {
		t.Fatal("expected total 16 zero bytes to fail")
	}
}

func TestLeadingAndOrCombinators(t *testing.T) {
	var addr [20]byte // all zero: satisfies any leading/total threshold up to 20
	and := Variant{Kind: LeadingAndTotalZeros, LeadingThreshold: 5, TotalThreshold: 20}
	or := Variant{Kind: LeadingOrTotalZeros, LeadingThreshold: 5, TotalThreshold: 1}
	if !and.Predicate(addr) {
		t.Fatal("AND predicate should match all-zero address")
	}
	if !or.Predicate(addr) {
		t.Fatal("OR predicate should match all-zero address")
	}
}

func TestIsMatchingWildcards(t *testing.T) {
	var addr [20]byte
	addr[0] = 0xba
	addr[1] = 0x5e
	addr[2] = 0xd0
	pattern := "ba5ed0" + repeat("X", 34)
	v := Variant{Kind: Matching, Pattern: pattern}
	if !v.Predicate(addr) {
		t.Fatal("expected pattern with leading literal + wildcards to match")
	}
}

func repeat(s string, n int) string {
	out := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, s[0])
	}
	return string(out)
}
