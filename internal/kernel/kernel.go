// Package kernel synthesizes the OpenCL device program source by prepending
// compile-time macro definitions to a fixed Keccak template (spec §4.2).
// The template itself is external device code; this package only owns the
// macro layer the host controls.
package kernel

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/createxcrunch/createxcrunch/internal/config"
	"github.com/createxcrunch/createxcrunch/internal/createx"
	"github.com/createxcrunch/createxcrunch/internal/reward"
	"github.com/createxcrunch/createxcrunch/internal/salt"
)

//go:embed kernels/keccak256.cl
var template string

// BuildSource assembles the complete device program for cfg: the macro
// preamble followed by the immutable Keccak template.
func BuildSource(cfg *config.Config) (string, error) {
	var b strings.Builder

	if err := writeSeedMacro(&b, cfg); err != nil {
		return "", err
	}

	fmt.Fprintf(&b, "#define RESULT_BUFFER_SIZE %d\n", cfg.ResultBufferSize)

	if err := writeRewardMacros(&b, cfg.Reward); err != nil {
		return "", err
	}

	if cfg.CreateXVariant == createx.Create3 {
		b.WriteString("#define RUN_CREATE3\n")
	} else {
		b.WriteString("#define CREATE3\n")
	}

	writeCallerAndChainContext(&b, cfg)
	writeFactoryAndHashContext(&b, cfg)

	b.WriteString(template)
	return b.String(), nil
}

// writeSeedMacro emits TAIL_OFFSET (where the mined 11-byte tail lands in the
// 32-byte raw salt) and a GENERATE_SEED(salt) statement macro that writes the
// variant-appropriate bytes 0-20 (caller address and/or salt-guard byte)
// before the tail is copied in, so every produced raw salt carries the
// correct variant prefix by construction (spec §3).
func writeSeedMacro(b *strings.Builder, cfg *config.Config) error {
	switch cfg.SaltVariant {
	case salt.CrosschainSender:
		b.WriteString("#define TAIL_OFFSET 21\n")
		b.WriteString("#define GENERATE_SEED(salt) do { SEED_COPY_CALLER(salt); (salt)[20] = 0x01; } while (0)\n")
	case salt.Crosschain:
		b.WriteString("#define TAIL_OFFSET 21\n")
		b.WriteString("#define GENERATE_SEED(salt) do { (salt)[20] = 0x01; } while (0)\n")
	case salt.Sender:
		b.WriteString("#define TAIL_OFFSET 21\n")
		b.WriteString("#define GENERATE_SEED(salt) do { SEED_COPY_CALLER(salt); (salt)[20] = 0x00; } while (0)\n")
	case salt.Random:
		b.WriteString("#define TAIL_OFFSET 0\n")
		b.WriteString("#define GENERATE_SEED(salt) do { } while (0)\n")
	default:
		return fmt.Errorf("unknown salt variant %v", cfg.SaltVariant)
	}
	return nil
}

// writeRewardMacros emits exactly one SUCCESS_CONDITION definition, per the
// validity requirement in spec §4.2.
func writeRewardMacros(b *strings.Builder, r reward.Variant) error {
	switch r.Kind {
	case reward.LeadingAny:
		fmt.Fprintf(b, "#define LEADING_ZEROES 0\n")
		fmt.Fprintf(b, "#define LEADING %d\n", r.Leading)
		fmt.Fprintf(b, "#define GROUP %d\n", r.Group)
		fmt.Fprintf(b, "#define ONES %d\n", r.Ones)
		fmt.Fprintf(b, "#define INTS %d\n", r.Ints)
		b.WriteString("#define SUCCESS_CONDITION() hasLeadingAny(digest)\n")
	case reward.LeadingZeros:
		fmt.Fprintf(b, "#define LEADING_ZEROES %d\n", r.LeadingThreshold)
		b.WriteString("#define SUCCESS_CONDITION() hasLeading(digest)\n")
	case reward.TotalZeros:
		fmt.Fprintf(b, "#define LEADING_ZEROES 0\n")
		fmt.Fprintf(b, "#define TOTAL_ZEROES %d\n", r.TotalThreshold)
		b.WriteString("#define SUCCESS_CONDITION() hasTotal(digest)\n")
	case reward.LeadingAndTotalZeros:
		fmt.Fprintf(b, "#define LEADING_ZEROES %d\n", r.LeadingThreshold)
		fmt.Fprintf(b, "#define TOTAL_ZEROES %d\n", r.TotalThreshold)
		b.WriteString("#define SUCCESS_CONDITION() (hasLeading(digest) && hasTotal(digest))\n")
	case reward.LeadingOrTotalZeros:
		fmt.Fprintf(b, "#define LEADING_ZEROES %d\n", r.LeadingThreshold)
		fmt.Fprintf(b, "#define TOTAL_ZEROES %d\n", r.TotalThreshold)
		b.WriteString("#define SUCCESS_CONDITION() (hasLeading(digest) || hasTotal(digest))\n")
	case reward.Matching:
		fmt.Fprintf(b, "#define LEADING_ZEROES 0\n")
		fmt.Fprintf(b, "#define PATTERN() \"%s\"\n", r.Pattern)
		b.WriteString("#define SUCCESS_CONDITION() isMatching(digest)\n")
	default:
		return fmt.Errorf("unknown reward kind %v", r.Kind)
	}
	return nil
}

// writeCallerAndChainContext emits the 32-byte left-padded caller address
// (S1_0..S1_31, zero caller if absent) and the 32-byte big-endian chain id
// word (S1C_0..S1C_31), plus BIND_SENDER/BIND_XCHAIN guards selecting which
// of them guardSalt folds into CreateX's _guard rehash ahead of the raw
// salt — mirroring internal/createx.Guard's four-way dispatch exactly.
func writeCallerAndChainContext(b *strings.Builder, cfg *config.Config) {
	var callerPadded [32]byte
	copy(callerPadded[12:32], cfg.Caller[:])
	for i, v := range callerPadded {
		fmt.Fprintf(b, "#define S1_%d %d\n", i, v)
	}

	chainWord := chainIDWord(cfg.ChainID)
	for i, v := range chainWord {
		fmt.Fprintf(b, "#define S1C_%d %d\n", i, v)
	}

	if cfg.SaltVariant.HasCaller() {
		b.WriteString("#define BIND_SENDER\n")
	}
	if cfg.SaltVariant.IsCrosschain() {
		b.WriteString("#define BIND_XCHAIN\n")
	}
}

func writeFactoryAndHashContext(b *strings.Builder, cfg *config.Config) {
	for i, v := range cfg.Factory {
		fmt.Fprintf(b, "#define S2_%d %d\n", i+1, v)
	}
	for i, v := range cfg.InitCodeHash {
		fmt.Fprintf(b, "#define S2_%d %d\n", i+53, v)
	}
}

func chainIDWord(chainID uint64) [32]byte {
	var w [32]byte
	for i := 0; i < 8; i++ {
		w[31-i] = byte(chainID >> (8 * i))
	}
	return w
}
