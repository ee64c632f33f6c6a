// Package config decodes and validates the CLI/env surface into an
// immutable Config, inferring the CreateX and salt variants per spec §4.1.
package config

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/createxcrunch/createxcrunch/internal/createx"
	"github.com/createxcrunch/createxcrunch/internal/eip55"
	"github.com/createxcrunch/createxcrunch/internal/reward"
	"github.com/createxcrunch/createxcrunch/internal/salt"
)

// Error is a ConfigError: a stable, short diagnostic surfaced to the user
// before any device work begins.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

func errf(format string, args ...interface{}) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// Params is the raw, string-typed input decoded from CLI flags.
type Params struct {
	GPUDeviceID       uint8
	WorkSize          uint64
	ResultBufferSize  uint64
	SleepFor          float64
	Factory           string
	Caller            string // "" if absent
	ChainID           *uint64
	InitCodeHash      string // "" selects CREATE3
	OutputPath        string

	// Reward selection: Matching cannot be combined with Zeros/Total
	// (New rejects that); Zeros and Total may be set together, and Either
	// switches Zeros+Total from AND to OR when both are set.
	Zeros    *int
	Total    *int
	Either   bool
	Matching string

	Group   uint64
	Leading uint64
	Ones    uint64
	Ints    uint64
}

// Config is the canonical, immutable, fully validated configuration for one
// search run.
type Config struct {
	GPUDeviceID      uint8
	WorkSize         uint64
	ResultBufferSize uint64
	SleepFor         float64

	Factory      [20]byte
	Caller       [20]byte
	HasCaller    bool
	ChainID      uint64
	HasChainID   bool
	InitCodeHash [32]byte

	CreateXVariant createx.Variant
	SaltVariant    salt.Variant
	Reward         reward.Variant

	OutputPath string
}

// New decodes and validates p, returning a ConfigError (via the returned
// error's message) on the first failing check.
func New(p Params) (*Config, error) {
	factory, err := eip55.ParseChecksummed(p.Factory)
	if err != nil {
		return nil, errf("factory address: %s", err)
	}

	var caller [20]byte
	hasCaller := false
	if p.Caller != "" {
		c, err := eip55.ParseChecksummed(p.Caller)
		if err != nil {
			return nil, errf("caller address: %s", err)
		}
		if c != ([20]byte{}) {
			caller = c
			hasCaller = true
		}
		// An all-zero caller MUST be treated as "no caller".
	}

	var chainID uint64
	hasChainID := p.ChainID != nil
	if hasChainID {
		chainID = *p.ChainID
	}

	var initCodeHash [32]byte
	createXVariant := createx.Create3
	if p.InitCodeHash != "" {
		b, err := decodeFixed(p.InitCodeHash, 32)
		if err != nil {
			return nil, errf("init code hash must be 32 bytes of hex: %v", err)
		}
		copy(initCodeHash[:], b)
		createXVariant = createx.Create2
	} else {
		initCodeHash = createx.ProxyChildCodeHash
	}

	rewardVariant, err := buildReward(p)
	if err != nil {
		return nil, err
	}

	resultBufferSize := p.ResultBufferSize
	if resultBufferSize == 0 {
		resultBufferSize = 20000
	}
	workSize := p.WorkSize
	if workSize == 0 {
		workSize = 1_000_000_000
	}
	outputPath := p.OutputPath
	if outputPath == "" {
		outputPath = "output.txt"
	}

	return &Config{
		GPUDeviceID:      p.GPUDeviceID,
		WorkSize:         workSize,
		ResultBufferSize: resultBufferSize,
		SleepFor:         p.SleepFor,
		Factory:          factory,
		Caller:           caller,
		HasCaller:        hasCaller,
		ChainID:          chainID,
		HasChainID:       hasChainID,
		InitCodeHash:     initCodeHash,
		CreateXVariant:   createXVariant,
		SaltVariant:      salt.Select(hasCaller, hasChainID),
		Reward:           rewardVariant,
		OutputPath:       outputPath,
	}, nil
}

func buildReward(p Params) (reward.Variant, error) {
	switch {
	case p.Matching != "":
		if p.Zeros != nil || p.Total != nil {
			return reward.Variant{}, errf("matching pattern is mutually exclusive with zeros/total")
		}
		if err := validatePattern(p.Matching); err != nil {
			return reward.Variant{}, err
		}
		return reward.Variant{Kind: reward.Matching, Pattern: p.Matching}, nil

	case p.Zeros != nil && p.Total != nil:
		if err := validateThreshold(*p.Zeros); err != nil {
			return reward.Variant{}, err
		}
		if err := validateThreshold(*p.Total); err != nil {
			return reward.Variant{}, err
		}
		kind := reward.LeadingAndTotalZeros
		if p.Either {
			kind = reward.LeadingOrTotalZeros
		}
		return reward.Variant{Kind: kind, LeadingThreshold: *p.Zeros, TotalThreshold: *p.Total}, nil

	case p.Zeros != nil:
		if err := validateThreshold(*p.Zeros); err != nil {
			return reward.Variant{}, err
		}
		return reward.Variant{Kind: reward.LeadingZeros, LeadingThreshold: *p.Zeros}, nil

	case p.Total != nil:
		if err := validateThreshold(*p.Total); err != nil {
			return reward.Variant{}, err
		}
		return reward.Variant{Kind: reward.TotalZeros, TotalThreshold: *p.Total}, nil

	default:
		return reward.Variant{
			Kind:    reward.LeadingAny,
			Group:   p.Group,
			Leading: p.Leading,
			Ones:    p.Ones,
			Ints:    p.Ints,
		}, nil
	}
}

func validateThreshold(t int) error {
	if t <= 0 {
		return errf("threshold must be greater than 0")
	}
	if t >= 20 {
		return errf("threshold must be less than 20")
	}
	return nil
}

func validatePattern(pattern string) error {
	if len(pattern) != 40 {
		return errf("matching pattern must be exactly 40 characters")
	}
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c == 'X' {
			continue
		}
		if !isHexDigit(c) {
			return errf("matching pattern must contain only hex digits or 'X'")
		}
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func decodeFixed(s string, n int) ([]byte, error) {
	body := strings.TrimPrefix(s, "0x")
	if len(body) != n*2 {
		return nil, fmt.Errorf("expected %d hex bytes, got %d", n, len(body)/2)
	}
	return hex.DecodeString(body)
}
