// Package fancyscore implements the deterministic, multi-category vanity
// scoring function used to gate which mined addresses are worth recording.
package fancyscore

import (
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/createxcrunch/createxcrunch/internal/eip55"
)

// Category names a single scoring dimension. The order of the constants
// below is load-bearing: it is the tie-break order when two categories
// report the same difficulty.
type Category string

const (
	Random             Category = "random"
	LeadingZeroes      Category = "leading_zeroes"
	LeadingAny         Category = "leading_any"
	LettersCount       Category = "letters_count"
	NumbersOnly        Category = "numbers_only"
	ShortLeadingZeroes Category = "short_leading_zeroes"
	ShortLeadingAny    Category = "short_leading_any"
	SnakeScore         Category = "snake_score"
	LeadingLetters     Category = "leading_letters"
)

// categoryOrder fixes iteration and tie-break order; it must match the
// table in the specification exactly.
var categoryOrder = []Category{
	Random, LeadingZeroes, LeadingAny, LettersCount, NumbersOnly,
	ShortLeadingZeroes, ShortLeadingAny, SnakeScore, LeadingLetters,
}

// Entry is a single category's raw score and derived difficulty.
type Entry struct {
	Category   Category
	Score      float64
	Difficulty float64
}

// Score is the full evaluation of one address.
type Score struct {
	Mixed           string
	Lower           string
	Short           string
	Entries         map[Category]Entry
	TotalScore      float64
	WinningCategory Category
	PriceMultiplier float64
}

const defaultBaseDifficulty = 16 * 16 * 16 * 16 * 16 * 16 * 16 * 16 * 16 // 16^9
const defaultMinDifficulty = 16 * 16 * 16 * 16 * 16 * 16 * 16 * 16       // 16^8

// BaseDifficulty returns the BASE_DIFFICULTY environment override, or its
// default of 16^9.
func BaseDifficulty() float64 {
	return envFloatOr("BASE_DIFFICULTY", float64(defaultBaseDifficulty))
}

// MinDifficulty returns the MIN_DIFFICULTY environment override, or its
// default of 16^8.
func MinDifficulty() float64 {
	return envFloatOr("MIN_DIFFICULTY", float64(defaultMinDifficulty))
}

func envFloatOr(name string, fallback float64) float64 {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

// Evaluate scores a 20-byte address across every category and picks the
// dominant one. It is a pure function: repeated calls on the same address
// are bit-identical.
func Evaluate(addr [20]byte) Score {
	mixed := eip55.Encode(addr)
	lower := strings.ToLower(strings.TrimPrefix(mixed, "0x"))
	short := eip55.Short(mixed)
	shortBody := strings.ReplaceAll(strings.TrimPrefix(short, "0x"), "...", "")

	leadingZeroes := leadingRun(lower, '0')
	leadingAny := leadingCharRun(lower)
	leadingLetters := leadingLettersRun(mixed)
	lettersOnly := countLettersOnly(lower)
	numbersOnly := countDigits(lower)
	shortLeadingZeroes := leadingRun(shortBody, '0')
	shortLeadingAny := leadingCharRun(shortBody)
	snake := snakeScore(lower)

	entries := map[Category]Entry{
		Random: {Random, 1, 1000},
		LeadingZeroes: {LeadingZeroes, float64(leadingZeroes),
			math.Pow(16, float64(leadingZeroes))},
		LeadingAny: {LeadingAny, float64(leadingAny - 1),
			math.Pow(16, float64(leadingAny)-15.0/16.0)},
		LettersCount: {LettersCount, float64(lettersOnly),
			lettersCountDifficulty(lettersOnly, 40)},
		NumbersOnly: {NumbersOnly, float64(numbersOnly),
			numbersOnlyDifficulty(numbersOnly, lower)},
		ShortLeadingZeroes: {ShortLeadingZeroes, float64(shortLeadingZeroes),
			math.Pow(16, float64(shortLeadingZeroes))},
		ShortLeadingAny: {ShortLeadingAny, float64(shortLeadingAny),
			math.Pow(16, float64(shortLeadingAny)-15.0/16.0)},
		SnakeScore: {SnakeScore, float64(snake),
			math.Pow(16, float64(snake)-9)},
		LeadingLetters: {LeadingLetters, float64(leadingLetters),
			math.Pow(32, float64(leadingLetters)-15.0/16.0)},
	}

	var winning Category
	var total float64
	first := true
	for _, cat := range categoryOrder {
		e := entries[cat]
		if first || e.Difficulty > total {
			total = e.Difficulty
			winning = cat
			first = false
		}
	}

	base := BaseDifficulty()
	multiplier := 1.0
	if total > base {
		multiplier = total / base
	}

	return Score{
		Mixed:           mixed,
		Lower:           lower,
		Short:           short,
		Entries:         entries,
		TotalScore:      total,
		WinningCategory: winning,
		PriceMultiplier: multiplier,
	}
}

// Accepted reports whether s clears the MIN_DIFFICULTY accept gate.
func (s Score) Accepted() bool {
	return s.TotalScore >= MinDifficulty()
}

func leadingRun(s string, c byte) int {
	n := 0
	for n < len(s) && s[n] == c {
		n++
	}
	return n
}

func leadingCharRun(s string) int {
	if len(s) == 0 {
		return 0
	}
	return leadingRun(s, s[0])
}

func leadingLettersRun(mixed string) int {
	body := strings.TrimPrefix(mixed, "0x")
	if len(body) == 0 || !isAlpha(body[0]) {
		return 0
	}
	n := 1
	for n < len(body) && body[n] == body[0] {
		n++
	}
	return n
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// countLettersOnly counts alphabetic characters in the lowercase hex body,
// but resets to 0 the moment a second *distinct* non-alphabetic character is
// seen: only one consistent "filler" digit is tolerated.
func countLettersOnly(lower string) int {
	count := 0
	var allowedDigit byte
	haveAllowed := false
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if isAlpha(c) {
			count++
			continue
		}
		if !haveAllowed {
			allowedDigit = c
			haveAllowed = true
			continue
		}
		if c != allowedDigit {
			return 0
		}
	}
	return count
}

func countDigits(lower string) int {
	count := 0
	for i := 0; i < len(lower); i++ {
		if isDigit(lower[i]) {
			count++
		}
	}
	return count
}

// snakeScore accumulates run-length pileups: the counter increments every
// time the current character matches the last character that was different
// from its own predecessor, biasing the score toward long repeated runs
// rather than the count of distinct runs.
func snakeScore(lower string) int {
	if len(lower) == 0 {
		return 0
	}
	prev := lower[0]
	score := 0
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if c == prev {
			score++
		} else {
			prev = c
		}
	}
	return score
}

// combinations computes C(n, k) via the product form, matching the
// specification's definition exactly (not integer binomial: this is a float
// approximation used purely for difficulty ranking).
func combinations(n, k int) float64 {
	result := 1.0
	for i := 0; i < k; i++ {
		result *= float64(n-i) / float64(i+1)
	}
	return result
}

func totalCombinations(n int) float64 {
	return math.Pow(16, float64(n))
}

// exactlyLettersCombinations counts the number of n-character hex strings
// with exactly k alphabetic characters and, if k < n, exactly one distinct
// filler digit repeated in every non-alphabetic position.
func exactlyLettersCombinations(k, n int) float64 {
	if k == n {
		return math.Pow(6, float64(k))
	}
	return math.Pow(6, float64(k)) * combinations(n, n-k) * 10
}

func lettersCountDifficulty(k, n int) float64 {
	if k < 30 {
		return 1
	}
	return totalCombinations(n) / exactlyLettersCombinations(k, n)
}

func numbersOnlyDifficulty(numbersOnly int, lower string) float64 {
	if numbersOnly != 40 {
		return 1
	}
	n, err := strconv.ParseFloat(lower, 64)
	if err != nil {
		return 1
	}
	max := math.Pow(10, 40) - 1
	base := totalCombinations(40) / math.Pow(10, 40)
	d1 := base / (n / max)
	d2 := base / ((max - n) / max)
	if d1 > d2 {
		return d1
	}
	return d2
}

// Combinations exposes the product-form binomial for tests asserting the
// specification's concrete numeric properties.
func Combinations(n, k int) float64 { return combinations(n, k) }

// ExactlyLettersCombinations exposes the letters-combinations count for
// tests asserting the specification's concrete numeric properties.
func ExactlyLettersCombinations(k, n int) float64 { return exactlyLettersCombinations(k, n) }

// TotalCombinations exposes 16^n for tests.
func TotalCombinations(n int) float64 { return totalCombinations(n) }
