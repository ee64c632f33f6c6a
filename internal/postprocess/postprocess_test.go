package postprocess

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/createxcrunch/createxcrunch/internal/salt"
)

func TestSolutionTailTakesLow7BytesLittleEndian(t *testing.T) {
	word0 := uint64(0x0001020304050607) // byte 7 (MSB) must be ignored
	tail := solutionTail(word0)
	require.Equal(t, [7]byte{0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}, tail)
}

func TestSolutionTailNeverAllZeroIsNotEmptySentinelConfusion(t *testing.T) {
	// word0 == 1 is what the device writes for an all-zero tail so the slot
	// never reads as empty; it decodes to a tail with only the low byte set.
	require.Equal(t, [7]byte{0x01}, solutionTail(1))
}

func TestReconstructAddressLength(t *testing.T) {
	addr := reconstructAddress(0x0102030405060708, 0x1112131415161718, 0x2122232400000000)
	require.Len(t, addr, 20)
	require.Equal(t, byte(0x01), addr[0])
	require.Equal(t, byte(0x21), addr[16])
}

func TestProcessWritesAcceptedRowOnly(t *testing.T) {
	dir := t.TempDir()
	logger := zerolog.Nop()
	p := NewProcessor(dir, "test", logger)

	// Build a batch with one occupied slot whose address is all-zero bytes
	// (leading_zeroes=40), which always clears MIN_DIFFICULTY.
	solutions := make([]uint64, 4)
	solutions[0] = 1 // nonzero tail, occupied
	solutions[1] = 0
	solutions[2] = 0
	solutions[3] = 0

	batch := Batch{
		Solutions:      solutions,
		SaltPrefix:     [4]byte{0xAA, 0xBB, 0xCC, 0xDD},
		SaltVariant:    salt.Random,
		TotalProcessed: 1_000_000_000,
	}
	p.Process(batch)

	addrHex := "0000000000000000000000000000000000000000"
	path := filepath.Join(dir, "addr_"+addrHex+".csv")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "0x0000000000000000000000000000000000000000")
	require.Contains(t, string(data), "test_1")
}

func TestProcessSkipsEmptySlots(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir, "test", zerolog.Nop())
	batch := Batch{Solutions: make([]uint64, 8)} // both slots word0==0
	p.Process(batch)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}
