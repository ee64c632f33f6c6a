// Package postprocess reconstructs salts and addresses from a batch's
// results buffer, scores each hit, and appends accepted rows to disk
// (spec §4.5). Each batch is processed by a detached goroutine that owns
// its own results slice exclusively.
package postprocess

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/createxcrunch/createxcrunch/internal/createx"
	"github.com/createxcrunch/createxcrunch/internal/eip55"
	"github.com/createxcrunch/createxcrunch/internal/fancyscore"
	"github.com/createxcrunch/createxcrunch/internal/salt"
)

// Batch is everything one post-processing task needs, handed off by the
// driver after an inner loop finds at least one occupied results slot. The
// task owns Solutions exclusively; the driver allocates a fresh buffer for
// its next iteration.
type Batch struct {
	Solutions      []uint64
	SaltPrefix     [4]byte
	SaltVariant    salt.Variant
	CreateXVariant createx.Variant
	Caller         [20]byte
	HasCaller      bool
	ChainID        uint64
	Factory        [20]byte
	InitCodeHash   [32]byte
	TotalProcessed uint64
}

// Processor owns the output directory and version string stamped into
// accepted rows.
type Processor struct {
	OutputDir string
	Version   string
	Logger    zerolog.Logger
}

// NewProcessor returns a Processor writing under outputDir (created lazily
// on first accepted hit).
func NewProcessor(outputDir, version string, logger zerolog.Logger) *Processor {
	if outputDir == "" {
		outputDir = "output"
	}
	return &Processor{OutputDir: outputDir, Version: version, Logger: logger}
}

// Process scans every slot of batch.Solutions in order, reconstructs the
// salt and address for each occupied one, scores it, and appends a row for
// every hit clearing the accept gate. number_found is local to this call by
// design — it is never summed across concurrent post-processors.
func (p *Processor) Process(batch Batch) {
	numberFound := 0
	numberRejected := 0

	r := len(batch.Solutions) / 4
	for i := 0; i < r; i++ {
		word0 := batch.Solutions[i*4]
		if word0 == 0 {
			continue
		}
		word1 := batch.Solutions[i*4+1]
		word2 := batch.Solutions[i*4+2]
		word3 := batch.Solutions[i*4+3]

		tail := solutionTail(word0)
		mined := salt.NewMinedTail(batch.SaltPrefix, tail)
		rawSalt := salt.Build(batch.SaltVariant, batch.Caller, mined)
		address := reconstructAddress(word1, word2, word3)

		score := fancyscore.Evaluate(address)
		if score.Accepted() {
			numberFound++
			if err := p.appendRow(rawSalt, address, batch); err != nil {
				p.Logger.Error().Err(err).Msg("failed to write output row")
				continue
			}
			p.Logger.Info().
				Str("address", eip55.Encode(address)).
				Str("category", string(score.WinningCategory)).
				Float64("difficulty", score.TotalScore).
				Msg("accepted")
		} else {
			numberRejected++
		}
	}

	p.Logger.Debug().
		Int("accepted", numberFound).
		Int("rejected", numberRejected).
		Msg("batch processed")
}

// solutionTail extracts the low 7 bytes (little-endian) of a results word.
func solutionTail(word0 uint64) [7]byte {
	var tail [7]byte
	for i := 0; i < 7; i++ {
		tail[i] = byte(word0 >> (8 * i))
	}
	return tail
}

// reconstructAddress rebuilds the 20-byte address from the three result
// words: word1/word2 as full 64-bit big-endian halves, word3's high 32 bits
// as the final 4 bytes.
func reconstructAddress(word1, word2, word3 uint64) [20]byte {
	var addr [20]byte
	for i := 0; i < 8; i++ {
		addr[i] = byte(word1 >> (8 * (7 - i)))
	}
	for i := 0; i < 8; i++ {
		addr[8+i] = byte(word2 >> (8 * (7 - i)))
	}
	hi := uint32(word3 >> 32)
	for i := 0; i < 4; i++ {
		addr[16+i] = byte(hi >> (8 * (3 - i)))
	}
	return addr
}

func (p *Processor) appendRow(rawSalt [32]byte, address [20]byte, batch Batch) error {
	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	addrHex := fmt.Sprintf("%x", address)
	path := filepath.Join(p.OutputDir, "addr_"+addrHex+".csv")

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer f.Close()

	row := fmt.Sprintf("0x%x,0x%x,0x%x,%s_%g\n",
		rawSalt, address, batch.Factory, p.Version, float64(batch.TotalProcessed)/1e9)
	if _, err := f.WriteString(row); err != nil {
		return fmt.Errorf("append output row: %w", err)
	}
	return nil
}
