//go:build !opencl

package driver

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/createxcrunch/createxcrunch/internal/config"
	"github.com/createxcrunch/createxcrunch/internal/createx"
	"github.com/createxcrunch/createxcrunch/internal/salt"
)

// CPUDevice is the pure-Go stand-in for a real OpenCL device, used whenever
// the binary is built without the "opencl" tag. It genuinely derives
// candidate addresses with the same salt/createx/reward arithmetic the
// synthesized kernel encodes, split across a worker pool shaped by
// runtime.NumCPU, so the search loop is fully exercisable without cgo.
type CPUDevice struct {
	cfg     *config.Config
	workers int
}

// NewCPUDevice returns a Device driving cfg.WorkSize candidate evaluations
// per Submit call across a fixed worker pool.
func NewCPUDevice(cfg *config.Config) *CPUDevice {
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	return &CPUDevice{cfg: cfg, workers: workers}
}

// NewDevice returns the CPU fallback Device. The "opencl" build tag swaps
// this for the real cgo-backed OpenCL device (see opencl.go); callers that
// only need a Device, not the concrete type, should use this constructor so
// they compile under both build configurations.
func NewDevice(cfg *config.Config) (Device, error) {
	return NewCPUDevice(cfg), nil
}

// Begin records the results-buffer size for the iteration; each Submit
// returns a freshly allocated buffer in the real device's word layout: 4
// uint64s per slot, slot i occupied when word0 != 0.
func (d *CPUDevice) Begin() (Iteration, error) {
	r := int(d.cfg.ResultBufferSize)
	return &cpuIteration{dev: d, resultBufferSize: r}, nil
}

// Close is a no-op: the CPU device owns no external resources.
func (d *CPUDevice) Close() error { return nil }

type cpuIteration struct {
	dev              *CPUDevice
	resultBufferSize int
}

// Submit evaluates cfg.WorkSize candidate nonces against cfg.Reward,
// distributing the range across the worker pool, and writes each hit into
// the next free results-buffer slot, claimed atomically across workers. Hits
// found after all slots are claimed are dropped.
func (it *cpuIteration) Submit(ctx context.Context, prefix [4]byte, nonce uint32) ([]uint64, error) {
	cfg := it.dev.cfg
	solutions := make([]uint64, 4*it.resultBufferSize)
	if it.resultBufferSize == 0 {
		return solutions, nil
	}

	var slot uint64 // atomically claims result slots across workers
	var wg sync.WaitGroup
	chunk := cfg.WorkSize / uint64(it.dev.workers)
	if chunk == 0 {
		chunk = cfg.WorkSize
	}

	for w := 0; w < it.dev.workers; w++ {
		lo := uint64(w) * chunk
		hi := lo + chunk
		if w == it.dev.workers-1 {
			hi = cfg.WorkSize
		}
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(lo, hi uint64) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				if ctx.Err() != nil {
					return
				}
				localNonce := nonce + uint32(i)
				tail := nonceTail(localNonce)
				mined := salt.NewMinedTail(prefix, tail)
				rawSalt := salt.Build(cfg.SaltVariant, cfg.Caller, mined)
				addr := createx.Derive(cfg.CreateXVariant, cfg.SaltVariant, cfg.Caller, cfg.ChainID, cfg.Factory, rawSalt, cfg.InitCodeHash)

				if !cfg.Reward.Predicate(addr) {
					continue
				}

				claimed := atomic.AddUint64(&slot, 1) - 1
				if claimed >= uint64(it.resultBufferSize) {
					continue
				}
				s := int(claimed)
				word0 := tailToWord0(tail)
				word1, word2, word3 := addressToWords(addr)
				solutions[s*4+0] = word0
				solutions[s*4+1] = word1
				solutions[s*4+2] = word2
				solutions[s*4+3] = word3
			}
		}(lo, hi)
	}
	wg.Wait()

	return solutions, nil
}

func (it *cpuIteration) Release() {}

// nonceTail folds a 32-bit inner-loop nonce into the kernel's 7-byte
// solution tail convention (low 7 bytes, high byte always zero).
func nonceTail(nonce uint32) [7]byte {
	var tail [7]byte
	tail[0] = byte(nonce)
	tail[1] = byte(nonce >> 8)
	tail[2] = byte(nonce >> 16)
	tail[3] = byte(nonce >> 24)
	return tail
}

// tailToWord0 packs a 7-byte tail back into a results word using the same
// little-endian low-7-bytes convention postprocess.solutionTail unpacks.
func tailToWord0(tail [7]byte) uint64 {
	var word0 uint64
	for i := 0; i < 7; i++ {
		word0 |= uint64(tail[i]) << (8 * i)
	}
	if word0 == 0 {
		word0 = 1 // occupied-slot sentinel: word0 must never read back as empty
	}
	return word0
}

// addressToWords is the forward transform postprocess.reconstructAddress
// inverts: bytes 0-7 into word1, bytes 8-15 into word2, bytes 16-19 into
// word3's high 32 bits.
func addressToWords(addr [20]byte) (word1, word2, word3 uint64) {
	for i := 0; i < 8; i++ {
		word1 |= uint64(addr[i]) << (8 * (7 - i))
	}
	for i := 0; i < 8; i++ {
		word2 |= uint64(addr[8+i]) << (8 * (7 - i))
	}
	var hi uint32
	for i := 0; i < 4; i++ {
		hi |= uint32(addr[16+i]) << (8 * (3 - i))
	}
	word3 = uint64(hi) << 32
	return
}
