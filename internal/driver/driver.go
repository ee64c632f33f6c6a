// Package driver implements the host-side search loop: outer nonce
// management, inner batch submission, throughput telemetry, and handoff of
// hit batches to a detached post-processor (spec §4.4).
package driver

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/createxcrunch/createxcrunch/internal/config"
	"github.com/createxcrunch/createxcrunch/internal/metrics"
	"github.com/createxcrunch/createxcrunch/internal/postprocess"
)

// ErrDevice wraps any error returned by a Device, identifying it as a
// DeviceError per the specification's error taxonomy: fatal to the driver.
var ErrDevice = errors.New("device error")

// Iteration is one outer-loop allocation: a fresh results buffer bound to
// the device, submitted against repeatedly across inner-loop batches until
// a hit is found.
type Iteration interface {
	// Submit runs one inner-loop batch for the given salt prefix and nonce
	// and returns the read-back results buffer (length 4 * ResultBufferSize).
	Submit(ctx context.Context, prefix [4]byte, nonce uint32) ([]uint64, error)
	// Release frees the iteration's device-side buffers.
	Release()
}

// Device is a bound OpenCL-like compute target: context, queue, and
// compiled program, ready to begin outer-loop iterations.
type Device interface {
	Begin() (Iteration, error)
	Close() error
}

// Run drives the outer/inner search loop until ctx is canceled or the
// device reports a fatal error.
func Run(ctx context.Context, cfg *config.Config, dev Device, logger zerolog.Logger, mx *metrics.Metrics, proc *postprocess.Processor) error {
	var totalProcessed uint64

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		iter, err := dev.Begin()
		if err != nil {
			return fmt.Errorf("%w: begin iteration: %v", ErrDevice, err)
		}

		nonce, err := randomUint32()
		if err != nil {
			iter.Release()
			return err
		}

		for {
			if err := ctx.Err(); err != nil {
				iter.Release()
				return nil
			}

			prefix, err := randomPrefix()
			if err != nil {
				iter.Release()
				return err
			}

			start := time.Now()
			solutions, err := iter.Submit(ctx, prefix, nonce)
			if err != nil {
				iter.Release()
				return fmt.Errorf("%w: submit batch: %v", ErrDevice, err)
			}
			elapsed := time.Since(start)

			totalProcessed += cfg.WorkSize
			mhps := 0.0
			if elapsed.Seconds() > 0 {
				mhps = float64(cfg.WorkSize) / elapsed.Seconds() / 1e6
			}

			logger.Info().
				Float64("total_processed_gh", float64(totalProcessed)/1e9).
				Str("salt_prefix", hex.EncodeToString(prefix[:])).
				Uint16("nonce_lo16", uint16(nonce)).
				Uint64("work_size", cfg.WorkSize).
				Int64("last_duration_ms", elapsed.Milliseconds()).
				Float64("avg_mhps", mhps).
				Msg("processed batch")

			if mx != nil {
				mx.ObserveBatch(cfg.WorkSize, elapsed)
			}

			if cfg.SleepFor > 0 {
				sleep(ctx, time.Duration(cfg.SleepFor*float64(time.Second)))
			}

			if hasSolution(solutions) {
				batch := postprocess.Batch{
					Solutions:      solutions,
					SaltPrefix:     prefix,
					SaltVariant:    cfg.SaltVariant,
					CreateXVariant: cfg.CreateXVariant,
					Caller:         cfg.Caller,
					HasCaller:      cfg.HasCaller,
					ChainID:        cfg.ChainID,
					Factory:        cfg.Factory,
					InitCodeHash:   cfg.InitCodeHash,
					TotalProcessed: totalProcessed,
				}
				go proc.Process(batch)
				iter.Release()
				break
			}

			nonce++
		}
	}
}

func hasSolution(solutions []uint64) bool {
	for i := 0; i < len(solutions); i += 4 {
		if solutions[i] != 0 {
			return true
		}
	}
	return false
}

func randomUint32() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("sample nonce: %w", err)
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func randomPrefix() ([4]byte, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return b, fmt.Errorf("sample salt prefix: %w", err)
	}
	return b, nil
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
