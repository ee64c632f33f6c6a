package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/createxcrunch/createxcrunch/internal/config"
	"github.com/createxcrunch/createxcrunch/internal/driver"
	"github.com/createxcrunch/createxcrunch/internal/logging"
	"github.com/createxcrunch/createxcrunch/internal/metrics"
	"github.com/createxcrunch/createxcrunch/internal/postprocess"
	"github.com/createxcrunch/createxcrunch/internal/version"
)

// sharedFlags registers every flag common to create2 and create3 (spec §6).
func sharedFlags(flags *pflag.FlagSet) {
	flags.Uint8P("gpu-device-id", "g", 0, "index of the OpenCL device to use")
	flags.Uint64P("work-size", "w", 1_000_000_000, "number of addresses to evaluate per inner-loop batch")
	flags.Uint64("result-buffer-size", 20000, "number of solution slots in the device results buffer")
	flags.Float64P("sleep-for", "s", 0, "seconds to sleep after each batch")
	flags.StringP("factory", "f", "0x9e3f8eae49e442a323ef2094f277bf62752e6995", "CreateX factory contract address")
	flags.StringP("caller", "c", "", "permissioned caller address (binds the Sender/CrosschainSender salt)")
	flags.StringP("crosschain", "x", "", "chain id to bind the salt to (binds the Crosschain/CrosschainSender salt)")
	flags.IntP("zeros", "z", 0, "required leading zero bytes")
	flags.IntP("total", "t", 0, "required zero bytes anywhere in the address")
	flags.BoolP("either", "e", false, "when both --zeros and --total are set, accept either condition instead of requiring both")
	flags.StringP("matching", "m", "", "40-character hex/X pattern the address body must match")
	flags.Uint64("group", 24, "fancy-any group size")
	flags.Uint64("leading", 7, "fancy-any required leading run length")
	flags.Uint64("ones", 9, "fancy-any digit-one threshold")
	flags.Uint64("ints", 4, "fancy-any digit-only prefix threshold")
	flags.StringP("output", "o", "output.txt", "declared output file; accepted rows are always written to output/addr_<address>.csv")
	flags.String("metrics-addr", "", "address to serve Prometheus metrics on (disabled if empty)")
}

// paramsFromFlags decodes a cobra FlagSet into config.Params. initCodeHash is
// "" for create3 (selecting the proxy path) and the required hash value for
// create2.
func paramsFromFlags(flags *pflag.FlagSet, initCodeHash string) (config.Params, error) {
	p := config.Params{InitCodeHash: initCodeHash}

	var err error
	if p.GPUDeviceID, err = flags.GetUint8("gpu-device-id"); err != nil {
		return p, err
	}
	if p.WorkSize, err = flags.GetUint64("work-size"); err != nil {
		return p, err
	}
	if p.ResultBufferSize, err = flags.GetUint64("result-buffer-size"); err != nil {
		return p, err
	}
	if p.SleepFor, err = flags.GetFloat64("sleep-for"); err != nil {
		return p, err
	}
	if p.Factory, err = flags.GetString("factory"); err != nil {
		return p, err
	}
	if p.Caller, err = flags.GetString("caller"); err != nil {
		return p, err
	}
	if p.OutputPath, err = flags.GetString("output"); err != nil {
		return p, err
	}

	crosschain, err := flags.GetString("crosschain")
	if err != nil {
		return p, err
	}
	if crosschain != "" {
		id, err := parseChainID(crosschain)
		if err != nil {
			return p, fmt.Errorf("invalid --crosschain value: %w", err)
		}
		p.ChainID = &id
	}

	if flags.Changed("zeros") {
		z, err := flags.GetInt("zeros")
		if err != nil {
			return p, err
		}
		p.Zeros = &z
	}
	if flags.Changed("total") {
		tt, err := flags.GetInt("total")
		if err != nil {
			return p, err
		}
		p.Total = &tt
	}
	if p.Either, err = flags.GetBool("either"); err != nil {
		return p, err
	}
	if p.Matching, err = flags.GetString("matching"); err != nil {
		return p, err
	}
	if p.Group, err = flags.GetUint64("group"); err != nil {
		return p, err
	}
	if p.Leading, err = flags.GetUint64("leading"); err != nil {
		return p, err
	}
	if p.Ones, err = flags.GetUint64("ones"); err != nil {
		return p, err
	}
	if p.Ints, err = flags.GetUint64("ints"); err != nil {
		return p, err
	}

	return p, nil
}

func parseChainID(s string) (uint64, error) {
	var id uint64
	if _, err := fmt.Sscanf(s, "%d", &id); err != nil {
		return 0, err
	}
	return id, nil
}

// runSearch wires config, the search device (OpenCL or CPU fallback,
// depending on build tags), metrics, and the post-processor together and
// blocks until SIGINT/SIGTERM or a fatal device error.
func runSearch(cmd *cobra.Command, p config.Params) error {
	cfg, err := config.New(p)
	if err != nil {
		return err
	}

	logCfg := logging.FromEnv(logLevel, logFormat)
	logger := logging.New(logCfg)

	mx := metrics.New()
	// Accepted rows always go under output/; cfg.OutputPath is not used here.
	proc := postprocess.NewProcessor("output", version.Version, logger)
	dev, err := driver.NewDevice(cfg)
	if err != nil {
		return fmt.Errorf("initialize device: %w", err)
	}
	defer dev.Close()

	metricsAddr, err := cmd.Flags().GetString("metrics-addr")
	if err != nil {
		return err
	}
	if metricsAddr != "" {
		srv := &http.Server{Addr: metricsAddr, Handler: mx.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
		defer srv.Close()
		logger.Info().Str("addr", metricsAddr).Msg("serving metrics")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info().Msg("shutting down")
		cancel()
	}()
	defer signal.Stop(sigCh)

	logger.Info().
		Str("factory", fmt.Sprintf("0x%x", cfg.Factory)).
		Str("createx_variant", cfg.CreateXVariant.String()).
		Str("salt_variant", cfg.SaltVariant.String()).
		Uint64("work_size", cfg.WorkSize).
		Msg("starting search")

	return driver.Run(ctx, cfg, dev, logger, mx, proc)
}
