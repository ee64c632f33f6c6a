// Command createxcrunch mines CreateX salts yielding "fancy" deployment
// addresses for a CREATE2 or CREATE3 deployment.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/createxcrunch/createxcrunch/internal/version"
)

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:     "createxcrunch",
	Short:   "Mine CreateX salts for vanity CREATE2/CREATE3 deployment addresses",
	Long:    `createxcrunch searches for a CreateX salt whose resulting CREATE2 or CREATE3 deployment address matches a chosen fancy pattern, driving either a real OpenCL device or the built-in CPU fallback.`,
	Version: version.Version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default: $CRUNCH_LOG or info)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json (default: text)")

	rootCmd.AddCommand(create2Cmd)
	rootCmd.AddCommand(create3Cmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
