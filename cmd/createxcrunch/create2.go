package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var create2Cmd = &cobra.Command{
	Use:   "create2",
	Short: "Mine a salt for a direct CREATE2 deployment",
	Args:  cobra.NoArgs,
	RunE:  runCreate2,
}

func init() {
	sharedFlags(create2Cmd.Flags())
	create2Cmd.Flags().String("code-hash", "", "keccak256 hash of the deployed contract's init code (required)")
}

func runCreate2(cmd *cobra.Command, args []string) error {
	codeHash, err := cmd.Flags().GetString("code-hash")
	if err != nil {
		return err
	}
	if codeHash == "" {
		return fmt.Errorf("--code-hash is required for create2")
	}

	p, err := paramsFromFlags(cmd.Flags(), codeHash)
	if err != nil {
		return err
	}
	return runSearch(cmd, p)
}
