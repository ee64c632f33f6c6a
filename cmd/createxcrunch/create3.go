package main

import (
	"github.com/spf13/cobra"
)

var create3Cmd = &cobra.Command{
	Use:   "create3",
	Short: "Mine a salt for a CREATE3 deployment through CreateX's minimal proxy",
	Args:  cobra.NoArgs,
	RunE:  runCreate3,
}

func init() {
	sharedFlags(create3Cmd.Flags())
}

func runCreate3(cmd *cobra.Command, args []string) error {
	p, err := paramsFromFlags(cmd.Flags(), "")
	if err != nil {
		return err
	}
	return runSearch(cmd, p)
}
