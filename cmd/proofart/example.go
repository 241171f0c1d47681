package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vocdoni/proof-artifacts/circuits/example"
)

var exampleCmd = &cobra.Command{
	Use:   "example [dir]",
	Short: "Write an example workspace with gnark programs, verifier inputs and proofs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := programDir
		if len(args) == 1 {
			dir = args[0]
		}
		dir, err := filepath.Abs(dir)
		if err != nil {
			return err
		}
		if err := example.WriteWorkspace(dir, example.Members()); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "example workspace written to %s, run: proofart gen-artifacts --workspace --program-dir %s\n", dir, dir)
		return err
	},
}
