package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vocdoni/proof-artifacts/api/client"
)

var getFlags struct {
	api string
	raw bool
}

var getCmd = &cobra.Command{
	Use:   "get [target]",
	Short: "Get the stored artifacts of a target from a running API server",
	Long:  "Get the stored artifacts of a target from a running API server. Without a target, list the targets.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := client.New(getFlags.api)
		if err != nil {
			return err
		}
		var out any
		switch {
		case len(args) == 0:
			out, err = cli.Targets()
		case getFlags.raw:
			out, err = cli.RawArtifacts(args[0])
		default:
			out, err = cli.Artifacts(args[0])
		}
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	},
}

func init() {
	getCmd.Flags().StringVar(&getFlags.api, "api", "http://127.0.0.1:9090", "URL of the API server.")
	getCmd.Flags().BoolVar(&getFlags.raw, "raw", false, "Get the artifacts serialized as bytes.")
}
