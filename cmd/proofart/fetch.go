package main

import (
	"github.com/spf13/cobra"
	"github.com/vocdoni/proof-artifacts/config"
	"github.com/vocdoni/proof-artifacts/service"
)

var fetchFlags struct {
	pkg       string
	workspace bool
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the remote programs of the selected packages into the local cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ws, err := resolveWorkspace(fetchFlags.pkg, fetchFlags.workspace)
		if err != nil {
			return err
		}
		timeout, err := cmd.Flags().GetDuration("timeout")
		if err != nil {
			return err
		}
		return service.FetchPrograms(ws.Targets, timeout)
	},
}

func init() {
	flags := fetchCmd.Flags()
	flags.StringVar(&fetchFlags.pkg, "package", "", "The name of the package to fetch the program of.")
	flags.BoolVar(&fetchFlags.workspace, "workspace", false, "Fetch the programs of all packages in the workspace.")
	flags.Duration("timeout", config.DefaultFetchTimeout, "Timeout of the downloads.")
	fetchCmd.MarkFlagsMutuallyExclusive("package", "workspace")
}
