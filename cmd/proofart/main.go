// Command proofart materializes the artifacts of groth16 proofs: the proof
// and the verification key as field elements plus the hash of the key, the
// inputs of recursive and on-chain verifiers.
package main

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"

	"github.com/consensys/gnark/logger"
	"github.com/spf13/cobra"
	"github.com/vocdoni/proof-artifacts/config"
	"github.com/vocdoni/proof-artifacts/log"
	"github.com/vocdoni/proof-artifacts/workspace"
)

var (
	programDir string
	logLevel   string
	logOutput  string
)

var rootCmd = &cobra.Command{
	Use:           "proofart",
	Short:         "Generate the intermediate artifacts of circuit proofs",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if !log.ValidLevel(logLevel) {
			return fmt.Errorf("invalid log level %q", logLevel)
		}
		log.Init(logLevel, logOutput, nil)
		// gnark logs its own progress, shown only when debugging
		if logLevel == log.LogLevelDebug {
			logger.Set(log.Logger().With().Str("component", "gnark").Logger())
		} else {
			logger.Disable()
		}
		return nil
	},
}

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	rootCmd.PersistentFlags().StringVar(&programDir, "program-dir", cwd, "Directory of the package or workspace to use.")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cmp.Or(os.Getenv(config.EnvLogLevel), log.LogLevelInfo), "Log level (debug, info, warn, error).")
	rootCmd.PersistentFlags().StringVar(&logOutput, "log-output", "stderr", "Log output (stdout, stderr or a file path).")

	rootCmd.AddCommand(genArtifactsCmd, fetchCmd, serveCmd, getCmd, exampleCmd)
}

// resolveWorkspace finds the manifest of the program directory and resolves
// the workspace with the package selection flags.
func resolveWorkspace(pkg string, all bool) (*workspace.Workspace, error) {
	selection, err := workspace.NewSelection(pkg, all)
	if err != nil {
		return nil, err
	}
	dir, err := filepath.Abs(programDir)
	if err != nil {
		return nil, err
	}
	manifest, err := workspace.FindManifest(dir)
	if err != nil {
		return nil, fmt.Errorf("could not find %s in %s or its parents: %w", config.ManifestFile, dir, err)
	}
	return workspace.Resolve(manifest, selection)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
