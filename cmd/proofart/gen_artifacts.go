package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vocdoni/proof-artifacts/abi/inputs"
	"github.com/vocdoni/proof-artifacts/backend"
	"github.com/vocdoni/proof-artifacts/backend/circom"
	"github.com/vocdoni/proof-artifacts/backend/gnark"
	"github.com/vocdoni/proof-artifacts/compiler"
	"github.com/vocdoni/proof-artifacts/config"
	"github.com/vocdoni/proof-artifacts/driver"
	"github.com/vocdoni/proof-artifacts/storage"
	"go.vocdoni.io/dvote/db/metadb"
)

var genArtifactsFlags struct {
	pkg          string
	workspace    bool
	verifierName string
	inputFormat  string
	backend      string
	hasher       string
	dbDir        string
	writeFields  bool
}

var genArtifactsCmd = &cobra.Command{
	Use:   "gen-artifacts",
	Short: "Generate the proof and verification key artifacts of the selected packages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		f := genArtifactsFlags
		format, err := inputs.ParseFormat(f.inputFormat)
		if err != nil {
			return err
		}
		hasher, err := backend.NewVKHasher(f.hasher)
		if err != nil {
			return err
		}
		b, err := backend.NewRegistry(gnark.New(hasher), circom.New(hasher)).Get(f.backend)
		if err != nil {
			return err
		}
		ws, err := resolveWorkspace(f.pkg, f.workspace)
		if err != nil {
			return err
		}

		// reporters publish in this order, the console goes last
		reporters := []driver.Reporter{}
		if f.dbDir != "" {
			database, err := metadb.New(config.DefaultDBType, f.dbDir)
			if err != nil {
				return fmt.Errorf("could not open database: %w", err)
			}
			stg := storage.New(database)
			defer stg.Close()
			reporters = append(reporters, &driver.StorageReporter{Storage: stg})
		}
		if f.writeFields {
			reporters = append(reporters, driver.FileReporter{})
		}
		reporters = append(reporters, &driver.ConsoleReporter{Out: cmd.OutOrStdout()})

		d := driver.New(b, compiler.ArtifactLoader{},
			driver.WithReporters(reporters...),
			driver.WithVerifierName(f.verifierName),
			driver.WithInputFormat(format),
			driver.WithCompileOptions(compiler.Options{Backend: b.Name()}),
		)
		report, err := d.Run(ws)
		if err != nil {
			return err
		}
		if failed := report.Failed(); len(failed) > 0 {
			return fmt.Errorf("%d of %d packages failed: %v", len(failed), len(report.Results), failed)
		}
		return report.FinishErr
	},
}

func init() {
	flags := genArtifactsCmd.Flags()
	flags.StringVar(&genArtifactsFlags.pkg, "package", "", "The name of the package to generate artifacts for.")
	flags.BoolVar(&genArtifactsFlags.workspace, "workspace", false, "Generate the artifacts of all packages in the workspace.")
	flags.StringVarP(&genArtifactsFlags.verifierName, "verifier-name", "v", config.VerifierInputFile,
		"The name of the file which contains the inputs for the verifier.")
	flags.StringVar(&genArtifactsFlags.inputFormat, "input-format", string(inputs.FormatTOML), "Format of the input files (toml, json).")
	flags.StringVar(&genArtifactsFlags.backend, "backend", config.DefaultBackend, "Proving backend (gnark, circom).")
	flags.StringVar(&genArtifactsFlags.hasher, "hasher", config.DefaultVKHasher, "Hash function of the verification key (poseidon, keccak256).")
	flags.StringVar(&genArtifactsFlags.dbDir, "db-dir", "", "Directory of the database where the artifacts are stored. Not stored if empty.")
	flags.BoolVar(&genArtifactsFlags.writeFields, "write-fields", true, "Write the artifacts of each package next to its proof.")
	genArtifactsCmd.MarkFlagsMutuallyExclusive("package", "workspace")
}
