package config

import "time"

const (
	// ArtifactVersion is written into every program artifact built by this
	// tool and checked when loading one.
	ArtifactVersion = "proofart/1"

	// ManifestFile is the name of the workspace and package manifest.
	ManifestFile = "proofart.toml"
	// TargetDir is the directory, relative to a package root, where the
	// compiled program artifacts are stored.
	TargetDir = "target"
	// ProgramExt is the extension of the compiled program artifacts.
	ProgramExt = "json"
	// ProofsDir is the directory, relative to the workspace root, where the
	// proofs are stored.
	ProofsDir = "proofs"
	// ProofExt is the extension of the hex encoded proof files.
	ProofExt = "proof"
	// FieldsExt is the extension of the artifact triple files written next
	// to the proofs.
	FieldsExt = "fields.json"
	// VerifierInputFile is the default name (without extension) of the file
	// that contains the public inputs for the verifier.
	VerifierInputFile = "Verifier"
	// ProverInputFile is the name of the file that contains all the inputs
	// of a circuit, used by tools that build proofs.
	ProverInputFile = "Prover"
)

const (
	// DefaultBackend is the backend used when none is selected.
	DefaultBackend = "gnark"
	// DefaultVKHasher is the hash function used to pin the verification key.
	DefaultVKHasher = "poseidon"
	// DefaultDBType is the key-value store used to persist artifacts.
	DefaultDBType = "pebble"
	// DefaultAPIHost and DefaultAPIPort are the address of the HTTP API.
	DefaultAPIHost = "0.0.0.0"
	DefaultAPIPort = 9090
	// DefaultFetchTimeout bounds the download of remote program artifacts.
	DefaultFetchTimeout = 5 * time.Minute
)

const (
	// EnvArtifactsDir overrides the directory of the remote artifacts cache.
	EnvArtifactsDir = "PROOFART_ARTIFACTS_DIR"
	// EnvCheckHashes disables the hash check of program artifacts when set
	// to false or 0.
	EnvCheckHashes = "PROOFART_CHECK_HASHES"
	// EnvLogLevel sets the initial log level.
	EnvLogLevel = "PROOFART_LOG_LEVEL"
)
