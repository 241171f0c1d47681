package circuits

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vocdoni/proof-artifacts/abi"
	"github.com/vocdoni/proof-artifacts/backend"
	"github.com/vocdoni/proof-artifacts/config"
	"github.com/vocdoni/proof-artifacts/types"
)

// Program is a compiled program artifact: the ABI of the circuit and its
// bytecode, the circuit description a backend consumes. The hash is the
// sha256 hash of the bytecode.
type Program struct {
	Version  string           `json:"version"`
	Name     string           `json:"name"`
	Hash     types.HexBytes   `json:"hash"`
	Backend  string           `json:"backend"`
	Language backend.Language `json:"language"`
	ABI      abi.ABI          `json:"abi"`
	Bytecode types.HexBytes   `json:"bytecode"`
}

// NewProgram returns the program artifact of the given bytecode, setting the
// version and the hash.
func NewProgram(name, backendName string, lang backend.Language, a *abi.ABI, bytecode []byte) *Program {
	return &Program{
		Version:  config.ArtifactVersion,
		Name:     name,
		Hash:     ContentHash(bytecode),
		Backend:  backendName,
		Language: lang,
		ABI:      *a,
		Bytecode: bytecode,
	}
}

// Check validates the program: the version, the ABI and, if CheckHashes is
// set, the hash of the bytecode.
func (p *Program) Check() error {
	if p.Version != config.ArtifactVersion {
		return fmt.Errorf("unsupported program artifact version %q, expected %q", p.Version, config.ArtifactVersion)
	}
	if len(p.Bytecode) == 0 {
		return fmt.Errorf("program artifact without bytecode")
	}
	if err := p.ABI.Validate(); err != nil {
		return err
	}
	if CheckHashes {
		if hash := ContentHash(p.Bytecode); !bytes.Equal(hash, p.Hash) {
			return fmt.Errorf("program hash mismatch: expected %s, got %s", p.Hash, hash)
		}
	}
	return nil
}

// ParseProgram decodes and checks a JSON program artifact.
func ParseProgram(data []byte) (*Program, error) {
	p := &Program{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("could not decode program artifact: %w", err)
	}
	if err := p.Check(); err != nil {
		return nil, err
	}
	return p, nil
}

// ReadProgram reads the program artifact stored at path.
func ReadProgram(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseProgram(data)
}

// Marshal returns the JSON encoding of the program.
func (p *Program) Marshal() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// Write stores the program artifact at path, creating the parent directory.
func (p *Program) Write(path string) error {
	data, err := p.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
