// Package proof loads and stores raw proofs. A proof file holds the proof
// bytes as hexadecimal text; the bytes themselves are opaque and only the
// backend that produced them knows how to interpret them.
package proof

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vocdoni/proof-artifacts/util"
)

// NotFoundError is returned when the proof file does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("proof file not found: %s", e.Path)
}

// DecodeError is returned when the proof file is not valid hexadecimal text.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid proof file %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Load reads the proof file at path and returns the decoded bytes.
// Surrounding whitespace and a 0x prefix are accepted.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("could not read proof file: %w", err)
	}
	b, err := hex.DecodeString(util.CleanHex(string(data)))
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return b, nil
}

// Save writes proof as hexadecimal text into path, creating the parent
// directory if needed.
func Save(path string, proof []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("could not create proofs directory: %w", err)
	}
	return os.WriteFile(path, []byte(hex.EncodeToString(proof)), 0o644)
}
