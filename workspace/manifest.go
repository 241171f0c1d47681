package workspace

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"
	"github.com/vocdoni/proof-artifacts/config"
	"github.com/vocdoni/proof-artifacts/types"
)

var packageNameRegexp = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*$`)

// Manifest is the content of a manifest file. It defines either a package
// or a workspace.
type Manifest struct {
	Package   *PackageConfig   `toml:"package,omitempty"`
	Workspace *WorkspaceConfig `toml:"workspace,omitempty"`
}

// PackageConfig is the [package] table of a manifest.
type PackageConfig struct {
	Name        string `toml:"name"`
	ProgramURL  string `toml:"program-url,omitempty"`
	ProgramHash string `toml:"program-hash,omitempty"`
}

// WorkspaceConfig is the [workspace] table of a manifest.
type WorkspaceConfig struct {
	Members       []string `toml:"members"`
	DefaultMember string   `toml:"default-member,omitempty"`
}

func (p *PackageConfig) target(manifestPath, rootDir string) (*Target, error) {
	if !packageNameRegexp.MatchString(p.Name) {
		return nil, &ManifestError{Path: manifestPath, Reason: fmt.Sprintf("invalid package name %q", p.Name)}
	}
	target := &Target{
		Name:       p.Name,
		RootDir:    rootDir,
		ProgramURL: p.ProgramURL,
	}
	if p.ProgramURL != "" {
		if p.ProgramHash == "" {
			return nil, &ManifestError{Path: manifestPath, Reason: "program-url without program-hash"}
		}
		target.ProgramHash = types.HexStringToHexBytes(p.ProgramHash)
		if len(target.ProgramHash) == 0 {
			return nil, &ManifestError{Path: manifestPath, Reason: fmt.Sprintf("invalid program-hash %q", p.ProgramHash)}
		}
	}
	return target, nil
}

// Write stores the manifest in dir.
func (m *Manifest) Write(dir string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return fmt.Errorf("could not encode manifest: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, config.ManifestFile), buf.Bytes(), 0o644)
}
