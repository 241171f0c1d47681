// Package workspace resolves the build targets of a workspace from its
// manifest files. A workspace is either a single package or a list of
// member packages, each one in its own directory with its own manifest.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/vocdoni/proof-artifacts/circuits"
	"github.com/vocdoni/proof-artifacts/config"
	"github.com/vocdoni/proof-artifacts/types"
)

// Target is a build target: a package of the workspace.
type Target struct {
	Name    string
	RootDir string
	// ProgramURL and ProgramHash locate a remote program artifact, used
	// when the package has no local one.
	ProgramURL  string
	ProgramHash types.HexBytes
}

// ProgramArtifact returns the remote program artifact of the target.
func (t *Target) ProgramArtifact() *circuits.Artifact {
	return &circuits.Artifact{
		RemoteURL: t.ProgramURL,
		Hash:      t.ProgramHash,
	}
}

// Workspace is a resolved workspace: every member and the targets selected
// for the run, in manifest order.
type Workspace struct {
	RootDir string
	Members []*Target
	Targets []*Target
}

// ProofsDirectoryPath returns the directory where the proofs are stored.
func (w *Workspace) ProofsDirectoryPath() string {
	return filepath.Join(w.RootDir, config.ProofsDir)
}

// ProofPath returns the path of the proof file of target.
func (w *Workspace) ProofPath(target *Target) string {
	return filepath.Join(w.ProofsDirectoryPath(), target.Name+"."+config.ProofExt)
}

// FieldsPath returns the path of the file with the artifact triple of
// target, written next to its proof.
func (w *Workspace) FieldsPath(target *Target) string {
	return filepath.Join(w.ProofsDirectoryPath(), target.Name+"."+config.FieldsExt)
}

// Target returns the member with the given name.
func (w *Workspace) Target(name string) (*Target, bool) {
	i := slices.IndexFunc(w.Members, func(t *Target) bool { return t.Name == name })
	if i < 0 {
		return nil, false
	}
	return w.Members[i], true
}

// ManifestError is returned when a manifest cannot be read or is invalid.
type ManifestError struct {
	Path   string
	Reason string
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("invalid manifest %s: %s", e.Path, e.Reason)
}

// ErrManifestNotFound is returned when no manifest is found.
var ErrManifestNotFound = errors.New("manifest not found")

// FindManifest looks for the manifest file in dir and its parents and
// returns its path.
func FindManifest(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, config.ManifestFile)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w in %s or any parent directory", ErrManifestNotFound, dir)
		}
		dir = parent
	}
}

// Resolve reads the manifest at manifestPath, and the manifests of the
// members if it describes a workspace, and selects the targets of the run.
func Resolve(manifestPath string, selection Selection) (*Workspace, error) {
	m, err := ReadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	ws := &Workspace{RootDir: filepath.Dir(manifestPath)}
	switch {
	case m.Package != nil && m.Workspace != nil:
		return nil, &ManifestError{Path: manifestPath, Reason: "both [package] and [workspace] are defined"}
	case m.Package != nil:
		target, err := m.Package.target(manifestPath, ws.RootDir)
		if err != nil {
			return nil, err
		}
		ws.Members = []*Target{target}
	case m.Workspace != nil:
		if len(m.Workspace.Members) == 0 {
			return nil, &ManifestError{Path: manifestPath, Reason: "workspace without members"}
		}
		for _, member := range m.Workspace.Members {
			target, err := resolveMember(filepath.Join(ws.RootDir, member))
			if err != nil {
				return nil, err
			}
			if _, ok := ws.Target(target.Name); ok {
				return nil, &ManifestError{Path: manifestPath, Reason: fmt.Sprintf("duplicated package %q", target.Name)}
			}
			ws.Members = append(ws.Members, target)
		}
	default:
		return nil, &ManifestError{Path: manifestPath, Reason: "neither [package] nor [workspace] is defined"}
	}

	if ws.Targets, err = selection.apply(ws, m); err != nil {
		return nil, err
	}
	return ws, nil
}

func resolveMember(dir string) (*Target, error) {
	path := filepath.Join(dir, config.ManifestFile)
	m, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if m.Package == nil {
		return nil, &ManifestError{Path: path, Reason: "workspace member without [package]"}
	}
	return m.Package.target(path, dir)
}

// ReadManifest reads and decodes the manifest file at path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
		}
		return nil, err
	}
	m := &Manifest{}
	md, err := toml.Decode(string(data), m)
	if err != nil {
		return nil, &ManifestError{Path: path, Reason: err.Error()}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, &ManifestError{Path: path, Reason: fmt.Sprintf("unknown key %q", undecoded[0].String())}
	}
	return m, nil
}
