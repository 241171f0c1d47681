package example

import (
	"fmt"
	"path/filepath"

	"github.com/consensys/gnark/frontend"
	"github.com/vocdoni/proof-artifacts/abi"
	"github.com/vocdoni/proof-artifacts/abi/inputs"
	"github.com/vocdoni/proof-artifacts/circuits"
	"github.com/vocdoni/proof-artifacts/compiler"
	"github.com/vocdoni/proof-artifacts/config"
	"github.com/vocdoni/proof-artifacts/log"
	"github.com/vocdoni/proof-artifacts/proof"
	"github.com/vocdoni/proof-artifacts/workspace"
)

// Member is a package of the example workspace: a circuit, a valid
// assignment and the public inputs of that assignment.
type Member struct {
	Name       string
	Circuit    frontend.Circuit
	Assignment frontend.Circuit
	Inputs     abi.InputMap
}

// Members returns the packages of the example workspace.
func Members() []*Member {
	return []*Member{
		{
			Name:       "square",
			Circuit:    &SquareCircuit{},
			Assignment: SquareAssignment(5),
			Inputs:     abi.InputMap{"Square": abi.NewField(25), "Next": abi.NewField(6)},
		},
		{
			Name:       "commit",
			Circuit:    &CommitCircuit{},
			Assignment: CommitAssignment(1, 2, 3),
			Inputs: abi.InputMap{"Values": abi.VecValue{
				abi.NewField(1), abi.NewField(2), abi.NewField(3),
			}},
		},
	}
}

// WriteWorkspace writes a workspace with the given members into dir. For
// each member it builds the program artifact, writes the verifier inputs and
// stores a proof, so the workspace is ready to generate artifacts with the
// gnark backend.
func WriteWorkspace(dir string, members []*Member) error {
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name)
	}
	manifest := &workspace.Manifest{Workspace: &workspace.WorkspaceConfig{Members: names}}
	if err := manifest.Write(dir); err != nil {
		return err
	}
	for _, m := range members {
		if err := writeMember(dir, m); err != nil {
			return fmt.Errorf("example %s: %w", m.Name, err)
		}
	}
	log.Infow("example workspace written", "dir", dir, "members", names)
	return nil
}

func writeMember(dir string, m *Member) error {
	root := filepath.Join(dir, m.Name)
	manifest := &workspace.Manifest{Package: &workspace.PackageConfig{Name: m.Name}}
	if err := manifest.Write(root); err != nil {
		return err
	}
	setup, err := circuits.Build(m.Name, m.Circuit)
	if err != nil {
		return err
	}
	target := &workspace.Target{Name: m.Name, RootDir: root}
	if err := setup.Program.Write(compiler.ProgramPath(target)); err != nil {
		return err
	}
	if err := inputs.Write(root, config.VerifierInputFile, inputs.FormatTOML, m.Inputs, nil); err != nil {
		return err
	}
	raw, err := setup.Prove(m.Assignment)
	if err != nil {
		return err
	}
	return proof.Save(filepath.Join(dir, config.ProofsDir, m.Name+"."+config.ProofExt), raw)
}
