// Package compiler defines the contract of the compiler collaborator, which
// turns a build target into a compiled program, and ships an adapter that
// loads already compiled program artifacts.
package compiler

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/vocdoni/proof-artifacts/abi"
	"github.com/vocdoni/proof-artifacts/backend"
	"github.com/vocdoni/proof-artifacts/circuits"
	"github.com/vocdoni/proof-artifacts/config"
	"github.com/vocdoni/proof-artifacts/log"
	"github.com/vocdoni/proof-artifacts/workspace"
)

// CompiledProgram is the output of the compiler: the circuit description in
// the format expected by the backend and the ABI of the circuit.
type CompiledProgram struct {
	Name    string
	Hash    []byte
	ABI     *abi.ABI
	Circuit []byte
}

// Options are the compile options forwarded to the compiler.
type Options struct {
	// Backend is the name of the backend the program must target. If empty,
	// any backend is accepted.
	Backend string
}

// Compiler compiles a build target for a backend with the given language
// and opcode support.
type Compiler interface {
	Compile(target *workspace.Target, opts Options, lang backend.Language, opcodes backend.OpcodeSupport) (*CompiledProgram, error)
}

// ArtifactLoader is a Compiler that loads precompiled program artifacts,
// either from <target root>/target/<name>.json or, when the target declares a
// remote program, from the local artifact cache.
type ArtifactLoader struct{}

var _ Compiler = ArtifactLoader{}

// ProgramPath returns the path of the local program artifact of target.
func ProgramPath(target *workspace.Target) string {
	return filepath.Join(target.RootDir, config.TargetDir, target.Name+"."+config.ProgramExt)
}

// Compile loads the program artifact of target and checks it can be consumed
// by a backend with the given language.
func (ArtifactLoader) Compile(target *workspace.Target, opts Options, lang backend.Language,
	opcodes backend.OpcodeSupport,
) (*CompiledProgram, error) {
	program, err := loadProgram(target)
	if err != nil {
		return nil, err
	}
	if program.Language != lang {
		return nil, fmt.Errorf("program %s uses language %s, backend expects %s", target.Name, program.Language, lang)
	}
	if opts.Backend != "" && program.Backend != opts.Backend {
		return nil, fmt.Errorf("program %s was built for backend %s, not %s", target.Name, program.Backend, opts.Backend)
	}
	log.Debugw("program loaded", "target", target.Name, "hash", program.Hash.String(),
		"backend", program.Backend, "opcodes", opcodes.String())
	return &CompiledProgram{
		Name:    target.Name,
		Hash:    program.Hash,
		ABI:     &program.ABI,
		Circuit: program.Bytecode,
	}, nil
}

func loadProgram(target *workspace.Target) (*circuits.Program, error) {
	path := ProgramPath(target)
	program, err := circuits.ReadProgram(path)
	if err == nil {
		return program, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not load program %s: %w", path, err)
	}
	if target.ProgramURL == "" {
		return nil, fmt.Errorf("program of %s not found at %s", target.Name, path)
	}
	artifact := target.ProgramArtifact()
	if err := artifact.Load(); err != nil {
		if errors.Is(err, circuits.ErrNotCached) {
			return nil, fmt.Errorf("program of %s not downloaded, run fetch first: %w", target.Name, err)
		}
		return nil, err
	}
	return circuits.ParseProgram(artifact.Content)
}
