package compiler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/proof-artifacts/abi"
	"github.com/vocdoni/proof-artifacts/backend"
	"github.com/vocdoni/proof-artifacts/circuits"
	"github.com/vocdoni/proof-artifacts/workspace"
)

var testABI = &abi.ABI{Parameters: []abi.Parameter{
	{Name: "x", Type: abi.Type{Kind: abi.KindField}, Visibility: abi.Public},
}}

func testProgram(name string) *circuits.Program {
	return circuits.NewProgram(name, "test", backend.R1CS, testABI, []byte{0xca, 0xfe})
}

func TestCompileLocal(t *testing.T) {
	c := qt.New(t)
	target := &workspace.Target{Name: "local", RootDir: c.TempDir()}
	c.Assert(testProgram("local").Write(ProgramPath(target)), qt.IsNil)

	compiled, err := ArtifactLoader{}.Compile(target, Options{}, backend.R1CS, backend.OpcodeSupport{})
	c.Assert(err, qt.IsNil)
	c.Assert(compiled.Name, qt.Equals, "local")
	c.Assert(compiled.Circuit, qt.DeepEquals, []byte{0xca, 0xfe})
	c.Assert(compiled.ABI.Parameters, qt.HasLen, 1)

	_, err = ArtifactLoader{}.Compile(target, Options{Backend: "test"}, backend.R1CS, backend.OpcodeSupport{})
	c.Assert(err, qt.IsNil)

	_, err = ArtifactLoader{}.Compile(target, Options{}, backend.PLONK, backend.OpcodeSupport{})
	c.Assert(err, qt.ErrorMatches, ".*uses language r1cs.*")

	_, err = ArtifactLoader{}.Compile(target, Options{Backend: "other"}, backend.R1CS, backend.OpcodeSupport{})
	c.Assert(err, qt.ErrorMatches, ".*built for backend test.*")
}

func TestCompileMissing(t *testing.T) {
	c := qt.New(t)
	target := &workspace.Target{Name: "missing", RootDir: c.TempDir()}
	_, err := ArtifactLoader{}.Compile(target, Options{}, backend.R1CS, backend.OpcodeSupport{})
	c.Assert(err, qt.ErrorMatches, "program of missing not found.*")
}

func TestCompileRemote(t *testing.T) {
	c := qt.New(t)
	circuits.BaseDir = c.TempDir()

	program := testProgram("remote")
	data, err := program.Marshal()
	c.Assert(err, qt.IsNil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	target := &workspace.Target{
		Name:        "remote",
		RootDir:     c.TempDir(),
		ProgramURL:  srv.URL + "/remote.json",
		ProgramHash: circuits.ContentHash(data),
	}
	_, err = ArtifactLoader{}.Compile(target, Options{}, backend.R1CS, backend.OpcodeSupport{})
	c.Assert(errors.Is(err, circuits.ErrNotCached), qt.IsTrue)

	c.Assert(target.ProgramArtifact().Fetch(context.Background()), qt.IsNil)
	compiled, err := ArtifactLoader{}.Compile(target, Options{}, backend.R1CS, backend.OpcodeSupport{})
	c.Assert(err, qt.IsNil)
	c.Assert([]byte(compiled.Hash), qt.DeepEquals, []byte(program.Hash))
}
