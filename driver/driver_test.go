package driver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/arbo/memdb"
	"github.com/vocdoni/proof-artifacts/abi"
	"github.com/vocdoni/proof-artifacts/abi/inputs"
	"github.com/vocdoni/proof-artifacts/backend"
	"github.com/vocdoni/proof-artifacts/backend/gnark"
	"github.com/vocdoni/proof-artifacts/circuits/example"
	"github.com/vocdoni/proof-artifacts/compiler"
	"github.com/vocdoni/proof-artifacts/config"
	"github.com/vocdoni/proof-artifacts/proof"
	"github.com/vocdoni/proof-artifacts/storage"
	"github.com/vocdoni/proof-artifacts/types"
	"github.com/vocdoni/proof-artifacts/workspace"
)

// fakeCompiler returns a program with a single public field parameter, or
// an error for the targets in fail.
type fakeCompiler struct {
	fail map[string]bool
	// privateOnly returns programs without public parameters
	privateOnly bool
}

func (f *fakeCompiler) Compile(target *workspace.Target, _ compiler.Options, _ backend.Language,
	_ backend.OpcodeSupport,
) (*compiler.CompiledProgram, error) {
	if f.fail[target.Name] {
		return nil, fmt.Errorf("cannot compile %s", target.Name)
	}
	if f.privateOnly {
		return &compiler.CompiledProgram{
			Name: target.Name,
			ABI: &abi.ABI{Parameters: []abi.Parameter{
				{Name: "secret", Type: abi.Type{Kind: abi.KindField}, Visibility: abi.Private},
			}},
			Circuit: []byte(target.Name),
		}, nil
	}
	return &compiler.CompiledProgram{
		Name: target.Name,
		Hash: []byte(target.Name),
		ABI: &abi.ABI{Parameters: []abi.Parameter{
			{Name: "x", Type: abi.Type{Kind: abi.KindField}, Visibility: abi.Public},
			{Name: "secret", Type: abi.Type{Kind: abi.KindField}, Visibility: abi.Private},
		}},
		Circuit: []byte(target.Name),
	}, nil
}

// fakeBackend returns the proof bytes and the public inputs as artifacts.
type fakeBackend struct {
	capsErr error
	calls   []string
}

func (*fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Capabilities() (backend.Language, backend.OpcodeSupport, error) {
	return backend.R1CS, backend.OpcodeSupport{Opcodes: []backend.Opcode{backend.OpArithmetic}}, f.capsErr
}

func (f *fakeBackend) MaterializeArtifacts(circuit, raw []byte, public []abi.FieldElement) (*backend.Artifacts, error) {
	f.calls = append(f.calls, string(circuit))
	if len(raw) == 0 {
		return nil, backend.NewError("fake", backend.StageDecodeProof, "empty proof")
	}
	a := &backend.Artifacts{VKHash: types.NewInt(int64(raw[0]))}
	for _, b := range raw {
		a.ProofAsFields = append(a.ProofAsFields, types.NewInt(int64(b)))
	}
	for _, x := range abi.FieldsToBigInts(public) {
		a.VKAsFields = append(a.VKAsFields, types.NewBigInt(x))
	}
	return a, nil
}

// testWorkspace returns a workspace with the given targets, each one with
// its input file. Proofs are stored only for the targets in proofs.
func testWorkspace(c *qt.C, names []string, proofs map[string][]byte) *workspace.Workspace {
	ws := &workspace.Workspace{RootDir: c.TempDir()}
	for i, name := range names {
		target := &workspace.Target{Name: name, RootDir: filepath.Join(ws.RootDir, name)}
		ws.Members = append(ws.Members, target)
		c.Assert(inputs.Write(target.RootDir, config.VerifierInputFile, inputs.FormatTOML,
			abi.InputMap{"x": abi.NewField(int64(i + 10))}, nil), qt.IsNil)
		if p, ok := proofs[name]; ok {
			c.Assert(proof.Save(ws.ProofPath(target), p), qt.IsNil)
		}
	}
	ws.Targets = ws.Members
	return ws
}

func assertTargetError(c *qt.C, err error, target string, stage Stage) {
	var targetErr *TargetError
	c.Assert(errors.As(err, &targetErr), qt.IsTrue, qt.Commentf("got %v", err))
	c.Assert(targetErr.Target, qt.Equals, target)
	c.Assert(targetErr.Stage, qt.Equals, stage)
}

func TestRunPartialFailure(t *testing.T) {
	c := qt.New(t)
	ws := testWorkspace(c, []string{"one", "two", "three"}, map[string][]byte{
		"one":   {0x01, 0x02},
		"three": {0x03},
	})
	b := &fakeBackend{}
	report, err := New(b, &fakeCompiler{}).Run(ws)
	c.Assert(err, qt.IsNil)
	c.Assert(report.Results, qt.HasLen, 3)

	one, two, three := report.Results[0], report.Results[1], report.Results[2]
	c.Assert(one.Err, qt.IsNil)
	c.Assert(one.Artifacts.ProofAsFields, qt.DeepEquals, []*types.BigInt{types.NewInt(1), types.NewInt(2)})
	c.Assert(one.Artifacts.VKAsFields, qt.DeepEquals, []*types.BigInt{types.NewInt(10)})
	c.Assert(three.Err, qt.IsNil)
	c.Assert(three.Artifacts.VKAsFields, qt.DeepEquals, []*types.BigInt{types.NewInt(12)})

	c.Assert(two.Artifacts, qt.IsNil)
	assertTargetError(c, two.Err, "two", StageLoadProof)
	var notFound *proof.NotFoundError
	c.Assert(errors.As(two.Err, &notFound), qt.IsTrue)

	// the backend is never called for the failed target
	c.Assert(b.calls, qt.DeepEquals, []string{"one", "three"})
	c.Assert(report.Failed(), qt.DeepEquals, []string{"two"})
	c.Assert(errors.As(report.Err(), &notFound), qt.IsTrue)
}

func TestRunStages(t *testing.T) {
	c := qt.New(t)
	ws := testWorkspace(c, []string{"compile", "encode", "materialize", "ok"}, map[string][]byte{
		"compile":     {1},
		"encode":      {1},
		"materialize": {},
		"ok":          {7},
	})
	// a missing input fails the encode stage
	c.Assert(os.WriteFile(inputs.FilePath(ws.Targets[1].RootDir, config.VerifierInputFile, inputs.FormatTOML),
		[]byte("secret = 1\n"), 0o644), qt.IsNil)

	report, err := New(&fakeBackend{}, &fakeCompiler{fail: map[string]bool{"compile": true}}).Run(ws)
	c.Assert(err, qt.IsNil)
	assertTargetError(c, report.Results[0].Err, "compile", StageCompile)
	assertTargetError(c, report.Results[1].Err, "encode", StageEncode)
	var missing *abi.MissingInputError
	c.Assert(errors.As(report.Results[1].Err, &missing), qt.IsTrue)
	c.Assert(missing.Name, qt.Equals, "x")
	assertTargetError(c, report.Results[2].Err, "materialize", StageMaterialize)
	var backendErr *backend.BackendError
	c.Assert(errors.As(report.Results[2].Err, &backendErr), qt.IsTrue)
	c.Assert(report.Results[3].Err, qt.IsNil)
	c.Assert(report.Failed(), qt.DeepEquals, []string{"compile", "encode", "materialize"})
}

func TestRunCapabilitiesFailure(t *testing.T) {
	c := qt.New(t)
	ws := testWorkspace(c, []string{"one"}, map[string][]byte{"one": {1}})
	b := &fakeBackend{capsErr: errors.New("backend not installed")}
	_, err := New(b, &fakeCompiler{}).Run(ws)
	c.Assert(err, qt.ErrorMatches, ".*backend not installed")
	c.Assert(b.calls, qt.HasLen, 0)
}

type failingReporter struct{}

func (failingReporter) Report(*RunContext, *Result) error { return errors.New("disk full") }

// failingCommitter stages fine but cannot publish.
type failingCommitter struct {
	discarded int
}

func (*failingCommitter) Report(*RunContext, *Result) error { return nil }

func (*failingCommitter) Commit(*RunContext, *Result) error { return errors.New("db closed") }

func (f *failingCommitter) Discard(*RunContext, *Result) { f.discarded++ }

type failingFinisher struct{}

func (failingFinisher) Report(*RunContext, *Result) error { return nil }

func (failingFinisher) Finish(*RunContext, *Report) error { return errors.New("run summary lost") }

func TestRunReporters(t *testing.T) {
	c := qt.New(t)
	ws := testWorkspace(c, []string{"one", "two"}, map[string][]byte{"one": {0xab}})
	stg := storage.New(memdb.New())
	var out bytes.Buffer

	report, err := New(&fakeBackend{}, &fakeCompiler{}, WithReporters(
		&ConsoleReporter{Out: &out},
		FileReporter{},
		&StorageReporter{Storage: stg},
	)).Run(ws)
	c.Assert(err, qt.IsNil)
	c.Assert(report.Failed(), qt.DeepEquals, []string{"two"})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	c.Assert(lines, qt.HasLen, 4)
	c.Assert(lines[0], qt.Equals, "[one] proof as fields: [0xab]")
	c.Assert(lines[1], qt.Equals, "[one] vk hash: 0xab")
	c.Assert(lines[2], qt.Equals, "[one] vk as fields: [0xa]")
	c.Assert(lines[3], qt.Matches, `\[two\] load-proof failed: .*`)

	data, err := os.ReadFile(ws.FieldsPath(ws.Targets[0]))
	c.Assert(err, qt.IsNil)
	var file FieldsFile
	c.Assert(json.Unmarshal(data, &file), qt.IsNil)
	c.Assert(file.RunID, qt.Equals, report.RunID)
	c.Assert(file.VKHash.Equal(types.NewInt(0xab)), qt.IsTrue)
	_, err = os.Stat(ws.FieldsPath(ws.Targets[1]))
	c.Assert(os.IsNotExist(err), qt.IsTrue)

	stored, err := stg.Artifacts("one")
	c.Assert(err, qt.IsNil)
	c.Assert(stored.RunID, qt.Equals, report.RunID)
	c.Assert(stored.Backend, qt.Equals, "fake")
	c.Assert(stored.Artifacts.Equal(report.Results[0].Artifacts), qt.IsTrue)
	run, err := stg.Run(report.RunID)
	c.Assert(err, qt.IsNil)
	c.Assert(run.Targets, qt.DeepEquals, []string{"one", "two"})
	c.Assert(run.Failed, qt.DeepEquals, []string{"two"})

	// a reporter failure fails the target
	report, err = New(&fakeBackend{}, &fakeCompiler{}, WithReporters(failingReporter{})).Run(ws)
	c.Assert(err, qt.IsNil)
	assertTargetError(c, report.Results[0].Err, "one", StageReport)
	c.Assert(report.Results[0].Artifacts, qt.IsNil)
}

func TestRunReporterFailurePublishesNothing(t *testing.T) {
	c := qt.New(t)
	ws := testWorkspace(c, []string{"one"}, map[string][]byte{"one": {0xab}})
	fieldsPath := ws.FieldsPath(ws.Targets[0])
	var out bytes.Buffer

	report, err := New(&fakeBackend{}, &fakeCompiler{}, WithReporters(
		&ConsoleReporter{Out: &out},
		FileReporter{},
		failingReporter{},
	)).Run(ws)
	c.Assert(err, qt.IsNil)
	assertTargetError(c, report.Results[0].Err, "one", StageReport)
	c.Assert(report.Results[0].Artifacts, qt.IsNil)
	// only the failure line of the finished run is printed
	c.Assert(strings.TrimSpace(out.String()), qt.Equals, "[one] report failed: disk full")
	_, err = os.Stat(fieldsPath)
	c.Assert(os.IsNotExist(err), qt.IsTrue)
	_, err = os.Stat(fieldsPath + ".tmp")
	c.Assert(os.IsNotExist(err), qt.IsTrue)

	// a failed commit discards what the later reporters staged
	out.Reset()
	committer := &failingCommitter{}
	report, err = New(&fakeBackend{}, &fakeCompiler{}, WithReporters(
		committer,
		FileReporter{},
		&ConsoleReporter{Out: &out},
	)).Run(ws)
	c.Assert(err, qt.IsNil)
	assertTargetError(c, report.Results[0].Err, "one", StageReport)
	c.Assert(committer.discarded, qt.Equals, 1)
	c.Assert(strings.Contains(out.String(), "proof as fields"), qt.IsFalse)
	_, err = os.Stat(fieldsPath)
	c.Assert(os.IsNotExist(err), qt.IsTrue)
	_, err = os.Stat(fieldsPath + ".tmp")
	c.Assert(os.IsNotExist(err), qt.IsTrue)
}

func TestRunFinishError(t *testing.T) {
	c := qt.New(t)
	ws := testWorkspace(c, []string{"one"}, map[string][]byte{"one": {0xab}})

	report, err := New(&fakeBackend{}, &fakeCompiler{}, WithReporters(failingFinisher{})).Run(ws)
	c.Assert(err, qt.IsNil)
	c.Assert(report.Failed(), qt.HasLen, 0)
	c.Assert(report.FinishErr, qt.ErrorMatches, ".*run summary lost")
	c.Assert(report.Err(), qt.ErrorMatches, ".*run summary lost")
}

func TestRunWithoutPublicInputs(t *testing.T) {
	c := qt.New(t)
	ws := testWorkspace(c, []string{"one"}, map[string][]byte{"one": {0xab}})
	target := ws.Targets[0]
	c.Assert(os.Remove(inputs.FilePath(target.RootDir, config.VerifierInputFile, inputs.FormatTOML)), qt.IsNil)

	report, err := New(&fakeBackend{}, &fakeCompiler{privateOnly: true}).Run(ws)
	c.Assert(err, qt.IsNil)
	c.Assert(report.Err(), qt.IsNil)
	c.Assert(report.Results[0].PublicInputs, qt.HasLen, 0)
	c.Assert(report.Results[0].Artifacts.VKAsFields, qt.HasLen, 0)

	// a public parameter still needs the input file
	report, err = New(&fakeBackend{}, &fakeCompiler{}).Run(ws)
	c.Assert(err, qt.IsNil)
	assertTargetError(c, report.Results[0].Err, "one", StageEncode)
	var notFound *inputs.NotFoundError
	c.Assert(errors.As(report.Results[0].Err, &notFound), qt.IsTrue)
}

func TestRunGnarkWorkspace(t *testing.T) {
	c := qt.New(t)
	dir := c.TempDir()
	c.Assert(example.WriteWorkspace(dir, example.Members()), qt.IsNil)

	ws, err := workspace.Resolve(filepath.Join(dir, config.ManifestFile), workspace.All)
	c.Assert(err, qt.IsNil)
	d := New(gnark.New(backend.PoseidonHasher{}), compiler.ArtifactLoader{},
		WithCompileOptions(compiler.Options{Backend: "gnark"}))
	report, err := d.Run(ws)
	c.Assert(err, qt.IsNil)
	c.Assert(report.Err(), qt.IsNil)
	c.Assert(report.Results, qt.HasLen, 2)
	c.Assert(report.Results[0].Target.Name, qt.Equals, "square")
	c.Assert(abi.FieldsToStrings(report.Results[0].PublicInputs), qt.DeepEquals, []string{"25", "6"})
	c.Assert(report.Results[0].Artifacts.ProofAsFields, qt.HasLen, 8)
	c.Assert(report.Results[1].Artifacts.ProofAsFields, qt.HasLen, 12)

	// a second run over the same files gives the same artifacts
	again, err := d.Run(ws)
	c.Assert(err, qt.IsNil)
	for i := range again.Results {
		c.Assert(again.Results[i].Artifacts.Equal(report.Results[i].Artifacts), qt.IsTrue)
	}
	c.Assert(again.RunID, qt.Not(qt.Equals), report.RunID)

	// a wrong public input fails the target at verification
	c.Assert(inputs.Write(ws.Targets[0].RootDir, config.VerifierInputFile, inputs.FormatTOML,
		abi.InputMap{"Square": abi.NewField(25), "Next": abi.NewField(7)}, nil), qt.IsNil)
	report, err = d.Run(ws)
	c.Assert(err, qt.IsNil)
	assertTargetError(c, report.Results[0].Err, "square", StageMaterialize)
	c.Assert(report.Results[1].Err, qt.IsNil)
}
