package driver

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/vocdoni/proof-artifacts/log"
	"github.com/vocdoni/proof-artifacts/storage"
	"github.com/vocdoni/proof-artifacts/types"
)

// Reporter receives the artifacts of every target that succeeds. An error
// fails the target at the report stage and nothing of the target is
// published by any Committer.
type Reporter interface {
	Report(rc *RunContext, res *Result) error
}

// Committer is implemented by the reporters that publish in a second phase.
// Report only stages the output, Commit publishes it once every reporter
// staged the target, and Discard drops it when the target fails.
type Committer interface {
	Commit(rc *RunContext, res *Result) error
	Discard(rc *RunContext, res *Result)
}

// Finisher is implemented by the reporters that need the whole report once
// every target is processed.
type Finisher interface {
	Finish(rc *RunContext, report *Report) error
}

// ConsoleReporter prints the artifact triple of each target in the order
// proof as fields, vk hash, vk as fields. Fields are hex encoded.
type ConsoleReporter struct {
	Out io.Writer
}

func hexFields(fields []*types.BigInt) string {
	s := make([]string, len(fields))
	for i, f := range fields {
		s[i] = hexutil.EncodeBig(f.MathBigInt())
	}
	return "[" + strings.Join(s, ", ") + "]"
}

// Report checks the artifacts can be printed, they are printed on Commit.
func (r *ConsoleReporter) Report(_ *RunContext, res *Result) error {
	if res.Artifacts == nil || res.Artifacts.VKHash == nil {
		return fmt.Errorf("incomplete artifacts")
	}
	return nil
}

func (*ConsoleReporter) Discard(*RunContext, *Result) {}

func (r *ConsoleReporter) Commit(_ *RunContext, res *Result) error {
	a := res.Artifacts
	_, err := fmt.Fprintf(r.Out, "[%s] proof as fields: %s\n[%s] vk hash: %s\n[%s] vk as fields: %s\n",
		res.Target.Name, hexFields(a.ProofAsFields),
		res.Target.Name, hexutil.EncodeBig(a.VKHash.MathBigInt()),
		res.Target.Name, hexFields(a.VKAsFields))
	return err
}

// Finish prints a line per failed target.
func (r *ConsoleReporter) Finish(_ *RunContext, report *Report) error {
	for _, res := range report.Results {
		if res.Err == nil {
			continue
		}
		if _, err := fmt.Fprintf(r.Out, "%v\n", res.Err); err != nil {
			return err
		}
	}
	return nil
}

// StorageReporter persists the artifacts of each target and the summary of
// the run.
type StorageReporter struct {
	Storage *storage.Storage
}

func (r *StorageReporter) Report(_ *RunContext, res *Result) error {
	if res.Artifacts == nil {
		return fmt.Errorf("nil artifacts")
	}
	return nil
}

func (*StorageReporter) Discard(*RunContext, *Result) {}

// Commit stores the artifacts in a single write transaction.
func (r *StorageReporter) Commit(rc *RunContext, res *Result) error {
	return r.Storage.SetArtifacts(&storage.TargetArtifacts{
		Target:      res.Target.Name,
		RunID:       rc.ID,
		Backend:     rc.Backend,
		ProgramHash: res.ProgramHash,
		CreatedAt:   time.Now(),
		Artifacts:   res.Artifacts,
	})
}

func (r *StorageReporter) Finish(rc *RunContext, report *Report) error {
	run := &storage.Run{
		ID:        rc.ID,
		Workspace: rc.Workspace.RootDir,
		Backend:   rc.Backend,
		StartedAt: rc.StartedAt,
		Failed:    report.Failed(),
	}
	for _, res := range report.Results {
		run.Targets = append(run.Targets, res.Target.Name)
	}
	return r.Storage.SetRun(run)
}

// FieldsFile is the content of the <proofs dir>/<target>.fields.json files
// written by FileReporter.
type FieldsFile struct {
	Target        string          `json:"target"`
	RunID         uuid.UUID       `json:"runId"`
	ProofAsFields []*types.BigInt `json:"proofAsFields"`
	VKHash        *types.BigInt   `json:"vkHash"`
	VKAsFields    []*types.BigInt `json:"vkAsFields"`
}

// FileReporter writes the artifact triple of each target next to its proof.
// The file is written under a temporary name and renamed on Commit.
type FileReporter struct{}

func stagedPath(rc *RunContext, res *Result) string {
	return rc.Workspace.FieldsPath(res.Target) + ".tmp"
}

func (FileReporter) Report(rc *RunContext, res *Result) error {
	data, err := json.MarshalIndent(&FieldsFile{
		Target:        res.Target.Name,
		RunID:         rc.ID,
		ProofAsFields: res.Artifacts.ProofAsFields,
		VKHash:        res.Artifacts.VKHash,
		VKAsFields:    res.Artifacts.VKAsFields,
	}, "", "  ")
	if err != nil {
		return err
	}
	path := stagedPath(rc, res)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (FileReporter) Commit(rc *RunContext, res *Result) error {
	return os.Rename(stagedPath(rc, res), rc.Workspace.FieldsPath(res.Target))
}

func (FileReporter) Discard(rc *RunContext, res *Result) {
	if err := os.Remove(stagedPath(rc, res)); err != nil && !os.IsNotExist(err) {
		log.Warnw("could not remove staged fields file", "target", res.Target.Name, "error", err.Error())
	}
}
