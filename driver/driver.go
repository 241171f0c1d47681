// Package driver runs the artifact pipeline over the targets of a workspace.
// For every target, in workspace order, it compiles the program, encodes the
// public inputs, loads the proof and asks the backend to materialize the
// artifact triple. A failure aborts only the target where it happens.
package driver

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vocdoni/proof-artifacts/abi"
	"github.com/vocdoni/proof-artifacts/abi/inputs"
	"github.com/vocdoni/proof-artifacts/backend"
	"github.com/vocdoni/proof-artifacts/compiler"
	"github.com/vocdoni/proof-artifacts/config"
	"github.com/vocdoni/proof-artifacts/log"
	"github.com/vocdoni/proof-artifacts/proof"
	"github.com/vocdoni/proof-artifacts/types"
	"github.com/vocdoni/proof-artifacts/workspace"
)

// Stage is a step of the per target pipeline.
type Stage string

const (
	StageCompile     Stage = "compile"
	StageEncode      Stage = "encode"
	StageLoadProof   Stage = "load-proof"
	StageMaterialize Stage = "materialize"
	StageReport      Stage = "report"
)

// TargetError is the error that aborted a target, with the stage where it
// happened.
type TargetError struct {
	Target string
	Stage  Stage
	Err    error
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("[%s] %s failed: %v", e.Target, e.Stage, e.Err)
}

func (e *TargetError) Unwrap() error {
	return e.Err
}

// RunContext holds the state of a single run. It is created when the run
// starts and handed to every stage and reporter.
type RunContext struct {
	ID        uuid.UUID
	Workspace *workspace.Workspace
	Backend   string
	Language  backend.Language
	Opcodes   backend.OpcodeSupport
	StartedAt time.Time
}

// Result is the outcome of a target. Artifacts is set only if Err is nil.
type Result struct {
	Target       *workspace.Target
	ProgramHash  types.HexBytes
	PublicInputs []abi.FieldElement
	Artifacts    *backend.Artifacts
	Err          error
}

// Report collects the results of a run, one per target in workspace order.
type Report struct {
	RunID   uuid.UUID
	Results []*Result
	// FinishErr holds the errors of the reporters that could not finish the
	// run, such as a run summary that was not stored.
	FinishErr error
}

// Err returns the errors of every failed target and of the reporters that
// could not finish the run joined, or nil if there is none.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	if r.FinishErr != nil {
		errs = append(errs, r.FinishErr)
	}
	return errors.Join(errs...)
}

// Failed returns the names of the targets that failed.
func (r *Report) Failed() []string {
	failed := []string{}
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res.Target.Name)
		}
	}
	return failed
}

// Option configures a Driver.
type Option func(*Driver)

// WithReporters sets the reporters that receive the artifacts of every
// successful target.
func WithReporters(reporters ...Reporter) Option {
	return func(d *Driver) {
		d.reporters = append(d.reporters, reporters...)
	}
}

// WithVerifierName sets the name, without extension, of the input file read
// from every target root. Defaults to config.VerifierInputFile.
func WithVerifierName(name string) Option {
	return func(d *Driver) {
		d.verifierName = name
	}
}

// WithInputFormat sets the format of the input files. Defaults to TOML.
func WithInputFormat(format inputs.Format) Option {
	return func(d *Driver) {
		d.inputFormat = format
	}
}

// WithCompileOptions sets the options forwarded to the compiler.
func WithCompileOptions(opts compiler.Options) Option {
	return func(d *Driver) {
		d.compileOpts = opts
	}
}

// Driver runs the pipeline with a backend and a compiler.
type Driver struct {
	backend      backend.Backend
	compiler     compiler.Compiler
	reporters    []Reporter
	verifierName string
	inputFormat  inputs.Format
	compileOpts  compiler.Options
}

// New returns a driver that uses b to materialize the artifacts of the
// programs produced by c.
func New(b backend.Backend, c compiler.Compiler, opts ...Option) *Driver {
	d := &Driver{
		backend:      b,
		compiler:     c,
		verifierName: config.VerifierInputFile,
		inputFormat:  inputs.FormatTOML,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run processes the targets of ws one at a time. The returned error is not
// nil only when the whole run cannot proceed, the failures of single targets
// are in the report.
func (d *Driver) Run(ws *workspace.Workspace) (*Report, error) {
	if ws == nil {
		return nil, fmt.Errorf("nil workspace")
	}
	lang, opcodes, err := d.backend.Capabilities()
	if err != nil {
		return nil, fmt.Errorf("could not get %s backend capabilities: %w", d.backend.Name(), err)
	}
	rc := &RunContext{
		ID:        uuid.New(),
		Workspace: ws,
		Backend:   d.backend.Name(),
		Language:  lang,
		Opcodes:   opcodes,
		StartedAt: time.Now(),
	}
	log.Infow("run started", "id", rc.ID.String(), "backend", rc.Backend,
		"language", lang, "targets", len(ws.Targets))

	report := &Report{RunID: rc.ID}
	for _, target := range ws.Targets {
		res := d.processTarget(rc, target)
		if res.Err != nil {
			log.Warnw("target failed", "target", target.Name, "error", res.Err.Error())
		} else {
			log.Infow("target artifacts materialized", "target", target.Name,
				"proofFields", len(res.Artifacts.ProofAsFields), "vkHash", res.Artifacts.VKHash.String())
		}
		report.Results = append(report.Results, res)
	}

	var finishErrs []error
	for _, r := range d.reporters {
		if f, ok := r.(Finisher); ok {
			if err := f.Finish(rc, report); err != nil {
				log.Warnw("could not finish report", "run", rc.ID.String(), "error", err.Error())
				finishErrs = append(finishErrs, fmt.Errorf("could not finish report: %w", err))
			}
		}
	}
	report.FinishErr = errors.Join(finishErrs...)
	log.Infow("run finished", "id", rc.ID.String(), "failed", len(report.Failed()),
		"took", time.Since(rc.StartedAt).String())
	return report, nil
}

func (d *Driver) processTarget(rc *RunContext, target *workspace.Target) *Result {
	res := &Result{Target: target}
	fail := func(stage Stage, err error) *Result {
		res.Artifacts = nil
		res.Err = &TargetError{Target: target.Name, Stage: stage, Err: err}
		return res
	}

	program, err := d.compiler.Compile(target, d.compileOpts, rc.Language, rc.Opcodes)
	if err != nil {
		return fail(StageCompile, err)
	}
	res.ProgramHash = program.Hash

	publicInputs, err := d.encodeInputs(target, program.ABI)
	if err != nil {
		return fail(StageEncode, err)
	}
	res.PublicInputs = publicInputs

	raw, err := proof.Load(rc.Workspace.ProofPath(target))
	if err != nil {
		return fail(StageLoadProof, err)
	}

	artifacts, err := d.backend.MaterializeArtifacts(program.Circuit, raw, publicInputs)
	if err != nil {
		return fail(StageMaterialize, err)
	}
	res.Artifacts = artifacts

	if err := d.report(rc, res); err != nil {
		return fail(StageReport, err)
	}
	return res
}

// report hands res to the reporters in two phases. Every reporter stages the
// artifacts first, and only when all of them succeed the Committers publish
// them, in reporter order. On failure the staged output is discarded, so the
// artifacts of a failed target are not published.
func (d *Driver) report(rc *RunContext, res *Result) error {
	for i, r := range d.reporters {
		if err := r.Report(rc, res); err != nil {
			discard(rc, res, d.reporters[:i+1])
			return err
		}
	}
	for i, r := range d.reporters {
		c, ok := r.(Committer)
		if !ok {
			continue
		}
		if err := c.Commit(rc, res); err != nil {
			discard(rc, res, d.reporters[i:])
			return err
		}
	}
	return nil
}

func discard(rc *RunContext, res *Result, reporters []Reporter) {
	for _, r := range reporters {
		if c, ok := r.(Committer); ok {
			c.Discard(rc, res)
		}
	}
}

func (d *Driver) encodeInputs(target *workspace.Target, a *abi.ABI) ([]abi.FieldElement, error) {
	view, err := a.PublicView()
	if err != nil {
		return nil, err
	}
	if len(view.Parameters) == 0 && view.ReturnType == nil {
		// nothing public, the input file is not needed
		return []abi.FieldElement{}, nil
	}
	values, ret, err := inputs.Read(target.RootDir, d.verifierName, d.inputFormat, view)
	if err != nil {
		return nil, err
	}
	fields, err := view.Encode(values, ret)
	if err != nil {
		return nil, err
	}
	if log.Level() == log.LogLevelDebug {
		log.Debugw("public inputs encoded", "target", target.Name, "fields", abi.FieldsToStrings(fields))
	}
	return fields, nil
}
