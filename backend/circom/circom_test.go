package circom

import (
	"bytes"
	"errors"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/proof-artifacts/abi"
	"github.com/vocdoni/proof-artifacts/backend"
	"github.com/vocdoni/proof-artifacts/backend/gnark"
	"github.com/vocdoni/proof-artifacts/circuits"
	"github.com/vocdoni/proof-artifacts/circuits/example"
)

type fixture struct {
	setup     *circuits.Setup
	proof     []byte
	vkJSON    []byte
	proofJSON []byte
	inputs    []abi.FieldElement
}

func newFixture(c *qt.C) *fixture {
	setup, err := circuits.Build("square", &example.SquareCircuit{})
	c.Assert(err, qt.IsNil)
	raw, err := setup.Prove(example.SquareAssignment(3))
	c.Assert(err, qt.IsNil)
	proof := groth16.NewProof(ecc.BN254)
	_, err = proof.ReadFrom(bytes.NewReader(raw))
	c.Assert(err, qt.IsNil)

	vkJSON, proofJSON, err := ExportSnarkJS(setup.VerifyingKey, proof)
	c.Assert(err, qt.IsNil)
	return &fixture{
		setup:     setup,
		proof:     raw,
		vkJSON:    vkJSON,
		proofJSON: proofJSON,
		inputs:    []abi.FieldElement{abi.NewFieldElement(9), abi.NewFieldElement(4)},
	}
}

func assertStage(c *qt.C, err error, stage string) {
	var backendErr *backend.BackendError
	c.Assert(errors.As(err, &backendErr), qt.IsTrue, qt.Commentf("got %v", err))
	c.Assert(backendErr.Stage, qt.Equals, stage)
	c.Assert(backendErr.Backend, qt.Equals, BackendName)
}

func TestMaterializeArtifacts(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c)
	b := New(backend.PoseidonHasher{})

	lang, opcodes, err := b.Capabilities()
	c.Assert(err, qt.IsNil)
	c.Assert(lang, qt.Equals, backend.R1CS)
	c.Assert(opcodes.Supports(backend.OpRange), qt.IsFalse)

	artifacts, err := b.MaterializeArtifacts(f.vkJSON, f.proofJSON, f.inputs)
	c.Assert(err, qt.IsNil)
	c.Assert(artifacts.ProofAsFields, qt.HasLen, 8)
	c.Assert(artifacts.VKAsFields, qt.HasLen, 2+3*4+3*2)

	// the same proof materialized from the gnark encoding gives the same
	// artifacts
	native, err := gnark.New(backend.PoseidonHasher{}).MaterializeArtifacts(f.setup.Program.Bytecode, f.proof, f.inputs)
	c.Assert(err, qt.IsNil)
	c.Assert(artifacts.Equal(native), qt.IsTrue)
}

func TestMaterializeErrors(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c)
	b := New(backend.Keccak256Hasher{})

	_, err := b.MaterializeArtifacts([]byte("{"), f.proofJSON, f.inputs)
	assertStage(c, err, backend.StageDecodeCircuit)

	_, err = b.MaterializeArtifacts(f.vkJSON, []byte("not json"), f.inputs)
	assertStage(c, err, backend.StageDecodeProof)

	_, err = b.MaterializeArtifacts(f.vkJSON, f.proofJSON, f.inputs[:1])
	assertStage(c, err, backend.StageVerify)

	wrong := []abi.FieldElement{abi.NewFieldElement(9), abi.NewFieldElement(5)}
	_, err = b.MaterializeArtifacts(f.vkJSON, f.proofJSON, wrong)
	assertStage(c, err, backend.StageVerify)
}

func TestExportRejectsCommitments(t *testing.T) {
	c := qt.New(t)
	setup, err := circuits.Build("commit", &example.CommitCircuit{})
	c.Assert(err, qt.IsNil)
	raw, err := setup.Prove(example.CommitAssignment(1, 2, 3))
	c.Assert(err, qt.IsNil)
	proof := groth16.NewProof(ecc.BN254)
	_, err = proof.ReadFrom(bytes.NewReader(raw))
	c.Assert(err, qt.IsNil)

	_, _, err = ExportSnarkJS(setup.VerifyingKey, proof)
	c.Assert(err, qt.ErrorMatches, ".*commitments.*")
}
