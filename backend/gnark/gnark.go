// Package gnark implements the backend adapter for groth16 proofs over BN254
// produced with consensys/gnark.
//
// The circuit description is the bytecode of a program built by
// circuits.Build, and the proof is a groth16 proof in gnark binary format.
// The proof is verified against the public inputs before the artifacts are
// materialized, so the artifacts of an invalid proof are never emitted.
package gnark

import (
	"bytes"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	groth16_bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/backend/witness"
	"github.com/vocdoni/proof-artifacts/abi"
	"github.com/vocdoni/proof-artifacts/backend"
	"github.com/vocdoni/proof-artifacts/circuits"
	"github.com/vocdoni/proof-artifacts/log"
)

// Backend is the gnark groth16 backend.
type Backend struct {
	hasher backend.VKHasher
}

var _ backend.Backend = (*Backend)(nil)

// New returns a gnark backend that hashes the verification keys with hasher.
func New(hasher backend.VKHasher) *Backend {
	return &Backend{hasher: hasher}
}

func (*Backend) Name() string {
	return circuits.GnarkBackend
}

func (*Backend) Capabilities() (backend.Language, backend.OpcodeSupport, error) {
	return backend.R1CS, backend.OpcodeSupport{Opcodes: []backend.Opcode{
		backend.OpArithmetic,
		backend.OpRange,
		backend.OpCommitment,
	}}, nil
}

func (b *Backend) fail(stage, format string, args ...any) error {
	return backend.NewError(b.Name(), stage, format, args...)
}

// MaterializeArtifacts verifies the proof and returns its artifacts.
func (b *Backend) MaterializeArtifacts(circuit, proof []byte, publicInputs []abi.FieldElement) (*backend.Artifacts, error) {
	vk, err := b.decodeCircuit(circuit)
	if err != nil {
		return nil, err
	}
	p := groth16.NewProof(ecc.BN254)
	n, err := p.ReadFrom(bytes.NewReader(proof))
	if err != nil {
		return nil, b.fail(backend.StageDecodeProof, "%v", err)
	}
	if n != int64(len(proof)) {
		return nil, b.fail(backend.StageDecodeProof, "%d trailing bytes after the proof", int64(len(proof))-n)
	}

	nbPublic := nbPublicInputs(vk)
	if len(publicInputs) != nbPublic {
		return nil, b.fail(backend.StageVerify, "expected %d public inputs, got %d", nbPublic, len(publicInputs))
	}
	publicWitness, err := witness.New(ecc.BN254.ScalarField())
	if err != nil {
		return nil, b.fail(backend.StageVerify, "%v", err)
	}
	values := make(chan any, len(publicInputs))
	for _, input := range publicInputs {
		values <- input
	}
	close(values)
	if err := publicWitness.Fill(nbPublic, 0, values); err != nil {
		return nil, b.fail(backend.StageVerify, "could not build public witness: %v", err)
	}
	if err := groth16.Verify(p, vk, publicWitness); err != nil {
		return nil, b.fail(backend.StageVerify, "%v", err)
	}

	typedProof, ok := p.(*groth16_bn254.Proof)
	if !ok {
		return nil, b.fail(backend.StageProofFields, "unexpected proof type %T", p)
	}
	proofFields, err := backend.ProofFieldsBN254(typedProof)
	if err != nil {
		return nil, b.fail(backend.StageProofFields, "%v", err)
	}
	vkFields, err := backend.VKFieldsBN254(vk)
	if err != nil {
		return nil, b.fail(backend.StageVKFields, "%v", err)
	}
	vkHash, err := b.hasher.Hash(vkFields)
	if err != nil {
		return nil, b.fail(backend.StageVKHash, "%v", err)
	}
	log.Debugw("gnark artifacts materialized", "proofFields", len(proofFields),
		"vkFields", len(vkFields), "hasher", b.hasher.Name())
	return &backend.Artifacts{
		ProofAsFields: proofFields,
		VKHash:        vkHash,
		VKAsFields:    vkFields,
	}, nil
}

// decodeCircuit decodes the program envelope and returns its verifying key,
// checking it matches the constraint system.
func (b *Backend) decodeCircuit(circuit []byte) (*groth16_bn254.VerifyingKey, error) {
	envelope, err := circuits.DecodeEnvelope(circuit)
	if err != nil {
		return nil, b.fail(backend.StageDecodeCircuit, "%v", err)
	}
	if envelope.Curve != ecc.BN254.String() {
		return nil, b.fail(backend.StageDecodeCircuit, "unsupported curve %q", envelope.Curve)
	}
	vk := &groth16_bn254.VerifyingKey{}
	if _, err := vk.ReadFrom(bytes.NewReader(envelope.VK)); err != nil {
		return nil, b.fail(backend.StageDecodeCircuit, "could not decode verifying key: %v", err)
	}
	if len(envelope.CCS) > 0 {
		ccs := groth16.NewCS(ecc.BN254)
		if _, err := ccs.ReadFrom(bytes.NewReader(envelope.CCS)); err != nil {
			return nil, b.fail(backend.StageDecodeCircuit, "could not decode constraint system: %v", err)
		}
		// the constraint system counts the constant one wire as public
		if nb := ccs.GetNbPublicVariables() - 1; nb != nbPublicInputs(vk) {
			return nil, b.fail(backend.StageDecodeCircuit,
				"constraint system has %d public inputs, verifying key %d", nb, nbPublicInputs(vk))
		}
	}
	return vk, nil
}

// nbPublicInputs returns the number of public inputs of the circuit. K holds
// a point for the constant one wire, one per public input and one per
// commitment.
func nbPublicInputs(vk *groth16_bn254.VerifyingKey) int {
	return len(vk.G1.K) - len(vk.PublicAndCommitmentCommitted) - 1
}
