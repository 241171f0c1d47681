// Package circom implements the backend adapter for groth16 proofs generated
// with circom and snarkjs. The circuit description is the snarkjs
// verification key JSON and the proof is the snarkjs proof JSON. Both are
// converted to gnark with circom2gnark and verified before the artifacts are
// materialized.
package circom

import (
	"github.com/vocdoni/circom2gnark/parser"
	"github.com/vocdoni/proof-artifacts/abi"
	"github.com/vocdoni/proof-artifacts/backend"
	"github.com/vocdoni/proof-artifacts/log"
)

// BackendName identifies the circom backend in programs and on the CLI.
const BackendName = "circom"

// Backend is the circom groth16 backend.
type Backend struct {
	hasher backend.VKHasher
}

var _ backend.Backend = (*Backend)(nil)

// New returns a circom backend that hashes the verification keys with hasher.
func New(hasher backend.VKHasher) *Backend {
	return &Backend{hasher: hasher}
}

func (*Backend) Name() string {
	return BackendName
}

// Capabilities returns R1CS with plain arithmetic: range checks and
// commitments are compiled away by circom before the proof is generated.
func (*Backend) Capabilities() (backend.Language, backend.OpcodeSupport, error) {
	return backend.R1CS, backend.OpcodeSupport{Opcodes: []backend.Opcode{backend.OpArithmetic}}, nil
}

func (b *Backend) fail(stage, format string, args ...any) error {
	return backend.NewError(b.Name(), stage, format, args...)
}

// MaterializeArtifacts verifies the snarkjs proof against the verification
// key and the public inputs and returns its artifacts.
func (b *Backend) MaterializeArtifacts(circuit, proof []byte, publicInputs []abi.FieldElement) (*backend.Artifacts, error) {
	vk, err := parser.UnmarshalCircomVerificationKeyJSON(circuit)
	if err != nil {
		return nil, b.fail(backend.StageDecodeCircuit, "%v", err)
	}
	if vk.NPublic != len(vk.IC)-1 {
		return nil, b.fail(backend.StageDecodeCircuit, "nPublic is %d but there are %d IC points", vk.NPublic, len(vk.IC))
	}
	circomProof, err := parser.UnmarshalCircomProofJSON(proof)
	if err != nil {
		return nil, b.fail(backend.StageDecodeProof, "%v", err)
	}
	if len(publicInputs) != vk.NPublic {
		return nil, b.fail(backend.StageVerify, "expected %d public inputs, got %d", vk.NPublic, len(publicInputs))
	}
	// circom2gnark takes the public signals as snarkjs writes them
	gnarkProof, err := parser.ConvertCircomToGnark(circomProof, vk, abi.FieldsToStrings(publicInputs))
	if err != nil {
		return nil, b.fail(backend.StageDecodeProof, "could not convert proof: %v", err)
	}
	if ok, err := parser.VerifyProof(gnarkProof); !ok || err != nil {
		return nil, b.fail(backend.StageVerify, "proof verification failed: %v", err)
	}

	proofFields, err := backend.ProofFieldsBN254(gnarkProof.Proof)
	if err != nil {
		return nil, b.fail(backend.StageProofFields, "%v", err)
	}
	vkFields, err := backend.VKFieldsBN254(gnarkProof.VerifyingKey)
	if err != nil {
		return nil, b.fail(backend.StageVKFields, "%v", err)
	}
	vkHash, err := b.hasher.Hash(vkFields)
	if err != nil {
		return nil, b.fail(backend.StageVKHash, "%v", err)
	}
	log.Debugw("circom artifacts materialized", "proofFields", len(proofFields),
		"vkFields", len(vkFields), "hasher", b.hasher.Name())
	return &backend.Artifacts{
		ProofAsFields: proofFields,
		VKHash:        vkHash,
		VKAsFields:    vkFields,
	}, nil
}
