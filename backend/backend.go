// Package backend defines the contract every proving backend adapter
// fulfills to turn a compiled circuit, a proof and its public inputs into
// the artifact triple consumed by external verifiers: the proof as field
// elements, the hash of the verification key and the verification key as
// field elements.
package backend

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/vocdoni/arbo"
	"github.com/vocdoni/proof-artifacts/abi"
	"github.com/vocdoni/proof-artifacts/types"
)

// SerializedFieldSize is the size in bytes of a serialized field element.
const SerializedFieldSize = 32

// Language is the constraint system language a backend consumes.
type Language string

const (
	R1CS  Language = "r1cs"
	PLONK Language = "plonk"
)

// Opcode is a family of circuit operations a backend may support natively.
type Opcode string

const (
	OpArithmetic Opcode = "arithmetic"
	OpRange      Opcode = "range"
	OpCommitment Opcode = "commitment"
)

// OpcodeSupport is the set of opcodes supported by a backend.
type OpcodeSupport struct {
	Opcodes []Opcode
}

// Supports reports whether op is part of the set.
func (s OpcodeSupport) Supports(op Opcode) bool {
	return slices.Contains(s.Opcodes, op)
}

func (s OpcodeSupport) String() string {
	ops := make([]string, len(s.Opcodes))
	for i, op := range s.Opcodes {
		ops[i] = string(op)
	}
	return strings.Join(ops, ",")
}

// Backend is a proving backend adapter. Implementations must be
// deterministic: the same circuit, proof and public inputs always produce
// the same artifacts. Every failure is reported as a *BackendError.
type Backend interface {
	// Name identifies the backend, e.g. in the CLI flags.
	Name() string
	// Capabilities returns the constraint language and the opcodes the
	// backend supports, used to configure the compiler.
	Capabilities() (Language, OpcodeSupport, error)
	// MaterializeArtifacts verifies proof against the circuit and the
	// public inputs and returns the artifact triple.
	MaterializeArtifacts(circuit, proof []byte, publicInputs []abi.FieldElement) (*Artifacts, error)
}

// Error stages of a backend.
const (
	StageCapabilities  = "capabilities"
	StageDecodeCircuit = "decode-circuit"
	StageDecodeProof   = "decode-proof"
	StageVerify        = "verify"
	StageProofFields   = "proof-fields"
	StageVKFields      = "vk-fields"
	StageVKHash        = "vk-hash"
)

// BackendError is the error returned by backends, it identifies the stage
// of the backend that failed.
type BackendError struct {
	Backend string
	Stage   string
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s failed at %s: %s", e.Backend, e.Stage, e.Message)
}

// NewError returns a *BackendError of backend at stage, with the message
// formatted as fmt.Sprintf does.
func NewError(backend, stage, format string, args ...any) *BackendError {
	return &BackendError{Backend: backend, Stage: stage, Message: fmt.Sprintf(format, args...)}
}

// Artifacts is the artifact triple of a proof. The order of the elements of
// each sequence is fixed by the backend that produced it.
type Artifacts struct {
	ProofAsFields []*types.BigInt `json:"proofAsFields" cbor:"0,keyasint"`
	VKHash        *types.BigInt   `json:"vkHash" cbor:"1,keyasint"`
	VKAsFields    []*types.BigInt `json:"vkAsFields" cbor:"2,keyasint"`
}

var _ types.Serializer[*types.BigInt] = (*Artifacts)(nil)

// Serialize returns the elements of the triple in output order: the proof,
// the verification key hash and the verification key.
func (a *Artifacts) Serialize() []*types.BigInt {
	res := make([]*types.BigInt, 0, len(a.ProofAsFields)+1+len(a.VKAsFields))
	res = append(res, a.ProofAsFields...)
	res = append(res, a.VKHash)
	return append(res, a.VKAsFields...)
}

// Bytes returns the serialized triple, each element encoded in
// SerializedFieldSize bytes.
func (a *Artifacts) Bytes() []byte {
	buf := bytes.Buffer{}
	for _, x := range a.Serialize() {
		buf.Write(arbo.BigIntToBytes(SerializedFieldSize, x.MathBigInt()))
	}
	return buf.Bytes()
}

// Equal reports whether both triples hold the same elements.
func (a *Artifacts) Equal(b *Artifacts) bool {
	if a == nil || b == nil {
		return a == b
	}
	as, bs := a.Serialize(), b.Serialize()
	if len(as) != len(bs) || len(a.ProofAsFields) != len(b.ProofAsFields) {
		return false
	}
	for i := range as {
		if !as[i].Equal(bs[i]) {
			return false
		}
	}
	return true
}
