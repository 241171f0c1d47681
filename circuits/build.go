package circuits

import (
	"bytes"
	"fmt"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/fxamacker/cbor/v2"
	"github.com/vocdoni/proof-artifacts/abi"
	"github.com/vocdoni/proof-artifacts/backend"
	"github.com/vocdoni/proof-artifacts/log"
)

// GnarkBackend is the name of the gnark groth16 backend, written into the
// programs built here.
const GnarkBackend = "gnark"

// Envelope is the bytecode of a gnark program: the constraint system and the
// groth16 verifying key, both in gnark binary format.
type Envelope struct {
	Curve string `cbor:"0,keyasint"`
	CCS   []byte `cbor:"1,keyasint"`
	VK    []byte `cbor:"2,keyasint"`
}

// Marshal encodes the envelope using the CBOR core deterministic encoding,
// so the same keys always produce the same bytecode and program hash.
func (e *Envelope) Marshal() ([]byte, error) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	return em.Marshal(e)
}

// DecodeEnvelope decodes the bytecode of a gnark program.
func DecodeEnvelope(bytecode []byte) (*Envelope, error) {
	e := &Envelope{}
	if err := cbor.Unmarshal(bytecode, e); err != nil {
		return nil, fmt.Errorf("could not decode gnark program: %w", err)
	}
	if len(e.VK) == 0 {
		return nil, fmt.Errorf("gnark program without verifying key")
	}
	return e, nil
}

// Setup holds the result of building a gnark circuit: the program artifact
// and the keys of the groth16 trusted setup.
type Setup struct {
	Program      *Program
	CCS          constraint.ConstraintSystem
	ProvingKey   groth16.ProvingKey
	VerifyingKey groth16.VerifyingKey
}

// Build compiles the gnark circuit over BN254, runs the groth16 setup and
// returns the program artifact with the ABI derived from the circuit
// schema. The setup is not reproducible, every call returns new keys.
func Build(name string, circuit frontend.Circuit) (*Setup, error) {
	startTime := time.Now()
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, circuit)
	if err != nil {
		return nil, fmt.Errorf("could not compile circuit %s: %w", name, err)
	}
	log.Debugw("circuit compiled", "name", name,
		"constraints", ccs.GetNbConstraints(), "took", time.Since(startTime).String())

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("could not setup circuit %s: %w", name, err)
	}
	s, err := frontend.NewSchema(circuit)
	if err != nil {
		return nil, fmt.Errorf("could not get circuit schema: %w", err)
	}
	circuitABI, err := abi.FromGnarkSchema(s)
	if err != nil {
		return nil, err
	}

	var ccsBuf, vkBuf bytes.Buffer
	if _, err := ccs.WriteTo(&ccsBuf); err != nil {
		return nil, fmt.Errorf("could not encode constraint system: %w", err)
	}
	if _, err := vk.WriteRawTo(&vkBuf); err != nil {
		return nil, fmt.Errorf("could not encode verifying key: %w", err)
	}
	envelope := &Envelope{
		Curve: ecc.BN254.String(),
		CCS:   ccsBuf.Bytes(),
		VK:    vkBuf.Bytes(),
	}
	bytecode, err := envelope.Marshal()
	if err != nil {
		return nil, fmt.Errorf("could not encode gnark program: %w", err)
	}
	program := NewProgram(name, GnarkBackend, backend.R1CS, circuitABI, bytecode)
	log.Infow("circuit built", "name", name, "hash", program.Hash.String(),
		"took", time.Since(startTime).String())
	return &Setup{
		Program:      program,
		CCS:          ccs,
		ProvingKey:   pk,
		VerifyingKey: vk,
	}, nil
}

// Prove generates a groth16 proof of the assignment and returns it in gnark
// raw binary format, the proof format consumed by the gnark backend.
func (s *Setup) Prove(assignment frontend.Circuit) ([]byte, error) {
	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("could not build witness: %w", err)
	}
	proof, err := groth16.Prove(s.CCS, s.ProvingKey, w)
	if err != nil {
		return nil, fmt.Errorf("could not generate proof: %w", err)
	}
	var buf bytes.Buffer
	if _, err := proof.WriteRawTo(&buf); err != nil {
		return nil, fmt.Errorf("could not encode proof: %w", err)
	}
	return buf.Bytes(), nil
}
