package circom

import (
	"encoding/json"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark/backend/groth16"
	groth16_bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/vocdoni/circom2gnark/parser"
)

func g1Strings(p *bn254.G1Affine) []string {
	return []string{p.X.String(), p.Y.String(), "1"}
}

func g2Strings(p *bn254.G2Affine) [][]string {
	return [][]string{
		{p.X.A0.String(), p.X.A1.String()},
		{p.Y.A0.String(), p.Y.A1.String()},
		{"1", "0"},
	}
}

// ExportSnarkJS encodes a gnark groth16 verifying key and proof in the JSON
// formats of snarkjs. Proofs of circuits with commitments cannot be
// expressed in those formats.
func ExportSnarkJS(vk groth16.VerifyingKey, proof groth16.Proof) (vkJSON, proofJSON []byte, err error) {
	typedVK, ok := vk.(*groth16_bn254.VerifyingKey)
	if !ok {
		return nil, nil, fmt.Errorf("unsupported verifying key type %T", vk)
	}
	typedProof, ok := proof.(*groth16_bn254.Proof)
	if !ok {
		return nil, nil, fmt.Errorf("unsupported proof type %T", proof)
	}
	if len(typedProof.Commitments) > 0 || len(typedVK.PublicAndCommitmentCommitted) > 0 {
		return nil, nil, fmt.Errorf("proofs with commitments are not supported by snarkjs")
	}

	circomVK := parser.CircomVerificationKey{
		Protocol: "groth16",
		Curve:    "bn128",
		NPublic:  len(typedVK.G1.K) - 1,
		VkAlpha1: g1Strings(&typedVK.G1.Alpha),
		VkBeta2:  g2Strings(&typedVK.G2.Beta),
		VkGamma2: g2Strings(&typedVK.G2.Gamma),
		VkDelta2: g2Strings(&typedVK.G2.Delta),
	}
	for i := range typedVK.G1.K {
		circomVK.IC = append(circomVK.IC, g1Strings(&typedVK.G1.K[i]))
	}
	if vkJSON, err = json.MarshalIndent(circomVK, "", "  "); err != nil {
		return nil, nil, err
	}

	circomProof := parser.CircomProof{
		PiA:      g1Strings(&typedProof.Ar),
		PiB:      g2Strings(&typedProof.Bs),
		PiC:      g1Strings(&typedProof.Krs),
		Protocol: "groth16",
	}
	if proofJSON, err = json.MarshalIndent(circomProof, "", "  "); err != nil {
		return nil, nil, err
	}
	return vkJSON, proofJSON, nil
}
