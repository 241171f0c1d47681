package backend

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	groth16_bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/vocdoni/proof-artifacts/types"
)

// The encoders below follow the word order of the solidity verifiers: every
// coordinate is a 32 byte word and the coordinates of G2 points are written
// as (A1, A0), the imaginary part first.

func g1Fields(p *bn254.G1Affine) []*types.BigInt {
	return []*types.BigInt{
		(*types.BigInt)(p.X.BigInt(new(big.Int))),
		(*types.BigInt)(p.Y.BigInt(new(big.Int))),
	}
}

func g2Fields(p *bn254.G2Affine) []*types.BigInt {
	return []*types.BigInt{
		(*types.BigInt)(p.X.A1.BigInt(new(big.Int))),
		(*types.BigInt)(p.X.A0.BigInt(new(big.Int))),
		(*types.BigInt)(p.Y.A1.BigInt(new(big.Int))),
		(*types.BigInt)(p.Y.A0.BigInt(new(big.Int))),
	}
}

// ProofFieldsBN254 returns the groth16 proof as field elements: A, B and C,
// followed by the commitments and their proof of knowledge when the circuit
// uses commitments.
func ProofFieldsBN254(proof *groth16_bn254.Proof) ([]*types.BigInt, error) {
	if proof == nil {
		return nil, fmt.Errorf("nil proof")
	}
	fields := make([]*types.BigInt, 0, 8+2*len(proof.Commitments)+2)
	fields = append(fields, g1Fields(&proof.Ar)...)
	fields = append(fields, g2Fields(&proof.Bs)...)
	fields = append(fields, g1Fields(&proof.Krs)...)
	if len(proof.Commitments) == 0 {
		return fields, nil
	}
	for i := range proof.Commitments {
		fields = append(fields, g1Fields(&proof.Commitments[i])...)
	}
	return append(fields, g1Fields(&proof.CommitmentPok)...), nil
}

// VKFieldsBN254 returns the groth16 verification key as field elements:
// alpha (G1), beta, gamma and delta (G2) and the points of the public input
// linear combination (K).
func VKFieldsBN254(vk *groth16_bn254.VerifyingKey) ([]*types.BigInt, error) {
	if vk == nil {
		return nil, fmt.Errorf("nil verifying key")
	}
	if len(vk.G1.K) == 0 {
		return nil, fmt.Errorf("verifying key without public input points")
	}
	fields := make([]*types.BigInt, 0, 14+2*len(vk.G1.K))
	fields = append(fields, g1Fields(&vk.G1.Alpha)...)
	fields = append(fields, g2Fields(&vk.G2.Beta)...)
	fields = append(fields, g2Fields(&vk.G2.Gamma)...)
	fields = append(fields, g2Fields(&vk.G2.Delta)...)
	for i := range vk.G1.K {
		fields = append(fields, g1Fields(&vk.G1.K[i])...)
	}
	return fields, nil
}
