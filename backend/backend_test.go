package backend

import (
	"errors"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	groth16_bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	qt "github.com/frankban/quicktest"
	"github.com/iden3/go-iden3-crypto/poseidon"
	"github.com/vocdoni/proof-artifacts/abi"
	"github.com/vocdoni/proof-artifacts/types"
)

func bigInts(n int) []*big.Int {
	res := make([]*big.Int, n)
	for i := range res {
		res[i] = big.NewInt(int64(i + 1))
	}
	return res
}

func TestMultiPoseidon(t *testing.T) {
	c := qt.New(t)

	_, err := MultiPoseidon()
	c.Assert(err, qt.IsNotNil)

	// up to one chunk it is a plain poseidon hash
	for _, n := range []int{1, 16} {
		inputs := bigInts(n)
		want, err := poseidon.Hash(inputs)
		c.Assert(err, qt.IsNil)
		got, err := MultiPoseidon(inputs...)
		c.Assert(err, qt.IsNil)
		c.Assert(got.Cmp(want), qt.Equals, 0)
	}

	// 17 inputs are two chunks
	inputs := bigInts(17)
	h1, err := poseidon.Hash(inputs[:16])
	c.Assert(err, qt.IsNil)
	h2, err := poseidon.Hash(inputs[16:])
	c.Assert(err, qt.IsNil)
	want, err := poseidon.Hash([]*big.Int{h1, h2})
	c.Assert(err, qt.IsNil)
	got, err := MultiPoseidon(inputs...)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Cmp(want), qt.Equals, 0)

	// more than 256 inputs need more than one level of chunks
	_, err = MultiPoseidon(bigInts(300)...)
	c.Assert(err, qt.IsNil)
}

func TestVKHashers(t *testing.T) {
	c := qt.New(t)
	fields := []*types.BigInt{types.NewInt(1), types.NewInt(2), types.NewInt(3)}
	// a base field coordinate bigger than the scalar field modulus
	fields = append(fields, types.NewBigInt(new(big.Int).Add(fr.Modulus(), big.NewInt(5))))

	for _, name := range []string{HasherPoseidon, HasherKeccak256} {
		c.Run(name, func(c *qt.C) {
			h, err := NewVKHasher(name)
			c.Assert(err, qt.IsNil)
			c.Assert(h.Name(), qt.Equals, name)
			first, err := h.Hash(fields)
			c.Assert(err, qt.IsNil)
			second, err := h.Hash(fields)
			c.Assert(err, qt.IsNil)
			c.Assert(first.Equal(second), qt.IsTrue)
			c.Assert(first.MathBigInt().Cmp(fr.Modulus()), qt.Equals, -1)

			other, err := h.Hash(fields[:3])
			c.Assert(err, qt.IsNil)
			c.Assert(first.Equal(other), qt.IsFalse)
		})
	}

	_, err := NewVKHasher("sha1")
	c.Assert(err, qt.ErrorMatches, `unknown vk hasher "sha1"`)
}

func TestProofFieldsBN254(t *testing.T) {
	c := qt.New(t)
	_, _, g1, g2 := bn254.Generators()
	proof := &groth16_bn254.Proof{Ar: g1, Bs: g2, Krs: g1}

	fields, err := ProofFieldsBN254(proof)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.HasLen, 8)
	c.Assert(fields[0].MathBigInt().Cmp(g1.X.BigInt(new(big.Int))), qt.Equals, 0)
	c.Assert(fields[1].MathBigInt().Cmp(g1.Y.BigInt(new(big.Int))), qt.Equals, 0)
	// G2 coordinates are written imaginary part first
	c.Assert(fields[2].MathBigInt().Cmp(g2.X.A1.BigInt(new(big.Int))), qt.Equals, 0)
	c.Assert(fields[3].MathBigInt().Cmp(g2.X.A0.BigInt(new(big.Int))), qt.Equals, 0)
	c.Assert(fields[4].MathBigInt().Cmp(g2.Y.A1.BigInt(new(big.Int))), qt.Equals, 0)
	c.Assert(fields[5].MathBigInt().Cmp(g2.Y.A0.BigInt(new(big.Int))), qt.Equals, 0)

	proof.Commitments = []bn254.G1Affine{g1}
	proof.CommitmentPok = g1
	fields, err = ProofFieldsBN254(proof)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.HasLen, 12)

	_, err = ProofFieldsBN254(nil)
	c.Assert(err, qt.IsNotNil)
}

func TestVKFieldsBN254(t *testing.T) {
	c := qt.New(t)
	_, _, g1, g2 := bn254.Generators()
	vk := &groth16_bn254.VerifyingKey{}
	_, err := VKFieldsBN254(vk)
	c.Assert(err, qt.IsNotNil)

	vk.G1.Alpha = g1
	vk.G2.Beta, vk.G2.Gamma, vk.G2.Delta = g2, g2, g2
	vk.G1.K = []bn254.G1Affine{g1, g1, g1}
	fields, err := VKFieldsBN254(vk)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.HasLen, 2+3*4+3*2)
}

func TestArtifactsSerialize(t *testing.T) {
	c := qt.New(t)
	a := &Artifacts{
		ProofAsFields: []*types.BigInt{types.NewInt(1), types.NewInt(2)},
		VKHash:        types.NewInt(3),
		VKAsFields:    []*types.BigInt{types.NewInt(4)},
	}
	serialized := a.Serialize()
	c.Assert(serialized, qt.HasLen, 4)
	for i, x := range serialized {
		c.Assert(x.MathBigInt().Int64(), qt.Equals, int64(i+1))
	}
	c.Assert(a.Bytes(), qt.HasLen, 4*SerializedFieldSize)
	c.Assert(a.Equal(a), qt.IsTrue)

	b := *a
	b.VKHash = types.NewInt(5)
	c.Assert(a.Equal(&b), qt.IsFalse)
}

type fakeBackend struct{ name string }

func (f fakeBackend) Name() string { return f.name }

func (fakeBackend) Capabilities() (Language, OpcodeSupport, error) {
	return R1CS, OpcodeSupport{Opcodes: []Opcode{OpArithmetic}}, nil
}

func (f fakeBackend) MaterializeArtifacts(_, _ []byte, _ []abi.FieldElement) (*Artifacts, error) {
	return nil, NewError(f.name, StageVerify, "not implemented")
}

func TestRegistry(t *testing.T) {
	c := qt.New(t)
	r := NewRegistry(fakeBackend{"b"}, fakeBackend{"a"})
	c.Assert(r.Names(), qt.DeepEquals, []string{"a", "b"})

	b, err := r.Get("a")
	c.Assert(err, qt.IsNil)
	_, ops, err := b.Capabilities()
	c.Assert(err, qt.IsNil)
	c.Assert(ops.Supports(OpArithmetic), qt.IsTrue)
	c.Assert(ops.Supports(OpCommitment), qt.IsFalse)

	_, err = b.MaterializeArtifacts(nil, nil, nil)
	var backendErr *BackendError
	c.Assert(errors.As(err, &backendErr), qt.IsTrue)
	c.Assert(backendErr.Stage, qt.Equals, StageVerify)

	_, err = r.Get("c")
	c.Assert(err, qt.ErrorMatches, `unknown backend "c".*`)
}
