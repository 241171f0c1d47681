package backend

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iden3/go-iden3-crypto/poseidon"
	"github.com/vocdoni/arbo"
	"github.com/vocdoni/proof-artifacts/types"
	"github.com/vocdoni/proof-artifacts/util"
)

const (
	HasherPoseidon  = "poseidon"
	HasherKeccak256 = "keccak256"
)

// poseidonChunkSize is the maximum number of inputs of a single poseidon hash.
const poseidonChunkSize = 16

// VKHasher hashes the verification key fields into a single element of the
// BN254 scalar field.
type VKHasher interface {
	Name() string
	Hash(fields []*types.BigInt) (*types.BigInt, error)
}

// NewVKHasher returns the hasher with the given name.
func NewVKHasher(name string) (VKHasher, error) {
	switch strings.ToLower(name) {
	case HasherPoseidon:
		return PoseidonHasher{}, nil
	case HasherKeccak256:
		return Keccak256Hasher{}, nil
	}
	return nil, fmt.Errorf("unknown vk hasher %q", name)
}

// PoseidonHasher hashes with the iden3 poseidon. The inputs are reduced into
// the scalar field first, since the coordinates of the verification key
// belong to the base field.
type PoseidonHasher struct{}

func (PoseidonHasher) Name() string { return HasherPoseidon }

func (PoseidonHasher) Hash(fields []*types.BigInt) (*types.BigInt, error) {
	inputs := make([]*big.Int, len(fields))
	for i, f := range fields {
		inputs[i] = util.BigToFF(f.MathBigInt())
	}
	h, err := MultiPoseidon(inputs...)
	if err != nil {
		return nil, err
	}
	return (*types.BigInt)(h), nil
}

// MultiPoseidon hashes any number of inputs. They are split in chunks of 16
// elements, each chunk is hashed and the resulting hashes are hashed again
// the same way until a single hash remains.
func MultiPoseidon(inputs ...*big.Int) (*big.Int, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no inputs provided")
	}
	hashes := make([]*big.Int, 0, (len(inputs)+poseidonChunkSize-1)/poseidonChunkSize)
	for start := 0; start < len(inputs); start += poseidonChunkSize {
		end := min(start+poseidonChunkSize, len(inputs))
		h, err := poseidon.Hash(inputs[start:end])
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	if len(hashes) == 1 {
		return hashes[0], nil
	}
	return MultiPoseidon(hashes...)
}

// Keccak256Hasher hashes the big-endian 32 byte words of the fields with
// keccak256 and reduces the digest into the scalar field.
type Keccak256Hasher struct{}

func (Keccak256Hasher) Name() string { return HasherKeccak256 }

func (Keccak256Hasher) Hash(fields []*types.BigInt) (*types.BigInt, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("no inputs provided")
	}
	words := make([][]byte, len(fields))
	for i, f := range fields {
		if f.MathBigInt().Sign() < 0 || f.MathBigInt().BitLen() > 8*SerializedFieldSize {
			return nil, fmt.Errorf("field %d does not fit in a word", i)
		}
		words[i] = arbo.SwapEndianness(arbo.BigIntToBytes(SerializedFieldSize, f.MathBigInt()))
	}
	digest := new(big.Int).SetBytes(crypto.Keccak256(words...))
	return (*types.BigInt)(util.BigToFF(digest)), nil
}
