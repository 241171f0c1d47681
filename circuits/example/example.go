// Package example contains small gnark circuits used to bootstrap example
// workspaces and to test the artifact pipeline end to end.
package example

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark/frontend"
)

// SquareCircuit proves the knowledge of a secret root whose square is
// Square and whose successor is Next.
type SquareCircuit struct {
	Square frontend.Variable `gnark:",public"`
	Next   frontend.Variable `gnark:",public"`
	Root   frontend.Variable
}

func (c *SquareCircuit) Define(api frontend.API) error {
	api.AssertIsEqual(api.Mul(c.Root, c.Root), c.Square)
	api.AssertIsEqual(api.Add(c.Root, 1), c.Next)
	return nil
}

// SquareAssignment returns a valid assignment of SquareCircuit for root.
func SquareAssignment(root int64) *SquareCircuit {
	r := big.NewInt(root)
	return &SquareCircuit{
		Square: new(big.Int).Mul(r, r),
		Next:   new(big.Int).Add(r, big.NewInt(1)),
		Root:   r,
	}
}

// CommitCircuit checks a range of public values and commits to them, so its
// groth16 proofs carry a commitment and its proof of knowledge.
type CommitCircuit struct {
	Values [3]frontend.Variable `gnark:",public"`
	Sum    frontend.Variable
}

func (c *CommitCircuit) Define(api frontend.API) error {
	committer, ok := api.(frontend.Committer)
	if !ok {
		return errors.New("api is not a committer")
	}
	commitment, err := committer.Commit(c.Values[:]...)
	if err != nil {
		return err
	}
	api.AssertIsDifferent(commitment, 0)
	sum := frontend.Variable(0)
	for _, v := range c.Values {
		api.ToBinary(v, 32)
		sum = api.Add(sum, v)
	}
	api.AssertIsEqual(sum, c.Sum)
	return nil
}

// CommitAssignment returns a valid assignment of CommitCircuit.
func CommitAssignment(a, b, c int64) *CommitCircuit {
	return &CommitCircuit{
		Values: [3]frontend.Variable{a, b, c},
		Sum:    a + b + c,
	}
}
