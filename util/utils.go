package util

import (
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// TrimHex trims the '0x' prefix from a hex string.
func TrimHex(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// CleanHex trims the surrounding whitespace and the '0x' prefix from a hex
// string, as usually found in hand edited or tool generated files.
func CleanHex(s string) string {
	return TrimHex(strings.TrimSpace(s))
}

// bn254ScalarField contains the scalar field of the BN254 curve, the native
// field of the circuits and the field of every public input.
var bn254ScalarField = fr.Modulus()

// BN254ScalarField returns a copy of the BN254 scalar field modulus.
func BN254ScalarField() *big.Int {
	return new(big.Int).Set(bn254ScalarField)
}

// BigToFF function returns the finite field representation of the big.Int
// provided. It uses Euclidean Modulus and the BN254 curve scalar field to
// represent the provided number.
func BigToFF(iv *big.Int) *big.Int {
	z := big.NewInt(0)
	if c := iv.Cmp(bn254ScalarField); c == 0 {
		return z
	} else if c != 1 && iv.Cmp(z) != -1 {
		return iv
	}
	return z.Mod(iv, bn254ScalarField)
}
