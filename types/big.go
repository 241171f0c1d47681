package types

import (
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

// BigInt is a big.Int wrapper which marshals JSON to a string representation
// of the big number. It also encodes to CBOR as a string, so the encoding is
// deterministic and independent of the platform.
type BigInt big.Int

// NewInt returns a new BigInt set to x.
func NewInt(x int64) *BigInt {
	return (*BigInt)(big.NewInt(x))
}

// NewBigInt returns a BigInt holding a copy of x.
func NewBigInt(x *big.Int) *BigInt {
	return (*BigInt)(new(big.Int).Set(x))
}

// MathBigInt converts b to a math/big *big.Int.
func (i *BigInt) MathBigInt() *big.Int {
	return (*big.Int)(i)
}

// String returns the decimal representation of the number.
func (i *BigInt) String() string {
	return (*big.Int)(i).String()
}

// Hex returns the number as a 0x prefixed, 32 byte zero padded, big endian
// hex string, the usual representation of a field element.
func (i *BigInt) Hex() string {
	return fmt.Sprintf("0x%064x", (*big.Int)(i))
}

// Bytes returns the absolute value of the number as a big-endian byte slice.
func (i *BigInt) Bytes() []byte {
	return (*big.Int)(i).Bytes()
}

// SetBytes interprets buf as a big-endian unsigned integer and sets i to it.
func (i *BigInt) SetBytes(buf []byte) *BigInt {
	return (*BigInt)((*big.Int)(i).SetBytes(buf))
}

// Equal reports whether i and j hold the same value.
func (i *BigInt) Equal(j *BigInt) bool {
	return (*big.Int)(i).Cmp((*big.Int)(j)) == 0
}

// MarshalText implements the encoding.TextMarshaler interface.
func (i BigInt) MarshalText() ([]byte, error) {
	return (*big.Int)(&i).MarshalText()
}

// UnmarshalText implements the encoding.TextUnmarshaler interface. It
// accepts decimal and 0x prefixed hexadecimal numbers.
func (i *BigInt) UnmarshalText(data []byte) error {
	s, base := string(data), 10
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s, base = s[2:], 16
	}
	if _, ok := (*big.Int)(i).SetString(s, base); !ok {
		return fmt.Errorf("invalid big int: %q", data)
	}
	return nil
}

// MarshalCBOR implements the cbor.Marshaler interface.
func (i BigInt) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal((*big.Int)(&i).String())
}

// UnmarshalCBOR implements the cbor.Unmarshaler interface.
func (i *BigInt) UnmarshalCBOR(data []byte) error {
	var s string
	if err := cbor.Unmarshal(data, &s); err != nil {
		return err
	}
	return i.UnmarshalText([]byte(s))
}
