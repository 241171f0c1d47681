package abi

import (
	"fmt"
	"math/big"
)

// InputValue is a value provided for a parameter. It is one of FieldValue,
// StringValue, VecValue or StructValue.
type InputValue interface {
	// kind describes the shape of the value for error messages.
	kind() string
}

// InputMap maps parameter names to their values.
type InputMap map[string]InputValue

// FieldValue is a scalar value: a field element, an integer or a boolean
// (0 or 1). Negative values are only valid for signed integers and fields.
type FieldValue struct {
	*big.Int
}

// StringValue is the value of a string parameter.
type StringValue string

// VecValue is the value of an array or a tuple.
type VecValue []InputValue

// StructValue is the value of a struct, by field name.
type StructValue map[string]InputValue

// NewField returns a FieldValue holding x.
func NewField(x int64) FieldValue {
	return FieldValue{big.NewInt(x)}
}

// NewBool returns the FieldValue of a boolean.
func NewBool(b bool) FieldValue {
	if b {
		return NewField(1)
	}
	return NewField(0)
}

func (v FieldValue) kind() string {
	if v.Int == nil {
		return "empty field"
	}
	return "field " + v.Int.String()
}

func (v StringValue) kind() string {
	return fmt.Sprintf("string of length %d", len(v))
}

func (v VecValue) kind() string {
	return fmt.Sprintf("array of length %d", len(v))
}

func (StructValue) kind() string {
	return "struct"
}
