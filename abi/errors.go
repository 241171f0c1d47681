package abi

import "fmt"

// SchemaError is returned when the ABI is malformed. It reveals a defect of
// the program that produced the ABI rather than a problem with the inputs.
type SchemaError struct {
	Name   string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("malformed abi: %s", e.Reason)
	}
	return fmt.Sprintf("malformed abi: %s: %s", e.Name, e.Reason)
}

// MissingInputError is returned when no value is provided for a public
// parameter, a struct field or the return value.
type MissingInputError struct {
	Name string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing input value for %q", e.Name)
}

// UnexpectedInputError is returned when a value is provided for a name that
// is not a parameter of the circuit.
type UnexpectedInputError struct {
	Name string
}

func (e *UnexpectedInputError) Error() string {
	return fmt.Sprintf("unexpected input value %q, not a parameter of the circuit", e.Name)
}

// TypeMismatchError is returned when the shape or the range of a value does
// not match the declared type of its parameter.
type TypeMismatchError struct {
	Name     string
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch for %q: expected %s, got %s", e.Name, e.Expected, e.Actual)
}

// LengthMismatchError is returned when decoding a field sequence whose
// length does not match the public view.
type LengthMismatchError struct {
	Expected int
	Actual   int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("expected %d field elements, got %d", e.Expected, e.Actual)
}
