// Package abi describes the input/output schema of a compiled circuit and
// encodes named input values into the ordered sequence of field elements a
// verifier expects as public inputs.
//
// The schema is a list of typed parameters, each one public or private,
// plus an optional return value. Only the public part of the schema takes
// part in verification, so the encoder always works over a PublicView
// derived from the full ABI.
package abi

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// MainReturnName is the name used for the return value of the circuit in the
// input files.
const MainReturnName = "return"

// maxIntegerWidth is the widest integer type allowed, so every integer value
// fits in a single BN254 scalar field element.
const maxIntegerWidth = 253

// maxFieldCount bounds the number of fields an ABI encodes into. Larger
// schemas are rejected as malformed.
const maxFieldCount = 1 << 20

// Visibility of a parameter or of the return value.
type Visibility string

const (
	Public  Visibility = "public"
	Private Visibility = "private"
)

// Kind identifies the shape of a Type.
type Kind string

const (
	KindField   Kind = "field"
	KindBoolean Kind = "boolean"
	KindInteger Kind = "integer"
	KindArray   Kind = "array"
	KindString  Kind = "string"
	KindStruct  Kind = "struct"
	KindTuple   Kind = "tuple"
)

// Sign of an integer type.
type Sign string

const (
	Unsigned Sign = "unsigned"
	Signed   Sign = "signed"
)

// Type describes the type of a parameter. Only the attributes that apply to
// its Kind are set.
type Type struct {
	Kind Kind `json:"kind"`
	// integer
	Sign  Sign   `json:"sign,omitempty"`
	Width uint32 `json:"width,omitempty"`
	// array and string
	Length uint32 `json:"length,omitempty"`
	Elem   *Type  `json:"type,omitempty"`
	// struct
	Path   string        `json:"path,omitempty"`
	Fields []StructField `json:"fields,omitempty"`
	// tuple
	Elements []Type `json:"elements,omitempty"`
}

// StructField is a named member of a struct type.
type StructField struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// Parameter is a named and typed input of the circuit.
type Parameter struct {
	Name       string     `json:"name"`
	Type       Type       `json:"type"`
	Visibility Visibility `json:"visibility"`
}

// ReturnType is the type of the value returned by the circuit.
type ReturnType struct {
	Type       Type       `json:"abi_type"`
	Visibility Visibility `json:"visibility"`
}

// ABI is the schema of a compiled circuit. The order of the parameters is
// fixed at compile time and determines the order of the encoded fields.
type ABI struct {
	Parameters []Parameter `json:"parameters"`
	ReturnType *ReturnType `json:"return_type,omitempty"`
}

// FieldElement is an element of the BN254 scalar field, the field of every
// public input.
type FieldElement = fr.Element

// NewFieldElement returns the field element that represents x.
func NewFieldElement(x uint64) FieldElement {
	var e FieldElement
	e.SetUint64(x)
	return e
}

// FieldsToBigInts converts a sequence of field elements into their canonical
// big.Int representation.
func FieldsToBigInts(fields []FieldElement) []*big.Int {
	res := make([]*big.Int, len(fields))
	for i := range fields {
		res[i] = fields[i].BigInt(new(big.Int))
	}
	return res
}

// FieldsToStrings converts a sequence of field elements into their decimal
// representation.
func FieldsToStrings(fields []FieldElement) []string {
	res := make([]string, len(fields))
	for i := range fields {
		res[i] = fields[i].String()
	}
	return res
}

// FieldCount returns the number of field elements a value of this type is
// encoded into. The result is only meaningful for validated types.
func (t *Type) FieldCount() int {
	switch t.Kind {
	case KindField, KindBoolean, KindInteger:
		return 1
	case KindString:
		return int(t.Length)
	case KindArray:
		if t.Elem == nil {
			return 0
		}
		return int(t.Length) * t.Elem.FieldCount()
	case KindStruct:
		n := 0
		for i := range t.Fields {
			n += t.Fields[i].Type.FieldCount()
		}
		return n
	case KindTuple:
		n := 0
		for i := range t.Elements {
			n += t.Elements[i].FieldCount()
		}
		return n
	}
	return 0
}

// String returns the type using the usual circuit language notation, e.g.
// Field, u8, [bool; 3], str<5>.
func (t *Type) String() string {
	switch t.Kind {
	case KindField:
		return "Field"
	case KindBoolean:
		return "bool"
	case KindInteger:
		if t.Sign == Signed {
			return fmt.Sprintf("i%d", t.Width)
		}
		return fmt.Sprintf("u%d", t.Width)
	case KindString:
		return fmt.Sprintf("str<%d>", t.Length)
	case KindArray:
		if t.Elem == nil {
			return fmt.Sprintf("[?; %d]", t.Length)
		}
		return fmt.Sprintf("[%s; %d]", t.Elem.String(), t.Length)
	case KindStruct:
		return "struct " + t.Path
	case KindTuple:
		elems := make([]string, len(t.Elements))
		for i := range t.Elements {
			elems[i] = t.Elements[i].String()
		}
		return "(" + strings.Join(elems, ", ") + ")"
	}
	return string(t.Kind)
}

// validate checks that the type is well formed and returns its field count.
// The path is used to attribute the error.
func (t *Type) validate(path string) (int, error) {
	switch t.Kind {
	case KindField, KindBoolean:
		return 1, nil
	case KindInteger:
		if t.Sign != Signed && t.Sign != Unsigned {
			return 0, &SchemaError{Name: path, Reason: fmt.Sprintf("invalid integer sign %q", t.Sign)}
		}
		if t.Width == 0 || t.Width > maxIntegerWidth {
			return 0, &SchemaError{Name: path, Reason: fmt.Sprintf("invalid integer width %d", t.Width)}
		}
		return 1, nil
	case KindString:
		return checkFieldCount(path, uint64(t.Length))
	case KindArray:
		if t.Elem == nil {
			return 0, &SchemaError{Name: path, Reason: "array without element type"}
		}
		n, err := t.Elem.validate(path + "[]")
		if err != nil {
			return 0, err
		}
		// both factors are bounded by maxFieldCount, the product fits
		return checkFieldCount(path, uint64(t.Length)*uint64(n))
	case KindStruct:
		seen := make(map[string]struct{}, len(t.Fields))
		total := 0
		for i := range t.Fields {
			name := t.Fields[i].Name
			if name == "" {
				return 0, &SchemaError{Name: path, Reason: "struct field without name"}
			}
			if _, ok := seen[name]; ok {
				return 0, &SchemaError{Name: path, Reason: fmt.Sprintf("duplicated struct field %q", name)}
			}
			seen[name] = struct{}{}
			n, err := t.Fields[i].Type.validate(path + "." + name)
			if err != nil {
				return 0, err
			}
			if total, err = checkFieldCount(path, uint64(total)+uint64(n)); err != nil {
				return 0, err
			}
		}
		return total, nil
	case KindTuple:
		total := 0
		for i := range t.Elements {
			n, err := t.Elements[i].validate(fmt.Sprintf("%s.%d", path, i))
			if err != nil {
				return 0, err
			}
			if total, err = checkFieldCount(path, uint64(total)+uint64(n)); err != nil {
				return 0, err
			}
		}
		return total, nil
	}
	return 0, &SchemaError{Name: path, Reason: fmt.Sprintf("unknown type kind %q", t.Kind)}
}

// checkFieldCount rejects widths above maxFieldCount.
func checkFieldCount(path string, n uint64) (int, error) {
	if n > maxFieldCount {
		return 0, &SchemaError{Name: path, Reason: fmt.Sprintf("encodes into %d fields, more than %d", n, maxFieldCount)}
	}
	return int(n), nil
}

// Validate checks that the ABI is well formed: parameter names are set and
// unique, visibilities are known, every type is valid and the whole ABI
// encodes into at most maxFieldCount fields.
func (a *ABI) Validate() error {
	seen := make(map[string]struct{}, len(a.Parameters))
	total := 0
	for i := range a.Parameters {
		p := &a.Parameters[i]
		if p.Name == "" {
			return &SchemaError{Reason: fmt.Sprintf("parameter %d without name", i)}
		}
		if p.Name == MainReturnName {
			return &SchemaError{Name: p.Name, Reason: "reserved parameter name"}
		}
		if _, ok := seen[p.Name]; ok {
			return &SchemaError{Name: p.Name, Reason: "duplicated parameter name"}
		}
		seen[p.Name] = struct{}{}
		if p.Visibility != Public && p.Visibility != Private {
			return &SchemaError{Name: p.Name, Reason: fmt.Sprintf("invalid visibility %q", p.Visibility)}
		}
		n, err := p.Type.validate(p.Name)
		if err != nil {
			return err
		}
		if total, err = checkFieldCount(p.Name, uint64(total)+uint64(n)); err != nil {
			return err
		}
	}
	if a.ReturnType != nil {
		if a.ReturnType.Visibility != Public && a.ReturnType.Visibility != Private {
			return &SchemaError{
				Name:   MainReturnName,
				Reason: fmt.Sprintf("invalid visibility %q", a.ReturnType.Visibility),
			}
		}
		n, err := a.ReturnType.Type.validate(MainReturnName)
		if err != nil {
			return err
		}
		if _, err := checkFieldCount(MainReturnName, uint64(total)+uint64(n)); err != nil {
			return err
		}
	}
	return nil
}

// PublicView is the projection of an ABI with only the public parameters
// and, if public, the return value. It is derived from the ABI on demand
// and never modified on its own.
type PublicView struct {
	Parameters []Parameter
	// ReturnType is nil unless the circuit returns a public value.
	ReturnType *Type
	// private holds the names of the parameters filtered out, so their
	// values are skipped without being inspected.
	private map[string]struct{}
}

// PublicView derives the public view of the ABI. It fails with a
// *SchemaError if the ABI is malformed.
func (a *ABI) PublicView() (*PublicView, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	view := &PublicView{private: make(map[string]struct{})}
	for _, p := range a.Parameters {
		if p.Visibility == Public {
			view.Parameters = append(view.Parameters, p)
			continue
		}
		view.private[p.Name] = struct{}{}
	}
	if a.ReturnType != nil && a.ReturnType.Visibility == Public {
		rt := a.ReturnType.Type
		view.ReturnType = &rt
	}
	return view, nil
}

// Parameter returns the public parameter with the given name.
func (v *PublicView) Parameter(name string) (*Parameter, bool) {
	for i := range v.Parameters {
		if v.Parameters[i].Name == name {
			return &v.Parameters[i], true
		}
	}
	return nil, false
}

// FieldCount returns the length of the encoded field sequence.
func (v *PublicView) FieldCount() int {
	n := 0
	for i := range v.Parameters {
		n += v.Parameters[i].Type.FieldCount()
	}
	if v.ReturnType != nil {
		n += v.ReturnType.FieldCount()
	}
	return n
}

// IsPrivate reports whether name is a parameter filtered out of the view.
func (v *PublicView) IsPrivate(name string) bool {
	_, ok := v.private[name]
	return ok
}
