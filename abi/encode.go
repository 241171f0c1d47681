package abi

import (
	"maps"
	"math/big"
	"slices"
	"strconv"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Encode converts the named input values into the ordered sequence of field
// elements of the public view. Parameters are encoded in declared order,
// followed by the return value if the view has a public return slot. The
// return value is ignored otherwise.
//
// Values of private parameters may be present in inputs, they are skipped
// without being inspected. Any other name not in the view is rejected with
// an *UnexpectedInputError.
func (v *PublicView) Encode(inputs InputMap, ret InputValue) ([]FieldElement, error) {
	// names are sorted so the reported error does not depend on map order
	for _, name := range slices.Sorted(maps.Keys(inputs)) {
		if name == MainReturnName || v.IsPrivate(name) {
			continue
		}
		if _, ok := v.Parameter(name); !ok {
			return nil, &UnexpectedInputError{Name: name}
		}
	}

	fields := make([]FieldElement, 0, v.FieldCount())
	var err error
	for i := range v.Parameters {
		p := &v.Parameters[i]
		value, ok := inputs[p.Name]
		if !ok || value == nil {
			return nil, &MissingInputError{Name: p.Name}
		}
		if fields, err = encodeValue(fields, p.Name, &p.Type, value); err != nil {
			return nil, err
		}
	}
	if v.ReturnType != nil {
		if ret == nil {
			return nil, &MissingInputError{Name: MainReturnName}
		}
		if fields, err = encodeValue(fields, MainReturnName, v.ReturnType, ret); err != nil {
			return nil, err
		}
	}
	return fields, nil
}

// encodeValue appends the encoding of value, of type typ, to fields.
func encodeValue(fields []FieldElement, path string, typ *Type, value InputValue) ([]FieldElement, error) {
	mismatch := func() error {
		return &TypeMismatchError{Name: path, Expected: typ.String(), Actual: value.kind()}
	}
	switch typ.Kind {
	case KindField, KindBoolean, KindInteger:
		fv, ok := value.(FieldValue)
		if !ok || fv.Int == nil {
			return nil, mismatch()
		}
		e, err := encodeScalar(path, typ, fv.Int)
		if err != nil {
			return nil, err
		}
		return append(fields, e), nil

	case KindString:
		sv, ok := value.(StringValue)
		if !ok || len(sv) != int(typ.Length) {
			return nil, mismatch()
		}
		for i := 0; i < len(sv); i++ {
			fields = append(fields, NewFieldElement(uint64(sv[i])))
		}
		return fields, nil

	case KindArray:
		vec, ok := value.(VecValue)
		if !ok || len(vec) != int(typ.Length) {
			return nil, mismatch()
		}
		var err error
		for i, elem := range vec {
			if elem == nil {
				return nil, &MissingInputError{Name: indexPath(path, i)}
			}
			if fields, err = encodeValue(fields, indexPath(path, i), typ.Elem, elem); err != nil {
				return nil, err
			}
		}
		return fields, nil

	case KindTuple:
		vec, ok := value.(VecValue)
		if !ok || len(vec) != len(typ.Elements) {
			return nil, mismatch()
		}
		var err error
		for i, elem := range vec {
			if elem == nil {
				return nil, &MissingInputError{Name: indexPath(path, i)}
			}
			if fields, err = encodeValue(fields, indexPath(path, i), &typ.Elements[i], elem); err != nil {
				return nil, err
			}
		}
		return fields, nil

	case KindStruct:
		sv, ok := value.(StructValue)
		if !ok {
			return nil, mismatch()
		}
		for _, name := range slices.Sorted(maps.Keys(sv)) {
			if !slices.ContainsFunc(typ.Fields, func(f StructField) bool { return f.Name == name }) {
				return nil, &UnexpectedInputError{Name: path + "." + name}
			}
		}
		var err error
		for i := range typ.Fields {
			f := &typ.Fields[i]
			member, ok := sv[f.Name]
			if !ok || member == nil {
				return nil, &MissingInputError{Name: path + "." + f.Name}
			}
			if fields, err = encodeValue(fields, path+"."+f.Name, &f.Type, member); err != nil {
				return nil, err
			}
		}
		return fields, nil
	}
	return nil, &SchemaError{Name: path, Reason: "unknown type kind " + string(typ.Kind)}
}

// encodeScalar range checks x against typ and returns its field element.
func encodeScalar(path string, typ *Type, x *big.Int) (FieldElement, error) {
	var e FieldElement
	outOfRange := &TypeMismatchError{Name: path, Expected: typ.String(), Actual: "out of range value " + x.String()}
	switch typ.Kind {
	case KindBoolean:
		if x.Sign() != 0 && x.Cmp(big.NewInt(1)) != 0 {
			return e, outOfRange
		}
		e.SetBigInt(x)
	case KindInteger:
		limit := new(big.Int).Lsh(big.NewInt(1), uint(typ.Width))
		if typ.Sign == Unsigned {
			if x.Sign() < 0 || x.Cmp(limit) >= 0 {
				return e, outOfRange
			}
			e.SetBigInt(x)
			break
		}
		half := new(big.Int).Rsh(limit, 1)
		if x.Cmp(half) >= 0 || x.Cmp(new(big.Int).Neg(half)) < 0 {
			return e, outOfRange
		}
		if x.Sign() < 0 {
			// two's complement at the declared width
			e.SetBigInt(new(big.Int).Add(limit, x))
			break
		}
		e.SetBigInt(x)
	default:
		modulus := fr.Modulus()
		if new(big.Int).Abs(x).Cmp(modulus) >= 0 {
			return e, outOfRange
		}
		// SetBigInt reduces negative values, -x is encoded as p - x
		e.SetBigInt(x)
	}
	return e, nil
}

func indexPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}
