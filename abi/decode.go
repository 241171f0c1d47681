package abi

import (
	"math/big"
)

// Decode is the inverse of Encode: it rebuilds the named input values and the
// return value from an encoded field sequence. Signed integers are decoded
// from their two's complement form, strings from one byte per element.
func (v *PublicView) Decode(fields []FieldElement) (InputMap, InputValue, error) {
	if len(fields) != v.FieldCount() {
		return nil, nil, &LengthMismatchError{Expected: v.FieldCount(), Actual: len(fields)}
	}
	inputs := make(InputMap, len(v.Parameters))
	rest := fields
	var (
		value InputValue
		err   error
	)
	for i := range v.Parameters {
		p := &v.Parameters[i]
		if value, rest, err = decodeValue(p.Name, &p.Type, rest); err != nil {
			return nil, nil, err
		}
		inputs[p.Name] = value
	}
	var ret InputValue
	if v.ReturnType != nil {
		if ret, _, err = decodeValue(MainReturnName, v.ReturnType, rest); err != nil {
			return nil, nil, err
		}
	}
	return inputs, ret, nil
}

// decodeValue consumes the fields of a value of type typ and returns the
// value and the remaining fields. The caller guarantees the length.
func decodeValue(path string, typ *Type, fields []FieldElement) (InputValue, []FieldElement, error) {
	switch typ.Kind {
	case KindField, KindBoolean:
		x := fields[0].BigInt(new(big.Int))
		if typ.Kind == KindBoolean && x.Cmp(big.NewInt(1)) > 0 {
			return nil, nil, &TypeMismatchError{Name: path, Expected: typ.String(), Actual: "field " + x.String()}
		}
		return FieldValue{x}, fields[1:], nil

	case KindInteger:
		x := fields[0].BigInt(new(big.Int))
		limit := new(big.Int).Lsh(big.NewInt(1), uint(typ.Width))
		if x.Cmp(limit) >= 0 {
			return nil, nil, &TypeMismatchError{Name: path, Expected: typ.String(), Actual: "field " + x.String()}
		}
		if typ.Sign == Signed && x.Cmp(new(big.Int).Rsh(limit, 1)) >= 0 {
			x.Sub(x, limit)
		}
		return FieldValue{x}, fields[1:], nil

	case KindString:
		buf := make([]byte, typ.Length)
		for i := range buf {
			if !fields[i].IsUint64() || fields[i].Uint64() > 0xff {
				return nil, nil, &TypeMismatchError{Name: path, Expected: typ.String(), Actual: "non byte field " + fields[i].String()}
			}
			buf[i] = byte(fields[i].Uint64())
		}
		return StringValue(buf), fields[typ.Length:], nil

	case KindArray:
		vec := make(VecValue, typ.Length)
		var err error
		for i := range vec {
			if vec[i], fields, err = decodeValue(indexPath(path, i), typ.Elem, fields); err != nil {
				return nil, nil, err
			}
		}
		return vec, fields, nil

	case KindTuple:
		vec := make(VecValue, len(typ.Elements))
		var err error
		for i := range vec {
			if vec[i], fields, err = decodeValue(indexPath(path, i), &typ.Elements[i], fields); err != nil {
				return nil, nil, err
			}
		}
		return vec, fields, nil

	case KindStruct:
		sv := make(StructValue, len(typ.Fields))
		var (
			member InputValue
			err    error
		)
		for i := range typ.Fields {
			f := &typ.Fields[i]
			if member, fields, err = decodeValue(path+"."+f.Name, &f.Type, fields); err != nil {
				return nil, nil, err
			}
			sv[f.Name] = member
		}
		return sv, fields, nil
	}
	return nil, nil, &SchemaError{Name: path, Reason: "unknown type kind " + string(typ.Kind)}
}
