package abi

import (
	"fmt"

	"github.com/consensys/gnark/frontend/schema"
)

// FromGnarkSchema derives the ABI of a gnark circuit from its schema. Leaves
// become fields, arrays and structs keep their shape. gnark assigns the
// visibility per leaf, so a top level member mixing public and secret leaves
// cannot be expressed and is rejected with a *SchemaError.
//
// The public witness of gnark lists the public leaves in declaration order,
// which matches the encoding order of the public view.
func FromGnarkSchema(s *schema.Schema) (*ABI, error) {
	if s == nil {
		return nil, &SchemaError{Reason: "nil gnark schema"}
	}
	a := &ABI{}
	for _, f := range s.Fields {
		typ, err := typeFromGnarkField(f)
		if err != nil {
			return nil, err
		}
		vis, err := gnarkVisibility(f, schema.Unset)
		if err != nil {
			return nil, err
		}
		a.Parameters = append(a.Parameters, Parameter{
			Name:       f.Name,
			Type:       typ,
			Visibility: vis,
		})
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

func typeFromGnarkField(f schema.Field) (Type, error) {
	switch f.Type {
	case schema.Leaf:
		return Type{Kind: KindField}, nil
	case schema.Array:
		var elem Type
		switch {
		case len(f.SubFields) == 0:
			elem = Type{Kind: KindField}
		case len(f.SubFields) == 1 && (f.SubFields[0].Type == schema.Array || f.SubFields[0].Name == ""):
			var err error
			if elem, err = typeFromGnarkField(f.SubFields[0]); err != nil {
				return Type{}, err
			}
		default:
			var err error
			if elem, err = structFromGnarkFields(f.Name, f.SubFields); err != nil {
				return Type{}, err
			}
		}
		return Type{Kind: KindArray, Length: uint32(f.ArraySize), Elem: &elem}, nil
	case schema.Struct:
		return structFromGnarkFields(f.Name, f.SubFields)
	}
	return Type{}, &SchemaError{Name: f.Name, Reason: fmt.Sprintf("unsupported gnark field type %d", f.Type)}
}

func structFromGnarkFields(path string, fields []schema.Field) (Type, error) {
	typ := Type{Kind: KindStruct, Path: path}
	for _, sf := range fields {
		st, err := typeFromGnarkField(sf)
		if err != nil {
			return Type{}, err
		}
		typ.Fields = append(typ.Fields, StructField{Name: sf.Name, Type: st})
	}
	return typ, nil
}

// gnarkVisibility returns the visibility shared by every leaf of f. Members
// without a visibility of their own inherit the one of their parent.
func gnarkVisibility(f schema.Field, parent schema.Visibility) (Visibility, error) {
	v := f.Visibility
	if v == schema.Unset {
		v = parent
	}
	if len(f.SubFields) == 0 {
		if v == schema.Public {
			return Public, nil
		}
		return Private, nil
	}
	var vis Visibility
	for _, sf := range f.SubFields {
		sub, err := gnarkVisibility(sf, v)
		if err != nil {
			return "", err
		}
		if vis != "" && sub != vis {
			return "", &SchemaError{Name: f.Name, Reason: "mixed public and secret members"}
		}
		vis = sub
	}
	return vis, nil
}
