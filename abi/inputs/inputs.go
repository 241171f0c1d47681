// Package inputs reads and writes the named input values of a circuit from
// TOML or JSON files. The files carry no type information, so values are
// parsed using the public view of the circuit ABI.
package inputs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"math/big"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vocdoni/proof-artifacts/abi"
)

// Format of an input file.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// Ext returns the file extension of the format.
func (f Format) Ext() string {
	return string(f)
}

// ParseFormat returns the Format named s.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatTOML:
		return FormatTOML, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown input format %q", s)
}

// NotFoundError is returned when the input file does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("input file not found: %s", e.Path)
}

// FilePath returns the path of the input file name in dir.
func FilePath(dir, name string, format Format) string {
	return filepath.Join(dir, name+"."+format.Ext())
}

// Read reads the input file <dir>/<name>.<ext> and returns the values of the
// public parameters of view and, if the view has a public return slot, the
// return value. Values of private parameters are skipped. Names that are not
// parameters of the circuit are rejected with an *abi.UnexpectedInputError.
func Read(dir, name string, format Format, view *abi.PublicView) (abi.InputMap, abi.InputValue, error) {
	path := FilePath(dir, name, format)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, &NotFoundError{Path: path}
		}
		return nil, nil, fmt.Errorf("could not read input file: %w", err)
	}
	raw := make(map[string]any)
	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, nil, fmt.Errorf("could not parse %s: %w", path, err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("could not parse %s: %w", path, err)
		}
	default:
		return nil, nil, fmt.Errorf("unknown input format %q", format)
	}
	return Parse(raw, view)
}

// Parse converts raw decoded values into typed input values using the
// public view.
func Parse(raw map[string]any, view *abi.PublicView) (abi.InputMap, abi.InputValue, error) {
	inputs := make(abi.InputMap, len(view.Parameters))
	var ret abi.InputValue
	for _, name := range slices.Sorted(maps.Keys(raw)) {
		if name == abi.MainReturnName {
			if view.ReturnType == nil {
				continue
			}
			value, err := parseValue(name, view.ReturnType, raw[name])
			if err != nil {
				return nil, nil, err
			}
			ret = value
			continue
		}
		if view.IsPrivate(name) {
			continue
		}
		p, ok := view.Parameter(name)
		if !ok {
			return nil, nil, &abi.UnexpectedInputError{Name: name}
		}
		value, err := parseValue(name, &p.Type, raw[name])
		if err != nil {
			return nil, nil, err
		}
		inputs[name] = value
	}
	return inputs, ret, nil
}

func parseValue(path string, typ *abi.Type, raw any) (abi.InputValue, error) {
	mismatch := func() error {
		return &abi.TypeMismatchError{Name: path, Expected: typ.String(), Actual: fmt.Sprintf("%T", raw)}
	}
	switch typ.Kind {
	case abi.KindField, abi.KindInteger, abi.KindBoolean:
		x, ok := parseScalar(raw)
		if !ok {
			return nil, mismatch()
		}
		return abi.FieldValue{Int: x}, nil

	case abi.KindString:
		s, ok := raw.(string)
		if !ok {
			return nil, mismatch()
		}
		return abi.StringValue(s), nil

	case abi.KindArray, abi.KindTuple:
		items, ok := asSlice(raw)
		if !ok {
			return nil, mismatch()
		}
		vec := make(abi.VecValue, len(items))
		for i, item := range items {
			elem := typ.Elem
			if typ.Kind == abi.KindTuple {
				if i >= len(typ.Elements) {
					return nil, mismatch()
				}
				elem = &typ.Elements[i]
			}
			value, err := parseValue(fmt.Sprintf("%s[%d]", path, i), elem, item)
			if err != nil {
				return nil, err
			}
			vec[i] = value
		}
		return vec, nil

	case abi.KindStruct:
		table, ok := raw.(map[string]any)
		if !ok {
			return nil, mismatch()
		}
		for _, name := range slices.Sorted(maps.Keys(table)) {
			if !slices.ContainsFunc(typ.Fields, func(f abi.StructField) bool { return f.Name == name }) {
				return nil, &abi.UnexpectedInputError{Name: path + "." + name}
			}
		}
		sv := make(abi.StructValue, len(table))
		for i := range typ.Fields {
			f := &typ.Fields[i]
			item, ok := table[f.Name]
			if !ok {
				// reported as missing by the encoder
				continue
			}
			value, err := parseValue(path+"."+f.Name, &f.Type, item)
			if err != nil {
				return nil, err
			}
			sv[f.Name] = value
		}
		return sv, nil
	}
	return nil, &abi.SchemaError{Name: path, Reason: "unknown type kind " + string(typ.Kind)}
}

// parseScalar accepts integers, booleans and strings holding a decimal or a
// 0x prefixed hexadecimal number, optionally negative.
func parseScalar(raw any) (*big.Int, bool) {
	switch v := raw.(type) {
	case bool:
		if v {
			return big.NewInt(1), true
		}
		return big.NewInt(0), true
	case int64:
		return big.NewInt(v), true
	case int:
		return big.NewInt(int64(v)), true
	case float64:
		if v != float64(int64(v)) {
			return nil, false
		}
		return big.NewInt(int64(v)), true
	case json.Number:
		return parseNumber(v.String())
	case string:
		switch v {
		case "true":
			return big.NewInt(1), true
		case "false":
			return big.NewInt(0), true
		}
		return parseNumber(v)
	}
	return nil, false
}

func parseNumber(s string) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	if s == "" {
		return nil, false
	}
	x, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, false
	}
	if neg {
		x.Neg(x)
	}
	return x, true
}

func asSlice(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case []map[string]any:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
		return items, true
	}
	return nil, false
}

// Write writes the input values, and the return value if not nil, into
// <dir>/<name>.<ext>. Scalars are written as decimal strings.
func Write(dir, name string, format Format, inputs abi.InputMap, ret abi.InputValue) error {
	raw := make(map[string]any, len(inputs)+1)
	for k, v := range inputs {
		raw[k] = toRaw(v)
	}
	if ret != nil {
		raw[abi.MainReturnName] = toRaw(ret)
	}
	var buf bytes.Buffer
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(raw); err != nil {
			return fmt.Errorf("could not encode inputs: %w", err)
		}
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(raw); err != nil {
			return fmt.Errorf("could not encode inputs: %w", err)
		}
	default:
		return fmt.Errorf("unknown input format %q", format)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create inputs directory: %w", err)
	}
	return os.WriteFile(FilePath(dir, name, format), buf.Bytes(), 0o644)
}

func toRaw(v abi.InputValue) any {
	switch v := v.(type) {
	case abi.FieldValue:
		if v.Int == nil {
			return "0"
		}
		return v.Int.String()
	case abi.StringValue:
		return string(v)
	case abi.VecValue:
		items := make([]any, len(v))
		for i := range v {
			items[i] = toRaw(v[i])
		}
		return items
	case abi.StructValue:
		table := make(map[string]any, len(v))
		for k := range v {
			table[k] = toRaw(v[k])
		}
		return table
	}
	return nil
}
