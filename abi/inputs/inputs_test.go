package inputs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/proof-artifacts/abi"
)

func testView(c *qt.C) *abi.PublicView {
	a := &abi.ABI{
		Parameters: []abi.Parameter{
			{Name: "x", Type: abi.Type{Kind: abi.KindField}, Visibility: abi.Public},
			{Name: "flag", Type: abi.Type{Kind: abi.KindBoolean}, Visibility: abi.Public},
			{Name: "n", Type: abi.Type{Kind: abi.KindInteger, Sign: abi.Signed, Width: 8}, Visibility: abi.Public},
			{Name: "list", Type: abi.Type{Kind: abi.KindArray, Length: 2, Elem: &abi.Type{Kind: abi.KindField}}, Visibility: abi.Public},
			{Name: "point", Type: abi.Type{Kind: abi.KindStruct, Path: "Point", Fields: []abi.StructField{
				{Name: "x", Type: abi.Type{Kind: abi.KindField}},
				{Name: "y", Type: abi.Type{Kind: abi.KindField}},
			}}, Visibility: abi.Public},
			{Name: "secret", Type: abi.Type{Kind: abi.KindField}, Visibility: abi.Private},
		},
		ReturnType: &abi.ReturnType{Type: abi.Type{Kind: abi.KindField}, Visibility: abi.Public},
	}
	view, err := a.PublicView()
	c.Assert(err, qt.IsNil)
	return view
}

const verifierTOML = `
x = "0x10"
flag = true
n = -2
list = ["1", 2]
secret = "whatever"
return = "5"

[point]
x = "3"
y = "4"
`

func TestReadTOML(t *testing.T) {
	c := qt.New(t)
	view := testView(c)
	dir := t.TempDir()
	c.Assert(os.WriteFile(filepath.Join(dir, "Verifier.toml"), []byte(verifierTOML), 0o644), qt.IsNil)

	inputs, ret, err := Read(dir, "Verifier", FormatTOML, view)
	c.Assert(err, qt.IsNil)
	c.Assert(inputs, qt.HasLen, 5)
	c.Assert(ret, qt.IsNotNil)

	fields, err := view.Encode(inputs, ret)
	c.Assert(err, qt.IsNil)
	c.Assert(abi.FieldsToStrings(fields), qt.DeepEquals,
		[]string{"16", "1", "254", "1", "2", "3", "4", "5"})
}

func TestReadJSON(t *testing.T) {
	c := qt.New(t)
	view := testView(c)
	dir := t.TempDir()
	data := `{"x": 16, "flag": "false", "n": "0x7f", "list": [0, 0], "point": {"x": 1, "y": 2}, "return": 1}`
	c.Assert(os.WriteFile(filepath.Join(dir, "Verifier.json"), []byte(data), 0o644), qt.IsNil)

	inputs, ret, err := Read(dir, "Verifier", FormatJSON, view)
	c.Assert(err, qt.IsNil)
	fields, err := view.Encode(inputs, ret)
	c.Assert(err, qt.IsNil)
	c.Assert(abi.FieldsToStrings(fields), qt.DeepEquals,
		[]string{"16", "0", "127", "0", "0", "1", "2", "1"})
}

func TestReadErrors(t *testing.T) {
	c := qt.New(t)
	view := testView(c)
	dir := t.TempDir()

	_, _, err := Read(dir, "Verifier", FormatTOML, view)
	var notFound *NotFoundError
	c.Assert(errors.As(err, &notFound), qt.IsTrue)
	c.Assert(notFound.Path, qt.Equals, filepath.Join(dir, "Verifier.toml"))

	c.Assert(os.WriteFile(filepath.Join(dir, "Bad.toml"), []byte(`unknown = 1`), 0o644), qt.IsNil)
	_, _, err = Read(dir, "Bad", FormatTOML, view)
	var unexpected *abi.UnexpectedInputError
	c.Assert(errors.As(err, &unexpected), qt.IsTrue)
	c.Assert(unexpected.Name, qt.Equals, "unknown")

	c.Assert(os.WriteFile(filepath.Join(dir, "Mismatch.toml"), []byte(`x = [1, 2]`), 0o644), qt.IsNil)
	_, _, err = Read(dir, "Mismatch", FormatTOML, view)
	var mismatch *abi.TypeMismatchError
	c.Assert(errors.As(err, &mismatch), qt.IsTrue)
	c.Assert(mismatch.Name, qt.Equals, "x")

	c.Assert(os.WriteFile(filepath.Join(dir, "Broken.toml"), []byte(`x = `), 0o644), qt.IsNil)
	_, _, err = Read(dir, "Broken", FormatTOML, view)
	c.Assert(err, qt.ErrorMatches, "could not parse .*")
}

func TestWriteRead(t *testing.T) {
	c := qt.New(t)
	view := testView(c)
	inputs := abi.InputMap{
		"x":     abi.NewField(9),
		"flag":  abi.NewBool(true),
		"n":     abi.NewField(-128),
		"list":  abi.VecValue{abi.NewField(7), abi.NewField(8)},
		"point": abi.StructValue{"x": abi.NewField(1), "y": abi.NewField(0)},
	}
	want, err := view.Encode(inputs, abi.NewField(3))
	c.Assert(err, qt.IsNil)

	for _, format := range []Format{FormatTOML, FormatJSON} {
		c.Run(string(format), func(c *qt.C) {
			dir := c.TempDir()
			c.Assert(Write(dir, "Verifier", format, inputs, abi.NewField(3)), qt.IsNil)
			read, ret, err := Read(dir, "Verifier", format, view)
			c.Assert(err, qt.IsNil)
			got, err := view.Encode(read, ret)
			c.Assert(err, qt.IsNil)
			c.Assert(got, qt.DeepEquals, want)
		})
	}
}

func TestParseFormat(t *testing.T) {
	c := qt.New(t)
	f, err := ParseFormat("TOML")
	c.Assert(err, qt.IsNil)
	c.Assert(f, qt.Equals, FormatTOML)
	_, err = ParseFormat("yaml")
	c.Assert(err, qt.ErrorMatches, `unknown input format "yaml"`)
}
