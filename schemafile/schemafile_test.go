package schemafile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/adtree"
	"github.com/reoring/adtree/schemafile"
)

const doc = `
types:
  - name: String
    primitive: text
  - name: usize
    primitive: usize
    default: 7
  - name: Flag
    primitive: bool
    default: true
    renderer: Boolean
  - name: Shape
    enum:
      - Dot
      - Label: String
      - Box: [usize, usize]
      - Group: [{vec: Shape}]
      - Note: [{option: String}]
      - Marker:
---
types:
  - name: Sizes
    vector: usize
  - option: Shape
`

func TestParse(t *testing.T) {
	ds, err := schemafile.Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, ds, 6)

	assert.Equal(t, "7", ds[1].Default)
	assert.Equal(t, adtree.Unsigned, ds[1].Primitive)
	assert.Equal(t, true, ds[2].Default)
	assert.Equal(t, "Boolean", ds[2].Renderer)

	shape := ds[3]
	assert.Equal(t, []string{"Dot", "Label", "Box", "Group", "Note", "Marker"}, shape.VariantNames())
	label, _ := shape.Variant("Label")
	assert.Equal(t, []adtree.TypeRef{adtree.Ref("String")}, label.Fields)
	group, _ := shape.Variant("Group")
	require.Len(t, group.Fields, 1)
	assert.Equal(t, "Vec<Shape>", group.Fields[0].String())
	note, _ := shape.Variant("Note")
	assert.True(t, note.Fields[0].Inline.IsOption())
	marker, _ := shape.Variant("Marker")
	assert.True(t, marker.IsUnit())

	assert.Equal(t, "Sizes", ds[4].Name)
	assert.Equal(t, adtree.KindVector, ds[4].Kind)
	assert.Equal(t, "Option<Shape>", ds[5].Name)

	reg := adtree.NewRegistry()
	require.NoError(t, schemafile.RegisterAll(reg, ds))
	require.NoError(t, reg.Validate())
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown key":      "types:\n  - name: A\n    primitive: text\n    colour: red\n",
		"two kinds":        "types:\n  - name: A\n    primitive: text\n    enum: [X]\n",
		"no kind":          "types:\n  - name: A\n",
		"bad primitive":    "types:\n  - name: A\n    primitive: float\n",
		"bad default":      "types:\n  - name: A\n    primitive: usize\n    default: -3\n",
		"enum default":     "types:\n  - name: A\n    default: x\n    enum: [X]\n",
		"bad inline":       "types:\n  - name: A\n    enum:\n      - X: [{map: String}]\n",
		"two-key variant":  "types:\n  - name: A\n    enum:\n      - {X: String, Y: String}\n",
		"unnamed enum":     "types:\n  - enum: [X]\n",
		"malformed yaml":   "types: [\n",
		"empty reference":  "types:\n  - name: A\n    vector: ''\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := schemafile.Parse([]byte(src))
			assert.Error(t, err)
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	ds, err := schemafile.Parse([]byte(doc))
	require.NoError(t, err)
	out, err := schemafile.Marshal(ds)
	require.NoError(t, err)
	again, err := schemafile.Parse(out)
	require.NoError(t, err, string(out))
	assert.Equal(t, ds, again)
}

func TestLoadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(p, []byte(doc), 0o644))
	reg := adtree.NewRegistry()
	require.NoError(t, schemafile.LoadFile(reg, p))
	assert.Equal(t, 6, reg.Len())

	assert.Error(t, schemafile.LoadFile(reg, filepath.Join(t.TempDir(), "missing.yaml")))
}
