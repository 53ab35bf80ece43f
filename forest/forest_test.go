package forest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/adtree"
	"github.com/reoring/adtree/codec"
	"github.com/reoring/adtree/forest"
)

func registry(t *testing.T) *adtree.Registry {
	t.Helper()
	children := adtree.Inline(adtree.Vector(adtree.Ref("UnpoweredTreeDef")))
	reg := adtree.NewRegistry()
	reg.MustRegister(
		adtree.Primitive("String", adtree.Text),
		adtree.Primitive("usize", adtree.Unsigned),
		adtree.Primitive("bool", adtree.Bool),
		adtree.Enum("Behavior",
			adtree.Variant("Wait", adtree.Ref("usize")),
			adtree.Variant("Say", adtree.Ref("String"), adtree.Ref("bool")),
		),
		adtree.Enum("UnpoweredTreeDef",
			adtree.Variant("Sequence", children),
			adtree.Variant("Selector", children),
			adtree.Variant("Succeeder", adtree.Ref("UnpoweredTreeDef")),
			adtree.Variant("User", adtree.Ref("Behavior")),
		),
	)
	require.NoError(t, reg.Validate())
	reg.Seal()
	return reg
}

func apply(t *testing.T, reg *adtree.Registry, f *forest.Forest, cmds ...forest.Command) *forest.Forest {
	t.Helper()
	for _, c := range cmds {
		next, err := forest.Apply(reg, f, c, codec.DefaultParseOpt())
		require.NoError(t, err, "%s", c.Op())
		f = next
	}
	return f
}

func TestCreateTree(t *testing.T) {
	reg := registry(t)
	f0 := forest.New(adtree.Ref("UnpoweredTreeDef"))
	f1 := apply(t, reg, f0, forest.CreateTree{Name: "main"})

	assert.Equal(t, 0, f0.Len())
	assert.Equal(t, []string{"main"}, f1.Names())

	js, err := f1.ToJSON(reg, "main")
	require.NoError(t, err)
	assert.JSONEq(t, `{"Sequence":[]}`, string(js))

	_, err = forest.Apply(reg, f1, forest.CreateTree{Name: "main"}, codec.DefaultParseOpt())
	assert.True(t, adtree.HasCode(err, adtree.CodeTreeExists))

	_, err = forest.Apply(reg, f1, forest.CreateTree{}, codec.DefaultParseOpt())
	assert.True(t, adtree.HasCode(err, adtree.CodeInvalidValue))
}

func TestEditSequence(t *testing.T) {
	reg := registry(t)
	f := apply(t, reg, forest.New(adtree.Ref("UnpoweredTreeDef")),
		forest.CreateTree{Name: "main"},
		forest.InsertItem{Tree: "main", Path: adtree.Path{0}},
		forest.InsertItem{Tree: "main", Path: adtree.Path{0}},
		forest.SetVariant{Tree: "main", Path: adtree.Path{0, 1}, Variant: "User"},
		forest.SetVariant{Tree: "main", Path: adtree.Path{0, 1, 0}, Variant: "Say"},
		forest.SetValue{Tree: "main", Path: adtree.Path{0, 1, 0, 0}, Value: "hello"},
		forest.SetValue{Tree: "main", Path: adtree.Path{0, 1, 0, 1}, Value: true},
	)
	js, err := f.ToJSON(reg, "main")
	require.NoError(t, err)
	assert.JSONEq(t, `{"Sequence":[{"Sequence":[]},{"User":{"Say":["hello",true]}}]}`, string(js))

	v, err := f.CurrentVariant("main", adtree.Path{0, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, "Say", v.Name)

	n, err := f.FieldValue("main", adtree.Path{0, 1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, "hello", n.(*adtree.Scalar).Value)

	paths, err := f.VectorChildPaths("main", adtree.Path{0})
	require.NoError(t, err)
	assert.Equal(t, []adtree.Path{{0, 0}, {0, 1}}, paths)

	f = apply(t, reg, f, forest.RemoveItem{Tree: "main", Path: adtree.Path{0}, Index: 0})
	js, err = f.ToJSON(reg, "main")
	require.NoError(t, err)
	assert.JSONEq(t, `{"Sequence":[{"User":{"Say":["hello",true]}}]}`, string(js))
}

func TestSetVariant_DiscardsChildren(t *testing.T) {
	reg := registry(t)
	f := apply(t, reg, forest.New(adtree.Ref("UnpoweredTreeDef")),
		forest.LoadFromJSON{Tree: "t", JSON: []byte(`{"Sequence":[{"User":{"Wait":5}},{"Selector":[]}]}`)},
		forest.SetVariant{Tree: "t", Path: nil, Variant: "Selector"},
	)
	js, err := f.ToJSON(reg, "t")
	require.NoError(t, err)
	assert.JSONEq(t, `{"Selector":[]}`, string(js))
}

func TestApply_FailureKeepsForest(t *testing.T) {
	reg := registry(t)
	f := apply(t, reg, forest.New(adtree.Ref("UnpoweredTreeDef")), forest.CreateTree{Name: "main"})
	before, err := f.ToJSON(reg, "main")
	require.NoError(t, err)

	cases := []struct {
		cmd  forest.Command
		code string
	}{
		{forest.InsertItem{Tree: "nope", Path: adtree.Path{0}}, adtree.CodeUnknownTree},
		{forest.DeleteTree{Name: "nope"}, adtree.CodeUnknownTree},
		{forest.RemoveItem{Tree: "main", Path: adtree.Path{0}, Index: 0}, adtree.CodeIndexFault},
		{forest.InsertItem{Tree: "main", Path: nil}, adtree.CodePathFault},
		{forest.SetVariant{Tree: "main", Path: nil, Variant: "Parallel"}, adtree.CodeUnknownVariant},
		{forest.SetVariant{Tree: "main", Path: adtree.Path{0}, Variant: "Selector"}, adtree.CodePathFault},
		{forest.SetValue{Tree: "main", Path: adtree.Path{3}, Value: "x"}, adtree.CodePathFault},
		{forest.LoadFromJSON{Tree: "main", JSON: []byte(`{"Sequence":`)}, adtree.CodeParseError},
		{forest.LoadFromJSON{Tree: "main", JSON: []byte(`"Parallel"`)}, adtree.CodeUnknownVariant},
		{forest.LoadFromJSON{Tree: "main", JSON: []byte(`{"Selector":[{"Sequence":[]} {"Sequence":[]}]}`)}, adtree.CodeParseError},
		{forest.LoadFromJSON{Tree: "main", JSON: []byte(`{"Sequence" []}`)}, adtree.CodeParseError},
		{forest.LoadFromJSON{Tree: "main", JSON: []byte(`{"Sequence":[,]}`)}, adtree.CodeParseError},
	}
	for _, tc := range cases {
		t.Run(tc.cmd.Op(), func(t *testing.T) {
			got, err := forest.Apply(reg, f, tc.cmd, codec.DefaultParseOpt())
			require.Error(t, err)
			assert.True(t, adtree.HasCode(err, tc.code), "%v", err)
			assert.Same(t, f, got)
			after, err := got.ToJSON(reg, "main")
			require.NoError(t, err)
			assert.Equal(t, string(before), string(after))
		})
	}
}

func TestSetValue_ChecksValueKind(t *testing.T) {
	reg := registry(t)
	f := apply(t, reg, forest.New(adtree.Ref("UnpoweredTreeDef")),
		forest.LoadFromJSON{Tree: "t", JSON: []byte(`{"User":{"Say":["a",false]}}`)},
	)
	_, err := forest.Apply(reg, f, forest.SetValue{Tree: "t", Path: adtree.Path{0, 1}, Value: "yes"}, codec.DefaultParseOpt())
	assert.True(t, adtree.HasCode(err, adtree.CodeInvalidType))
	_, err = forest.Apply(reg, f, forest.SetValue{Tree: "t", Path: adtree.Path{0, 0}, Value: 3}, codec.DefaultParseOpt())
	assert.True(t, adtree.HasCode(err, adtree.CodeInvalidType))
}

func TestSetValue_ChecksUnsignedDigits(t *testing.T) {
	reg := registry(t)
	f := apply(t, reg, forest.New(adtree.Ref("UnpoweredTreeDef")),
		forest.LoadFromJSON{Tree: "t", JSON: []byte(`{"User":{"Wait":5}}`)},
	)
	for _, bad := range []string{"five", "-1", "", "18446744073709551616"} {
		got, err := forest.Apply(reg, f, forest.SetValue{Tree: "t", Path: adtree.Path{0, 0}, Value: bad}, codec.DefaultParseOpt())
		iss, ok := adtree.AsIssues(err)
		require.True(t, ok, "%q: %v", bad, err)
		assert.Equal(t, adtree.CodeInvalidValue, iss[0].Code, bad)
		assert.Equal(t, "/0/0", iss[0].Path, bad)
		assert.Same(t, f, got)
	}

	f = apply(t, reg, f, forest.SetValue{Tree: "t", Path: adtree.Path{0, 0}, Value: " 012 "})
	js, err := f.ToJSON(reg, "t")
	require.NoError(t, err)
	assert.JSONEq(t, `{"User":{"Wait":12}}`, string(js))
}

func TestDeleteTree(t *testing.T) {
	reg := registry(t)
	f := apply(t, reg, forest.New(adtree.Ref("UnpoweredTreeDef")),
		forest.CreateTree{Name: "a"},
		forest.CreateTree{Name: "b"},
	)
	g := apply(t, reg, f, forest.DeleteTree{Name: "a"})
	assert.Equal(t, []string{"a", "b"}, f.Names())
	assert.Equal(t, []string{"b"}, g.Names())
	_, err := g.Tree("a")
	assert.True(t, adtree.HasCode(err, adtree.CodeUnknownTree))
}

func TestApply_SharesUntouchedTrees(t *testing.T) {
	reg := registry(t)
	f := apply(t, reg, forest.New(adtree.Ref("UnpoweredTreeDef")),
		forest.CreateTree{Name: "a"},
		forest.CreateTree{Name: "b"},
	)
	g := apply(t, reg, f, forest.InsertItem{Tree: "a", Path: adtree.Path{0}})
	fb, _ := f.Tree("b")
	gb, _ := g.Tree("b")
	assert.Same(t, fb, gb)
	fa, _ := f.Tree("a")
	ga, _ := g.Tree("a")
	assert.NotSame(t, fa, ga)
}

func TestSnapshotRoundTrip(t *testing.T) {
	reg := registry(t)
	f := apply(t, reg, forest.New(adtree.Ref("UnpoweredTreeDef")),
		forest.LoadFromJSON{Tree: "x", JSON: []byte(`{"Selector":[{"User":{"Wait":12}},{"Succeeder":{"User":{"Say":["hi",true]}}}]}`)},
		forest.CreateTree{Name: "y"},
	)
	data, err := f.MarshalJSON()
	require.NoError(t, err)

	back, err := forest.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, f.Names(), back.Names())
	assert.Equal(t, "UnpoweredTreeDef", back.Root().String())
	for _, name := range f.Names() {
		a, _ := f.Tree(name)
		b, _ := back.Tree(name)
		assert.True(t, adtree.Equal(a, b), name)
	}

	// the reloaded forest keeps working with the registry
	back = apply(t, reg, back, forest.InsertItem{Tree: "x", Path: adtree.Path{0}})
	js, err := back.ToJSON(reg, "x")
	require.NoError(t, err)
	assert.JSONEq(t, `{"Selector":[{"User":{"Wait":12}},{"Succeeder":{"User":{"Say":["hi",true]}}},{"Sequence":[]}]}`, string(js))
}

func TestSnapshotRejectsVersion(t *testing.T) {
	_, err := forest.Decode([]byte(`{"version":9,"root":{"name":"T"},"trees":{}}`))
	assert.ErrorContains(t, err, "version 9")
}
