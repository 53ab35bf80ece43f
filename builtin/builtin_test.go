package builtin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/adtree"
	"github.com/reoring/adtree/builtin"
	"github.com/reoring/adtree/codec"
	"github.com/reoring/adtree/forest"
)

func registry(t *testing.T) *adtree.Registry {
	t.Helper()
	reg, err := builtin.NewRegistry()
	require.NoError(t, err)
	return reg
}

func TestNewRegistry(t *testing.T) {
	reg := registry(t)
	assert.True(t, reg.Sealed())
	for _, name := range []string{
		"String", "bool", "usize", "Option<String>", "Vec<usize>",
		"Emotion", "Song", "Weavable", "WeavingAttack", "PerformanceAttack",
		"BardPredicate", "BardBehavior", "AetTarget", "FType", "DefenseBehavior",
		"AetPredicate", "AetBehavior", "AetBehaviorTreeNode", "UnpoweredTreeDef",
	} {
		_, err := reg.Resolve(name)
		assert.NoError(t, err, name)
	}
	d, _ := reg.Resolve("bool")
	assert.Equal(t, "Boolean", d.Renderer)
}

func TestRegister_UnknownSet(t *testing.T) {
	assert.Error(t, builtin.Register(adtree.NewRegistry(), "nope"))
}

func TestDefaultsConform(t *testing.T) {
	reg := registry(t)
	for _, name := range reg.Names() {
		n, err := reg.DefaultOf(adtree.Ref(name))
		require.NoError(t, err, name)
		assert.NoError(t, reg.Conforms(n, adtree.Ref(name)), name)
	}
}

func unit(t *testing.T, reg *adtree.Registry, typ, name string) *adtree.EnumNode {
	t.Helper()
	d, err := reg.Resolve(typ)
	require.NoError(t, err)
	v, ok := d.Variant(name)
	require.True(t, ok)
	return adtree.NewEnum(v)
}

func TestScenarios(t *testing.T) {
	reg := registry(t)

	t.Run("unit variant", func(t *testing.T) {
		out, err := codec.Concentrate(reg, unit(t, reg, "AetTarget", "Me"), adtree.Ref("AetTarget"))
		require.NoError(t, err)
		assert.Equal(t, "Me", out)
	})

	t.Run("option", func(t *testing.T) {
		d, _ := reg.Resolve("Option<String>")
		some, _ := d.Variant("Some")
		out, err := codec.Concentrate(reg, adtree.NewEnum(some, adtree.NewScalar("hi")), adtree.Ref("Option<String>"))
		require.NoError(t, err)
		assert.Equal(t, "hi", out)

		n, err := codec.Hydrate(reg, nil, adtree.Ref("Option<String>"))
		require.NoError(t, err)
		assert.True(t, adtree.Equal(unit(t, reg, "Option<String>", "None"), n))
	})

	t.Run("two fields", func(t *testing.T) {
		d, _ := reg.Resolve("BardPredicate")
		lvl, _ := d.Variant("EmotionLevel")
		n := adtree.NewEnum(lvl, unit(t, reg, "Emotion", "Sadness"), adtree.NewScalar("3"))
		b, err := codec.ToJSON(reg, n, adtree.Ref("BardPredicate"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"EmotionLevel":["Sadness",3]}`, string(b))
	})

	t.Run("unsigned vector", func(t *testing.T) {
		n := adtree.NewVector(adtree.Ref("usize"), adtree.NewScalar("1"), adtree.NewScalar("2"))
		b, err := codec.ToJSON(reg, n, adtree.Ref("Vec<usize>"))
		require.NoError(t, err)
		assert.Equal(t, "[1,2]", string(b))
		back, err := codec.FromJSON(reg, []byte("[1,2]"), adtree.Ref("Vec<usize>"), codec.DefaultParseOpt())
		require.NoError(t, err)
		assert.True(t, adtree.Equal(n, back))
	})

	t.Run("insert into string vector", func(t *testing.T) {
		next, err := adtree.InsertItem(reg, adtree.NewVector(adtree.Ref("String")), nil)
		require.NoError(t, err)
		assert.True(t, adtree.Equal(adtree.NewVector(adtree.Ref("String"), adtree.NewScalar("")), next))
	})

	t.Run("set variant resets", func(t *testing.T) {
		f, err := forest.Apply(reg, forest.New(adtree.Ref(builtin.RootType)), forest.LoadFromJSON{
			Tree: "t",
			JSON: []byte(`{"Sequence":[{"User":{"Action":{"TagPlan":"x"}}},{"Selector":[]}]}`),
		}, codec.DefaultParseOpt())
		require.NoError(t, err)
		f, err = forest.Apply(reg, f, forest.SetVariant{Tree: "t", Variant: "Selector"}, codec.DefaultParseOpt())
		require.NoError(t, err)
		b, err := f.ToJSON(reg, "t")
		require.NoError(t, err)
		assert.JSONEq(t, `{"Selector":[]}`, string(b))
	})
}

func TestBehaviourTreeRoundTrip(t *testing.T) {
	reg := registry(t)
	src := `{"Selector":[
		{"Sequence":[
			{"User":{"Predicate":{"AffCountOver":["Target",2,["Asthma","Slickness"]]}}},
			{"User":{"Action":{"BardBehavior":{"PerformanceAttack":{"TempoTwo":["a","b"]}}}}}
		]},
		{"Repeat":[{"User":{"Action":{"DefenseBehavior":"Parry"}}},3]},
		{"RepeatUntilFail":{"User":{"Predicate":{"Locked":["Me",true]}}}},
		{"User":{"SubTree":"fallback"}}
	]}`
	n, err := codec.FromJSON(reg, []byte(src), adtree.Ref(builtin.RootType), codec.DefaultParseOpt())
	require.NoError(t, err)
	require.NoError(t, reg.Conforms(n, adtree.Ref(builtin.RootType)))
	b, err := codec.ToJSON(reg, n, adtree.Ref(builtin.RootType))
	require.NoError(t, err)
	assert.JSONEq(t, src, string(b))
}
