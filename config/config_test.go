package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/adtree/config"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "UnpoweredTreeDef", cfg.RootType)
	assert.Equal(t, []string{"common", "aetolia"}, cfg.Builtin)
	assert.Equal(t, 512, cfg.ParseOpt().MaxDepth)
}

func TestLoadYAML(t *testing.T) {
	p := write(t, "adtree.yaml", `
schema_files: [extra.yaml]
builtin: [common]
root_type: Shape
store:
  dir: /tmp/forest
  compress: false
json:
  driver: encoding/json
  allow_duplicate_keys: true
log:
  level: debug
  format: json
language: ja
`)
	cfg, err := config.Load(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"extra.yaml"}, cfg.SchemaFiles)
	assert.Equal(t, []string{"common"}, cfg.Builtin)
	assert.Equal(t, "Shape", cfg.RootType)
	assert.Equal(t, "/tmp/forest", cfg.Store.Dir)
	assert.Equal(t, "forest", cfg.Store.Key, "unset keys keep defaults")
	assert.False(t, cfg.Store.Compress)
	assert.Equal(t, 512, cfg.JSON.MaxDepth)

	opt := cfg.ParseOpt()
	assert.Equal(t, "encoding/json", opt.Driver)
	assert.True(t, opt.AllowDuplicateKeys)
	assert.Equal(t, "ja", cfg.Language)
}

func TestLoadTOML(t *testing.T) {
	p := write(t, "adtree.toml", `
root_type = "UnpoweredTreeDef"
builtin = []

[store]
key = "trees"

[log]
level = "info"
`)
	cfg, err := config.Load(p)
	require.NoError(t, err)
	assert.Empty(t, cfg.Builtin)
	assert.Equal(t, "trees", cfg.Store.Key)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, ".adtree", cfg.Store.Dir)
}

func TestLoadEmptyYAML(t *testing.T) {
	cfg, err := config.Load(write(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]string{
		"unknown.yaml":  "colour: red\n",
		"unknown.toml":  "colour = \"red\"\n",
		"driver.yaml":   "json:\n  driver: simdjson\n",
		"level.yaml":    "log:\n  level: loud\n",
		"format.yaml":   "log:\n  format: xml\n",
		"lang.yaml":     "language: fr\n",
		"builtin.yaml":  "builtin: [nope]\n",
		"root.yaml":     "root_type: ''\n",
		"negative.yaml": "json:\n  max_depth: -1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(write(t, name, body))
			assert.Error(t, err)
		})
	}
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	for _, name := range []string{"out.yaml", "out.toml"} {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			cfg.SchemaFiles = []string{"a.yaml"}
			b, err := config.Marshal(cfg, name)
			require.NoError(t, err)
			back, err := config.Load(write(t, name, string(b)))
			require.NoError(t, err)
			assert.Equal(t, cfg, back)
		})
	}
}
