// Package config loads editor settings from YAML or TOML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/reoring/adtree/builtin"
	"github.com/reoring/adtree/codec"
	"github.com/reoring/adtree/i18n"
	"github.com/reoring/adtree/internal/logx"
)

// Config is the complete editor configuration.
type Config struct {
	// SchemaFiles are YAML schema files registered after the built-ins.
	SchemaFiles []string `yaml:"schema_files" toml:"schema_files"`
	// Builtin names the embedded schema sets to register. An empty list
	// registers none.
	Builtin []string `yaml:"builtin" toml:"builtin"`
	// RootType is the type of every tree in the forest.
	RootType string      `yaml:"root_type" toml:"root_type"`
	Store    StoreConfig `yaml:"store" toml:"store"`
	JSON     JSONConfig  `yaml:"json" toml:"json"`
	Log      LogConfig   `yaml:"log" toml:"log"`
	// Language selects issue messages: "en" or "ja".
	Language string `yaml:"language" toml:"language"`
}

type StoreConfig struct {
	// Dir holds the snapshot files. Empty keeps the forest in memory.
	Dir      string `yaml:"dir" toml:"dir"`
	Key      string `yaml:"key" toml:"key"`
	Compress bool   `yaml:"compress" toml:"compress"`
}

type JSONConfig struct {
	Driver             string `yaml:"driver" toml:"driver"`
	MaxDepth           int    `yaml:"max_depth" toml:"max_depth"`
	MaxBytes           int64  `yaml:"max_bytes" toml:"max_bytes"`
	AllowDuplicateKeys bool   `yaml:"allow_duplicate_keys" toml:"allow_duplicate_keys"`
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	opt := codec.DefaultParseOpt()
	return Config{
		Builtin:  builtin.Sets(),
		RootType: builtin.RootType,
		Store:    StoreConfig{Dir: ".adtree", Key: "forest", Compress: true},
		JSON:     JSONConfig{Driver: opt.Driver, MaxDepth: opt.MaxDepth},
		Log:      LogConfig{Level: "warn", Format: logx.FormatText},
		Language: "en",
	}
}

// Load reads path over Default. Files ending in .toml are TOML, anything
// else is YAML. Unknown keys are errors in both formats.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = decodeTOML(data, &cfg)
	} else {
		err = decodeYAML(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeTOML(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.RootType == "" {
		errs = append(errs, errors.New("root_type is required"))
	}
	for _, set := range c.Builtin {
		if !slices.Contains(builtin.Sets(), set) {
			errs = append(errs, fmt.Errorf("unknown builtin schema set %q", set))
		}
	}
	if !slices.Contains(codec.Drivers(), c.JSON.Driver) {
		errs = append(errs, fmt.Errorf("unknown json driver %q", c.JSON.Driver))
	}
	if c.JSON.MaxDepth < 0 || c.JSON.MaxBytes < 0 {
		errs = append(errs, errors.New("json limits must not be negative"))
	}
	if _, err := logx.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if f := strings.ToLower(c.Log.Format); f != "" && f != logx.FormatText && f != logx.FormatJSON {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	if !slices.Contains(i18n.Languages(), strings.ToLower(c.Language)) {
		errs = append(errs, fmt.Errorf("unsupported language %q", c.Language))
	}
	return errors.Join(errs...)
}

// ParseOpt converts the JSON section into codec options.
func (c Config) ParseOpt() codec.ParseOpt {
	return codec.ParseOpt{
		Driver:             c.JSON.Driver,
		MaxDepth:           c.JSON.MaxDepth,
		MaxBytes:           c.JSON.MaxBytes,
		AllowDuplicateKeys: c.JSON.AllowDuplicateKeys,
	}
}

// Marshal renders cfg in the format implied by path's extension.
func Marshal(cfg Config, path string) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Marshal(cfg)
	}
	return yaml.Marshal(cfg)
}
