// Package config loads the inspector configuration.
//
// Values are layered: Default, then an optional YAML file checked against an
// embedded CUE schema, then ZDB_* environment variables. Command line flags
// are applied last by the caller, which should call Validate afterwards.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/Zelldon/zdb-sub001/internal/journal"
	"github.com/Zelldon/zdb-sub001/internal/keyformat"
	"github.com/Zelldon/zdb-sub001/internal/logger"
)

//go:embed schema.cue
var schemaSource string

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "ZDB_"

// Key rendering modes.
const (
	KeyModeDefault = "default"
	KeyModeHex     = "hex"
	KeyModeSpec    = "spec"
)

// Config is the full configuration.
type Config struct {
	Log     LogConfig     `yaml:"log" envPrefix:"LOG_"`
	Keys    KeyConfig     `yaml:"keys" envPrefix:"KEYS_"`
	Journal JournalConfig `yaml:"journal" envPrefix:"JOURNAL_"`
	Output  OutputConfig  `yaml:"output" envPrefix:"OUTPUT_"`
}

// LogConfig configures diagnostics on stderr.
type LogConfig struct {
	Level  string `yaml:"level,omitempty" env:"LEVEL"`
	Format string `yaml:"format,omitempty" env:"FORMAT"`
}

// KeyConfig selects how state keys are rendered.
type KeyConfig struct {
	// Mode is default (per-category layouts), hex, or spec (Spec for every key).
	Mode string `yaml:"mode,omitempty" env:"MODE"`
	Spec string `yaml:"spec,omitempty" env:"SPEC"`
}

// JournalConfig tunes how journals are opened.
type JournalConfig struct {
	// Name is the segment file prefix; empty derives it from the directory.
	Name         string `yaml:"name,omitempty" env:"NAME"`
	IndexDensity int    `yaml:"indexDensity,omitempty" env:"INDEX_DENSITY"`
	// RespectFlushedIndex stops log reads at the index recorded in journal.meta.
	RespectFlushedIndex bool `yaml:"respectFlushedIndex,omitempty" env:"RESPECT_FLUSHED_INDEX"`
}

// OutputConfig holds the default output format of commands.
type OutputConfig struct {
	Format string `yaml:"format,omitempty" env:"FORMAT"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:     LogConfig{Level: "warn", Format: logger.FormatConsole},
		Keys:    KeyConfig{Mode: KeyModeDefault},
		Journal: JournalConfig{IndexDensity: journal.DefaultIndexDensity},
		Output:  OutputConfig{Format: "text"},
	}
}

// Load builds the configuration from path, which may be empty, and the process
// environment.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, envMap(os.Environ()))
}

// LoadWithEnv is Load with an explicit environment.
func LoadWithEnv(path string, environ map[string]string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := decodeFile(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(data []byte, cfg *Config) error {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if err := validateDocument(doc); err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks c against the schema and the cross-field rules.
func (c Config) Validate() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if err := validateDocument(doc); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Keys.Mode == KeyModeSpec && c.Keys.Spec == "" {
		return errors.New("invalid config: keys.spec is required when keys.mode is spec")
	}
	return nil
}

func validateDocument(doc map[string]any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	v := schema.Unify(ctx.Encode(doc))
	return v.Validate(cue.Concrete(true))
}

// Registry returns the key registry for the configured mode.
func (c Config) Registry() (keyformat.Registry, error) {
	switch c.Keys.Mode {
	case KeyModeHex:
		return keyformat.HexRegistry(), nil
	case KeyModeSpec:
		return keyformat.SpecRegistry(c.Keys.Spec)
	default:
		return keyformat.DefaultRegistry(), nil
	}
}

// LoggerConfig converts the log section.
func (c Config) LoggerConfig() (logger.Config, error) {
	level, err := logger.ParseLevel(c.Log.Level)
	if err != nil {
		return logger.Config{}, err
	}
	return logger.Config{Format: c.Log.Format, Level: level}, nil
}

// JournalOptions returns options for journal.Open.
func (c Config) JournalOptions() journal.Options {
	return journal.Options{Name: c.Journal.Name, IndexDensity: c.Journal.IndexDensity}
}

func envMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}
	return m
}
