package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/Zelldon/zdb-sub001/internal/journal"
	"github.com/Zelldon/zdb-sub001/internal/keyformat"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zdb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg, err := LoadWithEnv("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, journal.DefaultIndexDensity, cfg.Journal.IndexDensity)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
keys:
  mode: spec
  spec: li
journal:
  name: raft-partition-partition-2
  indexDensity: 10
  respectFlushedIndex: true
`)
	cfg, err := LoadWithEnv(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, KeyConfig{Mode: KeyModeSpec, Spec: "li"}, cfg.Keys)
	assert.Equal(t, "raft-partition-partition-2", cfg.Journal.Name)
	assert.Equal(t, 10, cfg.Journal.IndexDensity)
	assert.True(t, cfg.Journal.RespectFlushedIndex)
	assert.Equal(t, "text", cfg.Output.Format, "unset values keep defaults")
}

func TestLoadFileRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"unknown field":   "logging:\n  level: debug\n",
		"bad level":       "log:\n  level: loud\n",
		"bad spec char":   "keys:\n  spec: lx\n",
		"zero density":    "journal:\n  indexDensity: 0\n",
		"bad output":      "output:\n  format: dot\n",
		"not yaml":        "log: [",
		"spec without it": "keys:\n  mode: spec\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadWithEnv(writeConfig(t, content), nil)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.ErrorContains(t, err, "failed to read config")
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "log:\n  level: debug\n")
	cfg, err := LoadWithEnv(path, map[string]string{
		"ZDB_LOG_LEVEL":                     "error",
		"ZDB_KEYS_MODE":                     "hex",
		"ZDB_JOURNAL_INDEX_DENSITY":         "5",
		"ZDB_JOURNAL_RESPECT_FLUSHED_INDEX": "true",
		"LOG_LEVEL":                         "info",
	})
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, KeyModeHex, cfg.Keys.Mode)
	assert.Equal(t, 5, cfg.Journal.IndexDensity)
	assert.True(t, cfg.Journal.RespectFlushedIndex)
}

func TestEnvValuesAreValidated(t *testing.T) {
	_, err := LoadWithEnv("", map[string]string{"ZDB_LOG_FORMAT": "xml"})
	assert.ErrorContains(t, err, "invalid config")

	_, err = LoadWithEnv("", map[string]string{"ZDB_JOURNAL_INDEX_DENSITY": "many"})
	assert.ErrorContains(t, err, "parse env")
}

func TestRegistry(t *testing.T) {
	key := keyformat.NewKey(keyformat.Jobs).Long(7).Bytes()

	cfg := Default()
	reg, err := cfg.Registry()
	require.NoError(t, err)
	assert.Equal(t, "7", reg.Format(key))

	cfg.Keys.Mode = KeyModeHex
	reg, err = cfg.Registry()
	require.NoError(t, err)
	assert.Equal(t, keyformat.Hex(key), reg.Format(key))

	cfg.Keys = KeyConfig{Mode: KeyModeSpec, Spec: "i"}
	reg, err = cfg.Registry()
	require.NoError(t, err)
	assert.Equal(t, "0", reg.Format(key))
}

func TestLoggerConfig(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "info"
	lc, err := cfg.LoggerConfig()
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, lc.Level)
	assert.Equal(t, "console", lc.Format)
}
