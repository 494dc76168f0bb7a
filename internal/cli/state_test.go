package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zelldon/zdb-sub001/internal/keyformat"
	"github.com/Zelldon/zdb-sub001/internal/state"
	"github.com/Zelldon/zdb-sub001/internal/testutil"
)

func writeState(t *testing.T) string {
	t.Helper()
	job := testutil.MsgpackMap(t, []string{"type"}, map[string]any{"type": "payment"})
	variable := testutil.MsgpackMap(t, []string{"value"}, map[string]any{"value": "42"})
	return testutil.WriteState(t, filepath.Join(t.TempDir(), "runtime"),
		testutil.StateEntry{Key: keyformat.NewKey(keyformat.Variables).Long(1).String("a").Bytes(), Value: variable},
		testutil.StateEntry{Key: keyformat.NewKey(keyformat.Jobs).Long(7).Bytes(), Value: job},
		testutil.StateEntry{Key: keyformat.NewKey(keyformat.Jobs).Long(8).Bytes(), Value: []byte{0xc1}},
	)
}

func decodeRows(t *testing.T, data json.RawMessage) []state.Row {
	t.Helper()
	var rows []state.Row
	require.NoError(t, json.Unmarshal(data, &rows))
	return rows
}

func TestStateList(t *testing.T) {
	dir := writeState(t)

	code, stdout, _ := run(t, "state", "list", "--path", dir, "-q")
	require.Equal(t, ExitSuccess, code)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `VARIABLES 1:a {"value":"42"}`, lines[0])
	assert.Equal(t, `JOBS 7 {"type":"payment"}`, lines[1])
	assert.True(t, strings.HasPrefix(lines[2], `JOBS 8 "c1" (`), "undecodable values render as hex with the error")

	code, _, data := runJSON(t, "state", "list", "--path", dir, "--category", "JOBS", "-q")
	require.Equal(t, ExitSuccess, code)
	rows := decodeRows(t, data)
	require.Len(t, rows, 2)
	assert.Equal(t, "7", rows[0].Key)
	assert.NotEmpty(t, rows[1].Error)

	code, _, data = runJSON(t, "state", "list", "--path", dir, "--category", "15", "--prefix", "0000000000000008", "-q")
	require.Equal(t, ExitSuccess, code)
	require.Len(t, decodeRows(t, data), 1)
}

func TestStateListKeyRendering(t *testing.T) {
	dir := writeState(t)
	jobKey := keyformat.NewKey(keyformat.Jobs).Long(7).Bytes()

	_, _, data := runJSON(t, "state", "list", "--path", dir, "--category", "JOBS", "--hex-keys", "-q")
	assert.Equal(t, keyformat.Hex(jobKey), decodeRows(t, data)[0].Key)

	_, _, data = runJSON(t, "state", "list", "--path", dir, "--category", "JOBS", "--key-format", "i", "-q")
	assert.Equal(t, "0", decodeRows(t, data)[0].Key)

	code, _, _ := run(t, "state", "list", "--path", dir, "--key-format", "x")
	assert.Equal(t, ExitCommandError, code)

	cfg := filepath.Join(t.TempDir(), "zdb.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("keys:\n  mode: hex\n"), 0o644))
	_, _, data = runJSON(t, "state", "list", "--path", dir, "--category", "JOBS", "--config", cfg, "-q")
	assert.Equal(t, keyformat.Hex(jobKey), decodeRows(t, data)[0].Key)
}

func TestStateListInvalidFilters(t *testing.T) {
	dir := writeState(t)

	code, _, _ := run(t, "state", "list", "--path", dir, "--category", "NOPE")
	assert.Equal(t, ExitCommandError, code)

	code, _, _ = run(t, "state", "list", "--path", dir, "--prefix", "zz")
	assert.Equal(t, ExitCommandError, code)
}

func TestStateStats(t *testing.T) {
	dir := writeState(t)

	code, stdout, _ := run(t, "state", "stats", "--path", dir, "-q")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "VARIABLES")
	assert.Contains(t, stdout, "TOTAL")

	code, _, data := runJSON(t, "state", "stats", "--path", dir, "-q")
	require.Equal(t, ExitSuccess, code)
	var stats state.Stats
	require.NoError(t, json.Unmarshal(data, &stats))
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, map[string]int64{"VARIABLES": 1, "JOBS": 2}, stats.Counts())
}

func TestStateGet(t *testing.T) {
	dir := writeState(t)

	code, _, data := runJSON(t, "state", "get", "--path", dir, "--category", "JOBS", "--key", "7", "-q")
	require.Equal(t, ExitSuccess, code)
	rows := decodeRows(t, data)
	require.Len(t, rows, 1)
	assert.JSONEq(t, `{"type":"payment"}`, string(rows[0].Value))

	raw := keyformat.Hex(keyformat.NewKey(keyformat.Jobs).Long(7).Bytes())
	code, _, data = runJSON(t, "state", "get", "--path", dir, "--raw-key", raw, "-q")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "7", decodeRows(t, data)[0].Key)

	code, _, stderr := run(t, "state", "get", "--path", dir, "--category", "JOBS", "--key", "9", "-q")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "no entry for key")

	code, _, _ = run(t, "state", "get", "--path", dir, "--category", "JOBS", "-q")
	assert.Equal(t, ExitCommandError, code)
}

func TestStateExport(t *testing.T) {
	out := filepath.Join(t.TempDir(), "export.db")

	code, _, data := runJSON(t, "state", "export", "--path", writeState(t), "--out", out, "-q")
	require.Equal(t, ExitSuccess, code)

	var result exportResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, int64(3), result.Entries)
	assert.Equal(t, int64(3), result.Rows.StateEntries)
}

func TestStateNotAStore(t *testing.T) {
	code, _, stderr := run(t, "state", "list", "--path", t.TempDir(), "-q")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "failed to open state")
}

func TestStateGetShortRawKey(t *testing.T) {
	dir := testutil.WriteState(t, filepath.Join(t.TempDir(), "runtime"),
		testutil.StateEntry{Key: []byte{1, 2}, Value: testutil.MsgpackMap(t, []string{"a"}, map[string]any{"a": 1})},
	)

	code, _, data := runJSON(t, "state", "get", "--path", dir, "--raw-key", "0102", "-q")
	require.Equal(t, ExitSuccess, code)
	rows := decodeRows(t, data)
	require.Len(t, rows, 1)
	assert.Equal(t, "UNKNOWN", rows[0].Category)
	assert.Equal(t, "01 02", rows[0].Key)
}
