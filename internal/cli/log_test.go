package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zelldon/zdb-sub001/internal/inspect"
	"github.com/Zelldon/zdb-sub001/internal/raftlog"
	"github.com/Zelldon/zdb-sub001/internal/store"
	"github.com/Zelldon/zdb-sub001/internal/testutil"
)

// writeLog builds a partition with an initial entry and two application
// entries holding positions 1 to 3.
func writeLog(t *testing.T) string {
	t.Helper()
	job := testutil.MsgpackMap(t, []string{"type"}, map[string]any{"type": "payment"})
	event := func(pos, source int64, rt raftlog.RecordType) raftlog.LoggedEvent {
		return raftlog.LoggedEvent{
			Position: pos, SourcePosition: source, Key: 10, Timestamp: 1700000000000,
			RecordType: rt, ValueType: raftlog.ValueTypeJob, Value: job,
		}
	}
	b := testutil.NewJournal(t, filepath.Join(t.TempDir(), "1"), 1)
	b.AppendControl(1, raftlog.KindInitial)
	b.AppendEvents(1, event(1, -1, raftlog.RecordTypeCommand), event(2, 1, raftlog.RecordTypeEvent))
	b.AppendEvents(2, event(3, 2, raftlog.RecordTypeEvent))
	return b.Write()
}

func TestLogStatus(t *testing.T) {
	dir := writeLog(t)

	code, stdout, stderr := run(t, "log", "status", "--path", dir)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "Scanned entries:")
	assert.Contains(t, stdout, "1 - 3")

	code, resp, data := runJSON(t, "log", "status", "--path", dir, "--quiet")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "ok", resp.Status)

	var status inspect.Status
	require.NoError(t, json.Unmarshal(data, &status))
	assert.Equal(t, int64(3), status.ScannedEntries)
	assert.Equal(t, int64(2), status.HighestTerm)
	assert.Equal(t, int64(3), status.HighestRecordPosition)
}

func TestReadOnlyWarning(t *testing.T) {
	dir := writeLog(t)

	_, _, stderr := run(t, "log", "status", "--path", dir)
	assert.Contains(t, stderr, "read-only inspection")

	_, _, stderr = run(t, "log", "status", "--path", dir, "--quiet")
	assert.NotContains(t, stderr, "read-only inspection")
}

func TestLogPaths(t *testing.T) {
	code, _, stderr := run(t, "log", "status")
	assert.Equal(t, ExitCommandError, code, "missing --path")
	assert.Contains(t, stderr, "path")

	code, _, _ = run(t, "log", "status", "--path", filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, ExitCommandError, code)

	code, _, stderr = run(t, "log", "status", "--path", t.TempDir())
	assert.Equal(t, ExitFailure, code, "directory without segments")
	assert.Contains(t, stderr, "failed to open log")
}

func TestLogPrint(t *testing.T) {
	dir := writeLog(t)

	code, stdout, _ := run(t, "log", "print", "--path", dir, "-q")
	require.Equal(t, ExitSuccess, code)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "index=1 term=1 INITIAL", lines[0])
	assert.Contains(t, lines[2], "position=2 source=1 key=10 EVENT JOB intent=0")

	code, _, data := runJSON(t, "log", "print", "--path", dir, "--from", "2", "--filter", `recordType == "EVENT"`, "-q")
	require.Equal(t, ExitSuccess, code)
	var content inspect.Content
	require.NoError(t, json.Unmarshal(data, &content))
	require.Len(t, content.Records, 2)
	assert.Len(t, content.Records[0].Entries, 1)
	assert.Equal(t, int64(2), content.Records[0].Entries[0].Position)
}

func TestLogPrintDOT(t *testing.T) {
	code, stdout, _ := run(t, "log", "print", "--path", writeLog(t), "--format", "dot", "-q")
	require.Equal(t, ExitSuccess, code)
	assert.True(t, strings.HasPrefix(stdout, "digraph log {\nrankdir=\"RL\";\n"))
	assert.Contains(t, stdout, "3 -> 2;")
	assert.True(t, strings.HasSuffix(stdout, "\n}"))
}

func TestLogPrintInvalidFilter(t *testing.T) {
	code, _, stderr := run(t, "log", "print", "--path", writeLog(t), "--filter", "index >")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "invalid --filter")
}

func TestLogSearch(t *testing.T) {
	dir := writeLog(t)

	code, stdout, _ := run(t, "log", "search", "--path", dir, "--position", "3", "-q")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "position=3 source=2")

	code, _, data := runJSON(t, "log", "search", "--path", dir, "--index", "2", "-q")
	require.Equal(t, ExitSuccess, code)
	var content inspect.Content
	require.NoError(t, json.Unmarshal(data, &content))
	require.Len(t, content.Records, 1)
	assert.Equal(t, int64(2), content.Records[0].Index)

	code, _, stderr := run(t, "log", "search", "--path", dir, "--position", "99", "-q")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "no record with position 99")

	code, resp, _ := runJSON(t, "log", "search", "--path", dir, "--index", "42", "-q")
	assert.Equal(t, ExitFailure, code)
	assert.Equal(t, "error", resp.Status)

	code, _, _ = run(t, "log", "search", "--path", dir)
	assert.Equal(t, ExitCommandError, code, "one of --position or --index is required")

	code, _, _ = run(t, "log", "search", "--path", dir, "--position", "1", "--index", "1")
	assert.Equal(t, ExitCommandError, code)
}

func TestLogExport(t *testing.T) {
	out := filepath.Join(t.TempDir(), "export.db")

	code, _, data := runJSON(t, "log", "export", "--path", writeLog(t), "--out", out, "-q")
	require.Equal(t, ExitSuccess, code)

	var result exportResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, int64(3), result.Entries)
	assert.Equal(t, store.RowCounts{LogEntries: 3, LogEvents: 3}, result.Rows)

	st, err := store.Open(out)
	require.NoError(t, err)
	defer st.Close()
	exports, err := st.ListExports(context.Background())
	require.NoError(t, err)
	require.Len(t, exports, 1)
	assert.Equal(t, result.ExportID, exports[0].ID)
	assert.Equal(t, store.KindLog, exports[0].Kind)
}
