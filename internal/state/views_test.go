package state_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zelldon/zdb-sub001/internal/keyformat"
	"github.com/Zelldon/zdb-sub001/internal/state"
	"github.com/Zelldon/zdb-sub001/internal/testutil"
)

func long(c keyformat.Category, keys ...int64) []byte {
	b := keyformat.NewKey(c)
	for _, k := range keys {
		b.Long(k)
	}
	return b.Bytes()
}

func processValue(t *testing.T, key int64, id string) []byte {
	return testutil.MsgpackMap(t, []string{"bpmnProcessId", "version", "key", "resourceName", "resource"},
		map[string]any{
			"bpmnProcessId": id, "version": int64(1), "key": key,
			"resourceName": id + ".bpmn", "resource": []byte("<definitions/>"),
		})
}

func elementValue(t *testing.T, key, parent int64, elementType string) []byte {
	return testutil.MsgpackMap(t, []string{"parentKey", "childCount", "elementRecord"}, map[string]any{
		"parentKey":  parent,
		"childCount": int64(1),
		"elementRecord": map[string]any{
			"key":   key,
			"state": "ELEMENT_ACTIVATED",
			"processInstanceRecord": map[string]any{
				"bpmnProcessId":        "order",
				"processDefinitionKey": int64(1),
				"processInstanceKey":   int64(10),
				"elementId":            "order",
				"bpmnElementType":      elementType,
			},
		},
	})
}

// writeEngineState stores one process with a running instance, an incident,
// a banned instance and a few dangling references.
func writeEngineState(t *testing.T) string {
	t.Helper()
	incident := testutil.MsgpackMap(t, []string{"incidentRecord"}, map[string]any{
		"incidentRecord": map[string]any{
			"errorType":          "JOB_NO_RETRIES",
			"errorMessage":       "boom",
			"bpmnProcessId":      "order",
			"processInstanceKey": int64(10),
			"elementInstanceKey": int64(11),
			"elementId":          "task",
			"jobKey":             int64(20),
		},
	})
	nilValue := []byte{0xc0}
	return testutil.WriteState(t, filepath.Join(t.TempDir(), "runtime"),
		testutil.StateEntry{Key: keyformat.NewKey(keyformat.ProcessCache).String("<default>").Long(1).Bytes(), Value: processValue(t, 1, "order")},
		testutil.StateEntry{Key: long(keyformat.DeprecatedProcessCache, 1), Value: processValue(t, 1, "order")},
		testutil.StateEntry{Key: long(keyformat.DeprecatedProcessCache, 2), Value: processValue(t, 2, "legacy")},
		testutil.StateEntry{Key: long(keyformat.ElementInstanceKey, 10), Value: elementValue(t, 10, -1, state.ElementTypeProcess)},
		testutil.StateEntry{Key: long(keyformat.ElementInstanceKey, 11), Value: elementValue(t, 11, 10, "SERVICE_TASK")},
		testutil.StateEntry{Key: long(keyformat.ElementInstanceKey, 12), Value: elementValue(t, 12, 99, "SERVICE_TASK")},
		testutil.StateEntry{Key: long(keyformat.ElementInstanceParentChild, 10, 11), Value: nilValue},
		testutil.StateEntry{Key: long(keyformat.ElementInstanceParentChild, 10, 98), Value: nilValue},
		testutil.StateEntry{Key: long(keyformat.Incidents, 30), Value: incident},
		testutil.StateEntry{Key: long(keyformat.Incidents, 31), Value: []byte{0xc1}},
		testutil.StateEntry{Key: long(keyformat.BannedInstance, 10), Value: nilValue},
		testutil.StateEntry{Key: long(keyformat.MessageKey, 40), Value: nilValue},
		testutil.StateEntry{Key: long(keyformat.MessageDeadlines, 1000, 40), Value: nilValue},
		testutil.StateEntry{Key: long(keyformat.MessageDeadlines, 1001, 41), Value: nilValue},
	)
}

func TestProcesses(t *testing.T) {
	r := open(t, writeEngineState(t), keyformat.DefaultRegistry())

	list, err := r.Processes()
	require.NoError(t, err)
	assert.Empty(t, list.Errors)
	assert.Equal(t, []state.ProcessMeta{
		{BpmnProcessID: "order", ResourceName: "order.bpmn", ProcessDefinitionKey: 1, Version: 1},
		{BpmnProcessID: "legacy", ResourceName: "legacy.bpmn", ProcessDefinitionKey: 2, Version: 1},
	}, list.Items)

	p, err := r.Process(2)
	require.NoError(t, err)
	assert.Equal(t, "legacy", p.BpmnProcessID)
	assert.Equal(t, "<definitions/>", p.Resource)

	_, err = r.Process(3)
	assert.ErrorIs(t, err, state.ErrNotFound)
}

func TestProcessInstances(t *testing.T) {
	r := open(t, writeEngineState(t), keyformat.DefaultRegistry())

	list, err := r.ProcessInstances(1)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	inst := list.Items[0]
	assert.Equal(t, int64(10), inst.Key)
	assert.Equal(t, "ELEMENT_ACTIVATED", inst.State)
	assert.Equal(t, []int64{11, 98}, inst.Children)

	list, err = r.ProcessInstances(2)
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestInstance(t *testing.T) {
	r := open(t, writeEngineState(t), keyformat.DefaultRegistry())

	inst, err := r.Instance(11)
	require.NoError(t, err)
	assert.Equal(t, int64(10), inst.ParentKey)
	assert.Equal(t, int64(1), inst.ChildCount)
	assert.Equal(t, "SERVICE_TASK", inst.Record.BpmnElementType)
	assert.Equal(t, int64(10), inst.Record.ProcessInstanceKey)
	assert.Equal(t, []int64{}, inst.Children)

	_, err = r.Instance(13)
	assert.ErrorIs(t, err, state.ErrNotFound)
}

func TestIncidents(t *testing.T) {
	r := open(t, writeEngineState(t), keyformat.DefaultRegistry())

	list, err := r.Incidents()
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, state.IncidentDetails{
		Key: 30, BpmnProcessID: "order", ProcessInstanceKey: 10, ElementInstanceKey: 11,
		ElementID: "task", JobKey: 20, ErrorType: "JOB_NO_RETRIES", ErrorMessage: "boom",
	}, list.Items[0])
	require.Len(t, list.Errors, 1)
	assert.Equal(t, "31", list.Errors[0].Key)

	inc, err := r.Incident(30)
	require.NoError(t, err)
	assert.Equal(t, "boom", inc.ErrorMessage)

	_, err = r.Incident(32)
	assert.ErrorIs(t, err, state.ErrNotFound)
}

func TestBannedInstances(t *testing.T) {
	r := open(t, writeEngineState(t), keyformat.DefaultRegistry())

	list, err := r.BannedInstances()
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, list.Items)

	banned, err := r.IsBanned(10)
	require.NoError(t, err)
	assert.True(t, banned)
	banned, err = r.IsBanned(11)
	require.NoError(t, err)
	assert.False(t, banned)
}

func TestCheck(t *testing.T) {
	r := open(t, writeEngineState(t), keyformat.DefaultRegistry())

	found, err := r.Check()
	require.NoError(t, err)
	assert.Equal(t, []state.Inconsistency{
		{Check: state.CheckElementInstances, Category: "ELEMENT_INSTANCE_KEY", Key: "12", Message: "parent 99 does not exist"},
		{Check: state.CheckParentChild, Category: "ELEMENT_INSTANCE_PARENT_CHILD", Key: "10:98", Message: "child 98 does not exist"},
		{Check: state.CheckMessageDeadlines, Category: "MESSAGE_DEADLINES", Key: "1001", Message: "message 41 no longer exists"},
	}, found)

	found, err = r.Check(state.CheckMessageDeadlines)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	_, err = r.Check("everything")
	assert.ErrorIs(t, err, state.ErrUnknownCheck)
}

func TestCheckConsistentState(t *testing.T) {
	r := open(t, fixture(t), keyformat.DefaultRegistry())

	found, err := r.Check()
	require.NoError(t, err)
	assert.Empty(t, found)
}
