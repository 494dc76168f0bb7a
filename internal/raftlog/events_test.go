package raftlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsRoundTrip(t *testing.T) {
	events := []LoggedEvent{
		{Position: 10, SourcePosition: -1, Timestamp: 1000, Key: -1, RecordType: RecordTypeCommand, ValueType: ValueTypeProcessInstanceCreation, Intent: 0, Value: []byte{0x80}},
		{Position: 11, SourcePosition: 10, Timestamp: 1001, Key: 2251799813685249, RecordType: RecordTypeEvent, ValueType: ValueTypeProcessInstance, Intent: 3, Value: []byte{0x81, 0xa1, 'a', 0x01}},
	}
	app := NewApplicationEntry(events...)
	assert.Equal(t, int64(10), app.LowestPosition)
	assert.Equal(t, int64(11), app.HighestPosition)

	got, err := DecodeEvents(app.Data)
	require.NoError(t, err)
	assert.Equal(t, events, got)
}

func TestDecodeEventsEmpty(t *testing.T) {
	got, err := DecodeEvents(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeEventsTruncated(t *testing.T) {
	data := AppendEvent(nil, LoggedEvent{Position: 1, Value: []byte{1, 2, 3}})

	_, err := DecodeEvents(data[:len(data)-1])
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Contains(t, de.Reason, "out of range")

	_, err = DecodeEvents(data[:10])
	require.ErrorAs(t, err, &de)
	assert.Contains(t, de.Reason, "event header")
}

func TestDecodeEventsValueLengthMismatch(t *testing.T) {
	data := AppendEvent(nil, LoggedEvent{Position: 1, Value: []byte{1, 2, 3}})
	data[40] = 2

	_, err := DecodeEvents(data)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 40, de.Offset)
}

func TestNames(t *testing.T) {
	assert.Equal(t, "COMMAND", RecordTypeCommand.String())
	assert.Equal(t, "UNKNOWN_9", RecordType(9).String())
	assert.Equal(t, "PROCESS_INSTANCE", ValueTypeProcessInstance.String())
	assert.Equal(t, "UNKNOWN_999", ValueType(999).String())

	text, err := ValueTypeJob.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "JOB", string(text))
}
