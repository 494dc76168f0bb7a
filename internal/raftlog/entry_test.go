package raftlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zelldon/zdb-sub001/internal/journal"
)

func TestDecodeApplicationEntry(t *testing.T) {
	payload := Encode(3, ApplicationEntry{LowestPosition: 10, HighestPosition: 12, Data: []byte("batch")})

	term, body, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, int64(3), term)
	assert.Equal(t, ApplicationEntry{LowestPosition: 10, HighestPosition: 12, Data: []byte("batch")}, body)
	assert.Equal(t, KindApplication, body.Kind())
}

func TestDecodeInitialEntry(t *testing.T) {
	term, body, err := Decode(Encode(1, ControlEntry{EntryKind: KindInitial}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), term)
	assert.Equal(t, KindInitial, body.Kind())
}

func TestDecodeConfigurationEntry(t *testing.T) {
	cfg := ControlEntry{
		EntryKind: KindConfiguration,
		Timestamp: 1700000000000,
		Members:   []Member{{ID: "0", Type: 1}, {ID: "broker-1", Type: 2}},
	}

	term, body, err := Decode(Encode(2, cfg))
	require.NoError(t, err)
	assert.Equal(t, int64(2), term)
	assert.Equal(t, cfg, body)
}

func TestDecodeErrors(t *testing.T) {
	valid := Encode(1, ApplicationEntry{LowestPosition: 1, HighestPosition: 1, Data: []byte{1, 2, 3}})
	cfg := Encode(1, ControlEntry{EntryKind: KindConfiguration, Members: []Member{{ID: "a"}}})

	tests := []struct {
		name    string
		payload []byte
		reason  string
	}{
		{"empty", nil, "shorter than the entry header"},
		{"unknown kind", append(Encode(1, ControlEntry{EntryKind: KindInitial})[:8], 9), "unknown entry kind 9"},
		{"truncated application header", valid[:15], "application entry header"},
		{"truncated application data", valid[:len(valid)-1], "does not match"},
		{"trailing application data", append(append([]byte(nil), valid...), 0), "does not match"},
		{"initial with body", append(Encode(1, ControlEntry{EntryKind: KindInitial}), 1), "unexpected bytes"},
		{"truncated configuration", cfg[:len(cfg)-1], "truncated"},
		{"trailing configuration", append(append([]byte(nil), cfg...), 0), "trailing bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(tt.payload)
			var de *DecodeError
			require.ErrorAs(t, err, &de)
			assert.Contains(t, de.Reason, tt.reason)
		})
	}
}

func TestDecodeRecordCarriesIndex(t *testing.T) {
	_, err := DecodeRecord(journal.Record{Index: 7, Data: []byte{1}})

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, int64(7), de.Index)
	assert.Contains(t, err.Error(), "index 7")
}

func TestDecodeRecord(t *testing.T) {
	payload := Encode(4, ApplicationEntry{LowestPosition: 5, HighestPosition: 6})
	rec := journal.Record{Index: 9, Asqn: 5, Checksum: 0xabcd, Data: payload, Serialized: make([]byte, 40)}

	e, err := DecodeRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, int64(9), e.Index)
	assert.Equal(t, int64(5), e.Asqn)
	assert.Equal(t, uint32(0xabcd), e.Checksum)
	assert.Equal(t, int64(4), e.Term)
	assert.Equal(t, 40, e.Size)
	assert.True(t, e.IsApplicationEntry())

	app, ok := e.ApplicationEntry()
	require.True(t, ok)
	assert.Equal(t, int64(6), app.HighestPosition)
}

func TestControlEntryIsNotApplication(t *testing.T) {
	e := Entry{Body: ControlEntry{EntryKind: KindInitial}}
	assert.False(t, e.IsApplicationEntry())
	_, ok := e.ApplicationEntry()
	assert.False(t, ok)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "APPLICATION", KindApplication.String())
	assert.Equal(t, "CONFIGURATION", KindConfiguration.String())
	assert.Equal(t, "UNKNOWN", Kind(42).String())
}
