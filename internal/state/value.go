package state

import (
	"encoding/json"

	"github.com/Zelldon/zdb-sub001/internal/codec"
	"github.com/Zelldon/zdb-sub001/internal/keyformat"
)

// ValueDecoder turns raw values into JSON.
type ValueDecoder interface {
	DecodeValue(c keyformat.Category, value []byte) (json.RawMessage, error)
}

// MsgpackJSON decodes values stored as a single MessagePack document.
type MsgpackJSON struct{}

// DecodeValue implements ValueDecoder.
func (MsgpackJSON) DecodeValue(_ keyformat.Category, value []byte) (json.RawMessage, error) {
	return codec.MsgpackToJSON(value)
}

// Row is the rendered form of an entry.
type Row struct {
	Category string          `json:"cf"`
	Key      string          `json:"key"`
	Value    json.RawMessage `json:"value"`
	// Error is set when the value could not be decoded; Value then holds its hex form.
	Error string `json:"error,omitempty"`
}

// Render decodes e with dec. A value dec cannot handle is rendered as a hex
// string and the error recorded on the row.
func Render(dec ValueDecoder, e Entry) Row {
	row := Row{Category: e.Category.String(), Key: e.FormattedKey}
	v, err := dec.DecodeValue(e.Category, e.Value)
	if err != nil {
		hex, _ := json.Marshal(keyformat.Hex(e.Value))
		row.Value = hex
		row.Error = err.Error()
		return row
	}
	row.Value = v
	return row
}
