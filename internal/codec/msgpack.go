// Package codec converts the engine's MessagePack values into JSON.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tinylib/msgp/msgp"
)

// ErrEmptyValue is returned for a zero-length value.
var ErrEmptyValue = errors.New("empty value")

// MsgpackToJSON converts one MessagePack document to JSON. Trailing bytes are an error.
func MsgpackToJSON(value []byte) (json.RawMessage, error) {
	if len(value) == 0 {
		return nil, ErrEmptyValue
	}
	var buf bytes.Buffer
	rest, err := msgp.UnmarshalAsJSON(&buf, value)
	if err != nil {
		return nil, fmt.Errorf("failed to decode msgpack: %w", err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("%d trailing bytes after msgpack value", len(rest))
	}
	return json.RawMessage(buf.Bytes()), nil
}

// MsgpackToMap converts a MessagePack map to a Go map via its JSON form.
// Numbers decode as json.Number to keep 64-bit keys exact.
func MsgpackToMap(value []byte) (map[string]any, error) {
	raw, err := MsgpackToJSON(value)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("value is not a map: %w", err)
	}
	return m, nil
}
