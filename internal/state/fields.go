package state

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Zelldon/zdb-sub001/internal/codec"
	"github.com/Zelldon/zdb-sub001/internal/keyformat"
)

// fields is a decoded MessagePack object. Missing or mistyped fields read as
// their zero value, since values written by other engine versions may lack them.
type fields map[string]any

func decodeFields(value []byte) (fields, error) {
	m, err := codec.MsgpackToMap(value)
	if err != nil {
		return nil, err
	}
	return fields(m), nil
}

func (f fields) long(name string) int64 {
	switch v := f[name].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return n
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

// text renders strings as is and numbers in decimal.
func (f fields) text(name string) string {
	switch v := f[name].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	}
	return ""
}

func (f fields) object(name string) fields {
	m, _ := f[name].(map[string]any)
	return fields(m)
}

// bytes returns a binary field as text. MessagePack bin values reach JSON
// base64 encoded; plain strings are returned unchanged.
func (f fields) bytes(name string) string {
	s := f.text(name)
	if b, err := base64.StdEncoding.DecodeString(s); err == nil && utf8.Valid(b) {
		return string(b)
	}
	return s
}

var (
	longKey     = keyformat.MustCompile("l")
	longPairKey = keyformat.MustCompile("ll")
	errKeyShape = errors.New("key does not match layout")
	// errStop ends an Each early without reporting an error.
	errStop = errors.New("stop")
)

// keyLongs decodes a key made only of long components.
func keyLongs(f *keyformat.Formatter, key []byte) ([]int64, error) {
	s, ok := f.Decode(key)
	if !ok {
		return nil, errKeyShape
	}
	parts := strings.Split(s, keyformat.Separator)
	out := make([]int64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, errKeyShape
		}
		out[i] = n
	}
	return out, nil
}

// ValueError records an entry whose value a typed view could not decode.
type ValueError struct {
	Category string `json:"cf"`
	Key      string `json:"key"`
	Error    string `json:"error"`
}

func valueError(e Entry, err error) ValueError {
	return ValueError{Category: e.Category.String(), Key: e.FormattedKey, Error: err.Error()}
}

// Listing is the result of a typed view over one category.
type Listing[T any] struct {
	Items  []T          `json:"items"`
	Errors []ValueError `json:"errors,omitempty"`
}

func (r *Reader) exists(key []byte) (bool, error) {
	_, err := r.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}
