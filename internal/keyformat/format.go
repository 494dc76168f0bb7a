package keyformat

import (
	"encoding/binary"
	"errors"
	"strconv"
	"strings"
)

// CategoryPrefixLength is the width of the category id that starts every key.
const CategoryPrefixLength = 8

// Separator joins decoded components.
const Separator = ":"

// InvalidFormatSpecError is returned by Compile for a spec containing an unknown
// component character.
type InvalidFormatSpecError struct {
	Spec     string
	Position int
	Char     rune
}

func (e *InvalidFormatSpecError) Error() string {
	return "invalid key format spec " + strconv.Quote(e.Spec) + ": unknown component " +
		strconv.QuoteRune(e.Char) + " at position " + strconv.Itoa(e.Position)
}

// errShortKey signals that a component would read past the end of the key.
var errShortKey = errors.New("key too short for format")

// component is the closed set of key component types.
type component byte

const (
	componentString    component = 's'
	componentLong      component = 'l'
	componentInt       component = 'i'
	componentByte      component = 'b'
	componentByteArray component = 'B'
)

// decode reads one component from key at offset and appends its rendering to sb.
// It returns the offset just past the component.
func (c component) decode(sb *strings.Builder, key []byte, offset int) (int, error) {
	switch c {
	case componentString:
		n, next, err := readLength(key, offset)
		if err != nil {
			return 0, err
		}
		sb.Write(key[next : next+n])
		return next + n, nil
	case componentLong:
		if len(key)-offset < 8 {
			return 0, errShortKey
		}
		sb.WriteString(strconv.FormatInt(int64(binary.BigEndian.Uint64(key[offset:])), 10))
		return offset + 8, nil
	case componentInt:
		if len(key)-offset < 4 {
			return 0, errShortKey
		}
		sb.WriteString(strconv.FormatInt(int64(int32(binary.BigEndian.Uint32(key[offset:]))), 10))
		return offset + 4, nil
	case componentByte:
		if len(key)-offset < 1 {
			return 0, errShortKey
		}
		sb.WriteString(strconv.Itoa(int(int8(key[offset]))))
		return offset + 1, nil
	case componentByteArray:
		n, next, err := readLength(key, offset)
		if err != nil {
			return 0, err
		}
		writeHex(sb, key[next:next+n])
		return next + n, nil
	}
	// Compile rejects anything else.
	panic("keyformat: unknown component " + strconv.QuoteRune(rune(c)))
}

func componentFor(r rune) (component, bool) {
	switch c := component(r); r {
	case 's', 'l', 'i', 'b', 'B':
		return c, true
	}
	return 0, false
}

// readLength reads a 4-byte length prefix and checks the payload fits in key.
func readLength(key []byte, offset int) (n, next int, err error) {
	if len(key)-offset < 4 {
		return 0, 0, errShortKey
	}
	length := int32(binary.BigEndian.Uint32(key[offset:]))
	next = offset + 4
	if length < 0 || int(length) > len(key)-next {
		return 0, 0, errShortKey
	}
	return int(length), next, nil
}

// Formatter renders keys according to a compiled format spec.
// A nil *Formatter renders every key as hex. Formatters are immutable and safe
// for concurrent use.
type Formatter struct {
	spec       string
	components []component
	hex        bool
}

// hexFormatter is the fallback used for unregistered categories.
var hexFormatter = &Formatter{hex: true}

// HexFormatter returns the formatter that renders whole keys as hex.
func HexFormatter() *Formatter {
	return hexFormatter
}

// Compile validates spec and returns the formatter for it. The empty spec is
// valid and renders every key that carries a category prefix as "".
func Compile(spec string) (*Formatter, error) {
	components := make([]component, 0, len(spec))
	for i, r := range spec {
		c, ok := componentFor(r)
		if !ok {
			return nil, &InvalidFormatSpecError{Spec: spec, Position: i, Char: r}
		}
		components = append(components, c)
	}
	return &Formatter{spec: spec, components: components}, nil
}

// MustCompile is like Compile but panics on an invalid spec.
func MustCompile(spec string) *Formatter {
	f, err := Compile(spec)
	if err != nil {
		panic(err)
	}
	return f
}

// Spec returns the format spec the formatter was compiled from, or "" for the hex formatter.
func (f *Formatter) Spec() string {
	if f == nil {
		return ""
	}
	return f.spec
}

// IsHex reports whether the formatter always renders hex.
func (f *Formatter) IsHex() bool {
	return f == nil || f.hex
}

// Format renders key. It never fails: a key that does not match the layout is
// rendered as hex.
func (f *Formatter) Format(key []byte) string {
	if f.IsHex() {
		return Hex(key)
	}
	s, err := f.decode(key)
	if err != nil {
		return Hex(key)
	}
	return s
}

// Decode renders key and reports whether the layout matched. Unlike Format it
// does not fall back to hex.
func (f *Formatter) Decode(key []byte) (string, bool) {
	if f.IsHex() {
		return Hex(key), true
	}
	s, err := f.decode(key)
	return s, err == nil
}

func (f *Formatter) decode(key []byte) (string, error) {
	if len(key) < CategoryPrefixLength {
		return "", errShortKey
	}
	var sb strings.Builder
	offset := CategoryPrefixLength
	for i, c := range f.components {
		if i > 0 {
			sb.WriteString(Separator)
		}
		next, err := c.decode(&sb, key, offset)
		if err != nil {
			return "", err
		}
		offset = next
	}
	return sb.String(), nil
}

// Hex renders b as lowercase two-digit hex pairs separated by single spaces.
func Hex(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 3)
	writeHex(&sb, b)
	return sb.String()
}

const hexDigits = "0123456789abcdef"

func writeHex(sb *strings.Builder, b []byte) {
	for i, v := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(hexDigits[v>>4])
		sb.WriteByte(hexDigits[v&0x0f])
	}
}
