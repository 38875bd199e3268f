package scan_variant

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// stringTrait holds what ASCII and wide strings share: variable length,
// byte alignment, no ordering and verbatim decoding.
type stringTrait struct {
	name   string
	base   TypeID
	target TypeID
}

func (t *stringTrait) Comparator() Comparator          { return nil }
func (t *stringTrait) BigEndianComparator() Comparator { return nil }

// Decode copies src verbatim; a terminator is neither required nor stripped.
func (t *stringTrait) Decode(dst, src []byte, sourceLittleEndian bool) ([]byte, error) {
	return append(dst[:0], src...), nil
}

func (t *stringTrait) Encode(dst, payload []byte, targetLittleEndian bool) ([]byte, error) {
	return append(dst[:0], payload...), nil
}

func (t *stringTrait) Size() int            { return 0 }
func (t *stringTrait) Alignment() int       { return 1 }
func (t *stringTrait) Name() string         { return t.name }
func (t *stringTrait) FormatString() string { return "%s" }
func (t *stringTrait) BaseType() TypeID     { return t.base }
func (t *stringTrait) TargetType() TypeID   { return t.target }

func (t *stringTrait) IsStringType() bool               { return true }
func (t *stringTrait) IsNumericType() bool              { return false }
func (t *stringTrait) IsSignedNumericType() bool        { return false }
func (t *stringTrait) IsUnsignedNumericType() bool      { return false }
func (t *stringTrait) IsFloatingPointNumericType() bool { return false }
func (t *stringTrait) IsDynamicType() bool              { return t.base != t.target }
func (t *stringTrait) IsStructureType() bool            { return false }

type asciiStringTrait struct {
	stringTrait
}

// NewAsciiStringTrait builds the single-byte string trait.
func NewAsciiStringTrait(base, target TypeID) Trait {
	return &asciiStringTrait{stringTrait{name: "ascii string", base: base, target: target}}
}

// Format renders the run before the first NUL.
func (t *asciiStringTrait) Format(payload []byte) string {
	if i := bytes.IndexByte(payload, 0); i >= 0 {
		payload = payload[:i]
	}
	return string(payload)
}

// Parse copies the text and appends a NUL terminator.
func (t *asciiStringTrait) Parse(text string) ([]byte, error) {
	for i := 0; i < len(text); i++ {
		if text[i] == 0 || text[i] >= utf8.RuneSelf {
			return nil, traitError("parse", t, fmt.Errorf("%w: byte 0x%02x at offset %d is not printable ascii", ErrParse, text[i], i))
		}
	}
	out := make([]byte, len(text)+1)
	copy(out, text)
	return out, nil
}

// wideCharSize is the width of one wide string code unit (UTF-16).
const wideCharSize = 2

type wideStringTrait struct {
	stringTrait
	codec encoding.Encoding
}

// NewWideStringTrait builds the UTF-16 string trait. Code units are kept
// in host byte order, the layout the scanned process uses natively.
func NewWideStringTrait(base, target TypeID) Trait {
	e := unicode.LittleEndian
	if !HostLittleEndian {
		e = unicode.BigEndian
	}
	return &wideStringTrait{
		stringTrait: stringTrait{name: "wide string", base: base, target: target},
		codec:       unicode.UTF16(e, unicode.IgnoreBOM),
	}
}

// Format renders the code units before the first zero unit.
func (t *wideStringTrait) Format(payload []byte) string {
	n := len(payload) - len(payload)%wideCharSize
	for i := 0; i < n; i += wideCharSize {
		if payload[i] == 0 && payload[i+1] == 0 {
			n = i
			break
		}
	}
	text, err := t.codec.NewDecoder().Bytes(payload[:n])
	if err != nil {
		return ""
	}
	return string(text)
}

// Parse encodes the text as UTF-16 and appends a zero code unit.
func (t *wideStringTrait) Parse(text string) ([]byte, error) {
	if !utf8.ValidString(text) {
		return nil, traitError("parse", t, fmt.Errorf("%w: input is not valid utf-8", ErrParse))
	}
	if strings.IndexByte(text, 0) >= 0 {
		return nil, traitError("parse", t, fmt.Errorf("%w: embedded NUL", ErrParse))
	}
	out, err := t.codec.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, traitError("parse", t, fmt.Errorf("%w: %v", ErrParse, err))
	}
	return append(out, make([]byte, wideCharSize)...), nil
}
