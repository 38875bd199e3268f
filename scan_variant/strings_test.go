package scan_variant

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// utf16Host encodes code units in host order, the wide string payload layout.
func utf16Host(units ...uint16) []byte {
	out := make([]byte, 2*len(units))
	for i, u := range units {
		binary.NativeEndian.PutUint16(out[2*i:], u)
	}
	return out
}

func TestAsciiString_DecodeWindow(t *testing.T) {
	tr := mustTrait(t, "ascii string")

	buf := []byte("hello\x00world")
	v, err := FromBuffer(tr, buf[:5], true)
	require.NoError(t, err)

	assert.Equal(t, []byte("hello"), v.Bytes())
	assert.Equal(t, "hello", v.String())
}

func TestAsciiString_DecodeDoesNotReadPastWindow(t *testing.T) {
	tr := mustTrait(t, "ascii string")

	backing := []byte("abcdefgh")
	window := backing[2:4:4]

	payload, err := tr.Decode(nil, window, false)
	require.NoError(t, err)
	assert.Equal(t, []byte("cd"), payload)

	// the payload is a copy, not a view of the window
	backing[2] = 'X'
	assert.Equal(t, []byte("cd"), payload)
}

func TestAsciiString_FormatStopsAtTerminator(t *testing.T) {
	tr := mustTrait(t, "ascii string")

	assert.Equal(t, "abc", tr.Format([]byte("abc\x00def")))
	assert.Equal(t, "abc", tr.Format([]byte("abc")))
	assert.Equal(t, "", tr.Format([]byte{0, 'a'}))
	assert.Equal(t, "", tr.Format(nil))
}

func TestAsciiString_ParseAppendsTerminator(t *testing.T) {
	tr := mustTrait(t, "ascii string")

	payload, err := tr.Parse("hello")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello\x00"), payload)

	back, err := tr.Parse(tr.Format(payload))
	require.NoError(t, err)
	assert.Equal(t, payload, back)
}

func TestAsciiString_ParseErrors(t *testing.T) {
	tr := mustTrait(t, "ascii string")

	for _, text := range []string{"héllo", "a\x00b", "\xff"} {
		_, err := tr.Parse(text)
		assert.ErrorIs(t, err, ErrParse, "%q", text)
	}
}

func TestWideString_ParseFormat(t *testing.T) {
	tr := mustTrait(t, "wide string")

	payload, err := tr.Parse("hi")
	require.NoError(t, err)
	assert.Equal(t, utf16Host('h', 'i', 0), payload)
	assert.Equal(t, "hi", tr.Format(payload))
}

func TestWideString_FormatStopsAtZeroUnit(t *testing.T) {
	tr := mustTrait(t, "wide string")

	payload := utf16Host('a', 'b', 0, 'c')
	assert.Equal(t, "ab", tr.Format(payload))

	// a trailing half code unit is ignored
	odd := append(utf16Host('o', 'k'), 'x')
	assert.Equal(t, "ok", tr.Format(odd))

	// a zero byte inside a non-zero unit is not a terminator
	assert.Equal(t, "Ā", tr.Format(utf16Host(0x0100)))
}

func TestWideString_RoundTrip(t *testing.T) {
	tr := mustTrait(t, "wide string")

	for _, text := range []string{"", "hello", "grüß", "日本", "\U0001F600 ok"} {
		t.Run(text, func(t *testing.T) {
			payload, err := tr.Parse(text)
			require.NoError(t, err)
			assert.Equal(t, text, tr.Format(payload))

			back, err := tr.Parse(tr.Format(payload))
			require.NoError(t, err)
			assert.Equal(t, payload, back)
		})
	}
}

func TestWideString_SurrogatePair(t *testing.T) {
	tr := mustTrait(t, "wide string")

	payload, err := tr.Parse("\U0001F600")
	require.NoError(t, err)
	assert.Equal(t, utf16Host(0xD83D, 0xDE00, 0), payload)
}

func TestWideString_ParseErrors(t *testing.T) {
	tr := mustTrait(t, "wide string")

	for _, text := range []string{"a\x00", "\xff\xfe"} {
		_, err := tr.Parse(text)
		assert.ErrorIs(t, err, ErrParse, "%q", text)
	}
}

func TestStrings_Classification(t *testing.T) {
	for _, name := range []string{"ascii string", "wide string"} {
		t.Run(name, func(t *testing.T) {
			tr := mustTrait(t, name)

			assert.Nil(t, tr.Comparator())
			assert.Nil(t, tr.BigEndianComparator())
			assert.Zero(t, tr.Size())
			assert.Equal(t, 1, tr.Alignment())
			assert.Equal(t, "%s", tr.FormatString())
			assert.True(t, tr.IsStringType())
			assert.False(t, tr.IsNumericType())
			assert.False(t, IsOrdered(tr))
		})
	}
}

func TestOpaque_UnsupportedOperations(t *testing.T) {
	tests := []struct {
		name      string
		label     string
		alignment int
		structure bool
	}{
		{"struct", "(user-defined structure)", 1, true},
		{"null", "(null)", 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := mustTrait(t, tt.name)

			assert.Nil(t, tr.Comparator())
			assert.Nil(t, tr.BigEndianComparator())

			_, err := tr.Decode(nil, []byte{1, 2, 3, 4}, true)
			assert.ErrorIs(t, err, ErrUnsupportedOperation)

			_, err = tr.Encode(nil, nil, true)
			assert.ErrorIs(t, err, ErrUnsupportedOperation)

			_, err = tr.Parse("anything")
			assert.ErrorIs(t, err, ErrUnsupportedOperation)

			_, err = FromBuffer(tr, []byte{0}, true)
			assert.ErrorIs(t, err, ErrUnsupportedOperation)

			assert.Equal(t, tt.label, tr.Format([]byte{1, 2, 3}))
			assert.Equal(t, tt.label, NewScanVariant(tr).String())
			assert.Zero(t, tr.Size())
			assert.Equal(t, tt.alignment, tr.Alignment())
			assert.Equal(t, tt.structure, tr.IsStructureType())
			assert.Equal(t, !tt.structure, IsNullType(tr))
		})
	}
}
