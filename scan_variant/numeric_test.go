package scan_variant

import (
	"encoding/binary"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sinkOrdering Ordering

func mustTrait(t *testing.T, name string) Trait {
	t.Helper()
	tr, ok := Default().ByName(name)
	require.True(t, ok, "trait %q not registered", name)
	return tr
}

func numericTraits() []Trait {
	var out []Trait
	for _, tr := range Default().All() {
		if tr.IsNumericType() {
			out = append(out, tr)
		}
	}
	return out
}

func TestNumeric_Int32ParseFormat(t *testing.T) {
	tr := mustTrait(t, "int32")

	v, err := FromString(tr, "12345")
	require.NoError(t, err)

	le, err := v.Encode(true)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x39, 0x30, 0x00, 0x00}, le)
	assert.Equal(t, "12345", v.String())
}

func TestNumeric_FloatParseFormat(t *testing.T) {
	tr := mustTrait(t, "float")

	v, err := FromString(tr, "3.14")
	require.NoError(t, err)

	again, err := FromString(tr, v.String())
	require.NoError(t, err)

	got, err := ValueOf[float32](again)
	require.NoError(t, err)

	want := float32(3.14)
	ulp := math.Nextafter32(want, math.MaxFloat32) - want
	assert.LessOrEqual(t, math.Abs(float64(got-want)), float64(ulp))
}

func TestNumeric_Int16BigEndianComparator(t *testing.T) {
	tr := mustTrait(t, "int16")

	cmp := tr.BigEndianComparator()
	require.NotNil(t, cmp)
	assert.Equal(t, Less, cmp([]byte{0x00, 0x01}, []byte{0x00, 0x02}))
	assert.Equal(t, Greater, cmp([]byte{0x00, 0x02}, []byte{0x00, 0x01}))
	assert.Equal(t, Equal, cmp([]byte{0x12, 0x34}, []byte{0x12, 0x34}))

	// sign bit lives in the first byte of a big-endian buffer
	assert.Equal(t, Less, cmp([]byte{0xFF, 0xFF}, []byte{0x00, 0x00}))
}

func TestNumeric_DecodeSwapsForeignOrder(t *testing.T) {
	tr := mustTrait(t, "uint32")

	be := []byte{0x01, 0x02, 0x03, 0x04}
	v, err := FromBuffer(tr, be, false)
	require.NoError(t, err)

	got, err := ValueOf[uint32](v)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x01020304), got)

	le := []byte{0x04, 0x03, 0x02, 0x01}
	v2, err := FromBuffer(tr, le, true)
	require.NoError(t, err)
	assert.True(t, v.Equal(v2))
}

func TestNumeric_DecodeSizeMismatch(t *testing.T) {
	for _, tr := range numericTraits() {
		t.Run(tr.Name(), func(t *testing.T) {
			_, err := tr.Decode(nil, make([]byte, tr.Size()+1), true)
			assert.ErrorIs(t, err, ErrSizeMismatch)

			_, err = tr.Decode(nil, make([]byte, tr.Size()-1), true)
			assert.ErrorIs(t, err, ErrSizeMismatch)

			_, err = tr.Encode(nil, nil, false)
			assert.ErrorIs(t, err, ErrSizeMismatch)

			var te *TraitError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, "encode", te.Op)
			assert.Equal(t, tr.Name(), te.Trait)
		})
	}
}

func TestNumeric_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for _, tr := range numericTraits() {
		t.Run(tr.Name(), func(t *testing.T) {
			cmp := tr.Comparator()
			payload := make([]byte, tr.Size())
			for i := 0; i < 500; i++ {
				for j := range payload {
					payload[j] = byte(rng.Uint32())
				}

				text := tr.Format(payload)
				back, err := tr.Parse(text)
				require.NoError(t, err, "parse %q", text)
				require.Equal(t, Equal, cmp(payload, back), "%q did not round-trip", text)
				if !strings.Contains(text, "NaN") {
					require.Equal(t, payload, back, "%q did not round-trip bytes", text)
				}
			}
		})
	}
}

func TestNumeric_RoundTripLimits(t *testing.T) {
	tests := []struct {
		trait string
		texts []string
	}{
		{"int8", []string{"-128", "127", "0", "-1"}},
		{"uint8", []string{"0", "255"}},
		{"int16", []string{"-32768", "32767"}},
		{"uint16", []string{"65535"}},
		{"int32", []string{"-2147483648", "2147483647"}},
		{"uint32", []string{"4294967295"}},
		{"int64", []string{"-9223372036854775808", "9223372036854775807"}},
		{"uint64", []string{"18446744073709551615"}},
		{"float", []string{"3.4028235e+38", "1e-45", "-0", "+Inf", "-Inf"}},
		{"double", []string{"1.7976931348623157e+308", "5e-324", "0.1"}},
		{"pointer32", []string{"0xFFFFFFFF", "0x0"}},
		{"pointer64", []string{"0x7FFE12345678"}},
	}

	for _, tt := range tests {
		t.Run(tt.trait, func(t *testing.T) {
			tr := mustTrait(t, tt.trait)
			for _, text := range tt.texts {
				payload, err := tr.Parse(text)
				require.NoError(t, err, text)
				assert.Equal(t, text, tr.Format(payload))
			}
		})
	}
}

func TestNumeric_ParseAcceptsHexAndWhitespace(t *testing.T) {
	tr := mustTrait(t, "int32")

	for text, want := range map[string]int32{
		"0x10":   16,
		"-0x10":  -16,
		" 42 ":   42,
		"+7":     7,
		"0XfF":   255,
		"000123": 123,
	} {
		v, err := FromString(tr, text)
		require.NoError(t, err, text)
		got, err := ValueOf[int32](v)
		require.NoError(t, err)
		assert.Equal(t, want, got, text)
	}
}

func TestNumeric_ParseErrors(t *testing.T) {
	tests := []struct {
		trait string
		text  string
	}{
		{"int8", "128"},
		{"int8", "-129"},
		{"uint8", "-1"},
		{"uint8", "256"},
		{"int32", "abc"},
		{"int32", ""},
		{"int32", "0x"},
		{"int32", "+-5"},
		{"int32", "--5"},
		{"int32", "0x-5"},
		{"int32", "0x+5"},
		{"int32", "-0x-5"},
		{"uint16", "+-1"},
		{"uint64", "1.5"},
		{"float", "1e999"},
		{"double", "pi"},
	}

	for _, tt := range tests {
		t.Run(tt.trait+"/"+tt.text, func(t *testing.T) {
			_, err := mustTrait(t, tt.trait).Parse(tt.text)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestNumeric_Reflexivity(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))

	for _, tr := range numericTraits() {
		cmp, big := tr.Comparator(), tr.BigEndianComparator()
		buf := make([]byte, tr.Size())
		for i := 0; i < 100; i++ {
			for j := range buf {
				buf[j] = byte(rng.Uint32())
			}
			assert.Equal(t, Equal, cmp(buf, buf), "%s %x", tr.Name(), buf)
			assert.Equal(t, Equal, big(buf, buf), "%s %x", tr.Name(), buf)
		}
	}
}

func TestNumeric_OrderFidelity(t *testing.T) {
	tests := []struct {
		trait string
		lo    string
		hi    string
	}{
		{"int8", "-100", "5"},
		{"uint8", "5", "200"},
		{"int16", "-2", "-1"},
		{"uint16", "255", "256"},
		{"int32", "-5", "7"},
		{"uint32", "1", "4294967295"},
		{"int64", "-9223372036854775808", "0"},
		{"uint64", "9223372036854775808", "18446744073709551615"},
		{"float", "-1.5", "0.25"},
		{"double", "-Inf", "-1e300"},
		{"pointer64", "0x1000", "0x7FFF0000"},
	}

	for _, tt := range tests {
		t.Run(tt.trait, func(t *testing.T) {
			tr := mustTrait(t, tt.trait)
			x, err := tr.Parse(tt.lo)
			require.NoError(t, err)
			y, err := tr.Parse(tt.hi)
			require.NoError(t, err)

			cmp := tr.Comparator()
			assert.Equal(t, Less, cmp(x, y))
			assert.Equal(t, Greater, cmp(y, x))
		})
	}
}

func TestNumeric_EndiannessEquivalence(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))

	for _, tr := range numericTraits() {
		t.Run(tr.Name(), func(t *testing.T) {
			x := make([]byte, tr.Size())
			y := make([]byte, tr.Size())
			for i := 0; i < 300; i++ {
				for j := range x {
					x[j], y[j] = byte(rng.Uint32()), byte(rng.Uint32())
				}
				bx, err := tr.Encode(nil, x, false)
				require.NoError(t, err)
				by, err := tr.Encode(nil, y, false)
				require.NoError(t, err)

				assert.Equal(t, tr.Comparator()(x, y), tr.BigEndianComparator()(bx, by))
			}
		})
	}
}

func TestNumeric_FloatExactness(t *testing.T) {
	tr := mustTrait(t, "double")
	cmp := tr.Comparator()

	parse := func(s string) []byte {
		b, err := tr.Parse(s)
		require.NoError(t, err)
		return b
	}

	assert.Equal(t, Equal, cmp(parse("0"), parse("-0")))
	assert.Equal(t, Equal, cmp(parse("NaN"), parse("NaN")))
	assert.Equal(t, Less, cmp(parse("NaN"), parse("-Inf")))
	assert.Equal(t, Less, cmp(parse("0.1"), parse("0.10000000000000002")))
}

func TestNumeric_ComparatorsDoNotAllocate(t *testing.T) {
	for _, tr := range numericTraits() {
		a := make([]byte, tr.Size())
		b := make([]byte, tr.Size())
		b[0] = 1
		cmp, big := tr.Comparator(), tr.BigEndianComparator()

		allocs := testing.AllocsPerRun(100, func() {
			sinkOrdering = cmp(a, b)
			sinkOrdering = big(a, b)
		})
		assert.Zero(t, allocs, tr.Name())
	}
}

func TestNumeric_DecodeReusesDestination(t *testing.T) {
	tr := mustTrait(t, "uint64")

	dst := make([]byte, 0, 8)
	src := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	allocs := testing.AllocsPerRun(100, func() {
		dst, _ = tr.Decode(dst, src, false)
	})
	assert.Zero(t, allocs)
	assert.Equal(t, binary.BigEndian.Uint64(src), binary.NativeEndian.Uint64(dst))
}
