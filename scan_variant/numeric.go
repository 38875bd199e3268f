package scan_variant

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Number is the set of Go types backing the numeric trait family.
type Number interface {
	constraints.Integer | constraints.Float
}

type numericTrait[T Number] struct {
	name     string
	format   string
	base     TypeID
	target   TypeID
	size     int
	unsigned bool
	floating bool

	fromBits func(uint64) T
	toBits   func(T) uint64
	parse    func(string) (T, error)

	loadNative func([]byte) uint64
	loadBig    func([]byte) uint64

	comparator    Comparator
	bigComparator Comparator
}

var _ Trait = (*numericTrait[int32])(nil)

func newNumericTrait[T Number](name, format string, base, target TypeID, unsigned, floating bool,
	fromBits func(uint64) T, toBits func(T) uint64, parse func(string) (T, error)) *numericTrait[T] {
	var zero T
	t := &numericTrait[T]{
		name:     name,
		format:   format,
		base:     base,
		target:   target,
		size:     int(unsafe.Sizeof(zero)),
		unsigned: unsigned,
		floating: floating,
		fromBits: fromBits,
		toBits:   toBits,
		parse:    parse,
	}
	t.loadNative = loader(binary.NativeEndian, t.size)
	t.loadBig = loader(binary.BigEndian, t.size)

	load, loadBig, from := t.loadNative, t.loadBig, t.fromBits
	t.comparator = func(a, b []byte) Ordering {
		return order(from(load(a)), from(load(b)))
	}
	t.bigComparator = func(a, b []byte) Ordering {
		return order(from(loadBig(a)), from(loadBig(b)))
	}
	return t
}

// NewSignedTrait builds a signed integer trait printed in decimal.
func NewSignedTrait[T constraints.Signed](name string, base, target TypeID) Trait {
	var zero T
	bits := int(unsafe.Sizeof(zero)) * 8
	return newNumericTrait[T](name, "%d", base, target, false, false,
		func(u uint64) T { return T(u) },
		func(v T) uint64 { return uint64(v) },
		func(s string) (T, error) {
			digits, numBase := integerLiteral(s)
			v, err := strconv.ParseInt(digits, numBase, bits)
			return T(v), err
		})
}

// NewUnsignedTrait builds an unsigned integer trait; format is usually "%d"
// or "0x%X" for address-like types.
func NewUnsignedTrait[T constraints.Unsigned](name, format string, base, target TypeID) Trait {
	var zero T
	bits := int(unsafe.Sizeof(zero)) * 8
	return newNumericTrait[T](name, format, base, target, true, false,
		func(u uint64) T { return T(u) },
		func(v T) uint64 { return uint64(v) },
		func(s string) (T, error) {
			digits, numBase := integerLiteral(s)
			v, err := strconv.ParseUint(digits, numBase, bits)
			return T(v), err
		})
}

// NewFloatTrait builds an IEEE-754 trait of T's width.
func NewFloatTrait[T constraints.Float](name string, base, target TypeID) Trait {
	var zero T
	bits := int(unsafe.Sizeof(zero)) * 8
	fromBits := func(u uint64) T { return T(math.Float64frombits(u)) }
	toBits := func(v T) uint64 { return math.Float64bits(float64(v)) }
	if bits == 32 {
		fromBits = func(u uint64) T { return T(math.Float32frombits(uint32(u))) }
		toBits = func(v T) uint64 { return uint64(math.Float32bits(float32(v))) }
	}
	return newNumericTrait[T](name, "%g", base, target, false, true,
		fromBits, toBits,
		func(s string) (T, error) {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), bits)
			return T(v), err
		})
}

// order is exact: no epsilon for floats, NaN equals NaN and sorts first.
func order[T Number](x, y T) Ordering {
	return Ordering(cmp.Compare(x, y))
}

func loader(bo binary.ByteOrder, size int) func([]byte) uint64 {
	switch size {
	case 1:
		return func(b []byte) uint64 { return uint64(b[0]) }
	case 2:
		return func(b []byte) uint64 { return uint64(bo.Uint16(b)) }
	case 4:
		return func(b []byte) uint64 { return uint64(bo.Uint32(b)) }
	case 8:
		return bo.Uint64
	}
	panic(fmt.Sprintf("scan_variant: unsupported numeric width %d", size))
}

func putBits(b []byte, size int, u uint64) {
	switch size {
	case 1:
		b[0] = byte(u)
	case 2:
		binary.NativeEndian.PutUint16(b, uint16(u))
	case 4:
		binary.NativeEndian.PutUint32(b, uint32(u))
	case 8:
		binary.NativeEndian.PutUint64(b, u)
	}
}

// integerLiteral strips whitespace and one leading sign, and detects a 0x prefix.
func integerLiteral(s string) (string, int) {
	s = strings.TrimSpace(s)
	sign := ""
	switch {
	case strings.HasPrefix(s, "-"):
		sign, s = "-", s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	base := 10
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s, base = s[2:], 16
	}
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		// leaves a digit-free literal so strconv reports the error
		return "", base
	}
	return sign + s, base
}

func (t *numericTrait[T]) Comparator() Comparator          { return t.comparator }
func (t *numericTrait[T]) BigEndianComparator() Comparator { return t.bigComparator }

func (t *numericTrait[T]) Decode(dst, src []byte, sourceLittleEndian bool) ([]byte, error) {
	return t.convert("decode", dst, src, sourceLittleEndian)
}

func (t *numericTrait[T]) Encode(dst, payload []byte, targetLittleEndian bool) ([]byte, error) {
	return t.convert("encode", dst, payload, targetLittleEndian)
}

// convert is symmetric: swapping into host order and out of it are the same reversal.
func (t *numericTrait[T]) convert(op string, dst, src []byte, littleEndian bool) ([]byte, error) {
	if len(src) != t.size {
		return dst[:0], traitError(op, t, fmt.Errorf("%w: got %d bytes, want %d", ErrSizeMismatch, len(src), t.size))
	}
	dst = append(dst[:0], src...)
	if littleEndian != HostLittleEndian {
		reverse(dst)
	}
	return dst, nil
}

func (t *numericTrait[T]) Size() int            { return t.size }
func (t *numericTrait[T]) Alignment() int       { return t.size }
func (t *numericTrait[T]) Name() string         { return t.name }
func (t *numericTrait[T]) FormatString() string { return t.format }
func (t *numericTrait[T]) BaseType() TypeID     { return t.base }
func (t *numericTrait[T]) TargetType() TypeID   { return t.target }

func (t *numericTrait[T]) IsStringType() bool               { return false }
func (t *numericTrait[T]) IsNumericType() bool              { return true }
func (t *numericTrait[T]) IsSignedNumericType() bool        { return !t.unsigned && !t.floating }
func (t *numericTrait[T]) IsUnsignedNumericType() bool      { return t.unsigned }
func (t *numericTrait[T]) IsFloatingPointNumericType() bool { return t.floating }
func (t *numericTrait[T]) IsDynamicType() bool              { return t.base != t.target }
func (t *numericTrait[T]) IsStructureType() bool            { return false }

func (t *numericTrait[T]) Format(payload []byte) string {
	if len(payload) != t.size {
		return "(invalid)"
	}
	return fmt.Sprintf(t.format, t.value(payload))
}

func (t *numericTrait[T]) Parse(text string) ([]byte, error) {
	v, err := t.parse(text)
	if err != nil {
		return nil, traitError("parse", t, fmt.Errorf("%w: %q: %v", ErrParse, text, err))
	}
	return t.payload(v), nil
}

func (t *numericTrait[T]) value(payload []byte) T {
	return t.fromBits(t.loadNative(payload))
}

func (t *numericTrait[T]) payload(v T) []byte {
	b := make([]byte, t.size)
	putBits(b, t.size, t.toBits(v))
	return b
}

// rawBits zero-extends an integer payload, used for pointer resolution.
func (t *numericTrait[T]) rawBits(payload []byte) uint64 {
	return t.loadNative(payload)
}
