package scan_variant

import (
	"bytes"
	"fmt"
)

// ScanVariant is a decoded value: a shared Trait and an exclusively owned
// host-order payload. It is not safe for concurrent mutation.
type ScanVariant struct {
	trait   Trait
	payload []byte
}

// NewScanVariant returns an empty value of type t, ready for Decode.
func NewScanVariant(t Trait) *ScanVariant {
	return &ScanVariant{trait: t}
}

// FromBuffer decodes a raw memory snapshot read with the given byte order.
func FromBuffer(t Trait, buf []byte, littleEndian bool) (*ScanVariant, error) {
	v := NewScanVariant(t)
	if err := v.Decode(buf, littleEndian); err != nil {
		return nil, err
	}
	return v, nil
}

// FromString parses user input.
func FromString(t Trait, text string) (*ScanVariant, error) {
	payload, err := t.Parse(text)
	if err != nil {
		return nil, err
	}
	return &ScanVariant{trait: t, payload: payload}, nil
}

// FromValue wraps a Go number; T must be the trait's backing type.
func FromValue[T Number](t Trait, v T) (*ScanVariant, error) {
	nt, ok := t.(*numericTrait[T])
	if !ok {
		return nil, traitError("from value", t, fmt.Errorf("%w: %T", ErrTraitMismatch, v))
	}
	return &ScanVariant{trait: t, payload: nt.payload(v)}, nil
}

// ValueOf extracts the Go number held by v; T must be the trait's backing type.
func ValueOf[T Number](v *ScanVariant) (T, error) {
	nt, ok := v.trait.(*numericTrait[T])
	if !ok {
		var zero T
		return zero, traitError("value of", v.trait, fmt.Errorf("%w: %T", ErrTraitMismatch, zero))
	}
	if len(v.payload) != nt.size {
		var zero T
		return zero, traitError("value of", v.trait, ErrSizeMismatch)
	}
	return nt.value(v.payload), nil
}

// AsUint64 zero-extends an integer value, e.g. a pointer of either width.
func AsUint64(v *ScanVariant) (uint64, error) {
	t, ok := v.trait.(interface{ rawBits([]byte) uint64 })
	if !ok || v.trait.IsFloatingPointNumericType() {
		return 0, traitError("as uint64", v.trait, ErrUnsupportedOperation)
	}
	if len(v.payload) != v.trait.Size() {
		return 0, traitError("as uint64", v.trait, ErrSizeMismatch)
	}
	return t.rawBits(v.payload), nil
}

func (v *ScanVariant) Trait() Trait {
	return v.trait
}

// Bytes returns the host-order payload. The slice is owned by v.
func (v *ScanVariant) Bytes() []byte {
	return v.payload
}

func (v *ScanVariant) Size() int {
	return len(v.payload)
}

// Decode replaces the payload, reusing its storage.
func (v *ScanVariant) Decode(buf []byte, littleEndian bool) error {
	payload, err := v.trait.Decode(v.payload, buf, littleEndian)
	if err != nil {
		return err
	}
	v.payload = payload
	return nil
}

// Encode returns the payload in the given byte order, ready for a raw write.
func (v *ScanVariant) Encode(littleEndian bool) ([]byte, error) {
	return v.trait.Encode(nil, v.payload, littleEndian)
}

// Compare orders v against o. Both must share a trait that has a comparator.
func (v *ScanVariant) Compare(o *ScanVariant) (Ordering, error) {
	if v.trait != o.trait {
		return Equal, traitError("compare", v.trait, fmt.Errorf("%w: %s", ErrTraitMismatch, o.trait.Name()))
	}
	if v.trait.IsStructureType() || IsNullType(v.trait) {
		return Equal, traitError("compare", v.trait, ErrUnsupportedOperation)
	}
	cmp := v.trait.Comparator()
	if cmp == nil {
		return Equal, traitError("compare", v.trait, ErrUnorderedType)
	}
	if len(v.payload) != len(o.payload) || len(v.payload) != v.trait.Size() {
		return Equal, traitError("compare", v.trait, ErrSizeMismatch)
	}
	return cmp(v.payload, o.payload), nil
}

// Equal reports identical trait and payload bytes.
func (v *ScanVariant) Equal(o *ScanVariant) bool {
	return o != nil && v.trait == o.trait && bytes.Equal(v.payload, o.payload)
}

func (v *ScanVariant) Clone() *ScanVariant {
	return &ScanVariant{trait: v.trait, payload: bytes.Clone(v.payload)}
}

func (v *ScanVariant) String() string {
	return v.trait.Format(v.payload)
}
