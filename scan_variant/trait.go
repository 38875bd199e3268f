// Package scan_variant implements the typed values a memory scanner compares:
// one immutable Trait per concrete encoding, a process-wide Registry of them,
// and ScanVariant, a decoded payload paired with its Trait.
//
// Payloads held by a ScanVariant are always in host byte order. Raw memory
// coming from a target of the other byte order is swapped on Decode, or
// compared in place with the trait's BigEndianComparator.
package scan_variant

// Trait describes one (base type, target type) encoding.
type Trait interface {
	// Comparator orders two host-order payloads, nil if the type has no ordering
	Comparator() Comparator

	// BigEndianComparator orders two big-endian raw buffers, nil if the type has no ordering
	BigEndianComparator() Comparator

	// Decode converts src, read from memory with the given byte order, into a
	// host-order payload appended to dst[:0]
	Decode(dst, src []byte, sourceLittleEndian bool) ([]byte, error)

	// Encode converts a host-order payload into the given byte order, appended to dst[:0]
	Encode(dst, payload []byte, targetLittleEndian bool) ([]byte, error)

	// Size is the fixed width in bytes, 0 for variable length types
	Size() int

	// Alignment is the minimum alignment of a candidate scan address
	Alignment() int

	Name() string
	FormatString() string
	BaseType() TypeID
	TargetType() TypeID

	IsStringType() bool
	IsNumericType() bool
	IsSignedNumericType() bool
	IsUnsignedNumericType() bool
	IsFloatingPointNumericType() bool
	IsDynamicType() bool
	IsStructureType() bool

	// Format renders a host-order payload as text
	Format(payload []byte) string

	// Parse converts text into a host-order payload, the inverse of Format
	Parse(text string) ([]byte, error)
}

// IsNullType reports whether t is the placeholder "no type chosen" trait.
func IsNullType(t Trait) bool {
	return t != nil && !t.IsStringType() && !t.IsNumericType() && !t.IsStructureType()
}

// IsOrdered reports whether relational predicates can be evaluated for t.
func IsOrdered(t Trait) bool {
	return t != nil && t.Comparator() != nil
}

// reverse swaps b in place.
func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
