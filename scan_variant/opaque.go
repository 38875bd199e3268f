package scan_variant

// opaqueTrait is shared by the structure and null traits. Neither has a
// layout this package understands, so every data operation is rejected and
// no comparator is ever populated.
type opaqueTrait struct {
	name      string
	label     string
	alignment int
	structure bool
	base      TypeID
	target    TypeID
}

// NewStructureTrait builds the trait for user-defined layouts that are
// interpreted field by field outside this package.
func NewStructureTrait(base, target TypeID) Trait {
	return &opaqueTrait{
		name:      "struct",
		label:     "(user-defined structure)",
		alignment: 1,
		structure: true,
		base:      base,
		target:    target,
	}
}

// NewNullTrait builds the placeholder trait of an unconfigured scan slot.
func NewNullTrait(base, target TypeID) Trait {
	return &opaqueTrait{
		name:      "null",
		label:     "(null)",
		alignment: 4,
		base:      base,
		target:    target,
	}
}

func (t *opaqueTrait) Comparator() Comparator          { return nil }
func (t *opaqueTrait) BigEndianComparator() Comparator { return nil }

func (t *opaqueTrait) Decode(dst, src []byte, sourceLittleEndian bool) ([]byte, error) {
	return dst[:0], traitError("decode", t, ErrUnsupportedOperation)
}

func (t *opaqueTrait) Encode(dst, payload []byte, targetLittleEndian bool) ([]byte, error) {
	return dst[:0], traitError("encode", t, ErrUnsupportedOperation)
}

func (t *opaqueTrait) Parse(text string) ([]byte, error) {
	return nil, traitError("parse", t, ErrUnsupportedOperation)
}

// Format returns a fixed label; it does not round-trip.
func (t *opaqueTrait) Format(payload []byte) string { return t.label }

func (t *opaqueTrait) Size() int            { return 0 }
func (t *opaqueTrait) Alignment() int       { return t.alignment }
func (t *opaqueTrait) Name() string         { return t.name }
func (t *opaqueTrait) FormatString() string { return "" }
func (t *opaqueTrait) BaseType() TypeID     { return t.base }
func (t *opaqueTrait) TargetType() TypeID   { return t.target }

func (t *opaqueTrait) IsStringType() bool               { return false }
func (t *opaqueTrait) IsNumericType() bool              { return false }
func (t *opaqueTrait) IsSignedNumericType() bool        { return false }
func (t *opaqueTrait) IsUnsignedNumericType() bool      { return false }
func (t *opaqueTrait) IsFloatingPointNumericType() bool { return false }
func (t *opaqueTrait) IsDynamicType() bool              { return t.base != t.target }
func (t *opaqueTrait) IsStructureType() bool            { return t.structure }
