package scan_variant

import (
	"encoding/binary"
	"fmt"
)

// TypeID identifies either a base (in-memory encoding) or a target (logical) type.
type TypeID uint32

const (
	TypeNull TypeID = iota
	TypeInt8
	TypeUint8
	TypeInt16
	TypeUint16
	TypeInt32
	TypeUint32
	TypeInt64
	TypeUint64
	TypeFloat
	TypeDouble
	TypeAsciiString
	TypeWideString
	TypeStructure

	// TypePointer is target-only; it is backed by TypeUint32 or TypeUint64
	// depending on the pointer width of the scanned process.
	TypePointer
)

var typeIDNames = [...]string{
	TypeNull:        "null",
	TypeInt8:        "int8",
	TypeUint8:       "uint8",
	TypeInt16:       "int16",
	TypeUint16:      "uint16",
	TypeInt32:       "int32",
	TypeUint32:      "uint32",
	TypeInt64:       "int64",
	TypeUint64:      "uint64",
	TypeFloat:       "float",
	TypeDouble:      "double",
	TypeAsciiString: "ascii string",
	TypeWideString:  "wide string",
	TypeStructure:   "struct",
	TypePointer:     "pointer",
}

func (t TypeID) String() string {
	if int(t) < len(typeIDNames) {
		return typeIDNames[t]
	}
	return fmt.Sprintf("TypeID(%d)", uint32(t))
}

// Ordering is the three-way result of a Comparator.
type Ordering int8

const (
	Less    Ordering = -1
	Equal   Ordering = 0
	Greater Ordering = 1
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "less"
	case Equal:
		return "equal"
	case Greater:
		return "greater"
	default:
		return fmt.Sprintf("Ordering(%d)", int8(o))
	}
}

// Comparator orders two raw buffers of identical, trait-determined length.
// Comparators never allocate and never retain their inputs.
type Comparator func(a, b []byte) Ordering

// HostLittleEndian reports the byte order payloads are decoded into.
var HostLittleEndian = binary.NativeEndian.Uint16([]byte{1, 0}) == 1
