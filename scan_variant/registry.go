package scan_variant

import (
	"fmt"
	"strings"
)

type traitKey struct {
	base   TypeID
	target TypeID
}

// Registry maps (base, target) pairs to traits. It is read-only once built
// and safe for concurrent use without locking.
type Registry struct {
	traits   []Trait
	byKey    map[traitKey]Trait
	byTarget map[TypeID][]Trait
	byName   map[string]Trait
}

// NewRegistry indexes traits in the given order. Every (base, target) pair
// and every name must be unique.
func NewRegistry(traits ...Trait) (*Registry, error) {
	r := &Registry{
		traits:   make([]Trait, 0, len(traits)),
		byKey:    make(map[traitKey]Trait, len(traits)),
		byTarget: make(map[TypeID][]Trait),
		byName:   make(map[string]Trait, len(traits)),
	}

	for _, t := range traits {
		key := traitKey{base: t.BaseType(), target: t.TargetType()}
		if prev, ok := r.byKey[key]; ok {
			return nil, fmt.Errorf("%w: %s and %s share base %s target %s",
				ErrDuplicateTrait, prev.Name(), t.Name(), key.base, key.target)
		}
		name := strings.ToLower(t.Name())
		if prev, ok := r.byName[name]; ok {
			return nil, fmt.Errorf("%w: name %q used by base %s and base %s",
				ErrDuplicateTrait, t.Name(), prev.BaseType(), t.BaseType())
		}

		r.traits = append(r.traits, t)
		r.byKey[key] = t
		r.byTarget[key.target] = append(r.byTarget[key.target], t)
		r.byName[name] = t
	}

	return r, nil
}

// Lookup returns the trait registered for exactly (base, target).
func (r *Registry) Lookup(base, target TypeID) (Trait, bool) {
	t, ok := r.byKey[traitKey{base: base, target: target}]
	return t, ok
}

// ByTarget returns every trait exposing target, one per base encoding.
func (r *Registry) ByTarget(target TypeID) []Trait {
	set := r.byTarget[target]
	out := make([]Trait, len(set))
	copy(out, set)
	return out
}

// ByName finds a trait by its display name, ignoring case.
func (r *Registry) ByName(name string) (Trait, bool) {
	t, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// Resolve picks the trait for target whose size is size. A target backed
// by a single encoding resolves regardless of size.
func (r *Registry) Resolve(target TypeID, size int) (Trait, error) {
	set := r.byTarget[target]
	if len(set) == 1 {
		return set[0], nil
	}
	for _, t := range set {
		if t.Size() == size {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: no %s encoding of %d bytes", ErrUnknownType, target, size)
}

// All returns every trait in registration order.
func (r *Registry) All() []Trait {
	out := make([]Trait, len(r.traits))
	copy(out, r.traits)
	return out
}

// Builtin returns a fresh copy of the standard trait set.
func Builtin() []Trait {
	return []Trait{
		NewNullTrait(TypeNull, TypeNull),
		NewSignedTrait[int8]("int8", TypeInt8, TypeInt8),
		NewUnsignedTrait[uint8]("uint8", "%d", TypeUint8, TypeUint8),
		NewSignedTrait[int16]("int16", TypeInt16, TypeInt16),
		NewUnsignedTrait[uint16]("uint16", "%d", TypeUint16, TypeUint16),
		NewSignedTrait[int32]("int32", TypeInt32, TypeInt32),
		NewUnsignedTrait[uint32]("uint32", "%d", TypeUint32, TypeUint32),
		NewSignedTrait[int64]("int64", TypeInt64, TypeInt64),
		NewUnsignedTrait[uint64]("uint64", "%d", TypeUint64, TypeUint64),
		NewFloatTrait[float32]("float", TypeFloat, TypeFloat),
		NewFloatTrait[float64]("double", TypeDouble, TypeDouble),
		NewAsciiStringTrait(TypeAsciiString, TypeAsciiString),
		NewWideStringTrait(TypeWideString, TypeWideString),
		NewStructureTrait(TypeStructure, TypeStructure),
		NewUnsignedTrait[uint32]("pointer32", "0x%X", TypeUint32, TypePointer),
		NewUnsignedTrait[uint64]("pointer64", "0x%X", TypeUint64, TypePointer),
	}
}

var defaultRegistry = mustRegistry(Builtin()...)

func mustRegistry(traits ...Trait) *Registry {
	r, err := NewRegistry(traits...)
	if err != nil {
		panic(err)
	}
	return r
}

// Default returns the process-wide registry of builtin traits.
func Default() *Registry {
	return defaultRegistry
}
