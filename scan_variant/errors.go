package scan_variant

import (
	"errors"
	"fmt"
)

var (
	// ErrSizeMismatch is returned when a fixed-size trait is handed a buffer of the wrong length.
	ErrSizeMismatch = errors.New("buffer size does not match type size")

	// ErrUnsupportedOperation is returned by structure and null traits for decode, encode and parse.
	ErrUnsupportedOperation = errors.New("operation not supported by type")

	// ErrParse is returned when text is not a valid literal for the type.
	ErrParse = errors.New("invalid literal")

	// ErrUnorderedType is returned when a relational comparison is requested on a type without a comparator.
	ErrUnorderedType = errors.New("type has no ordering")

	ErrTraitMismatch  = errors.New("values have different types")
	ErrUnknownType    = errors.New("unknown type")
	ErrDuplicateTrait = errors.New("duplicate type registration")
	ErrOperandCount   = errors.New("wrong number of operands for predicate")
)

// TraitError records the operation and type that produced an error.
type TraitError struct {
	Op    string
	Trait string
	Err   error
}

func (e *TraitError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Trait, e.Err)
}

func (e *TraitError) Unwrap() error {
	return e.Err
}

func traitError(op string, t Trait, err error) error {
	name := "<nil>"
	if t != nil {
		name = t.Name()
	}
	return &TraitError{Op: op, Trait: name, Err: err}
}
