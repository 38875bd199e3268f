package process

import (
	"fmt"

	"memscan/scan_variant"
)

// ReadVariant reads a value of the given trait at addr and decodes it from
// the target's byte order. size is only used for variable length traits.
func ReadVariant(t ScannerTarget, addr ProcessMemoryAddress, trait scan_variant.Trait, size ProcessMemorySize) (*scan_variant.ScanVariant, error) {
	if n := trait.Size(); n > 0 {
		size = ProcessMemorySize(n)
	}
	if size == 0 {
		return nil, fmt.Errorf("read %s at %s: %w: variable length type needs a size",
			trait.Name(), addr.ToString(), scan_variant.ErrSizeMismatch)
	}

	data, err := t.RawRead(addr, size)
	if err != nil {
		return nil, fmt.Errorf("read %s at %s: %w", trait.Name(), addr.ToString(), err)
	}

	return scan_variant.FromBuffer(trait, data, t.IsLittleEndian())
}

// WriteVariant encodes v in the target's byte order and writes it at addr.
func WriteVariant(t ScannerTarget, addr ProcessMemoryAddress, v *scan_variant.ScanVariant) error {
	data, err := v.Encode(t.IsLittleEndian())
	if err != nil {
		return err
	}

	if err := t.RawWrite(addr, data); err != nil {
		return fmt.Errorf("write %s at %s: %w", v.Trait().Name(), addr.ToString(), err)
	}

	return nil
}
