package process

import (
	"fmt"

	"memscan/scan_variant"
)

// PointerTrait returns the dynamic pointer trait matching the target's pointer width.
func PointerTrait(t ScannerTarget) (scan_variant.Trait, error) {
	return scan_variant.Default().Resolve(scan_variant.TypePointer, int(t.PointerSize()))
}

// ReadPointer reads one pointer-sized value at addr in the target's byte order.
func ReadPointer(t ScannerTarget, addr ProcessMemoryAddress) (ProcessMemoryAddress, error) {
	trait, err := PointerTrait(t)
	if err != nil {
		return 0, err
	}

	v, err := ReadVariant(t, addr, trait, 0)
	if err != nil {
		return 0, err
	}

	ptr, err := scan_variant.AsUint64(v)
	if err != nil {
		return 0, err
	}

	return ProcessMemoryAddress(ptr), nil
}

// ReadPath follows a pointer path and returns the final address.
// It starts at base, adds the first offset, reads a pointer, adds the next offset, reads a pointer, etc.
// The last offset is added to the final pointer without dereferencing it.
// If offsets is empty, base is returned.
func ReadPath(t ScannerTarget, base ProcessMemoryAddress, offsets ...ProcessMemorySize) (ProcessMemoryAddress, error) {
	currentAddr := base

	for i := 0; i < len(offsets)-1; i++ {
		ptrAddr := currentAddr + ProcessMemoryAddress(offsets[i])

		ptrVal, err := ReadPointer(t, ptrAddr)
		if err != nil {
			return 0, fmt.Errorf("failed to read pointer at offset %d (addr %s): %w", i, ptrAddr.ToString(), err)
		}

		if ptrVal == 0 {
			return 0, fmt.Errorf("%w: pointer at offset %d (addr %s) is null", ErrInvalidPointer, i, ptrAddr.ToString())
		}

		currentAddr = ptrVal
	}

	if len(offsets) > 0 {
		currentAddr += ProcessMemoryAddress(offsets[len(offsets)-1])
	}

	return currentAddr, nil
}
