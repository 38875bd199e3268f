package process

import (
	"fmt"
)

// ProcessMemoryAddress represents a memory address within a process
type ProcessMemoryAddress uint64

func (pma ProcessMemoryAddress) ToString() string {
	return fmt.Sprintf("0x%X", uint64(pma))
}

// ProcessMemorySize represents a size of memory region
type ProcessMemorySize uint

func (pms ProcessMemorySize) ToString() string {
	return fmt.Sprintf("%d bytes", uint(pms))
}

// AlignUp rounds addr up to the next multiple of alignment.
func AlignUp(addr ProcessMemoryAddress, alignment int) ProcessMemoryAddress {
	if alignment <= 1 {
		return addr
	}
	a := ProcessMemoryAddress(alignment)
	if rem := addr % a; rem != 0 {
		return addr + a - rem
	}
	return addr
}
