package process

import (
	"memscan/process/memory_map"
)

// ScannerTarget is the capability set a scanner needs from the thing it
// scans: a live process, or a snapshot of one.
type ScannerTarget interface {
	// Attach opens the process with the given PID
	Attach(pid ProcessID) error

	// IsAttached reports whether Attach succeeded and Close has not been called
	IsAttached() bool

	// QueryMemory returns the region containing addr, or the first region above it,
	// together with the address just past that region. ErrAddressNotMapped is
	// returned when nothing is mapped at or above addr.
	QueryMemory(addr ProcessMemoryAddress) (memory_map.MemoryMapItem, ProcessMemoryAddress, error)

	// GetMainModuleBounds returns the [start, end) range of the main executable image
	GetMainModuleBounds() (start, end ProcessMemoryAddress, err error)

	// GetFileTime64 returns the wall clock as 100ns ticks since 1601-01-01 UTC
	GetFileTime64() uint64

	// GetTickTime32 returns milliseconds since boot, wrapping at 2^32
	GetTickTime32() uint32

	// RawRead reads exactly size bytes at addr
	RawRead(addr ProcessMemoryAddress, size ProcessMemorySize) ([]byte, error)

	// RawWrite writes all of data at addr
	RawWrite(addr ProcessMemoryAddress, data []byte) error

	IsLittleEndian() bool

	// PointerSize is 4 or 8
	PointerSize() ProcessMemorySize

	Close() error
}
