// Package process defines the memory-access layer a scanner runs against:
// the ScannerTarget capability interface and the helpers that move typed
// scan_variant values in and out of a target.
package process

import "errors"

var (
	// ErrAddressNotMapped is returned when a memory address is not found within any mapped region of a process.
	ErrAddressNotMapped = errors.New("address not mapped")

	// ErrProcessNotOpen is returned when an operation requiring an attached process is attempted
	// before the process has been successfully attached or after it has been closed.
	ErrProcessNotOpen = errors.New("process not open")

	ErrInvalidPointer = errors.New("invalid pointer read")
	ErrNotWritable    = errors.New("memory region is not writable")
	ErrPartialRead    = errors.New("partial read")
	ErrPartialWrite   = errors.New("partial write")
)

// Refresher is implemented by targets whose memory map can change while attached.
type Refresher interface {
	UpdateMemoryMap() error
}

// Describer is implemented by targets that know which process they represent.
type Describer interface {
	Describe() ProcessInfo
}
