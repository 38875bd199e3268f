//go:build linux

package process_linux

import (
	"golang.org/x/sys/unix"
)

// fileTimeEpochOffset is the number of 100ns ticks between 1601-01-01 and 1970-01-01.
const fileTimeEpochOffset = 116444736000000000

// GetFileTime64 returns the wall clock as 100ns ticks since 1601-01-01 UTC.
func (p *LinuxTarget) GetFileTime64() uint64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_REALTIME, &ts); err != nil {
		return 0
	}
	return fileTime(ts)
}

// GetTickTime32 returns milliseconds since boot, wrapping at 2^32.
func (p *LinuxTarget) GetTickTime32() uint32 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0
	}
	return tickTime(ts)
}

func fileTime(ts unix.Timespec) uint64 {
	return uint64(ts.Nano()/100) + fileTimeEpochOffset
}

func tickTime(ts unix.Timespec) uint32 {
	return uint32(ts.Nano() / 1e6)
}
