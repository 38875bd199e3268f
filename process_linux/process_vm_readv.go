//go:build linux

package process_linux

import (
	"fmt"
	"unsafe"

	"memscan/process"

	"golang.org/x/sys/unix"
)

// process_vm_readv uses the process_vm_readv syscall to fill localBuf from another process
func process_vm_readv(
	pid process.ProcessID,
	localBuf []byte,
	remoteAddr process.ProcessMemoryAddress,
) (int, error) {
	if len(localBuf) == 0 {
		return 0, nil
	}

	localIov := unix.Iovec{
		Base: &localBuf[0],
	}
	localIov.SetLen(len(localBuf))

	remoteIov := unix.RemoteIovec{
		Base: uintptr(remoteAddr),
		Len:  len(localBuf),
	}

	n, _, errno := unix.Syscall6(
		unix.SYS_PROCESS_VM_READV,
		uintptr(pid),                        // Remote process PID
		uintptr(unsafe.Pointer(&localIov)),  // Local iovec
		uintptr(1),                          // Number of local iovecs
		uintptr(unsafe.Pointer(&remoteIov)), // Remote iovec
		uintptr(1),                          // Number of remote iovecs
		uintptr(0),                          // Flags (reserved for future use)
	)

	if errno != 0 {
		return 0, fmt.Errorf("process_vm_readv failed: %w", errno)
	}

	return int(n), nil
}

// RawRead reads exactly size bytes at addr; the start address must be mapped and readable
func (p *LinuxTarget) RawRead(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	p.mu.Lock()
	pid := p.pid
	region, err := p.region(addr)
	p.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if !region.IsReadable() {
		return nil, fmt.Errorf("%w: %s is not readable", process.ErrAddressNotMapped, addr.ToString())
	}

	data := make([]byte, size)
	n, err := process_vm_readv(pid, data, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to read process memory at %s: %w", addr.ToString(), err)
	}

	if n != len(data) {
		return nil, fmt.Errorf("%w: %d of %d bytes at %s", process.ErrPartialRead, n, len(data), addr.ToString())
	}

	return data, nil
}
