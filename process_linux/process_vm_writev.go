//go:build linux

package process_linux

import (
	"fmt"
	"unsafe"

	"memscan/process"

	"golang.org/x/sys/unix"
)

// process_vm_writev uses the process_vm_writev syscall to write localBuf to another process
func process_vm_writev(
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
		unix.SYS_PROCESS_VM_WRITEV,
		uintptr(pid),                        // Remote process PID
		uintptr(unsafe.Pointer(&localIov)),  // Local iovec
		uintptr(1),                          // Number of local iovecs
		uintptr(unsafe.Pointer(&remoteIov)), // Remote iovec
		uintptr(1),                          // Number of remote iovecs
		uintptr(0),                          // Flags (reserved for future use)
	)

	if errno != 0 {
		return 0, fmt.Errorf("process_vm_writev failed: %w", errno)
	}

	return int(n), nil
}

// RawWrite writes data to the process memory at the specified address
func (p *LinuxTarget) RawWrite(addr process.ProcessMemoryAddress, data []byte) error {
	p.mu.Lock()
	pid := p.pid
	region, err := p.region(addr)
	p.mu.Unlock()

	if err != nil {
		return err
	}
	if !region.IsWritable() {
		return fmt.Errorf("%w: %s", process.ErrNotWritable, region.String())
	}

	// Copy so the caller can reuse data while the syscall runs
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	written, err := process_vm_writev(pid, dataCopy, addr)
	if err != nil {
		return fmt.Errorf("failed to write process memory at %s: %w", addr.ToString(), err)
	}

	if written != len(data) {
		return fmt.Errorf("%w: %d of %d bytes at %s", process.ErrPartialWrite, written, len(data), addr.ToString())
	}

	return nil
}
