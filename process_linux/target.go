//go:build linux

package process_linux

import (
	"debug/elf"
	"fmt"
	"os"
	"sync"

	"memscan/process"
	"memscan/process/memory_map"
	"memscan/scan_variant"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"golang.org/x/sys/unix"
)

// LinuxTarget implements process.ScannerTarget for a live Linux process
type LinuxTarget struct {
	pid          process.ProcessID
	info         process.ProcessInfo
	pointerSize  process.ProcessMemorySize
	littleEndian bool
	log          *logger.Logger
	mm           []memory_map.MemoryMapItem
	mu           sync.Mutex
}

var _ process.ScannerTarget = (*LinuxTarget)(nil)
var _ process.Refresher = (*LinuxTarget)(nil)
var _ process.Describer = (*LinuxTarget)(nil)

// New creates a detached LinuxTarget
func New() *LinuxTarget {
	return &LinuxTarget{
		log: logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open")),
	}
}

// NewWithPID creates a LinuxTarget and attaches it to the given PID
func NewWithPID(pid process.ProcessID) (*LinuxTarget, error) {
	p := New()
	if err := p.Attach(pid); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *LinuxTarget) Attach(pid process.ProcessID) error {
	procPath := fmt.Sprintf("/proc/%d", pid)
	if _, err := os.Stat(procPath); err != nil {
		return fmt.Errorf("process with PID %d does not exist: %w", pid, err)
	}

	info := describePID(pid)
	pointerSize, littleEndian := imageLayout(pid)

	p.mu.Lock()
	p.pid = pid
	p.info = info
	p.pointerSize = pointerSize
	p.littleEndian = littleEndian
	p.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("process-%d", pid)))
	p.mu.Unlock()

	if err := p.UpdateMemoryMap(); err != nil {
		p.mu.Lock()
		p.pid = 0
		p.mu.Unlock()
		return fmt.Errorf("failed to initialize memory map: %w", err)
	}

	p.log.Infoln("Process opened:", info.Name, "pointer size", pointerSize)

	return nil
}

// imageLayout reads the ELF header of the executable to learn the pointer
// width and byte order of the process, falling back to the host's.
func imageLayout(pid process.ProcessID) (process.ProcessMemorySize, bool) {
	hostPointer := process.ProcessMemorySize(8)
	if unix.SizeofPtr == 4 {
		hostPointer = 4
	}

	f, err := elf.Open(fmt.Sprintf("/proc/%d/exe", pid))
	if err != nil {
		return hostPointer, scan_variant.HostLittleEndian
	}
	defer f.Close()

	return elfLayout(f.FileHeader)
}

func elfLayout(h elf.FileHeader) (process.ProcessMemorySize, bool) {
	pointerSize := process.ProcessMemorySize(8)
	if h.Class == elf.ELFCLASS32 {
		pointerSize = 4
	}
	return pointerSize, h.Data != elf.ELFDATA2MSB
}

func (p *LinuxTarget) IsAttached() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid != 0
}

func (p *LinuxTarget) Describe() process.ProcessInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.info
}

func (p *LinuxTarget) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.Infoln("Closing process")

	p.pid = 0
	p.mm = nil
	p.info = process.ProcessInfo{}

	p.log = logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open"))

	return nil
}

// UpdateMemoryMap re-reads /proc/[pid]/maps.
func (p *LinuxTarget) UpdateMemoryMap() error {
	p.mu.Lock()
	pid := p.pid
	p.mu.Unlock()

	if pid == 0 {
		return process.ErrProcessNotOpen
	}

	mm, err := memory_map.ReadMemoryMap(int(pid))
	if err != nil {
		return fmt.Errorf("failed to read memory map: %w", err)
	}

	p.mu.Lock()
	p.mm = mm
	p.mu.Unlock()

	return nil
}

func (p *LinuxTarget) QueryMemory(addr process.ProcessMemoryAddress) (memory_map.MemoryMapItem, process.ProcessMemoryAddress, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pid == 0 {
		return memory_map.MemoryMapItem{}, 0, process.ErrProcessNotOpen
	}

	item := memory_map.NextRegion(uint64(addr), p.mm)
	if item == nil {
		return memory_map.MemoryMapItem{}, 0, process.ErrAddressNotMapped
	}

	return *item, process.ProcessMemoryAddress(item.End()), nil
}

func (p *LinuxTarget) GetMainModuleBounds() (start, end process.ProcessMemoryAddress, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pid == 0 {
		return 0, 0, process.ErrProcessNotOpen
	}

	lo, hi, ok := memory_map.ModuleBounds(p.mm, p.info.Exe)
	if !ok {
		return 0, 0, fmt.Errorf("%w: main module %q", process.ErrAddressNotMapped, p.info.Exe)
	}

	return process.ProcessMemoryAddress(lo), process.ProcessMemoryAddress(hi), nil
}

func (p *LinuxTarget) IsLittleEndian() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.littleEndian
}

func (p *LinuxTarget) PointerSize() process.ProcessMemorySize {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pointerSize
}

// region returns the mapped region containing addr, assumes the mutex is held
func (p *LinuxTarget) region(addr process.ProcessMemoryAddress) (*memory_map.MemoryMapItem, error) {
	if p.pid == 0 {
		return nil, process.ErrProcessNotOpen
	}

	item := memory_map.FindRegion(uint64(addr), p.mm)
	if item == nil {
		return nil, fmt.Errorf("%w: %s", process.ErrAddressNotMapped, addr.ToString())
	}

	return item, nil
}
