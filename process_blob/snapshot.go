// Package process_blob implements process.ScannerTarget over in-memory
// copies of a process's regions, either built by hand or loaded from a dump
// directory written by Save.
package process_blob

import (
	"errors"
	"fmt"
	"sync"

	"memscan/process"
	"memscan/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

var ErrAttachNotSupported = errors.New("attach not supported for snapshots, use Load")

// Snapshot is a frozen process image. Reads and writes go to the region
// blobs held in memory; clocks return the values captured with the image.
type Snapshot struct {
	mu sync.RWMutex

	info         process.ProcessInfo
	littleEndian bool
	pointerSize  process.ProcessMemorySize
	fileTime     uint64
	tickTime     uint32
	moduleStart  process.ProcessMemoryAddress
	moduleEnd    process.ProcessMemoryAddress

	memoryMap []memory_map.MemoryMapItem
	blobs     map[uint64][]byte // region address -> data
	closed    bool

	log *logger.Logger
}

var _ process.ScannerTarget = (*Snapshot)(nil)
var _ process.Describer = (*Snapshot)(nil)

// Option configures a Snapshot
type Option func(*Snapshot)

// WithBigEndian makes the snapshot present big-endian memory.
func WithBigEndian() Option {
	return func(s *Snapshot) {
		s.littleEndian = false
	}
}

// WithPointerSize sets the pointer width, 4 or 8.
func WithPointerSize(size process.ProcessMemorySize) Option {
	return func(s *Snapshot) {
		s.pointerSize = size
	}
}

// WithClock freezes the values GetFileTime64 and GetTickTime32 return.
func WithClock(fileTime uint64, tickTime uint32) Option {
	return func(s *Snapshot) {
		s.fileTime = fileTime
		s.tickTime = tickTime
	}
}

func WithProcessInfo(info process.ProcessInfo) Option {
	return func(s *Snapshot) {
		s.info = info
	}
}

// WithMainModule overrides the main module bounds otherwise derived from the
// regions mapped from the executable.
func WithMainModule(start, end process.ProcessMemoryAddress) Option {
	return func(s *Snapshot) {
		s.moduleStart = start
		s.moduleEnd = end
	}
}

// New creates an empty little-endian snapshot with 8 byte pointers.
func New(options ...Option) *Snapshot {
	s := &Snapshot{
		littleEndian: true,
		pointerSize:  8,
		blobs:        make(map[uint64][]byte),
	}

	for _, opt := range options {
		opt(s)
	}

	s.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("snapshot-%d", s.info.PID)))

	return s
}

// AddRegion maps a copy of data at addr. Regions must not overlap.
func (s *Snapshot) AddRegion(addr process.ProcessMemoryAddress, perms, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return process.ErrProcessNotOpen
	}

	item := memory_map.MemoryMapItem{
		Address: uint64(addr),
		Size:    uint(len(data)),
		Perms:   perms,
		Path:    path,
	}
	if item.Size == 0 {
		return fmt.Errorf("empty region at %s", addr.ToString())
	}

	for _, existing := range s.memoryMap {
		if item.Address < existing.End() && existing.Address < item.End() {
			return fmt.Errorf("region at %s overlaps %s", addr.ToString(), existing.String())
		}
	}

	blob := make([]byte, len(data))
	copy(blob, data)

	s.memoryMap = append(s.memoryMap, item)
	memory_map.Sort(s.memoryMap)
	s.blobs[item.Address] = blob

	return nil
}

// Attach always fails: a snapshot is bound to the process it was taken from.
func (s *Snapshot) Attach(pid process.ProcessID) error {
	return ErrAttachNotSupported
}

func (s *Snapshot) IsAttached() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.closed
}

func (s *Snapshot) Describe() process.ProcessInfo {
	return s.info
}

func (s *Snapshot) QueryMemory(addr process.ProcessMemoryAddress) (memory_map.MemoryMapItem, process.ProcessMemoryAddress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return memory_map.MemoryMapItem{}, 0, process.ErrProcessNotOpen
	}

	item := memory_map.NextRegion(uint64(addr), s.memoryMap)
	if item == nil {
		return memory_map.MemoryMapItem{}, 0, process.ErrAddressNotMapped
	}

	return *item, process.ProcessMemoryAddress(item.End()), nil
}

func (s *Snapshot) GetMainModuleBounds() (start, end process.ProcessMemoryAddress, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.moduleEnd > s.moduleStart {
		return s.moduleStart, s.moduleEnd, nil
	}

	if s.info.Exe != "" {
		if lo, hi, ok := memory_map.ModuleBounds(s.memoryMap, s.info.Exe); ok {
			return process.ProcessMemoryAddress(lo), process.ProcessMemoryAddress(hi), nil
		}
	}

	return 0, 0, fmt.Errorf("%w: main module %q", process.ErrAddressNotMapped, s.info.Exe)
}

func (s *Snapshot) GetFileTime64() uint64 {
	return s.fileTime
}

func (s *Snapshot) GetTickTime32() uint32 {
	return s.tickTime
}

// RawRead returns a copy of size bytes at addr. The range must lie within one region.
func (s *Snapshot) RawRead(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, offset, err := s.locate(addr, size)
	if err != nil {
		return nil, err
	}

	result := make([]byte, size)
	copy(result, blob[offset:offset+uint64(size)])
	return result, nil
}

// RawWrite stores data at addr if the region is writable.
func (s *Snapshot) RawWrite(addr process.ProcessMemoryAddress, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	region := memory_map.FindRegion(uint64(addr), s.memoryMap)
	if region != nil && !region.IsWritable() {
		return fmt.Errorf("%w: %s", process.ErrNotWritable, region.String())
	}

	blob, offset, err := s.locate(addr, process.ProcessMemorySize(len(data)))
	if err != nil {
		return err
	}

	copy(blob[offset:], data)
	return nil
}

// locate assumes the mutex is held.
func (s *Snapshot) locate(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, uint64, error) {
	if s.closed {
		return nil, 0, process.ErrProcessNotOpen
	}

	region := memory_map.FindRegion(uint64(addr), s.memoryMap)
	if region == nil {
		return nil, 0, fmt.Errorf("%w: %s", process.ErrAddressNotMapped, addr.ToString())
	}

	data, ok := s.blobs[region.Address]
	if !ok {
		return nil, 0, fmt.Errorf("%w: no data for region 0x%x", process.ErrAddressNotMapped, region.Address)
	}

	offset := uint64(addr) - region.Address
	if offset+uint64(size) > uint64(len(data)) {
		return nil, 0, fmt.Errorf("%w: %d bytes at %s cross the end of region 0x%x",
			process.ErrPartialRead, size, addr.ToString(), region.Address)
	}

	return data, offset, nil
}

func (s *Snapshot) IsLittleEndian() bool {
	return s.littleEndian
}

func (s *Snapshot) PointerSize() process.ProcessMemorySize {
	return s.pointerSize
}

// Close releases the region data. Further reads fail with process.ErrProcessNotOpen.
func (s *Snapshot) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.blobs = nil
	s.memoryMap = nil

	s.log.Infoln("Snapshot closed")

	return nil
}
