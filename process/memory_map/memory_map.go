package memory_map

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// MemoryMapItem represents a memory region in a process's address space
type MemoryMapItem struct {
	Address uint64 // The starting address of the memory region
	Size    uint   // The size of the memory region in bytes
	Perms   string // Permissions (e.g., "r-xp" for read, execute, private)
	Path    string // Backing file or pseudo path such as [heap], empty for anonymous mappings
}

// String returns a string representation of the memory map item
func (mmItem MemoryMapItem) String() string {
	if mmItem.Path == "" {
		return fmt.Sprintf("Address: %x, Size: %d, Perms: %s", mmItem.Address, mmItem.Size, mmItem.Perms)
	}
	return fmt.Sprintf("Address: %x, Size: %d, Perms: %s, Path: %s", mmItem.Address, mmItem.Size, mmItem.Perms, mmItem.Path)
}

func (mmItem MemoryMapItem) IsReadable() bool {
	return len(mmItem.Perms) > 0 && mmItem.Perms[0] == 'r'
}

func (mmItem MemoryMapItem) IsWritable() bool {
	return len(mmItem.Perms) > 1 && mmItem.Perms[1] == 'w'
}

func (mmItem MemoryMapItem) IsExecutable() bool {
	return len(mmItem.Perms) > 2 && mmItem.Perms[2] == 'x'
}

// End is the first address past the region.
func (mmItem MemoryMapItem) End() uint64 {
	return mmItem.Address + uint64(mmItem.Size)
}

func (mmItem MemoryMapItem) Contains(addr uint64) bool {
	return addr >= mmItem.Address && addr < mmItem.End()
}

// ParseMemoryMap parses the /proc/[pid]/maps format. Malformed lines are
// skipped. The result is sorted by address.
func ParseMemoryMap(r io.Reader) ([]MemoryMapItem, error) {
	var memoryMap []MemoryMapItem
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		// e.g. "00400000-0040b000 r-xp 00000000 08:01 1234 /usr/bin/cat"
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}

		startText, endText, ok := strings.Cut(fields[0], "-")
		if !ok {
			continue
		}

		startAddr, err := strconv.ParseUint(startText, 16, 64)
		if err != nil {
			continue
		}

		endAddr, err := strconv.ParseUint(endText, 16, 64)
		if err != nil || endAddr < startAddr {
			continue
		}

		item := MemoryMapItem{
			Address: startAddr,
			Size:    uint(endAddr - startAddr),
			Perms:   fields[1],
		}
		if len(fields) > 5 {
			item.Path = strings.Join(fields[5:], " ")
		}

		memoryMap = append(memoryMap, item)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	Sort(memoryMap)
	return memoryMap, nil
}

// Sort orders a memory map by address, which FindRegion and NextRegion require.
func Sort(memoryMap []MemoryMapItem) {
	sort.Slice(memoryMap, func(i, j int) bool {
		return memoryMap[i].Address < memoryMap[j].Address
	})
}

// FindRegion returns the region containing addr, nil if addr is not mapped.
func FindRegion(addr uint64, memoryMap []MemoryMapItem) *MemoryMapItem {
	if item := NextRegion(addr, memoryMap); item != nil && item.Address <= addr {
		return item
	}
	return nil
}

// NextRegion returns the region containing addr or, failing that, the first
// region above it. nil means nothing is mapped at or above addr.
func NextRegion(addr uint64, memoryMap []MemoryMapItem) *MemoryMapItem {
	i := sort.Search(len(memoryMap), func(i int) bool {
		return memoryMap[i].End() > addr
	})
	if i < len(memoryMap) {
		return &memoryMap[i]
	}
	return nil
}

// ModuleBounds returns the span covered by every mapping of the file at path.
func ModuleBounds(memoryMap []MemoryMapItem, path string) (start, end uint64, ok bool) {
	for _, item := range memoryMap {
		if item.Path != path {
			continue
		}
		if !ok || item.Address < start {
			start = item.Address
		}
		if !ok || item.End() > end {
			end = item.End()
		}
		ok = true
	}
	return start, end, ok
}
