package process_blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"memscan/process"
	"memscan/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

const (
	metadataFile  = "metadata.json"
	memoryMapFile = "process_memory_map.json"

	// MaxSavedRegionSize bounds the regions Save copies; larger ones are skipped.
	MaxSavedRegionSize = 100 * 1024 * 1024
)

// Metadata is the metadata.json document of a dump directory.
type Metadata struct {
	PID             process.ProcessID `json:"pid"`
	Name            string            `json:"name"`
	Exe             string            `json:"exe,omitempty"`
	LittleEndian    bool              `json:"little_endian"`
	PointerSize     uint              `json:"pointer_size"`
	FileTime        uint64            `json:"file_time"`
	TickTime        uint32            `json:"tick_time"`
	MainModuleStart uint64            `json:"main_module_start,omitempty"`
	MainModuleEnd   uint64            `json:"main_module_end,omitempty"`
}

// SaveStats summarizes what Save wrote.
type SaveStats struct {
	Saved             int
	SkippedUnreadable int
	SkippedTooLarge   int
	ReadErrors        int
}

func blobName(item memory_map.MemoryMapItem) string {
	return fmt.Sprintf("blob_0x%x_%d.bin", item.Address, item.Size)
}

// Save copies the readable regions of t into dirname along with its memory
// map and metadata. Regions that fail to read are counted and skipped.
func Save(ctx context.Context, t process.ScannerTarget, dirname string) (SaveStats, error) {
	var stats SaveStats

	if !t.IsAttached() {
		return stats, process.ErrProcessNotOpen
	}

	if err := os.MkdirAll(dirname, 0755); err != nil {
		return stats, fmt.Errorf("failed to create directory: %w", err)
	}

	metadata := Metadata{
		Name:         "unknown",
		LittleEndian: t.IsLittleEndian(),
		PointerSize:  uint(t.PointerSize()),
		FileTime:     t.GetFileTime64(),
		TickTime:     t.GetTickTime32(),
	}
	if d, ok := t.(process.Describer); ok {
		info := d.Describe()
		metadata.PID = info.PID
		metadata.Exe = info.Exe
		if info.Name != "" {
			metadata.Name = info.Name
		}
	}
	if start, end, err := t.GetMainModuleBounds(); err == nil {
		metadata.MainModuleStart = uint64(start)
		metadata.MainModuleEnd = uint64(end)
	}

	log := logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("save-%d", metadata.PID)))
	log.Infoln("Saving process to directory:", dirname)

	var memoryMap []memory_map.MemoryMapItem
	if err := process.Regions(ctx, t, func(item memory_map.MemoryMapItem) error {
		memoryMap = append(memoryMap, item)
		return nil
	}); err != nil {
		return stats, fmt.Errorf("failed to walk memory map: %w", err)
	}

	if err := writeJSON(filepath.Join(dirname, metadataFile), metadata); err != nil {
		return stats, err
	}
	if err := writeJSON(filepath.Join(dirname, memoryMapFile), memoryMap); err != nil {
		return stats, err
	}

	for _, region := range memoryMap {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if !region.IsReadable() {
			stats.SkippedUnreadable++
			continue
		}

		if region.Size > MaxSavedRegionSize {
			log.Infoln("Skipping large region at", fmt.Sprintf("%x", region.Address),
				"(size:", region.Size/1024/1024, "MB)")
			stats.SkippedTooLarge++
			continue
		}

		data, err := t.RawRead(process.ProcessMemoryAddress(region.Address), process.ProcessMemorySize(region.Size))
		if err != nil {
			log.Debugln("Failed to read memory region at", fmt.Sprintf("%x", region.Address), ":", err)
			stats.ReadErrors++
			continue
		}

		if err := os.WriteFile(filepath.Join(dirname, blobName(region)), data, 0644); err != nil {
			return stats, fmt.Errorf("failed to write memory file for region at 0x%x: %w", region.Address, err)
		}
		stats.Saved++
	}

	log.Infoln("Process dump saved:", stats.Saved, "regions saved,", stats.ReadErrors, "read errors")

	return stats, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Load reads a dump directory written by Save. Regions whose blob was not
// saved stay in the memory map but read as unmapped.
func Load(dirname string) (*Snapshot, error) {
	var metadata Metadata
	if err := readJSON(filepath.Join(dirname, metadataFile), &metadata); err != nil {
		return nil, err
	}

	var memoryMap []memory_map.MemoryMapItem
	if err := readJSON(filepath.Join(dirname, memoryMapFile), &memoryMap); err != nil {
		return nil, err
	}
	memory_map.Sort(memoryMap)

	pointerSize := process.ProcessMemorySize(metadata.PointerSize)
	if pointerSize != 4 && pointerSize != 8 {
		return nil, fmt.Errorf("invalid pointer size %d in %s", metadata.PointerSize, metadataFile)
	}

	options := []Option{
		WithPointerSize(pointerSize),
		WithClock(metadata.FileTime, metadata.TickTime),
		WithProcessInfo(process.ProcessInfo{PID: metadata.PID, Name: metadata.Name, Exe: metadata.Exe}),
		WithMainModule(process.ProcessMemoryAddress(metadata.MainModuleStart), process.ProcessMemoryAddress(metadata.MainModuleEnd)),
	}
	if !metadata.LittleEndian {
		options = append(options, WithBigEndian())
	}

	s := New(options...)
	s.memoryMap = memoryMap

	for _, region := range memoryMap {
		data, err := os.ReadFile(filepath.Join(dirname, blobName(region)))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read blob for region 0x%x: %w", region.Address, err)
		}
		if len(data) != int(region.Size) {
			return nil, fmt.Errorf("blob for region 0x%x has %d bytes, want %d", region.Address, len(data), region.Size)
		}
		s.blobs[region.Address] = data
	}

	s.log.Infoln("Loaded", len(s.blobs), "of", len(memoryMap), "regions from", dirname)

	return s, nil
}
