package process

import (
	"context"
	"errors"

	"memscan/process/memory_map"
)

// Regions walks every mapped region of t from address zero upward and calls
// fn for each one. Walking stops early when fn returns an error or ctx is done.
func Regions(ctx context.Context, t ScannerTarget, fn func(memory_map.MemoryMapItem) error) error {
	if r, ok := t.(Refresher); ok {
		if err := r.UpdateMemoryMap(); err != nil {
			return err
		}
	}

	addr := ProcessMemoryAddress(0)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		item, next, err := t.QueryMemory(addr)
		if errors.Is(err, ErrAddressNotMapped) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := fn(item); err != nil {
			return err
		}

		// the last region may end at the top of the address space
		if next <= addr {
			return nil
		}
		addr = next
	}
}

// ReadableRegions collects the readable regions of t.
func ReadableRegions(ctx context.Context, t ScannerTarget) ([]memory_map.MemoryMapItem, error) {
	var out []memory_map.MemoryMapItem
	err := Regions(ctx, t, func(item memory_map.MemoryMapItem) error {
		if item.IsReadable() {
			out = append(out, item)
		}
		return nil
	})
	return out, err
}
