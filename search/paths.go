package search

import (
	"context"
	"errors"
	"fmt"

	"memscan/process"
	"memscan/scan_variant"
)

// PathResult is a pointer path from a base address to a matching value,
// in the form process.ReadPath takes.
type PathResult struct {
	Offsets []process.ProcessMemorySize
	Raw     []byte
}

// Paths walks structures reachable from base, following every mapped
// pointer-sized value up to the configured depth, and returns the paths at
// which m matches. Structures are MaxStructSize bytes long. An address is
// walked again only when reached at a shallower depth than before, so a
// structure first found at the depth limit is still expanded from a closer
// parent.
func Paths(ctx context.Context, t process.ScannerTarget, base process.ProcessMemoryAddress, m *scan_variant.Matcher, options ...Option) ([]PathResult, error) {
	if m.Predicate().UsesPrevious() {
		return nil, fmt.Errorf("%w: %s", ErrNeedsPrevious, m.Predicate())
	}
	if m.Width() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNeedsWidth, m.Trait().Name())
	}

	s := newScanner(options)

	ptrTrait, err := process.PointerTrait(t)
	if err != nil {
		return nil, err
	}
	ptrSize := ptrTrait.Size()
	width := m.Width()
	alignment := max(m.Trait().Alignment(), 1)

	var results []PathResult
	shallowest := make(map[process.ProcessMemoryAddress]int)

	var searchRecursive func(addr process.ProcessMemoryAddress, depth int, path []process.ProcessMemorySize) error
	searchRecursive = func(addr process.ProcessMemoryAddress, depth int, path []process.ProcessMemorySize) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if seen, ok := shallowest[addr]; ok && depth >= seen {
			return nil
		}
		shallowest[addr] = depth

		data, err := t.RawRead(addr, s.MaxStructSize)
		if err != nil {
			// structures near the end of a region are not followed
			return nil
		}

		for offset := 0; offset+width <= len(data); offset += alignment {
			if ok, err := m.Match(data[offset:offset+width], nil); err == nil && ok {
				results = append(results, PathResult{
					Offsets: appendOffset(path, offset),
					Raw:     append([]byte(nil), data[offset:offset+width]...),
				})
				if s.MaxResults > 0 && len(results) >= s.MaxResults {
					return errEnough
				}
			}
		}

		if depth >= s.MaxDepth {
			return nil
		}

		for offset := 0; offset+ptrSize <= len(data); offset += ptrSize {
			v, err := scan_variant.FromBuffer(ptrTrait, data[offset:offset+ptrSize], t.IsLittleEndian())
			if err != nil {
				continue
			}
			ptr, err := scan_variant.AsUint64(v)
			if err != nil || ptr == 0 {
				continue
			}

			next := process.ProcessMemoryAddress(ptr)
			if !isMapped(t, next) {
				continue
			}

			if err := searchRecursive(next, depth+1, appendOffset(path, offset)); err != nil {
				return err
			}
		}

		return nil
	}

	err = searchRecursive(base, 0, nil)
	if err != nil && !errors.Is(err, errEnough) {
		return nil, err
	}

	s.log.Infoln("Pointer path search found", len(results), "paths from", base.ToString())
	return results, nil
}

var errEnough = errors.New("result limit reached")

func appendOffset(path []process.ProcessMemorySize, offset int) []process.ProcessMemorySize {
	out := make([]process.ProcessMemorySize, len(path), len(path)+1)
	copy(out, path)
	return append(out, process.ProcessMemorySize(offset))
}

func isMapped(t process.ScannerTarget, addr process.ProcessMemoryAddress) bool {
	item, _, err := t.QueryMemory(addr)
	return err == nil && item.Contains(uint64(addr)) && item.IsReadable()
}
