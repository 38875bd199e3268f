// Package search evaluates scan predicates over the memory of a
// process.ScannerTarget: a first scan over every readable region, and
// rescans that narrow a previous result set.
package search

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"memscan/process"
	"memscan/process/memory_map"
	"memscan/scan_variant"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

var (
	// ErrNeedsPrevious is returned when a change predicate is used for a first scan.
	ErrNeedsPrevious = errors.New("predicate compares against a previous scan")

	// ErrNeedsWidth is returned when a first scan has no fixed window to compare.
	ErrNeedsWidth = errors.New("predicate has no fixed width to scan for")
)

// Result is one matching location with the raw bytes read there, in the
// target's byte order.
type Result struct {
	Address process.ProcessMemoryAddress
	Raw     []byte
}

// Variant decodes the raw bytes of r as a value of trait t.
func (r Result) Variant(t scan_variant.Trait, littleEndian bool) (*scan_variant.ScanVariant, error) {
	return scan_variant.FromBuffer(t, r.Raw, littleEndian)
}

// Scanner holds configuration for a scan
type Scanner struct {
	Workers      int
	ChunkSize    process.ProcessMemorySize
	MaxResults   int
	WritableOnly bool
	Start, End   process.ProcessMemoryAddress

	// pointer path search
	MaxStructSize process.ProcessMemorySize
	MaxDepth      int

	log *logger.Logger
}

// Option is a function that configures a Scanner
type Option func(*Scanner)

// WithWorkers bounds the number of regions read concurrently.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		s.Workers = n
	}
}

// WithChunkSize sets how many bytes are read from a region at a time.
func WithChunkSize(size process.ProcessMemorySize) Option {
	return func(s *Scanner) {
		s.ChunkSize = size
	}
}

// WithMaxResults caps the number of results; 0 means unlimited.
func WithMaxResults(n int) Option {
	return func(s *Scanner) {
		s.MaxResults = n
	}
}

// WithWritableOnly skips regions that are not writable.
func WithWritableOnly() Option {
	return func(s *Scanner) {
		s.WritableOnly = true
	}
}

// WithRange limits the scan to [start, end).
func WithRange(start, end process.ProcessMemoryAddress) Option {
	return func(s *Scanner) {
		s.Start = start
		s.End = end
	}
}

func WithMaxStructSize(size process.ProcessMemorySize) Option {
	return func(s *Scanner) {
		s.MaxStructSize = size
	}
}

func WithMaxDepth(depth int) Option {
	return func(s *Scanner) {
		s.MaxDepth = depth
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(s *Scanner) {
		s.log = log
	}
}

func newScanner(options []Option) *Scanner {
	s := &Scanner{
		Workers:       runtime.NumCPU(),
		ChunkSize:     1 << 20,
		MaxStructSize: 256,
		MaxDepth:      3,
	}

	for _, opt := range options {
		opt(s)
	}

	if s.Workers < 1 {
		s.Workers = 1
	}
	if s.ChunkSize < 4096 {
		s.ChunkSize = 4096
	}
	if s.log == nil {
		s.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "scan"))
	}

	return s
}

// clip narrows a region to the configured range; ok is false if nothing is left.
func (s *Scanner) clip(item memory_map.MemoryMapItem) (start, end process.ProcessMemoryAddress, ok bool) {
	start = process.ProcessMemoryAddress(item.Address)
	end = process.ProcessMemoryAddress(item.End())
	if s.Start > start {
		start = s.Start
	}
	if s.End != 0 && s.End < end {
		end = s.End
	}
	return start, end, start < end
}

// First scans every readable region of t for locations that satisfy m.
// Candidate addresses step by the alignment of the matcher's trait. Results
// are sorted by address.
func First(ctx context.Context, t process.ScannerTarget, m *scan_variant.Matcher, options ...Option) ([]Result, error) {
	if m.Predicate().UsesPrevious() {
		return nil, fmt.Errorf("%w: %s", ErrNeedsPrevious, m.Predicate())
	}
	if m.Width() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNeedsWidth, m.Trait().Name())
	}

	s := newScanner(options)

	regions, err := process.ReadableRegions(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("failed to walk memory map: %w", err)
	}

	s.log.Infoln("Starting scan for", m.Trait().Name(), m.Predicate(), "over", len(regions), "regions with", s.Workers, "workers")

	// Create a semaphore to limit concurrency
	sem := make(chan struct{}, s.Workers)
	var wg sync.WaitGroup

	var resultsMutex sync.Mutex
	var results []Result

	for _, region := range regions {
		if s.WritableOnly && !region.IsWritable() {
			continue
		}
		start, end, ok := s.clip(region)
		if !ok {
			continue
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		}
		wg.Add(1)

		go func(start, end process.ProcessMemoryAddress) {
			defer func() {
				<-sem
				wg.Done()
			}()

			found := s.scanRegion(ctx, t, m.Clone(), start, end)
			if len(found) > 0 {
				resultsMutex.Lock()
				results = append(results, found...)
				resultsMutex.Unlock()
			}
		}(start, end)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results = s.finish(results)
	s.log.Infoln("Scan complete, found", len(results), "matches")

	return results, nil
}

// scanRegion reads [start, end) in chunks. Chunks overlap by width-1 bytes
// so values straddling a chunk boundary are still seen exactly once.
func (s *Scanner) scanRegion(ctx context.Context, t process.ScannerTarget, m *scan_variant.Matcher, start, end process.ProcessMemoryAddress) []Result {
	width := process.ProcessMemoryAddress(m.Width())
	alignment := m.Trait().Alignment()

	var found []Result
	for chunk := start; chunk < end; chunk += process.ProcessMemoryAddress(s.ChunkSize) {
		if ctx.Err() != nil {
			return found
		}

		chunkEnd := min(chunk+process.ProcessMemoryAddress(s.ChunkSize), end)
		readEnd := min(chunkEnd+width-1, end)

		data, err := t.RawRead(chunk, process.ProcessMemorySize(readEnd-chunk))
		if err != nil {
			// Some regions might fail to read due to permissions or other reasons
			s.log.Debugln("Failed to read memory at", chunk.ToString(), err)
			continue
		}

		for addr := process.AlignUp(chunk, alignment); addr < chunkEnd && addr+width <= readEnd; addr += process.ProcessMemoryAddress(max(alignment, 1)) {
			offset := addr - chunk
			window := data[offset : offset+width]

			ok, err := m.Match(window, nil)
			if err != nil || !ok {
				continue
			}

			raw := make([]byte, width)
			copy(raw, window)
			found = append(found, Result{Address: addr, Raw: raw})
		}
	}

	return found
}

// Next re-reads every previous result and keeps the ones that satisfy m.
// Change predicates compare against the bytes stored in previous; the kept
// results carry the freshly read bytes.
func Next(ctx context.Context, t process.ScannerTarget, m *scan_variant.Matcher, previous []Result, options ...Option) ([]Result, error) {
	s := newScanner(options)

	s.log.Infoln("Rescanning", len(previous), "locations for", m.Trait().Name(), m.Predicate())

	jobs := make(chan int)
	keep := make([]bool, len(previous))
	current := make([][]byte, len(previous))

	var wg sync.WaitGroup
	for w := 0; w < s.Workers; w++ {
		wg.Add(1)
		go func(m *scan_variant.Matcher) {
			defer wg.Done()
			for i := range jobs {
				prev := previous[i]

				size := process.ProcessMemorySize(len(prev.Raw))
				if width := m.Width(); width > 0 {
					size = process.ProcessMemorySize(width)
				}

				data, err := t.RawRead(prev.Address, size)
				if err != nil {
					s.log.Debugln("Failed to reread", prev.Address.ToString(), err)
					continue
				}

				ok, err := m.Match(data, prev.Raw)
				if err != nil || !ok {
					continue
				}

				keep[i] = true
				current[i] = data
			}
		}(m.Clone())
	}

feed:
	for i := range previous {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var results []Result
	for i, ok := range keep {
		if ok {
			results = append(results, Result{Address: previous[i].Address, Raw: current[i]})
		}
	}

	results = s.finish(results)
	s.log.Infoln("Rescan complete,", len(results), "of", len(previous), "locations kept")

	return results, nil
}

func (s *Scanner) finish(results []Result) []Result {
	sort.Slice(results, func(i, j int) bool {
		return results[i].Address < results[j].Address
	})
	if s.MaxResults > 0 && len(results) > s.MaxResults {
		results = results[:s.MaxResults]
	}
	return results
}
