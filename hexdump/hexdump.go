// Package hexdump renders target memory as offset / hex / ascii lines,
// annotating pointer-sized values that land in mapped memory.
package hexdump

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"memscan/process"
	"memscan/scan_variant"

	"github.com/Moonlight-Companies/gologger/coloransi"
)

// Options defines options for customizing the hexdump output
type Options struct {
	// BytesPerLine defines the number of bytes to display per line
	BytesPerLine int

	// GroupSize is how many bytes are printed without a space between them
	GroupSize int

	ShowASCII bool

	// Address is printed as the offset of the first byte
	Address uint64

	// AddressWidth is the width of the offset column in hex digits
	AddressWidth int

	// Highlight bytes equal to this pattern are colored when Color is set
	Highlight []byte
	Color     bool

	// MaxLines truncates the dump, 0 means no limit
	MaxLines int

	// Pointer decodes pointer candidates at every pointer-sized offset of a
	// line. Mapped reports whether a candidate should be shown. Both must be
	// set for pointer hints to be printed.
	Pointer      scan_variant.Trait
	LittleEndian bool
	Mapped       func(addr uint64) bool
}

// DefaultOptions returns the default hexdump options
func DefaultOptions() Options {
	return Options{
		BytesPerLine: 16,
		GroupSize:    1,
		ShowASCII:    true,
		AddressWidth: 8,
	}
}

// Dump creates a hex dump of the given data with specified options
func Dump(data []byte, options Options) string {
	var buffer bytes.Buffer
	Fprint(&buffer, data, options)
	return buffer.String()
}

// Fprint writes a hex dump of data to w.
func Fprint(w io.Writer, data []byte, options Options) {
	if options.BytesPerLine <= 0 {
		options.BytesPerLine = 16
	}
	if options.GroupSize <= 0 {
		options.GroupSize = 1
	}
	if options.AddressWidth <= 0 {
		options.AddressWidth = 8
	}

	marks := highlightMask(data, options.Highlight)

	lines := 0
	for offset := 0; offset < len(data); offset += options.BytesPerLine {
		if options.MaxLines > 0 && lines >= options.MaxLines {
			fmt.Fprintf(w, "... %d more bytes\n", len(data)-offset)
			return
		}

		end := min(offset+options.BytesPerLine, len(data))
		formatLine(w, data[offset:end], marks[offset:end], options.Address+uint64(offset), options)
		lines++
	}
}

// Target reads size bytes at addr from t and dumps them with pointer hints
// in the target's byte order and pointer width.
func Target(w io.Writer, t process.ScannerTarget, addr process.ProcessMemoryAddress, size process.ProcessMemorySize, options Options) error {
	data, err := t.RawRead(addr, size)
	if err != nil {
		return err
	}

	ptr, err := process.PointerTrait(t)
	if err != nil {
		return err
	}

	options.Address = uint64(addr)
	options.Pointer = ptr
	options.LittleEndian = t.IsLittleEndian()
	options.Mapped = func(p uint64) bool {
		item, _, err := t.QueryMemory(process.ProcessMemoryAddress(p))
		return err == nil && item.Contains(p)
	}

	Fprint(w, data, options)
	return nil
}

// highlightMask marks every byte covered by an occurrence of pattern.
func highlightMask(data, pattern []byte) []bool {
	marks := make([]bool, len(data))
	if len(pattern) == 0 {
		return marks
	}
	for i := 0; i+len(pattern) <= len(data); i++ {
		if bytes.Equal(data[i:i+len(pattern)], pattern) {
			for j := range pattern {
				marks[i+j] = true
			}
		}
	}
	return marks
}

func formatLine(w io.Writer, data []byte, marks []bool, address uint64, options Options) {
	fmt.Fprintf(w, "%0*x  ", options.AddressWidth, address)

	var hexPart strings.Builder
	half := options.BytesPerLine / 2
	for i := 0; i < options.BytesPerLine; i++ {
		if i > 0 && i%options.GroupSize == 0 {
			hexPart.WriteByte(' ')
		}
		if options.BytesPerLine >= 8 && i == half {
			hexPart.WriteString("| ")
		}
		if i >= len(data) {
			// keep the ascii column aligned on a short last line
			hexPart.WriteString("  ")
			continue
		}
		cell := fmt.Sprintf("%02x", data[i])
		if options.Color && marks[i] {
			cell = coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, cell)
		}
		hexPart.WriteString(cell)
	}
	fmt.Fprint(w, hexPart.String())

	if options.ShowASCII {
		fmt.Fprint(w, " | ")
		for i, b := range data {
			c := "."
			if b >= 0x20 && b < 0x7f {
				c = string(rune(b))
			}
			if options.Color && marks[i] {
				c = coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, c)
			}
			fmt.Fprint(w, c)
		}
	}

	if hints := pointerHints(data, options); len(hints) > 0 {
		if options.ShowASCII {
			fmt.Fprint(w, strings.Repeat(" ", options.BytesPerLine-len(data)))
		}
		fmt.Fprint(w, " | ", strings.Join(hints, " "))
	}

	fmt.Fprintln(w)
}

func pointerHints(data []byte, options Options) []string {
	if options.Pointer == nil || options.Mapped == nil {
		return nil
	}

	size := options.Pointer.Size()
	var hints []string
	for off := 0; off+size <= len(data); off += size {
		v, err := scan_variant.FromBuffer(options.Pointer, data[off:off+size], options.LittleEndian)
		if err != nil {
			continue
		}
		p, err := scan_variant.AsUint64(v)
		if err != nil || p == 0 || !options.Mapped(p) {
			continue
		}
		hints = append(hints, v.String())
	}
	return hints
}
