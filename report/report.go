// Package report renders scan output as aligned text tables.
package report

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"memscan/process"
	"memscan/process/memory_map"
	"memscan/scan_variant"
	"memscan/search"
)

// Class names the value category a trait belongs to.
func Class(t scan_variant.Trait) string {
	switch {
	case t.IsSignedNumericType():
		return "signed"
	case t.IsUnsignedNumericType():
		return "unsigned"
	case t.IsFloatingPointNumericType():
		return "float"
	case t.IsStringType():
		return "string"
	case t.IsStructureType():
		return "struct"
	}
	return "null"
}

func sizeText(n int) string {
	if n == 0 {
		return "var"
	}
	return strconv.Itoa(n)
}

// Traits lists trait descriptors, one per row.
func Traits(w io.Writer, traits []scan_variant.Trait) error {
	table := NewTable(
		ColumnSpec{Header: "NAME"},
		ColumnSpec{Header: "CLASS"},
		ColumnSpec{Header: "BASE"},
		ColumnSpec{Header: "TARGET"},
		ColumnSpec{Header: "SIZE", AlignRight: true},
		ColumnSpec{Header: "ALIGN", AlignRight: true},
		ColumnSpec{Header: "ORDERED"},
	)

	for _, t := range traits {
		ordered := "no"
		if scan_variant.IsOrdered(t) {
			ordered = "yes"
		}
		target := ""
		if t.IsDynamicType() {
			target = t.TargetType().String()
		}
		table.AddRow(
			t.Name(),
			Class(t),
			t.BaseType().String(),
			target,
			sizeText(t.Size()),
			strconv.Itoa(t.Alignment()),
			ordered,
		)
	}

	return table.Render(w)
}

// Results lists scan matches with their decoded value and raw bytes.
func Results(w io.Writer, results []search.Result, t scan_variant.Trait, littleEndian bool) error {
	table := NewTable(
		ColumnSpec{Header: "ADDRESS", AlignRight: true},
		ColumnSpec{Header: "VALUE"},
		ColumnSpec{Header: "RAW"},
	)

	for _, r := range results {
		table.AddRow(r.Address.ToString(), value(r.Raw, t, littleEndian), hex.EncodeToString(r.Raw))
	}

	return table.Render(w)
}

// Paths lists pointer paths from base as "base+off -> +off".
func Paths(w io.Writer, base process.ProcessMemoryAddress, results []search.PathResult, t scan_variant.Trait, littleEndian bool) error {
	table := NewTable(
		ColumnSpec{Header: "PATH"},
		ColumnSpec{Header: "VALUE"},
	)

	for _, r := range results {
		table.AddRow(PathString(base, r.Offsets), value(r.Raw, t, littleEndian))
	}

	return table.Render(w)
}

// PathString formats offsets the way process.ReadPath consumes them.
func PathString(base process.ProcessMemoryAddress, offsets []process.ProcessMemorySize) string {
	var b strings.Builder
	b.WriteString(base.ToString())
	for i, off := range offsets {
		if i > 0 {
			b.WriteString(" ->")
		}
		fmt.Fprintf(&b, " +0x%X", uint64(off))
	}
	return b.String()
}

// Regions lists memory map entries.
func Regions(w io.Writer, items []memory_map.MemoryMapItem) error {
	table := NewTable(
		ColumnSpec{Header: "START", AlignRight: true},
		ColumnSpec{Header: "END", AlignRight: true},
		ColumnSpec{Header: "PERMS"},
		ColumnSpec{Header: "SIZE", AlignRight: true},
		ColumnSpec{Header: "PATH"},
	)

	for _, item := range items {
		table.AddRow(
			fmt.Sprintf("0x%X", item.Address),
			fmt.Sprintf("0x%X", item.End()),
			item.Perms,
			process.ProcessMemorySize(item.Size).ToString(),
			item.Path,
		)
	}

	return table.Render(w)
}

func value(raw []byte, t scan_variant.Trait, littleEndian bool) string {
	v, err := scan_variant.FromBuffer(t, raw, littleEndian)
	if err != nil {
		return "(invalid)"
	}
	return v.String()
}
