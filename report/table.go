package report

import (
	"fmt"
	"io"
	"strings"
)

// FormatFunc colorizes a cell after padding widths are computed.
type FormatFunc func(value string) string

// ColumnSpec defines a column's properties
type ColumnSpec struct {
	Header     string
	BlankValue string     // shown for empty cells, "-" by default
	FormatFunc FormatFunc // optional
	MinWidth   int
	AlignRight bool
}

// Table is a column aligned text table.
type Table struct {
	columns []ColumnSpec
	rows    [][]string
	widths  []int
}

// NewTable creates a new table with the given column specifications
func NewTable(cols ...ColumnSpec) *Table {
	t := &Table{
		columns: cols,
		widths:  make([]int, len(cols)),
	}

	for i := range t.columns {
		if t.columns[i].BlankValue == "" {
			t.columns[i].BlankValue = "-"
		}
		t.widths[i] = max(t.columns[i].MinWidth, visibleLength(t.columns[i].Header))
	}

	return t
}

// AddRow adds a row; missing and empty cells get the column's blank value.
// Extra values are dropped.
func (t *Table) AddRow(data ...string) {
	row := make([]string, len(t.columns))
	for i := range row {
		if i < len(data) && data[i] != "" {
			row[i] = data[i]
		} else {
			row[i] = t.columns[i].BlankValue
		}
		t.widths[i] = max(t.widths[i], visibleLength(row[i]))
	}
	t.rows = append(t.rows, row)
}

// Len is the number of rows added so far.
func (t *Table) Len() int { return len(t.rows) }

// Render writes the header, a rule and every row to w.
func (t *Table) Render(w io.Writer) error {
	headers := make([]string, len(t.columns))
	rule := make([]string, len(t.columns))
	for i, col := range t.columns {
		headers[i] = t.pad(i, col.Header)
		rule[i] = strings.Repeat("-", t.widths[i])
	}
	if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(headers, " "), " ")); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Join(rule, " ")); err != nil {
		return err
	}

	for _, row := range t.rows {
		cells := make([]string, len(row))
		for i, val := range row {
			cells[i] = t.pad(i, val)
			if f := t.columns[i].FormatFunc; f != nil {
				// pad first so escape codes do not count toward width
				trimmed := strings.TrimSpace(cells[i])
				cells[i] = strings.Replace(cells[i], trimmed, f(trimmed), 1)
			}
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, " "), " ")); err != nil {
			return err
		}
	}

	return nil
}

func (t *Table) pad(col int, s string) string {
	n := t.widths[col] - visibleLength(s)
	if n <= 0 {
		return s
	}
	if t.columns[col].AlignRight {
		return strings.Repeat(" ", n) + s
	}
	return s + strings.Repeat(" ", n)
}

// visibleLength counts runes outside ANSI escape sequences.
func visibleLength(s string) int {
	length := 0
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\033':
			inEscape = true
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		default:
			length++
		}
	}
	return length
}
