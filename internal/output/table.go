package output

import (
	"fmt"
	"io"
	"strings"
)

const columnGap = "  "

// Table renders rows under a header with padded columns. Columns marked
// with AlignRight are right-aligned so amounts line up on their last digit.
type Table struct {
	headers []string
	right   map[int]bool
	rows    [][]string
}

// NewTable returns a table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers, right: make(map[int]bool)}
}

// AlignRight right-aligns the columns at the given indexes.
func (t *Table) AlignRight(cols ...int) *Table {
	for _, c := range cols {
		t.right[c] = true
	}
	return t
}

// AddRow appends a row. Missing cells render empty and extra cells are
// dropped.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render writes the header, a dashed rule and every row. An empty table
// writes nothing.
func (t *Table) Render(w io.Writer) error {
	if len(t.headers) == 0 {
		return nil
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], len(row[i]))
		}
	}

	rule := make([]string, len(widths))
	for i, width := range widths {
		rule[i] = strings.Repeat("-", width)
	}

	lines := append([][]string{t.headers, rule}, t.rows...)
	for _, cells := range lines {
		if _, err := fmt.Fprintln(w, t.line(cells, widths)); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) line(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, width := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		if t.right[i] {
			parts[i] = fmt.Sprintf("%*s", width, cell)
		} else {
			parts[i] = fmt.Sprintf("%-*s", width, cell)
		}
	}
	return strings.TrimRight(strings.Join(parts, columnGap), " ")
}
