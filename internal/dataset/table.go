// internal/dataset/table.go
package dataset

import (
	"strconv"
	"strings"
)

// Table is a raw tabular file held in memory: a header row plus string
// cells. All typed access goes through the accessors so the coercion
// rules stay in one place.
type Table struct {
	Header []string
	Rows   [][]string

	colIndex map[string]int
}

// NewTable builds a table and its column index.
func NewTable(header []string, rows [][]string) *Table {
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.TrimSpace(col)] = i
	}
	return &Table{Header: header, Rows: rows, colIndex: idx}
}

// HasColumn reports whether the header contains the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.colIndex[name]
	return ok
}

// Value returns the trimmed cell for a column in the given row, or ""
// when the column is unknown or the row is short.
func (t *Table) Value(row int, col string) string {
	idx, ok := t.colIndex[col]
	if !ok || row < 0 || row >= len(t.Rows) || idx >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][idx])
}

// Float parses the cell as a float. The second return reports whether a
// numeric value was present.
func (t *Table) Float(row int, col string) (float64, bool) {
	val := t.Value(row, col)
	if val == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Int parses the cell as an int, accepting float strings like "1.0".
func (t *Table) Int(row int, col string) (int, bool) {
	f, ok := t.Float(row, col)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Column returns all values of one column, row order preserved.
func (t *Table) Column(col string) []string {
	values := make([]string, len(t.Rows))
	for i := range t.Rows {
		values[i] = t.Value(i, col)
	}
	return values
}

// NullCount counts empty cells in a column.
func (t *Table) NullCount(col string) int {
	count := 0
	for i := range t.Rows {
		if t.Value(i, col) == "" {
			count++
		}
	}
	return count
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }
