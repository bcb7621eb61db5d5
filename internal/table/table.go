package table

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Table is a materialized table. Every row has exactly len(Columns) cells.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

func New(name string, columns []string, rows [][]string) *Table {
	return &Table{Name: name, Columns: columns, Rows: rows}
}

func (t *Table) NumRows() int    { return len(t.Rows) }
func (t *Table) NumColumns() int { return len(t.Columns) }

// Row returns the row at index i, or false when out of range.
func (t *Table) Row(i int) ([]string, bool) {
	if i < 0 || i >= len(t.Rows) {
		return nil, false
	}
	return t.Rows[i], true
}

// Cell returns the value at row, col, or false when either is out of range.
func (t *Table) Cell(row, col int) (string, bool) {
	r, ok := t.Row(row)
	if !ok || col < 0 || col >= len(r) {
		return "", false
	}
	return r[col], true
}

// Render formats the table as a bordered text grid preceded by a summary line.
func (t *Table) Render() string {
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = utf8.RuneCountInString(c)
	}
	for _, row := range t.Rows {
		for i, v := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(v))
			}
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Table: %s (%d rows, %d columns)\n", t.Name, t.NumRows(), t.NumColumns())

	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("-", w+2)
	}
	separator := "+" + strings.Join(parts, "+") + "+"

	line := func(values []string) string {
		cells := make([]string, len(widths))
		for i, w := range widths {
			v := ""
			if i < len(values) {
				v = values[i]
			}
			cells[i] = " " + v + strings.Repeat(" ", w-utf8.RuneCountInString(v)) + " "
		}
		return "|" + strings.Join(cells, "|") + "|"
	}

	sb.WriteString(separator + "\n")
	sb.WriteString(line(t.Columns) + "\n")
	sb.WriteString(separator + "\n")
	for _, row := range t.Rows {
		sb.WriteString(line(row) + "\n")
	}
	sb.WriteString(separator + "\n")
	return sb.String()
}
