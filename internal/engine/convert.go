package engine

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"dbloada/internal/project"

	"github.com/spf13/cast"
)

// ConversionError reports a cell that does not fit its declared column type.
type ConversionError struct {
	Table  string
	Row    int
	Column string
	Value  string
	Reason string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("table '%s' row %d column '%s': value '%s' %s", e.Table, e.Row+1, e.Column, e.Value, e.Reason)
}

// ConvertCell turns a text cell into the value bound for its column type.
// Empty int64 cells become NULL.
func ConvertCell(value string, t project.ColumnType) (any, error) {
	switch t.Kind {
	case project.TypeInt64:
		s := strings.TrimSpace(value)
		if s == "" {
			return nil, nil
		}
		n, err := parseInt64(s)
		if err != nil {
			return nil, fmt.Errorf("is not an int64")
		}
		return n, nil
	default:
		if t.MaxLength > 0 && utf8.RuneCountInString(value) > t.MaxLength {
			return nil, fmt.Errorf("exceeds max length %d", t.MaxLength)
		}
		return value, nil
	}
}

// parseInt64 parses an optionally signed run of decimal digits. Leading
// zeros are dropped first so zero-padded values are not read as octal.
func parseInt64(s string) (int64, error) {
	sign := ""
	if s[0] == '-' || s[0] == '+' {
		sign, s = s[:1], s[1:]
	}
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, fmt.Errorf("'%s' is not a decimal integer", sign+s)
	}
	digits := strings.TrimLeft(s, "0")
	if digits == "" {
		digits = "0"
	}
	return cast.ToInt64E(sign + digits)
}

// ConvertRows converts every row of a table according to spec. The first
// failing cell aborts the conversion.
func ConvertRows(spec *project.TableSpec, rows [][]string) ([][]any, error) {
	out := make([][]any, len(rows))
	for r, row := range rows {
		values := make([]any, len(spec.Columns))
		for c, col := range spec.Columns {
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			v, err := ConvertCell(cell, col.Type)
			if err != nil {
				return nil, &ConversionError{Table: spec.Name, Row: r, Column: col.Name, Value: cell, Reason: err.Error()}
			}
			values[c] = v
		}
		out[r] = values
	}
	return out, nil
}
