package csvparse

import (
	"strings"

	"dbloada/internal/project"
)

// StripField trims surrounding whitespace and one layer of matching double
// quotes. Headers and data cells go through the same function so header
// lookups and values share one canonical form.
func StripField(field string) string {
	s := strings.TrimSpace(field)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// HeaderMap maps each stripped header value to its position. A later
// duplicate replaces an earlier one.
func HeaderMap(headers []string) map[string]int {
	m := make(map[string]int, len(headers))
	for i, h := range headers {
		m[StripField(h)] = i
	}
	return m
}

// ResolveColumnIndices returns, in declaration order, the raw source index
// of every declared column. headers is nil when the table has no header row.
// Index identifiers are not range checked here.
func ResolveColumnIndices(spec project.TableSpec, headers map[string]int) ([]int, error) {
	indices := make([]int, 0, len(spec.Columns))
	for _, col := range spec.Columns {
		if i, ok := col.Identifier.Index(); ok {
			indices = append(indices, i)
			continue
		}

		name, _ := col.Identifier.Name()
		if headers == nil {
			return nil, parseErrorf(spec.Name, ErrNameWithoutHeader,
				"column '%s' uses name identifier '%s' but hasHeader is false", col.Name, name)
		}
		i, ok := headers[name]
		if !ok {
			return nil, parseErrorf(spec.Name, ErrHeaderNotFound,
				"column '%s' references header '%s' which was not found in CSV headers", col.Name, name)
		}
		indices = append(indices, i)
	}
	return indices, nil
}

// ExtractRow picks the resolved indices out of record. Positions past the
// end of the record become empty strings.
func ExtractRow(record []string, indices []int) []string {
	row := make([]string, len(indices))
	for j, i := range indices {
		if i < len(record) {
			row[j] = StripField(record[i])
		}
	}
	return row
}
