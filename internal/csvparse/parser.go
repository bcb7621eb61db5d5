// Package csvparse turns delimited text into a materialized table according
// to a table declaration.
package csvparse

import (
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"strings"

	"dbloada/internal/project"
	"dbloada/internal/table"
)

type Parser struct {
	logger *slog.Logger
}

func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse reads text as comma separated records. Records may have any number
// of fields; missing cells are filled with empty strings.
func (p *Parser) Parse(text string, spec project.TableSpec) (*table.Table, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var headers map[string]int
	if spec.HasHeader {
		record, err := r.Read()
		switch {
		case errors.Is(err, io.EOF):
			record = nil
		case err != nil:
			return nil, parseErrorf(spec.Name, ErrMalformedRecord, "failed to parse CSV headers: %v", err)
		}
		headers = HeaderMap(record)
		p.logger.Debug("csv headers", "table", spec.Name, "headers", headers)
	}

	indices, err := ResolveColumnIndices(spec, headers)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("column mapping", "table", spec.Name, "columns", spec.ColumnNames(), "indices", indices)

	var rows [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, parseErrorf(spec.Name, ErrMalformedRecord, "failed to parse CSV record: %v", err)
		}
		rows = append(rows, ExtractRow(record, indices))
	}

	return table.New(spec.Name, spec.ColumnNames(), rows), nil
}
