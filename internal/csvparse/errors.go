package csvparse

import (
	"errors"
	"fmt"
)

var (
	ErrNameWithoutHeader = errors.New("name identifier used without header")
	ErrHeaderNotFound    = errors.New("header not found")
	ErrMalformedRecord   = errors.New("malformed record")
)

// ParseError is a column resolution or record parsing failure for a table.
type ParseError struct {
	Table string
	Kind  error
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse table '%s': %s: %s", e.Table, e.Kind, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Kind }

func parseErrorf(table string, kind error, format string, args ...any) error {
	return &ParseError{Table: table, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
