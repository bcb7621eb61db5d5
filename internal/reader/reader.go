// Package reader materializes a single table from its declared source.
package reader

import (
	"context"
	"fmt"
	"log/slog"

	"dbloada/internal/project"
	"dbloada/internal/table"
)

// TableReader reads one kind of source. CanRead must be cheap and must not
// touch the source.
type TableReader interface {
	Name() string
	CanRead(spec project.TableSpec) bool
	Read(ctx context.Context, spec project.TableSpec, projectDir string) (*table.Table, error)
}

// Parser turns decoded text into a table.
type Parser interface {
	Parse(text string, spec project.TableSpec) (*table.Table, error)
}

type NoReaderFoundError struct {
	Table string
}

func (e *NoReaderFoundError) Error() string {
	return fmt.Sprintf("no reader found for table '%s'", e.Table)
}

// ReadError is a failure to obtain or decode a table's raw content.
type ReadError struct {
	Table   string
	Message string
	Err     error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read table '%s': %s", e.Table, e.Message)
}

func (e *ReadError) Unwrap() error { return e.Err }

func readErrorf(table string, err error, format string, args ...any) error {
	return &ReadError{Table: table, Message: fmt.Sprintf(format, args...), Err: err}
}

// Dispatch routes a table to the first reader that accepts it. Readers are
// tried in the order given; when several accept, the earliest wins.
type Dispatch struct {
	readers []TableReader
	logger  *slog.Logger
}

func NewDispatch(logger *slog.Logger, readers ...TableReader) *Dispatch {
	return &Dispatch{readers: readers, logger: logger}
}

func (d *Dispatch) Read(ctx context.Context, spec project.TableSpec, projectDir string) (*table.Table, error) {
	for _, r := range d.readers {
		if !r.CanRead(spec) {
			continue
		}
		d.logger.Debug("dispatching table", "table", spec.Name, "reader", r.Name())
		t, err := r.Read(ctx, spec, projectDir)
		if err != nil {
			return nil, err
		}
		d.logger.Info("read table", "table", spec.Name, "reader", r.Name(),
			"rows", t.NumRows(), "columns", t.NumColumns())
		return t, nil
	}
	return nil, &NoReaderFoundError{Table: spec.Name}
}
