package dialect

import (
	"database/sql"

	"dbloada/internal/project"
)

// Column is a target column derived from a project column spec.
type Column struct {
	Name string
	Type project.ColumnType
}

// Dialect abstracts database-specific SQL for pushing materialized tables.
type Dialect interface {
	// Name is the canonical dialect name used in logs.
	Name() string

	// Metadata Queries (Schema Introspection)
	GetTablesQuery(schema string) string
	GetSchemaName(input string) string

	// Execution Hooks, run inside every fill and clean transaction
	BeforePump(tx *sql.Tx) error
	AfterPump(tx *sql.Tx) error

	// Query Generation
	CreateTableQuery(table string, cols []Column) string
	InsertQuery(table string, cols []string) string
	TruncateQuery(table string) string
	CountQuery(table string) string
	Placeholder(index int) string // Returns ?, $1, @p1, etc.

	// Helpers
	QuoteIdent(name string) string
	ColumnType(t project.ColumnType) string
}
