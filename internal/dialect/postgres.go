package dialect

import (
	"database/sql"
	"fmt"

	"dbloada/internal/project"
)

// PostgresDialect serves both the lib/pq ("postgres") and pgx ("pgx")
// drivers.
type PostgresDialect struct{}

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) GetTablesQuery(schema string) string {
	// use $1 placeholder
	return `SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = $1 AND TABLE_TYPE = 'BASE TABLE'`
}

func (d *PostgresDialect) GetSchemaName(input string) string {
	if input == "" {
		return "public"
	}
	return input
}

func (d *PostgresDialect) BeforePump(tx *sql.Tx) error {
	// Only affects foreign keys declared DEFERRABLE.
	_, err := tx.Exec("SET CONSTRAINTS ALL DEFERRED")
	return err
}

func (d *PostgresDialect) AfterPump(tx *sql.Tx) error {
	_, err := tx.Exec("SET CONSTRAINTS ALL IMMEDIATE")
	return err
}

func (d *PostgresDialect) CreateTableQuery(table string, cols []Column) string {
	return createTable(d, table, cols)
}

func (d *PostgresDialect) InsertQuery(table string, cols []string) string {
	return insertInto(d, table, cols)
}

func (d *PostgresDialect) TruncateQuery(table string) string {
	return fmt.Sprintf("TRUNCATE TABLE %s CASCADE", d.QuoteIdent(table))
}

func (d *PostgresDialect) CountQuery(table string) string {
	return countRows(d, table)
}

func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index+1)
}

func (d *PostgresDialect) QuoteIdent(name string) string {
	return quoteWith(name, `"`, `"`)
}

func (d *PostgresDialect) ColumnType(t project.ColumnType) string {
	switch {
	case t.Kind == project.TypeInt64:
		return "BIGINT"
	case t.MaxLength > 0:
		return fmt.Sprintf("VARCHAR(%d)", t.MaxLength)
	default:
		return "TEXT"
	}
}
