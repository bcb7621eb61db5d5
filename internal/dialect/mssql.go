package dialect

import (
	"database/sql"
	"fmt"

	"dbloada/internal/project"
)

// nvarcharLimit is the longest NVARCHAR(n) SQL Server accepts; longer
// strings need NVARCHAR(MAX).
const nvarcharLimit = 4000

type MSSQLDialect struct{}

func (d *MSSQLDialect) Name() string { return "sqlserver" }

func (d *MSSQLDialect) GetTablesQuery(schema string) string {
	// Use @p1 for schema binding
	return `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = @p1 AND TABLE_TYPE = 'BASE TABLE'`
}

func (d *MSSQLDialect) GetSchemaName(input string) string {
	if input == "" {
		return "dbo"
	}
	return input
}

func (d *MSSQLDialect) BeforePump(tx *sql.Tx) error {
	return d.setConstraints(tx, "NOCHECK CONSTRAINT all")
}

func (d *MSSQLDialect) AfterPump(tx *sql.Tx) error {
	return d.setConstraints(tx, "WITH CHECK CHECK CONSTRAINT all")
}

// setConstraints applies an ALTER TABLE clause to every table in dbo.
func (d *MSSQLDialect) setConstraints(tx *sql.Tx, clause string) error {
	rows, err := tx.Query("SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_TYPE = 'BASE TABLE' AND TABLE_SCHEMA = 'dbo'")
	if err != nil {
		return err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return err
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	for _, t := range tables {
		if _, err := tx.Exec(fmt.Sprintf("ALTER TABLE %s %s", d.QuoteIdent(t), clause)); err != nil {
			return fmt.Errorf("failed to alter constraints on %s: %w", t, err)
		}
	}
	return nil
}

func (d *MSSQLDialect) CreateTableQuery(table string, cols []Column) string {
	return createTable(d, table, cols)
}

func (d *MSSQLDialect) InsertQuery(table string, cols []string) string {
	return insertInto(d, table, cols)
}

// TruncateQuery uses DELETE because TRUNCATE is refused on any table
// referenced by a foreign key, even a disabled one.
func (d *MSSQLDialect) TruncateQuery(table string) string {
	return fmt.Sprintf("DELETE FROM %s", d.QuoteIdent(table))
}

func (d *MSSQLDialect) CountQuery(table string) string {
	return countRows(d, table)
}

func (d *MSSQLDialect) Placeholder(index int) string {
	return fmt.Sprintf("@p%d", index+1)
}

func (d *MSSQLDialect) QuoteIdent(name string) string {
	return quoteWith(name, "[", "]")
}

func (d *MSSQLDialect) ColumnType(t project.ColumnType) string {
	switch {
	case t.Kind == project.TypeInt64:
		return "BIGINT"
	case t.MaxLength > 0 && t.MaxLength <= nvarcharLimit:
		return fmt.Sprintf("NVARCHAR(%d)", t.MaxLength)
	default:
		return "NVARCHAR(MAX)"
	}
}
