package dialect

import (
	"database/sql"
	"fmt"

	"dbloada/internal/project"
)

type MysqlDialect struct{}

func (d *MysqlDialect) Name() string { return "mysql" }

func (d *MysqlDialect) GetTablesQuery(schema string) string {
	return `SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'`
}

func (d *MysqlDialect) GetSchemaName(input string) string {
	return input
}

func (d *MysqlDialect) BeforePump(tx *sql.Tx) error {
	_, err := tx.Exec("SET FOREIGN_KEY_CHECKS = 0")
	return err
}

func (d *MysqlDialect) AfterPump(tx *sql.Tx) error {
	_, err := tx.Exec("SET FOREIGN_KEY_CHECKS = 1")
	return err
}

func (d *MysqlDialect) CreateTableQuery(table string, cols []Column) string {
	return createTable(d, table, cols)
}

func (d *MysqlDialect) InsertQuery(table string, cols []string) string {
	return insertInto(d, table, cols)
}

func (d *MysqlDialect) TruncateQuery(table string) string {
	return fmt.Sprintf("TRUNCATE TABLE %s", d.QuoteIdent(table))
}

func (d *MysqlDialect) CountQuery(table string) string {
	return countRows(d, table)
}

func (d *MysqlDialect) Placeholder(index int) string {
	return "?"
}

func (d *MysqlDialect) QuoteIdent(name string) string {
	return quoteWith(name, "`", "`")
}

func (d *MysqlDialect) ColumnType(t project.ColumnType) string {
	switch {
	case t.Kind == project.TypeInt64:
		return "BIGINT"
	case t.MaxLength > 0:
		return fmt.Sprintf("VARCHAR(%d)", t.MaxLength)
	default:
		return "TEXT"
	}
}
