package dialect

import (
	"database/sql"
	"fmt"

	"dbloada/internal/project"
)

// varchar2Limit is the VARCHAR2 ceiling under the default
// MAX_STRING_SIZE=STANDARD.
const varchar2Limit = 4000

type OracleDialect struct{}

func (d *OracleDialect) Name() string { return "oracle" }

func (d *OracleDialect) GetTablesQuery(schema string) string {
	// USER_TABLES lists tables owned by the current user.
	// The clause only consumes the schema argument passed by callers.
	return `SELECT TABLE_NAME FROM USER_TABLES WHERE :1 IS NOT NULL`
}

// GetSchemaName never returns "" since Oracle treats an empty string bind
// as NULL.
func (d *OracleDialect) GetSchemaName(input string) string {
	if input == "" {
		return "USER"
	}
	return input
}

func (d *OracleDialect) BeforePump(tx *sql.Tx) error {
	return nil
}

func (d *OracleDialect) AfterPump(tx *sql.Tx) error {
	return nil
}

func (d *OracleDialect) CreateTableQuery(table string, cols []Column) string {
	return createTable(d, table, cols)
}

func (d *OracleDialect) InsertQuery(table string, cols []string) string {
	return insertInto(d, table, cols)
}

func (d *OracleDialect) TruncateQuery(table string) string {
	return fmt.Sprintf("TRUNCATE TABLE %s", d.QuoteIdent(table))
}

func (d *OracleDialect) CountQuery(table string) string {
	return countRows(d, table)
}

func (d *OracleDialect) Placeholder(index int) string {
	// Oracle uses :1, :2, etc. (1-based index)
	return fmt.Sprintf(":%d", index+1)
}

func (d *OracleDialect) QuoteIdent(name string) string {
	return quoteWith(name, `"`, `"`)
}

func (d *OracleDialect) ColumnType(t project.ColumnType) string {
	switch {
	case t.Kind == project.TypeInt64:
		return "NUMBER(19)"
	case t.MaxLength > 0 && t.MaxLength <= varchar2Limit:
		return fmt.Sprintf("VARCHAR2(%d CHAR)", t.MaxLength)
	case t.MaxLength > varchar2Limit:
		return "CLOB"
	default:
		return fmt.Sprintf("VARCHAR2(%d CHAR)", varchar2Limit)
	}
}
