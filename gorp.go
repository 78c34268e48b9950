package db2

import (
	`fmt`
	`reflect`
	`strings`

	`github.com/go-gorp/gorp/v3`
)

var _ gorp.Dialect = Db2Dialect{}
var _ gorp.IntegerAutoIncrInserter = Db2Dialect{}

// Db2Dialect implements gorp.Dialect so gorp-managed tables get the same
// engine treatment as adapter-managed ones: double-quoted identifiers,
// identity generation for auto-increment keys and IMMEDIATE truncation.
type Db2Dialect struct{}

func (d Db2Dialect) QuerySuffix() string { return ";" }

func (d Db2Dialect) ToSqlType(val reflect.Type, maxsize int, isAutoIncr bool) string {
	switch val.Kind() {
	case reflect.Ptr:
		return d.ToSqlType(val.Elem(), maxsize, isAutoIncr)
	case reflect.Bool:
		return "SMALLINT"
	case reflect.Int8, reflect.Int16, reflect.Uint8, reflect.Uint16:
		return "SMALLINT"
	case reflect.Int, reflect.Int32, reflect.Uint, reflect.Uint32:
		return "INTEGER"
	case reflect.Int64, reflect.Uint64:
		return "BIGINT"
	case reflect.Float32:
		return "REAL"
	case reflect.Float64:
		return "DOUBLE"
	case reflect.Slice:
		if val.Elem().Kind() == reflect.Uint8 {
			return "BLOB"
		}
	}

	switch val.Name() {
	case "NullInt64":
		return "BIGINT"
	case "NullFloat64":
		return "DOUBLE"
	case "NullBool":
		return "SMALLINT"
	case "Time", "NullTime":
		return "TIMESTAMP"
	}

	if maxsize < 1 {
		maxsize = defaultIDTextLength
	}

	return fmt.Sprintf("VARCHAR(%d)", maxsize)
}

// AutoIncrStr is the identity clause attached to auto-increment columns.
func (d Db2Dialect) AutoIncrStr() string {
	return identityClause
}

func (d Db2Dialect) AutoIncrBindValue() string {
	return "DEFAULT"
}

func (d Db2Dialect) AutoIncrInsertSuffix(col *gorp.ColumnMap) string {
	return ""
}

func (d Db2Dialect) CreateTableSuffix() string { return "" }

func (d Db2Dialect) CreateIndexSuffix() string { return "" }

func (d Db2Dialect) DropIndexSuffix() string { return "" }

// TruncateClause makes truncation take effect without a separate commit.
func (d Db2Dialect) TruncateClause() string {
	return "IMMEDIATE"
}

func (d Db2Dialect) BindVar(i int) string {
	return "?"
}

// QuoteField doubles embedded quote characters before wrapping, so a
// quote inside an identifier cannot terminate it early.
func (d Db2Dialect) QuoteField(f string) string {
	return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
}

func (d Db2Dialect) QuotedTableForQuery(schema string, table string) string {
	if strings.TrimSpace(schema) == "" {
		return d.QuoteField(table)
	}

	return d.QuoteField(schema) + "." + d.QuoteField(table)
}

// DB2 has no IF EXISTS forms for these commands; the statements run bare
// and existing objects surface as engine errors.
func (d Db2Dialect) IfSchemaNotExists(command, schema string) string {
	return command
}

func (d Db2Dialect) IfTableExists(command, schema, table string) string {
	return command
}

func (d Db2Dialect) IfTableNotExists(command, schema, table string) string {
	return command
}

// InsertAutoIncr reads the generated key back with IDENTITY_VAL_LOCAL,
// which is scoped to the connection. Run inserts inside a gorp
// transaction so both statements share one connection.
func (d Db2Dialect) InsertAutoIncr(exec gorp.SqlExecutor, insertSql string, params ...interface{}) (int64, error) {
	_, err := exec.Exec(insertSql, params...)
	if err != nil {
		return 0, err
	}

	return exec.SelectInt("SELECT IDENTITY_VAL_LOCAL() FROM SYSIBM.SYSDUMMY1")
}
