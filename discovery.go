package db2

import (
	"context"
	"strings"

	"github.com/kva3umoda/db2-adapter/model"
)

// Discovery introspects the DB2 system catalog and turns live tables back
// into model definitions.
type Discovery struct {
	executor *Executor
	schema   string
	logger   Logger
}

func NewDiscovery(executor *Executor, schema string, logger Logger) *Discovery {
	if logger == nil {
		logger = NopLogger()
	}

	return &Discovery{
		executor: executor,
		schema:   schema,
		logger:   logger,
	}
}

// TableInfo identifies one discovered table.
type TableInfo struct {
	Schema string
	Name   string
}

// ColumnInfo is one discovered column, as the catalog reports it.
type ColumnInfo struct {
	Name     string
	DataType string
	Length   int
	Scale    int
	Nullable bool
	Identity bool
}

// Schemas lists the database's schema names.
func (d *Discovery) Schemas(ctx context.Context) ([]string, error) {
	stmt := NewStatement(`SELECT TRIM(SCHEMANAME) AS "schema" FROM SYSCAT.SCHEMATA ORDER BY SCHEMANAME`)

	rows, err := d.executor.Query(ctx, stmt, nil)
	if err != nil {
		return nil, err
	}

	schemas := make([]string, 0, len(rows))
	for _, row := range rows {
		schemas = append(schemas, rowText(row, "schema"))
	}

	return schemas, nil
}

// Tables lists the ordinary tables in a schema; an empty schema falls back
// to the session's current schema.
func (d *Discovery) Tables(ctx context.Context, schema string) ([]TableInfo, error) {
	schema = d.resolveSchema(schema)

	stmt := NewStatement(
		`SELECT TRIM(TABSCHEMA) AS "owner", TABNAME AS "name" FROM SYSCAT.TABLES `+
			`WHERE TYPE = 'T' AND TABSCHEMA = ? ORDER BY TABNAME`,
		schema)

	rows, err := d.executor.Query(ctx, stmt, nil)
	if err != nil {
		return nil, err
	}

	tables := make([]TableInfo, 0, len(rows))
	for _, row := range rows {
		tables = append(tables, TableInfo{
			Schema: rowText(row, "owner"),
			Name:   rowText(row, "name"),
		})
	}

	return tables, nil
}

// Columns lists a table's columns in declaration order.
func (d *Discovery) Columns(ctx context.Context, schema, table string) ([]ColumnInfo, error) {
	schema = d.resolveSchema(schema)

	stmt := NewStatement(
		`SELECT COLNAME AS "name", TYPENAME AS "dataType", LENGTH AS "length", `+
			`SCALE AS "scale", NULLS AS "nullable", IDENTITY AS "identity" `+
			`FROM SYSCAT.COLUMNS WHERE TABSCHEMA = ? AND TABNAME = ? ORDER BY COLNO`,
		schema, table)

	rows, err := d.executor.Query(ctx, stmt, nil)
	if err != nil {
		return nil, err
	}

	columns := make([]ColumnInfo, 0, len(rows))
	for _, row := range rows {
		columns = append(columns, ColumnInfo{
			Name:     rowText(row, "name"),
			DataType: rowText(row, "dataType"),
			Length:   rowInt(row, "length"),
			Scale:    rowInt(row, "scale"),
			Nullable: rowText(row, "nullable") == "Y",
			Identity: rowText(row, "identity") == "Y",
		})
	}

	return columns, nil
}

// PrimaryKeys lists the table's primary-key column names in key order.
func (d *Discovery) PrimaryKeys(ctx context.Context, schema, table string) ([]string, error) {
	schema = d.resolveSchema(schema)

	stmt := NewStatement(
		`SELECT KC.COLNAME AS "column" FROM SYSCAT.TABCONST TC `+
			`JOIN SYSCAT.KEYCOLUSE KC ON TC.CONSTNAME = KC.CONSTNAME `+
			`AND TC.TABSCHEMA = KC.TABSCHEMA AND TC.TABNAME = KC.TABNAME `+
			`WHERE TC.TYPE = 'P' AND TC.TABSCHEMA = ? AND TC.TABNAME = ? `+
			`ORDER BY KC.COLSEQ`,
		schema, table)

	rows, err := d.executor.Query(ctx, stmt, nil)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, rowText(row, "column"))
	}

	return keys, nil
}

// ModelDefinition reconstructs a model definition from a live table:
// column order, primary-key flags, identity generation, nullability and
// abstract property types inferred from the native ones.
func (d *Discovery) ModelDefinition(ctx context.Context, schema, table string) (*model.Definition, error) {
	columns, err := d.Columns(ctx, schema, table)
	if err != nil {
		return nil, err
	}

	if len(columns) == 0 {
		return nil, newValidationError("table %s.%s has no columns", d.resolveSchema(schema), table)
	}

	keys, err := d.PrimaryKeys(ctx, schema, table)
	if err != nil {
		return nil, err
	}

	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}

	def := &model.Definition{
		Name:     table,
		Settings: model.Settings{Table: table},
	}

	for _, column := range columns {
		p := model.Property{
			Name:      column.Name,
			Type:      propertyType(column.DataType),
			ID:        isKey[column.Name],
			Generated: column.Identity,
			Required:  !column.Nullable,
		}

		if p.Type == model.String {
			p.Length = column.Length
		}

		if p.Type == model.Number && column.Scale > 0 {
			p.Precision = column.Length
			p.Scale = column.Scale
		}

		def.Properties = append(def.Properties, p)
	}

	d.logger.Tracef("discovered model %s with %d properties", table, len(def.Properties))

	return def, nil
}

// propertyType maps a catalog type name to its abstract property type.
// Unrecognized types come back as String so discovered models stay
// loadable.
func propertyType(dataType string) model.PropertyType {
	switch strings.ToUpper(strings.TrimSpace(dataType)) {
	case "VARCHAR", "CHARACTER", "CHAR", "CLOB", "GRAPHIC", "VARGRAPHIC", "LONG VARCHAR":
		return model.String
	case "SMALLINT", "INTEGER", "BIGINT", "DECIMAL", "NUMERIC", "DOUBLE", "REAL", "DECFLOAT":
		return model.Number
	case "DATE", "TIME", "TIMESTAMP":
		return model.Date
	case "BOOLEAN":
		return model.Boolean
	default:
		return model.String
	}
}

func (d *Discovery) resolveSchema(schema string) string {
	if schema == "" {
		return d.schema
	}

	return strings.ToUpper(schema)
}

func rowText(row map[string]any, column string) string {
	switch v := row[column].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func rowInt(row map[string]any, column string) int {
	switch v := row[column].(type) {
	case int:
		return v
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
