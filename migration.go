package db2

import (
	"context"
	"fmt"
	"strings"

	"github.com/kva3umoda/db2-adapter/model"
)

const identityClause = "GENERATED BY DEFAULT AS IDENTITY (START WITH 1 INCREMENT BY 1)"

// BuildCreateTable renders the CREATE TABLE statement for a model: one
// column definition per property in declaration order, then a primary-key
// clause listing every id column.
func (b *StatementBuilder) BuildCreateTable(modelName string) (*Statement, error) {
	def, err := b.definition(modelName)
	if err != nil {
		return nil, err
	}

	if len(def.Properties) == 0 {
		return nil, newValidationError("model %q declares no properties", modelName)
	}

	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	sb.WriteString(b.SchemaTable(def))
	sb.WriteString(" (")

	for i := range def.Properties {
		if i > 0 {
			sb.WriteString(",")
		}

		column, err := b.buildColumnDefinition(&def.Properties[i])
		if err != nil {
			return nil, err
		}

		sb.WriteString(column)
	}

	var escaped []string
	for i := range def.Properties {
		if def.Properties[i].ID {
			escaped = append(escaped, b.EscapeName(def.Properties[i].ColumnName()))
		}
	}

	if len(escaped) > 0 {
		sb.WriteString(",PRIMARY KEY(")
		sb.WriteString(strings.Join(escaped, ","))
		sb.WriteString(")")
	}

	sb.WriteString(")")

	return NewStatement(sb.String()), nil
}

// buildColumnDefinition renders one column: name, native type, nullability
// and the identity clause for generated id columns. Id columns are NOT
// NULL regardless of declared nullability.
func (b *StatementBuilder) buildColumnDefinition(p *model.Property) (string, error) {
	dataType, err := ColumnDataType(p)
	if err != nil {
		return "", err
	}

	column := b.EscapeName(p.ColumnName()) + " " + dataType

	if p.ID || p.Required {
		column += " NOT NULL"
	}

	if p.ID && p.Generated {
		column += " " + identityClause
	}

	return column, nil
}

// BuildIndexes renders one CREATE INDEX statement per index declared in
// the model's settings. Only model-level declared indexes are built;
// properties do not get indexes of their own.
func (b *StatementBuilder) BuildIndexes(modelName string) ([]*Statement, error) {
	def, err := b.definition(modelName)
	if err != nil {
		return nil, err
	}

	var stmts []*Statement

	for _, index := range def.Settings.Indexes {
		if index.Name == "" {
			return nil, newValidationError("model %q declares an unnamed index", modelName)
		}

		columns, err := b.indexColumns(def, &index)
		if err != nil {
			return nil, err
		}

		unique := ""
		if index.Unique {
			unique = "UNIQUE "
		}

		sql := fmt.Sprintf("CREATE %sINDEX %s.%s ON %s (%s)",
			unique,
			b.EscapeName(b.schema),
			b.EscapeName(index.Name),
			b.SchemaTable(def),
			strings.Join(columns, ","))

		stmts = append(stmts, NewStatement(sql))
	}

	return stmts, nil
}

func (b *StatementBuilder) indexColumns(def *model.Definition, index *model.Index) ([]string, error) {
	names := index.Keys
	if len(names) == 0 && index.Columns != "" {
		for _, c := range strings.Split(index.Columns, ",") {
			names = append(names, strings.TrimSpace(c))
		}
	}

	if len(names) == 0 {
		return nil, newValidationError("index %q on model %q declares no columns",
			index.Name, def.Name)
	}

	columns := make([]string, len(names))

	for i, name := range names {
		p := def.Property(name)
		if p == nil {
			return nil, newValidationError("index %q references unknown property %q",
				index.Name, name)
		}

		columns[i] = b.EscapeName(p.ColumnName())
	}

	return columns, nil
}

// BuildDropTable renders the drop wrapped in a compound block whose
// continue handler swallows SQLSTATE 42704, the undefined-object code, so
// dropping a table that does not exist succeeds quietly.
func (b *StatementBuilder) BuildDropTable(modelName string) (*Statement, error) {
	def, err := b.definition(modelName)
	if err != nil {
		return nil, err
	}

	sql := "BEGIN\n" +
		"DECLARE CONTINUE HANDLER FOR SQLSTATE '42704'\n" +
		"BEGIN END;\n" +
		"EXECUTE IMMEDIATE 'DROP TABLE " + b.SchemaTable(def) + "';\n" +
		"END"

	return NewStatement(sql), nil
}

// Migrator creates and drops the schema objects backing registered
// models.
type Migrator struct {
	builder  *StatementBuilder
	executor *Executor
	registry model.Registry
	logger   Logger
}

func NewMigrator(builder *StatementBuilder, executor *Executor, registry model.Registry, logger Logger) *Migrator {
	if logger == nil {
		logger = NopLogger()
	}

	return &Migrator{
		builder:  builder,
		executor: executor,
		registry: registry,
		logger:   logger,
	}
}

// CreateTable creates the model's table and its declared indexes.
func (m *Migrator) CreateTable(ctx context.Context, modelName string) error {
	stmt, err := m.builder.BuildCreateTable(modelName)
	if err != nil {
		return err
	}

	if _, err := m.executor.Exec(ctx, stmt, nil); err != nil {
		return err
	}

	indexes, err := m.builder.BuildIndexes(modelName)
	if err != nil {
		return err
	}

	for _, index := range indexes {
		if _, err := m.executor.Exec(ctx, index, nil); err != nil {
			return err
		}
	}

	m.logger.Infof("created table for model %s", modelName)

	return nil
}

// DropTable drops the model's table. A missing table is not an error.
func (m *Migrator) DropTable(ctx context.Context, modelName string) error {
	stmt, err := m.builder.BuildDropTable(modelName)
	if err != nil {
		return err
	}

	if _, err := m.executor.Exec(ctx, stmt, nil); err != nil {
		return err
	}

	m.logger.Infof("dropped table for model %s", modelName)

	return nil
}

// Automigrate drops and recreates the schema objects for the named
// models, or for every registered model when none are named. Existing
// data in those tables is lost.
func (m *Migrator) Automigrate(ctx context.Context, modelNames ...string) error {
	names, err := m.resolveNames(modelNames)
	if err != nil {
		return err
	}

	for _, name := range names {
		if err := m.DropTable(ctx, name); err != nil {
			return err
		}

		if err := m.CreateTable(ctx, name); err != nil {
			return err
		}
	}

	return nil
}

// IsActual reports whether every named model's table exists with exactly
// the columns the model declares. Column types are not compared.
func (m *Migrator) IsActual(ctx context.Context, modelNames ...string) (bool, error) {
	names, err := m.resolveNames(modelNames)
	if err != nil {
		return false, err
	}

	for _, name := range names {
		actual, err := m.tableIsActual(ctx, name)
		if err != nil {
			return false, err
		}

		if !actual {
			return false, nil
		}
	}

	return true, nil
}

func (m *Migrator) tableIsActual(ctx context.Context, modelName string) (bool, error) {
	def, err := m.registry.Definition(modelName)
	if err != nil {
		return false, err
	}

	stmt := NewStatement(
		`SELECT COLNAME FROM SYSCAT.COLUMNS WHERE TABSCHEMA = ? AND TABNAME = ? ORDER BY COLNO`,
		m.builder.schema, def.TableName())

	rows, err := m.executor.Query(ctx, stmt, nil)
	if err != nil {
		return false, err
	}

	if len(rows) != len(def.Properties) {
		return false, nil
	}

	declared := make(map[string]bool, len(def.Properties))
	for i := range def.Properties {
		declared[def.Properties[i].ColumnName()] = true
	}

	for _, row := range rows {
		name, _ := row["COLNAME"].(string)
		if !declared[name] {
			return false, nil
		}
	}

	return true, nil
}

func (m *Migrator) resolveNames(modelNames []string) ([]string, error) {
	if len(modelNames) > 0 {
		return modelNames, nil
	}

	names := m.registry.Names()
	if len(names) == 0 {
		return nil, newValidationError("no models registered")
	}

	return names, nil
}
