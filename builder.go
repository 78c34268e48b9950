package db2

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/kva3umoda/db2-adapter/model"
)

// StatementBuilder turns model-level operations into DB2 statements. All
// identifiers it emits are double-quoted and table references are schema
// qualified. The builder only reads from the registry, never mutates it.
type StatementBuilder struct {
	registry       model.Registry
	schema         string
	useLimitOffset bool
}

func NewStatementBuilder(registry model.Registry, schema string, useLimitOffset bool) *StatementBuilder {
	return &StatementBuilder{
		registry:       registry,
		schema:         schema,
		useLimitOffset: useLimitOffset,
	}
}

// EscapeName wraps an identifier in double quotes, doubling any quote
// characters inside it first so an embedded quote cannot break out of the
// identifier.
func (b *StatementBuilder) EscapeName(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// SchemaTable renders the schema-qualified, quoted table reference for a
// model.
func (b *StatementBuilder) SchemaTable(def *model.Definition) string {
	return b.EscapeName(b.schema) + "." + b.EscapeName(def.TableName())
}

func (b *StatementBuilder) definition(modelName string) (*model.Definition, error) {
	return b.registry.Definition(modelName)
}

// columnValue pairs an escaped column name with its value fragment: a
// single placeholder carrying one parameter, or spliced literal text.
type columnValue struct {
	column string
	value  *Statement
}

func (b *StatementBuilder) buildColumnValues(def *model.Definition, data map[string]any) ([]columnValue, error) {
	var fields []columnValue

	for i := range def.Properties {
		p := &def.Properties[i]

		value, ok := data[p.Name]
		if !ok {
			continue
		}

		converted, err := ToColumnValue(p, value)
		if err != nil {
			return nil, err
		}

		fields = append(fields, columnValue{
			column: b.EscapeName(p.ColumnName()),
			value:  valueFragment(converted),
		})
	}

	return fields, nil
}

func valueFragment(converted any) *Statement {
	if lit, ok := converted.(Literal); ok {
		return NewStatement(string(lit))
	}

	return NewStatement(Placeholder, converted)
}

// BuildInsert produces an insert wrapped in a FINAL TABLE read-back that
// projects the id column, so the generated key comes back as an ordinary
// result row. A model with no supplied fields inserts its defaults.
func (b *StatementBuilder) BuildInsert(modelName string, data map[string]any) (*Statement, error) {
	def, err := b.definition(modelName)
	if err != nil {
		return nil, err
	}

	idProp := def.Property(def.IDName())
	if idProp == nil {
		return nil, newValidationError("model %q has no id property", modelName)
	}

	fields, err := b.buildColumnValues(def, data)
	if err != nil {
		return nil, err
	}

	insert := NewStatement("INSERT INTO " + b.SchemaTable(def))

	if len(fields) == 0 {
		insert.MergeSQL("DEFAULT VALUES")
	} else {
		columns := make([]string, len(fields))
		values := make([]*Statement, len(fields))
		for i, f := range fields {
			columns[i] = f.column
			values[i] = f.value
		}

		insert.MergeSQL("(" + strings.Join(columns, ",") + ")")
		insert.Merge(NewStatement("VALUES(").
			MergeSep(JoinStatements(values, ","), "").
			MergeSep(NewStatement(")"), ""))
	}

	readback := fmt.Sprintf("SELECT %s FROM FINAL TABLE (%s)",
		b.EscapeName(idProp.ColumnName()), insert.SQL)

	return NewStatement(readback, insert.Params...), nil
}

// BuildUpdate produces an update wrapped in a FINAL TABLE read-back that
// counts the matched rows.
func (b *StatementBuilder) BuildUpdate(modelName string, where map[string]any, data map[string]any) (*Statement, error) {
	def, err := b.definition(modelName)
	if err != nil {
		return nil, err
	}

	fields, err := b.buildColumnValues(def, data)
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return nil, newValidationError("model %q: no fields to update", modelName)
	}

	sets := make([]*Statement, len(fields))
	for i, f := range fields {
		sets[i] = NewStatement(f.column+"=").MergeSep(f.value, "")
	}

	update := NewStatement("UPDATE " + b.SchemaTable(def)).
		MergeSQL("SET").
		Merge(JoinStatements(sets, ","))

	whereStmt, err := b.BuildWhere(def, where)
	if err != nil {
		return nil, err
	}

	update.Merge(whereStmt)

	readback := fmt.Sprintf(`SELECT COUNT(*) AS "affectedRows" FROM FINAL TABLE (%s)`, update.SQL)

	return NewStatement(readback, update.Params...), nil
}

// BuildDelete produces a delete wrapped in an OLD TABLE read-back that
// counts the removed rows.
func (b *StatementBuilder) BuildDelete(modelName string, where map[string]any) (*Statement, error) {
	def, err := b.definition(modelName)
	if err != nil {
		return nil, err
	}

	del := NewStatement("DELETE FROM " + b.SchemaTable(def))

	whereStmt, err := b.BuildWhere(def, where)
	if err != nil {
		return nil, err
	}

	del.Merge(whereStmt)

	readback := fmt.Sprintf(`SELECT COUNT(*) AS "affectedRows" FROM OLD TABLE (%s)`, del.SQL)

	return NewStatement(readback, del.Params...), nil
}

// BuildUpsert produces a MERGE keyed on the model's id column. The
// candidate row arrives through an inline VALUES table with every bound
// value cast to its column's native type, so untyped input cannot make
// the match or the insert fail on type grounds. Id columns are excluded
// from the update set. With no mapped fields there is nothing to match
// on and the statement degenerates to inserting a row of defaults.
func (b *StatementBuilder) BuildUpsert(modelName string, data map[string]any) (*Statement, error) {
	def, err := b.definition(modelName)
	if err != nil {
		return nil, err
	}

	idName := def.IDName()
	idProp := def.Property(idName)
	if idProp == nil {
		return nil, newValidationError("model %q has no id property", modelName)
	}

	id := b.EscapeName(idProp.ColumnName())

	columns := make([]string, 0, len(def.Properties))
	values := make([]*Statement, 0, len(def.Properties))
	sets := make([]string, 0, len(def.Properties))

	for i := range def.Properties {
		p := &def.Properties[i]

		value, ok := data[p.Name]
		if !ok {
			continue
		}

		converted, err := ToColumnValue(p, value)
		if err != nil {
			return nil, err
		}

		column := b.EscapeName(p.ColumnName())
		columns = append(columns, column)

		if lit, ok := converted.(Literal); ok {
			values = append(values, NewStatement(string(lit)))
		} else {
			castType, err := castDataType(p)
			if err != nil {
				return nil, err
			}

			values = append(values,
				NewStatement("CAST(? AS "+castType+")", converted))
		}

		if p.Name != idName {
			sets = append(sets, fmt.Sprintf("MT.%s = VT.%s", column, column))
		}
	}

	if len(columns) == 0 {
		return NewStatement("INSERT INTO " + b.SchemaTable(def) + " DEFAULT VALUES"), nil
	}

	columnList := strings.Join(columns, ",")

	stmt := NewStatement("MERGE INTO " + b.SchemaTable(def) + " AS MT(" + columnList + ")").
		MergeSQL("USING (").
		MergeSep(NewStatement("VALUES(").MergeSep(JoinStatements(values, ","), "").MergeSep(NewStatement(")"), ""), "").
		MergeSep(NewStatement(") AS VT("+columnList+")"), "").
		MergeSQL(fmt.Sprintf("ON (MT.%s = VT.%s)", id, id))

	vtRefs := make([]string, len(columns))
	for i, c := range columns {
		vtRefs[i] = "VT." + c
	}

	stmt.MergeSQL("WHEN NOT MATCHED THEN INSERT (" + columnList + ")").
		MergeSQL("VALUES(" + strings.Join(vtRefs, ",") + ")")

	if len(sets) > 0 {
		stmt.MergeSQL("WHEN MATCHED THEN UPDATE SET").
			MergeSQL(strings.Join(sets, ","))
	}

	return stmt, nil
}

// castDataType is the column's native type with any character-set and
// collation clauses removed, suitable inside CAST expressions.
func castDataType(p *model.Property) (string, error) {
	dt, err := ColumnDataType(p)
	if err != nil {
		return "", err
	}

	if i := strings.Index(dt, " CHARACTER SET"); i >= 0 {
		dt = dt[:i]
	}

	if i := strings.Index(dt, " COLLATE"); i >= 0 {
		dt = dt[:i]
	}

	return dt, nil
}

// BuildSelect produces the read statement for a filter. With native
// pagination enabled the DB2 clause is appended directly; otherwise the
// generic LIMIT/OFFSET tokens are appended for the executor to strip and
// apply client-side.
func (b *StatementBuilder) BuildSelect(modelName string, filter *Filter) (*Statement, error) {
	def, err := b.definition(modelName)
	if err != nil {
		return nil, err
	}

	stmt := NewStatement("SELECT " + b.buildColumnNames(def, filter) +
		" FROM " + b.SchemaTable(def))

	if filter == nil {
		return stmt, nil
	}

	whereStmt, err := b.BuildWhere(def, filter.Where)
	if err != nil {
		return nil, err
	}

	stmt.Merge(whereStmt)

	orderBy, err := b.buildOrderBy(def, filter.Order)
	if err != nil {
		return nil, err
	}

	if orderBy != "" {
		stmt.MergeSQL(orderBy)
	}

	limit := filter.effectiveLimit()
	offset := filter.effectiveOffset()

	if b.useLimitOffset {
		if clause := BuildLimit(limit, offset); clause != "" {
			stmt.MergeSQL(clause)
		}

		return stmt, nil
	}

	if limit > 0 {
		stmt.MergeSQL(fmt.Sprintf("LIMIT %d", limit))
	}

	if offset > 0 {
		stmt.MergeSQL(fmt.Sprintf("OFFSET %d", offset))
	}

	return stmt, nil
}

// BuildCount produces the row-count statement for a where tree.
func (b *StatementBuilder) BuildCount(modelName string, where map[string]any) (*Statement, error) {
	def, err := b.definition(modelName)
	if err != nil {
		return nil, err
	}

	stmt := NewStatement(`SELECT COUNT(*) AS "cnt" FROM ` + b.SchemaTable(def))

	whereStmt, err := b.BuildWhere(def, where)
	if err != nil {
		return nil, err
	}

	return stmt.Merge(whereStmt), nil
}

func (b *StatementBuilder) buildColumnNames(def *model.Definition, filter *Filter) string {
	var wanted map[string]bool
	if filter != nil && len(filter.Fields) > 0 {
		wanted = make(map[string]bool, len(filter.Fields))
		for _, f := range filter.Fields {
			wanted[f] = true
		}
	}

	var columns []string

	for i := range def.Properties {
		p := &def.Properties[i]
		if wanted != nil && !wanted[p.Name] {
			continue
		}

		columns = append(columns, b.EscapeName(p.ColumnName()))
	}

	if len(columns) == 0 {
		return "*"
	}

	return strings.Join(columns, ",")
}

func (b *StatementBuilder) buildOrderBy(def *model.Definition, order []string) (string, error) {
	if len(order) == 0 {
		return "", nil
	}

	clauses := make([]string, len(order))

	for i, entry := range order {
		name := entry
		direction := ""

		if j := strings.IndexByte(entry, ' '); j >= 0 {
			name = entry[:j]
			switch dir := strings.ToUpper(strings.TrimSpace(entry[j+1:])); dir {
			case "ASC", "DESC":
				direction = " " + dir
			default:
				return "", newValidationError("invalid order direction %q", entry)
			}
		}

		p := def.Property(name)
		if p == nil {
			return "", newValidationError("unknown order property %q on model %q", name, def.Name)
		}

		clauses[i] = b.EscapeName(p.ColumnName()) + direction
	}

	return "ORDER BY " + strings.Join(clauses, ","), nil
}

// BuildWhere renders a where tree as a WHERE clause. Returns an empty
// statement for an empty tree. Condition keys iterate in sorted order so a
// given tree always renders the same text and parameter sequence.
func (b *StatementBuilder) BuildWhere(def *model.Definition, where map[string]any) (*Statement, error) {
	clause, err := b.buildWhereClause(def, where)
	if err != nil {
		return nil, err
	}

	if clause.SQL == "" {
		return clause, nil
	}

	return NewStatement("WHERE").Merge(clause), nil
}

func (b *StatementBuilder) buildWhereClause(def *model.Definition, where map[string]any) (*Statement, error) {
	if len(where) == 0 {
		return NewStatement(""), nil
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var clauses []*Statement

	for _, key := range keys {
		value := where[key]

		switch strings.ToLower(key) {
		case "and", "or":
			branch, err := b.buildWhereBranch(def, key, value)
			if err != nil {
				return nil, err
			}

			clauses = append(clauses, branch)
		default:
			cond, err := b.buildCondition(def, key, value)
			if err != nil {
				return nil, err
			}

			clauses = append(clauses, cond)
		}
	}

	return JoinStatements(clauses, " AND "), nil
}

func (b *StatementBuilder) buildWhereBranch(def *model.Definition, op string, value any) (*Statement, error) {
	items, ok := toSlice(value)
	if !ok {
		return nil, newValidationError("%q expects a list of conditions", op)
	}

	branches := make([]*Statement, 0, len(items))

	for _, item := range items {
		sub, ok := item.(map[string]any)
		if !ok {
			return nil, newValidationError("%q expects condition objects", op)
		}

		clause, err := b.buildWhereClause(def, sub)
		if err != nil {
			return nil, err
		}

		if clause.SQL != "" {
			branches = append(branches, clause)
		}
	}

	if len(branches) == 0 {
		return NewStatement(""), nil
	}

	sep := " AND "
	if strings.EqualFold(op, "or") {
		sep = " OR "
	}

	return NewStatement("(").
		MergeSep(JoinStatements(branches, sep), "").
		MergeSep(NewStatement(")"), ""), nil
}

func (b *StatementBuilder) buildCondition(def *model.Definition, name string, value any) (*Statement, error) {
	p := def.Property(name)
	if p == nil {
		return nil, newValidationError("unknown property %q on model %q", name, def.Name)
	}

	column := b.EscapeName(p.ColumnName())

	if value == nil {
		return NewStatement(column + " IS NULL"), nil
	}

	if ops, ok := value.(map[string]any); ok {
		return b.buildOperatorCondition(p, column, ops)
	}

	converted, err := ToColumnValue(p, value)
	if err != nil {
		return nil, err
	}

	return NewStatement(column+"=?", converted), nil
}

func (b *StatementBuilder) buildOperatorCondition(p *model.Property, column string, ops map[string]any) (*Statement, error) {
	keys := make([]string, 0, len(ops))
	for k := range ops {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var clauses []*Statement

	for _, op := range keys {
		operand := ops[op]

		var clause *Statement

		switch strings.ToLower(op) {
		case "gt", "gte", "lt", "lte":
			converted, err := ToColumnValue(p, operand)
			if err != nil {
				return nil, err
			}

			clause = NewStatement(column+comparison(op)+"?", converted)
		case "neq":
			if operand == nil {
				clause = NewStatement(column + " IS NOT NULL")
				break
			}

			converted, err := ToColumnValue(p, operand)
			if err != nil {
				return nil, err
			}

			clause = NewStatement(column+"!=?", converted)
		case "between":
			bounds, ok := toSlice(operand)
			if !ok || len(bounds) != 2 {
				return nil, newValidationError("between on %q expects exactly two bounds", p.Name)
			}

			low, err := ToColumnValue(p, bounds[0])
			if err != nil {
				return nil, err
			}

			high, err := ToColumnValue(p, bounds[1])
			if err != nil {
				return nil, err
			}

			clause = NewStatement(column+" BETWEEN ? AND ?", low, high)
		case "inq", "nin":
			items, ok := toSlice(operand)
			if !ok {
				return nil, newValidationError("%s on %q expects a list", op, p.Name)
			}

			keyword := " IN "
			if strings.EqualFold(op, "nin") {
				keyword = " NOT IN "
			}

			if len(items) == 0 {
				// No candidates: IN matches nothing, NOT IN everything.
				if keyword == " IN " {
					clause = NewStatement("1=0")
				} else {
					clause = NewStatement("1=1")
				}

				break
			}

			params := make([]any, len(items))
			markers := make([]string, len(items))
			for i, item := range items {
				converted, err := ToColumnValue(p, item)
				if err != nil {
					return nil, err
				}

				params[i] = converted
				markers[i] = Placeholder
			}

			clause = NewStatement(column+keyword+"("+strings.Join(markers, ",")+")", params...)
		case "like", "nlike":
			keyword := " LIKE ?"
			if strings.EqualFold(op, "nlike") {
				keyword = " NOT LIKE ?"
			}

			clause = NewStatement(column+keyword, operand)
		default:
			return nil, newValidationError("unknown operator %q on property %q", op, p.Name)
		}

		clauses = append(clauses, clause)
	}

	return JoinStatements(clauses, " AND "), nil
}

func comparison(op string) string {
	switch strings.ToLower(op) {
	case "gt":
		return ">"
	case "gte":
		return ">="
	case "lt":
		return "<"
	case "lte":
		return "<="
	}

	panic("Not possible")
}

func toSlice(value any) ([]any, bool) {
	if items, ok := value.([]any); ok {
		return items, true
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}

	return items, true
}
