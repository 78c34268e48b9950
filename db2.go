// Package db2 adapts model-level CRUD and schema operations to IBM DB2
// SQL. It builds MERGE-based upserts, reads affected rows back through
// FINAL TABLE and OLD TABLE result sets, rewrites generic pagination into
// forms DB2 accepts and coerces values between abstract property types
// and DB2 column types. Transactions run on dedicated connections with
// validated isolation levels.
package db2

import (
	"context"
	"database/sql"

	"github.com/kva3umoda/db2-adapter/model"
)

// DefaultDriverName is the database/sql driver used when Open is not told
// otherwise.
const DefaultDriverName = "go_ibm_db"

const pingSQL = "SELECT COUNT(*) FROM SYSIBM.SYSDUMMY1"

// Adapter composes the statement builder, the executor and the
// transaction manager over one database handle. Each component is also
// reachable on its own.
type Adapter struct {
	settings *Settings
	db       *sql.DB
	registry model.Registry
	logger   Logger

	builder      *StatementBuilder
	executor     *Executor
	transactions *TransactionManager
	migrator     *Migrator
	discovery    *Discovery
}

// New wires an adapter over an existing database handle. A nil logger
// disables diagnostics.
func New(db *sql.DB, settings *Settings, registry model.Registry, logger Logger) *Adapter {
	if logger == nil {
		logger = NopLogger()
	}

	schema := settings.CurrentSchema()
	builder := NewStatementBuilder(registry, schema, settings.UseLimitOffset)
	executor := NewExecutor(db, settings.UseLimitOffset, logger)

	return &Adapter{
		settings:     settings,
		db:           db,
		registry:     registry,
		logger:       logger,
		builder:      builder,
		executor:     executor,
		transactions: NewTransactionManager(db, logger),
		migrator:     NewMigrator(builder, executor, registry, logger),
		discovery:    NewDiscovery(executor, schema, logger),
	}
}

// Open validates the settings, opens the named driver and wires an
// adapter over it. Missing settings refuse the connection before any
// network activity; an empty driver name selects the DB2 driver.
func Open(driverName string, settings *Settings, registry model.Registry, logger Logger) (*Adapter, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	if driverName == "" {
		driverName = DefaultDriverName
	}

	db, err := sql.Open(driverName, settings.ConnectionString())
	if err != nil {
		return nil, err
	}

	return New(db, settings, registry, logger), nil
}

// Close releases the underlying pool.
func (a *Adapter) Close() error {
	return a.db.Close()
}

// Ping verifies connectivity with a query against SYSIBM.SYSDUMMY1.
func (a *Adapter) Ping(ctx context.Context) error {
	_, err := a.executor.Query(ctx, NewStatement(pingSQL), nil)

	return err
}

// Registry exposes the model registry the adapter reads from.
func (a *Adapter) Registry() model.Registry { return a.registry }

// Builder exposes the statement builder.
func (a *Adapter) Builder() *StatementBuilder { return a.builder }

// Executor exposes the execution adapter.
func (a *Adapter) Executor() *Executor { return a.executor }

// Migrator exposes the schema migrator.
func (a *Adapter) Migrator() *Migrator { return a.migrator }

// Discovery exposes catalog introspection.
func (a *Adapter) Discovery() *Discovery { return a.discovery }

// Create inserts one instance and returns its id value, read back from
// the insert's FINAL TABLE result set.
func (a *Adapter) Create(ctx context.Context, modelName string, data map[string]any, opts *Options) (any, error) {
	def, err := a.registry.Definition(modelName)
	if err != nil {
		return nil, err
	}

	stmt, err := a.builder.BuildInsert(modelName, data)
	if err != nil {
		return nil, err
	}

	rows, err := a.executor.Query(ctx, stmt, opts)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, newValidationError("model %q: insert returned no id row", modelName)
	}

	idProp := def.Property(def.IDName())
	raw := rows[0][idProp.ColumnName()]

	return FromColumnValue(idProp, raw)
}

// All runs a filtered read and returns instances keyed by property name,
// with every column decoded back to its abstract value.
func (a *Adapter) All(ctx context.Context, modelName string, filter *Filter, opts *Options) ([]map[string]any, error) {
	def, err := a.registry.Definition(modelName)
	if err != nil {
		return nil, err
	}

	stmt, err := a.builder.BuildSelect(modelName, filter)
	if err != nil {
		return nil, err
	}

	rows, err := a.executor.Query(ctx, stmt, opts)
	if err != nil {
		return nil, err
	}

	byColumn := make(map[string]*model.Property, len(def.Properties))
	for i := range def.Properties {
		p := &def.Properties[i]
		byColumn[p.ColumnName()] = p
	}

	instances := make([]map[string]any, 0, len(rows))

	for _, row := range rows {
		instance := make(map[string]any, len(row))

		for column, raw := range row {
			p, ok := byColumn[column]
			if !ok {
				instance[column] = raw
				continue
			}

			value, err := FromColumnValue(p, raw)
			if err != nil {
				return nil, err
			}

			instance[p.Name] = value
		}

		instances = append(instances, instance)
	}

	return instances, nil
}

// Update applies data to every instance matching where and reports how
// many rows the FINAL TABLE read-back counted.
func (a *Adapter) Update(ctx context.Context, modelName string, where, data map[string]any, opts *Options) (int64, error) {
	stmt, err := a.builder.BuildUpdate(modelName, where, data)
	if err != nil {
		return 0, err
	}

	return a.affectedRows(ctx, stmt, opts)
}

// Destroy deletes every instance matching where and reports how many rows
// the OLD TABLE read-back counted.
func (a *Adapter) Destroy(ctx context.Context, modelName string, where map[string]any, opts *Options) (int64, error) {
	stmt, err := a.builder.BuildDelete(modelName, where)
	if err != nil {
		return 0, err
	}

	return a.affectedRows(ctx, stmt, opts)
}

func (a *Adapter) affectedRows(ctx context.Context, stmt *Statement, opts *Options) (int64, error) {
	rows, err := a.executor.Query(ctx, stmt, opts)
	if err != nil {
		return 0, err
	}

	if len(rows) == 0 {
		return 0, nil
	}

	return int64(rowInt(rows[0], "affectedRows")), nil
}

// UpsertResult reports a MERGE outcome. The engine counts 1 affected row
// for a fresh insert and 2 for an update of an existing row, which is how
// IsNewInstance is decided.
type UpsertResult struct {
	RowsAffected  int64
	IsNewInstance bool
}

// UpdateOrCreate merges one instance by id: inserted when no row matches,
// updated in place otherwise.
func (a *Adapter) UpdateOrCreate(ctx context.Context, modelName string, data map[string]any, opts *Options) (*UpsertResult, error) {
	stmt, err := a.builder.BuildUpsert(modelName, data)
	if err != nil {
		return nil, err
	}

	result, err := a.executor.Exec(ctx, stmt, opts)
	if err != nil {
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	return &UpsertResult{
		RowsAffected:  affected,
		IsNewInstance: affected == 1,
	}, nil
}

// Count returns the number of instances matching where.
func (a *Adapter) Count(ctx context.Context, modelName string, where map[string]any, opts *Options) (int64, error) {
	stmt, err := a.builder.BuildCount(modelName, where)
	if err != nil {
		return 0, err
	}

	rows, err := a.executor.Query(ctx, stmt, opts)
	if err != nil {
		return 0, err
	}

	if len(rows) == 0 {
		return 0, nil
	}

	return int64(rowInt(rows[0], "cnt")), nil
}

// BeginTransaction opens a transaction on its own dedicated connection.
// Pass the handle through Options to run statements inside it.
func (a *Adapter) BeginTransaction(ctx context.Context, isolationLevel string) (*Transaction, error) {
	return a.transactions.Begin(ctx, isolationLevel)
}

// Automigrate drops and recreates tables for the named models, or all
// registered models when none are named.
func (a *Adapter) Automigrate(ctx context.Context, modelNames ...string) error {
	return a.migrator.Automigrate(ctx, modelNames...)
}

// IsActual reports whether the live tables match the registered models.
func (a *Adapter) IsActual(ctx context.Context, modelNames ...string) (bool, error) {
	return a.migrator.IsActual(ctx, modelNames...)
}
