package db2

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"reflect"
	"time"
)

// Options carries per-call execution options. A non-nil Transaction routes
// the statement through that transaction's dedicated connection instead of
// the shared pool.
type Options struct {
	Transaction *Transaction
}

func (o *Options) transaction() *Transaction {
	if o == nil {
		return nil
	}

	return o.Transaction
}

// Executor dispatches built statements to the database and normalizes
// driver results into row maps. The pool serializes statements per
// connection; a statement's pending result sets are always drained before
// its connection is released, so no later caller can interleave with an
// unfinished response.
type Executor struct {
	db             *sql.DB
	useLimitOffset bool
	logger         Logger
}

func NewExecutor(db *sql.DB, useLimitOffset bool, logger Logger) *Executor {
	if logger == nil {
		logger = NopLogger()
	}

	return &Executor{
		db:             db,
		useLimitOffset: useLimitOffset,
		logger:         logger,
	}
}

// Query runs a row-returning statement and collects the first result set
// as column-name keyed maps. When native pagination is disabled, generic
// LIMIT/OFFSET tokens are stripped from the text first and the collected
// rows are windowed client-side instead.
func (e *Executor) Query(ctx context.Context, stmt *Statement, opts *Options) ([]map[string]any, error) {
	if err := stmt.Check(); err != nil {
		return nil, err
	}

	query := stmt.SQL
	limit, offset := 0, 0

	if !e.useLimitOffset {
		query, limit, offset = StripPagination(query)
	}

	defer e.trace(time.Now(), query, stmt.Params...)

	var collected []map[string]any
	var err error

	if tx := opts.transaction(); tx != nil {
		collected, err = tx.query(ctx, query, stmt.Params)
	} else {
		var rows *sql.Rows

		rows, err = e.db.QueryContext(ctx, query, stmt.Params...)
		if err == nil {
			collected, err = collectRows(rows)
		}
	}

	if err != nil {
		return nil, err
	}

	return applyWindow(collected, limit, offset), nil
}

// Exec runs a statement that returns no rows.
func (e *Executor) Exec(ctx context.Context, stmt *Statement, opts *Options) (sql.Result, error) {
	if err := stmt.Check(); err != nil {
		return nil, err
	}

	defer e.trace(time.Now(), stmt.SQL, stmt.Params...)

	if tx := opts.transaction(); tx != nil {
		return tx.exec(ctx, stmt.SQL, stmt.Params)
	}

	return e.db.ExecContext(ctx, stmt.SQL, stmt.Params...)
}

// collectRows scans the first result set into maps, then drains and
// discards any further pending result sets so the connection comes back
// with nothing in flight.
func collectRows(rows *sql.Rows) ([]map[string]any, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	collected := []map[string]any{}

	for rows.Next() {
		values := make([]any, len(columns))
		scans := make([]any, len(columns))
		for i := range values {
			scans[i] = &values[i]
		}

		if err := rows.Scan(scans...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, column := range columns {
			row[column] = values[i]
		}

		collected = append(collected, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for rows.NextResultSet() {
		for rows.Next() {
		}

		if err := rows.Err(); err != nil {
			return nil, err
		}
	}

	return collected, nil
}

func (e *Executor) trace(started time.Time, query string, args ...any) {
	var margs = argsString(args...)
	e.logger.Tracef("%s [%s] (%v)", query, margs, time.Since(started))
}

func argsString(args ...any) string {
	var margs string

	for i, a := range args {
		v := argValue(a)
		switch v.(type) {
		case string:
			v = fmt.Sprintf("%q", v)
		default:
			v = fmt.Sprintf("%v", v)
		}

		if margs == "" {
			margs = fmt.Sprintf("%d:%v", i+1, v)
		} else {
			margs += fmt.Sprintf(", %d:%v", i+1, v)
		}
	}

	return margs
}

func argValue(a any) any {
	v, ok := a.(driver.Valuer)
	if !ok {
		return a
	}

	vV := reflect.ValueOf(v)
	if vV.Kind() == reflect.Ptr && vV.IsNil() {
		return nil
	}

	ret, err := v.Value()
	if err != nil {
		return a
	}

	return ret
}
