package db2

import (
	"context"
	"database/sql"
	"strings"
	"sync"
)

// TxState is a transaction handle's lifecycle state. A handle reaches a
// terminal state exactly once; operations after that fail with a
// TxStateError.
type TxState int

const (
	TxOpened TxState = iota + 1
	TxActive
	TxCommitted
	TxRolledBack
	TxFailed
)

func (s TxState) String() string {
	switch s {
	case TxOpened:
		return "opened"
	case TxActive:
		return "active"
	case TxCommitted:
		return "committed"
	case TxRolledBack:
		return "rolled-back"
	case TxFailed:
		return "failed"
	}

	return "unknown"
}

// Isolation levels accepted by Begin. DB2 knows these as cursor stability
// and repeatable read.
const (
	ReadCommitted = "READ COMMITTED"
	Serializable  = "SERIALIZABLE"
)

// isolationClause maps an accepted isolation level to the DB2 isolation
// name set on the session. An empty level means none was requested. Any
// other value is a client error, rejected before a connection is opened.
func isolationClause(level string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "":
		return "", nil
	case ReadCommitted:
		return "CS", nil
	case Serializable:
		return "RR", nil
	default:
		return "", newValidationError("invalid isolation level: %s", level)
	}
}

// Transaction owns one dedicated connection from begin until the commit or
// rollback that closes it. The handle's mutex serializes every operation,
// including result draining, so two statements on the same transaction can
// never interleave on the wire.
type Transaction struct {
	Isolation string

	mu     sync.Mutex
	state  TxState
	conn   *sql.Conn
	tx     *sql.Tx
	logger Logger
}

// State reports the handle's current lifecycle state.
func (t *Transaction) State() TxState {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.state
}

// Commit finalizes the transaction and closes its connection. When the
// native commit itself fails the handle becomes failed and the connection
// is left unclosed so the failure surfaces unmasked.
func (t *Transaction) Commit(ctx context.Context) error {
	return t.finalize(ctx, "commit")
}

// Rollback abandons the transaction and closes its connection, under the
// same failure rules as Commit.
func (t *Transaction) Rollback(ctx context.Context) error {
	return t.finalize(ctx, "rollback")
}

func (t *Transaction) finalize(_ context.Context, op string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != TxActive {
		return &TxStateError{Op: op, State: t.state}
	}

	var err error
	var next TxState

	if op == "commit" {
		err = t.tx.Commit()
		next = TxCommitted
	} else {
		err = t.tx.Rollback()
		next = TxRolledBack
	}

	if err != nil {
		t.state = TxFailed
		t.logger.Errorf("transaction %s failed: %v", op, err)

		return err
	}

	t.state = next
	t.logger.Tracef("transaction %s", next)

	return t.conn.Close()
}

func (t *Transaction) query(ctx context.Context, query string, params []any) ([]map[string]any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != TxActive {
		return nil, &TxStateError{Op: "query", State: t.state}
	}

	rows, err := t.tx.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}

	return collectRows(rows)
}

func (t *Transaction) exec(ctx context.Context, query string, params []any) (sql.Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != TxActive {
		return nil, &TxStateError{Op: "exec", State: t.state}
	}

	return t.tx.ExecContext(ctx, query, params...)
}

// TransactionManager begins transactions on dedicated connections drawn
// from the shared pool.
type TransactionManager struct {
	db     *sql.DB
	logger Logger
}

func NewTransactionManager(db *sql.DB, logger Logger) *TransactionManager {
	if logger == nil {
		logger = NopLogger()
	}

	return &TransactionManager{
		db:     db,
		logger: logger,
	}
}

// Begin validates the isolation level, opens a dedicated connection,
// starts a native transaction and applies the isolation level to the
// session. The returned handle is active and must be driven to Commit or
// Rollback to release its connection; abandoning it leaks the connection.
func (m *TransactionManager) Begin(ctx context.Context, isolationLevel string) (*Transaction, error) {
	clause, err := isolationClause(isolationLevel)
	if err != nil {
		return nil, err
	}

	conn, err := m.db.Conn(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		conn.Close()

		return nil, err
	}

	if clause != "" {
		if _, err := tx.ExecContext(ctx, "SET CURRENT ISOLATION TO "+clause); err != nil {
			tx.Rollback()
			conn.Close()

			return nil, err
		}
	}

	m.logger.Tracef("transaction active, isolation %q", isolationLevel)

	return &Transaction{
		Isolation: isolationLevel,
		state:     TxActive,
		conn:      conn,
		tx:        tx,
		logger:    m.logger,
	}, nil
}
