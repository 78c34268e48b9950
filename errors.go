package db2

import (
	`errors`
	`fmt`
	`strings`
)

// SettingsError reports connection settings that are missing or unusable.
// It is returned before any network call is attempted.
type SettingsError struct {
	// Missing lists the setting names that were required but absent.
	Missing []string
}

func (e *SettingsError) Error() string {
	return fmt.Sprintf("db2: missing connection settings: %s", strings.Join(e.Missing, ", "))
}

// ValidationError is a client mistake: bad input that was rejected before
// the engine was contacted. StatusCode carries the HTTP-equivalent
// classification callers surface to their own clients.
type ValidationError struct {
	Message    string
	StatusCode int
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(format string, v ...any) *ValidationError {
	return &ValidationError{
		Message:    fmt.Sprintf(format, v...),
		StatusCode: 400,
	}
}

// IsClientError reports whether err was classified as the caller's fault
// rather than an engine failure.
func IsClientError(err error) bool {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return true
	}

	var serr *SettingsError
	return errors.As(err, &serr)
}

// TxStateError is returned when commit or rollback is called on a
// transaction that already reached a terminal state.
type TxStateError struct {
	Op    string
	State TxState
}

func (e *TxStateError) Error() string {
	return fmt.Sprintf("db2: %s on %s transaction", e.Op, e.State)
}

// StatementError reports a statement whose placeholder count does not match
// its parameter count. Such a statement is refused before dispatch.
type StatementError struct {
	SQL          string
	Placeholders int
	Params       int
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("db2: statement has %d placeholders but %d parameters: %s",
		e.Placeholders, e.Params, e.SQL)
}
