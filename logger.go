package db2

import (
	`fmt`
)

// Logger is the diagnostic sink the adapter components write to. Each
// component receives its sink at construction; there is no process-wide
// debug switch.
type Logger interface {
	Tracef(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}

var _ Logger = (*defaultLogger)(nil)

type defaultLogger struct {
}

func DefaultLogger() *defaultLogger {
	return &defaultLogger{}
}

func (d defaultLogger) Tracef(format string, v ...any) {
	fmt.Printf("[DB2-TRACE]\t"+format+"\n", v...)
}

func (d defaultLogger) Infof(format string, v ...any) {
	fmt.Printf("[DB2-INFO]\t"+format+"\n", v...)
}

func (d defaultLogger) Errorf(format string, v ...any) {
	fmt.Printf("[DB2-ERROR]\t"+format+"\n", v...)
}

var _ Logger = (*nopLogger)(nil)

// nopLogger discards everything. Components constructed without an explicit
// sink fall back to it.
type nopLogger struct {
}

func NopLogger() *nopLogger {
	return &nopLogger{}
}

func (nopLogger) Tracef(format string, v ...any) {}
func (nopLogger) Infof(format string, v ...any)  {}
func (nopLogger) Errorf(format string, v ...any) {}
