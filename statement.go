package db2

import (
	"strings"
)

// Placeholder is the positional parameter marker DB2 statements use. The
// Nth marker in a statement's text binds the Nth entry of Params.
const Placeholder = "?"

// Literal is raw SQL spliced into a statement in place of a bound
// parameter. The builder uses it for values that must appear as keywords,
// e.g. DEFAULT for generated id columns.
type Literal string

// Statement is a parameterized SQL fragment: text plus the ordered values
// bound to its placeholders. Fragments compose by merging, which
// concatenates both the text and the parameter sequences in order.
type Statement struct {
	SQL    string
	Params []any
}

func NewStatement(sql string, params ...any) *Statement {
	return &Statement{
		SQL:    sql,
		Params: params,
	}
}

// Merge appends other to s, separated by a single space, and returns s.
func (s *Statement) Merge(other *Statement) *Statement {
	return s.MergeSep(other, " ")
}

// MergeSep appends other to s with an explicit separator: the texts are
// concatenated and other's parameters follow s's, preserving order on both
// sides.
func (s *Statement) MergeSep(other *Statement, sep string) *Statement {
	if other == nil || other.SQL == "" {
		return s
	}

	if s.SQL == "" {
		s.SQL = other.SQL
	} else {
		s.SQL = s.SQL + sep + other.SQL
	}

	s.Params = append(s.Params, other.Params...)

	return s
}

// MergeSQL appends parameterless text.
func (s *Statement) MergeSQL(sql string) *Statement {
	return s.Merge(NewStatement(sql))
}

// Check verifies the placeholder/parameter pairing invariant. A statement
// failing the check is refused by the executor before dispatch.
func (s *Statement) Check() error {
	n := strings.Count(s.SQL, Placeholder)
	if n != len(s.Params) {
		return &StatementError{
			SQL:          s.SQL,
			Placeholders: n,
			Params:       len(s.Params),
		}
	}

	return nil
}

// JoinStatements merges the fragments into one statement with sep between
// the non-empty texts. Parameter order follows fragment order.
func JoinStatements(stmts []*Statement, sep string) *Statement {
	joined := NewStatement("")
	for _, stmt := range stmts {
		joined.MergeSep(stmt, sep)
	}

	return joined
}
