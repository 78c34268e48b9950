package db2

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	limitPattern  = regexp.MustCompile(`(?i)\s*\bLIMIT\s+(\d+)`)
	offsetPattern = regexp.MustCompile(`(?i)\s*\bOFFSET\s+(\d+)`)
)

// Filter narrows a read or mutation: an optional where tree, a projection,
// an ordering and a pagination window. Skip is an alias for Offset honored
// only when Offset is unset.
type Filter struct {
	Where  map[string]any
	Fields []string
	Order  []string
	Limit  int
	Offset int
	Skip   int
}

func (f *Filter) effectiveLimit() int {
	if f == nil {
		return 0
	}

	return f.Limit
}

func (f *Filter) effectiveOffset() int {
	if f == nil {
		return 0
	}

	if f.Offset > 0 {
		return f.Offset
	}

	return f.Skip
}

// StripPagination removes generic LIMIT and OFFSET tokens from generated
// SQL and returns their numeric values alongside the stripped text. DB2
// does not accept the generic tokens, so by default the executor strips
// them here and windows the row set after the query instead. Tokens that
// are absent or non-numeric count as zero.
func StripPagination(sql string) (stripped string, limit, offset int) {
	stripped = sql

	if m := limitPattern.FindStringSubmatch(stripped); m != nil {
		limit, _ = strconv.Atoi(m[1])
		stripped = limitPattern.ReplaceAllString(stripped, "")
	}

	if m := offsetPattern.FindStringSubmatch(stripped); m != nil {
		offset, _ = strconv.Atoi(m[1])
		stripped = offsetPattern.ReplaceAllString(stripped, "")
	}

	return stripped, limit, offset
}

// BuildLimit composes the native pagination clause used when the adapter
// is configured with UseLimitOffset. Both values zero yields an empty
// clause.
func BuildLimit(limit, offset int) string {
	if limit > 0 {
		if offset > 0 {
			return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
		}

		return fmt.Sprintf("FETCH FIRST %d ROWS ONLY", limit)
	}

	if offset > 0 {
		return fmt.Sprintf("OFFSET %d", offset)
	}

	return ""
}

// applyWindow slices rows to [offset, offset+limit). A zero limit keeps
// everything from offset onward; an offset past the end yields an empty
// set.
func applyWindow(rows []map[string]any, limit, offset int) []map[string]any {
	if limit == 0 && offset == 0 {
		return rows
	}

	if offset >= len(rows) {
		return rows[:0]
	}

	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}

	return rows
}
