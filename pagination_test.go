package db2

import (
	//revive:disable-next-line:dot-imports
	. "gopkg.in/check.v1"
)

type PaginationSuite struct{}

var _ = Suite(&PaginationSuite{})

func (*PaginationSuite) TestStripPaginationRemovesBothTokens(c *C) {
	stripped, limit, offset := StripPagination(
		`SELECT "id" FROM "S"."T" ORDER BY "id" ASC LIMIT 10 OFFSET 5`)

	c.Assert(stripped, Equals, `SELECT "id" FROM "S"."T" ORDER BY "id" ASC`)
	c.Assert(limit, Equals, 10)
	c.Assert(offset, Equals, 5)
}

func (*PaginationSuite) TestStripPaginationIsCaseInsensitive(c *C) {
	stripped, limit, offset := StripPagination(`SELECT * FROM "T" limit 3 offset 7`)

	c.Assert(stripped, Equals, `SELECT * FROM "T"`)
	c.Assert(limit, Equals, 3)
	c.Assert(offset, Equals, 7)
}

func (*PaginationSuite) TestStripPaginationLeavesPlainSQLAlone(c *C) {
	sql := `SELECT * FROM "T" WHERE "n" = ?`

	stripped, limit, offset := StripPagination(sql)
	c.Assert(stripped, Equals, sql)
	c.Assert(limit, Equals, 0)
	c.Assert(offset, Equals, 0)
}

func (*PaginationSuite) TestStripPaginationIgnoresEmbeddedWords(c *C) {
	sql := `SELECT "rateLimit" FROM "T"`

	stripped, limit, _ := StripPagination(sql)
	c.Assert(stripped, Equals, sql)
	c.Assert(limit, Equals, 0)
}

func (*PaginationSuite) TestBuildLimitFetchFirstWithoutOffset(c *C) {
	c.Assert(BuildLimit(10, 0), Equals, "FETCH FIRST 10 ROWS ONLY")
}

func (*PaginationSuite) TestBuildLimitCombinedClause(c *C) {
	c.Assert(BuildLimit(10, 5), Equals, "LIMIT 10 OFFSET 5")
}

func (*PaginationSuite) TestBuildLimitOffsetOnly(c *C) {
	c.Assert(BuildLimit(0, 5), Equals, "OFFSET 5")
}

func (*PaginationSuite) TestBuildLimitEmptyWhenUnset(c *C) {
	c.Assert(BuildLimit(0, 0), Equals, "")
}

func (*PaginationSuite) TestApplyWindowSlices(c *C) {
	rows := []map[string]any{
		{"id": int64(1)}, {"id": int64(2)}, {"id": int64(3)}, {"id": int64(4)},
	}

	windowed := applyWindow(rows, 2, 1)
	c.Assert(windowed, HasLen, 2)
	c.Assert(windowed[0]["id"], Equals, int64(2))
	c.Assert(windowed[1]["id"], Equals, int64(3))
}

func (*PaginationSuite) TestApplyWindowZeroLimitKeepsTail(c *C) {
	rows := []map[string]any{{"id": int64(1)}, {"id": int64(2)}, {"id": int64(3)}}

	windowed := applyWindow(rows, 0, 1)
	c.Assert(windowed, HasLen, 2)
	c.Assert(windowed[0]["id"], Equals, int64(2))
}

func (*PaginationSuite) TestApplyWindowOffsetPastEndIsEmpty(c *C) {
	rows := []map[string]any{{"id": int64(1)}}

	c.Assert(applyWindow(rows, 5, 9), HasLen, 0)
}

func (*PaginationSuite) TestApplyWindowNoWindowReturnsAll(c *C) {
	rows := []map[string]any{{"id": int64(1)}, {"id": int64(2)}}

	c.Assert(applyWindow(rows, 0, 0), HasLen, 2)
}

func (*PaginationSuite) TestFilterOffsetWinsOverSkip(c *C) {
	f := &Filter{Offset: 4, Skip: 9}
	c.Assert(f.effectiveOffset(), Equals, 4)

	f = &Filter{Skip: 9}
	c.Assert(f.effectiveOffset(), Equals, 9)

	var nilFilter *Filter
	c.Assert(nilFilter.effectiveOffset(), Equals, 0)
	c.Assert(nilFilter.effectiveLimit(), Equals, 0)
}
