package db2

import (
	"context"

	"github.com/DATA-DOG/go-sqlmock"
	//revive:disable-next-line:dot-imports
	. "gopkg.in/check.v1"

	"github.com/kva3umoda/db2-adapter/model"
)

const (
	schemataQuery = `SELECT TRIM(SCHEMANAME) AS "schema" FROM SYSCAT.SCHEMATA ORDER BY SCHEMANAME`

	tablesQuery = `SELECT TRIM(TABSCHEMA) AS "owner", TABNAME AS "name" FROM SYSCAT.TABLES ` +
		`WHERE TYPE = 'T' AND TABSCHEMA = ? ORDER BY TABNAME`

	columnsQuery = `SELECT COLNAME AS "name", TYPENAME AS "dataType", LENGTH AS "length", ` +
		`SCALE AS "scale", NULLS AS "nullable", IDENTITY AS "identity" ` +
		`FROM SYSCAT.COLUMNS WHERE TABSCHEMA = ? AND TABNAME = ? ORDER BY COLNO`

	primaryKeysQuery = `SELECT KC.COLNAME AS "column" FROM SYSCAT.TABCONST TC ` +
		`JOIN SYSCAT.KEYCOLUSE KC ON TC.CONSTNAME = KC.CONSTNAME ` +
		`AND TC.TABSCHEMA = KC.TABSCHEMA AND TC.TABNAME = KC.TABNAME ` +
		`WHERE TC.TYPE = 'P' AND TC.TABSCHEMA = ? AND TC.TABNAME = ? ` +
		`ORDER BY KC.COLSEQ`
)

type DiscoverySuite struct {
	mock      sqlmock.Sqlmock
	discovery *Discovery
	close     func()
}

var _ = Suite(&DiscoverySuite{})

func (s *DiscoverySuite) SetUpTest(c *C) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	c.Assert(err, IsNil)

	s.mock = mock
	s.discovery = NewDiscovery(NewExecutor(db, false, nil), "DB2INST1", nil)
	s.close = func() { db.Close() }
}

func (s *DiscoverySuite) TearDownTest(c *C) {
	c.Assert(s.mock.ExpectationsWereMet(), IsNil)
	s.close()
}

func (s *DiscoverySuite) TestSchemas(c *C) {
	s.mock.ExpectQuery(schemataQuery).
		WillReturnRows(sqlmock.NewRows([]string{"schema"}).
			AddRow("DB2INST1").AddRow("SYSCAT"))

	schemas, err := s.discovery.Schemas(context.Background())
	c.Assert(err, IsNil)
	c.Assert(schemas, DeepEquals, []string{"DB2INST1", "SYSCAT"})
}

func (s *DiscoverySuite) TestTablesDefaultsToSessionSchema(c *C) {
	s.mock.ExpectQuery(tablesQuery).
		WithArgs("DB2INST1").
		WillReturnRows(sqlmock.NewRows([]string{"owner", "name"}).
			AddRow("DB2INST1", "CUSTOMER").AddRow("DB2INST1", "ORDERS"))

	tables, err := s.discovery.Tables(context.Background(), "")
	c.Assert(err, IsNil)
	c.Assert(tables, DeepEquals, []TableInfo{
		{Schema: "DB2INST1", Name: "CUSTOMER"},
		{Schema: "DB2INST1", Name: "ORDERS"},
	})
}

func (s *DiscoverySuite) TestTablesUpperCasesExplicitSchema(c *C) {
	s.mock.ExpectQuery(tablesQuery).
		WithArgs("APP").
		WillReturnRows(sqlmock.NewRows([]string{"owner", "name"}))

	tables, err := s.discovery.Tables(context.Background(), "app")
	c.Assert(err, IsNil)
	c.Assert(tables, HasLen, 0)
}

func (s *DiscoverySuite) TestColumns(c *C) {
	s.mock.ExpectQuery(columnsQuery).
		WithArgs("DB2INST1", "CUSTOMER").
		WillReturnRows(sqlmock.NewRows(
			[]string{"name", "dataType", "length", "scale", "nullable", "identity"}).
			AddRow("id", "INTEGER", int64(4), int64(0), "N", "Y").
			AddRow("name", "VARCHAR", int64(100), int64(0), "N", "N").
			AddRow("total", "DECIMAL", int64(10), int64(2), "Y", "N"))

	columns, err := s.discovery.Columns(context.Background(), "", "CUSTOMER")
	c.Assert(err, IsNil)
	c.Assert(columns, DeepEquals, []ColumnInfo{
		{Name: "id", DataType: "INTEGER", Length: 4, Scale: 0, Nullable: false, Identity: true},
		{Name: "name", DataType: "VARCHAR", Length: 100, Scale: 0, Nullable: false, Identity: false},
		{Name: "total", DataType: "DECIMAL", Length: 10, Scale: 2, Nullable: true, Identity: false},
	})
}

func (s *DiscoverySuite) TestPrimaryKeys(c *C) {
	s.mock.ExpectQuery(primaryKeysQuery).
		WithArgs("DB2INST1", "ORDERS").
		WillReturnRows(sqlmock.NewRows([]string{"column"}).AddRow("id"))

	keys, err := s.discovery.PrimaryKeys(context.Background(), "", "ORDERS")
	c.Assert(err, IsNil)
	c.Assert(keys, DeepEquals, []string{"id"})
}

func (s *DiscoverySuite) TestModelDefinitionReconstructsModel(c *C) {
	s.mock.ExpectQuery(columnsQuery).
		WithArgs("DB2INST1", "ORDERS").
		WillReturnRows(sqlmock.NewRows(
			[]string{"name", "dataType", "length", "scale", "nullable", "identity"}).
			AddRow("id", "INTEGER", int64(4), int64(0), "N", "Y").
			AddRow("customerId", "INTEGER", int64(4), int64(0), "N", "N").
			AddRow("total", "DECIMAL", int64(10), int64(2), "Y", "N").
			AddRow("note", "VARCHAR", int64(512), int64(0), "Y", "N").
			AddRow("placed", "TIMESTAMP", int64(10), int64(6), "Y", "N"))
	s.mock.ExpectQuery(primaryKeysQuery).
		WithArgs("DB2INST1", "ORDERS").
		WillReturnRows(sqlmock.NewRows([]string{"column"}).AddRow("id"))

	def, err := s.discovery.ModelDefinition(context.Background(), "", "ORDERS")
	c.Assert(err, IsNil)
	c.Assert(def.Name, Equals, "ORDERS")
	c.Assert(def.TableName(), Equals, "ORDERS")
	c.Assert(def.Properties, DeepEquals, []model.Property{
		{Name: "id", Type: model.Number, ID: true, Generated: true, Required: true},
		{Name: "customerId", Type: model.Number, Required: true},
		{Name: "total", Type: model.Number, Precision: 10, Scale: 2},
		{Name: "note", Type: model.String, Length: 512},
		{Name: "placed", Type: model.Date},
	})
}

func (s *DiscoverySuite) TestModelDefinitionRejectsMissingTable(c *C) {
	s.mock.ExpectQuery(columnsQuery).
		WithArgs("DB2INST1", "GHOST").
		WillReturnRows(sqlmock.NewRows(
			[]string{"name", "dataType", "length", "scale", "nullable", "identity"}))

	_, err := s.discovery.ModelDefinition(context.Background(), "", "GHOST")
	c.Assert(err, ErrorMatches, "table DB2INST1.GHOST has no columns")
	c.Assert(IsClientError(err), Equals, true)
}

type PropertyTypeInferenceSuite struct{}

var _ = Suite(&PropertyTypeInferenceSuite{})

func (*PropertyTypeInferenceSuite) TestCatalogTypeMapping(c *C) {
	c.Assert(propertyType("VARCHAR"), Equals, model.String)
	c.Assert(propertyType("CLOB"), Equals, model.String)
	c.Assert(propertyType("LONG VARCHAR"), Equals, model.String)
	c.Assert(propertyType("SMALLINT"), Equals, model.Number)
	c.Assert(propertyType("BIGINT"), Equals, model.Number)
	c.Assert(propertyType("DECFLOAT"), Equals, model.Number)
	c.Assert(propertyType("TIMESTAMP"), Equals, model.Date)
	c.Assert(propertyType("DATE"), Equals, model.Date)
	c.Assert(propertyType("BOOLEAN"), Equals, model.Boolean)
	c.Assert(propertyType("XML"), Equals, model.String)
	c.Assert(propertyType(" varchar "), Equals, model.String)
}
