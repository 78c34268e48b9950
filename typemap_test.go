package db2

import (
	"time"

	//revive:disable-next-line:dot-imports
	. "gopkg.in/check.v1"

	"github.com/kva3umoda/db2-adapter/model"
)

type TypeMapSuite struct{}

var _ = Suite(&TypeMapSuite{})

func prop(t model.PropertyType) *model.Property {
	return &model.Property{Name: "p", Type: t}
}

func roundTrip(c *C, p *model.Property, v any) any {
	encoded, err := ToColumnValue(p, v)
	c.Assert(err, IsNil)

	decoded, err := FromColumnValue(p, encoded)
	c.Assert(err, IsNil)

	return decoded
}

func (*TypeMapSuite) TestStringRoundTrip(c *C) {
	c.Assert(roundTrip(c, prop(model.String), "hello"), Equals, "hello")
}

func (*TypeMapSuite) TestNumberRoundTrip(c *C) {
	c.Assert(roundTrip(c, prop(model.Number), int64(42)), Equals, int64(42))
	c.Assert(roundTrip(c, prop(model.Number), 3.5), Equals, 3.5)
}

func (*TypeMapSuite) TestBooleanRoundTrip(c *C) {
	c.Assert(roundTrip(c, prop(model.Boolean), true), Equals, true)
	c.Assert(roundTrip(c, prop(model.Boolean), false), Equals, false)
}

func (*TypeMapSuite) TestBooleanEncodesToSmallint(c *C) {
	encoded, err := ToColumnValue(prop(model.Boolean), true)
	c.Assert(err, IsNil)
	c.Assert(encoded, Equals, 1)

	encoded, err = ToColumnValue(prop(model.Boolean), false)
	c.Assert(err, IsNil)
	c.Assert(encoded, Equals, 0)
}

func (*TypeMapSuite) TestDateRoundTripKeepsMicroseconds(c *C) {
	v := time.Date(2024, 3, 5, 9, 30, 15, 123456789, time.UTC)

	decoded := roundTrip(c, prop(model.Date), v)
	c.Assert(decoded, DeepEquals, v.Truncate(time.Microsecond))
}

func (*TypeMapSuite) TestDateEncodesFixedWidthLiteral(c *C) {
	v := time.Date(2024, 1, 2, 3, 4, 5, 60000, time.UTC)

	encoded, err := ToColumnValue(prop(model.Date), v)
	c.Assert(err, IsNil)
	c.Assert(encoded, Equals, "2024-01-02-03.04.05.000060")
}

func (*TypeMapSuite) TestJSONRoundTrip(c *C) {
	v := map[string]any{"plan": "gold", "seats": float64(3)}

	c.Assert(roundTrip(c, prop(model.JSON), v), DeepEquals, v)
}

func (*TypeMapSuite) TestJSONStringPassesThrough(c *C) {
	encoded, err := ToColumnValue(prop(model.JSON), `{"a":1}`)
	c.Assert(err, IsNil)
	c.Assert(encoded, Equals, `{"a":1}`)
}

func (*TypeMapSuite) TestArrayRoundTrip(c *C) {
	v := []any{"x", float64(2)}

	c.Assert(roundTrip(c, prop(model.Array), v), DeepEquals, v)
}

func (*TypeMapSuite) TestGeoPointRoundTrip(c *C) {
	v := map[string]any{"lat": 52.5, "lng": 13.4}

	c.Assert(roundTrip(c, prop(model.GeoPoint), v), DeepEquals, v)
}

func (*TypeMapSuite) TestEnumPassesThrough(c *C) {
	c.Assert(roundTrip(c, prop(model.Enum), "red"), Equals, "red")
}

func (*TypeMapSuite) TestNilOnGeneratedIDBecomesDefault(c *C) {
	p := &model.Property{Name: "id", Type: model.Number, ID: true, Generated: true}

	encoded, err := ToColumnValue(p, nil)
	c.Assert(err, IsNil)
	c.Assert(encoded, Equals, Literal("DEFAULT"))
}

func (*TypeMapSuite) TestNilOnPlainPropertyStaysNil(c *C) {
	encoded, err := ToColumnValue(prop(model.String), nil)
	c.Assert(err, IsNil)
	c.Assert(encoded, IsNil)
}

func (*TypeMapSuite) TestNilRawSkipsTypeLogic(c *C) {
	decoded, err := FromColumnValue(prop(model.JSON), nil)
	c.Assert(err, IsNil)
	c.Assert(decoded, IsNil)
}

func (*TypeMapSuite) TestMissingPropertyReturnsRawValue(c *C) {
	decoded, err := FromColumnValue(nil, "raw")
	c.Assert(err, IsNil)
	c.Assert(decoded, Equals, "raw")
}

func (*TypeMapSuite) TestDateRejectsUnknownInput(c *C) {
	_, err := ToColumnValue(prop(model.Date), 42)
	c.Assert(err, ErrorMatches, "db2: cannot encode int as a timestamp")
}

func (*TypeMapSuite) TestMalformedTimestampFails(c *C) {
	_, err := FromColumnValue(prop(model.Date), "not-a-timestamp")
	c.Assert(err, ErrorMatches, `db2: malformed timestamp "not-a-timestamp": .*`)
}

type ColumnTypeSuite struct{}

var _ = Suite(&ColumnTypeSuite{})

func (*ColumnTypeSuite) TestStringDefaults(c *C) {
	dt, err := ColumnDataType(&model.Property{Name: "s", Type: model.String})
	c.Assert(err, IsNil)
	c.Assert(dt, Equals, "VARCHAR(512)")

	dt, err = ColumnDataType(&model.Property{Name: "s", Type: model.String, ID: true})
	c.Assert(err, IsNil)
	c.Assert(dt, Equals, "VARCHAR(255)")

	dt, err = ColumnDataType(&model.Property{Name: "s", Type: model.String, Length: 100})
	c.Assert(err, IsNil)
	c.Assert(dt, Equals, "VARCHAR(100)")
}

func (*ColumnTypeSuite) TestNumberDefaultsToInteger(c *C) {
	dt, err := ColumnDataType(&model.Property{Name: "n", Type: model.Number})
	c.Assert(err, IsNil)
	c.Assert(dt, Equals, "INTEGER")
}

func (*ColumnTypeSuite) TestNumberPrecisionAndScale(c *C) {
	dt, err := ColumnDataType(&model.Property{Name: "n", Type: model.Number, Precision: 10, Scale: 2})
	c.Assert(err, IsNil)
	c.Assert(dt, Equals, "DECIMAL(10,2)")

	dt, err = ColumnDataType(&model.Property{Name: "n", Type: model.Number, Precision: 10})
	c.Assert(err, IsNil)
	c.Assert(dt, Equals, "DECIMAL(10)")
}

func (*ColumnTypeSuite) TestScaleWithoutPrecisionFails(c *C) {
	_, err := ColumnDataType(&model.Property{Name: "n", Type: model.Number, Scale: 2})
	c.Assert(err, ErrorMatches, `property "n" declares scale 2 without precision`)
	c.Assert(IsClientError(err), Equals, true)
}

func (*ColumnTypeSuite) TestSimpleTypes(c *C) {
	dt, err := ColumnDataType(&model.Property{Name: "d", Type: model.Date})
	c.Assert(err, IsNil)
	c.Assert(dt, Equals, "TIMESTAMP")

	dt, err = ColumnDataType(&model.Property{Name: "b", Type: model.Boolean})
	c.Assert(err, IsNil)
	c.Assert(dt, Equals, "SMALLINT")

	dt, err = ColumnDataType(&model.Property{Name: "g", Type: model.GeoPoint})
	c.Assert(err, IsNil)
	c.Assert(dt, Equals, "POINT")
}

func (*ColumnTypeSuite) TestCompositeDefaultsToBoundedText(c *C) {
	dt, err := ColumnDataType(&model.Property{Name: "j", Type: model.JSON})
	c.Assert(err, IsNil)
	c.Assert(dt, Equals, "VARCHAR(4096)")

	dt, err = ColumnDataType(&model.Property{Name: "a", Type: model.Array, Length: 2000})
	c.Assert(err, IsNil)
	c.Assert(dt, Equals, "VARCHAR(2000)")
}

func (*ColumnTypeSuite) TestEnumBuildsValueList(c *C) {
	dt, err := ColumnDataType(&model.Property{
		Name: "size", Type: model.Enum, EnumValues: []string{"small", "large"},
	})
	c.Assert(err, IsNil)
	c.Assert(dt, Equals, "ENUM('small','large')")
}

func (*ColumnTypeSuite) TestEnumWithoutValuesFails(c *C) {
	_, err := ColumnDataType(&model.Property{Name: "size", Type: model.Enum})
	c.Assert(err, ErrorMatches, `enum property "size" declares no values`)
}

func (*ColumnTypeSuite) TestCharsetAndCollationAppend(c *C) {
	dt, err := ColumnDataType(&model.Property{
		Name: "s", Type: model.String, Charset: "utf8", Collation: "utf8_general_ci",
	})
	c.Assert(err, IsNil)
	c.Assert(dt, Equals, "VARCHAR(512) CHARACTER SET utf8 COLLATE utf8_general_ci")
}

func (*ColumnTypeSuite) TestExplicitOverrideWins(c *C) {
	dt, err := ColumnDataType(&model.Property{
		Name: "n", Type: model.Number,
		DB2: &model.NativeOverride{DataType: "decimal", DataPrecision: 12, DataScale: 3},
	})
	c.Assert(err, IsNil)
	c.Assert(dt, Equals, "DECIMAL(12,3)")

	dt, err = ColumnDataType(&model.Property{
		Name: "s", Type: model.String,
		DB2: &model.NativeOverride{DataType: "CLOB", DataLength: 65536},
	})
	c.Assert(err, IsNil)
	c.Assert(dt, Equals, "CLOB(65536)")
}
