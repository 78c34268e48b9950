package db2

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kva3umoda/db2-adapter/model"
)

// TimestampLayout is the fixed-width literal format DB2 uses for TIMESTAMP
// values: dash-separated date, dot-separated time, six fractional digits.
const TimestampLayout = "2006-01-02-15.04.05.000000"

const (
	defaultTextLength   = 512
	defaultIDTextLength = 255
	defaultDataLength   = 4096
)

// ToColumnValue converts an abstract property value into the form bound to
// a statement placeholder. A nil value on an id or generated column yields
// Literal("DEFAULT"), which the builder splices into the statement text
// instead of binding; a nil value elsewhere stays nil. Composite values
// serialize to JSON text, booleans to 0/1 and times to TimestampLayout.
func ToColumnValue(p *model.Property, value any) (any, error) {
	if value == nil {
		if p != nil && (p.ID || p.Generated) {
			return Literal("DEFAULT"), nil
		}

		return nil, nil
	}

	if p == nil {
		return value, nil
	}

	switch p.Type {
	case model.String, model.Number, model.Enum:
		return value, nil
	case model.Boolean:
		if b, ok := value.(bool); ok {
			if b {
				return 1, nil
			}

			return 0, nil
		}

		return value, nil
	case model.Date:
		return formatTimestamp(value)
	case model.JSON:
		if s, ok := value.(string); ok {
			return s, nil
		}

		return jsonEncode(value)
	case model.Array, model.GeoPoint:
		return jsonEncode(value)
	default:
		return value, nil
	}
}

// FromColumnValue converts a raw driver value back into the property's
// abstract form. A nil raw value, or a nil property descriptor, returns the
// raw value unchanged without invoking any type logic.
func FromColumnValue(p *model.Property, raw any) (any, error) {
	if raw == nil || p == nil {
		return raw, nil
	}

	switch p.Type {
	case model.String, model.Enum:
		return toText(raw), nil
	case model.Number:
		return toNumber(raw)
	case model.Boolean:
		return toBool(raw)
	case model.Date:
		return parseTimestamp(raw)
	case model.JSON, model.Array, model.GeoPoint:
		return jsonDecode(raw)
	default:
		return raw, nil
	}
}

// ColumnDataType maps a property to its DB2 column type for DDL. An
// explicit native override on the property wins over every default; scale
// without precision is rejected. Text-class columns append character-set
// and collation clauses when declared.
func ColumnDataType(p *model.Property) (string, error) {
	if p.DB2 != nil && p.DB2.DataType != "" {
		return overrideDataType(p)
	}

	var dt string

	switch p.Type {
	case model.String:
		dt = fmt.Sprintf("VARCHAR(%d)", textLength(p))
	case model.Number:
		switch {
		case p.Precision > 0 && p.Scale > 0:
			dt = fmt.Sprintf("DECIMAL(%d,%d)", p.Precision, p.Scale)
		case p.Precision > 0:
			dt = fmt.Sprintf("DECIMAL(%d)", p.Precision)
		case p.Scale > 0:
			return "", newValidationError(
				"property %q declares scale %d without precision", p.Name, p.Scale)
		default:
			dt = "INTEGER"
		}
	case model.Date:
		dt = "TIMESTAMP"
	case model.Boolean:
		dt = "SMALLINT"
	case model.GeoPoint:
		dt = "POINT"
	case model.Enum:
		if len(p.EnumValues) == 0 {
			return "", newValidationError("enum property %q declares no values", p.Name)
		}

		quoted := make([]string, len(p.EnumValues))
		for i, v := range p.EnumValues {
			quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
		}

		dt = "ENUM(" + strings.Join(quoted, ",") + ")"
	default:
		length := p.Length
		if length <= 0 {
			length = defaultDataLength
		}

		dt = fmt.Sprintf("VARCHAR(%d)", length)
	}

	if p.Type.TextClass() || p.Type == model.Enum {
		if p.Charset != "" {
			dt += " CHARACTER SET " + p.Charset
		}

		if p.Collation != "" {
			dt += " COLLATE " + p.Collation
		}
	}

	return dt, nil
}

func overrideDataType(p *model.Property) (string, error) {
	o := p.DB2
	dt := strings.ToUpper(o.DataType)

	switch {
	case o.DataLength > 0:
		dt = fmt.Sprintf("%s(%d)", dt, o.DataLength)
	case o.DataPrecision > 0 && o.DataScale > 0:
		dt = fmt.Sprintf("%s(%d,%d)", dt, o.DataPrecision, o.DataScale)
	case o.DataPrecision > 0:
		dt = fmt.Sprintf("%s(%d)", dt, o.DataPrecision)
	case o.DataScale > 0:
		return "", newValidationError(
			"property %q declares scale %d without precision", p.Name, o.DataScale)
	}

	return dt, nil
}

func textLength(p *model.Property) int {
	if p.Length > 0 {
		return p.Length
	}

	if p.ID {
		return defaultIDTextLength
	}

	return defaultTextLength
}

func formatTimestamp(value any) (any, error) {
	switch t := value.(type) {
	case time.Time:
		return t.UTC().Format(TimestampLayout), nil
	case *time.Time:
		if t == nil {
			return nil, nil
		}

		return t.UTC().Format(TimestampLayout), nil
	case string:
		return t, nil
	default:
		return nil, fmt.Errorf("db2: cannot encode %T as a timestamp", value)
	}
}

func parseTimestamp(raw any) (any, error) {
	switch t := raw.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return parseTimestampText(t)
	case []byte:
		return parseTimestampText(string(t))
	default:
		return nil, fmt.Errorf("db2: cannot decode %T as a timestamp", raw)
	}
}

func parseTimestampText(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("db2: malformed timestamp %q: %w", s, err)
	}

	return t, nil
}

func toText(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

func toNumber(raw any) (any, error) {
	switch v := raw.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v, nil
	case string:
		return parseNumberText(v)
	case []byte:
		return parseNumberText(string(v))
	default:
		return nil, fmt.Errorf("db2: cannot decode %T as a number", raw)
	}
}

func parseNumberText(s string) (any, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("db2: malformed number %q: %w", s, err)
	}

	return f, nil
}

func toBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case int:
		return v != 0, nil
	case int16:
		return v != 0, nil
	case int32:
		return v != 0, nil
	case int64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	case string:
		return v != "0" && v != "", nil
	case []byte:
		s := string(v)
		return s != "0" && s != "", nil
	default:
		return false, fmt.Errorf("db2: cannot decode %T as a boolean", raw)
	}
}

func jsonEncode(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("db2: cannot encode %T as JSON text: %w", value, err)
	}

	return string(data), nil
}

func jsonDecode(raw any) (any, error) {
	var text string

	switch v := raw.(type) {
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		return raw, nil
	}

	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return nil, fmt.Errorf("db2: malformed JSON column value: %w", err)
	}

	return decoded, nil
}
