package model

import (
	`fmt`
	`strings`
)

// PropertyType is the closed set of abstract property types a definition may
// declare. Every conversion in the adapter switches over this set; a type
// added here does not work until it is handled in both value directions and
// in the DDL mapping.
type PropertyType int

const (
	String PropertyType = iota + 1
	Number
	Boolean
	Date
	JSON
	Array
	GeoPoint
	Enum
)

func (t PropertyType) String() string {
	switch t {
	case String:
		return "String"
	case Number:
		return "Number"
	case Boolean:
		return "Boolean"
	case Date:
		return "Date"
	case JSON:
		return "JSON"
	case Array:
		return "Array"
	case GeoPoint:
		return "GeoPoint"
	case Enum:
		return "Enum"
	}

	return fmt.Sprintf("PropertyType(%d)", int(t))
}

// TextClass reports whether values of the type are stored in a character
// column. Used for the default-length rules during DDL generation.
func (t PropertyType) TextClass() bool {
	return t == String
}

// ParseType maps a declared type name to its PropertyType. Legacy aliases
// from model files are accepted: Text and Any behave as String, Object as
// JSON, List as Array, Point as GeoPoint.
func ParseType(name string) (PropertyType, error) {
	switch strings.ToLower(name) {
	case "string", "text", "any":
		return String, nil
	case "number":
		return Number, nil
	case "boolean", "bool":
		return Boolean, nil
	case "date":
		return Date, nil
	case "json", "object":
		return JSON, nil
	case "array", "list":
		return Array, nil
	case "geopoint", "point":
		return GeoPoint, nil
	case "enum":
		return Enum, nil
	}

	return 0, fmt.Errorf("unknown property type: %q", name)
}
