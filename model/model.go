// Package model holds the definition types the adapter reads but never owns.
// Definitions are produced by the calling data-access layer (or loaded from a
// model file) before any statement is built, and are treated as immutable.
package model

import (
	"fmt"
	"sort"
)

// NativeOverride carries an explicit DB2 column declaration for a property.
// When present it takes precedence over the abstract type mapping.
type NativeOverride struct {
	// ColumnName overrides the column name derived from the property name.
	ColumnName string
	// DataType is the native column type, e.g. "DECIMAL" or "CLOB".
	DataType string
	// DataLength overrides the declared or defaulted length of text types.
	DataLength int
	// DataPrecision and DataScale apply to numeric native types.
	DataPrecision int
	DataScale     int
}

// Property describes one model property. The zero value is not usable; Type
// must be set.
type Property struct {
	Name string
	Type PropertyType

	// ID marks the property as part of the primary key. Generated marks it
	// as an identity column whose value the engine assigns. Required makes
	// the column NOT NULL; id columns are NOT NULL regardless.
	ID        bool
	Generated bool
	Required  bool

	Length    int
	Precision int
	Scale     int

	Charset   string
	Collation string

	// EnumValues lists the allowed values of an Enum property in declaration
	// order.
	EnumValues []string

	DB2 *NativeOverride
}

// ColumnName returns the column the property maps to.
func (p *Property) ColumnName() string {
	if p.DB2 != nil && p.DB2.ColumnName != "" {
		return p.DB2.ColumnName
	}

	return p.Name
}

// Index is a model-level index declaration. Either Keys or Columns names the
// indexed columns; Columns is the legacy comma-separated form.
type Index struct {
	Name    string
	Keys    []string
	Columns string
	Unique  bool
}

// Settings are the per-model options the adapter reads.
type Settings struct {
	// Table overrides the table name derived from the model name.
	Table   string
	Indexes []Index
}

// Definition is one named model: an ordered property list plus settings.
// Property order is stable for the lifetime of the definition; generated
// column order depends on it.
type Definition struct {
	Name       string
	Properties []Property
	Settings   Settings
}

// Property returns the named property, or nil when the definition does not
// declare it.
func (d *Definition) Property(name string) *Property {
	for i := range d.Properties {
		if d.Properties[i].Name == name {
			return &d.Properties[i]
		}
	}

	return nil
}

// TableName returns the table the definition maps to.
func (d *Definition) TableName() string {
	if d.Settings.Table != "" {
		return d.Settings.Table
	}

	return d.Name
}

// IDNames returns the names of all id properties in declaration order.
func (d *Definition) IDNames() []string {
	names := make([]string, 0, 1)
	for i := range d.Properties {
		if d.Properties[i].ID {
			names = append(names, d.Properties[i].Name)
		}
	}

	return names
}

// IDName returns the first id property name, or "" for keyless models.
func (d *Definition) IDName() string {
	for i := range d.Properties {
		if d.Properties[i].ID {
			return d.Properties[i].Name
		}
	}

	return ""
}

// Registry resolves model names to definitions. It is implemented by the
// calling data-access layer; the adapter only reads from it.
type Registry interface {
	Definition(model string) (*Definition, error)
	Names() []string
}

var _ Registry = (*StaticRegistry)(nil)

// StaticRegistry is a fixed, in-memory Registry.
type StaticRegistry struct {
	definitions map[string]*Definition
}

func NewStaticRegistry(definitions ...*Definition) *StaticRegistry {
	r := &StaticRegistry{
		definitions: make(map[string]*Definition, len(definitions)),
	}
	for _, d := range definitions {
		r.definitions[d.Name] = d
	}

	return r
}

func (r *StaticRegistry) Definition(model string) (*Definition, error) {
	d, ok := r.definitions[model]
	if !ok {
		return nil, fmt.Errorf("model %q is not registered", model)
	}

	return d, nil
}

// Names returns the registered model names sorted for stable iteration.
func (r *StaticRegistry) Names() []string {
	names := make([]string, 0, len(r.definitions))
	for name := range r.definitions {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
