package model

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// modelSpec is the YAML form of one model. Properties and indexes are
// MapSlices so their declaration order survives parsing; column order
// depends on it.
type modelSpec struct {
	Table      string        `yaml:"table"`
	Properties yaml.MapSlice `yaml:"properties"`
	Indexes    yaml.MapSlice `yaml:"indexes"`
}

type propertySpec struct {
	Type      string        `yaml:"type"`
	ID        bool          `yaml:"id"`
	Generated bool          `yaml:"generated"`
	Required  bool          `yaml:"required"`
	Length    int           `yaml:"length"`
	Precision int           `yaml:"precision"`
	Scale     int           `yaml:"scale"`
	Charset   string        `yaml:"charset"`
	Collation string        `yaml:"collation"`
	Enum      []string      `yaml:"enum"`
	DB2       *overrideSpec `yaml:"db2"`
}

type overrideSpec struct {
	ColumnName    string `yaml:"column_name"`
	DataType      string `yaml:"data_type"`
	DataLength    int    `yaml:"data_length"`
	DataPrecision int    `yaml:"data_precision"`
	DataScale     int    `yaml:"data_scale"`
}

type indexSpec struct {
	Keys    []string `yaml:"keys"`
	Columns string   `yaml:"columns"`
	Unique  bool     `yaml:"unique"`
}

// ParseDefinitions reads model definitions from a YAML document mapping
// model names to their specs. Model, property and index order all follow
// the document.
func ParseDefinitions(data []byte) ([]*Definition, error) {
	var doc yaml.MapSlice
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse model definitions: %w", err)
	}

	definitions := make([]*Definition, 0, len(doc))

	for _, item := range doc {
		name, ok := item.Key.(string)
		if !ok {
			return nil, fmt.Errorf("model name %v is not a string", item.Key)
		}

		var spec modelSpec
		if err := decodeNode(item.Value, &spec); err != nil {
			return nil, fmt.Errorf("model %q: %w", name, err)
		}

		def, err := buildDefinition(name, &spec)
		if err != nil {
			return nil, err
		}

		definitions = append(definitions, def)
	}

	return definitions, nil
}

// LoadDefinitions reads model definitions from a YAML file.
func LoadDefinitions(path string) ([]*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return ParseDefinitions(data)
}

// LoadRegistry reads a YAML file into a registry.
func LoadRegistry(path string) (*StaticRegistry, error) {
	definitions, err := LoadDefinitions(path)
	if err != nil {
		return nil, err
	}

	return NewStaticRegistry(definitions...), nil
}

func buildDefinition(name string, spec *modelSpec) (*Definition, error) {
	def := &Definition{
		Name: name,
		Settings: Settings{
			Table: spec.Table,
		},
	}

	for _, item := range spec.Properties {
		propName, ok := item.Key.(string)
		if !ok {
			return nil, fmt.Errorf("model %q: property name %v is not a string", name, item.Key)
		}

		var ps propertySpec
		if err := decodeNode(item.Value, &ps); err != nil {
			return nil, fmt.Errorf("model %q property %q: %w", name, propName, err)
		}

		property, err := buildProperty(propName, &ps)
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", name, err)
		}

		def.Properties = append(def.Properties, property)
	}

	for _, item := range spec.Indexes {
		indexName, ok := item.Key.(string)
		if !ok {
			return nil, fmt.Errorf("model %q: index name %v is not a string", name, item.Key)
		}

		var is indexSpec
		if err := decodeNode(item.Value, &is); err != nil {
			return nil, fmt.Errorf("model %q index %q: %w", name, indexName, err)
		}

		def.Settings.Indexes = append(def.Settings.Indexes, Index{
			Name:    indexName,
			Keys:    is.Keys,
			Columns: is.Columns,
			Unique:  is.Unique,
		})
	}

	return def, nil
}

func buildProperty(name string, ps *propertySpec) (Property, error) {
	t, err := ParseType(ps.Type)
	if err != nil {
		return Property{}, fmt.Errorf("property %q: %w", name, err)
	}

	p := Property{
		Name:       name,
		Type:       t,
		ID:         ps.ID,
		Generated:  ps.Generated,
		Required:   ps.Required,
		Length:     ps.Length,
		Precision:  ps.Precision,
		Scale:      ps.Scale,
		Charset:    ps.Charset,
		Collation:  ps.Collation,
		EnumValues: ps.Enum,
	}

	if ps.DB2 != nil {
		p.DB2 = &NativeOverride{
			ColumnName:    ps.DB2.ColumnName,
			DataType:      ps.DB2.DataType,
			DataLength:    ps.DB2.DataLength,
			DataPrecision: ps.DB2.DataPrecision,
			DataScale:     ps.DB2.DataScale,
		}
	}

	return p, nil
}

// decodeNode round-trips a parsed YAML node into a typed spec.
func decodeNode(node any, out any) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, out)
}
