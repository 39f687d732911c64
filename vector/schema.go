package vector

import (
	"fmt"

	"github.com/spf13/cast"
)

type DataType string

const (
	DataTypeText      DataType = "text"
	DataTypeNumber    DataType = "number"
	DataTypeInt       DataType = "int"
	DataTypeTextArray DataType = "text[]"
)

type Property struct {
	Name     string   `json:"name" yaml:"name"`
	DataType DataType `json:"dataType" yaml:"dataType"`
}

// Schema is the fixed, versionless shape of a collection. The store
// vectorizes documents itself with the named Vectorizer.
type Schema struct {
	Name       string     `json:"name" yaml:"name"`
	Vectorizer string     `json:"vectorizer" yaml:"vectorizer"`
	Properties []Property `json:"properties" yaml:"properties"`
}

func (s Schema) Property(name string) (Property, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p, true
		}
	}

	return Property{}, false
}

func (s Schema) PropertyNames() []string {
	names := make([]string, len(s.Properties))
	for i, p := range s.Properties {
		names[i] = p.Name
	}

	return names
}

// NormalizeProperties coerces loosely typed store values (JSON numbers,
// []any arrays) into the Go types of their schema property.
func NormalizeProperties(schema Schema, raw map[string]any) (map[string]any, error) {
	props := make(map[string]any, len(raw))
	for _, p := range schema.Properties {
		value, ok := raw[p.Name]
		if !ok || value == nil {
			continue
		}

		var err error
		switch p.DataType {
		case DataTypeNumber:
			value, err = cast.ToFloat64E(value)
		case DataTypeInt:
			value, err = cast.ToIntE(value)
		case DataTypeTextArray:
			value, err = cast.ToStringSliceE(value)
		default:
			value, err = cast.ToStringE(value)
		}

		if err != nil {
			return nil, fmt.Errorf("property %s: %w", p.Name, err)
		}

		props[p.Name] = value
	}

	return props, nil
}
