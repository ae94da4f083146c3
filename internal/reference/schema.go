package reference

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed schema.yaml
var schemaYAML []byte

// Table names.
const (
	Airports = "airports"
	Airlines = "airlines"
)

// Field names shared by both tables.
const (
	FieldName = "name"
	FieldIATA = "iata"
)

// Schema maps each table's field names to column positions.
type Schema struct {
	Version int                    `yaml:"version"`
	Tables  map[string]TableSchema `yaml:"tables"`
}

// TableSchema maps field name to zero-based column index.
type TableSchema map[string]int

// DefaultSchema returns the embedded schema.
func DefaultSchema() (Schema, error) {
	return ParseSchema(schemaYAML)
}

// ParseSchema decodes and checks a schema document.
func ParseSchema(data []byte) (Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Schema{}, fmt.Errorf("reference.ParseSchema: %w", err)
	}
	if s.Version < 1 {
		return Schema{}, fmt.Errorf("reference.ParseSchema: version must be >= 1, got %d", s.Version)
	}
	for table, fields := range s.Tables {
		seen := make(map[int]string, len(fields))
		for name, pos := range fields {
			if pos < 0 {
				return Schema{}, fmt.Errorf("reference.ParseSchema: %s.%s: negative position %d", table, name, pos)
			}
			if other, dup := seen[pos]; dup {
				return Schema{}, fmt.Errorf("reference.ParseSchema: %s: %s and %s share position %d", table, other, name, pos)
			}
			seen[pos] = name
		}
	}
	return s, nil
}

// Table returns the field map for a table.
func (s Schema) Table(name string) (TableSchema, error) {
	ts, ok := s.Tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: table %q", ErrUnknownField, name)
	}
	return ts, nil
}

// Position returns the column index of field.
func (ts TableSchema) Position(field string) (int, error) {
	pos, ok := ts[field]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return pos, nil
}

// Width is the minimum number of columns a row needs to carry every field.
func (ts TableSchema) Width() int {
	w := 0
	for _, pos := range ts {
		if pos+1 > w {
			w = pos + 1
		}
	}
	return w
}

// Fields lists field names ordered by column position.
func (ts TableSchema) Fields() []string {
	out := make([]string, 0, len(ts))
	for name := range ts {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return ts[out[i]] < ts[out[j]] })
	return out
}
