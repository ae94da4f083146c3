package reference

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/mapstructure"
)

// ErrUnknownField is returned when a table or field is not in the schema.
var ErrUnknownField = errors.New("unknown reference field")

// nullMarker is how OpenFlights spells a missing value.
const nullMarker = `\N`

// Table is an immutable, ordered set of rows read against a TableSchema.
// A Table is safe for concurrent readers.
type Table struct {
	name   string
	schema TableSchema
	rows   [][]string
}

// NewTable checks every row is wide enough for the schema. rows is retained;
// callers must not mutate it afterwards.
func NewTable(name string, ts TableSchema, rows [][]string) (*Table, error) {
	width := ts.Width()
	for i, row := range rows {
		if len(row) < width {
			return nil, fmt.Errorf("reference.NewTable: %s row %d: %d columns, need %d", name, i+1, len(row), width)
		}
		for j, v := range row {
			if v == nullMarker {
				row[j] = ""
			}
		}
	}
	return &Table{name: name, schema: ts, rows: rows}, nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Len returns the row count.
func (t *Table) Len() int { return len(t.rows) }

// Schema returns the table's field map.
func (t *Table) Schema() TableSchema { return t.schema }

// Record returns row i.
func (t *Table) Record(i int) Record {
	return Record{schema: t.schema, values: t.rows[i]}
}

// Record is one row addressed by field name.
type Record struct {
	schema TableSchema
	values []string
}

// Get returns the named field, or "" when the schema has no such field.
func (r Record) Get(field string) string {
	pos, ok := r.schema[field]
	if !ok || pos >= len(r.values) {
		return ""
	}
	return r.values[pos]
}

// Fields lists the schema fields in column order.
func (r Record) Fields() []string {
	return r.schema.Fields()
}

// Values returns a copy of the raw columns.
func (r Record) Values() []string {
	return append([]string(nil), r.values...)
}

// Map returns every schema field keyed by name.
func (r Record) Map() map[string]string {
	out := make(map[string]string, len(r.schema))
	for name := range r.schema {
		out[name] = r.Get(name)
	}
	return out
}

// Decode fills out (a pointer to a struct with mapstructure tags).
func (r Record) Decode(out any) error {
	if err := mapstructure.Decode(r.Map(), out); err != nil {
		return fmt.Errorf("reference.Record.Decode: %w", err)
	}
	return nil
}

// Airport is the typed view of an airports row.
type Airport struct {
	Name    string `mapstructure:"name" json:"name"`
	City    string `mapstructure:"city" json:"city"`
	Country string `mapstructure:"country" json:"country"`
	IATA    string `mapstructure:"iata" json:"iata"`
	ICAO    string `mapstructure:"icao" json:"icao"`
}

// Airline is the typed view of an airlines row.
type Airline struct {
	Name  string `mapstructure:"name" json:"name"`
	Alias string `mapstructure:"alias" json:"alias"`
	IATA  string `mapstructure:"iata" json:"iata"`
	ICAO  string `mapstructure:"icao" json:"icao"`
}

// Source yields the raw rows of a named table in table order.
type Source interface {
	Rows(ctx context.Context, table string) ([][]string, error)
}

// Tables holds the reference tables loaded at process start.
type Tables struct {
	Airports *Table
	Airlines *Table
}

// Table returns the table with the given name.
func (ts *Tables) Table(name string) (*Table, error) {
	switch name {
	case Airports:
		return ts.Airports, nil
	case Airlines:
		return ts.Airlines, nil
	}
	return nil, fmt.Errorf("%w: table %q", ErrUnknownField, name)
}

// Load reads both tables from src.
func Load(ctx context.Context, src Source, schema Schema) (*Tables, error) {
	out := &Tables{}
	for _, name := range []string{Airports, Airlines} {
		ts, err := schema.Table(name)
		if err != nil {
			return nil, fmt.Errorf("reference.Load: %w", err)
		}
		rows, err := src.Rows(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("reference.Load: %s: %w", name, err)
		}
		t, err := NewTable(name, ts, rows)
		if err != nil {
			return nil, fmt.Errorf("reference.Load: %w", err)
		}
		if name == Airports {
			out.Airports = t
		} else {
			out.Airlines = t
		}
	}
	return out, nil
}

// CSVSource reads tables from headerless OpenFlights-style CSV files.
type CSVSource struct {
	Paths map[string]string
}

// NewCSVSource returns a source backed by the two dataset files.
func NewCSVSource(airportsPath, airlinesPath string) *CSVSource {
	return &CSVSource{Paths: map[string]string{Airports: airportsPath, Airlines: airlinesPath}}
}

// Rows implements Source.
func (s *CSVSource) Rows(_ context.Context, table string) ([][]string, error) {
	path, ok := s.Paths[table]
	if !ok {
		return nil, fmt.Errorf("%w: table %q", ErrUnknownField, table)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reference.CSVSource.Rows: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses every row of r. Rows may differ in width; quoting is lenient
// because the upstream datasets contain stray quotes inside names.
func ReadCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reference.ReadCSV: %w", err)
	}
	return rows, nil
}
