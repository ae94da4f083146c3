package reference

import (
	"fmt"
	"sort"
)

// DefaultThreshold is the minimum score (exclusive) a row needs to match.
const DefaultThreshold = 90

// substringWeight is the score each exact query-token hit contributes.
const substringWeight = 92

// Match is one row that scored above the threshold.
type Match struct {
	Index  int
	Score  float64
	Record Record
}

// Resolver ranks reference rows against free-text queries.
// The zero value uses DefaultThreshold.
type Resolver struct {
	Threshold float64
}

// NewResolver returns a Resolver with the given threshold.
func NewResolver(threshold float64) *Resolver {
	return &Resolver{Threshold: threshold}
}

func (r *Resolver) threshold() float64 {
	if r == nil || r.Threshold == 0 {
		return DefaultThreshold
	}
	return r.Threshold
}

// Score combines the token-set ratio with a bonus for each query token found
// verbatim in target, so shared generic words ("International", "Airport")
// cannot outrank an exact substring hit.
func Score(target, query string) float64 {
	hits := substringMatches(target, query)
	return float64(TokenSetRatio(target, query)+substringWeight*hits) / float64(1+hits)
}

// Lookup returns every row whose field scores above the threshold, best
// first. Ties keep table order.
func (r *Resolver) Lookup(t *Table, field, query string) ([]Match, error) {
	pos, err := t.schema.Position(field)
	if err != nil {
		return nil, fmt.Errorf("reference.Resolver.Lookup: %s: %w", t.name, err)
	}
	floor := r.threshold()
	var out []Match
	for i, row := range t.rows {
		s := Score(row[pos], query)
		if s > floor {
			out = append(out, Match{Index: i, Score: s, Record: Record{schema: t.schema, values: row}})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

// Best returns the top match, if any.
func (r *Resolver) Best(t *Table, field, query string) (Record, bool, error) {
	matches, err := r.Lookup(t, field, query)
	if err != nil || len(matches) == 0 {
		return Record{}, false, err
	}
	return matches[0].Record, true, nil
}

// Catalog binds a Resolver to the loaded tables so callers can address
// fields by table and field name.
type Catalog struct {
	tables   *Tables
	resolver *Resolver
}

// NewCatalog returns a Catalog over tables.
func NewCatalog(tables *Tables, resolver *Resolver) *Catalog {
	return &Catalog{tables: tables, resolver: resolver}
}

// Lookup resolves query against table.field.
func (c *Catalog) Lookup(table, field, query string) ([]Match, error) {
	t, err := c.tables.Table(table)
	if err != nil {
		return nil, fmt.Errorf("reference.Catalog.Lookup: %w", err)
	}
	return c.resolver.Lookup(t, field, query)
}

// DisplayName returns the name of the best row whose field matches code, or
// code itself when nothing matches.
func (c *Catalog) DisplayName(table, field, code string) string {
	matches, err := c.Lookup(table, field, code)
	if err != nil || len(matches) == 0 {
		return code
	}
	if name := matches[0].Record.Get(FieldName); name != "" {
		return name
	}
	return code
}
