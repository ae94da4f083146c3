package repo_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/reference"
	"github.com/pkordes/trip-planner/internal/repo"
	"github.com/pkordes/trip-planner/testutil"
)

// newTestTx opens a transaction on a migrated test database. It is rolled
// back when the test finishes, so every test starts from the same state.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewMigratedPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")
	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})
	return tx
}

func newRepo(t *testing.T, db pgx.Tx) *repo.ReferenceRepo {
	t.Helper()
	schema, err := reference.DefaultSchema()
	require.NoError(t, err)
	return repo.NewReferenceRepo(db, schema)
}

func newTestRepo(t *testing.T) *repo.ReferenceRepo {
	t.Helper()
	return newRepo(t, newTestTx(t))
}

// airportRows is positional, in the dataset layout: id, name, city, country,
// iata, icao, then columns the schema does not map.
func airportRows() [][]string {
	return [][]string{
		{"507", "London Heathrow Airport", "London", "United Kingdom", "LHR", "EGLL", "51.47"},
		{"3797", "John F Kennedy International Airport", "New York", "United States", "JFK", "KJFK", "40.63"},
		{"7001", "Sandy Creek Strip", "Sandy Creek", "United States", `\N`, "XS01", "30.0"},
	}
}

func TestReferenceRepo_ReplaceThenRows(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	n, err := r.Replace(ctx, reference.Airports, airportRows())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	rows, err := r.Rows(ctx, reference.Airports)

	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"", "London Heathrow Airport", "London", "United Kingdom", "LHR", "EGLL"}, rows[0])
	assert.Equal(t, "John F Kennedy International Airport", rows[1][1])
	assert.Equal(t, "", rows[2][4], "null IATA reads back empty")
}

func TestReferenceRepo_ReplaceOverwrites(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	_, err := r.Replace(ctx, reference.Airports, airportRows())
	require.NoError(t, err)
	_, err = r.Replace(ctx, reference.Airports, airportRows()[:1])
	require.NoError(t, err)

	count, err := r.Count(ctx, reference.Airports)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestReferenceRepo_ReplaceRejectsShortRow(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.Replace(context.Background(), reference.Airlines, [][]string{{"1", "British Airways"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1")
}

func TestReferenceRepo_RowsEmptyTable(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	_, err := r.Replace(ctx, reference.Airlines, nil)
	require.NoError(t, err)

	_, err = r.Rows(ctx, reference.Airlines)

	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, repo.IsEmpty(err))
}

func TestReferenceRepo_UnknownTable(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.Rows(context.Background(), "runways")

	require.ErrorIs(t, err, reference.ErrUnknownField)
}

// TestReferenceRepo_FeedsResolver loads both tables through reference.Load
// and resolves against them, the same path the server takes at startup.
func TestReferenceRepo_FeedsResolver(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	_, err := r.Replace(ctx, reference.Airports, airportRows())
	require.NoError(t, err)
	_, err = r.Replace(ctx, reference.Airlines, [][]string{
		{"1355", "British Airways", `\N`, "BA", "BAW", "SPEEDBIRD"},
	})
	require.NoError(t, err)

	schema, err := reference.DefaultSchema()
	require.NoError(t, err)
	tables, err := reference.Load(ctx, r, schema)
	require.NoError(t, err)

	catalog := reference.NewCatalog(tables, reference.NewResolver(reference.DefaultThreshold))
	assert.Equal(t, "British Airways", catalog.DisplayName(reference.Airlines, reference.FieldIATA, "BA"))
	matches, err := catalog.Lookup(reference.Airports, reference.FieldName, "Heathrow")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "LHR", matches[0].Record.Get(reference.FieldIATA))
}

// TestReferenceRepo_RowsFromSeededTables reads rows inserted outside the repo,
// the way an operator-loaded database looks at startup.
func TestReferenceRepo_RowsFromSeededTables(t *testing.T) {
	tx := newTestTx(t)
	testutil.SeedReference(t, tx)
	r := newRepo(t, tx)
	ctx := context.Background()

	airports, err := r.Rows(ctx, reference.Airports)
	require.NoError(t, err)
	require.Len(t, airports, len(testutil.Airports))
	// ORDER BY id: 507, 1852, 3797.
	assert.Equal(t, "LHR", airports[0][4])
	assert.Equal(t, "CUN", airports[1][4])
	assert.Equal(t, "JFK", airports[2][4])

	airlines, err := r.Rows(ctx, reference.Airlines)
	require.NoError(t, err)
	require.Len(t, airlines, len(testutil.Airlines))
	assert.Equal(t, []string{"", "American Airlines", "", "AA", "AAL"}, airlines[0], "null alias reads back empty")

	count, err := r.Count(ctx, reference.Airlines)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
