package testutil_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/internal/reference"
	"github.com/pkordes/trip-planner/migrations"
	"github.com/pkordes/trip-planner/testutil"
)

// TestMigrations runs the migrations down and up again and checks that every
// field in the reference schema has a column to load into. It leaves the
// database migrated for the tests that follow.
func TestMigrations(t *testing.T) {
	db := testutil.NewSQLDB(t)
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	require.NoError(t, err, "create goose provider")
	ctx := context.Background()

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "goose down-to 0")
	for _, table := range []string{reference.Airports, reference.Airlines} {
		assert.Empty(t, columns(t, db, table), "table %q should be gone", table)
	}

	results, err := provider.Up(ctx)
	require.NoError(t, err, "goose up")
	assert.NotEmpty(t, results)

	schema, err := reference.DefaultSchema()
	require.NoError(t, err)
	for _, table := range []string{reference.Airports, reference.Airlines} {
		ts, err := schema.Table(table)
		require.NoError(t, err)
		cols := columns(t, db, table)
		assert.Contains(t, cols, "id", "%s needs an id to keep dataset order", table)
		for _, field := range ts.Fields() {
			assert.Contains(t, cols, field, "%s.%s has no column", table, field)
		}
	}
}

func TestSeedReference(t *testing.T) {
	pool := testutil.NewMigratedPool(t)
	ctx := context.Background()
	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tx.Rollback(ctx) })

	testutil.SeedReference(t, tx)
	// Seeding twice replaces rather than duplicates.
	testutil.SeedReference(t, tx)

	var airports, nullAliases int
	require.NoError(t, tx.QueryRow(ctx, `SELECT count(*) FROM airports`).Scan(&airports))
	require.NoError(t, tx.QueryRow(ctx, `SELECT count(*) FROM airlines WHERE alias IS NULL`).Scan(&nullAliases))
	assert.Equal(t, len(testutil.Airports), airports)
	assert.Equal(t, len(testutil.Airlines), nullAliases)
}

// columns lists the public-schema columns of table; empty when it does not exist.
func columns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	const q = `
		SELECT column_name FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1`
	rows, err := db.QueryContext(context.Background(), q, table)
	require.NoError(t, err, "list columns of %q", table)
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		out = append(out, name)
	}
	require.NoError(t, rows.Err())
	return out
}
