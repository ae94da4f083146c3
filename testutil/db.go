// Package testutil provides Postgres helpers for the reference-store
// integration tests. Every helper skips the test when TEST_DATABASE_URL is
// not set, so unit tests run without a database.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/pkordes/trip-planner/migrations"
)

// Airports and Airlines are the rows SeedReference loads, in dataset layout
// (id first, then the columns named in the reference schema).
var (
	Airports = [][]string{
		{"507", "London Heathrow Airport", "London", "United Kingdom", "LHR", "EGLL"},
		{"3797", "John F Kennedy International Airport", "New York", "United States", "JFK", "KJFK"},
		{"1852", "Cancún International Airport", "Cancun", "Mexico", "CUN", "MMUN"},
	}
	Airlines = [][]string{
		{"1355", "British Airways", "", "BA", "BAW"},
		{"24", "American Airlines", "", "AA", "AAL"},
	}
)

var (
	migrateOnce sync.Once
	migrateErr  error
)

// NewPool opens a pool on TEST_DATABASE_URL. The pool is closed when the
// test finishes.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := requireDSN(t)

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("testutil.NewPool: open pool: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// NewMigratedPool is NewPool on a database with every migration applied.
// Migrations run once per test binary.
func NewMigratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := requireDSN(t)
	migrateOnce.Do(func() { migrateErr = migrateUp(dsn) })
	if migrateErr != nil {
		t.Fatalf("testutil.NewMigratedPool: %v", migrateErr)
	}
	return NewPool(t)
}

// NewSQLDB opens a database/sql handle on TEST_DATABASE_URL for driving
// goose directly. It is closed when the test finishes.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := openSQLDB(requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Execer is satisfied by *pgxpool.Pool, pgx.Tx and *pgx.Conn.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// SeedReference replaces both reference tables with Airports and Airlines.
// Pass a transaction to keep the rows private to one test.
func SeedReference(t *testing.T, db Execer) {
	t.Helper()
	ctx := context.Background()
	seed := []struct {
		table, insert string
		rows          [][]string
	}{
		{"airports", `INSERT INTO airports (id, name, city, country, iata, icao) VALUES ($1, $2, $3, $4, $5, $6)`, Airports},
		{"airlines", `INSERT INTO airlines (id, name, alias, iata, icao) VALUES ($1, $2, NULLIF($3, ''), $4, $5)`, Airlines},
	}
	for _, s := range seed {
		if _, err := db.Exec(ctx, "DELETE FROM "+s.table); err != nil {
			t.Fatalf("testutil.SeedReference: clear %s: %v", s.table, err)
		}
		for _, row := range s.rows {
			id, err := strconv.ParseInt(row[0], 10, 64)
			if err != nil {
				t.Fatalf("testutil.SeedReference: %s id %q: %v", s.table, row[0], err)
			}
			args := []any{id}
			for _, v := range row[1:] {
				args = append(args, v)
			}
			if _, err := db.Exec(ctx, s.insert, args...); err != nil {
				t.Fatalf("testutil.SeedReference: insert into %s: %v", s.table, err)
			}
		}
	}
}

func migrateUp(dsn string) error {
	db, err := openSQLDB(dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	_, err = provider.Up(context.Background())
	return err
}

func openSQLDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}
	return dsn
}
