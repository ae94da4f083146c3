// Package repo contains all database access logic for the trip planner.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/reference"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// nullMarker is how the CSV datasets spell a missing value. It is stored as NULL.
const nullMarker = `\N`

// ReferenceRepo stores the airport and airline tables. Columns are named after
// schema fields, so a row read back has every field at its schema position.
// It implements reference.Source.
type ReferenceRepo struct {
	db     db
	schema reference.Schema
}

// compile-time check: ReferenceRepo can feed reference.Load.
var _ reference.Source = (*ReferenceRepo)(nil)

// NewReferenceRepo constructs a ReferenceRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewReferenceRepo(db db, schema reference.Schema) *ReferenceRepo {
	return &ReferenceRepo{db: db, schema: schema}
}

// Rows returns every row of table in insertion order. Each row is as wide as
// the schema requires; positions no field claims are left empty.
// Returns domain.ErrNotFound when the table is empty.
func (r *ReferenceRepo) Rows(ctx context.Context, table string) ([][]string, error) {
	ts, err := r.schema.Table(table)
	if err != nil {
		return nil, fmt.Errorf("repo.ReferenceRepo.Rows: %w", err)
	}
	fields := ts.Fields()
	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", columnList(fields), pgx.Identifier{table}.Sanitize())

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.ReferenceRepo.Rows: %w", err)
	}
	defer rows.Close()

	width := ts.Width()
	var out [][]string
	for rows.Next() {
		vals := make([]pgtype.Text, len(fields))
		dest := make([]any, len(fields))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("repo.ReferenceRepo.Rows: scan: %w", err)
		}
		row := make([]string, width)
		for i, f := range fields {
			if vals[i].Valid {
				row[ts[f]] = vals[i].String
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ReferenceRepo.Rows: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("repo.ReferenceRepo.Rows: %s: %w", table, domain.ErrNotFound)
	}
	return out, nil
}

// Replace swaps the contents of table for rows in one transaction. Rows are
// positional, in the same layout the CSV datasets use. Readers never see a
// partially loaded table. Returns the number of rows written.
func (r *ReferenceRepo) Replace(ctx context.Context, table string, rows [][]string) (int64, error) {
	ts, err := r.schema.Table(table)
	if err != nil {
		return 0, fmt.Errorf("repo.ReferenceRepo.Replace: %w", err)
	}
	fields := ts.Fields()
	width := ts.Width()

	values := make([][]any, len(rows))
	for i, row := range rows {
		if len(row) < width {
			return 0, fmt.Errorf("repo.ReferenceRepo.Replace: %s row %d: %d columns, need %d", table, i+1, len(row), width)
		}
		vals := make([]any, len(fields))
		for j, f := range fields {
			if v := row[ts[f]]; v != nullMarker {
				vals[j] = v
			}
		}
		values[i] = vals
	}

	var n int64
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM "+pgx.Identifier{table}.Sanitize()); err != nil {
			return err
		}
		copied, err := tx.CopyFrom(ctx, pgx.Identifier{table}, fields, pgx.CopyFromRows(values))
		n = copied
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("repo.ReferenceRepo.Replace: %s: %w", table, err)
	}
	return n, nil
}

// Count returns the number of rows in table.
func (r *ReferenceRepo) Count(ctx context.Context, table string) (int64, error) {
	if _, err := r.schema.Table(table); err != nil {
		return 0, fmt.Errorf("repo.ReferenceRepo.Count: %w", err)
	}
	rows, err := r.db.Query(ctx, "SELECT count(*) FROM "+pgx.Identifier{table}.Sanitize())
	if err != nil {
		return 0, fmt.Errorf("repo.ReferenceRepo.Count: %w", err)
	}
	n, err := pgx.CollectExactlyOneRow(rows, pgx.RowTo[int64])
	if err != nil {
		return 0, fmt.Errorf("repo.ReferenceRepo.Count: %w", err)
	}
	return n, nil
}

func columnList(fields []string) string {
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = pgx.Identifier{f}.Sanitize()
	}
	return strings.Join(cols, ", ")
}

// IsEmpty reports whether err means a reference table has no rows yet.
func IsEmpty(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
