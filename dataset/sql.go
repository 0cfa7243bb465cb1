package dataset

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/marcboeker/go-duckdb" // DuckDB driver
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/katalvlaran/makecases/matrix"
)

// Dialect selects the SQL backend of an SQLRegistry.
type Dialect string

// Supported dialects. The value doubles as the database/sql driver name.
const (
	DialectSQLite Dialect = "sqlite"
	DialectDuckDB Dialect = "duckdb"
)

//go:embed migrations/*.sql
var migrations embed.FS

//go:embed schema_duckdb.sql
var duckdbSchema string

// goose keeps its base FS and dialect in package state.
var gooseMu sync.Mutex

// SQLRegistry persists datasets in one table. Data is stored in matrix token form,
// which round-trips every float64 exactly.
type SQLRegistry struct {
	db      *sql.DB
	dialect Dialect
}

var _ Registry = (*SQLRegistry)(nil)

// NewSQLRegistry wraps an open database. It does not create the schema; see Migrate.
func NewSQLRegistry(db *sql.DB, dialect Dialect) *SQLRegistry {
	return &SQLRegistry{db: db, dialect: dialect}
}

// OpenSQL opens dsn with the dialect's driver, pings it and applies the schema.
// Use ":memory:" for a throwaway SQLite database.
func OpenSQL(ctx context.Context, dialect Dialect, dsn string) (*SQLRegistry, error) {
	if dialect != DialectSQLite && dialect != DialectDuckDB {
		return nil, fmt.Errorf("dataset: unsupported dialect %q", dialect)
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// Each SQLite connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dialect, err)
	}
	r := NewSQLRegistry(db, dialect)
	if err = r.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// Migrate brings the schema up to date. SQLite runs the embedded goose migrations;
// DuckDB, which goose has no dialect for, applies the equivalent schema directly.
func (r *SQLRegistry) Migrate(ctx context.Context) error {
	if r.dialect == DialectDuckDB {
		if _, err := r.db.ExecContext(ctx, duckdbSchema); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
		return nil
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, r.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Put implements Registry inside one transaction.
func (r *SQLRegistry) Put(ctx context.Context, ds *Dataset, replace bool) (err error) {
	if err = prepare(ds); err != nil {
		return err
	}
	meta, err := json.Marshal(ds.Meta)
	if err != nil {
		return fmt.Errorf("failed to encode meta: %w", err)
	}
	data, err := matrix.FormatTokens(ds.Data)
	if err != nil {
		return fmt.Errorf("failed to encode data: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var existing string
	err = tx.QueryRowContext(ctx, `SELECT id FROM datasets WHERE name = ?`, ds.Name).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = nil
	case err != nil:
		return fmt.Errorf("failed to look up dataset %s: %w", ds.Name, err)
	case !replace:
		err = fmt.Errorf("%w: %s", ErrNameConflict, ds.Name)
		return err
	default:
		if _, err = tx.ExecContext(ctx, `DELETE FROM datasets WHERE name = ?`, ds.Name); err != nil {
			return fmt.Errorf("failed to replace dataset %s: %w", ds.Name, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO datasets (id, name, numvars, numcases, meta, data, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ds.ID, ds.Name, ds.NumVars(), ds.NumCases(), string(meta), data, ds.Meta.Created.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert dataset %s: %w", ds.Name, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dataset %s: %w", ds.Name, err)
	}
	return nil
}

// Get implements Registry.
func (r *SQLRegistry) Get(ctx context.Context, name string) (*Dataset, error) {
	var (
		s          Summary
		meta, data string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, numvars, numcases, meta, data FROM datasets WHERE name = ?`, name,
	).Scan(&s.ID, &s.Name, &s.NumVars, &s.NumCases, &meta, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset %s: %w", name, err)
	}
	if err = json.Unmarshal([]byte(meta), &s.Meta); err != nil {
		return nil, fmt.Errorf("failed to decode meta of %s: %w", name, err)
	}
	m, err := matrix.ParseTokens(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data of %s: %w", name, err)
	}
	if m.Rows() != s.NumCases || m.Cols() != s.NumVars {
		return nil, fmt.Errorf("dataset %s: stored data is %d×%d, want %d×%d",
			name, m.Rows(), m.Cols(), s.NumCases, s.NumVars)
	}
	ds, err := New(s.Name, m, s.Meta)
	if err != nil {
		return nil, err
	}
	ds.ID = s.ID
	return ds, nil
}

// List implements Registry.
func (r *SQLRegistry) List(ctx context.Context) ([]Summary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, numvars, numcases, meta FROM datasets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			s    Summary
			meta string
		)
		if err = rows.Scan(&s.ID, &s.Name, &s.NumVars, &s.NumCases, &meta); err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		if err = json.Unmarshal([]byte(meta), &s.Meta); err != nil {
			return nil, fmt.Errorf("failed to decode meta of %s: %w", s.Name, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete implements Registry.
func (r *SQLRegistry) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM datasets WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete dataset %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete dataset %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// Close closes the database.
func (r *SQLRegistry) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}
