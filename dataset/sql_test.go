package dataset_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/katalvlaran/makecases/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *dataset.SQLRegistry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.db")
	reg, err := dataset.OpenSQL(context.Background(), dataset.DialectSQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })
	return reg
}

func TestSQLRegistry_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	reg := openSQLite(t)

	ds := sampleDataset(t, "wave1", [][]float64{{0.1, -2.5e-7}, {3.141592653589793, 1e300}})
	require.NoError(t, reg.Put(ctx, ds, false))

	got, err := reg.Get(ctx, "wave1")
	require.NoError(t, err)
	assert.Equal(t, ds.ID, got.ID)
	assert.Equal(t, ds.Data.ToRows(), got.Data.ToRows())
	assert.Equal(t, ds.Columns, got.Columns)
	assert.Equal(t, ds.CaseIDs, got.CaseIDs)
	assert.Equal(t, ds.Meta.Seed, got.Meta.Seed)
	assert.Equal(t, ds.Meta.Target, got.Meta.Target)
	assert.True(t, ds.Meta.Created.Equal(got.Meta.Created))
}

func TestSQLRegistry_SQLiteReplaceAndConflict(t *testing.T) {
	ctx := context.Background()
	reg := openSQLite(t)

	require.NoError(t, reg.Put(ctx, sampleDataset(t, "d", [][]float64{{1}}), false))
	require.ErrorIs(t, reg.Put(ctx, sampleDataset(t, "d", [][]float64{{2}}), false), dataset.ErrNameConflict)

	got, err := reg.Get(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1}}, got.Data.ToRows())

	require.NoError(t, reg.Put(ctx, sampleDataset(t, "d", [][]float64{{2}, {3}}), true))
	got, err = reg.Get(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{2}, {3}}, got.Data.ToRows())

	list, err := reg.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].NumCases)
	assert.Equal(t, "EQUAL", list[0].Meta.Structure)

	require.NoError(t, reg.Delete(ctx, "d"))
	require.ErrorIs(t, reg.Delete(ctx, "d"), dataset.ErrNotFound)
	_, err = reg.Get(ctx, "d")
	require.ErrorIs(t, err, dataset.ErrNotFound)
}

func TestSQLRegistry_MigrateIsIdempotent(t *testing.T) {
	reg := openSQLite(t)
	require.NoError(t, reg.Migrate(context.Background()))
}

func TestSQLRegistry_ErrorPaths(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		run       func(reg *dataset.SQLRegistry) error
		errMsg    string
	}{
		{
			name: "begin fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(assert.AnError)
			},
			run: func(reg *dataset.SQLRegistry) error {
				return reg.Put(context.Background(), sampleDataset(t, "x", [][]float64{{1}}), true)
			},
			errMsg: "failed to begin transaction",
		},
		{
			name: "insert fails and rolls back",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("SELECT id FROM datasets").WithArgs("x").
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
				mock.ExpectExec("INSERT INTO datasets").WillReturnError(assert.AnError)
				mock.ExpectRollback()
			},
			run: func(reg *dataset.SQLRegistry) error {
				return reg.Put(context.Background(), sampleDataset(t, "x", [][]float64{{1}}), true)
			},
			errMsg: "failed to insert dataset x",
		},
		{
			name: "conflict rolls back",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("SELECT id FROM datasets").WithArgs("x").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("old"))
				mock.ExpectRollback()
			},
			run: func(reg *dataset.SQLRegistry) error {
				return reg.Put(context.Background(), sampleDataset(t, "x", [][]float64{{1}}), false)
			},
			errMsg: "name already in use",
		},
		{
			name: "list query fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, name, numvars, numcases, meta FROM datasets").WillReturnError(assert.AnError)
			},
			run: func(reg *dataset.SQLRegistry) error {
				_, err := reg.List(context.Background())
				return err
			},
			errMsg: "failed to list datasets",
		},
		{
			name: "corrupt stored data",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, name, numvars, numcases, meta, data FROM datasets").WithArgs("x").
					WillReturnRows(sqlmock.NewRows([]string{"id", "name", "numvars", "numcases", "meta", "data"}).
						AddRow("id1", "x", 1, 1, `{"distribution":"normal(0,1)"}`, "abc"))
			},
			run: func(reg *dataset.SQLRegistry) error {
				_, err := reg.Get(context.Background(), "x")
				return err
			},
			errMsg: "failed to decode data of x",
		},
		{
			name: "delete of missing name",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM datasets").WithArgs("x").WillReturnResult(sqlmock.NewResult(0, 0))
			},
			run: func(reg *dataset.SQLRegistry) error {
				return reg.Delete(context.Background(), "x")
			},
			errMsg: "dataset: not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.setupMock(mock)

			reg := dataset.NewSQLRegistry(db, dataset.DialectSQLite)
			err = tt.run(reg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSQLRegistry_DuckDBDialect(t *testing.T) {
	schema, err := os.ReadFile("schema_duckdb.sql")
	require.NoError(t, err)
	ds := sampleDataset(t, "x", [][]float64{{1}})
	ds.ID = "0b6f5c1e-duck"

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		run       func(reg *dataset.SQLRegistry) error
		errMsg    string
	}{
		{
			name: "migrate applies the schema directly",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(string(schema)).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			run: func(reg *dataset.SQLRegistry) error {
				return reg.Migrate(context.Background())
			},
		},
		{
			name: "migrate failure",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(string(schema)).WillReturnError(assert.AnError)
			},
			run: func(reg *dataset.SQLRegistry) error {
				return reg.Migrate(context.Background())
			},
			errMsg: "failed to initialize schema",
		},
		{
			name: "put replaces with positional placeholders",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT id FROM datasets WHERE name = ?`).WithArgs("x").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("old"))
				mock.ExpectExec(`DELETE FROM datasets WHERE name = ?`).WithArgs("x").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`INSERT INTO datasets (id, name, numvars, numcases, meta, data, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`).
					WithArgs(ds.ID, "x", int64(1), int64(1), sqlmock.AnyArg(), sqlmock.AnyArg(), "2024-03-01T12:00:00Z").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			run: func(reg *dataset.SQLRegistry) error {
				return reg.Put(context.Background(), ds, true)
			},
		},
		{
			name: "put conflict rolls back",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT id FROM datasets WHERE name = ?`).WithArgs("x").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("old"))
				mock.ExpectRollback()
			},
			run: func(reg *dataset.SQLRegistry) error {
				return reg.Put(context.Background(), ds, false)
			},
			errMsg: "name already in use",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
			require.NoError(t, err)
			defer db.Close()
			tt.setupMock(mock)

			reg := dataset.NewSQLRegistry(db, dataset.DialectDuckDB)
			err = tt.run(reg)
			if tt.errMsg == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
