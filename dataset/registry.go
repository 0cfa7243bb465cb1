package dataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Registry stores finalized datasets by name. Implementations are safe for concurrent use.
type Registry interface {
	// Put stores ds under ds.Name, assigning ds.ID when empty. An existing dataset of the
	// same name is replaced when replace is true; otherwise ErrNameConflict is returned.
	Put(ctx context.Context, ds *Dataset, replace bool) error
	// Get returns the dataset called name or ErrNotFound.
	Get(ctx context.Context, name string) (*Dataset, error)
	// List returns summaries ordered by name.
	List(ctx context.Context) ([]Summary, error)
	// Delete removes the dataset called name or returns ErrNotFound.
	Delete(ctx context.Context, name string) error
	// Close releases resources.
	Close() error
}

// Drivers accepted by Open.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverDuckDB = "duckdb"
)

// Open returns the registry for driver. dsn is ignored for the memory driver.
func Open(ctx context.Context, driver, dsn string) (Registry, error) {
	switch strings.ToLower(driver) {
	case "", DriverMemory:
		return NewMemoryRegistry(), nil
	case DriverSQLite:
		return OpenSQL(ctx, DialectSQLite, dsn)
	case DriverDuckDB:
		return OpenSQL(ctx, DialectDuckDB, dsn)
	default:
		return nil, fmt.Errorf("dataset: unknown registry driver %q", driver)
	}
}

func prepare(ds *Dataset) error {
	if ds == nil {
		return fmt.Errorf("dataset: nil dataset")
	}
	if err := ValidateName(ds.Name); err != nil {
		return err
	}
	if ds.Data == nil || ds.Data.Rows() != len(ds.CaseIDs) || ds.Data.Cols() != len(ds.Columns) {
		return fmt.Errorf("dataset %s: data shape does not match columns and case IDs", ds.Name)
	}
	if ds.ID == "" {
		ds.ID = uuid.New().String()
	}
	return nil
}
