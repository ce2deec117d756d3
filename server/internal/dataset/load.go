package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"

	_ "github.com/lib/pq"  // postgres driver for DSN sources
	_ "modernc.org/sqlite" // sqlite driver for .db files and DSN sources
)

// DefaultTable is the table read from SQL sources when none is configured.
const DefaultTable = "launches"

// LoadFile loads the dataset at path, choosing the loader by extension:
// .csv, .xlsx, or .db/.sqlite/.sqlite3 (read from table, DefaultTable if empty).
func LoadFile(ctx context.Context, path, table string, opts Options) (*Dataset, error) {
	var (
		ds  *Dataset
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		f, openErr := os.Open(path)
		if openErr != nil {
			return nil, loadErr(path, 0, "", openErr)
		}
		defer f.Close()
		ds, err = LoadCSV(f, path, opts)
	case ".xlsx":
		ds, err = LoadXLSX(path, opts)
	case ".db", ".sqlite", ".sqlite3":
		if _, statErr := os.Stat(path); statErr != nil {
			return nil, loadErr(path, 0, "", statErr)
		}
		ds, err = LoadDSN(ctx, "sqlite", path, table, opts)
	default:
		return nil, loadErr(path, 0, "", fmt.Errorf("%w: unsupported file type %q", ErrInvalidValue, ext))
	}
	if err != nil {
		return nil, err
	}

	slog.Info("dataset: loaded",
		"source", ds.Source(),
		"records", ds.Len(),
		"sites", len(ds.sites),
		"min_payload", ds.MinPayload(),
		"max_payload", ds.MaxPayload(),
	)
	return ds, nil
}

// LoadDSN opens driver/dsn ("sqlite" or "postgres"), reads table and closes
// the connection again; the dataset is fully materialized before returning.
func LoadDSN(ctx context.Context, driver, dsn, table string, opts Options) (*Dataset, error) {
	if table == "" {
		table = DefaultTable
	}
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, loadErr(table, 0, "", fmt.Errorf("connect %s: %w", driver, err))
	}
	defer db.Close()
	return LoadSQL(ctx, db, table, opts)
}
