package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-sql-driver/mysql"
)

const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// ErrNotSQLite is returned by operations that only make sense on a local sqlite file.
var ErrNotSQLite = errors.New("operation requires the sqlite driver")

// DB is a database handle bound to the SQL dialect of its driver.
type DB struct {
	*sql.DB
	dialect dialect
}

// Open opens a database for driver. For sqlite, source is a file path whose
// directories are created as needed; for mysql and postgres it is a DSN.
func Open(driver, source string) (*DB, error) {
	d, ok := dialects[strings.ToLower(strings.TrimSpace(driver))]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("%s: data source is required", d.name)
	}

	dsn, err := d.prepare(source)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", d.name, err)
	}

	if d.configure != nil {
		if err := d.configure(db); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &DB{DB: db, dialect: d}, nil
}

// Driver reports the configured driver name.
func (db *DB) Driver() string {
	return db.dialect.name
}

// SnapshotTo writes a consistent copy of a sqlite database to path.
func (db *DB) SnapshotTo(ctx context.Context, path string) error {
	if db.dialect.name != DriverSQLite {
		return ErrNotSQLite
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if _, err := db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return fmt.Errorf("vacuum into %s: %w", path, err)
	}
	return nil
}

func prepareSQLite(path string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create db dir: %w", err)
	}
	return path, nil
}

func configureSQLite(db *sql.DB) error {
	// a single connection serializes writers on the file
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	return nil
}

// prepareMySQL forces ClientFoundRows so an update that leaves values unchanged
// still reports the matched row.
func prepareMySQL(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

func preparePostgres(dsn string) (string, error) {
	return dsn, nil
}
