package db

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/tordrt/liteschema/internal/errs"
)

const (
	// DriverCGO is the cgo-based mattn/go-sqlite3 driver
	DriverCGO = "sqlite3"
	// DriverPure is the pure-Go modernc.org/sqlite driver
	DriverPure = "sqlite"
)

// SQLiteClient manages the connection to SQLite
type SQLiteClient struct {
	db *sql.DB
}

// ClientOption configures NewSQLiteClient
type ClientOption func(*clientOptions)

type clientOptions struct {
	driver string
}

// WithDriver selects the database/sql driver, DriverCGO (default) or DriverPure
func WithDriver(name string) ClientOption {
	return func(o *clientOptions) {
		if name != "" {
			o.driver = name
		}
	}
}

// NewSQLiteClient creates a new SQLite client
func NewSQLiteClient(ctx context.Context, path string, opts ...ClientOption) (*SQLiteClient, error) {
	o := clientOptions{driver: DriverCGO}
	for _, opt := range opts {
		opt(&o)
	}
	if o.driver != DriverCGO && o.driver != DriverPure {
		return nil, errs.Newf(errs.ErrKindInvalidInput, "unsupported sqlite driver %q", o.driver)
	}
	if path == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "database path is required")
	}

	db, err := sql.Open(o.driver, path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnection, "failed to open database", err)
	}

	// Every connection to ":memory:" gets its own empty database
	if isMemoryPath(path) {
		db.SetMaxOpenConns(1)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errs.Wrap(errs.ErrKindConnection, "failed to ping database", err)
	}

	return &SQLiteClient{db: db}, nil
}

// NewClientFromDB wraps an already opened database handle. The caller keeps
// ownership of its lifecycle unless Close is called on the client.
func NewClientFromDB(db *sql.DB) *SQLiteClient {
	return &SQLiteClient{db: db}
}

// Close closes the database connection
func (c *SQLiteClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *SQLiteClient) GetDB() *sql.DB {
	return c.db
}

// QueryAll implements Querier
func (c *SQLiteClient) QueryAll(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.WrapQuery(describe(query), err)
	}
	result, err := scanRows(rows, 0)
	if err != nil {
		return nil, errs.WrapQuery(describe(query), err)
	}
	return result, nil
}

// QuerySingle implements Querier
func (c *SQLiteClient) QuerySingle(ctx context.Context, query string, args ...any) (Row, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.WrapQuery(describe(query), err)
	}
	result, err := scanRows(rows, 1)
	if err != nil {
		return nil, errs.WrapQuery(describe(query), err)
	}
	if len(result) == 0 {
		return nil, nil
	}
	return result[0], nil
}

func isMemoryPath(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

// describe condenses a query to one line for error messages
func describe(query string) string {
	return "catalog query failed: " + strings.Join(strings.Fields(query), " ")
}
