// Package liteschema introspects live SQLite databases and renders the
// reconstructed schema: tables, columns, indexes and foreign keys.
//
// The schema is read from SQLite's own catalog (sqlite_master and the
// table_info, index_list, index_info and foreign_key_list pragmas) and
// rebuilt as a structural model suitable for diffing, migration generation
// or code generation.
//
// # Quick Start
//
// The simplest way to use this package is with IntrospectAndFormat:
//
//	err := liteschema.IntrospectAndFormat(
//		context.Background(),
//		"sqlite://data/app.db",
//		&liteschema.Options{ExcludeTables: []string{"audit_log"}},
//		&liteschema.OutputOptions{OutputDir: "docs/db-schema", Format: "markdown"},
//	)
//
// # Database URLs
//
// Supported forms:
//   - sqlite://path/to/database.db
//   - file:path/to/database.db?mode=ro (passed to the driver unchanged)
//   - path/to/database.db or :memory:
//
// # Schemas
//
// SQLite has no schemas inside one database file. Tables named
// "schema§table" are treated as belonging to schema "schema"; set
// Options.SchemaName to introspect only those tables.
//
// # Output Formats
//
// Single-file output writes all tables to one writer:
//
//	&OutputOptions{Writer: os.Stdout, Format: "text"}
//
// Multi-file output creates a directory with an overview and one file per table:
//
//	&OutputOptions{OutputDir: "docs/schema", Format: "markdown"}
//
// Formats are text (default), markdown, yaml and json.
package liteschema

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tordrt/liteschema/internal/db"
	"github.com/tordrt/liteschema/internal/errs"
	"github.com/tordrt/liteschema/internal/formatter"
	"github.com/tordrt/liteschema/internal/introspect"
	"github.com/tordrt/liteschema/internal/logger"
	"github.com/tordrt/liteschema/internal/platform"
	"github.com/tordrt/liteschema/internal/schema"
)

// Options configures schema introspection.
//
// All fields are optional. If not specified:
//   - Tables: nil introspects all tables
//   - ExcludeTables: empty list excludes no tables
//   - SchemaName: empty introspects every table, qualified or not
//   - MigrationTable: "goose_db_version"
//   - Driver: "sqlite3" (cgo, mattn/go-sqlite3)
//   - Concurrency: 1, strictly sequential
//
// Note: Tables limits discovery, while ExcludeTables is applied to the
// finished model by IntrospectAndFormat. A foreign key into a table that
// Tables leaves out fails the introspection.
type Options struct {
	// Tables specifies which tables to introspect, by unqualified name.
	// If nil or empty, all tables are introspected.
	// Example: []string{"users", "orders", "products"}
	Tables []string

	// ExcludeTables specifies tables to drop from the output.
	// Useful for omitting audit logs or scratch tables.
	// Example: []string{"audit_log"}
	ExcludeTables []string

	// SchemaName limits introspection to tables stored as "SchemaName§table".
	SchemaName string

	// MigrationTable names the migration bookkeeping table to skip.
	// Defaults to goose's "goose_db_version".
	MigrationTable string

	// Driver selects the database/sql driver: "sqlite3" for the cgo driver
	// or "sqlite" for the pure-Go driver.
	Driver string

	// Concurrency bounds how many tables are introspected at once.
	Concurrency int

	// Logger receives progress output. Nil falls back to the logger stored
	// in the context, if any.
	Logger *logger.Logger
}

// OutputOptions configures schema output formatting.
//
// Choose between single-file and multi-file output:
//
// Single-file (Writer): All tables in one document
//
//	&OutputOptions{Writer: os.Stdout}
//
// Multi-file (OutputDir): Creates _overview.<ext> + one file per table
//
//	&OutputOptions{OutputDir: "docs/schema"}
//
// If both are specified, OutputDir takes precedence and Writer is ignored.
// If neither is specified, defaults to single-file output to os.Stdout.
type OutputOptions struct {
	// Writer specifies where to write single-file output.
	// Ignored if OutputDir is set.
	Writer io.Writer

	// OutputDir specifies the directory for multi-file output.
	// The directory will be created if it doesn't exist.
	OutputDir string

	// Format is one of "text" (default), "markdown", "yaml" or "json".
	Format string
}

// IntrospectAndFormat introspects a database and renders it in one call.
//
// Tables in opts.ExcludeTables are removed after introspection, before
// rendering.
//
// Example (single-file to stdout):
//
//	err := liteschema.IntrospectAndFormat(ctx, "sqlite://data.db", nil, nil)
func IntrospectAndFormat(ctx context.Context, databaseURL string, opts *Options, outOpts *OutputOptions) error {
	database, err := Introspect(ctx, databaseURL, opts)
	if err != nil {
		return err
	}

	if opts != nil && len(opts.ExcludeTables) > 0 {
		ExcludeTables(database, opts.ExcludeTables)
	}

	return Format(database, outOpts)
}

// Introspect opens the database at databaseURL and reconstructs its schema.
//
// Use this function when you need to inspect or modify the model before
// formatting. It does not apply ExcludeTables.
//
// Returns an error if:
//   - the URL is invalid
//   - the database cannot be opened
//   - any catalog query fails
//   - a foreign key references a table missing from the model
//
// On error no partial model is returned.
//
// Example (specific tables):
//
//	database, err := liteschema.Introspect(ctx, "sqlite://app.db", &liteschema.Options{
//		Tables: []string{"users", "orders"},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("Found %d tables\n", len(database.Tables))
func Introspect(ctx context.Context, databaseURL string, opts *Options) (*schema.Database, error) {
	if opts == nil {
		opts = &Options{}
	}

	path, err := parseDatabaseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	client, err := db.NewSQLiteClient(ctx, path, db.WithDriver(opts.Driver))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}
	defer func() { _ = client.Close() }()

	return introspectClient(ctx, client, opts)
}

// IntrospectDB reconstructs the schema through an already opened handle.
// The handle stays open.
func IntrospectDB(ctx context.Context, sqlDB *sql.DB, opts *Options) (*schema.Database, error) {
	if opts == nil {
		opts = &Options{}
	}
	return introspectClient(ctx, db.NewClientFromDB(sqlDB), opts)
}

func introspectClient(ctx context.Context, q db.Querier, opts *Options) (*schema.Database, error) {
	log := opts.Logger
	if log == nil {
		log = logger.FromContext(ctx)
	}
	parser := introspect.New(q, platform.NewSQLite(opts.MigrationTable),
		introspect.WithLogger(log),
		introspect.WithConcurrency(opts.Concurrency),
	)
	return parser.Parse(ctx, introspect.Options{
		SchemaName: opts.SchemaName,
		Tables:     opts.Tables,
	})
}

// Format renders a model and writes it to the specified output.
//
// Use this function when you've already introspected a database with
// Introspect and potentially modified the model.
func Format(database *schema.Database, opts *OutputOptions) error {
	if opts == nil {
		opts = &OutputOptions{Writer: os.Stdout}
	}

	// Multi-file output
	if opts.OutputDir != "" {
		return formatter.NewMultiFileFormatter(opts.OutputDir, opts.Format).Format(database)
	}

	// Single-file output
	writer := opts.Writer
	if writer == nil {
		writer = os.Stdout
	}
	f, err := formatter.New(opts.Format, writer)
	if err != nil {
		return err
	}
	return f.Format(database)
}

// parseDatabaseURL returns the path or DSN to hand to the SQLite driver
func parseDatabaseURL(url string) (string, error) {
	if url == "" {
		return "", errs.New(errs.ErrKindInvalidInput, "database URL is required")
	}

	if path, ok := strings.CutPrefix(url, "sqlite://"); ok {
		if path == "" {
			return "", errs.New(errs.ErrKindInvalidInput, "database URL has no path")
		}
		return path, nil
	}

	// SQLite URI filenames are understood by both drivers
	if strings.HasPrefix(url, "file:") {
		return url, nil
	}

	if scheme, _, ok := strings.Cut(url, "://"); ok {
		return "", errs.Newf(errs.ErrKindInvalidInput, "unsupported database URL scheme %q (use sqlite://, file: or a path)", scheme)
	}

	return url, nil
}

// ExcludeTables drops tables matched by unqualified name, by "schema.table"
// or by the stored "schema§table" form. IntrospectAndFormat applies it for
// Options.ExcludeTables.
func ExcludeTables(database *schema.Database, excludeList []string) {
	if len(excludeList) == 0 {
		return
	}

	excludeSet := make(map[string]bool)
	for _, tableName := range excludeList {
		excludeSet[tableName] = true
	}

	delimiter := platform.NewSQLite("").SchemaDelimiter()
	filteredTables := make([]*schema.Table, 0, len(database.Tables))
	for _, table := range database.Tables {
		if !excludeSet[table.Name] && !excludeSet[table.FullName(".")] && !excludeSet[table.FullName(delimiter)] {
			filteredTables = append(filteredTables, table)
		}
	}
	database.Tables = filteredTables
}
