// Package introspect reconstructs a schema.Database from a live database's
// catalog. The Parser is written once against platform.Platform and reads
// the catalog through db.Querier.
//
// One pass runs four phases in order: discover tables, populate columns,
// then indexes and foreign keys. Columns of every table exist before any
// index or foreign key is read, because foreign keys resolve their target
// table and its primary key from the model built so far.
package introspect

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tordrt/liteschema/internal/db"
	"github.com/tordrt/liteschema/internal/logger"
	"github.com/tordrt/liteschema/internal/platform"
	"github.com/tordrt/liteschema/internal/schema"
)

// Options scope one introspection pass
type Options struct {
	// SchemaName limits discovery to tables stored as "schema<delim>table".
	// Tables without a schema of their own inherit it.
	SchemaName string

	// Tables is an allow-list of unqualified table names. Empty means all
	// tables.
	Tables []string
}

// Option configures a Parser
type Option func(*Parser)

// WithLogger sets the logger used for progress and degraded parses
func WithLogger(l *logger.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.log = l
		}
	}
}

// WithConcurrency bounds how many tables are introspected at once. Values
// below 2 keep the pass strictly sequential.
func WithConcurrency(n int) Option {
	return func(p *Parser) {
		if n > 1 {
			p.concurrency = n
		}
	}
}

// Parser introspects a database through its catalog
type Parser struct {
	q           db.Querier
	platform    platform.Platform
	log         *logger.Logger
	concurrency int
}

// New creates a Parser reading through q with the conventions of p
func New(q db.Querier, p platform.Platform, opts ...Option) *Parser {
	parser := &Parser{
		q:           q,
		platform:    p,
		log:         logger.Nop(),
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(parser)
	}
	return parser
}

// Parse runs one full introspection pass. On error it returns a nil
// Database: a failed pass never yields a partial model.
func (p *Parser) Parse(ctx context.Context, opts Options) (*schema.Database, error) {
	database := schema.NewDatabase(opts.SchemaName)

	if err := p.parseTables(ctx, database, opts.Tables); err != nil {
		return nil, fmt.Errorf("failed to discover tables: %w", err)
	}

	if err := p.forEachTable(ctx, database.Tables, p.addColumns); err != nil {
		return nil, err
	}

	err := p.forEachTable(ctx, database.Tables, func(ctx context.Context, table *schema.Table) error {
		if err := p.addIndexes(ctx, table); err != nil {
			return err
		}
		return p.addForeignKeys(ctx, database, table)
	})
	if err != nil {
		return nil, err
	}

	p.log.InfoWith("introspection complete", map[string]any{
		"platform": p.platform.Name(),
		"schema":   database.SchemaName,
		"tables":   len(database.Tables),
	})
	return database, nil
}

// forEachTable applies fn to every table, on up to p.concurrency workers.
// Each table is only touched by the worker that owns it.
func (p *Parser) forEachTable(ctx context.Context, tables []*schema.Table, fn func(context.Context, *schema.Table) error) error {
	if p.concurrency <= 1 {
		for _, table := range tables {
			if err := fn(ctx, table); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for _, table := range tables {
		g.Go(func() error {
			return fn(gctx, table)
		})
	}
	return g.Wait()
}

func (p *Parser) parseTables(ctx context.Context, database *schema.Database, limitTableNames []string) error {
	query, args := p.platform.TablesQuery(database.SchemaName)
	rows, err := p.q.QueryAll(ctx, query, args...)
	if err != nil {
		return err
	}

	delimiter := p.platform.SchemaDelimiter()
	for _, row := range rows {
		fullName := row.String("name")
		if p.isInternalTable(fullName) {
			continue
		}

		tableSchema, tableName := schema.SplitQualifiedName(fullName, delimiter)

		if len(limitTableNames) > 0 && !slices.Contains(limitTableNames, tableName) {
			continue
		}
		if tableName == p.platform.MigrationTableName() {
			p.log.Debugf("skipping migration table %s", fullName)
			continue
		}

		table := database.AddTable(tableName)
		if tableSchema != "" {
			table.SchemaName = tableSchema
		}
		table.Temporary = row.Bool("temporary")
	}

	p.log.Debugf("discovered %d tables", len(database.Tables))
	return nil
}

func (p *Parser) addColumns(ctx context.Context, table *schema.Table) error {
	tableName := table.FullName(p.platform.SchemaDelimiter())
	log := p.log.With().Str("table", tableName).Logger()

	rows, err := p.q.QueryAll(ctx, p.platform.ColumnsQuery(tableName))
	if err != nil {
		return fmt.Errorf("failed to read columns of %s: %w", tableName, err)
	}

	for _, row := range rows {
		column := table.AddColumn(row.String("name"))
		schema.ParseType(column, row.String("type"))

		column.NotNull = row.Bool("notnull")
		if position := row.Int("pk"); position > 0 {
			column.SetPrimaryKey(int(position))
		}

		raw := row.NullableString("dflt_value")
		column.Default = schema.ResolveDefault(raw)
		if expr, ok := column.Default.Expression(); ok {
			log.Debugf("column %s default kept as expression %s", column.Name, expr)
		}
		if column.Type.IsUntyped() && column.Type.Raw != "" {
			log.Debugf("column %s has unrecognised type %q", column.Name, column.Type.Raw)
		}

		if column.PrimaryKey {
			autoIncrement, err := p.hasAutoIncrement(ctx, tableName)
			if err != nil {
				return fmt.Errorf("failed to check autoincrement of %s: %w", tableName, err)
			}
			column.AutoIncrement = autoIncrement
		}
	}

	log.Debugf("read %d columns", len(table.Columns))
	return nil
}

func (p *Parser) addIndexes(ctx context.Context, table *schema.Table) error {
	tableName := table.FullName(p.platform.SchemaDelimiter())
	log := p.log.With().Str("table", tableName).Logger()

	rows, err := p.q.QueryAll(ctx, p.platform.IndexListQuery(tableName))
	if err != nil {
		return fmt.Errorf("failed to read indexes of %s: %w", tableName, err)
	}

	for _, row := range rows {
		name := row.String("name")
		index := table.AddIndex(p.normalizeIndexName(name), row.Bool("unique"))
		index.Partial = row.Bool("partial")

		info, err := p.q.QueryAll(ctx, p.platform.IndexInfoQuery(name))
		if err != nil {
			return fmt.Errorf("failed to read columns of index %s: %w", name, err)
		}

		hasExpression := false
		for _, indexRow := range info {
			// Expression members have no column name
			if indexRow.IsNull("name") {
				hasExpression = true
				continue
			}
			index.AddColumn(indexRow.String("name"))
		}
		if hasExpression {
			log.Debugf("index %s has expression members that are not recorded", name)
			continue
		}

		if isPrimaryKeyIndex(table, index) {
			table.RemoveIndex(index)
		}
	}

	log.Debugf("read %d indexes", len(table.Indexes))
	return nil
}

func (p *Parser) addForeignKeys(ctx context.Context, database *schema.Database, table *schema.Table) error {
	tableName := table.FullName(p.platform.SchemaDelimiter())

	rows, err := p.q.QueryAll(ctx, p.platform.ForeignKeysQuery(tableName))
	if err != nil {
		return fmt.Errorf("failed to read foreign keys of %s: %w", tableName, err)
	}

	var (
		lastID  int64
		started bool
		fk      *schema.ForeignKey
	)
	for _, row := range rows {
		if id := row.Int("id"); !started || id != lastID {
			started = true
			lastID = id

			foreignTable, err := database.GetTableForFull(row.String("table"), p.platform.SchemaDelimiter())
			if err != nil {
				return fmt.Errorf("foreign key %d of %s: %w", id, tableName, err)
			}

			fk = table.AddForeignKey("", foreignTable)
			if onUpdate := row.String("on_update"); onUpdate != "" {
				fk.OnUpdate = onUpdate
			}
			if onDelete := row.String("on_delete"); onDelete != "" {
				fk.OnDelete = onDelete
			}
		}

		fk.AddReference(row.String("from"), referencedColumn(fk.Foreign, row))
	}

	p.log.With().Str("table", tableName).Logger().Debugf("read %d foreign keys", len(table.ForeignKeys))
	return nil
}

// hasAutoIncrement reports whether the stored creation statement of
// tableName carries the autoincrement keyword. No matching row, or a row for
// another table, means false.
func (p *Parser) hasAutoIncrement(ctx context.Context, tableName string) (bool, error) {
	query, args := p.platform.AutoIncrementQuery(tableName)
	row, err := p.q.QuerySingle(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return row != nil && row.String("tbl_name") == tableName, nil
}

func (p *Parser) isInternalTable(name string) bool {
	prefix := p.platform.InternalTablePrefix()
	return prefix != "" && strings.HasPrefix(name, prefix)
}

// normalizeIndexName maps engine-generated index names to ""
func (p *Parser) normalizeIndexName(name string) string {
	prefix := p.platform.AutoIndexPrefix()
	if prefix != "" && strings.HasPrefix(name, prefix) {
		return ""
	}
	return name
}

// isPrimaryKeyIndex reports whether index only restates the table's first
// primary-key column.
func isPrimaryKeyIndex(table *schema.Table, index *schema.Index) bool {
	if len(index.Columns) != 1 || !table.HasPrimaryKey() {
		return false
	}
	return table.PrimaryKeys()[0].Name == index.Columns[0]
}

// referencedColumn returns the row's target column. A NULL target means the
// constraint points at the foreign table's primary key, matched by position.
func referencedColumn(foreign *schema.Table, row db.Row) string {
	if !row.IsNull("to") {
		return row.String("to")
	}
	if foreign == nil {
		return ""
	}
	keys := foreign.PrimaryKeys()
	seq := int(row.Int("seq"))
	if seq < 0 || seq >= len(keys) {
		return ""
	}
	return keys[seq].Name
}
