// Package platform describes the dialect-specific side of introspection:
// naming conventions and the catalog queries that enumerate tables, columns,
// indexes and foreign keys. The introspection parser is written once against
// Platform; each supported database provides one implementation.
//
// Catalog queries must return rows using the column names of SQLite's
// pragmas (name, type, notnull, dflt_value, pk, unique, partial, id, table,
// from, to, on_update, on_delete). Implementations for other engines alias
// their catalog columns accordingly.
package platform

// Platform is the dialect capability consumed by the introspection parser
type Platform interface {
	// Name identifies the dialect, e.g. "sqlite".
	Name() string

	// SchemaDelimiter separates schema and table in qualified table names.
	SchemaDelimiter() string

	// QuoteValue renders s as a string literal.
	QuoteValue(s string) string

	// QuoteIdentifier renders s as a quoted identifier.
	QuoteIdentifier(s string) string

	// InternalTablePrefix marks tables the engine keeps for itself.
	InternalTablePrefix() string

	// AutoIndexPrefix marks indexes the engine generated to enforce a
	// PRIMARY KEY or UNIQUE constraint.
	AutoIndexPrefix() string

	// AutoIncrementKeyword is searched for in a table's creation statement.
	AutoIncrementKeyword() string

	// MigrationTableName is the migration bookkeeping table to skip.
	MigrationTableName() string

	// TablesQuery lists tables (column "name", optionally "temporary"),
	// restricted to schemaName when it is not empty.
	TablesQuery(schemaName string) (query string, args []any)

	// ColumnsQuery lists a table's columns in declaration order.
	ColumnsQuery(table string) string

	// IndexListQuery lists a table's indexes.
	IndexListQuery(table string) string

	// IndexInfoQuery lists an index's member columns in key order.
	IndexInfoQuery(index string) string

	// ForeignKeysQuery lists a table's foreign keys, one row per column pair.
	ForeignKeysQuery(table string) string

	// AutoIncrementQuery returns at most one row (column "tbl_name") when
	// the table's creation statement contains AutoIncrementKeyword.
	AutoIncrementQuery(table string) (query string, args []any)
}
