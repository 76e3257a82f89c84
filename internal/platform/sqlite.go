package platform

import (
	"fmt"
	"strings"
)

const (
	// DefaultMigrationTable is the version table goose keeps in migrated
	// databases.
	DefaultMigrationTable = "goose_db_version"

	// SQLiteSchemaDelimiter joins schema and table into one SQLite table
	// name. SQLite has no schemas inside a database file, so schema-scoped
	// tables are stored as "schema§table".
	SQLiteSchemaDelimiter = "§"
)

// SQLite is the Platform for SQLite databases
type SQLite struct {
	migrationTable string
}

// NewSQLite creates the SQLite platform. An empty migrationTable selects
// DefaultMigrationTable.
func NewSQLite(migrationTable string) *SQLite {
	if migrationTable == "" {
		migrationTable = DefaultMigrationTable
	}
	return &SQLite{migrationTable: migrationTable}
}

func (p *SQLite) Name() string                 { return "sqlite" }
func (p *SQLite) SchemaDelimiter() string      { return SQLiteSchemaDelimiter }
func (p *SQLite) InternalTablePrefix() string  { return "sqlite_" }
func (p *SQLite) AutoIndexPrefix() string      { return "sqlite_autoindex" }
func (p *SQLite) AutoIncrementKeyword() string { return "AUTOINCREMENT" }
func (p *SQLite) MigrationTableName() string   { return p.migrationTable }

// QuoteValue renders s as a single-quoted SQL string literal
func (p *SQLite) QuoteValue(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// QuoteIdentifier renders s as a double-quoted identifier
func (p *SQLite) QuoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// TablesQuery lists regular and temporary tables ordered by name
func (p *SQLite) TablesQuery(schemaName string) (string, []any) {
	filter := ""
	var args []any
	if schemaName != "" {
		filter = `AND name LIKE ? ESCAPE '\'`
		pattern := escapeLike(schemaName) + p.SchemaDelimiter() + "%"
		args = []any{pattern, pattern}
	}

	query := fmt.Sprintf(`
		SELECT name, 0 AS temporary
		FROM sqlite_master
		WHERE type = 'table' %[1]s
		UNION ALL
		SELECT name, 1 AS temporary
		FROM sqlite_temp_master
		WHERE type = 'table' %[1]s
		ORDER BY name
	`, filter)
	return query, args
}

func (p *SQLite) ColumnsQuery(table string) string {
	return fmt.Sprintf("PRAGMA table_info(%s)", p.QuoteValue(table))
}

func (p *SQLite) IndexListQuery(table string) string {
	return fmt.Sprintf("PRAGMA index_list(%s)", p.QuoteValue(table))
}

func (p *SQLite) IndexInfoQuery(index string) string {
	return fmt.Sprintf("PRAGMA index_info(%s)", p.QuoteValue(index))
}

func (p *SQLite) ForeignKeysQuery(table string) string {
	return fmt.Sprintf("PRAGMA foreign_key_list(%s)", p.QuoteValue(table))
}

// AutoIncrementQuery finds the table's creation statement if it mentions
// AUTOINCREMENT. LIKE is case-insensitive for ASCII, so lower-case DDL
// matches too.
func (p *SQLite) AutoIncrementQuery(table string) (string, []any) {
	pattern := "%" + p.AutoIncrementKeyword() + "%"
	query := `
		SELECT tbl_name
		FROM sqlite_master
		WHERE type = 'table' AND tbl_name = ? AND sql LIKE ?
		UNION ALL
		SELECT tbl_name
		FROM sqlite_temp_master
		WHERE type = 'table' AND tbl_name = ? AND sql LIKE ?
		LIMIT 1
	`
	return query, []any{table, pattern, table, pattern}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
