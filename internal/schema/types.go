// Package schema holds the structural model produced by introspection:
// a Database owning Tables, each Table owning its Columns, Indexes and
// ForeignKeys.
//
// The model is built single-threaded per table during one introspection pass
// and is treated as an immutable snapshot once returned. Name uniqueness is
// the builder's responsibility; the model does not enforce it.
package schema

import (
	"slices"
	"strings"

	"github.com/tordrt/liteschema/internal/errs"
)

// Database represents a complete introspected database
type Database struct {
	SchemaName string   `json:"schema,omitempty" yaml:"schema,omitempty"`
	Tables     []*Table `json:"tables" yaml:"tables"`
}

// NewDatabase creates an empty database scoped to schemaName
func NewDatabase(schemaName string) *Database {
	return &Database{SchemaName: schemaName}
}

// Table represents a database table
type Table struct {
	Name        string        `json:"name" yaml:"name"`
	SchemaName  string        `json:"schema,omitempty" yaml:"schema,omitempty"`
	Temporary   bool          `json:"temporary,omitempty" yaml:"temporary,omitempty"`
	Columns     []*Column     `json:"columns" yaml:"columns"`
	Indexes     []*Index      `json:"indexes,omitempty" yaml:"indexes,omitempty"`
	ForeignKeys []*ForeignKey `json:"foreign_keys,omitempty" yaml:"foreign_keys,omitempty"`
}

// Column represents a table column
type Column struct {
	Name          string     `json:"name" yaml:"name"`
	Type          ColumnType `json:"type" yaml:"type"`
	NotNull       bool       `json:"not_null,omitempty" yaml:"not_null,omitempty"`
	PrimaryKey    bool       `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	AutoIncrement bool       `json:"auto_increment,omitempty" yaml:"auto_increment,omitempty"`
	Default       Default    `json:"default" yaml:"default"`

	// pkPosition is the 1-based position inside a composite primary key
	pkPosition int
}

// Index represents a database index. An empty Name marks an index the
// engine generated itself.
type Index struct {
	Name    string   `json:"name" yaml:"name"`
	Unique  bool     `json:"unique,omitempty" yaml:"unique,omitempty"`
	Partial bool     `json:"partial,omitempty" yaml:"partial,omitempty"`
	Columns []string `json:"columns" yaml:"columns"`
}

// ForeignKey represents a foreign key constraint. Foreign is a non-owning
// pointer to the referenced table.
type ForeignKey struct {
	Name       string      `json:"name,omitempty" yaml:"name,omitempty"`
	Foreign    *Table      `json:"-" yaml:"-"`
	References []Reference `json:"references" yaml:"references"`
	OnUpdate   string      `json:"on_update,omitempty" yaml:"on_update,omitempty"`
	OnDelete   string      `json:"on_delete,omitempty" yaml:"on_delete,omitempty"`
}

// Reference is one (source column, target column) pair of a foreign key
type Reference struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// --- Database ---

// AddTable appends a new table and returns it
func (d *Database) AddTable(name string) *Table {
	t := &Table{Name: name, SchemaName: d.SchemaName}
	d.Tables = append(d.Tables, t)
	return t
}

// Table returns the table with the given name in any schema, or nil
func (d *Database) Table(name string) *Table {
	for _, t := range d.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// GetTable finds a table by name. An empty schemaName matches any schema.
func (d *Database) GetTable(name, schemaName string) (*Table, error) {
	for _, t := range d.Tables {
		if t.Name == name && (schemaName == "" || t.SchemaName == schemaName) {
			return t, nil
		}
	}
	if schemaName != "" {
		return nil, errs.Newf(errs.ErrKindUnresolvedReference, "table %s%s not found", schemaName+".", name)
	}
	return nil, errs.Newf(errs.ErrKindUnresolvedReference, "table %s not found", name)
}

// GetTableForFull finds a table by its stored name, as built by
// Table.FullName with the same delimiter. An unqualified name only matches
// a table without a schema.
func (d *Database) GetTableForFull(fullName, delimiter string) (*Table, error) {
	for _, t := range d.Tables {
		if t.FullName(delimiter) == fullName {
			return t, nil
		}
	}
	return nil, errs.Newf(errs.ErrKindUnresolvedReference, "table %s not found", fullName)
}

// SplitQualifiedName splits "schema<delim>table" into its parts. Names
// without the delimiter return an empty schema.
func SplitQualifiedName(fullName, delimiter string) (schemaName, name string) {
	if delimiter == "" {
		return "", fullName
	}
	if before, after, ok := strings.Cut(fullName, delimiter); ok {
		return before, after
	}
	return "", fullName
}

// --- Table ---

// FullName returns the table name qualified with its schema
func (t *Table) FullName(delimiter string) string {
	if t.SchemaName == "" {
		return t.Name
	}
	return t.SchemaName + delimiter + t.Name
}

// AddColumn appends a new column and returns it
func (t *Table) AddColumn(name string) *Column {
	c := &Column{Name: name}
	t.Columns = append(t.Columns, c)
	return c
}

// Column returns the column with the given name, or nil
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// AddIndex appends a new index and returns a handle for further configuration
func (t *Table) AddIndex(name string, unique bool) *Index {
	idx := &Index{Name: name, Unique: unique}
	t.Indexes = append(t.Indexes, idx)
	return idx
}

// RemoveIndex drops idx from the table. It reports whether idx was present.
func (t *Table) RemoveIndex(idx *Index) bool {
	i := slices.Index(t.Indexes, idx)
	if i < 0 {
		return false
	}
	t.Indexes = slices.Delete(t.Indexes, i, i+1)
	return true
}

// AddForeignKey appends a new foreign key targeting foreign and returns a
// handle for appending references
func (t *Table) AddForeignKey(name string, foreign *Table) *ForeignKey {
	fk := &ForeignKey{Name: name, Foreign: foreign}
	t.ForeignKeys = append(t.ForeignKeys, fk)
	return fk
}

// HasPrimaryKey reports whether any column is part of the primary key
func (t *Table) HasPrimaryKey() bool {
	for _, c := range t.Columns {
		if c.PrimaryKey {
			return true
		}
	}
	return false
}

// PrimaryKeys returns the primary key columns in key order
func (t *Table) PrimaryKeys() []*Column {
	var pks []*Column
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pks = append(pks, c)
		}
	}
	slices.SortStableFunc(pks, func(a, b *Column) int {
		return a.pkPosition - b.pkPosition
	})
	return pks
}

// PrimaryKeyNames returns the names of the primary key columns in key order
func (t *Table) PrimaryKeyNames() []string {
	pks := t.PrimaryKeys()
	names := make([]string, len(pks))
	for i, c := range pks {
		names[i] = c.Name
	}
	return names
}

// --- Column ---

// SetPrimaryKey marks the column as the position-th primary key column.
// Position 0 clears the flag.
func (c *Column) SetPrimaryKey(position int) {
	c.PrimaryKey = position > 0
	c.pkPosition = position
}

// --- Index ---

// AddColumn appends a member column to the index
func (i *Index) AddColumn(name string) {
	i.Columns = append(i.Columns, name)
}

// --- ForeignKey ---

// AddReference appends a (from, to) column pair
func (f *ForeignKey) AddReference(from, to string) {
	f.References = append(f.References, Reference{From: from, To: to})
}

// ForeignTableName returns the referenced table name, or "" if unset
func (f *ForeignKey) ForeignTableName() string {
	if f.Foreign == nil {
		return ""
	}
	return f.Foreign.Name
}

// FromColumns returns the source column names in reference order
func (f *ForeignKey) FromColumns() []string {
	cols := make([]string, len(f.References))
	for i, r := range f.References {
		cols[i] = r.From
	}
	return cols
}

// ToColumns returns the target column names in reference order
func (f *ForeignKey) ToColumns() []string {
	cols := make([]string, len(f.References))
	for i, r := range f.References {
		cols[i] = r.To
	}
	return cols
}
