package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/liteschema/internal/schema"
)

// TextFormatter formats schema as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the schema in compact text format
func (f *TextFormatter) Format(db *schema.Database) error {
	for i, table := range db.Tables {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between tables
		}
		f.FormatTable(table)
	}
	return nil
}

// FormatTable writes a single table
func (f *TextFormatter) FormatTable(table *schema.Table) {
	kind := "TABLE"
	if table.Temporary {
		kind = "TEMP TABLE"
	}

	pkStr := ""
	if pks := table.PrimaryKeyNames(); len(pks) > 0 {
		pkStr = fmt.Sprintf(" (PK: %s)", strings.Join(pks, ", "))
	}
	_, _ = fmt.Fprintf(f.writer, "%s %s%s\n", kind, displayName(table), pkStr)

	for _, col := range table.Columns {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", formatColumn(col))
	}

	if len(table.ForeignKeys) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  FOREIGN KEYS:")
		for _, fk := range table.ForeignKeys {
			_, _ = fmt.Fprintf(f.writer, "    %s\n", foreignKeyString(fk))
		}
	}

	if len(table.Indexes) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  INDEXES:")
		for _, idx := range table.Indexes {
			flags := ""
			if fl := indexFlags(idx); len(fl) > 0 {
				flags = " " + strings.Join(fl, " ")
			}
			_, _ = fmt.Fprintf(f.writer, "    %s (%s)%s\n", indexName(idx), strings.Join(idx.Columns, ", "), flags)
		}
	}
}

func formatColumn(col *schema.Column) string {
	parts := []string{col.Name + ":", typeString(col)}
	parts = append(parts, columnConstraints(col)...)
	return strings.Join(parts, " ")
}
