package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/tordrt/liteschema/internal/schema"
)

// MarkdownFormatter formats schema as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the schema in markdown format
func (f *MarkdownFormatter) Format(db *schema.Database) error {
	_, _ = fmt.Fprintln(f.writer, "# Database Schema")
	_, _ = fmt.Fprintln(f.writer)

	for _, t := range db.Tables {
		f.FormatTable(t)
	}
	return nil
}

// FormatTable formats a single table (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatTable(t *schema.Table) {
	title := displayName(t)
	if t.Temporary {
		title += " (temporary)"
	}
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", title)

	f.formatColumns(t.Columns)
	f.formatForeignKeys(t.ForeignKeys)
	f.formatIndexes(t.Indexes)
}

// formatColumns renders the columns as a markdown table
func (f *MarkdownFormatter) formatColumns(columns []*schema.Column) {
	_, _ = fmt.Fprintln(f.writer, "### Columns")
	_, _ = fmt.Fprintln(f.writer)

	tw := table.NewWriter()
	tw.SetOutputMirror(f.writer)
	tw.Style().Format.Header = text.FormatDefault
	tw.AppendHeader(table.Row{"Column", "Type", "Constraints"})
	for _, col := range columns {
		tw.AppendRow(table.Row{col.Name, typeString(col), strings.Join(columnConstraints(col), ", ")})
	}
	tw.RenderMarkdown()
	_, _ = fmt.Fprintln(f.writer)
}

func (f *MarkdownFormatter) formatForeignKeys(fks []*schema.ForeignKey) {
	if len(fks) == 0 {
		return
	}
	_, _ = fmt.Fprintln(f.writer, "### References")
	_, _ = fmt.Fprintln(f.writer)
	for _, fk := range fks {
		_, _ = fmt.Fprintf(f.writer, "- %s\n", foreignKeyString(fk))
	}
	_, _ = fmt.Fprintln(f.writer)
}

func (f *MarkdownFormatter) formatIndexes(indexes []*schema.Index) {
	if len(indexes) == 0 {
		return
	}
	_, _ = fmt.Fprintln(f.writer, "### Indexes")
	_, _ = fmt.Fprintln(f.writer)
	for _, idx := range indexes {
		line := fmt.Sprintf("- %s on (%s)", indexName(idx), strings.Join(idx.Columns, ", "))
		if flags := indexFlags(idx); len(flags) > 0 {
			line += ", " + strings.ToLower(strings.Join(flags, ", "))
		}
		_, _ = fmt.Fprintln(f.writer, line)
	}
	_, _ = fmt.Fprintln(f.writer)
}

// formatIncoming lists foreign keys of other tables pointing at this one
func (f *MarkdownFormatter) formatIncoming(incoming []incomingReference) {
	if len(incoming) == 0 {
		return
	}
	_, _ = fmt.Fprintln(f.writer, "### Referenced by")
	_, _ = fmt.Fprintln(f.writer)
	for _, ref := range incoming {
		_, _ = fmt.Fprintf(f.writer, "- %s(%s) → (%s)\n",
			displayName(ref.Source),
			strings.Join(ref.Key.FromColumns(), ", "),
			strings.Join(ref.Key.ToColumns(), ", "))
	}
	_, _ = fmt.Fprintln(f.writer)
}
