package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tordrt/liteschema/internal/errs"
	"github.com/tordrt/liteschema/internal/schema"
)

// MultiFileFormatter writes schema to multiple files in a directory: an
// overview plus one file per table
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	if format == "" {
		format = FormatText
	}
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// overviewEntry summarizes one table in structured overviews
type overviewEntry struct {
	Name       string   `json:"name" yaml:"name"`
	File       string   `json:"file" yaml:"file"`
	References []string `json:"references,omitempty" yaml:"references,omitempty"`
}

// Format writes the schema to multiple files
func (f *MultiFileFormatter) Format(db *schema.Database) error {
	if f.getFileExtension() == "" {
		return errs.Newf(errs.ErrKindInvalidInput, "unsupported format %q", f.OutputFormat)
	}

	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeFile("_overview", func(w io.Writer) error {
		return f.writeOverview(w, db)
	}); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for _, table := range db.Tables {
		if err := f.writeFile(displayName(table), func(w io.Writer) error {
			return f.writeTable(w, table, db)
		}); err != nil {
			return fmt.Errorf("failed to write table file for %s: %w", displayName(table), err)
		}
	}

	return nil
}

func (f *MultiFileFormatter) writeFile(base string, write func(io.Writer) error) error {
	file, err := os.Create(filepath.Join(f.OutputDir, base+f.getFileExtension()))
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// sortedTables returns the tables ordered by qualified name
func sortedTables(db *schema.Database) []*schema.Table {
	tables := slices.Clone(db.Tables)
	slices.SortFunc(tables, func(a, b *schema.Table) int {
		return strings.Compare(displayName(a), displayName(b))
	})
	return tables
}

func referencedTables(table *schema.Table) []string {
	var targets []string
	for _, fk := range table.ForeignKeys {
		if name := displayName(fk.Foreign); !slices.Contains(targets, name) {
			targets = append(targets, name)
		}
	}
	return targets
}

func (f *MultiFileFormatter) writeOverview(w io.Writer, db *schema.Database) error {
	ext := f.getFileExtension()

	switch f.OutputFormat {
	case FormatMarkdown:
		_, _ = fmt.Fprintf(w, "# Schema Overview\n\n")
		_, _ = fmt.Fprintf(w, "Each table has a corresponding file: `<table_name>%s`\n\n", ext)
		_, _ = fmt.Fprintf(w, "## Tables\n\n")
		for _, table := range sortedTables(db) {
			_, _ = fmt.Fprintf(w, "- **%s**", displayName(table))
			if targets := referencedTables(table); len(targets) > 0 {
				_, _ = fmt.Fprintf(w, " (references: %s)", strings.Join(targets, ", "))
			}
			_, _ = fmt.Fprintln(w)
		}
		return nil

	case FormatYAML, FormatJSON:
		entries := make([]overviewEntry, 0, len(db.Tables))
		for _, table := range sortedTables(db) {
			entries = append(entries, overviewEntry{
				Name:       displayName(table),
				File:       displayName(table) + ext,
				References: referencedTables(table),
			})
		}
		overview := map[string]any{"tables": entries}
		if f.OutputFormat == FormatYAML {
			return encodeYAML(w, overview)
		}
		return encodeJSON(w, overview)

	default:
		_, _ = fmt.Fprintf(w, "SCHEMA OVERVIEW\n")
		_, _ = fmt.Fprintf(w, "Each table has a file: <table_name>%s\n\n", ext)
		for _, table := range sortedTables(db) {
			_, _ = fmt.Fprint(w, displayName(table))
			if targets := referencedTables(table); len(targets) > 0 {
				_, _ = fmt.Fprintf(w, " (references: %s)", strings.Join(targets, ","))
			}
			_, _ = fmt.Fprintln(w)
		}
		return nil
	}
}

func (f *MultiFileFormatter) writeTable(w io.Writer, table *schema.Table, db *schema.Database) error {
	switch f.OutputFormat {
	case FormatMarkdown:
		md := NewMarkdownFormatter(w)
		md.FormatTable(table)
		md.formatIncoming(findIncomingReferences(table, db))
		return nil
	case FormatYAML:
		return encodeYAML(w, table)
	case FormatJSON:
		return encodeJSON(w, table)
	default:
		NewTextFormatter(w).FormatTable(table)
		if incoming := findIncomingReferences(table, db); len(incoming) > 0 {
			_, _ = fmt.Fprintln(w)
			_, _ = fmt.Fprintln(w, "  REFERENCED BY:")
			for _, ref := range incoming {
				_, _ = fmt.Fprintf(w, "    %s(%s)\n", displayName(ref.Source), strings.Join(ref.Key.FromColumns(), ", "))
			}
		}
		return nil
	}
}

func (f *MultiFileFormatter) getFileExtension() string {
	switch f.OutputFormat {
	case FormatText:
		return ".txt"
	case FormatMarkdown:
		return ".md"
	case FormatYAML:
		return ".yaml"
	case FormatJSON:
		return ".json"
	default:
		return ""
	}
}
