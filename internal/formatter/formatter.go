// Package formatter renders an introspected schema.Database as text,
// markdown, YAML or JSON, to one writer or to one file per table.
package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/liteschema/internal/errs"
	"github.com/tordrt/liteschema/internal/schema"
)

const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatYAML     = "yaml"
	FormatJSON     = "json"
)

// Formatter renders a database model
type Formatter interface {
	Format(db *schema.Database) error
}

// New returns the single-stream formatter for format
func New(format string, w io.Writer) (Formatter, error) {
	switch format {
	case FormatText, "":
		return NewTextFormatter(w), nil
	case FormatMarkdown:
		return NewMarkdownFormatter(w), nil
	case FormatYAML:
		return NewYAMLFormatter(w), nil
	case FormatJSON:
		return NewJSONFormatter(w), nil
	default:
		return nil, errs.Newf(errs.ErrKindInvalidInput, "unsupported format %q", format)
	}
}

// displayName qualifies a table with its schema, dot-separated for readers
func displayName(t *schema.Table) string {
	if t == nil {
		return ""
	}
	return t.FullName(".")
}

func typeString(col *schema.Column) string {
	if col.Type.IsUntyped() {
		if col.Type.Raw != "" {
			return col.Type.Raw
		}
		return "(untyped)"
	}
	return col.Type.String()
}

// columnConstraints lists the column's flags in DDL order
func columnConstraints(col *schema.Column) []string {
	var constraints []string
	if col.PrimaryKey {
		constraints = append(constraints, "PK")
	}
	if col.AutoIncrement {
		constraints = append(constraints, "AUTOINCREMENT")
	}
	if col.NotNull {
		constraints = append(constraints, "NOT NULL")
	}
	if !col.Default.IsNone() {
		constraints = append(constraints, "DEFAULT "+col.Default.String())
	}
	return constraints
}

func indexName(idx *schema.Index) string {
	if idx.Name == "" {
		return "(auto)"
	}
	return idx.Name
}

func indexFlags(idx *schema.Index) []string {
	var flags []string
	if idx.Unique {
		flags = append(flags, "UNIQUE")
	}
	if idx.Partial {
		flags = append(flags, "PARTIAL")
	}
	return flags
}

// foreignKeyString renders "(a, b) → target(x, y) ON DELETE CASCADE".
// NO ACTION is the engine default and is left out.
func foreignKeyString(fk *schema.ForeignKey) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(%s) → %s(%s)",
		strings.Join(fk.FromColumns(), ", "),
		displayName(fk.Foreign),
		strings.Join(fk.ToColumns(), ", "))
	if fk.OnUpdate != "" && fk.OnUpdate != "NO ACTION" {
		b.WriteString(" ON UPDATE " + fk.OnUpdate)
	}
	if fk.OnDelete != "" && fk.OnDelete != "NO ACTION" {
		b.WriteString(" ON DELETE " + fk.OnDelete)
	}
	return b.String()
}

// incomingReference is a foreign key of another table pointing at a table
type incomingReference struct {
	Source *schema.Table
	Key    *schema.ForeignKey
}

func findIncomingReferences(target *schema.Table, db *schema.Database) []incomingReference {
	var incoming []incomingReference
	for _, table := range db.Tables {
		for _, fk := range table.ForeignKeys {
			if fk.Foreign == target {
				incoming = append(incoming, incomingReference{Source: table, Key: fk})
			}
		}
	}
	return incoming
}
