package formatter

import (
	"encoding/json"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/tordrt/liteschema/internal/schema"
)

// YAMLFormatter writes the model as a YAML document
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// Format writes the schema as YAML
func (f *YAMLFormatter) Format(db *schema.Database) error {
	return encodeYAML(f.writer, db)
}

// JSONFormatter writes the model as indented JSON
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// Format writes the schema as JSON
func (f *JSONFormatter) Format(db *schema.Database) error {
	return encodeJSON(f.writer, db)
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
