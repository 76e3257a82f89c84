package formatter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/tordrt/liteschema/internal/errs"
	"github.com/tordrt/liteschema/internal/schema"
)

func addColumn(t *schema.Table, name, typ string, notNull bool, pk int, dflt schema.Default) *schema.Column {
	col := t.AddColumn(name)
	schema.ParseType(col, typ)
	col.NotNull = notNull
	col.SetPrimaryKey(pk)
	col.Default = dflt
	return col
}

func testDatabase() *schema.Database {
	db := schema.NewDatabase("")

	users := db.AddTable("users")
	addColumn(users, "id", "INTEGER", true, 1, schema.NoDefault()).AutoIncrement = true
	addColumn(users, "email", "VARCHAR(255)", true, 0, schema.NoDefault())
	addColumn(users, "created_at", "DATETIME", false, 0, schema.ExpressionDefault("(datetime('now'))"))
	users.AddIndex("", true).AddColumn("email")

	posts := db.AddTable("posts")
	addColumn(posts, "id", "INTEGER", false, 1, schema.NoDefault())
	addColumn(posts, "author_id", "INTEGER", true, 0, schema.NoDefault())
	addColumn(posts, "title", "TEXT", false, 0, schema.LiteralDefault("untitled"))
	fk := posts.AddForeignKey("", users)
	fk.AddReference("author_id", "id")
	fk.OnUpdate = "NO ACTION"
	fk.OnDelete = "CASCADE"
	posts.AddIndex("idx_posts_author", false).AddColumn("author_id")

	return db
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	for format, want := range map[string]Formatter{
		FormatText:     &TextFormatter{},
		"":             &TextFormatter{},
		FormatMarkdown: &MarkdownFormatter{},
		FormatYAML:     &YAMLFormatter{},
		FormatJSON:     &JSONFormatter{},
	} {
		f, err := New(format, &buf)
		require.NoError(t, err, format)
		assert.IsType(t, want, f, format)
	}

	_, err := New("xml", &buf)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextFormatter(&buf).Format(testDatabase()))

	want := `TABLE users (PK: id)
  id: integer PK AUTOINCREMENT NOT NULL
  email: varchar(255) NOT NULL
  created_at: datetime DEFAULT (datetime('now'))

  INDEXES:
    (auto) (email) UNIQUE

TABLE posts (PK: id)
  id: integer PK
  author_id: integer NOT NULL
  title: text DEFAULT 'untitled'

  FOREIGN KEYS:
    (author_id) → users(id) ON DELETE CASCADE

  INDEXES:
    idx_posts_author (author_id)
`
	assert.Equal(t, want, buf.String())
}

func TestTextFormatter_SchemaAndTemporary(t *testing.T) {
	db := schema.NewDatabase("app")
	scratch := db.AddTable("scratch")
	scratch.Temporary = true
	addColumn(scratch, "payload", "", false, 0, schema.NoDefault())

	var buf bytes.Buffer
	require.NoError(t, NewTextFormatter(&buf).Format(db))
	assert.Equal(t, "TEMP TABLE app.scratch\n  payload: (untyped)\n", buf.String())
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewMarkdownFormatter(&buf).Format(testDatabase()))
	out := buf.String()

	assert.Contains(t, out, "# Database Schema\n")
	assert.Contains(t, out, "## users\n")
	assert.Contains(t, out, "## posts\n")
	assert.Contains(t, out, "### Columns")
	assert.Contains(t, strings.ToLower(out), "| column | type | constraints |")
	assert.Contains(t, out, "PK, AUTOINCREMENT, NOT NULL")
	assert.Contains(t, out, "varchar(255)")
	assert.Contains(t, out, "### References\n\n- (author_id) → users(id) ON DELETE CASCADE\n")
	assert.Contains(t, out, "- (auto) on (email), unique\n")
	assert.Contains(t, out, "- idx_posts_author on (author_id)\n")
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter(&buf).Format(testDatabase()))

	var decoded struct {
		Tables []struct {
			Name    string `yaml:"name"`
			Columns []struct {
				Name    string         `yaml:"name"`
				Default map[string]any `yaml:"default"`
			} `yaml:"columns"`
			ForeignKeys []struct {
				Table    string `yaml:"table"`
				OnDelete string `yaml:"on_delete"`
			} `yaml:"foreign_keys"`
		} `yaml:"tables"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))

	require.Len(t, decoded.Tables, 2)
	assert.Equal(t, "users", decoded.Tables[0].Name)
	assert.Equal(t, map[string]any{"expression": "(datetime('now'))"}, decoded.Tables[0].Columns[2].Default)
	assert.Nil(t, decoded.Tables[0].Columns[0].Default)

	posts := decoded.Tables[1]
	assert.Equal(t, map[string]any{"value": "untitled"}, posts.Columns[2].Default)
	require.Len(t, posts.ForeignKeys, 1)
	assert.Equal(t, "users", posts.ForeignKeys[0].Table)
	assert.Equal(t, "CASCADE", posts.ForeignKeys[0].OnDelete)
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf).Format(testDatabase()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	tables := decoded["tables"].([]any)
	require.Len(t, tables, 2)
	posts := tables[1].(map[string]any)
	assert.Equal(t, "posts", posts["name"])

	fks := posts["foreign_keys"].([]any)
	fk := fks[0].(map[string]any)
	assert.Equal(t, "users", fk["table"])
	assert.Equal(t, []any{map[string]any{"from": "author_id", "to": "id"}}, fk["references"])
}

func TestMultiFileFormatter_Markdown(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "schema")
	require.NoError(t, NewMultiFileFormatter(dir, FormatMarkdown).Format(testDatabase()))

	overview, err := os.ReadFile(filepath.Join(dir, "_overview.md"))
	require.NoError(t, err)
	assert.Contains(t, string(overview), "- **posts** (references: users)\n- **users**\n")

	users, err := os.ReadFile(filepath.Join(dir, "users.md"))
	require.NoError(t, err)
	assert.Contains(t, string(users), "## users")
	assert.Contains(t, string(users), "### Referenced by\n\n- posts(author_id) → (id)\n")

	_, err = os.Stat(filepath.Join(dir, "posts.md"))
	assert.NoError(t, err)
}

func TestMultiFileFormatter_Text(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewMultiFileFormatter(dir, "").Format(testDatabase()))

	overview, err := os.ReadFile(filepath.Join(dir, "_overview.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(overview), "posts (references: users)\nusers\n")

	users, err := os.ReadFile(filepath.Join(dir, "users.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(users), "REFERENCED BY:\n    posts(author_id)\n")
}

func TestMultiFileFormatter_YAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewMultiFileFormatter(dir, FormatYAML).Format(testDatabase()))

	data, err := os.ReadFile(filepath.Join(dir, "posts.yaml"))
	require.NoError(t, err)

	var table struct {
		Name    string `yaml:"name"`
		Indexes []struct {
			Name    string   `yaml:"name"`
			Columns []string `yaml:"columns"`
		} `yaml:"indexes"`
	}
	require.NoError(t, yaml.Unmarshal(data, &table))
	assert.Equal(t, "posts", table.Name)
	require.Len(t, table.Indexes, 1)
	assert.Equal(t, []string{"author_id"}, table.Indexes[0].Columns)

	data, err = os.ReadFile(filepath.Join(dir, "_overview.yaml"))
	require.NoError(t, err)
	var overview struct {
		Tables []overviewEntry `yaml:"tables"`
	}
	require.NoError(t, yaml.Unmarshal(data, &overview))
	require.Len(t, overview.Tables, 2)
	assert.Equal(t, overviewEntry{Name: "posts", File: "posts.yaml", References: []string{"users"}}, overview.Tables[0])
}

func TestMultiFileFormatter_UnsupportedFormat(t *testing.T) {
	err := NewMultiFileFormatter(t.TempDir(), "xml").Format(testDatabase())
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}
