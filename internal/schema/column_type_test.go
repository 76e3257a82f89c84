package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestParseColumnType(t *testing.T) {
	tests := []struct {
		raw  string
		want ColumnType
	}{
		{raw: "INTEGER", want: ColumnType{Raw: "INTEGER", Name: "integer"}},
		{raw: "VARCHAR(255)", want: ColumnType{Raw: "VARCHAR(255)", Name: "varchar", Length: intPtr(255)}},
		{raw: "decimal(10, 2)", want: ColumnType{Raw: "decimal(10, 2)", Name: "decimal", Precision: intPtr(10), Scale: intPtr(2)}},
		{raw: "NUMERIC(8)", want: ColumnType{Raw: "NUMERIC(8)", Name: "numeric", Precision: intPtr(8)}},
		{raw: "  unsigned   BIG int ", want: ColumnType{Raw: "  unsigned   BIG int ", Name: "unsigned big int"}},
		{raw: "CHARACTER (20)", want: ColumnType{Raw: "CHARACTER (20)", Name: "character", Length: intPtr(20)}},
		{raw: "", want: ColumnType{Raw: ""}},
		{raw: "   ", want: ColumnType{Raw: "   "}},
		{raw: "(10)", want: ColumnType{Raw: "(10)"}},
		{raw: "9lives", want: ColumnType{Raw: "9lives"}},
		{raw: "VARCHAR(abc)", want: ColumnType{Raw: "VARCHAR(abc)", Name: "varchar"}},
		{raw: "VARCHAR(10", want: ColumnType{Raw: "VARCHAR(10", Name: "varchar"}},
		{raw: "DECIMAL(1,2,3)", want: ColumnType{Raw: "DECIMAL(1,2,3)", Name: "decimal"}},
		{raw: "DECIMAL(10,x)", want: ColumnType{Raw: "DECIMAL(10,x)", Name: "decimal"}},
		{raw: "INT(-1)", want: ColumnType{Raw: "INT(-1)", Name: "int"}},
		{raw: "DECIMAL(10,-2)", want: ColumnType{Raw: "DECIMAL(10,-2)", Name: "decimal"}},
		{raw: "INT(0)", want: ColumnType{Raw: "INT(0)", Name: "int", Length: intPtr(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseColumnType(tt.raw))
		})
	}
}

func TestParseType_OnlyTouchesType(t *testing.T) {
	col := &Column{Name: "price", NotNull: true, Default: LiteralDefault(int64(0))}
	col.SetPrimaryKey(1)

	ParseType(col, "DECIMAL(10,2)")
	first := col.Type
	ParseType(col, "DECIMAL(10,2)")

	assert.Equal(t, first, col.Type)
	assert.Equal(t, "price", col.Name)
	assert.True(t, col.NotNull)
	assert.True(t, col.PrimaryKey)
	v, ok := col.Default.Literal()
	require.True(t, ok)
	assert.Equal(t, int64(0), v)
}

func TestColumnType_QualifiersRoundTrip(t *testing.T) {
	for _, raw := range []string{"varchar(1)", "varchar(255)", "char(65535)", "decimal(10,2)", "numeric(38,0)", "float(7,3)", "decimal(12)"} {
		t.Run(raw, func(t *testing.T) {
			parsed := ParseColumnType(raw)
			assert.Equal(t, raw, parsed.String())
			assert.Equal(t, parsed, ParseColumnType(parsed.String()).withRaw(parsed.Raw))
		})
	}
}

func (t ColumnType) withRaw(raw string) ColumnType {
	t.Raw = raw
	return t
}

func TestColumnType_Untyped(t *testing.T) {
	ct := ParseColumnType("")
	assert.True(t, ct.IsUntyped())
	assert.Equal(t, "", ct.String())
	assert.False(t, ParseColumnType("TEXT").IsUntyped())
}

func TestColumnType_Affinity(t *testing.T) {
	tests := map[string]Affinity{
		"INTEGER":          AffinityInteger,
		"TINYINT":          AffinityInteger,
		"UNSIGNED BIG INT": AffinityInteger,
		"VARCHAR(255)":     AffinityText,
		"NCHAR(55)":        AffinityText,
		"CLOB":             AffinityText,
		"BLOB":             AffinityBlob,
		"":                 AffinityBlob,
		"REAL":             AffinityReal,
		"DOUBLE PRECISION": AffinityReal,
		"FLOAT":            AffinityReal,
		"NUMERIC":          AffinityNumeric,
		"DECIMAL(10,5)":    AffinityNumeric,
		"BOOLEAN":          AffinityNumeric,
		"DATETIME":         AffinityNumeric,
		"FLOATING POINT":   AffinityInteger,
		"CHARINT":          AffinityInteger,
	}

	for raw, want := range tests {
		t.Run(raw, func(t *testing.T) {
			assert.Equal(t, want, ParseColumnType(raw).Affinity())
		})
	}
}
