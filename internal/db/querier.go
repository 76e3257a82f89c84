package db

import (
	"context"
	"database/sql"
	"strconv"
)

// Querier is the catalog access capability the introspection parser
// consumes. It never manages connection lifecycle.
type Querier interface {
	// QueryAll executes query and returns every row.
	QueryAll(ctx context.Context, query string, args ...any) ([]Row, error)

	// QuerySingle executes query and returns its first row, or nil when
	// the result is empty.
	QuerySingle(ctx context.Context, query string, args ...any) (Row, error)
}

// Row maps result column names to driver values (string, []byte, int64,
// float64, bool or nil). The accessors smooth over differences between
// SQLite drivers.
type Row map[string]any

// IsNull reports whether key is missing or NULL
func (r Row) IsNull(key string) bool {
	return r[key] == nil
}

// String returns the value as text; NULL yields ""
func (r Row) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// NullableString returns nil for NULL and a pointer to the text otherwise
func (r Row) NullableString(key string) *string {
	if r.IsNull(key) {
		return nil
	}
	s := r.String(key)
	return &s
}

// Int returns the value as an integer; NULL and unparsable text yield 0
func (r Row) Int(key string) int64 {
	switch v := r[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case string, []byte:
		n, err := strconv.ParseInt(r.String(key), 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Bool reports whether the value is a non-zero integer or true
func (r Row) Bool(key string) bool {
	return r.Int(key) != 0
}

// scanRows reads every row, or only the first when limit is 1, into Rows.
// It always closes rows.
func scanRows(rows *sql.Rows, limit int) ([]Row, error) {
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := make([]Row, 0)
	for rows.Next() {
		dest := make([]any, len(columns))
		destPtrs := make([]any, len(columns))
		for i := range dest {
			destPtrs[i] = &dest[i]
		}

		if err := rows.Scan(destPtrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = dest[i]
		}
		result = append(result, row)

		if limit > 0 && len(result) >= limit {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
