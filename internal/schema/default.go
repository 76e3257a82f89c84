package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DefaultKind tags which variant a Default holds
type DefaultKind uint8

const (
	DefaultNone DefaultKind = iota
	DefaultLiteral
	DefaultExpression
)

func (k DefaultKind) String() string {
	switch k {
	case DefaultLiteral:
		return "literal"
	case DefaultExpression:
		return "expression"
	default:
		return "none"
	}
}

// Default is a column default: nothing, a constant value, or an SQL
// expression kept verbatim. The fields are unexported so at most one
// variant can ever be set.
type Default struct {
	kind  DefaultKind
	value any
	expr  string
}

// NoDefault returns the empty variant
func NoDefault() Default {
	return Default{}
}

// LiteralDefault wraps a constant value: string, int64, float64, bool, or a
// decoded JSON composite ([]any / map[string]any).
func LiteralDefault(v any) Default {
	return Default{kind: DefaultLiteral, value: v}
}

// ExpressionDefault wraps an SQL expression
func ExpressionDefault(expr string) Default {
	return Default{kind: DefaultExpression, expr: expr}
}

func (d Default) Kind() DefaultKind { return d.kind }

func (d Default) IsNone() bool { return d.kind == DefaultNone }

// Literal returns the constant value if d is a literal
func (d Default) Literal() (any, bool) {
	return d.value, d.kind == DefaultLiteral
}

// Expression returns the expression text if d is an expression
func (d Default) Expression() (string, bool) {
	return d.expr, d.kind == DefaultExpression
}

// String renders the default as it would appear after DEFAULT in DDL
func (d Default) String() string {
	switch d.kind {
	case DefaultLiteral:
		return literalSQL(d.value)
	case DefaultExpression:
		return d.expr
	default:
		return ""
	}
}

func (d Default) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.view())
}

func (d Default) MarshalYAML() (any, error) {
	return d.view(), nil
}

type literalView struct {
	Value any `json:"value" yaml:"value"`
}

type expressionView struct {
	Expression string `json:"expression" yaml:"expression"`
}

func (d Default) view() any {
	switch d.kind {
	case DefaultLiteral:
		return literalView{Value: d.value}
	case DefaultExpression:
		return expressionView{Expression: d.expr}
	default:
		return nil
	}
}

// ResolveDefault converts a catalog default into a Default. A nil raw
// means no default. Text that evaluates as an SQLite literal becomes a
// Literal; string literals holding a JSON array or object are decoded into
// the composite value. Everything else is kept as a parenthesized
// Expression. It never fails.
//
// DEFAULT NULL also resolves to no default: the two are indistinguishable
// in the result.
func ResolveDefault(raw *string) Default {
	if raw == nil {
		return NoDefault()
	}
	if strings.EqualFold(strings.TrimSpace(*raw), "null") {
		return NoDefault()
	}

	v, ok := evalLiteral(*raw)
	if !ok {
		return ExpressionDefault("(" + *raw + ")")
	}
	if s, isString := v.(string); isString && looksLikeJSONComposite(s) {
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err == nil {
			v = decoded
		}
	}
	return LiteralDefault(v)
}

// evalLiteral evaluates text as a bare SQLite literal
func evalLiteral(text string) (any, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, false
	}

	switch s[0] {
	case '\'', '"':
		return unquote(s, s[0])
	}

	switch strings.ToUpper(s) {
	case "TRUE":
		return true, true
	case "FALSE":
		return false, true
	}

	return parseNumber(s)
}

// unquote decodes a string literal delimited by q, where a doubled q
// stands for one. Text with an unescaped q inside (e.g. 'a' || 'b') is not
// a single literal.
func unquote(s string, q byte) (any, bool) {
	if len(s) < 2 || s[len(s)-1] != q {
		return nil, false
	}
	inner := s[1 : len(s)-1]
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		if inner[i] == q {
			if i+1 >= len(inner) || inner[i+1] != q {
				return nil, false
			}
			i++
		}
		b.WriteByte(inner[i])
	}
	return b.String(), true
}

func parseNumber(s string) (any, bool) {
	body := strings.TrimLeft(s, "+-")
	if len(s)-len(body) > 1 || body == "" {
		return nil, false
	}
	neg := s[0] == '-'

	if hex, ok := strings.CutPrefix(strings.ToLower(body), "0x"); ok {
		n, err := strconv.ParseInt(hex, 16, 64)
		if err != nil {
			return nil, false
		}
		if neg {
			n = -n
		}
		return n, true
	}

	if !isNumericText(body) {
		return nil, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, true
	}
	return nil, false
}

func isNumericText(s string) bool {
	digits := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits = true
		case r == '.', r == 'e', r == 'E', r == '+', r == '-':
		default:
			return false
		}
	}
	return digits
}

func looksLikeJSONComposite(s string) bool {
	t := strings.TrimSpace(s)
	return strings.HasPrefix(t, "[") || strings.HasPrefix(t, "{")
}

func literalSQL(v any) string {
	switch val := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case nil:
		return "NULL"
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return "'" + strings.ReplaceAll(string(encoded), "'", "''") + "'"
	}
}
