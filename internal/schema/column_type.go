package schema

import (
	"strconv"
	"strings"
)

// ColumnType is the normalized form of a declared column type such as
// "VARCHAR(255)" or "DECIMAL(10, 2)". A zero Name means the column has no
// usable declared type.
type ColumnType struct {
	Raw       string `json:"raw,omitempty" yaml:"raw,omitempty"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Length    *int   `json:"length,omitempty" yaml:"length,omitempty"`
	Precision *int   `json:"precision,omitempty" yaml:"precision,omitempty"`
	Scale     *int   `json:"scale,omitempty" yaml:"scale,omitempty"`
}

// Affinity is SQLite's storage-class preference for a declared type
type Affinity string

const (
	AffinityInteger Affinity = "INTEGER"
	AffinityText    Affinity = "TEXT"
	AffinityBlob    Affinity = "BLOB"
	AffinityReal    Affinity = "REAL"
	AffinityNumeric Affinity = "NUMERIC"
)

// fixedPointTypes take a single qualifier as precision rather than length
var fixedPointTypes = map[string]bool{
	"decimal": true,
	"numeric": true,
}

// ParseType parses raw and stores the result in col.Type. Nothing else on
// col is touched, and parsing the same text twice gives the same result.
func ParseType(col *Column, raw string) {
	col.Type = ParseColumnType(raw)
}

// ParseColumnType parses a declared type. It never fails: empty or
// unrecognizable text yields an untyped descriptor, malformed qualifiers are
// dropped while the base keyword is kept.
func ParseColumnType(raw string) ColumnType {
	ct := ColumnType{Raw: raw}

	text := strings.TrimSpace(raw)
	if text == "" {
		return ct
	}

	base, params, hasParams := strings.Cut(text, "(")
	name := normalizeTypeName(base)
	if !isTypeName(name) {
		return ct
	}
	ct.Name = name

	if !hasParams {
		return ct
	}
	closing := strings.LastIndex(params, ")")
	if closing < 0 {
		return ct
	}

	parts := strings.Split(params[:closing], ",")
	switch len(parts) {
	case 1:
		n, ok := parseQualifier(parts[0])
		if !ok {
			return ct
		}
		if fixedPointTypes[name] {
			ct.Precision = &n
		} else {
			ct.Length = &n
		}
	case 2:
		p, okP := parseQualifier(parts[0])
		s, okS := parseQualifier(parts[1])
		if okP && okS {
			ct.Precision = &p
			ct.Scale = &s
		}
	}
	return ct
}

// IsUntyped reports whether no base type could be determined
func (t ColumnType) IsUntyped() bool {
	return t.Name == ""
}

// String re-emits the normalized type with its qualifiers, e.g. "varchar(255)"
// or "decimal(10,2)". Untyped descriptors render as "".
func (t ColumnType) String() string {
	if t.Name == "" {
		return ""
	}
	switch {
	case t.Precision != nil && t.Scale != nil:
		return t.Name + "(" + strconv.Itoa(*t.Precision) + "," + strconv.Itoa(*t.Scale) + ")"
	case t.Length != nil:
		return t.Name + "(" + strconv.Itoa(*t.Length) + ")"
	case t.Precision != nil:
		return t.Name + "(" + strconv.Itoa(*t.Precision) + ")"
	default:
		return t.Name
	}
}

// Affinity applies SQLite's type affinity rules to the declared text.
// The rules are checked in order; the first match wins.
func (t ColumnType) Affinity() Affinity {
	decl := strings.ToUpper(t.Raw)
	switch {
	case strings.Contains(decl, "INT"):
		return AffinityInteger
	case strings.Contains(decl, "CHAR"), strings.Contains(decl, "CLOB"), strings.Contains(decl, "TEXT"):
		return AffinityText
	case strings.Contains(decl, "BLOB"), strings.TrimSpace(decl) == "":
		return AffinityBlob
	case strings.Contains(decl, "REAL"), strings.Contains(decl, "FLOA"), strings.Contains(decl, "DOUB"):
		return AffinityReal
	default:
		return AffinityNumeric
	}
}

func normalizeTypeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// isTypeName accepts identifier words separated by single spaces
func isTypeName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9', r == ' ':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// parseQualifier reads one size qualifier. Negative sizes are malformed.
func parseQualifier(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
