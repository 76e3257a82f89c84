package introspect

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/tordrt/liteschema/internal/db"
	"github.com/tordrt/liteschema/internal/errs"
)

var pragmaPattern = regexp.MustCompile(`^PRAGMA (\w+)\('(.*)'\)$`)

// fakeCatalog answers the SQLite platform's catalog queries from memory
type fakeCatalog struct {
	tables        []db.Row
	columns       map[string][]db.Row
	indexes       map[string][]db.Row
	indexInfo     map[string][]db.Row
	foreignKeys   map[string][]db.Row
	autoIncrement map[string]bool

	// failOn makes any query containing it fail
	failOn string

	mu                 sync.Mutex
	autoIncrementCalls map[string]int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		columns:            map[string][]db.Row{},
		indexes:            map[string][]db.Row{},
		indexInfo:          map[string][]db.Row{},
		foreignKeys:        map[string][]db.Row{},
		autoIncrement:      map[string]bool{},
		autoIncrementCalls: map[string]int{},
	}
}

func (f *fakeCatalog) addTable(name string) {
	f.tables = append(f.tables, db.Row{"name": name, "temporary": int64(0)})
}

func (f *fakeCatalog) addColumn(table, name, typ string, notNull bool, pk int, dflt any) {
	f.columns[table] = append(f.columns[table], db.Row{
		"cid":        int64(len(f.columns[table])),
		"name":       name,
		"type":       typ,
		"notnull":    boolInt(notNull),
		"dflt_value": dflt,
		"pk":         int64(pk),
	})
}

func (f *fakeCatalog) addIndex(table, name string, unique bool, columns ...any) {
	f.indexes[table] = append(f.indexes[table], db.Row{
		"seq":     int64(len(f.indexes[table])),
		"name":    name,
		"unique":  boolInt(unique),
		"origin":  "c",
		"partial": int64(0),
	})
	for i, col := range columns {
		f.indexInfo[name] = append(f.indexInfo[name], db.Row{
			"seqno": int64(i),
			"cid":   int64(i),
			"name":  col,
		})
	}
}

func (f *fakeCatalog) addForeignKey(table string, id, seq int, target, from string, to any) {
	f.foreignKeys[table] = append(f.foreignKeys[table], db.Row{
		"id":        int64(id),
		"seq":       int64(seq),
		"table":     target,
		"from":      from,
		"to":        to,
		"on_update": "NO ACTION",
		"on_delete": "CASCADE",
		"match":     "NONE",
	})
}

func (f *fakeCatalog) QueryAll(_ context.Context, query string, _ ...any) ([]db.Row, error) {
	if f.failOn != "" && strings.Contains(query, f.failOn) {
		return nil, errs.Wrap(errs.ErrKindConnection, "catalog query failed", fmt.Errorf("no such table"))
	}

	if strings.Contains(query, "sqlite_temp_master") {
		return f.tables, nil
	}

	m := pragmaPattern.FindStringSubmatch(query)
	if m == nil {
		return nil, fmt.Errorf("unexpected query %q", query)
	}
	name := strings.ReplaceAll(m[2], "''", "'")

	switch m[1] {
	case "table_info":
		return f.columns[name], nil
	case "index_list":
		return f.indexes[name], nil
	case "index_info":
		return f.indexInfo[name], nil
	case "foreign_key_list":
		return f.foreignKeys[name], nil
	}
	return nil, fmt.Errorf("unexpected pragma %q", m[1])
}

func (f *fakeCatalog) QuerySingle(_ context.Context, query string, args ...any) (db.Row, error) {
	if f.failOn != "" && strings.Contains(query, f.failOn) {
		return nil, errs.Wrap(errs.ErrKindConnection, "catalog query failed", fmt.Errorf("no such table"))
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("unexpected query %q", query)
	}

	table, _ := args[0].(string)
	f.mu.Lock()
	f.autoIncrementCalls[table]++
	f.mu.Unlock()

	if f.autoIncrement[table] {
		return db.Row{"tbl_name": table}, nil
	}
	return nil, nil
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
