package db

import (
	"context"
	"database/sql"

	"github.com/tordrt/liteschema/internal/errs"
)

const dataVersionQuery = "PRAGMA data_version"

// ChangeTracker reports commits made by other connections. It pins one
// connection for its whole lifetime: PRAGMA data_version is only
// comparable on the same connection, and keeping it open also keeps a WAL
// database's -wal file in place while other connections come and go.
type ChangeTracker struct {
	conn *sql.Conn
	last int64
}

// NewChangeTracker pins a connection and records the current data version
func (c *SQLiteClient) NewChangeTracker(ctx context.Context) (*ChangeTracker, error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnection, "failed to reserve connection", err)
	}

	t := &ChangeTracker{conn: conn}
	if t.last, err = t.dataVersion(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return t, nil
}

// Changed reports whether another connection committed since the previous
// call (or since the tracker was created)
func (t *ChangeTracker) Changed(ctx context.Context) (bool, error) {
	version, err := t.dataVersion(ctx)
	if err != nil {
		return false, err
	}
	if version == t.last {
		return false, nil
	}
	t.last = version
	return true, nil
}

// Close releases the pinned connection
func (t *ChangeTracker) Close() error {
	return t.conn.Close()
}

func (t *ChangeTracker) dataVersion(ctx context.Context) (int64, error) {
	var version int64
	if err := t.conn.QueryRowContext(ctx, dataVersionQuery).Scan(&version); err != nil {
		return 0, errs.WrapQuery(describe(dataVersionQuery), err)
	}
	return version, nil
}
