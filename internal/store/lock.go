package store

import (
	"context"
	"database/sql"
	"fmt"
)

const migrateLock = "csv2json_migrate"

// withLock runs fn while holding a MySQL named lock so concurrent servers do
// not race on DDL. SQLite has a single writer and runs fn directly.
func (s *Store) withLock(ctx context.Context, key string, timeoutSeconds int, fn func(context.Context) error) error {
	if s.driver != "mysql" {
		return fn(ctx)
	}

	// GET_LOCK is per connection, so pin one
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	var res sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", key, timeoutSeconds).Scan(&res); err != nil {
		return fmt.Errorf("store: lock %s: %w", key, err)
	}
	if !res.Valid || res.Int64 != 1 {
		return fmt.Errorf("store: lock %s: timed out after %ds", key, timeoutSeconds)
	}
	defer conn.ExecContext(context.Background(), "SELECT RELEASE_LOCK(?)", key)

	return fn(ctx)
}
