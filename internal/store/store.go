// Package store persists users and lost items. Functions return (nil, nil)
// when a requested row does not exist.
package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/lostfound/internal/db"
)

// insert runs an INSERT written with ? placeholders and returns the new row id.
func insert(ctx context.Context, conn *sqlx.DB, query string, args ...any) (int64, error) {
	query = conn.Rebind(query)

	if db.IsPostgres(conn) {
		var id int64
		if err := conn.QueryRowxContext(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	result, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting inserted id: %w", err)
	}
	return id, nil
}
