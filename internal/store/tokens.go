package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/lostfound/internal/model"
)

// SetUserToken replaces the user's token digest. Any previous token stops
// authenticating.
func SetUserToken(ctx context.Context, db *sqlx.DB, userID int64, digest string) error {
	_, err := db.ExecContext(ctx,
		db.Rebind(`UPDATE users SET api_token = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`),
		digest, userID,
	)
	if err != nil {
		return fmt.Errorf("setting user token: %w", err)
	}
	return nil
}

// ClearUserToken removes the user's token.
func ClearUserToken(ctx context.Context, db *sqlx.DB, userID int64) error {
	_, err := db.ExecContext(ctx,
		db.Rebind(`UPDATE users SET api_token = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?`),
		userID,
	)
	if err != nil {
		return fmt.Errorf("clearing user token: %w", err)
	}
	return nil
}

// GetUserByToken returns the user whose stored digest equals digest.
func GetUserByToken(ctx context.Context, db *sqlx.DB, digest string) (*model.User, error) {
	if digest == "" {
		return nil, nil
	}
	return getUser(ctx, db, "api_token", digest)
}
