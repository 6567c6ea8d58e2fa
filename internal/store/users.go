package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	dbpkg "github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
)

// ErrEmailTaken is returned when registering an email that already exists.
var ErrEmailTaken = errors.New("email already registered")

const userColumns = `id, name, email, password_hash, api_token, created_at, updated_at`

// CreateUser creates a new user holding the given token digest.
func CreateUser(ctx context.Context, db *sqlx.DB, name, email, passwordHash, tokenDigest string) (*model.User, error) {
	existing, err := GetUserByEmail(ctx, db, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	id, err := insertUser(ctx, db, name, email, passwordHash, tokenDigest)
	if err != nil {
		return nil, err
	}

	return GetUser(ctx, db, id)
}

// insertUser adds the row. A concurrent registration can pass the email check
// in CreateUser and still lose on the unique index here.
func insertUser(ctx context.Context, db *sqlx.DB, name, email, passwordHash, tokenDigest string) (int64, error) {
	id, err := insert(ctx, db,
		`INSERT INTO users (name, email, password_hash, api_token) VALUES (?, ?, ?, ?)`,
		name, email, passwordHash, tokenDigest,
	)
	if dbpkg.IsUniqueViolation(err, "email") {
		return 0, ErrEmailTaken
	}
	if err != nil {
		return 0, fmt.Errorf("creating user: %w", err)
	}
	return id, nil
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db *sqlx.DB, id int64) (*model.User, error) {
	return getUser(ctx, db, "id", id)
}

// GetUserByEmail returns a user by (normalized) email.
func GetUserByEmail(ctx context.Context, db *sqlx.DB, email string) (*model.User, error) {
	return getUser(ctx, db, "email", email)
}

func getUser(ctx context.Context, db *sqlx.DB, column string, value any) (*model.User, error) {
	u := &model.User{}
	err := db.GetContext(ctx, u,
		db.Rebind(`SELECT `+userColumns+` FROM users WHERE `+column+` = ?`), value,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by %s: %w", column, err)
	}
	return u, nil
}
