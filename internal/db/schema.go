package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schemas holds the DDL per dialect. Statements run one at a time, so MySQL
// does not need multiStatements.
var schemas = map[string][]string{
	"sqlite": {
		`CREATE TABLE IF NOT EXISTS users (
		    id            INTEGER PRIMARY KEY,
		    name          TEXT NOT NULL,
		    email         TEXT NOT NULL UNIQUE,
		    password_hash TEXT NOT NULL,
		    api_token     TEXT UNIQUE,
		    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS lost_items (
		    id               INTEGER PRIMARY KEY,
		    user_id          INTEGER REFERENCES users(id) ON DELETE SET NULL,
		    title            TEXT NOT NULL,
		    description      TEXT NOT NULL,
		    location         TEXT NOT NULL,
		    date_lost        TEXT NOT NULL,
		    contact          TEXT NOT NULL,
		    status           TEXT NOT NULL DEFAULT 'lost' CHECK (status IN ('lost', 'found')),
		    image_path       TEXT,
		    image_url        TEXT,
		    found_image_path TEXT,
		    found_image_url  TEXT,
		    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		    updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lost_items_created_at ON lost_items(created_at)`,
	},
	"mysql": {
		`CREATE TABLE IF NOT EXISTS users (
		    id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		    name          VARCHAR(255) NOT NULL,
		    email         VARCHAR(255) NOT NULL UNIQUE,
		    password_hash VARCHAR(255) NOT NULL,
		    api_token     CHAR(64) UNIQUE,
		    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS lost_items (
		    id               BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		    user_id          BIGINT UNSIGNED NULL,
		    title            VARCHAR(255) NOT NULL,
		    description      TEXT NOT NULL,
		    location         VARCHAR(255) NOT NULL,
		    date_lost        CHAR(10) NOT NULL,
		    contact          VARCHAR(255) NOT NULL,
		    status           ENUM('lost', 'found') NOT NULL DEFAULT 'lost',
		    image_path       TEXT NULL,
		    image_url        TEXT NULL,
		    found_image_path TEXT NULL,
		    found_image_url  TEXT NULL,
		    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		    updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		    INDEX idx_lost_items_created_at (created_at),
		    CONSTRAINT fk_lost_items_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE SET NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	},
	"pgx": {
		`CREATE TABLE IF NOT EXISTS users (
		    id            BIGSERIAL PRIMARY KEY,
		    name          TEXT NOT NULL,
		    email         TEXT NOT NULL UNIQUE,
		    password_hash TEXT NOT NULL,
		    api_token     TEXT UNIQUE,
		    created_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		    updated_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS lost_items (
		    id               BIGSERIAL PRIMARY KEY,
		    user_id          BIGINT REFERENCES users(id) ON DELETE SET NULL,
		    title            TEXT NOT NULL,
		    description      TEXT NOT NULL,
		    location         TEXT NOT NULL,
		    date_lost        TEXT NOT NULL,
		    contact          TEXT NOT NULL,
		    status           TEXT NOT NULL DEFAULT 'lost' CHECK (status IN ('lost', 'found')),
		    image_path       TEXT,
		    image_url        TEXT,
		    found_image_path TEXT,
		    found_image_url  TEXT,
		    created_at       TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		    updated_at       TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lost_items_created_at ON lost_items(created_at)`,
	},
}

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sqlx.DB) error {
	stmts, ok := schemas[db.DriverName()]
	if !ok {
		return fmt.Errorf("no schema for driver %q", db.DriverName())
	}

	for i, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema (statement %d): %w", i+1, err)
		}
	}
	return nil
}
