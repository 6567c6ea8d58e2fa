package model

import (
	"strings"
	"time"
)

// User is a registered account. The bearer token is stored only as a digest
// and never leaves the store.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	TokenDigest  *string   `json:"-" db:"api_token"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// MaxFieldLength bounds short text fields (names, emails, titles, ...).
const MaxFieldLength = 255

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
