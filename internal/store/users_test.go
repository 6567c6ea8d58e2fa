package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/lostfound/internal/db"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "Alice", "alice@example.com", "hash123", "digest-1")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Name != "Alice" {
		t.Errorf("expected name 'Alice', got %q", user.Name)
	}
	if user.TokenDigest == nil || *user.TokenDigest != "digest-1" {
		t.Errorf("expected token digest 'digest-1', got %v", user.TokenDigest)
	}

	got, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Email != "alice@example.com" {
		t.Errorf("expected email 'alice@example.com', got %q", got.Email)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateUser(ctx, database, "A", "a@x.com", "hash", "d1"); err != nil {
		t.Fatalf("first CreateUser: %v", err)
	}

	_, err := CreateUser(ctx, database, "B", "a@x.com", "hash", "d2")
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestInsertUserDuplicateEmailAfterCheck(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateUser(ctx, database, "A", "a@x.com", "hash", "d1"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	// Same email reaching the insert, as when two registrations race.
	if _, err := insertUser(ctx, database, "B", "a@x.com", "hash", "d2"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}

	// A clash on another unique column is not reported as a taken email.
	_, err := insertUser(ctx, database, "C", "c@x.com", "hash", "d1")
	if err == nil || errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected a plain insert error, got %v", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, "Alice", "alice@example.com", "hash", "d1")

	user, err := GetUserByEmail(ctx, database, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}

	missing, err := GetUserByEmail(ctx, database, "bob@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}
}
