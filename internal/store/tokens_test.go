package store

import (
	"context"
	"testing"

	"github.com/erazemk/lostfound/internal/db"
)

func TestTokenReplacementIsExclusive(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "A", "a@x.com", "hash", "old-digest")

	got, err := GetUserByToken(ctx, database, "old-digest")
	if err != nil {
		t.Fatalf("GetUserByToken: %v", err)
	}
	if got == nil || got.ID != user.ID {
		t.Fatal("expected old token to resolve before replacement")
	}

	if err := SetUserToken(ctx, database, user.ID, "new-digest"); err != nil {
		t.Fatalf("SetUserToken: %v", err)
	}

	old, _ := GetUserByToken(ctx, database, "old-digest")
	if old != nil {
		t.Error("expected old token to stop resolving")
	}
	current, _ := GetUserByToken(ctx, database, "new-digest")
	if current == nil || current.ID != user.ID {
		t.Error("expected new token to resolve")
	}
}

func TestClearUserToken(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "A", "a@x.com", "hash", "digest")
	if err := ClearUserToken(ctx, database, user.ID); err != nil {
		t.Fatalf("ClearUserToken: %v", err)
	}

	got, _ := GetUserByToken(ctx, database, "digest")
	if got != nil {
		t.Error("expected cleared token to stop resolving")
	}

	reloaded, _ := GetUser(ctx, database, user.ID)
	if reloaded.TokenDigest != nil {
		t.Errorf("expected nil token digest, got %q", *reloaded.TokenDigest)
	}
}

func TestGetUserByEmptyToken(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "A", "a@x.com", "hash", "digest")
	ClearUserToken(ctx, database, user.ID)

	got, err := GetUserByToken(ctx, database, "")
	if err != nil {
		t.Fatalf("GetUserByToken: %v", err)
	}
	if got != nil {
		t.Error("empty token must never resolve")
	}
}
