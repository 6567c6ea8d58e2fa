package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestLocal(t *testing.T) (*Local, string) {
	t.Helper()
	dir := t.TempDir()
	l, err := NewLocal(dir, "http://localhost:8080/")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l, dir
}

func TestLocalPutOpenDelete(t *testing.T) {
	l, dir := newTestLocal(t)
	ctx := context.Background()

	stored, err := l.Put(ctx, FolderLostItems, []byte("jpeg bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !strings.HasPrefix(stored.Path, "lost_items/") || !strings.HasSuffix(stored.Path, ".jpg") {
		t.Errorf("unexpected path %q", stored.Path)
	}
	if stored.URL != "http://localhost:8080/storage/"+stored.Path {
		t.Errorf("unexpected url %q", stored.URL)
	}
	if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(stored.Path))); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}

	f, err := l.Open(stored.Path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(f)
	f.Close()
	if string(data) != "jpeg bytes" {
		t.Errorf("unexpected content %q", data)
	}

	if err := l.Delete(ctx, stored.Path); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := l.Open(stored.Path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist after delete, got %v", err)
	}
}

func TestLocalDeleteMissingFile(t *testing.T) {
	l, _ := newTestLocal(t)

	if err := l.Delete(context.Background(), "lost_items/missing.jpg"); err != nil {
		t.Errorf("deleting a missing file should succeed, got %v", err)
	}
}

func TestLocalRejectsTraversal(t *testing.T) {
	l, _ := newTestLocal(t)

	for _, p := range []string{"../secret", "lost_items/../../etc/passwd", "/etc/passwd", "", `..\x`} {
		if _, err := l.Open(p); !errors.Is(err, ErrBadPath) {
			t.Errorf("Open(%q): expected ErrBadPath, got %v", p, err)
		}
		if err := l.Delete(context.Background(), p); !errors.Is(err, ErrBadPath) {
			t.Errorf("Delete(%q): expected ErrBadPath, got %v", p, err)
		}
	}

	if _, err := l.Put(context.Background(), "../outside", []byte("x"), "image/jpeg"); !errors.Is(err, ErrBadPath) {
		t.Errorf("Put outside root: expected ErrBadPath, got %v", err)
	}
}
