package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// inEmptyDir runs the test from a directory without a .env file.
func inEmptyDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	inEmptyDir(t)

	cfg, err := Load(nil, io.Discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("expected :8080, got %q", cfg.Addr)
	}
	if cfg.DBDriver != "sqlite" || cfg.DBDSN != "lostfound.sqlite3" {
		t.Errorf("unexpected db settings %q %q", cfg.DBDriver, cfg.DBDSN)
	}
	if cfg.StorageBackend != StorageLocal {
		t.Errorf("expected local storage, got %q", cfg.StorageBackend)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Errorf("expected 10 MiB limit, got %d", cfg.MaxUploadBytes)
	}
	if cfg.UploadTimeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", cfg.UploadTimeout)
	}
	if !cfg.AllowAnonymous {
		t.Error("anonymous reports should be allowed by default")
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("unexpected CORS origins %v", cfg.CORSOrigins)
	}
}

func TestLoadPriority(t *testing.T) {
	inEmptyDir(t)
	t.Setenv("LOSTFOUND_ADDR", ":9000")
	t.Setenv("LOSTFOUND_DB", "from-env.sqlite3")
	t.Setenv("LOSTFOUND_ALLOW_ANONYMOUS", "false")
	t.Setenv("LOSTFOUND_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load([]string{"-d", "from-flag.sqlite3", "-upload-timeout", "5s"}, io.Discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("expected env addr, got %q", cfg.Addr)
	}
	if cfg.DBDSN != "from-flag.sqlite3" {
		t.Errorf("flag should override env, got %q", cfg.DBDSN)
	}
	if cfg.AllowAnonymous {
		t.Error("expected anonymous reports disabled")
	}
	if cfg.UploadTimeout != 5*time.Second {
		t.Errorf("expected 5s, got %s", cfg.UploadTimeout)
	}
	if strings.Join(cfg.CORSOrigins, "|") != "https://a.example|https://b.example" {
		t.Errorf("unexpected CORS origins %v", cfg.CORSOrigins)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := inEmptyDir(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("LOSTFOUND_STORAGE_DIR=uploads\n"), 0o644); err != nil {
		t.Fatalf("writing .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("LOSTFOUND_STORAGE_DIR") })

	cfg, err := Load(nil, io.Discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StorageDir != "uploads" {
		t.Errorf("expected storage dir from .env, got %q", cfg.StorageDir)
	}
}

func TestLoadErrors(t *testing.T) {
	inEmptyDir(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown driver", []string{"-driver", "oracle"}},
		{"unknown backend", []string{"-s", "ftp"}},
		{"remote without credentials", []string{"-storage", "remote"}},
		{"non-positive upload limit", []string{"-max-upload", "0"}},
		{"extra argument", []string{"serve"}},
		{"unknown flag", []string{"-nope"}},
	}
	for _, tt := range tests {
		if _, err := Load(tt.args, io.Discard); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}

	t.Setenv("LOSTFOUND_MAX_UPLOAD", "ten")
	if _, err := Load(nil, io.Discard); err == nil {
		t.Error("expected error for malformed env value")
	}
}

func TestLoadRemote(t *testing.T) {
	inEmptyDir(t)

	cfg, err := Load([]string{
		"-storage", "remote",
		"-remote-url", "https://images.example",
		"-remote-key", "key",
		"-remote-secret", "secret",
	}, io.Discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StorageBackend != StorageRemote || cfg.RemoteEndpoint != "https://images.example" {
		t.Errorf("unexpected remote settings %+v", cfg)
	}
}

func TestLoadHelp(t *testing.T) {
	inEmptyDir(t)

	var out strings.Builder
	_, err := Load([]string{"-h"}, &out)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected flag.ErrHelp, got %v", err)
	}
	if !strings.Contains(out.String(), "Usage: lostfound") {
		t.Errorf("usage not written: %q", out.String())
	}
}
