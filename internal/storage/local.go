package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrBadPath is returned for paths that would escape the storage root.
var ErrBadPath = errors.New("invalid storage path")

// Local stores files under a directory on disk.
type Local struct {
	root    *os.Root
	baseURL string
}

// NewLocal opens (creating if needed) dir as the storage root. URLs are built
// as baseURL + "/storage/" + path.
func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage dir: %w", err)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("opening storage dir: %w", err)
	}
	return &Local{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Close releases the storage root.
func (l *Local) Close() error {
	return l.root.Close()
}

// Put writes data to folder/<uuid>.jpg.
func (l *Local) Put(_ context.Context, folder string, data []byte, _ string) (Stored, error) {
	if err := checkPath(folder); err != nil {
		return Stored{}, err
	}
	if err := l.root.MkdirAll(folder, 0o755); err != nil {
		return Stored{}, fmt.Errorf("creating folder %s: %w", folder, err)
	}

	name := path.Join(folder, uuid.NewString()+".jpg")
	if err := l.root.WriteFile(name, data, 0o644); err != nil {
		return Stored{}, fmt.Errorf("writing %s: %w", name, err)
	}

	return Stored{Path: name, URL: l.URL(name)}, nil
}

// Delete removes the file at p. A missing file is not an error.
func (l *Local) Delete(_ context.Context, p string) error {
	if err := checkPath(p); err != nil {
		return err
	}
	if err := l.root.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", p, err)
	}
	return nil
}

// Open opens the stored file at p for serving.
func (l *Local) Open(p string) (*os.File, error) {
	if err := checkPath(p); err != nil {
		return nil, err
	}
	return l.root.Open(p)
}

// URL returns the public URL of a stored path.
func (l *Local) URL(p string) string {
	return l.baseURL + "/storage/" + p
}

// checkPath rejects empty, absolute and parent-relative paths.
func checkPath(p string) error {
	if p == "" || strings.HasPrefix(p, "/") || filepath.IsAbs(p) || strings.Contains(p, `\`) {
		return ErrBadPath
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return ErrBadPath
		}
	}
	return nil
}
