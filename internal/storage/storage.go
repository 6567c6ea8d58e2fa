// Package storage turns uploaded images into durable, retrievable files.
//
// A Gateway validates and normalizes the upload with the imaging package and
// hands the result to a Backend: either the local disk (served back by this
// server under /storage/) or a remote image host.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/erazemk/lostfound/internal/imaging"
)

// Upload folders.
const (
	FolderLostItems  = "lost_items"
	FolderFoundItems = "found_items"
)

// Defaults for NewGateway.
const (
	DefaultMaxBytes = 10 << 20
	DefaultTimeout  = 30 * time.Second
)

var (
	// ErrInvalidUpload means the file failed local checks; nothing was sent
	// to the backend.
	ErrInvalidUpload = errors.New("invalid upload")

	// ErrUploadFailed means the backend could not store the file.
	ErrUploadFailed = errors.New("upload failed")
)

// Stored identifies a stored file. Path is what the backend needs to delete
// it; URL is where clients fetch it.
type Stored struct {
	Path string
	URL  string
}

// Backend stores and deletes processed images.
type Backend interface {
	Put(ctx context.Context, folder string, data []byte, mime string) (Stored, error)
	Delete(ctx context.Context, path string) error
}

// Gateway validates uploads and stores them through a Backend.
type Gateway struct {
	backend  Backend
	maxBytes int64
	timeout  time.Duration
}

// NewGateway creates a gateway. Non-positive limits fall back to the defaults.
func NewGateway(backend Backend, maxBytes int64, timeout time.Duration) *Gateway {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{backend: backend, maxBytes: maxBytes, timeout: timeout}
}

// MaxBytes is the largest accepted upload.
func (g *Gateway) MaxBytes() int64 {
	return g.maxBytes
}

// Store validates the image read from r and stores it under folder.
// Errors wrap ErrInvalidUpload or ErrUploadFailed.
func (g *Gateway) Store(ctx context.Context, folder string, r io.Reader) (Stored, error) {
	result, err := imaging.Process(r, g.maxBytes)
	if err != nil {
		return Stored{}, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	stored, err := g.backend.Put(ctx, folder, result.Data, result.MIME)
	if err != nil {
		slog.Error("image upload failed", "folder", folder, "error", err)
		return Stored{}, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	stored.Path = NormalizePath(stored.Path)
	return stored, nil
}

// Remove deletes a stored file, logging instead of failing. Used for cleanup
// where a missing file is not an error.
func (g *Gateway) Remove(ctx context.Context, path string) {
	if path == "" {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.backend.Delete(ctx, NormalizePath(path)); err != nil {
		slog.Warn("failed to remove stored image", "path", path, "error", err)
	}
}

// NormalizePath converts backslashes to forward slashes.
func NormalizePath(path string) string {
	return strings.ReplaceAll(path, `\`, "/")
}
