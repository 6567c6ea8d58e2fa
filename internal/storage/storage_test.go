package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for x := 0; x < 20; x++ {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.RGBA{0, 128, 0, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

// fakeBackend records calls and optionally fails or blocks.
type fakeBackend struct {
	puts    int
	deletes []string
	putErr  error
	block   bool
}

func (f *fakeBackend) Put(ctx context.Context, folder string, data []byte, mime string) (Stored, error) {
	f.puts++
	if f.block {
		<-ctx.Done()
		return Stored{}, ctx.Err()
	}
	if f.putErr != nil {
		return Stored{}, f.putErr
	}
	return Stored{Path: folder + `\img.jpg`, URL: "https://cdn.example/" + folder + "/img.jpg"}, nil
}

func (f *fakeBackend) Delete(_ context.Context, path string) error {
	f.deletes = append(f.deletes, path)
	return errors.New("boom")
}

func TestGatewayStore(t *testing.T) {
	backend := &fakeBackend{}
	g := NewGateway(backend, 0, 0)

	stored, err := g.Store(context.Background(), FolderLostItems, bytes.NewReader(testPNG(t)))
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if stored.Path != "lost_items/img.jpg" {
		t.Errorf("expected normalized path, got %q", stored.Path)
	}
	if backend.puts != 1 {
		t.Errorf("expected 1 put, got %d", backend.puts)
	}
	if g.MaxBytes() != DefaultMaxBytes {
		t.Errorf("expected default max bytes, got %d", g.MaxBytes())
	}
}

func TestGatewayRejectsBeforeBackend(t *testing.T) {
	backend := &fakeBackend{}
	g := NewGateway(backend, 1024, time.Second)

	inputs := map[string][]byte{
		"empty":     {},
		"not image": []byte("hello world"),
		"too large": bytes.Repeat([]byte{0xff}, 2048),
	}
	for name, data := range inputs {
		_, err := g.Store(context.Background(), FolderLostItems, bytes.NewReader(data))
		if !errors.Is(err, ErrInvalidUpload) {
			t.Errorf("%s: expected ErrInvalidUpload, got %v", name, err)
		}
	}
	if backend.puts != 0 {
		t.Errorf("backend must not be called for invalid uploads, got %d puts", backend.puts)
	}
}

func TestGatewayBackendFailure(t *testing.T) {
	g := NewGateway(&fakeBackend{putErr: errors.New("connection refused")}, 0, 0)

	_, err := g.Store(context.Background(), FolderFoundItems, bytes.NewReader(testPNG(t)))
	if !errors.Is(err, ErrUploadFailed) {
		t.Errorf("expected ErrUploadFailed, got %v", err)
	}
}

func TestGatewayTimeout(t *testing.T) {
	g := NewGateway(&fakeBackend{block: true}, 0, 50*time.Millisecond)

	start := time.Now()
	_, err := g.Store(context.Background(), FolderFoundItems, bytes.NewReader(testPNG(t)))
	if !errors.Is(err, ErrUploadFailed) {
		t.Errorf("expected ErrUploadFailed on timeout, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("timeout was not applied")
	}
}

func TestGatewayRemoveSwallowsErrors(t *testing.T) {
	backend := &fakeBackend{}
	g := NewGateway(backend, 0, 0)

	g.Remove(context.Background(), `lost_items\a.jpg`)
	g.Remove(context.Background(), "")

	if len(backend.deletes) != 1 || backend.deletes[0] != "lost_items/a.jpg" {
		t.Errorf("unexpected deletes: %v", backend.deletes)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		`found_items\abc`:  "found_items/abc",
		"lost_items/x.jpg": "lost_items/x.jpg",
		`a\b\c`:            "a/b/c",
		"":                 "",
	}
	for in, want := range tests {
		if got := NormalizePath(in); got != want {
			t.Errorf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}
