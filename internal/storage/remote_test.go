package storage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/erazemk/lostfound/internal/auth"
)

const (
	testAPIKey    = "test-key"
	testAPISecret = "test-secret"
)

// fakeHost stands in for the remote image host.
type fakeHost struct {
	mu        sync.Mutex
	uploads   int
	deleted   []string
	secureURL string
	status    int
	body      string
}

func (h *fakeHost) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.ValidateServiceToken(testAPISecret, strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	if err != nil || claims.Issuer != testAPIKey {
		http.Error(w, "bad token", http.StatusUnauthorized)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/upload":
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		folder := r.FormValue("folder")
		if claims.Folder != folder {
			http.Error(w, "folder mismatch", http.StatusForbidden)
			return
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		io.Copy(io.Discard, f)
		f.Close()
		h.uploads++

		if h.status != 0 {
			w.WriteHeader(h.status)
			io.WriteString(w, h.body)
			return
		}
		secure := h.secureURL
		if secure == "" {
			secure = "https://cdn.example.test/" + folder + "/abc.jpg"
		}
		json.NewEncoder(w).Encode(map[string]string{
			"secure_url": secure,
			"public_id":  folder + `\abc`,
		})
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/assets/"):
		h.deleted = append(h.deleted, strings.TrimPrefix(r.URL.Path, "/assets/"))
		w.WriteHeader(http.StatusNotFound)
	default:
		http.NotFound(w, r)
	}
}

func newTestRemote(t *testing.T, host *fakeHost) *Remote {
	t.Helper()
	server := httptest.NewServer(host)
	t.Cleanup(server.Close)
	return NewRemote(server.URL+"/", testAPIKey, testAPISecret, server.Client())
}

func TestRemotePut(t *testing.T) {
	host := &fakeHost{}
	r := newTestRemote(t, host)

	stored, err := r.Put(context.Background(), FolderFoundItems, []byte("jpeg"), "image/jpeg")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if stored.Path != "found_items/abc" {
		t.Errorf("expected normalized public id, got %q", stored.Path)
	}
	if stored.URL != "https://cdn.example.test/found_items/abc.jpg" {
		t.Errorf("unexpected url %q", stored.URL)
	}
	if host.uploads != 1 {
		t.Errorf("expected 1 upload, got %d", host.uploads)
	}
}

func TestRemotePutRejectsBadResponses(t *testing.T) {
	tests := []struct {
		name string
		host *fakeHost
	}{
		{"http url", &fakeHost{secureURL: "http://cdn.example.test/x.jpg"}},
		{"server error", &fakeHost{status: http.StatusInternalServerError, body: "oops"}},
		{"malformed body", &fakeHost{status: http.StatusOK, body: "not json"}},
		{"missing url", &fakeHost{status: http.StatusOK, body: `{"public_id":"x"}`}},
	}

	for _, tt := range tests {
		r := newTestRemote(t, tt.host)
		if _, err := r.Put(context.Background(), FolderLostItems, []byte("jpeg"), "image/jpeg"); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestRemotePutWrongSecret(t *testing.T) {
	server := httptest.NewServer(&fakeHost{})
	t.Cleanup(server.Close)
	r := NewRemote(server.URL, testAPIKey, "wrong-secret", server.Client())

	if _, err := r.Put(context.Background(), FolderLostItems, []byte("jpeg"), "image/jpeg"); err == nil {
		t.Error("expected error when the host rejects the token")
	}
}

func TestRemoteDeleteMissingIsOK(t *testing.T) {
	host := &fakeHost{}
	r := newTestRemote(t, host)

	if err := r.Delete(context.Background(), "lost_items/abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(host.deleted) != 1 || host.deleted[0] != "lost_items/abc" {
		t.Errorf("unexpected deletes: %v", host.deleted)
	}
}

func TestRemoteUnreachable(t *testing.T) {
	server := httptest.NewServer(&fakeHost{})
	url := server.URL
	server.Close()

	r := NewRemote(url, testAPIKey, testAPISecret, nil)
	if _, err := r.Put(context.Background(), FolderLostItems, []byte("jpeg"), "image/jpeg"); err == nil {
		t.Error("expected error for unreachable host")
	}
}
