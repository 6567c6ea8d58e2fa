package api

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/storage"
)

// FilesHandler serves images kept on local disk.
type FilesHandler struct {
	Local *storage.Local
}

// Serve handles GET /storage/{path...}.
func (h *FilesHandler) Serve(w http.ResponseWriter, r *http.Request) {
	f, err := h.Local.Open(r.PathValue("path"))
	switch {
	case errors.Is(err, storage.ErrBadPath):
		jsonError(w, http.StatusBadRequest, "invalid path")
		return
	case errors.Is(err, fs.ErrNotExist):
		jsonError(w, http.StatusNotFound, "file not found")
		return
	case err != nil:
		slog.Error("failed to open stored file", "error", err)
		jsonError(w, http.StatusNotFound, "file not found")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		jsonError(w, http.StatusNotFound, "file not found")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
