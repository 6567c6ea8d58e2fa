package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/storage"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// validationError writes a 422 listing each rejected field.
func validationError(w http.ResponseWriter, errs model.ValidationErrors) {
	jsonResponse(w, http.StatusUnprocessableEntity, map[string]any{
		"error":  "validation failed",
		"fields": errs,
	})
}

// uploadError maps a storage.Gateway error for the given form field.
func uploadError(w http.ResponseWriter, field string, err error) {
	switch {
	case errors.Is(err, storage.ErrInvalidUpload):
		validationError(w, model.ValidationErrors{field: "must be a valid JPEG, PNG or WebP image up to the size limit"})
	case errors.Is(err, storage.ErrUploadFailed):
		jsonError(w, http.StatusBadGateway, "image upload failed")
	default:
		slog.Error("unexpected upload error", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
