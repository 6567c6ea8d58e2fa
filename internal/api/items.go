package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/storage"
	"github.com/erazemk/lostfound/internal/store"
)

// Form fields accepted for the report photo, in lookup order.
var imageAliases = []string{"image", "photo", "item_photo"}

const foundImageField = "found_image"

// multipartMemory is how much of a multipart body is kept in memory; the rest
// spills to temporary files.
const multipartMemory = 8 << 20

// ItemsHandler handles lost item endpoints.
type ItemsHandler struct {
	DB      *sqlx.DB
	Gateway *storage.Gateway
}

type foundResponse struct {
	Message string          `json:"message"`
	Data    *model.LostItem `json:"data"`
}

// List handles GET /items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	errs := model.ValidationErrors{}

	opts := store.ListOptions{Status: query.Get("status")}
	if opts.Status != "" && !model.ValidStatus(opts.Status) {
		errs.Add("status", "must be one of: lost, found")
	}
	opts.Limit = queryInt(query.Get("limit"), "limit", errs)
	opts.Offset = queryInt(query.Get("offset"), "offset", errs)
	if !errs.Empty() {
		validationError(w, errs)
		return
	}

	items, err := store.ListItems(r.Context(), h.DB, opts)
	if err != nil {
		slog.Error("failed to list items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.LostItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, ok := h.loadItem(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Create handles POST /items. The photo, if any, is stored before the item
// is inserted so a failed upload never leaves a record behind.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.readFields(w, r)
	if !ok {
		return
	}

	errs := fields.Validate(true)
	file, field, err := pickFile(r, imageAliases...)
	if err != nil {
		errs.Add("image", err.Error())
	}
	if file != nil {
		defer file.Close()
	}
	if !errs.Empty() {
		validationError(w, errs)
		return
	}

	item := &model.LostItem{
		Title:       *fields.Title,
		Description: *fields.Description,
		Location:    *fields.Location,
		DateLost:    *fields.DateLost,
		Contact:     *fields.Contact,
	}
	if fields.Status != nil {
		item.Status = *fields.Status
	}
	var userID int64
	if user := CurrentUser(r.Context()); user != nil {
		userID = user.ID
		item.UserID = &user.ID
	}

	if file != nil {
		stored, err := h.Gateway.Store(r.Context(), storage.FolderLostItems, file)
		if err != nil {
			uploadError(w, field, err)
			return
		}
		item.ImagePath = &stored.Path
		item.ImageURL = &stored.URL
	}

	created, err := store.CreateItem(r.Context(), h.DB, item)
	if err != nil {
		slog.Error("failed to create item", "error", err)
		h.removeImage(r.Context(), item.ImagePath)
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	slog.Info("item created", "item", created.ID, "user", userID, "anonymous", item.UserID == nil)
	jsonResponse(w, http.StatusCreated, created)
}

// Update handles PUT and PATCH /items/{id}. Only supplied fields change; a
// found_image upload also marks the item found.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadItem(w, r)
	if !ok {
		return
	}

	fields, ok := h.readFields(w, r)
	if !ok {
		return
	}

	errs := fields.Validate(false)
	file, _, err := pickFile(r, foundImageField)
	if err != nil {
		errs.Add(foundImageField, err.Error())
	}
	if file != nil {
		defer file.Close()
	}
	if !errs.Empty() {
		validationError(w, errs)
		return
	}

	update := store.ItemUpdate{Fields: fields}
	if file != nil {
		stored, err := h.Gateway.Store(r.Context(), storage.FolderFoundItems, file)
		if err != nil {
			uploadError(w, foundImageField, err)
			return
		}
		update.FoundImagePath = &stored.Path
		update.FoundImageURL = &stored.URL
	}

	item, err := store.UpdateItem(r.Context(), h.DB, existing.ID, update)
	if err != nil {
		slog.Error("failed to update item", "item", existing.ID, "error", err)
		h.removeImage(r.Context(), update.FoundImagePath)
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	if item == nil {
		h.removeImage(r.Context(), update.FoundImagePath)
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	// A new proof photo supersedes the old one.
	if update.FoundImagePath != nil {
		h.removeImage(r.Context(), existing.FoundImagePath)
	}

	slog.Info("item updated", "item", item.ID, "user", CurrentUser(r.Context()).ID)
	jsonResponse(w, http.StatusOK, item)
}

// MarkFound handles POST /items/{id}/found.
func (h *ItemsHandler) MarkFound(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadItem(w, r)
	if !ok {
		return
	}

	// Bodies that are not multipart carry no image and fail as missing.
	if isMultipart(r) && !h.parseMultipart(w, r) {
		return
	}

	file, _, err := pickFile(r, foundImageField)
	if err == nil && file == nil {
		err = errors.New("is required")
	}
	if err != nil {
		validationError(w, model.ValidationErrors{foundImageField: err.Error()})
		return
	}
	defer file.Close()

	stored, err := h.Gateway.Store(r.Context(), storage.FolderFoundItems, file)
	if err != nil {
		uploadError(w, foundImageField, err)
		return
	}

	item, err := store.MarkItemFound(r.Context(), h.DB, existing.ID, stored.Path, stored.URL)
	if err != nil {
		slog.Error("failed to mark item found", "item", existing.ID, "error", err)
		h.removeImage(r.Context(), &stored.Path)
		jsonError(w, http.StatusInternalServerError, "failed to mark item found")
		return
	}
	if item == nil {
		h.removeImage(r.Context(), &stored.Path)
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	h.removeImage(r.Context(), existing.FoundImagePath)

	slog.Info("item marked found", "item", item.ID, "user", CurrentUser(r.Context()).ID)
	jsonResponse(w, http.StatusOK, foundResponse{Message: "Item marked as found.", Data: item})
}

// Delete handles DELETE /items/{id}. Stored images are removed afterwards on
// a best-effort basis.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item, ok := h.loadItem(w, r)
	if !ok {
		return
	}

	deleted, err := store.DeleteItem(r.Context(), h.DB, item.ID)
	if err != nil {
		slog.Error("failed to delete item", "item", item.ID, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	if !deleted {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	h.removeImage(r.Context(), item.ImagePath)
	h.removeImage(r.Context(), item.FoundImagePath)

	slog.Info("item deleted", "item", item.ID, "user", CurrentUser(r.Context()).ID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// loadItem parses the {id} path value and fetches the item, writing an error
// response when that fails.
func (h *ItemsHandler) loadItem(w http.ResponseWriter, r *http.Request) (*model.LostItem, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return nil, false
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get item", "item", id, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return nil, false
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return nil, false
	}
	return item, true
}

// removeImage deletes a stored image, if any, even when the request has
// been cancelled.
func (h *ItemsHandler) removeImage(ctx context.Context, path *string) {
	if path != nil {
		h.Gateway.Remove(context.WithoutCancel(ctx), *path)
	}
}

// readFields reads item fields from a multipart form or a JSON body.
func (h *ItemsHandler) readFields(w http.ResponseWriter, r *http.Request) (model.ItemFields, bool) {
	var fields model.ItemFields

	if isMultipart(r) {
		if !h.parseMultipart(w, r) {
			return fields, false
		}
		values := r.MultipartForm.Value
		field := func(name string) *string {
			if v, ok := values[name]; ok && len(v) > 0 {
				return &v[0]
			}
			return nil
		}
		fields.Title = field("title")
		fields.Description = field("description")
		fields.Location = field("location")
		fields.DateLost = field("date_lost")
		fields.Contact = field("contact")
		fields.Status = field("status")
		return fields, true
	}

	if err := decodeJSON(r, &fields); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return fields, false
	}
	return fields, true
}

// parseMultipart parses a multipart body no larger than one upload plus
// form overhead.
func (h *ItemsHandler) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	if r.MultipartForm != nil {
		return true
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.Gateway.MaxBytes()+1<<20)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			validationError(w, model.ValidationErrors{"image": "upload exceeds the size limit"})
			return false
		}
		jsonError(w, http.StatusBadRequest, "invalid multipart form")
		return false
	}
	return true
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// pickFile opens the single uploaded file among the given field names. It
// returns a nil file when none was sent and an error when several were.
func pickFile(r *http.Request, names ...string) (multipart.File, string, error) {
	if r.MultipartForm == nil {
		return nil, "", nil
	}

	var present []string
	for _, name := range names {
		if len(r.MultipartForm.File[name]) > 0 {
			present = append(present, name)
		}
	}

	switch {
	case len(present) == 0:
		return nil, "", nil
	case len(present) > 1 || len(r.MultipartForm.File[present[0]]) > 1:
		return nil, "", errors.New("only one image may be uploaded (" + strings.Join(names, ", ") + ")")
	}

	file, err := r.MultipartForm.File[present[0]][0].Open()
	if err != nil {
		return nil, "", err
	}
	return file, present[0], nil
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(value, name string, errs model.ValidationErrors) int {
	if value == "" {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		errs.Add(name, "must be a non-negative integer")
		return 0
	}
	return n
}
