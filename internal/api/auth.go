package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// AuthHandler handles registration and session endpoints.
type AuthHandler struct {
	DB *sqlx.DB
}

type registerRequest struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,max=255,email"`
	Password             string `json:"password" validate:"required,min=6,eqfield=PasswordConfirmation"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = model.NormalizeEmail(req.Email)
	if errs := model.Validate(&req); !errs.Empty() {
		validationError(w, errs)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	token, err := auth.GenerateToken()
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, req.Name, req.Email, hash, auth.HashToken(token))
	if errors.Is(err, store.ErrEmailTaken) {
		validationError(w, model.ValidationErrors{"email": "email has already been taken"})
		return
	}
	if err != nil {
		slog.Error("failed to create user", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	slog.Info("user registered", "user", user.ID, "email", user.Email)
	jsonResponse(w, http.StatusCreated, authResponse{User: user, Token: token})
}

// Login handles POST /login. A successful login replaces any earlier token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = model.NormalizeEmail(req.Email)
	if errs := model.Validate(&req); !errs.Empty() {
		validationError(w, errs)
		return
	}

	user, err := store.GetUserByEmail(r.Context(), h.DB, req.Email)
	if err != nil {
		slog.Error("failed to look up user", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		// Unknown emails cost the same bcrypt work as wrong passwords.
		auth.CheckPassword(auth.DummyHash(), req.Password)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		slog.Warn("login failed", "email", req.Email, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := auth.GenerateToken()
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := store.SetUserToken(r.Context(), h.DB, user.ID, auth.HashToken(token)); err != nil {
		slog.Error("failed to store token", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	slog.Info("user logged in", "user", user.ID)
	jsonResponse(w, http.StatusOK, authResponse{User: user, Token: token})
}

// Me handles GET /me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, CurrentUser(r.Context()))
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	if err := store.ClearUserToken(r.Context(), h.DB, user.ID); err != nil {
		slog.Error("failed to clear token", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	slog.Info("user logged out", "user", user.ID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}
