package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// UsersHandler handles user management endpoints (admin only).
type UsersHandler struct {
	DB *sql.DB
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type updateUserRequest struct {
	Role string `json:"role"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

var errBadBody = model.Reject(model.KindInvalidInput, "invalid request body")

// lookupUser resolves the {id} path value to an existing user.
func (h *UsersHandler) lookupUser(r *http.Request) (*model.User, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return nil, model.Reject(model.KindNotFound, "user %q not found", r.PathValue("id"))
	}
	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.Reject(model.KindNotFound, "user %d not found", id)
	}
	return user, nil
}

// hashNewPassword checks password strength and hashes it.
func hashNewPassword(password string) (string, error) {
	if err := model.ValidatePassword(password); err != nil {
		return "", model.Reject(model.KindInvalidInput, "%v", err)
	}
	return auth.HashPassword(password)
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, errBadBody)
		return
	}
	if req.Username == "" {
		respondError(w, r, model.Reject(model.KindInvalidInput, "username required"))
		return
	}
	if !model.ValidRole(req.Role) {
		respondError(w, r, model.Reject(model.KindInvalidInput, "invalid role %q", req.Role))
		return
	}

	existing, err := store.GetUserByUsername(r.Context(), h.DB, req.Username)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if existing != nil && existing.DeletedAt == nil {
		jsonError(w, http.StatusConflict, "username already exists")
		return
	}

	hash, err := hashNewPassword(req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, req.Username, hash, req.Role)
	if err != nil {
		respondError(w, r, err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("user created", "user", claims.Username, "new_user", user.Username, "role", user.Role)
	jsonResponse(w, http.StatusCreated, user)
}

// Get handles GET /api/users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.lookupUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// Update handles PUT /api/users/{id}. Only the role can change.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := h.lookupUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, errBadBody)
		return
	}
	if !model.ValidRole(req.Role) {
		respondError(w, r, model.Reject(model.KindInvalidInput, "invalid role %q", req.Role))
		return
	}

	if err := store.UpdateUser(r.Context(), h.DB, user.ID, req.Role); err != nil {
		respondError(w, r, err)
		return
	}
	user.Role = req.Role

	claims := GetClaims(r.Context())
	slog.Info("user role updated", "user", claims.Username, "target_user", user.Username, "new_role", req.Role)
	jsonResponse(w, http.StatusOK, user)
}

// ResetPassword handles PUT /api/users/{id}/password.
func (h *UsersHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	user, err := h.lookupUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, errBadBody)
		return
	}

	hash, err := hashNewPassword(req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := store.UpdateUserPassword(r.Context(), h.DB, user.ID, hash); err != nil {
		respondError(w, r, err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("user password reset", "user", claims.Username, "target_user", user.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password reset"})
}

// Delete handles DELETE /api/users/{id}. The user's wallet is kept; items they
// found cannot be paid out until they are restored.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := h.lookupUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	claims := GetClaims(r.Context())
	if claims.UserID == user.ID {
		respondError(w, r, model.Reject(model.KindInvalidInput, "cannot delete yourself"))
		return
	}

	if err := store.DeleteUser(r.Context(), h.DB, user.ID); err != nil {
		respondError(w, r, err)
		return
	}

	slog.Info("user deleted", "user", claims.Username, "deleted_user", user.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// Restore handles POST /api/users/{id}/restore.
func (h *UsersHandler) Restore(w http.ResponseWriter, r *http.Request) {
	user, err := h.lookupUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if user.DeletedAt == nil {
		respondError(w, r, model.Reject(model.KindInvalidState, "user %s is active", user.Username))
		return
	}

	active, err := store.GetUserByUsername(r.Context(), h.DB, user.Username)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if active != nil && active.DeletedAt == nil {
		jsonError(w, http.StatusConflict, "username is in use")
		return
	}

	if err := store.RestoreUser(r.Context(), h.DB, user.ID); err != nil {
		respondError(w, r, err)
		return
	}
	user.DeletedAt = nil

	claims := GetClaims(r.Context())
	slog.Info("user restored", "user", claims.Username, "restored_user", user.Username)
	jsonResponse(w, http.StatusOK, user)
}
