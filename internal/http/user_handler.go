package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hilloIsTheBest/Reservation-hub/internal/application"
)

// UserHandler serves account management endpoints.
type UserHandler struct {
	users     *application.UserService
	responder responder
	logger    *slog.Logger
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(users *application.UserService, logger *slog.Logger) *UserHandler {
	logger = defaultLogger(logger)
	return &UserHandler{users: users, responder: newResponder(logger), logger: logger}
}

// List handles GET /api/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)

	users, err := h.users.ListUsers(ctx, principal)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	payload := make([]userResponse, 0, len(users))
	for _, user := range users {
		payload = append(payload, userResponse{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			IsAdmin:     user.IsAdmin,
		})
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, payload)
}

// Get handles GET /api/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errInvalidID)
		return
	}

	user, err := h.users.GetUser(ctx, principal, id)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, userResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		IsAdmin:     user.IsAdmin,
	})
}

type updateUserRequest struct {
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
	IsAdmin     *bool  `json:"is_admin"`
}

// Update handles PUT /api/users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	user, err := h.users.UpdateUser(ctx, principal, id, application.UserUpdateInput{
		DisplayName: req.DisplayName,
		Password:    req.Password,
		IsAdmin:     req.IsAdmin,
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, userResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		IsAdmin:     user.IsAdmin,
	})
}

// Delete handles DELETE /api/users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errInvalidID)
		return
	}

	if err := h.users.DeleteUser(ctx, principal, id); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}

// pathID parses a chi URL parameter as an int64 identifier.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
