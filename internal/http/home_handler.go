package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hilloIsTheBest/Reservation-hub/internal/application"
)

// HomeHandler serves home and membership endpoints.
type HomeHandler struct {
	homes     *application.HomeService
	responder responder
	logger    *slog.Logger
}

// NewHomeHandler constructs a HomeHandler.
func NewHomeHandler(homes *application.HomeService, logger *slog.Logger) *HomeHandler {
	logger = defaultLogger(logger)
	return &HomeHandler{homes: homes, responder: newResponder(logger), logger: logger}
}

type homeRequest struct {
	Name string `json:"name"`
}

type homeResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	OwnerID int64  `json:"owner_id"`
}

// Create handles POST /api/homes.
func (h *HomeHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)

	var req homeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	home, err := h.homes.CreateHome(ctx, principal, application.HomeInput{Name: req.Name})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusCreated, homeResponse{ID: home.ID, Name: home.Name, OwnerID: home.OwnerID})
}

// List handles GET /api/homes.
func (h *HomeHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)

	homes, err := h.homes.ListHomes(ctx, principal)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	payload := make([]homeResponse, 0, len(homes))
	for _, home := range homes {
		payload = append(payload, homeResponse{ID: home.ID, Name: home.Name, OwnerID: home.OwnerID})
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, payload)
}

// Get handles GET /api/homes/{id}.
func (h *HomeHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errInvalidID)
		return
	}

	home, err := h.homes.GetHome(ctx, principal, id)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, homeResponse{ID: home.ID, Name: home.Name, OwnerID: home.OwnerID})
}

// Delete handles DELETE /api/homes/{id}.
func (h *HomeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errInvalidID)
		return
	}

	if err := h.homes.DeleteHome(ctx, principal, id); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}

// ListMembers handles GET /api/homes/{id}/members.
func (h *HomeHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errInvalidID)
		return
	}

	members, err := h.homes.ListMembers(ctx, principal, id)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	payload := make([]userResponse, 0, len(members))
	for _, member := range members {
		payload = append(payload, userResponse{
			ID:          member.ID,
			Email:       member.Email,
			DisplayName: member.DisplayName,
			IsAdmin:     member.IsAdmin,
		})
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, payload)
}

type addMemberRequest struct {
	UserID int64 `json:"user_id"`
}

// AddMember handles POST /api/homes/{id}/members.
func (h *HomeHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if err := h.homes.AddMember(ctx, principal, id, req.UserID); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}

// RemoveMember handles DELETE /api/homes/{id}/members/{userID}.
func (h *HomeHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errInvalidID)
		return
	}
	userID, err := pathID(r, "userID")
	if err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errInvalidID)
		return
	}

	if err := h.homes.RemoveMember(ctx, principal, id, userID); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}
