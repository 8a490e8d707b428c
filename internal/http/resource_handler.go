package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hilloIsTheBest/Reservation-hub/internal/application"
	"github.com/hilloIsTheBest/Reservation-hub/internal/persistence"
)

// ResourceHandler serves the resource catalog.
type ResourceHandler struct {
	resources *application.ResourceService
	responder responder
	logger    *slog.Logger
}

// NewResourceHandler constructs a ResourceHandler.
func NewResourceHandler(resources *application.ResourceService, logger *slog.Logger) *ResourceHandler {
	logger = defaultLogger(logger)
	return &ResourceHandler{resources: resources, responder: newResponder(logger), logger: logger}
}

type resourceRequest struct {
	HomeID *int64 `json:"home_id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
}

type resourceResponse struct {
	ID     int64  `json:"id"`
	HomeID *int64 `json:"home_id,omitempty"`
	Name   string `json:"name"`
	Color  string `json:"color"`
}

func toResourceResponse(resource persistence.Resource) resourceResponse {
	return resourceResponse{
		ID:     resource.ID,
		HomeID: resource.HomeID,
		Name:   resource.Name,
		Color:  resource.Color,
	}
}

// Catalog handles GET /api/resources. The endpoint is public so peer servers
// can discover resources before pulling the calendar feed.
func (h *ResourceHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resources, err := h.resources.ListAllResources(ctx)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	payload := make([]resourceResponse, 0, len(resources))
	for _, resource := range resources {
		payload = append(payload, toResourceResponse(resource))
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, payload)
}

// List handles GET /api/homes/{id}/resources.
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)

	homeID, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errInvalidID)
		return
	}

	resources, err := h.resources.ListResources(ctx, principal, &homeID)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	payload := make([]resourceResponse, 0, len(resources))
	for _, resource := range resources {
		payload = append(payload, toResourceResponse(resource))
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, payload)
}

// Create handles POST /api/resources.
func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)

	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	resource, err := h.resources.CreateResource(ctx, principal, application.ResourceInput{
		HomeID: req.HomeID,
		Name:   req.Name,
		Color:  req.Color,
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusCreated, toResourceResponse(resource))
}

// Update handles PUT /api/resources/{id}.
func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	resource, err := h.resources.UpdateResource(ctx, principal, id, application.ResourceInput{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, toResourceResponse(resource))
}

// Delete handles DELETE /api/resources/{id}.
func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errInvalidID)
		return
	}

	if err := h.resources.DeleteResource(ctx, principal, id); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}

// queryID parses an optional integer query parameter, returning nil when the
// parameter is absent.
func queryID(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
