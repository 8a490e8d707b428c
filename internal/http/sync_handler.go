package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hilloIsTheBest/Reservation-hub/internal/application"
)

// SyncHandler triggers reconciliation against a peer server.
type SyncHandler struct {
	sync      *application.SyncService
	responder responder
	logger    *slog.Logger
}

// NewSyncHandler constructs a SyncHandler.
func NewSyncHandler(sync *application.SyncService, logger *slog.Logger) *SyncHandler {
	logger = defaultLogger(logger)
	return &SyncHandler{sync: sync, responder: newResponder(logger), logger: logger}
}

type syncRequest struct {
	HomeID    int64  `json:"home_id"`
	ServerURL string `json:"server_url"`
}

type syncResponse struct {
	ResourcesCreated int `json:"resources_created"`
	ResourcesUpdated int `json:"resources_updated"`
	EventsImported   int `json:"events_imported"`
}

// Run handles POST /api/sync.
func (h *SyncHandler) Run(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)

	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	report, err := h.sync.Reconcile(ctx, principal, application.ReconcileParams{
		HomeID:    req.HomeID,
		ServerURL: req.ServerURL,
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, syncResponse{
		ResourcesCreated: report.ResourcesCreated,
		ResourcesUpdated: report.ResourcesUpdated,
		EventsImported:   report.EventsImported,
	})
}
