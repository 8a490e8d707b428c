package http

import (
	"log/slog"
	"net/http"

	"github.com/hilloIsTheBest/Reservation-hub/internal/application"
	"github.com/hilloIsTheBest/Reservation-hub/internal/timeutil"
)

// EventHandler serves the expanded calendar view.
type EventHandler struct {
	calendar   *application.CalendarService
	normalizer *timeutil.Normalizer
	responder  responder
	logger     *slog.Logger
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(calendar *application.CalendarService, normalizer *timeutil.Normalizer, logger *slog.Logger) *EventHandler {
	logger = defaultLogger(logger)
	return &EventHandler{calendar: calendar, normalizer: normalizer, responder: newResponder(logger), logger: logger}
}

type occurrenceResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end"`
	ResourceID  int64  `json:"resource_id"`
	Resource    string `json:"resource"`
	Color       string `json:"color"`
	Recurring   bool   `json:"recurring"`
	CanDelete   bool   `json:"canDelete"`
}

// List handles GET /api/events. The window comes from the start and end query
// parameters; resource_id and home_id narrow the result.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)

	query := r.URL.Query()
	start, err := h.normalizer.Parse(query.Get("start"))
	if err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, err)
		return
	}
	end, err := h.normalizer.Parse(query.Get("end"))
	if err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, err)
		return
	}

	resourceID, err := queryID(r, "resource_id")
	if err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errInvalidID)
		return
	}
	homeID, err := queryID(r, "home_id")
	if err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errInvalidID)
		return
	}

	views, err := h.calendar.ListOccurrences(ctx, principal, application.OccurrenceQuery{
		Start:      start,
		End:        end,
		ResourceID: resourceID,
		HomeID:     homeID,
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	payload := make([]occurrenceResponse, 0, len(views))
	for _, view := range views {
		payload = append(payload, occurrenceResponse{
			ID:          view.TemplateID,
			Title:       view.Title,
			Description: view.Description,
			Start:       timeutil.Format(view.Start),
			End:         timeutil.Format(view.End),
			ResourceID:  view.ResourceID,
			Resource:    view.ResourceName,
			Color:       view.Color,
			Recurring:   view.Recurring,
			CanDelete:   view.CanDelete,
		})
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, payload)
}
