package http

import (
	"log/slog"
	"net/http"

	"github.com/hilloIsTheBest/Reservation-hub/internal/application"
)

// ICSHandler serves read-only iCalendar feeds.
type ICSHandler struct {
	calendar  *application.CalendarService
	responder responder
	logger    *slog.Logger
}

// NewICSHandler constructs an ICSHandler.
func NewICSHandler(calendar *application.CalendarService, logger *slog.Logger) *ICSHandler {
	logger = defaultLogger(logger)
	return &ICSHandler{calendar: calendar, responder: newResponder(logger), logger: logger}
}

// All handles GET /ics/all.ics.
func (h *ICSHandler) All(w http.ResponseWriter, r *http.Request) {
	h.serveFeed(w, r, application.FeedScope{})
}

// Resource handles GET /ics/resource/{id}.ics.
func (h *ICSHandler) Resource(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}
	h.serveFeed(w, r, application.FeedScope{ResourceID: &id})
}

// Home handles GET /ics/home/{id}.ics.
func (h *ICSHandler) Home(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}
	h.serveFeed(w, r, application.FeedScope{HomeID: &id})
}

func (h *ICSHandler) serveFeed(w http.ResponseWriter, r *http.Request, scope application.FeedScope) {
	ctx := r.Context()

	feed, err := h.calendar.BuildFeed(ctx, scope)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(feed)); err != nil {
		h.logger.ErrorContext(ctx, "failed to write calendar feed", "error", err)
	}
}
