package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hilloIsTheBest/Reservation-hub/internal/application"
	"github.com/hilloIsTheBest/Reservation-hub/internal/timeutil"
)

// BookingHandler serves reservation creation and deletion.
type BookingHandler struct {
	bookings   *application.BookingService
	normalizer *timeutil.Normalizer
	responder  responder
	logger     *slog.Logger
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(bookings *application.BookingService, normalizer *timeutil.Normalizer, logger *slog.Logger) *BookingHandler {
	logger = defaultLogger(logger)
	return &BookingHandler{bookings: bookings, normalizer: normalizer, responder: newResponder(logger), logger: logger}
}

type bookingRequest struct {
	ResourceID     int64  `json:"resource_id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Start          string `json:"start"`
	End            string `json:"end"`
	RecurrenceRule string `json:"recurrence_rule"`
}

type bookingResponse struct {
	ID             int64  `json:"id"`
	ResourceID     int64  `json:"resource_id"`
	UserID         int64  `json:"user_id"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	Start          string `json:"start"`
	End            string `json:"end"`
	RecurrenceRule string `json:"recurrence_rule,omitempty"`
}

// Create handles POST /api/bookings.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	fieldErrors := map[string]string{}
	start, err := h.normalizer.Parse(req.Start)
	if err != nil {
		fieldErrors["start"] = "must be a valid timestamp"
	}
	end, err := h.normalizer.Parse(req.End)
	if err != nil {
		fieldErrors["end"] = "must be a valid timestamp"
	}
	if len(fieldErrors) > 0 {
		h.responder.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			Message: "the input is invalid",
			Errors:  fieldErrors,
		})
		return
	}

	reservation, err := h.bookings.CreateBooking(ctx, principal, application.BookingInput{
		ResourceID:     req.ResourceID,
		Title:          req.Title,
		Description:    req.Description,
		Start:          start,
		End:            end,
		RecurrenceRule: req.RecurrenceRule,
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusCreated, bookingResponse{
		ID:             reservation.ID,
		ResourceID:     reservation.ResourceID,
		UserID:         reservation.UserID,
		Title:          reservation.Title,
		Description:    reservation.Description,
		Start:          timeutil.Format(reservation.StartUTC),
		End:            timeutil.Format(reservation.EndUTC),
		RecurrenceRule: reservation.RecurrenceRule,
	})
}

// Get handles GET /api/bookings/{id}.
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errInvalidID)
		return
	}

	reservation, err := h.bookings.GetBooking(ctx, principal, id)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, bookingResponse{
		ID:             reservation.ID,
		ResourceID:     reservation.ResourceID,
		UserID:         reservation.UserID,
		Title:          reservation.Title,
		Description:    reservation.Description,
		Start:          timeutil.Format(reservation.StartUTC),
		End:            timeutil.Format(reservation.EndUTC),
		RecurrenceRule: reservation.RecurrenceRule,
	})
}

// Delete handles DELETE /api/bookings/{id}.
func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errInvalidID)
		return
	}

	if err := h.bookings.DeleteBooking(ctx, principal, id); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}
