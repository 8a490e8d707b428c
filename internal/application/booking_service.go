package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hilloIsTheBest/Reservation-hub/internal/booking"
	"github.com/hilloIsTheBest/Reservation-hub/internal/metrics"
	"github.com/hilloIsTheBest/Reservation-hub/internal/persistence"
)

// defaultBookingTitle labels bookings submitted without a title.
const defaultBookingTitle = "Reservation"

// BookingService creates and removes reservations, guarding every creation
// with the overlap check.
type BookingService struct {
	reservations persistence.ReservationRepository
	resources    persistence.ResourceRepository
	homes        persistence.HomeRepository
	policy       booking.Policy
	locks        *LockRegistry
	now          func() time.Time
	logger       *slog.Logger
}

// NewBookingService constructs a booking service with the provided
// dependencies. Pass the same lock registry as the sync service so bookings
// and reconciliation runs for one home exclude each other.
func NewBookingService(reservations persistence.ReservationRepository, resources persistence.ResourceRepository, homes persistence.HomeRepository, locks *LockRegistry, now func() time.Time, logger *slog.Logger) *BookingService {
	if locks == nil {
		locks = NewLockRegistry()
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		reservations: reservations,
		resources:    resources,
		homes:        homes,
		policy:       booking.DefaultPolicy,
		locks:        locks,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// CreateBooking validates the request, checks the target resource for
// overlapping reservations, and persists the new template. The read-check-
// write cycle runs under a per-resource lock so concurrent requests for the
// same resource cannot both pass the check, and under the home lock for
// home-scoped resources so it cannot run inside a reconcile of that home.
func (s *BookingService) CreateBooking(ctx context.Context, principal Principal, input BookingInput) (reservation persistence.Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateBooking",
		"principal_id", principal.UserID,
		"resource_id", input.ResourceID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("reservation_id", reservation.ID).InfoContext(ctx, "booking created")
	}()

	vErr := &ValidationError{}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = defaultBookingTitle
	}
	if !input.Start.Before(input.End) {
		vErr.add("end", "end must be after start")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var resource persistence.Resource
	resource, err = s.resources.GetResource(ctx, input.ResourceID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if resource.HomeID != nil {
		if err = s.requireMembership(ctx, principal, *resource.HomeID); err != nil {
			return
		}
	}

	// Home first, then resource, matching the sync service so a booking never
	// interleaves with a full-replace reconcile of the same home.
	if resource.HomeID != nil {
		releaseHome := s.locks.acquire(homeLockKey(*resource.HomeID))
		defer releaseHome()
	}
	release := s.locks.acquire(resourceLockKey(resource.ID))
	defer release()

	var existing []persistence.Reservation
	existing, err = s.reservations.ListReservationsForResource(ctx, resource.ID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	candidate := booking.Template{
		ResourceID:     resource.ID,
		Start:          input.Start,
		End:            input.End,
		RecurrenceRule: input.RecurrenceRule,
	}
	templates := make([]booking.Template, len(existing))
	for i, r := range existing {
		templates[i] = booking.Template{
			ID:             r.ID,
			ResourceID:     r.ResourceID,
			Start:          r.StartUTC,
			End:            r.EndUTC,
			RecurrenceRule: r.RecurrenceRule,
		}
	}

	if conflict, found := booking.DetectConflict(templates, candidate, s.policy); found {
		metrics.BookingConflict()
		logger.With("conflicting_reservation_id", conflict.WithTemplateID).WarnContext(ctx, "booking rejected")
		err = ErrConflict
		return
	}

	now := s.now().UTC()
	reservation, err = s.reservations.CreateReservation(ctx, persistence.Reservation{
		ResourceID:     resource.ID,
		UserID:         principal.UserID,
		HomeID:         resource.HomeID,
		Title:          title,
		Description:    strings.TrimSpace(input.Description),
		StartUTC:       input.Start.UTC(),
		EndUTC:         input.End.UTC(),
		RecurrenceRule: strings.TrimSpace(input.RecurrenceRule),
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		err = mapRepoError(err)
		return
	}
	metrics.BookingCreated()
	return
}

// GetBooking returns a reservation template by id.
func (s *BookingService) GetBooking(ctx context.Context, principal Principal, id int64) (persistence.Reservation, error) {
	if s == nil {
		return persistence.Reservation{}, fmt.Errorf("BookingService is nil")
	}

	reservation, err := s.reservations.GetReservation(ctx, id)
	if err != nil {
		return persistence.Reservation{}, mapRepoError(err)
	}
	if reservation.HomeID != nil {
		if err := s.requireMembership(ctx, principal, *reservation.HomeID); err != nil {
			return persistence.Reservation{}, err
		}
	}
	return reservation, nil
}

// DeleteBooking removes a reservation. The booking creator, the owner of the
// home it belongs to, and admins may delete; other members may not.
func (s *BookingService) DeleteBooking(ctx context.Context, principal Principal, id int64) error {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteBooking", "principal_id", principal.UserID, "reservation_id", id)

	reservation, err := s.reservations.GetReservation(ctx, id)
	if err != nil {
		return mapRepoError(err)
	}
	allowed := principal.IsAdmin || reservation.UserID == principal.UserID
	if !allowed && reservation.HomeID != nil {
		home, err := s.homes.GetHome(ctx, *reservation.HomeID)
		if err != nil {
			return mapRepoError(err)
		}
		allowed = home.OwnerID == principal.UserID
	}
	if !allowed {
		return ErrUnauthorized
	}

	if err := s.reservations.DeleteReservation(ctx, id); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete booking", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "booking deleted")
	return nil
}

func (s *BookingService) requireMembership(ctx context.Context, principal Principal, homeID int64) error {
	if principal.IsAdmin {
		return nil
	}
	isMember, err := s.homes.IsMember(ctx, homeID, principal.UserID)
	if err != nil {
		return mapRepoError(err)
	}
	if !isMember {
		return ErrUnauthorized
	}
	return nil
}
