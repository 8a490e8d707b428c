package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hilloIsTheBest/Reservation-hub/internal/ics"
	"github.com/hilloIsTheBest/Reservation-hub/internal/metrics"
	"github.com/hilloIsTheBest/Reservation-hub/internal/persistence"
)

// fallbackResourceName receives imported events whose summary does not name
// a known resource.
const fallbackResourceName = "Imported"

// FeedFetcher retrieves a peer server's resource catalog and calendar feed.
type FeedFetcher interface {
	FetchResources(ctx context.Context, serverURL string) ([]ics.RemoteResource, error)
	FetchCalendar(ctx context.Context, serverURL string) ([]ics.ParsedEvent, error)
}

// SyncService reconciles a home's reservations against a peer server's feed.
type SyncService struct {
	reservations persistence.ReservationRepository
	resources    persistence.ResourceRepository
	homes        persistence.HomeRepository
	fetcher      FeedFetcher
	fetchTimeout time.Duration
	locks        *LockRegistry
	now          func() time.Time
	logger       *slog.Logger
}

// NewSyncService constructs a sync service with the provided dependencies.
// Pass the same lock registry as the booking service so reconciliation runs
// and bookings for one home exclude each other.
func NewSyncService(reservations persistence.ReservationRepository, resources persistence.ResourceRepository, homes persistence.HomeRepository, fetcher FeedFetcher, fetchTimeout time.Duration, locks *LockRegistry, now func() time.Time, logger *slog.Logger) *SyncService {
	if fetchTimeout <= 0 {
		fetchTimeout = 15 * time.Second
	}
	if locks == nil {
		locks = NewLockRegistry()
	}
	if now == nil {
		now = time.Now
	}
	return &SyncService{
		reservations: reservations,
		resources:    resources,
		homes:        homes,
		fetcher:      fetcher,
		fetchTimeout: fetchTimeout,
		locks:        locks,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *SyncService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SyncService", operation, attrs...)
}

// Reconcile pulls the peer's resource catalog and calendar feed, then makes
// the home's reservations an exact mirror of the feed: resources are upserted
// by name, every existing reservation in the home is deleted, and each feed
// event is imported as an independent one-off template. The run is serialized
// per home so a concurrent sync or booking cannot land between the delete and
// the reimport. Stages are not transactional: resources upserted before a
// later failure stay in place, which is safe because re-running the whole
// reconcile is idempotent.
func (s *SyncService) Reconcile(ctx context.Context, principal Principal, params ReconcileParams) (report ReconcileReport, err error) {
	if s == nil {
		err = fmt.Errorf("SyncService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Reconcile",
		"principal_id", principal.UserID,
		"home_id", params.HomeID,
	)
	defer func() {
		if err != nil {
			metrics.SyncRun("failure")
			logger.ErrorContext(ctx, "reconciliation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		metrics.SyncRun("success")
		metrics.SyncEventsImported(report.EventsImported)
		logger.With(
			"resources_created", report.ResourcesCreated,
			"resources_updated", report.ResourcesUpdated,
			"events_imported", report.EventsImported,
		).InfoContext(ctx, "reconciliation completed")
	}()

	serverURL := strings.TrimSpace(params.ServerURL)
	if serverURL == "" {
		vErr := &ValidationError{}
		vErr.add("server_url", "server URL is required")
		err = vErr
		return
	}

	if err = s.requireMembership(ctx, principal, params.HomeID); err != nil {
		return
	}
	if _, err = s.homes.GetHome(ctx, params.HomeID); err != nil {
		err = mapRepoError(err)
		return
	}

	release := s.locks.acquire(homeLockKey(params.HomeID))
	defer release()

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	remoteResources, fetchErr := s.fetcher.FetchResources(fetchCtx, serverURL)
	if fetchErr != nil {
		err = &SyncError{Stage: SyncStageFetchResources, Err: fetchErr}
		return
	}

	created, updated, applyErr := s.upsertResources(ctx, params.HomeID, remoteResources)
	if applyErr != nil {
		err = &SyncError{Stage: SyncStageApply, Err: applyErr}
		return
	}
	report.ResourcesCreated = created
	report.ResourcesUpdated = updated

	// Upserted resources stay in place when the calendar fetch fails; the
	// destructive full replace only starts once both fetches have succeeded.
	remoteEvents, fetchErr := s.fetcher.FetchCalendar(fetchCtx, serverURL)
	if fetchErr != nil {
		err = &SyncError{Stage: SyncStageFetchCalendar, Err: fetchErr}
		return
	}

	// Full replace: the feed is the source of truth for the home.
	if _, applyErr = s.reservations.DeleteReservationsForHome(ctx, params.HomeID); applyErr != nil {
		err = &SyncError{Stage: SyncStageApply, Err: applyErr}
		return
	}

	imported, applyErr := s.importEvents(ctx, principal, params.HomeID, remoteEvents)
	if applyErr != nil {
		err = &SyncError{Stage: SyncStageApply, Err: applyErr}
		return
	}
	report.EventsImported = imported
	return
}

func (s *SyncService) upsertResources(ctx context.Context, homeID int64, remote []ics.RemoteResource) (created, updated int, err error) {
	scope := persistence.ResourceScope{HomeID: &homeID}
	now := s.now().UTC()

	for _, rr := range remote {
		name := strings.TrimSpace(rr.Name)
		if name == "" {
			continue
		}

		existing, getErr := s.resources.GetResourceByName(ctx, scope, name)
		if errors.Is(getErr, persistence.ErrNotFound) {
			color := rr.Color
			if color == "" {
				color = defaultResourceColor
			}
			if _, createErr := s.resources.CreateResource(ctx, persistence.Resource{
				HomeID:    &homeID,
				Name:      name,
				Color:     color,
				CreatedAt: now,
				UpdatedAt: now,
			}); createErr != nil {
				return created, updated, createErr
			}
			created++
			continue
		}
		if getErr != nil {
			return created, updated, getErr
		}

		if rr.Color != "" && existing.Color != rr.Color {
			existing.Color = rr.Color
			existing.UpdatedAt = now
			if updateErr := s.resources.UpdateResource(ctx, existing); updateErr != nil {
				return created, updated, updateErr
			}
			updated++
		}
	}
	return created, updated, nil
}

func (s *SyncService) importEvents(ctx context.Context, principal Principal, homeID int64, events []ics.ParsedEvent) (int, error) {
	scope := persistence.ResourceScope{HomeID: &homeID}
	now := s.now().UTC()
	imported := 0

	for _, event := range events {
		if event.Start.IsZero() || event.End.IsZero() {
			continue
		}

		resourceName, title := splitSummary(event.Summary)
		resource, err := s.resolveResource(ctx, homeID, scope, resourceName, now)
		if err != nil {
			return imported, err
		}

		if _, err := s.reservations.CreateReservation(ctx, persistence.Reservation{
			ResourceID: resource.ID,
			UserID:     principal.UserID,
			HomeID:     &homeID,
			Title:      title,
			StartUTC:   event.Start.UTC(),
			EndUTC:     event.End.UTC(),
			CreatedAt:  now,
			UpdatedAt:  now,
		}); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

// resolveResource finds the named resource in the home, falling back to the
// shared import resource when the name is absent or unknown.
func (s *SyncService) resolveResource(ctx context.Context, homeID int64, scope persistence.ResourceScope, name string, now time.Time) (persistence.Resource, error) {
	if name != "" {
		resource, err := s.resources.GetResourceByName(ctx, scope, name)
		if err == nil {
			return resource, nil
		}
		if !errors.Is(err, persistence.ErrNotFound) {
			return persistence.Resource{}, err
		}
	}

	fallback, err := s.resources.GetResourceByName(ctx, scope, fallbackResourceName)
	if err == nil {
		return fallback, nil
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		return persistence.Resource{}, err
	}

	return s.resources.CreateResource(ctx, persistence.Resource{
		HomeID:    &homeID,
		Name:      fallbackResourceName,
		Color:     defaultResourceColor,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// splitSummary divides an event summary into resource name and title on the
// first colon. A summary without a colon is all title.
func splitSummary(summary string) (resourceName, title string) {
	summary = strings.TrimSpace(summary)
	if idx := strings.Index(summary, ":"); idx >= 0 {
		return strings.TrimSpace(summary[:idx]), strings.TrimSpace(summary[idx+1:])
	}
	return "", summary
}

func (s *SyncService) requireMembership(ctx context.Context, principal Principal, homeID int64) error {
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
