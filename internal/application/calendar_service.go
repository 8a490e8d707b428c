package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/hilloIsTheBest/Reservation-hub/internal/ics"
	"github.com/hilloIsTheBest/Reservation-hub/internal/metrics"
	"github.com/hilloIsTheBest/Reservation-hub/internal/persistence"
	"github.com/hilloIsTheBest/Reservation-hub/internal/recurrence"
)

// CalendarService materializes reservation templates into the occurrence
// lists served to calendar views and exported feeds.
type CalendarService struct {
	reservations  persistence.ReservationRepository
	resources     persistence.ResourceRepository
	homes         persistence.HomeRepository
	engine        *recurrence.Engine
	exportHorizon time.Duration
	now           func() time.Time
	logger        *slog.Logger
}

// NewCalendarService constructs a calendar service with the provided dependencies.
func NewCalendarService(reservations persistence.ReservationRepository, resources persistence.ResourceRepository, homes persistence.HomeRepository, exportHorizon time.Duration, now func() time.Time, logger *slog.Logger) *CalendarService {
	if exportHorizon <= 0 {
		exportHorizon = 365 * 24 * time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &CalendarService{
		reservations:  reservations,
		resources:     resources,
		homes:         homes,
		engine:        recurrence.NewEngine(),
		exportHorizon: exportHorizon,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

func (s *CalendarService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CalendarService", operation, attrs...)
}

// ListOccurrences expands every template matching the query into the concrete
// occurrences intersecting the half-open window, ordered by start time.
func (s *CalendarService) ListOccurrences(ctx context.Context, principal Principal, query OccurrenceQuery) (views []OccurrenceView, err error) {
	if s == nil {
		err = fmt.Errorf("CalendarService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ListOccurrences",
		"principal_id", principal.UserID,
		"window_start", query.Start,
		"window_end", query.End,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list occurrences", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(views)).InfoContext(ctx, "occurrences listed")
	}()

	if !query.Start.Before(query.End) {
		vErr := &ValidationError{}
		vErr.add("end", "window end must be after window start")
		err = vErr
		return
	}

	var templates []persistence.Reservation
	templates, err = s.reservations.ListReservations(ctx, persistence.ReservationFilter{
		ResourceID: query.ResourceID,
		HomeID:     query.HomeID,
		Start:      &query.Start,
		End:        &query.End,
	})
	if err != nil {
		err = mapRepoError(err)
		return
	}

	resourceIndex, idxErr := s.resourceIndex(ctx)
	if idxErr != nil {
		err = idxErr
		return
	}

	homeOwners := map[int64]int64{}
	views = make([]OccurrenceView, 0, len(templates))
	for _, tpl := range templates {
		occurrences, outcome := s.engine.Expand(recurrence.Template{
			ID:         tpl.ID,
			ResourceID: tpl.ResourceID,
			Start:      tpl.StartUTC,
			End:        tpl.EndUTC,
			Rule:       tpl.RecurrenceRule,
		}, query.Start, query.End)
		if outcome == recurrence.OutcomeFallback {
			metrics.RecurrenceFallback()
			logger.With("reservation_id", tpl.ID, "rule", tpl.RecurrenceRule).WarnContext(ctx, "recurrence rule unparseable, degraded to single occurrence")
		}

		resource := resourceIndex[tpl.ResourceID]
		canDelete := principal.IsAdmin || tpl.UserID == principal.UserID
		if !canDelete && tpl.HomeID != nil {
			ownerID, known := homeOwners[*tpl.HomeID]
			if !known {
				home, homeErr := s.homes.GetHome(ctx, *tpl.HomeID)
				if homeErr != nil {
					err = mapRepoError(homeErr)
					return
				}
				ownerID = home.OwnerID
				homeOwners[*tpl.HomeID] = ownerID
			}
			canDelete = ownerID == principal.UserID
		}
		for _, occ := range occurrences {
			views = append(views, OccurrenceView{
				TemplateID:   tpl.ID,
				ResourceID:   tpl.ResourceID,
				ResourceName: resource.Name,
				Color:        resource.Color,
				Title:        tpl.Title,
				Description:  tpl.Description,
				Start:        occ.Start,
				End:          occ.End,
				Recurring:    occ.Recurring,
				CanDelete:    canDelete,
			})
		}
	}

	sort.SliceStable(views, func(i, j int) bool {
		if views[i].Start.Equal(views[j].Start) {
			return views[i].TemplateID < views[j].TemplateID
		}
		return views[i].Start.Before(views[j].Start)
	})
	return
}

// BuildFeed serializes the reservations in scope into an iCalendar document.
// Recurring templates are materialized over the export horizon; one-off
// templates are always included.
func (s *CalendarService) BuildFeed(ctx context.Context, scope FeedScope) (string, error) {
	if s == nil {
		return "", fmt.Errorf("CalendarService is nil")
	}

	templates, err := s.reservations.ListReservations(ctx, persistence.ReservationFilter{
		ResourceID: scope.ResourceID,
		HomeID:     scope.HomeID,
	})
	if err != nil {
		return "", mapRepoError(err)
	}

	resourceIndex, err := s.resourceIndex(ctx)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	windowStart := now.Add(-s.exportHorizon)
	windowEnd := now.Add(s.exportHorizon)

	events := make([]ics.FeedEvent, 0, len(templates))
	for _, tpl := range templates {
		occurrences, outcome := s.engine.Expand(recurrence.Template{
			ID:         tpl.ID,
			ResourceID: tpl.ResourceID,
			Start:      tpl.StartUTC,
			End:        tpl.EndUTC,
			Rule:       tpl.RecurrenceRule,
		}, windowStart, windowEnd)
		if outcome == recurrence.OutcomeFallback {
			metrics.RecurrenceFallback()
		}

		resource := resourceIndex[tpl.ResourceID]
		for _, occ := range occurrences {
			events = append(events, ics.FeedEvent{
				TemplateID:   tpl.ID,
				ResourceName: resource.Name,
				Title:        tpl.Title,
				Description:  tpl.Description,
				Start:        occ.Start,
				End:          occ.End,
				Recurring:    occ.Recurring,
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Start.Equal(events[j].Start) {
			return events[i].TemplateID < events[j].TemplateID
		}
		return events[i].Start.Before(events[j].Start)
	})

	return ics.Export(events, now), nil
}

func (s *CalendarService) resourceIndex(ctx context.Context) (map[int64]persistence.Resource, error) {
	resources, err := s.resources.ListAllResources(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	index := make(map[int64]persistence.Resource, len(resources))
	for _, r := range resources {
		index[r.ID] = r
	}
	return index, nil
}
