package application

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/hilloIsTheBest/Reservation-hub/internal/persistence"
)

const defaultResourceColor = "#3788d8"

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ResourceService manages the catalog of bookable resources.
type ResourceService struct {
	resources persistence.ResourceRepository
	homes     persistence.HomeRepository
	now       func() time.Time
	logger    *slog.Logger
}

// NewResourceService constructs a resource service with the provided dependencies.
func NewResourceService(resources persistence.ResourceRepository, homes persistence.HomeRepository, now func() time.Time, logger *slog.Logger) *ResourceService {
	if now == nil {
		now = time.Now
	}
	return &ResourceService{resources: resources, homes: homes, now: now, logger: defaultLogger(logger)}
}

func (s *ResourceService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ResourceService", operation, attrs...)
}

// CreateResource validates input and persists a new resource. Resources in a
// home require membership; global resources require admin.
func (s *ResourceService) CreateResource(ctx context.Context, principal Principal, input ResourceInput) (resource persistence.Resource, err error) {
	if s == nil {
		err = fmt.Errorf("ResourceService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateResource", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create resource", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("resource_id", resource.ID).InfoContext(ctx, "resource created")
	}()

	if err = s.requireScopeAccess(ctx, principal, input.HomeID); err != nil {
		return
	}

	var validated persistence.Resource
	validated, err = s.validateInput(input)
	if err != nil {
		return
	}

	now := s.now().UTC()
	validated.CreatedAt = now
	validated.UpdatedAt = now

	resource, err = s.resources.CreateResource(ctx, validated)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// GetResource returns a resource the principal is allowed to see.
func (s *ResourceService) GetResource(ctx context.Context, principal Principal, id int64) (persistence.Resource, error) {
	if s == nil {
		return persistence.Resource{}, fmt.Errorf("ResourceService is nil")
	}

	resource, err := s.resources.GetResource(ctx, id)
	if err != nil {
		return persistence.Resource{}, mapRepoError(err)
	}
	if resource.HomeID != nil {
		if err := s.requireMembership(ctx, principal, *resource.HomeID); err != nil {
			return persistence.Resource{}, err
		}
	}
	return resource, nil
}

// ListResources returns the resources in a scope: one home, or the global
// scope when homeID is nil.
func (s *ResourceService) ListResources(ctx context.Context, principal Principal, homeID *int64) ([]persistence.Resource, error) {
	if s == nil {
		return nil, fmt.Errorf("ResourceService is nil")
	}
	if homeID != nil {
		if err := s.requireMembership(ctx, principal, *homeID); err != nil {
			return nil, err
		}
	}

	resources, err := s.resources.ListResources(ctx, persistence.ResourceScope{HomeID: homeID})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return resources, nil
}

// ListAllResources returns every resource across all scopes. Used by the
// public catalog and feed endpoints.
func (s *ResourceService) ListAllResources(ctx context.Context) ([]persistence.Resource, error) {
	if s == nil {
		return nil, fmt.Errorf("ResourceService is nil")
	}
	resources, err := s.resources.ListAllResources(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return resources, nil
}

// UpdateResource changes a resource's name and color.
func (s *ResourceService) UpdateResource(ctx context.Context, principal Principal, id int64, input ResourceInput) (resource persistence.Resource, err error) {
	if s == nil {
		err = fmt.Errorf("ResourceService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateResource", "principal_id", principal.UserID, "resource_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update resource", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "resource updated")
	}()

	var existing persistence.Resource
	existing, err = s.resources.GetResource(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if err = s.requireScopeAccess(ctx, principal, existing.HomeID); err != nil {
		return
	}

	var validated persistence.Resource
	validated, err = s.validateInput(ResourceInput{HomeID: existing.HomeID, Name: input.Name, Color: input.Color})
	if err != nil {
		return
	}

	existing.Name = validated.Name
	existing.Color = validated.Color
	existing.UpdatedAt = s.now().UTC()

	if err = s.resources.UpdateResource(ctx, existing); err != nil {
		err = mapRepoError(err)
		return
	}
	resource = existing
	return
}

// DeleteResource removes a resource that has no reservations.
func (s *ResourceService) DeleteResource(ctx context.Context, principal Principal, id int64) error {
	if s == nil {
		return fmt.Errorf("ResourceService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteResource", "principal_id", principal.UserID, "resource_id", id)

	existing, err := s.resources.GetResource(ctx, id)
	if err != nil {
		return mapRepoError(err)
	}
	if err := s.requireScopeAccess(ctx, principal, existing.HomeID); err != nil {
		return err
	}

	if err := s.resources.DeleteResource(ctx, id); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete resource", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "resource deleted")
	return nil
}

func (s *ResourceService) validateInput(input ResourceInput) (persistence.Resource, error) {
	vErr := &ValidationError{}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		vErr.add("name", "name is required")
	}

	color := strings.TrimSpace(input.Color)
	if color == "" {
		color = defaultResourceColor
	} else if !colorPattern.MatchString(color) {
		vErr.add("color", "color must be a #rrggbb hex value")
	}

	if vErr.HasErrors() {
		return persistence.Resource{}, vErr
	}
	return persistence.Resource{HomeID: input.HomeID, Name: name, Color: strings.ToLower(color)}, nil
}

func (s *ResourceService) requireMembership(ctx context.Context, principal Principal, homeID int64) error {
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

// requireScopeAccess checks write access to a resource scope: membership for
// home resources, admin for global ones.
func (s *ResourceService) requireScopeAccess(ctx context.Context, principal Principal, homeID *int64) error {
	if homeID == nil {
		if !principal.IsAdmin {
			return ErrUnauthorized
		}
		return nil
	}
	return s.requireMembership(ctx, principal, *homeID)
}
