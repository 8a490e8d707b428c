package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hilloIsTheBest/Reservation-hub/internal/persistence"
)

// HomeService manages shared homes and their memberships.
type HomeService struct {
	homes  persistence.HomeRepository
	users  persistence.UserRepository
	now    func() time.Time
	logger *slog.Logger
}

// NewHomeService constructs a home service with the provided dependencies.
func NewHomeService(homes persistence.HomeRepository, users persistence.UserRepository, now func() time.Time, logger *slog.Logger) *HomeService {
	if now == nil {
		now = time.Now
	}
	return &HomeService{homes: homes, users: users, now: now, logger: defaultLogger(logger)}
}

func (s *HomeService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "HomeService", operation, attrs...)
}

// CreateHome creates a home owned by the principal, who becomes its first
// member.
func (s *HomeService) CreateHome(ctx context.Context, principal Principal, input HomeInput) (home persistence.Home, err error) {
	if s == nil {
		err = fmt.Errorf("HomeService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateHome", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create home", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("home_id", home.ID).InfoContext(ctx, "home created")
	}()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		err = vErr
		return
	}

	now := s.now().UTC()
	home, err = s.homes.CreateHome(ctx, persistence.Home{
		Name:      name,
		OwnerID:   principal.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// GetHome returns a home the principal belongs to.
func (s *HomeService) GetHome(ctx context.Context, principal Principal, id int64) (persistence.Home, error) {
	if s == nil {
		return persistence.Home{}, fmt.Errorf("HomeService is nil")
	}
	if err := s.requireMembership(ctx, principal, id); err != nil {
		return persistence.Home{}, err
	}

	home, err := s.homes.GetHome(ctx, id)
	if err != nil {
		return persistence.Home{}, mapRepoError(err)
	}
	return home, nil
}

// ListHomes returns the homes the principal is a member of.
func (s *HomeService) ListHomes(ctx context.Context, principal Principal) ([]persistence.Home, error) {
	if s == nil {
		return nil, fmt.Errorf("HomeService is nil")
	}

	homes, err := s.homes.ListHomesForUser(ctx, principal.UserID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return homes, nil
}

// AddMember enrolls a user into a home. Only the home owner or an admin may
// manage membership.
func (s *HomeService) AddMember(ctx context.Context, principal Principal, homeID, userID int64) error {
	if s == nil {
		return fmt.Errorf("HomeService is nil")
	}

	logger := s.loggerWith(ctx, "AddMember", "principal_id", principal.UserID, "home_id", homeID, "user_id", userID)

	if err := s.requireOwnership(ctx, principal, homeID); err != nil {
		return err
	}
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return mapRepoError(err)
	}
	if err := s.homes.AddMember(ctx, homeID, userID); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to add member", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "member added")
	return nil
}

// RemoveMember removes a user from a home. The owner cannot be removed.
func (s *HomeService) RemoveMember(ctx context.Context, principal Principal, homeID, userID int64) error {
	if s == nil {
		return fmt.Errorf("HomeService is nil")
	}

	logger := s.loggerWith(ctx, "RemoveMember", "principal_id", principal.UserID, "home_id", homeID, "user_id", userID)

	home, err := s.homes.GetHome(ctx, homeID)
	if err != nil {
		return mapRepoError(err)
	}
	if !principal.IsAdmin && principal.UserID != home.OwnerID {
		return ErrUnauthorized
	}
	if userID == home.OwnerID {
		vErr := &ValidationError{}
		vErr.add("user_id", "the home owner cannot be removed")
		return vErr
	}

	if err := s.homes.RemoveMember(ctx, homeID, userID); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to remove member", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "member removed")
	return nil
}

// ListMembers returns the users enrolled in a home.
func (s *HomeService) ListMembers(ctx context.Context, principal Principal, homeID int64) ([]persistence.User, error) {
	if s == nil {
		return nil, fmt.Errorf("HomeService is nil")
	}
	if err := s.requireMembership(ctx, principal, homeID); err != nil {
		return nil, err
	}

	members, err := s.homes.ListMembers(ctx, homeID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return members, nil
}

// DeleteHome removes a home and everything scoped to it. Owner or admin only.
func (s *HomeService) DeleteHome(ctx context.Context, principal Principal, homeID int64) error {
	if s == nil {
		return fmt.Errorf("HomeService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteHome", "principal_id", principal.UserID, "home_id", homeID)

	if err := s.requireOwnership(ctx, principal, homeID); err != nil {
		return err
	}
	if err := s.homes.DeleteHome(ctx, homeID); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete home", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "home deleted")
	return nil
}

// Membership reports whether the principal belongs to the home. Admins are
// treated as members of every home.
func (s *HomeService) Membership(ctx context.Context, principal Principal, homeID int64) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("HomeService is nil")
	}
	if principal.IsAdmin {
		return true, nil
	}
	isMember, err := s.homes.IsMember(ctx, homeID, principal.UserID)
	if err != nil {
		return false, mapRepoError(err)
	}
	return isMember, nil
}

func (s *HomeService) requireMembership(ctx context.Context, principal Principal, homeID int64) error {
	isMember, err := s.Membership(ctx, principal, homeID)
	if err != nil {
		return err
	}
	if !isMember {
		return ErrUnauthorized
	}
	return nil
}

func (s *HomeService) requireOwnership(ctx context.Context, principal Principal, homeID int64) error {
	home, err := s.homes.GetHome(ctx, homeID)
	if err != nil {
		return mapRepoError(err)
	}
	if !principal.IsAdmin && principal.UserID != home.OwnerID {
		return ErrUnauthorized
	}
	return nil
}
