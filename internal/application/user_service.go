package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/hilloIsTheBest/Reservation-hub/internal/persistence"
)

// UserService exposes account management operations.
type UserService struct {
	users        persistence.UserRepository
	hashPassword func(password string) (string, error)
	now          func() time.Time
	logger       *slog.Logger
}

// NewUserService constructs a user service with the provided dependencies.
func NewUserService(users persistence.UserRepository, now func() time.Time, logger *slog.Logger) *UserService {
	if now == nil {
		now = time.Now
	}
	return &UserService{
		users: users,
		hashPassword: func(password string) (string, error) {
			return CreatePasswordHash(password, DefaultArgon2idParams)
		},
		now:    now,
		logger: defaultLogger(logger),
	}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// GetUser returns a single account. Users can read their own account; admins
// can read any.
func (s *UserService) GetUser(ctx context.Context, principal Principal, id int64) (persistence.User, error) {
	if s == nil {
		return persistence.User{}, fmt.Errorf("UserService is nil")
	}
	if !principal.IsAdmin && principal.UserID != id {
		return persistence.User{}, ErrUnauthorized
	}

	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return persistence.User{}, mapRepoError(err)
	}
	return user, nil
}

// ListUsers returns all accounts ordered by display name.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) (users []persistence.User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ListUsers", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list users", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	users, err = s.users.ListUsers(ctx)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	sort.Slice(users, func(i, j int) bool {
		if strings.EqualFold(users[i].DisplayName, users[j].DisplayName) {
			return users[i].ID < users[j].ID
		}
		return strings.ToLower(users[i].DisplayName) < strings.ToLower(users[j].DisplayName)
	})
	return
}

// UpdateUser changes the mutable fields of an account. Only admins can change
// the admin flag; users can update their own name and password.
func (s *UserService) UpdateUser(ctx context.Context, principal Principal, id int64, input UserUpdateInput) (user persistence.User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if !principal.IsAdmin && principal.UserID != id {
		err = ErrUnauthorized
		return
	}
	if input.IsAdmin != nil && !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	logger := s.loggerWith(ctx, "UpdateUser", "principal_id", principal.UserID, "user_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user updated")
	}()

	user, err = s.users.GetUser(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	vErr := &ValidationError{}
	if name := strings.TrimSpace(input.DisplayName); name != "" {
		user.DisplayName = name
	} else if input.DisplayName != "" {
		vErr.add("display_name", "display name must not be blank")
	}
	if input.Password != "" {
		if len(input.Password) < 8 {
			vErr.add("password", "password must be at least 8 characters")
		} else {
			var hash string
			hash, err = s.hashPassword(input.Password)
			if err != nil {
				return
			}
			user.PasswordHash = hash
		}
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if input.IsAdmin != nil {
		user.IsAdmin = *input.IsAdmin
	}
	user.UpdatedAt = s.now().UTC()

	if err = s.users.UpdateUser(ctx, user); err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// DeleteUser removes an account. Admin only, and admins cannot delete
// themselves so a deployment always keeps at least one administrator.
func (s *UserService) DeleteUser(ctx context.Context, principal Principal, id int64) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if principal.UserID == id {
		vErr := &ValidationError{}
		vErr.add("id", "administrators cannot delete their own account")
		return vErr
	}

	logger := s.loggerWith(ctx, "DeleteUser", "principal_id", principal.UserID, "user_id", id)
	if err := s.users.DeleteUser(ctx, id); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete user", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "user deleted")
	return nil
}
