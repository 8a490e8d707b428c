package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hilloIsTheBest/Reservation-hub/internal/application"
	"github.com/hilloIsTheBest/Reservation-hub/internal/testfixtures"
)

func TestRegisterFirstUserBecomesAdmin(t *testing.T) {
	t.Parallel()

	h := testfixtures.NewHarness(t)
	ctx := context.Background()

	first, err := h.Auth.Register(ctx, application.RegisterInput{
		Email:       "alice@example.com",
		DisplayName: "Alice",
		Password:    "correct horse",
	})
	if err != nil {
		t.Fatalf("Register first: %v", err)
	}
	if !first.IsAdmin {
		t.Error("first registered user should be admin")
	}

	second, err := h.Auth.Register(ctx, application.RegisterInput{
		Email:       "bob@example.com",
		DisplayName: "Bob",
		Password:    "correct horse",
	})
	if err != nil {
		t.Fatalf("Register second: %v", err)
	}
	if second.IsAdmin {
		t.Error("second registered user should not be admin")
	}

	if _, err := h.Auth.Register(ctx, application.RegisterInput{
		Email:       "Alice@Example.com",
		DisplayName: "Alice Again",
		Password:    "correct horse",
	}); !errors.Is(err, application.ErrAlreadyExists) {
		t.Errorf("duplicate email: got %v, want ErrAlreadyExists", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	h := testfixtures.NewHarness(t)

	_, err := h.Auth.Register(context.Background(), application.RegisterInput{
		Email:       "not-an-email",
		DisplayName: "",
		Password:    "short",
	})

	var vErr *application.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"email", "display_name", "password"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Errorf("missing field error for %s", field)
		}
	}
}

func TestAuthenticateAndValidateSession(t *testing.T) {
	t.Parallel()

	h := testfixtures.NewHarness(t)
	ctx := context.Background()

	user, err := h.Auth.Register(ctx, application.RegisterInput{
		Email:       "alice@example.com",
		DisplayName: "Alice",
		Password:    "correct horse",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := h.Auth.Authenticate(ctx, application.AuthenticateParams{
		Email:    "alice@example.com",
		Password: "wrong",
	}); !errors.Is(err, application.ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v, want ErrInvalidCredentials", err)
	}

	result, err := h.Auth.Authenticate(ctx, application.AuthenticateParams{
		Email:    "ALICE@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if result.UserID != user.ID || result.Token == "" {
		t.Fatalf("unexpected result %+v", result)
	}

	principal, err := h.Auth.ValidateSession(ctx, result.Token)
	if err != nil {
		t.Fatalf("ValidateSession: %v", err)
	}
	if principal.UserID != user.ID || !principal.IsAdmin {
		t.Fatalf("unexpected principal %+v", principal)
	}

	// Expired sessions are rejected.
	h.Clock.Advance(25 * time.Hour)
	if _, err := h.Auth.ValidateSession(ctx, result.Token); !errors.Is(err, application.ErrSessionExpired) {
		t.Fatalf("expired session: got %v, want ErrSessionExpired", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	t.Parallel()

	h := testfixtures.NewHarness(t)
	ctx := context.Background()

	if _, err := h.Auth.Register(ctx, application.RegisterInput{
		Email:       "alice@example.com",
		DisplayName: "Alice",
		Password:    "correct horse",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	result, err := h.Auth.Authenticate(ctx, application.AuthenticateParams{
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	if err := h.Auth.Logout(ctx, result.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := h.Auth.ValidateSession(ctx, result.Token); !errors.Is(err, application.ErrSessionRevoked) {
		t.Fatalf("revoked session: got %v, want ErrSessionRevoked", err)
	}
	if _, err := h.Auth.ValidateSession(ctx, "unknown-token"); !errors.Is(err, application.ErrUnauthorized) {
		t.Fatalf("unknown token: got %v, want ErrUnauthorized", err)
	}
}
