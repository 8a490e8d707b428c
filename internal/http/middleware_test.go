package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hilloIsTheBest/Reservation-hub/internal/application"
)

type stubValidator struct {
	principal application.Principal
	err       error
	token     string
}

func (s *stubValidator) ValidateSession(_ context.Context, token string) (application.Principal, error) {
	s.token = token
	if s.err != nil {
		return application.Principal{}, s.err
	}
	return s.principal, nil
}

func TestRequireSession(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		prepare    func(r *http.Request)
		validator  *stubValidator
		wantStatus int
		wantToken  string
	}{
		{
			name:       "missing token",
			prepare:    func(*http.Request) {},
			validator:  &stubValidator{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "bearer header",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer abc123")
			},
			validator:  &stubValidator{principal: application.Principal{UserID: 7}},
			wantStatus: http.StatusOK,
			wantToken:  "abc123",
		},
		{
			name: "session cookie",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "session_token", Value: "cookie-token"})
			},
			validator:  &stubValidator{principal: application.Principal{UserID: 7}},
			wantStatus: http.StatusOK,
			wantToken:  "cookie-token",
		},
		{
			name: "expired session",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer stale")
			},
			validator:  &stubValidator{err: application.ErrSessionExpired},
			wantStatus: http.StatusUnauthorized,
			wantToken:  "stale",
		},
		{
			name: "validator failure",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer broken")
			},
			validator:  &stubValidator{err: errors.New("storage offline")},
			wantStatus: http.StatusInternalServerError,
			wantToken:  "broken",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotPrincipal application.Principal
			var called bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				gotPrincipal, _ = PrincipalFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/homes", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()

			RequireSession(tt.validator, nil)(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.validator.token != tt.wantToken {
				t.Errorf("validated token = %q, want %q", tt.validator.token, tt.wantToken)
			}
			if tt.wantStatus == http.StatusOK {
				if !called {
					t.Fatal("next handler was not invoked")
				}
				if gotPrincipal != tt.validator.principal {
					t.Errorf("principal = %+v, want %+v", gotPrincipal, tt.validator.principal)
				}
			} else if called {
				t.Error("next handler should not run on rejection")
			}
		})
	}
}
