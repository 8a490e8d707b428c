package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hilloIsTheBest/Reservation-hub/internal/metrics"
)

// RouterConfig collects the handlers mounted by NewRouter. A nil handler
// leaves its routes unregistered.
type RouterConfig struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Homes     *HomeHandler
	Resources *ResourceHandler
	Bookings  *BookingHandler
	Events    *EventHandler
	Feeds     *ICSHandler
	Sync      *SyncHandler

	Sessions SessionValidator
	Logger   *slog.Logger
}

// NewRouter builds the HTTP surface. Registration, login, the resource
// catalog and the calendar feeds are reachable without a session; everything
// else under /api requires one.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := defaultLogger(cfg.Logger)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger))
	r.Use(metrics.Middleware())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	if cfg.Auth != nil {
		r.Post("/api/users", cfg.Auth.Register)
		r.Post("/sessions", cfg.Auth.CreateSession)
	}
	if cfg.Resources != nil {
		r.Get("/api/resources", cfg.Resources.Catalog)
	}
	if cfg.Feeds != nil {
		r.Route("/ics", func(r chi.Router) {
			r.Get("/all.ics", cfg.Feeds.All)
			r.Get("/resource/{id}.ics", cfg.Feeds.Resource)
			r.Get("/home/{id}.ics", cfg.Feeds.Home)
		})
	}

	r.Group(func(r chi.Router) {
		r.Use(RequireSession(cfg.Sessions, logger))

		if cfg.Auth != nil {
			r.Delete("/sessions/current", cfg.Auth.DeleteCurrentSession)
		}
		if cfg.Users != nil {
			r.Get("/api/users", cfg.Users.List)
			r.Get("/api/users/{id}", cfg.Users.Get)
			r.Put("/api/users/{id}", cfg.Users.Update)
			r.Delete("/api/users/{id}", cfg.Users.Delete)
		}
		if cfg.Homes != nil {
			r.Route("/api/homes", func(r chi.Router) {
				r.Post("/", cfg.Homes.Create)
				r.Get("/", cfg.Homes.List)
				r.Get("/{id}", cfg.Homes.Get)
				r.Delete("/{id}", cfg.Homes.Delete)
				r.Get("/{id}/members", cfg.Homes.ListMembers)
				r.Post("/{id}/members", cfg.Homes.AddMember)
				r.Delete("/{id}/members/{userID}", cfg.Homes.RemoveMember)
				if cfg.Resources != nil {
					r.Get("/{id}/resources", cfg.Resources.List)
				}
			})
		}
		if cfg.Resources != nil {
			r.Post("/api/resources", cfg.Resources.Create)
			r.Put("/api/resources/{id}", cfg.Resources.Update)
			r.Delete("/api/resources/{id}", cfg.Resources.Delete)
		}
		if cfg.Bookings != nil {
			r.Route("/api/bookings", func(r chi.Router) {
				r.Post("/", cfg.Bookings.Create)
				r.Get("/{id}", cfg.Bookings.Get)
				r.Delete("/{id}", cfg.Bookings.Delete)
			})
		}
		if cfg.Events != nil {
			r.Get("/api/events", cfg.Events.List)
		}
		if cfg.Sync != nil {
			r.Post("/api/sync", cfg.Sync.Run)
		}
	})

	return r
}
