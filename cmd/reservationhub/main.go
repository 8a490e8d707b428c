package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/hilloIsTheBest/Reservation-hub/internal/application"
	"github.com/hilloIsTheBest/Reservation-hub/internal/config"
	httptransport "github.com/hilloIsTheBest/Reservation-hub/internal/http"
	"github.com/hilloIsTheBest/Reservation-hub/internal/ics"
	"github.com/hilloIsTheBest/Reservation-hub/internal/logging"
	"github.com/hilloIsTheBest/Reservation-hub/internal/persistence/sqlite"
	"github.com/hilloIsTheBest/Reservation-hub/internal/timeutil"
)

func main() {
	logger := logging.New(os.Stdout, slog.LevelInfo)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.Open(ctx, cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	normalizer := timeutil.NewNormalizer(timeutil.ResolveLocation(cfg.Timezone))
	tokenGenerator := uuid.NewString
	now := time.Now

	userRepo := sqlite.NewUserRepository(pool)
	homeRepo := sqlite.NewHomeRepository(pool)
	resourceRepo := sqlite.NewResourceRepository(pool)
	reservationRepo := sqlite.NewReservationRepository(pool)
	sessionRepo := sqlite.NewSessionRepository(pool)

	authService := application.NewAuthService(userRepo, sessionRepo, tokenGenerator, now, cfg.SessionTTL, logger)
	userService := application.NewUserService(userRepo, now, logger)
	homeService := application.NewHomeService(homeRepo, userRepo, now, logger)
	resourceService := application.NewResourceService(resourceRepo, homeRepo, now, logger)
	locks := application.NewLockRegistry()
	bookingService := application.NewBookingService(reservationRepo, resourceRepo, homeRepo, locks, now, logger)
	calendarService := application.NewCalendarService(reservationRepo, resourceRepo, homeRepo, cfg.ExportHorizon, now, logger)
	syncService := application.NewSyncService(reservationRepo, resourceRepo, homeRepo, ics.NewClient(cfg.SyncTimeout), cfg.SyncTimeout, locks, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:      httptransport.NewAuthHandler(authService, logger),
		Users:     httptransport.NewUserHandler(userService, logger),
		Homes:     httptransport.NewHomeHandler(homeService, logger),
		Resources: httptransport.NewResourceHandler(resourceService, logger),
		Bookings:  httptransport.NewBookingHandler(bookingService, normalizer, logger),
		Events:    httptransport.NewEventHandler(calendarService, normalizer, logger),
		Feeds:     httptransport.NewICSHandler(calendarService, logger),
		Sync:      httptransport.NewSyncHandler(syncService, logger),
		Sessions:  authService,
		Logger:    logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("reservation hub listening", "addr", server.Addr, "timezone", normalizer.Location().String())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
