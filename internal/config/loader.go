package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the reservation hub.
type Config struct {
	HTTPPort      int
	SQLiteDSN     string
	SessionTTL    time.Duration
	Timezone      string
	SyncTimeout   time.Duration
	ExportHorizon time.Duration
}

// Load parses configuration values from the current process environment.
//
// The loader applies defaults for every optional field and reports invalid
// values in a single error so operators see all problems at once.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:      8080,
		SQLiteDSN:     "file:reservationhub.db?_pragma=foreign_keys(1)",
		SessionTTL:    24 * time.Hour,
		Timezone:      "",
		SyncTimeout:   15 * time.Second,
		ExportHorizon: 365 * 24 * time.Hour,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("RESERVATIONHUB_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "RESERVATIONHUB_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("RESERVATIONHUB_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("RESERVATIONHUB_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "RESERVATIONHUB_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	// Zone name for naive timestamps, e.g. "Europe/Berlin". Resolution of the
	// empty value falls through to TZ and the system zone; see timeutil.ResolveLocation.
	if tz := strings.TrimSpace(os.Getenv("RESERVATIONHUB_TIMEZONE")); tz != "" {
		cfg.Timezone = tz
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("RESERVATIONHUB_SYNC_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "RESERVATIONHUB_SYNC_TIMEOUT")
		} else {
			cfg.SyncTimeout = timeout
		}
	}

	if horizonValue := strings.TrimSpace(os.Getenv("RESERVATIONHUB_EXPORT_HORIZON")); horizonValue != "" {
		horizon, err := time.ParseDuration(horizonValue)
		if err != nil || horizon <= 0 {
			invalid = append(invalid, "RESERVATIONHUB_EXPORT_HORIZON")
		} else {
			cfg.ExportHorizon = horizon
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
