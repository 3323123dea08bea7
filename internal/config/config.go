// Package config provides centralized configuration loaded from
// environment variables. Shared by both cmd/api and cmd/admin.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ligaboreal/mesa-tecnica/internal/game"
)

// --------------------------------------------------------------------------
// Table names — single source of truth, matches schema.sql
// --------------------------------------------------------------------------

const (
	GamesTable       = "games"
	PlayerStatsTable = "player_game_stats"
	StandingsTable   = "standings"
)

// NotifyChannel is the Postgres channel game writes fan out on.
const NotifyChannel = "mesa_game_updated"

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int

	// Game rules (league policy; foul-out thresholds are fixed rules
	// and live in internal/game)
	PeriodLengthTenths    int
	CrunchPeriod          int
	CrunchThresholdTenths int
	TimeoutsInitial       int
	TimeoutsPeriod3       int
	TimeoutsOvertime      int
	PlayLogCap            int

	// Clock ticker interval for the station that armed the clock.
	ClockTick time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", envOr("MESA_DATABASE_URL", ""))
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL or MESA_DATABASE_URL must be set")
	}

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled: envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRPS:     envFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst:   envInt("RATE_LIMIT_BURST", 40),

		PeriodLengthTenths:    envInt("CLOCK_PERIOD_TENTHS", 6000),
		CrunchPeriod:          envInt("CLOCK_CRUNCH_PERIOD", 4),
		CrunchThresholdTenths: envInt("CLOCK_CRUNCH_THRESHOLD_TENTHS", 120),
		TimeoutsInitial:       envInt("TIMEOUTS_INITIAL", 2),
		TimeoutsPeriod3:       envInt("TIMEOUTS_PERIOD_3", 3),
		TimeoutsOvertime:      envInt("TIMEOUTS_OVERTIME", 1),
		PlayLogCap:            envInt("PLAY_LOG_CAP", 50),

		ClockTick: time.Duration(envInt("CLOCK_TICK_MS", 100)) * time.Millisecond,
	}, nil
}

// Rules materializes the game-rule slice of the configuration.
func (c *Config) Rules() game.Rules {
	return game.Rules{
		PeriodLength:     c.PeriodLengthTenths,
		CrunchPeriod:     c.CrunchPeriod,
		CrunchThreshold:  c.CrunchThresholdTenths,
		TimeoutsInitial:  c.TimeoutsInitial,
		TimeoutsPeriod3:  c.TimeoutsPeriod3,
		TimeoutsOvertime: c.TimeoutsOvertime,
		LogCap:           c.PlayLogCap,
	}
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
