package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"

	"github.com/ligaboreal/mesa-tecnica/internal/api/handler"
	"github.com/ligaboreal/mesa-tecnica/internal/config"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(h *handler.Handler, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS. Console stations POST from the scoreboard UI.
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "Link"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Match picker
		r.Get("/matches", h.Matches)

		r.Route("/games/{gameID}", func(r chi.Router) {
			// Session views
			r.Get("/", h.GameSnapshot)
			r.Get("/log", h.GameLog)
			r.Get("/boxscore", h.GameBoxScore)

			// Game events
			r.Post("/score", h.Score)
			r.Post("/fouls", h.Foul)
			r.Post("/staff-fouls", h.StaffFoul)
			r.Post("/stats", h.Stat)
			r.Post("/substitutions/begin", h.SubstitutionBegin)
			r.Post("/substitutions/complete", h.SubstitutionComplete)
			r.Post("/timeouts", h.Timeout)

			// Clock and period control
			r.Post("/clock/toggle", h.ClockToggle)
			r.Post("/clock/adjust", h.ClockAdjust)
			r.Post("/period/advance", h.PeriodAdvance)

			// Lifecycle
			r.Post("/finalize", h.Finalize)
			r.Post("/reset", h.Reset)
		})
	})

	return r
}
