// Package api exposes the zakat and screening engines over HTTP.
package api

import (
	"context"
	"net/http"

	"halal_finance/internal/market"
	"halal_finance/internal/portfolio"
	"halal_finance/internal/rates"
	"halal_finance/internal/screening"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// MaxHoldings caps the size of one portfolio request.
const MaxHoldings = 200

// Options tunes the router.
type Options struct {
	AllowedOrigins  []string
	RateLimitPerMin float64
	RateBurst       int
}

// Server holds the dependencies shared by every handler.
type Server struct {
	rates     rates.Source
	policy    screening.Policy
	directory market.Directory
	screener  *portfolio.Screener
	logger    *zap.Logger
}

// NewServer wires the handlers. directory may be nil.
func NewServer(src rates.Source, policy screening.Policy, directory market.Directory, screener *portfolio.Screener, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if screener == nil {
		screener = portfolio.NewScreener(policy, directory, 1, logger)
	}
	return &Server{
		rates:     src,
		policy:    policy,
		directory: directory,
		screener:  screener,
		logger:    logger,
	}
}

// Router builds the HTTP handler. Background work started for the router
// (rate limiter bookkeeping) stops when ctx is done.
func (s *Server) Router(ctx context.Context, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/api/health", s.Health)

	r.Group(func(r chi.Router) {
		r.Use(RateLimit(ctx, opts.RateLimitPerMin, opts.RateBurst))

		r.Get("/api/rates", s.Rates)
		r.Post("/api/zakat", s.Zakat)
		r.Post("/api/screen", s.Screen)
		r.Post("/api/portfolio/screen", s.ScreenPortfolio)
	})

	return r
}
