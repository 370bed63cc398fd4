package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"halal_finance/internal/api"
	"halal_finance/internal/portfolio"
	"halal_finance/internal/rates"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API until SIGINT or SIGTERM.

Endpoints:
  GET  /api/health
  GET  /api/rates
  POST /api/zakat
  POST /api/screen
  POST /api/portfolio/screen

When RATES_FILE is set the file is watched and prices are reloaded
on every change.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "Listen port (default: PORT)")
}

// watchRates keeps a file source fresh until ctx is done.
func watchRates(ctx context.Context, g *errgroup.Group, fs *rates.FileSource) {
	if fs == nil {
		return
	}
	g.Go(func() error {
		if err := fs.Watch(ctx); err != nil {
			// Prices stay at their last value; not fatal.
			log.Warn("Rates watcher stopped", zap.Error(err))
		}
		return nil
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	src, fileSrc, err := ratesSource()
	if err != nil {
		return err
	}

	port, _ := cmd.Flags().GetString("port")
	if port == "" {
		port = cfg.HTTPPort
	}

	policy := cfg.ScreeningPolicy()
	dir := directory()
	screener := portfolio.NewScreener(policy, dir, cfg.PortfolioWorkers, log)
	s := api.NewServer(src, policy, dir, screener, log)

	g, ctx := errgroup.WithContext(cmd.Context())
	watchRates(ctx, g, fileSrc)

	server := &http.Server{
		Addr: fmt.Sprintf(":%s", port),
		Handler: s.Router(ctx, api.Options{
			AllowedOrigins:  cfg.AllowedOrigins,
			RateLimitPerMin: cfg.RateLimitPerMin,
			RateBurst:       cfg.RateBurst,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info("Server started", zap.String("addr", server.Addr), zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("Server stopping")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Server exited properly")
	return nil
}
