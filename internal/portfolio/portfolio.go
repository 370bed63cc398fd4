// Package portfolio screens every holding of a portfolio concurrently.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"halal_finance/internal/market"
	"halal_finance/internal/models"
	"halal_finance/internal/screening"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// File is the YAML layout of a portfolio file.
type File struct {
	Name     string           `yaml:"name"`
	Holdings []models.Holding `yaml:"holdings"`
}

// Load reads a portfolio file.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse portfolio %s: %w", path, err)
	}
	if len(f.Holdings) == 0 {
		return nil, fmt.Errorf("portfolio %s has no holdings", path)
	}
	return &f, nil
}

// Screener runs a screening policy over many holdings.
type Screener struct {
	policy    screening.Policy
	directory market.Directory
	workers   int
	logger    *zap.Logger
	now       func() time.Time
}

// NewScreener builds a screener. directory may be nil; workers < 1 means one.
func NewScreener(policy screening.Policy, directory market.Directory, workers int, logger *zap.Logger) *Screener {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Screener{
		policy:    policy,
		directory: directory,
		workers:   workers,
		logger:    logger,
		now:       time.Now,
	}
}

// Screen grades each holding independently. A holding with invalid ratios is
// reported with its error; it does not fail the batch. Results keep input order.
func (s *Screener) Screen(ctx context.Context, holdings []models.Holding) (*models.PortfolioReport, error) {
	results := make([]models.HoldingResult, len(holdings))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, h := range holdings {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = s.screenOne(h)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &models.PortfolioReport{
		ID:          uuid.NewString(),
		GeneratedAt: s.now().UTC(),
		Holdings:    results,
	}
	summarize(report)

	s.logger.Info("Portfolio screened",
		zap.String("report_id", report.ID),
		zap.Int("holdings", len(holdings)),
		zap.Int("rejected", report.Rejected),
		zap.Float64("average_score", report.AverageScore))
	return report, nil
}

func (s *Screener) screenOne(h models.Holding) models.HoldingResult {
	out := models.HoldingResult{
		Symbol: screening.NormalizeSymbol(h.Symbol),
		Name:   h.Name,
	}

	res, err := s.policy.Screen(h.ComplianceMetrics)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.Result = &res

	if out.Name == "" && s.directory != nil && out.Symbol != "" {
		info, err := s.directory.Lookup(out.Symbol)
		switch {
		case err == nil:
			out.Name = info.Name
		case !errors.Is(err, market.ErrUnknownSymbol):
			s.logger.Warn("Directory lookup failed", zap.String("symbol", out.Symbol), zap.Error(err))
		}
	}
	return out
}

func summarize(r *models.PortfolioReport) {
	total := 0
	for _, h := range r.Holdings {
		if h.Result == nil {
			r.Rejected++
			continue
		}
		r.Screened++
		total += h.Result.Score
		if h.Result.Recommendation == models.HighlyRecommended || h.Result.Recommendation == models.Recommended {
			r.Compliant++
		}
	}
	if r.Screened > 0 {
		r.AverageScore = float64(total) / float64(r.Screened)
	}
}
