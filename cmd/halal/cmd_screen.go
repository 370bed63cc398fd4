package main

import (
	"errors"
	"fmt"

	"halal_finance/internal/market"
	"halal_finance/internal/models"
	"halal_finance/internal/portfolio"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// screenCmd grades one security
var screenCmd = &cobra.Command{
	Use:   "screen SYMBOL",
	Short: "Grade a security against the halal screens",
	Long: `Grade a security against the quantitative halal screens.

Ratios are percentages in [0, 100]. Each point above a limit
(debt 33%, interest income 5%, haram revenue 5%) costs one point
of score; a haram primary business caps the score at 30.`,
	Example: `  halal screen AAPL --debt 15.2 --interest 1.8
  halal screen JPM --debt 85.2 --interest 78.5 --haram-revenue 95 --haram-industry`,
	Args: cobra.ExactArgs(1),
	RunE: runScreen,
}

// portfolioCmd grades every holding in a YAML portfolio file
var portfolioCmd = &cobra.Command{
	Use:   "portfolio FILE",
	Short: "Screen every holding of a portfolio file",
	Long: `Screen every holding of a YAML portfolio file concurrently.

A holding with invalid ratios is reported as rejected; the rest
of the portfolio is still screened.`,
	Example: `  halal portfolio internal/portfolio/testdata/sample.yaml`,
	Args:    cobra.ExactArgs(1),
	RunE:    runPortfolio,
}

func init() {
	screenCmd.Flags().Float64("debt", 0, "Debt to market cap ratio, percent")
	screenCmd.Flags().Float64("interest", 0, "Interest income ratio, percent")
	screenCmd.Flags().Float64("haram-revenue", 0, "Revenue from impermissible activities, percent")
	screenCmd.Flags().Bool("haram-industry", false, "Primary business is impermissible")

	portfolioCmd.Flags().Int("workers", 0, "Concurrent screens (default: PORTFOLIO_WORKERS)")
}

type screenReport struct {
	models.ScreeningResult
	Security *models.SecurityInfo `json:"security,omitempty"`
}

func runScreen(cmd *cobra.Command, args []string) error {
	m := models.ComplianceMetrics{Symbol: args[0]}
	m.DebtRatio, _ = cmd.Flags().GetFloat64("debt")
	m.InterestIncomeRatio, _ = cmd.Flags().GetFloat64("interest")
	m.HaramRevenueRatio, _ = cmd.Flags().GetFloat64("haram-revenue")
	m.HaramIndustry, _ = cmd.Flags().GetBool("haram-industry")

	res, err := cfg.ScreeningPolicy().Screen(m)
	if err != nil {
		return err
	}

	info, err := directory().Lookup(res.Symbol)
	if err != nil && !errors.Is(err, market.ErrUnknownSymbol) {
		log.Warn("Directory lookup failed", zap.String("symbol", res.Symbol), zap.Error(err))
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), screenReport{ScreeningResult: res, Security: info})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderScreening(res, info))
	return nil
}

func runPortfolio(cmd *cobra.Command, args []string) error {
	f, err := portfolio.Load(args[0])
	if err != nil {
		return err
	}

	workers, _ := cmd.Flags().GetInt("workers")
	if workers < 1 {
		workers = cfg.PortfolioWorkers
	}

	s := portfolio.NewScreener(cfg.ScreeningPolicy(), directory(), workers, log)
	report, err := s.Screen(cmd.Context(), f.Holdings)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), report)
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderPortfolio(f.Name, report))
	return nil
}
