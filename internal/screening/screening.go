// Package screening grades securities against quantitative halal screens.
//
// A security starts at 100 and loses points for every percentage point its
// debt, interest-income and haram-revenue ratios sit above the published
// limits. A haram primary business caps the score in the fail tier.
package screening

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"halal_finance/internal/models"
)

// ErrInvalidRatio is returned when a ratio is non-finite or outside [0, 100].
var ErrInvalidRatio = errors.New("invalid ratio")

// Screening limits, in percent.
const (
	DebtLimit         = 33.0
	InterestLimit     = 5.0
	HaramRevenueLimit = 5.0

	// HaramIndustryCap is the highest score a haram primary business can reach.
	HaramIndustryCap = 30
)

// Alternatives are offered whenever a security should be avoided.
var Alternatives = []string{"ISRA", "HLAL", "SPUS"}

// Policy weights each percentage point above a limit.
type Policy struct {
	DebtWeight         float64
	InterestWeight     float64
	HaramRevenueWeight float64
}

// DefaultPolicy deducts one point per percentage point of excess.
var DefaultPolicy = Policy{DebtWeight: 1, InterestWeight: 1, HaramRevenueWeight: 1}

// Screen grades m under DefaultPolicy.
func Screen(m models.ComplianceMetrics) (models.ScreeningResult, error) {
	return DefaultPolicy.Screen(m)
}

// Screen grades m. It fails without a result if any ratio is out of range.
func (p Policy) Screen(m models.ComplianceMetrics) (models.ScreeningResult, error) {
	if err := Validate(m); err != nil {
		return models.ScreeningResult{}, err
	}

	score := p.score(m)

	res := models.ScreeningResult{
		Symbol:         NormalizeSymbol(m.Symbol),
		Score:          score,
		Grade:          GradeFor(score),
		Recommendation: RecommendationFor(score),
		Gharar:         GhararFor(score),
		Checks: models.ComplianceChecks{
			RibaFree:         m.InterestIncomeRatio <= InterestLimit,
			DebtCompliant:    m.DebtRatio <= DebtLimit,
			RevenueCompliant: m.HaramRevenueRatio <= HaramRevenueLimit,
			HaramIndustry:    m.HaramIndustry,
		},
	}
	if res.Recommendation == models.Avoid {
		res.Alternatives = append([]string(nil), Alternatives...)
	}
	return res, nil
}

func (p Policy) score(m models.ComplianceMetrics) int {
	deduction := weight(p.DebtWeight)*excess(m.DebtRatio, DebtLimit) +
		weight(p.InterestWeight)*excess(m.InterestIncomeRatio, InterestLimit) +
		weight(p.HaramRevenueWeight)*excess(m.HaramRevenueRatio, HaramRevenueLimit)
	deduction = math.Min(math.Max(deduction, 0), 100)

	score := clamp(int(math.Floor(100-deduction+0.5)), 0, 100)
	if m.HaramIndustry && score > HaramIndustryCap {
		score = HaramIndustryCap
	}
	return score
}

func excess(ratio, limit float64) float64 {
	return math.Max(0, ratio-limit)
}

func weight(w float64) float64 {
	if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return 0
	}
	return w
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Validate checks every ratio is a finite percentage.
func Validate(m models.ComplianceMetrics) error {
	for _, r := range []struct {
		field string
		value float64
	}{
		{"interest_income_ratio", m.InterestIncomeRatio},
		{"haram_revenue_ratio", m.HaramRevenueRatio},
		{"debt_ratio", m.DebtRatio},
	} {
		if math.IsNaN(r.value) || math.IsInf(r.value, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidRatio, r.field)
		}
		if r.value < 0 || r.value > 100 {
			return fmt.Errorf("%w: %s=%g outside [0, 100]", ErrInvalidRatio, r.field, r.value)
		}
	}
	return nil
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
